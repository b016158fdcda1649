// Package session holds per-user conversational state for the booking
// dialogue and the stores that persist it between turns. A session is keyed
// by (business id, user id); the engine mutates it exactly once per turn, and
// a channel delivers one message at a time per user, so no locking is needed
// around an individual session. Stores must still be safe for concurrent use
// across different users.
package session

import (
	"context"
	"strings"
	"sync"
	"time"
)

// Step is the conversation state machine state. Intake collection states are
// derived per configured field via Collect (e.g. "collect:name") so the same
// machine serves businesses with different intake forms.
type Step string

const (
	StepStart        Step = "start"
	StepDateSelected Step = "date_selected"
	StepTimeSelected Step = "time_selected"
	StepConfirmed    Step = "confirmed"

	collectPrefix = "collect:"
)

// Collect returns the collection state for an intake field key.
func Collect(key string) Step { return Step(collectPrefix + key) }

// CollectKey returns the intake field key when s is a collection state,
// or "" otherwise.
func CollectKey(s Step) string {
	if strings.HasPrefix(string(s), collectPrefix) {
		return strings.TrimPrefix(string(s), collectPrefix)
	}
	return ""
}

// Session is the in-flight dialogue state for one user at one business.
//
// LastOptions remembers the most recently offered option list so channels
// where users answer with a 1-based index (WhatsApp numbered lists) can be
// translated back to the literal value; it is cleared once consumed.
type Session struct {
	BusinessID   string            `json:"business_id"`
	UserID       string            `json:"user_id"`
	Step         Step              `json:"step"`
	SelectedDate string            `json:"selected_date,omitempty"`
	SelectedTime string            `json:"selected_time,omitempty"`
	Intake       map[string]string `json:"intake,omitempty"`
	LastOptions  []string          `json:"last_options,omitempty"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// New returns a fresh session at the start state.
func New(businessID, userID string) *Session {
	return &Session{
		BusinessID: businessID,
		UserID:     userID,
		Step:       StepStart,
		Intake:     make(map[string]string),
	}
}

// Reset returns the session to its initial state, clearing the selected slot,
// collected intake values, and any remembered option list.
func (s *Session) Reset() {
	s.Step = StepStart
	s.SelectedDate = ""
	s.SelectedTime = ""
	s.Intake = make(map[string]string)
	s.LastOptions = nil
}

// SetIntake stores a collected intake value.
func (s *Session) SetIntake(key, value string) {
	if s.Intake == nil {
		s.Intake = make(map[string]string)
	}
	s.Intake[key] = value
}

// Store persists sessions between turns. Get returns (nil, nil) when no
// session exists for the key; an absent session is not an error, the engine
// transparently starts a new one.
type Store interface {
	Get(ctx context.Context, businessID, userID string) (*Session, error)
	Put(ctx context.Context, s *Session) error
	Delete(ctx context.Context, businessID, userID string) error
}

// Key builds the store key for a (business, user) pair.
func Key(businessID, userID string) string { return businessID + "|" + userID }

// MemoryStore is the default process-local Store. Sessions live for the
// process lifetime; a restart loses in-flight dialogues, which is an accepted
// limitation of the current design (a durable store can be swapped in via
// the Store interface, see RedisStore).
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewMemoryStore returns an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*Session)}
}

// Get returns the stored session or (nil, nil) when absent.
func (m *MemoryStore) Get(_ context.Context, businessID, userID string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[Key(businessID, userID)]
	if !ok {
		return nil, nil
	}
	return s, nil
}

// Put stores the session, stamping UpdatedAt.
func (m *MemoryStore) Put(_ context.Context, s *Session) error {
	s.UpdatedAt = time.Now().UTC()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[Key(s.BusinessID, s.UserID)] = s
	return nil
}

// Delete removes the session if present.
func (m *MemoryStore) Delete(_ context.Context, businessID, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, Key(businessID, userID))
	return nil
}
