// Package services – ConversationService
//
// This file implements the conversation engine: the per-user state machine
// that walks a visitor from intent to a confirmed booking. Each inbound
// message is one turn: load (or create) the session, run a single transition
// keyed by the current step, and store the session back. Transitions are
// dispatched through an explicit table keyed by session.Step; intake
// collection states are derived from the business profile, so the same
// machine serves every configured intake form.
//
// Every failure is converted to a user-facing reply at this boundary. A lost
// classifier falls back to keyword matching, storage trouble asks the user to
// try again without advancing state, and a commit that loses the slot race
// rewinds to time selection with the date kept.
//
// Observability: each turn runs under an OpenTelemetry span carrying the
// business and user ids.
package services

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/tbourn/go-booking-backend/internal/business"
	"github.com/tbourn/go-booking-backend/internal/dates"
	"github.com/tbourn/go-booking-backend/internal/domain"
	"github.com/tbourn/go-booking-backend/internal/intent"
	"github.com/tbourn/go-booking-backend/internal/session"
)

// resetCommand short-circuits normal dispatch from every state.
const resetCommand = "reset"

// Reply is the structured result of one conversation turn: a plain message,
// or a message plus an ordered list of selectable options (dates or times).
type Reply struct {
	Text    string   `json:"text"`
	Options []string `json:"options,omitempty"`
}

// SlotBooker is the ledger/resolver contract required by the engine.
// *BookingService satisfies it.
type SlotBooker interface {
	AvailableDates(ctx context.Context, businessID string) ([]string, error)
	FreeTimes(ctx context.Context, businessID, date string) ([]string, error)
	Commit(ctx context.Context, businessID, userID, date, t string, in Intake) (*domain.Appointment, error)
}

// stepFn is one transition of the state machine: a function of
// (session, input) producing a reply and mutating the session in place.
type stepFn func(ctx context.Context, p business.Profile, sess *session.Session, input string) Reply

// ConversationService drives the booking dialogue.
type ConversationService struct {
	Store      session.Store
	Booking    SlotBooker
	Classifier intent.Classifier
	Profiles   *business.Registry

	// Loc resolves "today"/"tomorrow"; fixed so answers do not depend on
	// server placement.
	Loc *time.Location
	// ClassifierTimeout bounds the external classifier call before the
	// keyword fallback takes over.
	ClassifierTimeout time.Duration

	// Now is a test seam; defaults to time.Now.
	Now func() time.Time

	steps map[session.Step]stepFn
	caser cases.Caser
}

// NewConversationService wires the engine and builds its dispatch table.
func NewConversationService(store session.Store, booking SlotBooker, cls intent.Classifier, profiles *business.Registry, loc *time.Location) *ConversationService {
	s := &ConversationService{
		Store:             store,
		Booking:           booking,
		Classifier:        cls,
		Profiles:          profiles,
		Loc:               loc,
		ClassifierTimeout: 5 * time.Second,
		Now:               time.Now,
		caser:             cases.Title(language.English),
	}
	s.steps = map[session.Step]stepFn{
		session.StepStart:        s.stepStart,
		session.StepDateSelected: s.stepDateSelected,
		session.StepTimeSelected: s.stepTimeSelected,
		session.StepConfirmed:    s.stepConfirmed,
	}
	return s
}

// Handle processes one conversation turn for (businessID, userID). An
// unknown or empty businessID falls back to the default profile. The method
// never fails the caller: every error path yields a user-facing reply.
func (s *ConversationService) Handle(ctx context.Context, businessID, userID, message string) Reply {
	p := s.Profiles.Get(businessID)

	tr := otel.Tracer("services/ConversationService")
	ctx, span := tr.Start(ctx, "Handle",
		trace.WithAttributes(
			attribute.String("business.id", p.ID),
			attribute.String("user.id", userID),
		),
	)
	defer span.End()

	conversationTurns.WithLabelValues(p.ID).Inc()
	input := strings.TrimSpace(message)

	sess, err := s.Store.Get(ctx, p.ID, userID)
	if err != nil {
		log.Error().Err(err).Str("business", p.ID).Msg("session load failed")
		return Reply{Text: p.Copy.Retry}
	}

	// Global transition: "reset" reinitializes from any state, checked
	// before normal dispatch.
	if strings.EqualFold(input, resetCommand) {
		if sess == nil {
			sess = session.New(p.ID, userID)
		} else {
			sess.Reset()
		}
		if err := s.Store.Put(ctx, sess); err != nil {
			log.Error().Err(err).Msg("session store failed")
			return Reply{Text: p.Copy.Retry}
		}
		return Reply{Text: p.Copy.ResetAck}
	}

	// An absent session is not an error: initialize one and greet. The
	// first message is not dispatched, matching a visitor opening the
	// widget for the first time.
	if sess == nil {
		sess = session.New(p.ID, userID)
		if err := s.Store.Put(ctx, sess); err != nil {
			log.Error().Err(err).Msg("session store failed")
			return Reply{Text: p.Copy.Retry}
		}
		return Reply{Text: p.Copy.Intro}
	}

	// Translate a bare 1-based index against the last-offered option list
	// ("2" -> "2025-12-21"), consuming the remembered list.
	if n, err := strconv.Atoi(input); err == nil && len(sess.LastOptions) > 0 {
		if n >= 1 && n <= len(sess.LastOptions) {
			input = sess.LastOptions[n-1]
		}
		sess.LastOptions = nil
	}

	reply := s.dispatch(ctx, p, sess, input)

	// Remember offered options for the next numeric reply; a reply without
	// options drops any stale list so a numeric intake answer is taken
	// literally.
	if len(reply.Options) > 0 {
		sess.LastOptions = reply.Options
	} else {
		sess.LastOptions = nil
	}
	if err := s.Store.Put(ctx, sess); err != nil {
		log.Error().Err(err).Msg("session store failed")
		return Reply{Text: p.Copy.Retry}
	}
	return reply
}

// dispatch routes to the transition for the session's current step.
// Collection states are matched by prefix; an unrecognized step (stale
// session data from an older build) asks the user to reset.
func (s *ConversationService) dispatch(ctx context.Context, p business.Profile, sess *session.Session, input string) Reply {
	if key := session.CollectKey(sess.Step); key != "" {
		return s.stepCollect(ctx, p, sess, key, input)
	}
	if fn, ok := s.steps[sess.Step]; ok {
		return fn(ctx, p, sess, input)
	}
	return Reply{Text: p.Copy.UnknownNext}
}

// stepStart classifies intent. A booking message may carry a date inline
// ("book me in tomorrow") and skip straight to time selection.
func (s *ConversationService) stepStart(ctx context.Context, p business.Profile, sess *session.Session, input string) Reply {
	in := s.classify(ctx, input)
	if in != intent.Book {
		return Reply{Text: p.Copy.Fallback}
	}

	available, err := s.Booking.AvailableDates(ctx, p.ID)
	if err != nil {
		log.Error().Err(err).Str("business", p.ID).Msg("available dates read failed")
		return Reply{Text: p.Copy.Retry}
	}

	if d := dates.Extract(input, s.Now(), s.Loc); d != "" && containsString(available, d) {
		sess.SelectedDate = d
		return s.offerTimes(ctx, p, sess, available)
	}

	sess.Step = session.StepDateSelected
	return Reply{Text: p.Copy.PickDate, Options: available}
}

// stepDateSelected validates the chosen date against current availability.
func (s *ConversationService) stepDateSelected(ctx context.Context, p business.Profile, sess *session.Session, input string) Reply {
	available, err := s.Booking.AvailableDates(ctx, p.ID)
	if err != nil {
		log.Error().Err(err).Str("business", p.ID).Msg("available dates read failed")
		return Reply{Text: p.Copy.Retry}
	}

	d := dates.Normalize(input, s.Now(), s.Loc)
	if !containsString(available, d) {
		return Reply{Text: p.Copy.InvalidDate, Options: available}
	}

	sess.SelectedDate = d
	return s.offerTimes(ctx, p, sess, available)
}

// offerTimes presents the free times for the recorded date, or re-offers the
// date list when the date has filled up. Shared by the start shortcut and
// the date_selected transition.
func (s *ConversationService) offerTimes(ctx context.Context, p business.Profile, sess *session.Session, available []string) Reply {
	free, err := s.Booking.FreeTimes(ctx, p.ID, sess.SelectedDate)
	if err != nil {
		log.Error().Err(err).Str("business", p.ID).Msg("free times read failed")
		sess.Step = session.StepDateSelected
		return Reply{Text: p.Copy.Retry}
	}
	if len(free) == 0 {
		sess.Step = session.StepDateSelected
		return Reply{Text: p.Copy.PickDateNoTimes, Options: available}
	}
	sess.Step = session.StepTimeSelected
	return Reply{Text: p.Copy.RenderPickTime(sess.SelectedDate), Options: free}
}

// stepTimeSelected validates the chosen time against the currently free
// times; the check is advisory, the commit-time constraint decides.
func (s *ConversationService) stepTimeSelected(ctx context.Context, p business.Profile, sess *session.Session, input string) Reply {
	if sess.SelectedDate == "" {
		// Defensive: should not happen, but a hand-edited or stale session
		// must not panic the turn.
		sess.Step = session.StepDateSelected
		reply := Reply{Text: p.Copy.ChooseDateFirst}
		if available, err := s.Booking.AvailableDates(ctx, p.ID); err == nil {
			reply.Options = available
		}
		return reply
	}

	free, err := s.Booking.FreeTimes(ctx, p.ID, sess.SelectedDate)
	if err != nil {
		log.Error().Err(err).Str("business", p.ID).Msg("free times read failed")
		return Reply{Text: p.Copy.Retry}
	}
	if !containsString(free, input) {
		return Reply{Text: p.Copy.InvalidTime, Options: free}
	}

	sess.SelectedTime = input
	first := p.NextIntakeKey("")
	if first == "" {
		// No intake configured: commit straight away.
		return s.commit(ctx, p, sess)
	}
	sess.Step = session.Collect(first)
	return s.promptFor(p, first)
}

// stepCollect stores one intake answer and advances to the next field or the
// commit. Optional fields accept the literal "skip".
func (s *ConversationService) stepCollect(ctx context.Context, p business.Profile, sess *session.Session, key, input string) Reply {
	field, ok := p.IntakeField(key)
	if !ok {
		// Intake form changed under a live session.
		return Reply{Text: p.Copy.UnknownNext}
	}

	value := strings.TrimSpace(input)
	if !field.Required && strings.EqualFold(value, "skip") {
		value = ""
	}
	sess.SetIntake(key, value)

	if next := p.NextIntakeKey(key); next != "" {
		sess.Step = session.Collect(next)
		return s.promptFor(p, next)
	}
	return s.commit(ctx, p, sess)
}

// commit runs the ledger insert and maps its outcome onto the state machine:
// success confirms, a lost slot race rewinds to time selection with the date
// kept and the time cleared, and anything else keeps the state for a manual
// retry.
func (s *ConversationService) commit(ctx context.Context, p business.Profile, sess *session.Session) Reply {
	in := s.intakeFrom(p, sess)
	appt, err := s.Booking.Commit(ctx, p.ID, sess.UserID, sess.SelectedDate, sess.SelectedTime, in)
	switch {
	case err == nil:
		sess.Step = session.StepConfirmed
		return Reply{Text: p.Copy.RenderConfirm(s.displayName(in.Name), appt.Date, appt.Time)}
	case err == ErrSlotTaken:
		sess.Step = session.StepTimeSelected
		sess.SelectedTime = ""
		return Reply{Text: p.Copy.SlotTaken}
	default:
		log.Error().Err(err).Str("business", p.ID).Msg("booking commit failed")
		return Reply{Text: p.Copy.Retry}
	}
}

// stepConfirmed keeps answering until the user resets.
func (s *ConversationService) stepConfirmed(_ context.Context, p business.Profile, _ *session.Session, _ string) Reply {
	return Reply{Text: p.Copy.AlreadyConfirmed}
}

// classify runs the (fallback-wrapped) classifier under its own deadline.
func (s *ConversationService) classify(ctx context.Context, input string) intent.Intent {
	cctx, cancel := context.WithTimeout(ctx, s.ClassifierTimeout)
	defer cancel()
	in, err := s.Classifier.Classify(cctx, input)
	if err != nil {
		// Only reachable with a bare classifier; the fallback wrapper
		// recovers locally before this point.
		log.Warn().Err(err).Msg("intent classification failed")
		return intent.Other
	}
	return in
}

// promptFor returns the configured prompt for an intake field.
func (s *ConversationService) promptFor(p business.Profile, key string) Reply {
	if f, ok := p.IntakeField(key); ok {
		return Reply{Text: f.Prompt}
	}
	return Reply{Text: p.Copy.UnknownNext}
}

// intakeFrom maps collected session values onto appointment columns: "name"
// and "phone" are dedicated, everything else lands in the notes column in
// profile order.
func (s *ConversationService) intakeFrom(p business.Profile, sess *session.Session) Intake {
	in := Intake{Name: sess.Intake["name"]}
	if v, ok := sess.Intake["phone"]; ok && v != "" {
		phone := v
		in.Phone = &phone
	}
	var notes []string
	for _, f := range p.Intake {
		if f.Key == "name" || f.Key == "phone" {
			continue
		}
		if v := sess.Intake[f.Key]; v != "" {
			notes = append(notes, v)
		}
	}
	in.Notes = strings.Join(notes, "; ")
	return in
}

// displayName title-cases an all-lowercase name for the confirmation copy;
// anything the user cased themselves is left untouched.
func (s *ConversationService) displayName(name string) string {
	if name != "" && name == strings.ToLower(name) {
		return s.caser.String(name)
	}
	return name
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
