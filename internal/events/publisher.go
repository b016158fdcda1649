// Package events publishes appointment lifecycle notifications for
// downstream consumers (reminder schedulers, analytics). Publishing is
// best-effort by design: the appointment row in SQLite is the source of
// truth, and a failed publish must never fail the booking itself.
package events

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"

	"github.com/tbourn/go-booking-backend/internal/domain"
)

// Event types carried on the topic.
const (
	TypeConfirmed  = "appointment.confirmed"
	TypeCancelled  = "appointment.cancelled"
	TypeReinstated = "appointment.reinstated"
)

// Payload is the JSON body of an appointment event. Intake details stay out
// of the payload; consumers that need them read the appointment by id.
type Payload struct {
	EventType     string    `json:"event_type"`
	AppointmentID string    `json:"appointment_id"`
	BusinessID    string    `json:"business_id"`
	UserID        string    `json:"user_id"`
	Date          string    `json:"date"`
	Time          string    `json:"time"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// Publisher emits appointment lifecycle events.
type Publisher interface {
	Publish(ctx context.Context, eventType string, appt *domain.Appointment) error
	Close() error
}

// Nop is the publisher used when no brokers are configured.
type Nop struct{}

// Publish discards the event.
func (Nop) Publish(context.Context, string, *domain.Appointment) error { return nil }

// Close is a no-op.
func (Nop) Close() error { return nil }

// Kafka publishes events to a single topic, keyed by appointment id so all
// events for one appointment land on the same partition in order.
type Kafka struct {
	writer *kafka.Writer
}

// NewKafka builds a publisher for the comma-separated broker list and topic.
func NewKafka(brokers, topic string) *Kafka {
	return &Kafka{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(SplitBrokers(brokers)...),
			Topic:    topic,
			Balancer: &kafka.Hash{},
		},
	}
}

// Publish writes one event. Errors are returned for the caller to log; the
// caller must not treat them as booking failures.
func (k *Kafka) Publish(ctx context.Context, eventType string, appt *domain.Appointment) error {
	body, err := json.Marshal(Payload{
		EventType:     eventType,
		AppointmentID: appt.ID,
		BusinessID:    appt.BusinessID,
		UserID:        appt.UserID,
		Date:          appt.Date,
		Time:          appt.Time,
		OccurredAt:    time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	return k.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(appt.ID),
		Value: body,
		Headers: []kafka.Header{
			{Key: "event_id", Value: []byte(appt.ID)},
			{Key: "event_type", Value: []byte(eventType)},
		},
	})
}

// Close flushes and closes the underlying writer.
func (k *Kafka) Close() error { return k.writer.Close() }

// SplitBrokers parses a comma-separated broker list, dropping blanks.
func SplitBrokers(raw string) []string {
	var brokers []string
	for _, b := range strings.Split(raw, ",") {
		b = strings.TrimSpace(b)
		if b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

// New returns a Kafka publisher when brokers are configured, otherwise Nop.
func New(brokers, topic string) Publisher {
	if len(SplitBrokers(brokers)) == 0 {
		log.Info().Msg("event publishing disabled (no kafka brokers configured)")
		return Nop{}
	}
	return NewKafka(brokers, topic)
}
