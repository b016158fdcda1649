// Package services – BookingService
//
// This file implements the BookingService, the ledger and slot resolver for
// appointments. It owns the two-phase booking design: free times are computed
// optimistically for display, and the only authoritative exclusion point is
// the partial unique index over confirmed appointment rows, hit at commit
// time. Two concurrent sessions may both see a slot as free; exactly one
// commit succeeds and the loser receives ErrSlotTaken. Commits are not
// serialized behind a lock — the database constraint already guarantees
// mutual exclusion, and a lock would only cost throughput.
//
// The service also exposes the administrative ledger operations (cancel,
// reinstate, list) and availability management consumed by the admin surface.
//
// Observability: booking outcomes increment Prometheus counters, and
// confirmed/cancelled/reinstated appointments are published as best-effort
// events; a publish failure is logged, never surfaced.
package services

import (
	"context"
	"errors"
	"regexp"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/tbourn/go-booking-backend/internal/dates"
	"github.com/tbourn/go-booking-backend/internal/domain"
	"github.com/tbourn/go-booking-backend/internal/events"
	"github.com/tbourn/go-booking-backend/internal/repo"
)

// timeRE validates the 24h HH:MM wall clock stored on slots.
var timeRE = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

// Intake carries the collected booking details mapped to appointment columns.
type Intake struct {
	Name  string
	Phone *string
	Notes string
}

// BookingService provides slot resolution and the appointment ledger.
type BookingService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Events receives appointment lifecycle notifications; never nil
	// (use events.Nop when publishing is disabled).
	Events events.Publisher
}

// NewBookingService constructs a BookingService. A nil publisher defaults
// to events.Nop.
func NewBookingService(db *gorm.DB, pub events.Publisher) *BookingService {
	if pub == nil {
		pub = events.Nop{}
	}
	return &BookingService{DB: db, Events: pub}
}

// AvailableDates returns the distinct dates with any published slot for the
// business, ascending.
func (s *BookingService) AvailableDates(ctx context.Context, businessID string) ([]string, error) {
	return repo.ListDates(ctx, s.DB, businessID)
}

// FreeTimes returns the published times for (businessID, date) minus the
// times already held by a confirmed appointment, ascending. The result is
// advisory: it narrows what is offered to the user but the commit-time
// constraint remains the authority.
func (s *BookingService) FreeTimes(ctx context.Context, businessID, date string) ([]string, error) {
	avail, err := repo.ListTimes(ctx, s.DB, businessID, date)
	if err != nil {
		return nil, err
	}
	booked, err := repo.BookedTimes(ctx, s.DB, businessID, date)
	if err != nil {
		return nil, err
	}
	taken := make(map[string]struct{}, len(booked))
	for _, t := range booked {
		taken[t] = struct{}{}
	}
	free := make([]string, 0, len(avail))
	for _, t := range avail {
		if _, ok := taken[t]; !ok {
			free = append(free, t)
		}
	}
	return free, nil
}

// Commit attempts to book (businessID, date, t) for userID with the given
// intake details. The slot must still be published in the availability store;
// the confirmed insert then races against the partial unique index. On a
// lost race it returns ErrSlotTaken. On success the created appointment is
// returned and an appointment.confirmed event is published.
func (s *BookingService) Commit(ctx context.Context, businessID, userID, date, t string, in Intake) (*domain.Appointment, error) {
	var appt *domain.Appointment
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// The slot must still exist: an administrator may have withdrawn it
		// mid-conversation.
		times, err := repo.ListTimes(ctx, tx, businessID, date)
		if err != nil {
			return err
		}
		published := false
		for _, at := range times {
			if at == t {
				published = true
				break
			}
		}
		if !published {
			return ErrSlotTaken
		}

		a, err := repo.CreateAppointment(ctx, tx, businessID, userID, date, t, in.Name, in.Phone, in.Notes)
		if err != nil {
			if errors.Is(err, repo.ErrSlotTaken) {
				return ErrSlotTaken
			}
			return err
		}
		appt = a
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrSlotTaken) {
			slotConflicts.WithLabelValues(businessID).Inc()
		}
		return nil, err
	}

	bookingsConfirmed.WithLabelValues(businessID).Inc()
	s.publish(ctx, events.TypeConfirmed, appt)
	return appt, nil
}

// Cancel sets an appointment to cancelled, freeing its slot. Cancelling an
// already-cancelled appointment is an idempotent no-op. Returns
// ErrAppointmentNotFound for an unknown id.
func (s *BookingService) Cancel(ctx context.Context, id string) error {
	appt, err := repo.GetAppointment(ctx, s.DB, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAppointmentNotFound
		}
		return err
	}
	if appt.Status == domain.StatusCancelled {
		return nil
	}
	if err := repo.UpdateAppointmentStatus(ctx, s.DB, id, domain.StatusCancelled); err != nil {
		return err
	}
	appt.Status = domain.StatusCancelled
	s.publish(ctx, events.TypeCancelled, appt)
	return nil
}

// Reinstate sets a cancelled appointment back to confirmed. The update
// re-checks the slot-uniqueness invariant: when another confirmed
// appointment has taken the slot in the meantime, ErrSlotTaken is returned
// and the row stays cancelled. Reinstating a confirmed appointment is a
// no-op.
func (s *BookingService) Reinstate(ctx context.Context, id string) error {
	appt, err := repo.GetAppointment(ctx, s.DB, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAppointmentNotFound
		}
		return err
	}
	if appt.Status == domain.StatusConfirmed {
		return nil
	}
	if err := repo.UpdateAppointmentStatus(ctx, s.DB, id, domain.StatusConfirmed); err != nil {
		if errors.Is(err, repo.ErrSlotTaken) {
			slotConflicts.WithLabelValues(appt.BusinessID).Inc()
			return ErrSlotTaken
		}
		return err
	}
	appt.Status = domain.StatusConfirmed
	s.publish(ctx, events.TypeReinstated, appt)
	return nil
}

// ListPage returns a page of appointments for the admin view, confirmed
// first, and the total count. It applies defaults for invalid page/pageSize.
func (s *BookingService) ListPage(ctx context.Context, businessID string, page, pageSize int) ([]domain.Appointment, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	total, err := repo.CountAppointments(ctx, s.DB, businessID)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Appointment{}, 0, nil
	}

	items, err := repo.ListAppointmentsPage(ctx, s.DB, businessID, offset, pageSize)
	return items, total, err
}

// AddSlot publishes an availability slot. The insert is idempotent: a
// duplicate (business, date, time) succeeds and returns the stored slot with
// created=false. Malformed dates or times are rejected with ErrInvalidSlot.
func (s *BookingService) AddSlot(ctx context.Context, businessID, date, t string, capacity int) (*domain.AvailabilitySlot, bool, error) {
	if !dates.Valid(date) || !timeRE.MatchString(t) {
		return nil, false, ErrInvalidSlot
	}
	return repo.CreateSlot(ctx, s.DB, businessID, date, t, capacity)
}

// RemoveSlot deletes an availability slot by id. Returns ErrSlotNotFound for
// an unknown id. Existing confirmed appointments are untouched: withdrawing
// a slot stops new bookings but does not cancel old ones.
func (s *BookingService) RemoveSlot(ctx context.Context, id string) error {
	if err := repo.DeleteSlot(ctx, s.DB, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrSlotNotFound
		}
		return err
	}
	return nil
}

// ListSlots returns all published slots for the business, ordered by date
// then time.
func (s *BookingService) ListSlots(ctx context.Context, businessID string) ([]domain.AvailabilitySlot, error) {
	return repo.ListSlots(ctx, s.DB, businessID)
}

// publish emits a lifecycle event without letting a broker failure reach the
// booking path.
func (s *BookingService) publish(ctx context.Context, eventType string, appt *domain.Appointment) {
	if err := s.Events.Publish(ctx, eventType, appt); err != nil {
		log.Warn().Err(err).
			Str("event_type", eventType).
			Str("appointment_id", appt.ID).
			Msg("event publish failed")
	}
}
