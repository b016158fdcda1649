package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"sync"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-booking-backend/internal/domain"
	"github.com/tbourn/go-booking-backend/internal/events"
	"github.com/tbourn/go-booking-backend/internal/repo"
)

func newServiceDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), fmt.Sprintf("service_test_%d.db", time.Now().UnixNano()))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	if err := repo.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// capturingPublisher records published events for assertions.
type capturingPublisher struct {
	mu     sync.Mutex
	events []string
}

func (p *capturingPublisher) Publish(_ context.Context, eventType string, _ *domain.Appointment) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, eventType)
	return nil
}

func (p *capturingPublisher) Close() error { return nil }

func (p *capturingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.events...)
}

func seedSlots(t *testing.T, svc *BookingService, businessID string, slots map[string][]string) {
	t.Helper()
	for date, times := range slots {
		for _, tm := range times {
			if _, _, err := svc.AddSlot(context.Background(), businessID, date, tm, 1); err != nil {
				t.Fatalf("seed %s %s: %v", date, tm, err)
			}
		}
	}
}

func TestFreeTimes_ExcludesBooked(t *testing.T) {
	db := newServiceDB(t)
	svc := NewBookingService(db, nil)
	ctx := context.Background()
	seedSlots(t, svc, "gp", map[string][]string{"2025-12-20": {"10:00", "11:00", "12:00"}})

	if _, err := svc.Commit(ctx, "gp", "u1", "2025-12-20", "11:00", Intake{Name: "A"}); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	free, err := svc.FreeTimes(ctx, "gp", "2025-12-20")
	if err != nil {
		t.Fatalf("FreeTimes: %v", err)
	}
	if !reflect.DeepEqual(free, []string{"10:00", "12:00"}) {
		t.Fatalf("free times: got %v", free)
	}
}

func TestCommit_SlotMustBePublished(t *testing.T) {
	db := newServiceDB(t)
	svc := NewBookingService(db, nil)
	ctx := context.Background()
	seedSlots(t, svc, "gp", map[string][]string{"2025-12-20": {"10:00"}})

	_, err := svc.Commit(ctx, "gp", "u1", "2025-12-20", "23:00", Intake{Name: "A"})
	if !errors.Is(err, ErrSlotTaken) {
		t.Fatalf("unpublished time: got %v", err)
	}
	_, err = svc.Commit(ctx, "gp", "u1", "2025-12-25", "10:00", Intake{Name: "A"})
	if !errors.Is(err, ErrSlotTaken) {
		t.Fatalf("unpublished date: got %v", err)
	}
}

func TestCommit_ConcurrentSameSlot_OneWinner(t *testing.T) {
	db := newServiceDB(t)
	svc := NewBookingService(db, nil)
	ctx := context.Background()
	seedSlots(t, svc, "gp", map[string][]string{"2025-12-20": {"11:00"}})

	const n = 6
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.Commit(ctx, "gp", fmt.Sprintf("u%d", i), "2025-12-20", "11:00", Intake{Name: "Racer"})
			if err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			} else if !errors.Is(err, ErrSlotTaken) {
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	if successes != 1 {
		t.Fatalf("expected exactly one winning commit, got %d", successes)
	}
}

func TestCommit_PublishesEvent(t *testing.T) {
	db := newServiceDB(t)
	pub := &capturingPublisher{}
	svc := NewBookingService(db, pub)
	ctx := context.Background()
	seedSlots(t, svc, "gp", map[string][]string{"2025-12-20": {"11:00"}})

	phone := "+353851234567"
	appt, err := svc.Commit(ctx, "gp", "u1", "2025-12-20", "11:00", Intake{Name: "John", Phone: &phone, Notes: "cough"})
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if appt.ClientName != "John" || appt.Notes != "cough" {
		t.Fatalf("intake not mapped: %+v", appt)
	}
	if got := pub.types(); !reflect.DeepEqual(got, []string{events.TypeConfirmed}) {
		t.Fatalf("events: got %v", got)
	}
}

func TestCancel_FreesSlotAndIsIdempotent(t *testing.T) {
	db := newServiceDB(t)
	pub := &capturingPublisher{}
	svc := NewBookingService(db, pub)
	ctx := context.Background()
	seedSlots(t, svc, "gp", map[string][]string{"2025-12-20": {"11:00"}})

	appt, err := svc.Commit(ctx, "gp", "u1", "2025-12-20", "11:00", Intake{Name: "A"})
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}

	if err := svc.Cancel(ctx, appt.ID); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	// Second cancel is a no-op, not an error, and publishes nothing new.
	if err := svc.Cancel(ctx, appt.ID); err != nil {
		t.Fatalf("repeat Cancel: %v", err)
	}

	free, err := svc.FreeTimes(ctx, "gp", "2025-12-20")
	if err != nil {
		t.Fatalf("FreeTimes: %v", err)
	}
	if !reflect.DeepEqual(free, []string{"11:00"}) {
		t.Fatalf("cancelled slot should be free again: %v", free)
	}

	if got := pub.types(); !reflect.DeepEqual(got, []string{events.TypeConfirmed, events.TypeCancelled}) {
		t.Fatalf("events: got %v", got)
	}

	if err := svc.Cancel(ctx, "e5cb39be-0000-0000-0000-000000000000"); !errors.Is(err, ErrAppointmentNotFound) {
		t.Fatalf("unknown id: got %v", err)
	}
}

func TestReinstate(t *testing.T) {
	db := newServiceDB(t)
	pub := &capturingPublisher{}
	svc := NewBookingService(db, pub)
	ctx := context.Background()
	seedSlots(t, svc, "gp", map[string][]string{"2025-12-20": {"11:00"}})

	appt, err := svc.Commit(ctx, "gp", "u1", "2025-12-20", "11:00", Intake{Name: "A"})
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if err := svc.Cancel(ctx, appt.ID); err != nil {
		t.Fatalf("Cancel: %v", err)
	}

	if err := svc.Reinstate(ctx, appt.ID); err != nil {
		t.Fatalf("Reinstate: %v", err)
	}
	// Reinstating a confirmed appointment is a no-op.
	if err := svc.Reinstate(ctx, appt.ID); err != nil {
		t.Fatalf("repeat Reinstate: %v", err)
	}

	if got := pub.types(); !reflect.DeepEqual(got, []string{events.TypeConfirmed, events.TypeCancelled, events.TypeReinstated}) {
		t.Fatalf("events: got %v", got)
	}
}

func TestReinstate_SlotTakenMeanwhile(t *testing.T) {
	db := newServiceDB(t)
	svc := NewBookingService(db, nil)
	ctx := context.Background()
	seedSlots(t, svc, "gp", map[string][]string{"2025-12-20": {"11:00"}})

	first, err := svc.Commit(ctx, "gp", "u1", "2025-12-20", "11:00", Intake{Name: "A"})
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if err := svc.Cancel(ctx, first.ID); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if _, err := svc.Commit(ctx, "gp", "u2", "2025-12-20", "11:00", Intake{Name: "B"}); err != nil {
		t.Fatalf("rebook: %v", err)
	}

	if err := svc.Reinstate(ctx, first.ID); !errors.Is(err, ErrSlotTaken) {
		t.Fatalf("expected ErrSlotTaken, got %v", err)
	}
}

func TestAddSlot_Validation(t *testing.T) {
	db := newServiceDB(t)
	svc := NewBookingService(db, nil)
	ctx := context.Background()

	bad := []struct{ date, tm string }{
		{"tomorrow", "11:00"},
		{"2025-13-40", "11:00"},
		{"2025-12-20", "25:00"},
		{"2025-12-20", "9am"},
	}
	for _, tc := range bad {
		if _, _, err := svc.AddSlot(ctx, "gp", tc.date, tc.tm, 1); !errors.Is(err, ErrInvalidSlot) {
			t.Fatalf("AddSlot(%q, %q): got %v", tc.date, tc.tm, err)
		}
	}

	slot, created, err := svc.AddSlot(ctx, "gp", "2025-12-20", "09:00", 1)
	if err != nil || !created {
		t.Fatalf("valid slot: created=%v err=%v", created, err)
	}
	if slot.BusinessID != "gp" {
		t.Fatalf("slot: %+v", slot)
	}
}

func TestRemoveSlot(t *testing.T) {
	db := newServiceDB(t)
	svc := NewBookingService(db, nil)
	ctx := context.Background()

	slot, _, err := svc.AddSlot(ctx, "gp", "2025-12-20", "09:00", 1)
	if err != nil {
		t.Fatalf("AddSlot: %v", err)
	}
	if err := svc.RemoveSlot(ctx, slot.ID); err != nil {
		t.Fatalf("RemoveSlot: %v", err)
	}
	if err := svc.RemoveSlot(ctx, slot.ID); !errors.Is(err, ErrSlotNotFound) {
		t.Fatalf("expected ErrSlotNotFound, got %v", err)
	}
}

func TestListPage(t *testing.T) {
	db := newServiceDB(t)
	svc := NewBookingService(db, nil)
	ctx := context.Background()
	seedSlots(t, svc, "gp", map[string][]string{"2025-12-20": {"09:00", "10:00", "11:00"}})

	for i, tm := range []string{"09:00", "10:00", "11:00"} {
		if _, err := svc.Commit(ctx, "gp", fmt.Sprintf("u%d", i), "2025-12-20", tm, Intake{Name: "X"}); err != nil {
			t.Fatalf("Commit %s: %v", tm, err)
		}
	}

	page, total, err := svc.ListPage(ctx, "gp", 1, 2)
	if err != nil {
		t.Fatalf("ListPage: %v", err)
	}
	if total != 3 || len(page) != 2 {
		t.Fatalf("page 1: total=%d len=%d", total, len(page))
	}
	page, total, err = svc.ListPage(ctx, "gp", 2, 2)
	if err != nil || total != 3 || len(page) != 1 {
		t.Fatalf("page 2: total=%d len=%d err=%v", total, len(page), err)
	}
}
