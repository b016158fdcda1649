package repo

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-booking-backend/internal/domain"
)

// newBookingDB opens a file-backed SQLite database with the full schema,
// including the partial unique index the booking commit relies on.
func newBookingDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), fmt.Sprintf("booking_test_%d.db", time.Now().UnixNano()))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	// Ensure the file handle is released before TempDir cleanup (Windows needs this).
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	if err := Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestCreateAppointment_Success(t *testing.T) {
	db := newBookingDB(t)
	phone := "+353851234567"

	appt, err := CreateAppointment(context.Background(), db, "gp", "u1", "2025-12-20", "11:00", "John Murphy", &phone, "cough")
	if err != nil {
		t.Fatalf("CreateAppointment: %v", err)
	}
	if appt.ID == "" || appt.Status != domain.StatusConfirmed {
		t.Fatalf("unexpected appointment: %+v", appt)
	}
	if appt.ClientPhone == nil || *appt.ClientPhone != phone {
		t.Fatalf("phone not stored: %+v", appt)
	}

	got, err := GetAppointment(context.Background(), db, appt.ID)
	if err != nil {
		t.Fatalf("GetAppointment: %v", err)
	}
	if got.ClientName != "John Murphy" || got.Notes != "cough" {
		t.Fatalf("unexpected stored row: %+v", got)
	}
}

func TestCreateAppointment_SlotTaken(t *testing.T) {
	db := newBookingDB(t)
	ctx := context.Background()

	if _, err := CreateAppointment(ctx, db, "gp", "u1", "2025-12-20", "11:00", "First", nil, ""); err != nil {
		t.Fatalf("first booking: %v", err)
	}
	_, err := CreateAppointment(ctx, db, "gp", "u2", "2025-12-20", "11:00", "Second", nil, "")
	if !errors.Is(err, ErrSlotTaken) {
		t.Fatalf("expected ErrSlotTaken, got %v", err)
	}

	// A different time, business, or date does not collide.
	if _, err := CreateAppointment(ctx, db, "gp", "u2", "2025-12-20", "12:00", "Second", nil, ""); err != nil {
		t.Fatalf("different time: %v", err)
	}
	if _, err := CreateAppointment(ctx, db, "fitness", "u2", "2025-12-20", "11:00", "Second", nil, ""); err != nil {
		t.Fatalf("different business: %v", err)
	}
}

func TestCreateAppointment_ConcurrentCommits_ExactlyOneWins(t *testing.T) {
	db := newBookingDB(t)
	ctx := context.Background()

	const n = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := CreateAppointment(ctx, db, "gp", fmt.Sprintf("u%d", i), "2025-12-20", "11:00", "Racer", nil, "")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, ErrSlotTaken):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	if successes != 1 {
		t.Fatalf("expected exactly one winner, got %d (conflicts=%d)", successes, conflicts)
	}
	if conflicts != n-1 {
		t.Fatalf("expected %d conflicts, got %d", n-1, conflicts)
	}
}

func TestBookedTimes_IgnoresCancelled(t *testing.T) {
	db := newBookingDB(t)
	ctx := context.Background()

	a1, _ := CreateAppointment(ctx, db, "gp", "u1", "2025-12-20", "11:00", "A", nil, "")
	if _, err := CreateAppointment(ctx, db, "gp", "u2", "2025-12-20", "12:00", "B", nil, ""); err != nil {
		t.Fatalf("second booking: %v", err)
	}

	if err := UpdateAppointmentStatus(ctx, db, a1.ID, domain.StatusCancelled); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	booked, err := BookedTimes(ctx, db, "gp", "2025-12-20")
	if err != nil {
		t.Fatalf("BookedTimes: %v", err)
	}
	if len(booked) != 1 || booked[0] != "12:00" {
		t.Fatalf("expected only confirmed times, got %v", booked)
	}
}

func TestUpdateAppointmentStatus_CancelFreesSlot(t *testing.T) {
	db := newBookingDB(t)
	ctx := context.Background()

	a1, _ := CreateAppointment(ctx, db, "gp", "u1", "2025-12-20", "11:00", "A", nil, "")
	if err := UpdateAppointmentStatus(ctx, db, a1.ID, domain.StatusCancelled); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	// The freed slot is bookable again; the cancelled row remains.
	if _, err := CreateAppointment(ctx, db, "gp", "u2", "2025-12-20", "11:00", "B", nil, ""); err != nil {
		t.Fatalf("rebook after cancel: %v", err)
	}
	total, err := CountAppointments(ctx, db, "gp")
	if err != nil || total != 2 {
		t.Fatalf("expected 2 rows (audit trail), got %d err=%v", total, err)
	}
}

func TestUpdateAppointmentStatus_ReinstateConflict(t *testing.T) {
	db := newBookingDB(t)
	ctx := context.Background()

	a1, _ := CreateAppointment(ctx, db, "gp", "u1", "2025-12-20", "11:00", "A", nil, "")
	if err := UpdateAppointmentStatus(ctx, db, a1.ID, domain.StatusCancelled); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if _, err := CreateAppointment(ctx, db, "gp", "u2", "2025-12-20", "11:00", "B", nil, ""); err != nil {
		t.Fatalf("rebook: %v", err)
	}

	err := UpdateAppointmentStatus(ctx, db, a1.ID, domain.StatusConfirmed)
	if !errors.Is(err, ErrSlotTaken) {
		t.Fatalf("expected ErrSlotTaken on reinstate into occupied slot, got %v", err)
	}
}

func TestUpdateAppointmentStatus_IdempotentAndMissing(t *testing.T) {
	db := newBookingDB(t)
	ctx := context.Background()

	a1, _ := CreateAppointment(ctx, db, "gp", "u1", "2025-12-20", "11:00", "A", nil, "")

	// Same-status update is a successful no-op.
	if err := UpdateAppointmentStatus(ctx, db, a1.ID, domain.StatusConfirmed); err != nil {
		t.Fatalf("same-status update: %v", err)
	}

	if err := UpdateAppointmentStatus(ctx, db, "no-such-id", domain.StatusCancelled); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListAppointmentsPage_ConfirmedFirst(t *testing.T) {
	db := newBookingDB(t)
	ctx := context.Background()

	a1, _ := CreateAppointment(ctx, db, "gp", "u1", "2025-12-20", "09:00", "A", nil, "")
	if _, err := CreateAppointment(ctx, db, "gp", "u2", "2025-12-19", "10:00", "B", nil, ""); err != nil {
		t.Fatalf("booking: %v", err)
	}
	if err := UpdateAppointmentStatus(ctx, db, a1.ID, domain.StatusCancelled); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	page, err := ListAppointmentsPage(ctx, db, "gp", 0, 10)
	if err != nil {
		t.Fatalf("ListAppointmentsPage: %v", err)
	}
	if len(page) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(page))
	}
	if page[0].Status != domain.StatusConfirmed || page[1].Status != domain.StatusCancelled {
		t.Fatalf("expected confirmed first: %v then %v", page[0].Status, page[1].Status)
	}
}

func TestGetAppointment_NotFound(t *testing.T) {
	db := newBookingDB(t)
	_, err := GetAppointment(context.Background(), db, "no-such-id")
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected record-not-found, got %v", err)
	}
}
