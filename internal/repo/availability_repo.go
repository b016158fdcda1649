// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the
// AvailabilitySlot model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations.
// They follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - CreateSlot is idempotent: re-inserting an existing
//     (business_id, date, time) is a no-op, reported via the returned bool.
//   - When a slot is not found, DeleteSlot returns ErrNotFound.
//   - On DB errors (connectivity issues, etc.), the raw gorm error is
//     propagated.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/go-booking-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// CreateSlot inserts an availability slot for (businessID, date, t). The
// insert is idempotent: when a slot with the same natural key already exists
// the call succeeds without touching the row, mirroring the SQL
// INSERT ... ON CONFLICT DO NOTHING. The returned bool reports whether a new
// row was created.
func CreateSlot(ctx context.Context, db *gorm.DB, businessID, date, t string, capacity int) (*domain.AvailabilitySlot, bool, error) {
	if capacity < 1 {
		capacity = 1
	}
	slot := &domain.AvailabilitySlot{
		ID:         uuid.NewString(),
		BusinessID: businessID,
		Date:       date,
		Time:       t,
		Capacity:   capacity,
		CreatedAt:  time.Now().UTC(),
	}
	res := db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "business_id"}, {Name: "date"}, {Name: "time"}},
			DoNothing: true,
		}).
		Create(slot)
	if res.Error != nil {
		return nil, false, res.Error
	}
	if res.RowsAffected == 0 {
		// Duplicate: surface the stored row so callers see the real id.
		var existing domain.AvailabilitySlot
		err := db.WithContext(ctx).
			Where("business_id = ? AND date = ? AND time = ?", businessID, date, t).
			First(&existing).Error
		if err != nil {
			return nil, false, err
		}
		return &existing, false, nil
	}
	return slot, true, nil
}

// DeleteSlot removes a slot by id. Returns ErrNotFound when no row matches.
func DeleteSlot(ctx context.Context, db *gorm.DB, id string) error {
	res := db.WithContext(ctx).Delete(&domain.AvailabilitySlot{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListDates returns the distinct dates with any slot for businessID,
// ascending.
func ListDates(ctx context.Context, db *gorm.DB, businessID string) ([]string, error) {
	var out []string
	err := db.WithContext(ctx).
		Model(&domain.AvailabilitySlot{}).
		Distinct("date").
		Where("business_id = ?", businessID).
		Order("date asc").
		Pluck("date", &out).Error
	return out, err
}

// ListTimes returns the slot times for (businessID, date), ascending.
func ListTimes(ctx context.Context, db *gorm.DB, businessID, date string) ([]string, error) {
	var out []string
	err := db.WithContext(ctx).
		Model(&domain.AvailabilitySlot{}).
		Where("business_id = ? AND date = ?", businessID, date).
		Order("time asc").
		Pluck("time", &out).Error
	return out, err
}

// ListSlots returns all slots for businessID ordered by date then time,
// for the admin availability view.
func ListSlots(ctx context.Context, db *gorm.DB, businessID string) ([]domain.AvailabilitySlot, error) {
	var out []domain.AvailabilitySlot
	err := db.WithContext(ctx).
		Where("business_id = ?", businessID).
		Order("date asc, time asc").
		Find(&out).Error
	return out, err
}
