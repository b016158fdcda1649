// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Appointment
// model, including the slot-uniqueness compare-and-insert that serializes
// concurrent booking commits.
//
// Error semantics:
//   - ErrSlotTaken is returned when an insert or reinstate collides with the
//     partial unique index over confirmed rows. This is the authoritative
//     conflict check: the free-times read before a commit is advisory only.
//   - ErrNotFound is returned for status updates against a missing id.
//   - On other DB errors the raw gorm error is propagated.
package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-booking-backend/internal/domain"
)

// ErrSlotTaken indicates that a confirmed appointment already occupies the
// (business, date, time) slot.
var ErrSlotTaken = errors.New("slot already booked")

// isUniqueViolation detects unique-constraint violations across drivers that
// may not map to gorm.ErrDuplicatedKey. glebarez/sqlite often returns
// plain-text errors for UNIQUE violations.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	low := strings.ToLower(err.Error())
	return strings.Contains(low, "unique constraint failed") ||
		strings.Contains(low, "constraint failed: unique") ||
		strings.Contains(low, "duplicate key")
}

// CreateAppointment inserts a confirmed appointment for the given slot and
// intake values. The insert races directly against the partial unique index;
// when another confirmed appointment already holds the slot the database
// rejects the row and ErrSlotTaken is returned. Exactly one of any set of
// concurrent commits for the same slot can succeed.
func CreateAppointment(ctx context.Context, db *gorm.DB, businessID, userID, date, t, clientName string, clientPhone *string, notes string) (*domain.Appointment, error) {
	appt := &domain.Appointment{
		ID:          uuid.NewString(),
		BusinessID:  businessID,
		UserID:      userID,
		Date:        date,
		Time:        t,
		Status:      domain.StatusConfirmed,
		ClientName:  clientName,
		ClientPhone: clientPhone,
		Notes:       notes,
		CreatedAt:   time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(appt).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrSlotTaken
		}
		return nil, err
	}
	return appt, nil
}

// GetAppointment fetches an appointment by id, or ErrNotFound.
func GetAppointment(ctx context.Context, db *gorm.DB, id string) (*domain.Appointment, error) {
	var a domain.Appointment
	if err := db.WithContext(ctx).First(&a, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

// BookedTimes returns the times with a confirmed appointment for
// (businessID, date). Cancelled rows do not count.
func BookedTimes(ctx context.Context, db *gorm.DB, businessID, date string) ([]string, error) {
	var out []string
	err := db.WithContext(ctx).
		Model(&domain.Appointment{}).
		Where("business_id = ? AND date = ? AND status = ?", businessID, date, domain.StatusConfirmed).
		Pluck("time", &out).Error
	return out, err
}

// UpdateAppointmentStatus sets the status of an appointment by id. Setting a
// row to its current status is a no-op that still succeeds, which makes
// cancel idempotent. Reinstating into an occupied slot trips the partial
// unique index and returns ErrSlotTaken. Returns ErrNotFound when the id
// does not exist.
func UpdateAppointmentStatus(ctx context.Context, db *gorm.DB, id, status string) error {
	res := db.WithContext(ctx).
		Model(&domain.Appointment{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		if isUniqueViolation(res.Error) {
			return ErrSlotTaken
		}
		return res.Error
	}
	if res.RowsAffected == 0 {
		// Distinguish "missing row" from "already in this status": UPDATE
		// reports zero affected rows for both under SQLite.
		var count int64
		if err := db.WithContext(ctx).
			Model(&domain.Appointment{}).
			Where("id = ?", id).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrNotFound
		}
	}
	return nil
}

// CountAppointments returns the number of appointments for businessID.
func CountAppointments(ctx context.Context, db *gorm.DB, businessID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Appointment{}).
		Where("business_id = ?", businessID).
		Count(&total).Error
	return total, err
}

// ListAppointmentsPage returns a page of appointments for the admin view,
// confirmed rows first, then by date and time ascending. The caller computes
// offset and limit.
func ListAppointmentsPage(ctx context.Context, db *gorm.DB, businessID string, offset, limit int) ([]domain.Appointment, error) {
	var out []domain.Appointment
	err := db.WithContext(ctx).
		Where("business_id = ?", businessID).
		Order("CASE status WHEN 'confirmed' THEN 0 ELSE 1 END, date asc, time asc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}
