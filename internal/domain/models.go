// Package domain defines the persistence models for availability slots and
// appointments. These types are mapped with GORM and form the core data layer
// of the booking application.
package domain

import "time"

// Appointment statuses. The slot-uniqueness constraint applies only to
// confirmed rows; cancelled rows are kept for the admin audit trail and may
// coexist with a later confirmed booking of the same slot.
const (
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
)

// AvailabilitySlot is a bookable (business, date, time) unit published by an
// administrator. Slots are immutable from the conversation engine's point of
// view; only the admin surface creates or deletes them.
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - BusinessID: owning business; part of the natural key.
//   - Date: ISO 8601 calendar date ("2025-12-20").
//   - Time: 24h wall clock ("10:00").
//   - Capacity: informational slot capacity (>= 1). A confirmed appointment
//     consumes the whole slot regardless of capacity.
//   - CreatedAt: timestamp managed by GORM.
//
// The (business_id, date, time) triple is unique; duplicate inserts are
// treated as no-ops by the repository layer.
type AvailabilitySlot struct {
	ID         string    `json:"id"          gorm:"type:char(36);primaryKey"`
	BusinessID string    `json:"business_id" gorm:"type:varchar(64);not null;uniqueIndex:ux_slot_biz_date_time,priority:1"`
	Date       string    `json:"date"        gorm:"type:varchar(10);not null;uniqueIndex:ux_slot_biz_date_time,priority:2"`
	Time       string    `json:"time"        gorm:"type:varchar(5);not null;uniqueIndex:ux_slot_biz_date_time,priority:3"`
	Capacity   int       `json:"capacity"    gorm:"not null;default:1;check:capacity >= 1"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName returns the database table name for AvailabilitySlot.
func (AvailabilitySlot) TableName() string { return "availability" }

// Appointment is a booking created by the conversation engine on a successful
// commit. At most one appointment with status 'confirmed' may exist per
// (business_id, date, time); the constraint is enforced by a partial unique
// index created in repo.Migrate, because GORM tags cannot express filtered
// indexes.
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - BusinessID / UserID: booking scope; user ids are opaque, channel-scoped
//     strings (web session ids, "whatsapp:+353..." numbers, ...).
//   - Date / Time: the booked slot, same formats as AvailabilitySlot.
//   - Status: StatusConfirmed or StatusCancelled.
//   - ClientName: intake "name" field, stored verbatim.
//   - ClientPhone: optional intake "phone" field; nil when skipped.
//   - Notes: remaining intake fields (reason / goal / property ...).
//   - CreatedAt / UpdatedAt: timestamps managed by GORM.
type Appointment struct {
	ID          string    `json:"id"           gorm:"type:char(36);primaryKey"`
	BusinessID  string    `json:"business_id"  gorm:"type:varchar(64);not null;index:idx_appt_biz_date,priority:1"`
	UserID      string    `json:"user_id"      gorm:"type:varchar(128);not null;index"`
	Date        string    `json:"date"         gorm:"type:varchar(10);not null;index:idx_appt_biz_date,priority:2"`
	Time        string    `json:"time"         gorm:"type:varchar(5);not null"`
	Status      string    `json:"status"       gorm:"type:varchar(16);not null;default:'confirmed';check:status IN ('confirmed','cancelled')"`
	ClientName  string    `json:"client_name"  gorm:"type:varchar(255);not null"`
	ClientPhone *string   `json:"client_phone,omitempty" gorm:"type:varchar(32)"`
	Notes       string    `json:"notes"        gorm:"type:text"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName returns the database table name for Appointment.
func (Appointment) TableName() string { return "appointments" }

// Confirmed reports whether the appointment currently counts against the
// slot-uniqueness constraint.
func (a Appointment) Confirmed() bool { return a.Status == StatusConfirmed }
