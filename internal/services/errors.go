// Package services defines the business logic for availability, bookings,
// and the conversation engine. This file centralizes common service-level
// error values so that they can be consistently returned by service methods
// and checked by callers.
//
// These errors are intended for internal use by the service layer and
// translation into user-facing messages or HTTP status codes should be
// performed at the handler/engine layer.
package services

import "errors"

var (
	// ErrSlotTaken indicates that a commit or reinstate lost the race for a
	// slot: a confirmed appointment already occupies (business, date, time).
	ErrSlotTaken = errors.New("slot already booked")

	// ErrAppointmentNotFound indicates that the requested appointment id
	// does not exist.
	ErrAppointmentNotFound = errors.New("appointment not found")

	// ErrSlotNotFound indicates that the requested availability slot id
	// does not exist.
	ErrSlotNotFound = errors.New("availability slot not found")

	// ErrInvalidSlot is returned when an availability slot is created with a
	// malformed date or time.
	ErrInvalidSlot = errors.New("slot date must be YYYY-MM-DD and time HH:MM")
)
