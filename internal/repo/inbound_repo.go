// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository helpers for the
// InboundMessage model used to drop replayed webhook deliveries.
package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-booking-backend/internal/domain"
)

// ErrDuplicate indicates that an inbound message with the same
// (channel, provider_id) pair has already been recorded.
var ErrDuplicate = errors.New("duplicate")

// RecordInbound inserts a provider message id and returns ErrDuplicate on a
// replay. The unique index makes the check-and-record atomic, so two
// concurrent deliveries of the same MessageSid cannot both pass.
func RecordInbound(ctx context.Context, db *gorm.DB, channel, providerID, userID string, ttl time.Duration) error {
	now := time.Now().UTC()
	rec := &domain.InboundMessage{
		ID:         uuid.NewString(),
		Channel:    channel,
		ProviderID: providerID,
		UserID:     userID,
		CreatedAt:  now,
		ExpiresAt:  now.Add(ttl),
	}
	if err := db.WithContext(ctx).Create(rec).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// PurgeExpiredInbound deletes dedupe records whose TTL has elapsed. The
// webhook handler runs it best-effort after each recorded delivery, which
// keeps the table bounded without a scheduler; losing a record after its TTL
// only re-opens the tiny replay window the TTL already accepts.
func PurgeExpiredInbound(ctx context.Context, db *gorm.DB, now time.Time) error {
	return db.WithContext(ctx).
		Where("expires_at <= ?", now).
		Delete(&domain.InboundMessage{}).Error
}
