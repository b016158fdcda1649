// Package domain defines the core persistence models for the application.
// These types are used by GORM for database schema mapping and are shared
// across the repository and service layers.
package domain

import "time"

// InboundMessage records a provider-assigned message id that has already been
// processed, keyed by (channel, provider_id). Messaging providers such as
// Twilio retry webhook deliveries on slow responses; recording the MessageSid
// lets the webhook handler drop replays instead of feeding the same turn into
// the conversation engine twice.
type InboundMessage struct {
	ID         string    `gorm:"type:TEXT NOT NULL;primaryKey"`
	Channel    string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_channel_provider_id,priority:1"`
	ProviderID string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_channel_provider_id,priority:2"`
	UserID     string    `gorm:"type:TEXT NOT NULL"`
	CreatedAt  time.Time `gorm:"type:DATETIME NOT NULL;autoCreateTime"`
	ExpiresAt  time.Time `gorm:"type:DATETIME NOT NULL;index"`
}

// TableName implements the GORM tabler interface.
func (InboundMessage) TableName() string { return "inbound_messages" }
