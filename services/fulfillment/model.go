package fulfillment

import (
	"time"

	"gorm.io/datatypes"
)

// WebhookEvent is the audit trail of received provider events. Inserts are
// best-effort and never block fulfillment itself; idempotency comes from the
// keyed customer upsert, not from this table.
type WebhookEvent struct {
	ID              string         `gorm:"column:id;primaryKey"`
	ProviderEventID string         `gorm:"column:provider_event_id;uniqueIndex"`
	EventType       string         `gorm:"column:event_type;index"`
	Payload         datatypes.JSON `gorm:"column:payload"`
	ProcessedAt     *time.Time     `gorm:"column:processed_at"`
	ProcessingError string         `gorm:"column:processing_error"`
	CreatedAt       time.Time      `gorm:"column:created_at;autoCreateTime"`
}

func (WebhookEvent) TableName() string {
	return "webhook_events"
}
