package models

import (
	"encoding/json"
	"time"

	"github.com/mikakort/IAPserver/pkg/enums"
)

// NotificationEvent is the append-only record of a raw inbound notification.
// The (receipt_id, notification_type) pair is the idempotency key.
type NotificationEvent struct {
	ID               int64                  `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ReceiptID        string                 `gorm:"column:receipt_id;not null;uniqueIndex:idx_events_receipt_type,priority:1" json:"receipt_id"`
	NotificationType enums.NotificationType `gorm:"column:notification_type;not null;uniqueIndex:idx_events_receipt_type,priority:2" json:"notification_type"`
	UserID           string                 `gorm:"column:user_id;not null;index" json:"user_id"`
	RawPayload       json.RawMessage        `gorm:"column:raw_payload;not null" json:"raw_payload"`
	ReceivedAt       time.Time              `gorm:"column:received_at;not null" json:"received_at"`
}

func (NotificationEvent) TableName() string {
	return "notification_events"
}
