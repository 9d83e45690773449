package models

import (
	"time"

	"github.com/mikakort/IAPserver/pkg/enums"
)

// WebhookDelivery is the append-only outcome log for webhook dispatch
// attempts. One row is written per ingestion when a target is configured,
// and one not_configured row when it is not.
type WebhookDelivery struct {
	ID                  int64                 `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	NotificationEventID int64                 `gorm:"column:notification_event_id;not null;index" json:"notification_event_id"`
	AttemptedAt         time.Time             `gorm:"column:attempted_at;not null" json:"attempted_at"`
	Outcome             enums.DeliveryOutcome `gorm:"column:outcome;not null;index" json:"outcome"`
	ResponseSummary     string                `gorm:"column:response_summary" json:"response_summary"`
}

func (WebhookDelivery) TableName() string {
	return "webhook_deliveries"
}
