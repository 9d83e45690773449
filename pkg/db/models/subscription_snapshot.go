package models

import (
	"time"

	"github.com/mikakort/IAPserver/pkg/enums"
)

// SubscriptionSnapshot is the current known state of one user's subscription,
// derived solely from the most recently applied notification. Rows are never
// deleted; expired subscriptions are retained for audit.
type SubscriptionSnapshot struct {
	UserID                  string                   `gorm:"column:user_id;primaryKey" json:"user_id"`
	ProductID               string                   `gorm:"column:product_id" json:"product_id"`
	PendingRenewalProductID *string                  `gorm:"column:pending_renewal_product_id" json:"pending_renewal_product_id,omitempty"`
	Status                  enums.SubscriptionStatus `gorm:"column:status;not null;default:'unknown';index" json:"status"`
	ExpiresAt               *time.Time               `gorm:"column:expires_at" json:"expires_at,omitempty"`
	AutoRenew               bool                     `gorm:"column:auto_renew;not null;default:false" json:"auto_renew"`
	LastNotificationType    enums.NotificationType   `gorm:"column:last_notification_type" json:"last_notification_type"`
	CreatedAt               time.Time                `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt               time.Time                `gorm:"column:updated_at" json:"updated_at"`
}

func (SubscriptionSnapshot) TableName() string {
	return "subscription_snapshots"
}
