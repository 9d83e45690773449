package transitions

import (
	"time"

	"github.com/mikakort/IAPserver/pkg/db/models"
	"github.com/mikakort/IAPserver/pkg/enums"
)

// Input carries the fields of one notification that influence the snapshot.
// Absent fields stay nil/empty and leave the corresponding snapshot field
// untouched.
type Input struct {
	Type               enums.NotificationType
	ProductID          string
	AutoRenewProductID string
	ExpiresAt          *time.Time
	AutoRenew          *bool
}

// Apply computes the next snapshot for userID from the previous one (nil for
// a previously unseen user) and the incoming notification. It is pure: the
// previous snapshot is never mutated, and ordering across notifications for
// the same user is the caller's responsibility.
func Apply(in Input, prev *models.SubscriptionSnapshot, userID string, now time.Time) models.SubscriptionSnapshot {
	next := models.SubscriptionSnapshot{
		UserID: userID,
		Status: enums.SubscriptionStatusUnknown,
	}
	if prev != nil {
		next = *prev
	}

	switch in.Type {
	case enums.NotificationTypeInitialBuy:
		next.Status = enums.SubscriptionStatusActive
		next.ExpiresAt = in.ExpiresAt
		next.AutoRenew = true
		applyProduct(&next, in)

	case enums.NotificationTypeRenewal:
		next.Status = enums.SubscriptionStatusActive
		if in.ExpiresAt != nil {
			next.ExpiresAt = in.ExpiresAt
		}
		applyProduct(&next, in)

	case enums.NotificationTypeInteractiveRenewal:
		next.Status = enums.SubscriptionStatusActive
		if in.ExpiresAt != nil {
			next.ExpiresAt = in.ExpiresAt
		}
		next.AutoRenew = true
		applyProduct(&next, in)

	case enums.NotificationTypeDidChangeRenewalPref:
		if in.AutoRenewProductID != "" {
			pending := in.AutoRenewProductID
			next.PendingRenewalProductID = &pending
		}

	case enums.NotificationTypeDidChangeRenewalState:
		if in.AutoRenew != nil {
			next.AutoRenew = *in.AutoRenew
		}

	case enums.NotificationTypeDidFailToRenew:
		next.Status = enums.SubscriptionStatusBillingRetry

	case enums.NotificationTypeDidRecover:
		next.Status = enums.SubscriptionStatusActive
		if in.ExpiresAt != nil {
			next.ExpiresAt = in.ExpiresAt
		}
		applyProduct(&next, in)

	case enums.NotificationTypeCancel:
		next.Status = enums.SubscriptionStatusCancelled
		next.AutoRenew = false

	case enums.NotificationTypeRefund:
		next.Status = enums.SubscriptionStatusCancelled

	case enums.NotificationTypeRevoke:
		next.Status = enums.SubscriptionStatusExpired

	case enums.NotificationTypePriceIncreaseConsent, enums.NotificationTypeConsumptionRequest:
		// status and billing fields unchanged

	default:
		// Unrecognized type: first contact stays unknown, existing rows keep
		// their status. The raw event is still persisted upstream.
	}

	// Best-effort fill for a brand new row, whatever the type.
	if prev == nil && next.ProductID == "" {
		next.ProductID = in.ProductID
	}
	next.LastNotificationType = in.Type
	next.UpdatedAt = now
	if prev == nil {
		next.CreatedAt = now
	}

	return next
}

func applyProduct(next *models.SubscriptionSnapshot, in Input) {
	if in.ProductID != "" {
		next.ProductID = in.ProductID
	}
}
