package enums

import "fmt"

// NotificationType is the purchase-lifecycle taxonomy sent by the payment
// platform. Values outside the canonical set are representable (raw events are
// stored verbatim) but report IsValid() == false.
type NotificationType string

const (
	NotificationTypeInitialBuy            NotificationType = "INITIAL_BUY"
	NotificationTypeRenewal               NotificationType = "RENEWAL"
	NotificationTypeInteractiveRenewal    NotificationType = "INTERACTIVE_RENEWAL"
	NotificationTypeDidChangeRenewalPref  NotificationType = "DID_CHANGE_RENEWAL_PREF"
	NotificationTypeDidChangeRenewalState NotificationType = "DID_CHANGE_RENEWAL_STATUS"
	NotificationTypeDidFailToRenew        NotificationType = "DID_FAIL_TO_RENEW"
	NotificationTypeDidRecover            NotificationType = "DID_RECOVER"
	NotificationTypeCancel                NotificationType = "CANCEL"
	NotificationTypeRefund                NotificationType = "REFUND"
	NotificationTypeRevoke                NotificationType = "REVOKE"
	NotificationTypePriceIncreaseConsent  NotificationType = "PRICE_INCREASE_CONSENT"
	NotificationTypeConsumptionRequest    NotificationType = "CONSUMPTION_REQUEST"
)

var validNotificationTypes = []NotificationType{
	NotificationTypeInitialBuy,
	NotificationTypeRenewal,
	NotificationTypeInteractiveRenewal,
	NotificationTypeDidChangeRenewalPref,
	NotificationTypeDidChangeRenewalState,
	NotificationTypeDidFailToRenew,
	NotificationTypeDidRecover,
	NotificationTypeCancel,
	NotificationTypeRefund,
	NotificationTypeRevoke,
	NotificationTypePriceIncreaseConsent,
	NotificationTypeConsumptionRequest,
}

// String implements fmt.Stringer.
func (n NotificationType) String() string {
	return string(n)
}

// IsValid checks whether the given type matches the canonical enum.
func (n NotificationType) IsValid() bool {
	for _, candidate := range validNotificationTypes {
		if candidate == n {
			return true
		}
	}
	return false
}

// ParseNotificationType converts raw strings into NotificationType.
func ParseNotificationType(value string) (NotificationType, error) {
	for _, candidate := range validNotificationTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification type %q", value)
}
