package enums

import "fmt"

// NotificationType maps to the notification_type_enum enum in Postgres.
type NotificationType string

const (
	NotificationTypePurchase    NotificationType = "purchase"
	NotificationTypePointsAward NotificationType = "points_award"
	NotificationTypeLevelUp     NotificationType = "level_up"
	NotificationTypeBadgeEarned NotificationType = "badge_earned"
	NotificationTypeSystem      NotificationType = "system"
)

var validNotificationTypes = []NotificationType{
	NotificationTypePurchase,
	NotificationTypePointsAward,
	NotificationTypeLevelUp,
	NotificationTypeBadgeEarned,
	NotificationTypeSystem,
}

// IsValid reports whether the value matches the canonical notification type enum.
func (t NotificationType) IsValid() bool {
	for _, candidate := range validNotificationTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseNotificationType converts raw input into NotificationType.
func ParseNotificationType(value string) (NotificationType, error) {
	for _, candidate := range validNotificationTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification type %q", value)
}
