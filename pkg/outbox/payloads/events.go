package payloads

import (
	"time"

	"github.com/engagehq/engage-backend/pkg/enums"
	"github.com/google/uuid"
)

// PurchaseCompletedEvent is emitted after a store purchase settles.
type PurchaseCompletedEvent struct {
	TransactionID uuid.UUID `json:"transaction_id"`
	AccountID     uuid.UUID `json:"account_id"`
	UserID        uuid.UUID `json:"user_id"`
	ItemID        uuid.UUID `json:"item_id"`
	ItemName      string    `json:"item_name"`
	PointsSpent   int       `json:"points_spent"`
	BalanceAfter  int       `json:"balance_after"`
}

// PointsAwardedEvent signals credited points from the award pipeline.
type PointsAwardedEvent struct {
	AccountID    uuid.UUID         `json:"account_id"`
	UserID       uuid.UUID         `json:"user_id"`
	Action       enums.AwardAction `json:"action"`
	Points       int               `json:"points"`
	BalanceAfter int               `json:"balance_after"`
	TotalPoints  int               `json:"total_points"`
}

// BadgeEarnedEvent is emitted when an account unlocks a badge.
type BadgeEarnedEvent struct {
	AccountID   uuid.UUID `json:"account_id"`
	UserID      uuid.UUID `json:"user_id"`
	BadgeID     uuid.UUID `json:"badge_id"`
	BadgeName   string    `json:"badge_name"`
	PointsValue int       `json:"points_value"`
	EarnedAt    time.Time `json:"earned_at"`
}

// LevelUpEvent reports a level transition for an account.
type LevelUpEvent struct {
	AccountID   uuid.UUID `json:"account_id"`
	UserID      uuid.UUID `json:"user_id"`
	OldLevel    int       `json:"old_level"`
	NewLevel    int       `json:"new_level"`
	TotalPoints int       `json:"total_points"`
}

// NotificationRequestedEvent tells downstream systems to alert a member.
type NotificationRequestedEvent struct {
	UserID  uuid.UUID              `json:"user_id"`
	Type    enums.NotificationType `json:"type"`
	Title   string                 `json:"title"`
	Message string                 `json:"message"`
	Link    *string                `json:"link,omitempty"`
}
