package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/engagehq/engage-backend/pkg/enums"
)

// Badge is an achievement definition. A badge unlocks when the account
// counter named by Criteria reaches Threshold, crediting PointsValue.
type Badge struct {
	ID          uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name        string              `gorm:"column:name;not null;uniqueIndex"`
	Description string              `gorm:"column:description;not null"`
	Criteria    enums.BadgeCriteria `gorm:"column:criteria;type:badge_criteria_enum;not null"`
	Threshold   int                 `gorm:"column:threshold;not null"`
	PointsValue int                 `gorm:"column:points_value;not null;default:0"`
	IconURL     *string             `gorm:"column:icon_url"`
	IsActive    bool                `gorm:"column:is_active;not null;default:true"`
	CreatedAt   time.Time           `gorm:"column:created_at;autoCreateTime"`
}

// EarnedBadge links an account to a badge it has unlocked.
type EarnedBadge struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	AccountID uuid.UUID `gorm:"column:account_id;type:uuid;not null;uniqueIndex:idx_earned_account_badge"`
	BadgeID   uuid.UUID `gorm:"column:badge_id;type:uuid;not null;uniqueIndex:idx_earned_account_badge"`
	EarnedAt  time.Time `gorm:"column:earned_at;autoCreateTime"`

	Badge *Badge `gorm:"foreignKey:BadgeID"`
}
