package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/engagehq/engage-backend/pkg/enums"
)

// PointsAccount is the per-member balance and counter record every mutation
// flows through. AvailablePoints is spendable and never negative;
// TotalPoints and LifetimePoints only ever grow.
type PointsAccount struct {
	ID              uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID          uuid.UUID        `gorm:"column:user_id;type:uuid;not null;uniqueIndex"`
	Email           string           `gorm:"column:email;not null;uniqueIndex"`
	DisplayName     string           `gorm:"column:display_name;not null"`
	Role            enums.MemberRole `gorm:"column:role;type:member_role_enum;not null;default:'employee'"`
	AvailablePoints int              `gorm:"column:available_points;not null;default:0"`
	TotalPoints     int              `gorm:"column:total_points;not null;default:0"`
	LifetimePoints  int              `gorm:"column:lifetime_points;not null;default:0"`
	Level           int              `gorm:"column:level;not null;default:1"`

	EventsAttended      int `gorm:"column:events_attended;not null;default:0"`
	ActivitiesCompleted int `gorm:"column:activities_completed;not null;default:0"`
	FeedbackSubmitted   int `gorm:"column:feedback_submitted;not null;default:0"`
	StreakDays          int `gorm:"column:streak_days;not null;default:0"`
	BadgesEarned        int `gorm:"column:badges_earned;not null;default:0"`

	MonthlyPoints int `gorm:"column:monthly_points;not null;default:0"`
	WeeklyPoints  int `gorm:"column:weekly_points;not null;default:0"`
	DailyPoints   int `gorm:"column:daily_points;not null;default:0"`

	EngagementRating *float64   `gorm:"column:engagement_rating;type:numeric(3,2)"`
	LastActivityDate *time.Time `gorm:"column:last_activity_date"`
	CreatedAt        time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
