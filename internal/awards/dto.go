package awards

import (
	"github.com/engagehq/engage-backend/internal/accounts"
	"github.com/engagehq/engage-backend/pkg/db/models"
	"github.com/engagehq/engage-backend/pkg/enums"
)

// AwardInput describes one engagement action to credit.
type AwardInput struct {
	Identity        accounts.Identity
	Action          enums.AwardAction
	EngagementScore *float64
}

// AwardResult summarizes the credited award, including any badges that
// unlocked during evaluation.
type AwardResult struct {
	Action        enums.AwardAction `json:"action"`
	PointsAwarded int               `json:"points_awarded"`
	BalanceAfter  int               `json:"balance_after"`
	TotalPoints   int               `json:"total_points"`
	Level         int               `json:"level"`
	LeveledUp     bool              `json:"leveled_up"`
	BadgesEarned  []models.Badge    `json:"badges_earned,omitempty"`
}
