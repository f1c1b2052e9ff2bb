package leaderboard

import (
	"github.com/engagehq/engage-backend/pkg/db/models"
	"github.com/engagehq/engage-backend/pkg/enums"
)

// Engagement composite weights. Policy constants, not tunable per deploy.
const (
	engagementEventWeight    = 10
	engagementActivityWeight = 15
	engagementFeedbackWeight = 5
	engagementStreakWeight   = 2
	engagementBadgeWeight    = 20
)

// Score computes the account's numeric standing for one category and
// period. Members scoring zero are dropped from ranking output entirely.
func Score(account models.PointsAccount, category enums.LeaderboardCategory, period enums.LeaderboardPeriod) int {
	switch category {
	case enums.LeaderboardCategoryPoints:
		return pointsScore(account, period)
	case enums.LeaderboardCategoryEvents:
		return account.EventsAttended
	case enums.LeaderboardCategoryBadges:
		return account.BadgesEarned
	case enums.LeaderboardCategoryEngagement:
		return account.EventsAttended*engagementEventWeight +
			account.ActivitiesCompleted*engagementActivityWeight +
			account.FeedbackSubmitted*engagementFeedbackWeight +
			account.StreakDays*engagementStreakWeight +
			account.BadgesEarned*engagementBadgeWeight
	default:
		return 0
	}
}

func pointsScore(account models.PointsAccount, period enums.LeaderboardPeriod) int {
	switch period {
	case enums.LeaderboardPeriodMonthly:
		return account.MonthlyPoints
	case enums.LeaderboardPeriodWeekly:
		return account.WeeklyPoints
	case enums.LeaderboardPeriodDaily:
		return account.DailyPoints
	default:
		if account.LifetimePoints > 0 {
			return account.LifetimePoints
		}
		return account.TotalPoints
	}
}
