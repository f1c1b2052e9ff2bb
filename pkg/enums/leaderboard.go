package enums

import "fmt"

// LeaderboardCategory selects the metric a leaderboard ranks members by.
type LeaderboardCategory string

const (
	LeaderboardCategoryPoints     LeaderboardCategory = "points"
	LeaderboardCategoryEvents     LeaderboardCategory = "events"
	LeaderboardCategoryBadges     LeaderboardCategory = "badges"
	LeaderboardCategoryEngagement LeaderboardCategory = "engagement"
)

var validLeaderboardCategories = []LeaderboardCategory{
	LeaderboardCategoryPoints,
	LeaderboardCategoryEvents,
	LeaderboardCategoryBadges,
	LeaderboardCategoryEngagement,
}

// IsValid reports whether the value matches a known leaderboard category.
func (c LeaderboardCategory) IsValid() bool {
	for _, candidate := range validLeaderboardCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseLeaderboardCategory converts raw input into LeaderboardCategory.
func ParseLeaderboardCategory(value string) (LeaderboardCategory, error) {
	for _, candidate := range validLeaderboardCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid leaderboard category %q", value)
}

// LeaderboardPeriod selects the time window a leaderboard is scored over.
type LeaderboardPeriod string

const (
	LeaderboardPeriodAllTime LeaderboardPeriod = "all_time"
	LeaderboardPeriodMonthly LeaderboardPeriod = "monthly"
	LeaderboardPeriodWeekly  LeaderboardPeriod = "weekly"
	LeaderboardPeriodDaily   LeaderboardPeriod = "daily"
)

var validLeaderboardPeriods = []LeaderboardPeriod{
	LeaderboardPeriodAllTime,
	LeaderboardPeriodMonthly,
	LeaderboardPeriodWeekly,
	LeaderboardPeriodDaily,
}

// IsValid reports whether the value matches a known leaderboard period.
func (p LeaderboardPeriod) IsValid() bool {
	for _, candidate := range validLeaderboardPeriods {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParseLeaderboardPeriod converts raw input into LeaderboardPeriod.
func ParseLeaderboardPeriod(value string) (LeaderboardPeriod, error) {
	for _, candidate := range validLeaderboardPeriods {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid leaderboard period %q", value)
}
