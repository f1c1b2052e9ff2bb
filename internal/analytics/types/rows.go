package types

import (
	"time"

	cbigquery "cloud.google.com/go/bigquery"
)

// EngagementEventRow mirrors the engagement_events BigQuery schema. One row
// per engine event: purchases, awards, badge unlocks, and level transitions.
type EngagementEventRow struct {
	EventID       string             `bigquery:"event_id"`
	EventType     string             `bigquery:"event_type"`
	OccurredAt    time.Time          `bigquery:"occurred_at"`
	AccountID     *string            `bigquery:"account_id"`
	UserID        *string            `bigquery:"user_id"`
	Action        *string            `bigquery:"action"`
	Points        *int64             `bigquery:"points"`
	BalanceAfter  *int64             `bigquery:"balance_after"`
	TotalPoints   *int64             `bigquery:"total_points"`
	TransactionID *string            `bigquery:"transaction_id"`
	ItemID        *string            `bigquery:"item_id"`
	ItemName      *string            `bigquery:"item_name"`
	PointsSpent   *int64             `bigquery:"points_spent"`
	BadgeID       *string            `bigquery:"badge_id"`
	BadgeName     *string            `bigquery:"badge_name"`
	OldLevel      *int64             `bigquery:"old_level"`
	NewLevel      *int64             `bigquery:"new_level"`
	Payload       cbigquery.NullJSON `bigquery:"payload"`
}
