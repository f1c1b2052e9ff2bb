package awards

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository applies the counter side effects of an award to the points
// account row. Balance columns are owned by the ledger and never touched
// here.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	RecordAttendance(ctx context.Context, accountID uuid.UUID, when time.Time) error
	IncrementActivities(ctx context.Context, accountID uuid.UUID) error
	IncrementFeedback(ctx context.Context, accountID uuid.UUID) error
	SetEngagementRating(ctx context.Context, accountID uuid.UUID, rating float64) error
	UpdateLevel(ctx context.Context, accountID uuid.UUID, level int) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an awards repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) RecordAttendance(ctx context.Context, accountID uuid.UUID, when time.Time) error {
	return r.db.WithContext(ctx).Exec(`
		UPDATE points_accounts
		SET events_attended = events_attended + 1,
			last_activity_date = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		when, accountID,
	).Error
}

func (r *repository) IncrementActivities(ctx context.Context, accountID uuid.UUID) error {
	return r.db.WithContext(ctx).Exec(`
		UPDATE points_accounts
		SET activities_completed = activities_completed + 1,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		accountID,
	).Error
}

func (r *repository) IncrementFeedback(ctx context.Context, accountID uuid.UUID) error {
	return r.db.WithContext(ctx).Exec(`
		UPDATE points_accounts
		SET feedback_submitted = feedback_submitted + 1,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		accountID,
	).Error
}

func (r *repository) SetEngagementRating(ctx context.Context, accountID uuid.UUID, rating float64) error {
	return r.db.WithContext(ctx).Exec(`
		UPDATE points_accounts
		SET engagement_rating = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		rating, accountID,
	).Error
}

func (r *repository) UpdateLevel(ctx context.Context, accountID uuid.UUID, level int) error {
	return r.db.WithContext(ctx).Exec(`
		UPDATE points_accounts
		SET level = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		level, accountID,
	).Error
}
