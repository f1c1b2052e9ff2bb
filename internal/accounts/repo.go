package accounts

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/engagehq/engage-backend/pkg/db/models"
)

// Repository exposes persistence operations for points accounts.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByUserID(ctx context.Context, userID uuid.UUID) (*models.PointsAccount, error)
	FindByEmail(ctx context.Context, email string) (*models.PointsAccount, error)
	Create(ctx context.Context, account *models.PointsAccount) (*models.PointsAccount, error)
	ListSnapshot(ctx context.Context) ([]models.PointsAccount, error)
	ResetDailyPoints(ctx context.Context) (int64, error)
	ResetWeeklyPoints(ctx context.Context) (int64, error)
	ResetMonthlyPoints(ctx context.Context) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an accounts repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindByUserID(ctx context.Context, userID uuid.UUID) (*models.PointsAccount, error) {
	var account models.PointsAccount
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&account).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*models.PointsAccount, error) {
	var account models.PointsAccount
	err := r.db.WithContext(ctx).
		Where("email = ?", email).
		First(&account).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *repository) Create(ctx context.Context, account *models.PointsAccount) (*models.PointsAccount, error) {
	if err := r.db.WithContext(ctx).Create(account).Error; err != nil {
		return nil, err
	}
	return account, nil
}

func (r *repository) ResetDailyPoints(ctx context.Context) (int64, error) {
	return r.resetCounter(ctx, "daily_points")
}

func (r *repository) ResetWeeklyPoints(ctx context.Context) (int64, error) {
	return r.resetCounter(ctx, "weekly_points")
}

func (r *repository) ResetMonthlyPoints(ctx context.Context) (int64, error) {
	return r.resetCounter(ctx, "monthly_points")
}

func (r *repository) resetCounter(ctx context.Context, column string) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.PointsAccount{}).
		Where(column+" <> 0").
		Update(column, 0)
	return result.RowsAffected, result.Error
}

func (r *repository) ListSnapshot(ctx context.Context) ([]models.PointsAccount, error) {
	var accounts []models.PointsAccount
	err := r.db.WithContext(ctx).
		Order("total_points DESC, email ASC").
		Find(&accounts).Error
	if err != nil {
		return nil, err
	}
	return accounts, nil
}
