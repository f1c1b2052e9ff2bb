package badges

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/engagehq/engage-backend/pkg/db/models"
)

// Repository exposes persistence for badge definitions and earned badges.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	ListActive(ctx context.Context) ([]models.Badge, error)
	ListEarnedBadgeIDs(ctx context.Context, accountID uuid.UUID) ([]uuid.UUID, error)
	CreateEarned(ctx context.Context, earned *models.EarnedBadge) error
	IncrementEarnedCount(ctx context.Context, accountID uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a badges repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) ListActive(ctx context.Context) ([]models.Badge, error) {
	var badges []models.Badge
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("threshold ASC, name ASC").
		Find(&badges).Error
	if err != nil {
		return nil, err
	}
	return badges, nil
}

func (r *repository) ListEarnedBadgeIDs(ctx context.Context, accountID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&models.EarnedBadge{}).
		Where("account_id = ?", accountID).
		Pluck("badge_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *repository) CreateEarned(ctx context.Context, earned *models.EarnedBadge) error {
	return r.db.WithContext(ctx).Create(earned).Error
}

func (r *repository) IncrementEarnedCount(ctx context.Context, accountID uuid.UUID) error {
	return r.db.WithContext(ctx).Exec(`
		UPDATE points_accounts
		SET badges_earned = badges_earned + 1,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, accountID).Error
}
