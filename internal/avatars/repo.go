package avatars

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/engagehq/engage-backend/pkg/db/models"
)

// Repository exposes persistence for avatar records.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByAccountID(ctx context.Context, accountID uuid.UUID) (*models.Avatar, error)
	Create(ctx context.Context, avatar *models.Avatar) (*models.Avatar, error)
	UpdatePowerUps(ctx context.Context, avatarID uuid.UUID, powerUps json.RawMessage) error
	ListWithPowerUps(ctx context.Context) ([]models.Avatar, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an avatars repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindByAccountID(ctx context.Context, accountID uuid.UUID) (*models.Avatar, error) {
	var avatar models.Avatar
	err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		First(&avatar).Error
	if err != nil {
		return nil, err
	}
	return &avatar, nil
}

func (r *repository) Create(ctx context.Context, avatar *models.Avatar) (*models.Avatar, error) {
	if err := r.db.WithContext(ctx).Create(avatar).Error; err != nil {
		return nil, err
	}
	return avatar, nil
}

func (r *repository) UpdatePowerUps(ctx context.Context, avatarID uuid.UUID, powerUps json.RawMessage) error {
	return r.db.WithContext(ctx).
		Model(&models.Avatar{}).
		Where("id = ?", avatarID).
		UpdateColumn("power_ups", powerUps).Error
}

func (r *repository) ListWithPowerUps(ctx context.Context) ([]models.Avatar, error) {
	var avatars []models.Avatar
	err := r.db.WithContext(ctx).
		Where("power_ups IS NOT NULL").
		Find(&avatars).Error
	if err != nil {
		return nil, err
	}
	return avatars, nil
}
