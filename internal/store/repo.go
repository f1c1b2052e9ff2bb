package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/engagehq/engage-backend/pkg/db/models"
)

// Repository exposes persistence for the store catalog, member inventory,
// and purchase transactions.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindItem(ctx context.Context, itemID uuid.UUID) (*models.StoreItem, error)
	ListAvailableItems(ctx context.Context) ([]models.StoreItem, error)
	AdjustStock(ctx context.Context, itemID uuid.UUID, quantity int) (bool, error)
	HasEntry(ctx context.Context, accountID, itemID uuid.UUID) (bool, error)
	CreateEntry(ctx context.Context, entry *models.InventoryEntry) error
	DeactivateExpiredEntries(ctx context.Context, now time.Time) (int64, error)
	CreateTransaction(ctx context.Context, txn *models.StoreTransaction) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a store repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindItem(ctx context.Context, itemID uuid.UUID) (*models.StoreItem, error) {
	var item models.StoreItem
	err := r.db.WithContext(ctx).
		Where("id = ?", itemID).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) ListAvailableItems(ctx context.Context) ([]models.StoreItem, error) {
	var items []models.StoreItem
	err := r.db.WithContext(ctx).
		Where("is_available = ?", true).
		Order("category ASC, cost ASC, name ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// AdjustStock bumps the purchase counter and, for stock-tracked items,
// decrements stock in the same guarded statement. A false return means the
// remaining stock no longer covers the quantity.
func (r *repository) AdjustStock(ctx context.Context, itemID uuid.UUID, quantity int) (bool, error) {
	result := r.db.WithContext(ctx).Exec(`
		UPDATE store_items
		SET purchase_count = purchase_count + ?,
			stock = CASE WHEN stock IS NULL THEN NULL ELSE stock - ? END,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
			AND (stock IS NULL OR stock >= ?)`,
		quantity, quantity, itemID, quantity,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) HasEntry(ctx context.Context, accountID, itemID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.InventoryEntry{}).
		Where("account_id = ? AND item_id = ?", accountID, itemID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) CreateEntry(ctx context.Context, entry *models.InventoryEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// DeactivateExpiredEntries flips is_active off for entries past their
// expiry. Used by the cron worker, never the purchase path.
func (r *repository) DeactivateExpiredEntries(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Exec(`
		UPDATE inventory_entries
		SET is_active = ?
		WHERE is_active = ? AND expires_at IS NOT NULL AND expires_at <= ?`,
		false, true, now,
	)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *repository) CreateTransaction(ctx context.Context, txn *models.StoreTransaction) error {
	return r.db.WithContext(ctx).Create(txn).Error
}
