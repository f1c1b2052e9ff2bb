package ledger

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/engagehq/engage-backend/pkg/db/models"
	"github.com/engagehq/engage-backend/pkg/pagination"
)

// Repository exposes the storage primitives the mutator builds on.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	ApplyDelta(ctx context.Context, accountID uuid.UUID, amount int) (bool, error)
	CreateEntry(ctx context.Context, entry *models.LedgerEntry) error
	ListEntries(ctx context.Context, accountID uuid.UUID, limit int, cursor *pagination.Cursor) ([]models.LedgerEntry, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a ledger repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// ApplyDelta mutates the account balance in a single conditional UPDATE.
// Credits bump the monotonic totals and rolling period counters; debits
// only touch available_points and are guarded so the balance cannot go
// negative under concurrent writers. Returns false when the guard rejects
// the debit.
func (r *repository) ApplyDelta(ctx context.Context, accountID uuid.UUID, amount int) (bool, error) {
	var res *gorm.DB
	if amount >= 0 {
		res = r.db.WithContext(ctx).Exec(`
			UPDATE points_accounts
			SET available_points = available_points + ?,
				total_points = total_points + ?,
				lifetime_points = lifetime_points + ?,
				monthly_points = monthly_points + ?,
				weekly_points = weekly_points + ?,
				daily_points = daily_points + ?,
				updated_at = CURRENT_TIMESTAMP
			WHERE id = ?
		`, amount, amount, amount, amount, amount, amount, accountID)
	} else {
		res = r.db.WithContext(ctx).Exec(`
			UPDATE points_accounts
			SET available_points = available_points + ?,
				updated_at = CURRENT_TIMESTAMP
			WHERE id = ? AND available_points + ? >= 0
		`, amount, accountID, amount)
	}
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) CreateEntry(ctx context.Context, entry *models.LedgerEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) ListEntries(ctx context.Context, accountID uuid.UUID, limit int, cursor *pagination.Cursor) ([]models.LedgerEntry, error) {
	query := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("created_at DESC, id DESC").
		Limit(limit)
	if cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var entries []models.LedgerEntry
	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
