package ledger

import (
	"context"
	stdErrors "errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/engagehq/engage-backend/internal/accounts"
	"github.com/engagehq/engage-backend/pkg/db/models"
	pkgerrors "github.com/engagehq/engage-backend/pkg/errors"
	"github.com/engagehq/engage-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service is the only write path to a member's point balance.
type Service interface {
	ApplyDelta(ctx context.Context, input DeltaInput) (*models.PointsAccount, *models.LedgerEntry, error)
	ApplyDeltaTx(ctx context.Context, tx *gorm.DB, input DeltaInput) (*models.PointsAccount, *models.LedgerEntry, error)
	History(ctx context.Context, userID uuid.UUID, params pagination.Params) (*HistoryPage, error)
}

type service struct {
	repo     Repository
	accounts accounts.Repository
	tx       txRunner
}

// NewService builds the ledger mutator with its dependencies.
func NewService(repo Repository, accountsRepo accounts.Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	if accountsRepo == nil {
		return nil, fmt.Errorf("accounts repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, accounts: accountsRepo, tx: tx}, nil
}

func (s *service) ApplyDelta(ctx context.Context, input DeltaInput) (*models.PointsAccount, *models.LedgerEntry, error) {
	var (
		account *models.PointsAccount
		entry   *models.LedgerEntry
	)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		var txErr error
		account, entry, txErr = s.ApplyDeltaTx(ctx, tx, input)
		return txErr
	})
	if err != nil {
		return nil, nil, err
	}
	return account, entry, nil
}

// ApplyDeltaTx applies one signed delta inside the caller's transaction.
// Accounts are created lazily on first credit; a debit against a missing
// account is a hard failure. The balance guard is enforced by the storage
// layer, so a rejected debit leaves no trace.
func (s *service) ApplyDeltaTx(ctx context.Context, tx *gorm.DB, input DeltaInput) (*models.PointsAccount, *models.LedgerEntry, error) {
	if input.Amount == 0 {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "delta amount must be non-zero")
	}
	if strings.TrimSpace(input.Reason) == "" {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "delta reason required")
	}
	if !input.Source.IsValid() {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid point source")
	}

	repo := s.repo.WithTx(tx)
	accountsRepo := s.accounts.WithTx(tx)

	account, err := accountsRepo.FindByUserID(ctx, input.Identity.UserID)
	if err != nil {
		if !stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load points account")
		}
		if input.Amount < 0 {
			return nil, nil, pkgerrors.New(pkgerrors.CodeNoBalanceRecord, "no points balance on record")
		}
		account, err = accounts.GetOrCreate(ctx, accountsRepo, input.Identity)
		if err != nil {
			return nil, nil, err
		}
	}

	applied, err := repo.ApplyDelta(ctx, account.ID, input.Amount)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "apply point delta")
	}
	if !applied {
		return nil, nil, pkgerrors.New(pkgerrors.CodeInsufficientPoints, "not enough points").
			WithDetails(ShortfallDetails{
				Required:  -input.Amount,
				Available: account.AvailablePoints,
			})
	}

	account, err = accountsRepo.FindByUserID(ctx, input.Identity.UserID)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload points account")
	}

	entry := &models.LedgerEntry{
		ID:           uuid.New(),
		AccountID:    account.ID,
		UserID:       account.UserID,
		Points:       input.Amount,
		Source:       input.Source,
		Description:  input.Reason,
		ReferenceID:  input.ReferenceID,
		BalanceAfter: account.AvailablePoints,
		Metadata:     input.Metadata,
	}
	if err := repo.CreateEntry(ctx, entry); err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append ledger entry")
	}
	return account, entry, nil
}

func (s *service) History(ctx context.Context, userID uuid.UUID, params pagination.Params) (*HistoryPage, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	account, err := s.accounts.FindByUserID(ctx, userID)
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return &HistoryPage{Entries: []models.LedgerEntry{}}, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load points account")
	}

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid cursor")
	}
	limit := pagination.NormalizeLimit(params.Limit)

	entries, err := s.repo.ListEntries(ctx, account.ID, limit+1, cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list ledger entries")
	}

	page := &HistoryPage{Entries: entries}
	if len(entries) > limit {
		page.Entries = entries[:limit]
		last := page.Entries[limit-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	return page, nil
}
