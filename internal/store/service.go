package store

import (
	"context"
	"encoding/json"
	stdErrors "errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/engagehq/engage-backend/internal/accounts"
	"github.com/engagehq/engage-backend/internal/avatars"
	"github.com/engagehq/engage-backend/internal/ledger"
	"github.com/engagehq/engage-backend/pkg/db/models"
	"github.com/engagehq/engage-backend/pkg/enums"
	pkgerrors "github.com/engagehq/engage-backend/pkg/errors"
	"github.com/engagehq/engage-backend/pkg/metrics"
	"github.com/engagehq/engage-backend/pkg/outbox"
	"github.com/engagehq/engage-backend/pkg/outbox/payloads"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type deltaApplier interface {
	ApplyDeltaTx(ctx context.Context, tx *gorm.DB, input ledger.DeltaInput) (*models.PointsAccount, *models.LedgerEntry, error)
}

type powerUpAppender interface {
	AppendPowerUpTx(ctx context.Context, tx *gorm.DB, accountID uuid.UUID, powerUp avatars.PowerUp) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service is the store transaction processor.
type Service interface {
	ListItems(ctx context.Context) ([]models.StoreItem, error)
	Purchase(ctx context.Context, input PurchaseInput) (*PurchaseResult, error)
	DeactivateExpired(ctx context.Context, now time.Time) (int64, error)
}

type service struct {
	repo     Repository
	accounts accounts.Repository
	ledger   deltaApplier
	avatars  powerUpAppender
	outbox   outboxPublisher
	tx       txRunner
	metrics  *metrics.EngineMetrics
}

// NewService builds the store processor with its dependencies. Metrics may
// be nil.
func NewService(
	repo Repository,
	accountsRepo accounts.Repository,
	ledgerSvc deltaApplier,
	avatarSvc powerUpAppender,
	outboxSvc outboxPublisher,
	tx txRunner,
	engineMetrics *metrics.EngineMetrics,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("store repository required")
	}
	if accountsRepo == nil {
		return nil, fmt.Errorf("accounts repository required")
	}
	if ledgerSvc == nil {
		return nil, fmt.Errorf("ledger service required")
	}
	if avatarSvc == nil {
		return nil, fmt.Errorf("avatars service required")
	}
	if outboxSvc == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{
		repo:     repo,
		accounts: accountsRepo,
		ledger:   ledgerSvc,
		avatars:  avatarSvc,
		outbox:   outboxSvc,
		tx:       tx,
		metrics:  engineMetrics,
	}, nil
}

func (s *service) ListItems(ctx context.Context) ([]models.StoreItem, error) {
	items, err := s.repo.ListAvailableItems(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list store items")
	}
	return items, nil
}

// Purchase settles one store purchase. Every check and write happens inside
// a single transaction: a failure at any step leaves no records behind. The
// ledger debit and the stock decrement are both guarded updates, so racing
// purchases cannot overspend points or oversell stock.
func (s *service) Purchase(ctx context.Context, input PurchaseInput) (*PurchaseResult, error) {
	result, err := s.purchase(ctx, input)
	if err != nil {
		s.metrics.IncPurchase("rejected")
		return nil, err
	}
	s.metrics.IncPurchase("completed")
	return result, nil
}

func (s *service) purchase(ctx context.Context, input PurchaseInput) (*PurchaseResult, error) {
	if input.ItemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id required")
	}
	if input.Quantity == 0 {
		input.Quantity = 1
	}
	if input.Quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	var result PurchaseResult
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		accountsRepo := s.accounts.WithTx(tx)

		item, err := repo.FindItem(ctx, input.ItemID)
		if err != nil {
			if stdErrors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "store item not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load store item")
		}
		if !item.IsAvailable {
			return pkgerrors.New(pkgerrors.CodeItemUnavailable, "item is not available")
		}
		if item.IsPremium() && item.Cost <= 0 {
			return pkgerrors.New(pkgerrors.CodePaymentRequired, "item requires premium payment")
		}
		if item.Stock != nil && *item.Stock < input.Quantity {
			return pkgerrors.New(pkgerrors.CodeInsufficientStock, "not enough stock").
				WithDetails(StockDetails{Requested: input.Quantity, Available: *item.Stock})
		}

		account, err := accountsRepo.FindByUserID(ctx, input.Identity.UserID)
		if err != nil {
			if stdErrors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNoBalanceRecord, "no points balance on record")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load points account")
		}

		totalCost := item.Cost * input.Quantity
		if account.AvailablePoints < totalCost {
			return pkgerrors.New(pkgerrors.CodeInsufficientPoints, "not enough points").
				WithDetails(ledger.ShortfallDetails{Required: totalCost, Available: account.AvailablePoints})
		}

		if !item.Category.Stackable() {
			owned, err := repo.HasEntry(ctx, account.ID, item.ID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check inventory")
			}
			if owned {
				return pkgerrors.New(pkgerrors.CodeAlreadyOwned, "item already owned")
			}
		}

		txnID := uuid.New()
		account, _, err = s.ledger.ApplyDeltaTx(ctx, tx, ledger.DeltaInput{
			Identity:    input.Identity,
			Amount:      -totalCost,
			Reason:      "Purchased " + item.Name,
			Source:      enums.PointSourceStorePurchase,
			ReferenceID: &txnID,
		})
		if err != nil {
			return err
		}

		txn := &models.StoreTransaction{
			ID:           txnID,
			AccountID:    account.ID,
			UserID:       account.UserID,
			ItemID:       item.ID,
			ItemName:     item.Name,
			Quantity:     input.Quantity,
			PointsSpent:  totalCost,
			BalanceAfter: account.AvailablePoints,
			Status:       enums.TransactionStatusCompleted,
		}
		if err := repo.CreateTransaction(ctx, txn); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create store transaction")
		}

		effect, err := decodeEffect(item)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode item effect")
		}
		var expiresAt *time.Time
		if effect != nil && effect.DurationHours > 0 {
			expiry := time.Now().Add(time.Duration(effect.DurationHours) * time.Hour)
			expiresAt = &expiry
		}

		entry := &models.InventoryEntry{
			ID:              uuid.New(),
			AccountID:       account.ID,
			ItemID:          item.ID,
			ItemCategory:    item.Category,
			AcquisitionType: enums.AcquisitionTypePurchase,
			TransactionID:   &txnID,
			IsActive:        true,
			ExpiresAt:       expiresAt,
		}
		if err := repo.CreateEntry(ctx, entry); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create inventory entry")
		}

		adjusted, err := repo.AdjustStock(ctx, item.ID, input.Quantity)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "adjust stock")
		}
		if !adjusted {
			return pkgerrors.New(pkgerrors.CodeInsufficientStock, "not enough stock")
		}

		if item.Category == enums.ItemCategoryPowerUp && effect != nil {
			if err := s.activatePowerUp(ctx, tx, account.ID, item, effect, expiresAt); err != nil {
				return err
			}
		}

		if err := s.emitCompleted(ctx, tx, input.Identity, account, item, txn); err != nil {
			return err
		}

		result = PurchaseResult{
			TransactionID: txnID,
			Item: ItemSummary{
				ID:       item.ID,
				Name:     item.Name,
				Category: item.Category,
				Cost:     item.Cost,
			},
			Quantity:        input.Quantity,
			PointsSpent:     totalCost,
			RemainingPoints: account.AvailablePoints,
			ExpiresAt:       expiresAt,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *service) activatePowerUp(ctx context.Context, tx *gorm.DB, accountID uuid.UUID, item *models.StoreItem, effect *EffectConfig, expiresAt *time.Time) error {
	effectType := effect.Type
	if !effectType.IsValid() && item.EffectType != nil {
		effectType = *item.EffectType
	}
	if !effectType.IsValid() {
		return nil
	}
	powerUp := avatars.PowerUp{
		ItemID:     item.ID,
		EffectType: effectType,
		Multiplier: effect.Multiplier,
		ExpiresAt:  expiresAt,
	}
	if err := s.avatars.AppendPowerUpTx(ctx, tx, accountID, powerUp); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "activate power-up")
	}
	return nil
}

func (s *service) emitCompleted(ctx context.Context, tx *gorm.DB, identity accounts.Identity, account *models.PointsAccount, item *models.StoreItem, txn *models.StoreTransaction) error {
	actor := &outbox.ActorRef{UserID: identity.UserID, Role: string(identity.Role)}
	completed := outbox.DomainEvent{
		EventType:     enums.EventPurchaseCompleted,
		AggregateType: enums.AggregateStoreTransaction,
		AggregateID:   txn.ID,
		Actor:         actor,
		Data: payloads.PurchaseCompletedEvent{
			TransactionID: txn.ID,
			AccountID:     account.ID,
			UserID:        account.UserID,
			ItemID:        item.ID,
			ItemName:      item.Name,
			PointsSpent:   txn.PointsSpent,
			BalanceAfter:  txn.BalanceAfter,
		},
		Version:    1,
		OccurredAt: time.Now(),
	}
	if err := s.outbox.Emit(ctx, tx, completed); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit purchase completed event")
	}

	notify := outbox.DomainEvent{
		EventType:     enums.EventNotificationRequested,
		AggregateType: enums.AggregateNotification,
		AggregateID:   uuid.New(),
		Actor:         actor,
		Data: payloads.NotificationRequestedEvent{
			UserID:  account.UserID,
			Type:    enums.NotificationTypePurchase,
			Title:   "Purchase complete",
			Message: fmt.Sprintf("You bought %s for %d points", item.Name, txn.PointsSpent),
		},
		Version:    1,
		OccurredAt: time.Now(),
	}
	if err := s.outbox.Emit(ctx, tx, notify); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit purchase notification")
	}
	return nil
}

// DeactivateExpired flips expired inventory entries inactive. Invoked by
// the cron worker.
func (s *service) DeactivateExpired(ctx context.Context, now time.Time) (int64, error) {
	count, err := s.repo.DeactivateExpiredEntries(ctx, now)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deactivate expired inventory")
	}
	return count, nil
}

func decodeEffect(item *models.StoreItem) (*EffectConfig, error) {
	if len(item.Effect) == 0 || string(item.Effect) == "null" {
		return nil, nil
	}
	var effect EffectConfig
	if err := json.Unmarshal(item.Effect, &effect); err != nil {
		return nil, err
	}
	if effect.Multiplier <= 0 {
		effect.Multiplier = 1
	}
	return &effect, nil
}
