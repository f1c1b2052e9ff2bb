package avatars

import (
	"context"
	"encoding/json"
	stdErrors "errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/engagehq/engage-backend/pkg/db/models"
	"github.com/engagehq/engage-backend/pkg/enums"
	pkgerrors "github.com/engagehq/engage-backend/pkg/errors"
)

// PowerUp is one active effect attached to a member's avatar.
type PowerUp struct {
	ItemID     uuid.UUID        `json:"item_id"`
	EffectType enums.EffectType `json:"effect_type"`
	Multiplier float64          `json:"multiplier"`
	ExpiresAt  *time.Time       `json:"expires_at,omitempty"`
}

// Service manages avatar records and their active power-ups.
type Service interface {
	AppendPowerUpTx(ctx context.Context, tx *gorm.DB, accountID uuid.UUID, powerUp PowerUp) error
	PruneExpired(ctx context.Context, now time.Time) (int, error)
}

type service struct {
	repo Repository
}

// NewService builds the avatars service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("avatars repository required")
	}
	return &service{repo: repo}, nil
}

// AppendPowerUpTx attaches a power-up to the account's avatar, creating the
// avatar record on first activation. Expired entries are left in place; the
// cron worker prunes them.
func (s *service) AppendPowerUpTx(ctx context.Context, tx *gorm.DB, accountID uuid.UUID, powerUp PowerUp) error {
	if accountID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "account id required")
	}
	if !powerUp.EffectType.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid power-up effect type")
	}
	if powerUp.Multiplier <= 0 {
		powerUp.Multiplier = 1
	}

	repo := s.repo.WithTx(tx)
	avatar, err := repo.FindByAccountID(ctx, accountID)
	if err != nil {
		if !stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load avatar")
		}
		avatar, err = repo.Create(ctx, &models.Avatar{
			ID:        uuid.New(),
			AccountID: accountID,
			BaseStyle: "default",
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create avatar")
		}
	}

	active, err := decodePowerUps(avatar.PowerUps)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode power-ups")
	}
	active = append(active, powerUp)

	raw, err := json.Marshal(active)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode power-ups")
	}
	if err := repo.UpdatePowerUps(ctx, avatar.ID, raw); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save power-ups")
	}
	return nil
}

// PruneExpired strips power-ups past their expiry from every avatar and
// reports how many entries were removed.
func (s *service) PruneExpired(ctx context.Context, now time.Time) (int, error) {
	avatars, err := s.repo.ListWithPowerUps(ctx)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list avatars")
	}

	removed := 0
	for _, avatar := range avatars {
		active, err := decodePowerUps(avatar.PowerUps)
		if err != nil {
			return removed, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode power-ups")
		}

		kept := active[:0]
		for _, powerUp := range active {
			if powerUp.ExpiresAt != nil && !powerUp.ExpiresAt.After(now) {
				removed++
				continue
			}
			kept = append(kept, powerUp)
		}
		if len(kept) == len(active) {
			continue
		}

		raw, err := json.Marshal(kept)
		if err != nil {
			return removed, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode power-ups")
		}
		if err := s.repo.UpdatePowerUps(ctx, avatar.ID, raw); err != nil {
			return removed, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save power-ups")
		}
	}
	return removed, nil
}

func decodePowerUps(raw json.RawMessage) ([]PowerUp, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var active []PowerUp
	if err := json.Unmarshal(raw, &active); err != nil {
		return nil, err
	}
	return active, nil
}
