package cron

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/engagehq/engage-backend/pkg/logger"
)

type PowerUpExpiryJobParams struct {
	Logger    *logger.Logger
	Inventory inventoryExpirer
	Avatars   avatarPruner
}

type inventoryExpirer interface {
	DeactivateExpired(ctx context.Context, now time.Time) (int64, error)
}

type avatarPruner interface {
	PruneExpired(ctx context.Context, now time.Time) (int, error)
}

func NewPowerUpExpiryJob(params PowerUpExpiryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Inventory == nil {
		return nil, fmt.Errorf("inventory expirer required")
	}
	if params.Avatars == nil {
		return nil, fmt.Errorf("avatar pruner required")
	}
	return &powerUpExpiryJob{
		logg:      params.Logger,
		inventory: params.Inventory,
		avatars:   params.Avatars,
		now:       time.Now,
	}, nil
}

// powerUpExpiryJob sweeps expired power-ups out of member inventories and
// avatar records. The two sweeps are independent; one failing does not
// block the other.
type powerUpExpiryJob struct {
	logg      *logger.Logger
	inventory inventoryExpirer
	avatars   avatarPruner
	now       func() time.Time
}

func (j *powerUpExpiryJob) Name() string { return "powerup-expiry" }

func (j *powerUpExpiryJob) Run(ctx context.Context) error {
	now := j.now().UTC()
	var errs error

	deactivated, err := j.inventory.DeactivateExpired(ctx, now)
	if err != nil {
		errs = multierr.Append(errs, fmt.Errorf("deactivate inventory: %w", err))
	}
	pruned, err := j.avatars.PruneExpired(ctx, now)
	if err != nil {
		errs = multierr.Append(errs, fmt.Errorf("prune avatars: %w", err))
	}
	if errs != nil {
		return errs
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"entries_deactivated": deactivated,
		"powerups_pruned":     pruned,
	})
	j.logg.Info(logCtx, "power-up expiry sweep complete")
	return nil
}
