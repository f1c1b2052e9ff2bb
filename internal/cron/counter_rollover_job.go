package cron

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/engagehq/engage-backend/pkg/logger"
)

const (
	rolloverKeyPrefix  = "engage:cron:rollover"
	rolloverDailyTTL   = 48 * time.Hour
	rolloverWeeklyTTL  = 8 * 24 * time.Hour
	rolloverMonthlyTTL = 32 * 24 * time.Hour
)

type CounterRolloverJobParams struct {
	Logger     *logger.Logger
	Repository counterRolloverRepo
	Store      redisStore
}

type counterRolloverRepo interface {
	ResetDailyPoints(ctx context.Context) (int64, error)
	ResetWeeklyPoints(ctx context.Context) (int64, error)
	ResetMonthlyPoints(ctx context.Context) (int64, error)
}

func NewCounterRolloverJob(params CounterRolloverJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("accounts repository required")
	}
	if params.Store == nil {
		return nil, fmt.Errorf("redis store required")
	}
	return &counterRolloverJob{
		logg:  params.Logger,
		repo:  params.Repository,
		store: params.Store,
		now:   time.Now,
	}, nil
}

// counterRolloverJob zeroes the rolling point counters at their period
// boundaries: daily every day, weekly on Mondays, monthly on the 1st. Each
// reset is recorded under a Redis marker keyed by its period, written only
// after the reset succeeds, so a worker restart mid-day never re-zeroes
// counters that members have already refilled.
type counterRolloverJob struct {
	logg  *logger.Logger
	repo  counterRolloverRepo
	store redisStore
	now   func() time.Time
}

func (j *counterRolloverJob) Name() string { return "counter-rollover" }

func (j *counterRolloverJob) Run(ctx context.Context) error {
	now := j.now().UTC()
	day := now.Format("2006-01-02")
	fields := map[string]any{"date": day}
	rolled := false

	done, err := j.alreadyRolled(ctx, "daily:"+day)
	if err != nil {
		return fmt.Errorf("check daily rollover marker: %w", err)
	}
	if !done {
		daily, err := j.repo.ResetDailyPoints(ctx)
		if err != nil {
			return fmt.Errorf("reset daily points: %w", err)
		}
		if err := j.markRolled(ctx, "daily:"+day, rolloverDailyTTL); err != nil {
			return fmt.Errorf("mark daily rollover: %w", err)
		}
		fields["daily_reset"] = daily
		rolled = true
	}

	if now.Weekday() == time.Monday {
		done, err := j.alreadyRolled(ctx, "weekly:"+day)
		if err != nil {
			return fmt.Errorf("check weekly rollover marker: %w", err)
		}
		if !done {
			weekly, err := j.repo.ResetWeeklyPoints(ctx)
			if err != nil {
				return fmt.Errorf("reset weekly points: %w", err)
			}
			if err := j.markRolled(ctx, "weekly:"+day, rolloverWeeklyTTL); err != nil {
				return fmt.Errorf("mark weekly rollover: %w", err)
			}
			fields["weekly_reset"] = weekly
			rolled = true
		}
	}

	if now.Day() == 1 {
		month := now.Format("2006-01")
		done, err := j.alreadyRolled(ctx, "monthly:"+month)
		if err != nil {
			return fmt.Errorf("check monthly rollover marker: %w", err)
		}
		if !done {
			monthly, err := j.repo.ResetMonthlyPoints(ctx)
			if err != nil {
				return fmt.Errorf("reset monthly points: %w", err)
			}
			if err := j.markRolled(ctx, "monthly:"+month, rolloverMonthlyTTL); err != nil {
				return fmt.Errorf("mark monthly rollover: %w", err)
			}
			fields["monthly_reset"] = monthly
			rolled = true
		}
	}

	if rolled {
		j.logg.Info(j.logg.WithFields(ctx, fields), "counter rollover complete")
	}
	return nil
}

func (j *counterRolloverJob) alreadyRolled(ctx context.Context, suffix string) (bool, error) {
	_, err := j.store.Get(ctx, rolloverKeyPrefix+":"+suffix)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (j *counterRolloverJob) markRolled(ctx context.Context, suffix string, ttl time.Duration) error {
	_, err := j.store.SetNX(ctx, rolloverKeyPrefix+":"+suffix, "1", ttl)
	return err
}
