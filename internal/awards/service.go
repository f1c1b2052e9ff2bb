package awards

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/engagehq/engage-backend/internal/accounts"
	"github.com/engagehq/engage-backend/internal/ledger"
	"github.com/engagehq/engage-backend/pkg/config"
	"github.com/engagehq/engage-backend/pkg/db/models"
	"github.com/engagehq/engage-backend/pkg/enums"
	pkgerrors "github.com/engagehq/engage-backend/pkg/errors"
	"github.com/engagehq/engage-backend/pkg/metrics"
	"github.com/engagehq/engage-backend/pkg/outbox"
	"github.com/engagehq/engage-backend/pkg/outbox/payloads"
)

// highEngagementThreshold is the minimum reported engagement score that
// qualifies for the high_engagement award.
const highEngagementThreshold = 4.0

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type deltaApplier interface {
	ApplyDeltaTx(ctx context.Context, tx *gorm.DB, input ledger.DeltaInput) (*models.PointsAccount, *models.LedgerEntry, error)
}

type badgeEvaluator interface {
	EvaluateTx(ctx context.Context, tx *gorm.DB, account *models.PointsAccount, identity accounts.Identity) ([]models.Badge, error)
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service is the award pipeline: fixed-amount credits for engagement
// actions, counter updates, level transitions, and badge evaluation.
type Service interface {
	Award(ctx context.Context, input AwardInput) (*AwardResult, error)
}

type service struct {
	repo    Repository
	ledger  deltaApplier
	badges  badgeEvaluator
	outbox  outboxPublisher
	tx      txRunner
	config  config.AwardsConfig
	metrics *metrics.EngineMetrics
}

// NewService builds the award pipeline with its dependencies. Metrics may
// be nil.
func NewService(
	repo Repository,
	ledgerSvc deltaApplier,
	badgeSvc badgeEvaluator,
	outboxSvc outboxPublisher,
	tx txRunner,
	cfg config.AwardsConfig,
	engineMetrics *metrics.EngineMetrics,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("awards repository required")
	}
	if ledgerSvc == nil {
		return nil, fmt.Errorf("ledger service required")
	}
	if badgeSvc == nil {
		return nil, fmt.Errorf("badge service required")
	}
	if outboxSvc == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if cfg.LevelDivisor <= 0 {
		return nil, fmt.Errorf("level divisor must be positive")
	}
	return &service{
		repo:    repo,
		ledger:  ledgerSvc,
		badges:  badgeSvc,
		outbox:  outboxSvc,
		tx:      tx,
		config:  cfg,
		metrics: engineMetrics,
	}, nil
}

type actionRule struct {
	points int
	reason string
}

var actionRules = map[enums.AwardAction]actionRule{
	enums.AwardActionAttendance:     {points: 10, reason: "Attended an event"},
	enums.AwardActionActivity:       {points: 15, reason: "Completed an activity"},
	enums.AwardActionFeedback:       {points: 5, reason: "Submitted feedback"},
	enums.AwardActionHighEngagement: {points: 5, reason: "High engagement score"},
}

// Award credits the fixed amount for the action and applies its side
// effects in one transaction: counter update, level recalculation, badge
// evaluation, and the outbox events downstream consumers need.
func (s *service) Award(ctx context.Context, input AwardInput) (*AwardResult, error) {
	if !input.Action.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid award action")
	}
	rule := actionRules[input.Action]
	if input.Action == enums.AwardActionHighEngagement {
		if input.EngagementScore == nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "engagement score required for high engagement award")
		}
		if *input.EngagementScore < highEngagementThreshold {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "engagement score below award threshold")
		}
	}

	var result AwardResult
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		account, _, err := s.ledger.ApplyDeltaTx(ctx, tx, ledger.DeltaInput{
			Identity: input.Identity,
			Amount:   rule.points,
			Reason:   rule.reason,
			Source:   input.Action.PointSource(),
		})
		if err != nil {
			return err
		}

		if err := s.applyCounters(ctx, tx, account, input); err != nil {
			return err
		}

		leveledUp, err := s.applyLevel(ctx, tx, account, input.Identity)
		if err != nil {
			return err
		}

		earned, err := s.badges.EvaluateTx(ctx, tx, account, input.Identity)
		if err != nil {
			return err
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventPointsAwarded,
			AggregateType: enums.AggregatePointsAccount,
			AggregateID:   account.ID,
			Actor:         &outbox.ActorRef{UserID: input.Identity.UserID, Role: string(input.Identity.Role)},
			Data: payloads.PointsAwardedEvent{
				AccountID:    account.ID,
				UserID:       account.UserID,
				Action:       input.Action,
				Points:       rule.points,
				BalanceAfter: account.AvailablePoints,
				TotalPoints:  account.TotalPoints,
			},
			Version:    1,
			OccurredAt: time.Now(),
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit points awarded event")
		}

		result = AwardResult{
			Action:        input.Action,
			PointsAwarded: rule.points,
			BalanceAfter:  account.AvailablePoints,
			TotalPoints:   account.TotalPoints,
			Level:         account.Level,
			LeveledUp:     leveledUp,
			BadgesEarned:  earned,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.AddPointsAwarded(string(result.Action), result.PointsAwarded)
	for range result.BadgesEarned {
		s.metrics.IncBadgeEarned()
	}
	if result.LeveledUp {
		s.metrics.IncLevelUp()
	}
	return &result, nil
}

// applyCounters bumps the counter tied to the action and mirrors the bump
// on the in-memory account so badge evaluation sees post-award values.
func (s *service) applyCounters(ctx context.Context, tx *gorm.DB, account *models.PointsAccount, input AwardInput) error {
	repo := s.repo.WithTx(tx)
	switch input.Action {
	case enums.AwardActionAttendance:
		now := time.Now()
		if err := repo.RecordAttendance(ctx, account.ID, now); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record attendance")
		}
		account.EventsAttended++
		account.LastActivityDate = &now
	case enums.AwardActionActivity:
		if err := repo.IncrementActivities(ctx, account.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "increment activities")
		}
		account.ActivitiesCompleted++
	case enums.AwardActionFeedback:
		if err := repo.IncrementFeedback(ctx, account.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "increment feedback")
		}
		account.FeedbackSubmitted++
	case enums.AwardActionHighEngagement:
		if err := repo.SetEngagementRating(ctx, account.ID, *input.EngagementScore); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "set engagement rating")
		}
		account.EngagementRating = input.EngagementScore
	}
	return nil
}

// applyLevel recalculates the level from total points and records the
// transition when it moved up.
func (s *service) applyLevel(ctx context.Context, tx *gorm.DB, account *models.PointsAccount, identity accounts.Identity) (bool, error) {
	newLevel := account.TotalPoints/s.config.LevelDivisor + 1
	if newLevel <= account.Level {
		return false, nil
	}
	oldLevel := account.Level
	if err := s.repo.WithTx(tx).UpdateLevel(ctx, account.ID, newLevel); err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update level")
	}
	account.Level = newLevel

	actor := &outbox.ActorRef{UserID: identity.UserID, Role: string(identity.Role)}
	levelEvent := outbox.DomainEvent{
		EventType:     enums.EventLevelUp,
		AggregateType: enums.AggregatePointsAccount,
		AggregateID:   account.ID,
		Actor:         actor,
		Data: payloads.LevelUpEvent{
			AccountID:   account.ID,
			UserID:      account.UserID,
			OldLevel:    oldLevel,
			NewLevel:    newLevel,
			TotalPoints: account.TotalPoints,
		},
		Version:    1,
		OccurredAt: time.Now(),
	}
	if err := s.outbox.Emit(ctx, tx, levelEvent); err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit level up event")
	}

	notify := outbox.DomainEvent{
		EventType:     enums.EventNotificationRequested,
		AggregateType: enums.AggregateNotification,
		AggregateID:   uuid.New(),
		Actor:         actor,
		Data: payloads.NotificationRequestedEvent{
			UserID:  account.UserID,
			Type:    enums.NotificationTypeLevelUp,
			Title:   "Level up!",
			Message: fmt.Sprintf("You reached level %d", newLevel),
		},
		Version:    1,
		OccurredAt: time.Now(),
	}
	if err := s.outbox.Emit(ctx, tx, notify); err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit level up notification")
	}
	return true, nil
}
