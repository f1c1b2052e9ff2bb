package badges

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/engagehq/engage-backend/internal/accounts"
	"github.com/engagehq/engage-backend/internal/ledger"
	dbpkg "github.com/engagehq/engage-backend/pkg/db"
	"github.com/engagehq/engage-backend/pkg/db/models"
	"github.com/engagehq/engage-backend/pkg/enums"
	pkgerrors "github.com/engagehq/engage-backend/pkg/errors"
	"github.com/engagehq/engage-backend/pkg/outbox"
	"github.com/engagehq/engage-backend/pkg/outbox/payloads"
)

type deltaApplier interface {
	ApplyDeltaTx(ctx context.Context, tx *gorm.DB, input ledger.DeltaInput) (*models.PointsAccount, *models.LedgerEntry, error)
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service evaluates badge criteria after point awards.
type Service interface {
	EvaluateTx(ctx context.Context, tx *gorm.DB, account *models.PointsAccount, identity accounts.Identity) ([]models.Badge, error)
}

type service struct {
	repo   Repository
	ledger deltaApplier
	outbox outboxPublisher
}

// NewService builds the badge evaluator.
func NewService(repo Repository, ledgerSvc deltaApplier, outboxSvc outboxPublisher) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("badges repository required")
	}
	if ledgerSvc == nil {
		return nil, fmt.Errorf("ledger service required")
	}
	if outboxSvc == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{repo: repo, ledger: ledgerSvc, outbox: outboxSvc}, nil
}

// EvaluateTx awards every active badge whose criteria counter has reached
// its threshold. Evaluation is a single pass over the account state the
// caller hands in: points credited by a badge do not retrigger points_total
// badges within the same award.
func (s *service) EvaluateTx(ctx context.Context, tx *gorm.DB, account *models.PointsAccount, identity accounts.Identity) ([]models.Badge, error) {
	repo := s.repo.WithTx(tx)

	active, err := repo.ListActive(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list active badges")
	}
	if len(active) == 0 {
		return nil, nil
	}

	earnedIDs, err := repo.ListEarnedBadgeIDs(ctx, account.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list earned badges")
	}
	earned := make(map[uuid.UUID]struct{}, len(earnedIDs))
	for _, id := range earnedIDs {
		earned[id] = struct{}{}
	}

	var unlocked []models.Badge
	for _, badge := range active {
		if _, ok := earned[badge.ID]; ok {
			continue
		}
		if criteriaValue(account, badge.Criteria) < badge.Threshold {
			continue
		}

		record := &models.EarnedBadge{
			ID:        uuid.New(),
			AccountID: account.ID,
			BadgeID:   badge.ID,
			EarnedAt:  time.Now().UTC(),
		}
		if err := repo.CreateEarned(ctx, record); err != nil {
			if dbpkg.IsUniqueViolation(err, "idx_earned_account_badge") {
				continue
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record earned badge")
		}
		if err := repo.IncrementEarnedCount(ctx, account.ID); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "bump badge counter")
		}

		if badge.PointsValue > 0 {
			badgeID := badge.ID
			_, _, err := s.ledger.ApplyDeltaTx(ctx, tx, ledger.DeltaInput{
				Identity:    identity,
				Amount:      badge.PointsValue,
				Reason:      fmt.Sprintf("Earned badge %s", badge.Name),
				Source:      enums.PointSourceBadgeAward,
				ReferenceID: &badgeID,
			})
			if err != nil {
				return nil, err
			}
		}

		if err := s.emitEarned(ctx, tx, account, identity, badge, record.EarnedAt); err != nil {
			return nil, err
		}
		unlocked = append(unlocked, badge)
	}
	return unlocked, nil
}

func (s *service) emitEarned(ctx context.Context, tx *gorm.DB, account *models.PointsAccount, identity accounts.Identity, badge models.Badge, earnedAt time.Time) error {
	err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventBadgeEarned,
		AggregateType: enums.AggregateBadge,
		AggregateID:   badge.ID,
		Version:       1,
		Actor:         &outbox.ActorRef{UserID: identity.UserID, Role: string(identity.Role)},
		Data: payloads.BadgeEarnedEvent{
			AccountID:   account.ID,
			UserID:      account.UserID,
			BadgeID:     badge.ID,
			BadgeName:   badge.Name,
			PointsValue: badge.PointsValue,
			EarnedAt:    earnedAt,
		},
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit badge earned event")
	}

	err = s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventNotificationRequested,
		AggregateType: enums.AggregateNotification,
		AggregateID:   uuid.New(),
		Version:       1,
		Actor:         &outbox.ActorRef{UserID: identity.UserID, Role: string(identity.Role)},
		Data: payloads.NotificationRequestedEvent{
			UserID:  account.UserID,
			Type:    enums.NotificationTypeBadgeEarned,
			Title:   "Badge unlocked",
			Message: fmt.Sprintf("You earned the %s badge!", badge.Name),
		},
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit badge notification event")
	}
	return nil
}

func criteriaValue(account *models.PointsAccount, criteria enums.BadgeCriteria) int {
	switch criteria {
	case enums.BadgeCriteriaEventsAttended:
		return account.EventsAttended
	case enums.BadgeCriteriaActivitiesCompleted:
		return account.ActivitiesCompleted
	case enums.BadgeCriteriaFeedbackSubmitted:
		return account.FeedbackSubmitted
	case enums.BadgeCriteriaPointsTotal:
		return account.TotalPoints
	case enums.BadgeCriteriaStreakDays:
		return account.StreakDays
	default:
		return 0
	}
}
