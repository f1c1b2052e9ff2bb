package awards

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/engagehq/engage-backend/internal/accounts"
	"github.com/engagehq/engage-backend/internal/ledger"
	"github.com/engagehq/engage-backend/pkg/config"
	"github.com/engagehq/engage-backend/pkg/db/models"
	"github.com/engagehq/engage-backend/pkg/enums"
	pkgerrors "github.com/engagehq/engage-backend/pkg/errors"
	"github.com/engagehq/engage-backend/pkg/outbox"
)

type fakeRepository struct {
	attendanceFn func(ctx context.Context, accountID uuid.UUID, when time.Time) error
	activitiesFn func(ctx context.Context, accountID uuid.UUID) error
	feedbackFn   func(ctx context.Context, accountID uuid.UUID) error
	ratingFn     func(ctx context.Context, accountID uuid.UUID, rating float64) error
	levelFn      func(ctx context.Context, accountID uuid.UUID, level int) error
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepository) RecordAttendance(ctx context.Context, accountID uuid.UUID, when time.Time) error {
	if f.attendanceFn != nil {
		return f.attendanceFn(ctx, accountID, when)
	}
	return nil
}

func (f *fakeRepository) IncrementActivities(ctx context.Context, accountID uuid.UUID) error {
	if f.activitiesFn != nil {
		return f.activitiesFn(ctx, accountID)
	}
	return nil
}

func (f *fakeRepository) IncrementFeedback(ctx context.Context, accountID uuid.UUID) error {
	if f.feedbackFn != nil {
		return f.feedbackFn(ctx, accountID)
	}
	return nil
}

func (f *fakeRepository) SetEngagementRating(ctx context.Context, accountID uuid.UUID, rating float64) error {
	if f.ratingFn != nil {
		return f.ratingFn(ctx, accountID, rating)
	}
	return nil
}

func (f *fakeRepository) UpdateLevel(ctx context.Context, accountID uuid.UUID, level int) error {
	if f.levelFn != nil {
		return f.levelFn(ctx, accountID, level)
	}
	return nil
}

type fakeLedger struct {
	applyFn func(ctx context.Context, tx *gorm.DB, input ledger.DeltaInput) (*models.PointsAccount, *models.LedgerEntry, error)
}

func (f *fakeLedger) ApplyDeltaTx(ctx context.Context, tx *gorm.DB, input ledger.DeltaInput) (*models.PointsAccount, *models.LedgerEntry, error) {
	if f.applyFn != nil {
		return f.applyFn(ctx, tx, input)
	}
	return &models.PointsAccount{}, &models.LedgerEntry{}, nil
}

type fakeBadges struct {
	evaluateFn func(ctx context.Context, tx *gorm.DB, account *models.PointsAccount, identity accounts.Identity) ([]models.Badge, error)
}

func (f *fakeBadges) EvaluateTx(ctx context.Context, tx *gorm.DB, account *models.PointsAccount, identity accounts.Identity) ([]models.Badge, error) {
	if f.evaluateFn != nil {
		return f.evaluateFn(ctx, tx, account, identity)
	}
	return nil, nil
}

type fakeOutbox struct {
	events []outbox.DomainEvent
}

func (f *fakeOutbox) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	f.events = append(f.events, event)
	return nil
}

type noopTxRunner struct{}

func (noopTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func newAwardsService(t *testing.T, repo Repository, ledgerSvc deltaApplier, badgeSvc badgeEvaluator, outboxSvc outboxPublisher) Service {
	t.Helper()
	svc, err := NewService(repo, ledgerSvc, badgeSvc, outboxSvc, noopTxRunner{}, config.AwardsConfig{LevelDivisor: 100}, nil)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func testIdentity() accounts.Identity {
	return accounts.Identity{
		UserID:      uuid.New(),
		Email:       "member@corp.example",
		DisplayName: "Member",
		Role:        enums.MemberRoleEmployee,
	}
}

func TestAward_AttendanceCreditsAndCounts(t *testing.T) {
	identity := testIdentity()
	account := &models.PointsAccount{
		ID:              uuid.New(),
		UserID:          identity.UserID,
		Email:           identity.Email,
		AvailablePoints: 10,
		TotalPoints:     10,
		Level:           1,
		EventsAttended:  2,
	}

	var credited ledger.DeltaInput
	ledgerSvc := &fakeLedger{
		applyFn: func(ctx context.Context, tx *gorm.DB, input ledger.DeltaInput) (*models.PointsAccount, *models.LedgerEntry, error) {
			credited = input
			return account, &models.LedgerEntry{}, nil
		},
	}
	var attendanceCalls int
	repo := &fakeRepository{
		attendanceFn: func(ctx context.Context, accountID uuid.UUID, when time.Time) error {
			attendanceCalls++
			if accountID != account.ID {
				t.Fatalf("attendance recorded for account %s, want %s", accountID, account.ID)
			}
			return nil
		},
	}
	outboxSvc := &fakeOutbox{}

	svc := newAwardsService(t, repo, ledgerSvc, &fakeBadges{}, outboxSvc)
	result, err := svc.Award(context.Background(), AwardInput{Identity: identity, Action: enums.AwardActionAttendance})
	if err != nil {
		t.Fatalf("Award: %v", err)
	}

	if credited.Amount != 10 {
		t.Fatalf("credited %d points, want 10", credited.Amount)
	}
	if credited.Source != enums.PointSourceEventAttendance {
		t.Fatalf("credited source %q, want event_attendance", credited.Source)
	}
	if attendanceCalls != 1 {
		t.Fatalf("attendance counter bumped %d times, want 1", attendanceCalls)
	}
	if result.PointsAwarded != 10 {
		t.Fatalf("result points %d, want 10", result.PointsAwarded)
	}
	if account.EventsAttended != 3 {
		t.Fatalf("in-memory events_attended %d, want 3", account.EventsAttended)
	}
	if account.LastActivityDate == nil {
		t.Fatal("last activity date not set")
	}
	if len(outboxSvc.events) != 1 {
		t.Fatalf("emitted %d events, want 1", len(outboxSvc.events))
	}
	if outboxSvc.events[0].EventType != enums.EventPointsAwarded {
		t.Fatalf("event type %q, want points_awarded", outboxSvc.events[0].EventType)
	}
}

func TestAward_LevelUpEmitsEvents(t *testing.T) {
	identity := testIdentity()
	account := &models.PointsAccount{
		ID:              uuid.New(),
		UserID:          identity.UserID,
		Email:           identity.Email,
		AvailablePoints: 105,
		TotalPoints:     105,
		Level:           1,
	}
	ledgerSvc := &fakeLedger{
		applyFn: func(ctx context.Context, tx *gorm.DB, input ledger.DeltaInput) (*models.PointsAccount, *models.LedgerEntry, error) {
			return account, &models.LedgerEntry{}, nil
		},
	}
	var storedLevel int
	repo := &fakeRepository{
		levelFn: func(ctx context.Context, accountID uuid.UUID, level int) error {
			storedLevel = level
			return nil
		},
	}
	outboxSvc := &fakeOutbox{}

	svc := newAwardsService(t, repo, ledgerSvc, &fakeBadges{}, outboxSvc)
	result, err := svc.Award(context.Background(), AwardInput{Identity: identity, Action: enums.AwardActionFeedback})
	if err != nil {
		t.Fatalf("Award: %v", err)
	}

	if !result.LeveledUp {
		t.Fatal("expected a level up")
	}
	if result.Level != 2 || storedLevel != 2 {
		t.Fatalf("level result=%d stored=%d, want 2", result.Level, storedLevel)
	}
	types := make([]enums.OutboxEventType, 0, len(outboxSvc.events))
	for _, event := range outboxSvc.events {
		types = append(types, event.EventType)
	}
	want := []enums.OutboxEventType{enums.EventLevelUp, enums.EventNotificationRequested, enums.EventPointsAwarded}
	if len(types) != len(want) {
		t.Fatalf("emitted %d events, want %d (%v)", len(types), len(want), types)
	}
	for i, eventType := range want {
		if types[i] != eventType {
			t.Fatalf("event[%d] = %q, want %q", i, types[i], eventType)
		}
	}
}

func TestAward_SameTotalDoesNotLevelUp(t *testing.T) {
	identity := testIdentity()
	account := &models.PointsAccount{
		ID:          uuid.New(),
		UserID:      identity.UserID,
		TotalPoints: 95,
		Level:       1,
	}
	ledgerSvc := &fakeLedger{
		applyFn: func(ctx context.Context, tx *gorm.DB, input ledger.DeltaInput) (*models.PointsAccount, *models.LedgerEntry, error) {
			return account, &models.LedgerEntry{}, nil
		},
	}
	repo := &fakeRepository{
		levelFn: func(ctx context.Context, accountID uuid.UUID, level int) error {
			t.Fatal("level must not change")
			return nil
		},
	}

	svc := newAwardsService(t, repo, ledgerSvc, &fakeBadges{}, &fakeOutbox{})
	result, err := svc.Award(context.Background(), AwardInput{Identity: identity, Action: enums.AwardActionFeedback})
	if err != nil {
		t.Fatalf("Award: %v", err)
	}
	if result.LeveledUp {
		t.Fatal("unexpected level up")
	}
}

func TestAward_HighEngagementGating(t *testing.T) {
	identity := testIdentity()
	low := 3.2
	high := 4.5

	cases := []struct {
		name  string
		input AwardInput
		want  pkgerrors.Code
	}{
		{
			name:  "missing score",
			input: AwardInput{Identity: identity, Action: enums.AwardActionHighEngagement},
			want:  pkgerrors.CodeValidation,
		},
		{
			name:  "score below threshold",
			input: AwardInput{Identity: identity, Action: enums.AwardActionHighEngagement, EngagementScore: &low},
			want:  pkgerrors.CodeValidation,
		},
		{
			name:  "unknown action",
			input: AwardInput{Identity: identity, Action: enums.AwardAction("bogus")},
			want:  pkgerrors.CodeValidation,
		},
	}

	svc := newAwardsService(t, &fakeRepository{}, &fakeLedger{}, &fakeBadges{}, &fakeOutbox{})
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Award(context.Background(), tc.input)
			if err == nil {
				t.Fatal("expected error")
			}
			if code := pkgerrors.As(err).Code(); code != tc.want {
				t.Fatalf("code %q, want %q", code, tc.want)
			}
		})
	}

	account := &models.PointsAccount{ID: uuid.New(), UserID: identity.UserID, TotalPoints: 5, Level: 1}
	var storedRating float64
	repo := &fakeRepository{
		ratingFn: func(ctx context.Context, accountID uuid.UUID, rating float64) error {
			storedRating = rating
			return nil
		},
	}
	ledgerSvc := &fakeLedger{
		applyFn: func(ctx context.Context, tx *gorm.DB, input ledger.DeltaInput) (*models.PointsAccount, *models.LedgerEntry, error) {
			if input.Amount != 5 {
				t.Fatalf("credited %d, want 5", input.Amount)
			}
			return account, &models.LedgerEntry{}, nil
		},
	}
	svc = newAwardsService(t, repo, ledgerSvc, &fakeBadges{}, &fakeOutbox{})
	if _, err := svc.Award(context.Background(), AwardInput{Identity: identity, Action: enums.AwardActionHighEngagement, EngagementScore: &high}); err != nil {
		t.Fatalf("Award: %v", err)
	}
	if storedRating != high {
		t.Fatalf("stored rating %v, want %v", storedRating, high)
	}
}

func TestAward_BadgesSurfacedInResult(t *testing.T) {
	identity := testIdentity()
	account := &models.PointsAccount{ID: uuid.New(), UserID: identity.UserID, TotalPoints: 30, Level: 1}
	badge := models.Badge{ID: uuid.New(), Name: "Regular"}
	ledgerSvc := &fakeLedger{
		applyFn: func(ctx context.Context, tx *gorm.DB, input ledger.DeltaInput) (*models.PointsAccount, *models.LedgerEntry, error) {
			return account, &models.LedgerEntry{}, nil
		},
	}
	badgeSvc := &fakeBadges{
		evaluateFn: func(ctx context.Context, tx *gorm.DB, got *models.PointsAccount, _ accounts.Identity) ([]models.Badge, error) {
			if got.ActivitiesCompleted != 1 {
				t.Fatalf("badge evaluation saw activities_completed=%d, want post-award 1", got.ActivitiesCompleted)
			}
			return []models.Badge{badge}, nil
		},
	}

	svc := newAwardsService(t, &fakeRepository{}, ledgerSvc, badgeSvc, &fakeOutbox{})
	result, err := svc.Award(context.Background(), AwardInput{Identity: identity, Action: enums.AwardActionActivity})
	if err != nil {
		t.Fatalf("Award: %v", err)
	}
	if len(result.BadgesEarned) != 1 || result.BadgesEarned[0].ID != badge.ID {
		t.Fatalf("badges in result = %+v, want the unlocked badge", result.BadgesEarned)
	}
}
