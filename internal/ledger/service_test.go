package ledger

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/engagehq/engage-backend/internal/accounts"
	"github.com/engagehq/engage-backend/pkg/db/models"
	"github.com/engagehq/engage-backend/pkg/enums"
	pkgerrors "github.com/engagehq/engage-backend/pkg/errors"
	"github.com/engagehq/engage-backend/pkg/pagination"
)

type gormTxRunner struct {
	db *gorm.DB
}

func (g gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return g.db.WithContext(ctx).Transaction(fn)
}

func setupLedgerTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:ledger_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	pointsAccounts := `
CREATE TABLE IF NOT EXISTS points_accounts (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL UNIQUE,
  email TEXT NOT NULL UNIQUE,
  display_name TEXT NOT NULL,
  role TEXT NOT NULL DEFAULT 'employee',
  available_points INTEGER NOT NULL DEFAULT 0,
  total_points INTEGER NOT NULL DEFAULT 0,
  lifetime_points INTEGER NOT NULL DEFAULT 0,
  level INTEGER NOT NULL DEFAULT 1,
  events_attended INTEGER NOT NULL DEFAULT 0,
  activities_completed INTEGER NOT NULL DEFAULT 0,
  feedback_submitted INTEGER NOT NULL DEFAULT 0,
  streak_days INTEGER NOT NULL DEFAULT 0,
  badges_earned INTEGER NOT NULL DEFAULT 0,
  monthly_points INTEGER NOT NULL DEFAULT 0,
  weekly_points INTEGER NOT NULL DEFAULT 0,
  daily_points INTEGER NOT NULL DEFAULT 0,
  engagement_rating REAL,
  last_activity_date DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	ledgerEntries := `
CREATE TABLE IF NOT EXISTS ledger_entries (
  id TEXT PRIMARY KEY,
  account_id TEXT NOT NULL,
  user_id TEXT NOT NULL,
  points INTEGER NOT NULL,
  source TEXT NOT NULL,
  description TEXT NOT NULL,
  reference_id TEXT,
  balance_after INTEGER NOT NULL,
  metadata TEXT,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(pointsAccounts).Error)
	require.NoError(t, db.Exec(ledgerEntries).Error)
	return db
}

func newLedgerService(t *testing.T, db *gorm.DB) Service {
	t.Helper()

	svc, err := NewService(NewRepository(db), accounts.NewRepository(db), gormTxRunner{db: db})
	require.NoError(t, err)
	return svc
}

func testIdentity() accounts.Identity {
	return accounts.Identity{
		UserID:      uuid.New(),
		Email:       uuid.NewString() + "@engage.test",
		DisplayName: "Test Member",
		Role:        enums.MemberRoleEmployee,
	}
}

func TestApplyDelta_CreditCreatesAccountLazily(t *testing.T) {
	db := setupLedgerTestDB(t)
	svc := newLedgerService(t, db)
	identity := testIdentity()

	account, entry, err := svc.ApplyDelta(context.Background(), DeltaInput{
		Identity: identity,
		Amount:   100,
		Reason:   "Event attendance",
		Source:   enums.PointSourceEventAttendance,
	})
	require.NoError(t, err)

	assert.Equal(t, identity.UserID, account.UserID)
	assert.Equal(t, 100, account.AvailablePoints)
	assert.Equal(t, 100, account.TotalPoints)
	assert.Equal(t, 100, account.LifetimePoints)
	assert.Equal(t, 100, account.MonthlyPoints)
	assert.Equal(t, 100, account.WeeklyPoints)
	assert.Equal(t, 100, account.DailyPoints)

	assert.Equal(t, 100, entry.Points)
	assert.Equal(t, 100, entry.BalanceAfter)
	assert.Equal(t, enums.PointSourceEventAttendance, entry.Source)
}

func TestApplyDelta_DebitLeavesTotalsAlone(t *testing.T) {
	db := setupLedgerTestDB(t)
	svc := newLedgerService(t, db)
	identity := testIdentity()
	ctx := context.Background()

	_, _, err := svc.ApplyDelta(ctx, DeltaInput{
		Identity: identity,
		Amount:   200,
		Reason:   "Recognition",
		Source:   enums.PointSourceRecognition,
	})
	require.NoError(t, err)

	account, entry, err := svc.ApplyDelta(ctx, DeltaInput{
		Identity: identity,
		Amount:   -50,
		Reason:   "Purchased Wizard Hat",
		Source:   enums.PointSourceStorePurchase,
	})
	require.NoError(t, err)

	assert.Equal(t, 150, account.AvailablePoints)
	assert.Equal(t, 200, account.TotalPoints)
	assert.Equal(t, 200, account.LifetimePoints)
	assert.Equal(t, 150, entry.BalanceAfter)
	assert.Equal(t, -50, entry.Points)
}

func TestApplyDelta_InsufficientDebitRejectedUntouched(t *testing.T) {
	db := setupLedgerTestDB(t)
	svc := newLedgerService(t, db)
	identity := testIdentity()
	ctx := context.Background()

	_, _, err := svc.ApplyDelta(ctx, DeltaInput{
		Identity: identity,
		Amount:   50,
		Reason:   "Feedback",
		Source:   enums.PointSourceFeedback,
	})
	require.NoError(t, err)

	_, _, err = svc.ApplyDelta(ctx, DeltaInput{
		Identity: identity,
		Amount:   -80,
		Reason:   "Purchased Golden Frame",
		Source:   enums.PointSourceStorePurchase,
	})
	require.Error(t, err)

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeInsufficientPoints, typed.Code())
	details, ok := typed.Details().(ShortfallDetails)
	require.True(t, ok)
	assert.Equal(t, 80, details.Required)
	assert.Equal(t, 50, details.Available)

	var account models.PointsAccount
	require.NoError(t, db.First(&account, "user_id = ?", identity.UserID).Error)
	assert.Equal(t, 50, account.AvailablePoints)
	assert.Equal(t, 50, account.TotalPoints)
	assert.Equal(t, 50, account.LifetimePoints)

	var entryCount int64
	require.NoError(t, db.Model(&models.LedgerEntry{}).Where("account_id = ?", account.ID).Count(&entryCount).Error)
	assert.Equal(t, int64(1), entryCount)
}

func TestApplyDelta_ConcurrentDebitsNeverOverdraw(t *testing.T) {
	db := setupLedgerTestDB(t)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// SQLite allows a single writer; the pool serializes the racing
	// transactions so each one hits the balance guard in turn.
	sqlDB.SetMaxOpenConns(1)

	svc := newLedgerService(t, db)
	identity := testIdentity()
	ctx := context.Background()

	_, _, err = svc.ApplyDelta(ctx, DeltaInput{
		Identity: identity,
		Amount:   100,
		Reason:   "Recognition",
		Source:   enums.PointSourceRecognition,
	})
	require.NoError(t, err)

	const workers = 8
	results := make(chan error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := svc.ApplyDelta(ctx, DeltaInput{
				Identity: identity,
				Amount:   -30,
				Reason:   "Purchased Mystery Box",
				Source:   enums.PointSourceStorePurchase,
			})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	succeeded, rejected := 0, 0
	for err := range results {
		if err == nil {
			succeeded++
			continue
		}
		typed := pkgerrors.As(err)
		require.NotNil(t, typed)
		assert.Equal(t, pkgerrors.CodeInsufficientPoints, typed.Code())
		rejected++
	}
	assert.Equal(t, 3, succeeded)
	assert.Equal(t, workers-3, rejected)

	var account models.PointsAccount
	require.NoError(t, db.First(&account, "user_id = ?", identity.UserID).Error)
	assert.Equal(t, 10, account.AvailablePoints)
	assert.GreaterOrEqual(t, account.AvailablePoints, 0)

	var entryCount int64
	require.NoError(t, db.Model(&models.LedgerEntry{}).Where("account_id = ?", account.ID).Count(&entryCount).Error)
	assert.Equal(t, int64(4), entryCount)
}

func TestApplyDelta_DebitWithoutAccount(t *testing.T) {
	db := setupLedgerTestDB(t)
	svc := newLedgerService(t, db)

	_, _, err := svc.ApplyDelta(context.Background(), DeltaInput{
		Identity: testIdentity(),
		Amount:   -10,
		Reason:   "Purchased Sticker",
		Source:   enums.PointSourceStorePurchase,
	})
	require.Error(t, err)

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNoBalanceRecord, typed.Code())
}

func TestApplyDelta_Validation(t *testing.T) {
	db := setupLedgerTestDB(t)
	svc := newLedgerService(t, db)
	ctx := context.Background()

	cases := []struct {
		name  string
		input DeltaInput
	}{
		{"zero amount", DeltaInput{Identity: testIdentity(), Amount: 0, Reason: "noop", Source: enums.PointSourceRecognition}},
		{"blank reason", DeltaInput{Identity: testIdentity(), Amount: 10, Reason: "  ", Source: enums.PointSourceRecognition}},
		{"bad source", DeltaInput{Identity: testIdentity(), Amount: 10, Reason: "credit", Source: enums.PointSource("mystery")}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := svc.ApplyDelta(ctx, tc.input)
			require.Error(t, err)
			typed := pkgerrors.As(err)
			require.NotNil(t, typed)
			assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
		})
	}
}

func TestHistory_CursorPagination(t *testing.T) {
	db := setupLedgerTestDB(t)
	svc := newLedgerService(t, db)
	repo := NewRepository(db)
	ctx := context.Background()

	identity := testIdentity()
	account, err := accounts.GetOrCreate(ctx, accounts.NewRepository(db), identity)
	require.NoError(t, err)

	base := time.Now().UTC().Truncate(time.Second)
	for i := 0; i < 3; i++ {
		entry := &models.LedgerEntry{
			ID:           uuid.New(),
			AccountID:    account.ID,
			UserID:       identity.UserID,
			Points:       10 * (i + 1),
			Source:       enums.PointSourceRecognition,
			Description:  "Recognition",
			BalanceAfter: 10 * (i + 1),
			CreatedAt:    base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, repo.CreateEntry(ctx, entry))
	}

	first, err := svc.History(ctx, identity.UserID, pagination.Params{Limit: 2})
	require.NoError(t, err)
	require.Len(t, first.Entries, 2)
	assert.NotEmpty(t, first.NextCursor)
	assert.Equal(t, 30, first.Entries[0].Points)
	assert.Equal(t, 20, first.Entries[1].Points)

	second, err := svc.History(ctx, identity.UserID, pagination.Params{Limit: 2, Cursor: first.NextCursor})
	require.NoError(t, err)
	require.Len(t, second.Entries, 1)
	assert.Equal(t, 10, second.Entries[0].Points)
	assert.Empty(t, second.NextCursor)
}

func TestHistory_NoAccountReturnsEmptyPage(t *testing.T) {
	db := setupLedgerTestDB(t)
	svc := newLedgerService(t, db)

	page, err := svc.History(context.Background(), uuid.New(), pagination.Params{})
	require.NoError(t, err)
	assert.Empty(t, page.Entries)
	assert.Empty(t, page.NextCursor)
}
