package cron

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/engagehq/engage-backend/pkg/logger"
)

type fakeRolloverRepo struct {
	daily     int
	weekly    int
	monthly   int
	err       error
	weeklyErr error
}

func (f *fakeRolloverRepo) ResetDailyPoints(ctx context.Context) (int64, error) {
	f.daily++
	return 3, f.err
}

func (f *fakeRolloverRepo) ResetWeeklyPoints(ctx context.Context) (int64, error) {
	f.weekly++
	return 2, f.weeklyErr
}

func (f *fakeRolloverRepo) ResetMonthlyPoints(ctx context.Context) (int64, error) {
	f.monthly++
	return 1, nil
}

type fakeMarkerStore struct {
	keys map[string]string
}

func newFakeMarkerStore() *fakeMarkerStore {
	return &fakeMarkerStore{keys: map[string]string{}}
}

func (f *fakeMarkerStore) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	if _, ok := f.keys[key]; ok {
		return false, nil
	}
	f.keys[key] = fmt.Sprint(value)
	return true, nil
}

func (f *fakeMarkerStore) Get(ctx context.Context, key string) (string, error) {
	value, ok := f.keys[key]
	if !ok {
		return "", redis.Nil
	}
	return value, nil
}

func (f *fakeMarkerStore) Del(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.keys, key)
	}
	return nil
}

func newRolloverJob(t *testing.T, repo *fakeRolloverRepo, store *fakeMarkerStore, now time.Time) *counterRolloverJob {
	t.Helper()
	jobIface, err := NewCounterRolloverJob(CounterRolloverJobParams{
		Logger:     logger.New(logger.Options{ServiceName: "test"}),
		Repository: repo,
		Store:      store,
	})
	if err != nil {
		t.Fatalf("NewCounterRolloverJob: %v", err)
	}
	job := jobIface.(*counterRolloverJob)
	job.now = func() time.Time { return now }
	return job
}

func TestCounterRolloverMidweekResetsDailyOnly(t *testing.T) {
	// A Wednesday that is not the 1st.
	now := time.Date(2026, 3, 11, 4, 0, 0, 0, time.UTC)
	repo := &fakeRolloverRepo{}
	job := newRolloverJob(t, repo, newFakeMarkerStore(), now)

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if repo.daily != 1 || repo.weekly != 0 || repo.monthly != 0 {
		t.Fatalf("resets daily=%d weekly=%d monthly=%d, want 1/0/0", repo.daily, repo.weekly, repo.monthly)
	}
}

func TestCounterRolloverRunsOncePerDay(t *testing.T) {
	now := time.Date(2026, 3, 11, 4, 0, 0, 0, time.UTC)
	repo := &fakeRolloverRepo{}
	store := newFakeMarkerStore()
	job := newRolloverJob(t, repo, store, now)

	ctx := context.Background()
	if err := job.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if err := job.Run(ctx); err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if repo.daily != 1 {
		t.Fatalf("daily reset %d times in one day, want 1", repo.daily)
	}

	job.now = func() time.Time { return now.Add(24 * time.Hour) }
	if err := job.Run(ctx); err != nil {
		t.Fatalf("next-day Run: %v", err)
	}
	if repo.daily != 2 {
		t.Fatalf("daily reset %d times across two days, want 2", repo.daily)
	}
}

func TestCounterRolloverSkipsAfterRestart(t *testing.T) {
	// 2026-06-01 is a Monday, so all three periods roll over.
	morning := time.Date(2026, 6, 1, 0, 30, 0, 0, time.UTC)
	repo := &fakeRolloverRepo{}
	store := newFakeMarkerStore()
	job := newRolloverJob(t, repo, store, morning)

	ctx := context.Background()
	if err := job.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if repo.daily != 1 || repo.weekly != 1 || repo.monthly != 1 {
		t.Fatalf("resets daily=%d weekly=%d monthly=%d, want 1/1/1", repo.daily, repo.weekly, repo.monthly)
	}

	// A fresh process later the same day shares the marker store but not
	// the job instance.
	afternoon := morning.Add(15 * time.Hour)
	restarted := newRolloverJob(t, repo, store, afternoon)
	if err := restarted.Run(ctx); err != nil {
		t.Fatalf("restarted Run: %v", err)
	}
	if repo.daily != 1 || repo.weekly != 1 || repo.monthly != 1 {
		t.Fatalf("restart re-ran resets: daily=%d weekly=%d monthly=%d, want 1/1/1", repo.daily, repo.weekly, repo.monthly)
	}
}

func TestCounterRolloverRetriesAfterError(t *testing.T) {
	now := time.Date(2026, 3, 11, 4, 0, 0, 0, time.UTC)
	repo := &fakeRolloverRepo{err: errors.New("boom")}
	job := newRolloverJob(t, repo, newFakeMarkerStore(), now)

	ctx := context.Background()
	if err := job.Run(ctx); err == nil {
		t.Fatal("expected error")
	}
	repo.err = nil
	if err := job.Run(ctx); err != nil {
		t.Fatalf("retry Run: %v", err)
	}
	if repo.daily != 2 {
		t.Fatalf("daily reset attempts %d, want 2", repo.daily)
	}
}

func TestCounterRolloverWeeklyRetryKeepsDailyMarker(t *testing.T) {
	// 2026-03-09 is a Monday.
	now := time.Date(2026, 3, 9, 4, 0, 0, 0, time.UTC)
	repo := &fakeRolloverRepo{weeklyErr: errors.New("boom")}
	job := newRolloverJob(t, repo, newFakeMarkerStore(), now)

	ctx := context.Background()
	if err := job.Run(ctx); err == nil {
		t.Fatal("expected error")
	}
	if repo.daily != 1 {
		t.Fatalf("daily reset %d times, want 1", repo.daily)
	}

	repo.weeklyErr = nil
	if err := job.Run(ctx); err != nil {
		t.Fatalf("retry Run: %v", err)
	}
	if repo.daily != 1 {
		t.Fatalf("retry re-zeroed daily counters: %d resets, want 1", repo.daily)
	}
	if repo.weekly != 2 {
		t.Fatalf("weekly reset attempts %d, want 2", repo.weekly)
	}
}
