package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/engagehq/engage-backend/internal/leaderboard"
	"github.com/engagehq/engage-backend/pkg/enums"
)

type fakeLeaderboardService struct {
	getFn func(ctx context.Context, query leaderboard.Query) (*leaderboard.Result, error)
}

func (f *fakeLeaderboardService) Get(ctx context.Context, query leaderboard.Query) (*leaderboard.Result, error) {
	return f.getFn(ctx, query)
}

func TestLeaderboardDefaultsToPointsAllTime(t *testing.T) {
	svc := &fakeLeaderboardService{
		getFn: func(ctx context.Context, query leaderboard.Query) (*leaderboard.Result, error) {
			if query.Category != enums.LeaderboardCategoryPoints {
				t.Fatalf("expected points category got %s", query.Category)
			}
			if query.Period != enums.LeaderboardPeriodAllTime {
				t.Fatalf("expected all_time period got %s", query.Period)
			}
			if query.CallerEmail != "member@example.com" {
				t.Fatalf("expected caller email got %s", query.CallerEmail)
			}
			return &leaderboard.Result{Category: query.Category, Period: query.Period}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/leaderboard", nil).WithContext(callerContext(uuid.New()))
	resp := httptest.NewRecorder()
	Leaderboard(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestLeaderboardParsesCategoryAndPeriod(t *testing.T) {
	svc := &fakeLeaderboardService{
		getFn: func(ctx context.Context, query leaderboard.Query) (*leaderboard.Result, error) {
			if query.Category != enums.LeaderboardCategoryEngagement {
				t.Fatalf("expected engagement category got %s", query.Category)
			}
			if query.Period != enums.LeaderboardPeriodWeekly {
				t.Fatalf("expected weekly period got %s", query.Period)
			}
			return &leaderboard.Result{Category: query.Category, Period: query.Period}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/leaderboard?category=engagement&period=weekly", nil).WithContext(callerContext(uuid.New()))
	resp := httptest.NewRecorder()
	Leaderboard(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestLeaderboardRejectsUnknownPeriod(t *testing.T) {
	svc := &fakeLeaderboardService{
		getFn: func(ctx context.Context, query leaderboard.Query) (*leaderboard.Result, error) {
			t.Fatal("service must not be called")
			return nil, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/leaderboard?period=fortnightly", nil).WithContext(callerContext(uuid.New()))
	resp := httptest.NewRecorder()
	Leaderboard(svc, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}
