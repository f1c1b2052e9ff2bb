package leaderboard

import (
	"context"
	"fmt"

	"github.com/engagehq/engage-backend/internal/accounts"
	"github.com/engagehq/engage-backend/pkg/config"
	"github.com/engagehq/engage-backend/pkg/enums"
	pkgerrors "github.com/engagehq/engage-backend/pkg/errors"
)

// Query selects the leaderboard view and identifies the caller.
type Query struct {
	Category    enums.LeaderboardCategory
	Period      enums.LeaderboardPeriod
	CallerEmail string
}

// Result is the full leaderboard response payload.
type Result struct {
	Rankings          []ScoredUser              `json:"rankings"`
	MyRank            *int                      `json:"my_rank"`
	Nearby            []ScoredUser              `json:"nearby"`
	TotalParticipants int                       `json:"total_participants"`
	Category          enums.LeaderboardCategory `json:"category"`
	Period            enums.LeaderboardPeriod   `json:"period"`
}

// Service computes leaderboards from account snapshots.
type Service interface {
	Get(ctx context.Context, query Query) (*Result, error)
}

type service struct {
	accounts accounts.Repository
	cfg      config.LeaderboardConfig
}

// NewService builds the leaderboard read service.
func NewService(accountsRepo accounts.Repository, cfg config.LeaderboardConfig) (Service, error) {
	if accountsRepo == nil {
		return nil, fmt.Errorf("accounts repository required")
	}
	if cfg.PublicCap <= 0 {
		return nil, fmt.Errorf("leaderboard public cap must be positive")
	}
	if cfg.NearbyRadius < 0 {
		return nil, fmt.Errorf("leaderboard nearby radius must be non-negative")
	}
	return &service{accounts: accountsRepo, cfg: cfg}, nil
}

// Get scores and ranks a point-in-time snapshot of all accounts. Read-only;
// truncation to the public cap happens after RankOf/Nearby are resolved
// against the full ranking.
func (s *service) Get(ctx context.Context, query Query) (*Result, error) {
	if !query.Category.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid leaderboard category")
	}
	if !query.Period.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid leaderboard period")
	}

	snapshot, err := s.accounts.ListSnapshot(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load account snapshot")
	}

	scored := make([]ScoredUser, 0, len(snapshot))
	for _, account := range snapshot {
		score := Score(account, query.Category, query.Period)
		if score == 0 {
			continue
		}
		scored = append(scored, ScoredUser{
			Email:       account.Email,
			DisplayName: account.DisplayName,
			Level:       account.Level,
			Score:       score,
		})
	}

	ranking := Rank(scored)
	return &Result{
		Rankings:          ranking.Top(s.cfg.PublicCap),
		MyRank:            ranking.RankOf(query.CallerEmail),
		Nearby:            ranking.Nearby(query.CallerEmail, s.cfg.NearbyRadius),
		TotalParticipants: len(ranking),
		Category:          query.Category,
		Period:            query.Period,
	}, nil
}
