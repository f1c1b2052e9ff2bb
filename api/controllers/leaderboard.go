package controllers

import (
	"net/http"
	"strings"

	"github.com/engagehq/engage-backend/api/responses"
	"github.com/engagehq/engage-backend/internal/leaderboard"
	"github.com/engagehq/engage-backend/pkg/enums"
	pkgerrors "github.com/engagehq/engage-backend/pkg/errors"
	"github.com/engagehq/engage-backend/pkg/logger"
)

// Leaderboard returns the ranked view for the requested category and period.
func Leaderboard(svc leaderboard.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "leaderboard service unavailable"))
			return
		}

		identity, err := callerIdentity(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		query := leaderboard.Query{
			Category:    enums.LeaderboardCategoryPoints,
			Period:      enums.LeaderboardPeriodAllTime,
			CallerEmail: identity.Email,
		}

		if raw := strings.TrimSpace(r.URL.Query().Get("category")); raw != "" {
			category, err := enums.ParseLeaderboardCategory(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category"))
				return
			}
			query.Category = category
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("period")); raw != "" {
			period, err := enums.ParseLeaderboardPeriod(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid period"))
				return
			}
			query.Period = period
		}

		result, err := svc.Get(r.Context(), query)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
