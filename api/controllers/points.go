package controllers

import (
	"net/http"
	"strings"

	"github.com/engagehq/engage-backend/api/responses"
	"github.com/engagehq/engage-backend/api/validators"
	"github.com/engagehq/engage-backend/internal/accounts"
	"github.com/engagehq/engage-backend/internal/awards"
	"github.com/engagehq/engage-backend/internal/ledger"
	"github.com/engagehq/engage-backend/pkg/enums"
	pkgerrors "github.com/engagehq/engage-backend/pkg/errors"
	"github.com/engagehq/engage-backend/pkg/logger"
	"github.com/engagehq/engage-backend/pkg/pagination"
)

// PointsMe returns the caller's account snapshot.
func PointsMe(svc accounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "accounts service unavailable"))
			return
		}

		identity, err := callerIdentity(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		account, err := svc.Me(r.Context(), identity.UserID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, account)
	}
}

// PointsHistory returns a cursor page of the caller's ledger entries.
func PointsHistory(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ledger service unavailable"))
			return
		}

		identity, err := callerIdentity(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params := pagination.Params{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		}

		page, err := svc.History(r.Context(), identity.UserID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

type awardRequest struct {
	UserEmail       string   `json:"user_email,omitempty" validate:"omitempty,email"`
	Action          string   `json:"action" validate:"required"`
	EngagementScore *float64 `json:"engagement_score,omitempty" validate:"omitempty,gte=0,lte=5"`
}

// AwardPoints credits an engagement action. Managers and admins may target
// another member by email; omitting user_email credits the caller.
func AwardPoints(svc awards.Service, accountsSvc accounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil || accountsSvc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "awards service unavailable"))
			return
		}

		identity, err := callerIdentity(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req awardRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		action, err := enums.ParseAwardAction(validators.SanitizeString(req.Action, 64))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid action"))
			return
		}

		target := identity
		if email := validators.SanitizeString(req.UserEmail, 320); email != "" && !strings.EqualFold(email, identity.Email) {
			account, err := accountsSvc.ByEmail(r.Context(), email)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			target = accounts.Identity{
				UserID:      account.UserID,
				Email:       account.Email,
				DisplayName: account.DisplayName,
				Role:        account.Role,
			}
		}

		result, err := svc.Award(r.Context(), awards.AwardInput{
			Identity:        target,
			Action:          action,
			EngagementScore: req.EngagementScore,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
