package controllers

import (
	"context"

	"github.com/google/uuid"

	"github.com/engagehq/engage-backend/api/middleware"
	"github.com/engagehq/engage-backend/internal/accounts"
	"github.com/engagehq/engage-backend/pkg/enums"
	pkgerrors "github.com/engagehq/engage-backend/pkg/errors"
)

// callerIdentity assembles the authenticated caller from context values the
// auth middleware seeded. Requests that reach protected handlers without
// them indicate a wiring bug, surfaced as 401 rather than a panic.
func callerIdentity(ctx context.Context) (accounts.Identity, error) {
	raw := middleware.UserIDFromContext(ctx)
	if raw == "" {
		return accounts.Identity{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		return accounts.Identity{}, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user id")
	}

	role, err := enums.ParseMemberRole(middleware.RoleFromContext(ctx))
	if err != nil {
		role = enums.MemberRoleEmployee
	}

	return accounts.Identity{
		UserID:      userID,
		Email:       middleware.EmailFromContext(ctx),
		DisplayName: middleware.NameFromContext(ctx),
		Role:        role,
	}, nil
}
