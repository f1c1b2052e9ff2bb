package accounts

import (
	"context"
	stdErrors "errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbpkg "github.com/engagehq/engage-backend/pkg/db"
	"github.com/engagehq/engage-backend/pkg/db/models"
	"github.com/engagehq/engage-backend/pkg/enums"
	pkgerrors "github.com/engagehq/engage-backend/pkg/errors"
)

// Identity carries the caller fields needed to lazily create an account.
// They come from the access token, not from request bodies.
type Identity struct {
	UserID      uuid.UUID
	Email       string
	DisplayName string
	Role        enums.MemberRole
}

// Service exposes account reads for controllers.
type Service interface {
	Me(ctx context.Context, userID uuid.UUID) (*models.PointsAccount, error)
	ByEmail(ctx context.Context, email string) (*models.PointsAccount, error)
}

type service struct {
	repo Repository
}

// NewService builds an accounts service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("accounts repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Me(ctx context.Context, userID uuid.UUID) (*models.PointsAccount, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	account, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "points account not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load points account")
	}
	return account, nil
}

func (s *service) ByEmail(ctx context.Context, email string) (*models.PointsAccount, error) {
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	account, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "points account not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load points account")
	}
	return account, nil
}

// GetOrCreate loads the identity's account, creating it on first touch.
// Safe to call inside a transaction by passing repo.WithTx(tx).
func GetOrCreate(ctx context.Context, repo Repository, identity Identity) (*models.PointsAccount, error) {
	if identity.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	account, err := repo.FindByUserID(ctx, identity.UserID)
	if err == nil {
		return account, nil
	}
	if !stdErrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load points account")
	}

	role := identity.Role
	if !role.IsValid() {
		role = enums.MemberRoleEmployee
	}
	fresh := &models.PointsAccount{
		ID:          uuid.New(),
		UserID:      identity.UserID,
		Email:       identity.Email,
		DisplayName: identity.DisplayName,
		Role:        role,
		Level:       1,
	}
	created, err := repo.Create(ctx, fresh)
	if err == nil {
		return created, nil
	}
	if dbpkg.IsUniqueViolation(err, "") {
		// Lost a creation race; the winner's row is authoritative.
		return repo.FindByUserID(ctx, identity.UserID)
	}
	return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create points account")
}
