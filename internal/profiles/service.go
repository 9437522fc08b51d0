package profiles

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rvanstaden/huisvind-backend/pkg/db"
	"github.com/rvanstaden/huisvind-backend/pkg/db/models"
	"github.com/rvanstaden/huisvind-backend/pkg/enums"
	pkgerrors "github.com/rvanstaden/huisvind-backend/pkg/errors"
)

type profileRepository interface {
	Create(ctx context.Context, profile *models.UserProfile) error
	FindByUID(ctx context.Context, uid uuid.UUID) (*models.UserProfile, error)
	Save(ctx context.Context, profile *models.UserProfile) error
	UpdateRole(ctx context.Context, uid uuid.UUID, role enums.UserRole) (int64, error)
	SetActive(ctx context.Context, uid uuid.UUID, active bool) (int64, error)
	ListByRole(ctx context.Context, role enums.UserRole) ([]models.UserProfile, error)
}

// Service exposes profile operations.
type Service interface {
	Create(ctx context.Context, identity IdentitySnapshot) (*ProfileDTO, error)
	Ensure(ctx context.Context, identity IdentitySnapshot) (*ProfileDTO, error)
	Get(ctx context.Context, uid uuid.UUID) (*ProfileDTO, error)
	Load(ctx context.Context, uid uuid.UUID) (*models.UserProfile, error)
	Update(ctx context.Context, uid uuid.UUID, input UpdateProfileInput) (*ProfileDTO, error)
	UpdateRole(ctx context.Context, uid uuid.UUID, role enums.UserRole) error
	Deactivate(ctx context.Context, uid uuid.UUID) error
	ListByRole(ctx context.Context, role enums.UserRole) ([]ProfileDTO, error)
}

type service struct {
	repo profileRepository
}

// NewService builds a profile service with the provided repository.
func NewService(repo profileRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("profile repository required")
	}
	return &service{repo: repo}, nil
}

// Create persists a fresh profile for the identity. Creating over an
// existing uid is a caller bug and fails with AlreadyExists.
func (s *service) Create(ctx context.Context, identity IdentitySnapshot) (*ProfileDTO, error) {
	profile := identity.ToModel()
	if err := s.repo.Create(ctx, profile); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeAlreadyExists, "profile already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create profile")
	}
	return FromModel(profile), nil
}

// Ensure returns the profile for the identity, creating it on first sign-in.
// Safe to call on every login.
func (s *service) Ensure(ctx context.Context, identity IdentitySnapshot) (*ProfileDTO, error) {
	existing, err := s.Get(ctx, identity.UID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	created, err := s.Create(ctx, identity)
	if err == nil {
		return created, nil
	}
	// Lost a create race with a concurrent login; the other writer's row wins.
	if pkgerrors.IsCode(err, pkgerrors.CodeAlreadyExists) {
		return s.Get(ctx, identity.UID)
	}
	return nil, err
}

// Get looks a profile up by uid. Absence is a normal outcome, not an error.
func (s *service) Get(ctx context.Context, uid uuid.UUID) (*ProfileDTO, error) {
	profile, err := s.Load(ctx, uid)
	if err != nil {
		return nil, err
	}
	return FromModel(profile), nil
}

// Load returns the raw profile model, nil when absent. Used by capability
// checks that evaluate the model directly.
func (s *service) Load(ctx context.Context, uid uuid.UUID) (*models.UserProfile, error) {
	profile, err := s.repo.FindByUID(ctx, uid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load profile")
	}
	return profile, nil
}

// Update merges the provided fields into the profile and restamps updated_at.
func (s *service) Update(ctx context.Context, uid uuid.UUID, input UpdateProfileInput) (*ProfileDTO, error) {
	profile, err := s.repo.FindByUID(ctx, uid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "profile not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load profile")
	}

	if input.DisplayName != nil {
		profile.DisplayName = *input.DisplayName
		first, last := splitDisplayName(*input.DisplayName)
		if input.FirstName == nil {
			profile.FirstName = first
		}
		if input.LastName == nil {
			profile.LastName = last
		}
	}
	if input.FirstName != nil {
		profile.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		profile.LastName = *input.LastName
	}
	if input.PhotoURL != nil {
		profile.PhotoURL = clonePtr(input.PhotoURL)
	}
	if input.Phone != nil {
		profile.Phone = clonePtr(input.Phone)
	}
	if input.Preferences != nil {
		profile.Preferences = *input.Preferences
	}

	if err := s.repo.Save(ctx, profile); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save profile")
	}
	return FromModel(profile), nil
}

// UpdateRole overwrites the profile's role. Caller privilege is enforced at
// the route layer; the store itself stays policy-free.
func (s *service) UpdateRole(ctx context.Context, uid uuid.UUID, role enums.UserRole) error {
	if !role.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid role")
	}
	affected, err := s.repo.UpdateRole(ctx, uid, role)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update role")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "profile not found")
	}
	return nil
}

// Deactivate soft-disables the profile. Profiles are never hard-deleted.
func (s *service) Deactivate(ctx context.Context, uid uuid.UUID) error {
	affected, err := s.repo.SetActive(ctx, uid, false)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deactivate profile")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "profile not found")
	}
	return nil
}

// ListByRole returns profiles with the given role, newest first.
func (s *service) ListByRole(ctx context.Context, role enums.UserRole) ([]ProfileDTO, error) {
	if !role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid role")
	}
	rows, err := s.repo.ListByRole(ctx, role)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list profiles")
	}
	out := make([]ProfileDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out, nil
}
