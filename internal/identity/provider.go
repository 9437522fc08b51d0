package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rvanstaden/huisvind-backend/pkg/config"
	"github.com/rvanstaden/huisvind-backend/pkg/db"
	"github.com/rvanstaden/huisvind-backend/pkg/db/models"
	pkgerrors "github.com/rvanstaden/huisvind-backend/pkg/errors"
	"github.com/rvanstaden/huisvind-backend/pkg/security"
)

type identityRepository interface {
	Create(ctx context.Context, identity *models.Identity) error
	FindByEmail(ctx context.Context, email string) (*models.Identity, error)
	FindByUID(ctx context.Context, uid uuid.UUID) (*models.Identity, error)
	UpdateLastLogin(ctx context.Context, uid uuid.UUID, at time.Time) error
}

// Provider authenticates email/password credentials against the identities
// table. Credential failures deliberately collapse into one message so the
// response does not reveal whether the email is registered.
type Provider struct {
	repo        identityRepository
	passwordCfg config.PasswordConfig
}

// NewProvider builds an identity provider over the given repository.
func NewProvider(repo identityRepository, passwordCfg config.PasswordConfig) (*Provider, error) {
	if repo == nil {
		return nil, fmt.Errorf("identity repository required")
	}
	return &Provider{repo: repo, passwordCfg: passwordCfg}, nil
}

// SignUpInput carries the fields required to register a new identity.
type SignUpInput struct {
	Email       string
	Password    string
	DisplayName string
	Phone       *string
}

// SignUp registers a new identity. Duplicate emails fail with AlreadyExists.
func (p *Provider) SignUp(ctx context.Context, input SignUpInput) (*models.Identity, error) {
	email := normalizeEmail(input.Email)
	if !strings.Contains(email, "@") {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid email")
	}
	if len(input.Password) < 8 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "password must be at least 8 characters")
	}

	hash, err := security.HashPassword(input.Password, p.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	identity := &models.Identity{
		Email:        email,
		PasswordHash: hash,
		DisplayName:  strings.TrimSpace(input.DisplayName),
		Phone:        input.Phone,
	}
	if err := p.repo.Create(ctx, identity); err != nil {
		if db.IsUniqueViolation(err, "idx_identities_email") {
			return nil, pkgerrors.New(pkgerrors.CodeAlreadyExists, "an account with this email already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create identity")
	}
	return identity, nil
}

// SignIn verifies the credentials and returns the matching identity.
// Unknown email and wrong password both fail with Unauthenticated.
func (p *Provider) SignIn(ctx context.Context, email, password string) (*models.Identity, error) {
	identity, err := p.repo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid email or password")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load identity")
	}

	ok, err := security.VerifyPassword(password, identity.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid email or password")
	}

	now := time.Now()
	// last_login_at is best effort
	if err := p.repo.UpdateLastLogin(ctx, identity.UID, now); err == nil {
		identity.LastLoginAt = &now
	}
	return identity, nil
}

// Get loads an identity by its key.
func (p *Provider) Get(ctx context.Context, uid uuid.UUID) (*models.Identity, error) {
	identity, err := p.repo.FindByUID(ctx, uid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "identity not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load identity")
	}
	return identity, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
