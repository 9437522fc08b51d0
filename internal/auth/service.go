package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rvanstaden/huisvind-backend/internal/identity"
	"github.com/rvanstaden/huisvind-backend/internal/profiles"
	"github.com/rvanstaden/huisvind-backend/internal/ratelimit"
	pkgauth "github.com/rvanstaden/huisvind-backend/pkg/auth"
	"github.com/rvanstaden/huisvind-backend/pkg/auth/session"
	"github.com/rvanstaden/huisvind-backend/pkg/config"
	"github.com/rvanstaden/huisvind-backend/pkg/db/models"
	pkgerrors "github.com/rvanstaden/huisvind-backend/pkg/errors"
	"github.com/rvanstaden/huisvind-backend/pkg/logger"
)

type identityProvider interface {
	SignUp(ctx context.Context, input identity.SignUpInput) (*models.Identity, error)
	SignIn(ctx context.Context, email, password string) (*models.Identity, error)
}

type profileService interface {
	Ensure(ctx context.Context, snapshot profiles.IdentitySnapshot) (*profiles.ProfileDTO, error)
	Get(ctx context.Context, uid uuid.UUID) (*profiles.ProfileDTO, error)
}

type sessionManager interface {
	Generate(ctx context.Context, accessID string) (string, error)
	Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error)
	Revoke(ctx context.Context, accessID string) error
}

// Session is the token pair plus the profile handed back after a successful
// authentication.
type Session struct {
	AccessToken  string               `json:"access_token"`
	RefreshToken string               `json:"refresh_token"`
	Profile      *profiles.ProfileDTO `json:"profile"`
}

// RegisterInput carries the sign-up fields.
type RegisterInput struct {
	Email       string
	Password    string
	DisplayName string
	Phone       *string
}

// Service composes the identity provider, the profile store, the per-session
// login limiter, and token/session management into the auth flows.
type Service interface {
	Login(ctx context.Context, sessionKey, email, password string) (*Session, error)
	Register(ctx context.Context, sessionKey string, input RegisterInput) (*Session, error)
	Refresh(ctx context.Context, accessToken, refreshToken string) (*Session, error)
	Logout(ctx context.Context, sessionKey, accessToken string) error
}

type service struct {
	jwtCfg   config.JWTConfig
	provider identityProvider
	profiles profileService
	sessions sessionManager
	limiters *ratelimit.Registry
	logg     *logger.Logger
	now      func() time.Time
}

// NewService builds the auth service. A nil clock falls back to time.Now.
func NewService(
	jwtCfg config.JWTConfig,
	provider identityProvider,
	profileSvc profileService,
	sessions sessionManager,
	limiters *ratelimit.Registry,
	logg *logger.Logger,
	now func() time.Time,
) (Service, error) {
	if provider == nil {
		return nil, fmt.Errorf("identity provider required")
	}
	if profileSvc == nil {
		return nil, fmt.Errorf("profile service required")
	}
	if sessions == nil {
		return nil, fmt.Errorf("session manager required")
	}
	if limiters == nil {
		return nil, fmt.Errorf("rate limit registry required")
	}
	if now == nil {
		now = time.Now
	}
	return &service{
		jwtCfg:   jwtCfg,
		provider: provider,
		profiles: profileSvc,
		sessions: sessions,
		limiters: limiters,
		logg:     logg,
		now:      now,
	}, nil
}

// Login authenticates the credentials behind the per-session lockout.
// Credential failures count toward the lockout; store failures do not.
func (s *service) Login(ctx context.Context, sessionKey, email, password string) (*Session, error) {
	limiter := s.limiters.Get(sessionKey)
	if status := limiter.Check(); !status.Allowed {
		return nil, pkgerrors.New(pkgerrors.CodeRateLimit, "too many failed login attempts").
			WithDetails(map[string]any{"retry_after_minutes": status.RetryAfterMinutes})
	}

	signedIn, err := s.provider.SignIn(ctx, email, password)
	if err != nil {
		if pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
			limiter.Record(false)
		}
		return nil, err
	}
	limiter.Record(true)

	profile, err := s.profiles.Ensure(ctx, snapshotFrom(signedIn))
	if err != nil {
		return nil, err
	}
	return s.issueSession(ctx, profile)
}

// Register creates a new identity plus its profile and signs the caller in.
func (s *service) Register(ctx context.Context, sessionKey string, input RegisterInput) (*Session, error) {
	limiter := s.limiters.Get(sessionKey)
	if status := limiter.Check(); !status.Allowed {
		return nil, pkgerrors.New(pkgerrors.CodeRateLimit, "too many failed login attempts").
			WithDetails(map[string]any{"retry_after_minutes": status.RetryAfterMinutes})
	}

	created, err := s.provider.SignUp(ctx, identity.SignUpInput{
		Email:       input.Email,
		Password:    input.Password,
		DisplayName: input.DisplayName,
		Phone:       input.Phone,
	})
	if err != nil {
		return nil, err
	}

	profile, err := s.profiles.Ensure(ctx, snapshotFrom(created))
	if err != nil {
		return nil, err
	}
	return s.issueSession(ctx, profile)
}

// Refresh rotates the refresh token and reissues an access token carrying
// the profile's current role.
func (s *service) Refresh(ctx context.Context, accessToken, refreshToken string) (*Session, error) {
	claims, err := pkgauth.ParseAccessTokenAllowExpired(s.jwtCfg, accessToken)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid session")
	}

	newAccessID, newRefreshToken, err := s.sessions.Rotate(ctx, claims.ID, refreshToken)
	if err != nil {
		if errors.Is(err, session.ErrInvalidRefreshToken) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid session")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rotate session")
	}

	profile, err := s.profiles.Get(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid session")
	}

	token, err := pkgauth.MintAccessToken(s.jwtCfg, s.now(), pkgauth.AccessTokenPayload{
		UserID: profile.UID,
		Role:   profile.Role,
		JTI:    newAccessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}

	return &Session{
		AccessToken:  token,
		RefreshToken: newRefreshToken,
		Profile:      profile,
	}, nil
}

// Logout revokes the refresh session and tears down the login limiter bound
// to the session key.
func (s *service) Logout(ctx context.Context, sessionKey, accessToken string) error {
	s.limiters.Forget(sessionKey)

	claims, err := pkgauth.ParseAccessTokenAllowExpired(s.jwtCfg, accessToken)
	if err != nil {
		// Nothing to revoke without a parseable token.
		return nil
	}
	if err := s.sessions.Revoke(ctx, claims.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke session")
	}
	return nil
}

func (s *service) issueSession(ctx context.Context, profile *profiles.ProfileDTO) (*Session, error) {
	accessID := session.NewAccessID()
	token, err := pkgauth.MintAccessToken(s.jwtCfg, s.now(), pkgauth.AccessTokenPayload{
		UserID: profile.UID,
		Role:   profile.Role,
		JTI:    accessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}

	refreshToken, err := s.sessions.Generate(ctx, accessID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store session")
	}

	return &Session{
		AccessToken:  token,
		RefreshToken: refreshToken,
		Profile:      profile,
	}, nil
}

func snapshotFrom(signedIn *models.Identity) profiles.IdentitySnapshot {
	return profiles.IdentitySnapshot{
		UID:         signedIn.UID,
		Email:       signedIn.Email,
		DisplayName: signedIn.DisplayName,
		PhotoURL:    signedIn.PhotoURL,
		Phone:       signedIn.Phone,
	}
}
