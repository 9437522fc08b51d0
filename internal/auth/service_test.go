package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/rvanstaden/huisvind-backend/internal/identity"
	"github.com/rvanstaden/huisvind-backend/internal/profiles"
	"github.com/rvanstaden/huisvind-backend/internal/ratelimit"
	pkgauth "github.com/rvanstaden/huisvind-backend/pkg/auth"
	"github.com/rvanstaden/huisvind-backend/pkg/auth/session"
	"github.com/rvanstaden/huisvind-backend/pkg/config"
	"github.com/rvanstaden/huisvind-backend/pkg/db/models"
	"github.com/rvanstaden/huisvind-backend/pkg/enums"
	pkgerrors "github.com/rvanstaden/huisvind-backend/pkg/errors"
)

type stubIdentityProvider struct {
	identity  *models.Identity
	signInErr error
	signUpErr error
}

func (p *stubIdentityProvider) SignUp(ctx context.Context, input identity.SignUpInput) (*models.Identity, error) {
	if p.signUpErr != nil {
		return nil, p.signUpErr
	}
	return p.identity, nil
}

func (p *stubIdentityProvider) SignIn(ctx context.Context, email, password string) (*models.Identity, error) {
	if p.signInErr != nil {
		return nil, p.signInErr
	}
	return p.identity, nil
}

type stubProfileService struct {
	profile   *profiles.ProfileDTO
	ensureErr error
	ensured   int
}

func (s *stubProfileService) Ensure(ctx context.Context, snapshot profiles.IdentitySnapshot) (*profiles.ProfileDTO, error) {
	if s.ensureErr != nil {
		return nil, s.ensureErr
	}
	s.ensured++
	return s.profile, nil
}

func (s *stubProfileService) Get(ctx context.Context, uid uuid.UUID) (*profiles.ProfileDTO, error) {
	return s.profile, nil
}

type stubSessionManager struct {
	refreshToken string
	rotateErr    error
	revoked      []string
}

func (m *stubSessionManager) Generate(ctx context.Context, accessID string) (string, error) {
	return m.refreshToken, nil
}

func (m *stubSessionManager) Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error) {
	if m.rotateErr != nil {
		return "", "", m.rotateErr
	}
	return session.NewAccessID(), m.refreshToken + "-rotated", nil
}

func (m *stubSessionManager) Revoke(ctx context.Context, accessID string) error {
	m.revoked = append(m.revoked, accessID)
	return nil
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:                 "test-secret-test-secret-test-secret!",
		Issuer:                 "huisvind-test",
		ExpirationMinutes:      15,
		RefreshTokenTTLMinutes: 1440,
	}
}

func guardConfig() config.LoginGuardConfig {
	return config.LoginGuardConfig{
		MaxAttempts:     5,
		AttemptWindow:   5 * time.Minute,
		LockoutDuration: 15 * time.Minute,
	}
}

type authFixture struct {
	svc      Service
	provider *stubIdentityProvider
	profiles *stubProfileService
	sessions *stubSessionManager
	limiters *ratelimit.Registry
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	uid := uuid.New()
	provider := &stubIdentityProvider{
		identity: &models.Identity{
			UID:         uid,
			Email:       "piet@example.co.za",
			DisplayName: "Piet van der Merwe",
		},
	}
	profileSvc := &stubProfileService{
		profile: &profiles.ProfileDTO{
			UID:      uid,
			Email:    "piet@example.co.za",
			Role:     enums.UserRoleAgent,
			IsActive: true,
		},
	}
	sessions := &stubSessionManager{refreshToken: "refresh-abc"}
	limiters := ratelimit.NewRegistry(guardConfig(), nil)

	svc, err := NewService(testJWTConfig(), provider, profileSvc, sessions, limiters, nil, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return &authFixture{
		svc:      svc,
		provider: provider,
		profiles: profileSvc,
		sessions: sessions,
		limiters: limiters,
	}
}

func TestLoginSuccessIssuesSessionAndEnsuresProfile(t *testing.T) {
	fx := newAuthFixture(t)

	out, err := fx.svc.Login(context.Background(), "session-1", "piet@example.co.za", "korrelkop-8")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if out.AccessToken == "" || out.RefreshToken == "" {
		t.Fatal("expected a full token pair")
	}
	if fx.profiles.ensured != 1 {
		t.Fatal("login must ensure the profile exists")
	}

	claims, err := pkgauth.ParseAccessToken(testJWTConfig(), out.AccessToken)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.UserID != fx.profiles.profile.UID {
		t.Fatal("token must carry the profile uid")
	}
	if claims.Role != enums.UserRoleAgent {
		t.Fatalf("token must carry the profile role, got %s", claims.Role)
	}
}

func TestLoginLocksOutAfterRepeatedFailures(t *testing.T) {
	fx := newAuthFixture(t)
	fx.provider.signInErr = pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid email or password")

	for i := 0; i < 5; i++ {
		_, err := fx.svc.Login(context.Background(), "session-1", "piet@example.co.za", "wrong")
		if !pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
			t.Fatalf("attempt %d: expected Unauthenticated, got %v", i+1, err)
		}
	}

	_, err := fx.svc.Login(context.Background(), "session-1", "piet@example.co.za", "wrong")
	if !pkgerrors.IsCode(err, pkgerrors.CodeRateLimit) {
		t.Fatalf("expected RateLimited after lockout, got %v", err)
	}
	appErr := pkgerrors.As(err)
	details, ok := appErr.Details().(map[string]any)
	if !ok {
		t.Fatalf("expected retry details, got %#v", appErr.Details())
	}
	if details["retry_after_minutes"] != 15 {
		t.Fatalf("expected retry_after_minutes=15, got %v", details["retry_after_minutes"])
	}
}

func TestLoginLockoutIsPerSession(t *testing.T) {
	fx := newAuthFixture(t)
	fx.provider.signInErr = pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid email or password")

	for i := 0; i < 5; i++ {
		_, _ = fx.svc.Login(context.Background(), "session-1", "piet@example.co.za", "wrong")
	}

	fx.provider.signInErr = nil
	if _, err := fx.svc.Login(context.Background(), "session-2", "piet@example.co.za", "korrelkop-8"); err != nil {
		t.Fatalf("a fresh session must not inherit the lockout: %v", err)
	}
}

func TestLoginStoreFailureDoesNotCountTowardLockout(t *testing.T) {
	fx := newAuthFixture(t)
	fx.provider.signInErr = pkgerrors.Wrap(pkgerrors.CodeDependency, errors.New("connection refused"), "load identity")

	for i := 0; i < 6; i++ {
		_, err := fx.svc.Login(context.Background(), "session-1", "piet@example.co.za", "pw")
		if !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
			t.Fatalf("expected store unavailable, got %v", err)
		}
	}
	if fx.limiters.Get("session-1").Remaining() != 5 {
		t.Fatal("store failures must not consume login attempts")
	}
}

func TestLoginSuccessResetsLimiter(t *testing.T) {
	fx := newAuthFixture(t)
	fx.provider.signInErr = pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid email or password")

	for i := 0; i < 3; i++ {
		_, _ = fx.svc.Login(context.Background(), "session-1", "piet@example.co.za", "wrong")
	}

	fx.provider.signInErr = nil
	if _, err := fx.svc.Login(context.Background(), "session-1", "piet@example.co.za", "korrelkop-8"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if fx.limiters.Get("session-1").Remaining() != 5 {
		t.Fatal("successful login must reset the limiter")
	}
}

func TestRegisterIssuesSession(t *testing.T) {
	fx := newAuthFixture(t)

	out, err := fx.svc.Register(context.Background(), "session-1", RegisterInput{
		Email:       "piet@example.co.za",
		Password:    "korrelkop-8",
		DisplayName: "Piet van der Merwe",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if out.AccessToken == "" || out.RefreshToken == "" {
		t.Fatal("expected a full token pair")
	}
	if fx.profiles.ensured != 1 {
		t.Fatal("register must create the profile")
	}
}

func TestRegisterDuplicatePropagates(t *testing.T) {
	fx := newAuthFixture(t)
	fx.provider.signUpErr = pkgerrors.New(pkgerrors.CodeAlreadyExists, "an account with this email already exists")

	_, err := fx.svc.Register(context.Background(), "session-1", RegisterInput{
		Email:    "piet@example.co.za",
		Password: "korrelkop-8",
	})
	if !pkgerrors.IsCode(err, pkgerrors.CodeAlreadyExists) {
		t.Fatalf("expected AlreadyExists, got %v", err)
	}
}

func TestRefreshRotatesAndReissues(t *testing.T) {
	fx := newAuthFixture(t)

	login, err := fx.svc.Login(context.Background(), "session-1", "piet@example.co.za", "korrelkop-8")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	refreshed, err := fx.svc.Refresh(context.Background(), login.AccessToken, login.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if refreshed.RefreshToken != "refresh-abc-rotated" {
		t.Fatalf("expected rotated refresh token, got %q", refreshed.RefreshToken)
	}
	if refreshed.AccessToken == login.AccessToken {
		t.Fatal("refresh must mint a new access token")
	}
}

func TestRefreshInvalidTokenIsUnauthenticated(t *testing.T) {
	fx := newAuthFixture(t)
	fx.sessions.rotateErr = session.ErrInvalidRefreshToken

	login, err := fx.svc.Login(context.Background(), "session-1", "piet@example.co.za", "korrelkop-8")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	_, err = fx.svc.Refresh(context.Background(), login.AccessToken, "stolen-token")
	if !pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected Unauthenticated, got %v", err)
	}

	_, err = fx.svc.Refresh(context.Background(), "garbage", "whatever")
	if !pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected Unauthenticated for garbage access token, got %v", err)
	}
}

func TestLogoutRevokesSessionAndForgetsLimiter(t *testing.T) {
	fx := newAuthFixture(t)
	fx.provider.signInErr = pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid email or password")
	_, _ = fx.svc.Login(context.Background(), "session-1", "piet@example.co.za", "wrong")
	fx.provider.signInErr = nil

	login, err := fx.svc.Login(context.Background(), "session-1", "piet@example.co.za", "korrelkop-8")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if err := fx.svc.Logout(context.Background(), "session-1", login.AccessToken); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if len(fx.sessions.revoked) != 1 {
		t.Fatalf("expected one revoked session, got %d", len(fx.sessions.revoked))
	}
	if fx.limiters.Len() != 0 {
		t.Fatal("logout must drop the session limiter")
	}
}
