package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	authsvc "github.com/rvanstaden/huisvind-backend/internal/auth"
	pkgerrors "github.com/rvanstaden/huisvind-backend/pkg/errors"
	"github.com/rvanstaden/huisvind-backend/pkg/logger"
)

type testAuthService struct {
	loginFn    func(ctx context.Context, sessionKey, email, password string) (*authsvc.Session, error)
	registerFn func(ctx context.Context, sessionKey string, input authsvc.RegisterInput) (*authsvc.Session, error)
	refreshFn  func(ctx context.Context, accessToken, refreshToken string) (*authsvc.Session, error)
	logoutFn   func(ctx context.Context, sessionKey, accessToken string) error
}

func (s *testAuthService) Login(ctx context.Context, sessionKey, email, password string) (*authsvc.Session, error) {
	if s.loginFn != nil {
		return s.loginFn(ctx, sessionKey, email, password)
	}
	return &authsvc.Session{}, nil
}

func (s *testAuthService) Register(ctx context.Context, sessionKey string, input authsvc.RegisterInput) (*authsvc.Session, error) {
	if s.registerFn != nil {
		return s.registerFn(ctx, sessionKey, input)
	}
	return &authsvc.Session{}, nil
}

func (s *testAuthService) Refresh(ctx context.Context, accessToken, refreshToken string) (*authsvc.Session, error) {
	if s.refreshFn != nil {
		return s.refreshFn(ctx, accessToken, refreshToken)
	}
	return &authsvc.Session{}, nil
}

func (s *testAuthService) Logout(ctx context.Context, sessionKey, accessToken string) error {
	if s.logoutFn != nil {
		return s.logoutFn(ctx, sessionKey, accessToken)
	}
	return nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func decodeErrorCode(t *testing.T, body []byte) string {
	t.Helper()
	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		t.Fatalf("unmarshal error envelope: %v", err)
	}
	return envelope.Error.Code
}

func TestAuthLoginSuccess(t *testing.T) {
	var gotEmail string
	svc := &testAuthService{
		loginFn: func(ctx context.Context, sessionKey, email, password string) (*authsvc.Session, error) {
			gotEmail = email
			return &authsvc.Session{AccessToken: "access", RefreshToken: "refresh"}, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"email":"piet@example.com","password":"wagwoord"}`))
	resp := httptest.NewRecorder()
	AuthLogin(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	if gotEmail != "piet@example.com" {
		t.Fatalf("unexpected email %q", gotEmail)
	}
	var envelope struct {
		Data authsvc.Session `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if envelope.Data.AccessToken != "access" || envelope.Data.RefreshToken != "refresh" {
		t.Fatalf("unexpected session %+v", envelope.Data)
	}
}

func TestAuthLoginSessionKeyPrecedence(t *testing.T) {
	cases := []struct {
		name      string
		header    map[string]string
		remote    string
		expectKey string
	}{
		{
			name:      "explicit session key header wins",
			header:    map[string]string{"X-Session-Key": "device-42", "X-Forwarded-For": "10.0.0.9"},
			remote:    "192.168.1.5:1234",
			expectKey: "device-42",
		},
		{
			name:      "forwarded-for beats remote addr",
			header:    map[string]string{"X-Forwarded-For": "10.0.0.9, 10.0.0.1"},
			remote:    "192.168.1.5:1234",
			expectKey: "10.0.0.9",
		},
		{
			name:      "falls back to remote host",
			remote:    "192.168.1.5:1234",
			expectKey: "192.168.1.5",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var gotKey string
			svc := &testAuthService{
				loginFn: func(ctx context.Context, sessionKey, email, password string) (*authsvc.Session, error) {
					gotKey = sessionKey
					return &authsvc.Session{}, nil
				},
			}

			req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"email":"piet@example.com","password":"wagwoord"}`))
			req.RemoteAddr = tc.remote
			for k, v := range tc.header {
				req.Header.Set(k, v)
			}
			resp := httptest.NewRecorder()
			AuthLogin(svc, testLogger())(resp, req)

			if resp.Code != http.StatusOK {
				t.Fatalf("unexpected status %d", resp.Code)
			}
			if gotKey != tc.expectKey {
				t.Fatalf("expected session key %q got %q", tc.expectKey, gotKey)
			}
		})
	}
}

func TestAuthLoginRejectsInvalidBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"email":"not-an-email","password":""}`))
	resp := httptest.NewRecorder()
	AuthLogin(&testAuthService{}, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	if code := decodeErrorCode(t, resp.Body.Bytes()); code != "VALIDATION_ERROR" {
		t.Fatalf("unexpected error code %q", code)
	}
}

func TestAuthLoginRateLimited(t *testing.T) {
	svc := &testAuthService{
		loginFn: func(ctx context.Context, sessionKey, email, password string) (*authsvc.Session, error) {
			return nil, pkgerrors.New(pkgerrors.CodeRateLimit, "too many failed attempts").
				WithDetails(map[string]any{"retry_after_minutes": 15})
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"email":"piet@example.com","password":"verkeerd1"}`))
	resp := httptest.NewRecorder()
	AuthLogin(svc, testLogger())(resp, req)

	if resp.Code != http.StatusTooManyRequests {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	if code := decodeErrorCode(t, resp.Body.Bytes()); code != "RATE_LIMITED" {
		t.Fatalf("unexpected error code %q", code)
	}
}

func TestAuthRegisterCreated(t *testing.T) {
	var gotInput authsvc.RegisterInput
	svc := &testAuthService{
		registerFn: func(ctx context.Context, sessionKey string, input authsvc.RegisterInput) (*authsvc.Session, error) {
			gotInput = input
			return &authsvc.Session{AccessToken: "access"}, nil
		},
	}

	body := `{"email":"sannie@example.com","password":"wagwoord123","display_name":"Sannie"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(body))
	resp := httptest.NewRecorder()
	AuthRegister(svc, testLogger())(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	if gotInput.Email != "sannie@example.com" || gotInput.DisplayName != "Sannie" {
		t.Fatalf("unexpected input %+v", gotInput)
	}
}

func TestAuthRegisterShortPassword(t *testing.T) {
	body := `{"email":"sannie@example.com","password":"kort","display_name":"Sannie"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(body))
	resp := httptest.NewRecorder()
	AuthRegister(&testAuthService{}, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status %d", resp.Code)
	}
}

func TestAuthRefreshRotates(t *testing.T) {
	svc := &testAuthService{
		refreshFn: func(ctx context.Context, accessToken, refreshToken string) (*authsvc.Session, error) {
			if accessToken != "old-access" || refreshToken != "old-refresh" {
				t.Fatalf("unexpected tokens %q %q", accessToken, refreshToken)
			}
			return &authsvc.Session{AccessToken: "new-access", RefreshToken: "new-refresh"}, nil
		},
	}

	body := `{"access_token":"old-access","refresh_token":"old-refresh"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", strings.NewReader(body))
	resp := httptest.NewRecorder()
	AuthRefresh(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
}

func TestAuthLogout(t *testing.T) {
	var revokedToken string
	svc := &testAuthService{
		logoutFn: func(ctx context.Context, sessionKey, accessToken string) error {
			revokedToken = accessToken
			return nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", strings.NewReader(`{"access_token":"access-123"}`))
	resp := httptest.NewRecorder()
	AuthLogout(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	if revokedToken != "access-123" {
		t.Fatalf("unexpected token %q", revokedToken)
	}
}
