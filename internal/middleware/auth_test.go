package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/hbnb-project/hbnb/internal/app/domain/user"
	"github.com/hbnb-project/hbnb/internal/logging"
)

const testSecret = "unit-test-secret"

func issueToken(t *testing.T, tm *TokenManager, u user.User) string {
	t.Helper()
	token, err := tm.Issue(u)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return token
}

func TestTokenManagerRoundTrip(t *testing.T) {
	tm := NewTokenManager(testSecret, time.Hour)

	token := issueToken(t, tm, user.User{ID: "user-123", Email: "a@b.com", IsAdmin: true})

	claims, err := tm.Parse(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserID != "user-123" {
		t.Errorf("UserID = %v, want user-123", claims.UserID)
	}
	if claims.Email != "a@b.com" {
		t.Errorf("Email = %v, want a@b.com", claims.Email)
	}
	if !claims.IsAdmin {
		t.Error("IsAdmin not carried")
	}
}

func expiredToken(t *testing.T) string {
	t.Helper()
	claims := &Claims{
		UserID: "u1",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u1",
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign expired token: %v", err)
	}
	return token
}

func TestTokenManagerRejects(t *testing.T) {
	tm := NewTokenManager(testSecret, time.Hour)
	other := NewTokenManager("other-secret", time.Hour)

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "invalid.token.here"},
		{"expired", expiredToken(t)},
		{"wrong secret", issueToken(t, other, user.User{ID: "u1"})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tm.Parse(tt.token); err == nil {
				t.Fatalf("expected parse failure")
			}
		})
	}
}

func TestAuthMiddlewareAnonymousPassThrough(t *testing.T) {
	tm := NewTokenManager(testSecret, time.Hour)
	m := NewAuthMiddleware(tm, logging.NewNop())

	var captured string
	handler := m.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = GetUserID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/places", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if captured != "" {
		t.Fatalf("expected anonymous request, got user %q", captured)
	}
}

func TestAuthMiddlewareValidToken(t *testing.T) {
	tm := NewTokenManager(testSecret, time.Hour)
	m := NewAuthMiddleware(tm, logging.NewNop())

	var capturedUser string
	var capturedAdmin bool
	handler := m.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedUser = GetUserID(r.Context())
		capturedAdmin = IsAdmin(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	token := issueToken(t, tm, user.User{ID: "user-123", IsAdmin: true})
	req := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if capturedUser != "user-123" {
		t.Errorf("user = %q, want user-123", capturedUser)
	}
	if !capturedAdmin {
		t.Error("admin role not carried into context")
	}
}

func TestAuthMiddlewareRejectsBadHeaders(t *testing.T) {
	tm := NewTokenManager(testSecret, time.Hour)
	m := NewAuthMiddleware(tm, logging.NewNop())

	handler := m.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name   string
		header string
	}{
		{"no bearer prefix", "token123"},
		{"wrong prefix", "Basic token123"},
		{"empty token", "Bearer "},
		{"invalid token", "Bearer invalid.token.here"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
			req.Header.Set("Authorization", tt.header)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("status = %d, want 401", rec.Code)
			}
		})
	}
}

func TestRequireUserID(t *testing.T) {
	handler := RequireUserID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name       string
		ctx        context.Context
		wantStatus int
	}{
		{"with user", logging.WithUserID(context.Background(), "user-123"), http.StatusOK},
		{"anonymous", context.Background(), http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
			req = req.WithContext(tt.ctx)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}
