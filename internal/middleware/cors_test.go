package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCORSOriginMatching(t *testing.T) {
	m := NewCORSMiddleware([]string{"https://app.example.com", ".example.org"})

	tests := []struct {
		name    string
		origin  string
		allowed bool
	}{
		{"exact match", "https://app.example.com", true},
		{"subdomain via dot entry", "https://api.example.org", true},
		{"lookalike suffix", "https://evil-example.com", false},
		{"lookalike dot suffix", "https://evilexample.org", false},
		{"unlisted origin", "https://other.com", false},
		{"empty origin", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.isOriginAllowed(tt.origin); got != tt.allowed {
				t.Fatalf("isOriginAllowed(%q) = %v, want %v", tt.origin, got, tt.allowed)
			}
		})
	}
}

func TestCORSAllowAllEchoesOrigin(t *testing.T) {
	m := NewCORSMiddleware([]string{"*"})
	handler := m.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/places", nil)
	req.Header.Set("Origin", "https://anywhere.test")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://anywhere.test" {
		t.Fatalf("Allow-Origin = %q, want request origin", got)
	}
}

func TestCORSPreflight(t *testing.T) {
	m := NewCORSMiddleware([]string{"*"})
	handler := m.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("preflight must not reach the next handler")
	}))

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/places", nil)
	req.Header.Set("Origin", "https://anywhere.test")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
}
