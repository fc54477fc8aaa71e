package metrics

import "testing"

func TestCanonicalPath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"/", "/"},
		{"/healthz", "/healthz"},
		{"/metrics", "/metrics"},
		{"/api/v1/places", "/api/v1/places"},
		{"/api/v1/places/42", "/api/v1/places/:id"},
		{"/api/v1/places/42/reviews", "/api/v1/places/:id/reviews"},
		{"/api/v1/users/9f3c", "/api/v1/users/:id"},
		{"/api/v1/auth/login", "/api/v1/auth/login"},
		{"/api/v1/auth/me", "/api/v1/auth/me"},
		{"/api/v1/admin/audit", "/api/v1/admin/audit"},
	}
	for _, tt := range tests {
		if got := canonicalPath(tt.in); got != tt.want {
			t.Errorf("canonicalPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
