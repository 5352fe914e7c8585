package auth

import (
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
)

func protectedEcho(t *testing.T, issuer *Issuer, got **UserContext) http.Handler {
	t.Helper()

	return Middleware(issuer)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*got = GetUserFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))
}

func TestMiddleware_MissingOrMalformedHeader(t *testing.T) {
	t.Parallel()

	issuer := NewIssuer("access-secret", "refresh-secret")

	tests := []struct {
		name   string
		header string
	}{
		{"no header", ""},
		{"not bearer", "Token abc123"},
		{"bare scheme", "Bearer"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got *UserContext
			handler := protectedEcho(t, issuer, &got)

			req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			if w.Code != http.StatusUnauthorized {
				t.Errorf("expected 401, got %d", w.Code)
			}
			if got != nil {
				t.Error("handler must not run without a credential")
			}
		})
	}
}

func TestMiddleware_InvalidToken(t *testing.T) {
	t.Parallel()

	issuer := NewIssuer("access-secret", "refresh-secret")

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not.a.jwt"},
		{"expired", signExpiredAccessToken(t, "access-secret")},
		{"wrong secret", signExpiredAccessToken(t, "other-secret")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got *UserContext
			handler := protectedEcho(t, issuer, &got)

			req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
			req.Header.Set("Authorization", "Bearer "+tt.token)
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			if w.Code != http.StatusForbidden {
				t.Errorf("expected 403, got %d", w.Code)
			}
			if got != nil {
				t.Error("handler must not run with a bad credential")
			}
		})
	}
}

func TestMiddleware_ValidToken(t *testing.T) {
	t.Parallel()

	issuer := NewIssuer("access-secret", "refresh-secret")

	tok, err := issuer.IssueAccessToken("alice", []string{"Employee", "Manager"})
	if err != nil {
		t.Fatalf("IssueAccessToken error: %v", err)
	}

	var got *UserContext
	handler := protectedEcho(t, issuer, &got)

	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if got == nil {
		t.Fatal("expected identity in request context")
	}
	if got.Username != "alice" {
		t.Errorf("username mismatch: got %q", got.Username)
	}
	if !reflect.DeepEqual(got.Roles, []string{"Employee", "Manager"}) {
		t.Errorf("roles mismatch: got %v", got.Roles)
	}
}

// A token carries the roles it was issued with; role edits in storage do not
// invalidate it or change what the middleware sees until the token expires.
func TestMiddleware_StaleRolesStillHonored(t *testing.T) {
	t.Parallel()

	issuer := NewIssuer("access-secret", "refresh-secret")
	user := testUser(t, "alice", "Str0ng!pass", []string{"Manager"}, true)
	store := newFakeUserStore(user)
	svc := NewService(store, issuer)

	access, _, err := svc.Login(t.Context(), "alice", "Str0ng!pass")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}

	// Demote alice after issuance.
	user.Roles = []string{"Employee"}

	var got *UserContext
	handler := protectedEcho(t, issuer, &got)

	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	req.Header.Set("Authorization", "Bearer "+access)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if got == nil || !reflect.DeepEqual(got.Roles, []string{"Manager"}) {
		t.Errorf("expected the token's embedded roles to win, got %+v", got)
	}
}
