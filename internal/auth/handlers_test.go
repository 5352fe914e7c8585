package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestHandlers(t *testing.T, store UserStore) (*Handlers, *Issuer) {
	t.Helper()

	issuer := NewIssuer("access-secret", "refresh-secret")
	svc := NewService(store, issuer)
	return NewHandlers(svc, nil), issuer
}

func doLogin(t *testing.T, h *Handlers, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body))
	w := httptest.NewRecorder()
	h.Login(w, req)
	return w
}

func refreshCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()

	for _, c := range w.Result().Cookies() {
		if c.Name == "jwt" {
			return c
		}
	}
	return nil
}

func TestLoginHandler_Success(t *testing.T) {
	t.Parallel()

	store := newFakeUserStore(testUser(t, "alice", "Str0ng!pass", []string{"Employee"}, true))
	h, issuer := newTestHandlers(t, store)

	w := doLogin(t, h, `{"username":"alice","password":"Str0ng!pass"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp TokenResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if _, err := issuer.VerifyAccessToken(resp.AccessToken); err != nil {
		t.Errorf("response access token failed verification: %v", err)
	}

	cookie := refreshCookie(t, w)
	if cookie == nil {
		t.Fatal("expected a jwt refresh cookie")
	}
	if !cookie.HttpOnly || !cookie.Secure || cookie.SameSite != http.SameSiteNoneMode {
		t.Errorf("cookie attributes wrong: %+v", cookie)
	}
	if cookie.MaxAge != int(RefreshTokenExpiry.Seconds()) {
		t.Errorf("cookie max-age: got %d want %d", cookie.MaxAge, int(RefreshTokenExpiry.Seconds()))
	}
	if _, err := issuer.VerifyRefreshToken(cookie.Value); err != nil {
		t.Errorf("cookie refresh token failed verification: %v", err)
	}
}

func TestLoginHandler_MissingFields(t *testing.T) {
	t.Parallel()

	store := newFakeUserStore(testUser(t, "alice", "Str0ng!pass", []string{"Employee"}, true))
	h, _ := newTestHandlers(t, store)

	tests := []struct {
		name string
		body string
	}{
		{"missing password", `{"username":"alice"}`},
		{"missing username", `{"password":"Str0ng!pass"}`},
		{"empty body", `{}`},
		{"invalid json", `{`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doLogin(t, h, tt.body)
			if w.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", w.Code)
			}
		})
	}
}

func TestLoginHandler_BadCredentials(t *testing.T) {
	t.Parallel()

	store := newFakeUserStore(
		testUser(t, "alice", "Str0ng!pass", []string{"Employee"}, true),
		testUser(t, "bob", "Str0ng!pass", []string{"Employee"}, false),
	)
	h, _ := newTestHandlers(t, store)

	tests := []struct {
		name string
		body string
	}{
		{"wrong password", `{"username":"alice","password":"Wrong1!"}`},
		{"unknown user", `{"username":"nobody","password":"Str0ng!pass"}`},
		{"disabled account", `{"username":"bob","password":"Str0ng!pass"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doLogin(t, h, tt.body)

			if w.Code != http.StatusUnauthorized {
				t.Errorf("expected 401, got %d", w.Code)
			}
			if !strings.Contains(w.Body.String(), "Unauthorized") {
				t.Errorf("expected Unauthorized message, got %s", w.Body.String())
			}
			if refreshCookie(t, w) != nil {
				t.Error("no cookie may be set on failed login")
			}
		})
	}
}

func TestRefreshHandler(t *testing.T) {
	t.Parallel()

	store := newFakeUserStore(testUser(t, "alice", "Str0ng!pass", []string{"Employee"}, true))
	h, issuer := newTestHandlers(t, store)

	validRefresh, err := issuer.IssueRefreshToken("alice")
	if err != nil {
		t.Fatalf("IssueRefreshToken error: %v", err)
	}

	tests := []struct {
		name       string
		cookie     *http.Cookie
		wantStatus int
	}{
		{"missing cookie", nil, http.StatusUnauthorized},
		{"valid token", &http.Cookie{Name: "jwt", Value: validRefresh}, http.StatusOK},
		{"expired token", &http.Cookie{Name: "jwt", Value: signExpiredRefreshToken(t, "refresh-secret")}, http.StatusForbidden},
		{"tampered token", &http.Cookie{Name: "jwt", Value: validRefresh + "x"}, http.StatusForbidden},
		{"garbage token", &http.Cookie{Name: "jwt", Value: "not.a.jwt"}, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/auth/refresh", nil)
			if tt.cookie != nil {
				req.AddCookie(tt.cookie)
			}
			w := httptest.NewRecorder()
			h.Refresh(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("expected %d, got %d: %s", tt.wantStatus, w.Code, w.Body.String())
			}

			if tt.wantStatus == http.StatusOK {
				var resp TokenResponse
				if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
					t.Fatalf("failed to decode response: %v", err)
				}
				if _, err := issuer.VerifyAccessToken(resp.AccessToken); err != nil {
					t.Errorf("refreshed access token failed verification: %v", err)
				}
			}
			if tt.wantStatus == http.StatusForbidden && !strings.Contains(w.Body.String(), "Forbidden") {
				t.Errorf("expected Forbidden message, got %s", w.Body.String())
			}
		})
	}
}

func TestRefreshHandler_UserVanished(t *testing.T) {
	t.Parallel()

	h, issuer := newTestHandlers(t, newFakeUserStore())

	refresh, err := issuer.IssueRefreshToken("ghost")
	if err != nil {
		t.Fatalf("IssueRefreshToken error: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/auth/refresh", nil)
	req.AddCookie(&http.Cookie{Name: "jwt", Value: refresh})
	w := httptest.NewRecorder()
	h.Refresh(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for vanished user, got %d", w.Code)
	}
}

func TestLogoutHandler(t *testing.T) {
	t.Parallel()

	store := newFakeUserStore(testUser(t, "alice", "Str0ng!pass", []string{"Employee"}, true))
	h, issuer := newTestHandlers(t, store)

	t.Run("no cookie is idempotent", func(t *testing.T) {
		for i := 0; i < 2; i++ {
			req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
			w := httptest.NewRecorder()
			h.Logout(w, req)

			if w.Code != http.StatusNoContent {
				t.Fatalf("expected 204, got %d", w.Code)
			}
		}
	})

	t.Run("with cookie clears it", func(t *testing.T) {
		refresh, err := issuer.IssueRefreshToken("alice")
		if err != nil {
			t.Fatalf("IssueRefreshToken error: %v", err)
		}

		req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
		req.AddCookie(&http.Cookie{Name: "jwt", Value: refresh})
		w := httptest.NewRecorder()
		h.Logout(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		if !strings.Contains(w.Body.String(), "Cookie cleared") {
			t.Errorf("expected confirmation message, got %s", w.Body.String())
		}

		cookie := refreshCookie(t, w)
		if cookie == nil {
			t.Fatal("expected a clearing Set-Cookie header")
		}
		if cookie.Value != "" || cookie.MaxAge >= 0 {
			t.Errorf("cookie not cleared: %+v", cookie)
		}
	})
}
