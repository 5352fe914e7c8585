package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/crewdesk/backend/internal/db"
	apperrors "github.com/crewdesk/backend/internal/errors"
	"github.com/crewdesk/backend/internal/logger"
	"github.com/crewdesk/backend/internal/metrics"
	"github.com/crewdesk/backend/internal/ratelimit"
)

// refreshCookieName matches the cookie clients already hold.
const refreshCookieName = "jwt"

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type TokenResponse struct {
	AccessToken string `json:"accessToken"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type Handlers struct {
	service *Service
	limiter *ratelimit.LoginLimiter
}

func NewHandlers(service *Service, limiter *ratelimit.LoginLimiter) *Handlers {
	return &Handlers{
		service: service,
		limiter: limiter,
	}
}

// Login issues an access token in the body and a refresh token in a secure
// cookie. The 401 for unknown users, disabled accounts, and wrong passwords
// is identical on purpose.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	requestID := apperrors.GetRequestID(r.Context())

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperrors.WriteError(w, requestID, apperrors.BadRequest("invalid request body"))
		return
	}

	if req.Username == "" || req.Password == "" {
		apperrors.WriteError(w, requestID, apperrors.BadRequest("please enter username and password"))
		return
	}

	if err := h.limiter.Enforce(r.Context(), req.Username, logger.ClientIP(r)); err != nil {
		apperrors.WriteError(w, requestID, apperrors.RateLimited())
		return
	}

	accessToken, refreshToken, err := h.service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			metrics.Default().IncCounter("login_failure_total")
			apperrors.WriteError(w, requestID, apperrors.Unauthorized())
			return
		}
		logger.Error(r.Context(), "login failed", err)
		apperrors.WriteError(w, requestID, apperrors.InternalError("login failed"))
		return
	}

	metrics.Default().IncCounter("login_success_total")
	setRefreshCookie(w, refreshToken)
	apperrors.WriteJSON(w, requestID, http.StatusOK, TokenResponse{AccessToken: accessToken})
}

// Refresh mints a new access token from the refresh cookie. No new refresh
// token is issued: the refresh lifetime is a fixed window, not sliding.
func (h *Handlers) Refresh(w http.ResponseWriter, r *http.Request) {
	requestID := apperrors.GetRequestID(r.Context())

	cookie, err := r.Cookie(refreshCookieName)
	if err != nil || cookie.Value == "" {
		apperrors.WriteError(w, requestID, apperrors.Unauthorized())
		return
	}

	accessToken, err := h.service.Refresh(r.Context(), cookie.Value)
	if err != nil {
		switch {
		case IsVerificationError(err):
			apperrors.WriteError(w, requestID, apperrors.Forbidden())
		case errors.Is(err, db.ErrUserNotFound):
			apperrors.WriteError(w, requestID, apperrors.Unauthorized())
		default:
			logger.Error(r.Context(), "token refresh failed", err)
			apperrors.WriteError(w, requestID, apperrors.InternalError("token refresh failed"))
		}
		return
	}

	apperrors.WriteJSON(w, requestID, http.StatusOK, TokenResponse{AccessToken: accessToken})
}

// Logout clears the refresh cookie. The refresh token itself stays
// cryptographically valid until expiry; with no server-side revocation list
// this is a client-side courtesy, not a security guarantee.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	requestID := apperrors.GetRequestID(r.Context())

	if _, err := r.Cookie(refreshCookieName); err != nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	clearRefreshCookie(w)
	apperrors.WriteJSON(w, requestID, http.StatusOK, MessageResponse{Message: "Cookie cleared"})
}

func setRefreshCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
		MaxAge:   int(RefreshTokenExpiry.Seconds()),
	})
}

func clearRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
		MaxAge:   -1,
	})
}
