package auth

import (
	"context"
	"net/http"
	"strings"

	apperrors "github.com/crewdesk/backend/internal/errors"
)

type contextKey string

const UserContextKey contextKey = "user"

// UserContext is the identity attached to authenticated requests. Roles are
// the ones embedded in the access token at issuance, not a live read: a
// token issued before a role edit keeps its old roles until it expires.
type UserContext struct {
	Username string
	Roles    []string
}

// Middleware gates protected routes. A missing or non-Bearer Authorization
// header is 401; a supplied-but-unverifiable token is 403. The distinction
// separates "no credential" from "bad credential".
func Middleware(issuer *Issuer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := apperrors.GetRequestID(r.Context())

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				apperrors.WriteError(w, requestID, apperrors.Unauthorized())
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				apperrors.WriteError(w, requestID, apperrors.Unauthorized())
				return
			}

			claims, err := issuer.VerifyAccessToken(parts[1])
			if err != nil {
				apperrors.WriteError(w, requestID, apperrors.Forbidden())
				return
			}

			userCtx := &UserContext{
				Username: claims.Username,
				Roles:    claims.Roles,
			}

			ctx := context.WithValue(r.Context(), UserContextKey, userCtx)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetUserFromContext(ctx context.Context) *UserContext {
	user, ok := ctx.Value(UserContextKey).(*UserContext)
	if !ok {
		return nil
	}
	return user
}
