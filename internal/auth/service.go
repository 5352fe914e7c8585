package auth

import (
	"context"
	"errors"

	"github.com/crewdesk/backend/internal/db"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// UserStore is the slice of the credential store the auth flow needs.
type UserStore interface {
	GetByUsername(ctx context.Context, username string) (*db.User, error)
}

// Service orchestrates login and refresh against the credential store and
// the token issuer. It holds no per-session state: the only session state
// is the pair of tokens in the client's hands.
type Service struct {
	users  UserStore
	issuer *Issuer
}

func NewService(users UserStore, issuer *Issuer) *Service {
	return &Service{
		users:  users,
		issuer: issuer,
	}
}

// Login verifies the credentials and mints both tokens. Unknown users,
// disabled accounts, and bad passwords all collapse into
// ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, username, password string) (accessToken, refreshToken string, err error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, db.ErrUserNotFound) {
			return "", "", ErrInvalidCredentials
		}
		return "", "", err
	}

	if !user.Active {
		return "", "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", "", ErrInvalidCredentials
	}

	accessToken, err = s.issuer.IssueAccessToken(user.Username, user.Roles)
	if err != nil {
		return "", "", err
	}

	refreshToken, err = s.issuer.IssueRefreshToken(user.Username)
	if err != nil {
		return "", "", err
	}

	return accessToken, refreshToken, nil
}

// Refresh verifies the refresh token and mints a new access token from the
// user's current role assignment. Verification failures come back as the
// issuer's token errors; a vanished user comes back as db.ErrUserNotFound.
//
// The active flag is not re-checked here: a disabled account's still-valid
// refresh token keeps minting access tokens until it expires.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.issuer.VerifyRefreshToken(refreshToken)
	if err != nil {
		return "", err
	}

	user, err := s.users.GetByUsername(ctx, claims.Username)
	if err != nil {
		return "", err
	}

	return s.issuer.IssueAccessToken(user.Username, user.Roles)
}
