package auth

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestIssueAndVerifyAccessToken(t *testing.T) {
	t.Parallel()

	issuer := NewIssuer("access-secret", "refresh-secret")

	tok, err := issuer.IssueAccessToken("alice", []string{"Employee", "Manager"})
	if err != nil {
		t.Fatalf("IssueAccessToken error: %v", err)
	}

	claims, err := issuer.VerifyAccessToken(tok)
	if err != nil {
		t.Fatalf("VerifyAccessToken error: %v", err)
	}

	if claims.Username != "alice" {
		t.Errorf("username mismatch: got %q want %q", claims.Username, "alice")
	}
	if !reflect.DeepEqual(claims.Roles, []string{"Employee", "Manager"}) {
		t.Errorf("roles mismatch: got %v", claims.Roles)
	}

	expiry := time.Until(claims.ExpiresAt.Time)
	if expiry > AccessTokenExpiry || expiry < AccessTokenExpiry-time.Minute {
		t.Errorf("unexpected access token expiry window: %v", expiry)
	}
}

func TestIssueAndVerifyRefreshToken(t *testing.T) {
	t.Parallel()

	issuer := NewIssuer("access-secret", "refresh-secret")

	tok, err := issuer.IssueRefreshToken("alice")
	if err != nil {
		t.Fatalf("IssueRefreshToken error: %v", err)
	}

	claims, err := issuer.VerifyRefreshToken(tok)
	if err != nil {
		t.Fatalf("VerifyRefreshToken error: %v", err)
	}

	if claims.Username != "alice" {
		t.Errorf("username mismatch: got %q", claims.Username)
	}

	expiry := time.Until(claims.ExpiresAt.Time)
	if expiry > RefreshTokenExpiry || expiry < RefreshTokenExpiry-time.Minute {
		t.Errorf("unexpected refresh token expiry window: %v", expiry)
	}
}

func TestIssue_MissingSecret(t *testing.T) {
	t.Parallel()

	issuer := NewIssuer("", "")

	if _, err := issuer.IssueAccessToken("alice", nil); !errors.Is(err, ErrMissingSecret) {
		t.Errorf("expected ErrMissingSecret, got %v", err)
	}
	if _, err := issuer.IssueRefreshToken("alice"); !errors.Is(err, ErrMissingSecret) {
		t.Errorf("expected ErrMissingSecret, got %v", err)
	}
}

func TestVerify_Expired(t *testing.T) {
	t.Parallel()

	issuer := NewIssuer("access-secret", "refresh-secret")
	tok := signExpiredAccessToken(t, "access-secret")

	_, err := issuer.VerifyAccessToken(tok)
	if !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	t.Parallel()

	issuer := NewIssuer("access-secret", "refresh-secret")
	other := NewIssuer("different-secret", "refresh-secret")

	tok, err := other.IssueAccessToken("alice", []string{"Employee"})
	if err != nil {
		t.Fatalf("IssueAccessToken error: %v", err)
	}

	_, err = issuer.VerifyAccessToken(tok)
	if !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}
}

func TestVerify_RefreshTokenRejectedAsAccessToken(t *testing.T) {
	t.Parallel()

	issuer := NewIssuer("access-secret", "refresh-secret")

	tok, err := issuer.IssueRefreshToken("alice")
	if err != nil {
		t.Fatalf("IssueRefreshToken error: %v", err)
	}

	// Signed with the refresh secret, so the access secret must reject it.
	_, err = issuer.VerifyAccessToken(tok)
	if !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}
}

func TestVerify_Malformed(t *testing.T) {
	t.Parallel()

	issuer := NewIssuer("access-secret", "refresh-secret")

	_, err := issuer.VerifyAccessToken("not.a.jwt")
	if !errors.Is(err, ErrTokenMalformed) {
		t.Fatalf("expected ErrTokenMalformed, got %v", err)
	}
}

func TestIsVerificationError(t *testing.T) {
	t.Parallel()

	for _, err := range []error{ErrTokenExpired, ErrInvalidSignature, ErrTokenMalformed, ErrInvalidToken} {
		if !IsVerificationError(err) {
			t.Errorf("expected %v to be a verification error", err)
		}
	}
	if IsVerificationError(ErrMissingSecret) {
		t.Error("ErrMissingSecret should not be a verification error")
	}
	if IsVerificationError(errors.New("boom")) {
		t.Error("arbitrary errors should not be verification errors")
	}
}

func signExpiredAccessToken(t *testing.T, secret string) string {
	t.Helper()

	claims := &AccessClaims{
		Username: "alice",
		Roles:    []string{"Employee"},
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
		},
	}

	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("failed to sign test token: %v", err)
	}
	return tok
}

func signExpiredRefreshToken(t *testing.T, secret string) string {
	t.Helper()

	claims := &RefreshClaims{
		Username: "alice",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-4 * 24 * time.Hour)),
		},
	}

	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("failed to sign test token: %v", err)
	}
	return tok
}
