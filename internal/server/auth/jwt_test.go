package auth

import (
	"testing"
	"time"

	"github.com/dmitrijs2005/secrets/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

func TestGenerateAndParse_Success(t *testing.T) {
	t.Parallel()

	secret := []byte("super-secret")

	tok, err := GenerateToken("sid-1", 42, secret, time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}

	claims, err := ParseToken(tok, secret)
	if err != nil {
		t.Fatalf("ParseToken error: %v", err)
	}
	if claims.SessionID() != "sid-1" {
		t.Fatalf("session id mismatch: got %q", claims.SessionID())
	}
	if claims.AccountID != 42 {
		t.Fatalf("account id mismatch: got %d", claims.AccountID)
	}
}

func TestParseToken_Expired(t *testing.T) {
	t.Parallel()

	secret := []byte("secret")
	tok, err := GenerateToken("sid", 1, secret, time.Now().Add(-time.Minute))
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}

	if _, err := ParseToken(tok, secret); err != common.ErrTokenExpired {
		t.Fatalf("expected common.ErrTokenExpired, got %v", err)
	}

	claims, err := ParseTokenIgnoringExpiry(tok, secret)
	if err != nil {
		t.Fatalf("ParseTokenIgnoringExpiry error: %v", err)
	}
	if claims.SessionID() != "sid" {
		t.Fatalf("session id mismatch: got %q", claims.SessionID())
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := GenerateToken("sid", 1, []byte("right-secret"), time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}

	if _, err := ParseToken(tok, []byte("wrong-secret")); err != common.ErrInvalidToken {
		t.Fatalf("expected common.ErrInvalidToken, got %v", err)
	}
	if _, err := ParseTokenIgnoringExpiry(tok, []byte("wrong-secret")); err != common.ErrInvalidToken {
		t.Fatalf("expected common.ErrInvalidToken, got %v", err)
	}
}

func TestParseToken_Garbage(t *testing.T) {
	t.Parallel()

	if _, err := ParseToken("not-a-token", []byte("s")); err != common.ErrInvalidToken {
		t.Fatalf("expected common.ErrInvalidToken, got %v", err)
	}
}

func TestParseToken_RejectsOtherAlgorithms(t *testing.T) {
	t.Parallel()

	tok := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		RegisteredClaims: jwt.RegisteredClaims{ID: "sid", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
		AccountID:        1,
	})
	s, err := tok.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("SignedString error: %v", err)
	}

	if _, err := ParseToken(s, []byte("s")); err != common.ErrInvalidToken {
		t.Fatalf("expected common.ErrInvalidToken, got %v", err)
	}
}

func TestParseToken_MissingSessionID(t *testing.T) {
	t.Parallel()

	secret := []byte("s")
	tok, err := GenerateToken("", 1, secret, time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}
	if _, err := ParseToken(tok, secret); err != common.ErrInvalidToken {
		t.Fatalf("expected common.ErrInvalidToken, got %v", err)
	}
}
