package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHashAndCheck(t *testing.T) {
	hash, err := HashPassword("correct horse", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash error: %v", err)
	}
	if !CheckPassword("correct horse", hash) {
		t.Fatalf("password should match")
	}
	if CheckPassword("wrong horse", hash) {
		t.Fatalf("password should not match")
	}
}

func TestHashPassword_TooShort(t *testing.T) {
	if _, err := HashPassword("short", bcrypt.MinCost); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("expected ErrWeakPassword, got %v", err)
	}
}

func TestTokenIssueVerify(t *testing.T) {
	issuer := NewTokenIssuer("s3cr3t", time.Hour)

	token, expires, err := issuer.Issue("user-1", "ana@example.com")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if time.Until(expires) <= 0 {
		t.Fatalf("expiry should be in the future, got %v", expires)
	}

	claims, err := issuer.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.UserID() != "user-1" || claims.Email != "ana@example.com" {
		t.Fatalf("claims mismatch: %+v", claims)
	}
}

func TestTokenVerify_EdgeCases(t *testing.T) {
	good := NewTokenIssuer("correct-secret", time.Hour)

	expired := NewTokenIssuer("correct-secret", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	tests := []struct {
		name      string
		token     func() string
		errorType error
	}{
		{
			name: "wrong secret",
			token: func() string {
				tok, _, _ := NewTokenIssuer("other-secret", time.Hour).Issue("u", "e")
				return tok
			},
			errorType: ErrInvalidToken,
		},
		{
			name: "expired",
			token: func() string {
				tok, _, _ := expired.Issue("u", "e")
				return tok
			},
			errorType: ErrExpiredToken,
		},
		{
			name:      "garbage",
			token:     func() string { return "not.a.token" },
			errorType: ErrInvalidToken,
		},
		{
			name:      "empty",
			token:     func() string { return "" },
			errorType: ErrInvalidToken,
		},
		{
			name: "none algorithm",
			token: func() string {
				claims := &Claims{RegisteredClaims: jwt.RegisteredClaims{
					Subject: "u", Issuer: issuer,
					ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
				}}
				tok, _ := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
				return tok
			},
			errorType: ErrInvalidToken,
		},
		{
			name: "tampered payload",
			token: func() string {
				tok, _, _ := good.Issue("u", "e")
				parts := strings.Split(tok, ".")
				parts[1] = strings.ToUpper(parts[1])
				return strings.Join(parts, ".")
			},
			errorType: ErrInvalidToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := good.Verify(tt.token())
			if !errors.Is(err, tt.errorType) {
				t.Fatalf("expected %v, got %v", tt.errorType, err)
			}
		})
	}
}
