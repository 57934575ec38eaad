package jwt

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// mint signs claims the way the authentication service does
func mint(t *testing.T, secret string, claims Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	return token
}

func claimsFor(userID uuid.UUID, prefs Preferences, issuer string, ttl time.Duration) Claims {
	now := time.Now()
	return Claims{
		UserID:      userID,
		Preferences: prefs,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now.Add(-time.Minute)),
			Issuer:    issuer,
		},
	}
}

func TestValidateAccessToken(t *testing.T) {
	m := NewManager("secret")
	userID := uuid.New()
	prefs := Preferences{Locale: "fa", FontFA: "Dana"}

	claims, err := m.ValidateAccessToken(mint(t, "secret", claimsFor(userID, prefs, Issuer, time.Minute)))
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if claims.UserID != userID || claims.Locale != "fa" || claims.FontFA != "Dana" {
		t.Fatalf("unexpected claims %+v", claims)
	}
}

func TestValidateAccessToken_Rejected(t *testing.T) {
	cases := []struct {
		name    string
		token   func(t *testing.T) string
		expired bool
	}{
		{"other secret", func(t *testing.T) string {
			return mint(t, "other", claimsFor(uuid.New(), Preferences{}, Issuer, time.Minute))
		}, false},
		{"other issuer", func(t *testing.T) string {
			return mint(t, "secret", claimsFor(uuid.New(), Preferences{}, "someone-else", time.Minute))
		}, false},
		{"missing user", func(t *testing.T) string {
			return mint(t, "secret", claimsFor(uuid.Nil, Preferences{}, Issuer, time.Minute))
		}, false},
		{"unsigned", func(t *testing.T) string {
			token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claimsFor(uuid.New(), Preferences{}, Issuer, time.Minute)).
				SignedString(jwt.UnsafeAllowNoneSignatureType)
			if err != nil {
				t.Fatal(err)
			}
			return token
		}, false},
		{"expired", func(t *testing.T) string {
			return mint(t, "secret", claimsFor(uuid.New(), Preferences{}, Issuer, -time.Second))
		}, true},
	}
	m := NewManager("secret")
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := m.ValidateAccessToken(tc.token(t))
			if err == nil {
				t.Fatal("token must be rejected")
			}
			if got := errors.Is(err, ErrTokenExpired); got != tc.expired {
				t.Fatalf("errors.Is(err, ErrTokenExpired) = %v for %v", got, err)
			}
		})
	}
}
