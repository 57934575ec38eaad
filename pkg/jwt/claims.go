package jwt

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Preferences are the per-user display choices carried in the token
type Preferences struct {
	Locale string `json:"locale,omitempty"`
	FontFA string `json:"font_fa,omitempty"`
	FontEN string `json:"font_en,omitempty"`
}

// Claims represents JWT custom claims
type Claims struct {
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
	Preferences
	jwt.RegisteredClaims
}
