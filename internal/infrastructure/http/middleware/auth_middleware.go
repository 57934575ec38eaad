package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"golang.org/x/text/language"

	"github.com/johnquangdev/meeting-minutes/pkg/jwt"
	"github.com/johnquangdev/meeting-minutes/pkg/locale"
)

// Echo context keys set by EchoAuth
const (
	UserIDKey      = "user_id"
	ClaimsKey      = "claims"
	LocaleKey      = "locale"
	PreferencesKey = "preferences"
)

// LocaleOptions lists the locales a request may resolve to
type LocaleOptions struct {
	Supported []string
	Default   string
}

// EchoAuth returns an Echo middleware that validates the access token and
// sets the user id, claims, preferences and resolved locale into the context.
// The locale comes from the lang query parameter, then the token preference,
// then Accept-Language.
func EchoAuth(tokens *jwt.Manager, locales LocaleOptions) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := extractToken(c)
			if token == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing authorization token")
			}

			claims, err := tokens.ValidateAccessToken(token)
			if err != nil {
				if errors.Is(err, jwt.ErrTokenExpired) {
					return echo.NewHTTPError(http.StatusUnauthorized, "Token expired")
				}
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired token")
			}

			c.Set(UserIDKey, claims.UserID)
			c.Set(ClaimsKey, claims)
			c.Set(PreferencesKey, claims.Preferences)
			c.Set(LocaleKey, resolveLocale(c, claims.Locale, locales))

			return next(c)
		}
	}
}

// GetUserID returns the authenticated user id
func GetUserID(c echo.Context) (uuid.UUID, bool) {
	id, ok := c.Get(UserIDKey).(uuid.UUID)
	return id, ok
}

// GetLocale returns the resolved request locale
func GetLocale(c echo.Context) locale.Locale {
	if loc, ok := c.Get(LocaleKey).(locale.Locale); ok {
		return loc
	}
	return locale.New(locale.Default)
}

// GetPreferences returns the token's display preferences
func GetPreferences(c echo.Context) jwt.Preferences {
	prefs, _ := c.Get(PreferencesKey).(jwt.Preferences)
	return prefs
}

func resolveLocale(c echo.Context, preferred string, opts LocaleOptions) locale.Locale {
	candidates := []string{c.QueryParam("lang"), preferred}
	if tags, _, err := language.ParseAcceptLanguage(c.Request().Header.Get("Accept-Language")); err == nil {
		for _, t := range tags {
			candidates = append(candidates, t.String())
		}
	}

	for _, code := range candidates {
		base := locale.Base(code)
		if base == "" {
			continue
		}
		for _, s := range opts.Supported {
			if locale.Base(s) == base {
				return locale.New(base)
			}
		}
	}
	return locale.Resolve(opts.Default, opts.Supported, locale.Default)
}

func extractToken(c echo.Context) string {
	// Try Authorization header first
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader != "" {
		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.ToLower(parts[0]) == "bearer" {
			return strings.TrimSpace(parts[1])
		}
	}

	// Try cookie as fallback
	if cookie, err := c.Cookie("access_token"); err == nil {
		return cookie.Value
	}
	return ""
}
