package middleware

import (
	"errors"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/securebdd/accounts-api/internal/api/metrics"
	"github.com/securebdd/accounts-api/internal/auth/token"
	"github.com/securebdd/accounts-api/internal/core/domain"
	"github.com/securebdd/accounts-api/internal/core/ports"
)

// IdentityKey is the context key under which Authenticate stores the
// resolved identity.
const IdentityKey = "identity"

// Authenticate resolves the caller's identity from a bearer token and
// stores it in the request context. It never rejects a request: a missing
// header, a bad or expired token, or a token whose subject no longer exists
// all leave the request unauthenticated and pass it on. Rejection is the
// job of the authorization middleware or the handler.
func Authenticate(codec *token.Codec, users ports.UserRepository, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return next(c)
			}

			claims, ok := codec.Verify(strings.TrimPrefix(auth, "Bearer "))
			if !ok {
				metrics.TokenVerificationsTotal.WithLabelValues("invalid").Inc()
				return next(c)
			}
			metrics.TokenVerificationsTotal.WithLabelValues("valid").Inc()

			user, err := users.FindByID(c.Request().Context(), claims.UserID)
			if err != nil {
				// A deleted user's still-valid token must not resolve
				// to a session.
				if errors.Is(err, domain.ErrUserNotFound) {
					log.Warn().Int64("user_id", claims.UserID).Msg("valid token for missing account")
				} else {
					log.Error().Err(err).Int64("user_id", claims.UserID).Msg("identity lookup failed")
				}
				return next(c)
			}

			c.Set(IdentityKey, domain.Identity{ID: user.ID, Email: user.Email, Role: user.Role})
			return next(c)
		}
	}
}

// IdentityFrom returns the identity resolved by Authenticate, if any.
func IdentityFrom(c echo.Context) (domain.Identity, bool) {
	ident, ok := c.Get(IdentityKey).(domain.Identity)
	return ident, ok
}
