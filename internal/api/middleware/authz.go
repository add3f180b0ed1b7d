package middleware

import (
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/securebdd/accounts-api/internal/core/domain"
)

// Authorize applies the role and ownership gates once an identity has been
// resolved. Unauthenticated requests fall through untouched; gated handlers
// answer those with their own 401.
//
//   - Paths under /admin require the admin role; a mismatch is a 403.
//   - Paths of the form /user/<n> require the identity to own id n. A
//     mismatch — and a non-numeric segment — is answered with a plain 400
//     rather than 403/404, so a probing caller learns nothing about whether
//     the resource exists.
func Authorize(log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ident, ok := IdentityFrom(c)
			if !ok {
				return next(c)
			}

			path := c.Request().URL.Path

			if strings.HasPrefix(path, "/admin") && !ident.IsAdmin() {
				log.Warn().Str("email", ident.Email).Str("path", path).Msg("admin access denied")
				return domain.ErrForbidden
			}

			if seg, ok := userPathSegment(path); ok && seg != "me" {
				id, err := strconv.ParseInt(seg, 10, 64)
				if err != nil {
					return domain.ErrInvalidRequest
				}
				if id != ident.ID {
					log.Warn().
						Str("email", ident.Email).
						Str("requested", seg).
						Msg("ownership mismatch on user path")
					return domain.ErrInvalidRequest
				}
			}

			return next(c)
		}
	}
}

// userPathSegment extracts the trailing segment of /user/<segment>/ paths.
func userPathSegment(path string) (string, bool) {
	if !strings.HasPrefix(path, "/user/") {
		return "", false
	}
	rest := strings.Trim(strings.TrimPrefix(path, "/user/"), "/")
	if rest == "" {
		return "", false
	}
	return rest, true
}
