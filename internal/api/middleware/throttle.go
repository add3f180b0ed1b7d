package middleware

import (
	"encoding/json"
	"errors"
	"html"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/securebdd/accounts-api/internal/api/metrics"
	"github.com/securebdd/accounts-api/internal/core/domain"
	"github.com/securebdd/accounts-api/internal/core/ports"
)

// CredentialsKey is the context key under which Throttle stores the
// sanitized body.
const CredentialsKey = "credentials"

// Credentials is the sanitized login/register body, threaded through the
// pipeline as an explicit context value instead of ad-hoc fields on a
// shared request object.
type Credentials struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      string `json:"role"`
}

// Throttle guards a credential-accepting route against brute force.
//
// It parses and sanitizes the JSON body once, consults the failure tracker
// for the email key and the client-IP key (a hit on either blocks with a
// 429, and the handler never runs), and — when recordFailures is set, i.e.
// on the login route — records a failure against both keys after the
// handler completes with invalid credentials. Requests rejected by the
// block itself record nothing, and validation errors record nothing.
func Throttle(tracker ports.FailureTracker, recordFailures bool, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			body, err := io.ReadAll(c.Request().Body)
			if err != nil {
				return domain.ErrInvalidRequest
			}

			var creds Credentials
			if err := json.Unmarshal(body, &creds); err != nil {
				return domain.ErrInvalidRequest
			}

			// Email is normalized and escaped; names are left intact
			// because the registration whitelist rejects every markup
			// character and escaping would corrupt legitimate
			// apostrophes. The password participates in hashing only.
			creds.Email = html.EscapeString(strings.ToLower(strings.TrimSpace(creds.Email)))
			c.Set(CredentialsKey, creds)

			ip := c.RealIP()
			for _, key := range trackedKeys(creds.Email, ip) {
				blocked, err := tracker.IsBlocked(c.Request().Context(), key)
				if err != nil {
					// Tracker outage: log and fail open rather than
					// locking everyone out.
					log.Error().Err(err).Str("key", key).Msg("failure tracker check failed")
					continue
				}
				if blocked {
					metrics.LockoutRejectionsTotal.Inc()
					log.Warn().Str("ip", ip).Str("email", creds.Email).Msg("blocked by brute-force lockout")
					return domain.ErrTooManyAttempts
				}
			}

			err = next(c)

			if recordFailures && failedAuthentication(c, err) {
				for _, key := range trackedKeys(creds.Email, ip) {
					if rerr := tracker.RecordFailure(c.Request().Context(), key); rerr != nil {
						log.Error().Err(rerr).Str("key", key).Msg("failure tracker record failed")
					}
				}
				log.Info().Str("ip", ip).Str("email", creds.Email).Msg("login failure recorded")
			}

			return err
		}
	}
}

// CredentialsFrom returns the sanitized body stored by Throttle.
func CredentialsFrom(c echo.Context) (Credentials, bool) {
	creds, ok := c.Get(CredentialsKey).(Credentials)
	return creds, ok
}

// failedAuthentication reports whether the handler outcome was an invalid
// credentials rejection. Field validation errors and lockout rejections do
// not count.
func failedAuthentication(c echo.Context, err error) bool {
	if err != nil {
		return errors.Is(err, domain.ErrInvalidCredentials)
	}
	return c.Response().Status == http.StatusUnauthorized
}

func trackedKeys(email, ip string) []string {
	keys := make([]string, 0, 2)
	if email != "" {
		keys = append(keys, "fail:"+email)
	}
	if ip != "" {
		keys = append(keys, "fail:"+ip)
	}
	return keys
}
