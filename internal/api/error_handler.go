package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/securebdd/accounts-api/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their deterministic status codes and
//     wire messages.
//   - Rewrites framework-generated 400/403/404/500 responses to the
//     generic envelope, so callers never see a framework error page.
//   - Logs unexpected errors internally without leaking details.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (route misses, bind failures, etc.). The uniform
	// fallback applies: these carry the generic message, never the
	// framework default page.
	var he *echo.HTTPError
	if errors.As(err, &he) {
		switch he.Code {
		case http.StatusBadRequest, http.StatusForbidden, http.StatusNotFound, http.StatusInternalServerError:
			return he.Code, "Acces interdit ou ressource introuvable"
		}
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	switch {
	case errors.Is(err, domain.ErrMissingFields):
		return http.StatusBadRequest, "Email et mot de passe requis"
	case errors.Is(err, domain.ErrInvalidEmail):
		return http.StatusBadRequest, "Format d email invalide"
	case errors.Is(err, domain.ErrWeakPassword):
		return http.StatusBadRequest, "Mot de passe invalide: 12 a 64 caracteres avec minuscule, majuscule, chiffre et symbole"
	case errors.Is(err, domain.ErrInvalidName):
		return http.StatusBadRequest, "Prenom ou nom invalide"
	case errors.Is(err, domain.ErrEmailTaken):
		return http.StatusBadRequest, "Email deja utilise"
	case errors.Is(err, domain.ErrInvalidRequest):
		return http.StatusBadRequest, "Requete invalide"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Identifiants invalides"
	case errors.Is(err, domain.ErrNotAuthenticated):
		return http.StatusUnauthorized, "Non authentifie"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "Acces refuse"
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, "Utilisateur introuvable"
	case errors.Is(err, domain.ErrTooManyAttempts):
		return http.StatusTooManyRequests, "Trop de tentatives. Reessayez plus tard."
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "Erreur serveur"
}
