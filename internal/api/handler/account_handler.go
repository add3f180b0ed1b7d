package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/securebdd/accounts-api/internal/api/metrics"
	apimw "github.com/securebdd/accounts-api/internal/api/middleware"
	"github.com/securebdd/accounts-api/internal/core/domain"
	"github.com/securebdd/accounts-api/internal/core/ports"
)

type AccountHandler struct {
	accounts ports.AccountService
}

func NewAccountHandler(accounts ports.AccountService) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

type messageResponse struct {
	Message string `json:"message"`
}

type registerResponse struct {
	Message string `json:"message"`
	UserID  int64  `json:"user_id"`
}

type loginResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

type profileResponse struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      string `json:"role"`
	CreatedAt string `json:"createdAt"`
}

type userListResponse struct {
	Users []userSummary `json:"users"`
}

type userSummary struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      string `json:"role"`
	CreatedAt string `json:"createdAt"`
}

// Home is the public landing endpoint.
func (h *AccountHandler) Home(c echo.Context) error {
	return c.JSON(http.StatusOK, messageResponse{Message: "Bienvenue sur la page d accueil"})
}

// Register creates a new account.
//
// @Summary      Register a new account
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Success      200  {object}  registerResponse
// @Failure      400  {object}  map[string]string
// @Failure      429  {object}  map[string]string
// @Router       /register/ [post]
func (h *AccountHandler) Register(c echo.Context) error {
	creds, ok := apimw.CredentialsFrom(c)
	if !ok {
		return domain.ErrInvalidRequest
	}

	user, err := h.accounts.Register(c.Request().Context(), creds.Email, creds.Password, creds.FirstName, creds.LastName, creds.Role)
	if err != nil {
		metrics.RegistrationsTotal.WithLabelValues(registerResult(err)).Inc()
		return err
	}

	metrics.RegistrationsTotal.WithLabelValues("success").Inc()
	return c.JSON(http.StatusOK, registerResponse{Message: "Inscription reussie", UserID: user.ID})
}

// Login authenticates an account and returns a signed token.
//
// @Summary      Login
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Success      200  {object}  loginResponse
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      429  {object}  map[string]string
// @Router       /login/ [post]
func (h *AccountHandler) Login(c echo.Context) error {
	creds, ok := apimw.CredentialsFrom(c)
	if !ok {
		return domain.ErrInvalidRequest
	}

	tok, err := h.accounts.Login(c.Request().Context(), creds.Email, creds.Password)
	if err != nil {
		if err == domain.ErrInvalidCredentials {
			metrics.LoginsTotal.WithLabelValues("failure").Inc()
		}
		return err
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	return c.JSON(http.StatusOK, loginResponse{Message: "Connexion reussie", Token: tok})
}

// Logout acknowledges a logout. Tokens are stateless: invalidation is by
// client-side discard or natural expiry, there is no server-side blacklist.
//
// @Summary      Logout
// @Tags         accounts
// @Produce      json
// @Success      200  {object}  messageResponse
// @Router       /logout/ [post]
func (h *AccountHandler) Logout(c echo.Context) error {
	return c.JSON(http.StatusOK, messageResponse{Message: "Deconnexion reussie. Supprimez le token localement."})
}

// Profile returns the authenticated caller's own record.
//
// @Summary      Own profile
// @Tags         accounts
// @Produce      json
// @Success      200  {object}  profileResponse
// @Failure      401  {object}  map[string]string
// @Router       /user/me/ [get]
func (h *AccountHandler) Profile(c echo.Context) error {
	ident, ok := apimw.IdentityFrom(c)
	if !ok {
		return domain.ErrNotAuthenticated
	}

	user, err := h.accounts.Profile(c.Request().Context(), ident.ID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, profileResponse{
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Role:      user.Role,
		CreatedAt: user.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	})
}

// AdminListUsers returns every account. Admin only.
//
// @Summary      List accounts
// @Tags         admin
// @Produce      json
// @Success      200  {object}  userListResponse
// @Failure      403  {object}  map[string]string
// @Router       /admin/users/ [get]
func (h *AccountHandler) AdminListUsers(c echo.Context) error {
	ident, ok := apimw.IdentityFrom(c)
	if !ok || !ident.IsAdmin() {
		return domain.ErrForbidden
	}

	users, err := h.accounts.ListUsers(c.Request().Context())
	if err != nil {
		return err
	}

	out := userListResponse{Users: make([]userSummary, 0, len(users))}
	for _, u := range users {
		out.Users = append(out.Users, userSummary{
			ID:        u.ID,
			Email:     u.Email,
			FirstName: u.FirstName,
			LastName:  u.LastName,
			Role:      u.Role,
			CreatedAt: u.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	return c.JSON(http.StatusOK, out)
}

// AdminDeleteUser removes an account and writes the deletion audit entry.
// Admin only.
//
// @Summary      Delete an account
// @Tags         admin
// @Produce      json
// @Success      200  {object}  messageResponse
// @Failure      400  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /admin/users/delete/{id} [post]
func (h *AccountHandler) AdminDeleteUser(c echo.Context) error {
	ident, ok := apimw.IdentityFrom(c)
	if !ok || !ident.IsAdmin() {
		return domain.ErrForbidden
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return domain.ErrInvalidRequest
	}

	if err := h.accounts.DeleteUser(c.Request().Context(), id, ident); err != nil {
		return err
	}

	metrics.DeletionsTotal.Inc()
	return c.JSON(http.StatusOK, messageResponse{Message: "Utilisateur supprime"})
}

func registerResult(err error) string {
	if err == domain.ErrEmailTaken {
		return "duplicate"
	}
	return "invalid"
}
