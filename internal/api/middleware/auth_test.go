package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/securebdd/accounts-api/internal/auth/token"
	"github.com/securebdd/accounts-api/internal/core/domain"
)

type stubUserRepo struct {
	users map[int64]*domain.User
}

func newStubUserRepo(users ...*domain.User) *stubUserRepo {
	r := &stubUserRepo{users: make(map[int64]*domain.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.users[user.ID] = user
	return user, nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id int64) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return u, nil
}

func (r *stubUserRepo) List(_ context.Context) ([]domain.User, error) {
	out := make([]domain.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, *u)
	}
	return out, nil
}

func (r *stubUserRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

func newAuthContext(t *testing.T, authorization string) echo.Context {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/user/me/", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec)
}

func TestAuthenticate_ValidToken(t *testing.T) {
	codec := token.NewCodec("secret", zerolog.Nop())
	repo := newStubUserRepo(&domain.User{ID: 7, Email: "a@b.com", Role: domain.RoleAdmin})

	tok, err := codec.Issue(token.Claims{UserID: 7, Role: domain.RoleAdmin}, time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	c := newAuthContext(t, "Bearer "+tok)

	called := false
	handler := Authenticate(codec, repo, zerolog.Nop())(func(c echo.Context) error {
		called = true
		ident, ok := IdentityFrom(c)
		if !ok {
			t.Fatalf("identity not resolved")
		}
		if ident.ID != 7 || ident.Email != "a@b.com" || ident.Role != domain.RoleAdmin {
			t.Fatalf("unexpected identity: %+v", ident)
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
}

func TestAuthenticate_NeverRejects(t *testing.T) {
	codec := token.NewCodec("secret", zerolog.Nop())
	repo := newStubUserRepo(&domain.User{ID: 7, Email: "a@b.com", Role: domain.RoleUser})

	otherCodec := token.NewCodec("other-secret", zerolog.Nop())
	forged, err := otherCodec.Issue(token.Claims{UserID: 7}, time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	cases := []struct {
		name   string
		header string
	}{
		{"no header", ""},
		{"wrong scheme", "Token abc"},
		{"garbage token", "Bearer not-a-token"},
		{"wrong key", "Bearer " + forged},
	}

	for _, tc := range cases {
		c := newAuthContext(t, tc.header)
		called := false
		handler := Authenticate(codec, repo, zerolog.Nop())(func(c echo.Context) error {
			called = true
			if _, ok := IdentityFrom(c); ok {
				t.Fatalf("%s: identity must not resolve", tc.name)
			}
			return c.NoContent(http.StatusOK)
		})
		if err := handler(c); err != nil {
			t.Fatalf("%s: auth middleware must never reject, got %v", tc.name, err)
		}
		if !called {
			t.Fatalf("%s: next not called", tc.name)
		}
	}
}

func TestAuthenticate_DeletedUserTokenYieldsNoIdentity(t *testing.T) {
	codec := token.NewCodec("secret", zerolog.Nop())
	repo := newStubUserRepo() // account no longer exists

	tok, err := codec.Issue(token.Claims{UserID: 9, Role: domain.RoleUser}, time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	c := newAuthContext(t, "Bearer "+tok)

	called := false
	handler := Authenticate(codec, repo, zerolog.Nop())(func(c echo.Context) error {
		called = true
		if _, ok := IdentityFrom(c); ok {
			t.Fatalf("deleted user's token must not resolve to a session")
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
}
