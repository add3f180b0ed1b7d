package ports

import (
	"context"

	"github.com/securebdd/accounts-api/internal/core/domain"
)

// AccountService is the application-facing contract for account operations.
type AccountService interface {
	Register(ctx context.Context, email, password, firstName, lastName, role string) (*domain.User, error)
	Login(ctx context.Context, email, password string) (string, error)
	Profile(ctx context.Context, id int64) (*domain.User, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
	DeleteUser(ctx context.Context, id int64, actor domain.Identity) error
}
