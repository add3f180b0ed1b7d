package ports

import (
	"context"

	"github.com/securebdd/accounts-api/internal/core/domain"
)

// UserRepository defines the persistence contract for accounts.
type UserRepository interface {
	// Create persists a new account and returns it with its allocated
	// numeric id. Returns domain.ErrEmailTaken on a duplicate email.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	// Delete removes the account. Returns domain.ErrUserNotFound when no
	// row matches.
	Delete(ctx context.Context, id int64) error
}

// DeletionAuditRepository persists deletion audit entries.
type DeletionAuditRepository interface {
	Record(ctx context.Context, rec domain.DeletionRecord) error
}
