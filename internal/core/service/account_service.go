package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/securebdd/accounts-api/internal/auth/token"
	"github.com/securebdd/accounts-api/internal/core/domain"
	"github.com/securebdd/accounts-api/internal/core/ports"
)

// AccountService implements registration, login, profile reads, and the
// admin operations.
type AccountService struct {
	users    ports.UserRepository
	audit    ports.DeletionAuditRepository
	codec    *token.Codec
	tokenTTL time.Duration
	log      zerolog.Logger
}

func NewAccountService(
	users ports.UserRepository,
	audit ports.DeletionAuditRepository,
	codec *token.Codec,
	tokenTTL time.Duration,
	log zerolog.Logger,
) *AccountService {
	if tokenTTL <= 0 {
		tokenTTL = time.Hour
	}
	return &AccountService{users: users, audit: audit, codec: codec, tokenTTL: tokenTTL, log: log}
}

// Register validates the input (fixed rule order, see validateRegistration),
// hashes the password, and persists the account. The duplicate-email check
// is last: it is enforced by the repository insert.
func (s *AccountService) Register(ctx context.Context, email, password, firstName, lastName, role string) (*domain.User, error) {
	if err := validateRegistration(email, password, firstName, lastName); err != nil {
		return nil, err
	}

	if role == "" {
		role = domain.RoleUser
	}
	if !domain.ValidRole(role) {
		return nil, domain.ErrInvalidRequest
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Email:        email,
		PasswordHash: string(hash),
		FirstName:    firstName,
		LastName:     lastName,
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	}

	created, err := s.users.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	s.log.Info().Int64("user_id", created.ID).Msg("account registered")
	return created, nil
}

// Login verifies the credentials and issues a signed token embedding the
// subject id and role. Unknown email and wrong password collapse to the
// same ErrInvalidCredentials so callers cannot probe for account existence.
func (s *AccountService) Login(ctx context.Context, email, password string) (string, error) {
	if email == "" || password == "" {
		return "", domain.ErrMissingFields
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", domain.ErrInvalidCredentials
		}
		return "", err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", domain.ErrInvalidCredentials
	}

	return s.codec.Issue(token.Claims{UserID: user.ID, Role: user.Role}, s.tokenTTL)
}

// Profile returns the account for the given id.
func (s *AccountService) Profile(ctx context.Context, id int64) (*domain.User, error) {
	return s.users.FindByID(ctx, id)
}

// ListUsers returns all accounts.
func (s *AccountService) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.users.List(ctx)
}

// DeleteUser removes an account on behalf of an admin. The audit entry is
// written before the row is deleted so an interrupted operation never loses
// the trail (at-least-once audit semantics).
func (s *AccountService) DeleteUser(ctx context.Context, id int64, actor domain.Identity) error {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return err
	}

	rec := domain.DeletionRecord{
		Email:          user.Email,
		DeletedBy:      actor.ID,
		DeletedByEmail: actor.Email,
		DeletedAt:      time.Now().UTC(),
	}
	if err := s.audit.Record(ctx, rec); err != nil {
		return err
	}

	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}

	s.log.Info().Int64("user_id", id).Int64("deleted_by", actor.ID).Msg("account deleted")
	return nil
}
