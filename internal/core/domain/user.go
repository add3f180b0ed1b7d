package domain

import "time"

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// ValidRole reports whether r is one of the known account roles.
func ValidRole(r string) bool {
	return r == RoleAdmin || r == RoleUser
}

// User is a stored account. IDs are numeric, allocated by the repository.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Identity is the authenticated caller for the duration of one request.
// It is resolved once by the auth middleware from a verified token plus a
// repository lookup, and is never mutated afterwards.
type Identity struct {
	ID    int64
	Email string
	Role  string
}

// IsAdmin reports whether the identity carries the admin role.
func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}
