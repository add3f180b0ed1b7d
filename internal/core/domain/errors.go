package domain

import "errors"

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrForbidden          = errors.New("access forbidden")
	ErrTooManyAttempts    = errors.New("too many failed attempts")
	ErrInvalidRequest     = errors.New("invalid request")

	// Registration validation errors, in the order the rules are checked.
	ErrMissingFields = errors.New("email and password required")
	ErrInvalidEmail  = errors.New("invalid email format")
	ErrWeakPassword  = errors.New("password does not meet strength policy")
	ErrInvalidName   = errors.New("invalid name characters")
)
