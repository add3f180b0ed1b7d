package service

import (
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/securebdd/accounts-api/internal/core/domain"
)

const (
	passwordMinLen = 12
	passwordMaxLen = 64
	nameMaxLen     = 100
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("strongpwd", strongPassword); err != nil {
		panic(err)
	}
	if err := v.RegisterValidation("personname", personName); err != nil {
		panic(err)
	}
	return v
}

// validateRegistration applies the registration rules in a fixed order so
// the first failing rule is deterministic: missing fields, email format,
// password strength, then name format. Duplicate email is detected last,
// by the repository insert.
func validateRegistration(email, password, firstName, lastName string) error {
	if email == "" || password == "" {
		return domain.ErrMissingFields
	}
	if err := validate.Var(email, "required,email"); err != nil {
		return domain.ErrInvalidEmail
	}
	if err := validate.Var(password, "strongpwd"); err != nil {
		return domain.ErrWeakPassword
	}
	if err := validate.Var(firstName, "personname"); err != nil {
		return domain.ErrInvalidName
	}
	if err := validate.Var(lastName, "personname"); err != nil {
		return domain.ErrInvalidName
	}
	return nil
}

// strongPassword requires 12–64 characters with at least one lowercase
// letter, one uppercase letter, one digit, and one symbol.
func strongPassword(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	n := utf8.RuneCountInString(s)
	if n < passwordMinLen || n > passwordMaxLen {
		return false
	}

	var lower, upper, digit, symbol bool
	for _, r := range s {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		default:
			symbol = true
		}
	}
	return lower && upper && digit && symbol
}

// personName accepts empty values (names are optional) and otherwise
// whitelists letters, spaces, hyphens, and apostrophes, up to 100 runes.
func personName(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if s == "" {
		return true
	}
	if utf8.RuneCountInString(s) > nameMaxLen {
		return false
	}
	for _, r := range s {
		if unicode.IsLetter(r) || r == ' ' || r == '-' || r == '\'' {
			continue
		}
		return false
	}
	return true
}
