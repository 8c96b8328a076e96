package auth

import (
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Form rules applied before anything reaches the user repository.
var (
	emailPattern   = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	loginPattern   = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
	namePattern    = regexp.MustCompile(`^[a-zA-Zа-яА-ЯёЁ\s-]+$`)
	upperPattern   = regexp.MustCompile(`[A-Z]`)
	lowerPattern   = regexp.MustCompile(`[a-z]`)
	digitPattern   = regexp.MustCompile(`\d`)
	specialPattern = regexp.MustCompile(`[!@#$%^&*(),.?":{}|<>]`)
)

const (
	MinPasswordLength = 8
	MinLoginLength    = 4
	MinNameLength     = 2
)

var (
	ErrNameTooShort      = errors.New("name must be at least 2 characters")
	ErrNameInvalid       = errors.New("name may only contain letters, spaces and hyphens")
	ErrLoginTooShort     = errors.New("login must be at least 4 characters")
	ErrLoginInvalid      = errors.New("login may only contain letters, digits and underscores")
	ErrEmailInvalid      = errors.New("invalid email format")
	ErrPasswordTooShort  = errors.New("password must be at least 8 characters")
	ErrPasswordNoUpper   = errors.New("password must contain an uppercase letter")
	ErrPasswordNoLower   = errors.New("password must contain a lowercase letter")
	ErrPasswordNoDigit   = errors.New("password must contain a digit")
	ErrPasswordNoSpecial = errors.New("password must contain a special character")
	ErrFieldsRequired    = errors.New("all fields are required")
)

// Registration is the sign-up form.
type Registration struct {
	Name     string
	Email    string
	Login    string
	Password string
}

// Validate runs every field rule and returns the first failure.
func (r Registration) Validate() error {
	if strings.TrimSpace(r.Name) == "" || r.Email == "" || r.Login == "" || r.Password == "" {
		return ErrFieldsRequired
	}
	if err := ValidateName(r.Name); err != nil {
		return err
	}
	if err := ValidateEmail(r.Email); err != nil {
		return err
	}
	if err := ValidateLogin(r.Login); err != nil {
		return err
	}
	return ValidatePassword(r.Password)
}

func ValidateName(name string) error {
	if utf8.RuneCountInString(name) < MinNameLength {
		return ErrNameTooShort
	}
	if !namePattern.MatchString(name) {
		return ErrNameInvalid
	}
	return nil
}

func ValidateEmail(email string) error {
	// RFC 5321 caps addresses at 254 characters
	if len(email) > 254 || !emailPattern.MatchString(email) {
		return ErrEmailInvalid
	}
	return nil
}

func ValidateLogin(login string) error {
	if utf8.RuneCountInString(login) < MinLoginLength {
		return ErrLoginTooShort
	}
	if !loginPattern.MatchString(login) {
		return ErrLoginInvalid
	}
	return nil
}

func ValidatePassword(password string) error {
	switch {
	case utf8.RuneCountInString(password) < MinPasswordLength:
		return ErrPasswordTooShort
	case len(password) > MaxPasswordBytes:
		return ErrPasswordTooLong
	case !upperPattern.MatchString(password):
		return ErrPasswordNoUpper
	case !lowerPattern.MatchString(password):
		return ErrPasswordNoLower
	case !digitPattern.MatchString(password):
		return ErrPasswordNoDigit
	case !specialPattern.MatchString(password):
		return ErrPasswordNoSpecial
	}
	return nil
}
