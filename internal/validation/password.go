package validation

import (
	"errors"
	"regexp"
	"unicode"
	"unicode/utf8"
)

var usernameRegex = regexp.MustCompile(`^[\p{L}\p{N}_.@+-]+$`)

// ValidateUsername accepts letters, digits and @/./+/-/_.
func ValidateUsername(username string) error {
	if username == "" || utf8.RuneCountInString(username) > MaxUsernameLength {
		return errors.New("username must be 1-150 characters")
	}
	if !usernameRegex.MatchString(username) {
		return errors.New("username may contain only letters, digits and @/./+/-/_")
	}
	return nil
}

// ValidatePassword requires 12-128 characters with upper, lower, digit and symbol.
func ValidatePassword(password string) error {
	n := utf8.RuneCountInString(password)
	if n < 12 {
		return errors.New("password must be at least 12 characters")
	}
	if n > 128 {
		return errors.New("password must be at most 128 characters")
	}

	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			special = true
		}
	}

	switch {
	case !upper:
		return errors.New("password must contain an uppercase letter")
	case !lower:
		return errors.New("password must contain a lowercase letter")
	case !digit:
		return errors.New("password must contain a digit")
	case !special:
		return errors.New("password must contain a special character")
	}
	return nil
}
