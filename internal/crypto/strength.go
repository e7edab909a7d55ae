package crypto

import (
	"errors"
	"unicode"
)

// MinMasterLength is the shortest master password accepted by ValidateStrength
const MinMasterLength = 8

// ErrWeakPassword is returned by ValidateStrength
var ErrWeakPassword = errors.New("password is too weak: it must be at least 8 characters long and contain letters, digits and special characters")

// ValidateStrength checks a master password for length, a letter, a digit and a symbol.
func ValidateStrength(password string) error {
	if len(password) < MinMasterLength {
		return ErrWeakPassword
	}

	var letter, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			letter = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			special = true
		}
	}
	if !letter || !digit || !special {
		return ErrWeakPassword
	}
	return nil
}
