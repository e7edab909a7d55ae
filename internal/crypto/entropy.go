package crypto

import (
	"crypto/rand"
	"encoding/binary"
	"errors"
	"io"
	"strings"
	"sync"
)

// Charset defines the character set to use for password generation
type Charset string

const (
	// CharsetSalt uses digits and letters (0-9, A-Z, a-z), the salt alphabet
	CharsetSalt Charset = "salt"
	// CharsetVault adds !@#$%^&* to the salt alphabet, used for stored entries
	CharsetVault Charset = "vault"
	// CharsetUtility adds !@#$%^&*()-=_+ to the salt alphabet, used by passgen
	CharsetUtility Charset = "utility"
	// CharsetAlpha uses only alphabetic characters (a-z, A-Z)
	CharsetAlpha Charset = "alpha"
	// CharsetAlnum uses alphanumeric characters (a-z, A-Z, 0-9)
	CharsetAlnum Charset = "alnum"
)

const (
	// DefaultSaltLength is the length of master and per-entry salts
	DefaultSaltLength = 16
	// DefaultPasswordLength is the length of passwords generated for entries
	DefaultPasswordLength = 16

	// Standalone generator bounds
	DefaultUtilityLength = 12
	MinUtilityLength     = 8
	MaxUtilityLength     = 64
)

var (
	errInvalidLength  = errors.New("length must not be negative")
	errUnknownCharset = errors.New("unknown charset")
)

const saltAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

var (
	charsetLookup = map[Charset]string{
		CharsetSalt:    saltAlphabet,
		CharsetVault:   saltAlphabet + "!@#$%^&*",
		CharsetUtility: saltAlphabet + "!@#$%^&*()-=_+",
		CharsetAlpha:   "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ",
		CharsetAlnum:   "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789",
	}
	randSource io.Reader = rand.Reader
	randMux    sync.RWMutex
)

// SetRandomSource sets the random number generator source.
// If r is nil, it resets to the default crypto/rand.Reader.
func SetRandomSource(r io.Reader) {
	randMux.Lock()
	if r == nil {
		randSource = rand.Reader
	} else {
		randSource = r
	}
	randMux.Unlock()
}

// Charsets returns the names of the supported charsets
func Charsets() []Charset {
	return []Charset{CharsetSalt, CharsetVault, CharsetUtility, CharsetAlpha, CharsetAlnum}
}

// ParseCharset resolves a charset name, case-insensitively
func ParseCharset(name string) (Charset, error) {
	cs := Charset(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := charsetLookup[cs]; !ok {
		return "", errUnknownCharset
	}
	return cs, nil
}

// GenerateSalt returns a random salt of the given length drawn from the salt alphabet.
func GenerateSalt(length int) (string, error) {
	return GeneratePassword(length, CharsetSalt)
}

// GeneratePassword generates a random password with the specified length and character set.
// A zero length yields an empty string.
func GeneratePassword(length int, charset Charset) (string, error) {
	if length < 0 {
		return "", errInvalidLength
	}

	chars, ok := charsetLookup[charset]
	if !ok {
		return "", errUnknownCharset
	}
	if length == 0 {
		return "", nil
	}

	randMux.RLock()
	src := randSource
	randMux.RUnlock()

	var b strings.Builder
	b.Grow(length)

	for i := 0; i < length; i++ {
		idx, err := randomIndex(src, len(chars))
		if err != nil {
			return "", err
		}
		b.WriteByte(chars[idx])
	}

	return b.String(), nil
}

// ClampLength maps a requested standalone generator length into the supported range.
// Zero or negative means the default.
func ClampLength(n int) int {
	switch {
	case n <= 0:
		return DefaultUtilityLength
	case n < MinUtilityLength:
		return MinUtilityLength
	case n > MaxUtilityLength:
		return MaxUtilityLength
	default:
		return n
	}
}

func randomIndex(r io.Reader, max int) (int, error) {
	if max <= 0 {
		return 0, errInvalidLength
	}

	if max <= 256 {
		var buf [1]byte
		usable := 256 - (256 % max)
		for {
			if _, err := io.ReadFull(r, buf[:]); err != nil {
				return 0, err
			}
			if int(buf[0]) < usable {
				return int(buf[0]) % max, nil
			}
		}
	}

	var buf [4]byte
	const maxUint32 = ^uint32(0)
	limit := maxUint32 - (maxUint32 % uint32(max))
	for {
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return 0, err
		}
		val := binary.BigEndian.Uint32(buf[:])
		if val < limit {
			return int(val % uint32(max)), nil
		}
	}
}
