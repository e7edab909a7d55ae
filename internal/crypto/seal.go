package crypto

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/awnumar/memguard"
)

// ErrMalformedSecret is returned when a sealed entry password is not valid hex
var ErrMalformedSecret = errors.New("malformed sealed password")

// SealPassword XORs password with key, cycling the key, and hex-encodes the result.
// Entries are sealed with the master hash string as key.
func SealPassword(password, key string) string {
	if key == "" {
		return hex.EncodeToString([]byte(password))
	}
	out := make([]byte, len(password))
	for i := 0; i < len(password); i++ {
		out[i] = password[i] ^ key[i%len(key)]
	}
	defer Zeroize(out)
	return hex.EncodeToString(out)
}

// OpenPassword reverses SealPassword.
func OpenPassword(sealed, key string) (string, error) {
	raw, err := hex.DecodeString(sealed)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedSecret, err)
	}
	defer Zeroize(raw)
	if key == "" {
		return string(raw), nil
	}
	for i := range raw {
		raw[i] ^= key[i%len(key)]
	}
	return string(raw), nil
}

// Zeroize overwrites a buffer holding secret material.
func Zeroize(data []byte) {
	if len(data) == 0 {
		return
	}
	memguard.WipeBytes(data)
}
