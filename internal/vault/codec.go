// Package vault implements the byte transforms and the codec that protect the vault file.
// The scheme is a reversible obfuscation with a fixed marker as its only integrity check;
// it is kept for compatibility with existing vault files, not for cryptographic strength.
package vault

import (
	"bytes"
	"errors"
)

const (
	// Marker is prepended to the plaintext before encryption and checked after decryption
	Marker = "ENCRYPTED_"
	// BlockSize is the period of the derived XOR key
	BlockSize = 1024
)

var (
	// ErrAuthFailed is returned when decryption does not reveal the marker.
	// A wrong key and a corrupt file are indistinguishable.
	ErrAuthFailed = errors.New("authentication failed: wrong key or corrupted data")
)

// Encrypt prepends the marker to plain, XORs it with the derived key and shifts it.
func Encrypt(plain []byte, password string) []byte {
	buf := make([]byte, 0, len(Marker)+len(plain))
	buf = append(buf, Marker...)
	buf = append(buf, plain...)

	xored := XOR(buf, DeriveKey(password, BlockSize))
	return ShiftEncrypt(xored, DeriveShift(password))
}

// Decrypt reverses Encrypt and strips the marker.
// It returns ErrAuthFailed when the marker does not match.
func Decrypt(cipher []byte, password string) ([]byte, error) {
	if len(cipher) < len(Marker) {
		return nil, ErrAuthFailed
	}

	unshifted := ShiftDecrypt(cipher, DeriveShift(password))
	plain := XOR(unshifted, DeriveKey(password, BlockSize))

	if !bytes.Equal(plain[:len(Marker)], []byte(Marker)) {
		return nil, ErrAuthFailed
	}
	return plain[len(Marker):], nil
}
