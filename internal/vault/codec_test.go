package vault

import (
	"bytes"
	"errors"
	"testing"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	large := bytes.Repeat([]byte{0x00, 0x0a, 0xff, '|'}, 1500)

	tests := []struct {
		name     string
		plain    []byte
		password string
	}{
		{"empty payload", []byte{}, "password"},
		{"records", []byte("example.com|alice|0a1b|https://example.com|SALT\n"), "correctPassword"},
		{"binary with newlines", []byte{0, '\n', 1, '\r', 255, '\n'}, "k"},
		{"longer than block", large, "67e6096a85ae67bb000000000000000000000000000000000000000000000000"},
		{"empty key", []byte("payload"), ""},
		{"high bytes in key", []byte("payload"), "pässwörd"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cipher := Encrypt(tt.plain, tt.password)
			if len(cipher) != len(Marker)+len(tt.plain) {
				t.Fatalf("Encrypt() length = %d, want %d", len(cipher), len(Marker)+len(tt.plain))
			}

			plain, err := Decrypt(cipher, tt.password)
			if err != nil {
				t.Fatalf("Decrypt() error = %v", err)
			}
			if !bytes.Equal(plain, tt.plain) {
				t.Fatalf("Decrypt() = %q, want %q", plain, tt.plain)
			}
		})
	}
}

func TestDecryptWrongKey(t *testing.T) {
	cipher := Encrypt([]byte("secret data"), "correctPassword")

	_, err := Decrypt(cipher, "wrongPassword")
	if !errors.Is(err, ErrAuthFailed) {
		t.Fatalf("Decrypt() error = %v, want ErrAuthFailed", err)
	}
}

func TestDecryptShortInput(t *testing.T) {
	if _, err := Decrypt([]byte("short"), "pw"); !errors.Is(err, ErrAuthFailed) {
		t.Fatalf("Decrypt() error = %v, want ErrAuthFailed", err)
	}
	if _, err := Decrypt(nil, "pw"); !errors.Is(err, ErrAuthFailed) {
		t.Fatalf("Decrypt(nil) error = %v, want ErrAuthFailed", err)
	}
}

func TestDecryptTamperedMarker(t *testing.T) {
	cipher := Encrypt([]byte("data"), "pw")
	cipher[0] ^= 0x01

	if _, err := Decrypt(cipher, "pw"); !errors.Is(err, ErrAuthFailed) {
		t.Fatalf("Decrypt() error = %v, want ErrAuthFailed", err)
	}
}

func TestEncryptKnownBytes(t *testing.T) {
	// key "A": shift = 65%255+1 = 66, xor key is 'A' repeated
	got := Encrypt(nil, "A")
	want := make([]byte, len(Marker))
	for i := range Marker {
		want[i] = (Marker[i] ^ 'A') + 66
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("Encrypt() = %x, want %x", got, want)
	}
}
