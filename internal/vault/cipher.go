package vault

import (
	"fmt"
	"strings"
)

// Algorithm selects the transform applied by a Cipher
type Algorithm uint8

const (
	// AlgorithmLayered is the vault codec: marker, XOR, then shift
	AlgorithmLayered Algorithm = iota
	// AlgorithmXOR is a repeating-key XOR with the raw password as key
	AlgorithmXOR
	// AlgorithmCaesar shifts each byte by the password-derived shift
	AlgorithmCaesar
)

var algorithmNames = map[Algorithm]string{
	AlgorithmLayered: "layered",
	AlgorithmXOR:     "xor",
	AlgorithmCaesar:  "caesar",
}

// String returns the algorithm name
func (a Algorithm) String() string {
	if name, ok := algorithmNames[a]; ok {
		return name
	}
	return fmt.Sprintf("algorithm(%d)", uint8(a))
}

// ParseAlgorithm resolves an algorithm by name
func ParseAlgorithm(name string) (Algorithm, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for alg, n := range algorithmNames {
		if n == name {
			return alg, nil
		}
	}
	return 0, fmt.Errorf("unknown cipher %q (valid: layered, xor, caesar)", name)
}

// Cipher is a password-keyed byte transform. The zero value is not usable; use NewCipher.
type Cipher struct {
	alg      Algorithm
	password string
}

// NewCipher returns a cipher for the given algorithm keyed by password.
func NewCipher(alg Algorithm, password string) (Cipher, error) {
	if _, ok := algorithmNames[alg]; !ok {
		return Cipher{}, fmt.Errorf("unknown cipher %s", alg)
	}
	return Cipher{alg: alg, password: password}, nil
}

// Algorithm returns the algorithm the cipher was built with
func (c Cipher) Algorithm() Algorithm {
	return c.alg
}

// Encrypt transforms plain. It never fails.
func (c Cipher) Encrypt(plain []byte) []byte {
	switch c.alg {
	case AlgorithmXOR:
		return XOR(plain, []byte(c.password))
	case AlgorithmCaesar:
		return ShiftEncrypt(plain, DeriveShift(c.password))
	default:
		return Encrypt(plain, c.password)
	}
}

// Decrypt reverses Encrypt. Only the layered algorithm can detect a wrong key.
func (c Cipher) Decrypt(data []byte) ([]byte, error) {
	switch c.alg {
	case AlgorithmXOR:
		return XOR(data, []byte(c.password)), nil
	case AlgorithmCaesar:
		return ShiftDecrypt(data, DeriveShift(c.password)), nil
	default:
		return Decrypt(data, c.password)
	}
}
