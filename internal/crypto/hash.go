package crypto

import (
	"crypto/subtle"
	"encoding/binary"
	"encoding/hex"
	"math/bits"
)

const (
	hashSeed1 uint32 = 0x6a09e667
	hashSeed2 uint32 = 0xbb67ae85

	// HashSize is the digest length in bytes; only the first 8 ever vary.
	HashSize = 32
)

// CustomHash computes the salted mixing hash used to verify the master password.
// The result is the lowercase hex encoding of a 32 byte buffer holding h1 and h2
// little-endian followed by 24 zero bytes. The format is fixed by existing master files.
func CustomHash(input, salt string) string {
	h1, h2 := hashSeed1, hashSeed2

	mix := func(b byte) {
		h1 = bits.RotateLeft32(h1, 5) + uint32(b)
		h2 = bits.RotateLeft32(h2, -3) ^ uint32(b)
		h1 ^= h2 << 13
		h2 ^= h1 >> 7
	}
	for i := 0; i < len(input); i++ {
		mix(input[i])
	}
	for i := 0; i < len(salt); i++ {
		mix(salt[i])
	}

	var sum [HashSize]byte
	binary.LittleEndian.PutUint32(sum[0:4], h1)
	binary.LittleEndian.PutUint32(sum[4:8], h2)
	return hex.EncodeToString(sum[:])
}

// VerifyHash reports whether password and salt hash to want, in constant time.
func VerifyHash(password, salt, want string) bool {
	got := CustomHash(password, salt)
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}
