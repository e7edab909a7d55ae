package vault

// XOR returns data XORed with key, cycling the key. An empty key leaves data unchanged.
// Applying XOR twice with the same key restores the input.
func XOR(data, key []byte) []byte {
	out := make([]byte, len(data))
	if len(key) == 0 {
		copy(out, data)
		return out
	}
	for i := range data {
		out[i] = data[i] ^ key[i%len(key)]
	}
	return out
}

// ShiftEncrypt adds shift to every byte, modulo 256.
func ShiftEncrypt(data []byte, shift byte) []byte {
	out := make([]byte, len(data))
	for i := range data {
		out[i] = data[i] + shift
	}
	return out
}

// ShiftDecrypt subtracts shift from every byte, modulo 256.
func ShiftDecrypt(data []byte, shift byte) []byte {
	out := make([]byte, len(data))
	for i := range data {
		out[i] = data[i] - shift
	}
	return out
}

// DeriveShift sums the character codes of password, reduces modulo 255 and adds one.
// Bytes above 0x7f are summed as negative values; existing vault files depend on it.
func DeriveShift(password string) byte {
	sum := 0
	for i := 0; i < len(password); i++ {
		sum += int(int8(password[i]))
	}
	return byte(sum%255 + 1)
}

// DeriveKey repeats password until it is at least blockSize bytes and truncates it.
// An empty password yields an empty key.
func DeriveKey(password string, blockSize int) []byte {
	if password == "" || blockSize <= 0 {
		return nil
	}
	key := make([]byte, blockSize)
	for i := 0; i < blockSize; i += len(password) {
		copy(key[i:], password)
	}
	return key
}
