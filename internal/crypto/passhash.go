// Package crypto hashes account passwords with Argon2id.
package crypto

import (
	"crypto/rand"
	"crypto/subtle"

	"golang.org/x/crypto/argon2"
)

// SaltLen is the per-user salt size in bytes.
const SaltLen = 16

type argonParams struct {
	time    uint32
	memory  uint32 // KiB
	threads uint8
	keyLen  uint32
}

var params = argonParams{time: 3, memory: 64 * 1024, threads: 1, keyLen: 32}

// RandBytes returns n cryptographically secure random bytes.
func RandBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	_, err := rand.Read(b)
	return b, err
}

// NewHash draws a fresh salt and returns (hash, salt) for password.
func NewHash(password string) (hash, salt []byte, err error) {
	salt, err = RandBytes(SaltLen)
	if err != nil {
		return nil, nil, err
	}
	return Hash(password, salt), salt, nil
}

// Hash returns the Argon2id hash of password under salt.
func Hash(password string, salt []byte) []byte {
	return argon2.IDKey([]byte(password), salt, params.time, params.memory, params.threads, params.keyLen)
}

// Verify compares password against expected in constant time.
func Verify(password string, salt, expected []byte) bool {
	return subtle.ConstantTimeCompare(Hash(password, salt), expected) == 1
}
