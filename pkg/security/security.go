// Package security hashes and verifies account passwords.
package security

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

const saltBytes = 16

// ErrMalformedHash is returned by VerifyPassword when the stored hash is
// not in the expected "salt$hash" hex form.
var ErrMalformedHash = errors.New("security: malformed password hash")

// HashPassword returns a "salt$hash" hex string: a random 16-byte salt
// and the SHA-256 digest of salt||password.
func HashPassword(password string) (string, error) {
	salt := make([]byte, saltBytes)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("security: generating salt: %w", err)
	}
	digest := digestOf(salt, password)
	return hex.EncodeToString(salt) + "$" + hex.EncodeToString(digest), nil
}

// VerifyPassword reports whether password matches the given "salt$hash"
// string, using a constant-time comparison of the digests.
func VerifyPassword(password, stored string) (bool, error) {
	salt, wantDigest, err := splitHash(stored)
	if err != nil {
		return false, err
	}
	gotDigest := digestOf(salt, password)
	return subtle.ConstantTimeCompare(gotDigest, wantDigest) == 1, nil
}

func digestOf(salt []byte, password string) []byte {
	h := sha256.New()
	h.Write(salt)
	h.Write([]byte(password))
	return h.Sum(nil)
}

func splitHash(stored string) (salt, digest []byte, err error) {
	parts := strings.SplitN(stored, "$", 2)
	if len(parts) != 2 {
		return nil, nil, ErrMalformedHash
	}
	salt, err = hex.DecodeString(parts[0])
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrMalformedHash, err)
	}
	digest, err = hex.DecodeString(parts[1])
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrMalformedHash, err)
	}
	return salt, digest, nil
}
