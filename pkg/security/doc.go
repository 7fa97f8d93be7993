/*
Package security provides account password hashing: a random salt plus
a SHA-256 digest, stored as a single "salt$hash" hex string in a User's
password_hash field, verified with a constant-time comparison.

# Usage

	hash, err := security.HashPassword("correct horse battery staple")
	user.Set("password_hash", hash)

	ok, err := security.VerifyPassword("correct horse battery staple", hash)

# Design

This is deliberately not bcrypt/argon2 — see DESIGN.md for why the
account surface stays on crypto/sha256 and crypto/rand rather than
reaching for a KDF library the rest of the corpus doesn't otherwise use.
*/
package security
