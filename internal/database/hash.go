package database

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strconv"
	"unicode/utf16"

	"golang.org/x/crypto/bcrypt"
)

// Hasher turns passwords into stored credential hashes and verifies them.
type Hasher interface {
	Hash(password string) (string, error)
	Verify(hash, password string) bool
}

// DigestHasher hashes passwords as lowercase hex SHA-256 digests. Hashing is
// deterministic: equal passwords produce equal hashes.
//
// Verify also accepts the 32-bit rolling hash the legacy client fell back to
// when no digest primitive was available. That fallback is NOT security-grade
// and is honoured only so accounts created by the legacy client can still
// sign in.
type DigestHasher struct{}

// Hash returns the SHA-256 hex digest of password.
func (DigestHasher) Hash(password string) (string, error) {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:]), nil
}

// Verify reports whether hash matches password under either supported scheme.
func (DigestHasher) Verify(hash, password string) bool {
	sum := sha256.Sum256([]byte(password))
	digest := hex.EncodeToString(sum[:])
	if subtle.ConstantTimeCompare([]byte(digest), []byte(hash)) == 1 {
		return true
	}
	return hash == legacyHash(password)
}

// legacyHash reproduces the legacy client's rolling hash: a 32-bit
// accumulator of h = h*31 + codeUnit over UTF-16 code units, rendered as a
// signed decimal string. Characters outside the BMP contribute both
// surrogates, matching how the legacy client walked strings.
func legacyHash(password string) string {
	var h int32
	for _, u := range utf16.Encode([]rune(password)) {
		h = (h << 5) - h + int32(u)
	}
	return strconv.FormatInt(int64(h), 10)
}

// BcryptHasher hashes passwords with bcrypt for deployments that want a
// salted, non-deterministic scheme instead of the historical digest.
type BcryptHasher struct {
	Cost int
}

// Hash returns a bcrypt hash of password.
func (b BcryptHasher) Hash(password string) (string, error) {
	cost := b.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	out, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("bcrypt hash: %w", err)
	}
	return string(out), nil
}

// Verify reports whether hash matches password.
func (b BcryptHasher) Verify(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

var _ Hasher = DigestHasher{}
var _ Hasher = BcryptHasher{}
