// Package security hashes and checks the API keys that guard mutating routes.
package security

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

const (
	// KeyLength is the byte length of raw keys (before encoding)
	KeyLength = 32
	// KeyPrefix marks generated keys so they are easy to spot in configs.
	KeyPrefix = "gk_"

	hashCost = 12
)

var ErrEmptyKey = errors.New("empty api key")

// GenerateAPIKey creates a random URL-safe key with 256 bits of entropy.
func GenerateAPIKey() (string, error) {
	b := make([]byte, KeyLength)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return KeyPrefix + base64.RawURLEncoding.EncodeToString(b), nil
}

// HashAPIKey hashes a key using bcrypt with cost 12
func HashAPIKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", ErrEmptyKey
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(key), hashCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// VerifyAPIKey compares a key with a bcrypt hash
func VerifyAPIKey(hash, key string) bool {
	if hash == "" || key == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(key)) == nil
}

// Verifier checks keys against one bcrypt hash and remembers keys that
// already passed, so bcrypt runs once per distinct key rather than per request.
type Verifier struct {
	hash string

	mu       sync.Mutex
	accepted map[[sha256.Size]byte]struct{}
}

// NewVerifier returns a Verifier for hash. An empty hash rejects every key.
func NewVerifier(hash string) *Verifier {
	return &Verifier{hash: hash, accepted: make(map[[sha256.Size]byte]struct{})}
}

// Verify reports whether key matches the configured hash.
func (v *Verifier) Verify(key string) bool {
	if v.hash == "" || key == "" {
		return false
	}
	sum := sha256.Sum256([]byte(key))

	v.mu.Lock()
	_, ok := v.accepted[sum]
	v.mu.Unlock()
	if ok {
		return true
	}

	if !VerifyAPIKey(v.hash, key) {
		return false
	}
	v.mu.Lock()
	v.accepted[sum] = struct{}{}
	v.mu.Unlock()
	return true
}
