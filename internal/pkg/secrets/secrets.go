// Package secrets holds the two cryptographically sensitive primitives of the
// authentication core: password hashing and random token generation.
package secrets

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// TokenBytes is the entropy drawn for every verification and reset token:
// 32 bytes, 256 bits.
const TokenBytes = 32

// Hasher wraps bcrypt with a fixed work factor. The cost is chosen once at
// construction so hashing latency stays bounded on user-visible paths.
type Hasher struct {
	cost int
}

// NewHasher clamps cost into bcrypt's supported range; zero or negative
// selects bcrypt.DefaultCost.
func NewHasher(cost int) *Hasher {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	if cost < bcrypt.MinCost {
		cost = bcrypt.MinCost
	}
	if cost > bcrypt.MaxCost {
		cost = bcrypt.MaxCost
	}
	return &Hasher{cost: cost}
}

// Hash produces a salted, self-describing bcrypt digest. The salt comes from
// the runtime's secure random source.
func (h *Hasher) Hash(plaintext string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(digest), nil
}

// Verify recomputes the digest using the parameters embedded in it and
// compares in constant time. Malformed digests simply verify as false.
func (h *Hasher) Verify(plaintext, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}

// NewToken returns a fresh URL-safe token with TokenBytes of entropy from
// crypto/rand. Tokens are unpredictable and never derived from counters or
// clocks.
func NewToken() (string, error) {
	buf := make([]byte, TokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read token entropy: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
