package secrets

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashVerify_RoundTrip(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	digest, err := h.Hash("hunter2")
	require.NoError(t, err)
	require.NotEqual(t, "hunter2", digest)
	assert.True(t, strings.HasPrefix(digest, "$2"), "expected self-describing bcrypt digest, got %q", digest)

	assert.True(t, h.Verify("hunter2", digest))
	assert.False(t, h.Verify("hunter3", digest))
}

func TestHash_SaltedPerCall(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	d1, err := h.Hash("same-password")
	require.NoError(t, err)
	d2, err := h.Hash("same-password")
	require.NoError(t, err)

	assert.NotEqual(t, d1, d2, "two hashes of the same password must differ by salt")
	assert.True(t, h.Verify("same-password", d1))
	assert.True(t, h.Verify("same-password", d2))
}

func TestVerify_MalformedDigest(t *testing.T) {
	h := NewHasher(0)

	assert.False(t, h.Verify("whatever", ""))
	assert.False(t, h.Verify("whatever", "not-a-bcrypt-digest"))
	assert.False(t, h.Verify("whatever", "$2a$zz$garbage"))
}

func TestNewHasher_ClampsCost(t *testing.T) {
	assert.Equal(t, bcrypt.DefaultCost, NewHasher(0).cost)
	assert.Equal(t, bcrypt.DefaultCost, NewHasher(-3).cost)
	assert.Equal(t, bcrypt.MinCost, NewHasher(1).cost)
	assert.Equal(t, bcrypt.MaxCost, NewHasher(99).cost)
}

func TestNewToken_Properties(t *testing.T) {
	seen := make(map[string]struct{})
	wantLen := base64.RawURLEncoding.EncodedLen(TokenBytes)

	for i := 0; i < 64; i++ {
		tok, err := NewToken()
		require.NoError(t, err)

		assert.Len(t, tok, wantLen)
		_, err = base64.RawURLEncoding.DecodeString(tok)
		require.NoError(t, err, "token must be URL-safe base64")

		_, dup := seen[tok]
		require.False(t, dup, "duplicate token generated: %s", tok)
		seen[tok] = struct{}{}
	}
}
