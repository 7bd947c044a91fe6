package tokengenerator

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const (
	// DefaultTokenBytes yields a 22-character URL-safe token (128 bits of entropy)
	DefaultTokenBytes = 16
)

// ErrEmptySecret is returned when Digest is called with an empty secret.
// Hashing nothing is a caller bug, not a runtime condition.
var ErrEmptySecret = errors.New("secret cannot be empty")

// TokenCodec generates opaque random tokens and produces/verifies bcrypt
// digests for them. The same codec handles passwords, remember tokens,
// activation tokens and reset tokens, so verification is uniform across
// all digest columns.
type TokenCodec struct {
	cost       int
	tokenBytes int
}

// TokenCodecOption defines configuration options
type TokenCodecOption func(*TokenCodec)

// WithCost sets the bcrypt cost factor. Tests pass bcrypt.MinCost to keep
// the suite fast; production keeps the library default.
func WithCost(cost int) TokenCodecOption {
	return func(c *TokenCodec) {
		c.cost = cost
	}
}

// WithTokenBytes sets the number of random bytes per generated token
func WithTokenBytes(n int) TokenCodecOption {
	return func(c *TokenCodec) {
		c.tokenBytes = n
	}
}

// New creates a new TokenCodec
func New(opts ...TokenCodecOption) *TokenCodec {
	codec := &TokenCodec{
		cost:       bcrypt.DefaultCost,
		tokenBytes: DefaultTokenBytes,
	}

	for _, opt := range opts {
		opt(codec)
	}

	return codec
}

// GenerateToken returns a cryptographically secure, URL-safe random token.
// The token is held in plaintext only transiently (cookie or outbound email);
// callers persist its digest instead.
func (c *TokenCodec) GenerateToken() (string, error) {
	b := make([]byte, c.tokenBytes)
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// Digest returns a salted bcrypt hash of the secret, safe to persist
func (c *TokenCodec) Digest(secret string) (string, error) {
	if secret == "" {
		return "", ErrEmptySecret
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(secret), c.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash secret: %w", err)
	}
	return string(hashed), nil
}

// Verify reports whether secret matches digest. An absent digest or any
// mismatch yields false; Verify never fails.
func (c *TokenCodec) Verify(secret, digest string) bool {
	if digest == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(secret)) == nil
}
