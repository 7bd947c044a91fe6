package authn

import (
	"context"
	"fmt"

	"github.com/tendant/simple-social/pkg/account"
	"github.com/tendant/simple-social/pkg/tokengenerator"
)

// RememberMe issues, verifies and revokes the long-lived remember token that
// backs cookie-based persistent login
type RememberMe struct {
	codec *tokengenerator.TokenCodec
	repo  account.Repository
}

// NewRememberMe creates a new RememberMe manager
func NewRememberMe(codec *tokengenerator.TokenCodec, repo account.Repository) *RememberMe {
	return &RememberMe{codec: codec, repo: repo}
}

// Remember generates a fresh remember token, persists its digest, and
// returns the plaintext token for cookie embedding. The in-memory record is
// updated alongside the store.
func (m *RememberMe) Remember(ctx context.Context, user *account.User) (string, error) {
	token, err := m.codec.GenerateToken()
	if err != nil {
		return "", err
	}
	digest, err := m.codec.Digest(token)
	if err != nil {
		return "", err
	}
	if err := m.repo.UpdateRememberDigest(ctx, user.ID, digest); err != nil {
		return "", fmt.Errorf("failed to persist remember digest: %w", err)
	}
	user.RememberDigest = digest
	return token, nil
}

// SessionIdentifier returns the user's remember digest, lazily issuing one
// when absent. Every persisted record therefore always has a usable session
// identifier on demand.
func (m *RememberMe) SessionIdentifier(ctx context.Context, user *account.User) (string, error) {
	if user.RememberDigest != "" {
		return user.RememberDigest, nil
	}
	if _, err := m.Remember(ctx, user); err != nil {
		return "", err
	}
	return user.RememberDigest, nil
}

// Forget clears the remember digest, invalidating any outstanding remember
// cookie
func (m *RememberMe) Forget(ctx context.Context, user *account.User) error {
	if err := m.repo.ClearRememberDigest(ctx, user.ID); err != nil {
		return fmt.Errorf("failed to clear remember digest: %w", err)
	}
	user.RememberDigest = ""
	return nil
}

// VerifyRemember reports whether the presented token matches the stored
// remember digest
func (m *RememberMe) VerifyRemember(user account.User, token string) bool {
	return Authenticated(m.codec, user, DigestRemember, token)
}
