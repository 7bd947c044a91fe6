package authn

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tendant/simple-social/pkg/account"
	"github.com/tendant/simple-social/pkg/tokengenerator"
)

// DefaultResetWindow is how long an issued reset token stays valid
const DefaultResetWindow = 2 * time.Hour

// MinPasswordLength applies to every password change
const MinPasswordLength = 6

// Validation failures returned by ApplyNewPassword, surfaced to the caller
// for re-display rather than collapsed into a generic failure
var (
	ErrEmptyPassword        = errors.New("password can't be empty")
	ErrPasswordTooShort     = fmt.Errorf("password is too short (minimum is %d characters)", MinPasswordLength)
	ErrConfirmationMismatch = errors.New("password confirmation doesn't match password")
)

// PasswordReset manages the reset-token lifecycle: issuance with timestamp,
// verification, expiry, and applying the replacement password
type PasswordReset struct {
	codec  *tokengenerator.TokenCodec
	repo   account.Repository
	window time.Duration
}

// PasswordResetOption defines configuration options
type PasswordResetOption func(*PasswordReset)

// WithResetWindow overrides the validity window for issued reset tokens
func WithResetWindow(window time.Duration) PasswordResetOption {
	return func(m *PasswordReset) {
		m.window = window
	}
}

// NewPasswordReset creates a new PasswordReset manager
func NewPasswordReset(codec *tokengenerator.TokenCodec, repo account.Repository, opts ...PasswordResetOption) *PasswordReset {
	m := &PasswordReset{
		codec:  codec,
		repo:   repo,
		window: DefaultResetWindow,
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// IssueReset generates a fresh reset token and persists its digest together
// with the sent-at timestamp in one write. Each call is a fresh issuance; a
// prior still-valid token is simply overwritten.
func (m *PasswordReset) IssueReset(ctx context.Context, user *account.User) (string, error) {
	token, err := m.codec.GenerateToken()
	if err != nil {
		return "", err
	}
	digest, err := m.codec.Digest(token)
	if err != nil {
		return "", err
	}
	sentAt := time.Now().UTC()
	if err := m.repo.UpdateResetDigest(ctx, user.ID, digest, sentAt); err != nil {
		return "", fmt.Errorf("failed to persist reset digest: %w", err)
	}
	user.ResetDigest = digest
	user.ResetSentAt = &sentAt
	return token, nil
}

// VerifyResetUser reports whether the presented token may reset this user's
// password. An inactive account can never complete a reset, token or not.
func (m *PasswordReset) VerifyResetUser(user account.User, token string) bool {
	return user.Activated && Authenticated(m.codec, user, DigestReset, token)
}

// IsExpired reports whether the most recent reset issuance is older than the
// window at the given instant. Expired iff reset_sent_at < now - window; a
// token presented at exactly the boundary is still accepted.
//
// Calling this before any reset was issued is a caller bug and panics.
func (m *PasswordReset) IsExpired(user account.User, now time.Time) bool {
	if user.ResetSentAt == nil {
		panic("authn: IsExpired called before a reset was issued")
	}
	return user.ResetSentAt.Before(now.Add(-m.window))
}

// ApplyNewPassword validates the replacement password and persists its
// digest. It does not touch session state; the composing caller is expected
// to reset the session afterwards to block fixation.
func (m *PasswordReset) ApplyNewPassword(ctx context.Context, user *account.User, password, confirmation string) error {
	if password == "" {
		return ErrEmptyPassword
	}
	if password != confirmation {
		return ErrConfirmationMismatch
	}
	if len(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}

	digest, err := m.codec.Digest(password)
	if err != nil {
		return err
	}
	if err := m.repo.UpdatePasswordDigest(ctx, user.ID, digest); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	user.PasswordDigest = digest
	return nil
}
