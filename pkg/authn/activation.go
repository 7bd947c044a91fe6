package authn

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tendant/simple-social/pkg/account"
	"github.com/tendant/simple-social/pkg/tokengenerator"
)

// Activation manages the email-token account activation lifecycle
type Activation struct {
	codec *tokengenerator.TokenCodec
	repo  account.Repository
}

// NewActivation creates a new Activation manager
func NewActivation(codec *tokengenerator.TokenCodec, repo account.Repository) *Activation {
	return &Activation{codec: codec, repo: repo}
}

// IssueActivation generates an activation token and writes its digest onto
// the not-yet-persisted record, so the digest lands in the same insert as
// the rest of the row. Calling this on an already-persisted record is out of
// contract: it would silently invalidate the token already emailed out.
func (m *Activation) IssueActivation(user *account.User) (string, error) {
	if user.Persisted() {
		return "", errors.New("activation can only be issued before the record is persisted")
	}
	token, err := m.codec.GenerateToken()
	if err != nil {
		return "", err
	}
	digest, err := m.codec.Digest(token)
	if err != nil {
		return "", err
	}
	user.ActivationDigest = digest
	return token, nil
}

// Activate marks the user activated and stamps activated_at. Not idempotent:
// a repeat call re-stamps the timestamp, so callers gate on !Activated first.
func (m *Activation) Activate(ctx context.Context, user *account.User) error {
	activatedAt := time.Now().UTC()
	if err := m.repo.MarkActivated(ctx, user.ID, activatedAt); err != nil {
		return fmt.Errorf("failed to activate user: %w", err)
	}
	user.Activated = true
	user.ActivatedAt = &activatedAt
	return nil
}

// VerifyActivation resolves the record for the presented email and reports
// whether the activation link is acceptable: the record must exist, must not
// already be activated, and the token must match its activation digest.
// Failing any condition yields the same (User{}, false) with no hint which
// one failed.
func (m *Activation) VerifyActivation(ctx context.Context, email, token string) (account.User, bool) {
	user, err := m.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return account.User{}, false
	}
	if user.Activated {
		return account.User{}, false
	}
	if !Authenticated(m.codec, user, DigestActivation, token) {
		return account.User{}, false
	}
	return user, true
}
