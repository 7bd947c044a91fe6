package authn

import (
	"github.com/tendant/simple-social/pkg/account"
	"github.com/tendant/simple-social/pkg/tokengenerator"
)

// PasswordAuthenticator verifies plaintext passwords against the stored
// password digest
type PasswordAuthenticator struct {
	codec *tokengenerator.TokenCodec
}

// NewPasswordAuthenticator creates a new PasswordAuthenticator
func NewPasswordAuthenticator(codec *tokengenerator.TokenCodec) *PasswordAuthenticator {
	return &PasswordAuthenticator{codec: codec}
}

// Authenticate reports whether password matches the user's password digest.
// A missing digest and a wrong password both yield false; callers cannot
// tell them apart.
func (a *PasswordAuthenticator) Authenticate(user account.User, password string) bool {
	return a.codec.Verify(password, user.PasswordDigest)
}
