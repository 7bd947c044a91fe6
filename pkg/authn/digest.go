package authn

import (
	"github.com/tendant/simple-social/pkg/account"
	"github.com/tendant/simple-social/pkg/tokengenerator"
)

// DigestKind selects which digest column a token is verified against
type DigestKind int

const (
	DigestRemember DigestKind = iota
	DigestActivation
	DigestReset
)

func (k DigestKind) String() string {
	switch k {
	case DigestRemember:
		return "remember"
	case DigestActivation:
		return "activation"
	case DigestReset:
		return "reset"
	default:
		return "unknown"
	}
}

// digestOf returns the stored digest for the given kind, or "" when absent
func digestOf(user account.User, kind DigestKind) string {
	switch kind {
	case DigestRemember:
		return user.RememberDigest
	case DigestActivation:
		return user.ActivationDigest
	case DigestReset:
		return user.ResetDigest
	default:
		return ""
	}
}

// Authenticated reports whether token matches the user's digest of the given
// kind. An absent digest yields false, never an error.
func Authenticated(codec *tokengenerator.TokenCodec, user account.User, kind DigestKind, token string) bool {
	return codec.Verify(token, digestOf(user, kind))
}
