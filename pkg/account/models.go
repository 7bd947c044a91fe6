package account

import (
	"time"

	"github.com/google/uuid"
)

// User is the credential record persisted by the repository. Only digests
// are ever stored; the plaintext remember/activation/reset tokens live in
// memory for the duration of a single request and are handed to cookies or
// outbound email by the callers.
type User struct {
	ID               uuid.UUID
	Name             string
	Email            string
	PasswordDigest   string
	RememberDigest   string
	Activated        bool
	ActivatedAt      *time.Time
	ActivationDigest string
	ResetDigest      string
	ResetSentAt      *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Persisted reports whether the record has been written to storage
func (u *User) Persisted() bool {
	return u.ID != uuid.Nil
}

// CreateUserParams represents parameters for creating a user. The activation
// digest is part of the insert so a new record never exists without one.
type CreateUserParams struct {
	Name             string
	Email            string
	PasswordDigest   string
	ActivationDigest string
}

// UpdateProfileParams represents parameters for updating a user's profile
type UpdateProfileParams struct {
	ID    uuid.UUID
	Name  string
	Email string
}
