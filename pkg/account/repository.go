package account

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common errors
var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email has already been taken")
)

// Repository defines the storage operations for user credential records.
// Each mutation maps to one atomic-field-group write; in particular the
// reset digest and its sent-at timestamp are always written together.
type Repository interface {
	GetUser(ctx context.Context, id uuid.UUID) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	CreateUser(ctx context.Context, params CreateUserParams) (User, error)
	UpdateProfile(ctx context.Context, params UpdateProfileParams) (User, error)

	UpdateRememberDigest(ctx context.Context, id uuid.UUID, digest string) error
	ClearRememberDigest(ctx context.Context, id uuid.UUID) error
	MarkActivated(ctx context.Context, id uuid.UUID, activatedAt time.Time) error
	UpdateResetDigest(ctx context.Context, id uuid.UUID, digest string, sentAt time.Time) error
	UpdatePasswordDigest(ctx context.Context, id uuid.UUID, digest string) error
}
