package account

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryRepository implements Repository using in-memory storage.
// It backs the test suites.
type InMemoryRepository struct {
	mu    sync.RWMutex
	users map[uuid.UUID]User
}

// NewInMemoryRepository creates a new in-memory user repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		users: make(map[uuid.UUID]User),
	}
}

// GetUser retrieves a user by ID
func (r *InMemoryRepository) GetUser(ctx context.Context, id uuid.UUID) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return user, nil
}

// GetUserByEmail retrieves a user by email. Stored emails are already
// lowercase; the lookup is an exact match against that normalized form.
func (r *InMemoryRepository) GetUserByEmail(ctx context.Context, email string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return User{}, ErrUserNotFound
}

// CreateUser creates a new user record
func (r *InMemoryRepository) CreateUser(ctx context.Context, params CreateUserParams) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, user := range r.users {
		if strings.EqualFold(user.Email, params.Email) {
			return User{}, ErrEmailTaken
		}
	}

	now := time.Now().UTC()
	user := User{
		ID:               uuid.New(),
		Name:             params.Name,
		Email:            params.Email,
		PasswordDigest:   params.PasswordDigest,
		ActivationDigest: params.ActivationDigest,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	r.users[user.ID] = user
	return user, nil
}

// UpdateProfile updates a user's name and email
func (r *InMemoryRepository) UpdateProfile(ctx context.Context, params UpdateProfileParams) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[params.ID]
	if !ok {
		return User{}, ErrUserNotFound
	}
	for id, other := range r.users {
		if id != params.ID && strings.EqualFold(other.Email, params.Email) {
			return User{}, ErrEmailTaken
		}
	}

	user.Name = params.Name
	user.Email = params.Email
	user.UpdatedAt = time.Now().UTC()
	r.users[user.ID] = user
	return user, nil
}

// UpdateRememberDigest persists a new remember digest
func (r *InMemoryRepository) UpdateRememberDigest(ctx context.Context, id uuid.UUID, digest string) error {
	return r.update(id, func(user *User) {
		user.RememberDigest = digest
	})
}

// ClearRememberDigest removes the remember digest, invalidating any
// persistent session
func (r *InMemoryRepository) ClearRememberDigest(ctx context.Context, id uuid.UUID) error {
	return r.update(id, func(user *User) {
		user.RememberDigest = ""
	})
}

// MarkActivated sets the activated flag and its timestamp
func (r *InMemoryRepository) MarkActivated(ctx context.Context, id uuid.UUID, activatedAt time.Time) error {
	return r.update(id, func(user *User) {
		user.Activated = true
		user.ActivatedAt = &activatedAt
	})
}

// UpdateResetDigest writes the reset digest and sent-at timestamp as a pair
func (r *InMemoryRepository) UpdateResetDigest(ctx context.Context, id uuid.UUID, digest string, sentAt time.Time) error {
	return r.update(id, func(user *User) {
		user.ResetDigest = digest
		user.ResetSentAt = &sentAt
	})
}

// UpdatePasswordDigest replaces the password digest
func (r *InMemoryRepository) UpdatePasswordDigest(ctx context.Context, id uuid.UUID, digest string) error {
	return r.update(id, func(user *User) {
		user.PasswordDigest = digest
	})
}

func (r *InMemoryRepository) update(id uuid.UUID, mutate func(*User)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return ErrUserNotFound
	}
	mutate(&user)
	user.UpdatedAt = time.Now().UTC()
	r.users[id] = user
	return nil
}
