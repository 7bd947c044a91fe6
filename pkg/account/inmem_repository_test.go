package account

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestUser(t *testing.T, repo *InMemoryRepository, email string) User {
	t.Helper()
	user, err := repo.CreateUser(context.Background(), CreateUserParams{
		Name:             "Example User",
		Email:            email,
		PasswordDigest:   "digest",
		ActivationDigest: "activation-digest",
	})
	require.NoError(t, err)
	return user
}

func TestInMemoryRepository_CreateUser(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	user := createTestUser(t, repo, "user@example.com")
	assert.NotEqual(t, uuid.Nil, user.ID)
	assert.False(t, user.Activated)
	assert.Nil(t, user.ActivatedAt)
	assert.Equal(t, "activation-digest", user.ActivationDigest)

	t.Run("DuplicateEmail", func(t *testing.T) {
		_, err := repo.CreateUser(ctx, CreateUserParams{
			Name:             "Other",
			Email:            "USER@example.com",
			PasswordDigest:   "digest",
			ActivationDigest: "other-digest",
		})
		assert.ErrorIs(t, err, ErrEmailTaken)
	})
}

func TestInMemoryRepository_Lookups(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	user := createTestUser(t, repo, "user@example.com")

	t.Run("ByID", func(t *testing.T) {
		found, err := repo.GetUser(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, user.Email, found.Email)
	})

	t.Run("ByEmail", func(t *testing.T) {
		found, err := repo.GetUserByEmail(ctx, "user@example.com")
		require.NoError(t, err)
		assert.Equal(t, user.ID, found.ID)
	})

	t.Run("NotFound", func(t *testing.T) {
		_, err := repo.GetUser(ctx, uuid.New())
		assert.ErrorIs(t, err, ErrUserNotFound)

		_, err = repo.GetUserByEmail(ctx, "nobody@example.com")
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestInMemoryRepository_DigestUpdates(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	user := createTestUser(t, repo, "user@example.com")

	t.Run("RememberDigest", func(t *testing.T) {
		require.NoError(t, repo.UpdateRememberDigest(ctx, user.ID, "remember-digest"))
		found, err := repo.GetUser(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, "remember-digest", found.RememberDigest)

		require.NoError(t, repo.ClearRememberDigest(ctx, user.ID))
		found, err = repo.GetUser(ctx, user.ID)
		require.NoError(t, err)
		assert.Empty(t, found.RememberDigest)
	})

	t.Run("ResetDigestPair", func(t *testing.T) {
		sentAt := time.Now().UTC()
		require.NoError(t, repo.UpdateResetDigest(ctx, user.ID, "reset-digest", sentAt))
		found, err := repo.GetUser(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, "reset-digest", found.ResetDigest)
		require.NotNil(t, found.ResetSentAt)
		assert.Equal(t, sentAt, *found.ResetSentAt)
	})

	t.Run("MarkActivated", func(t *testing.T) {
		activatedAt := time.Now().UTC()
		require.NoError(t, repo.MarkActivated(ctx, user.ID, activatedAt))
		found, err := repo.GetUser(ctx, user.ID)
		require.NoError(t, err)
		assert.True(t, found.Activated)
		require.NotNil(t, found.ActivatedAt)
		assert.Equal(t, activatedAt, *found.ActivatedAt)
	})

	t.Run("UnknownUser", func(t *testing.T) {
		err := repo.UpdateRememberDigest(ctx, uuid.New(), "digest")
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestInMemoryRepository_UpdateProfile(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	user := createTestUser(t, repo, "user@example.com")
	other := createTestUser(t, repo, "other@example.com")

	updated, err := repo.UpdateProfile(ctx, UpdateProfileParams{
		ID:    user.ID,
		Name:  "Renamed",
		Email: "renamed@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	assert.Equal(t, "renamed@example.com", updated.Email)

	_, err = repo.UpdateProfile(ctx, UpdateProfileParams{
		ID:    other.ID,
		Name:  other.Name,
		Email: "RENAMED@example.com",
	})
	assert.ErrorIs(t, err, ErrEmailTaken)
}
