package account

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = `id, name, email, password_digest,
	coalesce(remember_digest, ''), activated, activated_at,
	coalesce(activation_digest, ''), coalesce(reset_digest, ''), reset_sent_at,
	created_at, updated_at`

// PostgresRepository implements Repository using PostgreSQL
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL-based user repository
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func scanUser(row pgx.Row) (User, error) {
	var user User
	err := row.Scan(
		&user.ID, &user.Name, &user.Email, &user.PasswordDigest,
		&user.RememberDigest, &user.Activated, &user.ActivatedAt,
		&user.ActivationDigest, &user.ResetDigest, &user.ResetSentAt,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrUserNotFound
		}
		return User{}, fmt.Errorf("failed to scan user: %w", err)
	}
	return user, nil
}

// GetUser retrieves a user by ID
func (r *PostgresRepository) GetUser(ctx context.Context, id uuid.UUID) (User, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// GetUserByEmail retrieves a user by their normalized (lowercase) email
func (r *PostgresRepository) GetUserByEmail(ctx context.Context, email string) (User, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

// CreateUser inserts a new user record. The activation digest goes in with
// the same insert, never a follow-up update.
func (r *PostgresRepository) CreateUser(ctx context.Context, params CreateUserParams) (User, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO users (id, name, email, password_digest, activation_digest, activated, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, FALSE, now(), now())
		 RETURNING `+userColumns,
		uuid.New(), params.Name, params.Email, params.PasswordDigest, params.ActivationDigest)
	user, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return User{}, ErrEmailTaken
		}
		return User{}, err
	}
	return user, nil
}

// UpdateProfile updates a user's name and email
func (r *PostgresRepository) UpdateProfile(ctx context.Context, params UpdateProfileParams) (User, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE users SET name = $2, email = $3, updated_at = now()
		 WHERE id = $1
		 RETURNING `+userColumns,
		params.ID, params.Name, params.Email)
	user, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return User{}, ErrEmailTaken
		}
		return User{}, err
	}
	return user, nil
}

// UpdateRememberDigest persists a new remember digest
func (r *PostgresRepository) UpdateRememberDigest(ctx context.Context, id uuid.UUID, digest string) error {
	return r.exec(ctx,
		`UPDATE users SET remember_digest = $2, updated_at = now() WHERE id = $1`,
		id, digest)
}

// ClearRememberDigest removes the remember digest
func (r *PostgresRepository) ClearRememberDigest(ctx context.Context, id uuid.UUID) error {
	return r.exec(ctx,
		`UPDATE users SET remember_digest = NULL, updated_at = now() WHERE id = $1`,
		id)
}

// MarkActivated sets the activated flag and its timestamp
func (r *PostgresRepository) MarkActivated(ctx context.Context, id uuid.UUID, activatedAt time.Time) error {
	return r.exec(ctx,
		`UPDATE users SET activated = TRUE, activated_at = $2, updated_at = now() WHERE id = $1`,
		id, activatedAt)
}

// UpdateResetDigest writes reset digest and sent-at in a single statement so
// a half-written pair is not possible
func (r *PostgresRepository) UpdateResetDigest(ctx context.Context, id uuid.UUID, digest string, sentAt time.Time) error {
	return r.exec(ctx,
		`UPDATE users SET reset_digest = $2, reset_sent_at = $3, updated_at = now() WHERE id = $1`,
		id, digest, sentAt)
}

// UpdatePasswordDigest replaces the password digest
func (r *PostgresRepository) UpdatePasswordDigest(ctx context.Context, id uuid.UUID, digest string) error {
	return r.exec(ctx,
		`UPDATE users SET password_digest = $2, updated_at = now() WHERE id = $1`,
		id, digest)
}

func (r *PostgresRepository) exec(ctx context.Context, sql string, args ...any) error {
	tag, err := r.pool.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}
