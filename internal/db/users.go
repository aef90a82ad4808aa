package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UserRepository handles user database operations.
type UserRepository struct {
	pool *pgxpool.Pool
}

// GetBySubject retrieves a user by external identity subject.
func (r *UserRepository) GetBySubject(ctx context.Context, subject string) (*User, error) {
	query := `
		SELECT id, auth_subject, name, email, created_at
		FROM users
		WHERE auth_subject = $1
	`
	var user User
	err := r.pool.QueryRow(ctx, query, subject).Scan(
		&user.ID,
		&user.AuthSubject,
		&user.Name,
		&user.Email,
		&user.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying user: %w", err)
	}
	return &user, nil
}

// Get retrieves a user by local id.
func (r *UserRepository) Get(ctx context.Context, id int64) (*User, error) {
	query := `
		SELECT id, auth_subject, name, email, created_at
		FROM users
		WHERE id = $1
	`
	var user User
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&user.ID,
		&user.AuthSubject,
		&user.Name,
		&user.Email,
		&user.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying user: %w", err)
	}
	return &user, nil
}

// Insert creates the user row for a first-seen subject. Concurrent first-time
// resolutions may race here; ON CONFLICT DO NOTHING makes the loser return
// ErrNotFound so the caller re-resolves by lookup instead of failing.
func (r *UserRepository) Insert(ctx context.Context, user *User) (*User, error) {
	query := `
		INSERT INTO users (auth_subject, name, email)
		VALUES ($1, $2, $3)
		ON CONFLICT (auth_subject) DO NOTHING
		RETURNING id, auth_subject, name, email, created_at
	`
	var created User
	err := r.pool.QueryRow(ctx, query,
		user.AuthSubject,
		user.Name,
		user.Email,
	).Scan(
		&created.ID,
		&created.AuthSubject,
		&created.Name,
		&created.Email,
		&created.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		// conflicting row already exists
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("inserting user: %w", err)
	}
	return &created, nil
}
