package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dan9191/loan-service/internal/models"
	"github.com/jmoiron/sqlx"
)

// CreateUser creates a new user in the database.
// Returns ErrAlreadyExists when the username is taken.
func (r *Repository) CreateUser(ctx context.Context, user *models.User) error {
	q := r.ext()
	query := q.Rebind(`
		INSERT INTO users (username, password_hash, full_name, created_at)
		VALUES (?, ?, ?, ?)
		RETURNING user_id`)
	err := q.QueryRowxContext(ctx, query, user.Username, user.PasswordHash, user.FullName, user.CreatedAt).
		Scan(&user.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// FindUserByUsername retrieves a user by username
func (r *Repository) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	q := r.ext()
	query := q.Rebind(`
		SELECT user_id, username, password_hash, full_name, created_at
		FROM users
		WHERE username = ?`)

	user := &models.User{}
	if err := sqlx.GetContext(ctx, q, user, query, username); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}
