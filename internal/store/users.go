package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// PasswordHash returns the stored hash for email.
func (s *Store) PasswordHash(ctx context.Context, email string) (string, error) {
	var hash string
	err := s.db.QueryRowContext(ctx, `SELECT password_hash FROM users WHERE email = ?`, email).Scan(&hash)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("query user credentials: %w", err)
	}
	return hash, nil
}
