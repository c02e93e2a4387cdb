package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Simplici0/printdesk/internal/models"
)

func (s *Store) Clients(ctx context.Context) ([]models.Client, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, phone, email, notes
		FROM clients
		ORDER BY name COLLATE NOCASE, id
	`)
	if err != nil {
		return nil, fmt.Errorf("query clients: %w", err)
	}
	defer rows.Close()

	clients := make([]models.Client, 0)
	for rows.Next() {
		var c models.Client
		if err := rows.Scan(&c.ID, &c.Name, &c.Phone, &c.Email, &c.Notes); err != nil {
			return nil, fmt.Errorf("scan client: %w", err)
		}
		clients = append(clients, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate clients: %w", err)
	}
	return clients, nil
}

func (s *Store) Client(ctx context.Context, id string) (models.Client, error) {
	var c models.Client
	err := s.db.QueryRowContext(ctx, `SELECT id, name, phone, email, notes FROM clients WHERE id = ?`, id).
		Scan(&c.ID, &c.Name, &c.Phone, &c.Email, &c.Notes)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Client{}, ErrNotFound
	}
	if err != nil {
		return models.Client{}, fmt.Errorf("query client: %w", err)
	}
	return c, nil
}

func (s *Store) UpsertClient(ctx context.Context, c *models.Client) error {
	if c.ID == "" {
		c.ID = newID()
	}
	now := formatTime(s.now())

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO clients (id, name, phone, email, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			phone = excluded.phone,
			email = excluded.email,
			notes = excluded.notes,
			updated_at = excluded.updated_at
	`, c.ID, c.Name, c.Phone, c.Email, c.Notes, now, now)
	if err != nil {
		return fmt.Errorf("upsert client: %w", err)
	}
	return nil
}

// DeleteClient removes a client. Quotes keep their data and lose the link.
func (s *Store) DeleteClient(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM clients WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete client: %w", err)
	}
	return affectedOrNotFound(result)
}
