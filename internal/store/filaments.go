package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Simplici0/printdesk/internal/models"
)

const filamentColumns = `id, brand, name, type, color_hex, price_per_spool, weight_per_spool_grams, current_weight_grams, purchased_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFilament(row rowScanner) (models.Filament, error) {
	var (
		f           models.Filament
		kind        string
		purchasedAt string
	)
	if err := row.Scan(&f.ID, &f.Brand, &f.Name, &kind, &f.ColorHex, &f.PricePerSpool, &f.WeightPerSpoolGrams, &f.CurrentWeightGrams, &purchasedAt); err != nil {
		return models.Filament{}, err
	}
	f.Type = models.FilamentType(kind)

	t, err := parseTime(purchasedAt)
	if err != nil {
		return models.Filament{}, err
	}
	f.PurchasedAt = t
	return f, nil
}

// Filaments lists stock ordered by brand and name.
func (s *Store) Filaments(ctx context.Context) ([]models.Filament, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+filamentColumns+` FROM filaments ORDER BY brand, name, id`)
	if err != nil {
		return nil, fmt.Errorf("query filaments: %w", err)
	}
	defer rows.Close()

	filaments := make([]models.Filament, 0)
	for rows.Next() {
		f, err := scanFilament(rows)
		if err != nil {
			return nil, fmt.Errorf("scan filament: %w", err)
		}
		filaments = append(filaments, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate filaments: %w", err)
	}
	return filaments, nil
}

// Filament returns one spool by id.
func (s *Store) Filament(ctx context.Context, id string) (models.Filament, error) {
	f, err := scanFilament(s.db.QueryRowContext(ctx, `SELECT `+filamentColumns+` FROM filaments WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Filament{}, ErrNotFound
	}
	if err != nil {
		return models.Filament{}, fmt.Errorf("query filament: %w", err)
	}
	return f, nil
}

// UpsertFilament inserts f, or replaces the record with the same id. An empty
// id is assigned.
func (s *Store) UpsertFilament(ctx context.Context, f *models.Filament) error {
	if f.ID == "" {
		f.ID = newID()
	}
	if f.PurchasedAt.IsZero() {
		f.PurchasedAt = s.now()
	}
	now := formatTime(s.now())

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO filaments (
			id, brand, name, type, color_hex, price_per_spool, weight_per_spool_grams,
			current_weight_grams, purchased_at, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			brand = excluded.brand,
			name = excluded.name,
			type = excluded.type,
			color_hex = excluded.color_hex,
			price_per_spool = excluded.price_per_spool,
			weight_per_spool_grams = excluded.weight_per_spool_grams,
			current_weight_grams = excluded.current_weight_grams,
			purchased_at = excluded.purchased_at,
			updated_at = excluded.updated_at
	`, f.ID, f.Brand, f.Name, string(f.Type), f.ColorHex, f.PricePerSpool, f.WeightPerSpoolGrams,
		f.CurrentWeightGrams, formatTime(f.PurchasedAt), now, now)
	if err != nil {
		return fmt.Errorf("upsert filament: %w", err)
	}
	return nil
}

// DeleteFilament removes a spool.
func (s *Store) DeleteFilament(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM filaments WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete filament: %w", err)
	}
	return affectedOrNotFound(result)
}

// AdjustFilamentWeight adds deltaGrams to the remaining weight, never going
// below zero.
func (s *Store) AdjustFilamentWeight(ctx context.Context, id string, deltaGrams float64) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE filaments
		SET
			current_weight_grams = MAX(0, current_weight_grams + ?),
			updated_at = ?
		WHERE id = ?
	`, deltaGrams, formatTime(s.now()), id)
	if err != nil {
		return fmt.Errorf("adjust filament weight: %w", err)
	}
	return affectedOrNotFound(result)
}
