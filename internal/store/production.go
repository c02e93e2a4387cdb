package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Simplici0/printdesk/internal/models"
)

const productionColumns = `id, COALESCE(quote_id, ''), title, status, planned_grams, actual_grams, created_at, completed_at`

// CreateProductionOrder opens a pending order. One order exists per quote; a
// second one returns ErrConflict.
func (s *Store) CreateProductionOrder(ctx context.Context, o *models.ProductionOrder) error {
	if o.ID == "" {
		o.ID = newID()
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = s.now()
	}
	o.Status = models.ProductionPending

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO production_orders (id, quote_id, title, status, planned_grams, created_at)
		VALUES (?, NULLIF(?, ''), ?, ?, ?, ?)
		ON CONFLICT(quote_id) DO NOTHING
	`, o.ID, o.QuoteID, o.Title, string(o.Status), o.PlannedGrams, formatTime(o.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert production order: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("read affected rows: %w", err)
	}
	if affected == 0 {
		return ErrConflict
	}
	return nil
}

// ProductionOrders lists orders, pending first, then newest first.
func (s *Store) ProductionOrders(ctx context.Context) ([]models.ProductionOrder, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+productionColumns+`
		FROM production_orders
		ORDER BY CASE status WHEN 'pending' THEN 0 ELSE 1 END, created_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query production orders: %w", err)
	}
	defer rows.Close()

	orders := make([]models.ProductionOrder, 0)
	for rows.Next() {
		o, err := scanProductionOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan production order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate production orders: %w", err)
	}
	return orders, nil
}

func (s *Store) ProductionOrder(ctx context.Context, id string) (models.ProductionOrder, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+productionColumns+`
		FROM production_orders
		WHERE id = ?
	`, id)
	o, err := scanProductionOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ProductionOrder{}, ErrNotFound
	}
	if err != nil {
		return models.ProductionOrder{}, fmt.Errorf("query production order: %w", err)
	}
	return o, nil
}

// CompleteProductionOrder records the grams actually consumed and closes the
// order. Completing a closed order returns ErrConflict.
func (s *Store) CompleteProductionOrder(ctx context.Context, id string, actualGrams float64, at time.Time) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE production_orders
		SET status = 'done', actual_grams = ?, completed_at = ?
		WHERE id = ? AND status = 'pending'
	`, actualGrams, formatTime(at), id)
	if err != nil {
		return fmt.Errorf("complete production order: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("read affected rows: %w", err)
	}
	if affected > 0 {
		return nil
	}
	if _, err := s.ProductionOrder(ctx, id); err != nil {
		return err
	}
	return ErrConflict
}

func scanProductionOrder(row rowScanner) (models.ProductionOrder, error) {
	var (
		o           models.ProductionOrder
		status      string
		actual      sql.NullFloat64
		createdAt   string
		completedAt sql.NullString
	)
	if err := row.Scan(&o.ID, &o.QuoteID, &o.Title, &status, &o.PlannedGrams, &actual, &createdAt, &completedAt); err != nil {
		return models.ProductionOrder{}, err
	}
	o.Status = models.ProductionStatus(status)
	if actual.Valid {
		grams := actual.Float64
		o.ActualGrams = &grams
	}

	var err error
	if o.CreatedAt, err = parseTime(createdAt); err != nil {
		return models.ProductionOrder{}, err
	}
	if completedAt.Valid {
		t, err := parseTime(completedAt.String)
		if err != nil {
			return models.ProductionOrder{}, err
		}
		o.CompletedAt = &t
	}
	return o, nil
}
