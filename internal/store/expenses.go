package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Simplici0/printdesk/internal/models"
)

// Expenses lists expenses newest first.
func (s *Store) Expenses(ctx context.Context) ([]models.Expense, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, description, category, amount, spent_at, is_fixed
		FROM expenses
		ORDER BY spent_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query expenses: %w", err)
	}
	defer rows.Close()

	expenses := make([]models.Expense, 0)
	for rows.Next() {
		var (
			e        models.Expense
			category string
			spentAt  string
		)
		if err := rows.Scan(&e.ID, &e.Description, &category, &e.Amount, &spentAt, &e.IsFixed); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		e.Category = models.ExpenseCategory(category)
		if e.Date, err = parseTime(spentAt); err != nil {
			return nil, err
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expenses: %w", err)
	}
	return expenses, nil
}

func (s *Store) Expense(ctx context.Context, id string) (models.Expense, error) {
	var (
		e        models.Expense
		category string
		spentAt  string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, description, category, amount, spent_at, is_fixed
		FROM expenses
		WHERE id = ?
	`, id).Scan(&e.ID, &e.Description, &category, &e.Amount, &spentAt, &e.IsFixed)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Expense{}, ErrNotFound
	}
	if err != nil {
		return models.Expense{}, fmt.Errorf("query expense: %w", err)
	}
	e.Category = models.ExpenseCategory(category)
	if e.Date, err = parseTime(spentAt); err != nil {
		return models.Expense{}, err
	}
	return e, nil
}

func (s *Store) UpsertExpense(ctx context.Context, e *models.Expense) error {
	if e.ID == "" {
		e.ID = newID()
	}
	if e.Date.IsZero() {
		e.Date = s.now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO expenses (id, description, category, amount, spent_at, is_fixed)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			description = excluded.description,
			category = excluded.category,
			amount = excluded.amount,
			spent_at = excluded.spent_at,
			is_fixed = excluded.is_fixed
	`, e.ID, e.Description, string(e.Category), e.Amount, formatTime(e.Date), e.IsFixed)
	if err != nil {
		return fmt.Errorf("upsert expense: %w", err)
	}
	return nil
}

func (s *Store) DeleteExpense(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	return affectedOrNotFound(result)
}
