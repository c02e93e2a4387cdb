package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Simplici0/printdesk/internal/models"
)

// PostLedgerEntry records a sale. A quote can be posted once; a second post
// returns ErrConflict.
func (s *Store) PostLedgerEntry(ctx context.Context, e *models.LedgerEntry) error {
	if e.ID == "" {
		e.ID = newID()
	}
	if e.Kind == "" {
		e.Kind = models.LedgerSale
	}
	if e.PostedAt.IsZero() {
		e.PostedAt = s.now()
	}
	if e.Items == nil {
		e.Items = []models.LedgerItem{}
	}

	itemsJSON, err := json.Marshal(e.Items)
	if err != nil {
		return fmt.Errorf("encode ledger items: %w", err)
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO ledger_entries (
			id, quote_id, kind, description, channel, client_name,
			amount, cost, fees, profit, items_json, posted_at
		) VALUES (?, NULLIF(?, ''), ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(quote_id) DO NOTHING
	`, e.ID, e.QuoteID, e.Kind, e.Description, e.Channel, e.ClientName,
		e.Amount, e.Cost, e.Fees, e.Profit, string(itemsJSON), formatTime(e.PostedAt))
	if err != nil {
		return fmt.Errorf("insert ledger entry: %w", err)
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

// LedgerEntries lists posted entries newest first.
func (s *Store) LedgerEntries(ctx context.Context) ([]models.LedgerEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, COALESCE(quote_id, ''), kind, description, channel, client_name,
			amount, cost, fees, profit, items_json, posted_at
		FROM ledger_entries
		ORDER BY posted_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query ledger entries: %w", err)
	}
	defer rows.Close()

	entries := make([]models.LedgerEntry, 0)
	for rows.Next() {
		var (
			e         models.LedgerEntry
			itemsJSON string
			postedAt  string
		)
		if err := rows.Scan(&e.ID, &e.QuoteID, &e.Kind, &e.Description, &e.Channel, &e.ClientName,
			&e.Amount, &e.Cost, &e.Fees, &e.Profit, &itemsJSON, &postedAt); err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		if err := json.Unmarshal([]byte(itemsJSON), &e.Items); err != nil {
			return nil, fmt.Errorf("decode ledger items: %w", err)
		}
		if e.PostedAt, err = parseTime(postedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ledger entries: %w", err)
	}
	return entries, nil
}
