package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Simplici0/printdesk/internal/models"
	"github.com/Simplici0/printdesk/internal/pricing"
)

// QuoteFilter narrows a quote listing. Zero values match everything.
type QuoteFilter struct {
	Search string
	Status models.QuoteStatus
}

const quoteColumns = `
	q.id,
	COALESCE(q.client_id, ''),
	q.title,
	q.items_json,
	q.profit_margin_percent,
	q.channel,
	q.total_cost,
	q.final_price,
	q.tax_amount,
	q.net_value,
	q.breakdown_json,
	q.status,
	q.created_at,
	q.updated_at,
	q.approved_at`

func scanQuote(row rowScanner) (models.Quote, error) {
	var (
		q                    models.Quote
		channel, status      string
		itemsJSON, breakdown string
		createdAt, updatedAt string
		approvedAt           sql.NullString
	)
	if err := row.Scan(
		&q.ID,
		&q.ClientID,
		&q.Title,
		&itemsJSON,
		&q.ProfitMarginPercent,
		&channel,
		&q.TotalCost,
		&q.FinalPrice,
		&q.TaxAmount,
		&q.NetValue,
		&breakdown,
		&status,
		&createdAt,
		&updatedAt,
		&approvedAt,
	); err != nil {
		return models.Quote{}, err
	}
	q.Channel = pricing.SalesChannel(channel)
	q.Status = models.QuoteStatus(status)

	if err := json.Unmarshal([]byte(itemsJSON), &q.Items); err != nil {
		return models.Quote{}, fmt.Errorf("decode quote items: %w", err)
	}
	if err := json.Unmarshal([]byte(breakdown), &q.Breakdown); err != nil {
		return models.Quote{}, fmt.Errorf("decode quote breakdown: %w", err)
	}

	var err error
	if q.CreatedAt, err = parseTime(createdAt); err != nil {
		return models.Quote{}, err
	}
	if q.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return models.Quote{}, err
	}
	if approvedAt.Valid && approvedAt.String != "" {
		t, err := parseTime(approvedAt.String)
		if err != nil {
			return models.Quote{}, err
		}
		q.ApprovedAt = &t
	}
	return q, nil
}

// Quotes lists quotes newest first. Search matches the title or the client name.
func (s *Store) Quotes(ctx context.Context, filter QuoteFilter) ([]models.Quote, error) {
	search := "%" + filter.Search + "%"
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+quoteColumns+`
		FROM quotes q
		LEFT JOIN clients c ON c.id = q.client_id
		WHERE (? = '' OR q.title LIKE ? OR COALESCE(c.name, '') LIKE ?)
			AND (? = '' OR q.status = ?)
		ORDER BY q.created_at DESC, q.id DESC
	`, filter.Search, search, search, string(filter.Status), string(filter.Status))
	if err != nil {
		return nil, fmt.Errorf("query quotes: %w", err)
	}
	defer rows.Close()

	quotes := make([]models.Quote, 0)
	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			return nil, fmt.Errorf("scan quote: %w", err)
		}
		quotes = append(quotes, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate quotes: %w", err)
	}
	return quotes, nil
}

// Quote returns one quote by id.
func (s *Store) Quote(ctx context.Context, id string) (models.Quote, error) {
	q, err := scanQuote(s.db.QueryRowContext(ctx, `SELECT `+quoteColumns+` FROM quotes q WHERE q.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Quote{}, ErrNotFound
	}
	if err != nil {
		return models.Quote{}, fmt.Errorf("query quote: %w", err)
	}
	return q, nil
}

// UpsertQuote writes q including its financial snapshot. Approved quotes are
// never overwritten; that case returns ErrConflict.
func (s *Store) UpsertQuote(ctx context.Context, q *models.Quote) error {
	if q.ID == "" {
		q.ID = newID()
	}
	now := s.now()
	if q.CreatedAt.IsZero() {
		q.CreatedAt = now
	}
	q.UpdatedAt = now
	if q.Status == "" {
		q.Status = models.QuoteDraft
	}
	if q.Items == nil {
		q.Items = []pricing.PrintJob{}
	}

	itemsJSON, err := json.Marshal(q.Items)
	if err != nil {
		return fmt.Errorf("encode quote items: %w", err)
	}
	breakdownJSON, err := json.Marshal(q.Breakdown)
	if err != nil {
		return fmt.Errorf("encode quote breakdown: %w", err)
	}

	var clientID sql.NullString
	if q.ClientID != "" {
		clientID = sql.NullString{String: q.ClientID, Valid: true}
	}
	var approvedAt sql.NullString
	if q.ApprovedAt != nil {
		approvedAt = sql.NullString{String: formatTime(*q.ApprovedAt), Valid: true}
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO quotes (
			id, client_id, title, items_json, profit_margin_percent, channel,
			total_cost, final_price, tax_amount, net_value, breakdown_json,
			status, created_at, updated_at, approved_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			client_id = excluded.client_id,
			title = excluded.title,
			items_json = excluded.items_json,
			profit_margin_percent = excluded.profit_margin_percent,
			channel = excluded.channel,
			total_cost = excluded.total_cost,
			final_price = excluded.final_price,
			tax_amount = excluded.tax_amount,
			net_value = excluded.net_value,
			breakdown_json = excluded.breakdown_json,
			status = excluded.status,
			updated_at = excluded.updated_at,
			approved_at = excluded.approved_at
		WHERE quotes.status != 'approved'
	`,
		q.ID, clientID, q.Title, string(itemsJSON), q.ProfitMarginPercent, string(q.EffectiveChannel()),
		q.TotalCost, q.FinalPrice, q.TaxAmount, q.NetValue, string(breakdownJSON),
		string(q.Status), formatTime(q.CreatedAt), formatTime(q.UpdatedAt), approvedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert quote: %w", err)
	}
	if err := affectedOrNotFound(result); errors.Is(err, ErrNotFound) {
		return ErrConflict
	} else if err != nil {
		return err
	}
	return nil
}

// DeleteQuote removes a quote. A posted ledger entry keeps its values.
func (s *Store) DeleteQuote(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM quotes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete quote: %w", err)
	}
	return affectedOrNotFound(result)
}

// MarkQuoteApproved flips a quote to approved exactly once. It returns
// ErrConflict when the quote was already approved.
func (s *Store) MarkQuoteApproved(ctx context.Context, id string, at time.Time) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE quotes
		SET status = 'approved', approved_at = ?, updated_at = ?
		WHERE id = ? AND status != 'approved'
	`, formatTime(at), formatTime(s.now()), id)
	if err != nil {
		return fmt.Errorf("approve quote: %w", err)
	}

	err = affectedOrNotFound(result)
	if !errors.Is(err, ErrNotFound) {
		return err
	}

	if _, getErr := s.Quote(ctx, id); getErr != nil {
		return getErr
	}
	return ErrConflict
}
