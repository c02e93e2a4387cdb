package store

import (
	"context"
	"fmt"

	"github.com/Simplici0/printdesk/internal/pricing"
)

// Fees lists the marketplace fee rules in insertion order.
func (s *Store) Fees(ctx context.Context) ([]pricing.MarketplaceFeeRule, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT channel, percent, fixed FROM marketplace_fees ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("query marketplace fees: %w", err)
	}
	defer rows.Close()

	rules := make([]pricing.MarketplaceFeeRule, 0)
	for rows.Next() {
		var (
			rule    pricing.MarketplaceFeeRule
			channel string
		)
		if err := rows.Scan(&channel, &rule.Percent, &rule.Fixed); err != nil {
			return nil, fmt.Errorf("scan marketplace fee: %w", err)
		}
		rule.Channel = pricing.SalesChannel(channel)
		rules = append(rules, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate marketplace fees: %w", err)
	}
	return rules, nil
}

// ReplaceFees swaps the whole fee table atomically.
func (s *Store) ReplaceFees(ctx context.Context, rules []pricing.MarketplaceFeeRule) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin fees transaction: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM marketplace_fees`); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("clear marketplace fees: %w", err)
	}
	for _, rule := range rules {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO marketplace_fees (channel, percent, fixed) VALUES (?, ?, ?)
		`, string(rule.Channel), rule.Percent, rule.Fixed); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert marketplace fee %s: %w", rule.Channel, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit fees transaction: %w", err)
	}
	return nil
}
