package seed

import (
	"context"
	"database/sql"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/Simplici0/printdesk/internal/models"
	"github.com/Simplici0/printdesk/internal/pricing"
)

// Config contains the values required by startup seed.
type Config struct {
	AdminEmail    string
	AdminPassword string
}

// Stats contains seed operation counters.
type Stats struct {
	Inserts int
}

// Run executes the startup seed in an idempotent way.
func Run(ctx context.Context, db *sql.DB, cfg Config) (Stats, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return Stats{}, fmt.Errorf("begin seed transaction: %w", err)
	}

	stats := Stats{}

	if err := seedAdmin(ctx, tx, cfg.AdminEmail, cfg.AdminPassword, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}
	if err := ensureSettings(ctx, tx, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}
	if err := ensureFees(ctx, tx, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}

	if err := tx.Commit(); err != nil {
		return Stats{}, fmt.Errorf("commit seed transaction: %w", err)
	}

	return stats, nil
}

func seedAdmin(ctx context.Context, tx *sql.Tx, email, password string, stats *Stats) error {
	if email == "" || password == "" {
		return nil
	}

	var exists bool
	if err := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE email = ? LIMIT 1)`, email).Scan(&exists); err != nil {
		return fmt.Errorf("check admin user existence: %w", err)
	}
	if exists {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `INSERT INTO users (email, password_hash) VALUES (?, ?)`, email, string(hash)); err != nil {
		return fmt.Errorf("insert admin user: %w", err)
	}
	stats.Inserts++
	return nil
}

func ensureSettings(ctx context.Context, tx *sql.Tx, stats *Stats) error {
	d := models.DefaultSettings()
	result, err := tx.ExecContext(ctx, `
		INSERT INTO settings (
			id,
			currency,
			monthly_fixed_expenses,
			work_hours_per_month,
			printer_power_watts,
			energy_cost_per_kwh,
			machine_value,
			machine_lifespan_hours,
			labor_rate_per_hour,
			overhead_absorption_percent,
			material_waste_percent,
			failure_rate_percent,
			wear_and_tear_per_hour
		)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		d.Currency,
		d.MonthlyFixedExpenses,
		d.WorkHoursPerMonth,
		d.PrinterPowerWatts,
		d.EnergyCostPerKWh,
		d.MachineValue,
		d.MachineLifespanHours,
		d.LaborRatePerHour,
		d.Absorption(),
		d.MaterialWastePercent,
		d.FailureRatePercent,
		d.WearAndTearPerHour,
	)
	if err != nil {
		return fmt.Errorf("insert settings singleton: %w", err)
	}
	return countInsert(result, stats)
}

// ensureFees only fills an empty table so removed channels stay removed.
func ensureFees(ctx context.Context, tx *sql.Tx, stats *Stats) error {
	var count int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM marketplace_fees`).Scan(&count); err != nil {
		return fmt.Errorf("count marketplace fees: %w", err)
	}
	if count > 0 {
		return nil
	}

	for _, rule := range pricing.DefaultMarketplaceFees() {
		result, err := tx.ExecContext(ctx, `
			INSERT INTO marketplace_fees (channel, percent, fixed)
			VALUES (?, ?, ?)
			ON CONFLICT(channel) DO NOTHING
		`, string(rule.Channel), rule.Percent, rule.Fixed)
		if err != nil {
			return fmt.Errorf("insert marketplace fee %s: %w", rule.Channel, err)
		}
		if err := countInsert(result, stats); err != nil {
			return err
		}
	}
	return nil
}

func countInsert(result sql.Result, stats *Stats) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("read affected rows: %w", err)
	}
	stats.Inserts += int(affected)
	return nil
}
