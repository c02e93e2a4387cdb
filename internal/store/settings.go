package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Simplici0/printdesk/internal/pricing"
)

// Settings returns the singleton cost configuration.
func (s *Store) Settings(ctx context.Context) (pricing.CostConfiguration, error) {
	var (
		cfg        pricing.CostConfiguration
		absorption sql.NullFloat64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT
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
		FROM settings
		WHERE id = 1
	`).Scan(
		&cfg.Currency,
		&cfg.MonthlyFixedExpenses,
		&cfg.WorkHoursPerMonth,
		&cfg.PrinterPowerWatts,
		&cfg.EnergyCostPerKWh,
		&cfg.MachineValue,
		&cfg.MachineLifespanHours,
		&cfg.LaborRatePerHour,
		&absorption,
		&cfg.MaterialWastePercent,
		&cfg.FailureRatePercent,
		&cfg.WearAndTearPerHour,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return pricing.CostConfiguration{}, ErrNotFound
	}
	if err != nil {
		return pricing.CostConfiguration{}, fmt.Errorf("query settings: %w", err)
	}
	if absorption.Valid {
		cfg.OverheadAbsorptionPercent = pricing.Percent(absorption.Float64)
	}
	return cfg, nil
}

// SaveSettings writes the singleton cost configuration.
func (s *Store) SaveSettings(ctx context.Context, cfg pricing.CostConfiguration) error {
	var absorption sql.NullFloat64
	if cfg.OverheadAbsorptionPercent != nil {
		absorption = sql.NullFloat64{Float64: *cfg.OverheadAbsorptionPercent, Valid: true}
	}
	currency := cfg.Currency
	if currency == "" {
		currency = "BRL"
	}

	_, err := s.db.ExecContext(ctx, `
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
			wear_and_tear_per_hour,
			updated_at
		) VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			currency = excluded.currency,
			monthly_fixed_expenses = excluded.monthly_fixed_expenses,
			work_hours_per_month = excluded.work_hours_per_month,
			printer_power_watts = excluded.printer_power_watts,
			energy_cost_per_kwh = excluded.energy_cost_per_kwh,
			machine_value = excluded.machine_value,
			machine_lifespan_hours = excluded.machine_lifespan_hours,
			labor_rate_per_hour = excluded.labor_rate_per_hour,
			overhead_absorption_percent = excluded.overhead_absorption_percent,
			material_waste_percent = excluded.material_waste_percent,
			failure_rate_percent = excluded.failure_rate_percent,
			wear_and_tear_per_hour = excluded.wear_and_tear_per_hour,
			updated_at = excluded.updated_at
	`,
		currency,
		cfg.MonthlyFixedExpenses,
		cfg.WorkHoursPerMonth,
		cfg.PrinterPowerWatts,
		cfg.EnergyCostPerKWh,
		cfg.MachineValue,
		cfg.MachineLifespanHours,
		cfg.LaborRatePerHour,
		absorption,
		cfg.MaterialWastePercent,
		cfg.FailureRatePercent,
		cfg.WearAndTearPerHour,
		formatTime(s.now()),
	)
	if err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}
