package models

import "github.com/Simplici0/printdesk/internal/pricing"

// DefaultSettings is the cost configuration a new shop starts with.
func DefaultSettings() pricing.CostConfiguration {
	return pricing.CostConfiguration{
		Currency:                  "BRL",
		EnergyCostPerKWh:          0.90,
		PrinterPowerWatts:         300,
		FailureRatePercent:        10,
		MaterialWastePercent:      5,
		MonthlyFixedExpenses:      150,
		WorkHoursPerMonth:         200,
		LaborRatePerHour:          1,
		OverheadAbsorptionPercent: pricing.Percent(50),
		WearAndTearPerHour:        0,
		MachineValue:              4200,
		MachineLifespanHours:      8000,
	}
}
