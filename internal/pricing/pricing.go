package pricing

// CostConfiguration holds the shop-wide cost parameters used for every calculation.
// It is passed by value; nothing in this package keeps configuration state.
type CostConfiguration struct {
	Currency string `json:"currency"`

	MonthlyFixedExpenses float64 `json:"monthlyFixedExpenses"`
	WorkHoursPerMonth    float64 `json:"workHoursPerMonth"`

	PrinterPowerWatts float64 `json:"printerPowerWatts"`
	EnergyCostPerKWh  float64 `json:"energyCostPerKwh"`

	MachineValue         float64 `json:"machineValue"`
	MachineLifespanHours float64 `json:"machineLifespanHours"`

	LaborRatePerHour float64 `json:"laborRatePerHour"`

	// OverheadAbsorptionPercent scales the fixed-expense and labor components.
	// Nil means 100.
	OverheadAbsorptionPercent *float64 `json:"overheadAbsorptionPercent,omitempty"`

	MaterialWastePercent float64 `json:"materialWastePercent"`
	FailureRatePercent   float64 `json:"failureRatePercent"`
	WearAndTearPerHour   float64 `json:"wearAndTearPerHour"`
}

// Absorption returns the overhead absorption percent, defaulting to 100.
func (c CostConfiguration) Absorption() float64 {
	if c.OverheadAbsorptionPercent == nil {
		return 100
	}
	return *c.OverheadAbsorptionPercent
}

// Percent is a helper for populating OverheadAbsorptionPercent.
func Percent(v float64) *float64 {
	return &v
}

// Filament carries the unit economics of a spool.
type Filament struct {
	ID                  string
	PricePerSpool       float64
	WeightPerSpoolGrams float64
}

// CostPerGram returns price/weight, or 0 when the spool weight is not positive.
func (f Filament) CostPerGram() float64 {
	if f.WeightPerSpoolGrams <= 0 {
		return 0
	}
	return f.PricePerSpool / f.WeightPerSpoolGrams
}

// FilamentUsage is the amount of one filament consumed by a print job.
type FilamentUsage struct {
	ID         string  `json:"id,omitempty"`
	FilamentID string  `json:"filamentId"`
	GramsUsed  float64 `json:"gramsUsed"`
}

// PrintJob is a single quote item.
type PrintJob struct {
	ID             string          `json:"id,omitempty"`
	Description    string          `json:"description,omitempty"`
	PrintTimeHours float64         `json:"printTimeHours"`
	FilamentUsage  []FilamentUsage `json:"filamentUsage"`
}

// HourlyRates is the per-hour decomposition of the operational cost.
type HourlyRates struct {
	Fixed        float64
	Energy       float64
	Depreciation float64
	WearAndTear  float64
	Labor        float64
}

// Total sums the components in the canonical order.
func (h HourlyRates) Total() float64 {
	return h.Fixed + h.Energy + h.Depreciation + h.WearAndTear + h.Labor
}

// HourlyRatesFor decomposes the hourly operational cost. Energy and depreciation
// are always charged in full; absorption only scales fixed expenses and labor.
func HourlyRatesFor(cfg CostConfiguration) HourlyRates {
	absorption := cfg.Absorption() / 100.0

	return HourlyRates{
		Fixed:        (cfg.MonthlyFixedExpenses / atLeastOne(cfg.WorkHoursPerMonth)) * absorption,
		Energy:       (cfg.PrinterPowerWatts / 1000.0) * cfg.EnergyCostPerKWh,
		Depreciation: cfg.MachineValue / atLeastOne(cfg.MachineLifespanHours),
		WearAndTear:  cfg.WearAndTearPerHour,
		Labor:        cfg.LaborRatePerHour * absorption,
	}
}

// HourlyOperationalCost returns the cost of one hour of machine time.
func HourlyOperationalCost(cfg CostConfiguration) float64 {
	return HourlyRatesFor(cfg).Total()
}

func atLeastOne(v float64) float64 {
	if v <= 0 {
		return 1
	}
	return v
}

// ItemCosts is the cost of a single print job.
type ItemCosts struct {
	MaterialCost    float64
	OperationalCost float64
	TotalCost       float64
}

// ItemCost computes material and machine-time cost for one job. Usages that
// reference a filament missing from the table cost nothing.
func ItemCost(job PrintJob, filaments []Filament, cfg CostConfiguration) ItemCosts {
	return itemCost(job, indexFilaments(filaments), cfg, HourlyOperationalCost(cfg))
}

func itemCost(job PrintJob, byID map[string]Filament, cfg CostConfiguration, hourly float64) ItemCosts {
	wasteFactor := 1.0 + cfg.MaterialWastePercent/100.0

	materialCost := 0.0
	for _, usage := range job.FilamentUsage {
		filament, ok := byID[usage.FilamentID]
		if !ok {
			continue
		}
		materialCost += filament.CostPerGram() * usage.GramsUsed * wasteFactor
	}

	operationalCost := hourly * job.PrintTimeHours

	return ItemCosts{
		MaterialCost:    materialCost,
		OperationalCost: operationalCost,
		TotalCost:       materialCost + operationalCost,
	}
}

func indexFilaments(filaments []Filament) map[string]Filament {
	byID := make(map[string]Filament, len(filaments))
	for _, f := range filaments {
		// first record wins, matching a linear find
		if _, ok := byID[f.ID]; !ok {
			byID[f.ID] = f
		}
	}
	return byID
}

// UnknownFilamentIDs lists filament ids referenced by items that are absent from
// the table, in first-seen order without duplicates.
func UnknownFilamentIDs(items []PrintJob, filaments []Filament) []string {
	byID := indexFilaments(filaments)
	seen := make(map[string]bool)

	var missing []string
	for _, item := range items {
		for _, usage := range item.FilamentUsage {
			if _, ok := byID[usage.FilamentID]; ok || seen[usage.FilamentID] {
				continue
			}
			seen[usage.FilamentID] = true
			missing = append(missing, usage.FilamentID)
		}
	}
	return missing
}
