package input

import (
	"strconv"
	"strings"

	"github.com/Simplici0/printdesk/internal/pricing"
)

// Alias keys accepted when importing settings from a spreadsheet-style key/value
// export. The first present key wins.
var settingsAliases = struct {
	energyCost, power, failure, waste, fixed, hours, labor, wear, machineValue, lifespan, absorption []string
}{
	energyCost:   []string{"custo_kwh", "custo_energia"},
	power:        []string{"consumo_w", "potencia"},
	failure:      []string{"taxa_falha", "falha"},
	waste:        []string{"taxa_desperdicio", "desperdicio"},
	fixed:        []string{"custo_fixo_mensal", "custo_fixo"},
	hours:        []string{"horas_mensais"},
	labor:        []string{"valor_hora", "mao_de_obra"},
	wear:         []string{"depreciacao", "manutencao"},
	machineValue: []string{"valor_maquina"},
	lifespan:     []string{"vida_util_horas"},
	absorption:   []string{"absorcao_overhead", "absorcao"},
}

// SettingsFromMap builds a cost configuration from raw key/value pairs. Keys are
// matched case-insensitively; absent or unparseable values keep the default.
func SettingsFromMap(raw map[string]string, defaults pricing.CostConfiguration) pricing.CostConfiguration {
	values := make(map[string]string, len(raw))
	for k, v := range raw {
		values[strings.ToLower(strings.TrimSpace(k))] = v
	}

	get := func(keys []string, def float64) float64 {
		for _, k := range keys {
			v, ok := values[k]
			if !ok || strings.TrimSpace(v) == "" {
				continue
			}
			if parsed, err := ParseNumber(v); err == nil {
				return parsed
			}
			return def
		}
		return def
	}

	a := settingsAliases
	cfg := defaults
	cfg.EnergyCostPerKWh = get(a.energyCost, defaults.EnergyCostPerKWh)
	cfg.PrinterPowerWatts = get(a.power, defaults.PrinterPowerWatts)
	cfg.FailureRatePercent = get(a.failure, defaults.FailureRatePercent)
	cfg.MaterialWastePercent = get(a.waste, defaults.MaterialWastePercent)
	cfg.MonthlyFixedExpenses = get(a.fixed, defaults.MonthlyFixedExpenses)
	cfg.WorkHoursPerMonth = get(a.hours, defaults.WorkHoursPerMonth)
	cfg.LaborRatePerHour = get(a.labor, defaults.LaborRatePerHour)
	cfg.WearAndTearPerHour = get(a.wear, defaults.WearAndTearPerHour)
	cfg.MachineValue = get(a.machineValue, defaults.MachineValue)
	cfg.MachineLifespanHours = get(a.lifespan, defaults.MachineLifespanHours)

	if absorption := get(a.absorption, -1); absorption >= 0 {
		cfg.OverheadAbsorptionPercent = pricing.Percent(absorption)
	}

	return cfg
}

// DefaultCurrency is stored when a configuration carries no currency.
const DefaultCurrency = "BRL"

// NormalizeCurrency trims and upper-cases a currency code, falling back to
// DefaultCurrency.
func NormalizeCurrency(raw string) string {
	code := strings.ToUpper(strings.TrimSpace(raw))
	if code == "" {
		return DefaultCurrency
	}
	return code
}

// ValidateSettings checks a configuration before it is stored.
func ValidateSettings(cfg pricing.CostConfiguration) error {
	v := Violations{}
	v.Check("monthlyFixedExpenses", CheckNonNegative(cfg.MonthlyFixedExpenses, "monthlyFixedExpenses"))
	v.Check("workHoursPerMonth", CheckPositive(cfg.WorkHoursPerMonth, "workHoursPerMonth"))
	v.Check("printerPowerWatts", CheckNonNegative(cfg.PrinterPowerWatts, "printerPowerWatts"))
	v.Check("energyCostPerKwh", CheckNonNegative(cfg.EnergyCostPerKWh, "energyCostPerKwh"))
	v.Check("machineValue", CheckNonNegative(cfg.MachineValue, "machineValue"))
	v.Check("machineLifespanHours", CheckPositive(cfg.MachineLifespanHours, "machineLifespanHours"))
	v.Check("laborRatePerHour", CheckNonNegative(cfg.LaborRatePerHour, "laborRatePerHour"))
	v.Check("materialWastePercent", CheckNonNegative(cfg.MaterialWastePercent, "materialWastePercent"))
	v.Check("failureRatePercent", CheckNonNegative(cfg.FailureRatePercent, "failureRatePercent"))
	v.Check("wearAndTearPerHour", CheckNonNegative(cfg.WearAndTearPerHour, "wearAndTearPerHour"))
	if cfg.OverheadAbsorptionPercent != nil {
		v.Check("overheadAbsorptionPercent", CheckPercent(*cfg.OverheadAbsorptionPercent, "overheadAbsorptionPercent"))
	}
	return v.Err()
}

// ValidateItems checks quote items before pricing.
func ValidateItems(items []pricing.PrintJob) error {
	v := Violations{}
	for i, item := range items {
		if err := CheckNonNegative(item.PrintTimeHours, "printTimeHours"); err != nil {
			v.Add(itemField(i, "printTimeHours"), err.Error())
		}
		for j, usage := range item.FilamentUsage {
			if strings.TrimSpace(usage.FilamentID) == "" {
				v.Add(itemField(i, "filamentUsage")+indexSuffix(j)+".filamentId", "filamentId is required")
			}
			if err := CheckNonNegative(usage.GramsUsed, "gramsUsed"); err != nil {
				v.Add(itemField(i, "filamentUsage")+indexSuffix(j)+".gramsUsed", err.Error())
			}
		}
	}
	return v.Err()
}

func itemField(i int, name string) string {
	return "items" + indexSuffix(i) + "." + name
}

func indexSuffix(i int) string {
	return "[" + strconv.Itoa(i) + "]"
}
