package input

import (
	"strconv"
	"strings"

	"github.com/Simplici0/printdesk/internal/models"
	"github.com/Simplici0/printdesk/internal/pricing"
)

// NormalizeFilament trims text fields and fills the type default. A new spool
// with no remaining weight given starts full.
func NormalizeFilament(f *models.Filament, isNew bool) {
	f.Brand = strings.TrimSpace(f.Brand)
	f.Name = strings.TrimSpace(f.Name)
	f.ColorHex = strings.TrimSpace(f.ColorHex)
	f.Type = models.FilamentType(strings.ToUpper(strings.TrimSpace(string(f.Type))))
	if f.Type == "" {
		f.Type = models.FilamentPLA
	}
	if isNew && f.CurrentWeightGrams == 0 {
		f.CurrentWeightGrams = f.WeightPerSpoolGrams
	}
}

func ValidateFilament(f models.Filament) error {
	v := Violations{}
	if f.Name == "" {
		v.Add("name", "name is required")
	}
	if !models.IsValidFilamentType(string(f.Type)) {
		v.Add("type", "type is not a known filament type")
	}
	v.Check("pricePerSpool", CheckPositive(f.PricePerSpool, "pricePerSpool"))
	v.Check("weightPerSpoolGrams", CheckPositive(f.WeightPerSpoolGrams, "weightPerSpoolGrams"))
	v.Check("currentWeightGrams", CheckNonNegative(f.CurrentWeightGrams, "currentWeightGrams"))
	return v.Err()
}

func ValidateClient(c models.Client) error {
	v := Violations{}
	if strings.TrimSpace(c.Name) == "" {
		v.Add("name", "name is required")
	}
	return v.Err()
}

// ValidateExpense checks an expense; an empty category defaults to "outros".
func ValidateExpense(e *models.Expense) error {
	v := Violations{}
	e.Description = strings.TrimSpace(e.Description)
	if e.Description == "" {
		v.Add("description", "description is required")
	}
	if e.Category == "" {
		e.Category = models.ExpenseOther
	}
	if !models.IsValidExpenseCategory(e.Category) {
		v.Add("category", "category is not valid")
	}
	v.Check("amount", CheckNonNegative(e.Amount, "amount"))
	return v.Err()
}

// ValidateFees checks a full fee table: channels are required and unique and
// percentages stay below 100 so the price inversion is defined.
func ValidateFees(rules []pricing.MarketplaceFeeRule) error {
	v := Violations{}
	seen := make(map[pricing.SalesChannel]bool, len(rules))
	for i, rule := range rules {
		prefix := "fees[" + strconv.Itoa(i) + "]"
		channel := pricing.SalesChannel(strings.TrimSpace(string(rule.Channel)))
		switch {
		case channel == "":
			v.Add(prefix+".channel", "channel is required")
		case seen[channel]:
			v.Add(prefix+".channel", "channel is duplicated")
		}
		seen[channel] = true
		v.Check(prefix+".percent", CheckFeePercent(rule.Percent, "percent"))
		v.Check(prefix+".fixed", CheckNonNegative(rule.Fixed, "fixed"))
	}
	return v.Err()
}
