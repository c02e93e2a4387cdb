package input

import (
	"testing"

	"github.com/Simplici0/printdesk/internal/models"
	"github.com/Simplici0/printdesk/internal/pricing"
)

func TestNormalizeAndValidateFilament(t *testing.T) {
	f := models.Filament{Name: "  Preto ", Type: " petg", PricePerSpool: 120, WeightPerSpoolGrams: 1000}
	NormalizeFilament(&f, true)
	if f.Name != "Preto" || f.Type != models.FilamentPETG || f.CurrentWeightGrams != 1000 {
		t.Fatalf("unexpected normalized filament: %+v", f)
	}
	if err := ValidateFilament(f); err != nil {
		t.Fatalf("expected valid filament, got %v", err)
	}

	bad := models.Filament{Type: "WOOD", PricePerSpool: 0, WeightPerSpoolGrams: -1}
	err := ValidateFilament(bad)
	v, ok := err.(Violations)
	if !ok {
		t.Fatalf("expected Violations, got %T", err)
	}
	for _, field := range []string{"name", "type", "pricePerSpool", "weightPerSpoolGrams"} {
		if _, ok := v[field]; !ok {
			t.Fatalf("expected violation for %s, got %v", field, v)
		}
	}
}

func TestValidateExpenseDefaultsCategory(t *testing.T) {
	e := models.Expense{Description: " Bico ", Amount: 30}
	if err := ValidateExpense(&e); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.Category != models.ExpenseOther || e.Description != "Bico" {
		t.Fatalf("unexpected expense: %+v", e)
	}

	bad := models.Expense{Description: "x", Category: "viagem", Amount: -1}
	if err := ValidateExpense(&bad); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestValidateFees(t *testing.T) {
	if err := ValidateFees(pricing.DefaultMarketplaceFees()); err != nil {
		t.Fatalf("default fees must be valid: %v", err)
	}

	err := ValidateFees([]pricing.MarketplaceFeeRule{
		{Channel: "Shopee", Percent: 14, Fixed: 3},
		{Channel: "Shopee", Percent: 100},
		{Channel: " ", Fixed: -2},
	})
	v, ok := err.(Violations)
	if !ok {
		t.Fatalf("expected Violations, got %v", err)
	}
	for _, field := range []string{"fees[1].channel", "fees[1].percent", "fees[2].channel", "fees[2].fixed"} {
		if _, ok := v[field]; !ok {
			t.Fatalf("expected violation for %s, got %v", field, v)
		}
	}
	if _, ok := v["fees[0].channel"]; ok {
		t.Fatalf("first rule is valid, got %v", v)
	}
}

func TestValidateClient(t *testing.T) {
	if err := ValidateClient(models.Client{Name: "Ana"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ValidateClient(models.Client{Name: "  "}); err == nil {
		t.Fatalf("expected name violation")
	}
}
