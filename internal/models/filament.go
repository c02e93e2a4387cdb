package models

import (
	"strings"
	"time"

	"github.com/Simplici0/printdesk/internal/pricing"
)

// FilamentType is the material family of a spool.
type FilamentType string

const (
	FilamentPLA   FilamentType = "PLA"
	FilamentABS   FilamentType = "ABS"
	FilamentPETG  FilamentType = "PETG"
	FilamentTPU   FilamentType = "TPU"
	FilamentASA   FilamentType = "ASA"
	FilamentResin FilamentType = "RESIN"
	FilamentOther FilamentType = "OTHER"
)

// IsValidFilamentType checks if a filament type is valid
func IsValidFilamentType(t string) bool {
	switch FilamentType(strings.ToUpper(strings.TrimSpace(t))) {
	case FilamentPLA, FilamentABS, FilamentPETG, FilamentTPU, FilamentASA, FilamentResin, FilamentOther:
		return true
	}
	return false
}

// Filament is a spool in stock.
type Filament struct {
	ID                  string       `json:"id"`
	Brand               string       `json:"brand"`
	Name                string       `json:"name"`
	Type                FilamentType `json:"type"`
	ColorHex            string       `json:"colorHex"`
	PricePerSpool       float64      `json:"pricePerSpool"`
	WeightPerSpoolGrams float64      `json:"weightPerSpoolGrams"`
	CurrentWeightGrams  float64      `json:"currentWeightGrams"`
	PurchasedAt         time.Time    `json:"purchasedAt"`
}

// Pricing returns the unit economics used by the pricing engine.
func (f Filament) Pricing() pricing.Filament {
	return pricing.Filament{
		ID:                  f.ID,
		PricePerSpool:       f.PricePerSpool,
		WeightPerSpoolGrams: f.WeightPerSpoolGrams,
	}
}

// RemainingPercent is the share of the spool still available, 0..100.
func (f Filament) RemainingPercent() float64 {
	if f.WeightPerSpoolGrams <= 0 {
		return 0
	}
	return f.CurrentWeightGrams / f.WeightPerSpoolGrams * 100
}

// PricingFilaments converts stock records for the pricing engine.
func PricingFilaments(filaments []Filament) []pricing.Filament {
	out := make([]pricing.Filament, 0, len(filaments))
	for _, f := range filaments {
		out = append(out, f.Pricing())
	}
	return out
}

// Client is a customer quotes are issued to.
type Client struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
	Notes string `json:"notes"`
}
