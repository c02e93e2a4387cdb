// Package input turns loosely formatted values from forms, imports and API
// payloads into validated numbers before they reach the pricing engine.
package input

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrNotNumeric is returned when a value cannot be read as a number.
var ErrNotNumeric = errors.New("not numeric")

// ParseNumber reads a decimal number accepting both "1234.56" and the comma
// decimal forms "1234,56" and "1.234,56". A dot after a comma, as in the
// English "1,234.56", is rejected.
func ParseNumber(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return 0, ErrNotNumeric
	}

	if comma := strings.Index(s, ","); comma >= 0 {
		if strings.LastIndex(s, ".") > comma {
			return 0, ErrNotNumeric
		}
		// comma is the decimal separator, dots are grouping
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	}

	value, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, ErrNotNumeric
	}
	return value, nil
}

// NonNegative parses raw and requires value >= 0.
func NonNegative(raw, field string) (float64, error) {
	value, err := ParseNumber(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be numeric", field)
	}
	return value, CheckNonNegative(value, field)
}

// Positive parses raw and requires value > 0.
func Positive(raw, field string) (float64, error) {
	value, err := ParseNumber(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be numeric", field)
	}
	return value, CheckPositive(value, field)
}

// Percent parses raw and requires 0 <= value <= 100.
func Percent(raw, field string) (float64, error) {
	value, err := ParseNumber(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be numeric", field)
	}
	return value, CheckPercent(value, field)
}

// CheckNonNegative validates an already numeric value.
func CheckNonNegative(value float64, field string) error {
	if math.IsNaN(value) || value < 0 {
		return fmt.Errorf("%s must be greater than or equal to 0", field)
	}
	return nil
}

// CheckPositive validates an already numeric value.
func CheckPositive(value float64, field string) error {
	if math.IsNaN(value) || value <= 0 {
		return fmt.Errorf("%s must be greater than 0", field)
	}
	return nil
}

// CheckPercent validates an already numeric value.
func CheckPercent(value float64, field string) error {
	if math.IsNaN(value) || value < 0 || value > 100 {
		return fmt.Errorf("%s must be between 0 and 100", field)
	}
	return nil
}

// CheckFeePercent validates a marketplace percentage, which must stay below 100.
func CheckFeePercent(value float64, field string) error {
	if math.IsNaN(value) || value < 0 || value >= 100 {
		return fmt.Errorf("%s must be at least 0 and below 100", field)
	}
	return nil
}
