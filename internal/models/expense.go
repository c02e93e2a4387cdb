package models

import "time"

// ExpenseCategory groups expenses for reporting.
type ExpenseCategory string

const (
	ExpenseFilament    ExpenseCategory = "filamento"
	ExpenseTool        ExpenseCategory = "ferramenta"
	ExpenseMaintenance ExpenseCategory = "manutencao"
	ExpenseEnergy      ExpenseCategory = "energia"
	ExpenseFixed       ExpenseCategory = "fixo"
	ExpenseOther       ExpenseCategory = "outros"
)

func IsValidExpenseCategory(c ExpenseCategory) bool {
	switch c {
	case ExpenseFilament, ExpenseTool, ExpenseMaintenance, ExpenseEnergy, ExpenseFixed, ExpenseOther:
		return true
	}
	return false
}

// Expense is money spent by the shop. Fixed expenses feed the suggested
// monthly fixed cost.
type Expense struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Category    ExpenseCategory `json:"category"`
	Amount      float64         `json:"amount"`
	Date        time.Time       `json:"date"`
	IsFixed     bool            `json:"isFixed"`
}

const LedgerSale = "sale"

// LedgerItem is one filament consumption line of a posted sale.
type LedgerItem struct {
	FilamentID string  `json:"filamentId"`
	Grams      float64 `json:"grams"`
}

// LedgerEntry is a posted sale, written once when a quote is approved.
type LedgerEntry struct {
	ID          string       `json:"id"`
	QuoteID     string       `json:"quoteId"`
	Kind        string       `json:"kind"`
	Description string       `json:"description"`
	Channel     string       `json:"channel"`
	ClientName  string       `json:"clientName"`
	Amount      float64      `json:"amount"`
	Cost        float64      `json:"cost"`
	Fees        float64      `json:"fees"`
	Profit      float64      `json:"profit"`
	Items       []LedgerItem `json:"items"`
	PostedAt    time.Time    `json:"postedAt"`
}
