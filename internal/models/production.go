package models

import "time"

type ProductionStatus string

const (
	ProductionPending ProductionStatus = "pending"
	ProductionDone    ProductionStatus = "done"
)

// ProductionOrder is the print run opened when a quote is approved.
// ActualGrams stays nil until the run is completed.
type ProductionOrder struct {
	ID           string           `json:"id"`
	QuoteID      string           `json:"quoteId"`
	Title        string           `json:"title"`
	Status       ProductionStatus `json:"status"`
	PlannedGrams float64          `json:"plannedGrams"`
	ActualGrams  *float64         `json:"actualGrams,omitempty"`
	CreatedAt    time.Time        `json:"createdAt"`
	CompletedAt  *time.Time       `json:"completedAt,omitempty"`
}

// PlannedGrams sums the filament usage of every item.
func (q Quote) PlannedGrams() float64 {
	total := 0.0
	for _, item := range q.Items {
		for _, usage := range item.FilamentUsage {
			total += usage.GramsUsed
		}
	}
	return total
}
