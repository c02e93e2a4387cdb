package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/Simplici0/printdesk/internal/pricing"
)

// QuoteStatus is the lifecycle state of a quote.
type QuoteStatus string

const (
	QuoteDraft    QuoteStatus = "draft"
	QuotePending  QuoteStatus = "pending"
	QuoteApproved QuoteStatus = "approved"
	QuoteRejected QuoteStatus = "rejected"
)

// ErrInvalidTransition is returned for a status change the lifecycle does not allow.
var ErrInvalidTransition = errors.New("invalid quote status transition")

// IsValidQuoteStatus checks if a quote status is valid
func IsValidQuoteStatus(s QuoteStatus) bool {
	switch s {
	case QuoteDraft, QuotePending, QuoteApproved, QuoteRejected:
		return true
	}
	return false
}

// ValidateStatusChange checks if a status transition is valid. Staying in the
// same non-approved status is allowed; approved is terminal.
func ValidateStatusChange(current, next QuoteStatus) error {
	if !IsValidQuoteStatus(next) {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, next)
	}

	switch current {
	case QuoteDraft, QuotePending:
		return nil
	case QuoteRejected:
		if next == QuoteApproved {
			return fmt.Errorf("%w: a rejected quote must be reopened before approval", ErrInvalidTransition)
		}
		return nil
	case QuoteApproved:
		return fmt.Errorf("%w: an approved quote cannot change", ErrInvalidTransition)
	default:
		return fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, current)
	}
}

// Quote is a priced set of print jobs for a client.
type Quote struct {
	ID                  string               `json:"id"`
	ClientID            string               `json:"clientId"`
	Title               string               `json:"title"`
	Items               []pricing.PrintJob   `json:"items"`
	ProfitMarginPercent float64              `json:"profitMarginPercent"`
	Channel             pricing.SalesChannel `json:"channel"`

	TotalCost  float64           `json:"totalCost"`
	FinalPrice float64           `json:"finalPrice"`
	TaxAmount  float64           `json:"taxAmount"`
	NetValue   float64           `json:"netValue"`
	Breakdown  pricing.Breakdown `json:"breakdown"`

	Status     QuoteStatus `json:"status"`
	CreatedAt  time.Time   `json:"createdAt"`
	UpdatedAt  time.Time   `json:"updatedAt"`
	ApprovedAt *time.Time  `json:"approvedAt,omitempty"`
}

// ApplyTotals copies the engine output into the persisted financial fields.
func (q *Quote) ApplyTotals(t pricing.Totals) {
	q.TotalCost = t.TotalCost
	q.FinalPrice = t.FinalPrice
	q.TaxAmount = t.TaxAmount
	q.NetValue = t.NetValue
	q.Breakdown = t.Breakdown
}

// Revenue is what the sale puts in the till: the net value, or the final price
// for records saved before net values were tracked.
func (q Quote) Revenue() float64 {
	if q.NetValue != 0 {
		return q.NetValue
	}
	return q.FinalPrice
}

// Profit is revenue minus production cost.
func (q Quote) Profit() float64 {
	return q.Revenue() - q.TotalCost
}

// EffectiveChannel defaults an empty channel to direct sales.
func (q Quote) EffectiveChannel() pricing.SalesChannel {
	if q.Channel == "" {
		return pricing.ChannelDirect
	}
	return q.Channel
}
