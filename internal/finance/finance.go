// Package finance aggregates approved quotes and expenses into the dashboard
// figures. Sums are done in decimal and rounded to cents.
package finance

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Simplici0/printdesk/internal/models"
	"github.com/Simplici0/printdesk/internal/pricing"
)

// Summary is the cash view of the business.
type Summary struct {
	Revenue         decimal.Decimal `json:"revenue"`
	MonthRevenue    decimal.Decimal `json:"monthRevenue"`
	Expenses        decimal.Decimal `json:"expenses"`
	CostOfGoodsSold decimal.Decimal `json:"costOfGoodsSold"`
	EstimatedProfit decimal.Decimal `json:"estimatedProfit"` // revenue - COGS
	CashBalance     decimal.Decimal `json:"cashBalance"`     // revenue - expenses
	ApprovedQuotes  int             `json:"approvedQuotes"`
}

// Funnel counts quotes per status and production orders per stage.
type Funnel struct {
	Draft             int `json:"draft"`
	Pending           int `json:"pending"`
	Approved          int `json:"approved"`
	Rejected          int `json:"rejected"`
	Total             int `json:"total"`
	ProductionPending int `json:"productionPending"`
	ProductionDone    int `json:"productionDone"`
}

// ChannelStat is the approved sales of one channel.
type ChannelStat struct {
	Channel pricing.SalesChannel `json:"channel"`
	Count   int                  `json:"count"`
	Revenue decimal.Decimal      `json:"revenue"`
	Profit  decimal.Decimal      `json:"profit"`
}

func cents(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Summarize computes the summary. The month is taken from each quote's creation
// date in now's location.
func Summarize(quotes []models.Quote, expenses []models.Expense, now time.Time) Summary {
	var s Summary
	year, month, _ := now.Date()

	for _, q := range quotes {
		if q.Status != models.QuoteApproved {
			continue
		}
		s.ApprovedQuotes++

		revenue := decimal.NewFromFloat(q.Revenue())
		s.Revenue = s.Revenue.Add(revenue)
		s.CostOfGoodsSold = s.CostOfGoodsSold.Add(decimal.NewFromFloat(q.TotalCost))

		qy, qm, _ := q.CreatedAt.In(now.Location()).Date()
		if qy == year && qm == month {
			s.MonthRevenue = s.MonthRevenue.Add(revenue)
		}
	}

	for _, e := range expenses {
		s.Expenses = s.Expenses.Add(decimal.NewFromFloat(e.Amount))
	}

	s.EstimatedProfit = cents(s.Revenue.Sub(s.CostOfGoodsSold))
	s.CashBalance = cents(s.Revenue.Sub(s.Expenses))
	s.Revenue = cents(s.Revenue)
	s.MonthRevenue = cents(s.MonthRevenue)
	s.Expenses = cents(s.Expenses)
	s.CostOfGoodsSold = cents(s.CostOfGoodsSold)
	return s
}

// CountFunnel counts the funnel stages. Without any production orders every
// approved quote counts as waiting for production.
func CountFunnel(quotes []models.Quote, orders []models.ProductionOrder) Funnel {
	f := Funnel{Total: len(quotes)}
	for _, o := range orders {
		if o.Status == models.ProductionDone {
			f.ProductionDone++
		} else {
			f.ProductionPending++
		}
	}
	for _, q := range quotes {
		switch q.Status {
		case models.QuoteDraft:
			f.Draft++
		case models.QuotePending:
			f.Pending++
		case models.QuoteApproved:
			f.Approved++
		case models.QuoteRejected:
			f.Rejected++
		}
	}
	if len(orders) == 0 {
		f.ProductionPending = f.Approved
	}
	return f
}

// ChannelStats groups approved quotes by channel, highest revenue first. Ties
// keep the order in which channels were first seen.
func ChannelStats(quotes []models.Quote) []ChannelStat {
	byChannel := make(map[pricing.SalesChannel]int)
	stats := make([]ChannelStat, 0)

	for _, q := range quotes {
		if q.Status != models.QuoteApproved {
			continue
		}
		ch := q.EffectiveChannel()
		idx, ok := byChannel[ch]
		if !ok {
			idx = len(stats)
			byChannel[ch] = idx
			stats = append(stats, ChannelStat{Channel: ch})
		}

		revenue := decimal.NewFromFloat(q.Revenue())
		stats[idx].Count++
		stats[idx].Revenue = stats[idx].Revenue.Add(revenue)
		stats[idx].Profit = stats[idx].Profit.Add(revenue.Sub(decimal.NewFromFloat(q.TotalCost)))
	}

	for i := range stats {
		stats[i].Revenue = cents(stats[i].Revenue)
		stats[i].Profit = cents(stats[i].Profit)
	}
	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].Revenue.GreaterThan(stats[j].Revenue)
	})
	return stats
}

// SuggestedFixedExpenses sums the expenses flagged as fixed, the value offered
// for the monthly fixed cost setting.
func SuggestedFixedExpenses(expenses []models.Expense) decimal.Decimal {
	total := decimal.Zero
	for _, e := range expenses {
		if e.IsFixed {
			total = total.Add(decimal.NewFromFloat(e.Amount))
		}
	}
	return cents(total)
}

// FormatMoney renders an amount for display. BRL uses the Brazilian layout
// "R$ 1.234,56"; other currencies print as "1234.56 USD".
func FormatMoney(amount decimal.Decimal, currency string) string {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	fixed := amount.Round(2).StringFixed(2)
	if currency != "" && currency != "BRL" {
		return fixed + " " + currency
	}

	sign := ""
	if strings.HasPrefix(fixed, "-") {
		sign = "-"
		fixed = fixed[1:]
	}
	whole, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	return sign + "R$ " + b.String() + "," + frac
}

// FormatFloat is FormatMoney for engine values.
func FormatFloat(amount float64, currency string) string {
	return FormatMoney(decimal.NewFromFloat(amount), currency)
}
