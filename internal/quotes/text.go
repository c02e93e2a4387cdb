package quotes

import (
	"fmt"
	"strings"

	"github.com/Simplici0/printdesk/internal/finance"
	"github.com/Simplici0/printdesk/internal/models"
)

// Text renders a plain-text summary of a quote, suitable for pasting into a
// chat with the client. Filament names are resolved from stock when present.
func Text(q models.Quote, filaments []models.Filament, currency string) string {
	names := make(map[string]string, len(filaments))
	for _, f := range filaments {
		name := strings.TrimSpace(f.Brand + " " + f.Name)
		if f.Type != "" {
			name += " (" + string(f.Type) + ")"
		}
		names[f.ID] = name
	}
	money := func(v float64) string { return finance.FormatFloat(v, currency) }

	title := q.Title
	if title == "" {
		title = "Orçamento " + shortID(q.ID)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", title)
	fmt.Fprintf(&b, "Status: %s\n", q.Status)
	fmt.Fprintf(&b, "Canal: %s\n", q.EffectiveChannel())
	if !q.CreatedAt.IsZero() {
		fmt.Fprintf(&b, "Data: %s\n", q.CreatedAt.Format("02/01/2006"))
	}

	b.WriteString("\nItens:\n")
	for i, item := range q.Items {
		desc := item.Description
		if desc == "" {
			desc = fmt.Sprintf("Item %d", i+1)
		}
		fmt.Fprintf(&b, "- %s: %.2f h\n", desc, item.PrintTimeHours)
		for _, usage := range item.FilamentUsage {
			name, ok := names[usage.FilamentID]
			if !ok {
				name = usage.FilamentID + " (desconhecido)"
			}
			fmt.Fprintf(&b, "    %s: %.1f g\n", name, usage.GramsUsed)
		}
	}

	b.WriteString("\nCustos:\n")
	fmt.Fprintf(&b, "  Material: %s\n", money(q.Breakdown.Material))
	fmt.Fprintf(&b, "  Energia: %s\n", money(q.Breakdown.Energy))
	fmt.Fprintf(&b, "  Custos fixos: %s\n", money(q.Breakdown.Fixed))
	fmt.Fprintf(&b, "  Depreciação: %s\n", money(q.Breakdown.Depreciation))
	fmt.Fprintf(&b, "  Desgaste: %s\n", money(q.Breakdown.WearAndTear))
	fmt.Fprintf(&b, "  Mão de obra: %s\n", money(q.Breakdown.Labor))
	fmt.Fprintf(&b, "  Risco de falha: %s\n", money(q.Breakdown.Risk))
	fmt.Fprintf(&b, "  Custo total: %s\n", money(q.TotalCost))

	fmt.Fprintf(&b, "\nMargem: %.1f%%\n", q.ProfitMarginPercent)
	fmt.Fprintf(&b, "Taxas do canal: %s\n", money(q.TaxAmount))
	fmt.Fprintf(&b, "Valor líquido: %s\n", money(q.NetValue))
	fmt.Fprintf(&b, "Preço final: %s\n", money(q.FinalPrice))

	return b.String()
}
