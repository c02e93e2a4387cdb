package pricing

// MaxMarginPercent is the highest margin honored. Margin is measured against the
// sale price, so 100% would need an infinite price.
const MaxMarginPercent = 99.0

// Breakdown splits the total production cost for display. Its fields add up to
// Totals.TotalCost.
type Breakdown struct {
	Material     float64 `json:"material"`
	Energy       float64 `json:"energy"`
	Fixed        float64 `json:"fixed"`
	Depreciation float64 `json:"depreciation"`
	Labor        float64 `json:"labor"`
	WearAndTear  float64 `json:"wearAndTear"`
	Risk         float64 `json:"risk"`
}

// Totals is the full result of pricing a quote.
type Totals struct {
	RawMaterialCost    float64            `json:"rawMaterialCost"`
	RawOperationalCost float64            `json:"rawOperationalCost"`
	RiskCost           float64            `json:"riskCost"`
	TotalHours         float64            `json:"totalHours"`
	Breakdown          Breakdown          `json:"breakdown"`
	TotalCost          float64            `json:"totalCost"`
	BasePrice          float64            `json:"basePrice"`
	FinalPrice         float64            `json:"finalPrice"`
	TaxAmount          float64            `json:"taxAmount"`
	NetValue           float64            `json:"netValue"`
	MarginValue        float64            `json:"marginValue"`
	Fee                MarketplaceFeeRule `json:"fee"`
}

// QuoteTotals prices a list of jobs. The margin is applied to the sale price
// (profit / price), then the channel fee is inverted so that the gross price minus
// the fee equals the margin-bearing base price.
func QuoteTotals(
	items []PrintJob,
	filaments []Filament,
	cfg CostConfiguration,
	marginPercent float64,
	channel SalesChannel,
	fees FeeTable,
) Totals {
	byID := indexFilaments(filaments)
	rates := HourlyRatesFor(cfg)
	hourly := rates.Total()

	var rawMaterialCost, rawOperationalCost, totalHours float64
	for _, item := range items {
		costs := itemCost(item, byID, cfg, hourly)
		rawMaterialCost += costs.MaterialCost
		rawOperationalCost += costs.OperationalCost
		totalHours += item.PrintTimeHours
	}

	rawProductionCost := rawMaterialCost + rawOperationalCost
	riskCost := rawProductionCost * (cfg.FailureRatePercent / 100.0)
	totalProductionCost := rawProductionCost + riskCost

	breakdown := Breakdown{
		Material:     rawMaterialCost,
		Energy:       rates.Energy * totalHours,
		Fixed:        rates.Fixed * totalHours,
		Depreciation: rates.Depreciation * totalHours,
		Labor:        rates.Labor * totalHours,
		WearAndTear:  rates.WearAndTear * totalHours,
		Risk:         riskCost,
	}

	safeMargin := clamp(marginPercent, 0, MaxMarginPercent)
	basePrice := totalProductionCost / (1.0 - safeMargin/100.0)

	fee := fees.Lookup(channel)
	feeRate := fee.Rate()
	feeFixed := fee.Fixed

	finalPrice := basePrice
	if divisor := 1.0 - feeRate; divisor > 0 {
		finalPrice = (basePrice + feeFixed) / divisor
	}

	taxAmount := finalPrice*feeRate + feeFixed
	netValue := finalPrice - taxAmount

	return Totals{
		RawMaterialCost:    rawMaterialCost,
		RawOperationalCost: rawOperationalCost,
		RiskCost:           riskCost,
		TotalHours:         totalHours,
		Breakdown:          breakdown,
		TotalCost:          totalProductionCost,
		BasePrice:          basePrice,
		FinalPrice:         finalPrice,
		TaxAmount:          taxAmount,
		NetValue:           netValue,
		MarginValue:        netValue - totalProductionCost,
		Fee:                fee,
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
