package pricing

import (
	"math"
	"testing"
)

func scenario() ([]PrintJob, []Filament) {
	filaments := []Filament{{ID: "pla-black", PricePerSpool: 100, WeightPerSpoolGrams: 1000}}
	items := []PrintJob{{
		PrintTimeHours: 2,
		FilamentUsage:  []FilamentUsage{{FilamentID: "pla-black", GramsUsed: 50}},
	}}
	return items, filaments
}

func TestQuoteTotals_DirectChannelScenario(t *testing.T) {
	items, filaments := scenario()
	fees := NewFeeTable(DefaultMarketplaceFees())

	totals := QuoteTotals(items, filaments, workshopConfig(), 50, ChannelDirect, fees)

	nearlyEqual(t, "rawMaterialCost", totals.RawMaterialCost, 5.25)
	nearlyEqual(t, "rawOperationalCost", totals.RawOperationalCost, 5.09)
	nearlyEqual(t, "riskCost", totals.RiskCost, 1.034)
	nearlyEqual(t, "totalCost", totals.TotalCost, 11.374)
	nearlyEqual(t, "basePrice", totals.BasePrice, 22.748)
	nearlyEqual(t, "finalPrice", totals.FinalPrice, 22.748)
	nearlyEqual(t, "taxAmount", totals.TaxAmount, 0)
	nearlyEqual(t, "netValue", totals.NetValue, 22.748)
	nearlyEqual(t, "marginValue", totals.MarginValue, 11.374)
	nearlyEqual(t, "totalHours", totals.TotalHours, 2)
}

func TestQuoteTotals_MarketplaceFeeScenario(t *testing.T) {
	items, filaments := scenario()
	fees := NewFeeTable([]MarketplaceFeeRule{{Channel: ChannelMercadoLivre, Percent: 16, Fixed: 5}})

	totals := QuoteTotals(items, filaments, workshopConfig(), 50, ChannelMercadoLivre, fees)

	nearlyEqual(t, "finalPrice", totals.FinalPrice, (22.748+5)/0.84)
	nearlyEqual(t, "taxAmount", totals.TaxAmount, (22.748+5)/0.84*0.16+5)
	relativelyEqual(t, "netValue", totals.NetValue, totals.BasePrice)
	if math.Abs(totals.FinalPrice-33.03) > 0.01 || math.Abs(totals.TaxAmount-10.29) > 0.01 {
		t.Fatalf("unexpected rounded values: final=%v tax=%v", totals.FinalPrice, totals.TaxAmount)
	}
}

func TestQuoteTotals_IsIdempotent(t *testing.T) {
	items, filaments := scenario()
	fees := NewFeeTable(DefaultMarketplaceFees())

	first := QuoteTotals(items, filaments, workshopConfig(), 37, ChannelShopee, fees)
	second := QuoteTotals(items, filaments, workshopConfig(), 37, ChannelShopee, fees)

	if first != second {
		t.Fatalf("expected identical results:\n%+v\n%+v", first, second)
	}
}

func TestQuoteTotals_NetRoundTripsToBasePrice(t *testing.T) {
	items, filaments := scenario()
	fees := NewFeeTable(DefaultMarketplaceFees())

	for _, rule := range DefaultMarketplaceFees() {
		for _, margin := range []float64{0, 12.5, 50, 98.9} {
			totals := QuoteTotals(items, filaments, workshopConfig(), margin, rule.Channel, fees)
			relativelyEqual(t, string(rule.Channel)+" netValue", totals.NetValue, totals.BasePrice)
		}
	}
}

func TestQuoteTotals_MarginHoldsAgainstNetAtZeroFee(t *testing.T) {
	items, filaments := scenario()

	for _, margin := range []float64{0, 10, 33.3, 75, 98.5} {
		totals := QuoteTotals(items, filaments, workshopConfig(), margin, ChannelDirect, FeeTable{})
		nearlyEqual(t, "margin ratio", totals.MarginValue/totals.NetValue, margin/100)
	}
}

func TestQuoteTotals_MarginIsClamped(t *testing.T) {
	items, filaments := scenario()
	cfg := workshopConfig()

	atCap := QuoteTotals(items, filaments, cfg, 99, ChannelDirect, FeeTable{})
	above := QuoteTotals(items, filaments, cfg, 100, ChannelDirect, FeeTable{})
	wayAbove := QuoteTotals(items, filaments, cfg, 250, ChannelDirect, FeeTable{})
	negative := QuoteTotals(items, filaments, cfg, -20, ChannelDirect, FeeTable{})

	nearlyEqual(t, "99% base", atCap.BasePrice, 11.374/0.01)
	if above.BasePrice != atCap.BasePrice || wayAbove.BasePrice != atCap.BasePrice {
		t.Fatalf("margins above 99 must clamp to 99: %v %v %v", atCap.BasePrice, above.BasePrice, wayAbove.BasePrice)
	}
	if math.IsInf(above.FinalPrice, 0) {
		t.Fatalf("expected finite price at 100%% margin")
	}
	nearlyEqual(t, "negative margin base", negative.BasePrice, negative.TotalCost)
}

func TestQuoteTotals_FeeRateAtOrAboveOneFallsBackToBase(t *testing.T) {
	items, filaments := scenario()
	fees := NewFeeTable([]MarketplaceFeeRule{{Channel: "Broken", Percent: 100, Fixed: 2}})

	totals := QuoteTotals(items, filaments, workshopConfig(), 50, "Broken", fees)

	nearlyEqual(t, "finalPrice", totals.FinalPrice, totals.BasePrice)
	nearlyEqual(t, "taxAmount", totals.TaxAmount, totals.BasePrice+2)
	if math.IsInf(totals.FinalPrice, 0) || math.IsNaN(totals.FinalPrice) {
		t.Fatalf("expected finite final price, got %v", totals.FinalPrice)
	}
}

func TestQuoteTotals_NoItems(t *testing.T) {
	fees := NewFeeTable([]MarketplaceFeeRule{
		{Channel: ChannelShopee, Percent: 14, Fixed: 3},
		{Channel: "Broken", Percent: 120, Fixed: 3},
	})

	direct := QuoteTotals(nil, nil, workshopConfig(), 40, ChannelDirect, fees)
	nearlyEqual(t, "direct totalCost", direct.TotalCost, 0)
	nearlyEqual(t, "direct basePrice", direct.BasePrice, 0)
	nearlyEqual(t, "direct finalPrice", direct.FinalPrice, 0)

	shopee := QuoteTotals(nil, nil, workshopConfig(), 40, ChannelShopee, fees)
	nearlyEqual(t, "shopee finalPrice", shopee.FinalPrice, 3/0.86)

	broken := QuoteTotals(nil, nil, workshopConfig(), 40, "Broken", fees)
	nearlyEqual(t, "broken finalPrice", broken.FinalPrice, 0)
}

func TestQuoteTotals_BreakdownReconcilesWithTotalCost(t *testing.T) {
	cfg := workshopConfig()
	cfg.WearAndTearPerHour = 0.35
	cfg.OverheadAbsorptionPercent = Percent(50)
	filaments := []Filament{
		{ID: "a", PricePerSpool: 120, WeightPerSpoolGrams: 1000},
		{ID: "b", PricePerSpool: 90, WeightPerSpoolGrams: 750},
	}
	items := []PrintJob{
		{PrintTimeHours: 1.5, FilamentUsage: []FilamentUsage{{FilamentID: "a", GramsUsed: 40}}},
		{PrintTimeHours: 4.25, FilamentUsage: []FilamentUsage{{FilamentID: "a", GramsUsed: 12}, {FilamentID: "b", GramsUsed: 210}}},
	}

	totals := QuoteTotals(items, filaments, cfg, 30, ChannelAmazon, NewFeeTable(DefaultMarketplaceFees()))
	b := totals.Breakdown

	sum := b.Material + b.Energy + b.Fixed + b.Depreciation + b.Labor + b.WearAndTear + b.Risk
	nearlyEqual(t, "breakdown sum", sum, totals.TotalCost)
	nearlyEqual(t, "totalHours", totals.TotalHours, 5.75)
	nearlyEqual(t, "energy", b.Energy, 0.27*5.75)
}

func TestQuoteTotals_FinalPriceIsMonotonicInCostInputs(t *testing.T) {
	fees := NewFeeTable(DefaultMarketplaceFees())
	price := func(grams, hours, failure, fixed float64) float64 {
		cfg := workshopConfig()
		cfg.FailureRatePercent = failure
		cfg.MonthlyFixedExpenses = fixed
		filaments := []Filament{{ID: "f", PricePerSpool: 100, WeightPerSpoolGrams: 1000}}
		items := []PrintJob{{PrintTimeHours: hours, FilamentUsage: []FilamentUsage{{FilamentID: "f", GramsUsed: grams}}}}
		return QuoteTotals(items, filaments, cfg, 45, ChannelMercadoLivre, fees).FinalPrice
	}

	base := price(50, 2, 10, 150)
	steps := map[string]float64{
		"grams":   price(80, 2, 10, 150),
		"hours":   price(50, 3.5, 10, 150),
		"failure": price(50, 2, 25, 150),
		"fixed":   price(50, 2, 10, 400),
	}
	for name, got := range steps {
		if got < base {
			t.Fatalf("increasing %s decreased final price: %v < %v", name, got, base)
		}
	}
}
