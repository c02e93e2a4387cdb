package main

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Simplici0/printdesk/internal/models"
	"github.com/Simplici0/printdesk/internal/pricing"
)

func seedSpool(t *testing.T, srv *server) {
	t.Helper()
	spool := models.Filament{ID: "pla-black", Name: "Preto", Type: models.FilamentPLA, PricePerSpool: 100, WeightPerSpoolGrams: 1000}
	if err := srv.store.UpsertFilament(context.Background(), &spool); err != nil {
		t.Fatalf("seed filament: %v", err)
	}
}

func TestQuoteCalculate_Success(t *testing.T) {
	srv := newTestServer(t)
	seedSpool(t, srv)

	rr := do(t, srv, http.MethodPost, "/api/quotes/calculate", map[string]any{
		"profitMarginPercent": 50,
		"channel":             "MercadoLivre",
		"items": []map[string]any{{
			"printTimeHours": 2,
			"filamentUsage":  []map[string]any{{"filamentId": "pla-black", "gramsUsed": 50}},
		}},
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rr.Code, rr.Body.String())
	}

	var totals pricing.Totals
	decodeBody(t, rr, &totals)

	// seeded settings: 1.67/h operational, 0.10/g filament with 5% waste
	wantCost := (5.25 + 3.34) * 1.1
	if math.Abs(totals.TotalCost-wantCost) > 1e-9 {
		t.Fatalf("totalCost = %v, want %v", totals.TotalCost, wantCost)
	}
	if math.Abs(totals.NetValue-totals.BasePrice) > 1e-9 {
		t.Fatalf("net value %v must match base price %v", totals.NetValue, totals.BasePrice)
	}
	if totals.Fee.Percent != 16 || totals.Fee.Fixed != 5 {
		t.Fatalf("expected MercadoLivre fee, got %+v", totals.Fee)
	}
}

func TestQuoteCalculate_InvalidNumbers(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/quotes/calculate", strings.NewReader(`{"items":[{"printTimeHours":"abc"}]}`))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: srv.auth.createSessionValue(testAdminEmail)})
	rr := httptest.NewRecorder()
	srv.routes().ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected numeric validation error, got %d", rr.Code)
	}
}

func TestQuoteCalculate_NegativeValuesReportFields(t *testing.T) {
	srv := newTestServer(t)

	rr := do(t, srv, http.MethodPost, "/api/quotes/calculate", map[string]any{
		"items": []map[string]any{{
			"printTimeHours": 1,
			"filamentUsage":  []map[string]any{{"filamentId": "", "gramsUsed": -5}},
		}},
	})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected validation error, got %d", rr.Code)
	}

	var resp errorResponse
	decodeBody(t, rr, &resp)
	for _, field := range []string{"items[0].filamentUsage[0].filamentId", "items[0].filamentUsage[0].gramsUsed"} {
		if _, ok := resp.Details[field]; !ok {
			t.Fatalf("expected violation for %s, got %+v", field, resp.Details)
		}
	}
}
