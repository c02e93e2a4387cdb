package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/Simplici0/printdesk/internal/models"
	"github.com/Simplici0/printdesk/internal/pricing"
)

func seedQuoteDetail(t *testing.T, srv *server) models.Quote {
	t.Helper()
	ctx := context.Background()

	spool := models.Filament{ID: "pla-pro", Brand: "Voolt", Name: "PLA Pro", Type: models.FilamentPLA, PricePerSpool: 100, WeightPerSpoolGrams: 1000}
	if err := srv.store.UpsertFilament(ctx, &spool); err != nil {
		t.Fatalf("seed filament: %v", err)
	}

	q := models.Quote{
		Title:               "Orçamento Demo",
		ProfitMarginPercent: 35,
		Channel:             pricing.ChannelMercadoLivre,
		Items: []pricing.PrintJob{{
			Description:    "Suporte de fone",
			PrintTimeHours: 1.5,
			FilamentUsage:  []pricing.FilamentUsage{{FilamentID: "pla-pro", GramsUsed: 150}},
		}},
		TotalCost:  123.45,
		FinalPrice: 999.99,
		TaxAmount:  165,
		NetValue:   834.99,
		Breakdown:  pricing.Breakdown{Material: 100, Energy: 3.45, Risk: 20},
	}
	if err := srv.store.UpsertQuote(ctx, &q); err != nil {
		t.Fatalf("seed quote: %v", err)
	}
	return q
}

func withID(req *http.Request, id string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestGetQuoteReadsSnapshotWithoutRecalculation(t *testing.T) {
	srv := newTestServer(t)
	seeded := seedQuoteDetail(t, srv)

	rr := httptest.NewRecorder()
	srv.handleQuoteGet(rr, withID(httptest.NewRequest(http.MethodGet, "/api/quotes/"+seeded.ID, nil), seeded.ID))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}

	var detail models.Quote
	decodeBody(t, rr, &detail)
	if detail.Breakdown.Material != 100 {
		t.Fatalf("expected snapshot material cost 100, got %.2f", detail.Breakdown.Material)
	}
	if detail.FinalPrice != 999.99 {
		t.Fatalf("expected snapshot total 999.99, got %.2f", detail.FinalPrice)
	}
	if len(detail.Items) != 1 || detail.Items[0].FilamentUsage[0].GramsUsed != 150 {
		t.Fatalf("unexpected item detail: %+v", detail.Items)
	}
}

func TestGetQuoteNotFound(t *testing.T) {
	srv := newTestServer(t)

	rr := httptest.NewRecorder()
	srv.handleQuoteGet(rr, withID(httptest.NewRequest(http.MethodGet, "/api/quotes/nope", nil), "nope"))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rr.Code)
	}
}

func TestHandleQuoteTextReturnsPlainText(t *testing.T) {
	srv := newTestServer(t)
	seeded := seedQuoteDetail(t, srv)

	rr := httptest.NewRecorder()
	srv.handleQuoteText(rr, withID(httptest.NewRequest(http.MethodGet, "/api/quotes/"+seeded.ID+"/text", nil), seeded.ID))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Header().Get("Content-Type"), "text/plain") {
		t.Fatalf("expected text/plain content type, got %q", rr.Header().Get("Content-Type"))
	}

	body := rr.Body.String()
	for _, expected := range []string{"Orçamento Demo", "Canal: MercadoLivre", "Suporte de fone: 1.50 h", "Voolt PLA Pro (PLA): 150.0 g", "Preço final: R$ 999,99"} {
		if !strings.Contains(body, expected) {
			t.Fatalf("expected body to contain %q, got: %s", expected, body)
		}
	}
}
