package main

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/Simplici0/printdesk/internal/models"
)

func seedQuote(t *testing.T, srv *server, createdAt time.Time, title, clientID string, finalPrice float64) models.Quote {
	t.Helper()

	q := models.Quote{Title: title, ClientID: clientID, FinalPrice: finalPrice, NetValue: finalPrice, CreatedAt: createdAt}
	if err := srv.store.UpsertQuote(context.Background(), &q); err != nil {
		t.Fatalf("failed to seed quote: %v", err)
	}
	return q
}

func TestListQuotesOrdersByDateDescAndReadsTotal(t *testing.T) {
	srv := newTestServer(t)

	seedQuote(t, srv, time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC), "Primeira", "", 100.50)
	seedQuote(t, srv, time.Date(2024, 1, 3, 12, 0, 0, 0, time.UTC), "Terceira", "", 300.00)
	seedQuote(t, srv, time.Date(2024, 1, 2, 11, 0, 0, 0, time.UTC), "Segunda", "", 200.25)

	rr := do(t, srv, http.MethodGet, "/api/quotes", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}

	var quotes []models.Quote
	decodeBody(t, rr, &quotes)
	if len(quotes) != 3 {
		t.Fatalf("expected 3 quotes, got %d", len(quotes))
	}
	if quotes[0].Title != "Terceira" || quotes[1].Title != "Segunda" || quotes[2].Title != "Primeira" {
		t.Fatalf("quotes are not sorted desc by created_at: %+v", quotes)
	}
	if quotes[0].FinalPrice != 300.00 || quotes[1].FinalPrice != 200.25 || quotes[2].FinalPrice != 100.50 {
		t.Fatalf("unexpected totals: %+v", quotes)
	}
}

func TestListQuotesFilterByTitleClientAndStatus(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()

	client := models.Client{Name: "Casa Verde"}
	if err := srv.store.UpsertClient(ctx, &client); err != nil {
		t.Fatalf("seed client: %v", err)
	}

	seedQuote(t, srv, time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC), "Luminária", client.ID, 80)
	seedQuote(t, srv, time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC), "Chaveiros", "", 120)
	pending := seedQuote(t, srv, time.Date(2024, 1, 3, 10, 0, 0, 0, time.UTC), "Protótipo casa", "", 160)
	pending.Status = models.QuotePending
	if err := srv.store.UpsertQuote(ctx, &pending); err != nil {
		t.Fatalf("update quote: %v", err)
	}

	var byTitle []models.Quote
	decodeBody(t, do(t, srv, http.MethodGet, "/api/quotes?q=Chave", nil), &byTitle)
	if len(byTitle) != 1 || byTitle[0].Title != "Chaveiros" {
		t.Fatalf("expected 1 quote filtered by title, got %+v", byTitle)
	}

	var byClient []models.Quote
	decodeBody(t, do(t, srv, http.MethodGet, "/api/quotes?q=casa", nil), &byClient)
	if len(byClient) != 2 {
		t.Fatalf("expected 2 quotes filtered by title/client, got %+v", byClient)
	}

	var byStatus []models.Quote
	decodeBody(t, do(t, srv, http.MethodGet, "/api/quotes?status=pending", nil), &byStatus)
	if len(byStatus) != 1 || byStatus[0].Title != "Protótipo casa" {
		t.Fatalf("expected 1 pending quote, got %+v", byStatus)
	}

	if rr := do(t, srv, http.MethodGet, "/api/quotes?status=shipped", nil); rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 for unknown status, got %d", rr.Code)
	}
}
