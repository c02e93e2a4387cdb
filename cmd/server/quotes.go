package main

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Simplici0/printdesk/internal/finance"
	"github.com/Simplici0/printdesk/internal/models"
	"github.com/Simplici0/printdesk/internal/quotes"
	"github.com/Simplici0/printdesk/internal/store"
)

// Spools at or below this share of their original weight are flagged.
const lowStockPercent = 15.0

func (s *server) handleQuotesList(w http.ResponseWriter, r *http.Request) {
	filter := store.QuoteFilter{
		Search: strings.TrimSpace(r.URL.Query().Get("q")),
		Status: models.QuoteStatus(strings.TrimSpace(r.URL.Query().Get("status"))),
	}
	if filter.Status != "" && !models.IsValidQuoteStatus(filter.Status) {
		writeError(w, http.StatusBadRequest, "unknown status filter")
		return
	}

	list, err := s.store.Quotes(r.Context(), filter)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *server) decodeDraft(w http.ResponseWriter, r *http.Request) (quotes.Draft, bool) {
	var d quotes.Draft
	if err := decodeJSON(w, r, &d); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return quotes.Draft{}, false
	}
	return d, true
}

func (s *server) handleQuoteCalculate(w http.ResponseWriter, r *http.Request) {
	d, ok := s.decodeDraft(w, r)
	if !ok {
		return
	}
	totals, err := s.quotes.Calculate(r.Context(), d)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, totals)
}

func (s *server) handleQuoteCreate(w http.ResponseWriter, r *http.Request) {
	d, ok := s.decodeDraft(w, r)
	if !ok {
		return
	}
	d.ID = ""
	s.saveQuote(w, r, d, http.StatusCreated)
}

func (s *server) handleQuoteUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := s.store.Quote(r.Context(), id); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	d, ok := s.decodeDraft(w, r)
	if !ok {
		return
	}
	d.ID = id
	s.saveQuote(w, r, d, http.StatusOK)
}

type approvalResponse struct {
	Quote    models.Quote `json:"quote"`
	Warnings []string     `json:"warnings,omitempty"`
}

func (s *server) saveQuote(w http.ResponseWriter, r *http.Request, d quotes.Draft, status int) {
	q, err := s.quotes.Save(r.Context(), d)
	if errors.Is(err, quotes.ErrSideEffects) {
		writeJSON(w, status, approvalResponse{Quote: q, Warnings: []string{err.Error()}})
		return
	}
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, status, q)
}

func (s *server) handleQuoteGet(w http.ResponseWriter, r *http.Request) {
	q, err := s.store.Quote(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (s *server) handleQuoteDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.quotes.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleQuoteApprove answers 200 even when stock, ledger or event updates
// failed; those failures are listed as warnings since the approval stands.
func (s *server) handleQuoteApprove(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	q, err := s.quotes.Approve(r.Context(), id)
	if err != nil && !errors.Is(err, quotes.ErrSideEffects) {
		s.writeServiceError(w, r, err)
		return
	}

	resp := approvalResponse{Quote: q}
	if err != nil {
		resp.Warnings = []string{err.Error()}
	}
	s.log.Info("quote approval requested",
		zap.String("quote_id", id),
		zap.String("user", userFromContext(r.Context())),
		zap.Int("warnings", len(resp.Warnings)),
	)
	writeJSON(w, http.StatusOK, resp)
}

func (s *server) handleQuoteText(w http.ResponseWriter, r *http.Request) {
	q, err := s.store.Quote(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	filaments, err := s.store.Filaments(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	cfg, err := s.currentSettings(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(quotes.Text(q, filaments, cfg.Currency)))
}

type dashboardResponse struct {
	Currency               string                `json:"currency"`
	Summary                finance.Summary       `json:"summary"`
	Funnel                 finance.Funnel        `json:"funnel"`
	Channels               []finance.ChannelStat `json:"channels"`
	SuggestedFixedExpenses string                `json:"suggestedFixedExpenses"`
	LowStock               []models.Filament     `json:"lowStock"`
}

func (s *server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	list, err := s.store.Quotes(ctx, store.QuoteFilter{})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	expenses, err := s.store.Expenses(ctx)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	filaments, err := s.store.Filaments(ctx)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	orders, err := s.store.ProductionOrders(ctx)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	cfg, err := s.currentSettings(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	lowStock := make([]models.Filament, 0)
	for _, f := range filaments {
		if f.RemainingPercent() <= lowStockPercent {
			lowStock = append(lowStock, f)
		}
	}

	writeJSON(w, http.StatusOK, dashboardResponse{
		Currency:               cfg.Currency,
		Summary:                finance.Summarize(list, expenses, s.now()),
		Funnel:                 finance.CountFunnel(list, orders),
		Channels:               finance.ChannelStats(list),
		SuggestedFixedExpenses: finance.SuggestedFixedExpenses(expenses).StringFixed(2),
		LowStock:               lowStock,
	})
}
