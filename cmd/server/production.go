package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *server) handleProductionList(w http.ResponseWriter, r *http.Request) {
	orders, err := s.store.ProductionOrders(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

type completeProductionRequest struct {
	ActualGrams float64 `json:"actualGrams"`
}

func (s *server) handleProductionComplete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req completeProductionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.quotes.CompleteProduction(r.Context(), id, req.ActualGrams); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	order, err := s.store.ProductionOrder(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}
