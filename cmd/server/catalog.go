package main

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Simplici0/printdesk/internal/input"
	"github.com/Simplici0/printdesk/internal/models"
	"github.com/Simplici0/printdesk/internal/pricing"
	"github.com/Simplici0/printdesk/internal/store"
)

func (s *server) currentSettings(r *http.Request) (pricing.CostConfiguration, error) {
	cfg, err := s.store.Settings(r.Context())
	if errors.Is(err, store.ErrNotFound) {
		return models.DefaultSettings(), nil
	}
	return cfg, err
}

func (s *server) handleSettingsGet(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.currentSettings(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (s *server) handleSettingsPut(w http.ResponseWriter, r *http.Request) {
	var cfg pricing.CostConfiguration
	if err := decodeJSON(w, r, &cfg); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.saveSettings(w, r, cfg)
}

// handleSettingsImport merges spreadsheet-style key/value pairs over the
// current settings. Values may use comma decimals.
func (s *server) handleSettingsImport(w http.ResponseWriter, r *http.Request) {
	raw, err := parseKeyValues(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	current, err := s.currentSettings(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.saveSettings(w, r, input.SettingsFromMap(raw, current))
}

func parseKeyValues(w http.ResponseWriter, r *http.Request) (map[string]string, error) {
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := r.ParseForm(); err != nil {
			return nil, errors.New("invalid form")
		}
		raw := make(map[string]string, len(r.PostForm))
		for key := range r.PostForm {
			raw[key] = r.PostForm.Get(key)
		}
		return raw, nil
	}

	var values map[string]any
	if err := decodeJSON(w, r, &values); err != nil {
		return nil, err
	}
	raw := make(map[string]string, len(values))
	for key, value := range values {
		if value == nil {
			continue
		}
		raw[key] = fmt.Sprint(value)
	}
	return raw, nil
}

func (s *server) saveSettings(w http.ResponseWriter, r *http.Request, cfg pricing.CostConfiguration) {
	cfg.Currency = input.NormalizeCurrency(cfg.Currency)
	if err := input.ValidateSettings(cfg); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if err := s.store.SaveSettings(r.Context(), cfg); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.log.Info("settings updated")
	writeJSON(w, http.StatusOK, cfg)
}

func (s *server) handleFilamentsList(w http.ResponseWriter, r *http.Request) {
	filaments, err := s.store.Filaments(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, filaments)
}

func (s *server) handleFilamentCreate(w http.ResponseWriter, r *http.Request) {
	s.saveFilament(w, r, "")
}

func (s *server) handleFilamentUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := s.store.Filament(r.Context(), id); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.saveFilament(w, r, id)
}

func (s *server) saveFilament(w http.ResponseWriter, r *http.Request, id string) {
	var f models.Filament
	if err := decodeJSON(w, r, &f); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	f.ID = id
	input.NormalizeFilament(&f, id == "")
	if err := input.ValidateFilament(f); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if err := s.store.UpsertFilament(r.Context(), &f); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, createdOrOK(id), f)
}

func (s *server) handleFilamentDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteFilament(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleClientsList(w http.ResponseWriter, r *http.Request) {
	clients, err := s.store.Clients(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, clients)
}

func (s *server) handleClientCreate(w http.ResponseWriter, r *http.Request) {
	s.saveClient(w, r, "")
}

func (s *server) handleClientUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := s.store.Client(r.Context(), id); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.saveClient(w, r, id)
}

func (s *server) saveClient(w http.ResponseWriter, r *http.Request, id string) {
	var c models.Client
	if err := decodeJSON(w, r, &c); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	c.ID = id
	c.Name = strings.TrimSpace(c.Name)
	if err := input.ValidateClient(c); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if err := s.store.UpsertClient(r.Context(), &c); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, createdOrOK(id), c)
}

func (s *server) handleClientDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteClient(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleFeesList(w http.ResponseWriter, r *http.Request) {
	fees, err := s.store.Fees(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, fees)
}

func (s *server) handleFeesReplace(w http.ResponseWriter, r *http.Request) {
	var rules []pricing.MarketplaceFeeRule
	if err := decodeJSON(w, r, &rules); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	for i := range rules {
		rules[i].Channel = pricing.SalesChannel(strings.TrimSpace(string(rules[i].Channel)))
	}
	if err := input.ValidateFees(rules); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if err := s.store.ReplaceFees(r.Context(), rules); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rules)
}

func (s *server) handleExpensesList(w http.ResponseWriter, r *http.Request) {
	expenses, err := s.store.Expenses(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, expenses)
}

func (s *server) handleExpenseCreate(w http.ResponseWriter, r *http.Request) {
	s.saveExpense(w, r, "")
}

func (s *server) handleExpenseUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := s.store.Expense(r.Context(), id); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.saveExpense(w, r, id)
}

func (s *server) saveExpense(w http.ResponseWriter, r *http.Request, id string) {
	var e models.Expense
	if err := decodeJSON(w, r, &e); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	e.ID = id
	if err := input.ValidateExpense(&e); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if err := s.store.UpsertExpense(r.Context(), &e); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, createdOrOK(id), e)
}

func (s *server) handleExpenseDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteExpense(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleLedgerList(w http.ResponseWriter, r *http.Request) {
	entries, err := s.store.LedgerEntries(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func createdOrOK(id string) int {
	if id == "" {
		return http.StatusCreated
	}
	return http.StatusOK
}
