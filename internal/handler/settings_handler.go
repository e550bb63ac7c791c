package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/ddreams3d/backend/internal/costmodel"
	"github.com/ddreams3d/backend/internal/model"
	"github.com/ddreams3d/backend/internal/settings"
)

// SettingsHandler serves the rate table, machine registry, category lists and
// the production cost calculator.
type SettingsHandler struct {
	settings   *settings.Store
	categories *settings.CategoryStore
}

func NewSettingsHandler(st *settings.Store, cat *settings.CategoryStore) *SettingsHandler {
	return &SettingsHandler{settings: st, categories: cat}
}

// Get handles GET /api/finance/settings.
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(h.settings.Get())
}

// Put handles PUT /api/finance/settings. The whole object is replaced;
// machine hourly rates are re-derived on save.
func (h *SettingsHandler) Put(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var req model.RateSettings
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid_json"})
		return
	}

	saved, err := h.settings.Put(r.Context(), req)
	if err != nil {
		slog.Error("settings save failed", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "save_failed"})
		return
	}
	_ = json.NewEncoder(w).Encode(saved)
}

// UpsertMachine handles PUT /api/finance/settings/machines.
func (h *SettingsHandler) UpsertMachine(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var req model.MachineDefinition
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid_json"})
		return
	}

	machine, err := h.settings.UpsertMachine(r.Context(), req)
	if err != nil {
		if errors.Is(err, settings.ErrMachineNotFound) {
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "not_found"})
			return
		}
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		return
	}
	_ = json.NewEncoder(w).Encode(machine)
}

// RemoveMachine handles DELETE /api/finance/settings/machines/{id}.
func (h *SettingsHandler) RemoveMachine(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	id := r.PathValue("id")
	if err := h.settings.RemoveMachine(r.Context(), id); err != nil {
		if errors.Is(err, settings.ErrMachineNotFound) {
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "not_found"})
			return
		}
		slog.Error("machine remove failed", "error", err, "machine_id", id)
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "remove_failed"})
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]bool{"ok": true})
}

// Categories handles GET /api/finance/categories.
func (h *SettingsHandler) Categories(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(h.categories.Get())
}

// PutCategories handles PUT /api/finance/categories. Reserved entries are
// restored on save regardless of what the client sends.
func (h *SettingsHandler) PutCategories(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var req model.CategoriesConfig
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid_json"})
		return
	}

	saved, err := h.categories.Put(r.Context(), req)
	if err != nil {
		slog.Error("categories save failed", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "save_failed"})
		return
	}
	_ = json.NewEncoder(w).Encode(saved)
}

// ComputeCost handles POST /api/finance/production/compute: prices a job with
// the current rate table and returns the snapshot plus suggested sale prices.
func (h *SettingsHandler) ComputeCost(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var req struct {
		Components       []model.ProductionComponent `json:"components"`
		HumanTimeMinutes float64                     `json:"humanTimeMinutes"`
		MarginPercent    *decimal.Decimal            `json:"marginPercent"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid_json"})
		return
	}

	rates := h.settings.Get()
	snap := costmodel.ComputeSnapshot(req.Components, req.HumanTimeMinutes, rates)
	if snap == nil {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "nothing_to_price"})
		return
	}

	margin := rates.WholesaleMarginPercent
	if req.MarginPercent != nil {
		margin = *req.MarginPercent
	}

	_ = json.NewEncoder(w).Encode(map[string]any{
		"snapshot":        snap,
		"totalDirectCost": snap.TotalDirectCost(),
		"suggestedPrice":  costmodel.SuggestedPrice(snap, margin),
	})
}
