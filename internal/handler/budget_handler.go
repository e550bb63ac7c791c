package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ddreams3d/backend/internal/budget"
	"github.com/ddreams3d/backend/internal/model"
)

// BudgetHandler serves the monthly budget endpoints per scope.
type BudgetHandler struct {
	budgets map[string]*budget.Store
}

func NewBudgetHandler(budgets map[string]*budget.Store) *BudgetHandler {
	return &BudgetHandler{budgets: budgets}
}

func (h *BudgetHandler) store(w http.ResponseWriter, r *http.Request) (*budget.Store, bool) {
	scope := r.PathValue("scope")
	store, ok := h.budgets[scope]
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "unknown_scope"})
		return nil, false
	}
	return store, true
}

// Month handles GET /api/finance/{scope}/budgets/{month}.
func (h *BudgetHandler) Month(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	store, ok := h.store(w, r)
	if !ok {
		return
	}

	items, err := store.Month(r.PathValue("month"))
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid_month"})
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"items": items})
}

// AddItem handles POST /api/finance/{scope}/budgets/{month}.
func (h *BudgetHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	store, ok := h.store(w, r)
	if !ok {
		return
	}

	var item model.MonthlyBudgetItem
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid_json"})
		return
	}

	created, err := store.AddItem(r.Context(), r.PathValue("month"), item)
	if err != nil {
		if errors.Is(err, budget.ErrBadMonth) {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid_month"})
			return
		}
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		return
	}

	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(created)
}

// UpdateItem handles PUT /api/finance/{scope}/budgets/{month}/{id}.
func (h *BudgetHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	store, ok := h.store(w, r)
	if !ok {
		return
	}

	var patch model.BudgetItemPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid_json"})
		return
	}

	updated, err := store.UpdateItem(r.Context(), r.PathValue("month"), r.PathValue("id"), patch)
	if err != nil {
		if errors.Is(err, budget.ErrNotFound) {
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "not_found"})
			return
		}
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		return
	}

	_ = json.NewEncoder(w).Encode(updated)
}

// RemoveItem handles DELETE /api/finance/{scope}/budgets/{month}/{id}.
func (h *BudgetHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	store, ok := h.store(w, r)
	if !ok {
		return
	}

	if err := store.RemoveItem(r.Context(), r.PathValue("month"), r.PathValue("id")); err != nil {
		if errors.Is(err, budget.ErrNotFound) {
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "not_found"})
			return
		}
		slog.Error("budget remove failed", "error", err, "month", r.PathValue("month"))
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "remove_failed"})
		return
	}

	_ = json.NewEncoder(w).Encode(map[string]bool{"ok": true})
}

// CopyPrevious handles POST /api/finance/{scope}/budgets/{month}/copy-previous.
func (h *BudgetHandler) CopyPrevious(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	store, ok := h.store(w, r)
	if !ok {
		return
	}

	copied, err := store.CopyPreviousMonth(r.Context(), r.PathValue("month"))
	if err != nil {
		if errors.Is(err, budget.ErrNotFound) {
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "previous_month_empty"})
			return
		}
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		return
	}

	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]any{"items": copied})
}
