package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ddreams3d/backend/internal/ledger"
	"github.com/ddreams3d/backend/internal/model"
)

// RecordHandler serves the ledger record endpoints for both scopes
// ("company" and "personal" keep fully separate stores).
type RecordHandler struct {
	ledgers map[string]*ledger.Store
}

func NewRecordHandler(ledgers map[string]*ledger.Store) *RecordHandler {
	return &RecordHandler{ledgers: ledgers}
}

func (h *RecordHandler) store(w http.ResponseWriter, r *http.Request) (*ledger.Store, bool) {
	scope := r.PathValue("scope")
	store, ok := h.ledgers[scope]
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "unknown_scope"})
		return nil, false
	}
	return store, true
}

// List handles GET /api/finance/{scope}/records.
func (h *RecordHandler) List(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	store, ok := h.store(w, r)
	if !ok {
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"records": store.List()})
}

// Create handles POST /api/finance/{scope}/records.
func (h *RecordHandler) Create(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	store, ok := h.store(w, r)
	if !ok {
		return
	}

	var rec model.LedgerRecord
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid_json"})
		return
	}

	created, err := store.Create(r.Context(), &rec)
	if err != nil {
		if ledger.IsValidation(err) {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
			return
		}
		slog.Error("record create failed", "error", err, "scope", r.PathValue("scope"))
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "create_failed"})
		return
	}

	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(created)
}

// Update handles PUT /api/finance/{scope}/records/{id}.
func (h *RecordHandler) Update(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	store, ok := h.store(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")

	var patch model.RecordPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid_json"})
		return
	}

	updated, err := store.Update(r.Context(), id, patch)
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "not_found"})
			return
		}
		if ledger.IsValidation(err) {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
			return
		}
		slog.Error("record update failed", "error", err, "record_id", id)
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "update_failed"})
		return
	}

	_ = json.NewEncoder(w).Encode(updated)
}

// Delete handles DELETE /api/finance/{scope}/records/{id}. The record is
// tombstoned, not removed.
func (h *RecordHandler) Delete(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	store, ok := h.store(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")

	if err := store.Delete(r.Context(), id); err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "not_found"})
			return
		}
		slog.Error("record delete failed", "error", err, "record_id", id)
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "delete_failed"})
		return
	}

	_ = json.NewEncoder(w).Encode(map[string]bool{"ok": true})
}

// Groups handles GET /api/finance/{scope}/records/groups: the parent/child
// display view over active records.
func (h *RecordHandler) Groups(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	store, ok := h.store(w, r)
	if !ok {
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"groups": ledger.GroupTransactions(store.List())})
}

// Stats handles GET /api/finance/{scope}/stats.
func (h *RecordHandler) Stats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	store, ok := h.store(w, r)
	if !ok {
		return
	}
	_ = json.NewEncoder(w).Encode(ledger.ComputeStats(store.List()))
}
