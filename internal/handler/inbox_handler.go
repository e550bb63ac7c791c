package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ddreams3d/backend/internal/inbox"
	"github.com/ddreams3d/backend/internal/ledger"
	"github.com/ddreams3d/backend/internal/model"
)

// InboxHandler serves the bot inbox: listing, bot ingestion, approval into a
// ledger and removal.
type InboxHandler struct {
	svc     *inbox.Service
	ledgers map[string]*ledger.Store
}

func NewInboxHandler(svc *inbox.Service, ledgers map[string]*ledger.Store) *InboxHandler {
	return &InboxHandler{svc: svc, ledgers: ledgers}
}

// List handles GET /api/finance/inbox.
func (h *InboxHandler) List(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	items, err := h.svc.List(r.Context())
	if err != nil {
		slog.Error("inbox list failed", "error", err)
		w.WriteHeader(http.StatusBadGateway)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "inbox_unavailable"})
		return
	}
	if items == nil {
		items = []model.InboxItem{}
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"items": items})
}

// Append handles POST /api/finance/inbox: the bot's ingestion endpoint.
// Redelivery of an already-seen item id succeeds without duplicating it.
func (h *InboxHandler) Append(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var item model.InboxItem
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid_json"})
		return
	}

	if item.ID == "" {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "id_required"})
		return
	}

	ok, err := h.svc.Append(r.Context(), item)
	if err != nil {
		slog.Error("inbox append failed", "error", err, "item_id", item.ID)
		w.WriteHeader(http.StatusBadGateway)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "append_failed"})
		return
	}

	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]bool{"ok": ok})
}

// Approve handles POST /api/finance/inbox/{id}/approve. The body carries the
// target scope and an optional record draft overriding the item's fields.
func (h *InboxHandler) Approve(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	itemID := r.PathValue("id")

	var req struct {
		Scope  string             `json:"scope"`
		Record model.LedgerRecord `json:"record"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid_json"})
		return
	}
	if req.Scope == "" {
		req.Scope = "company"
	}
	store, ok := h.ledgers[req.Scope]
	if !ok {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "unknown_scope"})
		return
	}

	rec, err := h.svc.Approve(r.Context(), itemID, store, req.Record)
	if err != nil {
		if errors.Is(err, inbox.ErrNotFound) {
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "not_found"})
			return
		}
		if ledger.IsValidation(err) {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
			return
		}
		slog.Error("inbox approve failed", "error", err, "item_id", itemID)
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "approve_failed"})
		return
	}

	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(rec)
}

// Remove handles POST /api/finance/inbox/remove with a list of item ids.
func (h *InboxHandler) Remove(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var req struct {
		IDs []string `json:"ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid_json"})
		return
	}
	if len(req.IDs) == 0 {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "ids_required"})
		return
	}

	if err := h.svc.Remove(r.Context(), req.IDs); err != nil {
		slog.Error("inbox remove failed", "error", err)
		w.WriteHeader(http.StatusBadGateway)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "remove_failed"})
		return
	}

	_ = json.NewEncoder(w).Encode(map[string]bool{"ok": true})
}
