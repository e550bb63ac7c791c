package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ddreams3d/backend/internal/budget"
	"github.com/ddreams3d/backend/internal/ledger"
	"github.com/ddreams3d/backend/internal/settings"
	"github.com/ddreams3d/backend/internal/syncer"
)

// SyncHandler runs full reconciliations against the remote slot store.
type SyncHandler struct {
	reconciler *syncer.Reconciler
	ledgers    map[string]*ledger.Store
	budgets    map[string]*budget.Store
	settings   *settings.Store
}

func NewSyncHandler(rec *syncer.Reconciler, ledgers map[string]*ledger.Store, budgets map[string]*budget.Store, st *settings.Store) *SyncHandler {
	return &SyncHandler{reconciler: rec, ledgers: ledgers, budgets: budgets, settings: st}
}

type slotResult struct {
	Key   string `json:"key"`
	Count int    `json:"count,omitempty"`
	Error string `json:"error,omitempty"`
}

// Sync handles POST /api/finance/sync. Each slot is reconciled independently;
// one slot failing does not stop the others, and the response carries the
// per-slot outcome so the client can surface partial failures.
func (h *SyncHandler) Sync(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	ctx := r.Context()
	results := make([]slotResult, 0, len(h.ledgers)+len(h.budgets)+1)
	failed := false

	for _, scope := range []string{"company", "personal"} {
		store, ok := h.ledgers[scope]
		if !ok {
			continue
		}
		res := slotResult{Key: store.Key()}
		merged, err := h.reconciler.SyncRecords(ctx, store)
		if err != nil {
			failed = true
			res.Error = syncErrorCode(err)
			slog.Error("record sync failed", "error", err, "key", store.Key())
		} else {
			res.Count = len(merged)
		}
		results = append(results, res)
	}

	for _, scope := range []string{"company", "personal"} {
		store, ok := h.budgets[scope]
		if !ok {
			continue
		}
		res := slotResult{Key: store.Key()}
		merged, err := h.reconciler.SyncBudgets(ctx, store)
		if err != nil {
			failed = true
			res.Error = syncErrorCode(err)
			slog.Error("budget sync failed", "error", err, "key", store.Key())
		} else {
			res.Count = len(merged)
		}
		results = append(results, res)
	}

	res := slotResult{Key: h.settings.Key()}
	if _, err := h.reconciler.SyncSettings(ctx, h.settings); err != nil {
		failed = true
		res.Error = syncErrorCode(err)
		slog.Error("settings sync failed", "error", err, "key", h.settings.Key())
	}
	results = append(results, res)

	status := http.StatusOK
	if failed {
		status = http.StatusBadGateway
	}
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"ok": !failed, "slots": results})
}

func syncErrorCode(err error) string {
	var pe *syncer.ParseError
	if errors.As(err, &pe) {
		return "corrupt_remote"
	}
	var se *syncer.SyncError
	if errors.As(err, &se) {
		return se.Op + "_failed"
	}
	return "sync_failed"
}
