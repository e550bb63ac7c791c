// Package syncer reconciles the local stores with their remote snapshot
// slots. A sync is fetch → merge → push → publish locally, awaited in that
// order; it is not cancellable mid-flight, and retries are caller-initiated.
//
// The remote slot is read-modify-write with no optimistic-concurrency guard:
// a second device syncing between this device's fetch and push can be
// overwritten.
package syncer

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/ddreams3d/backend/internal/blob"
	"github.com/ddreams3d/backend/internal/budget"
	"github.com/ddreams3d/backend/internal/ledger"
	"github.com/ddreams3d/backend/internal/model"
	"github.com/ddreams3d/backend/internal/settings"
)

// Reconciler merges local and remote copies of the ledger, budget and
// settings stores and publishes the merged result to both sides. The merge
// itself never fails; only the I/O around it can.
type Reconciler struct {
	remote blob.Store
}

// New creates a Reconciler over the remote slot store.
func New(remote blob.Store) *Reconciler {
	return &Reconciler{remote: remote}
}

// fetch loads and decodes the remote copy into out. An absent slot is an
// empty baseline (first sync from this side), not an error. A slot that
// exists but does not decode is a ParseError and aborts the sync.
func (r *Reconciler) fetch(ctx context.Context, key string, out any) error {
	data, err := r.remote.Load(ctx, key)
	if errors.Is(err, blob.ErrNotFound) {
		return nil
	}
	if err != nil {
		return &SyncError{Op: "fetch", Key: key, Err: err}
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &ParseError{Key: key, Err: err}
	}
	return nil
}

// push encodes v and writes it to the remote slot.
func (r *Reconciler) push(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return &SyncError{Op: "push", Key: key, Err: err}
	}
	if err := r.remote.Save(ctx, key, data); err != nil {
		return &SyncError{Op: "push", Key: key, Err: err}
	}
	return nil
}

// SyncRecords reconciles one ledger store against its remote slot and
// returns the merged record list (tombstones included). The local store is
// only updated after the push has been acknowledged; a push failure leaves
// local state exactly as it was.
func (r *Reconciler) SyncRecords(ctx context.Context, store *ledger.Store) ([]model.LedgerRecord, error) {
	key := store.Key()

	var remote []model.LedgerRecord
	if err := r.fetch(ctx, key, &remote); err != nil {
		return nil, err
	}

	merged := ledger.MergeRecords(store.ListAll(), remote)

	if err := r.push(ctx, key, merged); err != nil {
		return nil, err
	}
	if err := store.ReplaceAll(ctx, merged); err != nil {
		// Remote already holds the merged copy; local is stale until the next
		// sync. There is no distributed transaction to prevent this window.
		return nil, &SyncError{Op: "publish", Key: key, Err: err}
	}

	slog.Info("records synced", "key", key, "count", len(merged))
	return merged, nil
}

// SyncBudgets reconciles a budget store against its remote slot.
func (r *Reconciler) SyncBudgets(ctx context.Context, store *budget.Store) (model.MonthlyBudgets, error) {
	key := store.Key()

	var remote model.MonthlyBudgets
	if err := r.fetch(ctx, key, &remote); err != nil {
		return nil, err
	}

	merged := budget.Merge(store.All(), remote)

	if err := r.push(ctx, key, merged); err != nil {
		return nil, err
	}
	if err := store.ReplaceAll(ctx, merged); err != nil {
		return nil, &SyncError{Op: "publish", Key: key, Err: err}
	}

	slog.Info("budgets synced", "key", key, "months", len(merged))
	return merged, nil
}

// SyncSettings reconciles the settings store against its remote slot using
// the whole-object latest-wins rule.
func (r *Reconciler) SyncSettings(ctx context.Context, store *settings.Store) (model.RateSettings, error) {
	key := store.Key()

	local := store.Get()
	remote := local // absent remote keeps the local object as baseline
	remoteRaw, err := r.remote.Load(ctx, key)
	switch {
	case errors.Is(err, blob.ErrNotFound):
	case err != nil:
		return model.RateSettings{}, &SyncError{Op: "fetch", Key: key, Err: err}
	default:
		var decoded model.RateSettings
		if err := json.Unmarshal(remoteRaw, &decoded); err != nil {
			return model.RateSettings{}, &ParseError{Key: key, Err: err}
		}
		remote = decoded
	}

	merged := settings.Merge(local, remote)

	if err := r.push(ctx, key, merged); err != nil {
		return model.RateSettings{}, err
	}
	if err := store.Replace(ctx, merged); err != nil {
		return model.RateSettings{}, &SyncError{Op: "publish", Key: key, Err: err}
	}

	slog.Info("settings synced", "key", key, "updatedAt", merged.UpdatedAt)
	return merged, nil
}
