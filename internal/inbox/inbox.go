// Package inbox is the boundary to bot-originated candidate transactions.
// The inbox lives in a single remote slot; items are appended by the bot and
// approved by the admin into ledger records. Approval is idempotent: one
// inbox id produces at most one ledger record, ever.
package inbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ddreams3d/backend/internal/blob"
	"github.com/ddreams3d/backend/internal/ledger"
	"github.com/ddreams3d/backend/internal/model"
)

// ErrNotFound is returned when an inbox item id does not exist.
var ErrNotFound = errors.New("inbox item not found")

// Service reads and mutates the shared inbox slot. All operations are
// fetch-modify-write on the remote copy, like the original bot pipeline.
type Service struct {
	remote blob.Store
	key    string

	now func() int64
}

// New creates a Service over the remote inbox slot.
func New(remote blob.Store, key string) *Service {
	return &Service{
		remote: remote,
		key:    key,
		now:    func() int64 { return time.Now().UnixMilli() },
	}
}

func (s *Service) load(ctx context.Context) ([]model.InboxItem, error) {
	data, err := s.remote.Load(ctx, s.key)
	if errors.Is(err, blob.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var items []model.InboxItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("inbox: parse slot %s: %w", s.key, err)
	}
	return items, nil
}

func (s *Service) save(ctx context.Context, items []model.InboxItem) error {
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("inbox: marshal slot %s: %w", s.key, err)
	}
	return s.remote.Save(ctx, s.key, data)
}

// List returns the inbox contents. An absent slot is an empty inbox.
func (s *Service) List(ctx context.Context) ([]model.InboxItem, error) {
	return s.load(ctx)
}

// Append adds a bot item unless its id is already present. Returns true when
// the item ended up in the inbox (either now or on an earlier call); item
// ids are deterministic on the bot side, so redelivery is a no-op.
func (s *Service) Append(ctx context.Context, item model.InboxItem) (bool, error) {
	if item.ID == "" {
		return false, errors.New("inbox: item id is required")
	}
	items, err := s.load(ctx)
	if err != nil {
		return false, err
	}
	for _, existing := range items {
		if existing.ID == item.ID {
			slog.Debug("duplicate inbox item skipped", "id", item.ID)
			return true, nil
		}
	}
	if item.Status == "" {
		item.Status = model.InboxPending
	}
	if item.CreatedAt == 0 {
		item.CreatedAt = s.now()
	}
	if err := s.save(ctx, append(items, item)); err != nil {
		return false, err
	}
	return true, nil
}

// Approve turns one inbox item into a ledger record on the given store,
// filling whatever the draft leaves blank from the item itself. The created
// record carries the inbox id as provenance; approving the same id again
// returns the record created the first time (even if it has since been
// tombstoned) and never duplicates it.
func (s *Service) Approve(ctx context.Context, itemID string, store *ledger.Store, draft model.LedgerRecord) (*model.LedgerRecord, error) {
	if existing := store.FindByInboxID(itemID); existing != nil {
		return existing, nil
	}

	items, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	idx := -1
	for i := range items {
		if items[i].ID == itemID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, ErrNotFound
	}
	item := items[idx]

	if draft.Title == "" {
		draft.Title = item.Description
	}
	if draft.Type == "" {
		draft.Type = item.Type
	}
	if draft.Amount.IsZero() {
		draft.Amount = item.Amount
	}
	if draft.Currency == "" {
		draft.Currency = item.Currency
	}
	if draft.Date == "" {
		draft.Date = item.Date
	}
	if draft.Status == "" {
		draft.Status = model.StatusPaid
	}
	if draft.PaymentMethod == "" {
		draft.PaymentMethod = model.PayOther
	}
	draft.OriginInboxID = item.ID

	rec, err := store.Create(ctx, &draft)
	if err != nil {
		return nil, err
	}

	// Flag the item processed. If this write fails the record already exists
	// and the item stays pending; a re-approval is absorbed by the
	// provenance check above, so nothing is duplicated.
	items[idx].Status = model.InboxProcessed
	if err := s.save(ctx, items); err != nil {
		slog.Error("inbox item created record but could not be flagged", "id", item.ID, "error", err)
	}
	return rec, nil
}

// Remove deletes items from the inbox by id (fetch, filter, upload).
func (s *Service) Remove(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	items, err := s.load(ctx)
	if err != nil {
		return err
	}
	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	kept := items[:0]
	for _, item := range items {
		if _, ok := drop[item.ID]; !ok {
			kept = append(kept, item)
		}
	}
	return s.save(ctx, kept)
}
