// Package budget keeps the monthly category budgets: a smaller local-first
// store parallel to the ledger, keyed by "YYYY-MM", merged independently.
package budget

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ddreams3d/backend/internal/blob"
	"github.com/ddreams3d/backend/internal/model"
)

// ErrNotFound is returned when a month or item id does not exist.
var ErrNotFound = errors.New("budget item not found")

// ErrBadMonth is returned for keys that are not "YYYY-MM".
var ErrBadMonth = errors.New("month must be YYYY-MM")

// Store holds budgets for all months in memory and writes the whole map
// through to its blob slot on every mutation, like the ledger store. Unlike
// ledger records, removal is a true delete: budgets have no downstream
// mirror or reconciliation dependency beyond the merge rule below.
type Store struct {
	mu      sync.RWMutex
	local   blob.Store
	key     string
	budgets model.MonthlyBudgets
}

// New creates a Store over the given local slot. Call Load before use.
func New(local blob.Store, key string) *Store {
	return &Store{local: local, key: key, budgets: model.MonthlyBudgets{}}
}

// Key returns the slot key this store persists to.
func (s *Store) Key() string {
	return s.key
}

// Load hydrates the map from the local slot; absence means no budgets yet.
func (s *Store) Load(ctx context.Context) error {
	data, err := s.local.Load(ctx, s.key)
	if errors.Is(err, blob.ErrNotFound) {
		s.mu.Lock()
		s.budgets = model.MonthlyBudgets{}
		s.mu.Unlock()
		return nil
	}
	if err != nil {
		return err
	}
	var budgets model.MonthlyBudgets
	if err := json.Unmarshal(data, &budgets); err != nil {
		return fmt.Errorf("budget: parse slot %s: %w", s.key, err)
	}
	if budgets == nil {
		budgets = model.MonthlyBudgets{}
	}
	s.mu.Lock()
	s.budgets = budgets
	s.mu.Unlock()
	return nil
}

// Month returns the items of one month (possibly empty, never nil).
func (s *Store) Month(month string) ([]model.MonthlyBudgetItem, error) {
	if err := validMonth(month); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]model.MonthlyBudgetItem, len(s.budgets[month]))
	copy(items, s.budgets[month])
	return items, nil
}

// All returns a copy of the full month→items map.
func (s *Store) All() model.MonthlyBudgets {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(model.MonthlyBudgets, len(s.budgets))
	for k, v := range s.budgets {
		items := make([]model.MonthlyBudgetItem, len(v))
		copy(items, v)
		out[k] = items
	}
	return out
}

// AddItem appends a new item to a month and persists.
func (s *Store) AddItem(ctx context.Context, month string, item model.MonthlyBudgetItem) (*model.MonthlyBudgetItem, error) {
	if err := validMonth(month); err != nil {
		return nil, err
	}
	if item.Label == "" {
		return nil, errors.New("budget: label is required")
	}
	if !item.Amount.IsPositive() {
		return nil, errors.New("budget: amount must be positive")
	}
	item.ID = uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.budgets[month] = append(s.budgets[month], item)
	if err := s.persistLocked(ctx); err != nil {
		s.budgets[month] = s.budgets[month][:len(s.budgets[month])-1]
		return nil, err
	}
	return &item, nil
}

// UpdateItem patches an existing item and persists.
func (s *Store) UpdateItem(ctx context.Context, month, id string, patch model.BudgetItemPatch) (*model.MonthlyBudgetItem, error) {
	if err := validMonth(month); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.budgets[month]
	for i := range items {
		if items[i].ID != id {
			continue
		}
		updated := items[i]
		if patch.Label != nil {
			updated.Label = *patch.Label
		}
		if patch.Amount != nil {
			if !patch.Amount.IsPositive() {
				return nil, errors.New("budget: amount must be positive")
			}
			updated.Amount = *patch.Amount
		}
		if patch.LinkedCategory != nil {
			updated.LinkedCategory = *patch.LinkedCategory
		}
		prev := items[i]
		items[i] = updated
		if err := s.persistLocked(ctx); err != nil {
			items[i] = prev
			return nil, err
		}
		return &updated, nil
	}
	return nil, ErrNotFound
}

// RemoveItem deletes an item for good, no tombstone.
func (s *Store) RemoveItem(ctx context.Context, month, id string) error {
	if err := validMonth(month); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.budgets[month]
	for i := range items {
		if items[i].ID != id {
			continue
		}
		prev := make([]model.MonthlyBudgetItem, len(items))
		copy(prev, items)
		s.budgets[month] = append(items[:i], items[i+1:]...)
		if err := s.persistLocked(ctx); err != nil {
			s.budgets[month] = prev
			return err
		}
		return nil
	}
	return ErrNotFound
}

// CopyPreviousMonth duplicates the prior month's items under month with
// fresh ids. It is a one-time copy, not a live link: later edits to either
// month do not affect the other.
func (s *Store) CopyPreviousMonth(ctx context.Context, month string) ([]model.MonthlyBudgetItem, error) {
	if err := validMonth(month); err != nil {
		return nil, err
	}
	t, _ := time.Parse("2006-01", month)
	prevKey := t.AddDate(0, -1, 0).Format("2006-01")

	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.budgets[prevKey]
	if len(prev) == 0 {
		return nil, ErrNotFound
	}
	copied := make([]model.MonthlyBudgetItem, 0, len(prev))
	for _, item := range prev {
		item.ID = uuid.NewString()
		copied = append(copied, item)
	}
	before := s.budgets[month]
	s.budgets[month] = append(s.budgets[month], copied...)
	if err := s.persistLocked(ctx); err != nil {
		s.budgets[month] = before
		return nil, err
	}
	return copied, nil
}

// ReplaceAll swaps the whole map for a merged result and persists it
// (the reconciler's publish path).
func (s *Store) ReplaceAll(ctx context.Context, budgets model.MonthlyBudgets) error {
	if budgets == nil {
		budgets = model.MonthlyBudgets{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.budgets
	s.budgets = budgets
	if err := s.persistLocked(ctx); err != nil {
		s.budgets = prev
		return err
	}
	return nil
}

func (s *Store) persistLocked(ctx context.Context) error {
	data, err := json.Marshal(s.budgets)
	if err != nil {
		return fmt.Errorf("budget: marshal slot %s: %w", s.key, err)
	}
	return s.local.Save(ctx, s.key, data)
}

func validMonth(month string) error {
	if _, err := time.Parse("2006-01", month); err != nil {
		return ErrBadMonth
	}
	return nil
}

// Merge unions two budget maps per month, keyed by item id. When the same
// item id exists on both sides the local version wins unconditionally:
// budget items carry no updatedAt, so there is no timestamp to compare.
func Merge(local, remote model.MonthlyBudgets) model.MonthlyBudgets {
	merged := make(model.MonthlyBudgets, len(local)+len(remote))

	months := make(map[string]struct{}, len(local)+len(remote))
	for m := range remote {
		months[m] = struct{}{}
	}
	for m := range local {
		months[m] = struct{}{}
	}

	for m := range months {
		localItems := local[m]
		localIDs := make(map[string]struct{}, len(localItems))
		items := make([]model.MonthlyBudgetItem, 0, len(localItems))
		for _, it := range localItems {
			localIDs[it.ID] = struct{}{}
			items = append(items, it)
		}
		for _, it := range remote[m] {
			if _, ok := localIDs[it.ID]; !ok {
				items = append(items, it)
			}
		}
		if len(items) > 0 {
			merged[m] = items
		}
	}
	return merged
}
