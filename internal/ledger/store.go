package ledger

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

// Store is a local-first collection of ledger records backed by one blob
// slot. Every mutation persists the full list synchronously before returning
// (write-through): there is never a dirty-but-unflushed window visible to
// other readers. Deletes are tombstones, never physical removals, so they
// propagate through sync instead of being resurrected by a stale remote copy.
type Store struct {
	mu      sync.RWMutex
	local   blob.Store
	key     string
	records []model.LedgerRecord

	// mirror receives the synthesized personal income record when a company
	// expense is filed under the owner-withdrawal category.
	mirror *Store

	now func() int64
}

// New creates a Store over the given local slot. Call Load before use.
func New(local blob.Store, key string) *Store {
	return &Store{
		local: local,
		key:   key,
		now:   func() int64 { return time.Now().UnixMilli() },
	}
}

// SetMirror wires the personal ledger that receives owner-withdrawal mirrors.
// Only the company store has one.
func (s *Store) SetMirror(mirror *Store) {
	s.mirror = mirror
}

// Key returns the slot key this store persists to.
func (s *Store) Key() string {
	return s.key
}

// Load hydrates the in-memory list from the local slot. An absent slot is an
// empty ledger, not an error.
func (s *Store) Load(ctx context.Context) error {
	data, err := s.local.Load(ctx, s.key)
	if errors.Is(err, blob.ErrNotFound) {
		s.mu.Lock()
		s.records = nil
		s.mu.Unlock()
		return nil
	}
	if err != nil {
		return err
	}
	var records []model.LedgerRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return fmt.Errorf("ledger: parse slot %s: %w", s.key, err)
	}
	s.mu.Lock()
	s.records = records
	s.mu.Unlock()
	return nil
}

// Create validates the record, assigns id and timestamps, prepends it and
// persists. When the record is a company expense in the reserved
// owner-withdrawal category, a mirrored income record is created on the
// personal ledger as a side effect: money leaving the business as an owner
// draw must always show up as incoming on the personal side. The mirror is
// not retracted when the original is later edited or deleted.
func (s *Store) Create(ctx context.Context, rec *model.LedgerRecord) (*model.LedgerRecord, error) {
	if err := validate(rec); err != nil {
		return nil, err
	}

	s.mu.Lock()
	now := s.now()
	rec.ID = uuid.NewString()
	rec.CreatedAt = now
	rec.UpdatedAt = now
	rec.Deleted = false
	s.records = append([]model.LedgerRecord{*rec}, s.records...)
	if err := s.persistLocked(ctx); err != nil {
		s.records = s.records[1:]
		s.mu.Unlock()
		return nil, err
	}
	s.mu.Unlock()

	if s.mirror != nil && rec.Type == model.Expense && rec.Category == model.ReservedOwnerWithdrawalCategory {
		mirrored := &model.LedgerRecord{
			Date:          rec.Date,
			Type:          model.Income,
			Title:         rec.Title,
			Amount:        rec.Amount,
			Currency:      rec.Currency,
			Status:        rec.Status,
			PaymentMethod: rec.PaymentMethod,
			Category:      model.ReservedCompanyIncomeCategory,
			PaymentPhase:  model.PhaseFull,
			Notes:         "Espejo de retiro del dueño",
		}
		if _, err := s.mirror.Create(ctx, mirrored); err != nil {
			return nil, fmt.Errorf("ledger: mirror owner withdrawal: %w", err)
		}
	}

	return rec, nil
}

// Update merges the patch into an existing record and bumps UpdatedAt.
func (s *Store) Update(ctx context.Context, id string, patch model.RecordPatch) (*model.LedgerRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.records {
		if s.records[i].ID != id {
			continue
		}
		updated := s.records[i]
		applyPatch(&updated, patch)
		if err := validate(&updated); err != nil {
			return nil, err
		}
		updated.UpdatedAt = s.bump(updated.UpdatedAt)
		prev := s.records[i]
		s.records[i] = updated
		if err := s.persistLocked(ctx); err != nil {
			s.records[i] = prev
			return nil, err
		}
		return &updated, nil
	}
	return nil, ErrNotFound
}

// Delete tombstones a record and bumps UpdatedAt. The record stays in the
// slot; it only disappears from the active view.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.records {
		if s.records[i].ID != id {
			continue
		}
		prev := s.records[i]
		s.records[i].Deleted = true
		s.records[i].UpdatedAt = s.bump(prev.UpdatedAt)
		if err := s.persistLocked(ctx); err != nil {
			s.records[i] = prev
			return err
		}
		return nil
	}
	return ErrNotFound
}

// Get returns a record by id, tombstoned or not.
func (s *Store) Get(id string) (*model.LedgerRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.records {
		if s.records[i].ID == id {
			rec := s.records[i]
			return &rec, nil
		}
	}
	return nil, ErrNotFound
}

// List returns all non-tombstoned records in stored order (newest first).
func (s *Store) List() []model.LedgerRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.LedgerRecord, 0, len(s.records))
	for _, r := range s.records {
		if !r.Deleted {
			out = append(out, r)
		}
	}
	return out
}

// ListAll returns every record including tombstones. This is the input the
// sync reconciler needs: merging only the active view would lose deletions.
func (s *Store) ListAll() []model.LedgerRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.LedgerRecord, len(s.records))
	copy(out, s.records)
	return out
}

// FindByInboxID returns the record (tombstoned or not) created from the given
// inbox item, if any.
func (s *Store) FindByInboxID(inboxID string) *model.LedgerRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.records {
		if s.records[i].OriginInboxID == inboxID {
			rec := s.records[i]
			return &rec
		}
	}
	return nil
}

// ReplaceAll swaps the whole list for a merged result and persists it. This
// is the reconciler's publish path; it does not touch timestamps.
func (s *Store) ReplaceAll(ctx context.Context, records []model.LedgerRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.records
	s.records = records
	if err := s.persistLocked(ctx); err != nil {
		s.records = prev
		return err
	}
	return nil
}

// bump returns the current clock, advanced past prev so that every mutation
// produces a strictly greater UpdatedAt even within one millisecond.
func (s *Store) bump(prev int64) int64 {
	now := s.now()
	if now <= prev {
		return prev + 1
	}
	return now
}

func (s *Store) persistLocked(ctx context.Context) error {
	data, err := json.Marshal(s.records)
	if err != nil {
		return fmt.Errorf("ledger: marshal slot %s: %w", s.key, err)
	}
	return s.local.Save(ctx, s.key, data)
}

func validate(rec *model.LedgerRecord) error {
	if rec.Title == "" {
		return &ValidationError{Field: "title", Reason: "required"}
	}
	if !rec.Type.IsValid() {
		return &ValidationError{Field: "type", Reason: "must be income or expense"}
	}
	if rec.Amount.IsNegative() {
		return &ValidationError{Field: "amount", Reason: "must not be negative"}
	}
	if !rec.Currency.IsValid() {
		return &ValidationError{Field: "currency", Reason: "must be PEN or USD"}
	}
	if !rec.Status.IsValid() {
		return &ValidationError{Field: "status", Reason: "unknown status"}
	}
	if !rec.PaymentMethod.IsValid() {
		return &ValidationError{Field: "paymentMethod", Reason: "unknown payment method"}
	}
	if rec.Type == model.Expense && !rec.ExpenseType.IsValid() {
		return &ValidationError{Field: "expenseType", Reason: "required for expenses"}
	}
	if rec.Type == model.Income && rec.PaymentPhase != "" && !rec.PaymentPhase.IsValid() {
		return &ValidationError{Field: "paymentPhase", Reason: "unknown payment phase"}
	}
	return nil
}

func applyPatch(rec *model.LedgerRecord, p model.RecordPatch) {
	if p.Date != nil {
		rec.Date = *p.Date
	}
	if p.Title != nil {
		rec.Title = *p.Title
	}
	if p.ClientName != nil {
		rec.ClientName = *p.ClientName
	}
	if p.ClientContact != nil {
		rec.ClientContact = *p.ClientContact
	}
	if p.ClientRUC != nil {
		rec.ClientRUC = *p.ClientRUC
	}
	if p.Amount != nil {
		rec.Amount = *p.Amount
	}
	if p.Currency != nil {
		rec.Currency = *p.Currency
	}
	if p.Status != nil {
		rec.Status = *p.Status
	}
	if p.PaymentMethod != nil {
		rec.PaymentMethod = *p.PaymentMethod
	}
	if p.Category != nil {
		rec.Category = *p.Category
	}
	if p.Source != nil {
		rec.Source = *p.Source
	}
	if p.ExpenseType != nil {
		rec.ExpenseType = *p.ExpenseType
	}
	if p.PaymentPhase != nil {
		rec.PaymentPhase = *p.PaymentPhase
	}
	if p.GroupID != nil {
		rec.GroupID = *p.GroupID
	}
	if p.TotalSaleAmount != nil {
		rec.TotalSaleAmount = p.TotalSaleAmount
	}
	if p.Items != nil {
		rec.Items = *p.Items
	}
	if p.Notes != nil {
		rec.Notes = *p.Notes
	}
	if p.Snapshot != nil {
		rec.ProductionSnapshot = p.Snapshot
	}
}
