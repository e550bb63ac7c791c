package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/ddreams3d/backend/internal/blob"
	"github.com/ddreams3d/backend/internal/model"
)

// memStore is an in-memory blob.Store with an injectable save failure.
type memStore struct {
	data    map[string][]byte
	saveErr error
}

func newMemStore() *memStore {
	return &memStore{data: map[string][]byte{}}
}

func (m *memStore) Load(_ context.Context, key string) ([]byte, error) {
	data, ok := m.data[key]
	if !ok {
		return nil, blob.ErrNotFound
	}
	return data, nil
}

func (m *memStore) Save(_ context.Context, key string, data []byte) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.data[key] = data
	return nil
}

func validRecord() *model.LedgerRecord {
	return &model.LedgerRecord{
		Date:          "2026-04-01",
		Type:          model.Income,
		Title:         "Venta llavero",
		Amount:        decimal.NewFromInt(35),
		Currency:      model.PEN,
		Status:        model.StatusPaid,
		PaymentMethod: model.PayYape,
		Category:      "Venta de Productos",
	}
}

func TestStore_CreateAssignsIDAndPersists(t *testing.T) {
	ctx := context.Background()
	mem := newMemStore()
	store := New(mem, "finance_records")

	created, err := store.Create(ctx, validRecord())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.ID == "" {
		t.Error("expected a generated id")
	}
	if created.CreatedAt == 0 || created.UpdatedAt != created.CreatedAt {
		t.Errorf("timestamps not set: %+v", created)
	}

	// write-through: the slot holds the record before Create returns
	var persisted []model.LedgerRecord
	if err := json.Unmarshal(mem.data["finance_records"], &persisted); err != nil {
		t.Fatalf("slot not valid JSON: %v", err)
	}
	if len(persisted) != 1 || persisted[0].ID != created.ID {
		t.Errorf("slot content mismatch: %+v", persisted)
	}
}

func TestStore_CreateValidation(t *testing.T) {
	ctx := context.Background()
	store := New(newMemStore(), "finance_records")

	cases := []struct {
		name   string
		mutate func(*model.LedgerRecord)
	}{
		{"missing title", func(r *model.LedgerRecord) { r.Title = "" }},
		{"bad type", func(r *model.LedgerRecord) { r.Type = "transfer" }},
		{"negative amount", func(r *model.LedgerRecord) { r.Amount = decimal.NewFromInt(-1) }},
		{"bad currency", func(r *model.LedgerRecord) { r.Currency = "EUR" }},
		{"bad status", func(r *model.LedgerRecord) { r.Status = "maybe" }},
		{"expense without expense type", func(r *model.LedgerRecord) { r.Type = model.Expense }},
	}
	for _, tc := range cases {
		rec := validRecord()
		tc.mutate(rec)
		if _, err := store.Create(ctx, rec); !IsValidation(err) {
			t.Errorf("%s: expected validation error, got %v", tc.name, err)
		}
	}

	if records := store.List(); len(records) != 0 {
		t.Errorf("rejected records must not be stored, got %d", len(records))
	}
}

func TestStore_CreateRollsBackOnPersistFailure(t *testing.T) {
	ctx := context.Background()
	mem := newMemStore()
	mem.saveErr = errors.New("disk full")
	store := New(mem, "finance_records")

	if _, err := store.Create(ctx, validRecord()); err == nil {
		t.Fatal("expected persist error")
	}
	if len(store.List()) != 0 {
		t.Error("failed create must not leave the record in memory")
	}
}

func TestStore_UpdateBumpsTimestamp(t *testing.T) {
	ctx := context.Background()
	store := New(newMemStore(), "finance_records")

	clock := int64(1000)
	store.now = func() int64 { return clock }

	created, err := store.Create(ctx, validRecord())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// clock has not advanced; the bump must still be strictly greater
	title := "Venta llavero XL"
	updated, err := store.Update(ctx, created.ID, model.RecordPatch{Title: &title})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.UpdatedAt <= created.UpdatedAt {
		t.Errorf("UpdatedAt must strictly increase: %d <= %d", updated.UpdatedAt, created.UpdatedAt)
	}
	if updated.Title != title {
		t.Errorf("patch not applied: %q", updated.Title)
	}
	if updated.Amount.Cmp(created.Amount) != 0 {
		t.Error("unpatched fields must keep their values")
	}
}

func TestStore_UpdateUnknownID(t *testing.T) {
	store := New(newMemStore(), "finance_records")
	title := "x"
	if _, err := store.Update(context.Background(), "nope", model.RecordPatch{Title: &title}); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_DeleteTombstones(t *testing.T) {
	ctx := context.Background()
	store := New(newMemStore(), "finance_records")

	created, _ := store.Create(ctx, validRecord())
	if err := store.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if len(store.List()) != 0 {
		t.Error("tombstoned record must leave the active view")
	}
	all := store.ListAll()
	if len(all) != 1 || !all[0].Deleted {
		t.Errorf("tombstone must stay in the slot: %+v", all)
	}
	if all[0].UpdatedAt <= created.UpdatedAt {
		t.Error("delete must bump UpdatedAt so the tombstone wins the merge")
	}

	got, err := store.Get(created.ID)
	if err != nil || !got.Deleted {
		t.Errorf("Get must still find the tombstone: %+v, %v", got, err)
	}
}

func TestStore_OwnerWithdrawalMirrors(t *testing.T) {
	ctx := context.Background()
	mem := newMemStore()
	company := New(mem, "finance_records")
	personal := New(mem, "personal_finance_records")
	company.SetMirror(personal)

	withdrawal := validRecord()
	withdrawal.Type = model.Expense
	withdrawal.ExpenseType = model.ExpenseFixed
	withdrawal.Category = model.ReservedOwnerWithdrawalCategory
	withdrawal.Title = "Retiro mensual"
	withdrawal.Amount = decimal.NewFromInt(500)

	if _, err := company.Create(ctx, withdrawal); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	mirrored := personal.List()
	if len(mirrored) != 1 {
		t.Fatalf("expected 1 mirrored record, got %d", len(mirrored))
	}
	m := mirrored[0]
	if m.Type != model.Income {
		t.Errorf("mirror must be income, got %s", m.Type)
	}
	if m.Category != model.ReservedCompanyIncomeCategory {
		t.Errorf("mirror category: got %q", m.Category)
	}
	if !m.Amount.Equal(withdrawal.Amount) {
		t.Errorf("mirror amount: got %s", m.Amount)
	}

	// ordinary expenses do not mirror
	plain := validRecord()
	plain.Type = model.Expense
	plain.ExpenseType = model.ExpenseVariable
	plain.Category = "Publicidad (Ads)"
	if _, err := company.Create(ctx, plain); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if len(personal.List()) != 1 {
		t.Error("non-withdrawal expense must not mirror")
	}
}

func TestStore_LoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	mem := newMemStore()

	first := New(mem, "finance_records")
	created, _ := first.Create(ctx, validRecord())
	_ = first.Delete(ctx, created.ID)

	second := New(mem, "finance_records")
	if err := second.Load(ctx); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	all := second.ListAll()
	if len(all) != 1 || !all[0].Deleted {
		t.Errorf("reloaded store must see the tombstone: %+v", all)
	}
}

func TestStore_LoadAbsentSlot(t *testing.T) {
	store := New(newMemStore(), "finance_records")
	if err := store.Load(context.Background()); err != nil {
		t.Fatalf("absent slot is an empty ledger, got %v", err)
	}
	if len(store.ListAll()) != 0 {
		t.Error("expected empty ledger")
	}
}

func TestStore_FindByInboxID(t *testing.T) {
	ctx := context.Background()
	store := New(newMemStore(), "finance_records")

	rec := validRecord()
	rec.OriginInboxID = "tg-77"
	created, _ := store.Create(ctx, rec)
	_ = store.Delete(ctx, created.ID)

	found := store.FindByInboxID("tg-77")
	if found == nil || found.ID != created.ID {
		t.Errorf("provenance lookup must include tombstones, got %+v", found)
	}
	if store.FindByInboxID("unknown") != nil {
		t.Error("unknown inbox id must return nil")
	}
}
