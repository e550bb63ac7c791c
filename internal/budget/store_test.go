package budget

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/ddreams3d/backend/internal/blob"
	"github.com/ddreams3d/backend/internal/model"
)

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

func TestStore_AddAndListItems(t *testing.T) {
	ctx := context.Background()
	store := New(newMemStore(), "monthly_budgets")

	created, err := store.AddItem(ctx, "2026-08", model.MonthlyBudgetItem{
		Label:  "Publicidad",
		Amount: decimal.NewFromInt(200),
	})
	if err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}
	if created.ID == "" {
		t.Error("expected a generated id")
	}

	items, err := store.Month("2026-08")
	if err != nil || len(items) != 1 {
		t.Fatalf("Month: %v, %d items", err, len(items))
	}
	if items[0].Label != "Publicidad" {
		t.Errorf("got %+v", items[0])
	}
}

func TestStore_AddItemValidation(t *testing.T) {
	ctx := context.Background()
	store := New(newMemStore(), "monthly_budgets")

	if _, err := store.AddItem(ctx, "agosto", model.MonthlyBudgetItem{Label: "x", Amount: decimal.NewFromInt(1)}); !errors.Is(err, ErrBadMonth) {
		t.Errorf("bad month key: expected ErrBadMonth, got %v", err)
	}
	if _, err := store.AddItem(ctx, "2026-08", model.MonthlyBudgetItem{Amount: decimal.NewFromInt(1)}); err == nil {
		t.Error("empty label must be rejected")
	}
	if _, err := store.AddItem(ctx, "2026-08", model.MonthlyBudgetItem{Label: "x", Amount: decimal.Zero}); err == nil {
		t.Error("non-positive amount must be rejected")
	}
}

func TestStore_UpdateAndRemoveItem(t *testing.T) {
	ctx := context.Background()
	store := New(newMemStore(), "monthly_budgets")

	created, _ := store.AddItem(ctx, "2026-08", model.MonthlyBudgetItem{
		Label:  "Luz",
		Amount: decimal.NewFromInt(150),
	})

	amount := decimal.NewFromInt(180)
	updated, err := store.UpdateItem(ctx, "2026-08", created.ID, model.BudgetItemPatch{Amount: &amount})
	if err != nil {
		t.Fatalf("UpdateItem failed: %v", err)
	}
	if !updated.Amount.Equal(amount) || updated.Label != "Luz" {
		t.Errorf("got %+v", updated)
	}

	if err := store.RemoveItem(ctx, "2026-08", created.ID); err != nil {
		t.Fatalf("RemoveItem failed: %v", err)
	}
	items, _ := store.Month("2026-08")
	if len(items) != 0 {
		t.Error("budget removal is a true delete")
	}

	if err := store.RemoveItem(ctx, "2026-08", created.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_CopyPreviousMonth(t *testing.T) {
	ctx := context.Background()
	store := New(newMemStore(), "monthly_budgets")

	a, _ := store.AddItem(ctx, "2026-07", model.MonthlyBudgetItem{Label: "Alquiler", Amount: decimal.NewFromInt(900)})
	_, _ = store.AddItem(ctx, "2026-07", model.MonthlyBudgetItem{Label: "Internet", Amount: decimal.NewFromInt(100)})

	copied, err := store.CopyPreviousMonth(ctx, "2026-08")
	if err != nil {
		t.Fatalf("CopyPreviousMonth failed: %v", err)
	}
	if len(copied) != 2 {
		t.Fatalf("expected 2 copied items, got %d", len(copied))
	}
	for _, item := range copied {
		if item.ID == a.ID {
			t.Error("copied items must get fresh ids")
		}
	}

	// one-time copy, not a link
	amount := decimal.NewFromInt(999)
	_, _ = store.UpdateItem(ctx, "2026-07", a.ID, model.BudgetItemPatch{Amount: &amount})
	augItems, _ := store.Month("2026-08")
	for _, item := range augItems {
		if item.Amount.Equal(amount) {
			t.Error("editing the source month must not affect the copy")
		}
	}

	if _, err := store.CopyPreviousMonth(ctx, "2026-10"); !errors.Is(err, ErrNotFound) {
		t.Errorf("empty previous month: expected ErrNotFound, got %v", err)
	}
}

func TestStore_LoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	mem := newMemStore()

	first := New(mem, "monthly_budgets")
	_, _ = first.AddItem(ctx, "2026-08", model.MonthlyBudgetItem{Label: "Luz", Amount: decimal.NewFromInt(150)})

	second := New(mem, "monthly_budgets")
	if err := second.Load(ctx); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	items, _ := second.Month("2026-08")
	if len(items) != 1 {
		t.Errorf("expected persisted item after reload, got %d", len(items))
	}
}

func TestMerge_UnionByIDLocalWins(t *testing.T) {
	local := model.MonthlyBudgets{
		"2026-08": {
			{ID: "a", Label: "Luz", Amount: decimal.NewFromInt(180)},
			{ID: "b", Label: "Internet", Amount: decimal.NewFromInt(100)},
		},
	}
	remote := model.MonthlyBudgets{
		"2026-08": {
			{ID: "a", Label: "Luz", Amount: decimal.NewFromInt(150)},
			{ID: "c", Label: "Agua", Amount: decimal.NewFromInt(60)},
		},
		"2026-07": {
			{ID: "d", Label: "Alquiler", Amount: decimal.NewFromInt(900)},
		},
	}

	merged := Merge(local, remote)
	if len(merged["2026-08"]) != 3 {
		t.Fatalf("expected union of 3 items, got %d", len(merged["2026-08"]))
	}
	for _, item := range merged["2026-08"] {
		if item.ID == "a" && !item.Amount.Equal(decimal.NewFromInt(180)) {
			t.Errorf("local version must win on id collision, got %s", item.Amount)
		}
	}
	if len(merged["2026-07"]) != 1 {
		t.Error("remote-only months must survive the merge")
	}
}
