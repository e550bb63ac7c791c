package ledger

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/ddreams3d/backend/internal/model"
)

func TestComputeStats(t *testing.T) {
	records := []model.LedgerRecord{
		{Type: model.Income, Status: model.StatusPaid, Amount: decimal.NewFromInt(300)},
		{Type: model.Income, Status: model.StatusPending, Amount: decimal.NewFromInt(120)},
		{Type: model.Expense, Status: model.StatusPaid, Amount: decimal.NewFromInt(80)},
		{Type: model.Expense, Status: model.StatusPending, Amount: decimal.NewFromInt(40)},
		{Type: model.Income, Status: model.StatusCancelled, Amount: decimal.NewFromInt(999)},
		{Type: model.Income, Status: model.StatusPaid, Amount: decimal.NewFromInt(999), Deleted: true},
	}

	st := ComputeStats(records)
	if !st.TotalIncome.Equal(decimal.NewFromInt(300)) {
		t.Errorf("total income: got %s", st.TotalIncome)
	}
	if !st.TotalExpense.Equal(decimal.NewFromInt(80)) {
		t.Errorf("total expense: got %s", st.TotalExpense)
	}
	if !st.NetProfit.Equal(decimal.NewFromInt(220)) {
		t.Errorf("net profit: got %s", st.NetProfit)
	}
	if !st.PendingIncome.Equal(decimal.NewFromInt(120)) {
		t.Errorf("pending income: got %s", st.PendingIncome)
	}
	if !st.PendingExpense.Equal(decimal.NewFromInt(40)) {
		t.Errorf("pending expense: got %s", st.PendingExpense)
	}
}
