package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/ddreams3d/backend/internal/model"
)

// Stats summarizes the cash position of a record set.
type Stats struct {
	TotalIncome    decimal.Decimal `json:"totalIncome"`
	TotalExpense   decimal.Decimal `json:"totalExpense"`
	NetProfit      decimal.Decimal `json:"netProfit"`
	PendingIncome  decimal.Decimal `json:"pendingIncome"`
	PendingExpense decimal.Decimal `json:"pendingExpense"`
}

// ComputeStats totals paid and pending amounts over active records.
// Cancelled and refunded records count toward neither side.
func ComputeStats(records []model.LedgerRecord) Stats {
	var st Stats
	for _, r := range records {
		if r.Deleted {
			continue
		}
		switch {
		case r.Type == model.Income && r.Status == model.StatusPaid:
			st.TotalIncome = st.TotalIncome.Add(r.Amount)
		case r.Type == model.Expense && r.Status == model.StatusPaid:
			st.TotalExpense = st.TotalExpense.Add(r.Amount)
		case r.Type == model.Income && r.Status == model.StatusPending:
			st.PendingIncome = st.PendingIncome.Add(r.Amount)
		case r.Type == model.Expense && r.Status == model.StatusPending:
			st.PendingExpense = st.PendingExpense.Add(r.Amount)
		}
	}
	st.NetProfit = st.TotalIncome.Sub(st.TotalExpense)
	return st
}
