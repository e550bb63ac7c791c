package model

import "github.com/shopspring/decimal"

// MonthlyBudgetItem is one planned spending line inside a month.
type MonthlyBudgetItem struct {
	ID             string          `json:"id"`
	Label          string          `json:"label"`
	Amount         decimal.Decimal `json:"amount"`
	LinkedCategory string          `json:"linkedCategory,omitempty"`
}

// MonthlyBudgets maps "YYYY-MM" keys to the budget items of that month.
// Budgets carry no tombstones: removal is a true delete.
type MonthlyBudgets map[string][]MonthlyBudgetItem

// BudgetItemPatch holds fields that can be updated on a budget item.
type BudgetItemPatch struct {
	Label          *string          `json:"label,omitempty"`
	Amount         *decimal.Decimal `json:"amount,omitempty"`
	LinkedCategory *string          `json:"linkedCategory,omitempty"`
}
