package model

import (
	"github.com/shopspring/decimal"
)

// TransactionType is the direction of a ledger record.
type TransactionType string

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

func (t TransactionType) IsValid() bool {
	return t == Income || t == Expense
}

type TransactionStatus string

const (
	StatusPaid      TransactionStatus = "paid"
	StatusPending   TransactionStatus = "pending"
	StatusCancelled TransactionStatus = "cancelled"
	StatusRefunded  TransactionStatus = "refunded"
)

func (s TransactionStatus) IsValid() bool {
	switch s {
	case StatusPaid, StatusPending, StatusCancelled, StatusRefunded:
		return true
	}
	return false
}

type PaymentMethod string

const (
	PayYape     PaymentMethod = "yape"
	PayPlin     PaymentMethod = "plin"
	PayTransfer PaymentMethod = "transfer"
	PayCash     PaymentMethod = "cash"
	PayCard     PaymentMethod = "card"
	PayOther    PaymentMethod = "other"
)

func (m PaymentMethod) IsValid() bool {
	switch m {
	case PayYape, PayPlin, PayTransfer, PayCash, PayCard, PayOther:
		return true
	}
	return false
}

type Currency string

const (
	PEN Currency = "PEN"
	USD Currency = "USD"
)

func (c Currency) IsValid() bool {
	return c == PEN || c == USD
}

// ExpenseType classifies expenses for the cost structure views.
// Required when the record is an expense.
type ExpenseType string

const (
	ExpenseProduction ExpenseType = "production"
	ExpenseFixed      ExpenseType = "fixed"
	ExpenseVariable   ExpenseType = "variable"
)

func (e ExpenseType) IsValid() bool {
	switch e {
	case ExpenseProduction, ExpenseFixed, ExpenseVariable:
		return true
	}
	return false
}

// PaymentPhase marks which slice of a job this income record covers.
// Meaningful only for income records.
type PaymentPhase string

const (
	PhaseDeposit PaymentPhase = "deposit"
	PhaseFinal   PaymentPhase = "final"
	PhaseFull    PaymentPhase = "full"
)

func (p PaymentPhase) IsValid() bool {
	switch p {
	case PhaseDeposit, PhaseFinal, PhaseFull:
		return true
	}
	return false
}

// LineItem is one row of an optional per-record breakdown. When items are
// present the editor keeps Amount equal to the sum of Quantity*UnitPrice;
// the store does not re-derive it.
type LineItem struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Quantity    float64         `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Total       decimal.Decimal `json:"total"`
}

// LedgerRecord is a single income/expense entry in a ledger.
//
// Records are created client-side with a fresh id, never physically removed:
// deletion sets Deleted and bumps UpdatedAt so the tombstone propagates
// through sync instead of being resurrected from a stale remote copy.
// UpdatedAt (unix milliseconds) is the merge key.
type LedgerRecord struct {
	ID    string          `json:"id"`
	Date  string          `json:"date"` // ISO date, day granularity
	Type  TransactionType `json:"type"`
	Title string          `json:"title"`

	ClientName    string `json:"clientName,omitempty"`
	ClientContact string `json:"clientContact,omitempty"`
	ClientRUC     string `json:"clientRuc,omitempty"`

	Amount        decimal.Decimal   `json:"amount"`
	Currency      Currency          `json:"currency"`
	Status        TransactionStatus `json:"status"`
	PaymentMethod PaymentMethod     `json:"paymentMethod"`

	Category    string      `json:"category"`
	Source      string      `json:"source,omitempty"`
	ExpenseType ExpenseType `json:"expenseType,omitempty"`

	PaymentPhase PaymentPhase `json:"paymentPhase,omitempty"`
	// GroupID links records created as a split transaction (deposit + balance).
	GroupID string `json:"groupId,omitempty"`
	// TotalSaleAmount is the full job value when this record is a partial slice.
	TotalSaleAmount *decimal.Decimal `json:"totalSaleAmount,omitempty"`

	Items []LineItem `json:"items,omitempty"`
	Notes string     `json:"notes,omitempty"`

	RelatedOrderID string `json:"relatedOrderId,omitempty"`
	// OriginInboxID records provenance for bot-ingested records and is the
	// idempotency key for inbox approval.
	OriginInboxID string `json:"originInboxId,omitempty"`

	ProductionSnapshot *ProductionSnapshot `json:"productionSnapshot,omitempty"`

	CreatedAt int64 `json:"createdAt"`
	UpdatedAt int64 `json:"updatedAt"`
	Deleted   bool  `json:"_deleted,omitempty"`
}

// RecordPatch holds fields that can be updated on a ledger record. Absent
// fields keep their current value.
type RecordPatch struct {
	Date            *string             `json:"date,omitempty"`
	Title           *string             `json:"title,omitempty"`
	ClientName      *string             `json:"clientName,omitempty"`
	ClientContact   *string             `json:"clientContact,omitempty"`
	ClientRUC       *string             `json:"clientRuc,omitempty"`
	Amount          *decimal.Decimal    `json:"amount,omitempty"`
	Currency        *Currency           `json:"currency,omitempty"`
	Status          *TransactionStatus  `json:"status,omitempty"`
	PaymentMethod   *PaymentMethod      `json:"paymentMethod,omitempty"`
	Category        *string             `json:"category,omitempty"`
	Source          *string             `json:"source,omitempty"`
	ExpenseType     *ExpenseType        `json:"expenseType,omitempty"`
	PaymentPhase    *PaymentPhase       `json:"paymentPhase,omitempty"`
	GroupID         *string             `json:"groupId,omitempty"`
	TotalSaleAmount *decimal.Decimal    `json:"totalSaleAmount,omitempty"`
	Items           *[]LineItem         `json:"items,omitempty"`
	Notes           *string             `json:"notes,omitempty"`
	Snapshot        *ProductionSnapshot `json:"productionSnapshot,omitempty"`
}
