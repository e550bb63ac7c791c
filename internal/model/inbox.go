package model

import "github.com/shopspring/decimal"

type InboxStatus string

const (
	InboxPending   InboxStatus = "pending"
	InboxProcessed InboxStatus = "processed"
)

// InboxItem is a bot-originated candidate transaction waiting for approval.
// IDs are deterministic on the bot side (chat id + message id), which is what
// makes approval idempotent.
type InboxItem struct {
	ID          string          `json:"id"`
	Type        TransactionType `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Currency    Currency        `json:"currency"`
	Date        string          `json:"date"`
	RawText     string          `json:"rawText,omitempty"`
	Status      InboxStatus     `json:"status"`
	CreatedAt   int64           `json:"createdAt"`
	Context     string          `json:"context,omitempty"` // "personal" | "company"
}
