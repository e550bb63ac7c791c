// Package blob provides the persistence boundary of the finance engine:
// opaque byte slots addressed by a string key. The engine keeps one slot per
// store (company records, personal records, budgets, settings, inbox) and
// treats the contents as JSON it owns.
package blob

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Load when a slot has never been written.
// Callers decide whether absence is an empty baseline or an error.
var ErrNotFound = errors.New("slot not found")

// Store is a durable key→bytes slot. Implementations: LocalStore (filesystem,
// the device-local copy) and PgStore (PostgreSQL, the shared remote copy).
type Store interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
}
