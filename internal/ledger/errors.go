package ledger

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when an update or delete references an unknown
// record id.
var ErrNotFound = errors.New("record not found")

// ValidationError reports a field-level problem detected before any mutation
// is applied.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
