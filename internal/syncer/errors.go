package syncer

import "fmt"

// SyncError wraps a transport/storage failure during a sync round-trip.
// Whether it happened on fetch or push, local state is left unchanged: a
// merged result that could not be pushed is discarded, never kept locally.
type SyncError struct {
	Op  string // "fetch" | "push" | "publish"
	Key string
	Err error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("sync %s %s: %v", e.Op, e.Key, e.Err)
}

func (e *SyncError) Unwrap() error { return e.Err }

// ParseError reports a corrupt remote blob. It is fatal for the sync attempt:
// treating a blob that exists but does not parse as an empty remote would
// silently overwrite remote data on push, so it surfaces instead and requires
// manual intervention.
type ParseError struct {
	Key string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("sync parse %s: %v", e.Key, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
