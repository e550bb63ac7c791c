package ledger

import (
	"sort"

	"github.com/ddreams3d/backend/internal/model"
)

// MergeRecords reconciles two independently evolved copies of a ledger into
// one, with no data loss for concurrent edits across devices.
//
// The rule is last-write-wins per whole record, keyed by UpdatedAt: the map
// is seeded from remote; a local record absent remotely is inserted; when
// both sides have a version, the strictly greater UpdatedAt wins and ties
// keep the remote copy. Field-level edits do not combine: the losing
// record-version is discarded entirely.
//
// Tombstones participate like any other version: a newer tombstone beats a
// live record (deletions propagate), an older tombstone loses to a newer
// live edit (undelete via edit elsewhere).
//
// The function is pure and total: it never fails, and its output is a
// deterministic order (date desc, then UpdatedAt desc, then id) so repeated
// merges of the same inputs are byte-identical.
func MergeRecords(local, remote []model.LedgerRecord) []model.LedgerRecord {
	byID := make(map[string]model.LedgerRecord, len(remote)+len(local))
	for _, r := range remote {
		byID[r.ID] = r
	}
	for _, l := range local {
		existing, ok := byID[l.ID]
		if !ok || l.UpdatedAt > existing.UpdatedAt {
			byID[l.ID] = l
		}
	}

	merged := make([]model.LedgerRecord, 0, len(byID))
	for _, r := range byID {
		merged = append(merged, r)
	}
	sort.Slice(merged, func(i, j int) bool {
		if merged[i].Date != merged[j].Date {
			return merged[i].Date > merged[j].Date
		}
		if merged[i].UpdatedAt != merged[j].UpdatedAt {
			return merged[i].UpdatedAt > merged[j].UpdatedAt
		}
		return merged[i].ID < merged[j].ID
	})
	return merged
}
