package ledger

import (
	"sort"
	"strings"

	"github.com/ddreams3d/backend/internal/model"
)

// balanceSuffix marks legacy balance records created before groupId existed.
const balanceSuffix = " (Saldo)"

// TransactionGroup is a display unit: a parent record and the related records
// clustered under it (e.g. the balance payment under its deposit).
type TransactionGroup struct {
	Parent   model.LedgerRecord   `json:"parent"`
	Children []model.LedgerRecord `json:"children"`
}

// GroupTransactions clusters related records into parent/child display units.
// It is a read-only view: nothing in the store changes, and running it twice
// on the same input yields the same assignment in the same order.
//
// Three passes over the records sorted by date descending:
//
//  1. Records sharing a non-empty groupId form one group; the record with
//     paymentPhase "deposit" is the parent, falling back to the first one
//     encountered.
//  2. A still-unvisited record whose title ends in " (Saldo)" is matched to
//     an unvisited deposit record whose title equals the balance title with
//     the suffix stripped. Title matching is a legacy heuristic for data
//     predating groupId and is ambiguous when two deposits share a title.
//  3. Whatever remains becomes a standalone group of one.
func GroupTransactions(records []model.LedgerRecord) []TransactionGroup {
	sorted := make([]model.LedgerRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Date != sorted[j].Date {
			return sorted[i].Date > sorted[j].Date
		}
		return sorted[i].ID < sorted[j].ID
	})

	visited := make([]bool, len(sorted))
	groups := make([]TransactionGroup, 0, len(sorted))

	// Pass 1: explicit group ids.
	for i, rec := range sorted {
		if visited[i] || rec.GroupID == "" {
			continue
		}
		memberIdx := []int{}
		for j := i; j < len(sorted); j++ {
			if !visited[j] && sorted[j].GroupID == rec.GroupID {
				memberIdx = append(memberIdx, j)
				visited[j] = true
			}
		}
		parentIdx := memberIdx[0]
		for _, j := range memberIdx {
			if sorted[j].PaymentPhase == model.PhaseDeposit {
				parentIdx = j
				break
			}
		}
		group := TransactionGroup{Parent: sorted[parentIdx], Children: []model.LedgerRecord{}}
		for _, j := range memberIdx {
			if j != parentIdx {
				group.Children = append(group.Children, sorted[j])
			}
		}
		groups = append(groups, group)
	}

	// Pass 2: legacy " (Saldo)" title matching.
	for i, rec := range sorted {
		if visited[i] || !strings.HasSuffix(rec.Title, balanceSuffix) {
			continue
		}
		base := strings.TrimSuffix(rec.Title, balanceSuffix)
		for j, candidate := range sorted {
			if visited[j] || j == i {
				continue
			}
			if candidate.Title == base && candidate.PaymentPhase == model.PhaseDeposit {
				visited[i] = true
				visited[j] = true
				groups = append(groups, TransactionGroup{
					Parent:   candidate,
					Children: []model.LedgerRecord{rec},
				})
				break
			}
		}
	}

	// Pass 3: standalone records.
	for i, rec := range sorted {
		if visited[i] {
			continue
		}
		visited[i] = true
		groups = append(groups, TransactionGroup{Parent: rec, Children: []model.LedgerRecord{}})
	}

	return groups
}
