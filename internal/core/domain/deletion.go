package domain

import "sort"

// DeletionReason explains why an item is in a deletion plan.
type DeletionReason string

const (
	ReasonBlank DeletionReason = "blank"
	ReasonStale DeletionReason = "stale"
	ReasonImage DeletionReason = "image"
)

// PlannedDeletion is one entry of a deletion plan.
type PlannedDeletion struct {
	// Position is the original position in the fetched snapshot.
	Position int

	// ItemID is kept for logging only; deletes are positional.
	ItemID string

	Reason DeletionReason
}

// DeletionPlan is an ascending, position-unique list of deletions computed
// against one frozen snapshot. It is consumed once and discarded.
type DeletionPlan struct {
	entries []PlannedDeletion
}

// NewDeletionPlan sorts entries by ascending position and drops duplicate
// positions, keeping the first reason seen.
func NewDeletionPlan(entries ...PlannedDeletion) DeletionPlan {
	sorted := make([]PlannedDeletion, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Position < sorted[j].Position
	})

	unique := make([]PlannedDeletion, 0, len(sorted))
	for _, e := range sorted {
		if n := len(unique); n > 0 && unique[n-1].Position == e.Position {
			continue
		}
		unique = append(unique, e)
	}
	return DeletionPlan{entries: unique}
}

// Len returns the number of planned deletions.
func (p DeletionPlan) Len() int {
	return len(p.entries)
}

// Entries returns a copy of the plan in execution order.
func (p DeletionPlan) Entries() []PlannedDeletion {
	out := make([]PlannedDeletion, len(p.entries))
	copy(out, p.entries)
	return out
}

// AdjustedPositions returns the delete-call target of each entry:
// original position minus the number of deletions applied before it.
// Valid only when deletions run strictly in this order, one item each.
func (p DeletionPlan) AdjustedPositions() []int {
	adjusted := make([]int, len(p.entries))
	for i, e := range p.entries {
		adjusted[i] = e.Position - i
	}
	return adjusted
}
