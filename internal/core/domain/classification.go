package domain

import "time"

// Bucket is the classification outcome for one item in one run.
type Bucket int

const (
	// BucketKeep items are left alone.
	BucketKeep Bucket = iota

	// BucketToDeliver items were never delivered.
	BucketToDeliver

	// BucketToDeliverSecondPass items were delivered after yesterday's cutoff
	// and must be surfaced again in today's notice.
	BucketToDeliverSecondPass

	// BucketStaleDelete items were delivered longer ago than the retention.
	BucketStaleDelete

	// BucketBlankDelete items are empty placeholders.
	BucketBlankDelete

	// BucketImageDeleteIfAllStale images are deleted only when every text
	// item of the region is stale.
	BucketImageDeleteIfAllStale
)

// String returns the string representation of the bucket.
func (b Bucket) String() string {
	switch b {
	case BucketToDeliver:
		return "to_deliver"
	case BucketToDeliverSecondPass:
		return "to_deliver_second_pass"
	case BucketStaleDelete:
		return "stale_delete"
	case BucketBlankDelete:
		return "blank_delete"
	case BucketImageDeleteIfAllStale:
		return "image_delete_if_all_stale"
	default:
		return "keep"
	}
}

// ClassifyPolicy holds the time rules of a resource.
type ClassifyPolicy struct {
	// Cutoff is the time of day, as an offset from midnight, after which a
	// delivery of the previous day is re-surfaced.
	Cutoff time.Duration

	// Retention is how long a delivered item survives before purge.
	Retention time.Duration

	// Location is used to read and write timestamps. Nil means time.Local.
	Location *time.Location
}

// Default policies per resource kind.
const (
	DefaultCutoff            = 19 * time.Hour
	DefaultDocumentRetention = 24 * time.Hour
	DefaultTableRetention    = 36 * time.Hour
)

// Assignment pairs an item with its bucket and decoded state.
type Assignment struct {
	Item   Item
	Bucket Bucket
	State  ContentState
}

// Classification is the immutable result of classifying a region.
// Assignments keep the region order.
type Classification struct {
	assignments []Assignment
}

// NewClassification wraps assignments given in region order.
func NewClassification(assignments []Assignment) Classification {
	out := make([]Assignment, len(assignments))
	copy(out, assignments)
	return Classification{assignments: out}
}

// Assignments returns a copy of every assignment in region order.
func (c Classification) Assignments() []Assignment {
	out := make([]Assignment, len(c.assignments))
	copy(out, c.assignments)
	return out
}

// Items returns the items of a bucket in region order.
func (c Classification) Items(b Bucket) []Item {
	var items []Item
	for _, a := range c.assignments {
		if a.Bucket == b {
			items = append(items, a.Item)
		}
	}
	return items
}

// Positions returns the positions of a bucket in region order.
func (c Classification) Positions(b Bucket) []int {
	var positions []int
	for _, a := range c.assignments {
		if a.Bucket == b {
			positions = append(positions, a.Item.Position)
		}
	}
	return positions
}

// Deliveries returns to_deliver and to_deliver_second_pass items in region order.
func (c Classification) Deliveries() []Assignment {
	var out []Assignment
	for _, a := range c.assignments {
		if a.Bucket == BucketToDeliver || a.Bucket == BucketToDeliverSecondPass {
			out = append(out, a)
		}
	}
	return out
}

// AllTextStale reports whether every non-blank text item is stale.
// A region without text items counts as all stale.
func (c Classification) AllTextStale() bool {
	for _, a := range c.assignments {
		if a.Item.Kind != ItemKindText || a.Item.IsBlank() {
			continue
		}
		if a.Bucket != BucketStaleDelete {
			return false
		}
	}
	return true
}

// DeletionPlan unions blank and stale items, plus images when all text is
// stale, sorted by ascending original position.
func (c Classification) DeletionPlan() DeletionPlan {
	includeImages := c.AllTextStale()
	var entries []PlannedDeletion
	for _, a := range c.assignments {
		var reason DeletionReason
		switch a.Bucket {
		case BucketBlankDelete:
			reason = ReasonBlank
		case BucketStaleDelete:
			reason = ReasonStale
		case BucketImageDeleteIfAllStale:
			if !includeImages {
				continue
			}
			reason = ReasonImage
		default:
			continue
		}
		entries = append(entries, PlannedDeletion{
			Position: a.Item.Position,
			ItemID:   a.Item.ID,
			Reason:   reason,
		})
	}
	return NewDeletionPlan(entries...)
}
