package domain

import "time"

// SyncReport summarises one SyncPending run for a resource.
type SyncReport struct {
	RunID    string
	Resource ResourceKind

	// Promoted counts comments turned into items; PromoteFailed counts failures.
	Promoted      int
	PromoteFailed int

	// Delivered counts items written to the notice.
	Delivered int

	// Marked counts items whose remote text was rewritten as delivered.
	Marked int

	// Failed counts items that could not be delivered or marked.
	Failed int

	// Skipped explains why delivery did not happen, if it did not.
	Skipped string
}

// ItemsProcessed is the count stored in task history.
func (r SyncReport) ItemsProcessed() int {
	return r.Promoted + r.Delivered
}

// PurgeReport summarises one PurgeStale run for a resource.
type PurgeReport struct {
	RunID    string
	Resource ResourceKind

	Planned int
	Deleted int
	Failed  int
}

// Delivery is one ledger entry: an item written to the local notice.
type Delivery struct {
	RunID       string
	Resource    ResourceKind
	ItemID      string
	Text        string
	NoticePath  string
	DeliveredAt time.Time

	// Marked is false while the remote item still lacks the delivered marker.
	Marked bool
}
