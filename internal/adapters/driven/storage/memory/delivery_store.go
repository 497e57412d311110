package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/custodia-labs/noticesync/internal/core/domain"
	"github.com/custodia-labs/noticesync/internal/core/ports/driven"
)

// Ensure DeliveryStore implements the interface.
var _ driven.DeliveryStore = (*DeliveryStore)(nil)

// DeliveryStore is an in-memory implementation of driven.DeliveryStore.
type DeliveryStore struct {
	mu      sync.RWMutex
	entries []domain.Delivery
}

// NewDeliveryStore creates a new in-memory delivery ledger.
func NewDeliveryStore() *DeliveryStore {
	return &DeliveryStore{}
}

// RecordDelivery appends a ledger entry. Recording the same run and item
// twice keeps the first entry.
func (s *DeliveryStore) RecordDelivery(_ context.Context, d domain.Delivery) error {
	if d.RunID == "" || d.ItemID == "" {
		return fmt.Errorf("%w: delivery needs run and item IDs", domain.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.find(d.RunID, d.ItemID) >= 0 {
		return nil
	}
	s.entries = append(s.entries, d)
	return nil
}

// MarkDelivered flags the entry as marked on the remote side.
func (s *DeliveryStore) MarkDelivered(_ context.Context, runID, itemID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.find(runID, itemID)
	if i < 0 {
		return domain.ErrNotFound
	}
	s.entries[i].Marked = true
	return nil
}

// ListUnmarked returns entries delivered at or after since that were never
// marked remotely, oldest first.
func (s *DeliveryStore) ListUnmarked(_ context.Context, since time.Time) ([]domain.Delivery, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Delivery
	for _, d := range s.entries {
		if !d.Marked && !d.DeliveredAt.Before(since) {
			out = append(out, d)
		}
	}
	slices.SortStableFunc(out, func(a, b domain.Delivery) int {
		return a.DeliveredAt.Compare(b.DeliveredAt)
	})
	return out, nil
}

// ListDeliveries returns the most recent entries first.
func (s *DeliveryStore) ListDeliveries(_ context.Context, limit int) ([]domain.Delivery, error) {
	s.mu.RLock()
	out := slices.Clone(s.entries)
	s.mu.RUnlock()

	slices.Reverse(out)
	slices.SortStableFunc(out, func(a, b domain.Delivery) int {
		return b.DeliveredAt.Compare(a.DeliveredAt)
	})
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

// find returns the index of the entry, or -1. Callers hold the lock.
func (s *DeliveryStore) find(runID, itemID string) int {
	return slices.IndexFunc(s.entries, func(d domain.Delivery) bool {
		return d.RunID == runID && d.ItemID == itemID
	})
}
