package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/noticesync/internal/core/domain"
)

// DeliveryStore is the ledger of items written to the notice.
type DeliveryStore interface {
	// RecordDelivery appends a ledger entry.
	RecordDelivery(ctx context.Context, d domain.Delivery) error

	// MarkDelivered flags the entry as marked on the remote side.
	MarkDelivered(ctx context.Context, runID, itemID string) error

	// ListUnmarked returns entries delivered locally but never marked remotely.
	ListUnmarked(ctx context.Context, since time.Time) ([]domain.Delivery, error)

	// ListDeliveries returns the most recent entries first.
	ListDeliveries(ctx context.Context, limit int) ([]domain.Delivery, error)
}
