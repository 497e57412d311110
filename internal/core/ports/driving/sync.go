package driving

import (
	"context"

	"github.com/custodia-labs/noticesync/internal/core/domain"
)

// NoticeSyncer is what the scheduler and CLI invoke once per scheduled run.
type NoticeSyncer interface {
	// SyncPending promotes comments, classifies the region and delivers
	// pending items to the local notice, marking each one remotely.
	SyncPending(ctx context.Context, kind domain.ResourceKind) (*domain.SyncReport, error)

	// PurgeStale classifies the region and deletes stale and blank items.
	PurgeStale(ctx context.Context, kind domain.ResourceKind) (*domain.PurgeReport, error)

	// SyncAll runs SyncPending for every enabled resource.
	SyncAll(ctx context.Context) ([]domain.SyncReport, error)

	// PurgeAll runs PurgeStale for every enabled resource.
	PurgeAll(ctx context.Context) ([]domain.PurgeReport, error)
}
