package snapshot

import (
	"context"

	"github.com/custodia-labs/noticesync/internal/core/domain"
	"github.com/custodia-labs/noticesync/internal/core/ports/driven"
	"github.com/custodia-labs/noticesync/internal/logger"
)

// Ensure Recorder implements the interface.
var _ driven.RemoteCollection = (*Recorder)(nil)

// Recorder saves every successful fetch of the wrapped collection.
// Mutations pass through unchanged.
type Recorder struct {
	driven.RemoteCollection
	dir *Dir
}

// NewRecorder wraps remote.
func NewRecorder(remote driven.RemoteCollection, dir *Dir) *Recorder {
	return &Recorder{RemoteCollection: remote, dir: dir}
}

// FetchAllItems fetches and records the collection. A failed write is
// logged and does not fail the fetch.
func (r *Recorder) FetchAllItems(ctx context.Context, resourceID string) ([]domain.Item, error) {
	items, err := r.RemoteCollection.FetchAllItems(ctx, resourceID)
	if err != nil {
		return nil, err
	}
	if err := r.dir.WriteItems(resourceID, items); err != nil {
		logger.Warn("snapshot: %v", err)
	} else {
		logger.Debug("snapshot: recorded %d items of %s", len(items), resourceID)
	}
	return items, nil
}

// FetchUnresolvedComments fetches and records the comments.
func (r *Recorder) FetchUnresolvedComments(ctx context.Context, resourceID string) ([]domain.Comment, error) {
	comments, err := r.RemoteCollection.FetchUnresolvedComments(ctx, resourceID)
	if err != nil {
		return nil, err
	}
	if err := r.dir.WriteComments(resourceID, comments); err != nil {
		logger.Warn("snapshot: %v", err)
	}
	return comments, nil
}
