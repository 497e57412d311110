package snapshot

import (
	"context"

	"github.com/google/uuid"

	"github.com/custodia-labs/noticesync/internal/core/domain"
	"github.com/custodia-labs/noticesync/internal/core/ports/driven"
	"github.com/custodia-labs/noticesync/internal/logger"
)

// Ensure Replayer implements the interface.
var _ driven.RemoteCollection = (*Replayer)(nil)

// Replayer serves recorded fetches and never calls the remote service.
type Replayer struct {
	dir *Dir
}

// NewReplayer creates a replayer reading from dir.
func NewReplayer(dir *Dir) *Replayer {
	return &Replayer{dir: dir}
}

// FetchAllItems returns the recorded collection.
func (r *Replayer) FetchAllItems(ctx context.Context, resourceID string) ([]domain.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.dir.ReadItems(resourceID)
}

// FetchUnresolvedComments returns the recorded comments.
func (r *Replayer) FetchUnresolvedComments(ctx context.Context, resourceID string) ([]domain.Comment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.dir.ReadComments(resourceID)
}

// AppendItem logs the append and returns an item with a fresh local id.
func (r *Replayer) AppendItem(_ context.Context, resourceID, content string) (domain.Item, error) {
	logger.Info("offline: append to %s: %s", resourceID, content)
	return domain.Item{Position: -1, ID: "offline-" + uuid.NewString(), Kind: domain.ItemKindText, Content: content}, nil
}

// UpdateItemContent logs the update.
func (r *Replayer) UpdateItemContent(_ context.Context, resourceID, itemID, content string) error {
	logger.Info("offline: update %s/%s: %s", resourceID, itemID, content)
	return nil
}

// DeleteItemAt logs the delete.
func (r *Replayer) DeleteItemAt(_ context.Context, resourceID string, position int) error {
	logger.Info("offline: delete %s at %d", resourceID, position)
	return nil
}

// ResolveComment logs the resolve.
func (r *Replayer) ResolveComment(_ context.Context, resourceID, commentID string) error {
	logger.Info("offline: resolve comment %s on %s", commentID, resourceID)
	return nil
}
