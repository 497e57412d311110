package driven

import (
	"context"

	"github.com/custodia-labs/noticesync/internal/core/domain"
)

// RemoteCollection is an index-addressed, non-transactional remote collection.
// Every call is a blocking round trip; callers issue them one at a time and
// rely on each being visible before the next.
type RemoteCollection interface {
	// FetchAllItems returns the ordered collection. Positions are indexes into it.
	FetchAllItems(ctx context.Context, resourceID string) ([]domain.Item, error)

	// FetchUnresolvedComments returns comments never resolved.
	FetchUnresolvedComments(ctx context.Context, resourceID string) ([]domain.Comment, error)

	// AppendItem adds a text item at the end of the collection.
	AppendItem(ctx context.Context, resourceID, content string) (domain.Item, error)

	// UpdateItemContent rewrites the text of one item.
	UpdateItemContent(ctx context.Context, resourceID, itemID, content string) error

	// DeleteItemAt deletes exactly one item at the current position.
	// Every later item shifts down by one.
	DeleteItemAt(ctx context.Context, resourceID string, position int) error

	// ResolveComment marks a comment as resolved.
	ResolveComment(ctx context.Context, resourceID, commentID string) error
}
