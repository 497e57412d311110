package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/noticesync/internal/core/domain"
	"github.com/custodia-labs/noticesync/internal/core/ports/driven"
	"github.com/custodia-labs/noticesync/internal/logger"
)

// ApplyDeletionPlan deletes the planned items one call at a time, in plan
// order, targeting each at its original position minus the number of
// deletions issued before it.
//
// A failed call is logged and the loop continues with the shift count
// unchanged, as if the delete had applied. If the remote did not apply it,
// every later call in this run lands one item too far to the right.
// The next run re-fetches and re-plans from a fresh snapshot.
// Only an auth failure or a cancelled context stops the loop early.
func ApplyDeletionPlan(
	ctx context.Context,
	remote driven.RemoteCollection,
	resourceID string,
	plan domain.DeletionPlan,
) (deleted, failed int, err error) {
	entries := plan.Entries()
	adjusted := plan.AdjustedPositions()

	for i, entry := range entries {
		if err := ctx.Err(); err != nil {
			return deleted, failed, err
		}

		target := adjusted[i]
		if callErr := remote.DeleteItemAt(ctx, resourceID, target); callErr != nil {
			if errors.Is(callErr, domain.ErrAuth) {
				return deleted, failed, callErr
			}
			failed++
			logger.Error("%v", &domain.RemoteMutationError{
				Op:     "delete",
				Target: fmt.Sprintf("position %d (originally %d, %s)", target, entry.Position, entry.Reason),
				Err:    callErr,
			})
			continue
		}

		deleted++
		logger.Info("deleted %s item %s at position %d (originally %d)", entry.Reason, entry.ItemID, target, entry.Position)
	}
	return deleted, failed, nil
}
