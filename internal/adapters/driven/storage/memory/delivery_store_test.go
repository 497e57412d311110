package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/noticesync/internal/core/domain"
)

var base = time.Date(2024, 1, 3, 19, 0, 0, 0, time.UTC)

func delivery(run, item string, offset time.Duration) domain.Delivery {
	return domain.Delivery{
		RunID:       run,
		Resource:    domain.ResourceDocument,
		ItemID:      item,
		Text:        "note " + item,
		NoticePath:  "/notices/2024-01-03 通知.docx",
		DeliveredAt: base.Add(offset),
	}
}

func TestDeliveryStore_RecordRequiresIDs(t *testing.T) {
	store := NewDeliveryStore()

	err := store.RecordDelivery(context.Background(), domain.Delivery{ItemID: "a"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	err = store.RecordDelivery(context.Background(), domain.Delivery{RunID: "r"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestDeliveryStore_RecordKeepsFirst(t *testing.T) {
	ctx := context.Background()
	store := NewDeliveryStore()

	first := delivery("r1", "a", 0)
	second := first
	second.Text = "changed"
	require.NoError(t, store.RecordDelivery(ctx, first))
	require.NoError(t, store.RecordDelivery(ctx, second))

	all, err := store.ListDeliveries(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "note a", all[0].Text)
}

func TestDeliveryStore_MarkDelivered(t *testing.T) {
	ctx := context.Background()
	store := NewDeliveryStore()
	require.NoError(t, store.RecordDelivery(ctx, delivery("r1", "a", 0)))
	require.NoError(t, store.RecordDelivery(ctx, delivery("r1", "b", time.Minute)))

	require.NoError(t, store.MarkDelivered(ctx, "r1", "a"))
	assert.ErrorIs(t, store.MarkDelivered(ctx, "r2", "a"), domain.ErrNotFound)

	unmarked, err := store.ListUnmarked(ctx, base.Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, unmarked, 1)
	assert.Equal(t, "b", unmarked[0].ItemID)
}

func TestDeliveryStore_ListUnmarkedSinceOldestFirst(t *testing.T) {
	ctx := context.Background()
	store := NewDeliveryStore()
	require.NoError(t, store.RecordDelivery(ctx, delivery("r2", "late", 2*time.Hour)))
	require.NoError(t, store.RecordDelivery(ctx, delivery("r1", "early", time.Hour)))
	require.NoError(t, store.RecordDelivery(ctx, delivery("r0", "old", -48*time.Hour)))

	unmarked, err := store.ListUnmarked(ctx, base)
	require.NoError(t, err)
	require.Len(t, unmarked, 2)
	assert.Equal(t, "early", unmarked[0].ItemID)
	assert.Equal(t, "late", unmarked[1].ItemID)
}

func TestDeliveryStore_ListDeliveriesNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := NewDeliveryStore()
	require.NoError(t, store.RecordDelivery(ctx, delivery("r1", "a", 0)))
	require.NoError(t, store.RecordDelivery(ctx, delivery("r1", "b", 0)))
	require.NoError(t, store.RecordDelivery(ctx, delivery("r2", "c", time.Hour)))

	all, err := store.ListDeliveries(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"c", "b", "a"}, []string{all[0].ItemID, all[1].ItemID, all[2].ItemID})

	limited, err := store.ListDeliveries(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestDeliveryStore_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	store := NewDeliveryStore()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			item := string(rune('a' + n))
			_ = store.RecordDelivery(ctx, delivery("r1", item, 0))
			_ = store.MarkDelivered(ctx, "r1", item)
			_, _ = store.ListDeliveries(ctx, 5)
		}(i)
	}
	wg.Wait()

	all, err := store.ListDeliveries(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 20)
}
