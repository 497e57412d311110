package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/custodia-labs/noticesync/internal/core/domain"
	"github.com/custodia-labs/noticesync/internal/core/ports/driven"
)

// deliveryStore implements driven.DeliveryStore.
type deliveryStore struct {
	store *Store
}

var _ driven.DeliveryStore = (*deliveryStore)(nil)

const deliveryColumns = `run_id, resource, item_id, text, notice_path, delivered_at, marked`

// RecordDelivery appends a ledger entry. Recording the same run and item
// twice keeps the first entry.
func (s *deliveryStore) RecordDelivery(ctx context.Context, d domain.Delivery) error {
	if d.RunID == "" || d.ItemID == "" {
		return fmt.Errorf("%w: delivery needs run and item IDs", domain.ErrInvalidInput)
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO deliveries (`+deliveryColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, item_id) DO NOTHING
	`, d.RunID, string(d.Resource), d.ItemID, d.Text, d.NoticePath,
		formatTime(d.DeliveredAt), boolToInt(d.Marked))
	if err != nil {
		return fmt.Errorf("recording delivery: %w", err)
	}
	return nil
}

// MarkDelivered flags the entry as marked on the remote side.
func (s *deliveryStore) MarkDelivered(ctx context.Context, runID, itemID string) error {
	res, err := s.store.db.ExecContext(ctx,
		"UPDATE deliveries SET marked = 1 WHERE run_id = ? AND item_id = ?", runID, itemID)
	if err != nil {
		return fmt.Errorf("marking delivery: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("marking delivery: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListUnmarked returns entries delivered at or after since that were never
// marked remotely, oldest first.
func (s *deliveryStore) ListUnmarked(ctx context.Context, since time.Time) ([]domain.Delivery, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT `+deliveryColumns+`
		FROM deliveries
		WHERE marked = 0 AND delivered_at >= ?
		ORDER BY delivered_at, id
	`, formatTime(since))
	if err != nil {
		return nil, fmt.Errorf("querying unmarked deliveries: %w", err)
	}
	return scanDeliveries(rows)
}

// ListDeliveries returns the most recent entries first.
func (s *deliveryStore) ListDeliveries(ctx context.Context, limit int) ([]domain.Delivery, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT `+deliveryColumns+`
		FROM deliveries
		ORDER BY delivered_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying deliveries: %w", err)
	}
	return scanDeliveries(rows)
}

func scanDeliveries(rows *sql.Rows) ([]domain.Delivery, error) {
	defer rows.Close()

	var out []domain.Delivery //nolint:prealloc // size unknown from query
	for rows.Next() {
		var d domain.Delivery
		var resource, deliveredAt string
		var marked int
		if err := rows.Scan(&d.RunID, &resource, &d.ItemID, &d.Text, &d.NoticePath, &deliveredAt, &marked); err != nil {
			return nil, fmt.Errorf("scanning delivery: %w", err)
		}
		d.Resource = domain.ResourceKind(resource)
		d.DeliveredAt = parseTime(deliveredAt)
		d.Marked = marked == 1
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating deliveries: %w", err)
	}
	return out, nil
}
