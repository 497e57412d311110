package feishu

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/custodia-labs/noticesync/internal/core/domain"
	"github.com/custodia-labs/noticesync/internal/core/ports/driven"
)

// Ensure TableCollection implements the interface.
var _ driven.RemoteCollection = (*TableCollection)(nil)

// TableCollection exposes the records of a bitable table as an ordered
// collection. The API deletes by record id, so the adapter keeps the order
// of the last fetch and shifts it on every delete the way a document does.
type TableCollection struct {
	client       *Client
	contentField string

	mu   sync.Mutex
	live map[string][]string
}

// NewTableCollection creates the bitable adapter reading text from contentField.
func NewTableCollection(client *Client, contentField string) *TableCollection {
	return &TableCollection{
		client:       client,
		contentField: contentField,
		live:         make(map[string][]string),
	}
}

// splitTableID parses "<app_token>/<table_id>".
func splitTableID(resourceID string) (app, table string, err error) {
	app, table, ok := strings.Cut(resourceID, "/")
	if !ok || app == "" || table == "" {
		return "", "", fmt.Errorf("%w: %q, want <app_token>/<table_id>", ErrInvalidResource, resourceID)
	}
	return app, table, nil
}

func recordsPath(app, table string) string {
	return "/open-apis/bitable/v1/apps/" + url.PathEscape(app) + "/tables/" + url.PathEscape(table) + "/records"
}

// FetchAllItems lists every record and resets the live order.
func (t *TableCollection) FetchAllItems(ctx context.Context, resourceID string) ([]domain.Item, error) {
	app, table, err := splitTableID(resourceID)
	if err != nil {
		return nil, err
	}

	var items []domain.Item
	var order []string
	pageToken := ""
	for {
		query := url.Values{}
		query.Set("page_size", strconv.Itoa(pageSize))
		if pageToken != "" {
			query.Set("page_token", pageToken)
		}

		var page recordPage
		if err := t.client.do(ctx, http.MethodGet, recordsPath(app, table), query, nil, &page); err != nil {
			return nil, err
		}
		for _, r := range page.Items {
			items = append(items, domain.Item{
				Position: len(items),
				ID:       r.RecordID,
				Kind:     domain.ItemKindText,
				Content:  r.fieldText(t.contentField),
			})
			order = append(order, r.RecordID)
		}

		if !page.HasMore || page.PageToken == "" {
			break
		}
		pageToken = page.PageToken
	}

	t.mu.Lock()
	t.live[resourceID] = order
	t.mu.Unlock()
	return items, nil
}

// FetchUnresolvedComments returns nothing; tables carry no comments.
func (t *TableCollection) FetchUnresolvedComments(context.Context, string) ([]domain.Comment, error) {
	return nil, nil
}

// AppendItem creates a record holding content and appends it to the live order.
func (t *TableCollection) AppendItem(ctx context.Context, resourceID, content string) (domain.Item, error) {
	app, table, err := splitTableID(resourceID)
	if err != nil {
		return domain.Item{}, err
	}

	body := recordRequest{Fields: map[string]any{t.contentField: content}}
	var out recordResponse
	if err := t.client.do(ctx, http.MethodPost, recordsPath(app, table), nil, body, &out); err != nil {
		return domain.Item{}, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	order, fetched := t.live[resourceID]
	position := -1
	if fetched {
		position = len(order)
		t.live[resourceID] = append(order, out.Record.RecordID)
	}
	return domain.Item{
		Position: position,
		ID:       out.Record.RecordID,
		Kind:     domain.ItemKindText,
		Content:  content,
	}, nil
}

// UpdateItemContent rewrites the content field of one record.
func (t *TableCollection) UpdateItemContent(ctx context.Context, resourceID, recordID, content string) error {
	app, table, err := splitTableID(resourceID)
	if err != nil {
		return err
	}
	path := recordsPath(app, table) + "/" + url.PathEscape(recordID)
	body := recordRequest{Fields: map[string]any{t.contentField: content}}
	return t.client.do(ctx, http.MethodPut, path, nil, body, nil)
}

// DeleteItemAt deletes the record currently at position in the live order.
// The order only shifts when the delete succeeds.
func (t *TableCollection) DeleteItemAt(ctx context.Context, resourceID string, position int) error {
	app, table, err := splitTableID(resourceID)
	if err != nil {
		return err
	}

	t.mu.Lock()
	order, fetched := t.live[resourceID]
	t.mu.Unlock()
	if !fetched {
		return fmt.Errorf("%w: table %s not fetched", domain.ErrInvalidInput, resourceID)
	}
	if position < 0 || position >= len(order) {
		return fmt.Errorf("%w: position %d out of range [0,%d)", domain.ErrInvalidInput, position, len(order))
	}
	recordID := order[position]

	path := recordsPath(app, table) + "/" + url.PathEscape(recordID)
	if err := t.client.do(ctx, http.MethodDelete, path, nil, nil, nil); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	current := t.live[resourceID]
	for i, id := range current {
		if id == recordID {
			t.live[resourceID] = append(current[:i:i], current[i+1:]...)
			break
		}
	}
	return nil
}

// ResolveComment always fails; tables carry no comments.
func (t *TableCollection) ResolveComment(_ context.Context, _, commentID string) error {
	return fmt.Errorf("%w: table comment %s", domain.ErrInvalidInput, commentID)
}
