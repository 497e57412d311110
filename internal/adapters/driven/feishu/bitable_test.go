package feishu

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/noticesync/internal/core/domain"
)

const testTable = "app1/tbl1"

func recordsServer(t *testing.T, records []any) (*TableCollection, *requestLog) {
	t.Helper()
	client, requests := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			writeEnvelope(t, w, 0, "", map[string]any{"items": records, "has_more": false})
		case http.MethodPost:
			writeEnvelope(t, w, 0, "", map[string]any{"record": map[string]any{"record_id": "recNew"}})
		default:
			writeEnvelope(t, w, 0, "", nil)
		}
	})
	return NewTableCollection(client, "留言"), requests
}

func TestTableCollection_FetchAllItems(t *testing.T) {
	table, requests := recordsServer(t, []any{
		map[string]any{"record_id": "rec1", "fields": map[string]any{"留言": "plain text"}},
		map[string]any{"record_id": "rec2", "fields": map[string]any{"留言": []any{
			map[string]any{"type": "text", "text": "rich "},
			map[string]any{"type": "text", "text": "text"},
		}}},
		map[string]any{"record_id": "rec3", "fields": map[string]any{}},
	})

	items, err := table.FetchAllItems(context.Background(), testTable)
	require.NoError(t, err)

	assert.Equal(t, []domain.Item{
		{Position: 0, ID: "rec1", Kind: domain.ItemKindText, Content: "plain text"},
		{Position: 1, ID: "rec2", Kind: domain.ItemKindText, Content: "rich text"},
		{Position: 2, ID: "rec3", Kind: domain.ItemKindText},
	}, items)
	assert.Equal(t, "/open-apis/bitable/v1/apps/app1/tables/tbl1/records", requests.all()[0].Path)
}

func TestTableCollection_DeleteShiftsLiveOrder(t *testing.T) {
	table, requests := recordsServer(t, []any{
		map[string]any{"record_id": "rec0", "fields": map[string]any{}},
		map[string]any{"record_id": "rec1", "fields": map[string]any{}},
		map[string]any{"record_id": "rec2", "fields": map[string]any{}},
		map[string]any{"record_id": "rec3", "fields": map[string]any{}},
	})
	ctx := context.Background()

	_, err := table.FetchAllItems(ctx, testTable)
	require.NoError(t, err)

	// Plan [1, 3] adjusted by the mutator to targets 1 and 2.
	require.NoError(t, table.DeleteItemAt(ctx, testTable, 1))
	require.NoError(t, table.DeleteItemAt(ctx, testTable, 2))

	var deleted []string
	for _, r := range requests.all() {
		if r.Method == http.MethodDelete {
			deleted = append(deleted, r.Path[strings.LastIndex(r.Path, "/")+1:])
		}
	}
	assert.Equal(t, []string{"rec1", "rec3"}, deleted)

	err = table.DeleteItemAt(ctx, testTable, 2)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestTableCollection_DeleteBeforeFetch(t *testing.T) {
	table, requests := recordsServer(t, nil)

	err := table.DeleteItemAt(context.Background(), testTable, 0)

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Empty(t, requests.all())
}

func TestTableCollection_AppendAndUpdate(t *testing.T) {
	table, requests := recordsServer(t, []any{
		map[string]any{"record_id": "rec0", "fields": map[string]any{}},
	})
	ctx := context.Background()
	_, err := table.FetchAllItems(ctx, testTable)
	require.NoError(t, err)

	item, err := table.AppendItem(ctx, testTable, "new")
	require.NoError(t, err)
	assert.Equal(t, domain.Item{Position: 1, ID: "recNew", Kind: domain.ItemKindText, Content: "new"}, item)

	require.NoError(t, table.UpdateItemContent(ctx, testTable, "rec0", "marked"))

	reqs := requests.all()
	post, put := reqs[1], reqs[2]
	assert.Equal(t, http.MethodPost, post.Method)
	assert.Equal(t, "new", post.Body["fields"].(map[string]any)["留言"])
	assert.Equal(t, http.MethodPut, put.Method)
	assert.Equal(t, "/open-apis/bitable/v1/apps/app1/tables/tbl1/records/rec0", put.Path)
	assert.Equal(t, "marked", put.Body["fields"].(map[string]any)["留言"])
}

func TestTableCollection_Comments(t *testing.T) {
	table, requests := recordsServer(t, nil)

	comments, err := table.FetchUnresolvedComments(context.Background(), testTable)
	require.NoError(t, err)
	assert.Empty(t, comments)
	assert.ErrorIs(t, table.ResolveComment(context.Background(), testTable, "c1"), domain.ErrInvalidInput)
	assert.Empty(t, requests.all())
}

func TestSplitTableID(t *testing.T) {
	app, table, err := splitTableID("bascn/tblx")
	require.NoError(t, err)
	assert.Equal(t, "bascn", app)
	assert.Equal(t, "tblx", table)

	for _, bad := range []string{"", "bascn", "/tblx", "bascn/"} {
		_, _, err := splitTableID(bad)
		assert.ErrorIs(t, err, ErrInvalidResource, bad)
	}
}
