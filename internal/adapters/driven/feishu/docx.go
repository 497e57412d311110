package feishu

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/google/uuid"

	"github.com/custodia-labs/noticesync/internal/core/domain"
	"github.com/custodia-labs/noticesync/internal/core/ports/driven"
)

// Ensure DocumentCollection implements the interface.
var _ driven.RemoteCollection = (*DocumentCollection)(nil)

// latestRevision addresses the current revision of a document.
const latestRevision = "-1"

// DocumentCollection exposes the top-level blocks of a docx document.
// Positions are indexes among the children of the page block, which is the
// only index the batch delete endpoint accepts.
type DocumentCollection struct {
	client *Client
}

// NewDocumentCollection creates the docx collection adapter.
func NewDocumentCollection(client *Client) *DocumentCollection {
	return &DocumentCollection{client: client}
}

func blocksPath(documentID string) string {
	return "/open-apis/docx/v1/documents/" + url.PathEscape(documentID) + "/blocks"
}

func commentsPath(documentID string) string {
	return "/open-apis/drive/v1/files/" + url.PathEscape(documentID) + "/comments"
}

// FetchAllItems lists every block and returns the page block's children in order.
func (d *DocumentCollection) FetchAllItems(ctx context.Context, documentID string) ([]domain.Item, error) {
	blocks, err := d.listBlocks(ctx, documentID)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]block, len(blocks))
	var page *block
	for i := range blocks {
		byID[blocks[i].BlockID] = blocks[i]
		if page == nil && blocks[i].BlockType == blockTypePage {
			page = &blocks[i]
		}
	}
	if page == nil {
		return nil, fmt.Errorf("feishu: document %s has no page block: %w", documentID, domain.ErrNotFound)
	}

	items := make([]domain.Item, 0, len(page.Children))
	for pos, id := range page.Children {
		item := domain.Item{Position: pos, ID: id, Kind: domain.ItemKindOther}
		if b, ok := byID[id]; ok {
			item.Kind = b.kind()
			item.Content = b.Body.plain()
		}
		items = append(items, item)
	}
	return items, nil
}

func (d *DocumentCollection) listBlocks(ctx context.Context, documentID string) ([]block, error) {
	var all []block
	pageToken := ""
	for {
		query := url.Values{}
		query.Set("page_size", strconv.Itoa(pageSize))
		query.Set("document_revision_id", latestRevision)
		if pageToken != "" {
			query.Set("page_token", pageToken)
		}

		var page blockPage
		if err := d.client.do(ctx, http.MethodGet, blocksPath(documentID), query, nil, &page); err != nil {
			return nil, err
		}
		all = append(all, page.Items...)

		if !page.HasMore || page.PageToken == "" {
			return all, nil
		}
		pageToken = page.PageToken
	}
}

// FetchUnresolvedComments returns the document comments nobody has solved.
func (d *DocumentCollection) FetchUnresolvedComments(ctx context.Context, documentID string) ([]domain.Comment, error) {
	var comments []domain.Comment
	pageToken := ""
	for {
		query := url.Values{}
		query.Set("file_type", "docx")
		query.Set("is_solved", "false")
		if pageToken != "" {
			query.Set("page_token", pageToken)
		}

		var page commentPage
		if err := d.client.do(ctx, http.MethodGet, commentsPath(documentID), query, nil, &page); err != nil {
			return nil, err
		}
		for _, c := range page.Items {
			if c.solved() {
				continue
			}
			comments = append(comments, domain.Comment{ID: c.CommentID, Text: c.text()})
		}

		if !page.HasMore || page.PageToken == "" {
			return comments, nil
		}
		pageToken = page.PageToken
	}
}

// AppendItem adds a text block at the end of the document. The returned
// item has Position -1 because the create endpoint does not report it.
func (d *DocumentCollection) AppendItem(ctx context.Context, documentID, content string) (domain.Item, error) {
	query := url.Values{}
	query.Set("document_revision_id", latestRevision)
	query.Set("client_token", uuid.New().String())

	body := createBlocksRequest{
		Children: []block{{BlockType: blockTypeText, Body: newTextBody(content)}},
		Index:    -1,
	}
	path := blocksPath(documentID) + "/" + url.PathEscape(documentID) + "/children"

	var out createBlocksResponse
	if err := d.client.do(ctx, http.MethodPost, path, query, body, &out); err != nil {
		return domain.Item{}, err
	}

	item := domain.Item{Position: -1, Kind: domain.ItemKindText, Content: content}
	if len(out.Children) > 0 {
		item.ID = out.Children[0].BlockID
		if out.Children[0].Body != nil {
			item.Content = out.Children[0].Body.plain()
		}
	}
	return item, nil
}

// UpdateItemContent replaces the text elements of one block.
func (d *DocumentCollection) UpdateItemContent(ctx context.Context, documentID, blockID, content string) error {
	query := url.Values{}
	query.Set("document_revision_id", latestRevision)
	path := blocksPath(documentID) + "/" + url.PathEscape(blockID)
	return d.client.do(ctx, http.MethodPatch, path, query, updateBlockRequest{UpdateTextElements: newTextBody(content)}, nil)
}

// DeleteItemAt deletes the single child of the page block at position.
func (d *DocumentCollection) DeleteItemAt(ctx context.Context, documentID string, position int) error {
	if position < 0 {
		return fmt.Errorf("%w: negative position %d", domain.ErrInvalidInput, position)
	}
	query := url.Values{}
	query.Set("document_revision_id", latestRevision)
	path := blocksPath(documentID) + "/" + url.PathEscape(documentID) + "/children/batch_delete"
	return d.client.do(ctx, http.MethodDelete, path, query, batchDeleteRequest{StartIndex: position, EndIndex: position + 1}, nil)
}

// ResolveComment marks a comment as solved.
func (d *DocumentCollection) ResolveComment(ctx context.Context, documentID, commentID string) error {
	query := url.Values{}
	query.Set("file_type", "docx")
	path := commentsPath(documentID) + "/" + url.PathEscape(commentID)
	return d.client.do(ctx, http.MethodPatch, path, query, resolveCommentRequest{IsSolved: true}, nil)
}
