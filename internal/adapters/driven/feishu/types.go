package feishu

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/custodia-labs/noticesync/internal/core/domain"
)

// Docx block types the adapter distinguishes.
const (
	blockTypePage     = 1
	blockTypeText     = 2
	blockTypeHeading1 = 3
	blockTypeHeading9 = 11
	blockTypeImage    = 27
)

// envelope wraps every open platform response.
type envelope struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

type tenantTokenRequest struct {
	AppID     string `json:"app_id"`
	AppSecret string `json:"app_secret"`
}

// tenantTokenResponse is not wrapped in an envelope data field.
type tenantTokenResponse struct {
	Code              int    `json:"code"`
	Msg               string `json:"msg"`
	TenantAccessToken string `json:"tenant_access_token"`
	Expire            int    `json:"expire"`
}

type textRun struct {
	Content string `json:"content"`
}

type textElement struct {
	TextRun *textRun `json:"text_run,omitempty"`
}

type textBody struct {
	Elements []textElement `json:"elements"`
}

// plain concatenates the text runs.
func (t *textBody) plain() string {
	if t == nil {
		return ""
	}
	var b strings.Builder
	for _, el := range t.Elements {
		if el.TextRun != nil {
			b.WriteString(el.TextRun.Content)
		}
	}
	return b.String()
}

func newTextBody(content string) *textBody {
	return &textBody{Elements: []textElement{{TextRun: &textRun{Content: content}}}}
}

// block is one docx block. Body holds the text of text and heading blocks,
// which the API nests under a key named after the block type.
type block struct {
	BlockID   string    `json:"block_id"`
	BlockType int       `json:"block_type"`
	ParentID  string    `json:"parent_id,omitempty"`
	Children  []string  `json:"children,omitempty"`
	Body      *textBody `json:"-"`
}

// bodyKey returns the JSON key holding the text of a block type.
func bodyKey(blockType int) string {
	switch {
	case blockType == blockTypeText:
		return "text"
	case blockType >= blockTypeHeading1 && blockType <= blockTypeHeading9:
		return "heading" + strconv.Itoa(blockType-blockTypeHeading1+1)
	default:
		return ""
	}
}

func (b *block) UnmarshalJSON(data []byte) error {
	type plainBlock block
	var pb plainBlock
	if err := json.Unmarshal(data, &pb); err != nil {
		return err
	}
	*b = block(pb)

	key := bodyKey(b.BlockType)
	if key == "" {
		return nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	raw, ok := fields[key]
	if !ok {
		return nil
	}
	b.Body = &textBody{}
	return json.Unmarshal(raw, b.Body)
}

func (b block) MarshalJSON() ([]byte, error) {
	type plainBlock block
	out := map[string]any{}
	raw, err := json.Marshal(plainBlock(b))
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	if key := bodyKey(b.BlockType); key != "" && b.Body != nil {
		out[key] = b.Body
	}
	return json.Marshal(out)
}

// kind maps the block type onto the domain item kind.
func (b block) kind() domain.ItemKind {
	switch {
	case b.BlockType == blockTypeText:
		return domain.ItemKindText
	case b.BlockType >= blockTypeHeading1 && b.BlockType <= blockTypeHeading9:
		return domain.ItemKindHeading
	case b.BlockType == blockTypeImage:
		return domain.ItemKindImage
	default:
		return domain.ItemKindOther
	}
}

type blockPage struct {
	Items     []block `json:"items"`
	HasMore   bool    `json:"has_more"`
	PageToken string  `json:"page_token"`
}

type createBlocksRequest struct {
	Children []block `json:"children"`
	Index    int     `json:"index"`
}

type createBlocksResponse struct {
	Children []block `json:"children"`
}

type updateBlockRequest struct {
	UpdateTextElements *textBody `json:"update_text_elements"`
}

type batchDeleteRequest struct {
	StartIndex int `json:"start_index"`
	EndIndex   int `json:"end_index"`
}

type commentTextRun struct {
	Text string `json:"text"`
}

type commentElement struct {
	Type    string          `json:"type"`
	TextRun *commentTextRun `json:"text_run,omitempty"`
}

type commentReply struct {
	ReplyID string `json:"reply_id"`
	Content struct {
		Elements []commentElement `json:"elements"`
	} `json:"content"`
}

type comment struct {
	CommentID    string `json:"comment_id"`
	IsSolved     bool   `json:"is_solved"`
	SolverUserID string `json:"solver_user_id,omitempty"`
	ReplyList    struct {
		Replies []commentReply `json:"replies"`
	} `json:"reply_list"`
}

// text returns the plain text of the first reply.
func (c comment) text() string {
	if len(c.ReplyList.Replies) == 0 {
		return ""
	}
	var b strings.Builder
	for _, el := range c.ReplyList.Replies[0].Content.Elements {
		if el.TextRun != nil {
			b.WriteString(el.TextRun.Text)
		}
	}
	return b.String()
}

func (c comment) solved() bool {
	return c.IsSolved || c.SolverUserID != ""
}

type commentPage struct {
	Items     []comment `json:"items"`
	HasMore   bool      `json:"has_more"`
	PageToken string    `json:"page_token"`
}

type resolveCommentRequest struct {
	IsSolved bool `json:"is_solved"`
}

type record struct {
	RecordID string         `json:"record_id"`
	Fields   map[string]any `json:"fields"`
}

// fieldText reads a text field stored either as a string or as a rich-text
// segment array.
func (r record) fieldText(name string) string {
	switch v := r.Fields[name].(type) {
	case string:
		return v
	case []any:
		var b strings.Builder
		for _, seg := range v {
			if m, ok := seg.(map[string]any); ok {
				if s, ok := m["text"].(string); ok {
					b.WriteString(s)
				}
			}
		}
		return b.String()
	default:
		return ""
	}
}

type recordPage struct {
	Items     []record `json:"items"`
	HasMore   bool     `json:"has_more"`
	PageToken string   `json:"page_token"`
}

type recordRequest struct {
	Fields map[string]any `json:"fields"`
}

type recordResponse struct {
	Record record `json:"record"`
}
