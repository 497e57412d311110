package notice

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/noticesync/internal/core/domain"
)

func textStore(dir string) *Store {
	return NewStore(domain.NoticeSettings{Dir: dir, Label: "通知", Format: domain.NoticeFormatText})
}

func TestStore_Paths(t *testing.T) {
	s := NewStore(domain.NoticeSettings{Dir: "/notices", Label: "通知"})

	assert.Equal(t, filepath.Join("/notices", "2024-01-03 通知.docx"), s.DatedPath(testDay))
	assert.Equal(t, filepath.Join("/notices", "2024-01-xx 通知.docx"), s.TemplatePath(testDay))
}

func TestStore_PathsWithoutLabel(t *testing.T) {
	s := NewStore(domain.NoticeSettings{Dir: "/notices", Format: domain.NoticeFormatXlsx})

	assert.Equal(t, filepath.Join("/notices", "2024-01-03.xlsx"), s.DatedPath(testDay))
}

func TestStore_OpenExisting(t *testing.T) {
	dir := t.TempDir()
	path := writeTextFile(t, dir, "2024-01-03 通知.txt", "title\n家长留言区\n")

	doc, err := textStore(dir).Open(context.Background(), testDay)
	require.NoError(t, err)

	assert.Equal(t, path, doc.Path())
	assert.True(t, doc.HasAnchor("留言区"))
}

func TestStore_SeedsFromTemplate(t *testing.T) {
	dir := t.TempDir()
	template := writeTextFile(t, dir, "2024-01-xx 通知.txt", "家长留言区\n")

	doc, err := textStore(dir).Open(context.Background(), testDay)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "2024-01-03 通知.txt"), doc.Path())
	require.NoError(t, doc.InsertAfterAnchor("家长留言区", "entry"))
	require.NoError(t, doc.Save())

	seeded, err := os.ReadFile(doc.Path())
	require.NoError(t, err)
	assert.Equal(t, "家长留言区\nentry\n", string(seeded))

	untouched, err := os.ReadFile(template)
	require.NoError(t, err)
	assert.Equal(t, "家长留言区\n", string(untouched))
}

func TestStore_TemplateOfOtherMonthIgnored(t *testing.T) {
	dir := t.TempDir()
	writeTextFile(t, dir, "2023-12-xx 通知.txt", "家长留言区\n")

	_, err := textStore(dir).Open(context.Background(), testDay)

	assert.ErrorIs(t, err, domain.ErrLocalArtifactMissing)
}

func TestStore_Missing(t *testing.T) {
	_, err := textStore(t.TempDir()).Open(context.Background(), testDay)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrLocalArtifactMissing)
	assert.Contains(t, err.Error(), "2024-01-03 通知.txt")
}

func TestStore_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := textStore(t.TempDir()).Open(ctx, testDay)

	assert.ErrorIs(t, err, context.Canceled)
}

func TestStore_CorruptDocx(t *testing.T) {
	dir := t.TempDir()
	writeTextFile(t, dir, "2024-01-03 通知.docx", "not a zip")
	s := NewStore(domain.NoticeSettings{Dir: dir, Label: "通知", Format: domain.NoticeFormatDocx})

	_, err := s.Open(context.Background(), testDay)

	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrLocalArtifactMissing)
}
