package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/custodia-labs/noticesync/internal/core/domain"
)

const (
	itemsSuffix    = "items.json"
	commentsSuffix = "comments.json"
)

// item is the on-disk form of domain.Item.
type item struct {
	Position int    `json:"position"`
	ID       string `json:"id"`
	Kind     string `json:"kind"`
	Content  string `json:"content"`
}

type comment struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// file is one recorded fetch.
type file struct {
	Resource   string    `json:"resource"`
	CapturedAt time.Time `json:"captured_at"`
	Items      []item    `json:"items,omitempty"`
	Comments   []comment `json:"comments,omitempty"`
}

// Dir reads and writes snapshot files in one directory.
type Dir struct {
	path string
	now  func() time.Time
}

// NewDir creates a snapshot directory handle.
func NewDir(path string) *Dir {
	return &Dir{path: path, now: time.Now}
}

// filePath maps a resource id to a file name; table ids contain a slash.
func (d *Dir) filePath(resourceID, suffix string) string {
	name := strings.NewReplacer("/", "_", "\\", "_", ":", "_").Replace(resourceID)
	return filepath.Join(d.path, name+"."+suffix)
}

func (d *Dir) write(resourceID, suffix string, f file) error {
	if err := os.MkdirAll(d.path, 0o700); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}
	f.Resource = resourceID
	f.CapturedAt = d.now().UTC()

	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	path := d.filePath(resourceID, suffix)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write snapshot %s: %w", path, err)
	}
	return nil
}

func (d *Dir) read(resourceID, suffix string) (file, error) {
	path := d.filePath(resourceID, suffix)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return file{}, fmt.Errorf("%w: snapshot %s", domain.ErrNotFound, path)
		}
		return file{}, fmt.Errorf("read snapshot %s: %w", path, err)
	}

	var f file
	if err := json.Unmarshal(data, &f); err != nil {
		return file{}, fmt.Errorf("decode snapshot %s: %w", path, err)
	}
	return f, nil
}

// WriteItems records a fetched collection.
func (d *Dir) WriteItems(resourceID string, items []domain.Item) error {
	out := make([]item, len(items))
	for i, it := range items {
		out[i] = item{Position: it.Position, ID: it.ID, Kind: it.Kind.String(), Content: it.Content}
	}
	return d.write(resourceID, itemsSuffix, file{Items: out})
}

// ReadItems returns the recorded collection.
func (d *Dir) ReadItems(resourceID string) ([]domain.Item, error) {
	f, err := d.read(resourceID, itemsSuffix)
	if err != nil {
		return nil, err
	}
	items := make([]domain.Item, len(f.Items))
	for i, it := range f.Items {
		items[i] = domain.Item{Position: it.Position, ID: it.ID, Kind: parseKind(it.Kind), Content: it.Content}
	}
	return items, nil
}

// WriteComments records fetched comments.
func (d *Dir) WriteComments(resourceID string, comments []domain.Comment) error {
	out := make([]comment, len(comments))
	for i, c := range comments {
		out[i] = comment{ID: c.ID, Text: c.Text}
	}
	return d.write(resourceID, commentsSuffix, file{Comments: out})
}

// ReadComments returns the recorded comments. A resource never recorded
// has none.
func (d *Dir) ReadComments(resourceID string) ([]domain.Comment, error) {
	f, err := d.read(resourceID, commentsSuffix)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	comments := make([]domain.Comment, len(f.Comments))
	for i, c := range f.Comments {
		comments[i] = domain.Comment{ID: c.ID, Text: c.Text}
	}
	return comments, nil
}

func parseKind(s string) domain.ItemKind {
	for _, k := range []domain.ItemKind{domain.ItemKindText, domain.ItemKindHeading, domain.ItemKindImage} {
		if k.String() == s {
			return k
		}
	}
	return domain.ItemKindOther
}
