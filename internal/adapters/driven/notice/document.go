package notice

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/noticesync/internal/core/domain"
	"github.com/custodia-labs/noticesync/internal/core/ports/driven"
)

// Ensure Document implements the interface.
var _ driven.NoticeDocument = (*Document)(nil)

// editor applies structural edits to one file format.
type editor interface {
	// insert adds a paragraph so that it ends up at index.
	insert(index int, text string) error

	// write persists the edited file to path.
	write(path string) error
}

// Document is an opened notice. Paragraph texts are tracked here so that
// anchor lookups behave the same for every format.
type Document struct {
	path  string
	ed    editor
	paras []string

	// next is the index the next entry for a heading is inserted at.
	next map[string]int
}

func newDocument(path string, ed editor, paras []string) *Document {
	return &Document{path: path, ed: ed, paras: paras, next: make(map[string]int)}
}

// Path returns the file backing the document.
func (d *Document) Path() string {
	return d.path
}

// Paragraphs returns the current paragraph texts.
func (d *Document) Paragraphs() []string {
	return append([]string(nil), d.paras...)
}

// HasAnchor reports whether a paragraph contains heading.
func (d *Document) HasAnchor(heading string) bool {
	return d.anchor(heading) >= 0
}

func (d *Document) anchor(heading string) int {
	for i, p := range d.paras {
		if strings.Contains(p, heading) {
			return i
		}
	}
	return -1
}

// InsertAfterAnchor inserts text after the anchor paragraph, or after the
// last entry inserted for the same heading.
func (d *Document) InsertAfterAnchor(heading, text string) error {
	at, ok := d.next[heading]
	if !ok {
		i := d.anchor(heading)
		if i < 0 {
			return fmt.Errorf("%w: %q in %s", domain.ErrAnchorNotFound, heading, d.path)
		}
		at = i + 1
	}

	if err := d.ed.insert(at, text); err != nil {
		return fmt.Errorf("insert into %s: %w", d.path, err)
	}

	d.paras = append(d.paras, "")
	copy(d.paras[at+1:], d.paras[at:])
	d.paras[at] = text

	for h, n := range d.next {
		if n >= at {
			d.next[h] = n + 1
		}
	}
	d.next[heading] = at + 1
	return nil
}

// Save writes the document back to its file.
func (d *Document) Save() error {
	if err := d.ed.write(d.path); err != nil {
		return fmt.Errorf("save %s: %w", d.path, err)
	}
	return nil
}
