package driven

import (
	"context"
	"time"
)

// NoticeStore opens the local notice artifact for a day.
type NoticeStore interface {
	// Open returns the notice for the given day, seeding it from the monthly
	// template when absent. Returns domain.ErrLocalArtifactMissing when
	// neither exists.
	Open(ctx context.Context, day time.Time) (NoticeDocument, error)
}

// NoticeDocument is a paragraph-structured document opened for appending.
type NoticeDocument interface {
	// Path returns the file backing the document.
	Path() string

	// HasAnchor reports whether a paragraph contains the heading substring.
	HasAnchor(heading string) bool

	// InsertAfterAnchor inserts text as a new paragraph after the paragraph
	// containing heading, following any entries inserted before it through
	// this document. Returns domain.ErrAnchorNotFound when absent.
	InsertAfterAnchor(heading, text string) error

	// Save persists the document.
	Save() error
}
