package domain

import "fmt"

// ResourceKind identifies which remote pipeline a resource belongs to.
type ResourceKind string

const (
	// ResourceDocument is a hierarchical document made of blocks.
	ResourceDocument ResourceKind = "document"

	// ResourceTable is a flat table made of records.
	ResourceTable ResourceKind = "table"
)

// ParseResourceKind converts user input into a ResourceKind.
func ParseResourceKind(s string) (ResourceKind, error) {
	switch ResourceKind(s) {
	case ResourceDocument, ResourceTable:
		return ResourceKind(s), nil
	default:
		return "", fmt.Errorf("%w: unknown resource kind %q", ErrInvalidInput, s)
	}
}

// ItemKind classifies the content of an item.
type ItemKind int

const (
	// ItemKindOther is content the pipeline never touches (tables, dividers, ...).
	ItemKindOther ItemKind = iota

	// ItemKindText is a plain text paragraph or a table record.
	ItemKindText

	// ItemKindHeading is a heading paragraph.
	ItemKindHeading

	// ItemKindImage is an embedded image.
	ItemKindImage
)

// String returns the string representation of the kind.
func (k ItemKind) String() string {
	switch k {
	case ItemKindText:
		return "text"
	case ItemKindHeading:
		return "heading"
	case ItemKindImage:
		return "image"
	default:
		return "other"
	}
}

// Item is one unit of content in a remote ordered collection.
// Position is only valid against the snapshot it was fetched in; any
// deletion invalidates every position greater than the deleted one.
type Item struct {
	// Position is the index within the remote collection at fetch time.
	Position int

	// ID identifies the item independently of its position.
	ID string

	// Kind is the content kind.
	Kind ItemKind

	// Content is the raw text. Empty for blank items.
	Content string
}

// IsBlank reports whether the item is a text item with no content.
func (i Item) IsBlank() bool {
	return i.Kind == ItemKindText && i.Content == ""
}

// Comment is an unresolved review comment attached to a remote resource.
type Comment struct {
	// ID is the remote comment identifier.
	ID string

	// Text is the plain text of the comment's first reply.
	Text string

	// Solved reports whether the comment has been resolved before.
	Solved bool
}

// Resource is one configured remote collection processed by a run.
type Resource struct {
	// Kind selects the pipeline.
	Kind ResourceKind

	// ID is the remote identifier passed to the collection adapter.
	ID string

	// Heading is the region marker. Empty means the whole collection is the region.
	Heading string

	// Policy drives the classifier.
	Policy ClassifyPolicy
}
