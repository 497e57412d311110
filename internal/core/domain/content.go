package domain

import (
	"strings"
	"time"
)

const (
	// DeliveredMarker follows the timestamp of an item that reached the notice.
	DeliveredMarker = "【已通知】"

	// NotifiedLayout is the fixed-width timestamp written before the marker.
	NotifiedLayout = "2006-01-02 15:04:05"
)

// ContentStateKind is the tag of a ContentState.
type ContentStateKind int

const (
	// StateBlank is an empty item.
	StateBlank ContentStateKind = iota

	// StateFresh is original content never delivered.
	StateFresh

	// StateNotified is content carrying a timestamp and the delivered marker.
	StateNotified
)

// ContentState is the delivery state an item carries in its own text.
type ContentState struct {
	Kind ContentStateKind

	// NotifiedAt is set only for StateNotified.
	NotifiedAt time.Time

	// Body is the text without the timestamp and marker.
	Body string
}

// ParseContent decodes the delivered marker from an item's text.
// Timestamps are interpreted in loc; a nil loc means time.Local.
func ParseContent(content string, loc *time.Location) ContentState {
	if content == "" {
		return ContentState{Kind: StateBlank}
	}
	if loc == nil {
		loc = time.Local
	}

	prefix, body, found := strings.Cut(content, DeliveredMarker)
	if !found {
		return ContentState{Kind: StateFresh, Body: content}
	}
	at, err := time.ParseInLocation(NotifiedLayout, prefix, loc)
	if err != nil {
		return ContentState{Kind: StateFresh, Body: content}
	}
	return ContentState{Kind: StateNotified, NotifiedAt: at, Body: body}
}

// FormatNotified encodes body as delivered at the given time.
func FormatNotified(at time.Time, body string) string {
	return at.Format(NotifiedLayout) + DeliveredMarker + body
}
