package services

import (
	"time"

	"github.com/custodia-labs/noticesync/internal/core/domain"
)

// LocateRegion returns the items strictly after the heading whose text
// equals marker, up to the end of the collection. An empty marker selects
// the whole collection.
func LocateRegion(items []domain.Item, marker string) ([]domain.Item, error) {
	if marker == "" {
		return items, nil
	}
	for i, item := range items {
		if item.Kind == domain.ItemKindHeading && item.Content == marker {
			return items[i+1:], nil
		}
	}
	return nil, &domain.HeadingNotFoundError{Heading: marker}
}

// Classify assigns every item of a region to exactly one bucket.
// It performs no I/O; the same inputs always give the same output.
func Classify(region []domain.Item, now time.Time, policy domain.ClassifyPolicy) domain.Classification {
	loc := policy.Location
	if loc == nil {
		loc = time.Local
	}
	now = now.In(loc)
	windowStart, windowEnd := secondPassWindow(now, policy.Cutoff, loc)

	assignments := make([]domain.Assignment, 0, len(region))
	for _, item := range region {
		a := domain.Assignment{Item: item, Bucket: domain.BucketKeep}

		switch item.Kind {
		case domain.ItemKindImage:
			a.Bucket = domain.BucketImageDeleteIfAllStale
		case domain.ItemKindText:
			a.State = domain.ParseContent(item.Content, loc)
			a.Bucket = textBucket(a.State, now, windowStart, windowEnd, policy.Retention)
		}

		assignments = append(assignments, a)
	}
	return domain.NewClassification(assignments)
}

func textBucket(state domain.ContentState, now, windowStart, windowEnd time.Time, retention time.Duration) domain.Bucket {
	switch state.Kind {
	case domain.StateBlank:
		return domain.BucketBlankDelete
	case domain.StateFresh:
		return domain.BucketToDeliver
	}

	at := state.NotifiedAt
	// (cutoff yesterday, 23:59:59 yesterday]
	if at.After(windowStart) && !at.After(windowEnd) {
		return domain.BucketToDeliverSecondPass
	}
	if now.Sub(at) > retention {
		return domain.BucketStaleDelete
	}
	return domain.BucketKeep
}

// secondPassWindow reads cutoff as a wall-clock offset from midnight, so
// the window start stays at the same local time across DST transitions.
func secondPassWindow(now time.Time, cutoff time.Duration, loc *time.Location) (time.Time, time.Time) {
	y, m, d := now.Date()
	hour, minute, sec := int(cutoff/time.Hour), int(cutoff%time.Hour/time.Minute), int(cutoff%time.Minute/time.Second)
	start := time.Date(y, m, d-1, hour, minute, sec, 0, loc)
	end := time.Date(y, m, d-1, 23, 59, 59, 0, loc)
	return start, end
}
