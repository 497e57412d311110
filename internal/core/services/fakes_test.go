package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/noticesync/internal/core/domain"
	"github.com/custodia-labs/noticesync/internal/core/ports/driven"
)

// --- Fake remote collection ---

// fakeRemote keeps a live ordered list and shifts it on every delete,
// like the real services do.
type fakeRemote struct {
	mu       sync.Mutex
	items    []domain.Item
	comments []domain.Comment
	nextID   int

	fetchErr      error
	commentsErr   error
	appendErr     error
	resolveErr    map[string]error
	updateErr     map[string]error
	deleteFailAt  map[int]error // by call index
	deleteApplies bool          // a failed delete still removes the item

	deleteCalls []int
	updates     map[string]string
	resolved    []string
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		resolveErr:   make(map[string]error),
		updateErr:    make(map[string]error),
		deleteFailAt: make(map[int]error),
		updates:      make(map[string]string),
	}
}

func (f *fakeRemote) add(kind domain.ItemKind, content string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	id := fmt.Sprintf("item-%d", f.nextID)
	f.items = append(f.items, domain.Item{ID: id, Kind: kind, Content: content})
	return id
}

func (f *fakeRemote) text(contents ...string) []string {
	ids := make([]string, len(contents))
	for i, c := range contents {
		ids[i] = f.add(domain.ItemKindText, c)
	}
	return ids
}

func (f *fakeRemote) contents() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.items))
	for i, item := range f.items {
		out[i] = item.Content
	}
	return out
}

func (f *fakeRemote) ids() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.items))
	for i, item := range f.items {
		out[i] = item.ID
	}
	return out
}

func (f *fakeRemote) FetchAllItems(_ context.Context, _ string) ([]domain.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	out := make([]domain.Item, len(f.items))
	for i, item := range f.items {
		item.Position = i
		out[i] = item
	}
	return out, nil
}

func (f *fakeRemote) FetchUnresolvedComments(_ context.Context, _ string) ([]domain.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.commentsErr != nil {
		return nil, f.commentsErr
	}
	var out []domain.Comment
	for _, c := range f.comments {
		if !c.Solved {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeRemote) AppendItem(_ context.Context, _ string, content string) (domain.Item, error) {
	if f.appendErr != nil {
		return domain.Item{}, f.appendErr
	}
	id := f.add(domain.ItemKindText, content)
	f.mu.Lock()
	defer f.mu.Unlock()
	return domain.Item{Position: len(f.items) - 1, ID: id, Kind: domain.ItemKindText, Content: content}, nil
}

func (f *fakeRemote) UpdateItemContent(_ context.Context, _ string, itemID, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.updateErr[itemID]; err != nil {
		return err
	}
	for i := range f.items {
		if f.items[i].ID == itemID {
			f.items[i].Content = content
			f.updates[itemID] = content
			return nil
		}
	}
	return domain.ErrNotFound
}

func (f *fakeRemote) DeleteItemAt(_ context.Context, _ string, position int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	call := len(f.deleteCalls)
	f.deleteCalls = append(f.deleteCalls, position)
	if position < 0 || position >= len(f.items) {
		return fmt.Errorf("position %d out of range", position)
	}
	if err := f.deleteFailAt[call]; err != nil {
		if f.deleteApplies {
			f.items = append(f.items[:position], f.items[position+1:]...)
		}
		return err
	}
	f.items = append(f.items[:position], f.items[position+1:]...)
	return nil
}

func (f *fakeRemote) ResolveComment(_ context.Context, _ string, commentID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.resolveErr[commentID]; err != nil {
		return err
	}
	for i := range f.comments {
		if f.comments[i].ID == commentID {
			f.comments[i].Solved = true
			f.resolved = append(f.resolved, commentID)
			return nil
		}
	}
	return domain.ErrNotFound
}

// --- Fake notice ---

type fakeNoticeStore struct {
	doc     *fakeNoticeDoc
	openErr error
	opened  []time.Time
}

func (s *fakeNoticeStore) Open(_ context.Context, day time.Time) (driven.NoticeDocument, error) {
	s.opened = append(s.opened, day)
	if s.openErr != nil {
		return nil, s.openErr
	}
	s.doc.inserted = 0
	return s.doc, nil
}

// fakeNoticeDoc keeps paragraphs in memory; saved holds what reached "disk".
type fakeNoticeDoc struct {
	path       string
	paragraphs []string
	saved      []string
	inserted   int
	saves      int
	saveErr    error
}

func newFakeNoticeDoc(paragraphs ...string) *fakeNoticeDoc {
	return &fakeNoticeDoc{path: "2024-01-02 通知.docx", paragraphs: paragraphs}
}

func (d *fakeNoticeDoc) Path() string { return d.path }

func (d *fakeNoticeDoc) anchor(heading string) int {
	for i, p := range d.paragraphs {
		if strings.Contains(p, heading) {
			return i
		}
	}
	return -1
}

func (d *fakeNoticeDoc) HasAnchor(heading string) bool {
	return d.anchor(heading) >= 0
}

func (d *fakeNoticeDoc) InsertAfterAnchor(heading, text string) error {
	idx := d.anchor(heading)
	if idx < 0 {
		return domain.ErrAnchorNotFound
	}
	pos := idx + 1 + d.inserted
	d.paragraphs = append(d.paragraphs[:pos], append([]string{text}, d.paragraphs[pos:]...)...)
	d.inserted++
	return nil
}

func (d *fakeNoticeDoc) Save() error {
	d.saves++
	if d.saveErr != nil {
		return d.saveErr
	}
	d.saved = append([]string(nil), d.paragraphs...)
	return nil
}

// --- Fake delivery ledger ---

type fakeDeliveryStore struct {
	mu         sync.Mutex
	deliveries []domain.Delivery
	recordErr  error
}

func (s *fakeDeliveryStore) RecordDelivery(_ context.Context, d domain.Delivery) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.recordErr != nil {
		return s.recordErr
	}
	s.deliveries = append(s.deliveries, d)
	return nil
}

func (s *fakeDeliveryStore) MarkDelivered(_ context.Context, runID, itemID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.deliveries {
		if s.deliveries[i].RunID == runID && s.deliveries[i].ItemID == itemID {
			s.deliveries[i].Marked = true
			return nil
		}
	}
	return domain.ErrNotFound
}

func (s *fakeDeliveryStore) ListUnmarked(_ context.Context, since time.Time) ([]domain.Delivery, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Delivery
	for _, d := range s.deliveries {
		if !d.Marked && !d.DeliveredAt.Before(since) {
			out = append(out, d)
		}
	}
	return out, nil
}

func (s *fakeDeliveryStore) ListDeliveries(_ context.Context, limit int) ([]domain.Delivery, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Delivery, 0, len(s.deliveries))
	for i := len(s.deliveries) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.deliveries[i])
	}
	return out, nil
}

var errBoom = errors.New("boom")

// Ensure fakes implement interfaces
var _ driven.RemoteCollection = (*fakeRemote)(nil)
var _ driven.NoticeStore = (*fakeNoticeStore)(nil)
var _ driven.DeliveryStore = (*fakeDeliveryStore)(nil)
