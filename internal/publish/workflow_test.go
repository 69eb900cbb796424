package publish

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/heritage-bijoux/appraiser/internal/archive"
	"github.com/heritage-bijoux/appraiser/internal/draft"
	"github.com/heritage-bijoux/appraiser/internal/inventory"
	"github.com/heritage-bijoux/appraiser/internal/kv"
	"github.com/heritage-bijoux/appraiser/internal/photos"
)

type fakeInventory struct {
	mu      sync.Mutex
	calls   []inventory.Submission
	id      string
	err     error
	started chan struct{}
	release chan struct{}
}

func (f *fakeInventory) Create(ctx context.Context, sub inventory.Submission) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, sub)
	f.mu.Unlock()

	if f.started != nil {
		close(f.started)
	}
	if f.release != nil {
		<-f.release
	}
	return f.id, f.err
}

func (f *fakeInventory) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type flakyArchive struct {
	store *archive.Store
	fails int
}

func (a *flakyArchive) Add(ctx context.Context, item archive.Item) error {
	if a.fails > 0 {
		a.fails--
		return errors.New("disk full")
	}
	return a.store.Add(ctx, item)
}

type sequenceIDs struct {
	n int
}

func (s *sequenceIDs) NewID() (string, error) {
	s.n++
	return "item-" + string(rune('0'+s.n)), nil
}

var fixedNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.Local)

func newFixture(t *testing.T, inv Inventory, fails int) (*Workflow, *Session, *archive.Store) {
	t.Helper()
	store := archive.NewStore(kv.NewMemory(), "")
	w, err := NewWorkflow(WorkflowConfig{
		Inventory:  inv,
		Archive:    &flakyArchive{store: store, fails: fails},
		IDProvider: &sequenceIDs{},
		Clock:      func() time.Time { return fixedNow },
	})
	if err != nil {
		t.Fatalf("NewWorkflow: %v", err)
	}
	return w, NewSession(photos.NewSet(nil)), store
}

func readyDraft() *draft.Draft {
	return &draft.Draft{Title: "Bague Or", Price: 350, Description: "Or 18 carats", Tags: []string{"or", "vintage"}}
}

func TestPublishRequiresValidDraft(t *testing.T) {
	tests := []struct {
		name  string
		draft *draft.Draft
	}{
		{name: "no draft", draft: nil},
		{name: "blank title", draft: &draft.Draft{Title: "   ", Price: 10}},
		{name: "negative price", draft: &draft.Draft{Title: "Bague", Price: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := &fakeInventory{id: "remote-1"}
			w, s, store := newFixture(t, inv, 0)
			s.draft = tt.draft.Clone()
			s.photos.Append("a")

			item, err := w.Publish(context.Background(), s)
			if !errors.Is(err, ErrPreconditionFailed) {
				t.Fatalf("expected ErrPreconditionFailed, got %v", err)
			}
			if item != nil {
				t.Errorf("expected no item, got %+v", item)
			}
			if inv.callCount() != 0 {
				t.Errorf("inventory must not be called")
			}
			if s.State() != StateEditing {
				t.Errorf("expected editing, got %s", s.State())
			}
			if s.photos.Len() != 1 {
				t.Errorf("expected photos to be kept")
			}
			if len(store.Items()) != 0 {
				t.Errorf("expected empty archive")
			}
		})
	}
}

func TestPublishSuccess(t *testing.T) {
	inv := &fakeInventory{id: "remote-42"}
	w, s, store := newFixture(t, inv, 0)
	if err := s.SetDraft(readyDraft()); err != nil {
		t.Fatal(err)
	}
	if err := s.AppendPhotos("first", "second"); err != nil {
		t.Fatal(err)
	}

	item, err := w.Publish(context.Background(), s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := archive.Item{
		ID:          "item-1",
		Title:       "Bague Or",
		Price:       350,
		Description: "Or 18 carats",
		Tags:        []string{"or", "vintage"},
		Date:        "2026-03-14",
		Image:       "first",
		RemoteID:    "remote-42",
	}
	if !reflect.DeepEqual(*item, want) {
		t.Errorf("Expected:\n%+v\nGot:\n%+v", want, *item)
	}

	items := store.Items()
	if len(items) != 1 || !reflect.DeepEqual(items[0], want) {
		t.Errorf("expected archive head to be the published item, got %+v", items)
	}

	sub := inv.calls[0]
	if sub.Title != "Bague Or" || sub.Price != 350 || !reflect.DeepEqual(sub.Photos, []string{"first", "second"}) {
		t.Errorf("unexpected submission %+v", sub)
	}

	if s.State() != StatePublished {
		t.Errorf("expected published, got %s", s.State())
	}
	if s.Draft() != nil || len(s.Photos()) != 0 {
		t.Errorf("expected session to be cleared after publish")
	}
}

func TestPublishPrependsToArchive(t *testing.T) {
	inv := &fakeInventory{id: "remote"}
	w, s, store := newFixture(t, inv, 0)

	for _, title := range []string{"Bague", "Broche"} {
		d := readyDraft()
		d.Title = title
		if err := s.SetDraft(d); err != nil {
			t.Fatal(err)
		}
		if _, err := w.Publish(context.Background(), s); err != nil {
			t.Fatalf("publish %s: %v", title, err)
		}
	}

	items := store.Items()
	if len(items) != 2 || items[0].Title != "Broche" || items[1].Title != "Bague" {
		t.Errorf("expected most recent first, got %+v", items)
	}
	if items[0].Image != "" {
		t.Errorf("expected no image for a photo-less publish, got %q", items[0].Image)
	}
}

func TestPublishRejectionKeepsSession(t *testing.T) {
	inv := &fakeInventory{err: &inventory.RejectedError{Status: 422, Body: `{"errors":"title"}`}}
	w, s, store := newFixture(t, inv, 0)
	d := readyDraft()
	if err := s.SetDraft(d); err != nil {
		t.Fatal(err)
	}
	if err := s.AppendPhotos("a", "b"); err != nil {
		t.Fatal(err)
	}

	_, err := w.Publish(context.Background(), s)
	if !errors.Is(err, inventory.ErrRemoteRejected) {
		t.Fatalf("expected ErrRemoteRejected, got %v", err)
	}
	if s.State() != StateEditing {
		t.Errorf("expected editing, got %s", s.State())
	}
	if !reflect.DeepEqual(s.Draft(), d) {
		t.Errorf("expected draft to be unchanged, got %+v", s.Draft())
	}
	if !reflect.DeepEqual(s.Photos(), []photos.Photo{"a", "b"}) {
		t.Errorf("expected photos to be unchanged, got %v", s.Photos())
	}
	if len(store.Items()) != 0 {
		t.Errorf("archive must not change on rejection")
	}
}

func TestPublishIsNotReentrant(t *testing.T) {
	inv := &fakeInventory{
		id:      "remote-1",
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	w, s, store := newFixture(t, inv, 0)
	if err := s.SetDraft(readyDraft()); err != nil {
		t.Fatal(err)
	}

	done := make(chan error, 1)
	go func() {
		_, err := w.Publish(context.Background(), s)
		done <- err
	}()
	<-inv.started

	if _, err := w.Publish(context.Background(), s); !errors.Is(err, ErrSubmitting) {
		t.Errorf("expected ErrSubmitting, got %v", err)
	}
	if err := s.EditDraft(draft.Patch{Price: ptr(1)}); !errors.Is(err, ErrSubmitting) {
		t.Errorf("expected edits to be rejected while submitting, got %v", err)
	}
	if err := s.AppendPhotos("late"); !errors.Is(err, ErrSubmitting) {
		t.Errorf("expected photo changes to be rejected while submitting, got %v", err)
	}

	close(inv.release)
	if err := <-done; err != nil {
		t.Fatalf("first publish failed: %v", err)
	}
	if inv.callCount() != 1 {
		t.Errorf("expected one remote call, got %d", inv.callCount())
	}
	if len(store.Items()) != 1 {
		t.Errorf("expected exactly one archived item, got %d", len(store.Items()))
	}
}

func TestPublishReconcileRetry(t *testing.T) {
	inv := &fakeInventory{id: "remote-7"}
	w, s, store := newFixture(t, inv, 1)
	if err := s.SetDraft(readyDraft()); err != nil {
		t.Fatal(err)
	}
	if err := s.AppendPhotos("a"); err != nil {
		t.Fatal(err)
	}

	_, err := w.Publish(context.Background(), s)
	var reconcile *ReconcileError
	if !errors.As(err, &reconcile) {
		t.Fatalf("expected *ReconcileError, got %v", err)
	}
	if reconcile.RemoteID != "remote-7" {
		t.Errorf("expected remote id remote-7, got %q", reconcile.RemoteID)
	}
	if s.State() != StateEditing || s.Snapshot().PendingRemoteID != "remote-7" {
		t.Errorf("expected editing with a pending remote id, got %+v", s.Snapshot())
	}
	if s.Draft() == nil || len(s.Photos()) != 1 {
		t.Errorf("expected session to be kept for the retry")
	}

	item, err := w.Publish(context.Background(), s)
	if err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if inv.callCount() != 1 {
		t.Errorf("retry must not call the inventory again, got %d calls", inv.callCount())
	}
	if item.RemoteID != "remote-7" {
		t.Errorf("expected archived item to carry remote-7, got %q", item.RemoteID)
	}
	if len(store.Items()) != 1 {
		t.Errorf("expected one archived item, got %d", len(store.Items()))
	}
	if s.Snapshot().PendingRemoteID != "" {
		t.Errorf("expected pending remote id to be cleared")
	}
}

func TestNewWorkflowRequiresCollaborators(t *testing.T) {
	if _, err := NewWorkflow(WorkflowConfig{Archive: &flakyArchive{}}); err == nil {
		t.Errorf("expected error without inventory")
	}
	if _, err := NewWorkflow(WorkflowConfig{Inventory: &fakeInventory{}}); err == nil {
		t.Errorf("expected error without archive")
	}
}

func TestUUIDProviderIsTimeOrdered(t *testing.T) {
	p := NewUUIDProvider()
	a, err := p.NewID()
	if err != nil {
		t.Fatal(err)
	}
	time.Sleep(2 * time.Millisecond)
	b, err := p.NewID()
	if err != nil {
		t.Fatal(err)
	}
	if len(a) != 36 || a >= b {
		t.Errorf("expected ordered UUIDs, got %s and %s", a, b)
	}
}
