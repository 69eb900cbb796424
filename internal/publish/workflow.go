package publish

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/heritage-bijoux/appraiser/internal/archive"
	"github.com/heritage-bijoux/appraiser/internal/draft"
	"github.com/heritage-bijoux/appraiser/internal/inventory"
	"github.com/heritage-bijoux/appraiser/internal/photos"
)

var (
	ErrPreconditionFailed = errors.New("draft is not ready to publish")

	errMissingInventory = errors.New("inventory is required")
	errMissingArchive   = errors.New("archive is required")
)

// ReconcileError means the inventory accepted the draft but archiving it
// failed. The remote item exists; publishing again retries the archive
// commit only.
type ReconcileError struct {
	RemoteID string
	Err      error
}

func (e *ReconcileError) Error() string {
	return fmt.Sprintf("item %s was published but not archived: %v", e.RemoteID, e.Err)
}

func (e *ReconcileError) Unwrap() error {
	return e.Err
}

// Inventory creates a listing from a submission and returns its id.
type Inventory interface {
	Create(ctx context.Context, sub inventory.Submission) (string, error)
}

// Archive records published snapshots.
type Archive interface {
	Add(ctx context.Context, item archive.Item) error
}

type IDProvider interface {
	NewID() (string, error)
}

type uuidProvider struct{}

// NewUUIDProvider issues time-ordered UUIDv7 identifiers.
func NewUUIDProvider() IDProvider {
	return uuidProvider{}
}

func (uuidProvider) NewID() (string, error) {
	value, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return value.String(), nil
}

type WorkflowConfig struct {
	Inventory  Inventory
	Archive    Archive
	IDProvider IDProvider
	Clock      func() time.Time
}

// Workflow drives a session through editing, submitting and published.
type Workflow struct {
	inventory  Inventory
	archive    Archive
	idProvider IDProvider
	clock      func() time.Time
}

func NewWorkflow(cfg WorkflowConfig) (*Workflow, error) {
	if cfg.Inventory == nil {
		return nil, errMissingInventory
	}
	if cfg.Archive == nil {
		return nil, errMissingArchive
	}

	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	idProvider := cfg.IDProvider
	if idProvider == nil {
		idProvider = NewUUIDProvider()
	}

	return &Workflow{
		inventory:  cfg.Inventory,
		archive:    cfg.Archive,
		idProvider: idProvider,
		clock:      clock,
	}, nil
}

// Publish submits the session's draft and photos to the inventory. On
// success the snapshot is archived and the session is cleared; on failure
// the session is back to editing with draft and photos untouched.
func (w *Workflow) Publish(ctx context.Context, s *Session) (*archive.Item, error) {
	s.mu.Lock()
	if s.state == StateSubmitting {
		s.mu.Unlock()
		return nil, ErrSubmitting
	}
	if err := checkReady(s.draft); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	d := s.draft.Clone()
	set := s.photos.All()
	remoteID := s.pendingRemoteID
	s.transition(StateSubmitting)
	s.mu.Unlock()

	if remoteID == "" {
		id, err := w.inventory.Create(ctx, submission(d, set))
		if err != nil {
			slog.Error("Publish failed, draft kept for another attempt", "title", d.Title, "err", err)
			s.mu.Lock()
			s.transition(StateFailed)
			s.transition(StateEditing)
			s.mu.Unlock()
			return nil, fmt.Errorf("failed to publish draft: %w", err)
		}
		remoteID = id
	} else {
		slog.Info("Retrying archive of an already published item", "remote_id", remoteID)
	}

	item, err := w.snapshot(d, set, remoteID)
	if err == nil {
		err = w.archive.Add(ctx, item)
	}
	if err != nil {
		slog.Error("Published item could not be archived", "remote_id", remoteID, "err", err)
		s.mu.Lock()
		s.pendingRemoteID = remoteID
		s.transition(StateEditing)
		s.mu.Unlock()
		return nil, &ReconcileError{RemoteID: remoteID, Err: err}
	}

	s.mu.Lock()
	s.photos.Clear()
	s.draft = nil
	s.pendingRemoteID = ""
	s.transition(StatePublished)
	s.mu.Unlock()

	slog.Info("Draft published", "id", item.ID, "remote_id", remoteID, "title", item.Title)
	return &item, nil
}

func checkReady(d *draft.Draft) error {
	switch {
	case d == nil:
		return fmt.Errorf("%w: no draft", ErrPreconditionFailed)
	case strings.TrimSpace(d.Title) == "":
		return fmt.Errorf("%w: title is empty", ErrPreconditionFailed)
	case d.Price < 0:
		return fmt.Errorf("%w: price is negative", ErrPreconditionFailed)
	}
	return nil
}

func submission(d *draft.Draft, set []photos.Photo) inventory.Submission {
	encoded := make([]string, len(set))
	for i, p := range set {
		encoded[i] = string(p)
	}
	return inventory.Submission{
		Title:       d.Title,
		Description: d.Description,
		Price:       d.Price,
		Tags:        d.Tags,
		Photos:      encoded,
	}
}

func (w *Workflow) snapshot(d *draft.Draft, set []photos.Photo, remoteID string) (archive.Item, error) {
	id, err := w.idProvider.NewID()
	if err != nil {
		return archive.Item{}, fmt.Errorf("failed to generate archive id: %w", err)
	}

	var image string
	if len(set) > 0 {
		image = string(set[0])
	}

	return archive.Item{
		ID:          id,
		Title:       d.Title,
		Price:       d.Price,
		Description: d.Description,
		Tags:        append([]string{}, d.Tags...),
		Date:        w.clock().Format(archive.DateLayout),
		Image:       image,
		RemoteID:    remoteID,
	}, nil
}
