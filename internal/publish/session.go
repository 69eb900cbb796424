package publish

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/heritage-bijoux/appraiser/internal/archive"
	"github.com/heritage-bijoux/appraiser/internal/draft"
	"github.com/heritage-bijoux/appraiser/internal/photos"
)

// State is the publish state of the session.
type State string

const (
	StateEditing    State = "editing"
	StateSubmitting State = "submitting"
	StatePublished  State = "published"
	// StateFailed is transient: a failed submission always falls back to editing.
	StateFailed State = "failed"
)

var (
	ErrSubmitting = errors.New("a publish is already in progress")
	ErrNoDraft    = errors.New("no draft to edit")
)

// Session is the explicit state of one operator editing session: the photo
// set, the draft and where they are in the publish state machine.
type Session struct {
	photos *photos.Set
	draft  *draft.Draft
	state  State
	// remote id of a submission that succeeded but was never archived
	pendingRemoteID string
	mu              sync.Mutex
}

func NewSession(set *photos.Set) *Session {
	if set == nil {
		set = photos.NewSet(nil)
	}
	return &Session{
		photos: set,
		state:  StateEditing,
	}
}

// Snapshot is a read-only copy of the session.
type Snapshot struct {
	State           State          `json:"state"`
	Draft           *draft.Draft   `json:"draft,omitempty"`
	Photos          []photos.Photo `json:"photos"`
	PendingRemoteID string         `json:"pending_remote_id,omitempty"`
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		State:           s.state,
		Draft:           s.draft.Clone(),
		Photos:          s.photos.All(),
		PendingRemoteID: s.pendingRemoteID,
	}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Draft returns a copy of the current draft, or nil.
func (s *Session) Draft() *draft.Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft.Clone()
}

func (s *Session) Photos() []photos.Photo {
	return s.photos.All()
}

// SetDraft replaces the current draft, e.g. with a fresh normalization result.
func (s *Session) SetDraft(d *draft.Draft) error {
	return s.edit(func() error {
		s.abandonPending("draft replaced")
		s.draft = d.Clone()
		return nil
	})
}

// EditDraft applies operator edits to the current draft.
func (s *Session) EditDraft(p draft.Patch) error {
	return s.edit(func() error {
		if s.draft == nil {
			return ErrNoDraft
		}
		// apply to a copy so a rejected patch leaves the draft untouched
		next := s.draft.Clone()
		if err := next.Apply(p); err != nil {
			return err
		}
		s.draft = next
		return nil
	})
}

// Discard drops the draft and the photos.
func (s *Session) Discard() error {
	return s.edit(func() error {
		s.abandonPending("draft discarded")
		s.draft = nil
		s.photos.Clear()
		return nil
	})
}

// LoadArchived starts editing a copy of an archived item. The item itself
// is left untouched.
func (s *Session) LoadArchived(item archive.Item) error {
	return s.edit(func() error {
		s.abandonPending("archived item loaded")
		s.draft = item.Draft()
		if item.Image != "" {
			s.photos.Replace(photos.Photo(item.Image))
		} else {
			s.photos.Clear()
		}
		return nil
	})
}

func (s *Session) AppendPhotos(p ...photos.Photo) error {
	return s.edit(func() error {
		s.photos.Append(p...)
		return nil
	})
}

func (s *Session) RemovePhoto(index int) error {
	return s.edit(func() error {
		return s.photos.RemoveAt(index)
	})
}

func (s *Session) RotatePhoto(index int) error {
	return s.edit(func() error {
		return s.photos.RotateAt(index)
	})
}

func (s *Session) ClearPhotos() error {
	return s.edit(func() error {
		s.photos.Clear()
		return nil
	})
}

// edit runs fn unless a submission is in flight. Any edit after a
// successful publish starts a new editing round.
func (s *Session) edit(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateSubmitting {
		return ErrSubmitting
	}
	if err := fn(); err != nil {
		return err
	}
	if s.state == StatePublished {
		s.transition(StateEditing)
	}
	return nil
}

func (s *Session) abandonPending(reason string) {
	if s.pendingRemoteID != "" {
		slog.Warn("Abandoning unarchived publication, reconcile it by hand", "remote_id", s.pendingRemoteID, "reason", reason)
		s.pendingRemoteID = ""
	}
}

// transition must be called with mu held.
func (s *Session) transition(to State) {
	slog.Debug("Session state change", "from", s.state, "to", to)
	s.state = to
}
