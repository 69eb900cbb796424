package archive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/heritage-bijoux/appraiser/internal/kv"
)

// DefaultKey is the persistence key holding the serialized archive.
const DefaultKey = "heritage_archive"

var ErrCorruptArchive = errors.New("corrupt archive")

// Store is the most-recent-first history of published drafts. The whole
// collection is rewritten under one key on every mutation.
type Store struct {
	kv    kv.Store
	key   string
	items []Item
	mu    sync.RWMutex
}

func NewStore(store kv.Store, key string) *Store {
	if key == "" {
		key = DefaultKey
	}
	return &Store{kv: store, key: key}
}

// Load reads the persisted collection. A corrupt payload degrades to an
// empty archive: the returned slice is usable and err is ErrCorruptArchive.
func (s *Store) Load(ctx context.Context) ([]Item, error) {
	raw, err := s.kv.Get(ctx, s.key)
	if errors.Is(err, kv.ErrNotFound) {
		s.set(nil)
		return []Item{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load archive: %w", err)
	}

	var items []Item
	err = json.Unmarshal(raw, &items)
	if err == nil {
		err = checkItems(items)
	}
	if err != nil {
		slog.Warn("Archive is unreadable, starting with an empty one", "key", s.key, "err", err)
		s.set(nil)
		return []Item{}, fmt.Errorf("%w: %v", ErrCorruptArchive, err)
	}

	s.set(items)
	slog.Info("Archive loaded", "key", s.key, "items", len(items))
	return s.Items(), nil
}

// Add prepends the item and persists the full collection. The in-memory
// view only changes once the write succeeded.
func (s *Store) Add(ctx context.Context, item Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]Item, 0, len(s.items)+1)
	next = append(next, item.clone())
	next = append(next, s.items...)

	if err := s.persist(ctx, next); err != nil {
		return err
	}
	s.items = next
	slog.Info("Archived item", "id", item.ID, "title", item.Title, "items", len(next))
	return nil
}

// Remove drops the item with the given id. Unknown ids are a no-op.
func (s *Store) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]Item, 0, len(s.items))
	for _, item := range s.items {
		if item.ID != id {
			next = append(next, item)
		}
	}
	if len(next) == len(s.items) {
		return nil
	}

	if err := s.persist(ctx, next); err != nil {
		return err
	}
	s.items = next
	slog.Info("Removed archived item", "id", id, "items", len(next))
	return nil
}

// Items returns a copy of the collection, most recent first.
func (s *Store) Items() []Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneItems(s.items)
}

// Get returns the item with the given id.
func (s *Store) Get(id string) (Item, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, item := range s.items {
		if item.ID == id {
			return item.clone(), true
		}
	}
	return Item{}, false
}

func (s *Store) persist(ctx context.Context, items []Item) error {
	payload, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode archive: %w", err)
	}
	if err := s.kv.Put(ctx, s.key, payload); err != nil {
		return fmt.Errorf("failed to persist archive: %w", err)
	}
	return nil
}

func (s *Store) set(items []Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = items
}

// checkItems rejects payloads that decode as a list but are not archive
// items: every entry needs an id and a title.
func checkItems(items []Item) error {
	for i, item := range items {
		if strings.TrimSpace(item.ID) == "" {
			return fmt.Errorf("item %d has no id", i)
		}
		if strings.TrimSpace(item.Title) == "" {
			return fmt.Errorf("item %d has no title", i)
		}
	}
	return nil
}
