package photos

import (
	"errors"
	"fmt"
	"sync"
)

var ErrIndexOutOfRange = errors.New("photo index out of range")

// Set is the ordered collection of photos attached to the current draft.
// Order is capture order; the first photo becomes the archive thumbnail.
type Set struct {
	normalizer *Normalizer
	photos     []Photo
	mu         sync.RWMutex
}

func NewSet(normalizer *Normalizer) *Set {
	if normalizer == nil {
		normalizer = NewNormalizer(DefaultMaxWidth, DefaultQuality)
	}
	return &Set{normalizer: normalizer}
}

// Append adds photos after the existing ones, keeping their order.
func (s *Set) Append(photos ...Photo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.photos = append(s.photos, photos...)
}

func (s *Set) RemoveAt(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkIndex(index); err != nil {
		return err
	}
	s.photos = append(s.photos[:index:index], s.photos[index+1:]...)
	return nil
}

// RotateAt rotates the photo at index 90° clockwise and replaces it in place.
func (s *Set) RotateAt(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkIndex(index); err != nil {
		return err
	}
	rotated, err := s.normalizer.Rotate(s.photos[index])
	if err != nil {
		return err
	}
	s.photos[index] = rotated
	return nil
}

func (s *Set) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.photos = nil
}

// Replace discards the current photos and installs the given ones.
func (s *Set) Replace(photos ...Photo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.photos = append([]Photo(nil), photos...)
}

// All returns a copy of the photos in order.
func (s *Set) All() []Photo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Photo(nil), s.photos...)
}

func (s *Set) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.photos)
}

// First returns the first photo, if any.
func (s *Set) First() (Photo, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.photos) == 0 {
		return "", false
	}
	return s.photos[0], true
}

func (s *Set) checkIndex(index int) error {
	if index < 0 || index >= len(s.photos) {
		return fmt.Errorf("%w: %d (have %d)", ErrIndexOutOfRange, index, len(s.photos))
	}
	return nil
}
