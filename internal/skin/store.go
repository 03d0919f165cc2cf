package skin

import (
	"errors"
	"fmt"
	"sync"

	"skinpack-studio/internal/texture"
)

var (
	ErrNotFound     = errors.New("skin: entry not found")
	ErrInvalidEntry = errors.New("skin: invalid entry")
	ErrBadPosition  = errors.New("skin: position out of range")
)

// Placeholders produces filler textures for new or regenerated slots.
type Placeholders interface {
	Generate(w, h int) (texture.Placeholder, error)
}

// Store is the ordered list of skin slots being edited. All access goes
// through its methods, which keep every entry with an id and a safe name.
type Store struct {
	mu      sync.RWMutex
	entries []Entry
	gen     Placeholders
}

func NewStore(gen Placeholders) *Store {
	return &Store{gen: gen}
}

// Add appends a slot with a fresh placeholder texture.
func (s *Store) Add(name string) (Entry, error) {
	e := NewEntry(name)
	if err := s.fillPlaceholder(&e); err != nil {
		return Entry{}, err
	}

	s.mu.Lock()
	s.entries = append(s.entries, e)
	s.mu.Unlock()
	return e.Clone(), nil
}

// Reset drops every slot and creates n new placeholder slots.
func (s *Store) Reset(n int) error {
	fresh := make([]Entry, 0, n)
	for i := 0; i < n; i++ {
		e := NewEntry("")
		if err := s.fillPlaceholder(&e); err != nil {
			return err
		}
		fresh = append(fresh, e)
	}

	s.mu.Lock()
	s.entries = fresh
	s.mu.Unlock()
	return nil
}

// Replace swaps in a full list, e.g. from a restored session.
func (s *Store) Replace(entries []Entry) error {
	out := make([]Entry, len(entries))
	for i, e := range entries {
		if e.ID == "" {
			return fmt.Errorf("%w: entry %d has no id", ErrInvalidEntry, i+1)
		}
		e = e.Clone()
		e.SafeName = SafeName(e.Name)
		if e.Type == "" {
			e.Type = TypeFree
		}
		if !IsGeometry(e.Geometry) {
			e.Geometry = GeometrySlim
		}
		out[i] = e
	}

	s.mu.Lock()
	s.entries = out
	s.mu.Unlock()
	return nil
}

func (s *Store) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return ErrNotFound
	}
	s.entries = append(s.entries[:i], s.entries[i+1:]...)
	return nil
}

// Rename sets the display name and recomputes the safe name.
func (s *Store) Rename(id, name string) (Entry, error) {
	return s.update(id, func(e *Entry) error {
		e.Name = name
		e.SafeName = SafeName(name)
		return nil
	})
}

// SetUpload stores accepted upload bytes. Callers validate them first.
func (s *Store) SetUpload(id, fileName string, data []byte) (Entry, error) {
	if len(data) == 0 {
		return Entry{}, fmt.Errorf("%w: empty upload", ErrInvalidEntry)
	}
	return s.update(id, func(e *Entry) error {
		e.Upload = cloneBytes(data)
		e.UploadName = fileName
		return nil
	})
}

// ClearUpload forgets the upload so the placeholder shows again.
func (s *Store) ClearUpload(id string) (Entry, error) {
	return s.update(id, func(e *Entry) error {
		e.Upload = nil
		e.UploadName = ""
		return nil
	})
}

func (s *Store) SetPlaceholder(id string, data []byte) (Entry, error) {
	return s.update(id, func(e *Entry) error {
		e.Placeholder = cloneBytes(data)
		return nil
	})
}

func (s *Store) SetGeometry(id, tag string) (Entry, error) {
	g, err := ParseGeometry(tag)
	if err != nil {
		return Entry{}, err
	}
	return s.update(id, func(e *Entry) error {
		e.Geometry = g
		return nil
	})
}

// Move puts the entry at position pos (0-based) in display order.
func (s *Store) Move(id string, pos int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return ErrNotFound
	}
	if pos < 0 || pos >= len(s.entries) {
		return ErrBadPosition
	}
	e := s.entries[i]
	s.entries = append(s.entries[:i], s.entries[i+1:]...)
	s.entries = append(s.entries[:pos], append([]Entry{e}, s.entries[pos:]...)...)
	return nil
}

// RegeneratePlaceholders draws new placeholders for every slot without an
// upload and returns how many were replaced.
func (s *Store) RegeneratePlaceholders() (int, error) {
	if s.gen == nil {
		return 0, nil
	}
	s.mu.RLock()
	var ids []string
	for _, e := range s.entries {
		if !e.HasUpload() {
			ids = append(ids, e.ID)
		}
	}
	s.mu.RUnlock()

	n := 0
	for _, id := range ids {
		p, err := s.gen.Generate(64, 64)
		if err != nil {
			return n, err
		}
		_, err = s.update(id, func(e *Entry) error {
			if e.HasUpload() {
				return nil
			}
			e.Placeholder = p.PNG
			n++
			return nil
		})
		if err != nil && !errors.Is(err, ErrNotFound) {
			return n, err
		}
	}
	return n, nil
}

func (s *Store) Get(id string) (Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexOf(id)
	if i < 0 {
		return Entry{}, ErrNotFound
	}
	return s.entries[i].Clone(), nil
}

// Entries returns copies of all entries in display order.
func (s *Store) Entries() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Entry, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.Clone()
	}
	return out
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *Store) update(id string, fn func(*Entry) error) (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return Entry{}, ErrNotFound
	}
	e := s.entries[i]
	if err := fn(&e); err != nil {
		return Entry{}, err
	}
	s.entries[i] = e
	return e.Clone(), nil
}

func (s *Store) fillPlaceholder(e *Entry) error {
	if s.gen == nil {
		return nil
	}
	p, err := s.gen.Generate(64, 64)
	if err != nil {
		return fmt.Errorf("skin: placeholder: %w", err)
	}
	e.Placeholder = p.PNG
	return nil
}

func (s *Store) indexOf(id string) int {
	for i, e := range s.entries {
		if e.ID == id {
			return i
		}
	}
	return -1
}
