package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/okian/magicboard/internal/domain/model"
)

// MemoryStore keeps members in process memory. It is the default driver and
// the one used by tests.
type MemoryStore struct {
	mu         sync.RWMutex
	order      []string
	members    map[string]model.ActivityRecord
	valentines map[string][]model.Valentine
	noteIDs    map[string]struct{}
	closed     bool
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		members:    make(map[string]model.ActivityRecord),
		valentines: make(map[string][]model.Valentine),
		noteIDs:    make(map[string]struct{}),
	}
}

func (s *MemoryStore) List(_ context.Context) ([]model.ActivityRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}
	out := make([]model.ActivityRecord, 0, len(s.order))
	for _, k := range s.order {
		out = append(out, s.members[k])
	}
	return out, nil
}

func (s *MemoryStore) Get(_ context.Context, handle string) (model.ActivityRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return model.ActivityRecord{}, ErrClosed
	}
	rec, ok := s.members[handleKey(handle)]
	if !ok {
		return model.ActivityRecord{}, fmt.Errorf("%w: %s", ErrNotFound, handle)
	}
	return rec, nil
}

func (s *MemoryStore) Upsert(_ context.Context, rec model.ActivityRecord) error {
	key := handleKey(rec.Handle)
	if key == "" {
		return fmt.Errorf("%w: empty handle", ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if _, ok := s.members[key]; !ok {
		s.order = append(s.order, key)
	}
	s.members[key] = rec
	return nil
}

func (s *MemoryStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return 0, ErrClosed
	}
	return len(s.order), nil
}

func (s *MemoryStore) SaveValentine(_ context.Context, v model.Valentine) error {
	key := handleKey(v.To)
	if key == "" {
		return fmt.Errorf("%w: empty recipient", ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if _, seen := s.noteIDs[v.NoteID]; seen {
		return nil
	}
	s.noteIDs[v.NoteID] = struct{}{}
	s.valentines[key] = append(s.valentines[key], v)
	return nil
}

func (s *MemoryStore) Valentines(_ context.Context, handle string) ([]model.Valentine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}
	notes := s.valentines[handleKey(handle)]
	out := make([]model.Valentine, len(notes))
	for i, v := range notes {
		out[len(notes)-1-i] = v
	}
	sortNewestFirst(out)
	return out, nil
}

func (s *MemoryStore) Ping(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}
	return nil
}

func (s *MemoryStore) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}
