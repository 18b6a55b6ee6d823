package storage

import (
	"context"
	"sync"
	"time"

	"github.com/matzehuels/orbitboard/pkg/board"
)

// MemoryStore keeps the encoded snapshot in memory. Storing the encoded form
// means callers never share card slices with the store.
type MemoryStore struct {
	mu   sync.RWMutex
	data []byte
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (s *MemoryStore) Load(ctx context.Context) (snap board.Snapshot, err error) {
	start := time.Now()
	s.mu.RLock()
	data := s.data
	s.mu.RUnlock()
	defer func() { observeLoad(ctx, BackendMemory, len(data), start, err) }()

	if data == nil {
		return board.Snapshot{}, ErrNotFound
	}
	return decode(data)
}

func (s *MemoryStore) Save(ctx context.Context, snap board.Snapshot) (err error) {
	start := time.Now()
	data, err := encode(snap)
	defer func() { observeSave(ctx, BackendMemory, len(data), start, err) }()
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.data = data
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Close() error { return nil }

var _ Store = (*MemoryStore)(nil)
