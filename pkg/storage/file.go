package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/matzehuels/orbitboard/pkg/board"
)

// DefaultStateFile is used when neither a path nor BOARD_STATE_FILE is set.
const DefaultStateFile = ".data/board-state.json"

// StateFileEnv overrides the default state file path.
const StateFileEnv = "BOARD_STATE_FILE"

// FileStore keeps the snapshot in a JSON file.
type FileStore struct {
	mu   sync.RWMutex
	path string
}

// NewFileStore returns a store writing to path. An empty path uses
// $BOARD_STATE_FILE, then DefaultStateFile. The directory is created on first
// save.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		path = os.Getenv(StateFileEnv)
	}
	if path == "" {
		path = DefaultStateFile
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve state file: %w", err)
	}
	return &FileStore{path: abs}, nil
}

// Path returns the absolute path of the state file.
func (s *FileStore) Path() string { return s.path }

func (s *FileStore) Load(ctx context.Context) (snap board.Snapshot, err error) {
	start := time.Now()
	var size int
	defer func() { observeLoad(ctx, BackendFile, size, start, err) }()

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return board.Snapshot{}, ErrNotFound
		}
		return board.Snapshot{}, fmt.Errorf("read state file: %w", err)
	}
	size = len(data)
	return decode(data)
}

// Save writes the snapshot to a temporary file and renames it over the state
// file, so readers never see a partial write.
func (s *FileStore) Save(ctx context.Context, snap board.Snapshot) (err error) {
	start := time.Now()
	var size int
	defer func() { observeSave(ctx, BackendFile, size, start, err) }()

	data, err := encode(snap)
	if err != nil {
		return err
	}
	size = len(data)

	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".board-state-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close state file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace state file: %w", err)
	}
	return nil
}

func (s *FileStore) Close() error { return nil }

var _ Store = (*FileStore)(nil)
