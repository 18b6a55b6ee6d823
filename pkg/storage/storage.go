// Package storage persists board snapshots.
//
// Every backend stores exactly one document, the global board, and replaces
// it wholesale on save (last write wins). The document is the JSON form of
// [board.Snapshot] in every backend, so a snapshot can be moved between
// backends byte for byte.
//
// Backends:
//   - file: a JSON file, written atomically (default for the CLI)
//   - memory: process-local, for tests and ephemeral servers
//   - redis: a single key
//   - mongo: a single document with _id "global"
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/matzehuels/orbitboard/pkg/board"
	"github.com/matzehuels/orbitboard/pkg/observability"
)

// ErrNotFound is returned by Load when nothing has been saved yet.
var ErrNotFound = errors.New("no saved board")

// Store loads and saves the global board snapshot.
type Store interface {
	Load(ctx context.Context) (board.Snapshot, error)
	Save(ctx context.Context, snap board.Snapshot) error
	Close() error
}

// Backend names.
const (
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
)

// Config selects and configures a backend.
type Config struct {
	Backend string `toml:"backend"`

	// File backend.
	Path string `toml:"path"`

	// Redis backend.
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
	RedisKey      string `toml:"redis_key"`

	// Mongo backend.
	MongoURI        string `toml:"mongo_uri"`
	MongoDatabase   string `toml:"mongo_database"`
	MongoCollection string `toml:"mongo_collection"`
}

// Open returns the backend named by cfg.Backend. An empty backend means file.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Backend {
	case "", BackendFile:
		return NewFileStore(cfg.Path)
	case BackendMemory:
		return NewMemoryStore(), nil
	case BackendRedis:
		return NewRedisStore(ctx, RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Key:      cfg.RedisKey,
		})
	case BackendMongo:
		return NewMongoStore(ctx, MongoConfig{
			URI:        cfg.MongoURI,
			Database:   cfg.MongoDatabase,
			Collection: cfg.MongoCollection,
		})
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

// LoadOrDefault loads the snapshot, falling back to the default board when
// nothing has been saved.
func LoadOrDefault(ctx context.Context, s Store) (board.Snapshot, error) {
	snap, err := s.Load(ctx)
	if errors.Is(err, ErrNotFound) {
		return board.DefaultSnapshot(), nil
	}
	return snap, err
}

func encode(snap board.Snapshot) ([]byte, error) {
	if snap.Cards == nil {
		snap.Cards = []board.Card{}
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return data, nil
}

func decode(data []byte) (board.Snapshot, error) {
	snap := board.DefaultSnapshot()
	if err := json.Unmarshal(data, &snap); err != nil {
		return board.Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	if snap.Cards == nil {
		snap.Cards = []board.Card{}
	}
	if err := snap.Validate(); err != nil {
		return board.Snapshot{}, err
	}
	return snap, nil
}

// observeLoad reports a load to the storage hooks. A missing snapshot is not
// an error for reporting purposes.
func observeLoad(ctx context.Context, backend string, size int, start time.Time, err error) {
	if errors.Is(err, ErrNotFound) {
		err = nil
	}
	observability.Storage().OnLoad(ctx, backend, size, time.Since(start), err)
}

func observeSave(ctx context.Context, backend string, size int, start time.Time, err error) {
	observability.Storage().OnSave(ctx, backend, size, time.Since(start), err)
}
