package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/orbitboard/pkg/board"
)

// Mongo defaults.
const (
	DefaultMongoDatabase   = "orbitboard"
	DefaultMongoCollection = "boards"
	globalDocumentID       = "global"
)

// MongoConfig configures a MongoStore.
type MongoConfig struct {
	URI        string
	Database   string
	Collection string
}

// MongoStore keeps the snapshot in a single document. The snapshot is stored
// as its JSON text so the viewport wire form survives unchanged.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

type mongoDocument struct {
	ID        string    `bson:"_id"`
	Snapshot  string    `bson:"snapshot"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

// NewMongoStore connects to MongoDB and verifies the connection.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	if cfg.URI == "" {
		cfg.URI = "mongodb://localhost:27017"
	}
	if cfg.Database == "" {
		cfg.Database = DefaultMongoDatabase
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultMongoCollection
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return &MongoStore{
		client: client,
		coll:   client.Database(cfg.Database).Collection(cfg.Collection),
	}, nil
}

func (s *MongoStore) Load(ctx context.Context) (snap board.Snapshot, err error) {
	start := time.Now()
	var size int
	defer func() { observeLoad(ctx, BackendMongo, size, start, err) }()

	var doc mongoDocument
	err = s.coll.FindOne(ctx, bson.M{"_id": globalDocumentID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return board.Snapshot{}, ErrNotFound
	}
	if err != nil {
		return board.Snapshot{}, fmt.Errorf("mongo find: %w", err)
	}
	size = len(doc.Snapshot)
	return decode([]byte(doc.Snapshot))
}

func (s *MongoStore) Save(ctx context.Context, snap board.Snapshot) (err error) {
	start := time.Now()
	var size int
	defer func() { observeSave(ctx, BackendMongo, size, start, err) }()

	data, err := encode(snap)
	if err != nil {
		return err
	}
	size = len(data)

	doc := mongoDocument{ID: globalDocumentID, Snapshot: string(data), UpdatedAt: time.Now().UTC()}
	_, err = s.coll.ReplaceOne(ctx, bson.M{"_id": globalDocumentID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("mongo replace: %w", err)
	}
	return nil
}

// Delete removes the stored snapshot.
func (s *MongoStore) Delete(ctx context.Context) error {
	_, err := s.coll.DeleteOne(ctx, bson.M{"_id": globalDocumentID})
	return err
}

func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)
