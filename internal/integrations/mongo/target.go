package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/turbolytics/kevetl/internal/kev"
)

const shadowSuffix = "_shadow"

var errNotConnected = errors.New("mongo target is not connected")

type Option func(*Target)

func WithLogger(logger *zap.Logger) Option {
	return func(t *Target) {
		t.logger = logger
	}
}

// WithSwap loads into a shadow collection and renames it over the destination,
// so readers never observe an empty collection.
func WithSwap(swap bool) Option {
	return func(t *Target) {
		t.swap = swap
	}
}

func WithPingTimeout(d time.Duration) Option {
	return func(t *Target) {
		t.pingTimeout = d
	}
}

type Target struct {
	uri         string
	database    string
	collection  string
	swap        bool
	pingTimeout time.Duration
	logger      *zap.Logger

	client *mongo.Client
}

func NewTarget(uri, database, collection string, opts ...Option) *Target {
	t := &Target{
		uri:         uri,
		database:    database,
		collection:  collection,
		pingTimeout: 10 * time.Second,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Target) Name() string {
	return fmt.Sprintf("mongodb:%s.%s", t.database, t.collection)
}

func (t *Target) Connect(ctx context.Context) error {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(t.uri))
	if err != nil {
		return err
	}
	t.client = client

	pingCtx, cancel := context.WithTimeout(ctx, t.pingTimeout)
	defer cancel()

	if err := t.client.Ping(pingCtx, nil); err != nil {
		return err
	}

	t.logger.Info("connected to mongodb",
		zap.String("database", t.database),
		zap.String("collection", t.collection),
	)
	return nil
}

func (t *Target) Disconnect(ctx context.Context) error {
	if t.client == nil {
		return nil
	}
	err := t.client.Disconnect(ctx)
	t.client = nil
	return err
}

func (t *Target) Replace(ctx context.Context, records []kev.Record) (int, error) {
	if t.client == nil {
		return 0, errNotConnected
	}
	if t.swap {
		return t.replaceBySwap(ctx, records)
	}

	coll := t.client.Database(t.database).Collection(t.collection)

	deleted, err := coll.DeleteMany(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("clearing collection: %w", err)
	}
	t.logger.Info("cleared old data",
		zap.String("collection", t.collection),
		zap.Int64("deleted", deleted.DeletedCount),
	)

	return t.insert(ctx, coll, records)
}

func (t *Target) replaceBySwap(ctx context.Context, records []kev.Record) (int, error) {
	db := t.client.Database(t.database)
	shadowName := t.collection + shadowSuffix
	shadow := db.Collection(shadowName)

	// leftovers from an interrupted run
	if err := shadow.Drop(ctx); err != nil {
		return 0, fmt.Errorf("dropping shadow collection: %w", err)
	}

	n, err := t.insert(ctx, shadow, records)
	if err != nil {
		return n, err
	}

	cmd := bson.D{
		{Key: "renameCollection", Value: t.database + "." + shadowName},
		{Key: "to", Value: t.database + "." + t.collection},
		{Key: "dropTarget", Value: true},
	}
	if err := t.client.Database("admin").RunCommand(ctx, cmd).Err(); err != nil {
		return 0, fmt.Errorf("swapping shadow collection: %w", err)
	}

	t.logger.Info("swapped shadow collection",
		zap.String("shadow", shadowName),
		zap.String("collection", t.collection),
	)
	return n, nil
}

func (t *Target) insert(ctx context.Context, coll *mongo.Collection, records []kev.Record) (int, error) {
	docs := make([]interface{}, len(records))
	for i, r := range records {
		docs[i] = r.Document()
	}

	res, err := coll.InsertMany(ctx, docs, options.InsertMany().SetOrdered(true))
	if err != nil {
		inserted := 0
		if res != nil {
			inserted = len(res.InsertedIDs)
		}
		return inserted, fmt.Errorf("inserting documents: %w", err)
	}

	return len(res.InsertedIDs), nil
}
