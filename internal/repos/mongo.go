package repos

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type MongoConfig struct {
	URI      string
	Database string
	Timeout  time.Duration
}

// MongoStore maps each logical collection onto a MongoDB collection with
// the document id as _id.
type MongoStore struct {
	client   *mongo.Client
	database *mongo.Database
	config   MongoConfig
}

func NewMongoStore(cfg MongoConfig) (*MongoStore, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	clientOptions := options.Client().
		ApplyURI(cfg.URI).
		SetMaxPoolSize(20).
		SetMinPoolSize(2)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &MongoStore{
		client:   client,
		database: client.Database(cfg.Database),
		config:   cfg,
	}, nil
}

func (s *MongoStore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.config.Timeout)
}

func (s *MongoStore) GetAll(ctx context.Context, collection string, out any) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := s.database.Collection(collection).Find(ctx, bson.M{}, opts)
	if err != nil {
		return fmt.Errorf("failed to list %s: %w", collection, err)
	}
	defer cursor.Close(ctx)

	if err := cursor.All(ctx, out); err != nil {
		return fmt.Errorf("failed to decode %s: %w", collection, err)
	}
	return nil
}

func (s *MongoStore) Get(ctx context.Context, collection, id string, out any) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	err := s.database.Collection(collection).FindOne(ctx, bson.M{"_id": id}).Decode(out)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *MongoStore) Set(ctx context.Context, collection, id string, doc any) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	opts := options.Replace().SetUpsert(true)
	if _, err := s.database.Collection(collection).ReplaceOne(ctx, bson.M{"_id": id}, doc, opts); err != nil {
		return fmt.Errorf("failed to set %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *MongoStore) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	result, err := s.database.Collection(collection).UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		return fmt.Errorf("failed to update %s/%s: %w", collection, id, err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, collection, id string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	result, err := s.database.Collection(collection).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete %s/%s: %w", collection, id, err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *MongoStore) CreateIndexes(ctx context.Context) error {
	productIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "categoryId", Value: 1}}},
		{Keys: bson.D{{Key: "available", Value: 1}}},
	}
	if _, err := s.database.Collection(CollectionProducts).Indexes().CreateMany(ctx, productIndexes); err != nil {
		return fmt.Errorf("failed to create products indexes: %w", err)
	}

	categoryIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "name", Value: 1}}},
	}
	if _, err := s.database.Collection(CollectionCategories).Indexes().CreateMany(ctx, categoryIndexes); err != nil {
		return fmt.Errorf("failed to create categories indexes: %w", err)
	}

	return nil
}
