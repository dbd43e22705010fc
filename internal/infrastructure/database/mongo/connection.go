// internal/infrastructure/database/mongo/connection.go
package mongo

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/furnishop/furniture-backend/internal/config"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Client wraps the MongoDB client and the application database
type Client struct {
	client  *mongo.Client
	db      *mongo.Database
	timeout time.Duration
}

// NewConnection connects to MongoDB and verifies the connection
func NewConnection(cfg *config.Config) (*Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Mongo.ConnectTimeout)
	defer cancel()

	opts := options.Client().
		ApplyURI(cfg.Mongo.URI).
		SetMaxPoolSize(cfg.Mongo.MaxPoolSize).
		SetServerSelectionTimeout(cfg.Mongo.ConnectTimeout)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	log.Println("✅ MongoDB connection established successfully")

	return &Client{
		client:  client,
		db:      client.Database(cfg.Mongo.Database),
		timeout: cfg.Mongo.OperationTimeout,
	}, nil
}

// Close disconnects from MongoDB
func (c *Client) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return c.client.Disconnect(ctx)
}

// Store returns the document store backed by this connection
func (c *Client) Store() *Store {
	return &Store{db: c.db, timeout: c.timeout}
}

// EnsureIndexes creates the secondary indexes the query paths rely on
func (c *Client) EnsureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		"orders": {
			{Keys: bson.D{{Key: "orderDate", Value: -1}}},
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "orderDate", Value: -1}}},
		},
		"comments": {
			{Keys: bson.D{{Key: "newsId", Value: 1}, {Key: "timestamp", Value: 1}}},
		},
		"roles": {
			{Keys: bson.D{{Key: "userId", Value: 1}}},
		},
		"news": {
			{Keys: bson.D{{Key: "postTime", Value: -1}}},
		},
		"products": {
			{Keys: bson.D{{Key: "category", Value: 1}}},
		},
	}

	for collection, models := range indexes {
		if _, err := c.db.Collection(collection).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", collection, err)
		}
	}

	log.Println("✅ MongoDB indexes ensured")
	return nil
}
