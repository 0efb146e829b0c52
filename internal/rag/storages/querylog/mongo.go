// Package querylog persists answered questions so the history endpoint can
// show recent activity.
package querylog

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/razmarrus/cv-rag/internal/rag/interfaces"
)

// MongoQueryLog is a QueryLog backed by a MongoDB collection.
type MongoQueryLog struct {
	collection *mongo.Collection
}

// NewMongoQueryLog creates a query log writing to the given database and
// collection.
func NewMongoQueryLog(client *mongo.Client, database, collection string) *MongoQueryLog {
	return &MongoQueryLog{collection: client.Database(database).Collection(collection)}
}

// Record inserts one answered question. CreatedAt is stamped here when the
// caller left it zero.
func (l *MongoQueryLog) Record(ctx context.Context, rec *interfaces.QueryRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	if _, err := l.collection.InsertOne(ctx, rec); err != nil {
		return fmt.Errorf("failed to record query: %w", err)
	}
	return nil
}

// Recent returns up to limit records, newest first.
func (l *MongoQueryLog) Recent(ctx context.Context, limit int) ([]*interfaces.QueryRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := l.collection.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer cursor.Close(ctx)

	var records []*interfaces.QueryRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode history: %w", err)
	}
	return records, nil
}

// compile-time check to ensure MongoQueryLog implements QueryLog
var _ interfaces.QueryLog = (*MongoQueryLog)(nil)
