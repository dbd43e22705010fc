// internal/infrastructure/database/mongo/store.go
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/furnishop/furniture-backend/internal/pkg/docstore"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const idField = "_id"

// Store implements docstore.Store on a MongoDB database.
// Document ids are stored as string _id values.
type Store struct {
	db      *mongo.Database
	timeout time.Duration
}

// NewStore wraps an existing database handle
func NewStore(db *mongo.Database, timeout time.Duration) *Store {
	return &Store{db: db, timeout: timeout}
}

func (s *Store) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

// Get fetches one document by id
func (s *Store) Get(ctx context.Context, collection, id string) (docstore.Document, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var raw bson.M
	err := s.db.Collection(collection).FindOne(ctx, bson.M{idField: id}).Decode(&raw)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return docstore.Document{}, docstore.ErrNotFound
	}
	if err != nil {
		return docstore.Document{}, fmt.Errorf("failed to get %s/%s: %w", collection, id, err)
	}
	return toDocument(raw), nil
}

// Set replaces the document, creating it when absent
func (s *Store) Set(ctx context.Context, collection, id string, fields docstore.Fields) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	doc := toBSON(fields)
	doc[idField] = id
	_, err := s.db.Collection(collection).ReplaceOne(ctx, bson.M{idField: id}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to set %s/%s: %w", collection, id, err)
	}
	return nil
}

// Add inserts the document under a fresh uuid
func (s *Store) Add(ctx context.Context, collection string, fields docstore.Fields) (string, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	id := uuid.New().String()
	doc := toBSON(fields)
	doc[idField] = id
	if _, err := s.db.Collection(collection).InsertOne(ctx, doc); err != nil {
		return "", fmt.Errorf("failed to add to %s: %w", collection, err)
	}
	return id, nil
}

// Update merges fields into an existing document
func (s *Store) Update(ctx context.Context, collection, id string, fields docstore.Fields) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	res, err := s.db.Collection(collection).UpdateOne(ctx, bson.M{idField: id}, bson.M{"$set": toBSON(fields)})
	if err != nil {
		return fmt.Errorf("failed to update %s/%s: %w", collection, id, err)
	}
	if res.MatchedCount == 0 {
		return docstore.ErrNotFound
	}
	return nil
}

// Delete removes a document; a missing document is not an error
func (s *Store) Delete(ctx context.Context, collection, id string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if _, err := s.db.Collection(collection).DeleteOne(ctx, bson.M{idField: id}); err != nil {
		return fmt.Errorf("failed to delete %s/%s: %w", collection, id, err)
	}
	return nil
}

// Query runs an equality filter with optional sort and limit
func (s *Store) Query(ctx context.Context, collection string, q docstore.Query) ([]docstore.Document, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	opts := options.Find()
	if q.OrderBy != "" {
		dir := 1
		if q.Dir == docstore.Desc {
			dir = -1
		}
		opts.SetSort(bson.D{{Key: q.OrderBy, Value: dir}})
	}
	if q.Limit > 0 {
		opts.SetLimit(int64(q.Limit))
	}

	cur, err := s.db.Collection(collection).Find(ctx, filter(q), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", collection, err)
	}
	defer cur.Close(ctx)

	var raws []bson.M
	if err := cur.All(ctx, &raws); err != nil {
		return nil, fmt.Errorf("failed to read %s cursor: %w", collection, err)
	}

	docs := make([]docstore.Document, 0, len(raws))
	for _, raw := range raws {
		docs = append(docs, toDocument(raw))
	}
	return docs, nil
}

// Count counts documents matching the equality filter
func (s *Store) Count(ctx context.Context, collection string, q docstore.Query) (int64, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	n, err := s.db.Collection(collection).CountDocuments(ctx, filter(q))
	if err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", collection, err)
	}
	return n, nil
}

// Increment applies $inc plus $set with upsert
func (s *Store) Increment(ctx context.Context, collection, id, field string, delta int64, set docstore.Fields) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	update := bson.M{"$inc": bson.M{field: delta}}
	if len(set) > 0 {
		update["$set"] = toBSON(set)
	}
	_, err := s.db.Collection(collection).UpdateOne(ctx, bson.M{idField: id}, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to increment %s/%s.%s: %w", collection, id, field, err)
	}
	return nil
}

// ArrayUnion applies $addToSet with $each
func (s *Store) ArrayUnion(ctx context.Context, collection, id, field string, values ...interface{}) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	each := make(bson.A, 0, len(values))
	for _, v := range values {
		each = append(each, toBSONValue(v))
	}
	update := bson.M{"$addToSet": bson.M{field: bson.M{"$each": each}}}
	res, err := s.db.Collection(collection).UpdateOne(ctx, bson.M{idField: id}, update)
	if err != nil {
		return fmt.Errorf("failed to union %s/%s.%s: %w", collection, id, field, err)
	}
	if res.MatchedCount == 0 {
		return docstore.ErrNotFound
	}
	return nil
}

// ArrayRemove applies $pull with a field-match condition
func (s *Store) ArrayRemove(ctx context.Context, collection, id, field string, match docstore.Fields) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	update := bson.M{"$pull": bson.M{field: toBSON(match)}}
	res, err := s.db.Collection(collection).UpdateOne(ctx, bson.M{idField: id}, update)
	if err != nil {
		return fmt.Errorf("failed to pull %s/%s.%s: %w", collection, id, field, err)
	}
	if res.MatchedCount == 0 {
		return docstore.ErrNotFound
	}
	return nil
}

// SetIfVersion inserts when expected is 0, otherwise replaces the document
// only if its version still matches.
func (s *Store) SetIfVersion(ctx context.Context, collection, id string, fields docstore.Fields, expected int64) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	doc := toBSON(fields)
	doc[idField] = id
	doc[docstore.VersionField] = docstore.NextVersion(expected)

	coll := s.db.Collection(collection)
	if expected == 0 {
		_, err := coll.InsertOne(ctx, doc)
		if mongo.IsDuplicateKeyError(err) {
			return docstore.ErrVersionConflict
		}
		if err != nil {
			return fmt.Errorf("failed to insert %s/%s: %w", collection, id, err)
		}
		return nil
	}

	res, err := coll.ReplaceOne(ctx, versionFilter(id, expected), doc)
	if err != nil {
		return fmt.Errorf("failed to replace %s/%s: %w", collection, id, err)
	}
	if res.MatchedCount == 0 {
		return docstore.ErrVersionConflict
	}
	return nil
}

// DeleteIfVersion deletes only when the stored version matches
func (s *Store) DeleteIfVersion(ctx context.Context, collection, id string, expected int64) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	res, err := s.db.Collection(collection).DeleteOne(ctx, versionFilter(id, expected))
	if err != nil {
		return fmt.Errorf("failed to delete %s/%s: %w", collection, id, err)
	}
	if res.DeletedCount == 0 {
		return docstore.ErrVersionConflict
	}
	return nil
}

// versionFilter matches the document at the expected version. Unversioned
// documents are matched by the absence of the version field.
func versionFilter(id string, expected int64) bson.M {
	if expected == docstore.Unversioned {
		return bson.M{idField: id, docstore.VersionField: bson.M{"$exists": false}}
	}
	return bson.M{idField: id, docstore.VersionField: expected}
}

// Ping checks the server is reachable
func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.db.Client().Ping(ctx, nil)
}

func filter(q docstore.Query) bson.M {
	f := bson.M{}
	for k, v := range q.Where {
		f[k] = toBSONValue(v)
	}
	return f
}

func toDocument(raw bson.M) docstore.Document {
	id := ""
	switch v := raw[idField].(type) {
	case string:
		id = v
	case primitive.ObjectID:
		id = v.Hex()
	}
	delete(raw, idField)
	return docstore.Document{ID: id, Fields: fromBSON(raw)}
}

func toBSON(f docstore.Fields) bson.M {
	out := make(bson.M, len(f))
	for k, v := range f {
		out[k] = toBSONValue(v)
	}
	return out
}

func toBSONValue(v interface{}) interface{} {
	switch t := v.(type) {
	case docstore.Fields:
		return toBSON(t)
	case []interface{}:
		out := make(bson.A, len(t))
		for i, e := range t {
			out[i] = toBSONValue(e)
		}
		return out
	case time.Time:
		return primitive.NewDateTimeFromTime(t)
	case decimal.Decimal:
		if d, err := primitive.ParseDecimal128(t.String()); err == nil {
			return d
		}
	}
	return v
}

func fromBSON(m bson.M) docstore.Fields {
	out := make(docstore.Fields, len(m))
	for k, v := range m {
		out[k] = fromBSONValue(v)
	}
	return out
}

// fromBSONValue maps driver types onto the docstore value set
func fromBSONValue(v interface{}) interface{} {
	switch t := v.(type) {
	case bson.M:
		return fromBSON(t)
	case bson.D:
		return fromBSON(t.Map())
	case bson.A:
		out := make([]interface{}, len(t))
		for i, e := range t {
			out[i] = fromBSONValue(e)
		}
		return out
	case primitive.DateTime:
		return t.Time().UTC()
	case primitive.ObjectID:
		return t.Hex()
	case primitive.Decimal128:
		if d, err := decimal.NewFromString(t.String()); err == nil {
			return d
		}
		return t.String()
	case int32:
		return int64(t)
	case int:
		return int64(t)
	}
	return v
}
