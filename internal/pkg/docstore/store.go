// internal/pkg/docstore/store.go
package docstore

import (
	"context"
	"errors"
)

// Store errors
var (
	ErrNotFound        = errors.New("document not found")
	ErrVersionConflict = errors.New("document version conflict")
)

// VersionField is the field compared by SetIfVersion and DeleteIfVersion
const VersionField = "version"

// Unversioned is the expected version of a document that exists but carries no
// version field, such as one written before versioning or by another tool.
const Unversioned int64 = -1

// NextVersion is the version a successful conditional write stores
func NextVersion(expected int64) int64 {
	if expected < 0 {
		return 1
	}
	return expected + 1
}

// Fields is the body of a document. Values are normalised to string, bool, int64,
// float64, decimal.Decimal, time.Time, []interface{} and Fields.
type Fields map[string]interface{}

// Document is a single stored document
type Document struct {
	ID     string
	Fields Fields
}

// Direction is a sort direction for queries
type Direction int

const (
	Asc Direction = iota
	Desc
)

// Query narrows a collection scan
type Query struct {
	Where   map[string]interface{}
	OrderBy string
	Dir     Direction
	Limit   int
}

// Store is the document database every domain service talks to
type Store interface {
	Get(ctx context.Context, collection, id string) (Document, error)
	Set(ctx context.Context, collection, id string, fields Fields) error
	Add(ctx context.Context, collection string, fields Fields) (string, error)
	Update(ctx context.Context, collection, id string, fields Fields) error
	Delete(ctx context.Context, collection, id string) error
	Query(ctx context.Context, collection string, q Query) ([]Document, error)
	Count(ctx context.Context, collection string, q Query) (int64, error)

	// Increment atomically adds delta to field, setting the extra fields and
	// creating the document when it does not exist.
	Increment(ctx context.Context, collection, id, field string, delta int64, set Fields) error
	ArrayUnion(ctx context.Context, collection, id, field string, values ...interface{}) error
	// ArrayRemove drops every array element whose keys equal all entries in match.
	ArrayRemove(ctx context.Context, collection, id, field string, match Fields) error

	// SetIfVersion writes fields only when the stored version equals expected.
	// expected == 0 means the document must not exist yet; Unversioned means it
	// must exist without a version field.
	SetIfVersion(ctx context.Context, collection, id string, fields Fields, expected int64) error
	DeleteIfVersion(ctx context.Context, collection, id string, expected int64) error

	Ping(ctx context.Context) error
}

// Where builds an equality query on a single field
func Where(field string, value interface{}) Query {
	return Query{Where: map[string]interface{}{field: value}}
}
