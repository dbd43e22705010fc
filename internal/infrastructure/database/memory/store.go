// internal/infrastructure/database/memory/store.go
package memory

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/furnishop/furniture-backend/internal/pkg/docstore"
	"github.com/google/uuid"
)

// Store is an in-memory docstore.Store used by tests and local development.
// Documents keep their insertion order as the natural scan order.
type Store struct {
	mu          sync.RWMutex
	collections map[string]*collection

	failMu sync.RWMutex
	fail   map[string]error
}

type collection struct {
	docs  map[string]docstore.Fields
	order []string
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		collections: make(map[string]*collection),
		fail:        make(map[string]error),
	}
}

// FailOn injects err into every later call of op until cleared with a nil error
func (s *Store) FailOn(op string, err error) {
	s.failMu.Lock()
	defer s.failMu.Unlock()
	if err == nil {
		delete(s.fail, op)
		return
	}
	s.fail[op] = err
}

func (s *Store) failure(op string) error {
	s.failMu.RLock()
	defer s.failMu.RUnlock()
	return s.fail[op]
}

func (s *Store) coll(name string) *collection {
	c, ok := s.collections[name]
	if !ok {
		c = &collection{docs: make(map[string]docstore.Fields)}
		s.collections[name] = c
	}
	return c
}

func (c *collection) put(id string, fields docstore.Fields) {
	if _, exists := c.docs[id]; !exists {
		c.order = append(c.order, id)
	}
	c.docs[id] = fields
}

func (c *collection) remove(id string) {
	if _, exists := c.docs[id]; !exists {
		return
	}
	delete(c.docs, id)
	for i, v := range c.order {
		if v == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

// Get returns a copy of the document
func (s *Store) Get(ctx context.Context, collection, id string) (docstore.Document, error) {
	if err := s.failure("get"); err != nil {
		return docstore.Document{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.collections[collection]
	if !ok {
		return docstore.Document{}, docstore.ErrNotFound
	}
	fields, ok := c.docs[id]
	if !ok {
		return docstore.Document{}, docstore.ErrNotFound
	}
	return docstore.Document{ID: id, Fields: copyFields(fields)}, nil
}

// Set overwrites the whole document
func (s *Store) Set(ctx context.Context, collection, id string, fields docstore.Fields) error {
	if err := s.failure("set"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.coll(collection).put(id, normaliseFields(fields))
	return nil
}

// Add stores the document under a new uuid
func (s *Store) Add(ctx context.Context, collection string, fields docstore.Fields) (string, error) {
	if err := s.failure("add"); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.New().String()
	s.coll(collection).put(id, normaliseFields(fields))
	return id, nil
}

// Update merges fields into an existing document
func (s *Store) Update(ctx context.Context, collection, id string, fields docstore.Fields) error {
	if err := s.failure("update"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.coll(collection)
	existing, ok := c.docs[id]
	if !ok {
		return docstore.ErrNotFound
	}
	for k, v := range normaliseFields(fields) {
		existing[k] = v
	}
	return nil
}

// Delete removes the document; deleting a missing document is not an error
func (s *Store) Delete(ctx context.Context, collection, id string) error {
	if err := s.failure("delete"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.coll(collection).remove(id)
	return nil
}

// Query scans a collection in insertion order, then applies ordering and limit
func (s *Store) Query(ctx context.Context, collection string, q docstore.Query) ([]docstore.Document, error) {
	if err := s.failure("query"); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.collections[collection]
	if !ok {
		return []docstore.Document{}, nil
	}

	where := normaliseFields(q.Where)
	docs := make([]docstore.Document, 0, len(c.order))
	for _, id := range c.order {
		fields := c.docs[id]
		if !matches(fields, where) {
			continue
		}
		docs = append(docs, docstore.Document{ID: id, Fields: copyFields(fields)})
	}

	if q.OrderBy != "" {
		sort.SliceStable(docs, func(i, j int) bool {
			a, b := docs[i].Fields[q.OrderBy], docs[j].Fields[q.OrderBy]
			if q.Dir == docstore.Desc {
				return lessValue(b, a)
			}
			return lessValue(a, b)
		})
	}

	if q.Limit > 0 && len(docs) > q.Limit {
		docs = docs[:q.Limit]
	}
	return docs, nil
}

// Count returns the number of documents matching q.Where
func (s *Store) Count(ctx context.Context, collection string, q docstore.Query) (int64, error) {
	if err := s.failure("count"); err != nil {
		return 0, err
	}
	docs, err := s.Query(ctx, collection, docstore.Query{Where: q.Where})
	if err != nil {
		return 0, err
	}
	return int64(len(docs)), nil
}

// Increment adds delta to an integer field, upserting the document
func (s *Store) Increment(ctx context.Context, collection, id, field string, delta int64, set docstore.Fields) error {
	if err := s.failure("increment"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.coll(collection)
	doc, ok := c.docs[id]
	if !ok {
		doc = docstore.Fields{}
		c.put(id, doc)
	}

	var current int64
	switch v := doc[field].(type) {
	case int64:
		current = v
	case nil:
	default:
		return fmt.Errorf("cannot increment %s/%s.%s of type %T", collection, id, field, v)
	}
	doc[field] = current + delta
	for k, v := range normaliseFields(set) {
		doc[k] = v
	}
	return nil
}

// ArrayUnion appends values that are not already present in the array field
func (s *Store) ArrayUnion(ctx context.Context, collection, id, field string, values ...interface{}) error {
	if err := s.failure("arrayUnion"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.coll(collection).docs[id]
	if !ok {
		return docstore.ErrNotFound
	}
	arr, _ := doc[field].([]interface{})
	for _, v := range values {
		nv := normalise(v)
		present := false
		for _, existing := range arr {
			if reflect.DeepEqual(existing, nv) {
				present = true
				break
			}
		}
		if !present {
			arr = append(arr, nv)
		}
	}
	doc[field] = arr
	return nil
}

// ArrayRemove drops every object element whose keys equal match
func (s *Store) ArrayRemove(ctx context.Context, collection, id, field string, match docstore.Fields) error {
	if err := s.failure("arrayRemove"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.coll(collection).docs[id]
	if !ok {
		return docstore.ErrNotFound
	}
	arr, _ := doc[field].([]interface{})
	want := normaliseFields(match)
	kept := make([]interface{}, 0, len(arr))
	for _, el := range arr {
		if obj, ok := el.(docstore.Fields); ok && matches(obj, want) {
			continue
		}
		kept = append(kept, el)
	}
	doc[field] = kept
	return nil
}

// SetIfVersion writes the document when its version equals expected
func (s *Store) SetIfVersion(ctx context.Context, collection, id string, fields docstore.Fields, expected int64) error {
	if err := s.failure("set"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.coll(collection)
	if err := checkVersion(c, id, expected); err != nil {
		return err
	}
	doc := normaliseFields(fields)
	doc[docstore.VersionField] = docstore.NextVersion(expected)
	c.put(id, doc)
	return nil
}

// DeleteIfVersion removes the document when its version equals expected
func (s *Store) DeleteIfVersion(ctx context.Context, collection, id string, expected int64) error {
	if err := s.failure("delete"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.coll(collection)
	if err := checkVersion(c, id, expected); err != nil {
		return err
	}
	c.remove(id)
	return nil
}

// Ping always succeeds unless a "ping" failure is injected
func (s *Store) Ping(ctx context.Context) error {
	return s.failure("ping")
}

func checkVersion(c *collection, id string, expected int64) error {
	doc, exists := c.docs[id]
	if expected == 0 {
		if exists {
			return docstore.ErrVersionConflict
		}
		return nil
	}
	if !exists {
		return docstore.ErrVersionConflict
	}
	raw, versioned := doc[docstore.VersionField]
	if expected == docstore.Unversioned {
		if versioned && raw != nil {
			return docstore.ErrVersionConflict
		}
		return nil
	}
	current, _ := raw.(int64)
	if current != expected {
		return docstore.ErrVersionConflict
	}
	return nil
}

func matches(fields, where docstore.Fields) bool {
	for k, want := range where {
		if !reflect.DeepEqual(fields[k], want) {
			return false
		}
	}
	return true
}

func lessValue(a, b interface{}) bool {
	switch av := a.(type) {
	case time.Time:
		if bv, ok := b.(time.Time); ok {
			return av.Before(bv)
		}
	case int64:
		switch bv := b.(type) {
		case int64:
			return av < bv
		case float64:
			return float64(av) < bv
		}
	case float64:
		switch bv := b.(type) {
		case float64:
			return av < bv
		case int64:
			return av < float64(bv)
		}
	case string:
		if bv, ok := b.(string); ok {
			return strings.Compare(av, bv) < 0
		}
	case nil:
		return b != nil
	}
	return false
}

func copyFields(f docstore.Fields) docstore.Fields {
	return normaliseFields(f)
}

func normaliseFields(f docstore.Fields) docstore.Fields {
	out := make(docstore.Fields, len(f))
	for k, v := range f {
		out[k] = normalise(v)
	}
	return out
}

// normalise deep-copies v into the value set documented on docstore.Fields
func normalise(v interface{}) interface{} {
	switch t := v.(type) {
	case int:
		return int64(t)
	case int32:
		return int64(t)
	case float32:
		return float64(t)
	case time.Time:
		return t.UTC()
	case docstore.Fields:
		return normaliseFields(t)
	case map[string]interface{}:
		return normaliseFields(docstore.Fields(t))
	case []docstore.Fields:
		out := make([]interface{}, len(t))
		for i, e := range t {
			out[i] = normaliseFields(e)
		}
		return out
	case []string:
		out := make([]interface{}, len(t))
		for i, e := range t {
			out[i] = e
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, e := range t {
			out[i] = normalise(e)
		}
		return out
	}
	return v
}
