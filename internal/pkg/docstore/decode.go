// internal/pkg/docstore/decode.go
package docstore

import (
	"errors"
	"fmt"
	"time"
)

// Decode failure reasons
const (
	ReasonMissing     = "missing"
	ReasonInvalidType = "invalid type"
)

// DecodeError reports a document that does not match its entity schema
type DecodeError struct {
	Collection string
	ID         string
	Field      string
	Reason     string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s/%s: field %q %s", e.Collection, e.ID, e.Field, e.Reason)
}

// IsDecodeError reports whether err wraps a *DecodeError
func IsDecodeError(err error) bool {
	var de *DecodeError
	return errors.As(err, &de)
}

// Decoder reads typed fields out of one document and remembers where it came from
type Decoder struct {
	collection string
	id         string
	fields     Fields
	prefix     string
}

// NewDecoder returns a decoder for doc in collection
func NewDecoder(collection string, doc Document) *Decoder {
	return &Decoder{collection: collection, id: doc.ID, fields: doc.Fields}
}

// Nested returns a decoder for an embedded object, keeping error paths qualified
func (d *Decoder) Nested(field string, fields Fields) *Decoder {
	return &Decoder{
		collection: d.collection,
		id:         d.id,
		fields:     fields,
		prefix:     d.path(field) + ".",
	}
}

func (d *Decoder) path(field string) string {
	return d.prefix + field
}

func (d *Decoder) missing(field string) error {
	return &DecodeError{Collection: d.collection, ID: d.id, Field: d.path(field), Reason: ReasonMissing}
}

func (d *Decoder) invalid(field string, v interface{}) error {
	return &DecodeError{
		Collection: d.collection,
		ID:         d.id,
		Field:      d.path(field),
		Reason:     fmt.Sprintf("%s (%T)", ReasonInvalidType, v),
	}
}

// Has reports whether the field is present and not null
func (d *Decoder) Has(field string) bool {
	v, ok := d.fields[field]
	return ok && v != nil
}

// String reads a required string
func (d *Decoder) String(field string) (string, error) {
	v, ok := d.fields[field]
	if !ok || v == nil {
		return "", d.missing(field)
	}
	s, ok := v.(string)
	if !ok {
		return "", d.invalid(field, v)
	}
	return s, nil
}

// OptString reads an optional string, returning "" when absent
func (d *Decoder) OptString(field string) (string, error) {
	if !d.Has(field) {
		return "", nil
	}
	return d.String(field)
}

// Int64 reads a required integer. Whole floats are accepted.
func (d *Decoder) Int64(field string) (int64, error) {
	v, ok := d.fields[field]
	if !ok || v == nil {
		return 0, d.missing(field)
	}
	switch n := v.(type) {
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case float64:
		if n != float64(int64(n)) {
			return 0, d.invalid(field, v)
		}
		return int64(n), nil
	}
	return 0, d.invalid(field, v)
}

// OptInt64 reads an optional integer, returning 0 when absent
func (d *Decoder) OptInt64(field string) (int64, error) {
	if !d.Has(field) {
		return 0, nil
	}
	return d.Int64(field)
}

// Float64 reads a required number
func (d *Decoder) Float64(field string) (float64, error) {
	v, ok := d.fields[field]
	if !ok || v == nil {
		return 0, d.missing(field)
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case int64:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int32:
		return float64(n), nil
	}
	return 0, d.invalid(field, v)
}

// Raw returns the untyped value of a field
func (d *Decoder) Raw(field string) (interface{}, bool) {
	v, ok := d.fields[field]
	return v, ok && v != nil
}

// Time reads a required timestamp
func (d *Decoder) Time(field string) (time.Time, error) {
	v, ok := d.fields[field]
	if !ok || v == nil {
		return time.Time{}, d.missing(field)
	}
	t, ok := v.(time.Time)
	if !ok {
		return time.Time{}, d.invalid(field, v)
	}
	return t, nil
}

// Slice reads a required array. An absent array is reported as missing.
func (d *Decoder) Slice(field string) ([]interface{}, error) {
	v, ok := d.fields[field]
	if !ok || v == nil {
		return nil, d.missing(field)
	}
	s, ok := v.([]interface{})
	if !ok {
		return nil, d.invalid(field, v)
	}
	return s, nil
}

// OptSlice reads an optional array, returning nil when absent
func (d *Decoder) OptSlice(field string) ([]interface{}, error) {
	if !d.Has(field) {
		return nil, nil
	}
	return d.Slice(field)
}

// Object reads a required embedded document
func (d *Decoder) Object(field string) (*Decoder, error) {
	v, ok := d.fields[field]
	if !ok || v == nil {
		return nil, d.missing(field)
	}
	f, ok := v.(Fields)
	if !ok {
		if m, isMap := v.(map[string]interface{}); isMap {
			f = Fields(m)
		} else {
			return nil, d.invalid(field, v)
		}
	}
	return d.Nested(field, f), nil
}

// Element returns a decoder for the i-th object of an array field
func (d *Decoder) Element(field string, i int, v interface{}) (*Decoder, error) {
	name := fmt.Sprintf("%s[%d]", field, i)
	switch f := v.(type) {
	case Fields:
		return d.Nested(name, f), nil
	case map[string]interface{}:
		return d.Nested(name, Fields(f)), nil
	}
	return nil, d.invalid(name, v)
}

// Strings reads an array of strings. An absent array decodes as empty.
func (d *Decoder) Strings(field string) ([]string, error) {
	items, err := d.OptSlice(field)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(items))
	for i, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, d.invalid(fmt.Sprintf("%s[%d]", field, i), item)
		}
		out = append(out, s)
	}
	return out, nil
}
