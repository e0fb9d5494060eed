package columnstore

import (
	"fmt"

	"github.com/apache/arrow/go/v16/arrow"

	"github.com/gmggroup/omf-go/internal/omferr"
)

// Matcher holds the ordered list of Arrow schemas a logical array kind
// accepts, paired with a value describing which read-side variant that
// schema selects (spec.md §4.2 "Each logical kind declares a matcher").
// This mirrors original_source's PqArrayMatcher, adapted to compare Arrow
// schemas (since reads and writes both go through pqarrow) instead of raw
// Parquet physical types.
type Matcher[T any] struct {
	schemas []*arrow.Schema
	values  []T
}

// NewMatcher builds a Matcher from (variant value, schema) pairs, in the
// order they should be tried.
func NewMatcher[T any](pairs ...struct {
	Value  T
	Schema *arrow.Schema
}) *Matcher[T] {
	m := &Matcher[T]{}
	for _, p := range pairs {
		m.schemas = append(m.schemas, p.Schema)
		m.values = append(m.values, p.Value)
	}
	return m
}

// Add appends one (value, schema) pair.
func (m *Matcher[T]) Add(value T, schema *arrow.Schema) *Matcher[T] {
	m.schemas = append(m.schemas, schema)
	m.values = append(m.values, value)
	return m
}

// Match returns the variant value for the first schema equal to found, or
// a ParquetSchemaMismatch error listing every accepted schema.
func (m *Matcher[T]) Match(found *arrow.Schema) (T, error) {
	for i, s := range m.schemas {
		if s.Equal(found) {
			return m.values[i], nil
		}
	}
	var zero T
	return zero, &omferr.Error{
		Kind:     omferr.ParquetSchemaMismatch,
		Found:    found.String(),
		Expected: schemaList(m.schemas),
	}
}

func schemaList(schemas []*arrow.Schema) string {
	out := ""
	for i, s := range schemas {
		if i > 0 {
			out += "; "
		}
		out += s.String()
	}
	return out
}

func field(name string, dt arrow.DataType, nullable bool) arrow.Field {
	return arrow.Field{Name: name, Type: dt, Nullable: nullable}
}

func schemaOf(fields ...arrow.Field) *arrow.Schema {
	return arrow.NewSchema(fields, nil)
}

func requireSchema(schema *arrow.Schema, want int) error {
	if schema.NumFields() != want {
		return fmt.Errorf("expected %d fields, got %d", want, schema.NumFields())
	}
	return nil
}
