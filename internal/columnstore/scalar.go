package columnstore

import (
	"io"

	"github.com/apache/arrow/go/v16/arrow"
	"github.com/apache/arrow/go/v16/arrow/array"
	"github.com/apache/arrow/go/v16/parquet"

	"github.com/gmggroup/omf-go/internal/model"
	"github.com/gmggroup/omf-go/internal/omferr"
)

// Width picks the physical float width a writer uses for a Scalar, Vertex,
// Texcoord, or Vector value column (spec.md §4.2 schema variants); Number
// and Boundary columns are typed by model.NumberType instead.
type Width int

const (
	Width32 Width = iota
	Width64
)

func widthType(w Width) arrow.DataType {
	if w == Width32 {
		return arrow.PrimitiveTypes.Float32
	}
	return arrow.PrimitiveTypes.Float64
}

func scalarSchema(w Width) *arrow.Schema {
	return schemaOf(field("value", widthType(w), false))
}

var scalarMatcher = NewMatcher(
	struct {
		Value  Width
		Schema *arrow.Schema
	}{Width32, scalarSchema(Width32)},
	struct {
		Value  Width
		Schema *arrow.Schema
	}{Width64, scalarSchema(Width64)},
)

// WriteScalar streams a Scalar array (spec.md §3 "Array<T>" / §4.2).
func WriteScalar(w io.Writer, props *parquet.WriterProperties, src Source[float64], width Width) (model.Array[float64], error) {
	schema := scalarSchema(width)
	appendRow := func(rb *array.RecordBuilder, v float64) error {
		if width == Width32 {
			rb.Field(0).(*array.Float32Builder).Append(float32(v))
		} else {
			rb.Field(0).(*array.Float64Builder).Append(v)
		}
		return nil
	}
	count, err := writeRecords(w, schema, props, src, appendRow)
	if err != nil {
		return model.Array[float64]{}, err
	}
	return model.NewArray[float64]("", count), nil
}

// ScalarSink reads a Scalar array back as float64, widening narrower
// storage per spec.md §4.2 "default to widest float".
type ScalarSink struct {
	cur      *rowCursor
	width    Width
	requirePositive bool
}

func ReadScalar(r parquet.ReaderAtSeeker, requirePositive bool) (*ScalarSink, error) {
	src, err := openRecordSource(r)
	if err != nil {
		return nil, err
	}
	width, err := scalarMatcher.Match(src.schema)
	if err != nil {
		_ = src.close()
		return nil, err
	}
	return &ScalarSink{cur: newRowCursor(src), width: width, requirePositive: requirePositive}, nil
}

func (s *ScalarSink) Next() (float64, bool, error) {
	rec, row, ok, err := s.cur.next()
	if err != nil || !ok {
		return 0, false, err
	}
	col := rec.Column(0)
	var v float64
	switch s.width {
	case Width32:
		v = float64(col.(*array.Float32).Value(int(row)))
	default:
		v = col.(*array.Float64).Value(int(row))
	}
	if s.requirePositive && v <= 0 {
		return 0, false, omferr.InvalidDataErr("scalar value must be greater than zero")
	}
	return v, true, nil
}

func (s *ScalarSink) Close() error { return s.cur.close() }

// --- Vertex / Texcoord: fixed-arity tuples of required floats ---

func tupleSchema(names []string, w Width) *arrow.Schema {
	fields := make([]arrow.Field, len(names))
	for i, n := range names {
		fields[i] = field(n, widthType(w), false)
	}
	return schemaOf(fields...)
}

var vertexNames = []string{"x", "y", "z"}
var texcoordNames = []string{"u", "v"}

var vertexMatcher = NewMatcher(
	struct {
		Value  Width
		Schema *arrow.Schema
	}{Width32, tupleSchema(vertexNames, Width32)},
	struct {
		Value  Width
		Schema *arrow.Schema
	}{Width64, tupleSchema(vertexNames, Width64)},
)

var texcoordMatcher = NewMatcher(
	struct {
		Value  Width
		Schema *arrow.Schema
	}{Width32, tupleSchema(texcoordNames, Width32)},
	struct {
		Value  Width
		Schema *arrow.Schema
	}{Width64, tupleSchema(texcoordNames, Width64)},
)

func appendTuple(rb *array.RecordBuilder, width Width, values []float64) {
	for i, v := range values {
		if width == Width32 {
			rb.Field(i).(*array.Float32Builder).Append(float32(v))
		} else {
			rb.Field(i).(*array.Float64Builder).Append(v)
		}
	}
}

func readTuple(rec arrow.Record, row int64, width Width, n int) []float64 {
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		col := rec.Column(i)
		if width == Width32 {
			out[i] = float64(col.(*array.Float32).Value(int(row)))
		} else {
			out[i] = col.(*array.Float64).Value(int(row))
		}
	}
	return out
}

// WriteVertex streams a Vertex array.
func WriteVertex(w io.Writer, props *parquet.WriterProperties, src Source[model.Vertex], width Width) (model.Array[model.Vertex], error) {
	schema := tupleSchema(vertexNames, width)
	appendRow := func(rb *array.RecordBuilder, v model.Vertex) error {
		appendTuple(rb, width, v[:])
		return nil
	}
	count, err := writeRecords(w, schema, props, src, appendRow)
	if err != nil {
		return model.Array[model.Vertex]{}, err
	}
	return model.NewArray[model.Vertex]("", count), nil
}

type VertexSink struct {
	cur   *rowCursor
	width Width
}

func ReadVertex(r parquet.ReaderAtSeeker) (*VertexSink, error) {
	src, err := openRecordSource(r)
	if err != nil {
		return nil, err
	}
	width, err := vertexMatcher.Match(src.schema)
	if err != nil {
		_ = src.close()
		return nil, err
	}
	return &VertexSink{cur: newRowCursor(src), width: width}, nil
}

func (s *VertexSink) Next() (model.Vertex, bool, error) {
	rec, row, ok, err := s.cur.next()
	if err != nil || !ok {
		return model.Vertex{}, false, err
	}
	vals := readTuple(rec, row, s.width, 3)
	return model.Vertex{vals[0], vals[1], vals[2]}, true, nil
}

func (s *VertexSink) Close() error { return s.cur.close() }

// WriteTexcoord streams a Texcoord array.
func WriteTexcoord(w io.Writer, props *parquet.WriterProperties, src Source[model.Texcoord], width Width) (model.Array[model.Texcoord], error) {
	schema := tupleSchema(texcoordNames, width)
	appendRow := func(rb *array.RecordBuilder, v model.Texcoord) error {
		appendTuple(rb, width, v[:])
		return nil
	}
	count, err := writeRecords(w, schema, props, src, appendRow)
	if err != nil {
		return model.Array[model.Texcoord]{}, err
	}
	return model.NewArray[model.Texcoord]("", count), nil
}

type TexcoordSink struct {
	cur   *rowCursor
	width Width
}

func ReadTexcoord(r parquet.ReaderAtSeeker) (*TexcoordSink, error) {
	src, err := openRecordSource(r)
	if err != nil {
		return nil, err
	}
	width, err := texcoordMatcher.Match(src.schema)
	if err != nil {
		_ = src.close()
		return nil, err
	}
	return &TexcoordSink{cur: newRowCursor(src), width: width}, nil
}

func (s *TexcoordSink) Next() (model.Texcoord, bool, error) {
	rec, row, ok, err := s.cur.next()
	if err != nil || !ok {
		return model.Texcoord{}, false, err
	}
	vals := readTuple(rec, row, s.width, 2)
	return model.Texcoord{vals[0], vals[1]}, true, nil
}

func (s *TexcoordSink) Close() error { return s.cur.close() }
