package columnstore

import (
	"io"
	"time"

	"github.com/apache/arrow/go/v16/arrow"
	"github.com/apache/arrow/go/v16/arrow/array"
	"github.com/apache/arrow/go/v16/parquet"

	"github.com/gmggroup/omf-go/internal/model"
	"github.com/gmggroup/omf-go/internal/omferr"
)

// numberArrowType maps model.NumberType to its stored Arrow physical type
// (spec.md §4.2, §9 testable property 7: dates store as days since epoch,
// datetimes as UTC microseconds since epoch).
func numberArrowType(t model.NumberType) arrow.DataType {
	switch t {
	case model.F32:
		return arrow.PrimitiveTypes.Float32
	case model.I64:
		return arrow.PrimitiveTypes.Int64
	case model.Date:
		return arrow.FixedWidthTypes.Date32
	case model.DateTime:
		return &arrow.TimestampType{Unit: arrow.Microsecond, TimeZone: "UTC"}
	default:
		return arrow.PrimitiveTypes.Float64
	}
}

func numberSchema(t model.NumberType) *arrow.Schema {
	return schemaOf(field("value", numberArrowType(t), true))
}

var numberMatcher = NewMatcher(
	struct {
		Value  model.NumberType
		Schema *arrow.Schema
	}{model.F32, numberSchema(model.F32)},
	struct {
		Value  model.NumberType
		Schema *arrow.Schema
	}{model.F64, numberSchema(model.F64)},
	struct {
		Value  model.NumberType
		Schema *arrow.Schema
	}{model.I64, numberSchema(model.I64)},
	struct {
		Value  model.NumberType
		Schema *arrow.Schema
	}{model.Date, numberSchema(model.Date)},
	struct {
		Value  model.NumberType
		Schema *arrow.Schema
	}{model.DateTime, numberSchema(model.DateTime)},
)

const epochDay = 24 * time.Hour

func daysSinceEpoch(t time.Time) int32 {
	return int32(t.UTC().Truncate(epochDay).Unix() / int64(epochDay/time.Second))
}

func fromDaysSinceEpoch(days int32) time.Time {
	return time.Unix(int64(days)*int64(epochDay/time.Second), 0).UTC()
}

func microsSinceEpoch(t time.Time) int64 {
	return t.UTC().UnixMicro()
}

func fromMicrosSinceEpoch(us int64) time.Time {
	return time.UnixMicro(us).UTC()
}

// appendNumber writes one value, encoding dates as days since epoch and
// datetimes as UTC microseconds since epoch.
func appendNumber(rb *array.RecordBuilder, t model.NumberType, v *NumberValue) {
	b := rb.Field(0)
	if v == nil {
		switch bb := b.(type) {
		case *array.Float32Builder:
			bb.AppendNull()
		case *array.Int64Builder:
			bb.AppendNull()
		case *array.Date32Builder:
			bb.AppendNull()
		case *array.TimestampBuilder:
			bb.AppendNull()
		default:
			b.(*array.Float64Builder).AppendNull()
		}
		return
	}
	switch t {
	case model.F32:
		rb.Field(0).(*array.Float32Builder).Append(float32(v.Float))
	case model.I64:
		rb.Field(0).(*array.Int64Builder).Append(v.Int)
	case model.Date:
		rb.Field(0).(*array.Date32Builder).Append(arrow.Date32(daysSinceEpoch(v.Time)))
	case model.DateTime:
		rb.Field(0).(*array.TimestampBuilder).Append(arrow.Timestamp(microsSinceEpoch(v.Time)))
	default:
		rb.Field(0).(*array.Float64Builder).Append(v.Float)
	}
}

// NumberValue is model's decoded Number/Boundary column value, aliased here
// so this file's signatures read naturally alongside the Arrow plumbing.
type NumberValue = model.NumberValue

func readNumber(rec arrow.Record, row int64, t model.NumberType) (*NumberValue, bool) {
	col := rec.Column(0)
	switch c := col.(type) {
	case *array.Float32:
		if c.IsNull(int(row)) {
			return nil, true
		}
		return &NumberValue{Float: float64(c.Value(int(row)))}, true
	case *array.Float64:
		if c.IsNull(int(row)) {
			return nil, true
		}
		return &NumberValue{Float: c.Value(int(row))}, true
	case *array.Int64:
		if c.IsNull(int(row)) {
			return nil, true
		}
		return &NumberValue{Int: c.Value(int(row)), Float: float64(c.Value(int(row)))}, true
	case *array.Date32:
		if c.IsNull(int(row)) {
			return nil, true
		}
		return &NumberValue{Time: fromDaysSinceEpoch(int32(c.Value(int(row))))}, true
	case *array.Timestamp:
		if c.IsNull(int(row)) {
			return nil, true
		}
		return &NumberValue{Time: fromMicrosSinceEpoch(int64(c.Value(int(row))))}, true
	}
	return nil, false
}

// WriteNumber streams a Number attribute column (spec.md §4.3 NumberData).
func WriteNumber(w io.Writer, props *parquet.WriterProperties, src Source[*NumberValue], t model.NumberType) (model.Array[NumberValue], error) {
	schema := numberSchema(t)
	appendRow := func(rb *array.RecordBuilder, v *NumberValue) error {
		appendNumber(rb, t, v)
		return nil
	}
	count, err := writeRecords(w, schema, props, src, appendRow)
	if err != nil {
		return model.Array[NumberValue]{}, err
	}
	return model.NewArray[NumberValue]("", count), nil
}

type NumberSink struct {
	cur *rowCursor
	typ model.NumberType
}

func ReadNumber(r parquet.ReaderAtSeeker) (*NumberSink, error) {
	src, err := openRecordSource(r)
	if err != nil {
		return nil, err
	}
	typ, err := numberMatcher.Match(src.schema)
	if err != nil {
		_ = src.close()
		return nil, err
	}
	return &NumberSink{cur: newRowCursor(src), typ: typ}, nil
}

func (s *NumberSink) Next() (*NumberValue, bool, error) {
	rec, row, ok, err := s.cur.next()
	if err != nil || !ok {
		return nil, false, err
	}
	v, recognized := readNumber(rec, row, s.typ)
	if !recognized {
		return nil, true, omferr.Wrap(omferr.ParquetError, errUnrecognizedNumberColumn)
	}
	return v, true, nil
}

func (s *NumberSink) Close() error { return s.cur.close() }

var errUnrecognizedNumberColumn = &unrecognizedColumnError{}

type unrecognizedColumnError struct{}

func (*unrecognizedColumnError) Error() string { return "unrecognized number column physical type" }

// --- Boundary: a Number-typed value column plus a required "inclusive" flag,
// used by DiscreteColormap to delimit bins (spec.md §4.3) ---

func boundarySchema(t model.NumberType) *arrow.Schema {
	return schemaOf(field("value", numberArrowType(t), true), field("inclusive", arrow.FixedWidthTypes.Boolean, false))
}

var boundaryMatcher = NewMatcher(
	struct {
		Value  model.NumberType
		Schema *arrow.Schema
	}{model.F32, boundarySchema(model.F32)},
	struct {
		Value  model.NumberType
		Schema *arrow.Schema
	}{model.F64, boundarySchema(model.F64)},
	struct {
		Value  model.NumberType
		Schema *arrow.Schema
	}{model.I64, boundarySchema(model.I64)},
	struct {
		Value  model.NumberType
		Schema *arrow.Schema
	}{model.Date, boundarySchema(model.Date)},
	struct {
		Value  model.NumberType
		Schema *arrow.Schema
	}{model.DateTime, boundarySchema(model.DateTime)},
)

// WriteBoundary streams a Boundary<T> array. A non-monotonic sequence is
// still written; the returned array's WriteCheck records MonotonicBoundary
// false, which the Validator reports as min_max_out_of_order (boundaries
// must be non-decreasing).
func WriteBoundary(w io.Writer, props *parquet.WriterProperties, src Source[model.Boundary[*NumberValue]], t model.NumberType) (model.Array[model.Boundary[NumberValue]], error) {
	schema := boundarySchema(t)
	var prev *float64
	monotonic := true
	appendRow := func(rb *array.RecordBuilder, v model.Boundary[*NumberValue]) error {
		appendNumber(rb, t, v.Value)
		rb.Field(1).(*array.BooleanBuilder).Append(v.Inclusive)
		if v.Value != nil {
			cur := sortKey(t, v.Value)
			if !boundaryMonotonic(prev, cur) {
				monotonic = false
			}
			prev = &cur
		}
		return nil
	}
	count, err := writeRecords(w, schema, props, src, appendRow)
	if err != nil {
		return model.Array[model.Boundary[NumberValue]]{}, err
	}
	arr := model.NewArray[model.Boundary[NumberValue]]("", count)
	arr.Checks = []model.WriteCheck{{MonotonicBoundary: &monotonic}}
	return arr, nil
}

func sortKey(t model.NumberType, v *NumberValue) float64 {
	switch t {
	case model.Date:
		return float64(v.Time.Unix())
	case model.DateTime:
		return float64(microsSinceEpoch(v.Time))
	case model.I64:
		return float64(v.Int)
	default:
		return v.Float
	}
}

type BoundarySink struct {
	cur  *rowCursor
	typ  model.NumberType
	prev *float64
}

func ReadBoundary(r parquet.ReaderAtSeeker) (*BoundarySink, error) {
	src, err := openRecordSource(r)
	if err != nil {
		return nil, err
	}
	typ, err := boundaryMatcher.Match(src.schema)
	if err != nil {
		_ = src.close()
		return nil, err
	}
	return &BoundarySink{cur: newRowCursor(src), typ: typ}, nil
}

func (s *BoundarySink) Next() (model.Boundary[*NumberValue], bool, error) {
	rec, row, ok, err := s.cur.next()
	if err != nil || !ok {
		return model.Boundary[*NumberValue]{}, false, err
	}
	v, recognized := readNumber(rec, row, s.typ)
	if !recognized {
		return model.Boundary[*NumberValue]{}, true, omferr.Wrap(omferr.ParquetError, errUnrecognizedNumberColumn)
	}
	inclusive := rec.Column(1).(*array.Boolean).Value(int(row))
	if v != nil {
		cur := sortKey(s.typ, v)
		if !boundaryMonotonic(s.prev, cur) {
			return model.Boundary[*NumberValue]{Value: v, Inclusive: inclusive}, true, omferr.InvalidDataErr("boundary values must be non-decreasing")
		}
		s.prev = &cur
	}
	return model.Boundary[*NumberValue]{Value: v, Inclusive: inclusive}, true, nil
}

func (s *BoundarySink) Close() error { return s.cur.close() }
