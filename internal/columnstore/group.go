package columnstore

import (
	"io"

	"github.com/apache/arrow/go/v16/arrow"
	"github.com/apache/arrow/go/v16/arrow/array"
	"github.com/apache/arrow/go/v16/parquet"

	"github.com/gmggroup/omf-go/internal/model"
	"github.com/gmggroup/omf-go/internal/omferr"
)

// --- Name: required UTF-8 string, used for category names ---

var nameSchema = schemaOf(field("value", arrow.BinaryTypes.String, false))

func WriteName(w io.Writer, props *parquet.WriterProperties, src Source[string]) (model.Array[string], error) {
	appendRow := func(rb *array.RecordBuilder, v string) error {
		rb.Field(0).(*array.StringBuilder).Append(v)
		return nil
	}
	count, err := writeRecords(w, nameSchema, props, src, appendRow)
	if err != nil {
		return model.Array[string]{}, err
	}
	return model.NewArray[string]("", count), nil
}

type NameSink struct{ cur *rowCursor }

func ReadName(r parquet.ReaderAtSeeker) (*NameSink, error) {
	src, err := openRecordSource(r)
	if err != nil {
		return nil, err
	}
	if !src.schema.Equal(nameSchema) {
		_ = src.close()
		return nil, omferr.ParquetSchemaMismatchErr(src.schema.String(), nameSchema.String())
	}
	return &NameSink{cur: newRowCursor(src)}, nil
}

func (s *NameSink) Next() (string, bool, error) {
	rec, row, ok, err := s.cur.next()
	if err != nil || !ok {
		return "", false, err
	}
	return rec.Column(0).(*array.String).Value(int(row)), true, nil
}

func (s *NameSink) Close() error { return s.cur.close() }

// --- Text: nullable UTF-8 string, one per vertex/primitive/element ---

var textSchema = schemaOf(field("value", arrow.BinaryTypes.String, true))

func WriteText(w io.Writer, props *parquet.WriterProperties, src Source[*string]) (model.Array[string], error) {
	appendRow := func(rb *array.RecordBuilder, v *string) error {
		b := rb.Field(0).(*array.StringBuilder)
		if v == nil {
			b.AppendNull()
		} else {
			b.Append(*v)
		}
		return nil
	}
	count, err := writeRecords(w, textSchema, props, src, appendRow)
	if err != nil {
		return model.Array[string]{}, err
	}
	return model.NewArray[string]("", count), nil
}

type TextSink struct{ cur *rowCursor }

func ReadText(r parquet.ReaderAtSeeker) (*TextSink, error) {
	src, err := openRecordSource(r)
	if err != nil {
		return nil, err
	}
	if !src.schema.Equal(textSchema) {
		_ = src.close()
		return nil, omferr.ParquetSchemaMismatchErr(src.schema.String(), textSchema.String())
	}
	return &TextSink{cur: newRowCursor(src)}, nil
}

func (s *TextSink) Next() (*string, bool, error) {
	rec, row, ok, err := s.cur.next()
	if err != nil || !ok {
		return nil, false, err
	}
	col := rec.Column(0).(*array.String)
	if col.IsNull(int(row)) {
		return nil, true, nil
	}
	v := col.Value(int(row))
	return &v, true, nil
}

func (s *TextSink) Close() error { return s.cur.close() }

// --- Boolean: nullable bool, three-valued per spec.md §4.2 ("null means
// unknown, distinct from false") ---

var booleanSchema = schemaOf(field("value", arrow.FixedWidthTypes.Boolean, true))

func WriteBoolean(w io.Writer, props *parquet.WriterProperties, src Source[model.Trivalent]) (model.Array[model.Trivalent], error) {
	appendRow := func(rb *array.RecordBuilder, v model.Trivalent) error {
		b := rb.Field(0).(*array.BooleanBuilder)
		switch v {
		case model.BoolNull:
			b.AppendNull()
		case model.BoolTrue:
			b.Append(true)
		default:
			b.Append(false)
		}
		return nil
	}
	count, err := writeRecords(w, booleanSchema, props, src, appendRow)
	if err != nil {
		return model.Array[model.Trivalent]{}, err
	}
	return model.NewArray[model.Trivalent]("", count), nil
}

type BooleanSink struct{ cur *rowCursor }

func ReadBoolean(r parquet.ReaderAtSeeker) (*BooleanSink, error) {
	src, err := openRecordSource(r)
	if err != nil {
		return nil, err
	}
	if !src.schema.Equal(booleanSchema) {
		_ = src.close()
		return nil, omferr.ParquetSchemaMismatchErr(src.schema.String(), booleanSchema.String())
	}
	return &BooleanSink{cur: newRowCursor(src)}, nil
}

func (s *BooleanSink) Next() (model.Trivalent, bool, error) {
	rec, row, ok, err := s.cur.next()
	if err != nil || !ok {
		return model.BoolNull, false, err
	}
	col := rec.Column(0).(*array.Boolean)
	if col.IsNull(int(row)) {
		return model.BoolNull, true, nil
	}
	if col.Value(int(row)) {
		return model.BoolTrue, true, nil
	}
	return model.BoolFalse, true, nil
}

func (s *BooleanSink) Close() error { return s.cur.close() }

// --- Color: nullable RGBA (null means "no color assigned to this item") ---

var colorSchema = schemaOf(
	field("r", arrow.PrimitiveTypes.Uint8, true),
	field("g", arrow.PrimitiveTypes.Uint8, true),
	field("b", arrow.PrimitiveTypes.Uint8, true),
	field("a", arrow.PrimitiveTypes.Uint8, true),
)

func WriteColor(w io.Writer, props *parquet.WriterProperties, src Source[*model.Color]) (model.Array[model.Color], error) {
	appendRow := func(rb *array.RecordBuilder, v *model.Color) error {
		if v == nil {
			for i := 0; i < 4; i++ {
				rb.Field(i).(*array.Uint8Builder).AppendNull()
			}
			return nil
		}
		for i, c := range v {
			rb.Field(i).(*array.Uint8Builder).Append(c)
		}
		return nil
	}
	count, err := writeRecords(w, colorSchema, props, src, appendRow)
	if err != nil {
		return model.Array[model.Color]{}, err
	}
	return model.NewArray[model.Color]("", count), nil
}

type ColorSink struct{ cur *rowCursor }

func ReadColor(r parquet.ReaderAtSeeker) (*ColorSink, error) {
	src, err := openRecordSource(r)
	if err != nil {
		return nil, err
	}
	if !src.schema.Equal(colorSchema) {
		_ = src.close()
		return nil, omferr.ParquetSchemaMismatchErr(src.schema.String(), colorSchema.String())
	}
	return &ColorSink{cur: newRowCursor(src)}, nil
}

func (s *ColorSink) Next() (*model.Color, bool, error) {
	rec, row, ok, err := s.cur.next()
	if err != nil || !ok {
		return nil, false, err
	}
	col0 := rec.Column(0).(*array.Uint8)
	if col0.IsNull(int(row)) {
		return nil, true, nil
	}
	var v model.Color
	for i := range v {
		v[i] = rec.Column(i).(*array.Uint8).Value(int(row))
	}
	return &v, true, nil
}

func (s *ColorSink) Close() error { return s.cur.close() }

// --- Vector: nullable group of 2 or 3 required-looking float fields; the
// group itself carries the null flag (spec.md §4.2 "nested group columns
// combine their own null flag with required inner fields") ---

func vectorFields(dims int, w Width) []arrow.Field {
	names := []string{"x", "y", "z"}[:dims]
	fields := make([]arrow.Field, dims)
	for i, n := range names {
		fields[i] = field(n, widthType(w), false)
	}
	return fields
}

func vectorSchema(dims int, w Width) *arrow.Schema {
	return arrow.NewSchema([]arrow.Field{{
		Name:     "value",
		Type:     arrow.StructOf(vectorFields(dims, w)...),
		Nullable: true,
	}}, nil)
}

func vectorMatcher(dims int) *Matcher[Width] {
	return NewMatcher(
		struct {
			Value  Width
			Schema *arrow.Schema
		}{Width32, vectorSchema(dims, Width32)},
		struct {
			Value  Width
			Schema *arrow.Schema
		}{Width64, vectorSchema(dims, Width64)},
	)
}

// WriteVector streams a Vector array. dims is 2 or 3; VectorSink.Next lifts
// stored 2D vectors to 3D (z=0) on read, so the writer only ever sees the
// array's declared dimensionality.
func WriteVector(w io.Writer, props *parquet.WriterProperties, src Source[*[]float64], dims int, width Width) (model.Array[[3]float64], error) {
	schema := vectorSchema(dims, width)
	appendRow := func(rb *array.RecordBuilder, v *[]float64) error {
		sb := rb.Field(0).(*array.StructBuilder)
		if v == nil {
			sb.AppendNull()
			return nil
		}
		sb.Append(true)
		for i, x := range *v {
			fb := sb.FieldBuilder(i)
			if width == Width32 {
				fb.(*array.Float32Builder).Append(float32(x))
			} else {
				fb.(*array.Float64Builder).Append(x)
			}
		}
		return nil
	}
	count, err := writeRecords(w, schema, props, src, appendRow)
	if err != nil {
		return model.Array[[3]float64]{}, err
	}
	return model.NewArray[[3]float64]("", count), nil
}

type VectorSink struct {
	cur  *rowCursor
	dims int
	width Width
}

func ReadVector(r parquet.ReaderAtSeeker) (*VectorSink, error) {
	src, err := openRecordSource(r)
	if err != nil {
		return nil, err
	}
	for _, dims := range []int{2, 3} {
		width, merr := vectorMatcher(dims).Match(src.schema)
		if merr == nil {
			return &VectorSink{cur: newRowCursor(src), dims: dims, width: width}, nil
		}
	}
	_ = src.close()
	return nil, omferr.ParquetSchemaMismatchErr(src.schema.String(), "Vector(2|3, f32|f64)")
}

// Next returns the vector lifted to 3D with z=0 when the stored array is
// 2D, per spec.md §4.2.
func (s *VectorSink) Next() (*[3]float64, bool, error) {
	rec, row, ok, err := s.cur.next()
	if err != nil || !ok {
		return nil, false, err
	}
	structCol := rec.Column(0).(*array.Struct)
	if structCol.IsNull(int(row)) {
		return nil, true, nil
	}
	var out [3]float64
	for i := 0; i < s.dims; i++ {
		field := structCol.Field(i)
		if s.width == Width32 {
			out[i] = float64(field.(*array.Float32).Value(int(row)))
		} else {
			out[i] = field.(*array.Float64).Value(int(row))
		}
	}
	return &out, true, nil
}

func (s *VectorSink) Close() error { return s.cur.close() }
