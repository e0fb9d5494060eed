package columnstore

import (
	"io"

	"github.com/apache/arrow/go/v16/arrow"
	"github.com/apache/arrow/go/v16/arrow/array"
	"github.com/apache/arrow/go/v16/parquet"

	"github.com/gmggroup/omf-go/internal/model"
	"github.com/gmggroup/omf-go/internal/omferr"
)

func uint32Field(name string) arrow.Field { return field(name, arrow.PrimitiveTypes.Uint32, false) }
func uint8Field(name string) arrow.Field  { return field(name, arrow.PrimitiveTypes.Uint8, false) }

// --- Segment (2 uint32) / Triangle (3 uint32): index arrays into vertices ---

var segmentSchema = schemaOf(uint32Field("a"), uint32Field("b"))
var triangleSchema = schemaOf(uint32Field("a"), uint32Field("b"), uint32Field("c"))

func appendUint32Tuple(rb *array.RecordBuilder, values []uint32) {
	for i, v := range values {
		rb.Field(i).(*array.Uint32Builder).Append(v)
	}
}

func readUint32Tuple(rec arrow.Record, row int64, n int) []uint32 {
	out := make([]uint32, n)
	for i := 0; i < n; i++ {
		out[i] = rec.Column(i).(*array.Uint32).Value(int(row))
	}
	return out
}

func checkIndex(value uint32, maxIndex *uint64, what string) error {
	if maxIndex != nil && uint64(value) >= *maxIndex {
		return omferr.InvalidDataErr(what)
	}
	return nil
}

// WriteSegment streams a Segment array, recording the maximum index
// observed for the Validator's write-side check (spec.md §4.2, §9).
func WriteSegment(w io.Writer, props *parquet.WriterProperties, src Source[model.Segment]) (model.Array[model.Segment], error) {
	var maxSeen uint64
	var any bool
	appendRow := func(rb *array.RecordBuilder, v model.Segment) error {
		appendUint32Tuple(rb, v[:])
		for _, i := range v {
			if !any || uint64(i) > maxSeen {
				maxSeen, any = uint64(i), true
			}
		}
		return nil
	}
	count, err := writeRecords(w, segmentSchema, props, src, appendRow)
	if err != nil {
		return model.Array[model.Segment]{}, err
	}
	arr := model.NewArray[model.Segment]("", count)
	if any {
		arr.Checks = []model.WriteCheck{{MaxIndexObserved: &maxSeen}}
	}
	return arr, nil
}

type SegmentSink struct {
	cur      *rowCursor
	maxIndex *uint64
}

func ReadSegment(r parquet.ReaderAtSeeker, maxIndex *uint64) (*SegmentSink, error) {
	src, err := openRecordSource(r)
	if err != nil {
		return nil, err
	}
	if !src.schema.Equal(segmentSchema) {
		_ = src.close()
		return nil, omferr.ParquetSchemaMismatchErr(src.schema.String(), segmentSchema.String())
	}
	return &SegmentSink{cur: newRowCursor(src), maxIndex: maxIndex}, nil
}

func (s *SegmentSink) Next() (model.Segment, bool, error) {
	rec, row, ok, err := s.cur.next()
	if err != nil || !ok {
		return model.Segment{}, false, err
	}
	vals := readUint32Tuple(rec, row, 2)
	seg := model.Segment{vals[0], vals[1]}
	for _, v := range seg {
		if err := checkIndex(v, s.maxIndex, "segment index out of range"); err != nil {
			return seg, true, err
		}
	}
	return seg, true, nil
}

func (s *SegmentSink) Close() error { return s.cur.close() }

// WriteTriangle streams a Triangle array.
func WriteTriangle(w io.Writer, props *parquet.WriterProperties, src Source[model.Triangle]) (model.Array[model.Triangle], error) {
	var maxSeen uint64
	var any bool
	appendRow := func(rb *array.RecordBuilder, v model.Triangle) error {
		appendUint32Tuple(rb, v[:])
		for _, i := range v {
			if !any || uint64(i) > maxSeen {
				maxSeen, any = uint64(i), true
			}
		}
		return nil
	}
	count, err := writeRecords(w, triangleSchema, props, src, appendRow)
	if err != nil {
		return model.Array[model.Triangle]{}, err
	}
	arr := model.NewArray[model.Triangle]("", count)
	if any {
		arr.Checks = []model.WriteCheck{{MaxIndexObserved: &maxSeen}}
	}
	return arr, nil
}

type TriangleSink struct {
	cur      *rowCursor
	maxIndex *uint64
}

func ReadTriangle(r parquet.ReaderAtSeeker, maxIndex *uint64) (*TriangleSink, error) {
	src, err := openRecordSource(r)
	if err != nil {
		return nil, err
	}
	if !src.schema.Equal(triangleSchema) {
		_ = src.close()
		return nil, omferr.ParquetSchemaMismatchErr(src.schema.String(), triangleSchema.String())
	}
	return &TriangleSink{cur: newRowCursor(src), maxIndex: maxIndex}, nil
}

func (s *TriangleSink) Next() (model.Triangle, bool, error) {
	rec, row, ok, err := s.cur.next()
	if err != nil || !ok {
		return model.Triangle{}, false, err
	}
	vals := readUint32Tuple(rec, row, 3)
	tri := model.Triangle{vals[0], vals[1], vals[2]}
	for _, v := range tri {
		if err := checkIndex(v, s.maxIndex, "triangle index out of range"); err != nil {
			return tri, true, err
		}
	}
	return tri, true, nil
}

func (s *TriangleSink) Close() error { return s.cur.close() }

// --- Gradient: RGBA uint8 (no nulls) ---

var gradientSchema = schemaOf(uint8Field("r"), uint8Field("g"), uint8Field("b"), uint8Field("a"))

// WriteGradient streams a Gradient array.
func WriteGradient(w io.Writer, props *parquet.WriterProperties, src Source[model.Color]) (model.Array[model.Color], error) {
	appendRow := func(rb *array.RecordBuilder, v model.Color) error {
		for i, c := range v {
			rb.Field(i).(*array.Uint8Builder).Append(c)
		}
		return nil
	}
	count, err := writeRecords(w, gradientSchema, props, src, appendRow)
	if err != nil {
		return model.Array[model.Color]{}, err
	}
	return model.NewArray[model.Color]("", count), nil
}

type GradientSink struct{ cur *rowCursor }

func ReadGradient(r parquet.ReaderAtSeeker) (*GradientSink, error) {
	src, err := openRecordSource(r)
	if err != nil {
		return nil, err
	}
	if !src.schema.Equal(gradientSchema) {
		_ = src.close()
		return nil, omferr.ParquetSchemaMismatchErr(src.schema.String(), gradientSchema.String())
	}
	return &GradientSink{cur: newRowCursor(src)}, nil
}

func (s *GradientSink) Next() (model.Color, bool, error) {
	rec, row, ok, err := s.cur.next()
	if err != nil || !ok {
		return model.Color{}, false, err
	}
	var out model.Color
	for i := range out {
		out[i] = rec.Column(i).(*array.Uint8).Value(int(row))
	}
	return out, true, nil
}

func (s *GradientSink) Close() error { return s.cur.close() }

// --- Index: one nullable integer column (category membership) ---

var indexSchema = schemaOf(field("value", arrow.PrimitiveTypes.Uint32, true))

// WriteIndex streams an Index array; nil means "no category". OMF1's -1
// sentinel is mapped to nil by the legacy package's readIndexNullableArray
// before it reaches this writer. The maximum non-nil index is recorded for
// the Validator's write-side check.
func WriteIndex(w io.Writer, props *parquet.WriterProperties, src Source[*uint32]) (model.Array[uint32], error) {
	var maxSeen uint64
	var any bool
	appendRow := func(rb *array.RecordBuilder, v *uint32) error {
		b := rb.Field(0).(*array.Uint32Builder)
		if v == nil {
			b.AppendNull()
		} else {
			b.Append(*v)
			if !any || uint64(*v) > maxSeen {
				maxSeen, any = uint64(*v), true
			}
		}
		return nil
	}
	count, err := writeRecords(w, indexSchema, props, src, appendRow)
	if err != nil {
		return model.Array[uint32]{}, err
	}
	arr := model.NewArray[uint32]("", count)
	if any {
		arr.Checks = []model.WriteCheck{{MaxIndexObserved: &maxSeen}}
	}
	return arr, nil
}

type IndexSink struct {
	cur       *rowCursor
	nameCount *uint64
}

func ReadIndex(r parquet.ReaderAtSeeker, nameCount *uint64) (*IndexSink, error) {
	src, err := openRecordSource(r)
	if err != nil {
		return nil, err
	}
	if !src.schema.Equal(indexSchema) {
		_ = src.close()
		return nil, omferr.ParquetSchemaMismatchErr(src.schema.String(), indexSchema.String())
	}
	return &IndexSink{cur: newRowCursor(src), nameCount: nameCount}, nil
}

func (s *IndexSink) Next() (*uint32, bool, error) {
	rec, row, ok, err := s.cur.next()
	if err != nil || !ok {
		return nil, false, err
	}
	col := rec.Column(0).(*array.Uint32)
	if col.IsNull(int(row)) {
		return nil, true, nil
	}
	v := col.Value(int(row))
	if err := checkIndex(v, s.nameCount, "category index out of range"); err != nil {
		return &v, true, err
	}
	return &v, true, nil
}

func (s *IndexSink) Close() error { return s.cur.close() }

// --- RegularSubblock: 9 uint32 columns (3 parent + 6 corners) ---

var regularSubblockSchema = schemaOf(
	uint32Field("parent_i"), uint32Field("parent_j"), uint32Field("parent_k"),
	uint32Field("min_u"), uint32Field("min_v"), uint32Field("min_w"),
	uint32Field("max_u"), uint32Field("max_v"), uint32Field("max_w"),
)

func WriteRegularSubblock(w io.Writer, props *parquet.WriterProperties, src Source[model.RegularSubblockRow], mode *model.SubblockMode, parentCount [3]uint32, subblockCount [3]uint32) (model.Array[model.RegularSubblockRow], error) {
	var rows []model.RegularSubblockRow
	seen := map[model.RegularSubblockRow]bool{}
	appendRow := func(rb *array.RecordBuilder, v model.RegularSubblockRow) error {
		if err := checkRegularSubblock(v, mode, parentCount, subblockCount); err != nil {
			return err
		}
		for i, x := range v.ParentIJK {
			rb.Field(i).(*array.Uint32Builder).Append(x)
		}
		for i, x := range v.CornerMin {
			rb.Field(3 + i).(*array.Uint32Builder).Append(x)
		}
		for i, x := range v.CornerMax {
			rb.Field(6 + i).(*array.Uint32Builder).Append(x)
		}
		if !seen[v] {
			seen[v] = true
			rows = append(rows, v)
		}
		return nil
	}
	count, err := writeRecords(w, regularSubblockSchema, props, src, appendRow)
	if err != nil {
		return model.Array[model.RegularSubblockRow]{}, err
	}
	arr := model.NewArray[model.RegularSubblockRow]("", count)
	arr.Checks = []model.WriteCheck{{SubblockCorners: rows}}
	return arr, nil
}

type RegularSubblockSink struct {
	cur           *rowCursor
	mode          *model.SubblockMode
	parentCount   [3]uint32
	subblockCount [3]uint32
}

func ReadRegularSubblock(r parquet.ReaderAtSeeker, mode *model.SubblockMode, parentCount, subblockCount [3]uint32) (*RegularSubblockSink, error) {
	src, err := openRecordSource(r)
	if err != nil {
		return nil, err
	}
	if !src.schema.Equal(regularSubblockSchema) {
		_ = src.close()
		return nil, omferr.ParquetSchemaMismatchErr(src.schema.String(), regularSubblockSchema.String())
	}
	return &RegularSubblockSink{cur: newRowCursor(src), mode: mode, parentCount: parentCount, subblockCount: subblockCount}, nil
}

func (s *RegularSubblockSink) Next() (model.RegularSubblockRow, bool, error) {
	rec, row, ok, err := s.cur.next()
	if err != nil || !ok {
		return model.RegularSubblockRow{}, false, err
	}
	var v model.RegularSubblockRow
	for i := range v.ParentIJK {
		v.ParentIJK[i] = rec.Column(i).(*array.Uint32).Value(int(row))
	}
	for i := range v.CornerMin {
		v.CornerMin[i] = rec.Column(3 + i).(*array.Uint32).Value(int(row))
	}
	for i := range v.CornerMax {
		v.CornerMax[i] = rec.Column(6 + i).(*array.Uint32).Value(int(row))
	}
	if err := checkRegularSubblock(v, s.mode, s.parentCount, s.subblockCount); err != nil {
		return v, true, err
	}
	return v, true, nil
}

func (s *RegularSubblockSink) Close() error { return s.cur.close() }

// --- FreeformSubblock: 3 uint32 parent + 6 float corners in [0,1] ---

var freeformSubblockSchema = schemaOf(
	uint32Field("parent_i"), uint32Field("parent_j"), uint32Field("parent_k"),
	field("min_u", arrow.PrimitiveTypes.Float64, false),
	field("min_v", arrow.PrimitiveTypes.Float64, false),
	field("min_w", arrow.PrimitiveTypes.Float64, false),
	field("max_u", arrow.PrimitiveTypes.Float64, false),
	field("max_v", arrow.PrimitiveTypes.Float64, false),
	field("max_w", arrow.PrimitiveTypes.Float64, false),
)

func WriteFreeformSubblock(w io.Writer, props *parquet.WriterProperties, src Source[model.FreeformSubblockRow], parentCount [3]uint32) (model.Array[model.FreeformSubblockRow], error) {
	var rows []model.FreeformSubblockRow
	seen := map[model.FreeformSubblockRow]bool{}
	appendRow := func(rb *array.RecordBuilder, v model.FreeformSubblockRow) error {
		if err := checkFreeformSubblock(v, parentCount); err != nil {
			return err
		}
		for i, x := range v.ParentIJK {
			rb.Field(i).(*array.Uint32Builder).Append(x)
		}
		for i, x := range v.CornerMin {
			rb.Field(3 + i).(*array.Float64Builder).Append(x)
		}
		for i, x := range v.CornerMax {
			rb.Field(6 + i).(*array.Float64Builder).Append(x)
		}
		if !seen[v] {
			seen[v] = true
			rows = append(rows, v)
		}
		return nil
	}
	count, err := writeRecords(w, freeformSubblockSchema, props, src, appendRow)
	if err != nil {
		return model.Array[model.FreeformSubblockRow]{}, err
	}
	arr := model.NewArray[model.FreeformSubblockRow]("", count)
	arr.Checks = []model.WriteCheck{{FreeformCorners: rows}}
	return arr, nil
}

type FreeformSubblockSink struct {
	cur         *rowCursor
	parentCount [3]uint32
}

func ReadFreeformSubblock(r parquet.ReaderAtSeeker, parentCount [3]uint32) (*FreeformSubblockSink, error) {
	src, err := openRecordSource(r)
	if err != nil {
		return nil, err
	}
	if !src.schema.Equal(freeformSubblockSchema) {
		_ = src.close()
		return nil, omferr.ParquetSchemaMismatchErr(src.schema.String(), freeformSubblockSchema.String())
	}
	return &FreeformSubblockSink{cur: newRowCursor(src), parentCount: parentCount}, nil
}

func (s *FreeformSubblockSink) Next() (model.FreeformSubblockRow, bool, error) {
	rec, row, ok, err := s.cur.next()
	if err != nil || !ok {
		return model.FreeformSubblockRow{}, false, err
	}
	var v model.FreeformSubblockRow
	for i := range v.ParentIJK {
		v.ParentIJK[i] = rec.Column(i).(*array.Uint32).Value(int(row))
	}
	for i := range v.CornerMin {
		v.CornerMin[i] = rec.Column(3 + i).(*array.Float64).Value(int(row))
	}
	for i := range v.CornerMax {
		v.CornerMax[i] = rec.Column(6 + i).(*array.Float64).Value(int(row))
	}
	if err := checkFreeformSubblock(v, s.parentCount); err != nil {
		return v, true, err
	}
	return v, true, nil
}

func (s *FreeformSubblockSink) Close() error { return s.cur.close() }
