package columnstore

import (
	"bytes"
	"testing"
	"time"

	"github.com/apache/arrow/go/v16/parquet"
	"github.com/stretchr/testify/require"

	"github.com/gmggroup/omf-go/internal/model"
)

func testProps() *parquet.WriterProperties { return WriterProps(6) }

func TestScalarRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	values := []float64{1, 2.5, -3, 0}
	arr, err := WriteScalar(&buf, testProps(), SliceSource(values), Width64)
	require.NoError(t, err)
	require.Equal(t, uint64(len(values)), arr.Count)

	sink, err := ReadScalar(bytes.NewReader(buf.Bytes()), false)
	require.NoError(t, err)
	defer sink.Close()

	var got []float64
	for {
		v, ok, err := sink.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		got = append(got, v)
	}
	require.Equal(t, values, got)
}

func TestScalarRoundTripWidth32(t *testing.T) {
	var buf bytes.Buffer
	values := []float64{1.5, -2.5}
	_, err := WriteScalar(&buf, testProps(), SliceSource(values), Width32)
	require.NoError(t, err)

	sink, err := ReadScalar(bytes.NewReader(buf.Bytes()), false)
	require.NoError(t, err)
	defer sink.Close()

	for _, want := range values {
		got, ok, err := sink.Next()
		require.NoError(t, err)
		require.True(t, ok)
		require.InDelta(t, want, got, 1e-6)
	}
}

func TestVertexRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	vertices := []model.Vertex{{0, 0, 0}, {1, 2, 3}, {-1, -2, -3}}
	_, err := WriteVertex(&buf, testProps(), SliceSource(vertices), Width64)
	require.NoError(t, err)

	sink, err := ReadVertex(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer sink.Close()

	var got []model.Vertex
	for {
		v, ok, err := sink.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		got = append(got, v)
	}
	require.Equal(t, vertices, got)
}

func TestSegmentRoundTripAndMaxIndexCheck(t *testing.T) {
	var buf bytes.Buffer
	segments := []model.Segment{{0, 1}, {1, 2}, {2, 0}}
	arr, err := WriteSegment(&buf, testProps(), SliceSource(segments))
	require.NoError(t, err)
	require.NotEmpty(t, arr.Checks)
	require.Equal(t, uint64(2), *arr.Checks[0].MaxIndexObserved)

	sink, err := ReadSegment(bytes.NewReader(buf.Bytes()), nil)
	require.NoError(t, err)
	defer sink.Close()
	var got []model.Segment
	for {
		v, ok, err := sink.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		got = append(got, v)
	}
	require.Equal(t, segments, got)
}

func TestTriangleRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	triangles := []model.Triangle{{0, 1, 2}, {2, 1, 0}}
	_, err := WriteTriangle(&buf, testProps(), SliceSource(triangles))
	require.NoError(t, err)

	sink, err := ReadTriangle(bytes.NewReader(buf.Bytes()), nil)
	require.NoError(t, err)
	defer sink.Close()
	var got []model.Triangle
	for {
		v, ok, err := sink.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		got = append(got, v)
	}
	require.Equal(t, triangles, got)
}

func TestNameRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	names := []string{"a", "b", "c"}
	_, err := WriteName(&buf, testProps(), SliceSource(names))
	require.NoError(t, err)

	sink, err := ReadName(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer sink.Close()
	var got []string
	for {
		v, ok, err := sink.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		got = append(got, v)
	}
	require.Equal(t, names, got)
}

func TestTextRoundTripNullable(t *testing.T) {
	var buf bytes.Buffer
	a, b := "x", "y"
	values := []*string{&a, nil, &b}
	_, err := WriteText(&buf, testProps(), SliceSource(values))
	require.NoError(t, err)

	sink, err := ReadText(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer sink.Close()
	var got []*string
	for {
		v, ok, err := sink.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		got = append(got, v)
	}
	require.Len(t, got, 3)
	require.Equal(t, "x", *got[0])
	require.Nil(t, got[1])
	require.Equal(t, "y", *got[2])
}

func TestBooleanRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	values := []model.Trivalent{model.BoolTrue, model.BoolFalse, model.BoolNull}
	_, err := WriteBoolean(&buf, testProps(), SliceSource(values))
	require.NoError(t, err)

	sink, err := ReadBoolean(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer sink.Close()
	var got []model.Trivalent
	for {
		v, ok, err := sink.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		got = append(got, v)
	}
	require.Equal(t, values, got)
}

func TestColorRoundTripNullable(t *testing.T) {
	var buf bytes.Buffer
	red := model.Color{255, 0, 0, 255}
	values := []*model.Color{&red, nil}
	_, err := WriteColor(&buf, testProps(), SliceSource(values))
	require.NoError(t, err)

	sink, err := ReadColor(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer sink.Close()
	var got []*model.Color
	for {
		v, ok, err := sink.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		got = append(got, v)
	}
	require.Len(t, got, 2)
	require.Equal(t, red, *got[0])
	require.Nil(t, got[1])
}

func TestGradientRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	colors := []model.Color{{0, 0, 0, 255}, {255, 255, 255, 255}}
	_, err := WriteGradient(&buf, testProps(), SliceSource(colors))
	require.NoError(t, err)

	sink, err := ReadGradient(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer sink.Close()
	var got []model.Color
	for {
		v, ok, err := sink.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		got = append(got, v)
	}
	require.Equal(t, colors, got)
}

func TestIndexRoundTripNullable(t *testing.T) {
	var buf bytes.Buffer
	a, b := uint32(0), uint32(2)
	values := []*uint32{&a, nil, &b}
	_, err := WriteIndex(&buf, testProps(), SliceSource(values))
	require.NoError(t, err)

	sink, err := ReadIndex(bytes.NewReader(buf.Bytes()), nil)
	require.NoError(t, err)
	defer sink.Close()
	var got []*uint32
	for {
		v, ok, err := sink.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		got = append(got, v)
	}
	require.Len(t, got, 3)
	require.Equal(t, uint32(0), *got[0])
	require.Nil(t, got[1])
	require.Equal(t, uint32(2), *got[2])
}

func TestNumberRoundTripF64(t *testing.T) {
	var buf bytes.Buffer
	a, b := &NumberValue{Float: 1.5}, &NumberValue{Float: -2.5}
	values := []*NumberValue{a, nil, b}
	_, err := WriteNumber(&buf, testProps(), SliceSource(values), model.F64)
	require.NoError(t, err)

	sink, err := ReadNumber(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer sink.Close()
	var got []*NumberValue
	for {
		v, ok, err := sink.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		got = append(got, v)
	}
	require.Len(t, got, 3)
	require.Equal(t, 1.5, got[0].Float)
	require.Nil(t, got[1])
	require.Equal(t, -2.5, got[2].Float)
}

func TestNumberRoundTripDateTime(t *testing.T) {
	var buf bytes.Buffer
	stamp := time.Date(2024, 3, 15, 12, 30, 0, 0, time.UTC)
	values := []*NumberValue{{Time: stamp}}
	_, err := WriteNumber(&buf, testProps(), SliceSource(values), model.DateTime)
	require.NoError(t, err)

	sink, err := ReadNumber(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer sink.Close()
	v, ok, err := sink.Next()
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, stamp.Equal(v.Time))
}

func TestBoundaryWriteCheckFlagsNonMonotonic(t *testing.T) {
	var buf bytes.Buffer
	values := []model.Boundary[*NumberValue]{
		{Value: &NumberValue{Float: 1}, Inclusive: true},
		{Value: &NumberValue{Float: 0.5}, Inclusive: true},
	}
	arr, err := WriteBoundary(&buf, testProps(), SliceSource(values), model.F64)
	require.NoError(t, err)
	require.NotEmpty(t, arr.Checks)
	require.False(t, *arr.Checks[0].MonotonicBoundary)
}

func TestVectorRoundTripLiftsDims2To3(t *testing.T) {
	var buf bytes.Buffer
	v1 := []float64{1, 2}
	values := []*[]float64{&v1}
	_, err := WriteVector(&buf, testProps(), SliceSource(values), 2, Width64)
	require.NoError(t, err)

	sink, err := ReadVector(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer sink.Close()
	v, ok, err := sink.Next()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, [3]float64{1, 2, 0}, *v)
}
