package omf

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gmggroup/omf-go/internal/columnstore"
	"github.com/gmggroup/omf-go/internal/model"
)

func buildPointSetProject(t *testing.T, w *Writer) *model.Project {
	t.Helper()
	vertices := []model.Vertex{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}}
	varr, err := w.Vertex(columnstore.SliceSource(vertices), columnstore.Width64)
	require.NoError(t, err)

	scalars := []*columnstore.NumberValue{{Float: 1}, {Float: 2}, {Float: 3}}
	sarr, err := w.Number(columnstore.SliceSource(scalars), model.F64)
	require.NoError(t, err)

	return &model.Project{
		Name:   "round trip project",
		Origin: [3]float64{0, 0, 0},
		Elements: []*model.Element{{
			Name:     "points",
			Geometry: model.PointSet{Origin: [3]float64{0, 0, 0}, Vertices: varr},
			Attributes: []*model.Attribute{{
				Name:     "values",
				Location: model.Vertices,
				Data: model.NumberData{
					Type:   model.F64,
					Values: sarr,
				},
			}},
		}},
	}
}

func TestWriterReaderRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&WriterConfig{Sink: &buf})
	project := buildPointSetProject(t, w)

	problems, err := w.Finish(project)
	require.NoError(t, err)
	require.False(t, problems.HasErrors())

	reader := bytes.NewReader(buf.Bytes())
	r, err := NewReader(&ReaderConfig{Source: reader, Size: int64(buf.Len())})
	require.NoError(t, err)

	got, _, err := r.Project()
	require.NoError(t, err)
	require.Equal(t, project.Name, got.Name)
	require.Len(t, got.Elements, 1)

	ps, ok := got.Elements[0].Geometry.(model.PointSet)
	require.True(t, ok)

	sink, err := r.Vertex(ps.Vertices)
	require.NoError(t, err)
	defer sink.Close()
	var vertices []model.Vertex
	for {
		v, ok, err := sink.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		vertices = append(vertices, v)
	}
	require.Equal(t, []model.Vertex{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}}, vertices)

	require.Len(t, got.Elements[0].Attributes, 1)
	data, ok := got.Elements[0].Attributes[0].Data.(model.NumberData)
	require.True(t, ok)
	numSink, err := r.Number(data.Values)
	require.NoError(t, err)
	defer numSink.Close()
	var values []float64
	for {
		v, ok, err := numSink.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		values = append(values, v.Float)
	}
	require.Equal(t, []float64{1, 2, 3}, values)
}

func TestProjectIsNotReReadable(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&WriterConfig{Sink: &buf})
	project := buildPointSetProject(t, w)
	_, err := w.Finish(project)
	require.NoError(t, err)

	reader := bytes.NewReader(buf.Bytes())
	r, err := NewReader(&ReaderConfig{Source: reader, Size: int64(buf.Len())})
	require.NoError(t, err)

	_, _, err = r.Project()
	require.NoError(t, err)

	_, _, err = r.Project()
	require.Error(t, err)
}

func TestFinishIsNotCallableTwice(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&WriterConfig{Sink: &buf})
	project := buildPointSetProject(t, w)
	_, err := w.Finish(project)
	require.NoError(t, err)

	_, err = w.Finish(project)
	require.Error(t, err)
}

func TestDetectLegacy(t *testing.T) {
	omf1 := append([]byte{0x84, 0x83, 0x82, 0x81}, make([]byte, 56)...)
	require.True(t, DetectLegacy(omf1))

	var buf bytes.Buffer
	w := NewWriter(&WriterConfig{Sink: &buf})
	project := buildPointSetProject(t, w)
	_, err := w.Finish(project)
	require.NoError(t, err)
	require.False(t, DetectLegacy(buf.Bytes()))
}
