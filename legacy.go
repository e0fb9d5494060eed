package omf

import (
	"math"
	"time"

	"github.com/gmggroup/omf-go/internal/columnstore"
	"github.com/gmggroup/omf-go/internal/legacy"
	"github.com/gmggroup/omf-go/internal/model"
	"github.com/gmggroup/omf-go/internal/omferr"
	"github.com/gmggroup/omf-go/internal/storage"
)

// converterName identifies this library in the "conversion" metadata block
// ConvertLegacy stamps onto the converted project, whose converter_version
// field carries FormatMajor (spec.md §4.7 / SPEC_FULL §C7 "conversion
// details").
const converterName = "omf-go"

// DetectLegacy reports whether data begins with the OMF1 magic number, so a
// caller holding the first few bytes of an unknown file can choose between
// ConvertLegacy and NewReader before committing to either.
func DetectLegacy(data []byte) bool {
	return legacy.Detect(data)
}

// ConvertLegacy reads an entire OMF1 file from source, converts it to the
// current data model, and streams every array through w exactly as a
// caller building a project from scratch would (spec.md §4.7 "OMF1 files
// convert by streaming through the same Writer used for native output").
// It does not call w.Finish; the caller does that once, after making any
// further changes it wants to the converted model.Project.
func ConvertLegacy(source storage.ReaderAtSeeker, w *Writer) (model.Project, error) {
	lp, err := legacy.Read(source)
	if err != nil {
		return model.Project{}, err
	}

	project := model.Project{
		Name:        lp.Name,
		Description: lp.Description,
		Units:       lp.Units,
		Origin:      lp.Origin,
		Author:      lp.Author,
		Application: lp.Application,
		Metadata:    legacyMetadata(lp),
	}
	if lp.CreatedAt != "" {
		if t, err := time.Parse(time.RFC3339, lp.CreatedAt); err == nil {
			project.CreatedAt = t
		}
	}

	for _, le := range lp.Elements {
		el, err := convertLegacyElement(w, le)
		if err != nil {
			return model.Project{}, err
		}
		project.Elements = append(project.Elements, el)
	}
	return project, nil
}

// legacyMetadata attaches a "conversion" block recording where this project
// came from, alongside whatever metadata the OMF1 file itself carried
// (SPEC_FULL §C7).
func legacyMetadata(lp legacy.Project) map[string]any {
	meta := make(map[string]any, len(lp.Metadata)+1)
	for k, v := range lp.Metadata {
		meta[k] = v
	}
	meta["conversion"] = map[string]any{
		"source_version":    "OMF-v0.9.0",
		"converter":         converterName,
		"converter_version": FormatMajor,
		"converted_at":      time.Now().UTC().Format(time.RFC3339),
	}
	return meta
}

func convertLegacyElement(w *Writer, le legacy.Element) (*model.Element, error) {
	geom, err := convertLegacyGeometry(w, le.Geometry)
	if err != nil {
		return nil, err
	}
	el := &model.Element{
		Name:        le.Name,
		Description: le.Description,
		Metadata:    le.Metadata,
		Geometry:    geom,
	}
	if le.Color != nil {
		c := model.Color{uint8(clampChannel(le.Color[0])), uint8(clampChannel(le.Color[1])), uint8(clampChannel(le.Color[2])), 255}
		el.Color = &c
	}
	for _, la := range le.Attributes {
		attr, err := convertLegacyAttribute(w, la)
		if err != nil {
			return nil, err
		}
		el.Attributes = append(el.Attributes, attr)
	}
	return el, nil
}

func clampChannel(v int) int {
	switch {
	case v < 0:
		return 0
	case v > 255:
		return 255
	default:
		return v
	}
}

func convertLegacyGeometry(w *Writer, g legacy.Geometry) (model.Geometry, error) {
	switch g.Kind {
	case legacy.GeomPointSet:
		vertices, err := w.Vertex(sliceSource(g.Vertices), columnstore.Width64)
		if err != nil {
			return nil, err
		}
		return model.PointSet{Origin: g.Origin, Vertices: vertices}, nil

	case legacy.GeomLineSet:
		vertices, err := w.Vertex(sliceSource(g.Vertices), columnstore.Width64)
		if err != nil {
			return nil, err
		}
		segments, err := w.Segment(sliceSource(g.Segments))
		if err != nil {
			return nil, err
		}
		return model.LineSet{Origin: g.Origin, Vertices: vertices, Segments: segments}, nil

	case legacy.GeomSurface:
		vertices, err := w.Vertex(sliceSource(g.Vertices), columnstore.Width64)
		if err != nil {
			return nil, err
		}
		triangles, err := w.Triangle(sliceSource(g.Triangles))
		if err != nil {
			return nil, err
		}
		return model.Surface{Origin: g.Origin, Vertices: vertices, Triangles: triangles}, nil

	case legacy.GeomGridSurface:
		orient := model.Orient2{Origin: g.Origin, U: normalize(g.AxisU), V: normalize(g.AxisV)}
		grid := model.RegularGrid2{Size: g.GridSize2, Count: g.GridCount2}
		gs := model.GridSurface{Orient: orient, Grid: grid}
		if g.Heights != nil {
			heights, err := w.Scalar(columnstore.SliceSource(floatsOrNaN(g.Heights)), columnstore.Width64)
			if err != nil {
				return nil, err
			}
			gs.Heights = &heights
		}
		return gs, nil

	case legacy.GeomBlockModel:
		orient := model.Orient3{Origin: g.Origin, U: normalize(g.AxisU), V: normalize(g.AxisV), W: normalize(g.AxisW)}
		grid := model.RegularGrid3{Size: g.GridSize3, Count: g.GridCount3}
		return model.BlockModel{Orient: orient, Grid: grid}, nil

	default:
		return nil, omferr.InvalidDataErr("unsupported legacy geometry kind")
	}
}

func normalize(v [3]float64) [3]float64 {
	length := math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
	if length == 0 {
		return v
	}
	return [3]float64{v[0] / length, v[1] / length, v[2] / length}
}

func convertLegacyAttribute(w *Writer, la legacy.Attribute) (*model.Attribute, error) {
	location := legacyLocation(la.Location)
	attr := &model.Attribute{Name: la.Name, Location: location}

	switch la.Kind {
	case legacy.AttrScalar:
		values, err := w.Number(nullableNumberSource(la.Scalars), model.F64)
		if err != nil {
			return nil, err
		}
		data := model.NumberData{Type: model.F64, Values: values}
		if la.Colormap != nil {
			gradient, err := w.Gradient(sliceSource(la.Colormap.Gradient))
			if err != nil {
				return nil, err
			}
			data.Colormap = model.ContinuousColormap{
				Range:    model.NumberRange{Min: la.Colormap.Min, Max: la.Colormap.Max},
				Gradient: gradient,
			}
		}
		attr.Data = data

	case legacy.AttrVector:
		rows := make([]*[]float64, len(la.Vectors))
		for i := range la.Vectors {
			v := la.Vectors[i]
			rows[i] = &v
		}
		values, err := w.Vector(columnstore.SliceSource(rows), la.Dims, columnstore.Width64)
		if err != nil {
			return nil, err
		}
		attr.Data = model.VectorData{Dimensions: la.Dims, Values: values}

	case legacy.AttrColor:
		rows := make([]*model.Color, len(la.Colors))
		for i := range la.Colors {
			c := la.Colors[i]
			rows[i] = &c
		}
		values, err := w.Color(columnstore.SliceSource(rows))
		if err != nil {
			return nil, err
		}
		attr.Data = model.ColorData{Values: values}

	case legacy.AttrText:
		values, err := w.Text(columnstore.SliceSource(la.Strings))
		if err != nil {
			return nil, err
		}
		attr.Data = model.TextData{Values: values}

	case legacy.AttrDateTime:
		src := columnstore.SliceSource(timesToNumberValues(la.Times))
		values, err := w.Number(src, model.DateTime)
		if err != nil {
			return nil, err
		}
		attr.Data = model.NumberData{Type: model.DateTime, Values: values}

	case legacy.AttrMapped:
		return convertLegacyMapped(w, attr, la.Mapped)

	default:
		return nil, omferr.InvalidDataErr("unsupported legacy attribute kind")
	}
	return attr, nil
}

func legacyLocation(s string) model.Location {
	switch s {
	case "segments", "faces", "cells":
		return model.Primitives
	case "vertices":
		return model.Vertices
	default:
		return model.Vertices
	}
}

func convertLegacyMapped(w *Writer, attr *model.Attribute, m *legacy.MappedAttribute) (*model.Attribute, error) {
	names, err := w.Name(columnstore.SliceSource(m.Names))
	if err != nil {
		return nil, err
	}
	indices, err := w.Index(columnstore.SliceSource(m.Indices))
	if err != nil {
		return nil, err
	}
	data := model.CategoryData{Indices: indices, Names: names}
	if m.Gradient != nil {
		gradient, err := w.Gradient(sliceSource(m.Gradient))
		if err != nil {
			return nil, err
		}
		data.Gradient = &gradient
	}
	for _, sub := range m.Sub {
		subAttr, err := convertLegacyAttribute(w, sub)
		if err != nil {
			return nil, err
		}
		subAttr.Location = model.Categories
		data.SubAttributes = append(data.SubAttributes, subAttr)
	}
	attr.Data = data
	return attr, nil
}

func sliceSource[T any](items []T) columnstore.Source[T] {
	return columnstore.SliceSource(items)
}

// floatsOrNaN widens a nullable scalar slice to the non-nullable float64
// stream Scalar arrays use on the wire, representing a missing cell as NaN
// just as the OMF1 source array itself does (array.go's readFloat64Array
// decodes the same NaN sentinel the other way).
func floatsOrNaN(items []*float64) []float64 {
	out := make([]float64, len(items))
	for i, v := range items {
		if v == nil {
			out[i] = math.NaN()
			continue
		}
		out[i] = *v
	}
	return out
}

func nullableNumberSource(items []*float64) columnstore.Source[*columnstore.NumberValue] {
	out := make([]*columnstore.NumberValue, len(items))
	for i, v := range items {
		if v == nil {
			continue
		}
		out[i] = &columnstore.NumberValue{Float: *v}
	}
	return columnstore.SliceSource(out)
}

func timesToNumberValues(items []*time.Time) []*columnstore.NumberValue {
	out := make([]*columnstore.NumberValue, len(items))
	for i, t := range items {
		if t == nil {
			continue
		}
		out[i] = &columnstore.NumberValue{Time: *t}
	}
	return out
}
