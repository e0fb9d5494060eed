package legacy

import (
	"time"

	"github.com/gmggroup/omf-go/internal/omferr"
	"github.com/gmggroup/omf-go/internal/storage"
)

// Project is the decoded, in-memory result of reading an OMF1 file: every
// bulk array fully materialized as a Go slice, ready for a caller to stream
// through a columnstore Writer (original_source converts the same way —
// OMF1 arrays are read entirely into memory before conversion, so there is
// no streaming reader to preserve).
type Project struct {
	Name        string
	Description string
	Author      string
	Application string
	Units       string
	Origin      [3]float64
	CreatedAt   string
	Metadata    map[string]any
	Elements    []Element
}

type Element struct {
	Name        string
	Description string
	Color       *[3]int
	Metadata    map[string]any
	Geometry    Geometry
	Attributes  []Attribute
}

// GeometryKind mirrors the OMF1 element classes this converter understands.
type GeometryKind int

const (
	GeomPointSet GeometryKind = iota
	GeomLineSet
	GeomSurface
	GeomGridSurface
	GeomBlockModel
)

type Geometry struct {
	Kind GeometryKind
	Origin    [3]float64
	Vertices  [][3]float64
	Segments  [][2]uint32
	Triangles [][3]uint32

	// GridSurface / BlockModel orientation and regular grid spacing.
	AxisU, AxisV, AxisW [3]float64
	GridSize2           [2]float64
	GridCount2          [2]uint32
	GridSize3           [3]float64
	GridCount3          [3]uint32
	Heights             []*float64
}

// AttributeKind mirrors the OMF1 data classes this converter understands.
type AttributeKind int

const (
	AttrScalar AttributeKind = iota
	AttrVector
	AttrColor
	AttrText
	AttrDateTime
	AttrMapped
)

type Attribute struct {
	Name     string
	Location string
	Kind     AttributeKind

	Scalars  []*float64
	Vectors  [][]float64
	Dims     int
	Colors   [][4]uint8
	Strings  []*string
	Times    []*time.Time
	Colormap *Colormap
	Mapped   *MappedAttribute
}

type Colormap struct {
	Min, Max float64
	Gradient [][4]uint8
}

// MappedAttribute is OMF1's category/legend data after legend ranking: the
// names legend becomes the Category's Names, the gradient legend (if any)
// becomes its Gradient, and every other legend survives as a sub-attribute
// keyed by category rather than by element (spec.md §4.3 "CategoryData").
type MappedAttribute struct {
	Indices  []*uint32
	Names    []string
	Gradient [][4]uint8
	Sub      []Attribute
}

// Read parses an entire OMF1 file from source into a Project, performing
// every array decompression and the mapped-data legend ranking eagerly
// (original_source's Converter::convert / convert_open).
func Read(source storage.ReaderAtSeeker) (Project, error) {
	if _, err := source.Seek(0, 0); err != nil {
		return Project{}, omferr.IoErr(err)
	}
	header, err := ReadHeader(source)
	if err != nil {
		return Project{}, err
	}
	if _, err := source.Seek(header.JSONOffset, 0); err != nil {
		return Project{}, omferr.IoErr(err)
	}
	records, err := decodeRecords(source)
	if err != nil {
		return Project{}, err
	}

	rec, err := records.get(header.ProjectUUID.String())
	if err != nil {
		return Project{}, err
	}
	var lp legacyProject
	if err := rec.decode(&lp); err != nil {
		return Project{}, omferr.Wrap(omferr.DeserializationFailed, err)
	}

	project := Project{
		Name:        lp.Name,
		Description: lp.Description,
		Author:      lp.Author,
		Application: lp.Application,
		Units:       lp.Units,
		Origin:      lp.Origin,
		CreatedAt:   lp.Date,
		Metadata:    lp.Metadata,
	}
	for _, ref := range lp.Elements {
		el, err := convertElement(source, records, ref.UID)
		if err != nil {
			return Project{}, err
		}
		project.Elements = append(project.Elements, el)
	}
	return project, nil
}

type arrayContainerRecord struct {
	Array legacyArrayRef `json:"array"`
}

func resolveArray(records recordSet, ref legacyUID) (legacyArrayRef, error) {
	if ref.UID == "" {
		return legacyArrayRef{}, nil
	}
	rec, err := records.get(ref.UID)
	if err != nil {
		return legacyArrayRef{}, err
	}
	var container arrayContainerRecord
	if err := rec.decode(&container); err != nil {
		return legacyArrayRef{}, omferr.Wrap(omferr.DeserializationFailed, err)
	}
	return container.Array, nil
}

func convertElement(source storage.ReaderAtSeeker, records recordSet, uid string) (Element, error) {
	rec, err := records.get(uid)
	if err != nil {
		return Element{}, err
	}
	var le legacyElement
	if err := rec.decode(&le); err != nil {
		return Element{}, omferr.Wrap(omferr.DeserializationFailed, err)
	}

	geom, err := convertGeometry(source, records, rec.Class, le)
	if err != nil {
		return Element{}, err
	}

	el := Element{
		Name:        le.Name,
		Description: le.Description,
		Color:       le.Color,
		Metadata:    le.Metadata,
		Geometry:    geom,
	}
	for _, dataRef := range le.Data {
		attr, err := convertAttribute(source, records, dataRef.UID)
		if err != nil {
			return Element{}, err
		}
		el.Attributes = append(el.Attributes, attr)
	}
	return el, nil
}

func convertGeometry(source storage.ReaderAtSeeker, records recordSet, class string, le legacyElement) (Geometry, error) {
	switch class {
	case classPointSetElement:
		vertices, err := readVerticesRef(source, records, le.Vertices)
		if err != nil {
			return Geometry{}, err
		}
		return Geometry{Kind: GeomPointSet, Origin: le.Origin, Vertices: vertices}, nil

	case classLineSetElement:
		vertices, err := readVerticesRef(source, records, le.Vertices)
		if err != nil {
			return Geometry{}, err
		}
		segRef, err := resolveArray(records, le.Segments)
		if err != nil {
			return Geometry{}, err
		}
		raw, err := decompressArray(source, segRef)
		if err != nil {
			return Geometry{}, err
		}
		rows, err := readIndexArray(raw, 2)
		if err != nil {
			return Geometry{}, err
		}
		segments := make([][2]uint32, len(rows))
		for i, r := range rows {
			segments[i] = [2]uint32{r[0], r[1]}
		}
		return Geometry{Kind: GeomLineSet, Origin: le.Origin, Vertices: vertices, Segments: segments}, nil

	case classSurfaceElement:
		vertices, err := readVerticesRef(source, records, le.Vertices)
		if err != nil {
			return Geometry{}, err
		}
		triRef, err := resolveArray(records, le.Triangles)
		if err != nil {
			return Geometry{}, err
		}
		raw, err := decompressArray(source, triRef)
		if err != nil {
			return Geometry{}, err
		}
		rows, err := readIndexArray(raw, 3)
		if err != nil {
			return Geometry{}, err
		}
		triangles := make([][3]uint32, len(rows))
		for i, r := range rows {
			triangles[i] = [3]uint32{r[0], r[1], r[2]}
		}
		return Geometry{Kind: GeomSurface, Origin: le.Origin, Vertices: vertices, Triangles: triangles}, nil

	case classSurfaceGridElem:
		heights, err := readOptionalScalarRef(source, records, le.Heights)
		if err != nil {
			return Geometry{}, err
		}
		tu, err := readTensorRef(source, records, le.TensorU)
		if err != nil {
			return Geometry{}, err
		}
		tv, err := readTensorRef(source, records, le.TensorV)
		if err != nil {
			return Geometry{}, err
		}
		return Geometry{
			Kind:       GeomGridSurface,
			Origin:     le.Origin,
			AxisU:      le.AxisU,
			AxisV:      le.AxisV,
			GridSize2:  [2]float64{avgSpacing(tu), avgSpacing(tv)},
			GridCount2: [2]uint32{uint32(len(tu)), uint32(len(tv))},
			Heights:    heights,
		}, nil

	case classVolumeElement:
		tu, err := readTensorRef(source, records, le.TensorU)
		if err != nil {
			return Geometry{}, err
		}
		tv, err := readTensorRef(source, records, le.TensorV)
		if err != nil {
			return Geometry{}, err
		}
		tw, err := readTensorRef(source, records, le.TensorW)
		if err != nil {
			return Geometry{}, err
		}
		return Geometry{
			Kind:       GeomBlockModel,
			Origin:     le.Origin,
			AxisU:      le.AxisU,
			AxisV:      le.AxisV,
			AxisW:      le.AxisW,
			GridSize3:  [3]float64{avgSpacing(tu), avgSpacing(tv), avgSpacing(tw)},
			GridCount3: [3]uint32{uint32(len(tu)), uint32(len(tv)), uint32(len(tw))},
		}, nil

	default:
		return Geometry{}, omferr.InvalidDataErr("unsupported legacy element class " + class)
	}
}

func readVerticesRef(source storage.ReaderAtSeeker, records recordSet, ref legacyUID) ([][3]float64, error) {
	arrRef, err := resolveArray(records, ref)
	if err != nil {
		return nil, err
	}
	raw, err := decompressArray(source, arrRef)
	if err != nil {
		return nil, err
	}
	rows, err := readVectorArray(raw, 3)
	if err != nil {
		return nil, err
	}
	out := make([][3]float64, len(rows))
	for i, r := range rows {
		if r == nil {
			continue
		}
		out[i] = [3]float64{r[0], r[1], r[2]}
	}
	return out, nil
}

func readTensorRef(source storage.ReaderAtSeeker, records recordSet, ref legacyUID) ([]float64, error) {
	if ref.UID == "" {
		return nil, nil
	}
	arrRef, err := resolveArray(records, ref)
	if err != nil {
		return nil, err
	}
	raw, err := decompressArray(source, arrRef)
	if err != nil {
		return nil, err
	}
	vals, err := readFloat64Array(raw)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(vals))
	for i, v := range vals {
		if v != nil {
			out[i] = *v
		}
	}
	return out, nil
}

func readOptionalScalarRef(source storage.ReaderAtSeeker, records recordSet, ref legacyUID) ([]*float64, error) {
	if ref.UID == "" {
		return nil, nil
	}
	arrRef, err := resolveArray(records, ref)
	if err != nil {
		return nil, err
	}
	raw, err := decompressArray(source, arrRef)
	if err != nil {
		return nil, err
	}
	return readFloat64Array(raw)
}

func sum(v []float64) float64 {
	var s float64
	for _, x := range v {
		s += x
	}
	return s
}

func avgSpacing(v []float64) float64 {
	if len(v) == 0 {
		return 1
	}
	return sum(v) / float64(len(v))
}

func convertAttribute(source storage.ReaderAtSeeker, records recordSet, uid string) (Attribute, error) {
	rec, err := records.get(uid)
	if err != nil {
		return Attribute{}, err
	}

	switch rec.Class {
	case classScalarData:
		var d legacyScalarData
		if err := rec.decode(&d); err != nil {
			return Attribute{}, omferr.Wrap(omferr.DeserializationFailed, err)
		}
		raw, err := decompressArray(source, d.Array)
		if err != nil {
			return Attribute{}, err
		}
		vals, err := readFloat64Array(raw)
		if err != nil {
			return Attribute{}, err
		}
		attr := Attribute{Name: d.Name, Location: d.Location, Kind: AttrScalar, Scalars: vals}
		if d.Colormap.UID != "" {
			cm, err := convertColormap(source, records, d.Colormap.UID)
			if err != nil {
				return Attribute{}, err
			}
			attr.Colormap = cm
		}
		return attr, nil

	case classVector3Data, classVector2Data:
		var d legacyVectorData
		if err := rec.decode(&d); err != nil {
			return Attribute{}, omferr.Wrap(omferr.DeserializationFailed, err)
		}
		dims := 3
		if rec.Class == classVector2Data {
			dims = 2
		}
		raw, err := decompressArray(source, d.Array)
		if err != nil {
			return Attribute{}, err
		}
		rows, err := readVectorArray(raw, dims)
		if err != nil {
			return Attribute{}, err
		}
		return Attribute{Name: d.Name, Location: d.Location, Kind: AttrVector, Vectors: rows, Dims: dims}, nil

	case classColorData:
		var d legacyColorData
		if err := rec.decode(&d); err != nil {
			return Attribute{}, omferr.Wrap(omferr.DeserializationFailed, err)
		}
		raw, err := decompressArray(source, d.Array)
		if err != nil {
			return Attribute{}, err
		}
		colors, err := readColorArray(raw)
		if err != nil {
			return Attribute{}, err
		}
		return Attribute{Name: d.Name, Location: d.Location, Kind: AttrColor, Colors: colors}, nil

	case classStringData:
		var d legacyStringData
		if err := rec.decode(&d); err != nil {
			return Attribute{}, omferr.Wrap(omferr.DeserializationFailed, err)
		}
		raw, err := decompressArray(source, d.Array)
		if err != nil {
			return Attribute{}, err
		}
		var strs []*string
		if err := decodeStringArray(raw, &strs); err != nil {
			return Attribute{}, err
		}
		return Attribute{Name: d.Name, Location: d.Location, Kind: AttrText, Strings: strs}, nil

	case classDateTimeData:
		var d legacyDateTimeData
		if err := rec.decode(&d); err != nil {
			return Attribute{}, omferr.Wrap(omferr.DeserializationFailed, err)
		}
		raw, err := decompressArray(source, d.Array)
		if err != nil {
			return Attribute{}, err
		}
		var stamps []*string
		if err := decodeStringArray(raw, &stamps); err != nil {
			return Attribute{}, err
		}
		times := make([]*time.Time, len(stamps))
		for i, s := range stamps {
			if s == nil {
				continue
			}
			t, err := time.Parse(time.RFC3339, *s)
			if err != nil {
				return Attribute{}, omferr.Wrap(omferr.DeserializationFailed, err)
			}
			times[i] = &t
		}
		return Attribute{Name: d.Name, Location: d.Location, Kind: AttrDateTime, Times: times}, nil

	case classMappedData:
		var d legacyMappedData
		if err := rec.decode(&d); err != nil {
			return Attribute{}, omferr.Wrap(omferr.DeserializationFailed, err)
		}
		legends := make([]legendValues, 0, len(d.Legends))
		for _, legRef := range d.Legends {
			legRec, err := records.get(legRef.UID)
			if err != nil {
				return Attribute{}, err
			}
			var leg legacyLegend
			if err := legRec.decode(&leg); err != nil {
				return Attribute{}, omferr.Wrap(omferr.DeserializationFailed, err)
			}
			lv, err := decodeLegend(source, leg)
			if err != nil {
				return Attribute{}, err
			}
			legends = append(legends, lv)
		}
		sel := rankLegends(legends)

		var names []string
		if sel.Names != nil {
			names = sel.Names.Strings
		}
		nameCount := len(names)

		raw, err := decompressArray(source, d.Array)
		if err != nil {
			return Attribute{}, err
		}
		indices, err := readIndexNullableArray(raw, nameCount)
		if err != nil {
			return Attribute{}, err
		}

		mapped := &MappedAttribute{Indices: indices, Names: padStrings(names, nameCount)}
		if sel.Gradient != nil {
			mapped.Gradient = padColors(sel.Gradient.Colors, nameCount)
		}
		for _, other := range sel.Others {
			mapped.Sub = append(mapped.Sub, legendToSubAttribute(other, nameCount))
		}
		return Attribute{Name: d.Name, Location: d.Location, Kind: AttrMapped, Mapped: mapped}, nil

	default:
		return Attribute{}, omferr.InvalidDataErr("unsupported legacy data class " + rec.Class)
	}
}

// legendToSubAttribute turns a legend the ranking pass did not select for
// Names or Gradient into a per-category sub-attribute (spec.md §4.3
// "CategoryData.attributes"), padded to the category count.
func legendToSubAttribute(v legendValues, n int) Attribute {
	switch {
	case v.Strings != nil:
		padded := padStrings(v.Strings, n)
		strs := make([]*string, n)
		for i := range padded {
			s := padded[i]
			strs[i] = &s
		}
		return Attribute{Name: v.Name, Location: "Categories", Kind: AttrText, Strings: strs}
	case v.Colors != nil:
		return Attribute{Name: v.Name, Location: "Categories", Kind: AttrColor, Colors: padColors(v.Colors, n)}
	default:
		return Attribute{Name: v.Name, Location: "Categories", Kind: AttrScalar, Scalars: padNumbers(v.Numbers, n)}
	}
}

func convertColormap(source storage.ReaderAtSeeker, records recordSet, uid string) (*Colormap, error) {
	rec, err := records.get(uid)
	if err != nil {
		return nil, err
	}
	if rec.Class != classScalarColormap {
		return nil, nil
	}
	var cm legacyScalarColormap
	if err := rec.decode(&cm); err != nil {
		return nil, omferr.Wrap(omferr.DeserializationFailed, err)
	}
	raw, err := decompressArray(source, cm.Gradient)
	if err != nil {
		return nil, err
	}
	colors, err := readColorArray(raw)
	if err != nil {
		return nil, err
	}
	return &Colormap{Min: cm.Limits[0], Max: cm.Limits[1], Gradient: colors}, nil
}
