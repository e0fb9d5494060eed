package legacy

import (
	"encoding/json"
	"io"

	"github.com/gmggroup/omf-go/internal/omferr"
)

// taggedRecord is one entry of OMF1's trailing flat JSON object: a
// "__class__" discriminator plus the rest of the record's fields, decoded
// lazily via rawFields (mirrors original_source's Model tagged enum, adapted
// to Go's lack of derive macros via a peek-then-decode pattern, the same
// idiom internal/model/json.go uses for OMF2's own tagged unions).
type taggedRecord struct {
	Class     string
	rawFields json.RawMessage
}

func (r *taggedRecord) UnmarshalJSON(data []byte) error {
	var peek struct {
		Class string `json:"__class__"`
	}
	if err := json.Unmarshal(data, &peek); err != nil {
		return err
	}
	r.Class = peek.Class
	r.rawFields = append(json.RawMessage(nil), data...)
	return nil
}

func (r *taggedRecord) decode(v any) error {
	return json.Unmarshal(r.rawFields, v)
}

// recordSet is OMF1's trailing object, keyed by UUID string.
type recordSet map[string]*taggedRecord

// decodeRecords reads the remainder of r as OMF1's trailing flat JSON
// object (original_source's Omf1Reader::model, generalized from "decode one
// named record" to "decode the whole table up front" since Go has no
// serde-style streaming-by-key equivalent).
func decodeRecords(r io.Reader) (recordSet, error) {
	var records recordSet
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, omferr.Wrap(omferr.DeserializationFailed, err)
	}
	return records, nil
}

func (rs recordSet) get(id string) (*taggedRecord, error) {
	rec, ok := rs[id]
	if !ok {
		return nil, omferr.Wrap(omferr.DeserializationFailed, missingRecordError{id})
	}
	return rec, nil
}

type missingRecordError struct{ id string }

func (e missingRecordError) Error() string { return "legacy record " + e.id + " not found" }

// The record class tags OMF1 files use (lowercase, no separators, matching
// the reference Python omf library's __class__ values). volumegridelement
// and datetimecolormap are real OMF1 classes but have no converter here yet
// (convertGeometry/convertAttribute fall through to their default case);
// they are left out of this list rather than declared and ignored.
const (
	classPointSetElement = "pointsetelement"
	classLineSetElement  = "linesetelement"
	classSurfaceElement  = "surfaceelement"
	classSurfaceGridElem = "surfacegridelement"
	classVolumeElement   = "volumeelement"
	classScalarData      = "scalardata"
	classVector3Data     = "vector3data"
	classVector2Data     = "vector2data"
	classColorData       = "colordata"
	classStringData      = "stringdata"
	classDateTimeData    = "datetimedata"
	classMappedData      = "mappeddata"
	classScalarColormap  = "scalarcolormap"
)

// legacyUID is a "$uuid" reference into recordSet, the wire shape every
// element/data/colormap link uses in OMF1's flat JSON object.
type legacyUID struct {
	UID string `json:"uid"`
}

// legacyProject is the root record: a list of element UIDs plus metadata.
type legacyProject struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Author      string         `json:"author"`
	Application string         `json:"application"`
	Units       string         `json:"units"`
	Origin      [3]float64     `json:"origin"`
	Date        string         `json:"date_created"`
	Metadata    map[string]any `json:"metadata"`
	Elements    []legacyUID    `json:"elements"`
}

// legacyElement is the shared shape of every *Element record: identity
// fields plus the geometry-specific payload read separately by kind.
type legacyElement struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Color       *[3]int        `json:"color"`
	Metadata    map[string]any `json:"metadata"`
	Data        []legacyUID    `json:"data"`
	Textures    []legacyUID    `json:"textures"`

	// Geometry payload, present depending on the record's class.
	Vertices  legacyUID `json:"vertices"`
	Segments  legacyUID `json:"segments"`
	Triangles legacyUID `json:"triangles"`
	Origin    [3]float64 `json:"origin"`

	TensorU legacyUID `json:"tensor_u"`
	TensorV legacyUID `json:"tensor_v"`
	TensorW legacyUID `json:"tensor_w"`
	AxisU   [3]float64 `json:"axis_u"`
	AxisV   [3]float64 `json:"axis_v"`
	AxisW   [3]float64 `json:"axis_w"`

	Heights legacyUID `json:"heights"`
}

// legacyArrayRef is an OMF1 array header: compression is always "zlib" in
// practice, but the field is read so an unsupported scheme fails loudly
// rather than producing garbage.
type legacyArrayRef struct {
	Start       int64  `json:"start"`
	Length      int64  `json:"length"`
	DType       string `json:"dtype"`
	Compression string `json:"compression"`
}

// legacyScalarData, legacyVectorData, legacyColorData, legacyStringData,
// legacyDateTimeData, legacyMappedData are the attribute payload records
// (original_source's attributes.rs ScalarData/Vector3Data/Vector2Data/
// ColorData/StringData/DateTimeData/MappedData), each carrying a location
// string plus one or more array references. Unlike an element's
// vertices/segments/triangles, which point at an independent array record
// by UID (resolveArray in convert.go), these carry their array's
// start/length/dtype inline: OMF1 attribute payloads are written directly
// alongside the record that owns them rather than shared or reused.
type legacyScalarData struct {
	Name     string         `json:"name"`
	Location string         `json:"location"`
	Array    legacyArrayRef `json:"array"`
	Colormap legacyUID      `json:"colormap"`
}

type legacyVectorData struct {
	Name     string         `json:"name"`
	Location string         `json:"location"`
	Array    legacyArrayRef `json:"array"`
}

type legacyColorData struct {
	Name     string         `json:"name"`
	Location string         `json:"location"`
	Array    legacyArrayRef `json:"array"`
}

type legacyStringData struct {
	Name     string         `json:"name"`
	Location string         `json:"location"`
	Array    legacyArrayRef `json:"array"`
}

type legacyDateTimeData struct {
	Name     string         `json:"name"`
	Location string         `json:"location"`
	Array    legacyArrayRef `json:"array"`
}

type legacyMappedData struct {
	Name     string      `json:"name"`
	Location string      `json:"location"`
	Array    legacyArrayRef `json:"array"`
	Legends  []legacyUID `json:"legends"`
}

type legacyScalarColormap struct {
	Limits  [2]float64     `json:"limits"`
	Gradient legacyArrayRef `json:"gradient"`
}

// legacyLegend is one mapped-data legend: names (strings) or a gradient of
// colors, selected between by category.go's ranking.
type legacyLegend struct {
	Name   string         `json:"name"`
	Values legacyArrayRef `json:"values"`
}
