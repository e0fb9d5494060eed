package model

import "time"

// Location is where an attribute's data attaches (spec.md §3, §4.4).
type Location int

const (
	Vertices Location = iota
	Primitives
	Subblocks
	Elements
	Projected
	Categories
)

func (l Location) String() string {
	switch l {
	case Vertices:
		return "Vertices"
	case Primitives:
		return "Primitives"
	case Subblocks:
		return "Subblocks"
	case Elements:
		return "Elements"
	case Projected:
		return "Projected"
	case Categories:
		return "Categories"
	default:
		return "Unknown"
	}
}

// NumberType is the element type of a Number/Boundary array (spec.md §4.2).
type NumberType int

const (
	F32 NumberType = iota
	F64
	I64
	Date
	DateTime
)

func (t NumberType) String() string {
	switch t {
	case F32:
		return "f32"
	case F64:
		return "f64"
	case I64:
		return "i64"
	case Date:
		return "date"
	case DateTime:
		return "datetime"
	default:
		return "unknown"
	}
}

// AttributeData is the closed variant of spec.md §3.
type AttributeData interface {
	DataType() string
}

// NumberValue is the decoded union of what a Number/Boundary array's single
// cell can hold; which field is meaningful is selected by the array's
// NumberType (f32/f64 and i64 use Float/Int, date/datetime use Time).
type NumberValue struct {
	Float float64
	Int   int64
	Time  time.Time
}

type NumberData struct {
	Type     NumberType        `json:"value_type"`
	Values   Array[NumberValue] `json:"values"`
	Colormap NumberColormap    `json:"colormap,omitempty"`
}

func (NumberData) DataType() string { return "Number" }

type VectorData struct {
	Dimensions int            `json:"dimensions"` // 2 or 3
	Values     Array[[3]float64] `json:"values"`
}

func (VectorData) DataType() string { return "Vector" }

type TextData struct {
	Values Array[string] `json:"values"`
}

func (TextData) DataType() string { return "Text" }

type CategoryData struct {
	Indices       Array[uint32] `json:"indices"`
	Names         Array[string] `json:"names"`
	Gradient      *Array[Color] `json:"gradient,omitempty"`
	SubAttributes []*Attribute  `json:"attributes,omitempty"`
}

func (CategoryData) DataType() string { return "Category" }

// Trivalent is a three-valued boolean: true, false, or null/unknown.
type Trivalent int

const (
	BoolFalse Trivalent = iota
	BoolTrue
	BoolNull
)

type BooleanData struct {
	Values Array[Trivalent] `json:"values"`
}

func (BooleanData) DataType() string { return "Boolean" }

type ColorData struct {
	Values Array[Color] `json:"values"`
}

func (ColorData) DataType() string { return "Color" }

type MappedTextureData struct {
	Image    Array[[]byte]  `json:"image"`
	Texcoord Array[Texcoord] `json:"texcoords"`
}

func (MappedTextureData) DataType() string { return "MappedTexture" }

type ProjectedTextureData struct {
	Image  Array[[]byte] `json:"image"`
	Orient Orient2       `json:"orient"`
	Width  float64       `json:"width"`
	Height float64       `json:"height"`
}

func (ProjectedTextureData) DataType() string { return "ProjectedTexture" }

// Attribute is named data attached to a specific part of an element
// (spec.md §3).
type Attribute struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Units       string         `json:"units,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	Location    Location       `json:"location"`
	Data        AttributeData  `json:"data"`
}
