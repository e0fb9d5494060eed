// Package omf reads and writes Open Mining Format containers: ZIP archives
// that bundle a gzip-compressed JSON project tree (index.json.gz) with one
// independent Parquet or image stream per bulk data array (spec.md §1-§2).
//
// Reader opens a container, validates its version stamp, and on Project
// parses and validates the index in one pass. Writer streams arrays one at
// a time into a fresh container and, on Finish, validates the accumulated
// write-side checks before sealing the archive.
package omf

import (
	"github.com/gmggroup/omf-go/internal/model"
)

// Project, Element and friends are re-exported from internal/model so
// callers never need to import an internal package to use the public API.
type (
	Project   = model.Project
	Element   = model.Element
	Attribute = model.Attribute
	Location  = model.Location

	Geometry    = model.Geometry
	PointSet    = model.PointSet
	LineSet     = model.LineSet
	Surface     = model.Surface
	GridSurface = model.GridSurface
	BlockModel  = model.BlockModel
	Composite   = model.Composite

	Orient2 = model.Orient2
	Orient3 = model.Orient3
	Grid2   = model.Grid2
	Grid3   = model.Grid3

	RegularGrid2 = model.RegularGrid2
	TensorGrid2  = model.TensorGrid2
	RegularGrid3 = model.RegularGrid3
	TensorGrid3  = model.TensorGrid3

	SubblockData      = model.SubblockData
	RegularSubblocks  = model.RegularSubblocks
	FreeformSubblocks = model.FreeformSubblocks
	SubblockMode      = model.SubblockMode

	AttributeData        = model.AttributeData
	NumberData           = model.NumberData
	VectorData           = model.VectorData
	TextData             = model.TextData
	CategoryData         = model.CategoryData
	BooleanData          = model.BooleanData
	ColorData            = model.ColorData
	MappedTextureData    = model.MappedTextureData
	ProjectedTextureData = model.ProjectedTextureData

	NumberColormap     = model.NumberColormap
	ContinuousColormap = model.ContinuousColormap
	DiscreteColormap   = model.DiscreteColormap
	NumberRange        = model.NumberRange

	Array[T any] = model.Array[T]
)

const (
	Octree = model.Octree
	Full   = model.Full

	Vertices   = model.Vertices
	Primitives = model.Primitives
	Subblocks  = model.Subblocks
	Elements   = model.Elements
	Projected  = model.Projected
	Categories = model.Categories
)
