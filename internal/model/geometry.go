package model

// Orient2 is an origin plus two orthonormal axes spanning a plane
// (spec.md §3, used by GridSurface).
type Orient2 struct {
	Origin [3]float64 `json:"origin"`
	U      [3]float64 `json:"axis_u"`
	V      [3]float64 `json:"axis_v"`
}

// Orient3 is an origin plus three orthonormal axes (spec.md §3, used by BlockModel).
type Orient3 struct {
	Origin [3]float64 `json:"origin"`
	U      [3]float64 `json:"axis_u"`
	V      [3]float64 `json:"axis_v"`
	W      [3]float64 `json:"axis_w"`
}

// Grid2 is regular spacing-and-count or a tensor of per-row sizes (spec.md §3).
type Grid2 interface {
	isGrid2()
	Counts() [2]uint32
}

type RegularGrid2 struct {
	Size  [2]float64 `json:"size"`
	Count [2]uint32  `json:"count"`
}

func (RegularGrid2) isGrid2()              {}
func (g RegularGrid2) Counts() [2]uint32   { return g.Count }

type TensorGrid2 struct {
	U []float64 `json:"u"`
	V []float64 `json:"v"`
}

func (TensorGrid2) isGrid2() {}
func (g TensorGrid2) Counts() [2]uint32 {
	return [2]uint32{uint32(len(g.U)), uint32(len(g.V))}
}

// Grid3 is regular spacing-and-count or a tensor of per-row sizes, for block
// models (spec.md §3).
type Grid3 interface {
	isGrid3()
	Counts() [3]uint32
}

type RegularGrid3 struct {
	Size  [3]float64 `json:"size"`
	Count [3]uint32  `json:"count"`
}

func (RegularGrid3) isGrid3()            {}
func (g RegularGrid3) Counts() [3]uint32 { return g.Count }

type TensorGrid3 struct {
	U []float64 `json:"u"`
	V []float64 `json:"v"`
	W []float64 `json:"w"`
}

func (TensorGrid3) isGrid3() {}
func (g TensorGrid3) Counts() [3]uint32 {
	return [3]uint32{uint32(len(g.U)), uint32(len(g.V)), uint32(len(g.W))}
}

// Geometry is the closed tagged variant of spec.md §3: PointSet, LineSet,
// Surface, GridSurface, BlockModel, Composite.
type Geometry interface {
	GeometryType() string
}

type PointSet struct {
	Origin   [3]float64    `json:"origin"`
	Vertices Array[Vertex] `json:"vertices"`
}

func (PointSet) GeometryType() string { return "PointSet" }

type LineSet struct {
	Origin   [3]float64     `json:"origin"`
	Vertices Array[Vertex]  `json:"vertices"`
	Segments Array[Segment] `json:"segments"`
}

func (LineSet) GeometryType() string { return "LineSet" }

type Surface struct {
	Origin    [3]float64      `json:"origin"`
	Vertices  Array[Vertex]    `json:"vertices"`
	Triangles Array[Triangle]  `json:"triangles"`
}

func (Surface) GeometryType() string { return "Surface" }

type GridSurface struct {
	Orient  Orient2        `json:"orient"`
	Grid    Grid2          `json:"grid"`
	Heights *Array[float64] `json:"heights,omitempty"`
}

func (GridSurface) GeometryType() string { return "GridSurface" }

type BlockModel struct {
	Orient    Orient3    `json:"orient"`
	Grid      Grid3      `json:"grid"`
	Subblocks SubblockData `json:"subblocks,omitempty"`
}

func (BlockModel) GeometryType() string { return "BlockModel" }

// HasSubblocks reports whether this block model declares a sub-block layout.
func (b BlockModel) HasSubblocks() bool { return b.Subblocks != nil }

type Composite struct {
	Elements []*Element `json:"elements"`
}

func (Composite) GeometryType() string { return "Composite" }
