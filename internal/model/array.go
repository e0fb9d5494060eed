// Package model defines the typed tree of project/elements/attributes/arrays
// described in spec.md §3-§4.3. It is pure data: it owns no I/O and knows
// nothing about containers or Parquet. Every closed variant family (Geometry,
// AttributeData, SubblockData, NumberColormap, ...) is expressed as a Go
// interface implemented by exactly the cases spec.md names, following the
// tag-enum/one-struct-per-case pattern recommended for languages without sum
// types.
package model

// ArrayKind is the closed taxonomy of concrete array kinds from spec.md §3.
type ArrayKind int

const (
	KindImage ArrayKind = iota
	KindScalar
	KindVertex
	KindSegment
	KindTriangle
	KindName
	KindGradient
	KindTexcoord
	KindBoundary
	KindRegularSubblock
	KindFreeformSubblock
	KindNumber
	KindIndex
	KindVector
	KindText
	KindBoolean
	KindColor
)

func (k ArrayKind) String() string {
	names := [...]string{
		"Image", "Scalar", "Vertex", "Segment", "Triangle", "Name", "Gradient",
		"Texcoord", "Boundary", "RegularSubblock", "FreeformSubblock", "Number",
		"Index", "Vector", "Text", "Boolean", "Color",
	}
	if int(k) < 0 || int(k) >= len(names) {
		return "Unknown"
	}
	return names[k]
}

// Constraint describes what a reader should check per item of an array, set
// by the Validator the first time the array is reached (spec.md §3, "Array<T>").
type Constraint struct {
	// Set is true once the Validator has visited this array and decided
	// what it needs to check; readers treat an unset Constraint as "not
	// yet validated".
	Set bool

	// MaxIndex bounds Index/Segment/Triangle values (exclusive upper bound).
	MaxIndex *uint64
	// NameCount is the number of category names, for Index arrays.
	NameCount *uint64
	// ParentCount is the block model's (cu, cv, cw), for sub-block arrays.
	ParentCount *[3]uint32
	// SubblockMode restricts regular sub-block layout, if set.
	SubblockMode *SubblockMode
	// SubblockCount is the sub-block grid (cu, cv, cw), for regular mode checks.
	SubblockCount *[3]uint32
	// RequirePositive marks a Scalar array used as tensor-grid row sizes,
	// where every value must be > 0 (spec.md §4.2 "size arrays fail on <= 0").
	// Scalar arrays used for other roles (e.g. GridSurface heights) leave
	// this false.
	RequirePositive bool
}

// WriteCheck is a data-dependent fact discovered while streaming an array's
// items through the Writer (spec.md §3, §4.6, §9 "Per-array validation lives
// in two places"). The Validator consumes these at Writer.Finish.
type WriteCheck struct {
	// MaxIndexObserved is set by Index/Segment/Triangle writers.
	MaxIndexObserved *uint64
	// MinSizeObserved, when set, must be > 0 (NotGreaterThanZero check);
	// none of the columnstore writers set it.
	MinSizeObserved *float64
	// SubblockCorners is the set of distinct (parent_ijk, corners) tuples
	// observed; each row was checked against the sub-block mode as it was
	// written, and the Validator does not re-check them.
	SubblockCorners []RegularSubblockRow
	// FreeformCorners mirrors SubblockCorners for free-form sub-blocks.
	FreeformCorners []FreeformSubblockRow
	// MonotonicBoundary is false if a Boundary array's values were observed
	// to decrease.
	MonotonicBoundary *bool
	// InvalidDataDetail, when non-empty, is forwarded into an InvalidData
	// validation problem; the columnstore writers return a failed per-item
	// check as an error instead of setting it.
	InvalidDataDetail string
}

// Array is a typed handle to a bulk array stored as an independent
// columnar stream: a container-member filename, an item count, a
// lazily-set validation Constraint, and the write-side checks produced
// while streaming (spec.md §3 "Array<T>"). It is plain data, freely cloned,
// holding no reference to the container itself.
type Array[T any] struct {
	Filename   string
	Count      uint64
	Constraint Constraint
	Checks     []WriteCheck
}

// NewArray constructs a handle as returned by a Writer method.
func NewArray[T any](filename string, count uint64, checks ...WriteCheck) Array[T] {
	return Array[T]{Filename: filename, Count: count, Checks: checks}
}

// IsZero reports whether the handle was never assigned (used for optional
// arrays such as GridSurface.Heights).
func (a Array[T]) IsZero() bool { return a.Filename == "" }

// Concrete row types used by multi-column array kinds.

type Vertex = [3]float64

type Segment = [2]uint32

type Triangle = [3]uint32

type Texcoord = [2]float64

type RegularSubblockRow struct {
	ParentIJK  [3]uint32
	CornerMin  [3]uint32
	CornerMax  [3]uint32
}

type FreeformSubblockRow struct {
	ParentIJK [3]uint32
	CornerMin [3]float64
	CornerMax [3]float64
}

type Boundary[T any] struct {
	Value     T
	Inclusive bool
}
