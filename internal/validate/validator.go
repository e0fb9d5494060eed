package validate

import (
	"math"
	"math/bits"

	"github.com/gmggroup/omf-go/internal/model"
)

// sharedState is the budget and problem sink shared by every Validator in
// one traversal, mirroring original_source's Rc<RefCell<Problems>> via a
// single pointer instead (Go has no borrow checker forcing the indirection).
type sharedState struct {
	filenames      map[string]bool
	problems       Problems
	limit          int
	extraErrors    uint32
	extraWarnings  uint32
}

func (s *sharedState) push(p Problem) {
	if s.limit > 0 && len(s.problems) >= s.limit {
		if p.IsError() {
			s.extraErrors++
		} else {
			s.extraWarnings++
		}
		return
	}
	s.problems = append(s.problems, p)
}

// Validator is a fluent, budget-bounded tree walker (spec.md §5). Each
// Enter call produces a child scoped to a new type name but sharing the
// same problem sink and budget, following original_source's validator.rs.
type Validator struct {
	shared *sharedState
	typeName string
	name     string
}

// New starts a fresh traversal with the given problem budget (<=0 means
// unbounded) and the set of container member names available for
// ZipMemberMissing checks (nil disables that check).
func New(limit int, filenames map[string]bool) *Validator {
	return &Validator{shared: &sharedState{filenames: filenames, limit: limit}, typeName: ""}
}

// Finish appends the MoreErrors/MoreWarnings summary problems, if the
// budget was exceeded, and returns the accumulated Problems.
func (v *Validator) Finish() Problems {
	if v.shared.extraWarnings > 0 {
		v.shared.problems = append(v.shared.problems, Problem{Reason: MoreWarnings, ExtraCount: v.shared.extraWarnings})
	}
	if v.shared.extraErrors > 0 {
		v.shared.problems = append(v.shared.problems, Problem{Reason: MoreErrors, ExtraCount: v.shared.extraErrors})
	}
	return v.shared.problems
}

func (v *Validator) push(reason Reason, field string, extra Problem) {
	extra.Reason = reason
	extra.TypeName = v.typeName
	extra.FieldName = field
	extra.EnclosingObjectName = v.name
	v.shared.push(extra)
}

// Enter returns a child Validator scoped to ty, inheriting the current
// enclosing-object name.
func (v *Validator) Enter(ty string) *Validator {
	return &Validator{shared: v.shared, typeName: ty, name: v.name}
}

// Name sets the enclosing-object name attached to problems raised from
// this point on (spec.md §5's per-object "name" context).
func (v *Validator) Name(name string) *Validator {
	v.name = name
	return v
}

// Finite rejects NaN/Inf.
func (v *Validator) Finite(value float64, field string) *Validator {
	if !isFinite(value) {
		v.push(NotFinite, field, Problem{})
	}
	return v
}

func isFinite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }

// FiniteSeq rejects the first NaN/Inf found in values.
func (v *Validator) FiniteSeq(values []float64, field string) *Validator {
	for _, value := range values {
		if !isFinite(value) {
			v.push(NotFinite, field, Problem{})
			break
		}
	}
	return v
}

// AboveZero requires value > 0.
func (v *Validator) AboveZero(value float64, field string) *Validator {
	if value <= 0 {
		v.push(NotGreaterThanZero, field, Problem{})
	}
	return v
}

// GridCount rejects any axis count exceeding uint32's range (spec.md §4.4
// "grid_too_large").
func (v *Validator) GridCount(counts []uint64) *Validator {
	const max = uint64(math.MaxUint32)
	for _, c := range counts {
		if c > max {
			v.push(GridTooLarge, "", Problem{Counts: append([]uint64(nil), counts...)})
			return v
		}
	}
	return v
}

// SubblockModeAndCount requires power-of-two counts when mode is Octree.
func (v *Validator) SubblockModeAndCount(mode *model.SubblockMode, count [3]uint32) *Validator {
	if mode != nil && *mode == model.Octree {
		for _, c := range count {
			if !isPowerOfTwo(c) {
				cu := []uint64{uint64(count[0]), uint64(count[1]), uint64(count[2])}
				v.push(OctreeNotPowerOfTwo, "", Problem{Counts: cu})
				return v
			}
		}
	}
	return v
}

// UnitVector requires a vector's squared magnitude to be within 1e-6 of 1.
func (v *Validator) UnitVector(vec [3]float64, field string) *Validator {
	const threshold = 1e-6
	mag2 := vec[0]*vec[0] + vec[1]*vec[1] + vec[2]*vec[2]
	if math.Abs(1-mag2) >= threshold {
		length := math.Floor(math.Sqrt(mag2)*1e7) / 1e7
		v.push(NotUnitVector, field, Problem{Vector1: vec, VectorLength: length})
	}
	return v
}

func normalise(vec [3]float64) [3]float64 {
	mag := math.Sqrt(vec[0]*vec[0] + vec[1]*vec[1] + vec[2]*vec[2])
	if mag == 0 {
		return [3]float64{}
	}
	return [3]float64{vec[0] / mag, vec[1] / mag, vec[2] / mag}
}

func orthogonal(a, b [3]float64) bool {
	const threshold = 1e-6
	na, nb := normalise(a), normalise(b)
	dot := na[0]*nb[0] + na[1]*nb[1] + na[2]*nb[2]
	return math.Abs(dot) < threshold
}

// VectorsOrtho2 requires u and v to be at right angles.
func (v *Validator) VectorsOrtho2(u, w [3]float64) *Validator {
	if !orthogonal(u, w) {
		v.push(NotOrthogonal, "", Problem{Vector1: u, Vector2: w})
	}
	return v
}

// VectorsOrtho3 requires every pair among u, w, x to be at right angles.
func (v *Validator) VectorsOrtho3(u, w, x [3]float64) *Validator {
	pairs := [][2][3]float64{{u, w}, {u, x}, {w, x}}
	for _, p := range pairs {
		if !orthogonal(p[0], p[1]) {
			v.push(NotOrthogonal, "", Problem{Vector1: p[0], Vector2: p[1]})
			break
		}
	}
	return v
}

// ArraySize requires size == required (spec.md §4.4 attribute-length rule).
func (v *Validator) ArraySize(size, required uint64, field string) *Validator {
	if size != required {
		v.push(AttrLengthMismatch, field, Problem{Length: size, Required: required})
	}
	return v
}

// LocationValidOnGeometry flags a Location the geometry doesn't support.
func (v *Validator) LocationValidOnGeometry(loc model.Location, valid []model.Location, geomType string) *Validator {
	for _, ok := range valid {
		if ok == loc {
			return v
		}
	}
	v.push(AttrLocationWrongForGeom, "location", Problem{LocationA: loc, GeomOrAttrName: geomType})
	return v
}

// LocationValidOnAttribute flags a Location impossible for the attribute's
// data kind (e.g. Projected on anything but ProjectedTextureData).
func (v *Validator) LocationValidOnAttribute(loc model.Location, valid []model.Location, dataType string) *Validator {
	for _, ok := range valid {
		if ok == loc {
			return v
		}
	}
	v.push(AttrLocationWrongForAttr, "location", Problem{LocationA: loc, GeomOrAttrName: dataType})
	return v
}

// MinMax requires min <= max.
func (v *Validator) MinMax(min, max float64, rangeDesc string) *Validator {
	v.Finite(min, "min")
	v.Finite(max, "max")
	if isFinite(min) && isFinite(max) && min > max {
		v.push(MinMaxOutOfOrder, "range", Problem{Range: rangeDesc})
	}
	return v
}

// Unique flags repeated values; isError selects NotUnique vs SoftNotUnique.
func Unique[T comparable](v *Validator, values []T, field string, isError bool, format func(T) string) *Validator {
	seen := make(map[T]int, len(values))
	for _, val := range values {
		seen[val]++
		if seen[val] == 2 {
			reason := NotUnique
			if !isError {
				reason = SoftNotUnique
			}
			v.push(reason, field, Problem{Name: format(val)})
		}
	}
	return v
}

// ZipMemberMissing flags filename if the validator was given a member list
// and filename is absent from it.
func (v *Validator) ZipMemberMissing(filename, field string) *Validator {
	if v.shared.filenames == nil {
		return v
	}
	if !v.shared.filenames[filename] {
		v.push(ZipMemberMissing, field, Problem{Name: filename})
	}
	return v
}

// InvalidData surfaces a per-item failure recorded on an Array's WriteCheck.
func (v *Validator) InvalidData(detail, field string) *Validator {
	if detail == "" {
		return v
	}
	v.push(InvalidData, field, Problem{Detail: detail})
	return v
}

func isPowerOfTwo(n uint32) bool { return n != 0 && bits.OnesCount32(n) == 1 }
