package columnstore

import (
	"math"

	"github.com/gmggroup/omf-go/internal/omferr"
)

// WidenF32ToF64 always succeeds: every f32 has an exact f64 representation
// (spec.md §9 testable property 7, "widening is always allowed").
func WidenF32ToF64(v float32) float64 { return float64(v) }

// NarrowF64ToF32 is the explicit, fallible counterpart: it rejects any
// value that cannot round-trip, rather than silently losing precision.
func NarrowF64ToF32(v float64) (float32, error) {
	out := float32(v)
	if float64(out) != v {
		return 0, omferr.UnsafeCastErr("f64", "f32")
	}
	return out, nil
}

// NarrowF64ToI64 requires v to be an exact integer representable in int64.
func NarrowF64ToI64(v float64) (int64, error) {
	if math.Trunc(v) != v || v < math.MinInt64 || v >= math.MaxInt64 {
		return 0, omferr.UnsafeCastErr("f64", "i64")
	}
	return int64(v), nil
}

// WidenI64ToF64 always succeeds for the range Parquet int64 columns can
// hold in practice (values beyond 2^53 lose bits of precision as a float,
// which spec.md treats as acceptable widening, not narrowing).
func WidenI64ToF64(v int64) float64 { return float64(v) }

// Lift2DVector extends a 2D vector to 3D with z=0, per spec.md §4.3's
// Vector attribute rule ("2D vectors lift to 3D with Z=0").
func Lift2DVector(v [2]float64) [3]float64 { return [3]float64{v[0], v[1], 0} }
