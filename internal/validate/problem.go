// Package validate implements the tree-walking, budget-bounded validator
// described in spec.md §5 and §4.4's attribute-attachment rules. It is
// grounded on original_source's src/validate/problem.rs and validator.rs:
// the closed Reason taxonomy and the fluent Validator builder are carried
// over nearly verbatim in shape, adapted from Rust's consuming self-return
// style to Go's pointer-receiver fluent style.
package validate

import (
	"fmt"
	"strings"

	"github.com/gmggroup/omf-go/internal/model"
)

// Reason is the closed set of validation failure causes (spec.md §4.4, §5).
type Reason int

const (
	NotFinite Reason = iota
	NotGreaterThanZero
	NotUnitVector
	NotOrthogonal
	OctreeNotPowerOfTwo
	GridTooLarge
	AttrLocationWrongForGeom
	AttrLocationWrongForAttr
	AttrLengthMismatch
	MinMaxOutOfOrder
	InvalidData
	ZipMemberMissing
	NotUnique
	SoftNotUnique
	MoreErrors
	MoreWarnings
)

// IsError reports whether reason counts as an error rather than a warning.
// Only SoftNotUnique and MoreWarnings are warnings (original_source
// problem.rs Reason::is_error).
func (r Reason) IsError() bool {
	return r != SoftNotUnique && r != MoreWarnings
}

// Problem is a single validation finding, pinned to the object/field where
// it was raised (spec.md §5).
type Problem struct {
	Reason Reason

	// TypeName is the Go type name of the object being validated, e.g.
	// "PointSet" or "NumberData".
	TypeName string
	// FieldName is set when the problem concerns one specific field.
	FieldName string
	// EnclosingObjectName is the name of the containing Element/Attribute,
	// when one exists.
	EnclosingObjectName string

	// Reason-specific detail, only one of which is populated at a time.
	Vector1, Vector2, Vector3 [3]float64
	VectorLength              float64
	Counts                    []uint64
	LocationA, LocationB      model.Location
	GeomOrAttrName            string
	Length, Required          uint64
	Range                     string
	Detail                    string
	Name                      string
	ExtraCount                uint32
}

func (p Problem) IsError() bool { return p.Reason.IsError() }

func (p Problem) String() string {
	severity := "Error"
	if !p.IsError() {
		severity = "Warning"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s: '%s", severity, p.TypeName)
	if p.FieldName != "" {
		fmt.Fprintf(&b, "::%s'", p.FieldName)
	} else {
		b.WriteByte('\'')
	}
	fmt.Fprintf(&b, " %s", p.reasonText())
	if p.EnclosingObjectName != "" {
		fmt.Fprintf(&b, ", inside '%s'", p.EnclosingObjectName)
	}
	return b.String()
}

func (p Problem) reasonText() string {
	switch p.Reason {
	case NotFinite:
		return "must be finite"
	case NotGreaterThanZero:
		return "must be greater than zero"
	case NotUnitVector:
		return fmt.Sprintf("must be a unit vector but %v length is %v", p.Vector1, p.VectorLength)
	case NotOrthogonal:
		return fmt.Sprintf("vectors are not orthogonal: %v %v", p.Vector1, p.Vector2)
	case OctreeNotPowerOfTwo:
		return fmt.Sprintf("sub-block counts %v must be powers of two for octree mode", p.Counts)
	case GridTooLarge:
		return fmt.Sprintf("grid count %v exceeds maximum of 4,294,967,295", p.Counts)
	case AttrLocationWrongForGeom:
		return fmt.Sprintf("is %s which is not valid on %s geometry", p.LocationA, p.GeomOrAttrName)
	case AttrLocationWrongForAttr:
		return fmt.Sprintf("is %s which is not valid on %s attributes", p.LocationA, p.GeomOrAttrName)
	case AttrLengthMismatch:
		return fmt.Sprintf("length %d does not match geometry (%d)", p.Length, p.Required)
	case MinMaxOutOfOrder:
		return fmt.Sprintf("minimum is greater than maximum in %s", p.Range)
	case InvalidData:
		return fmt.Sprintf("array contains invalid data: %s", p.Detail)
	case ZipMemberMissing:
		return fmt.Sprintf("refers to non-existent archive member '%s'", p.Name)
	case NotUnique:
		return fmt.Sprintf("must be unique but %s is repeated", p.Name)
	case SoftNotUnique:
		return fmt.Sprintf("contains duplicate of %s", p.Name)
	case MoreErrors:
		return fmt.Sprintf("%d more errors", p.ExtraCount)
	case MoreWarnings:
		return fmt.Sprintf("%d more warnings", p.ExtraCount)
	default:
		return "unknown problem"
	}
}

// Problems is an ordered collection of validation findings.
type Problems []Problem

func (ps Problems) HasErrors() bool {
	for _, p := range ps {
		if p.IsError() {
			return true
		}
	}
	return false
}

func (ps Problems) String() string {
	errors, warnings := 0, 0
	for _, p := range ps {
		if p.IsError() {
			errors++
		} else {
			warnings++
		}
	}
	var b strings.Builder
	switch {
	case errors == 0 && warnings == 0:
		b.WriteString("OMF validation passed")
	case errors == 0:
		b.WriteString("OMF validation passed with warnings:")
	default:
		b.WriteString("OMF validation failed:")
	}
	for _, p := range ps {
		b.WriteString("\n  ")
		b.WriteString(p.String())
	}
	return b.String()
}

func (ps Problems) Error() string { return ps.String() }
