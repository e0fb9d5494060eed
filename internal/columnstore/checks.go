package columnstore

import (
	"github.com/gmggroup/omf-go/internal/model"
	"github.com/gmggroup/omf-go/internal/omferr"
)

// checkRegularSubblock enforces spec.md §4.2's "sub-block containment and
// alignment" rule, shared between WriteRegularSubblock (checked as rows
// stream past) and RegularSubblockSink.Next (checked again on read, since a
// container may have been edited by another tool between write and read).
func checkRegularSubblock(v model.RegularSubblockRow, mode *model.SubblockMode, parentCount, subblockCount [3]uint32) error {
	for i := 0; i < 3; i++ {
		if v.ParentIJK[i] >= parentCount[i] {
			return omferr.InvalidDataErr("sub-block parent index out of range")
		}
		if v.CornerMin[i] >= v.CornerMax[i] {
			return omferr.InvalidDataErr("sub-block corners out of order")
		}
		if v.CornerMax[i] > subblockCount[i] {
			return omferr.InvalidDataErr("sub-block corner exceeds grid")
		}
	}
	if mode != nil && *mode == model.Octree {
		if err := checkOctreeAligned(v, subblockCount); err != nil {
			return err
		}
	}
	return nil
}

// checkOctreeAligned requires every corner to land on a power-of-two
// subdivision of the parent cell, per spec.md §4.4 "octree_not_power_of_two".
func checkOctreeAligned(v model.RegularSubblockRow, subblockCount [3]uint32) error {
	for i := 0; i < 3; i++ {
		size := v.CornerMax[i] - v.CornerMin[i]
		if size == 0 || size&(size-1) != 0 {
			return omferr.InvalidDataErr("octree sub-block size is not a power of two")
		}
		if v.CornerMin[i]%size != 0 {
			return omferr.InvalidDataErr("octree sub-block is not aligned")
		}
	}
	return nil
}

// checkFreeformSubblock enforces containment of a free-form sub-block
// within its parent cell, expressed in fractional [0,1] coordinates.
func checkFreeformSubblock(v model.FreeformSubblockRow, parentCount [3]uint32) error {
	for i := 0; i < 3; i++ {
		if v.ParentIJK[i] >= parentCount[i] {
			return omferr.InvalidDataErr("sub-block parent index out of range")
		}
		if v.CornerMin[i] < 0 || v.CornerMax[i] > 1 || v.CornerMin[i] >= v.CornerMax[i] {
			return omferr.InvalidDataErr("sub-block corners out of order or out of bounds")
		}
	}
	return nil
}

// boundaryMonotonic reports whether value continues a non-decreasing
// sequence, used by both the Boundary writer (to set WriteCheck.MonotonicBoundary)
// and the Boundary reader (to reject a decreasing value at the row where it
// appears).
func boundaryMonotonic(prev *float64, value float64) bool {
	return prev == nil || value >= *prev
}
