package model

// ValidLocations returns the Locations an attribute may use for the given
// geometry (spec.md §4.4, "Attribute-attachment rules").
func ValidLocations(geom Geometry) []Location {
	switch g := geom.(type) {
	case PointSet:
		return []Location{Vertices}
	case LineSet, Surface, GridSurface:
		return []Location{Vertices, Primitives}
	case BlockModel:
		if g.HasSubblocks() {
			return []Location{Primitives, Subblocks}
		}
		return []Location{Primitives, Vertices}
	case Composite:
		return []Location{Elements}
	default:
		return nil
	}
}

func locationAllowed(geom Geometry, loc Location) bool {
	for _, l := range ValidLocations(geom) {
		if l == loc {
			return true
		}
	}
	return false
}

// LocationLen returns the item count an attribute's array must have for the
// given geometry and location, and whether the location is even defined for
// this geometry (spec.md §3 invariant 8, §4.4).
func LocationLen(geom Geometry, loc Location) (length uint64, ok bool) {
	if !locationAllowed(geom, loc) {
		return 0, false
	}
	switch g := geom.(type) {
	case PointSet:
		return g.Vertices.Count, true
	case LineSet:
		if loc == Vertices {
			return g.Vertices.Count, true
		}
		return g.Segments.Count, true
	case Surface:
		if loc == Vertices {
			return g.Vertices.Count, true
		}
		return g.Triangles.Count, true
	case GridSurface:
		counts := g.Grid.Counts()
		if loc == Vertices {
			return uint64(counts[0]+1) * uint64(counts[1]+1), true
		}
		return uint64(counts[0]) * uint64(counts[1]), true
	case BlockModel:
		counts := g.Grid.Counts()
		parentCells := uint64(counts[0]) * uint64(counts[1]) * uint64(counts[2])
		switch loc {
		case Vertices:
			return uint64(counts[0]+1) * uint64(counts[1]+1) * uint64(counts[2]+1), true
		case Primitives:
			return parentCells, true
		case Subblocks:
			return subblockCount(g.Subblocks), true
		}
		return 0, false
	case Composite:
		return uint64(len(g.Elements)), true
	default:
		return 0, false
	}
}

func subblockCount(s SubblockData) uint64 {
	switch v := s.(type) {
	case RegularSubblocks:
		return v.Rows.Count
	case FreeformSubblocks:
		return v.Rows.Count
	default:
		return 0
	}
}
