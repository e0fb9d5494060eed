package validate

import (
	"github.com/gmggroup/omf-go/internal/model"
)

// Project walks an entire project tree, applying every invariant from
// spec.md §3/§4.4, and returns the accumulated problems (spec.md §5
// "Validator... tree-walking traversal with a bounded problem budget").
func Project(p *model.Project, filenames map[string]bool, budget int) Problems {
	v := New(budget, filenames)
	validateProject(v, p)
	return v.Finish()
}

func validateProject(v *Validator, p *model.Project) {
	pv := v.Enter("Project").Name(p.Name)
	Unique(pv, elementNames(p.Elements), "elements", false, func(s string) string { return s })
	for _, el := range p.Elements {
		validateElement(pv, el)
	}
}

func elementNames(els []*model.Element) []string {
	out := make([]string, len(els))
	for i, e := range els {
		out[i] = e.Name
	}
	return out
}

func validateElement(v *Validator, el *model.Element) {
	ev := v.Enter("Element").Name(el.Name)
	validateGeometry(ev, el.Geometry)
	for _, attr := range el.Attributes {
		validateAttribute(ev, el.Geometry, attr)
	}
}

func geometryTypeName(g model.Geometry) string {
	switch g.(type) {
	case model.PointSet:
		return "PointSet"
	case model.LineSet:
		return "LineSet"
	case model.Surface:
		return "Surface"
	case model.GridSurface:
		return "GridSurface"
	case model.BlockModel:
		return "BlockModel"
	case model.Composite:
		return "Composite"
	default:
		return "Geometry"
	}
}

func validateGeometry(v *Validator, g model.Geometry) {
	gv := v.Enter(geometryTypeName(g))
	switch t := g.(type) {
	case model.PointSet:
		gv.FiniteSeq(t.Origin[:], "origin")
		validateArrayChecks(gv, t.Vertices.Checks, "vertices")
	case model.LineSet:
		gv.FiniteSeq(t.Origin[:], "origin")
		validateArrayChecks(gv, t.Vertices.Checks, "vertices")
		maxIndex := t.Vertices.Count
		validateIndexChecks(gv, t.Segments.Checks, "segments", maxIndex)
	case model.Surface:
		gv.FiniteSeq(t.Origin[:], "origin")
		validateArrayChecks(gv, t.Vertices.Checks, "vertices")
		validateIndexChecks(gv, t.Triangles.Checks, "triangles", t.Vertices.Count)
	case model.GridSurface:
		validateOrient2(gv, t.Orient)
		validateGrid2(gv, t.Grid)
		if t.Heights != nil {
			validateArrayChecks(gv, t.Heights.Checks, "heights")
		}
	case model.BlockModel:
		validateOrient3(gv, t.Orient)
		validateGrid3(gv, t.Grid)
		validateSubblocks(gv, t.Subblocks, t.Grid.Counts())
	case model.Composite:
		for _, el := range t.Elements {
			validateElement(gv, el)
		}
	}
}

func validateOrient2(v *Validator, o model.Orient2) {
	v.FiniteSeq(o.Origin[:], "origin")
	v.UnitVector(o.U, "u")
	v.UnitVector(o.V, "v")
	v.VectorsOrtho2(o.U, o.V)
}

func validateOrient3(v *Validator, o model.Orient3) {
	v.FiniteSeq(o.Origin[:], "origin")
	v.UnitVector(o.U, "u")
	v.UnitVector(o.V, "v")
	v.UnitVector(o.W, "w")
	v.VectorsOrtho3(o.U, o.V, o.W)
}

func validateGrid2(v *Validator, g model.Grid2) {
	switch t := g.(type) {
	case model.RegularGrid2:
		v.AboveZero(t.Size[0], "size")
		v.AboveZero(t.Size[1], "size")
		v.GridCount([]uint64{uint64(t.Count[0]), uint64(t.Count[1])})
	case model.TensorGrid2:
		v.GridCount([]uint64{uint64(len(t.U)), uint64(len(t.V))})
	}
}

func validateGrid3(v *Validator, g model.Grid3) {
	switch t := g.(type) {
	case model.RegularGrid3:
		v.AboveZero(t.Size[0], "size")
		v.AboveZero(t.Size[1], "size")
		v.AboveZero(t.Size[2], "size")
		v.GridCount([]uint64{uint64(t.Count[0]), uint64(t.Count[1]), uint64(t.Count[2])})
	case model.TensorGrid3:
		v.GridCount([]uint64{uint64(len(t.U)), uint64(len(t.V)), uint64(len(t.W))})
	}
}

func validateSubblocks(v *Validator, s model.SubblockData, parentCount [3]uint32) {
	if s == nil {
		return
	}
	switch t := s.(type) {
	case model.RegularSubblocks:
		v.GridCount([]uint64{uint64(t.Count[0]), uint64(t.Count[1]), uint64(t.Count[2])})
		v.SubblockModeAndCount(t.Mode, t.Count)
		validateArrayChecks(v, t.Rows.Checks, "rows")
	case model.FreeformSubblocks:
		validateArrayChecks(v, t.Rows.Checks, "rows")
	}
}

// validateArrayChecks surfaces per-item failures an array's writer recorded
// while streaming (spec.md §3 write-side checks, §4.2 "Per-array validation
// lives in two places").
func validateArrayChecks(v *Validator, checks []model.WriteCheck, field string) {
	for _, c := range checks {
		v.InvalidData(c.InvalidDataDetail, field)
		if c.MinSizeObserved != nil && *c.MinSizeObserved <= 0 {
			v.push(NotGreaterThanZero, field, Problem{})
		}
		if c.MonotonicBoundary != nil && !*c.MonotonicBoundary {
			v.push(MinMaxOutOfOrder, field, Problem{Range: field})
		}
	}
}

// validateIndexChecks additionally checks that no observed index reached
// maxIndex, an exclusive bound (the vertex count for segments/triangles, the
// name count for category indices).
func validateIndexChecks(v *Validator, checks []model.WriteCheck, field string, maxIndex uint64) {
	validateArrayChecks(v, checks, field)
	for _, c := range checks {
		if c.MaxIndexObserved != nil && *c.MaxIndexObserved >= maxIndex {
			v.push(InvalidData, field, Problem{Detail: "index out of range"})
		}
	}
}

func attributeDataTypeName(d model.AttributeData) string {
	return d.DataType()
}

func validateAttribute(v *Validator, geom model.Geometry, attr *model.Attribute) {
	av := v.Enter("Attribute").Name(attr.Name)
	valid := model.ValidLocations(geom)
	av.LocationValidOnGeometry(attr.Location, valid, geometryTypeName(geom))

	required, ok := model.LocationLen(geom, attr.Location)
	switch d := attr.Data.(type) {
	case model.NumberData:
		if ok {
			av.ArraySize(d.Values.Count, required, "values")
		}
		validateArrayChecks(av, d.Values.Checks, "values")
		validateColormap(av, d.Colormap)
	case model.VectorData:
		if ok {
			av.ArraySize(d.Values.Count, required, "values")
		}
	case model.TextData:
		if ok {
			av.ArraySize(d.Values.Count, required, "values")
		}
	case model.BooleanData:
		if ok {
			av.ArraySize(d.Values.Count, required, "values")
		}
	case model.ColorData:
		if ok {
			av.ArraySize(d.Values.Count, required, "values")
		}
	case model.CategoryData:
		if attr.Location != model.Categories && ok {
			av.ArraySize(d.Indices.Count, required, "indices")
		}
		validateIndexChecks(av, d.Indices.Checks, "indices", d.Names.Count)
		for _, sub := range d.SubAttributes {
			validateCategoryAttribute(av, d.Names.Count, sub)
		}
	case model.MappedTextureData, model.ProjectedTextureData:
		// Image-backed attributes carry no Parquet-streamed length to check here.
	}
}

// validateCategoryAttribute validates a category's sub-attributes, which
// are indexed by category (one value per name) rather than by the parent
// geometry (spec.md §4.3 CategoryData.attributes).
func validateCategoryAttribute(v *Validator, nameCount uint64, attr *model.Attribute) {
	av := v.Enter("Attribute").Name(attr.Name)
	switch d := attr.Data.(type) {
	case model.NumberData:
		av.ArraySize(d.Values.Count, nameCount, "values")
	case model.TextData:
		av.ArraySize(d.Values.Count, nameCount, "values")
	case model.ColorData:
		av.ArraySize(d.Values.Count, nameCount, "values")
	}
}

func validateColormap(v *Validator, c model.NumberColormap) {
	if c == nil {
		return
	}
	switch t := c.(type) {
	case model.ContinuousColormap:
		v.MinMax(t.Range.Min, t.Range.Max, "range")
	case model.DiscreteColormap:
		validateArrayChecks(v, t.Boundaries.Checks, "boundaries")
	}
}
