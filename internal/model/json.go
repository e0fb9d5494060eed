package model

import (
	"encoding/json"
	"fmt"
)

// Every closed variant family in this package is tagged by a "type" field in
// its JSON encoding (spec.md §4.3, "Every variant is tagged by a `type`
// field"). The marshal/unmarshal pairs below implement that envelope by
// hand, matching the discriminated-union-without-inheritance idiom the
// invariants rely on for exhaustive matching.

type taggedEnvelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"-"`
}

func marshalTagged(tag string, value any) ([]byte, error) {
	body, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, err
	}
	fields["type"] = json.RawMessage(fmt.Sprintf("%q", tag))
	return json.Marshal(fields)
}

func peekType(raw json.RawMessage) (string, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return "", err
	}
	return head.Type, nil
}

// --- Element / Geometry ---

type elementAlias Element

func (e *Element) MarshalJSON() ([]byte, error) {
	if e.Geometry == nil {
		return nil, fmt.Errorf("element %q: geometry is required", e.Name)
	}
	geomJSON, err := marshalGeometry(e.Geometry)
	if err != nil {
		return nil, err
	}
	type wire struct {
		elementAlias
		Geometry json.RawMessage `json:"geometry"`
	}
	w := wire{elementAlias: elementAlias(*e), Geometry: geomJSON}
	return json.Marshal(w)
}

func (e *Element) UnmarshalJSON(data []byte) error {
	type wire struct {
		elementAlias
		Geometry json.RawMessage `json:"geometry"`
	}
	var w wire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*e = Element(w.elementAlias)
	geom, err := unmarshalGeometry(w.Geometry)
	if err != nil {
		return fmt.Errorf("element %q: %w", e.Name, err)
	}
	e.Geometry = geom
	return nil
}

func marshalGeometry(g Geometry) ([]byte, error) {
	switch v := g.(type) {
	case GridSurface:
		gridJSON, err := marshalGrid2(v.Grid)
		if err != nil {
			return nil, err
		}
		type wire struct {
			Type    string          `json:"type"`
			Orient  Orient2         `json:"orient"`
			Grid    json.RawMessage `json:"grid"`
			Heights *Array[float64] `json:"heights,omitempty"`
		}
		return json.Marshal(wire{Type: "GridSurface", Orient: v.Orient, Grid: gridJSON, Heights: v.Heights})
	case BlockModel:
		gridJSON, err := marshalGrid3(v.Grid)
		if err != nil {
			return nil, err
		}
		var subblocksJSON json.RawMessage
		if v.Subblocks != nil {
			subblocksJSON, err = marshalSubblocks(v.Subblocks)
			if err != nil {
				return nil, err
			}
		}
		type wire struct {
			Type      string          `json:"type"`
			Orient    Orient3         `json:"orient"`
			Grid      json.RawMessage `json:"grid"`
			Subblocks json.RawMessage `json:"subblocks,omitempty"`
		}
		return json.Marshal(wire{Type: "BlockModel", Orient: v.Orient, Grid: gridJSON, Subblocks: subblocksJSON})
	default:
		return marshalTagged(g.GeometryType(), g)
	}
}

func unmarshalGeometry(raw json.RawMessage) (Geometry, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	tag, err := peekType(raw)
	if err != nil {
		return nil, err
	}
	switch tag {
	case "PointSet":
		var v PointSet
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		return v, nil
	case "LineSet":
		var v LineSet
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		return v, nil
	case "Surface":
		var v Surface
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		return v, nil
	case "GridSurface":
		return unmarshalGridSurface(raw)
	case "BlockModel":
		return unmarshalBlockModel(raw)
	case "Composite":
		var v Composite
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		return v, nil
	default:
		return nil, fmt.Errorf("unknown geometry type %q", tag)
	}
}

// --- GridSurface / Grid2 ---

func unmarshalGridSurface(raw json.RawMessage) (Geometry, error) {
	var wire struct {
		Orient  Orient2         `json:"orient"`
		Grid    json.RawMessage `json:"grid"`
		Heights *Array[float64] `json:"heights,omitempty"`
	}
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, err
	}
	grid, err := unmarshalGrid2(wire.Grid)
	if err != nil {
		return nil, err
	}
	return GridSurface{Orient: wire.Orient, Grid: grid, Heights: wire.Heights}, nil
}

func marshalGrid2(g Grid2) (json.RawMessage, error) {
	switch v := g.(type) {
	case RegularGrid2:
		return marshalTagged("Regular", v)
	case TensorGrid2:
		return marshalTagged("Tensor", v)
	default:
		return nil, fmt.Errorf("unknown grid2 variant %T", g)
	}
}

func unmarshalGrid2(raw json.RawMessage) (Grid2, error) {
	tag, err := peekType(raw)
	if err != nil {
		return nil, err
	}
	switch tag {
	case "Regular":
		var v RegularGrid2
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		return v, nil
	case "Tensor":
		var v TensorGrid2
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		return v, nil
	default:
		return nil, fmt.Errorf("unknown grid type %q", tag)
	}
}

// --- BlockModel / Grid3 / Subblocks ---

func unmarshalBlockModel(raw json.RawMessage) (Geometry, error) {
	var wire struct {
		Orient    Orient3         `json:"orient"`
		Grid      json.RawMessage `json:"grid"`
		Subblocks json.RawMessage `json:"subblocks,omitempty"`
	}
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, err
	}
	grid, err := unmarshalGrid3(wire.Grid)
	if err != nil {
		return nil, err
	}
	bm := BlockModel{Orient: wire.Orient, Grid: grid}
	if len(wire.Subblocks) > 0 {
		sb, err := unmarshalSubblocks(wire.Subblocks)
		if err != nil {
			return nil, err
		}
		bm.Subblocks = sb
	}
	return bm, nil
}

func marshalGrid3(g Grid3) (json.RawMessage, error) {
	switch v := g.(type) {
	case RegularGrid3:
		return marshalTagged("Regular", v)
	case TensorGrid3:
		return marshalTagged("Tensor", v)
	default:
		return nil, fmt.Errorf("unknown grid3 variant %T", g)
	}
}

func unmarshalGrid3(raw json.RawMessage) (Grid3, error) {
	tag, err := peekType(raw)
	if err != nil {
		return nil, err
	}
	switch tag {
	case "Regular":
		var v RegularGrid3
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		return v, nil
	case "Tensor":
		var v TensorGrid3
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		return v, nil
	default:
		return nil, fmt.Errorf("unknown grid type %q", tag)
	}
}

func marshalSubblocks(s SubblockData) (json.RawMessage, error) {
	switch v := s.(type) {
	case RegularSubblocks:
		return marshalTagged("Regular", v)
	case FreeformSubblocks:
		return marshalTagged("Freeform", v)
	default:
		return nil, fmt.Errorf("unknown subblocks variant %T", s)
	}
}

func unmarshalSubblocks(raw json.RawMessage) (SubblockData, error) {
	tag, err := peekType(raw)
	if err != nil {
		return nil, err
	}
	switch tag {
	case "Regular":
		var v RegularSubblocks
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		return v, nil
	case "Freeform":
		var v FreeformSubblocks
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		return v, nil
	default:
		return nil, fmt.Errorf("unknown subblocks type %q", tag)
	}
}

// --- Attribute / AttributeData ---

type attributeAlias Attribute

func (a *Attribute) MarshalJSON() ([]byte, error) {
	if a.Data == nil {
		return nil, fmt.Errorf("attribute %q: data is required", a.Name)
	}
	dataJSON, err := marshalAttributeData(a.Data)
	if err != nil {
		return nil, err
	}
	type wire struct {
		attributeAlias
		Data json.RawMessage `json:"data"`
	}
	w := wire{attributeAlias: attributeAlias(*a), Data: dataJSON}
	return json.Marshal(w)
}

func (a *Attribute) UnmarshalJSON(data []byte) error {
	type wire struct {
		attributeAlias
		Data json.RawMessage `json:"data"`
	}
	var w wire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*a = Attribute(w.attributeAlias)
	ad, err := unmarshalAttributeData(w.Data)
	if err != nil {
		return fmt.Errorf("attribute %q: %w", a.Name, err)
	}
	a.Data = ad
	return nil
}

func marshalAttributeData(d AttributeData) ([]byte, error) {
	switch v := d.(type) {
	case NumberData:
		return marshalNumberData(v)
	default:
		return marshalTagged(d.DataType(), d)
	}
}

func marshalNumberData(v NumberData) ([]byte, error) {
	var colormapJSON json.RawMessage
	if v.Colormap != nil {
		raw, err := marshalNumberColormap(v.Colormap)
		if err != nil {
			return nil, err
		}
		colormapJSON = raw
	}
	type wire struct {
		Type      string             `json:"type"`
		ValueType NumberType         `json:"value_type"`
		Values    Array[NumberValue] `json:"values"`
		Colormap  json.RawMessage    `json:"colormap,omitempty"`
	}
	return json.Marshal(wire{Type: "Number", ValueType: v.Type, Values: v.Values, Colormap: colormapJSON})
}

func marshalNumberColormap(c NumberColormap) (json.RawMessage, error) {
	switch v := c.(type) {
	case ContinuousColormap:
		return marshalTagged("Continuous", v)
	case DiscreteColormap:
		return marshalTagged("Discrete", v)
	default:
		return nil, fmt.Errorf("unknown colormap variant %T", c)
	}
}

func unmarshalNumberColormap(raw json.RawMessage) (NumberColormap, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	tag, err := peekType(raw)
	if err != nil {
		return nil, err
	}
	switch tag {
	case "Continuous":
		var v ContinuousColormap
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		return v, nil
	case "Discrete":
		var v DiscreteColormap
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		return v, nil
	default:
		return nil, fmt.Errorf("unknown colormap type %q", tag)
	}
}

func unmarshalAttributeData(raw json.RawMessage) (AttributeData, error) {
	tag, err := peekType(raw)
	if err != nil {
		return nil, err
	}
	switch tag {
	case "Number":
		var wire struct {
			ValueType NumberType         `json:"value_type"`
			Values    Array[NumberValue] `json:"values"`
			Colormap  json.RawMessage    `json:"colormap,omitempty"`
		}
		if err := json.Unmarshal(raw, &wire); err != nil {
			return nil, err
		}
		cm, err := unmarshalNumberColormap(wire.Colormap)
		if err != nil {
			return nil, err
		}
		return NumberData{Type: wire.ValueType, Values: wire.Values, Colormap: cm}, nil
	case "Vector":
		var v VectorData
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		return v, nil
	case "Text":
		var v TextData
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		return v, nil
	case "Category":
		var v CategoryData
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		return v, nil
	case "Boolean":
		var v BooleanData
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		return v, nil
	case "Color":
		var v ColorData
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		return v, nil
	case "MappedTexture":
		var v MappedTextureData
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		return v, nil
	case "ProjectedTexture":
		var v ProjectedTextureData
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		return v, nil
	default:
		return nil, fmt.Errorf("unknown attribute data type %q", tag)
	}
}
