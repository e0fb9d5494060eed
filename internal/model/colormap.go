package model

// Color is an RGBA8 color.
type Color = [4]uint8

// NumberRange is a min/max pair (spec.md §4.4 MinMaxOutOfOrder).
type NumberRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// NumberColormap is the closed variant of spec.md §3: Continuous or Discrete.
type NumberColormap interface {
	isNumberColormap()
}

type ContinuousColormap struct {
	Range    NumberRange   `json:"range"`
	Gradient Array[Color]  `json:"gradient"`
}

func (ContinuousColormap) isNumberColormap() {}

type DiscreteColormap struct {
	Boundaries Array[Boundary[NumberValue]] `json:"boundaries"`
	Gradient   Array[Color]                 `json:"gradient"`
}

func (DiscreteColormap) isNumberColormap() {}
