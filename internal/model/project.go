package model

import "time"

// Project is the root entity of an OMF container (spec.md §3).
type Project struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	CRS         string         `json:"coordinate_reference_system,omitempty"`
	Units       string         `json:"units,omitempty"`
	Origin      [3]float64     `json:"origin"`
	Author      string         `json:"author,omitempty"`
	Application string         `json:"application,omitempty"`
	CreatedAt   time.Time      `json:"date,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	Elements    []*Element     `json:"elements"`
}

// Element is a named object inside a project, containing one geometry and
// zero or more attributes (spec.md §3, GLOSSARY).
type Element struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Color       *Color         `json:"color,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	Attributes  []*Attribute   `json:"attributes,omitempty"`
	Geometry    Geometry       `json:"geometry"`
}
