// Package render turns the joined county model and the current selection
// into draw commands for the map and the coordinated bar chart, and applies
// those commands to an SVG document.
package render

import (
	"time"
)

// Op is the kind of change a Command makes to the rendering surface.
type Op string

// Command ops.
const (
	OpCreate Op = "create"
	OpUpdate Op = "update"
	OpRemove Op = "remove"
)

// Transition describes how an update animates on surfaces that animate.
type Transition struct {
	Delay    time.Duration `json:"delay"`
	Duration time.Duration `json:"duration"`
}

// Command is one change to the rendering surface. Create commands carry
// the element name and its full attribute set; update commands carry only
// changed attributes and styles of the element with the given ID.
type Command struct {
	Op         Op                `json:"op"`
	Surface    string            `json:"surface"`
	ID         string            `json:"id"`
	Element    string            `json:"element,omitempty"`
	Attrs      map[string]string `json:"attrs,omitempty"`
	Style      map[string]string `json:"style,omitempty"`
	Text       *string           `json:"text,omitempty"`
	Transition *Transition       `json:"transition,omitempty"`
}

// Surfaces.
const (
	SurfaceMap   = "map"
	SurfaceChart = "chart"
	SurfacePage  = "page"
)

// Transition timings.
const (
	MapRecolorDuration = 1000 * time.Millisecond
	BarDuration        = 500 * time.Millisecond
	BarStagger         = 20 * time.Millisecond
)

func textPtr(s string) *string {
	return &s
}
