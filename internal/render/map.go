package render

import (
	"strconv"

	"github.com/twpayne/go-geom"

	"github.com/sells-group/housing-map/internal/join"
	"github.com/sells-group/housing-map/internal/model"
	"github.com/sells-group/housing-map/internal/projection"
)

// Outline styles for the display-only layers.
var (
	StateOutline = model.Stroke{Color: "#4d4d4d", Width: "2px"}
	MetroOutline = model.Stroke{Color: "#e6550d", Width: "2.5px"}
)

// MapOptions sizes the map surface.
type MapOptions struct {
	Width  float64
	Height float64
}

// MapRenderer draws county fills and the state and metro outlines through
// a projection fixed at construction. Path data is computed once per shape.
// A MapRenderer is not safe for concurrent use.
type MapRenderer struct {
	opts  MapOptions
	proj  *projection.Mercator
	paths map[string]string
}

// NewMapRenderer returns a renderer drawing through proj.
func NewMapRenderer(opts MapOptions, proj *projection.Mercator) *MapRenderer {
	return &MapRenderer{
		opts:  opts,
		proj:  proj,
		paths: make(map[string]string),
	}
}

// CountyID is the element ID of a county shape.
func CountyID(c *model.County) string {
	return "county-" + c.Selector
}

// Render returns the commands that draw the whole map for v.
func (r *MapRenderer) Render(v View) []Command {
	cmds := make([]Command, 0, 1+len(v.Counties)+len(v.States)+len(v.Metros))
	cmds = append(cmds, Command{
		Op:      OpCreate,
		Surface: SurfaceMap,
		ID:      "map",
		Element: "svg",
		Attrs: map[string]string{
			"class":  "map",
			"width":  num(r.opts.Width),
			"height": num(r.opts.Height),
		},
	})

	for _, c := range v.Counties {
		id := CountyID(c)
		cmds = append(cmds, Command{
			Op:      OpCreate,
			Surface: SurfaceMap,
			ID:      id,
			Element: "path",
			Attrs: map[string]string{
				"class": "counties " + c.Selector,
				"d":     r.path(id, c.Geometry),
			},
			Style: map[string]string{
				"fill":         v.Scale.Fill(c),
				"stroke":       c.MapStroke.Color,
				"stroke-width": c.MapStroke.Width,
			},
		})
	}

	cmds = append(cmds, r.outlines(v.States, "state", "dmvStates", StateOutline)...)
	cmds = append(cmds, r.outlines(v.Metros, "metro", "dmvMSA", MetroOutline)...)
	return cmds
}

// Recolor returns fill-only updates for every county under v's scale.
// Geometry is left untouched.
func (r *MapRenderer) Recolor(v View) []Command {
	cmds := make([]Command, 0, len(v.Counties))
	for _, c := range v.Counties {
		cmds = append(cmds, Command{
			Op:         OpUpdate,
			Surface:    SurfaceMap,
			ID:         CountyID(c),
			Style:      map[string]string{"fill": v.Scale.Fill(c)},
			Transition: &Transition{Duration: MapRecolorDuration},
		})
	}
	return cmds
}

func (r *MapRenderer) outlines(features []*model.Feature, prefix, class string, stroke model.Stroke) []Command {
	cmds := make([]Command, 0, len(features))
	for i, f := range features {
		id := prefix + "-" + strconv.Itoa(i)
		name := f.Prop("NAME")
		if name == "" {
			name = f.ID
		}
		cmds = append(cmds, Command{
			Op:      OpCreate,
			Surface: SurfaceMap,
			ID:      id,
			Element: "path",
			Attrs: map[string]string{
				"class": class + " " + join.SelectorToken(name, id),
				"d":     r.path(id, f.Geometry),
			},
			Style: map[string]string{
				"fill":         "none",
				"stroke":       stroke.Color,
				"stroke-width": stroke.Width,
			},
		})
	}
	return cmds
}

func (r *MapRenderer) path(id string, g geom.T) string {
	if d, ok := r.paths[id]; ok {
		return d
	}
	d := r.proj.PathData(g)
	r.paths[id] = d
	return d
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
