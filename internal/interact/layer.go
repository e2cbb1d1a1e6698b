// Package interact implements hover highlighting and the floating info
// label shared by the map and the chart.
package interact

import (
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/housing-map/internal/model"
	"github.com/sells-group/housing-map/internal/render"
)

// ErrUnknownCounty is returned for a selector no county carries.
var ErrUnknownCounty = eris.New("unknown county")

// Label offsets from the cursor and the top edge below which the label
// flips under the cursor.
const (
	labelGap    = 10
	labelAbove  = 75
	labelBelow  = 25
	labelMargin = 20
)

// AttributeSource reports the currently selected attribute.
type AttributeSource interface {
	Attribute() model.Attribute
}

// Label is the floating info label for a hovered county.
type Label struct {
	ID         string `json:"id"`
	Value      string `json:"value"`
	Attribute  string `json:"attribute"`
	CountyName string `json:"county_name"`
}

// Hover is the result of entering a county's shapes.
type Hover struct {
	Commands []render.Command `json:"commands"`
	Label    Label            `json:"label"`
}

// Point is a cursor or label position in viewport pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Layer highlights a county on both the map and the chart. It is safe for
// concurrent use.
type Layer struct {
	source   AttributeSource
	counties map[string]*model.County

	mu      sync.Mutex
	hovered map[string]bool
}

// NewLayer returns a layer over counties, labelling values of the
// attribute source reports.
func NewLayer(counties []*model.County, source AttributeSource) *Layer {
	bySel := make(map[string]*model.County, len(counties))
	for _, c := range counties {
		bySel[c.Selector] = c
	}
	return &Layer{
		source:   source,
		counties: bySel,
		hovered:  make(map[string]bool),
	}
}

// LabelID is the element ID of a county's info label.
func LabelID(selector string) string {
	return selector + "_label"
}

// Enter highlights every shape carrying selector and builds its label.
func (l *Layer) Enter(selector string) (Hover, error) {
	c, ok := l.counties[selector]
	if !ok {
		return Hover{}, eris.Wrapf(ErrUnknownCounty, "interact: enter %q", selector)
	}

	attr := l.source.Attribute()
	label := Label{
		ID:         LabelID(selector),
		Value:      c.Value(attr).String(),
		Attribute:  attr.String(),
		CountyName: c.Name,
	}

	l.mu.Lock()
	l.hovered[selector] = true
	l.mu.Unlock()

	cmds := strokes(c, model.HighlightStroke, model.HighlightStroke)
	cmds = append(cmds, render.Command{
		Op: render.OpCreate, Surface: render.SurfacePage, ID: label.ID, Element: "div",
		Attrs: map[string]string{"class": "infoLabel"},
		Text:  &label.Value,
	})

	zap.L().Debug("county highlighted",
		zap.String("component", "interact"),
		zap.String("selector", selector),
		zap.String("attribute", label.Attribute),
	)
	return Hover{Commands: cmds, Label: label}, nil
}

// Leave restores each shape's default stroke and removes the label.
func (l *Layer) Leave(selector string) ([]render.Command, error) {
	c, ok := l.counties[selector]
	if !ok {
		return nil, eris.Wrapf(ErrUnknownCounty, "interact: leave %q", selector)
	}

	cmds := strokes(c, c.MapStroke, c.BarStroke)

	l.mu.Lock()
	if l.hovered[selector] {
		delete(l.hovered, selector)
		cmds = append(cmds, render.Command{
			Op: render.OpRemove, Surface: render.SurfacePage, ID: LabelID(selector),
		})
	}
	l.mu.Unlock()
	return cmds, nil
}

func strokes(c *model.County, mapStroke, barStroke model.Stroke) []render.Command {
	return []render.Command{
		{
			Op: render.OpUpdate, Surface: render.SurfaceMap, ID: render.CountyID(c),
			Style: map[string]string{"stroke": mapStroke.Color, "stroke-width": mapStroke.Width},
		},
		{
			Op: render.OpUpdate, Surface: render.SurfaceChart, ID: render.BarID(c),
			Style: map[string]string{"stroke": barStroke.Color, "stroke-width": barStroke.Width},
		},
	}
}

// PlaceLabel positions a label of labelWidth near the cursor, flipping it
// left of the cursor near the right edge of the viewport and below the
// cursor near the top.
func PlaceLabel(cursor Point, labelWidth, viewportWidth float64) Point {
	p := Point{X: cursor.X + labelGap, Y: cursor.Y - labelAbove}
	if cursor.X > viewportWidth-labelWidth-labelMargin {
		p.X = cursor.X - labelWidth - labelGap
	}
	if cursor.Y < labelAbove {
		p.Y = cursor.Y + labelBelow
	}
	return p
}
