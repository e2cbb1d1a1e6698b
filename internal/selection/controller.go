// Package selection owns the currently selected attribute and drives the
// map and chart renderers when it changes.
package selection

import (
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/housing-map/internal/classify"
	"github.com/sells-group/housing-map/internal/model"
	"github.com/sells-group/housing-map/internal/render"
)

// State is the single piece of shared state: the selected attribute.
type State struct {
	Attribute model.Attribute `json:"attribute"`
}

// Frame is a full draw of every surface.
type Frame struct {
	State    State            `json:"state"`
	Scale    classify.Scale   `json:"scale"`
	Commands []render.Command `json:"commands"`
}

// Update is the result of a selection change.
type Update struct {
	State    State            `json:"state"`
	Scale    classify.Scale   `json:"scale"`
	Commands []render.Command `json:"commands"`
}

// Controller holds the selection state and the derived color scale. All
// methods are safe for concurrent use; each call runs to completion before
// the next starts.
type Controller struct {
	mu       sync.Mutex
	state    State
	scale    classify.Scale
	counties []*model.County
	states   []*model.Feature
	metros   []*model.Feature
	mapR     *render.MapRenderer
	chartR   *render.ChartRenderer
}

// Layers groups the boundary layers drawn on the map.
type Layers struct {
	Counties []*model.County
	States   []*model.Feature
	Metros   []*model.Feature
}

// New returns a controller with the default attribute selected.
func New(layers Layers, mapR *render.MapRenderer, chartR *render.ChartRenderer) *Controller {
	c := &Controller{
		state:    State{Attribute: model.DefaultAttribute},
		counties: layers.Counties,
		states:   layers.States,
		metros:   layers.Metros,
		mapR:     mapR,
		chartR:   chartR,
	}
	c.scale = classify.NewScale(c.counties, c.state.Attribute)
	return c
}

// State returns the current selection.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Attribute returns the selected attribute.
func (c *Controller) Attribute() model.Attribute {
	return c.State().Attribute
}

// Scale returns the color scale for the current selection.
func (c *Controller) Scale() classify.Scale {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.scale
}

// Counties returns the joined counties the controller draws.
func (c *Controller) Counties() []*model.County {
	return c.counties
}

// View returns the renderer input for the current selection.
func (c *Controller) View() render.View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view()
}

func (c *Controller) view() render.View {
	return render.View{
		Attribute: c.state.Attribute,
		Scale:     c.scale,
		Counties:  c.counties,
		States:    c.states,
		Metros:    c.metros,
	}
}

// Render returns a full draw of the map, the chart and the dropdown for
// the current selection.
func (c *Controller) Render() Frame {
	c.mu.Lock()
	defer c.mu.Unlock()

	v := c.view()
	var cmds []render.Command
	cmds = append(cmds, c.mapR.Render(v)...)
	cmds = append(cmds, c.chartR.Render(v)...)
	cmds = append(cmds, render.Dropdown(c.state.Attribute)...)
	return Frame{State: c.state, Scale: c.scale, Commands: cmds}
}

// Select makes name the current attribute, reclassifies, and returns the
// map recolor and chart re-sort commands. An unrecognized name returns
// model.ErrInvalidAttribute and leaves the state unchanged.
func (c *Controller) Select(name string) (Update, error) {
	attr, err := model.ParseAttribute(name)
	if err != nil {
		return Update{}, eris.Wrap(err, "selection: select")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	before := c.view()
	prev := c.state.Attribute
	c.state.Attribute = attr
	c.scale = classify.NewScale(c.counties, attr)

	v := c.view()
	var cmds []render.Command
	cmds = append(cmds, c.mapR.Recolor(v)...)
	cmds = append(cmds, c.chartR.Update(before, v)...)

	zap.L().Debug("attribute selected",
		zap.String("component", "selection"),
		zap.String("from", prev.String()),
		zap.String("to", attr.String()),
		zap.Float64s("breaks", c.scale.Breaks),
	)
	return Update{State: c.state, Scale: c.scale, Commands: cmds}, nil
}
