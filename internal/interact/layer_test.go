package interact

import (
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/housing-map/internal/model"
	"github.com/sells-group/housing-map/internal/render"
)

type fixedAttribute model.Attribute

func (f fixedAttribute) Attribute() model.Attribute { return model.Attribute(f) }

func testLayer() *Layer {
	counties := []*model.County{
		{
			FIPS: "51013", Name: "Arlington County", Selector: "Arlington", Joined: true,
			Values:    map[model.Attribute]model.Value{model.AttrZHVIAll: model.Int(650000)},
			MapStroke: model.CountyStroke, BarStroke: model.BarStroke,
		},
		{
			FIPS: "11001", Name: "District of Columbia", Selector: "DC",
			MapStroke: model.CountyStroke, BarStroke: model.BarStroke,
		},
	}
	return NewLayer(counties, fixedAttribute(model.AttrZHVIAll))
}

func styleFor(cmds []render.Command, surface string) map[string]string {
	for _, c := range cmds {
		if c.Surface == surface && c.Op == render.OpUpdate {
			return c.Style
		}
	}
	return nil
}

func TestEnter_HighlightsMapAndBar(t *testing.T) {
	l := testLayer()
	h, err := l.Enter("Arlington")
	require.NoError(t, err)

	want := map[string]string{"stroke": "yellow", "stroke-width": "6"}
	assert.Equal(t, want, styleFor(h.Commands, render.SurfaceMap))
	assert.Equal(t, want, styleFor(h.Commands, render.SurfaceChart))

	ids := make([]string, 0, len(h.Commands))
	for _, c := range h.Commands {
		ids = append(ids, c.ID)
	}
	assert.ElementsMatch(t, []string{"county-Arlington", "bar-Arlington", "Arlington_label"}, ids)

	assert.Equal(t, Label{
		ID:         "Arlington_label",
		Value:      "650000",
		Attribute:  "2018_ZHVI_ALL",
		CountyName: "Arlington County",
	}, h.Label)
}

func TestEnter_MissingValueLabel(t *testing.T) {
	l := testLayer()
	h, err := l.Enter("DC")
	require.NoError(t, err)
	assert.Equal(t, "No data", h.Label.Value)
	assert.Equal(t, "District of Columbia", h.Label.CountyName)
}

func TestLeave_RestoresDefaultStrokes(t *testing.T) {
	l := testLayer()
	_, err := l.Enter("Arlington")
	require.NoError(t, err)

	cmds, err := l.Leave("Arlington")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"stroke": "#000", "stroke-width": "1px"}, styleFor(cmds, render.SurfaceMap))
	assert.Equal(t, map[string]string{"stroke": "none", "stroke-width": "0px"}, styleFor(cmds, render.SurfaceChart))

	last := cmds[len(cmds)-1]
	assert.Equal(t, render.OpRemove, last.Op)
	assert.Equal(t, "Arlington_label", last.ID)

	// A second leave has no label left to remove.
	cmds, err = l.Leave("Arlington")
	require.NoError(t, err)
	for _, c := range cmds {
		assert.NotEqual(t, render.OpRemove, c.Op)
	}
}

func TestEnterLeave_OnDocument(t *testing.T) {
	l := testLayer()
	doc := render.NewDocument(render.SurfaceMap)
	require.NoError(t, doc.Apply([]render.Command{
		{Op: render.OpCreate, Surface: render.SurfaceMap, ID: "map", Element: "svg"},
		{
			Op: render.OpCreate, Surface: render.SurfaceMap, ID: "county-Arlington", Element: "path",
			Style: map[string]string{"fill": "#08519c", "stroke": "#000", "stroke-width": "1px"},
		},
	}))

	h, err := l.Enter("Arlington")
	require.NoError(t, err)
	require.NoError(t, doc.Apply(h.Commands))
	el, _ := doc.Element("county-Arlington")
	assert.Equal(t, "yellow", el.Style["stroke"])

	cmds, err := l.Leave("Arlington")
	require.NoError(t, err)
	require.NoError(t, doc.Apply(cmds))
	el, _ = doc.Element("county-Arlington")
	assert.Equal(t, "#000", el.Style["stroke"])
	assert.Equal(t, "1px", el.Style["stroke-width"])
	assert.Equal(t, "#08519c", el.Style["fill"])
}

func TestUnknownCounty(t *testing.T) {
	l := testLayer()
	_, err := l.Enter("Nowhere")
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrUnknownCounty))

	_, err = l.Leave("Nowhere")
	assert.True(t, eris.Is(err, ErrUnknownCounty))
}

func TestPlaceLabel(t *testing.T) {
	tests := []struct {
		name   string
		cursor Point
		want   Point
	}{
		{name: "default above right", cursor: Point{X: 200, Y: 300}, want: Point{X: 210, Y: 225}},
		{name: "near right edge", cursor: Point{X: 900, Y: 300}, want: Point{X: 740, Y: 225}},
		{name: "near top", cursor: Point{X: 200, Y: 40}, want: Point{X: 210, Y: 65}},
		{name: "top right corner", cursor: Point{X: 900, Y: 10}, want: Point{X: 740, Y: 35}},
		{name: "exactly at right threshold", cursor: Point{X: 830, Y: 75}, want: Point{X: 840, Y: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PlaceLabel(tt.cursor, 150, 1000)
			assert.Equal(t, tt.want, got)
		})
	}
}
