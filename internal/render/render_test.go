package render

import (
	"bytes"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"

	"github.com/sells-group/housing-map/internal/classify"
	"github.com/sells-group/housing-map/internal/model"
	"github.com/sells-group/housing-map/internal/projection"
)

func square(lon, lat float64) *geom.Polygon {
	return geom.NewPolygonFlat(geom.XY, []float64{
		lon, lat, lon, lat + 0.1, lon + 0.1, lat + 0.1, lon + 0.1, lat, lon, lat,
	}, []int{10})
}

func testCounty(fips, sel string, values map[model.Attribute]int64) *model.County {
	c := &model.County{
		FIPS:      fips,
		Name:      sel + " County",
		Selector:  sel,
		Joined:    values != nil,
		Values:    map[model.Attribute]model.Value{},
		Geometry:  square(-77, 38.8),
		MapStroke: model.CountyStroke,
		BarStroke: model.BarStroke,
	}
	for a, v := range values {
		c.Values[a] = model.Int(v)
	}
	return c
}

func testView(attr model.Attribute) View {
	counties := []*model.County{
		testCounty("1", "Alpha", map[model.Attribute]int64{model.AttrZHVIAll: 300000, model.AttrMedValSqFt: 200}),
		testCounty("2", "Bravo", map[model.Attribute]int64{model.AttrZHVIAll: 500000, model.AttrMedValSqFt: 150}),
		testCounty("3", "Charlie", map[model.Attribute]int64{model.AttrZHVIAll: 100000, model.AttrMedValSqFt: 400}),
		testCounty("4", "Delta", nil),
	}
	return View{
		Attribute: attr,
		Scale:     classify.NewScale(counties, attr),
		Counties:  counties,
		States: []*model.Feature{
			{Kind: model.KindState, ID: "24", Properties: map[string]any{"NAME": "Maryland"}, Geometry: square(-77.5, 39)},
		},
		Metros: []*model.Feature{
			{Kind: model.KindMetro, ID: "47900", Properties: map[string]any{"NAME": "Washington-Arlington-Alexandria"}, Geometry: square(-77.2, 38.7)},
		},
	}
}

func testMapRenderer() *MapRenderer {
	return NewMapRenderer(MapOptions{Width: 720, Height: 600}, projection.NewMercator(-77.4824, 38.81709, 15000, 360, 600/1.9))
}

func byID(cmds []Command) map[string]Command {
	out := make(map[string]Command, len(cmds))
	for _, c := range cmds {
		out[c.ID] = c
	}
	return out
}

func TestMapRenderer_Render(t *testing.T) {
	v := testView(model.AttrZHVIAll)
	cmds := testMapRenderer().Render(v)

	require.Len(t, cmds, 1+4+1+1)
	ids := byID(cmds)

	alpha := ids["county-Alpha"]
	assert.Equal(t, OpCreate, alpha.Op)
	assert.Equal(t, "path", alpha.Element)
	assert.Equal(t, "counties Alpha", alpha.Attrs["class"])
	assert.True(t, strings.HasPrefix(alpha.Attrs["d"], "M"))
	assert.Equal(t, "#000", alpha.Style["stroke"])
	assert.Equal(t, "1px", alpha.Style["stroke-width"])

	assert.Equal(t, classify.NoDataColor, ids["county-Delta"].Style["fill"])
	assert.Equal(t, "dmvStates Maryland", ids["state-0"].Attrs["class"])
	assert.Equal(t, "dmvMSA Washington-Arlington-Alexandria", ids["metro-0"].Attrs["class"])
	assert.Equal(t, "none", ids["state-0"].Style["fill"])
}

func TestMapRenderer_RecolorTouchesOnlyFill(t *testing.T) {
	r := testMapRenderer()
	v := testView(model.AttrZHVIAll)
	r.Render(v)

	v2 := testView(model.AttrMedValSqFt)
	cmds := r.Recolor(v2)
	require.Len(t, cmds, 4)
	for _, c := range cmds {
		assert.Equal(t, OpUpdate, c.Op)
		assert.Empty(t, c.Attrs)
		assert.Len(t, c.Style, 1)
		require.NotNil(t, c.Transition)
		assert.Equal(t, time.Second, c.Transition.Duration)
	}
	// Charlie has the highest square-foot value.
	assert.Equal(t, v2.Scale.Fill(v2.Counties[2]), byID(cmds)["county-Charlie"].Style["fill"])
}

func TestChartRenderer_TitleLookup(t *testing.T) {
	r := NewChartRenderer(DefaultChartOptions())
	cmds := r.Render(testView(model.AttrMedValSqFt))
	title := byID(cmds)["chartTitle"]
	require.NotNil(t, title.Text)
	assert.Equal(t, "2018 Median Home Value per Square Foot", *title.Text)

	assert.Equal(t, "", Title(model.Attribute("BOGUS")))
}

func TestChartRenderer_BarsSortedDescending(t *testing.T) {
	r := NewChartRenderer(DefaultChartOptions())
	cmds := r.Render(testView(model.AttrZHVIAll))
	ids := byID(cmds)

	o := DefaultChartOptions()
	step := o.InnerWidth() / 4

	assert.Equal(t, "0", ids["bar-Bravo"].Attrs["data-rank"])
	assert.Equal(t, "1", ids["bar-Alpha"].Attrs["data-rank"])
	assert.Equal(t, "2", ids["bar-Charlie"].Attrs["data-rank"])
	assert.Equal(t, "3", ids["bar-Delta"].Attrs["data-rank"])

	assert.Equal(t, num(o.LeftPadding), ids["bar-Bravo"].Attrs["x"])
	assert.Equal(t, num(o.LeftPadding+step), ids["bar-Alpha"].Attrs["x"])
	assert.Equal(t, num(step-1), ids["bar-Bravo"].Attrs["width"])
	assert.Equal(t, "bars Bravo", ids["bar-Bravo"].Attrs["class"])
	assert.Equal(t, "none", ids["bar-Bravo"].Style["stroke"])

	// 500000 of 800000 over a 590px range.
	assert.Equal(t, num(590*500000.0/800000), ids["bar-Bravo"].Attrs["height"])
	assert.Equal(t, "0", ids["bar-Delta"].Attrs["height"])
}

func TestChartRenderer_UpdateStaggers(t *testing.T) {
	r := NewChartRenderer(DefaultChartOptions())

	cmds := r.Update(testView(model.AttrZHVIAll), testView(model.AttrMedValSqFt))
	var bars []Command
	for _, c := range cmds {
		if strings.HasPrefix(c.ID, "bar-") {
			bars = append(bars, c)
		}
	}
	require.Len(t, bars, 4)
	assert.Equal(t, "bar-Charlie", bars[0].ID)
	assert.Equal(t, "bar-Alpha", bars[1].ID)
	assert.Equal(t, "bar-Bravo", bars[2].ID)
	for i, b := range bars {
		require.NotNil(t, b.Transition)
		assert.Equal(t, time.Duration(i)*20*time.Millisecond, b.Transition.Delay)
		assert.Equal(t, 500*time.Millisecond, b.Transition.Duration)
	}

	// Fixed domain: no axis churn.
	for _, c := range cmds {
		assert.Equal(t, OpUpdate, c.Op, c.ID)
	}
}

func TestChartRenderer_UpdateIsPure(t *testing.T) {
	for _, mode := range []string{DomainFixed, DomainDynamic} {
		t.Run(mode, func(t *testing.T) {
			opts := DefaultChartOptions()
			opts.DomainMode = mode
			r := NewChartRenderer(opts)
			prev, next := testView(model.AttrZHVIAll), testView(model.AttrMedValSqFt)

			first := r.Update(prev, next)
			r.Render(next)
			second := r.Update(prev, next)
			assert.Equal(t, first, second)

			// Same attribute on both sides: bars only.
			for _, c := range r.Update(next, next) {
				assert.Equal(t, OpUpdate, c.Op, c.ID)
			}
		})
	}
}

func TestChartRenderer_ClampsToRange(t *testing.T) {
	r := NewChartRenderer(DefaultChartOptions())
	assert.Equal(t, 590.0, r.BarHeight(model.Int(2000000), 800000))
	assert.Equal(t, 0.0, r.BarHeight(model.Missing, 800000))
	assert.Equal(t, 0.0, r.BarHeight(model.Int(-10), 800000))
}

func TestChartRenderer_DynamicDomain(t *testing.T) {
	opts := DefaultChartOptions()
	opts.DomainMode = DomainDynamic
	r := NewChartRenderer(opts)

	v := testView(model.AttrZHVIAll)
	assert.Equal(t, 500000.0, r.Domain(v))
	next := testView(model.AttrMedValSqFt)
	assert.Equal(t, 500.0, r.Domain(next))

	cmds := r.Update(v, next)
	var removed, created int
	for _, c := range cmds {
		switch c.Op {
		case OpRemove:
			removed++
		case OpCreate:
			created++
		}
	}
	assert.Equal(t, 2*len(tickValues(500000)), removed)
	assert.Equal(t, 2*len(tickValues(500)), created)

	// The rebuilt axis applies cleanly over the old one.
	doc := NewDocument(SurfaceChart)
	require.NoError(t, doc.Apply(r.Render(v)))
	require.NoError(t, doc.Apply(cmds))
	ticks := tickValues(500)
	require.NotEmpty(t, ticks)
	label, ok := doc.Element(tickLabelID(len(ticks) - 1))
	require.True(t, ok)
	assert.Equal(t, strconv.FormatInt(int64(ticks[len(ticks)-1]), 10), label.Text)
}

func TestChartRenderer_AxisLabelsGrouped(t *testing.T) {
	r := NewChartRenderer(DefaultChartOptions())
	cmds := r.Render(testView(model.AttrZHVIAll))

	var labels []string
	for _, c := range cmds {
		if strings.HasPrefix(c.ID, "axis-label-") {
			labels = append(labels, *c.Text)
		}
	}
	require.NotEmpty(t, labels)
	grouped := false
	for _, l := range labels {
		if strings.Contains(l, ",") {
			grouped = true
		}
		assert.NotContains(t, l, "e+", "label %q", l)
	}
	assert.True(t, grouped, "labels %v", labels)
}

func TestSortCounties_Deterministic(t *testing.T) {
	v := testView(model.AttrZHVIAll)
	a := SortCounties(v.Counties, v.Attribute)
	b := SortCounties(v.Counties, v.Attribute)
	assert.Equal(t, a, b)
	assert.Equal(t, "1", v.Counties[0].FIPS, "input untouched")
}

func TestNiceCeil(t *testing.T) {
	assert.Equal(t, 500000.0, niceCeil(500000))
	assert.Equal(t, 1000000.0, niceCeil(730000))
	assert.Equal(t, 250.0, niceCeil(201))
	assert.Equal(t, 50.0, niceCeil(41))
}

func TestDocument_WriteSVG(t *testing.T) {
	r := testMapRenderer()
	v := testView(model.AttrZHVIAll)

	doc := NewDocument(SurfaceMap)
	require.NoError(t, doc.Apply(r.Render(v)))
	require.NoError(t, doc.Apply(r.Recolor(testView(model.AttrMedValSqFt))))

	var buf bytes.Buffer
	require.NoError(t, doc.WriteSVG(&buf))
	out := buf.String()
	assert.Contains(t, out, "<svg")
	assert.Contains(t, out, `class="counties Alpha"`)
	assert.Contains(t, out, `id="county-Charlie"`)
	assert.Contains(t, out, "</svg>")

	el, ok := doc.Element("county-Charlie")
	require.True(t, ok)
	assert.Equal(t, classify.Colors[len(classify.NewScale(v.Counties, model.AttrMedValSqFt).Breaks)], el.Style["fill"])
}

func TestDocument_ChartTextAndRemove(t *testing.T) {
	r := NewChartRenderer(DefaultChartOptions())
	doc := NewDocument(SurfaceChart)
	require.NoError(t, doc.Apply(r.Render(testView(model.AttrZHVIAll))))
	require.NoError(t, doc.Apply(r.Update(testView(model.AttrZHVIAll), testView(model.AttrZHVICondo))))

	title, ok := doc.Element("chartTitle")
	require.True(t, ok)
	assert.Equal(t, "2018 Average ZHVI (Condominiums)", title.Text)

	require.NoError(t, doc.Apply([]Command{{Op: OpRemove, Surface: SurfaceChart, ID: "chartFrame"}}))
	_, ok = doc.Element("chartFrame")
	assert.False(t, ok)

	var buf bytes.Buffer
	require.NoError(t, doc.WriteSVG(&buf))
	assert.Contains(t, buf.String(), "2018 Average ZHVI (Condominiums)")
}

func TestDocument_UnknownElement(t *testing.T) {
	doc := NewDocument(SurfaceMap)
	err := doc.Apply([]Command{{Op: OpUpdate, Surface: SurfaceMap, ID: "nope"}})
	require.Error(t, err)

	// Commands for other surfaces are ignored.
	require.NoError(t, doc.Apply([]Command{{Op: OpUpdate, Surface: SurfaceChart, ID: "nope"}}))
}

func TestDocument_NoRoot(t *testing.T) {
	var buf bytes.Buffer
	require.Error(t, NewDocument(SurfaceMap).WriteSVG(&buf))
}

func TestDropdown(t *testing.T) {
	opts := DropdownOptions(model.AttrZHVICondo)
	require.Len(t, opts, 7)
	assert.Equal(t, DropdownTitle, opts[0].Text)
	assert.True(t, opts[0].Disabled)
	assert.True(t, opts[3].Selected)

	cmds := Dropdown(model.AttrZHVICondo)
	require.Len(t, cmds, 8)
	assert.Equal(t, "select", cmds[0].Element)
	assert.Equal(t, "true", cmds[1].Attrs["disabled"])
	assert.Equal(t, "2018_ZHVI_ALL", cmds[2].Attrs["value"])
}
