// Package snapshot draws a static image of the ranked bar chart with
// gonum/plot, one bar per county colored by its class.
package snapshot

import (
	"image/color"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/sells-group/housing-map/internal/model"
	"github.com/sells-group/housing-map/internal/render"
)

// Formats lists the image formats Write accepts.
var Formats = []string{"png", "svg", "pdf", "jpg", "eps"}

// Options sizes the image. Domain caps the value axis; zero fits the data.
type Options struct {
	Width  vg.Length
	Height vg.Length
	Domain float64
}

// DefaultOptions is a chart-sized landscape image.
func DefaultOptions() Options {
	return Options{Width: 8 * vg.Inch, Height: 6 * vg.Inch}
}

// Plot builds the bar chart for v. Counties are ranked by value with
// missing values last, as on the live chart.
func Plot(v render.View, opts Options) (*plot.Plot, error) {
	sorted := render.SortCounties(v.Counties, v.Attribute)
	if len(sorted) == 0 {
		return nil, eris.New("snapshot: no counties to plot")
	}

	p := plot.New()
	p.Title.Text = render.Title(v.Attribute)
	p.Y.Label.Text = v.Attribute.String()

	names := make([]string, len(sorted))
	for i, c := range sorted {
		names[i] = c.Selector
	}

	width := barWidth(opts.Width, len(sorted))
	for _, cs := range classSeries(v, sorted, opts.Domain) {
		col, err := parseHex(cs.fill)
		if err != nil {
			return nil, err
		}
		bars, err := plotter.NewBarChart(cs.values, width)
		if err != nil {
			return nil, eris.Wrap(err, "snapshot: bar chart")
		}
		bars.Color = col
		bars.LineStyle.Width = 0
		p.Add(bars)
	}

	p.NominalX(names...)
	p.X.Tick.Label.Rotation = math.Pi / 2
	p.X.Tick.Label.XAlign = -1
	p.Y.Min = 0
	if opts.Domain > 0 {
		p.Y.Max = opts.Domain
	}
	return p, nil
}

// Write renders v in format (one of Formats) to w.
func Write(w io.Writer, v render.View, format string, opts Options) error {
	p, err := Plot(v, opts)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(opts.Width, opts.Height, strings.ToLower(format))
	if err != nil {
		return eris.Wrapf(err, "snapshot: format %q", format)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return eris.Wrap(err, "snapshot: write")
	}
	return nil
}

// Save renders v to path; the extension picks the format.
func Save(path string, v render.View, opts Options) error {
	p, err := Plot(v, opts)
	if err != nil {
		return err
	}
	if err := p.Save(opts.Width, opts.Height, path); err != nil {
		return eris.Wrapf(err, "snapshot: save %s", path)
	}
	return nil
}

type series struct {
	fill   string
	values plotter.Values
}

// classSeries splits the ranked values into one series per fill color,
// light to dark then no-data. A bar is zero in every series but its own;
// missing values are zero everywhere. Values are capped at domain when it
// is positive.
func classSeries(v render.View, sorted []*model.County, domain float64) []series {
	byFill := make(map[string]plotter.Values)
	for i, c := range sorted {
		fill := v.Scale.Fill(c)
		if _, ok := byFill[fill]; !ok {
			byFill[fill] = make(plotter.Values, len(sorted))
		}
		if f, ok := c.Value(v.Attribute).Float(); ok {
			if domain > 0 {
				f = math.Min(f, domain)
			}
			byFill[fill][i] = math.Max(f, 0)
		}
	}

	var out []series
	for _, fill := range orderedFills(v) {
		if vals, ok := byFill[fill]; ok {
			out = append(out, series{fill: fill, values: vals})
		}
	}
	return out
}

// orderedFills lists the scale colors light to dark, then the no-data
// color.
func orderedFills(v render.View) []string {
	out := make([]string, 0, len(v.Scale.Colors)+1)
	out = append(out, v.Scale.Colors...)
	for _, c := range v.Counties {
		if f := v.Scale.Fill(c); !contains(out, f) {
			out = append(out, f)
		}
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func barWidth(total vg.Length, n int) vg.Length {
	w := total * 0.8 / vg.Length(n)
	if w < 1 {
		return 1
	}
	return w
}

func parseHex(s string) (color.Color, error) {
	h := strings.TrimPrefix(s, "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return nil, eris.Errorf("snapshot: bad color %q", s)
	}
	n, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return nil, eris.Wrapf(err, "snapshot: bad color %q", s)
	}
	return color.RGBA{R: uint8(n >> 16), G: uint8(n >> 8), B: uint8(n), A: 0xff}, nil
}
