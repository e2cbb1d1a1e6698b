package render

import (
	"math"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gonum.org/v1/plot"

	"github.com/sells-group/housing-map/internal/model"
)

// Chart value-domain modes.
const (
	DomainFixed   = "fixed"
	DomainDynamic = "dynamic"
)

// ChartOptions sizes the bar chart and its value scale.
type ChartOptions struct {
	Width        float64
	Height       float64
	LeftPadding  float64
	RightPadding float64
	TopPadding   float64
	// DomainMax is the top of the value scale in fixed mode.
	DomainMax  float64
	DomainMode string
	TitleX     float64
	TitleY     float64
}

// DefaultChartOptions returns the chart layout used by the DMV page.
func DefaultChartOptions() ChartOptions {
	return ChartOptions{
		Width:        612,
		Height:       600,
		LeftPadding:  50,
		RightPadding: 5,
		TopPadding:   5,
		DomainMax:    800000,
		DomainMode:   DomainFixed,
		TitleX:       175,
		TitleY:       60,
	}
}

// InnerWidth is the plotting width between the paddings.
func (o ChartOptions) InnerWidth() float64 {
	return o.Width - o.LeftPadding - o.RightPadding
}

// InnerHeight is the plotting height below the top padding.
func (o ChartOptions) InnerHeight() float64 {
	return o.Height - o.TopPadding - 5
}

// ChartRenderer draws one bar per county on a shared linear value scale,
// plus the background, frame, axis and title. A ChartRenderer is not safe
// for concurrent use.
type ChartRenderer struct {
	opts    ChartOptions
	printer *message.Printer
}

// NewChartRenderer returns a renderer with the given layout.
func NewChartRenderer(opts ChartOptions) *ChartRenderer {
	if opts.DomainMode == "" {
		opts.DomainMode = DomainFixed
	}
	return &ChartRenderer{
		opts:    opts,
		printer: message.NewPrinter(language.English),
	}
}

// Options returns the chart layout.
func (r *ChartRenderer) Options() ChartOptions {
	return r.opts
}

// BarID is the element ID of a county's bar.
func BarID(c *model.County) string {
	return "bar-" + c.Selector
}

// Title returns the chart title for attr; unrecognized attributes have an
// empty title.
func Title(attr model.Attribute) string {
	l, _ := attr.Label()
	return l
}

// Domain returns the upper bound of the value scale for v.
func (r *ChartRenderer) Domain(v View) float64 {
	if r.opts.DomainMode != DomainDynamic {
		return r.opts.DomainMax
	}
	var hi float64
	for _, c := range v.Counties {
		if f, ok := c.Value(v.Attribute).Float(); ok && f > hi {
			hi = f
		}
	}
	if hi <= 0 {
		return r.opts.DomainMax
	}
	return niceCeil(hi)
}

// BarHeight maps a value onto the scale's pixel range, clamped to the
// plotting area. Missing values have zero height.
func (r *ChartRenderer) BarHeight(v model.Value, domain float64) float64 {
	f, ok := v.Float()
	if !ok || domain <= 0 {
		return 0
	}
	h := r.opts.InnerHeight() * f / domain
	return math.Max(0, math.Min(h, r.opts.InnerHeight()))
}

// Render returns the commands that draw the whole chart for v.
func (r *ChartRenderer) Render(v View) []Command {
	o := r.opts
	translate := "translate(" + num(o.LeftPadding) + "," + num(o.TopPadding) + ")"

	cmds := []Command{
		{
			Op: OpCreate, Surface: SurfaceChart, ID: "chart", Element: "svg",
			Attrs: map[string]string{"class": "chart", "width": num(o.Width), "height": num(o.Height)},
		},
		{
			Op: OpCreate, Surface: SurfaceChart, ID: "chartBackground", Element: "rect",
			Attrs: map[string]string{
				"class":     "chartBackground",
				"width":     num(o.InnerWidth()),
				"height":    num(o.InnerHeight()),
				"transform": translate,
			},
			Style: map[string]string{"fill": "#f5f5f5"},
		},
	}

	domain := r.Domain(v)
	for i, b := range r.bars(v, domain) {
		c := b.county
		cmds = append(cmds, Command{
			Op: OpCreate, Surface: SurfaceChart, ID: BarID(c), Element: "rect",
			Attrs: map[string]string{
				"class":     "bars " + c.Selector,
				"x":         num(b.x),
				"y":         num(b.y),
				"width":     num(b.width),
				"height":    num(b.height),
				"data-rank": strconv.Itoa(i),
			},
			Style: map[string]string{
				"fill":         v.Scale.Fill(c),
				"stroke":       c.BarStroke.Color,
				"stroke-width": c.BarStroke.Width,
			},
		})
	}

	cmds = append(cmds, Command{
		Op: OpCreate, Surface: SurfaceChart, ID: "chartTitle", Element: "text",
		Attrs: map[string]string{"class": "chartTitle", "x": num(o.TitleX), "y": num(o.TitleY)},
		Text:  textPtr(Title(v.Attribute)),
	})

	cmds = append(cmds, r.axis(domain)...)

	cmds = append(cmds, Command{
		Op: OpCreate, Surface: SurfaceChart, ID: "chartFrame", Element: "rect",
		Attrs: map[string]string{
			"class":     "chartFrame",
			"width":     num(o.InnerWidth()),
			"height":    num(o.InnerHeight()),
			"transform": translate,
		},
		Style: map[string]string{"fill": "none", "stroke": "#999", "stroke-width": "1px"},
	})
	return cmds
}

// Update re-sorts, resizes and recolors every bar for v, staggering the
// transitions by sorted position, and retitles the chart. prev is the view
// currently on screen; in dynamic domain mode the axis is rebuilt when the
// domain differs from prev's.
func (r *ChartRenderer) Update(prev, v View) []Command {
	domain := r.Domain(v)
	bars := r.bars(v, domain)

	cmds := make([]Command, 0, len(bars)+1)
	for i, b := range bars {
		cmds = append(cmds, Command{
			Op: OpUpdate, Surface: SurfaceChart, ID: BarID(b.county),
			Attrs: map[string]string{
				"x":         num(b.x),
				"y":         num(b.y),
				"width":     num(b.width),
				"height":    num(b.height),
				"data-rank": strconv.Itoa(i),
			},
			Style: map[string]string{"fill": v.Scale.Fill(b.county)},
			Transition: &Transition{
				Delay:    time.Duration(i) * BarStagger,
				Duration: BarDuration,
			},
		})
	}

	cmds = append(cmds, Command{
		Op: OpUpdate, Surface: SurfaceChart, ID: "chartTitle",
		Text: textPtr(Title(v.Attribute)),
	})

	if r.opts.DomainMode != DomainDynamic {
		return cmds
	}
	if old := r.Domain(prev); old != domain {
		for i := range tickValues(old) {
			cmds = append(cmds,
				Command{Op: OpRemove, Surface: SurfaceChart, ID: tickLineID(i)},
				Command{Op: OpRemove, Surface: SurfaceChart, ID: tickLabelID(i)},
			)
		}
		cmds = append(cmds, r.ticksFor(domain)...)
	}
	return cmds
}

type bar struct {
	county              *model.County
	x, y, width, height float64
}

func (r *ChartRenderer) bars(v View, domain float64) []bar {
	o := r.opts
	sorted := SortCounties(v.Counties, v.Attribute)
	n := float64(len(sorted))
	if n == 0 {
		return nil
	}
	step := o.InnerWidth() / n
	width := math.Max(0, step-1)

	out := make([]bar, len(sorted))
	for i, c := range sorted {
		h := r.BarHeight(c.Value(v.Attribute), domain)
		if f, ok := c.Value(v.Attribute).Float(); ok && f > domain {
			zap.L().Warn("bar exceeds chart domain and is clipped",
				zap.String("county", c.FIPS),
				zap.String("attribute", v.Attribute.String()),
				zap.Float64("value", f),
				zap.Float64("domain", domain),
			)
		}
		out[i] = bar{
			county: c,
			x:      o.LeftPadding + float64(i)*step,
			y:      o.TopPadding + o.InnerHeight() - h,
			width:  width,
			height: h,
		}
	}
	return out
}

// axis draws the vertical axis line plus ticks for domain.
func (r *ChartRenderer) axis(domain float64) []Command {
	o := r.opts
	x := num(o.LeftPadding)
	cmds := []Command{{
		Op: OpCreate, Surface: SurfaceChart, ID: "axis", Element: "path",
		Attrs: map[string]string{
			"class": "axis",
			"d":     "M" + x + "," + num(o.TopPadding) + "V" + num(o.TopPadding+o.InnerHeight()),
		},
		Style: map[string]string{"fill": "none", "stroke": "#000", "stroke-width": "1px"},
	}}
	return append(cmds, r.ticksFor(domain)...)
}

// tickValues lists the major tick values of an axis over [0, domain].
func tickValues(domain float64) []float64 {
	if domain <= 0 {
		return nil
	}
	var ticker plot.DefaultTicks
	var out []float64
	for _, t := range ticker.Ticks(0, domain) {
		if t.IsMinor() || t.Value < 0 || t.Value > domain {
			continue
		}
		out = append(out, t.Value)
	}
	return out
}

func (r *ChartRenderer) ticksFor(domain float64) []Command {
	o := r.opts
	var cmds []Command
	for n, t := range tickValues(domain) {
		y := o.TopPadding + o.InnerHeight() - o.InnerHeight()*t/domain
		cmds = append(cmds,
			Command{
				Op: OpCreate, Surface: SurfaceChart, ID: tickLineID(n), Element: "path",
				Attrs: map[string]string{
					"class": "axis tick",
					"d":     "M" + num(o.LeftPadding-6) + "," + num(y) + "H" + num(o.LeftPadding),
				},
				Style: map[string]string{"stroke": "#000", "stroke-width": "1px"},
			},
			Command{
				Op: OpCreate, Surface: SurfaceChart, ID: tickLabelID(n), Element: "text",
				Attrs: map[string]string{
					"class":       "axis label",
					"x":           num(o.LeftPadding - 9),
					"y":           num(y + 3),
					"text-anchor": "end",
					"font-size":   "10",
				},
				Text: textPtr(r.printer.Sprintf("%d", int64(math.Round(t)))),
			},
		)
	}
	return cmds
}

func tickLineID(i int) string  { return "axis-tick-" + strconv.Itoa(i) }
func tickLabelID(i int) string { return "axis-label-" + strconv.Itoa(i) }

// niceCeil rounds v up to one significant step: 1, 2, 2.5 or 5 times a
// power of ten.
func niceCeil(v float64) float64 {
	p := math.Pow(10, math.Floor(math.Log10(v)))
	for _, m := range []float64{1, 2, 2.5, 5, 10} {
		if m*p >= v {
			return m * p
		}
	}
	return 10 * p
}
