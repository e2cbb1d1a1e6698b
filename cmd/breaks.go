package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/housing-map/internal/classify"
	"github.com/sells-group/housing-map/internal/join"
	"github.com/sells-group/housing-map/internal/model"
)

var (
	breaksAttribute string
	breaksFormat    string
)

var breaksCmd = &cobra.Command{
	Use:   "breaks",
	Short: "Print Ckmeans class breaks per attribute",
	Long:  "Loads and joins the dataset, then prints the natural-breaks thresholds, class colors and class sizes for one or every attribute.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("breaks"); err != nil {
			return err
		}
		attrs, err := attributesFlag(breaksAttribute)
		if err != nil {
			return err
		}

		ds, err := loadDataset(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		res := join.Join(ds.Counties, ds.Rows, joinOptions(cfg))

		reports := make([]breaksReport, 0, len(attrs))
		for _, a := range attrs {
			reports = append(reports, newBreaksReport(res.Counties, a))
		}
		return writeBreaks(cmd.OutOrStdout(), reports, breaksFormat)
	},
}

func init() {
	breaksCmd.Flags().StringVar(&breaksAttribute, "attribute", "", "attribute to classify (default all)")
	breaksCmd.Flags().StringVar(&breaksFormat, "format", "table", "output format: table, json or yaml")
	rootCmd.AddCommand(breaksCmd)
}

// attributesFlag parses an --attribute value; empty means every attribute.
func attributesFlag(name string) ([]model.Attribute, error) {
	if name == "" {
		return model.Attributes(), nil
	}
	a, err := model.ParseAttribute(name)
	if err != nil {
		return nil, err
	}
	return []model.Attribute{a}, nil
}

type classReport struct {
	Color string   `json:"color" yaml:"color"`
	From  *float64 `json:"from,omitempty" yaml:"from,omitempty"`
	To    *float64 `json:"to,omitempty" yaml:"to,omitempty"`
	Count int      `json:"count" yaml:"count"`
}

type breaksReport struct {
	Attribute string        `json:"attribute" yaml:"attribute"`
	Title     string        `json:"title" yaml:"title"`
	Values    int           `json:"values" yaml:"values"`
	Missing   int           `json:"missing" yaml:"missing"`
	Breaks    []float64     `json:"breaks" yaml:"breaks"`
	Classes   []classReport `json:"classes" yaml:"classes"`
}

func newBreaksReport(counties []*model.County, attr model.Attribute) breaksReport {
	scale := classify.NewScale(counties, attr)
	title, _ := attr.Label()
	r := breaksReport{
		Attribute: attr.String(),
		Title:     title,
		Breaks:    scale.Breaks,
	}
	if r.Breaks == nil {
		r.Breaks = []float64{}
	}

	// Classes that can receive values: one more than the breaks.
	n := len(scale.Breaks) + 1
	if len(classify.Domain(counties, attr)) == 0 {
		n = 0
	}
	r.Classes = make([]classReport, n)
	for i := range r.Classes {
		r.Classes[i].Color = scale.Colors[i]
		if i > 0 {
			r.Classes[i].From = &scale.Breaks[i-1]
		}
		if i < len(scale.Breaks) {
			r.Classes[i].To = &scale.Breaks[i]
		}
	}

	for _, c := range counties {
		f, ok := c.Value(attr).Float()
		if !ok || !c.Joined {
			r.Missing++
			continue
		}
		r.Values++
		r.Classes[scale.Class(f)].Count++
	}
	return r
}

func writeBreaks(w io.Writer, reports []breaksReport, format string) error {
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(reports), "encode json")
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(reports); err != nil {
			return eris.Wrap(err, "encode yaml")
		}
		return eris.Wrap(enc.Close(), "encode yaml")
	case "table", "":
		formatBreaks(w, reports)
		return nil
	}
	return eris.Errorf("unknown format %q (want table, json or yaml)", format)
}

// formatBreaks writes one block per attribute: a header line and one row
// per class.
func formatBreaks(out io.Writer, reports []breaksReport) {
	p := message.NewPrinter(language.English)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for i, r := range reports {
		if i > 0 {
			_, _ = fmt.Fprintln(w)
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t(%d values, %d missing)\n", r.Attribute, r.Title, r.Values, r.Missing)
		_, _ = fmt.Fprintln(w, "CLASS\tCOLOR\tRANGE\tCOUNTIES")
		for j, c := range r.Classes {
			_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%d\n", j, c.Color, classRange(p, c), c.Count)
		}
	}
	_ = w.Flush()
}

func classRange(p *message.Printer, c classReport) string {
	bound := func(v *float64) string {
		if v == nil {
			return ""
		}
		return p.Sprintf("%d", int64(math.Round(*v)))
	}
	switch {
	case c.From == nil && c.To == nil:
		return "all"
	case c.From == nil:
		return "< " + bound(c.To)
	case c.To == nil:
		return ">= " + bound(c.From)
	}
	return bound(c.From) + " to < " + bound(c.To)
}
