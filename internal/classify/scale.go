package classify

import (
	"sort"

	"github.com/sells-group/housing-map/internal/model"
)

// ClassCount is the number of color classes requested from Ckmeans.
const ClassCount = 5

// NoDataColor fills counties without a value for the selected attribute.
const NoDataColor = "#000000"

// Colors are the class colors, light to dark.
var Colors = []string{
	"#eff3ff",
	"#bdd7e7",
	"#6baed6",
	"#3182bd",
	"#08519c",
}

// Scale is a threshold color scale: Breaks B1 < B2 < ... split the line
// into half-open intervals (-inf, B1), [B1, B2), ..., [Bn, +inf).
type Scale struct {
	Attribute model.Attribute `json:"attribute"`
	Breaks    []float64       `json:"breaks"`
	Colors    []string        `json:"colors"`
}

// NewScale clusters the valid values of attr across joined counties and
// returns the resulting threshold scale. Missing values are not clustered.
func NewScale(counties []*model.County, attr model.Attribute) Scale {
	return Scale{
		Attribute: attr,
		Breaks:    Breaks(Domain(counties, attr), ClassCount),
		Colors:    Colors,
	}
}

// Domain collects the values of attr that take part in clustering.
func Domain(counties []*model.County, attr model.Attribute) []float64 {
	values := make([]float64, 0, len(counties))
	for _, c := range counties {
		if !c.Joined {
			continue
		}
		if v, ok := c.Value(attr).Float(); ok {
			values = append(values, v)
		}
	}
	return values
}

// Class returns the index of the interval containing v, which is the
// number of breakpoints <= v. A value equal to a breakpoint belongs to the
// higher class.
func (s Scale) Class(v float64) int {
	i := sort.Search(len(s.Breaks), func(i int) bool { return s.Breaks[i] > v })
	if i >= len(s.Colors) {
		i = len(s.Colors) - 1
	}
	return i
}

// Color returns the fill color for v.
func (s Scale) Color(v model.Value) string {
	f, ok := v.Float()
	if !ok || len(s.Colors) == 0 {
		return NoDataColor
	}
	return s.Colors[s.Class(f)]
}

// Fill returns the fill color of county c under s.
func (s Scale) Fill(c *model.County) string {
	return s.Color(c.Value(s.Attribute))
}
