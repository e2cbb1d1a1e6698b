package render

import (
	"sort"

	"github.com/sells-group/housing-map/internal/classify"
	"github.com/sells-group/housing-map/internal/model"
)

// View is everything a renderer reads for one selection state.
type View struct {
	Attribute model.Attribute
	Scale     classify.Scale
	Counties  []*model.County
	States    []*model.Feature
	Metros    []*model.Feature
}

// SortCounties returns counties ordered for the bar chart: descending by
// the value of attr, missing values last, ties broken by FIPS key so the
// order is deterministic. The input slice is not modified.
func SortCounties(counties []*model.County, attr model.Attribute) []*model.County {
	out := make([]*model.County, len(counties))
	copy(out, counties)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Value(attr), out[j].Value(attr)
		if a.Valid != b.Valid {
			return a.Valid
		}
		if a.Valid && a.N != b.N {
			return a.N > b.N
		}
		return out[i].FIPS < out[j].FIPS
	})
	return out
}
