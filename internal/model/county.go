// Package model defines the county, boundary and attribute types shared by
// the loader, joiner, classifier and renderers.
package model

import (
	"strconv"
	"strings"

	"github.com/twpayne/go-geom"
)

// Value is an integer attribute value. Valid is false for the missing
// sentinel (unjoined county, empty or non-numeric source cell).
type Value struct {
	N     int64 `json:"n"`
	Valid bool  `json:"valid"`
}

// Missing is the "no value" sentinel.
var Missing = Value{}

// Int returns a valid Value holding n.
func Int(n int64) Value {
	return Value{N: n, Valid: true}
}

// Float returns the value as float64 and whether it is present.
func (v Value) Float() (float64, bool) {
	return float64(v.N), v.Valid
}

func (v Value) String() string {
	if !v.Valid {
		return "No data"
	}
	return strconv.FormatInt(v.N, 10)
}

// ParseValue parses s the way the source spreadsheet values are read:
// surrounding space is trimmed, an optional sign and leading digits are
// taken, and anything after them (a fraction, a unit) is ignored. Empty or
// non-numeric input yields Missing.
func ParseValue(s string) Value {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return Missing
	}
	n, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil {
		return Missing
	}
	return Int(n)
}

// Stroke is a per-shape stroke style record.
type Stroke struct {
	Color string `json:"stroke"`
	Width string `json:"stroke_width"`
}

// Default and highlight strokes.
var (
	CountyStroke    = Stroke{Color: "#000", Width: "1px"}
	BarStroke       = Stroke{Color: "none", Width: "0px"}
	HighlightStroke = Stroke{Color: "yellow", Width: "6"}
)

// CountyRow is one row of the tabular dataset. Attribute cells are kept as
// raw strings; parsing happens in the joiner.
type CountyRow struct {
	FIPS     string `csv:"CountyFIPS"`
	Selector string `csv:"NAMELSAD_MIN"`
	Name     string `csv:"NAMELSAD"`

	ZHVIAll      string `csv:"2018_ZHVI_ALL"`
	ZHVISFR      string `csv:"2018_ZHVI_SFR"`
	ZHVICondo    string `csv:"2018_ZHVI_CONDO"`
	MedValSqFt   string `csv:"2018_MED_VAL_SF"`
	PctIncreased string `csv:"2018_PCT_HOMES_INC_VAL"`
	PctDecreased string `csv:"2018_PCT_HOMES_DEC_VAL"`
}

// Canonical tabular column names.
const (
	ColumnFIPS     = "CountyFIPS"
	ColumnSelector = "NAMELSAD_MIN"
	ColumnName     = "NAMELSAD"
)

// Raw returns the unparsed cell for attribute a.
func (r *CountyRow) Raw(a Attribute) string {
	if p := r.cell(string(a)); p != nil {
		return *p
	}
	return ""
}

// Set assigns the cell for a canonical column name. It reports false for
// columns the row does not carry.
func (r *CountyRow) Set(column, value string) bool {
	p := r.cell(column)
	if p == nil {
		return false
	}
	*p = value
	return true
}

func (r *CountyRow) cell(column string) *string {
	switch column {
	case ColumnFIPS:
		return &r.FIPS
	case ColumnSelector:
		return &r.Selector
	case ColumnName:
		return &r.Name
	case string(AttrZHVIAll):
		return &r.ZHVIAll
	case string(AttrZHVISFR):
		return &r.ZHVISFR
	case string(AttrZHVICondo):
		return &r.ZHVICondo
	case string(AttrMedValSqFt):
		return &r.MedValSqFt
	case string(AttrPctIncreased):
		return &r.PctIncreased
	case string(AttrPctDecreased):
		return &r.PctDecreased
	}
	return nil
}

// FeatureKind distinguishes the three boundary layers.
type FeatureKind string

// Boundary layers.
const (
	KindCounty FeatureKind = "county"
	KindState  FeatureKind = "state"
	KindMetro  FeatureKind = "metro"
)

// Feature is a boundary polygon with its property mapping. Geometry is a
// *geom.Polygon or *geom.MultiPolygon in lon/lat.
type Feature struct {
	Kind       FeatureKind
	ID         string
	Properties map[string]any
	Geometry   geom.T
}

// Prop returns property name as a string. Whole-number floats (as decoded
// from JSON) are printed without a fraction.
func (f *Feature) Prop(name string) string {
	v, ok := f.Properties[name]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	}
	return ""
}

// County is the joined view of one county: boundary geometry plus the
// attribute values of its tabular row.
type County struct {
	FIPS     string
	Name     string
	Selector string
	Joined   bool
	Values   map[Attribute]Value
	Geometry geom.T

	MapStroke Stroke
	BarStroke Stroke
}

// Value returns the county's value for a, or Missing.
func (c *County) Value(a Attribute) Value {
	if c == nil || c.Values == nil {
		return Missing
	}
	return c.Values[a]
}
