package model

import (
	"github.com/rotisserie/eris"
)

// Attribute names one of the numeric housing metrics carried per county.
type Attribute string

// Recognized attributes, in dropdown order.
const (
	AttrZHVIAll      Attribute = "2018_ZHVI_ALL"
	AttrZHVISFR      Attribute = "2018_ZHVI_SFR"
	AttrZHVICondo    Attribute = "2018_ZHVI_CONDO"
	AttrMedValSqFt   Attribute = "2018_MED_VAL_SF"
	AttrPctIncreased Attribute = "2018_PCT_HOMES_INC_VAL"
	AttrPctDecreased Attribute = "2018_PCT_HOMES_DEC_VAL"
)

// DefaultAttribute is selected on initial load.
const DefaultAttribute = AttrZHVIAll

// ErrInvalidAttribute is returned when a name is not a recognized attribute.
var ErrInvalidAttribute = eris.New("invalid attribute")

var attributes = []Attribute{
	AttrZHVIAll,
	AttrZHVISFR,
	AttrZHVICondo,
	AttrMedValSqFt,
	AttrPctIncreased,
	AttrPctDecreased,
}

var attributeLabels = map[Attribute]string{
	AttrZHVIAll:      "2018 Average ZHVI (All Homes)",
	AttrZHVISFR:      "2018 Average ZHVI (Single Family Residences)",
	AttrZHVICondo:    "2018 Average ZHVI (Condominiums)",
	AttrMedValSqFt:   "2018 Median Home Value per Square Foot",
	AttrPctIncreased: "2018 Percent of Homes Increased in Value",
	AttrPctDecreased: "2018 Percent of Homes Decreased in Value",
}

// Attributes returns the recognized attributes in dropdown order.
// The returned slice is a copy.
func Attributes() []Attribute {
	out := make([]Attribute, len(attributes))
	copy(out, attributes)
	return out
}

// ParseAttribute validates name against the recognized set.
func ParseAttribute(name string) (Attribute, error) {
	a := Attribute(name)
	if !a.Valid() {
		return "", eris.Wrapf(ErrInvalidAttribute, "model: %q", name)
	}
	return a, nil
}

// Valid reports whether a is one of the recognized attributes.
func (a Attribute) Valid() bool {
	_, ok := attributeLabels[a]
	return ok
}

// Label returns the human-readable chart title for a. Unrecognized
// attributes have no label.
func (a Attribute) Label() (string, bool) {
	l, ok := attributeLabels[a]
	if !ok {
		return "", false
	}
	return l, true
}

func (a Attribute) String() string {
	return string(a)
}
