package render

import (
	"github.com/sells-group/housing-map/internal/model"
)

// DropdownTitle is the disabled first option of the attribute dropdown.
const DropdownTitle = "Select Attribute"

// Option is one entry of the attribute dropdown.
type Option struct {
	Value    string `json:"value"`
	Text     string `json:"text"`
	Disabled bool   `json:"disabled,omitempty"`
	Selected bool   `json:"selected,omitempty"`
}

// DropdownOptions lists the title option followed by every recognized
// attribute, marking selected.
func DropdownOptions(selected model.Attribute) []Option {
	opts := []Option{{Text: DropdownTitle, Disabled: true}}
	for _, a := range model.Attributes() {
		opts = append(opts, Option{Value: a.String(), Text: a.String(), Selected: a == selected})
	}
	return opts
}

// Dropdown returns the commands that build the attribute dropdown.
func Dropdown(selected model.Attribute) []Command {
	cmds := []Command{{
		Op: OpCreate, Surface: SurfacePage, ID: "dropdown", Element: "select",
		Attrs: map[string]string{"class": "dropdown"},
	}}
	for i, o := range DropdownOptions(selected) {
		attrs := map[string]string{"value": o.Value}
		id := "option-" + o.Value
		if i == 0 {
			attrs = map[string]string{"class": "titleOption", "disabled": "true"}
			id = "titleOption"
		}
		if o.Selected {
			attrs["selected"] = "true"
		}
		cmds = append(cmds, Command{
			Op: OpCreate, Surface: SurfacePage, ID: id, Element: "option",
			Attrs: attrs,
			Text:  textPtr(o.Text),
		})
	}
	return cmds
}
