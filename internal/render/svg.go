package render

import (
	"html"
	"io"
	"sort"
	"strconv"
	"strings"

	svg "github.com/ajstarks/svgo/float"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Element is a drawn shape in a Document.
type Element struct {
	ID    string
	Name  string
	Attrs map[string]string
	Style map[string]string
	Text  string
}

// Document is a static rendering surface: it applies commands for one
// surface in order and writes the resulting SVG. Transitions are not
// animated; every update lands on its end state.
type Document struct {
	surface string
	root    *Element
	order   []*Element
	byID    map[string]*Element
}

// NewDocument returns an empty document for surface (SurfaceMap or
// SurfaceChart).
func NewDocument(surface string) *Document {
	return &Document{
		surface: surface,
		byID:    make(map[string]*Element),
	}
}

// Apply applies the commands addressed to the document's surface.
// Updating or removing an unknown element is an error.
func (d *Document) Apply(cmds []Command) error {
	for _, c := range cmds {
		if c.Surface != d.surface {
			continue
		}
		switch c.Op {
		case OpCreate:
			d.create(c)
		case OpUpdate:
			el, ok := d.byID[c.ID]
			if !ok {
				return eris.Errorf("render: update of unknown element %q", c.ID)
			}
			for k, v := range c.Attrs {
				el.Attrs[k] = v
			}
			for k, v := range c.Style {
				el.Style[k] = v
			}
			if c.Text != nil {
				el.Text = *c.Text
			}
		case OpRemove:
			if _, ok := d.byID[c.ID]; !ok {
				return eris.Errorf("render: remove of unknown element %q", c.ID)
			}
			d.remove(c.ID)
		default:
			return eris.Errorf("render: unknown op %q", c.Op)
		}
	}
	return nil
}

func (d *Document) create(c Command) {
	el := &Element{
		ID:    c.ID,
		Name:  c.Element,
		Attrs: copyMap(c.Attrs),
		Style: copyMap(c.Style),
	}
	if c.Text != nil {
		el.Text = *c.Text
	}
	if c.Element == "svg" {
		d.root = el
		d.byID[c.ID] = el
		return
	}
	if _, ok := d.byID[c.ID]; ok {
		d.remove(c.ID)
	}
	d.byID[c.ID] = el
	d.order = append(d.order, el)
}

func (d *Document) remove(id string) {
	delete(d.byID, id)
	for i, el := range d.order {
		if el.ID == id {
			d.order = append(d.order[:i], d.order[i+1:]...)
			return
		}
	}
}

// Element returns the element with id.
func (d *Document) Element(id string) (Element, bool) {
	el, ok := d.byID[id]
	if !ok {
		return Element{}, false
	}
	return *el, true
}

// Elements returns the drawn elements in paint order, root excluded.
func (d *Document) Elements() []Element {
	out := make([]Element, len(d.order))
	for i, el := range d.order {
		out[i] = *el
	}
	return out
}

// WriteSVG writes the document as a standalone SVG.
func (d *Document) WriteSVG(w io.Writer) error {
	if d.root == nil {
		return eris.Errorf("render: %s document has no root element", d.surface)
	}
	canvas := svg.New(w)
	width := floatAttr(d.root.Attrs, "width")
	height := floatAttr(d.root.Attrs, "height")
	canvas.Start(width, height, attrList(d.root, "width", "height")...)

	for _, el := range d.order {
		switch el.Name {
		case "path":
			canvas.Path(el.Attrs["d"], attrList(el, "d")...)
		case "rect":
			canvas.Rect(
				floatAttr(el.Attrs, "x"), floatAttr(el.Attrs, "y"),
				floatAttr(el.Attrs, "width"), floatAttr(el.Attrs, "height"),
				attrList(el, "x", "y", "width", "height")...,
			)
		case "text":
			canvas.Text(floatAttr(el.Attrs, "x"), floatAttr(el.Attrs, "y"), el.Text, attrList(el, "x", "y")...)
		default:
			zap.L().Debug("render: skipping element svg cannot draw",
				zap.String("id", el.ID), zap.String("element", el.Name))
		}
	}
	canvas.End()
	return nil
}

// attrList renders the element's id, remaining attributes and style as
// raw name="value" strings, which svgo writes verbatim.
func attrList(el *Element, skip ...string) []string {
	skipped := make(map[string]bool, len(skip))
	for _, s := range skip {
		skipped[s] = true
	}
	out := []string{`id="` + html.EscapeString(el.ID) + `"`}
	for _, k := range sortedKeys(el.Attrs) {
		if skipped[k] {
			continue
		}
		out = append(out, k+`="`+html.EscapeString(el.Attrs[k])+`"`)
	}
	if len(el.Style) > 0 {
		parts := make([]string, 0, len(el.Style))
		for _, k := range sortedKeys(el.Style) {
			parts = append(parts, k+":"+el.Style[k])
		}
		out = append(out, `style="`+html.EscapeString(strings.Join(parts, ";"))+`"`)
	}
	return out
}

func floatAttr(attrs map[string]string, name string) float64 {
	v, err := strconv.ParseFloat(attrs[name], 64)
	if err != nil {
		return 0
	}
	return v
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func copyMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
