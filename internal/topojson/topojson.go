// Package topojson decodes TopoJSON topologies into polygon features.
// Quantized and unquantized topologies are supported; only areal
// geometries (Polygon, MultiPolygon and collections of them) are kept.
package topojson

import (
	"encoding/json"
	"io"
	"sort"
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"

	"github.com/sells-group/housing-map/internal/fetcher"
	"github.com/sells-group/housing-map/internal/model"
)

// ErrUnknownObject is returned when a named object is not in the topology.
var ErrUnknownObject = eris.New("topojson: unknown object")

// Transform maps quantized positions back to coordinates.
type Transform struct {
	Scale     [2]float64 `json:"scale"`
	Translate [2]float64 `json:"translate"`
}

// Topology is a decoded TopoJSON document.
type Topology struct {
	Type      string                     `json:"type"`
	Transform *Transform                 `json:"transform,omitempty"`
	Arcs      [][][]float64              `json:"arcs"`
	Objects   map[string]json.RawMessage `json:"objects"`

	coords [][]geom.Coord
}

// Geometry is one TopoJSON geometry object.
type Geometry struct {
	Type       string          `json:"type"`
	ID         any             `json:"id,omitempty"`
	Properties map[string]any  `json:"properties,omitempty"`
	Arcs       json.RawMessage `json:"arcs,omitempty"`
	Geometries []Geometry      `json:"geometries,omitempty"`
}

// Decode reads a topology from r.
func Decode(r io.Reader) (*Topology, error) {
	t, err := fetcher.DecodeJSONObject[Topology](r)
	if err != nil {
		return nil, eris.Wrap(err, "topojson: decode")
	}
	if t.Type != "Topology" {
		return nil, eris.Errorf("topojson: expected type Topology, got %q", t.Type)
	}
	return t, nil
}

// ObjectNames returns the topology's object names in sorted order.
func (t *Topology) ObjectNames() []string {
	names := make([]string, 0, len(t.Objects))
	for k := range t.Objects {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Features converts the named object into features of kind. An empty name
// selects the first object by name.
func (t *Topology) Features(object string, kind model.FeatureKind) ([]*model.Feature, error) {
	if object == "" {
		names := t.ObjectNames()
		if len(names) == 0 {
			return nil, eris.New("topojson: topology has no objects")
		}
		object = names[0]
		if len(names) > 1 {
			zap.L().Debug("topojson: no object named, using first",
				zap.String("object", object), zap.Strings("objects", names))
		}
	}
	raw, ok := t.Objects[object]
	if !ok {
		return nil, eris.Wrapf(ErrUnknownObject, "%q (have %v)", object, t.ObjectNames())
	}

	var g Geometry
	if err := json.Unmarshal(raw, &g); err != nil {
		return nil, eris.Wrapf(err, "topojson: decode object %q", object)
	}

	t.decodeArcs()
	var out []*model.Feature
	if err := t.collect(g, kind, &out); err != nil {
		return nil, eris.Wrapf(err, "topojson: object %q", object)
	}
	return out, nil
}

func (t *Topology) collect(g Geometry, kind model.FeatureKind, out *[]*model.Feature) error {
	if g.Type == "GeometryCollection" {
		for _, child := range g.Geometries {
			if err := t.collect(child, kind, out); err != nil {
				return err
			}
		}
		return nil
	}

	shape, err := t.geometry(g)
	if err != nil {
		return err
	}
	props := g.Properties
	if props == nil {
		props = map[string]any{}
	}
	*out = append(*out, &model.Feature{
		Kind:       kind,
		ID:         idString(g.ID),
		Properties: props,
		Geometry:   shape,
	})
	return nil
}

func (t *Topology) geometry(g Geometry) (geom.T, error) {
	switch g.Type {
	case "Polygon":
		var arcs [][]int
		if err := json.Unmarshal(g.Arcs, &arcs); err != nil {
			return nil, eris.Wrap(err, "decode polygon arcs")
		}
		rings, err := t.rings(arcs)
		if err != nil {
			return nil, err
		}
		p, err := geom.NewPolygon(geom.XY).SetCoords(rings)
		if err != nil {
			return nil, eris.Wrap(err, "build polygon")
		}
		return p, nil
	case "MultiPolygon":
		var arcs [][][]int
		if err := json.Unmarshal(g.Arcs, &arcs); err != nil {
			return nil, eris.Wrap(err, "decode multipolygon arcs")
		}
		polys := make([][][]geom.Coord, 0, len(arcs))
		for _, poly := range arcs {
			rings, err := t.rings(poly)
			if err != nil {
				return nil, err
			}
			polys = append(polys, rings)
		}
		mp, err := geom.NewMultiPolygon(geom.XY).SetCoords(polys)
		if err != nil {
			return nil, eris.Wrap(err, "build multipolygon")
		}
		return mp, nil
	case "", "null":
		return nil, nil
	}
	return nil, eris.Errorf("unsupported geometry type %q", g.Type)
}

func (t *Topology) rings(arcs [][]int) ([][]geom.Coord, error) {
	rings := make([][]geom.Coord, 0, len(arcs))
	for _, ring := range arcs {
		r, err := t.ring(ring)
		if err != nil {
			return nil, err
		}
		rings = append(rings, r)
	}
	return rings, nil
}

// ring stitches arcs together. A negative index ~i is arc i reversed; each
// arc after the first repeats the previous arc's last point, which is
// dropped.
func (t *Topology) ring(indexes []int) ([]geom.Coord, error) {
	var out []geom.Coord
	for n, idx := range indexes {
		reversed := idx < 0
		if reversed {
			idx = ^idx
		}
		if idx >= len(t.coords) {
			return nil, eris.Errorf("arc index %d out of range (%d arcs)", idx, len(t.coords))
		}
		arc := t.coords[idx]
		if n > 0 && len(out) > 0 {
			out = out[:len(out)-1]
		}
		if reversed {
			for i := len(arc) - 1; i >= 0; i-- {
				out = append(out, arc[i])
			}
		} else {
			out = append(out, arc...)
		}
	}
	return out, nil
}

// decodeArcs applies delta decoding and the transform once per topology.
func (t *Topology) decodeArcs() {
	if t.coords != nil {
		return
	}
	t.coords = make([][]geom.Coord, len(t.Arcs))
	for i, arc := range t.Arcs {
		coords := make([]geom.Coord, 0, len(arc))
		var x, y float64
		for _, p := range arc {
			if len(p) < 2 {
				continue
			}
			if t.Transform == nil {
				coords = append(coords, geom.Coord{p[0], p[1]})
				continue
			}
			x += p[0]
			y += p[1]
			coords = append(coords, geom.Coord{
				x*t.Transform.Scale[0] + t.Transform.Translate[0],
				y*t.Transform.Scale[1] + t.Transform.Translate[1],
			})
		}
		t.coords[i] = coords
	}
}

func idString(id any) string {
	switch v := id.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return ""
}
