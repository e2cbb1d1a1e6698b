// Package projection maps lon/lat boundary geometry to screen coordinates.
package projection

import (
	"math"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
)

const (
	deg2rad = math.Pi / 180
	// Latitudes are clamped short of the poles, where Mercator diverges.
	maxLat = 85.0511287798066
)

// Mercator is a spherical Mercator projection configured by a geographic
// center, a scale in pixels per radian, and the screen point the center
// lands on.
type Mercator struct {
	CenterLon, CenterLat float64
	Scale                float64
	TranslateX           float64
	TranslateY           float64

	cx, cy float64
}

// NewMercator returns a projection that places (centerLon, centerLat) at
// (tx, ty) with the given scale.
func NewMercator(centerLon, centerLat, scale, tx, ty float64) *Mercator {
	m := &Mercator{
		CenterLon:  centerLon,
		CenterLat:  centerLat,
		Scale:      scale,
		TranslateX: tx,
		TranslateY: ty,
	}
	m.cx, m.cy = raw(centerLon, centerLat)
	return m
}

// FitExtent returns a projection that fits bounds (lon/lat) inside a
// width x height box with padding pixels on each side.
func FitExtent(bounds *geom.Bounds, width, height, padding float64) (*Mercator, error) {
	if bounds == nil || bounds.IsEmpty() {
		return nil, eris.New("projection: empty bounds")
	}
	x0, y0 := raw(bounds.Min(0), bounds.Min(1))
	x1, y1 := raw(bounds.Max(0), bounds.Max(1))
	dx, dy := x1-x0, y1-y0
	w, h := width-2*padding, height-2*padding
	if w <= 0 || h <= 0 {
		return nil, eris.Errorf("projection: extent %vx%v leaves no room for padding %v", width, height, padding)
	}

	var k float64
	switch {
	case dx == 0 && dy == 0:
		k = 1
	case dx == 0:
		k = h / dy
	case dy == 0:
		k = w / dx
	default:
		k = math.Min(w/dx, h/dy)
	}

	centerLon := (bounds.Min(0) + bounds.Max(0)) / 2
	centerLat := inverseLat((y0 + y1) / 2)
	return NewMercator(centerLon, centerLat, k, width/2, height/2), nil
}

// Project maps lon/lat degrees to screen x, y.
func (m *Mercator) Project(lon, lat float64) (float64, float64) {
	x, y := raw(lon, lat)
	return m.TranslateX + m.Scale*(x-m.cx), m.TranslateY - m.Scale*(y-m.cy)
}

func raw(lon, lat float64) (float64, float64) {
	lat = math.Max(-maxLat, math.Min(maxLat, lat))
	phi := lat * deg2rad
	return lon * deg2rad, math.Log(math.Tan(math.Pi/4 + phi/2))
}

func inverseLat(y float64) float64 {
	return (2*math.Atan(math.Exp(y)) - math.Pi/2) / deg2rad
}

// PathData renders a Polygon or MultiPolygon as SVG path data: one closed
// subpath per ring. Other geometry types yield an empty string.
func (m *Mercator) PathData(g geom.T) string {
	var sb strings.Builder
	switch t := g.(type) {
	case *geom.Polygon:
		m.writePolygon(&sb, t)
	case *geom.MultiPolygon:
		for i := 0; i < t.NumPolygons(); i++ {
			m.writePolygon(&sb, t.Polygon(i))
		}
	}
	return sb.String()
}

func (m *Mercator) writePolygon(sb *strings.Builder, p *geom.Polygon) {
	for r := 0; r < p.NumLinearRings(); r++ {
		ring := p.LinearRing(r)
		n := ring.NumCoords()
		if n == 0 {
			continue
		}
		for i := 0; i < n; i++ {
			c := ring.Coord(i)
			x, y := m.Project(c.X(), c.Y())
			if i == 0 {
				sb.WriteByte('M')
			} else {
				sb.WriteByte('L')
			}
			sb.WriteString(formatCoord(x))
			sb.WriteByte(',')
			sb.WriteString(formatCoord(y))
		}
		sb.WriteByte('Z')
	}
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}
