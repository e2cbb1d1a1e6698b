package dataset

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"

	"github.com/sells-group/housing-map/internal/fetcher"
	"github.com/sells-group/housing-map/internal/model"
	"github.com/sells-group/housing-map/internal/topojson"
)

func (l *Loader) loadBoundaries(ctx context.Context, location, object string, kind model.FeatureKind) ([]*model.Feature, error) {
	switch ext := fetcher.Ext(location); ext {
	case ".shp", ".zip":
		path, cleanup, err := l.local(ctx, location)
		if err != nil {
			return nil, err
		}
		defer cleanup()
		if ext == ".zip" {
			dir, err := os.MkdirTemp(l.workDir, "shp-*")
			if err != nil {
				return nil, eris.Wrap(err, "create extract dir")
			}
			defer os.RemoveAll(dir) //nolint:errcheck
			files, err := fetcher.ExtractZIP(path, dir)
			if err != nil {
				return nil, err
			}
			shpPath, ok := fetcher.FindExt(files, ".shp")
			if !ok {
				return nil, eris.New("zip archive holds no .shp file")
			}
			path = shpPath
		}
		return readShapefile(path, kind)
	default:
		rc, err := l.router.Open(ctx, location)
		if err != nil {
			return nil, err
		}
		defer rc.Close() //nolint:errcheck
		return decodeJSONBoundaries(rc, object, kind)
	}
}

// decodeJSONBoundaries reads TopoJSON or GeoJSON, whichever the document's
// type says it is.
func decodeJSONBoundaries(r io.Reader, object string, kind model.FeatureKind) ([]*model.Feature, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, eris.Wrap(err, "read boundaries")
	}
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, eris.Wrap(err, "decode boundaries")
	}

	switch head.Type {
	case "Topology":
		topo, err := topojson.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		return topo.Features(object, kind)
	case "FeatureCollection":
		return decodeGeoJSON(data, kind)
	}
	return nil, eris.Errorf("unsupported boundary document type %q", head.Type)
}

func decodeGeoJSON(data []byte, kind model.FeatureKind) ([]*model.Feature, error) {
	var fc geojson.FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, eris.Wrap(err, "decode geojson")
	}

	out := make([]*model.Feature, 0, len(fc.Features))
	var skipped int
	for _, f := range fc.Features {
		switch f.Geometry.(type) {
		case *geom.Polygon, *geom.MultiPolygon, nil:
		default:
			skipped++
			continue
		}
		props := f.Properties
		if props == nil {
			props = map[string]any{}
		}
		out = append(out, &model.Feature{
			Kind:       kind,
			ID:         f.ID,
			Properties: props,
			Geometry:   f.Geometry,
		})
	}
	if skipped > 0 {
		zap.L().Debug("dataset: skipped non-areal geojson features",
			zap.String("kind", string(kind)), zap.Int("skipped", skipped))
	}
	return out, nil
}

// readShapefile reads polygon records and their DBF attributes.
func readShapefile(path string, kind model.FeatureKind) ([]*model.Feature, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "open shapefile %s", path)
	}
	defer func() { _ = reader.Close() }()

	fields := reader.Fields()
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = strings.TrimRight(f.String(), "\x00")
	}

	var out []*model.Feature
	var skipped int
	for reader.Next() {
		_, shape := reader.Shape()
		poly, ok := shape.(*shp.Polygon)
		if !ok {
			skipped++
			continue
		}
		g := polygonToMultiPolygon(poly)
		if g == nil {
			skipped++
			continue
		}

		props := make(map[string]any, len(names))
		for i, name := range names {
			props[name] = strings.TrimSpace(strings.TrimRight(reader.Attribute(i), "\x00"))
		}
		out = append(out, &model.Feature{Kind: kind, Properties: props, Geometry: g})
	}
	if err := reader.Err(); err != nil {
		return nil, eris.Wrapf(err, "read shapefile %s", path)
	}

	if skipped > 0 {
		zap.L().Debug("dataset: skipped shapefile records",
			zap.String("kind", string(kind)), zap.Int("skipped", skipped))
	}
	return out, nil
}

// polygonToMultiPolygon converts a shapefile polygon to a MultiPolygon with
// one polygon per part.
func polygonToMultiPolygon(p *shp.Polygon) *geom.MultiPolygon {
	if p == nil || p.NumParts == 0 || len(p.Points) == 0 {
		return nil
	}

	mp := geom.NewMultiPolygon(geom.XY)
	for i := int32(0); i < p.NumParts; i++ {
		start := p.Parts[i]
		end := int32(len(p.Points))
		if i+1 < p.NumParts {
			end = p.Parts[i+1]
		}
		if start < 0 || start >= end || end > int32(len(p.Points)) {
			continue
		}

		flat := make([]float64, 0, 2*(end-start))
		for j := start; j < end; j++ {
			flat = append(flat, p.Points[j].X, p.Points[j].Y)
		}

		poly := geom.NewPolygon(geom.XY)
		if err := poly.Push(geom.NewLinearRingFlat(geom.XY, flat)); err != nil {
			zap.L().Debug("dataset: skipping malformed polygon ring", zap.Int32("part", i), zap.Error(err))
			continue
		}
		if err := mp.Push(poly); err != nil {
			zap.L().Debug("dataset: skipping malformed polygon part", zap.Int32("part", i), zap.Error(err))
			continue
		}
	}

	if mp.NumPolygons() == 0 {
		return nil
	}
	return mp
}
