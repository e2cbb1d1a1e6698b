// Package dataset loads the county table and the three boundary layers
// the map draws.
package dataset

import (
	"context"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/housing-map/internal/fetcher"
	"github.com/sells-group/housing-map/internal/model"
)

// Sources locates the four inputs. Locations are local paths, file://,
// http(s):// or ftp:// URLs. The *Object fields name the TopoJSON object
// to read; empty selects the first.
type Sources struct {
	Table    string
	Counties string
	States   string
	Metros   string

	CountiesObject string
	StatesObject   string
	MetrosObject   string
}

// Dataset is the loaded input: tabular rows plus the county, state and
// metro boundary features.
type Dataset struct {
	Rows     []model.CountyRow
	Counties []*model.Feature
	States   []*model.Feature
	Metros   []*model.Feature
}

// Loader fetches and decodes dataset inputs.
type Loader struct {
	router  *fetcher.Router
	table   TableOptions
	workDir string
}

// Option configures a Loader.
type Option func(*Loader)

// WithTableOptions sets the source column names of the table.
func WithTableOptions(o TableOptions) Option {
	return func(l *Loader) { l.table = o }
}

// WithWorkDir sets where downloads and extracted archives are staged.
// The default is the system temp dir.
func WithWorkDir(dir string) Option {
	return func(l *Loader) { l.workDir = dir }
}

// NewLoader returns a loader reading through router.
func NewLoader(router *fetcher.Router, opts ...Option) *Loader {
	l := &Loader{router: router}
	for _, o := range opts {
		o(l)
	}
	return l
}

// Load fetches all four inputs concurrently. It returns only when all of
// them are decoded; the first failure cancels the rest and is returned as
// a *LoadError.
func (l *Loader) Load(ctx context.Context, src Sources) (*Dataset, error) {
	log := zap.L().With(zap.String("component", "dataset"))
	start := time.Now()

	var ds Dataset
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		rows, err := l.loadTable(gctx, src.Table)
		ds.Rows = rows
		return loadErr(SourceTable, src.Table, err)
	})
	g.Go(func() error {
		feats, err := l.loadBoundaries(gctx, src.Counties, src.CountiesObject, model.KindCounty)
		ds.Counties = feats
		return loadErr(SourceCounties, src.Counties, err)
	})
	g.Go(func() error {
		feats, err := l.loadBoundaries(gctx, src.States, src.StatesObject, model.KindState)
		ds.States = feats
		return loadErr(SourceStates, src.States, err)
	})
	g.Go(func() error {
		feats, err := l.loadBoundaries(gctx, src.Metros, src.MetrosObject, model.KindMetro)
		ds.Metros = feats
		return loadErr(SourceMetros, src.Metros, err)
	})

	if err := g.Wait(); err != nil {
		log.Error("dataset load failed", zap.Error(err))
		return nil, err
	}

	log.Info("dataset loaded",
		zap.Int("rows", len(ds.Rows)),
		zap.Int("counties", len(ds.Counties)),
		zap.Int("states", len(ds.States)),
		zap.Int("metros", len(ds.Metros)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return &ds, nil
}

// local returns a path on disk for location, downloading it into a
// scratch directory when remote. cleanup removes the scratch directory.
func (l *Loader) local(ctx context.Context, location string) (string, func(), error) {
	if !l.router.IsRemote(location) {
		p, err := fetcher.LocalPath(location)
		return p, func() {}, err
	}
	dir, err := os.MkdirTemp(l.workDir, "fetch-*")
	if err != nil {
		return "", nil, eris.Wrap(err, "create download dir")
	}
	cleanup := func() { _ = os.RemoveAll(dir) }
	path, err := l.router.Fetch(ctx, location, dir)
	if err != nil {
		cleanup()
		return "", nil, err
	}
	return path, cleanup, nil
}
