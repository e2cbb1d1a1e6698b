package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"

	"github.com/sells-group/housing-map/internal/config"
	"github.com/sells-group/housing-map/internal/dataset"
	"github.com/sells-group/housing-map/internal/fetcher"
	"github.com/sells-group/housing-map/internal/interact"
	"github.com/sells-group/housing-map/internal/join"
	"github.com/sells-group/housing-map/internal/projection"
	"github.com/sells-group/housing-map/internal/render"
	"github.com/sells-group/housing-map/internal/selection"
)

// appEnv is the loaded, joined and wired view shared by the commands.
type appEnv struct {
	Dataset    *dataset.Dataset
	Join       join.Result
	Controller *selection.Controller
	Layer      *interact.Layer
	Map        *render.MapRenderer
	Chart      *render.ChartRenderer
}

// loadDataset fetches the four inputs named by c.
func loadDataset(ctx context.Context, c *config.Config) (*dataset.Dataset, error) {
	router := fetcher.NewRouter(fetcher.Options{
		UserAgent: c.Fetch.UserAgent,
		Timeout:   time.Duration(c.Fetch.TimeoutSecs) * time.Second,
		RateLimit: c.Fetch.RateLimit,
	})
	loader := dataset.NewLoader(router,
		dataset.WithTableOptions(dataset.TableOptions{
			KeyColumn:      c.Data.KeyColumn,
			SelectorColumn: c.Data.SelectorColumn,
			NameColumn:     c.Data.NameColumn,
			Sheet:          c.Data.Sheet,
		}),
		dataset.WithWorkDir(c.Data.WorkDir),
	)
	return loader.Load(ctx, dataset.Sources{
		Table:          c.Data.Table,
		Counties:       c.Data.Counties,
		States:         c.Data.States,
		Metros:         c.Data.Metros,
		CountiesObject: c.Data.CountiesObject,
		StatesObject:   c.Data.StatesObject,
		MetrosObject:   c.Data.MetrosObject,
	})
}

func joinOptions(c *config.Config) join.Options {
	opts := join.DefaultOptions()
	if c.Data.KeyField != "" {
		opts.KeyField = c.Data.KeyField
	}
	if c.Data.SelectorField != "" {
		opts.SelectorField = c.Data.SelectorField
	}
	if c.Data.NameField != "" {
		opts.NameField = c.Data.NameField
	}
	return opts
}

// initApp loads the dataset, joins it and wires the renderers, the
// selection controller and the interaction layer.
func initApp(ctx context.Context, c *config.Config) (*appEnv, error) {
	ds, err := loadDataset(ctx, c)
	if err != nil {
		return nil, err
	}
	return buildApp(ds, c)
}

func buildApp(ds *dataset.Dataset, c *config.Config) (*appEnv, error) {
	res := join.Join(ds.Counties, ds.Rows, joinOptions(c))
	if len(res.Counties) == 0 {
		return nil, eris.New("no county boundaries to draw")
	}
	if len(res.Orphans) > 0 {
		zap.L().Warn("tabular rows without a county boundary",
			zap.Int("count", len(res.Orphans)), zap.Strings("keys", res.Orphans))
	}

	proj, err := newProjection(c.Map, res)
	if err != nil {
		return nil, err
	}

	mapR := render.NewMapRenderer(render.MapOptions{Width: c.Map.Width, Height: c.Map.Height}, proj)
	chartR := render.NewChartRenderer(chartOptions(c.Chart))
	ctrl := selection.New(selection.Layers{
		Counties: res.Counties,
		States:   ds.States,
		Metros:   ds.Metros,
	}, mapR, chartR)

	return &appEnv{
		Dataset:    ds,
		Join:       res,
		Controller: ctrl,
		Layer:      interact.NewLayer(ctrl.Counties(), ctrl),
		Map:        mapR,
		Chart:      chartR,
	}, nil
}

// newProjection returns the fixed DMV projection, or one fitted to the
// county bounds when FitExtent is set.
func newProjection(m config.MapConfig, res join.Result) (*projection.Mercator, error) {
	if !m.FitExtent {
		return projection.NewMercator(m.CenterLon, m.CenterLat, m.Scale, m.Width/2, m.Height/m.TranslateYDivisor), nil
	}
	b := geom.NewBounds(geom.XY)
	for _, c := range res.Counties {
		if c.Geometry != nil {
			b.Extend(c.Geometry)
		}
	}
	proj, err := projection.FitExtent(b, m.Width, m.Height, m.Padding)
	if err != nil {
		return nil, eris.Wrap(err, "fit map extent")
	}
	return proj, nil
}

func chartOptions(c config.ChartConfig) render.ChartOptions {
	return render.ChartOptions{
		Width:        c.Width,
		Height:       c.Height,
		LeftPadding:  c.LeftPadding,
		RightPadding: c.RightPadding,
		TopPadding:   c.TopPadding,
		DomainMax:    c.DomainMax,
		DomainMode:   c.DomainMode,
		TitleX:       c.TitleX,
		TitleY:       c.TitleY,
	}
}
