package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "data/DMV_Counties_Joined.csv", cfg.Data.Table)
	assert.Equal(t, "data/DMV_Counties_Min.topojson", cfg.Data.Counties)
	assert.Equal(t, "DMV_Counties_Min", cfg.Data.CountiesObject)
	assert.Equal(t, "DMV_States", cfg.Data.StatesObject)
	assert.Equal(t, "DMV_MSA", cfg.Data.MetrosObject)
	assert.Equal(t, "CountyFIPS", cfg.Data.KeyField)
	assert.Equal(t, "NAMELSAD_MIN", cfg.Data.SelectorField)
	assert.Empty(t, cfg.Data.KeyColumn)
	assert.Equal(t, 30, cfg.Fetch.TimeoutSecs)
	assert.InDelta(t, 5, cfg.Fetch.RateLimit, 0.001)
	assert.InDelta(t, -77.4824, cfg.Map.CenterLon, 1e-9)
	assert.InDelta(t, 38.81709, cfg.Map.CenterLat, 1e-9)
	assert.InDelta(t, 15000, cfg.Map.Scale, 0.001)
	assert.InDelta(t, 1.9, cfg.Map.TranslateYDivisor, 0.001)
	assert.False(t, cfg.Map.FitExtent)
	assert.InDelta(t, 612, cfg.Chart.Width, 0.001)
	assert.InDelta(t, 600, cfg.Chart.Height, 0.001)
	assert.InDelta(t, 800000, cfg.Chart.DomainMax, 0.001)
	assert.Equal(t, "fixed", cfg.Chart.DomainMode)
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
data:
  table: https://example.com/housing.xlsx
  sheet: Counties
log:
  level: debug
  format: console
server:
  port: 9090
chart:
  domain_mode: dynamic
map:
  fit_extent: true
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://example.com/housing.xlsx", cfg.Data.Table)
	assert.Equal(t, "Counties", cfg.Data.Sheet)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "dynamic", cfg.Chart.DomainMode)
	assert.True(t, cfg.Map.FitExtent)
	// Defaults still apply for unset values
	assert.Equal(t, "data/DMV_States.topojson", cfg.Data.States)
	assert.InDelta(t, 612, cfg.Chart.Width, 0.001)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
data:
  metros: metros.geojson
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("HOUSINGMAP_DATA_METROS", "ftp://ftp.example.com/msa.zip")
	t.Setenv("HOUSINGMAP_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "ftp://ftp.example.com/msa.zip", cfg.Data.Metros)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	t.Setenv("HOUSINGMAP_SERVER_PORT", "3000")
	t.Setenv("HOUSINGMAP_CHART_DOMAIN_MAX", "900000")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.InDelta(t, 900000, cfg.Chart.DomainMax, 0.001)
}

func TestLoadMalformedFile(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("data: [unclosed"), 0644))

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config: read file")
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}

// validDefaults returns a Config with all defaults populated for validation tests.
func validDefaults() *Config {
	cfg := &Config{}
	cfg.Data.Table = "table.csv"
	cfg.Data.Counties = "counties.topojson"
	cfg.Data.States = "states.topojson"
	cfg.Data.Metros = "metros.topojson"
	cfg.Fetch.TimeoutSecs = 30
	cfg.Map.Width = 1000
	cfg.Map.Height = 600
	cfg.Map.TranslateYDivisor = 1.9
	cfg.Chart.Width = 612
	cfg.Chart.Height = 600
	cfg.Chart.LeftPadding = 50
	cfg.Chart.RightPadding = 5
	cfg.Chart.TopPadding = 5
	cfg.Chart.DomainMax = 800000
	cfg.Chart.DomainMode = "fixed"
	cfg.Server.Port = 8080
	return cfg
}

func TestValidateModes(t *testing.T) {
	for _, mode := range []string{"render", "breaks", "snapshot", "serve"} {
		t.Run(mode, func(t *testing.T) {
			assert.NoError(t, validDefaults().Validate(mode))
		})
	}
}

func TestValidateBreaks_OnlyNeedsTableAndCounties(t *testing.T) {
	cfg := validDefaults()
	cfg.Data.States = ""
	cfg.Data.Metros = ""
	cfg.Map.Width = 0

	assert.NoError(t, cfg.Validate("breaks"))
}

func TestValidateRender_MissingSources(t *testing.T) {
	cfg := validDefaults()
	cfg.Data.Table = ""
	cfg.Data.Metros = ""

	err := cfg.Validate("render")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "data.table is required")
	assert.Contains(t, err.Error(), "data.metros is required")
	assert.NotContains(t, err.Error(), "data.states")
}

func TestValidateRender_ChartLayout(t *testing.T) {
	cfg := validDefaults()
	cfg.Chart.Width = 40
	cfg.Chart.DomainMode = "log"

	err := cfg.Validate("render")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "chart.width must exceed its paddings")
	assert.Contains(t, err.Error(), "chart.domain_mode must be fixed or dynamic")
}

func TestValidateRender_DynamicDomainIgnoresMax(t *testing.T) {
	cfg := validDefaults()
	cfg.Chart.DomainMode = "dynamic"
	cfg.Chart.DomainMax = 0

	assert.NoError(t, cfg.Validate("render"))
}

func TestValidateRender_FitExtentIgnoresDivisor(t *testing.T) {
	cfg := validDefaults()
	cfg.Map.TranslateYDivisor = 0

	assert.Error(t, cfg.Validate("render"))

	cfg.Map.FitExtent = true
	assert.NoError(t, cfg.Validate("render"))
}

func TestValidateServe_ValidPort(t *testing.T) {
	cfg := validDefaults()
	cfg.Server.Port = 9090

	assert.NoError(t, cfg.Validate("serve"))
}

func TestValidateServe_InvalidPort(t *testing.T) {
	cfg := validDefaults()
	cfg.Server.Port = 0

	err := cfg.Validate("serve")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "server.port must be > 0")

	assert.NoError(t, cfg.Validate("render"))
}

func TestValidateUnknownMode(t *testing.T) {
	cfg := validDefaults()
	err := cfg.Validate("unknown")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}

func TestValidateFetchBounds(t *testing.T) {
	cfg := validDefaults()
	cfg.Fetch.RateLimit = -1

	err := cfg.Validate("breaks")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "fetch.rate_limit must be >= 0")
}
