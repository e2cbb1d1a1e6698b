package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Data   DataConfig   `yaml:"data" mapstructure:"data"`
	Fetch  FetchConfig  `yaml:"fetch" mapstructure:"fetch"`
	Map    MapConfig    `yaml:"map" mapstructure:"map"`
	Chart  ChartConfig  `yaml:"chart" mapstructure:"chart"`
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// DataConfig locates the county table and the boundary layers.
type DataConfig struct {
	Table    string `yaml:"table" mapstructure:"table"`
	Counties string `yaml:"counties" mapstructure:"counties"`
	States   string `yaml:"states" mapstructure:"states"`
	Metros   string `yaml:"metros" mapstructure:"metros"`

	CountiesObject string `yaml:"counties_object" mapstructure:"counties_object"`
	StatesObject   string `yaml:"states_object" mapstructure:"states_object"`
	MetrosObject   string `yaml:"metros_object" mapstructure:"metros_object"`

	// Table columns; empty uses the canonical CountyFIPS, NAMELSAD_MIN
	// and NAMELSAD headers.
	KeyColumn      string `yaml:"key_column" mapstructure:"key_column"`
	SelectorColumn string `yaml:"selector_column" mapstructure:"selector_column"`
	NameColumn     string `yaml:"name_column" mapstructure:"name_column"`
	Sheet          string `yaml:"sheet" mapstructure:"sheet"`

	// Boundary properties.
	KeyField      string `yaml:"key_field" mapstructure:"key_field"`
	SelectorField string `yaml:"selector_field" mapstructure:"selector_field"`
	NameField     string `yaml:"name_field" mapstructure:"name_field"`

	WorkDir string `yaml:"work_dir" mapstructure:"work_dir"`
}

// FetchConfig configures remote downloads.
type FetchConfig struct {
	UserAgent   string  `yaml:"user_agent" mapstructure:"user_agent"`
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RateLimit   float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// MapConfig sizes the map and fixes its projection.
type MapConfig struct {
	Width             float64 `yaml:"width" mapstructure:"width"`
	Height            float64 `yaml:"height" mapstructure:"height"`
	CenterLon         float64 `yaml:"center_lon" mapstructure:"center_lon"`
	CenterLat         float64 `yaml:"center_lat" mapstructure:"center_lat"`
	Scale             float64 `yaml:"scale" mapstructure:"scale"`
	TranslateYDivisor float64 `yaml:"translate_y_divisor" mapstructure:"translate_y_divisor"`
	// FitExtent derives the projection from the county bounds instead of
	// the fixed center and scale.
	FitExtent bool    `yaml:"fit_extent" mapstructure:"fit_extent"`
	Padding   float64 `yaml:"padding" mapstructure:"padding"`
}

// ChartConfig sizes the bar chart.
type ChartConfig struct {
	Width        float64 `yaml:"width" mapstructure:"width"`
	Height       float64 `yaml:"height" mapstructure:"height"`
	LeftPadding  float64 `yaml:"left_padding" mapstructure:"left_padding"`
	RightPadding float64 `yaml:"right_padding" mapstructure:"right_padding"`
	TopPadding   float64 `yaml:"top_padding" mapstructure:"top_padding"`
	DomainMax    float64 `yaml:"domain_max" mapstructure:"domain_max"`
	DomainMode   string  `yaml:"domain_mode" mapstructure:"domain_mode"`
	TitleX       float64 `yaml:"title_x" mapstructure:"title_x"`
	TitleY       float64 `yaml:"title_y" mapstructure:"title_y"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("HOUSINGMAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("data.table", "data/DMV_Counties_Joined.csv")
	v.SetDefault("data.counties", "data/DMV_Counties_Min.topojson")
	v.SetDefault("data.states", "data/DMV_States.topojson")
	v.SetDefault("data.metros", "data/DMV_MSA.topojson")
	v.SetDefault("data.counties_object", "DMV_Counties_Min")
	v.SetDefault("data.states_object", "DMV_States")
	v.SetDefault("data.metros_object", "DMV_MSA")
	v.SetDefault("data.key_field", "CountyFIPS")
	v.SetDefault("data.selector_field", "NAMELSAD_MIN")
	v.SetDefault("data.name_field", "NAMELSAD")
	v.SetDefault("fetch.user_agent", "housing-map/1.0")
	v.SetDefault("fetch.timeout_secs", 30)
	v.SetDefault("fetch.rate_limit", 5)
	v.SetDefault("map.width", 1000)
	v.SetDefault("map.height", 600)
	v.SetDefault("map.center_lon", -77.4824)
	v.SetDefault("map.center_lat", 38.81709)
	v.SetDefault("map.scale", 15000)
	v.SetDefault("map.translate_y_divisor", 1.9)
	v.SetDefault("map.padding", 10)
	v.SetDefault("chart.width", 612)
	v.SetDefault("chart.height", 600)
	v.SetDefault("chart.left_padding", 50)
	v.SetDefault("chart.right_padding", 5)
	v.SetDefault("chart.top_padding", 5)
	v.SetDefault("chart.domain_max", 800000)
	v.SetDefault("chart.domain_mode", "fixed")
	v.SetDefault("chart.title_x", 175)
	v.SetDefault("chart.title_y", 60)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings a command mode depends on. Modes are
// "render", "breaks", "snapshot" and "serve".
func (c *Config) Validate(mode string) error {
	var errs []string
	check := func(ok bool, msg string) {
		if !ok {
			errs = append(errs, msg)
		}
	}

	switch mode {
	case "breaks":
		check(c.Data.Table != "", "data.table is required")
		check(c.Data.Counties != "", "data.counties is required")
	case "render", "snapshot", "serve":
		check(c.Data.Table != "", "data.table is required")
		check(c.Data.Counties != "", "data.counties is required")
		check(c.Data.States != "", "data.states is required")
		check(c.Data.Metros != "", "data.metros is required")
		check(c.Map.Width > 0 && c.Map.Height > 0, "map.width and map.height must be > 0")
		check(c.Chart.Width > c.Chart.LeftPadding+c.Chart.RightPadding, "chart.width must exceed its paddings")
		check(c.Chart.Height > c.Chart.TopPadding+5, "chart.height must exceed its padding")
		check(c.Chart.DomainMode == "fixed" || c.Chart.DomainMode == "dynamic",
			"chart.domain_mode must be fixed or dynamic")
		check(c.Chart.DomainMode != "fixed" || c.Chart.DomainMax > 0, "chart.domain_max must be > 0")
		check(c.Map.FitExtent || c.Map.TranslateYDivisor > 0, "map.translate_y_divisor must be > 0")
		if mode == "serve" {
			check(c.Server.Port > 0, "server.port must be > 0")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	check(c.Fetch.TimeoutSecs >= 0, "fetch.timeout_secs must be >= 0")
	check(c.Fetch.RateLimit >= 0, "fetch.rate_limit must be >= 0")

	if len(errs) > 0 {
		return eris.Errorf("config: invalid for %s: %s", mode, strings.Join(errs, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
