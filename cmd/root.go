package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/housing-map/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "housing-map",
	Short: "DMV county housing choropleth and ranked bar chart",
	Long: "Joins county housing statistics to DMV county boundaries, classifies them with Ckmeans natural breaks, " +
		"and renders a coordinated choropleth map and bar chart as SVG, images or an interactive page.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return eris.Wrap(err, "load config")
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return eris.Wrap(err, "init logger")
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
