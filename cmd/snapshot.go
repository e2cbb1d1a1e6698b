package main

import (
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gonum.org/v1/plot/vg"

	"github.com/sells-group/housing-map/internal/render"
	"github.com/sells-group/housing-map/internal/snapshot"
)

var (
	snapshotAttribute string
	snapshotOut       string
	snapshotWidth     float64
	snapshotHeight    float64
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Save the ranked bar chart as an image",
	Long:  "Draws the ranked, class-colored bar chart with gonum/plot. The output extension picks the format (png, svg, pdf, jpg, eps).",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("snapshot"); err != nil {
			return err
		}
		if err := checkSnapshotFormat(snapshotOut); err != nil {
			return err
		}

		env, err := initApp(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		if snapshotAttribute != "" {
			if _, err := env.Controller.Select(snapshotAttribute); err != nil {
				return err
			}
		}

		opts := snapshot.Options{
			Width:  vg.Length(snapshotWidth) * vg.Inch,
			Height: vg.Length(snapshotHeight) * vg.Inch,
		}
		if cfg.Chart.DomainMode != render.DomainDynamic {
			opts.Domain = cfg.Chart.DomainMax
		}
		if err := snapshot.Save(snapshotOut, env.Controller.View(), opts); err != nil {
			return err
		}
		zap.L().Info("snapshot saved",
			zap.String("attribute", env.Controller.Attribute().String()),
			zap.String("path", snapshotOut),
		)
		return nil
	},
}

func init() {
	snapshotCmd.Flags().StringVar(&snapshotAttribute, "attribute", "", "attribute to draw (default 2018_ZHVI_ALL)")
	snapshotCmd.Flags().StringVarP(&snapshotOut, "out", "o", "chart.png", "output image path")
	snapshotCmd.Flags().Float64Var(&snapshotWidth, "width", 8, "image width in inches")
	snapshotCmd.Flags().Float64Var(&snapshotHeight, "height", 6, "image height in inches")
	rootCmd.AddCommand(snapshotCmd)
}

func checkSnapshotFormat(path string) error {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	for _, f := range snapshot.Formats {
		if ext == f {
			return nil
		}
	}
	return eris.Errorf("unsupported image format %q (want one of %s)", ext, strings.Join(snapshot.Formats, ", "))
}
