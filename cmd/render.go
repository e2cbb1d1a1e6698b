package main

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/housing-map/internal/render"
	"github.com/sells-group/housing-map/internal/selection"
)

var (
	renderAttribute string
	renderOutDir    string
	renderCommands  bool
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Write the map and chart as SVG files",
	Long:  "Loads and joins the dataset, selects an attribute and writes map.svg and chart.svg (plus frame.json with --commands) to the output directory.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("render"); err != nil {
			return err
		}

		env, err := initApp(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		if renderAttribute != "" {
			if _, err := env.Controller.Select(renderAttribute); err != nil {
				return err
			}
		}

		files, err := writeFrame(env.Controller, renderOutDir, renderCommands)
		if err != nil {
			return err
		}
		zap.L().Info("render complete",
			zap.String("attribute", env.Controller.Attribute().String()),
			zap.Strings("files", files),
		)
		return nil
	},
}

func init() {
	renderCmd.Flags().StringVar(&renderAttribute, "attribute", "", "attribute to draw (default 2018_ZHVI_ALL)")
	renderCmd.Flags().StringVarP(&renderOutDir, "out-dir", "o", ".", "output directory")
	renderCmd.Flags().BoolVar(&renderCommands, "commands", false, "also write the draw commands as frame.json")
	rootCmd.AddCommand(renderCmd)
}

// writeFrame draws the controller's current frame into dir and returns
// the written paths.
func writeFrame(ctrl *selection.Controller, dir string, commands bool) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, eris.Wrapf(err, "create output dir %s", dir)
	}

	frame := ctrl.Render()
	var files []string
	for _, surface := range []string{render.SurfaceMap, render.SurfaceChart} {
		doc := render.NewDocument(surface)
		if err := doc.Apply(frame.Commands); err != nil {
			return files, err
		}
		path := filepath.Join(dir, surface+".svg")
		if err := writeSVG(path, doc); err != nil {
			return files, err
		}
		files = append(files, path)
	}

	if commands {
		path := filepath.Join(dir, "frame.json")
		data, err := json.MarshalIndent(frame, "", "  ")
		if err != nil {
			return files, eris.Wrap(err, "encode frame")
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return files, eris.Wrapf(err, "write %s", path)
		}
		files = append(files, path)
	}
	return files, nil
}

func writeSVG(path string, doc *render.Document) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "create %s", path)
	}
	if err := doc.WriteSVG(f); err != nil {
		_ = f.Close()
		return err
	}
	return eris.Wrapf(f.Close(), "close %s", path)
}
