package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sells-group/housing-map/internal/model"
)

var attributesCmd = &cobra.Command{
	Use:   "attributes",
	Short: "List the selectable attributes and their chart titles",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		formatAttributes(cmd.OutOrStdout())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(attributesCmd)
}

func formatAttributes(out io.Writer) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ATTRIBUTE\tTITLE\tDEFAULT")
	for _, a := range model.Attributes() {
		def := ""
		if a == model.DefaultAttribute {
			def = "*"
		}
		title, _ := a.Label()
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", a, title, def)
	}
	_ = w.Flush()
}
