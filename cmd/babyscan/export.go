package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/babyscan/babyscan/internal/analytics"
)

var exportOutput string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export all babies and measurements as CSV",
	Long: `Export all babies and measurements as CSV, one row per measurement.

Example:
  babyscan export > growth.csv
  babyscan export --output growth.csv`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		out := os.Stdout
		if exportOutput != "" && exportOutput != "-" {
			f, err := os.Create(exportOutput)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: failed to create %s: %v\n", exportOutput, err)
				os.Exit(1)
			}
			defer f.Close()
			out = f
		}

		if err := analytics.ExportCSV(cmd.Context(), out, store); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if out != os.Stdout {
			fmt.Fprintf(os.Stderr, "%s Exported to %s\n", green("✓"), exportOutput)
		}
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file (default: stdout)")
	rootCmd.AddCommand(exportCmd)
}
