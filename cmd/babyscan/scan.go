package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/babyscan/babyscan/internal/measure"
)

var (
	scanScale float64
	scanNotes string
	scanJSON  bool
)

var scanCmd = &cobra.Command{
	Use:   "scan <baby-id> <image>",
	Short: "Measure a baby from a photo and record the result",
	Long: `Measure a baby's length from a photo, score it against the growth
reference and store the measurement.

--scale is centimetres per pixel at the baby's distance from the camera.
Without it the configured default is used.

Example:
  babyscan scan 4f1c... photo.jpg
  babyscan scan 4f1c... photo.jpg --scale 0.12 --notes "after bath"`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		svc, publisher, err := newScanService(ctx, settings)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer publisher.Close()

		if !scanJSON {
			fmt.Printf("%s Analyzing image...\n", gray("→"))
		}
		m, err := svc.ScanFile(ctx, args[0], args[1], scanScale, scanNotes)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			if hint := scanErrorHint(err); hint != "" {
				fmt.Fprintf(os.Stderr, "%s\n", gray(hint))
			}
			os.Exit(1)
		}

		if scanJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			_ = enc.Encode(m)
			return
		}

		paint := categoryColor(m.HAZCategory)
		fmt.Printf("\n%s Measurement recorded\n\n", green("✓"))
		fmt.Printf("  Height:   %s cm\n", cyan(fmt.Sprintf("%.1f", m.HeightCm)))
		fmt.Printf("  Weight:   %s kg %s\n", cyan(fmt.Sprintf("%.1f", m.WeightKg)), gray("(estimated)"))
		fmt.Printf("  Age:      %s\n", formatAge(m.AgeMonths))
		fmt.Printf("  HAZ:      %s\n", paint(fmt.Sprintf("%+.2f", m.HAZScore)))
		fmt.Printf("  Status:   %s\n", paint(m.HAZCategory))
		fmt.Printf("  Method:   %s\n", gray(m.Method))
		fmt.Printf("  ID:       %s\n\n", gray(m.ID))
	},
}

// scanErrorHint suggests a fix for common scan failures.
func scanErrorHint(err error) string {
	switch {
	case errors.Is(err, measure.ErrInvalidScale):
		return "Pass a positive --scale (cm per pixel), e.g. --scale 0.1"
	case errors.Is(err, measure.ErrDetectionFailed):
		return "Retake the photo with the whole baby lying flat and in frame"
	case errors.Is(err, measure.ErrTimeout):
		return "Raise measure_timeout in config.yaml or BABYSCAN_MEASURE_TIMEOUT"
	default:
		return ""
	}
}

func init() {
	scanCmd.Flags().Float64Var(&scanScale, "scale", 0, "Centimetres per pixel (default: configured scale)")
	scanCmd.Flags().StringVar(&scanNotes, "notes", "", "Notes stored with the measurement")
	scanCmd.Flags().BoolVar(&scanJSON, "json", false, "Print the measurement as JSON")
	rootCmd.AddCommand(scanCmd)
}
