package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/babyscan/babyscan/internal/scan"
)

var (
	watchScale        float64
	watchPattern      string
	watchScanExisting bool
)

var watchCmd = &cobra.Command{
	Use:   "watch <baby-id> <dir>",
	Short: "Scan photos as they land in an inbox directory",
	Long: `Watch a directory and scan every new photo for one baby. Files are
matched with a doublestar pattern relative to the directory
(default: inbox_pattern from config.yaml).

Example:
  babyscan watch 4f1c... ~/Pictures/baby-inbox --scan-existing`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := runWatch(ctx, args[0], args[1]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func runWatch(ctx context.Context, babyID, dir string) error {
	baby, err := store.GetBaby(ctx, babyID)
	if err != nil {
		return err
	}

	svc, publisher, err := newScanService(ctx, settings)
	if err != nil {
		return err
	}
	defer publisher.Close()

	pattern := settings.InboxPattern
	if watchPattern != "" {
		pattern = watchPattern
	}
	w, err := scan.NewWatcher(scan.WatchConfig{
		Dir:          dir,
		Pattern:      pattern,
		BabyID:       baby.ID,
		ScaleCmPerPx: watchScale,
		ScanExisting: watchScanExisting,
	}, svc, logger)
	if err != nil {
		return err
	}
	if err := w.Start(ctx); err != nil {
		return err
	}
	defer w.Stop()

	fmt.Printf("%s Watching %s for %s (%s)\n", green("✓"), cyan(dir), bold(baby.Name), gray(pattern))
	fmt.Printf("%s\n", gray("Press Ctrl+C to stop"))

	for outcome := range w.Outcomes() {
		if outcome.Err != nil {
			fmt.Printf("%s %s: %v\n", red("✗"), outcome.Path, outcome.Err)
			continue
		}
		m := outcome.Measurement
		paint := categoryColor(m.HAZCategory)
		fmt.Printf("%s %s  %.1f cm  HAZ %s  %s\n",
			green("✓"), outcome.Path, m.HeightCm,
			paint(fmt.Sprintf("%+.2f", m.HAZScore)), paint(m.HAZCategory))
	}
	return nil
}

func init() {
	watchCmd.Flags().Float64Var(&watchScale, "scale", 0, "Centimetres per pixel (default: configured scale)")
	watchCmd.Flags().StringVar(&watchPattern, "pattern", "", "Doublestar pattern for photos (default: configured inbox_pattern)")
	watchCmd.Flags().BoolVar(&watchScanExisting, "scan-existing", false, "Also scan photos already in the directory")
	rootCmd.AddCommand(watchCmd)
}
