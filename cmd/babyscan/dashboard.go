package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/babyscan/babyscan/internal/analytics"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show totals and the most recent measurements",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		stats, err := analytics.Dashboard(cmd.Context(), store, time.Now())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("\n%s\n\n", bold("Dashboard"))
		fmt.Printf("  Babies:             %s\n", cyan(fmt.Sprintf("%d", stats.TotalBabies)))
		fmt.Printf("  Measurements:       %s\n", cyan(fmt.Sprintf("%d", stats.TotalMeasurements)))
		fmt.Printf("  Measured this month: %s\n", cyan(fmt.Sprintf("%d", stats.MeasuredThisMonth)))

		if len(stats.Recent) == 0 {
			fmt.Printf("\n  %s\n\n", gray("No measurements yet. Try 'babyscan scan <baby-id> <image>'"))
			return
		}
		fmt.Printf("\n%s\n", yellow("Recent measurements"))
		for _, r := range stats.Recent {
			fmt.Printf("  %s\n", bold(r.BabyName))
			printMeasurement(r.Measurement)
		}
		fmt.Println()
	},
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}
