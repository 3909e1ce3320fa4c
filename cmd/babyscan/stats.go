package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/babyscan/babyscan/internal/analytics"
)

var statsJSON bool

var statsCmd = &cobra.Command{
	Use:   "stats <baby-id>",
	Short: "Show a baby's growth summary and chart series",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		baby, err := store.GetBaby(ctx, args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		ms, err := store.ListMeasurements(ctx, baby.ID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		summary := analytics.Summarize(baby, ms)

		if statsJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			_ = enc.Encode(summary)
			return
		}

		fmt.Printf("\n%s\n\n", bold("Growth summary"))
		printBaby(baby, time.Now())
		fmt.Printf("  Measurements: %s\n", cyan(fmt.Sprintf("%d", summary.TotalMeasurements)))
		if summary.HeightVelocity != nil {
			fmt.Printf("  Velocity:     %s cm/month\n", cyan(fmt.Sprintf("%.2f", *summary.HeightVelocity)))
		}
		if summary.Latest == nil {
			fmt.Printf("\n  %s\n\n", gray("No measurements yet"))
			return
		}

		fmt.Printf("\n  %s\n", gray("#   Date        Age         Height   Weight   HAZ     Status"))
		for _, p := range summary.Series {
			paint := categoryColor(p.Category)
			fmt.Printf("  %-3d %s  %-10s  %6.1f   %6.1f   %s  %s\n",
				p.Index,
				p.Date.Local().Format("2006-01-02"),
				formatAge(p.AgeMonths),
				p.HeightCm,
				p.WeightKg,
				paint(fmt.Sprintf("%+.2f", p.HAZ)),
				paint(p.Category))
		}
		fmt.Println()
	},
}

func init() {
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "Print the summary as JSON")
	rootCmd.AddCommand(statsCmd)
}
