package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	measurementNotes string
	measurementDate  string
	measurementYes   bool
)

var measurementsCmd = &cobra.Command{
	Use:     "measurements",
	Aliases: []string{"m"},
	Short:   "List and edit recorded measurements",
}

var measurementsListCmd = &cobra.Command{
	Use:   "list <baby-id>",
	Short: "List a baby's measurements, most recent first",
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

		fmt.Printf("\n%s %s\n\n", yellow("Measurements for"), bold(baby.Name))
		if len(ms) == 0 {
			fmt.Printf("  %s\n\n", gray("No measurements yet"))
			return
		}
		for _, m := range ms {
			printMeasurement(m)
		}
		fmt.Printf("\n  Total: %s\n\n", cyan(fmt.Sprintf("%d", len(ms))))
	},
}

var measurementsUpdateCmd = &cobra.Command{
	Use:   "update <measurement-id>",
	Short: "Edit a measurement's notes or date",
	Long: `Edit a measurement's notes or date. Scores cannot be edited; rescan instead.

Example:
  babyscan measurements update 9a2e... --notes "fussy, retake"
  babyscan measurements update 9a2e... --date 2024-05-01T09:30:00Z`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		updates := make(map[string]interface{})
		if cmd.Flags().Changed("notes") {
			updates["notes"] = measurementNotes
		}
		if cmd.Flags().Changed("date") {
			updates["measurement_date"] = measurementDate
		}
		if len(updates) == 0 {
			fmt.Fprintf(os.Stderr, "Error: nothing to update (use --notes or --date)\n")
			os.Exit(1)
		}

		if err := store.UpdateMeasurement(cmd.Context(), args[0], updates); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		m, err := store.GetMeasurement(cmd.Context(), args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("\n%s Updated\n\n", green("✓"))
		printMeasurement(m)
		fmt.Println()
	},
}

var measurementsDeleteCmd = &cobra.Command{
	Use:   "delete <measurement-id>",
	Short: "Delete a measurement",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if !measurementYes {
			p, err := newPrompter()
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			ok, err := p.confirm("Delete measurement " + args[0] + "?")
			_ = p.Close()
			if err != nil || !ok {
				fmt.Printf("%s\n", gray("Aborted"))
				return
			}
		}
		if err := store.DeleteMeasurement(cmd.Context(), args[0]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("%s Deleted measurement %s\n", green("✓"), args[0])
	},
}

func init() {
	measurementsUpdateCmd.Flags().StringVar(&measurementNotes, "notes", "", "New notes")
	measurementsUpdateCmd.Flags().StringVar(&measurementDate, "date", "", "New measurement date (RFC 3339)")
	measurementsDeleteCmd.Flags().BoolVarP(&measurementYes, "yes", "y", false, "Skip confirmation")

	measurementsCmd.AddCommand(measurementsListCmd, measurementsUpdateCmd, measurementsDeleteCmd)
	rootCmd.AddCommand(measurementsCmd)
}
