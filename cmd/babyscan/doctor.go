package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/babyscan/babyscan/internal/config"
	"github.com/babyscan/babyscan/internal/events"
	"github.com/babyscan/babyscan/internal/storage"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check babyscan installation and environment health",
	Long: `Run health checks to diagnose common configuration problems.

This command checks for:
- Database existence and accessibility
- Settings file and BABYSCAN_* environment variables
- Detector prerequisites (ANTHROPIC_API_KEY for the vision detector)
- Event broker reachability when events_url is set

Exit codes:
  0 - All checks passed
  1 - One or more checks failed (but not critical)
  2 - Critical failures that prevent babyscan from running`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{skipStoreAnnotation: "true"},
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		fmt.Printf("Running babyscan health checks...\n\n")

		var failures, warnings, critical []string

		// Check 1: Database discovery
		fmt.Printf("%s Database discovery\n", cyan("→"))
		if dbPath == "" {
			discovered, err := storage.DiscoverDatabase()
			if err != nil {
				critical = append(critical, fmt.Sprintf("No database found: %v", err))
				fmt.Printf("  %s No database found (run 'babyscan init')\n", red("✗"))
			} else {
				dbPath = discovered
				fmt.Printf("  %s Found database: %s\n", green("✓"), dbPath)
			}
		} else {
			fmt.Printf("  %s Using explicit database: %s\n", green("✓"), dbPath)
		}
		if dbPath == "" {
			fmt.Printf("\n%s Critical failures prevent babyscan from running\n", red("✗"))
			os.Exit(2)
		}

		// Check 2: Database opens and answers a query
		fmt.Printf("%s Database access\n", cyan("→"))
		if err := checkDatabase(ctx, dbPath); err != nil {
			critical = append(critical, fmt.Sprintf("Cannot open database: %v", err))
			fmt.Printf("  %s Cannot open database\n", red("✗"))
			if verbose {
				fmt.Printf("    Error: %v\n", err)
			}
		} else {
			fmt.Printf("  %s Database readable\n", green("✓"))
		}

		// Check 3: Settings
		fmt.Printf("%s Settings\n", cyan("→"))
		s, err := config.Load(resolveConfigPath())
		if err != nil {
			critical = append(critical, fmt.Sprintf("Invalid settings: %v", err))
			fmt.Printf("  %s %v\n", red("✗"), err)
		} else {
			fmt.Printf("  %s Settings valid\n", green("✓"))
			if verbose {
				fmt.Printf("    %s\n", gray(s.String()))
			}
		}

		// Check 4: Detector prerequisites
		fmt.Printf("%s Detector\n", cyan("→"))
		switch s.Detector {
		case config.DetectorVision:
			if os.Getenv("ANTHROPIC_API_KEY") == "" {
				failures = append(failures, "ANTHROPIC_API_KEY not set")
				fmt.Printf("  %s ANTHROPIC_API_KEY not set, vision scans will fail\n", red("✗"))
			} else {
				fmt.Printf("  %s Vision detector (%s)\n", green("✓"), s.VisionModel)
			}
		default:
			warnings = append(warnings, "Mock detector in use")
			fmt.Printf("  %s Mock detector: heights are simulated\n", yellow("⚠"))
		}

		// Check 5: Event broker
		fmt.Printf("%s Event broker\n", cyan("→"))
		if s.EventsURL == "" {
			fmt.Printf("  %s Events disabled\n", green("✓"))
		} else if err := checkPublisher(ctx, s); err != nil {
			failures = append(failures, fmt.Sprintf("Event broker unreachable: %v", err))
			fmt.Printf("  %s Cannot connect to %s\n", red("✗"), s.EventsURL)
			if verbose {
				fmt.Printf("    Error: %v\n", err)
			}
		} else {
			fmt.Printf("  %s Connected to %s\n", green("✓"), s.EventsURL)
		}

		fmt.Println()
		for _, w := range warnings {
			fmt.Printf("%s %s\n", yellow("⚠"), w)
		}
		for _, f := range failures {
			fmt.Printf("%s %s\n", red("✗"), f)
		}
		for _, c := range critical {
			fmt.Printf("%s %s\n", red("✗"), c)
		}
		switch {
		case len(critical) > 0:
			fmt.Printf("\n%s Critical failures prevent babyscan from running\n", red("✗"))
			os.Exit(2)
		case len(failures) > 0:
			fmt.Printf("\n%s Some checks failed\n", yellow("⚠"))
			os.Exit(1)
		default:
			fmt.Printf("%s All checks passed\n", green("✓"))
		}
	},
}

func checkDatabase(ctx context.Context, path string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	db, err := storage.NewStorage(ctx, &storage.Config{Path: path})
	if err != nil {
		return err
	}
	defer db.Close()
	_, err = db.ListBabies(ctx)
	return err
}

func checkPublisher(ctx context.Context, s config.Settings) error {
	ctx, cancel := context.WithTimeout(ctx, eventsConnectTimeout)
	defer cancel()

	p, err := events.NewPublisher(ctx, s.EventsURL, s.EventsSubject)
	if err != nil {
		return err
	}
	return p.Close()
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}
