package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/babyscan/babyscan/internal/anthropometry"
	"github.com/babyscan/babyscan/internal/types"
)

var (
	babyName      string
	babyBirthDate string
	babySex       string
	babyParent    string
	babyYes       bool
)

var babyCmd = &cobra.Command{
	Use:   "baby",
	Short: "Manage registered babies",
}

var babyAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Register a baby",
	Long: `Register a baby. Missing fields are asked for interactively.

Example:
  babyscan baby add --name Ada --birth-date 2023-06-15 --sex female --parent Grace`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if err := fillBabyFlags(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		birth, err := anthropometry.ParseBirthDate(babyBirthDate)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		sex, err := anthropometry.ParseSex(babySex)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		baby := &types.Baby{
			Name:       strings.TrimSpace(babyName),
			BirthDate:  birth,
			Sex:        sex,
			ParentName: strings.TrimSpace(babyParent),
		}
		if err := store.CreateBaby(cmd.Context(), baby); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("\n%s Registered %s\n\n", green("✓"), bold(baby.Name))
		printBaby(baby, time.Now())
		fmt.Println()
	},
}

// fillBabyFlags prompts for any of the add flags left empty.
func fillBabyFlags() error {
	if babyName != "" && babyBirthDate != "" && babySex != "" && babyParent != "" {
		return nil
	}

	p, err := newPrompter()
	if err != nil {
		return err
	}
	defer p.Close()

	if babyName == "" {
		if babyName, err = p.ask("Name", required("name")); err != nil {
			return err
		}
	}
	if babyBirthDate == "" {
		babyBirthDate, err = p.ask("Birth date (YYYY-MM-DD)", func(s string) error {
			_, err := anthropometry.ParseBirthDate(s)
			return err
		})
		if err != nil {
			return err
		}
	}
	if babySex == "" {
		babySex, err = p.ask("Sex (male/female)", func(s string) error {
			_, err := anthropometry.ParseSex(s)
			return err
		})
		if err != nil {
			return err
		}
	}
	if babyParent == "" {
		if babyParent, err = p.ask("Parent name", required("parent name")); err != nil {
			return err
		}
	}
	return nil
}

var babyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List babies, newest first",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		babies, err := store.ListBabies(cmd.Context())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if len(babies) == 0 {
			fmt.Printf("%s\n", gray("No babies registered. Run 'babyscan baby add'."))
			return
		}

		now := time.Now()
		fmt.Println()
		for _, b := range babies {
			fmt.Printf("  %-24s %-8s %-12s %s\n",
				bold(b.Name), b.Sex, formatAge(b.AgeInMonths(now)), gray(b.ID))
		}
		fmt.Printf("\n  Total: %s\n\n", cyan(fmt.Sprintf("%d", len(babies))))
	},
}

var babyShowCmd = &cobra.Command{
	Use:   "show <baby-id>",
	Short: "Show a baby and their latest measurements",
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

		fmt.Println()
		printBaby(baby, time.Now())
		fmt.Println()
		if len(ms) == 0 {
			fmt.Printf("  %s\n\n", gray("No measurements yet"))
			return
		}
		fmt.Printf("%s\n", yellow("Recent measurements:"))
		for i, m := range ms {
			if i == 5 {
				fmt.Printf("  %s\n", gray(fmt.Sprintf("... %d more, see 'babyscan measurements list %s'", len(ms)-5, baby.ID)))
				break
			}
			printMeasurement(m)
		}
		fmt.Println()
	},
}

var babyUpdateCmd = &cobra.Command{
	Use:   "update <baby-id>",
	Short: "Change a baby's details",
	Long: `Change a baby's details. Only the flags given are updated.

Example:
  babyscan baby update 4f1c... --name "Ada L." --birth-date 2023-06-14`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		updates := babyUpdatesFromFlags(cmd)
		if len(updates) == 0 {
			fmt.Fprintf(os.Stderr, "Error: nothing to update (use --name, --birth-date, --sex or --parent)\n")
			os.Exit(1)
		}

		if err := store.UpdateBaby(cmd.Context(), args[0], updates); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		baby, err := store.GetBaby(cmd.Context(), args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("\n%s Updated\n\n", green("✓"))
		printBaby(baby, time.Now())
		fmt.Println()
	},
}

// babyUpdatesFromFlags collects the flags the user actually set.
func babyUpdatesFromFlags(cmd *cobra.Command) map[string]interface{} {
	updates := make(map[string]interface{})
	if cmd.Flags().Changed("name") {
		updates["name"] = babyName
	}
	if cmd.Flags().Changed("birth-date") {
		updates["birth_date"] = babyBirthDate
	}
	if cmd.Flags().Changed("sex") {
		updates["sex"] = babySex
	}
	if cmd.Flags().Changed("parent") {
		updates["parent_name"] = babyParent
	}
	return updates
}

var babyDeleteCmd = &cobra.Command{
	Use:   "delete <baby-id>",
	Short: "Delete a baby and all of their measurements",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		baby, err := store.GetBaby(ctx, args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if !babyYes {
			p, err := newPrompter()
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			ok, err := p.confirm(fmt.Sprintf("Delete %s and all measurements?", baby.Name))
			_ = p.Close()
			if err != nil || !ok {
				fmt.Printf("%s\n", gray("Aborted"))
				return
			}
		}

		if err := store.DeleteBaby(ctx, baby.ID); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("%s Deleted %s\n", green("✓"), baby.Name)
	},
}

func init() {
	for _, c := range []*cobra.Command{babyAddCmd, babyUpdateCmd} {
		c.Flags().StringVar(&babyName, "name", "", "Baby's name")
		c.Flags().StringVar(&babyBirthDate, "birth-date", "", "Birth date (YYYY-MM-DD)")
		c.Flags().StringVar(&babySex, "sex", "", "Sex: male or female")
		c.Flags().StringVar(&babyParent, "parent", "", "Parent or guardian name")
	}
	babyDeleteCmd.Flags().BoolVarP(&babyYes, "yes", "y", false, "Skip confirmation")

	babyCmd.AddCommand(babyAddCmd, babyListCmd, babyShowCmd, babyUpdateCmd, babyDeleteCmd)
	rootCmd.AddCommand(babyCmd)
}
