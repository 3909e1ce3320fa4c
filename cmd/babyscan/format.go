package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"

	"github.com/babyscan/babyscan/internal/anthropometry"
	"github.com/babyscan/babyscan/internal/types"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	gray   = color.New(color.FgHiBlack).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

// categoryColor picks a terminal colour for a stunting category.
func categoryColor(category string) func(a ...interface{}) string {
	switch category {
	case anthropometry.CategorySeverelyStunted:
		return color.New(color.FgRed, color.Bold).SprintFunc()
	case anthropometry.CategoryStunted:
		return yellow
	case anthropometry.CategoryNormal:
		return green
	case anthropometry.CategoryTall:
		return cyan
	default:
		return gray
	}
}

// formatAge renders an age in months as "7 months", "2 years" or "1y 3m".
func formatAge(months int) string {
	years := months / 12
	rem := months % 12
	switch {
	case years == 0:
		if months == 1 {
			return "1 month"
		}
		return fmt.Sprintf("%d months", months)
	case rem == 0:
		if years == 1 {
			return "1 year"
		}
		return fmt.Sprintf("%d years", years)
	default:
		return fmt.Sprintf("%dy %dm", years, rem)
	}
}

func printBaby(b *types.Baby, now time.Time) {
	fmt.Printf("%s %s\n", bold(b.Name), gray(b.ID))
	fmt.Printf("  Born:   %s (%s)\n", b.BirthDateString(), formatAge(b.AgeInMonths(now)))
	fmt.Printf("  Sex:    %s\n", b.Sex)
	fmt.Printf("  Parent: %s\n", b.ParentName)
}

func printMeasurement(m *types.Measurement) {
	paint := categoryColor(m.HAZCategory)
	fmt.Printf("  %s  %s  %s\n",
		m.MeasurementDate.Local().Format("2006-01-02 15:04"),
		paint(fmt.Sprintf("%-16s", m.HAZCategory)),
		gray(m.ID))
	fmt.Printf("    Height: %s cm   Weight: %s kg   HAZ: %s   Age: %s\n",
		cyan(fmt.Sprintf("%.1f", m.HeightCm)),
		cyan(fmt.Sprintf("%.1f", m.WeightKg)),
		paint(fmt.Sprintf("%+.2f", m.HAZScore)),
		formatAge(m.AgeMonths))
	if m.Notes != "" {
		fmt.Printf("    Notes:  %s\n", m.Notes)
	}
}
