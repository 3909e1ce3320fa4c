// Package analytics derives growth summaries, dashboard figures and exports
// from stored measurements.
package analytics

import (
	"sort"
	"time"

	"github.com/babyscan/babyscan/internal/anthropometry"
	"github.com/babyscan/babyscan/internal/types"
)

// Point is one entry of a growth chart series.
type Point struct {
	Index     int       `json:"measurement"`
	Date      time.Time `json:"date"`
	AgeMonths int       `json:"age"`
	HeightCm  float64   `json:"height"`
	WeightKg  float64   `json:"weight"`
	HAZ       float64   `json:"haz"`
	Category  string    `json:"category"`
}

// Summary describes one baby's growth history.
type Summary struct {
	BabyID            string             `json:"baby_id"`
	BabyName          string             `json:"baby_name"`
	TotalMeasurements int                `json:"total_measurements"`
	Latest            *types.Measurement `json:"latest,omitempty"`
	// HeightVelocity is cm per month between the first and latest
	// measurement. Nil with fewer than two distinct measurement dates.
	HeightVelocity *float64 `json:"height_velocity_cm_per_month,omitempty"`
	// Series is ordered oldest first.
	Series []Point `json:"series"`
}

// Summarize builds a Summary from a baby's measurements in any order.
func Summarize(baby *types.Baby, measurements []*types.Measurement) *Summary {
	sorted := oldestFirst(measurements)

	s := &Summary{
		BabyID:            baby.ID,
		BabyName:          baby.Name,
		TotalMeasurements: len(sorted),
		Series:            make([]Point, 0, len(sorted)),
	}
	for i, m := range sorted {
		s.Series = append(s.Series, Point{
			Index:     i + 1,
			Date:      m.MeasurementDate,
			AgeMonths: m.AgeMonths,
			HeightCm:  m.HeightCm,
			WeightKg:  m.WeightKg,
			HAZ:       m.HAZScore,
			Category:  m.HAZCategory,
		})
	}
	if len(sorted) == 0 {
		return s
	}

	first, last := sorted[0], sorted[len(sorted)-1]
	s.Latest = last

	months := last.MeasurementDate.Sub(first.MeasurementDate).Hours() / 24 / anthropometry.DaysPerMonth
	if months > 0 {
		v := (last.HeightCm - first.HeightCm) / months
		s.HeightVelocity = &v
	}
	return s
}

// oldestFirst returns a copy of ms sorted by measurement date ascending.
func oldestFirst(ms []*types.Measurement) []*types.Measurement {
	sorted := make([]*types.Measurement, len(ms))
	copy(sorted, ms)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].MeasurementDate.Before(sorted[j].MeasurementDate)
	})
	return sorted
}
