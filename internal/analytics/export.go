package analytics

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"
)

var csvHeader = []string{
	"baby_id", "baby_name", "sex", "birth_date", "parent_name",
	"measurement_id", "measurement_date", "age_months",
	"height_cm", "weight_kg", "haz_score", "haz_category",
	"method", "scale_cm_per_px", "image_path", "notes",
}

// ExportCSV writes every measurement of every baby as CSV. Babies appear in
// storage order, each baby's measurements oldest first. Babies without
// measurements get one row with empty measurement columns.
func ExportCSV(ctx context.Context, w io.Writer, store Lister) error {
	babies, perBaby, err := loadAll(ctx, store)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for i, baby := range babies {
		babyCols := []string{baby.ID, baby.Name, string(baby.Sex), baby.BirthDateString(), baby.ParentName}
		ms := perBaby[i]
		if len(ms) == 0 {
			row := append(append([]string{}, babyCols...), make([]string, len(csvHeader)-len(babyCols))...)
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("failed to write csv row: %w", err)
			}
			continue
		}
		for _, m := range oldestFirst(ms) {
			row := append(append([]string{}, babyCols...),
				m.ID,
				m.MeasurementDate.UTC().Format(time.RFC3339),
				strconv.Itoa(m.AgeMonths),
				formatFloat(m.HeightCm, 1),
				formatFloat(m.WeightKg, 2),
				formatFloat(m.HAZScore, 2),
				m.HAZCategory,
				m.Method,
				formatFloat(m.ScaleCmPerPx, 4),
				m.ImagePath,
				m.Notes,
			)
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("failed to write csv row: %w", err)
			}
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return nil
}

func formatFloat(v float64, prec int) string {
	return strconv.FormatFloat(v, 'f', prec, 64)
}
