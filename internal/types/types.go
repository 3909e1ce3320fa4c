package types

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/babyscan/babyscan/internal/anthropometry"
)

// ErrNotFound is returned by storage backends when a record does not exist.
var ErrNotFound = errors.New("not found")

// Baby is a tracked child. Only BirthDate and Sex feed into scoring.
type Baby struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	BirthDate  time.Time         `json:"birth_date"`
	Sex        anthropometry.Sex `json:"sex"`
	ParentName string            `json:"parent_name"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

// Validate checks if the baby has valid field values
func (b *Baby) Validate() error {
	if strings.TrimSpace(b.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if len(b.Name) > 200 {
		return fmt.Errorf("name must be 200 characters or less (got %d)", len(b.Name))
	}
	if strings.TrimSpace(b.ParentName) == "" {
		return fmt.Errorf("parent_name is required")
	}
	if !b.Sex.IsValid() {
		return fmt.Errorf("invalid sex: %q", b.Sex)
	}
	if b.BirthDate.IsZero() {
		return fmt.Errorf("birth_date is required")
	}
	return nil
}

// BirthDateString returns the birth date in its ISO-8601 calendar form.
func (b *Baby) BirthDateString() string {
	return b.BirthDate.Format(anthropometry.BirthDateLayout)
}

// AgeInMonths returns the baby's age in whole months at now.
func (b *Baby) AgeInMonths(now time.Time) int {
	return anthropometry.AgeInMonths(b.BirthDate, now)
}

// Measurement is a scored height/weight observation of one baby.
type Measurement struct {
	ID              string          `json:"id"`
	BabyID          string          `json:"baby_id"`
	HeightCm        float64         `json:"height_cm"`
	WeightKg        float64         `json:"weight_kg"`
	AgeMonths       int             `json:"age_months"`
	HAZScore        float64         `json:"haz_score"`
	HAZCategory     string          `json:"haz_category"`
	HAZColor        string          `json:"haz_color"`
	ImagePath       string          `json:"image_path,omitempty"`
	Landmarks       json.RawMessage `json:"landmarks_data,omitempty"`
	ScaleCmPerPx    float64         `json:"scale_cm_per_px"`
	Method          string          `json:"method"`
	Notes           string          `json:"notes,omitempty"`
	MeasurementDate time.Time       `json:"measurement_date"`
	CreatedAt       time.Time       `json:"created_at"`
}

// Validate checks if the measurement has valid field values
func (m *Measurement) Validate() error {
	if m.BabyID == "" {
		return fmt.Errorf("baby_id is required")
	}
	if m.HeightCm <= 0 {
		return fmt.Errorf("height_cm must be positive (got %v)", m.HeightCm)
	}
	if m.WeightKg < 0 {
		return fmt.Errorf("weight_kg cannot be negative (got %v)", m.WeightKg)
	}
	if m.AgeMonths < 0 {
		return fmt.Errorf("age_months cannot be negative (got %d)", m.AgeMonths)
	}
	if m.HAZCategory == "" {
		return fmt.Errorf("haz_category is required")
	}
	if m.ScaleCmPerPx <= 0 {
		return fmt.Errorf("scale_cm_per_px must be positive (got %v)", m.ScaleCmPerPx)
	}
	if m.MeasurementDate.IsZero() {
		return fmt.Errorf("measurement_date is required")
	}
	if len(m.Landmarks) > 0 && !json.Valid(m.Landmarks) {
		return fmt.Errorf("landmarks_data must be valid JSON")
	}
	return nil
}
