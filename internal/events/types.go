// Package events publishes measurement notifications to external brokers.
package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/babyscan/babyscan/internal/types"
)

// EventType identifies the kind of event on the wire.
type EventType string

const (
	// EventTypeMeasurementRecorded is emitted after a scan is stored
	EventTypeMeasurementRecorded EventType = "measurement.recorded"
)

// MeasurementRecorded announces a newly stored measurement.
type MeasurementRecorded struct {
	ID            string    `json:"id"`
	Type          EventType `json:"type"`
	Timestamp     time.Time `json:"timestamp"`
	MeasurementID string    `json:"measurement_id"`
	BabyID        string    `json:"baby_id"`
	HeightCm      float64   `json:"height_cm"`
	WeightKg      float64   `json:"weight_kg"`
	AgeMonths     int       `json:"age_months"`
	HAZScore      float64   `json:"haz_score"`
	HAZCategory   string    `json:"haz_category"`
	Method        string    `json:"method,omitempty"`
}

// NewMeasurementRecorded builds the event for a stored measurement.
func NewMeasurementRecorded(m *types.Measurement) *MeasurementRecorded {
	return &MeasurementRecorded{
		ID:            uuid.New().String(),
		Type:          EventTypeMeasurementRecorded,
		Timestamp:     time.Now(),
		MeasurementID: m.ID,
		BabyID:        m.BabyID,
		HeightCm:      m.HeightCm,
		WeightKg:      m.WeightKg,
		AgeMonths:     m.AgeMonths,
		HAZScore:      m.HAZScore,
		HAZCategory:   m.HAZCategory,
		Method:        m.Method,
	}
}

// Encode returns the JSON wire form of the event.
func (e *MeasurementRecorded) Encode() ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event: %w", err)
	}
	return data, nil
}
