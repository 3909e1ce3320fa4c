// Package scan turns an uploaded image into a stored, scored measurement.
package scan

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"os"
	"time"

	"github.com/babyscan/babyscan/internal/events"
	"github.com/babyscan/babyscan/internal/measure"
	"github.com/babyscan/babyscan/internal/types"
)

// Store is the subset of storage the scan service needs.
type Store interface {
	GetBaby(ctx context.Context, id string) (*types.Baby, error)
	CreateMeasurement(ctx context.Context, m *types.Measurement) error
}

// Config configures a Service.
type Config struct {
	// DefaultScaleCmPerPx replaces a zero scale in a Request.
	// Zero means measure.DefaultScaleCmPerPx.
	DefaultScaleCmPerPx float64

	Logger *slog.Logger

	// Now is the clock used for ages and measurement dates. Defaults to time.Now.
	Now func() time.Time
}

// Request is a single scan of one baby.
type Request struct {
	BabyID string
	Image  []byte
	// ImagePath is recorded with the measurement when the image came from disk.
	ImagePath string
	// ScaleCmPerPx of zero means the configured default; negative is rejected.
	ScaleCmPerPx float64
	Notes        string
}

// Service runs measurements for stored babies and records the results.
type Service struct {
	store        Store
	measurer     *measure.Measurer
	publisher    events.Publisher
	defaultScale float64
	logger       *slog.Logger
	now          func() time.Time
}

// NewService wires a store, measurer and event publisher together.
// A nil publisher disables events.
func NewService(store Store, measurer *measure.Measurer, publisher events.Publisher, cfg Config) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if measurer == nil {
		return nil, fmt.Errorf("measurer is required")
	}
	if cfg.DefaultScaleCmPerPx < 0 {
		return nil, fmt.Errorf("default scale cannot be negative (got %v)", cfg.DefaultScaleCmPerPx)
	}
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	scale := cfg.DefaultScaleCmPerPx
	if scale == 0 {
		scale = measure.DefaultScaleCmPerPx
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		store:        store,
		measurer:     measurer,
		publisher:    publisher,
		defaultScale: scale,
		logger:       logger,
		now:          now,
	}, nil
}

// DefaultScale returns the scale applied to requests that carry none.
func (s *Service) DefaultScale() float64 {
	return s.defaultScale
}

// Scan measures the baby in req.Image and stores the result.
//
// The baby's age is computed at the time of the scan. A failed event publish
// is logged and does not fail the scan.
func (s *Service) Scan(ctx context.Context, req Request) (*types.Measurement, error) {
	scale := req.ScaleCmPerPx
	if scale == 0 {
		scale = s.defaultScale
	}
	if !(scale > 0) || math.IsInf(scale, 0) {
		return nil, fmt.Errorf("%w (got %v)", measure.ErrInvalidScale, req.ScaleCmPerPx)
	}

	baby, err := s.store.GetBaby(ctx, req.BabyID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	age := baby.AgeInMonths(now)

	result, err := s.measurer.Measure(ctx, measure.Request{
		Image:        req.Image,
		AgeMonths:    age,
		Sex:          baby.Sex,
		ScaleCmPerPx: scale,
	})
	if err != nil {
		return nil, err
	}

	m := &types.Measurement{
		BabyID:          baby.ID,
		HeightCm:        result.HeightCm,
		WeightKg:        result.WeightKg,
		AgeMonths:       age,
		HAZScore:        result.HAZ,
		HAZCategory:     result.HAZCategory,
		HAZColor:        result.HAZColor,
		ImagePath:       req.ImagePath,
		ScaleCmPerPx:    result.ScaleCmPerPx,
		Method:          result.Method,
		Notes:           req.Notes,
		MeasurementDate: now,
		CreatedAt:       now,
	}
	if result.Landmarks != nil {
		data, err := json.Marshal(result.Landmarks)
		if err != nil {
			return nil, fmt.Errorf("failed to encode landmarks: %w", err)
		}
		m.Landmarks = data
	}

	if err := s.store.CreateMeasurement(ctx, m); err != nil {
		return nil, fmt.Errorf("failed to store measurement: %w", err)
	}

	s.logger.Info("Measurement recorded",
		"baby_id", baby.ID,
		"measurement_id", m.ID,
		"height_cm", m.HeightCm,
		"haz", m.HAZScore,
		"category", m.HAZCategory)

	if err := s.publisher.Publish(ctx, events.NewMeasurementRecorded(m)); err != nil {
		s.logger.Warn("Failed to publish measurement event",
			"measurement_id", m.ID,
			"error", err)
	}

	return m, nil
}

// ScanFile reads an image from disk and scans it, recording the path.
func (s *Service) ScanFile(ctx context.Context, babyID, path string, scaleCmPerPx float64, notes string) (*types.Measurement, error) {
	img, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	return s.Scan(ctx, Request{
		BabyID:       babyID,
		Image:        img,
		ImagePath:    path,
		ScaleCmPerPx: scaleCmPerPx,
		Notes:        notes,
	})
}
