// Package measure turns an image of a child into a scored height measurement.
//
// A Detector locates the child in the image and converts the head-to-feet pixel
// distance to centimetres. Measurer wraps any Detector with input validation, a
// timeout, a concurrency limit, height clamping, and scoring from the
// anthropometry package, so detectors never touch scoring logic.
package measure

import (
	"context"
	"errors"
	"fmt"

	"github.com/babyscan/babyscan/internal/anthropometry"
)

var (
	// ErrInvalidScale is returned when the pixel-to-centimetre scale is not positive.
	ErrInvalidScale = errors.New("pixel-to-cm scale must be positive")

	// ErrDetectionFailed is returned when no subject could be located in the image,
	// including when the image cannot be decoded. A detection with low confidence
	// is a success; its confidence is reported in Landmarks.
	ErrDetectionFailed = errors.New("no subject detected in image")

	// ErrTimeout is returned when detection does not finish within the allotted time.
	ErrTimeout = errors.New("measurement timed out")
)

// Height bounds applied to every detector output, in centimetres.
const (
	MinHeightCm = 20.0
	MaxHeightCm = 130.0
)

// DefaultScaleCmPerPx is the scale used when the caller supplies none.
const DefaultScaleCmPerPx = 0.1

// Point is a position in normalised image coordinates, both axes in [0, 1].
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Landmarks are the body points a detector used to derive height.
type Landmarks struct {
	Head       Point   `json:"head"`
	Feet       Point   `json:"feet"`
	Confidence float64 `json:"confidence"`
}

// Detection is the raw output of a Detector.
type Detection struct {
	HeightCm  float64
	Landmarks *Landmarks
	Method    string
}

// Detector estimates standing or lying height from an image.
//
// Implementations must honour ctx cancellation and return ErrDetectionFailed
// (possibly wrapped) when no subject can be found.
type Detector interface {
	Detect(ctx context.Context, image []byte, scaleCmPerPx float64) (*Detection, error)
}

// Request is one measurement job.
type Request struct {
	Image        []byte
	AgeMonths    int
	Sex          anthropometry.Sex
	ScaleCmPerPx float64
}

// Validate checks the request before any detector work is started.
func (r Request) Validate() error {
	if !(r.ScaleCmPerPx > 0) {
		return fmt.Errorf("%w (got %v)", ErrInvalidScale, r.ScaleCmPerPx)
	}
	if !r.Sex.IsValid() {
		return fmt.Errorf("invalid sex: %q", r.Sex)
	}
	return nil
}

// Result is a complete, scored measurement.
type Result struct {
	HeightCm     float64    `json:"height_cm"`
	WeightKg     float64    `json:"weight_kg"`
	HAZ          float64    `json:"haz"`
	HAZCategory  string     `json:"haz_cat"`
	HAZColor     string     `json:"haz_color"`
	ScaleCmPerPx float64    `json:"scale_cm_per_px"`
	Method       string     `json:"method"`
	Landmarks    *Landmarks `json:"landmarks,omitempty"`
}

// ClampHeight limits h to the plausible infant range [MinHeightCm, MaxHeightCm].
func ClampHeight(h float64) float64 {
	if h < MinHeightCm {
		return MinHeightCm
	}
	if h > MaxHeightCm {
		return MaxHeightCm
	}
	return h
}

// Score assembles a Result from a detection. The height is clamped first.
func Score(d *Detection, ageMonths int, sex anthropometry.Sex, scaleCmPerPx float64) *Result {
	height := ClampHeight(d.HeightCm)
	a := anthropometry.Assess(height, float64(ageMonths), sex)
	return &Result{
		HeightCm:     height,
		WeightKg:     anthropometry.EstimateWeight(height),
		HAZ:          a.HAZ,
		HAZCategory:  a.Category,
		HAZColor:     a.Color,
		ScaleCmPerPx: scaleCmPerPx,
		Method:       d.Method,
		Landmarks:    d.Landmarks,
	}
}
