package measure

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// Config configures a Measurer.
type Config struct {
	// Timeout bounds each detection. Zero means no timeout beyond ctx.
	Timeout time.Duration

	// MaxConcurrent limits detections in flight across all callers.
	// Zero means unlimited.
	MaxConcurrent int

	Logger *slog.Logger
}

// Measurer runs a Detector and scores its output. It is safe for concurrent use.
type Measurer struct {
	detector Detector
	timeout  time.Duration
	sem      *semaphore.Weighted
	limit    int
	logger   *slog.Logger
}

// NewMeasurer wraps detector.
func NewMeasurer(detector Detector, cfg Config) (*Measurer, error) {
	if detector == nil {
		return nil, fmt.Errorf("detector is required")
	}
	if cfg.Timeout < 0 {
		return nil, fmt.Errorf("timeout cannot be negative (got %v)", cfg.Timeout)
	}
	if cfg.MaxConcurrent < 0 {
		return nil, fmt.Errorf("max concurrent cannot be negative (got %d)", cfg.MaxConcurrent)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var sem *semaphore.Weighted
	if cfg.MaxConcurrent > 0 {
		sem = semaphore.NewWeighted(int64(cfg.MaxConcurrent))
	}

	return &Measurer{
		detector: detector,
		timeout:  cfg.Timeout,
		sem:      sem,
		limit:    cfg.MaxConcurrent,
		logger:   logger,
	}, nil
}

// Measure validates req, runs detection and returns the scored result.
//
// Errors: ErrInvalidScale before any detection work; ErrTimeout when the
// configured timeout or the caller's deadline passes, including time spent
// waiting for a concurrency slot; ErrDetectionFailed from the detector;
// context.Canceled when the caller cancels.
func (m *Measurer) Measure(ctx context.Context, req Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	age := req.AgeMonths
	if age < 0 {
		age = 0
	}

	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	if m.sem != nil {
		if err := m.sem.Acquire(ctx, 1); err != nil {
			return nil, m.contextError(ctx)
		}
		defer m.sem.Release(1)
	}

	start := time.Now()
	det, err := m.detect(ctx, req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, m.contextError(ctx)
		}
		return nil, err
	}
	if det == nil {
		return nil, fmt.Errorf("%w: detector returned no result", ErrDetectionFailed)
	}

	res := Score(det, age, req.Sex, req.ScaleCmPerPx)
	m.logger.Debug("measurement complete",
		"method", res.Method,
		"height_cm", res.HeightCm,
		"haz", res.HAZ,
		"category", res.HAZCategory,
		"duration", time.Since(start))
	return res, nil
}

// detect runs the detector on its own goroutine so a detector that ignores ctx
// cannot hold the caller past the deadline.
func (m *Measurer) detect(ctx context.Context, req Request) (*Detection, error) {
	type outcome struct {
		det *Detection
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		det, err := m.detector.Detect(ctx, req.Image, req.ScaleCmPerPx)
		done <- outcome{det, err}
	}()

	select {
	case o := <-done:
		return o.det, o.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// contextError reports an expired deadline (ours or the caller's) as ErrTimeout
// and passes cancellation through unchanged.
func (m *Measurer) contextError(ctx context.Context) error {
	err := ctx.Err()
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	return err
}

// MeasureAll measures every request concurrently. Results and errors are aligned
// with reqs; one failure does not stop the others.
func (m *Measurer) MeasureAll(ctx context.Context, reqs []Request) ([]*Result, []error) {
	results := make([]*Result, len(reqs))
	errs := make([]error, len(reqs))

	g, gctx := errgroup.WithContext(ctx)
	if m.limit > 0 {
		g.SetLimit(m.limit)
	}
	for i := range reqs {
		g.Go(func() error {
			results[i], errs[i] = m.Measure(gctx, reqs[i])
			return nil
		})
	}
	_ = g.Wait() // goroutines never return an error
	return results, errs
}
