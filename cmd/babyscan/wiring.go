package main

import (
	"context"
	"fmt"
	"time"

	"github.com/babyscan/babyscan/internal/config"
	"github.com/babyscan/babyscan/internal/events"
	"github.com/babyscan/babyscan/internal/measure"
	"github.com/babyscan/babyscan/internal/scan"
)

// eventsConnectTimeout bounds broker dialing at startup.
const eventsConnectTimeout = 10 * time.Second

// newDetector builds the detector selected by the settings.
func newDetector(s config.Settings) (measure.Detector, error) {
	switch s.Detector {
	case config.DetectorVision:
		d, err := measure.NewVisionDetector(measure.VisionConfig{
			Model:             s.VisionModel,
			RequestsPerMinute: s.VisionRequestsPerMinute,
			Logger:            logger,
		})
		if err != nil {
			return nil, err
		}
		return d, nil
	case config.DetectorMock, "":
		return measure.NewMockDetector(s.SimulatedDelay, time.Now().UnixNano()), nil
	default:
		return nil, fmt.Errorf("unknown detector %q", s.Detector)
	}
}

// newScanService wires detector, measurer, publisher and store.
// The caller must Close the returned publisher.
func newScanService(ctx context.Context, s config.Settings) (*scan.Service, events.Publisher, error) {
	detector, err := newDetector(s)
	if err != nil {
		return nil, nil, err
	}

	measurer, err := measure.NewMeasurer(detector, measure.Config{
		Timeout:       s.MeasureTimeout,
		MaxConcurrent: s.MaxConcurrent,
		Logger:        logger,
	})
	if err != nil {
		return nil, nil, err
	}

	connectCtx, cancel := context.WithTimeout(ctx, eventsConnectTimeout)
	defer cancel()
	publisher, err := events.NewPublisher(connectCtx, s.EventsURL, s.EventsSubject)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect event publisher: %w", err)
	}

	svc, err := scan.NewService(store, measurer, publisher, scan.Config{
		DefaultScaleCmPerPx: s.DefaultScaleCmPerPx,
		Logger:              logger,
	})
	if err != nil {
		_ = publisher.Close()
		return nil, nil, err
	}
	return svc, publisher, nil
}
