package measure

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// Defaults for MockDetector.
const (
	MockReferencePixels = 800
	MockJitterCm        = 4.0
	MockDelay           = 2 * time.Second
	MockMethod          = "YOLO v8 Pose + MediaPipe"
)

// MockDetector stands in for a pose model. It ignores the image, assumes the
// child spans ReferencePixels from head to feet, and adds uniform jitter of
// ±JitterCm/2. It never fails except when ctx ends during the artificial delay.
type MockDetector struct {
	ReferencePixels float64
	JitterCm        float64
	Delay           time.Duration

	mu   sync.Mutex
	rand *rand.Rand
}

// NewMockDetector returns a mock with the default reference height, jitter and
// the given delay. seed fixes the jitter sequence.
func NewMockDetector(delay time.Duration, seed int64) *MockDetector {
	return &MockDetector{
		ReferencePixels: MockReferencePixels,
		JitterCm:        MockJitterCm,
		Delay:           delay,
		rand:            rand.New(rand.NewSource(seed)),
	}
}

// Detect implements Detector.
func (m *MockDetector) Detect(ctx context.Context, _ []byte, scaleCmPerPx float64) (*Detection, error) {
	if m.Delay > 0 {
		timer := time.NewTimer(m.Delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	base := m.ReferencePixels * scaleCmPerPx
	return &Detection{
		HeightCm: base + (m.next()-0.5)*m.JitterCm,
		Landmarks: &Landmarks{
			Head:       Point{X: 0.5, Y: 0.1},
			Feet:       Point{X: 0.5, Y: 0.9},
			Confidence: 0.95,
		},
		Method: MockMethod,
	}, nil
}

func (m *MockDetector) next() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.rand == nil {
		m.rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return m.rand.Float64()
}
