package events

import (
	"context"
	"fmt"
	"net/url"
	"sync"
)

// Publisher delivers measurement events to a broker.
type Publisher interface {
	Publish(ctx context.Context, event *MeasurementRecorded) error
	Close() error
}

// NewPublisher selects a publisher from the URL scheme:
// "" gives a no-op publisher, nats:// a NATS publisher, amqp:// or amqps://
// a RabbitMQ publisher. subject is the NATS subject or AMQP queue name.
func NewPublisher(ctx context.Context, rawURL, subject string) (Publisher, error) {
	if rawURL == "" {
		return NopPublisher{}, nil
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid events url: %w", err)
	}

	switch u.Scheme {
	case "nats", "tls":
		return NewNATSPublisher(ctx, rawURL, subject)
	case "amqp", "amqps":
		return NewAMQPPublisher(ctx, rawURL, subject)
	default:
		return nil, fmt.Errorf("unsupported events url scheme %q", u.Scheme)
	}
}

// NopPublisher drops every event.
type NopPublisher struct{}

// Publish implements Publisher
func (NopPublisher) Publish(context.Context, *MeasurementRecorded) error { return nil }

// Close implements Publisher
func (NopPublisher) Close() error { return nil }

// MemoryPublisher keeps published events in memory. Safe for concurrent use.
type MemoryPublisher struct {
	mu     sync.Mutex
	events []*MeasurementRecorded
	// Err, when set, is returned from Publish instead of recording.
	Err error
}

// Publish implements Publisher
func (p *MemoryPublisher) Publish(ctx context.Context, event *MeasurementRecorded) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	p.events = append(p.events, event)
	return nil
}

// Events returns a copy of the recorded events in publish order.
func (p *MemoryPublisher) Events() []*MeasurementRecorded {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]*MeasurementRecorded, len(p.events))
	copy(out, p.events)
	return out
}

// Close implements Publisher
func (p *MemoryPublisher) Close() error { return nil }
