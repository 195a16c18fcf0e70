package otel

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Counters are the decode counters the archive tool reports.
type Counters struct {
	decoded metric.Int64Counter
	failed  metric.Int64Counter
	events  metric.Int64Counter
}

// NewCounters registers the bsor.* instruments on meter.
func NewCounters(meter metric.Meter) (*Counters, error) {
	decoded, err := meter.Int64Counter("bsor.replays.decoded",
		metric.WithDescription("Replays decoded successfully"))
	if err != nil {
		return nil, fmt.Errorf("failed to create decoded counter: %w", err)
	}
	failed, err := meter.Int64Counter("bsor.replays.failed",
		metric.WithDescription("Replays that failed to decode"))
	if err != nil {
		return nil, fmt.Errorf("failed to create failed counter: %w", err)
	}
	events, err := meter.Int64Counter("bsor.events.decoded",
		metric.WithDescription("Events decoded, by kind"))
	if err != nil {
		return nil, fmt.Errorf("failed to create events counter: %w", err)
	}
	return &Counters{decoded: decoded, failed: failed, events: events}, nil
}

// ReplayDecoded records a successful decode and its per-kind event counts.
func (c *Counters) ReplayDecoded(ctx context.Context, eventsByKind map[string]int) {
	c.decoded.Add(ctx, 1)
	for kind, n := range eventsByKind {
		c.events.Add(ctx, int64(n), metric.WithAttributes(attribute.String("kind", kind)))
	}
}

// ReplayFailed records a failed decode, tagged with a short reason.
func (c *Counters) ReplayFailed(ctx context.Context, reason string) {
	c.failed.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}
