// Copyright 2026 © The Agentbridge Authors
// SPDX-License-Identifier: Apache-2.0

package telemetry

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds the bridge's instruments. Instruments are created lazily on
// first use against the global meter provider.
type Metrics struct {
	composeDuration metric.Float64Histogram
	composeTotal    metric.Int64Counter
	translateTotal  metric.Int64Counter
	resolveTotal    metric.Int64Counter
	duplicateTotal  metric.Int64Counter
}

var (
	metricsOnce sync.Once
	metricsInst *Metrics
)

// BridgeMetrics returns the process-wide metric set.
func BridgeMetrics() *Metrics {
	metricsOnce.Do(func() {
		meter := otel.Meter("agentbridge")
		m := &Metrics{}
		m.composeDuration, _ = meter.Float64Histogram(
			"bridge.compose.duration",
			metric.WithDescription("State composition duration in seconds"),
			metric.WithUnit("s"),
		)
		m.composeTotal, _ = meter.Int64Counter(
			"bridge.compose.total",
			metric.WithDescription("State compositions performed"),
		)
		m.translateTotal, _ = meter.Int64Counter(
			"bridge.translate.total",
			metric.WithDescription("Entity translations performed, by entity and direction"),
		)
		m.resolveTotal, _ = meter.Int64Counter(
			"bridge.capability.resolve.total",
			metric.WithDescription("Capability resolutions, by type and outcome"),
		)
		m.duplicateTotal, _ = meter.Int64Counter(
			"bridge.duplicate.swallowed.total",
			metric.WithDescription("Duplicate-resource errors swallowed at the proxy layer"),
		)
		metricsInst = m
	})
	return metricsInst
}

// RecordCompose records one state composition.
func (m *Metrics) RecordCompose(ctx context.Context, d time.Duration, cacheHit bool) {
	attrs := metric.WithAttributes(attribute.Bool("cache_hit", cacheHit))
	m.composeTotal.Add(ctx, 1, attrs)
	m.composeDuration.Record(ctx, d.Seconds(), attrs)
}

// RecordTranslate records one entity translation.
func (m *Metrics) RecordTranslate(ctx context.Context, entity, direction string) {
	m.translateTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("entity", entity),
		attribute.String("direction", direction),
	))
}

// RecordResolve records one capability resolution attempt.
func (m *Metrics) RecordResolve(ctx context.Context, capability string, ok bool) {
	m.resolveTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("capability", capability),
		attribute.Bool("resolved", ok),
	))
}

// RecordDuplicateSwallowed records one swallowed duplicate-resource error.
func (m *Metrics) RecordDuplicateSwallowed(ctx context.Context, op string) {
	m.duplicateTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("op", op)))
}
