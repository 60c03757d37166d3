package otel

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	// engineMetrics holds the singleton instance
	engineMetrics *EngineMetrics
	// meter is the global meter for matching engine metrics
	meter = otel.GetMeterProvider().Meter(instrumentationName)
)

// EngineMetrics holds metrics for matching engine operations
type EngineMetrics struct {
	ordersTotal    metric.Int64Counter
	tradesTotal    metric.Int64Counter
	rollbacksTotal metric.Int64Counter
	matchDuration  metric.Float64Histogram
}

// GetEngineMetrics returns the EngineMetrics singleton
func GetEngineMetrics() *EngineMetrics {
	if engineMetrics == nil {
		ordersTotal, err := meter.Int64Counter(
			"engine.orders.total",
			metric.WithDescription("Total number of order requests processed"),
			metric.WithUnit("{order}"),
		)
		if err != nil {
			return &EngineMetrics{}
		}

		tradesTotal, err := meter.Int64Counter(
			"engine.trades.total",
			metric.WithDescription("Total number of trades executed"),
			metric.WithUnit("{trade}"),
		)
		if err != nil {
			return &EngineMetrics{}
		}

		rollbacksTotal, err := meter.Int64Counter(
			"engine.rollbacks.total",
			metric.WithDescription("Total number of matching attempts rolled back"),
			metric.WithUnit("{rollback}"),
		)
		if err != nil {
			return &EngineMetrics{}
		}

		matchDuration, err := meter.Float64Histogram(
			"engine.match.duration",
			metric.WithDescription("Time spent matching one order request"),
			metric.WithUnit("ms"),
		)
		if err != nil {
			return &EngineMetrics{}
		}

		engineMetrics = &EngineMetrics{
			ordersTotal:    ordersTotal,
			tradesTotal:    tradesTotal,
			rollbacksTotal: rollbacksTotal,
			matchDuration:  matchDuration,
		}
	}

	return engineMetrics
}

// RecordOrder counts one processed request, tagged by operation and outcome
func (m *EngineMetrics) RecordOrder(ctx context.Context, operation, outcome string) {
	if m.ordersTotal == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("engine.operation", operation),
		attribute.String("engine.outcome", outcome),
	}
	m.ordersTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordTrades counts trades executed for one symbol
func (m *EngineMetrics) RecordTrades(ctx context.Context, symbol string, count int64) {
	if m.tradesTotal == nil || count == 0 {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("engine.symbol", symbol),
	}
	m.tradesTotal.Add(ctx, count, metric.WithAttributes(attrs...))
}

// RecordRollback counts one rolled-back matching attempt
func (m *EngineMetrics) RecordRollback(ctx context.Context, symbol string) {
	if m.rollbacksTotal == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("engine.symbol", symbol),
	}
	m.rollbacksTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordMatchDuration records the elapsed time of one matching attempt
func (m *EngineMetrics) RecordMatchDuration(ctx context.Context, symbol string, elapsed time.Duration) {
	if m.matchDuration == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("engine.symbol", symbol),
	}
	m.matchDuration.Record(ctx, float64(elapsed.Microseconds())/1000.0, metric.WithAttributes(attrs...))
}
