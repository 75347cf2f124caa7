package usecase

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

var tracer = otel.Tracer("wheats/usecase")

type lifecycleMetrics struct {
	cartOps   metric.Int64Counter
	checkouts metric.Int64Counter
	revenue   metric.Int64Counter
}

func newLifecycleMetrics() *lifecycleMetrics {
	meter := otel.Meter("wheats/usecase")

	cartOps, err := meter.Int64Counter("wheats.cart.operations",
		metric.WithDescription("cart operations by kind and result"))
	if err != nil {
		cartOps = noop.Int64Counter{}
	}
	checkouts, err := meter.Int64Counter("wheats.checkout.attempts",
		metric.WithDescription("checkout attempts by result"))
	if err != nil {
		checkouts = noop.Int64Counter{}
	}
	revenue, err := meter.Int64Counter("wheats.checkout.revenue",
		metric.WithDescription("sum of paid order totals"))
	if err != nil {
		revenue = noop.Int64Counter{}
	}

	return &lifecycleMetrics{cartOps: cartOps, checkouts: checkouts, revenue: revenue}
}

func (m *lifecycleMetrics) cartOp(ctx context.Context, op string, err error) {
	m.cartOps.Add(ctx, 1, metric.WithAttributes(
		attribute.String("op", op),
		attribute.String("result", resultOf(err)),
	))
}

func (m *lifecycleMetrics) checkout(ctx context.Context, total int64, err error) {
	m.checkouts.Add(ctx, 1, metric.WithAttributes(attribute.String("result", resultOf(err))))
	if err == nil {
		m.revenue.Add(ctx, total)
	}
}

// ok か エラーコード
func resultOf(err error) string {
	if err == nil {
		return "ok"
	}
	if he, ok := AsHTTPError(err); ok {
		return he.Code
	}
	return CodeInternal
}
