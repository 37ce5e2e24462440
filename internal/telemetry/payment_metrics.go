package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// PaymentMetrics counts checkout and callback outcomes. All methods are
// nil-receiver safe so callers can run without a meter provider in tests.
type PaymentMetrics struct {
	ordersCreated    metric.Int64Counter
	checkoutFailures metric.Int64Counter
	callbacks        metric.Int64Counter
}

func NewPaymentMetrics() (*PaymentMetrics, error) {
	meter := otel.Meter("bazarly/payment")

	ordersCreated, err := meter.Int64Counter("orders_created_total",
		metric.WithDescription("Orders created through checkout"))
	if err != nil {
		return nil, err
	}

	checkoutFailures, err := meter.Int64Counter("checkout_failures_total",
		metric.WithDescription("Checkout attempts rejected before an order was created"))
	if err != nil {
		return nil, err
	}

	callbacks, err := meter.Int64Counter("payment_callbacks_total",
		metric.WithDescription("Gateway callbacks received, by kind and outcome"))
	if err != nil {
		return nil, err
	}

	return &PaymentMetrics{
		ordersCreated:    ordersCreated,
		checkoutFailures: checkoutFailures,
		callbacks:        callbacks,
	}, nil
}

func (m *PaymentMetrics) OrderCreated(ctx context.Context, method string) {
	if m == nil {
		return
	}
	m.ordersCreated.Add(ctx, 1, metric.WithAttributes(attribute.String("payment_method", method)))
}

func (m *PaymentMetrics) CheckoutFailed(ctx context.Context, reason string) {
	if m == nil {
		return
	}
	m.checkoutFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}

func (m *PaymentMetrics) Callback(ctx context.Context, kind, outcome string) {
	if m == nil {
		return
	}
	m.callbacks.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("outcome", outcome),
	))
}
