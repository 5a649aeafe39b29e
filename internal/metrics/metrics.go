package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PaymentMetrics holds the counters for the checkout lifecycle.
type PaymentMetrics struct {
	OrdersCreatedTotal *prometheus.CounterVec
	CallbacksTotal     *prometheus.CounterVec
	SettlementsTotal   *prometheus.CounterVec
	APIRequestDuration *prometheus.HistogramVec
}

// NewPaymentMetrics registers the collectors on reg. main passes the
// registry it serves on /metrics; tests pass a fresh one.
func NewPaymentMetrics(reg prometheus.Registerer) *PaymentMetrics {
	factory := promauto.With(reg)
	return &PaymentMetrics{
		OrdersCreatedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stryve_orders_created_total",
				Help: "Create-order attempts by result",
			},
			[]string{"result"},
		),
		CallbacksTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stryve_callbacks_total",
				Help: "Customer callbacks by redirect outcome and whether Stryve confirmed the status",
			},
			[]string{"outcome", "verified"},
		),
		SettlementsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stryve_settlements_total",
				Help: "Payment session settlements sent to Shopify",
			},
			[]string{"action", "result"},
		),
		APIRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "stryve_api_request_duration_seconds",
				Help:    "Latency of Stryve API calls",
				Buckets: prometheus.ExponentialBuckets(0.05, 2, 10), // 50ms .. ~25s
			},
			[]string{"operation", "result"},
		),
	}
}

func (m *PaymentMetrics) RecordOrderCreated(result string) {
	m.OrdersCreatedTotal.WithLabelValues(result).Inc()
}

func (m *PaymentMetrics) RecordCallback(outcome string, verified bool) {
	m.CallbacksTotal.WithLabelValues(outcome, strconv.FormatBool(verified)).Inc()
}

func (m *PaymentMetrics) RecordSettlement(action, result string) {
	m.SettlementsTotal.WithLabelValues(action, result).Inc()
}

// ObserveStryveCall has the shape of stryve.Observer.
func (m *PaymentMetrics) ObserveStryveCall(operation, result string, elapsed time.Duration) {
	m.APIRequestDuration.WithLabelValues(operation, result).Observe(elapsed.Seconds())
}
