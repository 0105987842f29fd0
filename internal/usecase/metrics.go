package usecase

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ordersCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Orders created (payment intent attached)",
	})

	paymentsConfirmed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_payments_confirmed_total",
		Help: "Payments confirmed as succeeded by the gateway",
	})

	ordersCancelled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_cancelled_total",
		Help: "Orders cancelled",
	})

	refundsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_refunds_failed_total",
		Help: "Refund attempts that failed during cancellation",
	})
)
