package usecase

import "time"

// Published on Kafka after each lifecycle mutation. Other replicas consume
// these to drop stale cache entries.
type OrderEventMsg struct {
	Type          string    `json:"type"`
	OrderID       string    `json:"orderId"`
	UserID        string    `json:"userId"`
	Status        string    `json:"status"`
	PaymentStatus string    `json:"paymentStatus"`
	OccurredAt    time.Time `json:"occurredAt"`
}

const (
	EventOrderCreated     = "order.created"
	EventOrderUpdated     = "order.updated"
	EventPaymentConfirmed = "order.payment_confirmed"
	EventOrderCancelled   = "order.cancelled"
	EventOrderDeleted     = "order.deleted"
)
