package domain

import (
	"fmt"
	"math"
	"time"
)

type OrderStatus string

const (
	StatusPending    OrderStatus = "PENDING"
	StatusProcessing OrderStatus = "PROCESSING"
	StatusShipped    OrderStatus = "SHIPPED"
	StatusDelivered  OrderStatus = "DELIVERED"
	StatusCancelled  OrderStatus = "CANCELLED"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "PENDING"
	PaymentSucceeded PaymentStatus = "SUCCEEDED"
	PaymentFailed    PaymentStatus = "FAILED"
	PaymentRefunded  PaymentStatus = "REFUNDED"
)

func ParseOrderStatus(s string) (OrderStatus, error) {
	switch OrderStatus(s) {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return OrderStatus(s), nil
	}
	return "", fmt.Errorf("unknown order status %q", s)
}

type OrderItem struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

type ShippingAddress struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zipCode"`
	Country string `json:"country"`
}

type Order struct {
	ID              string          `json:"id"`
	UserID          string          `json:"userId"`
	Items           []OrderItem     `json:"items"`
	TotalAmount     float64         `json:"totalAmount"`
	Status          OrderStatus     `json:"status"`
	PaymentStatus   PaymentStatus   `json:"paymentStatus"`
	PaymentIntentID string          `json:"paymentIntentId,omitempty"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	Version         int64           `json:"-"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// TotalOf sums price×quantity over items. The total is computed once at
// creation and stored on the order; later operations never recompute it.
func TotalOf(items []OrderItem) float64 {
	var sum float64
	for _, it := range items {
		sum += it.Price * float64(it.Quantity)
	}
	return sum
}

// MinorUnits converts a major-unit amount to integer minor units
// (25.00 -> 2500 cents), rounding to the nearest unit.
func MinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// SetStatus overwrites the status with no transition check. This is the
// administrative path; guarded transitions go through MarkPaymentSucceeded
// and the cancel flow.
func (o *Order) SetStatus(s OrderStatus) {
	o.Status = s
}

// Cancellable reports whether cancellation is anything but a no-op.
// CANCELLED is terminal.
func (o *Order) Cancellable() bool {
	return o.Status != StatusCancelled
}

// RefundDue reports whether cancelling this order must trigger a refund.
func (o *Order) RefundDue() bool {
	return o.PaymentStatus == PaymentSucceeded && o.PaymentIntentID != ""
}

// MarkPaymentSucceeded applies the settled-payment transition.
func (o *Order) MarkPaymentSucceeded() {
	o.PaymentStatus = PaymentSucceeded
	o.Status = StatusProcessing
}
