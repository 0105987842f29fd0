package usecase

import (
	"context"

	domain "github.com/Daniel-Kav/order-microservice/internal/entity"
)

// OrderPatch is a partial update. Nil fields are left untouched; the store
// refreshes updated_at on every call regardless.
type OrderPatch struct {
	Status          *domain.OrderStatus
	PaymentStatus   *domain.PaymentStatus
	PaymentIntentID *string
}

// OrderRepo is the persistence contract. Lookups return (nil, nil) when no
// record matches; the lifecycle translates that into ErrNotFound.
type OrderRepo interface {
	Insert(ctx context.Context, o *domain.Order) error
	FindByID(ctx context.Context, id string) (*domain.Order, error)
	FindByUser(ctx context.Context, userID string) ([]domain.Order, error)
	FindAll(ctx context.Context) ([]domain.Order, error)

	// UpdateFields applies the patch unconditionally (administrative path).
	UpdateFields(ctx context.Context, id string, patch OrderPatch) (*domain.Order, error)

	// UpdateFieldsIf applies the patch only when the stored version still
	// matches; returns ErrConflict on a lost race.
	UpdateFieldsIf(ctx context.Context, id string, version int64, patch OrderPatch) (*domain.Order, error)

	Delete(ctx context.Context, id string) (bool, error)
}

// IntentStatusSucceeded is the gateway status that settles an order.
const IntentStatusSucceeded = "succeeded"

// PaymentIntent is the gateway-side view of a charge.
type PaymentIntent struct {
	ID     string
	Status string
}

// PaymentGateway adapts the external payment processor. Amounts cross this
// boundary in integer minor units; errors propagate untranslated.
type PaymentGateway interface {
	CreateIntent(ctx context.Context, o *domain.Order) (*PaymentIntent, error)
	GetIntentStatus(ctx context.Context, intentID string) (*PaymentIntent, error)
	// ConfirmIntent triggers gateway-side confirmation. Part of the contract;
	// the guarded confirm flow only polls GetIntentStatus.
	ConfirmIntent(ctx context.Context, intentID string) (*PaymentIntent, error)
	// Refund refunds the intent; a nil amount means the full charge.
	Refund(ctx context.Context, intentID string, amountMinor *int64) (string, error)
}

// OrderCache is a best-effort read cache keyed by order id.
type OrderCache interface {
	Get(ctx context.Context, id string) (*domain.Order, bool, error)
	Set(ctx context.Context, o *domain.Order) error
	Invalidate(ctx context.Context, id string) error
}

// OrderEvents publishes lifecycle events. Publishing is best-effort; a
// failure never fails the operation that produced the event.
type OrderEvents interface {
	Publish(ctx context.Context, msg OrderEventMsg) error
}
