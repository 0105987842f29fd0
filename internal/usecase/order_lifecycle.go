package usecase

import (
	"context"
	"errors"
	"fmt"

	domain "github.com/Daniel-Kav/order-microservice/internal/entity"
	"github.com/Daniel-Kav/order-microservice/internal/logging"
	"github.com/google/uuid"
)

type CreateOrderInput struct {
	UserID          string
	Items           []domain.OrderItem
	ShippingAddress domain.ShippingAddress
}

// OrderLifecycle owns order state transitions and decides when to call out
// to the payment gateway. All durable state lives in the repo; the service
// itself is stateless and safe for concurrent use.
type OrderLifecycle struct {
	repo    OrderRepo
	gateway PaymentGateway
	cache   OrderCache
	events  OrderEvents
}

func NewOrderLifecycle(repo OrderRepo, gateway PaymentGateway, cache OrderCache, events OrderEvents) *OrderLifecycle {
	return &OrderLifecycle{repo: repo, gateway: gateway, cache: cache, events: events}
}

// CreateOrder persists a new PENDING order, then requests a payment intent
// and attaches its id in a second write. The two writes are not
// transactional: if the intent call or the attach write fails, the PENDING
// order stays behind without an intent reference. The caller only ever sees
// ErrCreateOrder; the root cause is logged.
//
// Empty item lists are accepted and produce a zero-total order.
func (s *OrderLifecycle) CreateOrder(ctx context.Context, in CreateOrderInput) (*domain.Order, error) {
	l := logging.FromCtx(ctx)

	order := &domain.Order{
		ID:              uuid.NewString(),
		UserID:          in.UserID,
		Items:           in.Items,
		TotalAmount:     domain.TotalOf(in.Items),
		Status:          domain.StatusPending,
		PaymentStatus:   domain.PaymentPending,
		ShippingAddress: in.ShippingAddress,
	}

	if err := s.repo.Insert(ctx, order); err != nil {
		l.Error("create order: insert failed", "user_id", in.UserID, "err", err)
		return nil, ErrCreateOrder
	}

	intent, err := s.gateway.CreateIntent(ctx, order)
	if err != nil {
		l.Error("create order: payment intent failed", "order_id", order.ID, "err", err)
		return nil, ErrCreateOrder
	}

	updated, err := s.repo.UpdateFieldsIf(ctx, order.ID, order.Version, OrderPatch{
		PaymentIntentID: &intent.ID,
	})
	if err != nil || updated == nil {
		l.Error("create order: attach intent failed", "order_id", order.ID, "intent_id", intent.ID, "err", err)
		return nil, ErrCreateOrder
	}

	s.afterWrite(ctx, updated, EventOrderCreated)
	ordersCreated.Inc()
	l.Info("created order", "order_id", updated.ID, "intent_id", intent.ID, "total", updated.TotalAmount)
	return updated, nil
}

func (s *OrderLifecycle) FindAll(ctx context.Context) ([]domain.Order, error) {
	return s.repo.FindAll(ctx)
}

func (s *OrderLifecycle) FindOne(ctx context.Context, id string) (*domain.Order, error) {
	if o, ok, err := s.cache.Get(ctx, id); err == nil && ok {
		return o, nil
	}
	o, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	_ = s.cache.Set(ctx, o)
	return o, nil
}

// FindByUser returns an empty slice, not an error, when the user has no
// orders.
func (s *OrderLifecycle) FindByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	return s.repo.FindByUser(ctx, userID)
}

// UpdateOrder overwrites the status without a transition check. This is the
// administrative escape hatch; ConfirmPayment and CancelOrder are the
// guarded paths.
func (s *OrderLifecycle) UpdateOrder(ctx context.Context, id string, status *domain.OrderStatus) (*domain.Order, error) {
	updated, err := s.repo.UpdateFields(ctx, id, OrderPatch{Status: status})
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	s.afterWrite(ctx, updated, EventOrderUpdated)
	logging.FromCtx(ctx).Info("updated order", "order_id", id)
	return updated, nil
}

// ConfirmPayment polls the gateway for the order's intent and, if the
// gateway reports it settled, moves the order to PROCESSING/SUCCEEDED in a
// single write. Any other gateway status leaves the order untouched and is
// not an error; confirmation simply has not happened yet.
func (s *OrderLifecycle) ConfirmPayment(ctx context.Context, orderID string) (*domain.Order, error) {
	l := logging.FromCtx(ctx)

	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, orderID)
	}
	if order.Status != domain.StatusPending {
		return nil, fmt.Errorf("%w: order %s is %s, not PENDING", ErrInvalidState, orderID, order.Status)
	}
	if order.PaymentIntentID == "" {
		return nil, fmt.Errorf("%w: order %s has no payment intent", ErrInvalidState, orderID)
	}

	intent, err := s.gateway.GetIntentStatus(ctx, order.PaymentIntentID)
	if err != nil {
		l.Error("confirm payment: gateway status check failed", "order_id", orderID, "err", err)
		return nil, ErrConfirmPayment
	}
	if intent.Status != IntentStatusSucceeded {
		return order, nil
	}

	succeeded := domain.PaymentSucceeded
	processing := domain.StatusProcessing
	updated, err := s.repo.UpdateFieldsIf(ctx, order.ID, order.Version, OrderPatch{
		Status:        &processing,
		PaymentStatus: &succeeded,
	})
	if err != nil {
		if errors.Is(err, ErrConflict) {
			return nil, err
		}
		l.Error("confirm payment: update failed", "order_id", orderID, "err", err)
		return nil, ErrConfirmPayment
	}
	if updated == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, orderID)
	}

	s.afterWrite(ctx, updated, EventPaymentConfirmed)
	paymentsConfirmed.Inc()
	l.Info("payment confirmed", "order_id", orderID)
	return updated, nil
}

// CancelOrder moves the order to CANCELLED. Cancelling an already-cancelled
// order is a no-op returning the order unchanged, with no gateway call. When
// the payment already settled, a full refund is attempted first; a refund
// failure is logged and counted but does not stop the cancellation, so the
// order can end up CANCELLED with paymentStatus still SUCCEEDED.
func (s *OrderLifecycle) CancelOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	l := logging.FromCtx(ctx)

	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, orderID)
	}
	if !order.Cancellable() {
		return order, nil
	}

	cancelled := domain.StatusCancelled
	patch := OrderPatch{Status: &cancelled}

	if order.RefundDue() {
		refundID, err := s.gateway.Refund(ctx, order.PaymentIntentID, nil)
		if err != nil {
			refundsFailed.Inc()
			l.Error("cancel order: refund failed", "order_id", orderID, "intent_id", order.PaymentIntentID, "err", err)
		} else {
			refunded := domain.PaymentRefunded
			patch.PaymentStatus = &refunded
			l.Info("refunded payment", "order_id", orderID, "refund_id", refundID)
		}
	}

	updated, err := s.repo.UpdateFieldsIf(ctx, order.ID, order.Version, patch)
	if err != nil {
		return nil, fmt.Errorf("cancel order %s: %w", orderID, err)
	}
	if updated == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, orderID)
	}

	s.afterWrite(ctx, updated, EventOrderCancelled)
	ordersCancelled.Inc()
	l.Info("cancelled order", "order_id", orderID)
	return updated, nil
}

// DeleteOrder hard-deletes the record. No gateway interaction and no status
// guard: an order with a settled, unrefunded payment can be deleted.
func (s *OrderLifecycle) DeleteOrder(ctx context.Context, id string) (bool, error) {
	ok, err := s.repo.Delete(ctx, id)
	if err != nil {
		return false, err
	}
	_ = s.cache.Invalidate(ctx, id)
	if ok {
		s.publish(ctx, OrderEventMsg{Type: EventOrderDeleted, OrderID: id})
		logging.FromCtx(ctx).Info("deleted order", "order_id", id)
	}
	return ok, nil
}

// afterWrite refreshes the cache and publishes the lifecycle event. Both are
// best-effort.
func (s *OrderLifecycle) afterWrite(ctx context.Context, o *domain.Order, eventType string) {
	_ = s.cache.Set(ctx, o)
	s.publish(ctx, OrderEventMsg{
		Type:          eventType,
		OrderID:       o.ID,
		UserID:        o.UserID,
		Status:        string(o.Status),
		PaymentStatus: string(o.PaymentStatus),
		OccurredAt:    o.UpdatedAt,
	})
}

func (s *OrderLifecycle) publish(ctx context.Context, msg OrderEventMsg) {
	if err := s.events.Publish(ctx, msg); err != nil {
		logging.FromCtx(ctx).Warn("event publish failed", "type", msg.Type, "order_id", msg.OrderID, "err", err)
	}
}
