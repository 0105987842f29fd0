package kafka

import (
	"context"

	"github.com/Daniel-Kav/order-microservice/internal/usecase"
)

// OrderEventHandler drops the cached copy of an order when another replica
// mutates it. The next read repopulates the cache from the store.
type OrderEventHandler struct {
	Cache usecase.OrderCache
}

func NewOrderEventHandler(cache usecase.OrderCache) *OrderEventHandler {
	return &OrderEventHandler{Cache: cache}
}

func (h *OrderEventHandler) Handle(ctx context.Context, ev usecase.OrderEventMsg) error {
	if ev.OrderID == "" {
		return nil
	}
	return h.Cache.Invalidate(ctx, ev.OrderID)
}
