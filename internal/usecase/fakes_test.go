package usecase

import (
	"context"
	"sync"
	"time"

	domain "github.com/Daniel-Kav/order-microservice/internal/entity"
)

// memRepo is an in-memory OrderRepo with the same version/timestamp
// semantics as the MySQL adapter.
type memRepo struct {
	mu        sync.Mutex
	orders    map[string]*domain.Order
	insertErr error
	findErr   error
	updateErr error
}

func newMemRepo() *memRepo {
	return &memRepo{orders: map[string]*domain.Order{}}
}

func copyOrder(o *domain.Order) *domain.Order {
	c := *o
	c.Items = append([]domain.OrderItem(nil), o.Items...)
	return &c
}

func (r *memRepo) Insert(_ context.Context, o *domain.Order) error {
	if r.insertErr != nil {
		return r.insertErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	o.CreatedAt, o.UpdatedAt = now, now
	o.Version = 0
	r.orders[o.ID] = copyOrder(o)
	return nil
}

func (r *memRepo) FindByID(_ context.Context, id string) (*domain.Order, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, nil
	}
	return copyOrder(o), nil
}

func (r *memRepo) FindByUser(_ context.Context, userID string) ([]domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.Order{}
	for _, o := range r.orders {
		if o.UserID == userID {
			out = append(out, *copyOrder(o))
		}
	}
	return out, nil
}

func (r *memRepo) FindAll(_ context.Context) ([]domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.Order{}
	for _, o := range r.orders {
		out = append(out, *copyOrder(o))
	}
	return out, nil
}

func (r *memRepo) apply(o *domain.Order, patch OrderPatch) {
	if patch.Status != nil {
		o.Status = *patch.Status
	}
	if patch.PaymentStatus != nil {
		o.PaymentStatus = *patch.PaymentStatus
	}
	if patch.PaymentIntentID != nil {
		o.PaymentIntentID = *patch.PaymentIntentID
	}
	o.Version++
	o.UpdatedAt = time.Now().UTC()
}

func (r *memRepo) UpdateFields(_ context.Context, id string, patch OrderPatch) (*domain.Order, error) {
	if r.updateErr != nil {
		return nil, r.updateErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, nil
	}
	r.apply(o, patch)
	return copyOrder(o), nil
}

func (r *memRepo) UpdateFieldsIf(_ context.Context, id string, version int64, patch OrderPatch) (*domain.Order, error) {
	if r.updateErr != nil {
		return nil, r.updateErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, nil
	}
	if o.Version != version {
		return nil, ErrConflict
	}
	r.apply(o, patch)
	return copyOrder(o), nil
}

func (r *memRepo) Delete(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[id]; !ok {
		return false, nil
	}
	delete(r.orders, id)
	return true, nil
}

type refundCall struct {
	IntentID string
	Amount   *int64
}

// scriptedGateway returns canned gateway responses and records every call.
type scriptedGateway struct {
	createErr    error
	statusErr    error
	refundErr    error
	intentStatus string

	intentSeq   int
	createCalls []string // order ids
	statusCalls []string // intent ids
	refundCalls []refundCall
}

func newScriptedGateway() *scriptedGateway {
	return &scriptedGateway{intentStatus: IntentStatusSucceeded}
}

func (g *scriptedGateway) CreateIntent(_ context.Context, o *domain.Order) (*PaymentIntent, error) {
	if g.createErr != nil {
		return nil, g.createErr
	}
	g.intentSeq++
	g.createCalls = append(g.createCalls, o.ID)
	return &PaymentIntent{ID: "pi_test_1", Status: "requires_payment_method"}, nil
}

func (g *scriptedGateway) GetIntentStatus(_ context.Context, intentID string) (*PaymentIntent, error) {
	if g.statusErr != nil {
		return nil, g.statusErr
	}
	g.statusCalls = append(g.statusCalls, intentID)
	return &PaymentIntent{ID: intentID, Status: g.intentStatus}, nil
}

func (g *scriptedGateway) ConfirmIntent(_ context.Context, intentID string) (*PaymentIntent, error) {
	return &PaymentIntent{ID: intentID, Status: g.intentStatus}, nil
}

func (g *scriptedGateway) Refund(_ context.Context, intentID string, amountMinor *int64) (string, error) {
	if g.refundErr != nil {
		return "", g.refundErr
	}
	g.refundCalls = append(g.refundCalls, refundCall{IntentID: intentID, Amount: amountMinor})
	return "re_test_1", nil
}

type memCache struct {
	mu     sync.Mutex
	orders map[string]*domain.Order
}

func newMemCache() *memCache {
	return &memCache{orders: map[string]*domain.Order{}}
}

func (c *memCache) Get(_ context.Context, id string) (*domain.Order, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	o, ok := c.orders[id]
	if !ok {
		return nil, false, nil
	}
	return copyOrder(o), true, nil
}

func (c *memCache) Set(_ context.Context, o *domain.Order) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.orders[o.ID] = copyOrder(o)
	return nil
}

func (c *memCache) Invalidate(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.orders, id)
	return nil
}

type recordedEvents struct {
	mu     sync.Mutex
	msgs   []OrderEventMsg
	pubErr error
}

func (e *recordedEvents) Publish(_ context.Context, msg OrderEventMsg) error {
	if e.pubErr != nil {
		return e.pubErr
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.msgs = append(e.msgs, msg)
	return nil
}

func (e *recordedEvents) types() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, 0, len(e.msgs))
	for _, m := range e.msgs {
		out = append(out, m.Type)
	}
	return out
}
