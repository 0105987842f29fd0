package usecase

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	domain "github.com/Daniel-Kav/order-microservice/internal/entity"
	"github.com/Daniel-Kav/order-microservice/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logging.Init("test", filepath.Join(os.TempDir(), "orders-test.log"), "error")
	os.Exit(m.Run())
}

type fixture struct {
	repo    *memRepo
	gateway *scriptedGateway
	cache   *memCache
	events  *recordedEvents
	lc      *OrderLifecycle
}

func newFixture() *fixture {
	f := &fixture{
		repo:    newMemRepo(),
		gateway: newScriptedGateway(),
		cache:   newMemCache(),
		events:  &recordedEvents{},
	}
	f.lc = NewOrderLifecycle(f.repo, f.gateway, f.cache, f.events)
	return f
}

func twoItems() []domain.OrderItem {
	return []domain.OrderItem{
		{ProductID: "p1", Name: "Widget", Price: 10, Quantity: 2},
		{ProductID: "p2", Name: "Gadget", Price: 5, Quantity: 1},
	}
}

func addr() domain.ShippingAddress {
	return domain.ShippingAddress{
		Street: "1 Main St", City: "Nairobi", State: "NBO", ZipCode: "00100", Country: "KE",
	}
}

func mustCreate(t *testing.T, f *fixture) *domain.Order {
	t.Helper()
	o, err := f.lc.CreateOrder(context.Background(), CreateOrderInput{
		UserID: "u1", Items: twoItems(), ShippingAddress: addr(),
	})
	require.NoError(t, err)
	return o
}

func TestCreateOrder(t *testing.T) {
	f := newFixture()
	o := mustCreate(t, f)

	assert.NotEmpty(t, o.ID)
	assert.Equal(t, "u1", o.UserID)
	assert.Equal(t, 25.0, o.TotalAmount)
	assert.Equal(t, domain.StatusPending, o.Status)
	assert.Equal(t, domain.PaymentPending, o.PaymentStatus)
	assert.Equal(t, "pi_test_1", o.PaymentIntentID)
	assert.False(t, o.CreatedAt.IsZero())

	stored, err := f.repo.FindByID(context.Background(), o.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "pi_test_1", stored.PaymentIntentID)

	assert.Equal(t, []string{EventOrderCreated}, f.events.types())
}

func TestCreateOrderEmptyItems(t *testing.T) {
	// Zero-item orders are accepted and compute a zero total.
	f := newFixture()
	o, err := f.lc.CreateOrder(context.Background(), CreateOrderInput{
		UserID: "u1", Items: nil, ShippingAddress: addr(),
	})
	require.NoError(t, err)
	assert.Equal(t, 0.0, o.TotalAmount)
	assert.Equal(t, domain.StatusPending, o.Status)
}

func TestCreateOrderInsertFailure(t *testing.T) {
	f := newFixture()
	f.repo.insertErr = errors.New("connection reset")

	_, err := f.lc.CreateOrder(context.Background(), CreateOrderInput{UserID: "u1", Items: twoItems(), ShippingAddress: addr()})
	// The root cause stays hidden from the caller.
	assert.ErrorIs(t, err, ErrCreateOrder)
	assert.NotContains(t, err.Error(), "connection reset")
}

func TestCreateOrderGatewayFailureLeavesOrphan(t *testing.T) {
	f := newFixture()
	f.gateway.createErr = errors.New("stripe: 502")

	_, err := f.lc.CreateOrder(context.Background(), CreateOrderInput{UserID: "u1", Items: twoItems(), ShippingAddress: addr()})
	require.ErrorIs(t, err, ErrCreateOrder)

	// The first write is not rolled back: a PENDING order without an intent
	// reference stays behind.
	all, err := f.repo.FindAll(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, domain.StatusPending, all[0].Status)
	assert.Empty(t, all[0].PaymentIntentID)
}

func TestFindOne(t *testing.T) {
	f := newFixture()
	o := mustCreate(t, f)

	got, err := f.lc.FindOne(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, o.ID, got.ID)

	_, err = f.lc.FindOne(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "missing")
}

func TestFindOneServesFromCache(t *testing.T) {
	f := newFixture()
	o := mustCreate(t, f)

	// Drop the backing row; the cached copy still serves reads.
	_, err := f.repo.Delete(context.Background(), o.ID)
	require.NoError(t, err)

	got, err := f.lc.FindOne(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, o.ID, got.ID)
}

func TestFindByUser(t *testing.T) {
	f := newFixture()
	mustCreate(t, f)

	orders, err := f.lc.FindByUser(context.Background(), "u1")
	require.NoError(t, err)
	assert.Len(t, orders, 1)

	// No match is an empty slice, not an error.
	orders, err = f.lc.FindByUser(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestUpdateOrder(t *testing.T) {
	f := newFixture()
	o := mustCreate(t, f)

	// The administrative path performs no transition check: PENDING can jump
	// straight to DELIVERED.
	delivered := domain.StatusDelivered
	got, err := f.lc.UpdateOrder(context.Background(), o.ID, &delivered)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDelivered, got.Status)
	assert.True(t, got.UpdatedAt.After(o.UpdatedAt) || got.UpdatedAt.Equal(o.UpdatedAt))
	assert.Greater(t, got.Version, o.Version)

	_, err = f.lc.UpdateOrder(context.Background(), "missing", &delivered)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestConfirmPayment(t *testing.T) {
	t.Run("not found", func(t *testing.T) {
		f := newFixture()
		_, err := f.lc.ConfirmPayment(context.Background(), "missing")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("not pending", func(t *testing.T) {
		f := newFixture()
		o := mustCreate(t, f)
		shipped := domain.StatusShipped
		_, err := f.lc.UpdateOrder(context.Background(), o.ID, &shipped)
		require.NoError(t, err)

		_, err = f.lc.ConfirmPayment(context.Background(), o.ID)
		assert.ErrorIs(t, err, ErrInvalidState)
	})

	t.Run("no intent reference", func(t *testing.T) {
		f := newFixture()
		o := &domain.Order{ID: "orphan", UserID: "u1", Status: domain.StatusPending, PaymentStatus: domain.PaymentPending}
		require.NoError(t, f.repo.Insert(context.Background(), o))

		_, err := f.lc.ConfirmPayment(context.Background(), "orphan")
		assert.ErrorIs(t, err, ErrInvalidState)
		assert.Empty(t, f.gateway.statusCalls)
	})

	t.Run("gateway reports not settled", func(t *testing.T) {
		f := newFixture()
		o := mustCreate(t, f)
		f.gateway.intentStatus = "requires_payment_method"

		got, err := f.lc.ConfirmPayment(context.Background(), o.ID)
		require.NoError(t, err)
		// A no-op, not an error: the order is returned unchanged.
		assert.Equal(t, domain.StatusPending, got.Status)
		assert.Equal(t, domain.PaymentPending, got.PaymentStatus)
		assert.Equal(t, o.Version, got.Version)
	})

	t.Run("gateway failure", func(t *testing.T) {
		f := newFixture()
		o := mustCreate(t, f)
		f.gateway.statusErr = errors.New("stripe: timeout")

		_, err := f.lc.ConfirmPayment(context.Background(), o.ID)
		assert.ErrorIs(t, err, ErrConfirmPayment)
		assert.NotContains(t, err.Error(), "timeout")
	})

	t.Run("settled", func(t *testing.T) {
		f := newFixture()
		o := mustCreate(t, f)

		got, err := f.lc.ConfirmPayment(context.Background(), o.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusProcessing, got.Status)
		assert.Equal(t, domain.PaymentSucceeded, got.PaymentStatus)
		assert.Equal(t, []string{"pi_test_1"}, f.gateway.statusCalls)
		assert.Contains(t, f.events.types(), EventPaymentConfirmed)
	})
}

func TestCancelOrder(t *testing.T) {
	t.Run("not found", func(t *testing.T) {
		f := newFixture()
		_, err := f.lc.CancelOrder(context.Background(), "missing")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("unpaid order cancels without gateway call", func(t *testing.T) {
		f := newFixture()
		o := mustCreate(t, f)

		got, err := f.lc.CancelOrder(context.Background(), o.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusCancelled, got.Status)
		assert.Equal(t, domain.PaymentPending, got.PaymentStatus)
		assert.Empty(t, f.gateway.refundCalls)
	})

	t.Run("paid order refunds then cancels", func(t *testing.T) {
		f := newFixture()
		o := mustCreate(t, f)
		_, err := f.lc.ConfirmPayment(context.Background(), o.ID)
		require.NoError(t, err)

		got, err := f.lc.CancelOrder(context.Background(), o.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusCancelled, got.Status)
		assert.Equal(t, domain.PaymentRefunded, got.PaymentStatus)
		require.Len(t, f.gateway.refundCalls, 1)
		assert.Equal(t, "pi_test_1", f.gateway.refundCalls[0].IntentID)
		assert.Nil(t, f.gateway.refundCalls[0].Amount) // full refund
	})

	t.Run("refund failure still cancels", func(t *testing.T) {
		f := newFixture()
		o := mustCreate(t, f)
		_, err := f.lc.ConfirmPayment(context.Background(), o.ID)
		require.NoError(t, err)
		f.gateway.refundErr = errors.New("stripe: refund rejected")

		got, err := f.lc.CancelOrder(context.Background(), o.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusCancelled, got.Status)
		// paymentStatus stays SUCCEEDED; inspecting it is the only way a
		// caller can tell the refund never happened.
		assert.Equal(t, domain.PaymentSucceeded, got.PaymentStatus)
	})

	t.Run("idempotent", func(t *testing.T) {
		f := newFixture()
		o := mustCreate(t, f)
		_, err := f.lc.ConfirmPayment(context.Background(), o.ID)
		require.NoError(t, err)

		first, err := f.lc.CancelOrder(context.Background(), o.ID)
		require.NoError(t, err)
		second, err := f.lc.CancelOrder(context.Background(), o.ID)
		require.NoError(t, err)

		assert.Equal(t, first.Status, second.Status)
		assert.Equal(t, first.PaymentStatus, second.PaymentStatus)
		assert.Equal(t, first.Version, second.Version)
		// The second call never reaches the gateway.
		assert.Len(t, f.gateway.refundCalls, 1)
	})
}

func TestDeleteOrder(t *testing.T) {
	f := newFixture()
	o := mustCreate(t, f)

	ok, err := f.lc.DeleteOrder(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = f.lc.DeleteOrder(context.Background(), o.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = f.lc.FindOne(context.Background(), o.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

// Full walk through the happy path: create -> confirm -> cancel with refund.
func TestLifecycleScenario(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	o, err := f.lc.CreateOrder(ctx, CreateOrderInput{
		UserID: "u1",
		Items: []domain.OrderItem{
			{ProductID: "p1", Name: "A", Price: 10, Quantity: 2},
			{ProductID: "p2", Name: "B", Price: 5, Quantity: 1},
		},
		ShippingAddress: addr(),
	})
	require.NoError(t, err)
	require.Equal(t, 25.0, o.TotalAmount)
	require.EqualValues(t, 2500, domain.MinorUnits(o.TotalAmount))
	require.NotEmpty(t, o.PaymentIntentID)

	o, err = f.lc.ConfirmPayment(ctx, o.ID)
	require.NoError(t, err)
	require.Equal(t, domain.StatusProcessing, o.Status)
	require.Equal(t, domain.PaymentSucceeded, o.PaymentStatus)

	o, err = f.lc.CancelOrder(ctx, o.ID)
	require.NoError(t, err)
	require.Equal(t, domain.StatusCancelled, o.Status)
	require.Equal(t, domain.PaymentRefunded, o.PaymentStatus)

	assert.Equal(t, []string{
		EventOrderCreated, EventPaymentConfirmed, EventOrderCancelled,
	}, f.events.types())
}

func TestEventPublishFailureIsSwallowed(t *testing.T) {
	f := newFixture()
	f.events.pubErr = errors.New("broker down")

	o := mustCreate(t, f)
	assert.Equal(t, domain.StatusPending, o.Status)
}
