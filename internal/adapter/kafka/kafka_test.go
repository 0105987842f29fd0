package kafka

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	domain "github.com/Daniel-Kav/order-microservice/internal/entity"
	"github.com/Daniel-Kav/order-microservice/internal/usecase"
	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventProducerPublish(t *testing.T) {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	mp := mocks.NewSyncProducer(t, cfg)
	defer mp.Close()

	mp.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var ev usecase.OrderEventMsg
		if err := json.Unmarshal(val, &ev); err != nil {
			return err
		}
		assert.Equal(t, usecase.EventOrderCreated, ev.Type)
		assert.Equal(t, "o1", ev.OrderID)
		return nil
	})

	p := NewEventProducer(mp, "orders.events")
	err := p.Publish(context.Background(), usecase.OrderEventMsg{
		Type:       usecase.EventOrderCreated,
		OrderID:    "o1",
		UserID:     "u1",
		Status:     "PENDING",
		OccurredAt: time.Now().UTC(),
	})
	require.NoError(t, err)
}

func TestEventProducerBrokerError(t *testing.T) {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	mp := mocks.NewSyncProducer(t, cfg)
	defer mp.Close()

	mp.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	p := NewEventProducer(mp, "orders.events")
	err := p.Publish(context.Background(), usecase.OrderEventMsg{Type: usecase.EventOrderDeleted, OrderID: "o1"})
	assert.Error(t, err)
}

type recordingCache struct{ invalidated []string }

func (c *recordingCache) Get(context.Context, string) (*domain.Order, bool, error) {
	return nil, false, nil
}
func (c *recordingCache) Set(context.Context, *domain.Order) error { return nil }
func (c *recordingCache) Invalidate(_ context.Context, id string) error {
	c.invalidated = append(c.invalidated, id)
	return nil
}

func TestOrderEventHandlerInvalidatesCache(t *testing.T) {
	c := &recordingCache{}
	h := NewOrderEventHandler(c)

	err := h.Handle(context.Background(), usecase.OrderEventMsg{Type: usecase.EventOrderCancelled, OrderID: "o1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"o1"}, c.invalidated)

	// Events without an order id are ignored.
	err = h.Handle(context.Background(), usecase.OrderEventMsg{Type: usecase.EventOrderCancelled})
	require.NoError(t, err)
	assert.Len(t, c.invalidated, 1)
}
