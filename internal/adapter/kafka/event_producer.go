package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Daniel-Kav/order-microservice/internal/usecase"
	"github.com/IBM/sarama"
)

// EventProducer publishes lifecycle events to a single topic, keyed by order
// id so events for one order stay ordered within a partition.
type EventProducer struct {
	producer sarama.SyncProducer
	topic    string
}

func NewEventProducer(p sarama.SyncProducer, topic string) *EventProducer {
	return &EventProducer{producer: p, topic: topic}
}

var _ usecase.OrderEvents = (*EventProducer)(nil)

func (p *EventProducer) Publish(_ context.Context, msg usecase.OrderEventMsg) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	_, _, err = p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(msg.OrderID),
		Value: sarama.ByteEncoder(body),
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", msg.Type, err)
	}
	return nil
}
