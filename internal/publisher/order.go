package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ucp-merchant-demo/internal/model"

	"github.com/segmentio/kafka-go"
)

const EventOrderCreated = "order.created"

// OrderPublisher announces completed orders to downstream consumers.
type OrderPublisher interface {
	PublishOrderCreated(ctx context.Context, order *model.Order) error
	Close() error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaOrderPublisher struct {
	writer messageWriter
}

func NewKafkaOrderPublisher(topic string, brokers ...string) *KafkaOrderPublisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
		WriteTimeout:           5 * time.Second,
	}
	return &KafkaOrderPublisher{writer: w}
}

type orderCreatedEvent struct {
	OrderID    string        `json:"order_id"`
	CheckoutID string        `json:"checkout_id"`
	Totals     []model.Total `json:"totals"`
	CreatedAt  time.Time     `json:"created_at"`
	Order      *model.Order  `json:"order"`
}

func (p *KafkaOrderPublisher) PublishOrderCreated(ctx context.Context, order *model.Order) error {
	payload, err := json.Marshal(orderCreatedEvent{
		OrderID:    order.ID,
		CheckoutID: order.CheckoutID,
		Totals:     order.Totals,
		CreatedAt:  order.CreatedAt,
		Order:      order,
	})
	if err != nil {
		return fmt.Errorf("marshal order event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(order.CheckoutID), // keeps events of one checkout ordered
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(EventOrderCreated)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish order %s: %w", order.ID, err)
	}
	return nil
}

func (p *KafkaOrderPublisher) Close() error {
	return p.writer.Close()
}

// NopOrderPublisher drops every event. Used when no brokers are configured.
type NopOrderPublisher struct{}

func (NopOrderPublisher) PublishOrderCreated(context.Context, *model.Order) error { return nil }

func (NopOrderPublisher) Close() error { return nil }
