package publisher

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/prudhivi99/bookstore/internal/models"
)

// OrderPlacedQueue is both the RabbitMQ queue and the Kafka topic name.
const OrderPlacedQueue = "order.placed"

// Broker is satisfied by messaging.RabbitMQ and messaging.Kafka.
type Broker interface {
	Publish(ctx context.Context, topic, key string, body []byte) error
}

type queueDeclarer interface {
	DeclareQueue(name string) error
}

type OrderPublisher struct {
	broker Broker
}

func NewOrderPublisher(broker Broker) (*OrderPublisher, error) {
	// RabbitMQ needs the queue before the first publish; Kafka creates topics on demand
	if d, ok := broker.(queueDeclarer); ok {
		if err := d.DeclareQueue(OrderPlacedQueue); err != nil {
			return nil, err
		}
	}

	return &OrderPublisher{broker: broker}, nil
}

// PublishOrderPlaced publishes an order.placed event
func (p *OrderPublisher) PublishOrderPlaced(ctx context.Context, order *models.Order) error {
	event := models.OrderPlacedEvent{
		OrderID:       order.ID,
		CustomerName:  order.CustomerName,
		CustomerEmail: order.CustomerEmail,
		Total:         order.Total,
		Items:         make([]models.OrderItemEvent, 0, len(order.Items)),
	}

	for _, item := range order.Items {
		event.Items = append(event.Items, models.OrderItemEvent{
			BookID:   item.BookID,
			Quantity: item.Quantity,
		})
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	return p.broker.Publish(ctx, OrderPlacedQueue, fmt.Sprintf("order-placed-%d", order.ID), data)
}
