package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prudhivi99/bookstore/internal/models"
)

type message struct {
	topic, key string
	body       []byte
}

type fakeBroker struct {
	sent    []message
	err     error
	queues  []string
	declErr error
}

func (b *fakeBroker) Publish(_ context.Context, topic, key string, body []byte) error {
	if b.err != nil {
		return b.err
	}
	b.sent = append(b.sent, message{topic: topic, key: key, body: body})
	return nil
}

func (b *fakeBroker) DeclareQueue(name string) error {
	b.queues = append(b.queues, name)
	return b.declErr
}

// plainBroker has no DeclareQueue, like the Kafka writer.
type plainBroker struct{ inner fakeBroker }

func (b *plainBroker) Publish(ctx context.Context, topic, key string, body []byte) error {
	return b.inner.Publish(ctx, topic, key, body)
}

func TestNewOrderPublisher_DeclaresQueueWhenSupported(t *testing.T) {
	b := &fakeBroker{}
	_, err := NewOrderPublisher(b)
	require.NoError(t, err)
	assert.Equal(t, []string{OrderPlacedQueue}, b.queues)

	b = &fakeBroker{declErr: errors.New("channel closed")}
	_, err = NewOrderPublisher(b)
	assert.EqualError(t, err, "channel closed")
}

func TestNewOrderPublisher_WithoutDeclarer(t *testing.T) {
	var b Broker = &plainBroker{}
	_, ok := b.(queueDeclarer)
	require.False(t, ok)

	_, err := NewOrderPublisher(b)
	assert.NoError(t, err)
}

func TestPublishOrderPlaced(t *testing.T) {
	b := &fakeBroker{}
	p, err := NewOrderPublisher(b)
	require.NoError(t, err)

	order := &models.Order{
		ID:            42,
		CustomerName:  "Jane",
		CustomerEmail: "jane@example.com",
		Total:         decimal.RequireFromString("997.00"),
		Items: []models.OrderItem{
			{BookID: 1, Quantity: 2, PriceAtPurchase: decimal.NewFromInt(299)},
			{BookID: 3, Quantity: 1, PriceAtPurchase: decimal.NewFromInt(399)},
		},
	}
	require.NoError(t, p.PublishOrderPlaced(context.Background(), order))

	require.Len(t, b.sent, 1)
	assert.Equal(t, OrderPlacedQueue, b.sent[0].topic)
	assert.Equal(t, "order-placed-42", b.sent[0].key)

	var event models.OrderPlacedEvent
	require.NoError(t, json.Unmarshal(b.sent[0].body, &event))
	assert.Equal(t, 42, event.OrderID)
	assert.Equal(t, "jane@example.com", event.CustomerEmail)
	assert.True(t, event.Total.Equal(decimal.NewFromInt(997)))
	assert.Equal(t, []models.OrderItemEvent{{BookID: 1, Quantity: 2}, {BookID: 3, Quantity: 1}}, event.Items)
}

func TestPublishOrderPlaced_BrokerError(t *testing.T) {
	b := &fakeBroker{}
	p, err := NewOrderPublisher(b)
	require.NoError(t, err)

	b.err = errors.New("broker down")
	err = p.PublishOrderPlaced(context.Background(), &models.Order{ID: 1})
	assert.EqualError(t, err, "broker down")
}
