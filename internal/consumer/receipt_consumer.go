package consumer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"github.com/prudhivi99/bookstore/internal/models"
	"github.com/prudhivi99/bookstore/internal/receipt"
)

// ErrDiscard marks a message that can never succeed. It is dropped rather
// than redelivered.
var ErrDiscard = errors.New("discard message")

// ReceiptSource loads the joined receipt for an order, nil if it is gone.
type ReceiptSource interface {
	GetReceipt(ctx context.Context, id int) (*models.Receipt, error)
}

type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// LogMailer writes outgoing mail to the log instead of an SMTP server.
type LogMailer struct {
	Logger zerolog.Logger
}

func (m LogMailer) Send(_ context.Context, to, subject, body string) error {
	m.Logger.Info().Str("to", to).Str("subject", subject).Msg("📧 Receipt sent\n" + body)
	return nil
}

// KafkaReader is the part of *kafka.Reader the consumer uses.
type KafkaReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
}

type ReceiptConsumer struct {
	receipts ReceiptSource
	mailer   Mailer
	logger   zerolog.Logger
}

func NewReceiptConsumer(receipts ReceiptSource, mailer Mailer, logger zerolog.Logger) *ReceiptConsumer {
	return &ReceiptConsumer{receipts: receipts, mailer: mailer, logger: logger}
}

// Handle mails the receipt for one order.placed payload. Errors wrapping
// ErrDiscard are permanent; anything else may succeed on retry.
func (c *ReceiptConsumer) Handle(ctx context.Context, body []byte) error {
	var event models.OrderPlacedEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("%w: failed to parse event: %w", ErrDiscard, err)
	}
	if event.OrderID <= 0 {
		return fmt.Errorf("%w: event has no order id", ErrDiscard)
	}

	r, err := c.receipts.GetReceipt(ctx, event.OrderID)
	if err != nil {
		return fmt.Errorf("failed to load receipt for order %d: %w", event.OrderID, err)
	}
	if r == nil {
		return fmt.Errorf("%w: order %d not found", ErrDiscard, event.OrderID)
	}

	if r.Order.CustomerEmail == "" {
		c.logger.Info().Int("order_id", event.OrderID).Msg("⏭️ No customer email, receipt skipped")
		return nil
	}

	var buf bytes.Buffer
	if err := receipt.WriteText(&buf, r); err != nil {
		return fmt.Errorf("%w: failed to render receipt: %w", ErrDiscard, err)
	}

	subject := fmt.Sprintf("Your receipt for order #%d", r.Order.ID)
	if err := c.mailer.Send(ctx, r.Order.CustomerEmail, subject, buf.String()); err != nil {
		return fmt.Errorf("failed to send receipt for order %d: %w", event.OrderID, err)
	}
	return nil
}

// ProcessDeliveries handles RabbitMQ deliveries until the channel closes or
// ctx is done.
func (c *ReceiptConsumer) ProcessDeliveries(ctx context.Context, messages <-chan amqp.Delivery) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}
			c.processDelivery(ctx, msg)
		}
	}
}

func (c *ReceiptConsumer) processDelivery(ctx context.Context, msg amqp.Delivery) {
	c.logger.Debug().Str("message_id", msg.MessageId).Msg("📥 Received order.placed event")

	err := c.Handle(ctx, msg.Body)
	switch {
	case err == nil:
		if ackErr := msg.Ack(false); ackErr != nil {
			c.logger.Error().Err(ackErr).Msg("❌ Failed to ack message")
		}
	case errors.Is(err, ErrDiscard):
		c.logger.Error().Err(err).Str("message_id", msg.MessageId).Msg("❌ Dropping message")
		if nackErr := msg.Nack(false, false); nackErr != nil {
			c.logger.Error().Err(nackErr).Msg("❌ Failed to nack message")
		}
	default:
		c.logger.Warn().Err(err).Str("message_id", msg.MessageId).Msg("⚠️ Receipt failed, requeued")
		if nackErr := msg.Nack(false, true); nackErr != nil {
			c.logger.Error().Err(nackErr).Msg("❌ Failed to nack message")
		}
	}
}

// ProcessKafka handles messages from a consumer group. Discarded messages are
// committed and skipped. A transient failure stops the loop without
// committing, so the message is read again after a restart. It returns nil
// once ctx is cancelled.
func (c *ReceiptConsumer) ProcessKafka(ctx context.Context, reader KafkaReader) error {
	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("failed to fetch message: %w", err)
		}

		if err := c.Handle(ctx, msg.Value); err != nil {
			if !errors.Is(err, ErrDiscard) {
				return err
			}
			c.logger.Error().Err(err).Str("key", string(msg.Key)).Int64("offset", msg.Offset).Msg("❌ Dropping message")
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("failed to commit offset: %w", err)
		}
	}
}
