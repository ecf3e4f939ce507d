package messaging

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"github.com/prudhivi99/bookstore/internal/config"
)

// Kafka publishes to topics on a Kafka cluster. One writer serves every
// topic; the topic is set per message.
type Kafka struct {
	writer *kafka.Writer
	logger zerolog.Logger
}

func NewKafka(cfg config.KafkaConfig, logger zerolog.Logger) *Kafka {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Balancer:               &kafka.Hash{}, // same key, same partition
		AllowAutoTopicCreation: true,
	}
	logger.Info().Strs("brokers", cfg.Brokers).Msg("✅ Kafka writer ready")
	return &Kafka{writer: w, logger: logger}
}

func (k *Kafka) Publish(ctx context.Context, topic, key string, body []byte) error {
	err := k.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: body,
	})
	if err != nil {
		return fmt.Errorf("failed to write kafka message: %w", err)
	}

	k.logger.Debug().Str("topic", topic).Str("key", key).Msg("📤 Message published")
	return nil
}

func (k *Kafka) Close() error {
	return k.writer.Close()
}

// NewKafkaReader joins the consumer group on topic. Offsets are committed
// explicitly by the caller.
func NewKafkaReader(cfg config.KafkaConfig, topic string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		GroupID:  cfg.GroupID,
		Topic:    topic,
		MinBytes: 1,
		MaxBytes: 10e6, // 10MB
	})
}
