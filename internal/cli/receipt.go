package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/prudhivi99/bookstore/internal/config"
	"github.com/prudhivi99/bookstore/internal/consumer"
	"github.com/prudhivi99/bookstore/internal/db"
	"github.com/prudhivi99/bookstore/internal/messaging"
	"github.com/prudhivi99/bookstore/internal/publisher"
	"github.com/prudhivi99/bookstore/internal/receipt"
)

// NewReceiptCommand creates the receipt command, which prints one order's
// plain-text receipt.
func NewReceiptCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "receipt <order-id>",
		Short: "Print the receipt for an order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid order id %q", args[0])
			}

			database, err := db.Open(opts.Config.Database, opts.Logger)
			if err != nil {
				return err
			}
			defer database.Close()

			r, err := db.NewOrderRepository(database).GetReceipt(cmd.Context(), id)
			if err != nil {
				return err
			}
			if r == nil {
				return fmt.Errorf("order %d not found", id)
			}

			return receipt.WriteText(cmd.OutOrStdout(), r)
		},
	}
}

// NewReceiptsCommand creates the receipts command, which consumes
// order.placed events and mails a receipt for each.
func NewReceiptsCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "receipts",
		Short: "Consume order.placed events and send receipts",
		Long: `Consume order.placed events from the configured broker (rabbitmq or kafka),
load each order and send its plain-text receipt to the customer.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runReceipts(ctx, opts)
		},
	}
}

func runReceipts(ctx context.Context, opts *RootOptions) error {
	cfg := opts.Config
	logger := opts.Logger

	if cfg.Broker.Kind == config.BrokerNone {
		return fmt.Errorf("receipts needs a broker: set broker.kind to %q or %q", config.BrokerRabbitMQ, config.BrokerKafka)
	}

	database, err := db.Open(cfg.Database, logger)
	if err != nil {
		return err
	}
	defer database.Close()

	c := consumer.NewReceiptConsumer(db.NewOrderRepository(database), consumer.LogMailer{Logger: logger}, logger)

	switch cfg.Broker.Kind {
	case config.BrokerRabbitMQ:
		mq, err := messaging.NewRabbitMQ(cfg.Broker.RabbitMQ, logger)
		if err != nil {
			return err
		}
		defer mq.Close()

		if err := mq.DeclareQueue(publisher.OrderPlacedQueue); err != nil {
			return err
		}
		messages, err := mq.Consume(publisher.OrderPlacedQueue)
		if err != nil {
			return err
		}

		logger.Info().Msg("🚀 Receipt consumer started (RabbitMQ)")
		c.ProcessDeliveries(ctx, messages)
		return nil

	default:
		reader := messaging.NewKafkaReader(cfg.Broker.Kafka, publisher.OrderPlacedQueue)
		defer reader.Close()

		logger.Info().Strs("brokers", cfg.Broker.Kafka.Brokers).Msg("🚀 Receipt consumer started (Kafka)")
		return c.ProcessKafka(ctx, reader)
	}
}
