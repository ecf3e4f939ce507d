package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/prudhivi99/bookstore/internal/cache"
	"github.com/prudhivi99/bookstore/internal/cart"
	"github.com/prudhivi99/bookstore/internal/checkout"
	"github.com/prudhivi99/bookstore/internal/config"
	"github.com/prudhivi99/bookstore/internal/db"
	"github.com/prudhivi99/bookstore/internal/discovery"
	"github.com/prudhivi99/bookstore/internal/handlers"
	"github.com/prudhivi99/bookstore/internal/messaging"
	"github.com/prudhivi99/bookstore/internal/middleware"
	"github.com/prudhivi99/bookstore/internal/publisher"
)

const (
	shutdownTimeout = 10 * time.Second
	limiterExpiry   = 3 * time.Minute
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Migrate bool
	Seed    bool
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP service",
		Long: `Run the bookstore HTTP service until interrupted.

Example:
  bookstore serve
  bookstore serve --config bookstore.yaml --seed=false`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Migrate, "migrate", true, "apply pending migrations before serving")
	cmd.Flags().BoolVar(&opts.Seed, "seed", true, "insert the sample catalog when the database is empty")

	return cmd
}

func runServe(ctx context.Context, opts *ServeOptions) error {
	cfg := opts.Config
	logger := opts.Logger

	if opts.Migrate {
		if _, err := db.MigrateUp(cfg.Database); err != nil {
			return err
		}
	}

	database, err := db.Open(cfg.Database, logger)
	if err != nil {
		return err
	}
	defer database.Close()

	books := db.NewBookRepository(database)
	orders := db.NewOrderRepository(database)

	if opts.Seed {
		n, err := db.Seed(ctx, books)
		if err != nil {
			return err
		}
		if n > 0 {
			logger.Info().Int("books", n).Msg("🌱 Seeded sample catalog")
		}
	}

	var (
		catalog handlers.Catalog = books
		carts   cart.Store       = cart.NewMemoryStore()
	)
	if cfg.Redis.Enabled {
		redisCache, err := cache.NewRedisCache(ctx, cfg.Redis.Addr(), cfg.Redis.CacheTTL)
		if err != nil {
			return err
		}
		defer redisCache.Close()

		logger.Info().Str("addr", cfg.Redis.Addr()).Msg("✅ Connected to Redis")
		catalog = db.NewCachedBookRepository(books, redisCache, logger)
		carts = cart.NewRedisStore(redisCache.Client(), cfg.Redis.CartTTL)
	}

	var svcOpts []checkout.Option
	broker, err := openBroker(cfg.Broker, logger)
	if err != nil {
		return err
	}
	if broker != nil {
		defer broker.Close()

		pub, err := publisher.NewOrderPublisher(broker)
		if err != nil {
			return err
		}
		svcOpts = append(svcOpts, checkout.WithPublisher(pub))
	}
	svc := checkout.NewService(orders, logger, svcOpts...)

	var limiter *middleware.RateLimiter
	if cfg.HTTP.CheckoutRate > 0 {
		limiter = middleware.NewRateLimiter(cfg.HTTP.CheckoutRate, cfg.HTTP.CheckoutBurst, limiterExpiry)
	}

	if logger.GetLevel() > zerolog.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}
	router := handlers.NewRouter(
		handlers.NewBookHandler(catalog, logger),
		handlers.NewCartHandler(carts, catalog, logger),
		handlers.NewOrderHandler(svc, orders, carts, cfg.Checkout.KeepCartOnFailure, logger),
		limiter,
		logger,
	)

	if cfg.Consul.Enabled {
		deregister, err := registerConsul(cfg, logger)
		if err != nil {
			return err
		}
		defer deregister()
	}

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.HTTP.Addr).Msg("🚀 Bookstore starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info().Msg("🛑 Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

type closingBroker interface {
	publisher.Broker
	io.Closer
}

// openBroker connects to the configured broker, or returns nil for "none".
func openBroker(cfg config.BrokerConfig, logger zerolog.Logger) (closingBroker, error) {
	switch cfg.Kind {
	case config.BrokerRabbitMQ:
		mq, err := messaging.NewRabbitMQ(cfg.RabbitMQ, logger)
		if err != nil {
			return nil, err
		}
		return mq, nil
	case config.BrokerKafka:
		return messaging.NewKafka(cfg.Kafka, logger), nil
	default:
		return nil, nil
	}
}

func registerConsul(cfg config.Config, logger zerolog.Logger) (func(), error) {
	port, err := discovery.PortFromAddr(cfg.HTTP.Addr)
	if err != nil {
		return nil, err
	}

	client, err := discovery.NewConsulClient(cfg.Consul, logger)
	if err != nil {
		return nil, err
	}
	if err := client.Register(cfg.Consul, port); err != nil {
		return nil, err
	}

	return func() {
		if err := client.Deregister(cfg.Consul.ServiceID); err != nil {
			logger.Warn().Err(err).Msg("⚠️ Consul deregistration failed")
		}
	}, nil
}
