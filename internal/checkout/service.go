// Package checkout turns a cart into a persisted order.
//
// PlaceOrder re-reads every book's price inside a single transaction, computes
// the total from those prices and writes the order header and its line items
// with the same prices. Either everything commits or nothing does, so an
// order's total always equals the sum of its items at their snapshot prices.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/prudhivi99/bookstore/internal/cart"
	"github.com/prudhivi99/bookstore/internal/db"
	"github.com/prudhivi99/bookstore/internal/models"
)

// Store runs the placement statements in one transaction.
type Store interface {
	Transact(ctx context.Context, fn func(tx db.OrderTx) error) error
}

// Publisher announces committed orders.
type Publisher interface {
	PublishOrderPlaced(ctx context.Context, order *models.Order) error
}

type Service struct {
	store     Store
	publisher Publisher
	now       func() time.Time
	logger    zerolog.Logger
}

type Option func(*Service)

// WithPublisher sends an order.placed event after each successful commit.
func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithClock overrides time.Now for created_at.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(store Store, logger zerolog.Logger, opts ...Option) *Service {
	s := &Service{
		store:  store,
		now:    time.Now,
		logger: logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PlaceOrder persists one order for the cart. It returns ErrEmptyCart,
// *UnknownBookError, or an error wrapping ErrPlacementFailed; in every error
// case no order or item rows exist afterwards. The cart itself is not touched.
func (s *Service) PlaceOrder(ctx context.Context, c cart.Cart, customerName, customerEmail string) (*models.Order, error) {
	if c.IsEmpty() {
		return nil, ErrEmptyCart
	}

	var placed *models.Order
	err := s.store.Transact(ctx, func(tx db.OrderTx) error {
		order, err := s.place(ctx, tx, c, customerName, customerEmail)
		if err != nil {
			return err
		}
		placed = order
		return nil
	})
	if err != nil {
		var unknown *UnknownBookError
		if errors.As(err, &unknown) {
			s.logger.Warn().Int("book_id", unknown.BookID).Msg("❌ Order rejected: unknown book")
			return nil, err
		}
		s.logger.Error().Err(err).Msg("❌ Order placement failed")
		return nil, fmt.Errorf("%w: %w", ErrPlacementFailed, err)
	}

	s.logger.Info().
		Int("order_id", placed.ID).
		Str("total", placed.Total.StringFixed(2)).
		Int("items", len(placed.Items)).
		Msg("✅ Order placed")

	if s.publisher != nil {
		if err := s.publisher.PublishOrderPlaced(ctx, placed); err != nil {
			// The order is committed; a lost event does not undo it.
			s.logger.Warn().Err(err).Int("order_id", placed.ID).Msg("⚠️ Failed to publish order.placed")
		}
	}

	return placed, nil
}

func (s *Service) place(ctx context.Context, tx db.OrderTx, c cart.Cart, customerName, customerEmail string) (*models.Order, error) {
	ids := c.BookIDs()

	// Resolve every price once; the same values feed the total and the items.
	prices := make(map[int]decimal.Decimal, len(ids))
	total := decimal.Zero
	for _, id := range ids {
		book, err := tx.GetBook(ctx, id)
		if err != nil {
			return nil, err
		}
		if book == nil {
			return nil, &UnknownBookError{BookID: id}
		}
		prices[id] = book.Price
		total = total.Add(book.Price.Mul(decimal.NewFromInt(int64(c[id]))))
	}

	order := &models.Order{
		CustomerName:  customerName,
		CustomerEmail: customerEmail,
		Total:         total,
		CreatedAt:     s.now().UTC().Truncate(time.Microsecond),
	}
	if err := tx.InsertOrder(ctx, order); err != nil {
		return nil, err
	}

	order.Items = make([]models.OrderItem, 0, len(ids))
	for _, id := range ids {
		item := models.OrderItem{
			OrderID:         order.ID,
			BookID:          id,
			Quantity:        c[id],
			PriceAtPurchase: prices[id],
		}
		if err := tx.InsertItem(ctx, &item); err != nil {
			return nil, err
		}
		order.Items = append(order.Items, item)
	}

	return order, nil
}
