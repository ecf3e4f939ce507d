package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/prudhivi99/bookstore/internal/cart"
	"github.com/prudhivi99/bookstore/internal/checkout"
	"github.com/prudhivi99/bookstore/internal/models"
	"github.com/prudhivi99/bookstore/internal/receipt"
)

// OrderPlacer is implemented by checkout.Service.
type OrderPlacer interface {
	PlaceOrder(ctx context.Context, c cart.Cart, customerName, customerEmail string) (*models.Order, error)
}

// OrderReader is implemented by db.OrderRepository.
type OrderReader interface {
	GetAll(ctx context.Context) ([]models.Order, error)
	GetByID(ctx context.Context, id int) (*models.Order, error)
	GetReceipt(ctx context.Context, id int) (*models.Receipt, error)
}

type OrderHandler struct {
	placer            OrderPlacer
	orders            OrderReader
	carts             cart.Store
	keepCartOnFailure bool
	logger            zerolog.Logger
}

func NewOrderHandler(placer OrderPlacer, orders OrderReader, carts cart.Store, keepCartOnFailure bool, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		placer:            placer,
		orders:            orders,
		carts:             carts,
		keepCartOnFailure: keepCartOnFailure,
		logger:            logger,
	}
}

// Checkout places an order for the session's cart. The cart is emptied
// afterwards, including on failure unless keepCartOnFailure is set.
func (h *OrderHandler) Checkout(c *gin.Context) {
	var req models.CheckoutRequest
	if err := c.ShouldBind(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	session := sessionID(c)

	items, err := h.carts.Get(ctx, session)
	if err != nil {
		h.logger.Error().Err(err).Str("session", session).Msg("❌ Failed to load cart")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load cart"})
		return
	}

	order, err := h.placer.PlaceOrder(ctx, items,
		strings.TrimSpace(req.CustomerName),
		strings.TrimSpace(req.CustomerEmail),
	)

	if err == nil || !h.keepCartOnFailure {
		if clearErr := h.carts.Clear(ctx, session); clearErr != nil {
			h.logger.Warn().Err(clearErr).Str("session", session).Msg("⚠️ Failed to clear cart")
		}
	}

	if err != nil {
		var unknown *checkout.UnknownBookError
		switch {
		case errors.Is(err, checkout.ErrEmptyCart):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.As(err, &unknown):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "book_id": unknown.BookID})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": checkout.ErrPlacementFailed.Error()})
		}
		return
	}

	c.JSON(http.StatusCreated, order)
}

// ListOrders returns all orders, newest first
func (h *OrderHandler) ListOrders(c *gin.Context) {
	orders, err := h.orders.GetAll(c.Request.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("❌ Failed to list orders")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list orders"})
		return
	}

	c.JSON(http.StatusOK, orders)
}

// GetOrder returns a single order with items
func (h *OrderHandler) GetOrder(c *gin.Context) {
	id, ok := paramID(c, "invalid order ID")
	if !ok {
		return
	}

	order, err := h.orders.GetByID(c.Request.Context(), id)
	if err != nil {
		h.logger.Error().Err(err).Int("order_id", id).Msg("❌ Failed to get order")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get order"})
		return
	}

	if order == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
		return
	}

	c.JSON(http.StatusOK, order)
}

// Bill renders the HTML bill for an order
func (h *OrderHandler) Bill(c *gin.Context) {
	id, ok := paramID(c, "invalid order ID")
	if !ok {
		return
	}

	r, err := h.orders.GetReceipt(c.Request.Context(), id)
	if err != nil {
		h.logger.Error().Err(err).Int("order_id", id).Msg("❌ Failed to load bill")
		c.String(http.StatusInternalServerError, "failed to load bill")
		return
	}

	if r == nil {
		c.String(http.StatusNotFound, "order not found")
		return
	}

	c.HTML(http.StatusOK, receipt.BillTemplate, r)
}
