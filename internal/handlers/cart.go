package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/prudhivi99/bookstore/internal/cart"
	"github.com/prudhivi99/bookstore/internal/models"
)

type CartHandler struct {
	carts   cart.Store
	catalog Catalog
	logger  zerolog.Logger
}

func NewCartHandler(carts cart.Store, catalog Catalog, logger zerolog.Logger) *CartHandler {
	return &CartHandler{carts: carts, catalog: catalog, logger: logger}
}

// ViewCart returns the cart priced from the current catalog. Entries whose
// book has disappeared are left out of the view.
func (h *CartHandler) ViewCart(c *gin.Context) {
	ctx := c.Request.Context()

	items, err := h.carts.Get(ctx, sessionID(c))
	if err != nil {
		h.fail(c, err, "failed to load cart")
		return
	}

	view := models.CartView{Items: []models.CartLine{}, Total: decimal.Zero}
	for _, id := range items.BookIDs() {
		book, err := h.catalog.GetByID(ctx, id)
		if err != nil {
			h.fail(c, err, "failed to load cart")
			return
		}
		if book == nil {
			continue
		}

		line := models.CartLine{
			BookID:   book.ID,
			Title:    book.Title,
			Author:   book.Author,
			Price:    book.Price,
			Quantity: items[id],
			Subtotal: book.Price.Mul(decimal.NewFromInt(int64(items[id]))),
		}
		view.Items = append(view.Items, line)
		view.Total = view.Total.Add(line.Subtotal)
	}

	c.JSON(http.StatusOK, view)
}

// CartData returns the raw book id to quantity map
func (h *CartHandler) CartData(c *gin.Context) {
	items, err := h.carts.Get(c.Request.Context(), sessionID(c))
	if err != nil {
		h.fail(c, err, "failed to load cart")
		return
	}

	c.JSON(http.StatusOK, gin.H{"cart": items})
}

// ClearCart empties the session's cart
func (h *CartHandler) ClearCart(c *gin.Context) {
	if err := h.carts.Clear(c.Request.Context(), sessionID(c)); err != nil {
		h.fail(c, err, "failed to clear cart")
		return
	}

	c.JSON(http.StatusOK, gin.H{"cart": cart.Cart{}})
}

// AddItem puts one more copy of a catalog book into the cart
func (h *CartHandler) AddItem(c *gin.Context) {
	id, ok := paramID(c, "invalid book ID")
	if !ok {
		return
	}

	book, err := h.catalog.GetByID(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, "failed to add to cart")
		return
	}
	if book == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "book not found"})
		return
	}

	h.mutate(c, id, h.carts.Add)
}

// IncreaseItem bumps the quantity of a book already in the cart
func (h *CartHandler) IncreaseItem(c *gin.Context) {
	if id, ok := paramID(c, "invalid book ID"); ok {
		h.mutate(c, id, h.carts.Increase)
	}
}

// DecreaseItem lowers the quantity, dropping the entry when it reaches zero
func (h *CartHandler) DecreaseItem(c *gin.Context) {
	if id, ok := paramID(c, "invalid book ID"); ok {
		h.mutate(c, id, h.carts.Decrease)
	}
}

// RemoveItem deletes the entry entirely
func (h *CartHandler) RemoveItem(c *gin.Context) {
	if id, ok := paramID(c, "invalid book ID"); ok {
		h.mutate(c, id, h.carts.Remove)
	}
}

func (h *CartHandler) mutate(c *gin.Context, bookID int, op func(ctx context.Context, session string, bookID int) error) {
	ctx := c.Request.Context()
	session := sessionID(c)

	if err := op(ctx, session, bookID); err != nil {
		h.fail(c, err, "failed to update cart")
		return
	}

	items, err := h.carts.Get(ctx, session)
	if err != nil {
		h.fail(c, err, "failed to load cart")
		return
	}

	c.JSON(http.StatusOK, gin.H{"cart": items})
}

func (h *CartHandler) fail(c *gin.Context, err error, message string) {
	h.logger.Error().Err(err).Str("session", sessionID(c)).Msg("❌ " + message)
	c.JSON(http.StatusInternalServerError, gin.H{"error": message})
}
