package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/prudhivi99/bookstore/internal/middleware"
	"github.com/prudhivi99/bookstore/internal/receipt"
)

// NewRouter wires every route. A nil limiter leaves checkout unlimited.
func NewRouter(books *BookHandler, carts *CartHandler, orders *OrderHandler, limiter *middleware.RateLimiter, logger zerolog.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(logger))
	router.SetHTMLTemplate(receipt.HTML())

	router.GET("/health", books.HealthCheck)

	router.GET("/books", books.ListBooks)
	router.GET("/books/:id", books.GetBook)

	router.GET("/orders", orders.ListOrders)
	router.GET("/orders/:id", orders.GetOrder)
	router.GET("/bill/:id", orders.Bill)

	session := router.Group("/", Session())
	{
		session.GET("/cart", carts.ViewCart)
		session.GET("/cart/data", carts.CartData)
		session.DELETE("/cart", carts.ClearCart)
		session.POST("/cart/items/:id", carts.AddItem)
		session.DELETE("/cart/items/:id", carts.RemoveItem)
		session.POST("/cart/items/:id/increase", carts.IncreaseItem)
		session.POST("/cart/items/:id/decrease", carts.DecreaseItem)

		checkoutChain := []gin.HandlerFunc{}
		if limiter != nil {
			checkoutChain = append(checkoutChain, limiter.Handler())
		}
		checkoutChain = append(checkoutChain, orders.Checkout)
		session.POST("/checkout", checkoutChain...)
	}

	return router
}
