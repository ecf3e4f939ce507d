package models

import "github.com/shopspring/decimal"

// OrderPlacedEvent is published once an order has been committed
type OrderPlacedEvent struct {
	OrderID       int              `json:"order_id"`
	CustomerName  string           `json:"customer_name"`
	CustomerEmail string           `json:"customer_email"`
	Total         decimal.Decimal  `json:"total"`
	Items         []OrderItemEvent `json:"items"`
}

type OrderItemEvent struct {
	BookID   int `json:"book_id"`
	Quantity int `json:"quantity"`
}
