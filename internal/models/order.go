package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Order struct {
	ID            int             `json:"id" db:"id"`
	CustomerName  string          `json:"customer_name" db:"customer_name"`
	CustomerEmail string          `json:"customer_email" db:"customer_email"`
	Total         decimal.Decimal `json:"total" db:"total"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
	Items         []OrderItem     `json:"items"`
}

type OrderItem struct {
	ID              int             `json:"id" db:"id"`
	OrderID         int             `json:"order_id" db:"order_id"`
	BookID          int             `json:"book_id" db:"book_id"`
	Quantity        int             `json:"quantity" db:"quantity"`
	PriceAtPurchase decimal.Decimal `json:"price_at_purchase" db:"price_at_purchase"`
}

// Subtotal is the line amount at the snapshot price.
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.PriceAtPurchase.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type CheckoutRequest struct {
	CustomerName  string `json:"customer_name" form:"customer_name"`
	CustomerEmail string `json:"customer_email" form:"customer_email"`
}

// Receipt is an order with its lines joined to the catalog for display.
type Receipt struct {
	Order Order         `json:"order"`
	Lines []ReceiptLine `json:"lines"`
}

type ReceiptLine struct {
	Title           string          `json:"title" db:"title"`
	Author          string          `json:"author" db:"author"`
	Quantity        int             `json:"quantity" db:"quantity"`
	PriceAtPurchase decimal.Decimal `json:"price_at_purchase" db:"price_at_purchase"`
}

func (l ReceiptLine) Subtotal() decimal.Decimal {
	return l.PriceAtPurchase.Mul(decimal.NewFromInt(int64(l.Quantity)))
}
