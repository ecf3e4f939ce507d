package models

import "github.com/shopspring/decimal"

// CartLine is a cart entry priced from the catalog for display.
type CartLine struct {
	BookID   int             `json:"book_id"`
	Title    string          `json:"title"`
	Author   string          `json:"author"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

type CartView struct {
	Items []CartLine      `json:"items"`
	Total decimal.Decimal `json:"total"`
}
