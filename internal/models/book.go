package models

import "github.com/shopspring/decimal"

type Book struct {
	ID          int             `json:"id" db:"id"`
	Title       string          `json:"title" db:"title"`
	Author      string          `json:"author" db:"author"`
	Price       decimal.Decimal `json:"price" db:"price"`
	Stock       int             `json:"stock" db:"stock"`
	Description string          `json:"description" db:"description"`
}
