// Package cart holds the per-session shopping cart: a mapping of book ID to
// quantity, kept outside the order transaction.
package cart

import (
	"context"
	"sort"
)

// Cart maps book ID to requested quantity. Quantities are always positive;
// an entry that drops to zero is removed.
type Cart map[int]int

// Add puts one more copy in the cart, re-adding the book if it was removed.
func (c Cart) Add(bookID int) {
	c[bookID]++
}

// Increase adds one copy of a book already in the cart.
func (c Cart) Increase(bookID int) {
	if _, ok := c[bookID]; ok {
		c[bookID]++
	}
}

// Decrease removes one copy and drops the entry when nothing is left.
func (c Cart) Decrease(bookID int) {
	qty, ok := c[bookID]
	if !ok {
		return
	}
	if qty-1 <= 0 {
		delete(c, bookID)
		return
	}
	c[bookID] = qty - 1
}

func (c Cart) Remove(bookID int) {
	delete(c, bookID)
}

func (c Cart) IsEmpty() bool {
	return len(c) == 0
}

// BookIDs returns the IDs in ascending order.
func (c Cart) BookIDs() []int {
	ids := make([]int, 0, len(c))
	for id := range c {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Store keeps one cart per session.
type Store interface {
	Get(ctx context.Context, session string) (Cart, error)
	Add(ctx context.Context, session string, bookID int) error
	Increase(ctx context.Context, session string, bookID int) error
	Decrease(ctx context.Context, session string, bookID int) error
	Remove(ctx context.Context, session string, bookID int) error
	Clear(ctx context.Context, session string) error
}
