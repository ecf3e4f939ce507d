package db

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/prudhivi99/bookstore/internal/models"
)

// SampleBooks is the starter catalog inserted into an empty store.
func SampleBooks() []models.Book {
	return []models.Book{
		{Title: "Clean Code", Author: "Robert C. Martin", Price: decimal.NewFromInt(299), Stock: 5, Description: "A Handbook of Agile Software Craftsmanship"},
		{Title: "Introduction to Algorithms", Author: "Cormen et al.", Price: decimal.NewFromInt(799), Stock: 2, Description: "Comprehensive algorithms book"},
		{Title: "The Pragmatic Programmer", Author: "Andrew Hunt", Price: decimal.NewFromInt(399), Stock: 4, Description: "Classic software engineering book"},
		{Title: "Fundamentals Of C Language", Author: "Ayush Salve", Price: decimal.NewFromInt(300), Stock: 4, Description: "Beginner-friendly C language guide"},
	}
}

// Seed inserts SampleBooks when the catalog is empty and reports how many were added.
func Seed(ctx context.Context, repo *BookRepository) (int, error) {
	n, err := repo.Count(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		return 0, nil
	}

	books := SampleBooks()
	for i := range books {
		if err := repo.Create(ctx, &books[i]); err != nil {
			return i, fmt.Errorf("failed to seed %q: %w", books[i].Title, err)
		}
	}

	return len(books), nil
}
