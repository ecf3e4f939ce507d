package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/prudhivi99/bookstore/internal/models"
)

const bookColumns = "id, title, author, price, stock, description"

type BookRepository struct {
	db *sqlx.DB
}

func NewBookRepository(database *Database) *BookRepository {
	return &BookRepository{db: database.Conn}
}

// GetAll returns the whole catalog
func (r *BookRepository) GetAll(ctx context.Context) ([]models.Book, error) {
	query := "SELECT " + bookColumns + " FROM books ORDER BY id"

	books := []models.Book{}
	if err := r.db.SelectContext(ctx, &books, query); err != nil {
		return nil, fmt.Errorf("failed to query books: %w", err)
	}

	return books, nil
}

// GetByID returns a single book, or nil if it does not exist
func (r *BookRepository) GetByID(ctx context.Context, id int) (*models.Book, error) {
	return getBook(ctx, r.db, id)
}

// Create inserts a new book and sets its ID
func (r *BookRepository) Create(ctx context.Context, book *models.Book) error {
	query := r.db.Rebind(`
		INSERT INTO books (title, author, price, stock, description)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id
	`)

	err := r.db.QueryRowxContext(ctx, query, book.Title, book.Author, book.Price, book.Stock, book.Description).
		Scan(&book.ID)
	if err != nil {
		return fmt.Errorf("failed to create book: %w", err)
	}

	return nil
}

// UpdatePrice changes the current catalog price. Existing orders keep their snapshot.
func (r *BookRepository) UpdatePrice(ctx context.Context, id int, price decimal.Decimal) error {
	query := r.db.Rebind("UPDATE books SET price = ? WHERE id = ?")

	result, err := r.db.ExecContext(ctx, query, price, id)
	if err != nil {
		return fmt.Errorf("failed to update book price: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("book %d: %w", id, ErrNotFound)
	}

	return nil
}

func (r *BookRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM books"); err != nil {
		return 0, fmt.Errorf("failed to count books: %w", err)
	}
	return n, nil
}

// queryer is satisfied by both *sqlx.DB and *sqlx.Tx.
type queryer interface {
	sqlx.QueryerContext
	Rebind(query string) string
}

// getBook is shared by the repository and the order transaction.
func getBook(ctx context.Context, q queryer, id int) (*models.Book, error) {
	query := q.Rebind("SELECT " + bookColumns + " FROM books WHERE id = ?")

	var b models.Book
	err := sqlx.GetContext(ctx, q, &b, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get book: %w", err)
	}

	return &b, nil
}
