package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/prudhivi99/bookstore/internal/models"
)

// OrderTx is the set of statements an order placement runs inside one transaction.
type OrderTx interface {
	// GetBook reads the current catalog row, nil if the book does not exist.
	GetBook(ctx context.Context, id int) (*models.Book, error)
	// InsertOrder writes the order header and sets order.ID.
	InsertOrder(ctx context.Context, order *models.Order) error
	// InsertItem writes one line item and sets item.ID.
	InsertItem(ctx context.Context, item *models.OrderItem) error
}

type OrderRepository struct {
	db     *sqlx.DB
	txOpts *sql.TxOptions
}

func NewOrderRepository(database *Database) *OrderRepository {
	return &OrderRepository{db: database.Conn, txOpts: database.txOptions()}
}

// Transact runs fn in a single transaction. The transaction is committed only
// if fn returns nil; any error or panic rolls it back.
func (r *OrderRepository) Transact(ctx context.Context, fn func(tx OrderTx) error) error {
	tx, err := r.db.BeginTxx(ctx, r.txOpts)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&orderTx{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

type orderTx struct {
	tx *sqlx.Tx
}

func (t *orderTx) GetBook(ctx context.Context, id int) (*models.Book, error) {
	return getBook(ctx, t.tx, id)
}

func (t *orderTx) InsertOrder(ctx context.Context, order *models.Order) error {
	query := t.tx.Rebind(`
		INSERT INTO orders (customer_name, customer_email, total, created_at)
		VALUES (?, ?, ?, ?)
		RETURNING id
	`)

	err := t.tx.QueryRowxContext(ctx, query, order.CustomerName, order.CustomerEmail, order.Total, order.CreatedAt).
		Scan(&order.ID)
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	return nil
}

func (t *orderTx) InsertItem(ctx context.Context, item *models.OrderItem) error {
	query := t.tx.Rebind(`
		INSERT INTO order_items (order_id, book_id, quantity, price_at_purchase)
		VALUES (?, ?, ?, ?)
		RETURNING id
	`)

	err := t.tx.QueryRowxContext(ctx, query, item.OrderID, item.BookID, item.Quantity, item.PriceAtPurchase).
		Scan(&item.ID)
	if err != nil {
		return fmt.Errorf("failed to insert order item: %w", err)
	}

	return nil
}

// GetAll returns all orders, newest first, without items
func (r *OrderRepository) GetAll(ctx context.Context) ([]models.Order, error) {
	query := `SELECT id, customer_name, customer_email, total, created_at FROM orders ORDER BY id DESC`

	orders := []models.Order{}
	if err := r.db.SelectContext(ctx, &orders, query); err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}

	return orders, nil
}

// GetByID returns a single order with items, or nil if it does not exist
func (r *OrderRepository) GetByID(ctx context.Context, id int) (*models.Order, error) {
	orderQuery := r.db.Rebind(`SELECT id, customer_name, customer_email, total, created_at FROM orders WHERE id = ?`)

	var order models.Order
	if err := r.db.GetContext(ctx, &order, orderQuery, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	itemsQuery := r.db.Rebind(`
		SELECT id, order_id, book_id, quantity, price_at_purchase
		FROM order_items
		WHERE order_id = ?
		ORDER BY id
	`)

	order.Items = []models.OrderItem{}
	if err := r.db.SelectContext(ctx, &order.Items, itemsQuery, id); err != nil {
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}

	return &order, nil
}

// GetReceipt returns the order with its lines joined to book title and author,
// or nil if the order does not exist
func (r *OrderRepository) GetReceipt(ctx context.Context, id int) (*models.Receipt, error) {
	order, err := r.GetByID(ctx, id)
	if err != nil || order == nil {
		return nil, err
	}

	linesQuery := r.db.Rebind(`
		SELECT b.title, b.author, oi.quantity, oi.price_at_purchase
		FROM order_items oi
		JOIN books b ON oi.book_id = b.id
		WHERE oi.order_id = ?
		ORDER BY oi.id
	`)

	receipt := models.Receipt{Order: *order, Lines: []models.ReceiptLine{}}
	if err := r.db.SelectContext(ctx, &receipt.Lines, linesQuery, id); err != nil {
		return nil, fmt.Errorf("failed to query receipt lines: %w", err)
	}

	return &receipt, nil
}

// Delete removes an order; its items go with it through ON DELETE CASCADE
func (r *OrderRepository) Delete(ctx context.Context, id int) error {
	query := r.db.Rebind(`DELETE FROM orders WHERE id = ?`)

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("order %d: %w", id, ErrNotFound)
	}

	return nil
}
