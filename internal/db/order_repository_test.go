package db_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prudhivi99/bookstore/internal/db"
	"github.com/prudhivi99/bookstore/internal/models"
	"github.com/prudhivi99/bookstore/internal/testutil"
)

var placedAt = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

// insertOrder writes an order and its items in one transaction.
func insertOrder(t *testing.T, repo *db.OrderRepository, order *models.Order) {
	t.Helper()
	err := repo.Transact(context.Background(), func(tx db.OrderTx) error {
		if err := tx.InsertOrder(context.Background(), order); err != nil {
			return err
		}
		for i := range order.Items {
			order.Items[i].OrderID = order.ID
			if err := tx.InsertItem(context.Background(), &order.Items[i]); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)
}

func TestOrderRepository_TransactCommits(t *testing.T) {
	database := testutil.NewDatabase(t)
	repo := db.NewOrderRepository(database)
	bookID := testutil.AddBook(t, database, "Clean Code", "299")

	order := models.Order{
		CustomerName:  "Jane",
		CustomerEmail: "jane@example.com",
		Total:         decimal.NewFromInt(598),
		CreatedAt:     placedAt,
		Items: []models.OrderItem{
			{BookID: bookID, Quantity: 2, PriceAtPurchase: decimal.NewFromInt(299)},
		},
	}
	insertOrder(t, repo, &order)
	assert.NotZero(t, order.ID)
	assert.NotZero(t, order.Items[0].ID)

	got, err := repo.GetByID(context.Background(), order.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Jane", got.CustomerName)
	assert.Equal(t, "jane@example.com", got.CustomerEmail)
	assert.True(t, placedAt.Equal(got.CreatedAt), "created_at round trip: %s", got.CreatedAt)
	testutil.RequireDecimal(t, "598", got.Total)
	require.Len(t, got.Items, 1)
	assert.Equal(t, order.ID, got.Items[0].OrderID)
	assert.Equal(t, 2, got.Items[0].Quantity)
}

func TestOrderRepository_TransactRollsBackOnError(t *testing.T) {
	database := testutil.NewDatabase(t)
	repo := db.NewOrderRepository(database)
	boom := errors.New("boom")

	err := repo.Transact(context.Background(), func(tx db.OrderTx) error {
		order := models.Order{CustomerName: "Jane", Total: decimal.NewFromInt(1), CreatedAt: placedAt}
		if err := tx.InsertOrder(context.Background(), &order); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, testutil.CountRows(t, database, "orders"))
}

func TestOrderRepository_TransactRollsBackOnPanic(t *testing.T) {
	database := testutil.NewDatabase(t)
	repo := db.NewOrderRepository(database)

	assert.Panics(t, func() {
		_ = repo.Transact(context.Background(), func(tx db.OrderTx) error {
			order := models.Order{CustomerName: "Jane", Total: decimal.NewFromInt(1), CreatedAt: placedAt}
			if err := tx.InsertOrder(context.Background(), &order); err != nil {
				return err
			}
			panic("mid-transaction")
		})
	})
	assert.Zero(t, testutil.CountRows(t, database, "orders"))
}

func TestOrderRepository_ItemConstraintsAbortTransaction(t *testing.T) {
	database := testutil.NewDatabase(t)
	repo := db.NewOrderRepository(database)
	bookID := testutil.AddBook(t, database, "Clean Code", "299")

	tests := []struct {
		name string
		item models.OrderItem
	}{
		{"zero quantity", models.OrderItem{BookID: bookID, Quantity: 0, PriceAtPurchase: decimal.NewFromInt(299)}},
		{"unknown book", models.OrderItem{BookID: 999, Quantity: 1, PriceAtPurchase: decimal.NewFromInt(1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.Transact(context.Background(), func(tx db.OrderTx) error {
				order := models.Order{CustomerName: "Jane", Total: decimal.NewFromInt(1), CreatedAt: placedAt}
				if err := tx.InsertOrder(context.Background(), &order); err != nil {
					return err
				}
				item := tt.item
				item.OrderID = order.ID
				return tx.InsertItem(context.Background(), &item)
			})
			assert.Error(t, err)
			assert.Zero(t, testutil.CountRows(t, database, "orders"))
			assert.Zero(t, testutil.CountRows(t, database, "order_items"))
		})
	}
}

func TestOrderTx_GetBook(t *testing.T) {
	database := testutil.NewDatabase(t)
	repo := db.NewOrderRepository(database)
	bookID := testutil.AddBook(t, database, "Clean Code", "299")

	err := repo.Transact(context.Background(), func(tx db.OrderTx) error {
		book, err := tx.GetBook(context.Background(), bookID)
		require.NoError(t, err)
		require.NotNil(t, book)
		testutil.RequireDecimal(t, "299", book.Price)

		missing, err := tx.GetBook(context.Background(), 999)
		require.NoError(t, err)
		assert.Nil(t, missing)
		return nil
	})
	require.NoError(t, err)
}

func TestOrderRepository_GetAllNewestFirst(t *testing.T) {
	database := testutil.NewDatabase(t)
	repo := db.NewOrderRepository(database)

	first := models.Order{CustomerName: "A", Total: decimal.NewFromInt(1), CreatedAt: placedAt}
	second := models.Order{CustomerName: "B", Total: decimal.NewFromInt(2), CreatedAt: placedAt}
	insertOrder(t, repo, &first)
	insertOrder(t, repo, &second)

	orders, err := repo.GetAll(context.Background())
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, second.ID, orders[0].ID)
	assert.Equal(t, first.ID, orders[1].ID)
}

func TestOrderRepository_GetByIDMissing(t *testing.T) {
	repo := db.NewOrderRepository(testutil.NewDatabase(t))

	got, err := repo.GetByID(context.Background(), 7)
	require.NoError(t, err)
	assert.Nil(t, got)

	receipt, err := repo.GetReceipt(context.Background(), 7)
	require.NoError(t, err)
	assert.Nil(t, receipt)
}

func TestOrderRepository_GetReceiptJoinsBooks(t *testing.T) {
	database := testutil.NewDatabase(t)
	repo := db.NewOrderRepository(database)
	cleanCode := testutil.AddBook(t, database, "Clean Code", "299")
	pragmatic := testutil.AddBook(t, database, "The Pragmatic Programmer", "399")

	order := models.Order{
		CustomerName: "Jane",
		Total:        decimal.NewFromInt(997),
		CreatedAt:    placedAt,
		Items: []models.OrderItem{
			{BookID: cleanCode, Quantity: 2, PriceAtPurchase: decimal.NewFromInt(299)},
			{BookID: pragmatic, Quantity: 1, PriceAtPurchase: decimal.NewFromInt(399)},
		},
	}
	insertOrder(t, repo, &order)

	receipt, err := repo.GetReceipt(context.Background(), order.ID)
	require.NoError(t, err)
	require.NotNil(t, receipt)
	require.Len(t, receipt.Lines, 2)
	assert.Equal(t, "Clean Code", receipt.Lines[0].Title)
	assert.Equal(t, "Clean Code Author", receipt.Lines[0].Author)
	testutil.RequireDecimal(t, "598", receipt.Lines[0].Subtotal())
	assert.Equal(t, "The Pragmatic Programmer", receipt.Lines[1].Title)
	testutil.RequireDecimal(t, "997", receipt.Order.Total)
}

func TestOrderRepository_DeleteCascadesItems(t *testing.T) {
	database := testutil.NewDatabase(t)
	repo := db.NewOrderRepository(database)
	bookID := testutil.AddBook(t, database, "Clean Code", "299")

	keep := models.Order{CustomerName: "Keep", Total: decimal.NewFromInt(299), CreatedAt: placedAt,
		Items: []models.OrderItem{{BookID: bookID, Quantity: 1, PriceAtPurchase: decimal.NewFromInt(299)}}}
	drop := models.Order{CustomerName: "Drop", Total: decimal.NewFromInt(598), CreatedAt: placedAt,
		Items: []models.OrderItem{{BookID: bookID, Quantity: 2, PriceAtPurchase: decimal.NewFromInt(299)}}}
	insertOrder(t, repo, &keep)
	insertOrder(t, repo, &drop)

	require.NoError(t, repo.Delete(context.Background(), drop.ID))
	assert.Equal(t, 1, testutil.CountRows(t, database, "orders"))
	assert.Equal(t, 1, testutil.CountRows(t, database, "order_items"))

	remaining, err := repo.GetByID(context.Background(), keep.ID)
	require.NoError(t, err)
	require.Len(t, remaining.Items, 1)

	assert.ErrorIs(t, repo.Delete(context.Background(), drop.ID), db.ErrNotFound)
}
