package db_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prudhivi99/bookstore/internal/cache"
	"github.com/prudhivi99/bookstore/internal/db"
	"github.com/prudhivi99/bookstore/internal/models"
	"github.com/prudhivi99/bookstore/internal/testutil"
)

func TestBookRepository_CreateAndGet(t *testing.T) {
	database := testutil.NewDatabase(t)
	repo := db.NewBookRepository(database)
	ctx := context.Background()

	book := models.Book{Title: "Clean Code", Author: "Robert C. Martin", Price: decimal.RequireFromString("299.50"), Stock: 5}
	require.NoError(t, repo.Create(ctx, &book))
	assert.NotZero(t, book.ID)

	got, err := repo.GetByID(ctx, book.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Clean Code", got.Title)
	assert.Equal(t, 5, got.Stock)
	testutil.RequireDecimal(t, "299.50", got.Price)
}

func TestBookRepository_GetByIDMissing(t *testing.T) {
	repo := db.NewBookRepository(testutil.NewDatabase(t))

	got, err := repo.GetByID(context.Background(), 999)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestBookRepository_RejectsNonPositivePrice(t *testing.T) {
	repo := db.NewBookRepository(testutil.NewDatabase(t))

	book := models.Book{Title: "Free", Price: decimal.Zero}
	assert.Error(t, repo.Create(context.Background(), &book))
}

func TestBookRepository_UpdatePrice(t *testing.T) {
	database := testutil.NewDatabase(t)
	repo := db.NewBookRepository(database)
	ctx := context.Background()
	id := testutil.AddBook(t, database, "Clean Code", "300")

	require.NoError(t, repo.UpdatePrice(ctx, id, decimal.NewFromInt(500)))

	got, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	testutil.RequireDecimal(t, "500", got.Price)

	err = repo.UpdatePrice(ctx, 12345, decimal.NewFromInt(1))
	assert.ErrorIs(t, err, db.ErrNotFound)
}

func TestSeed_OnlyWhenEmpty(t *testing.T) {
	database := testutil.NewDatabase(t)
	repo := db.NewBookRepository(database)
	ctx := context.Background()

	n, err := db.Seed(ctx, repo)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	n, err = db.Seed(ctx, repo)
	require.NoError(t, err)
	assert.Zero(t, n)

	books, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, books, 4)
	assert.Equal(t, "Clean Code", books[0].Title)
	testutil.RequireDecimal(t, "299", books[0].Price)
}

func newCachedRepo(t *testing.T) (*db.CachedBookRepository, *db.BookRepository, *miniredis.Miniredis, *db.Database) {
	t.Helper()
	database := testutil.NewDatabase(t)
	mr := miniredis.RunT(t)
	c, err := cache.NewRedisCache(context.Background(), mr.Addr(), time.Minute)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })

	repo := db.NewBookRepository(database)
	return db.NewCachedBookRepository(repo, c, zerolog.Nop()), repo, mr, database
}

func TestCachedBookRepository_ReadThrough(t *testing.T) {
	cached, repo, mr, database := newCachedRepo(t)
	ctx := context.Background()
	id := testutil.AddBook(t, database, "Clean Code", "299")

	got, err := cached.GetByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, mr.Exists("book:1"))

	// A direct write is invisible until the entry is invalidated.
	require.NoError(t, repo.UpdatePrice(ctx, id, decimal.NewFromInt(450)))
	got, err = cached.GetByID(ctx, id)
	require.NoError(t, err)
	testutil.RequireDecimal(t, "299", got.Price)

	all, err := cached.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.True(t, mr.Exists("books:all"))
}

func TestCachedBookRepository_UpdatePriceInvalidates(t *testing.T) {
	cached, _, mr, database := newCachedRepo(t)
	ctx := context.Background()
	id := testutil.AddBook(t, database, "Clean Code", "299")

	_, err := cached.GetByID(ctx, id)
	require.NoError(t, err)
	_, err = cached.GetAll(ctx)
	require.NoError(t, err)

	require.NoError(t, cached.UpdatePrice(ctx, id, decimal.NewFromInt(500)))
	assert.False(t, mr.Exists("book:1"))
	assert.False(t, mr.Exists("books:all"))

	got, err := cached.GetByID(ctx, id)
	require.NoError(t, err)
	testutil.RequireDecimal(t, "500", got.Price)
}

func TestCachedBookRepository_MissingBookNotCached(t *testing.T) {
	cached, _, mr, _ := newCachedRepo(t)

	got, err := cached.GetByID(context.Background(), 42)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.False(t, mr.Exists("book:42"))
}

func TestCachedBookRepository_FallsBackWhenRedisDown(t *testing.T) {
	cached, _, mr, database := newCachedRepo(t)
	id := testutil.AddBook(t, database, "Clean Code", "299")
	mr.Close()

	got, err := cached.GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Clean Code", got.Title)
}
