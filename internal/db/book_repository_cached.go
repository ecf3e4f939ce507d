package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/prudhivi99/bookstore/internal/cache"
	"github.com/prudhivi99/bookstore/internal/models"
)

// CachedBookRepository serves catalog reads from Redis. Checkout never reads
// through it; order prices come from the database inside the order transaction.
type CachedBookRepository struct {
	repo   *BookRepository
	cache  *cache.RedisCache
	logger zerolog.Logger
}

func NewCachedBookRepository(repo *BookRepository, cache *cache.RedisCache, logger zerolog.Logger) *CachedBookRepository {
	return &CachedBookRepository{
		repo:   repo,
		cache:  cache,
		logger: logger,
	}
}

func bookKey(id int) string {
	return fmt.Sprintf("book:%d", id)
}

const allBooksKey = "books:all"

// GetAll returns all books (with caching)
func (r *CachedBookRepository) GetAll(ctx context.Context) ([]models.Book, error) {
	var books []models.Book
	err := r.cache.Get(ctx, allBooksKey, &books)
	if err == nil {
		r.logger.Debug().Msg("📦 Cache HIT: all books")
		return books, nil
	}
	r.logCacheError(err)

	r.logger.Debug().Msg("💾 Cache MISS: all books")
	books, err = r.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	if err := r.cache.Set(ctx, allBooksKey, books); err != nil {
		r.logger.Warn().Err(err).Msg("⚠️ Failed to cache books")
	}

	return books, nil
}

// GetByID returns a single book (with caching). Missing books are not cached.
func (r *CachedBookRepository) GetByID(ctx context.Context, id int) (*models.Book, error) {
	var book models.Book
	err := r.cache.Get(ctx, bookKey(id), &book)
	if err == nil {
		r.logger.Debug().Int("book_id", id).Msg("📦 Cache HIT: book")
		return &book, nil
	}
	r.logCacheError(err)

	r.logger.Debug().Int("book_id", id).Msg("💾 Cache MISS: book")
	b, err := r.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, nil
	}

	if err := r.cache.Set(ctx, bookKey(id), b); err != nil {
		r.logger.Warn().Err(err).Int("book_id", id).Msg("⚠️ Failed to cache book")
	}

	return b, nil
}

// UpdatePrice writes through to the database and invalidates the cached entries
func (r *CachedBookRepository) UpdatePrice(ctx context.Context, id int, price decimal.Decimal) error {
	if err := r.repo.UpdatePrice(ctx, id, price); err != nil {
		return err
	}

	if err := r.cache.Delete(ctx, bookKey(id), allBooksKey); err != nil {
		r.logger.Warn().Err(err).Int("book_id", id).Msg("⚠️ Failed to invalidate cache")
	}
	r.logger.Debug().Int("book_id", id).Msg("🗑️ Cache invalidated: book and all books")

	return nil
}

func (r *CachedBookRepository) logCacheError(err error) {
	if !errors.Is(err, redis.Nil) {
		r.logger.Warn().Err(err).Msg("⚠️ Cache error")
	}
}
