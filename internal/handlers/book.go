package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/prudhivi99/bookstore/internal/models"
)

// Catalog is implemented by db.BookRepository and db.CachedBookRepository.
type Catalog interface {
	GetAll(ctx context.Context) ([]models.Book, error)
	GetByID(ctx context.Context, id int) (*models.Book, error)
}

type BookHandler struct {
	catalog Catalog
	logger  zerolog.Logger
}

func NewBookHandler(catalog Catalog, logger zerolog.Logger) *BookHandler {
	return &BookHandler{catalog: catalog, logger: logger}
}

// HealthCheck returns server status
func (h *BookHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "bookstore"})
}

// ListBooks returns the whole catalog
func (h *BookHandler) ListBooks(c *gin.Context) {
	books, err := h.catalog.GetAll(c.Request.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("❌ Failed to list books")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list books"})
		return
	}

	c.JSON(http.StatusOK, books)
}

// GetBook returns a single book
func (h *BookHandler) GetBook(c *gin.Context) {
	id, ok := paramID(c, "invalid book ID")
	if !ok {
		return
	}

	book, err := h.catalog.GetByID(c.Request.Context(), id)
	if err != nil {
		h.logger.Error().Err(err).Int("book_id", id).Msg("❌ Failed to get book")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get book"})
		return
	}

	if book == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "book not found"})
		return
	}

	c.JSON(http.StatusOK, book)
}

// paramID parses the :id path parameter, answering 400 when it is not a
// positive integer.
func paramID(c *gin.Context, message string) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": message})
		return 0, false
	}
	return id, true
}
