package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookbar/internal/catalog"
)

// BooksController serves the new-books and book-detail read models.
type BooksController struct {
	models    BookReadModels
	favorites FavoritesCatalog
	tasks     TaskDispatcher
	timeout   time.Duration
}

// NewBooksController creates a new BooksController. tasks may be nil, in
// which case refresh requests are rejected.
func NewBooksController(models BookReadModels, favorites FavoritesCatalog, tasks TaskDispatcher, timeout time.Duration) *BooksController {
	return &BooksController{
		models:    models,
		favorites: favorites,
		tasks:     tasks,
		timeout:   timeout,
	}
}

func listSettled(s catalog.ListState) bool     { return s.Status.Settled() }
func detailSettled(s catalog.DetailResult) bool { return s.Status.Settled() }

// GetNewBooks handles GET /api/books/new
// Returns the first settled state of the new-books read model.
func (bc *BooksController) GetNewBooks(c *gin.Context) {
	state, ok := snapshot(c, bc.timeout, bc.models.ObserveNewBooks(c.Request.Context()), listSettled)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, state)
}

// StreamNewBooks handles GET /api/books/new/stream
func (bc *BooksController) StreamNewBooks(c *gin.Context) {
	streamEvents(c, bc.models.ObserveNewBooks(c.Request.Context()), "new_books")
}

// RefreshNewBooks handles POST /api/books/new/refresh
// Enqueues a refresh, or runs it before responding when no queue is configured.
func (bc *BooksController) RefreshNewBooks(c *gin.Context) {
	if bc.tasks == nil {
		respondError(c, http.StatusServiceUnavailable, "refresh is not available")
		return
	}

	taskID, err := bc.tasks.RefreshNewBooks(c.Request.Context())
	if err != nil {
		if errors.Is(err, catalog.ErrRemoteUnavailable) {
			respondError(c, http.StatusBadGateway, "catalog unavailable")
			return
		}
		respondInternalError(c, err, "refresh new books")
		return
	}

	if bc.tasks.Queued() {
		respondAccepted(c, "refresh enqueued", gin.H{"task_id": taskID})
		return
	}
	respondSuccess(c, "new books refreshed")
}

// GetBook handles GET /api/books/:isbn
// Returns the cached detail, fetching it from the catalog on a miss.
func (bc *BooksController) GetBook(c *gin.Context) {
	isbn, ok := parseISBNParam(c, "isbn")
	if !ok {
		return
	}

	result, ok := snapshot(c, bc.timeout, bc.models.ObserveDetail(c.Request.Context(), isbn), detailSettled)
	if !ok {
		return
	}
	if result.Status == catalog.StatusNotFound {
		respondNotFound(c, "book")
		return
	}
	c.JSON(http.StatusOK, result)
}

// StreamBook handles GET /api/books/:isbn/stream
func (bc *BooksController) StreamBook(c *gin.Context) {
	isbn, ok := parseISBNParam(c, "isbn")
	if !ok {
		return
	}
	streamEvents(c, bc.models.ObserveDetail(c.Request.Context(), isbn), "book_detail")
}

// SetFavoriteRequest is the body of PUT /api/books/:isbn/favorite.
type SetFavoriteRequest struct {
	Favorite *bool `json:"favorite" validate:"required"`
}

// SetFavorite handles PUT /api/books/:isbn/favorite
// Adds the book to, or removes it from, the favorite set.
func (bc *BooksController) SetFavorite(c *gin.Context) {
	isbn, ok := parseISBNParam(c, "isbn")
	if !ok {
		return
	}

	var req SetFavoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	if errs := ValidateStruct(req); errs != nil {
		respondValidationError(c, errs)
		return
	}

	result, ok := snapshot(c, bc.timeout, bc.models.ObserveDetail(c.Request.Context(), isbn), detailSettled)
	if !ok {
		return
	}
	if result.Status == catalog.StatusNotFound || result.Book == nil {
		respondNotFound(c, "book")
		return
	}

	if err := bc.favorites.SetFavorite(c.Request.Context(), *result.Book, *req.Favorite); err != nil {
		respondInternalError(c, err, "set favorite")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"isbn13":   isbn,
		"favorite": *req.Favorite,
	})
}
