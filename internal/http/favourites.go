package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookbar/internal/entities"
)

// FavouritesController handles the favorite set.
type FavouritesController struct {
	favorites FavoritesCatalog
	timeout   time.Duration
}

// NewFavouritesController creates a new FavouritesController.
func NewFavouritesController(favorites FavoritesCatalog, timeout time.Duration) *FavouritesController {
	return &FavouritesController{favorites: favorites, timeout: timeout}
}

// ListFavourites handles GET /api/favorites
func (fc *FavouritesController) ListFavourites(c *gin.Context) {
	state, ok := snapshot(c, fc.timeout, fc.favorites.ObserveFavorites(c.Request.Context()), listSettled)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, state)
}

// StreamFavourites handles GET /api/favorites/stream
func (fc *FavouritesController) StreamFavourites(c *gin.Context) {
	streamEvents(c, fc.favorites.ObserveFavorites(c.Request.Context()), "favorite_books")
}

// AddFavouriteRequest is the body of POST /api/favorites.
type AddFavouriteRequest struct {
	ISBN13   string `json:"isbn13" validate:"required,isbn13"`
	Title    string `json:"title" validate:"max=512"`
	Price    string `json:"price" validate:"max=32"`
	ImageURL string `json:"image" validate:"max=1024"`
}

// AddFavourite handles POST /api/favorites
func (fc *FavouritesController) AddFavourite(c *gin.Context) {
	var req AddFavouriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	if errs := ValidateStruct(req); errs != nil {
		respondValidationError(c, errs)
		return
	}

	book := entities.BookSummary{
		ISBN13:   req.ISBN13,
		Title:    req.Title,
		Price:    req.Price,
		ImageURL: req.ImageURL,
	}
	if err := fc.favorites.SaveFavorite(c.Request.Context(), book); err != nil {
		respondInternalError(c, err, "save favorite")
		return
	}

	c.JSON(http.StatusCreated, book)
}

// RemoveFavourite handles DELETE /api/favorites/:isbn
// Removing a book that is not a favorite is not an error.
func (fc *FavouritesController) RemoveFavourite(c *gin.Context) {
	isbn, ok := parseISBNParam(c, "isbn")
	if !ok {
		return
	}

	if err := fc.favorites.RemoveFavorite(c.Request.Context(), isbn); err != nil {
		respondInternalError(c, err, "remove favorite")
		return
	}

	respondSuccess(c, "favorite removed")
}
