package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookbar/internal/catalog"
)

// CoversController handles book cover requests.
type CoversController struct {
	cache   CoverCache
	models  BookReadModels
	timeout time.Duration
}

// NewCoversController creates a new CoversController.
func NewCoversController(cache CoverCache, models BookReadModels, timeout time.Duration) *CoversController {
	return &CoversController{
		cache:   cache,
		models:  models,
		timeout: timeout,
	}
}

// GetCover serves a cached book cover image.
// GET /covers/:isbn
func (cc *CoversController) GetCover(c *gin.Context) {
	isbn, ok := parseISBNParam(c, "isbn")
	if !ok {
		return
	}

	result, ok := snapshot(c, cc.timeout, cc.models.ObserveDetail(c.Request.Context(), isbn), detailSettled)
	if !ok {
		return
	}
	if result.Status != catalog.StatusSuccess || result.Book == nil || result.Book.ImageURL == "" {
		c.Status(http.StatusNotFound)
		return
	}

	// Get cached cover (will fetch if not cached)
	cachePath, err := cc.cache.GetCover(c.Request.Context(), isbn, result.Book.ImageURL)
	if err != nil || cachePath == "" {
		// Fallback: redirect to original URL
		c.Redirect(http.StatusTemporaryRedirect, result.Book.ImageURL)
		return
	}

	// Serve the cached file
	c.File(cachePath)
}
