package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookbar/internal/catalog"
	"github.com/mrlokans/bookbar/internal/entities"
	"github.com/mrlokans/bookbar/internal/search"
)

// SearchController handles remote and offline book search.
type SearchController struct {
	catalog SearchCatalog
}

// NewSearchController creates a new SearchController.
func NewSearchController(c SearchCatalog) *SearchController {
	return &SearchController{catalog: c}
}

// SearchResponse is one page of remote results.
type SearchResponse struct {
	catalog.SearchPage
	HasMore bool `json:"has_more"`
}

// Search handles GET /api/search?q=&page=
// Results come straight from the remote catalog and are never cached.
func (sc *SearchController) Search(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	page, ok := parseQueryInt(c, "page", 1)
	if !ok {
		return
	}
	if page == 0 {
		page = 1
	}

	pager := sc.catalog.Search(query).StartAt(page)
	empty := SearchResponse{SearchPage: catalog.SearchPage{Page: page, Books: []entities.BookSummary{}}}
	if !pager.More() {
		c.JSON(http.StatusOK, empty)
		return
	}

	result, err := pager.Next(c.Request.Context())
	switch {
	case errors.Is(err, catalog.ErrEndOfResults):
		c.JSON(http.StatusOK, empty)
	case errors.Is(err, catalog.ErrRemoteUnavailable):
		respondError(c, http.StatusBadGateway, "catalog unavailable")
	case err != nil:
		respondInternalError(c, err, "search")
	default:
		c.JSON(http.StatusOK, SearchResponse{SearchPage: result, HasMore: pager.More()})
	}
}

// CachedSearchResponse wraps offline results with paging metadata.
type CachedSearchResponse struct {
	Data    []entities.BookSummary `json:"data"`
	Total   uint64                 `json:"total"`
	Limit   int                    `json:"limit"`
	Offset  int                    `json:"offset"`
	HasMore bool                   `json:"has_more"`
}

// SearchCached handles GET /api/search/cached?q=&limit=&offset=
// Searches the books already in the local cache.
func (sc *SearchController) SearchCached(c *gin.Context) {
	limit, ok := parseQueryInt(c, "limit", search.DefaultLimit)
	if !ok {
		return
	}
	offset, ok := parseQueryInt(c, "offset", 0)
	if !ok {
		return
	}

	result, err := sc.catalog.SearchCached(c.Request.Context(), c.Query("q"), limit, offset)
	if err != nil {
		if errors.Is(err, catalog.ErrSearchUnavailable) {
			respondError(c, http.StatusServiceUnavailable, "offline search is not available")
			return
		}
		respondInternalError(c, err, "cached search")
		return
	}

	c.JSON(http.StatusOK, CachedSearchResponse{
		Data:    result.Books,
		Total:   result.Total,
		Limit:   limit,
		Offset:  offset,
		HasMore: uint64(offset+len(result.Books)) < result.Total,
	})
}
