package http

import (
	"github.com/gin-gonic/gin"
)

// NewRouter creates and configures the HTTP router with all endpoints.
// Uses RouterConfig to receive all dependencies.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	health := NewHealthController(cfg.Database, cfg.Version)

	// Health endpoints
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	// Book read models
	if cfg.Catalog != nil {
		books := NewBooksController(cfg.Catalog, cfg.Catalog, cfg.Tasks, cfg.SnapshotTimeout)
		router.GET("/api/books/new", books.GetNewBooks)
		router.GET("/api/books/new/stream", books.StreamNewBooks)
		router.POST("/api/books/new/refresh", books.RefreshNewBooks)
		router.GET("/api/books/:isbn", books.GetBook)
		router.GET("/api/books/:isbn/stream", books.StreamBook)
		router.PUT("/api/books/:isbn/favorite", books.SetFavorite)

		favourites := NewFavouritesController(cfg.Catalog, cfg.SnapshotTimeout)
		router.GET("/api/favorites", favourites.ListFavourites)
		router.GET("/api/favorites/stream", favourites.StreamFavourites)
		router.POST("/api/favorites", favourites.AddFavourite)
		router.DELETE("/api/favorites/:isbn", favourites.RemoveFavourite)

		searchController := NewSearchController(cfg.Catalog)
		router.GET("/api/search", searchController.Search)
		router.GET("/api/search/cached", searchController.SearchCached)

		// Book cover endpoint
		if cfg.Covers != nil {
			covers := NewCoversController(cfg.Covers, cfg.Catalog, cfg.SnapshotTimeout)
			router.GET("/covers/:isbn", covers.GetCover)
		}
	}

	// Preferences endpoints
	if cfg.Preferences != nil {
		prefs := NewPreferencesController(cfg.Preferences)
		router.GET("/api/preferences", prefs.GetPreferences)
		router.PUT("/api/preferences", prefs.UpdatePreference)
		router.GET("/api/preferences/stream", prefs.StreamPreferences)
	}

	// Periodic refresh settings
	if cfg.RefreshSettings != nil {
		refresh := NewRefreshSettingsController(cfg.RefreshSettings, cfg.RefreshScheduler)
		router.GET("/api/settings/refresh", refresh.GetSettings)
		router.PUT("/api/settings/refresh", refresh.UpdateSettings)
		router.POST("/api/settings/refresh/reset", refresh.ResetSettings)
		router.POST("/api/settings/refresh/run", refresh.RunNow)
	}

	// Task status endpoint
	if cfg.Tasks != nil && cfg.Tasks.Queued() {
		tasksController := NewTasksController(cfg.Tasks)
		router.GET("/api/tasks/:id", tasksController.GetTaskStatus)
	}

	return router
}
