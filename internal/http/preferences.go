package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookbar/internal/entities"
	"github.com/mrlokans/bookbar/internal/preferences"
)

// PreferencesController exposes the display preferences.
type PreferencesController struct {
	store PreferencesStore
}

// NewPreferencesController creates a new PreferencesController.
func NewPreferencesController(store PreferencesStore) *PreferencesController {
	return &PreferencesController{store: store}
}

// GetPreferences handles GET /api/preferences
func (pc *PreferencesController) GetPreferences(c *gin.Context) {
	prefs, err := pc.store.Get(c.Request.Context())
	if err != nil {
		respondInternalError(c, err, "get preferences")
		return
	}
	c.JSON(http.StatusOK, prefs)
}

// StreamPreferences handles GET /api/preferences/stream
func (pc *PreferencesController) StreamPreferences(c *gin.Context) {
	streamEvents(c, pc.store.Observe(c.Request.Context()), "preferences")
}

// UpdatePreferenceRequest is the body of PUT /api/preferences.
type UpdatePreferenceRequest struct {
	Key   string `json:"key" validate:"required"`
	Value *bool  `json:"value" validate:"required"`
}

// UpdatePreference handles PUT /api/preferences
// Sets one boolean preference and returns the resulting preferences.
func (pc *PreferencesController) UpdatePreference(c *gin.Context) {
	var req UpdatePreferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	if errs := ValidateStruct(req); errs != nil {
		respondValidationError(c, errs)
		return
	}

	ctx := c.Request.Context()
	if err := pc.store.SetBoolean(ctx, req.Key, *req.Value); err != nil {
		if errors.Is(err, preferences.ErrUnknownKey) {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "unknown preference key",
				Code:    "unknown_key",
				Details: gin.H{"known_keys": entities.PreferenceKeys},
			})
			return
		}
		respondInternalError(c, err, "update preference")
		return
	}

	prefs, err := pc.store.Get(ctx)
	if err != nil {
		respondInternalError(c, err, "get preferences")
		return
	}
	c.JSON(http.StatusOK, prefs)
}
