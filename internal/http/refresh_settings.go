package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookbar/internal/scheduler"
	"github.com/mrlokans/bookbar/internal/settingsstore"
)

// RefreshSettingsController manages the periodic new-books refresh.
type RefreshSettingsController struct {
	store     RefreshSettingsStore
	scheduler RefreshScheduler
}

// NewRefreshSettingsController creates a new controller. sched may be nil.
func NewRefreshSettingsController(store RefreshSettingsStore, sched RefreshScheduler) *RefreshSettingsController {
	return &RefreshSettingsController{store: store, scheduler: sched}
}

// SchedulePreset is a suggested cron expression.
type SchedulePreset struct {
	Label       string `json:"label"`
	Value       string `json:"value"`
	Description string `json:"description"`
}

var schedulePresets = []SchedulePreset{
	{Label: "Every hour", Value: "0 * * * *", Description: "Runs at the top of every hour"},
	{Label: "Every 6 hours", Value: "0 */6 * * *", Description: "Runs at midnight, 6am, noon, 6pm"},
	{Label: "Every 12 hours", Value: "0 */12 * * *", Description: "Runs at midnight and noon"},
	{Label: "Daily at midnight", Value: "0 0 * * *", Description: "Runs once daily at 00:00"},
	{Label: "Weekly on Sunday", Value: "0 0 * * 0", Description: "Runs every Sunday at midnight"},
}

// RefreshSettingsResponse is the response for GET /api/settings/refresh
type RefreshSettingsResponse struct {
	Config      settingsstore.RefreshSettingsInfo `json:"config"`
	Status      scheduler.RefreshStatus           `json:"status"`
	Description string                            `json:"description"`
	NextRun     *time.Time                        `json:"next_run,omitempty"`
	IsRunning   bool                              `json:"is_running"`
	Presets     []SchedulePreset                  `json:"presets"`
}

// GetSettings handles GET /api/settings/refresh
func (rc *RefreshSettingsController) GetSettings(c *gin.Context) {
	resp, err := rc.settingsResponse(c.Request.Context())
	if err != nil {
		respondInternalError(c, err, "get refresh settings")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// UpdateRefreshSettingsRequest is the body of PUT /api/settings/refresh.
// Omitted fields keep their current value.
type UpdateRefreshSettingsRequest struct {
	Enabled  *bool  `json:"enabled"`
	Schedule string `json:"schedule" validate:"omitempty,max=128"`
}

// UpdateSettings handles PUT /api/settings/refresh
// Saves the overrides and applies them to the running scheduler.
func (rc *RefreshSettingsController) UpdateSettings(c *gin.Context) {
	var req UpdateRefreshSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	if errs := ValidateStruct(req); errs != nil {
		respondValidationError(c, errs)
		return
	}

	ctx := c.Request.Context()

	// schedule first so a bad expression leaves everything untouched
	if req.Schedule != "" {
		if err := rc.store.SetRefreshSchedule(ctx, req.Schedule); err != nil {
			if errors.Is(err, settingsstore.ErrInvalidSchedule) {
				c.JSON(http.StatusBadRequest, ErrorResponse{
					Error: err.Error(),
					Code:  "invalid_schedule",
				})
				return
			}
			respondInternalError(c, err, "save refresh schedule")
			return
		}
	}
	if req.Enabled != nil {
		if err := rc.store.SetRefreshEnabled(ctx, *req.Enabled); err != nil {
			respondInternalError(c, err, "save refresh enabled")
			return
		}
	}

	rc.apply(c)
}

// ResetSettings handles POST /api/settings/refresh/reset
// Clears the database overrides, reverting to environment and defaults.
func (rc *RefreshSettingsController) ResetSettings(c *gin.Context) {
	if err := rc.store.ResetRefreshSettings(c.Request.Context()); err != nil {
		respondInternalError(c, err, "reset refresh settings")
		return
	}
	rc.apply(c)
}

// RunNow handles POST /api/settings/refresh/run
func (rc *RefreshSettingsController) RunNow(c *gin.Context) {
	if rc.scheduler == nil {
		respondError(c, http.StatusServiceUnavailable, "refresh scheduler not available")
		return
	}
	rc.scheduler.RunNow()
	respondAccepted(c, "refresh started", nil)
}

// apply reschedules with the effective settings and writes them out.
func (rc *RefreshSettingsController) apply(c *gin.Context) {
	ctx := c.Request.Context()

	if rc.scheduler != nil {
		effective, err := rc.store.RefreshSettings(ctx)
		if err != nil {
			respondInternalError(c, err, "read refresh settings")
			return
		}
		// the scheduler outlives the request
		if err := rc.scheduler.Reschedule(context.WithoutCancel(ctx), effective.Enabled, effective.Schedule); err != nil {
			respondInternalError(c, err, "reschedule refresh")
			return
		}
	}

	resp, err := rc.settingsResponse(ctx)
	if err != nil {
		respondInternalError(c, err, "get refresh settings")
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (rc *RefreshSettingsController) settingsResponse(ctx context.Context) (RefreshSettingsResponse, error) {
	info, err := rc.store.RefreshSettingsInfo(ctx)
	if err != nil {
		return RefreshSettingsResponse{}, err
	}

	resp := RefreshSettingsResponse{
		Config:      info,
		Description: scheduler.CronDescription(info.Schedule),
		Presets:     schedulePresets,
	}

	if rc.scheduler != nil {
		resp.Status = rc.scheduler.Status()
		resp.NextRun = rc.scheduler.NextRunTime()
		resp.IsRunning = rc.scheduler.IsRunning()
		return resp, nil
	}

	resp.Status, err = rc.store.RefreshStatus(ctx)
	return resp, err
}
