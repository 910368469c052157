package entrypoint

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookbar/internal/config"
	http_controllers "github.com/mrlokans/bookbar/internal/http"
	"github.com/mrlokans/bookbar/internal/scheduler"
	"github.com/mrlokans/bookbar/internal/settingsstore"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		fmt.Printf("Starting server at %s:%d\n", cfg.HTTP.Host, cfg.HTTP.Port)
		// service connections
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Call shutdown callback first (e.g., to stop task queue)
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server Shutdown: %v", err)
	}

	log.Println("Server exiting")
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting Bookbar v%s", version)

	app, err := NewApp(cfg, Options{WithTasks: true})
	if err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Printf("Error closing storage: %v", err)
		}
	}()

	bgCtx, bgCancel := context.WithCancel(context.Background())
	defer bgCancel()

	app.StartTasks(bgCtx)

	refreshScheduler := startRefreshScheduler(bgCtx, app)

	routerCfg := http_controllers.RouterConfig{
		Catalog:     app.Catalog,
		Preferences: app.Preferences,
		Database:    app.DB,
		Tasks:       app.Dispatcher,
		Version:     version,

		RefreshSettings:  app.Refresh,
		RefreshScheduler: refreshScheduler,
	}
	if app.Covers != nil {
		routerCfg.Covers = app.Covers
	}

	router := http_controllers.NewRouter(routerCfg)

	Serve(router, cfg, shutdownHook(app, refreshScheduler, bgCancel))
}

// shutdownHook stops background work and closes the change hub, which ends
// every open event stream before the server waits for its handlers.
func shutdownHook(app *App, sched *scheduler.RefreshScheduler, cancel context.CancelFunc) ShutdownFunc {
	return func(ctx context.Context) {
		sched.Stop()
		app.Hub.Close()
		app.StopTasks(ctx)
		cancel()
	}
}

// startRefreshScheduler builds the periodic refresh from the effective
// settings. A bad stored schedule is logged and leaves it stopped.
func startRefreshScheduler(ctx context.Context, app *App) *scheduler.RefreshScheduler {
	effective, err := app.Refresh.RefreshSettings(ctx)
	if err != nil {
		log.Printf("WARNING: Failed to read refresh settings, using environment: %v", err)
		effective = settingsstore.RefreshSettings{Enabled: app.Config.Refresh.Enabled, Schedule: app.Config.Refresh.Schedule}
	}

	sched := scheduler.NewRefreshScheduler(app.Dispatcher, effective.Schedule).WithRecorder(app.Refresh)
	if status, err := app.Refresh.RefreshStatus(ctx); err == nil {
		sched.RestoreStatus(status)
	}

	if effective.Enabled {
		if err := sched.Start(ctx); err != nil {
			log.Printf("WARNING: Failed to start refresh scheduler: %v", err)
		}
	}
	return sched
}
