package entrypoint

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookbar/internal/catalog"
	"github.com/mrlokans/bookbar/internal/config"
	"github.com/mrlokans/bookbar/internal/entities"
	"github.com/mrlokans/bookbar/internal/scheduler"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()

	cfg := config.NewConfig()
	cfg.Database.Path = filepath.Join(dir, "bookbar.db")
	cfg.Preferences.Path = filepath.Join(dir, "prefs")
	cfg.Covers.Dir = filepath.Join(dir, "covers")
	cfg.ITBook.BaseURL = "http://127.0.0.1:1"
	cfg.ITBook.Timeout = time.Second
	return cfg
}

func TestNewApp_InlineMaintenance(t *testing.T) {
	app, err := NewApp(testConfig(t), Options{})
	require.NoError(t, err)
	defer app.Close()

	assert.Nil(t, app.Tasks)
	assert.False(t, app.Dispatcher.Queued())
	assert.NotNil(t, app.Covers)
	assert.NotNil(t, app.Index)
}

func TestNewApp_WithTasks(t *testing.T) {
	app, err := NewApp(testConfig(t), Options{WithTasks: true})
	require.NoError(t, err)
	defer app.Close()

	assert.NotNil(t, app.Tasks)
	assert.True(t, app.Dispatcher.Queued())
}

func TestNewApp_TasksDisabledByConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.Tasks.Enabled = false

	app, err := NewApp(cfg, Options{WithTasks: true})
	require.NoError(t, err)
	defer app.Close()

	assert.Nil(t, app.Tasks)
}

func TestNewApp_InvalidConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.Preferences.Backend = "redis"

	_, err := NewApp(cfg, Options{})

	assert.Error(t, err)
}

func TestNewApp_PreferencesBackends(t *testing.T) {
	for _, backend := range []string{config.PreferencesBackendBadger, config.PreferencesBackendDatabase} {
		t.Run(backend, func(t *testing.T) {
			cfg := testConfig(t)
			cfg.Preferences.Backend = backend
			ctx := context.Background()

			app, err := NewApp(cfg, Options{})
			require.NoError(t, err)
			require.NoError(t, app.Preferences.SetBoolean(ctx, entities.PreferenceKeyDarkTheme, true))
			require.NoError(t, app.Close())

			// preferences survive a restart
			app, err = NewApp(cfg, Options{})
			require.NoError(t, err)
			defer app.Close()

			prefs, err := app.Preferences.Get(ctx)
			require.NoError(t, err)
			assert.True(t, prefs.UseDarkTheme)
		})
	}
}

func TestNewApp_IndexesBooksCachedByEarlierRuns(t *testing.T) {
	cfg := testConfig(t)
	cfg.Search.IndexPath = ""
	ctx := context.Background()

	app, err := NewApp(cfg, Options{})
	require.NoError(t, err)
	require.NoError(t, app.Catalog.SaveFavorite(ctx, entities.BookSummary{ISBN13: "9781617294136", Title: "Securing DevOps"}))
	require.NoError(t, app.Close())

	// the default index lives in memory, so it starts empty again
	app, err = NewApp(cfg, Options{})
	require.NoError(t, err)
	defer app.Close()

	res, err := app.Catalog.SearchCached(ctx, "devops", 10, 0)
	require.NoError(t, err)
	require.Len(t, res.Books, 1)
	assert.Equal(t, "9781617294136", res.Books[0].ISBN13)
}

func TestApp_RemoteUnavailableKeepsCacheEmpty(t *testing.T) {
	app, err := NewApp(testConfig(t), Options{})
	require.NoError(t, err)
	defer app.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err = app.Dispatcher.RefreshNewBooks(ctx)
	assert.Error(t, err)

	books, err := app.NewBooks.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, books)
}

func TestStartRefreshScheduler_StoredSettingsWin(t *testing.T) {
	cfg := testConfig(t)
	cfg.Refresh.Enabled = false

	app, err := NewApp(cfg, Options{})
	require.NoError(t, err)
	defer app.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sched := startRefreshScheduler(ctx, app)
	assert.False(t, sched.IsRunning())

	require.NoError(t, app.Refresh.SetRefreshEnabled(ctx, true))
	require.NoError(t, app.Refresh.SetRefreshSchedule(ctx, "*/30 * * * *"))

	sched = startRefreshScheduler(ctx, app)
	defer sched.Stop()
	assert.True(t, sched.IsRunning())
	assert.Equal(t, "*/30 * * * *", sched.Schedule())
}

func TestStartRefreshScheduler_RestoresLastStatus(t *testing.T) {
	app, err := NewApp(testConfig(t), Options{})
	require.NoError(t, err)
	defer app.Close()

	ctx := context.Background()
	at := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, app.Refresh.RecordRefreshStatus(ctx, scheduler.RefreshStatus{LastRunAt: &at, Status: "failed", Message: "remote catalog unavailable"}))

	sched := startRefreshScheduler(ctx, app)
	defer sched.Stop()

	status := sched.Status()
	assert.Equal(t, "failed", status.Status)
	assert.Equal(t, "remote catalog unavailable", status.Message)
}

func TestShutdownHook_EndsOpenStreams(t *testing.T) {
	app, err := NewApp(testConfig(t), Options{})
	require.NoError(t, err)
	defer app.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// read up to the settled state so both producers wait for changes
	favorites := app.Catalog.ObserveFavorites(ctx)
	first, ok := favorites.Next(ctx)
	require.True(t, ok)
	assert.Equal(t, catalog.StatusLoading, first.Status)
	settled, ok := favorites.Next(ctx)
	require.True(t, ok)
	assert.Equal(t, catalog.StatusEmpty, settled.Status)

	prefs := app.Preferences.Observe(ctx)
	_, ok = prefs.Next(ctx)
	require.True(t, ok)

	// the request contexts stay alive; only the hub ends the streams
	sched := scheduler.NewRefreshScheduler(app.Dispatcher, config.DefaultRefreshSchedule)
	shutdownHook(app, sched, func() {})(context.Background())

	for _, done := range []<-chan struct{}{favorites.Done(), prefs.Done()} {
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Fatal("stream still open after shutdown")
		}
	}
}
