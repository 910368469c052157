package cli

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookbar/internal/config"
)

func catalogServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.URL.Path == "/new":
			_, _ = w.Write([]byte(`{"error":"0","total":"1","books":[{"title":"Securing DevOps","subtitle":"","isbn13":"9781617294136","price":"$26.98","image":"","url":""}]}`))
		case r.URL.Path == "/books/9781617294136":
			_, _ = w.Write([]byte(`{"error":"0","title":"Securing DevOps","authors":"Julien Vehent","publisher":"Manning","isbn13":"9781617294136","price":"$26.98","desc":"Security in the cloud."}`))
		case strings.HasPrefix(r.URL.Path, "/books/"):
			_, _ = w.Write([]byte(`{"error":"[books] Not found"}`))
		case strings.HasPrefix(r.URL.Path, "/search/"):
			_, _ = w.Write([]byte(`{"error":"0","total":"11","page":"1","books":[{"title":"Securing DevOps","subtitle":"","isbn13":"9781617294136","price":"$26.98","image":"","url":""}]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()

	cfg := config.NewConfig()
	cfg.Database.Path = filepath.Join(dir, "bookbar.db")
	cfg.Preferences.Path = filepath.Join(dir, "prefs")
	cfg.Search.IndexPath = filepath.Join(dir, "index")
	cfg.Covers.Dir = filepath.Join(dir, "covers")
	cfg.ITBook.BaseURL = catalogServer(t).URL
	cfg.ITBook.Timeout = 5 * time.Second
	return cfg
}

type command interface {
	ParseFlags(args []string) error
	Run() error
}

func run(t *testing.T, cmd command, args ...string) error {
	t.Helper()
	require.NoError(t, cmd.ParseFlags(args))
	return cmd.Run()
}

func TestNewBooksCommand(t *testing.T) {
	cfg := testConfig(t)
	var out bytes.Buffer

	cmd := NewNewBooksCommand(cfg)
	cmd.out = &out

	require.NoError(t, run(t, cmd))
	assert.Contains(t, out.String(), "9781617294136")
	assert.Contains(t, out.String(), "Securing DevOps")
}

func TestDetailCommand(t *testing.T) {
	cfg := testConfig(t)

	t.Run("found", func(t *testing.T) {
		var out bytes.Buffer
		cmd := NewDetailCommand(cfg)
		cmd.out = &out

		require.NoError(t, run(t, cmd, "-isbn", "9781617294136"))
		assert.Contains(t, out.String(), "Julien Vehent")
		assert.Contains(t, out.String(), "Security in the cloud.")
	})

	t.Run("not found", func(t *testing.T) {
		var out bytes.Buffer
		cmd := NewDetailCommand(cfg)
		cmd.out = &out

		err := run(t, cmd, "-isbn", "9780000000002")
		assert.ErrorContains(t, err, "not found")
	})

	t.Run("isbn required", func(t *testing.T) {
		assert.Error(t, NewDetailCommand(cfg).ParseFlags(nil))
	})
}

func TestFavoriteCommands(t *testing.T) {
	cfg := testConfig(t)

	var out bytes.Buffer
	add := NewFavoriteCommand(cfg)
	add.out = &out
	require.NoError(t, run(t, add, "-isbn", "9781617294136"))
	assert.Contains(t, out.String(), `Added "Securing DevOps" to favorites`)

	out.Reset()
	list := NewFavoritesCommand(cfg)
	list.out = &out
	require.NoError(t, run(t, list))
	assert.Contains(t, out.String(), "9781617294136")

	out.Reset()
	remove := NewFavoriteCommand(cfg)
	remove.out = &out
	require.NoError(t, run(t, remove, "-isbn", "9781617294136", "-remove"))

	out.Reset()
	list = NewFavoritesCommand(cfg)
	list.out = &out
	require.NoError(t, run(t, list))
	assert.Contains(t, out.String(), "No books.")
}

func TestPrefsCommand(t *testing.T) {
	cfg := testConfig(t)

	var out bytes.Buffer
	set := NewPrefsCommand(cfg)
	set.out = &out
	require.NoError(t, run(t, set, "-key", "dark_theme", "-value", "true"))
	assert.Contains(t, out.String(), "dark_theme:      true")
	assert.Contains(t, out.String(), "dynamic_colors:  false")

	bad := NewPrefsCommand(cfg)
	bad.out = &out
	assert.Error(t, run(t, bad, "-key", "font_size", "-value", "true"))

	assert.Error(t, NewPrefsCommand(cfg).ParseFlags([]string{"-key", "dark_theme"}))
}

func TestSearchCommand_Remote(t *testing.T) {
	cfg := testConfig(t)

	var out bytes.Buffer
	cmd := NewSearchCommand(cfg)
	cmd.out = &out

	require.NoError(t, run(t, cmd, "-q", "devops"))
	assert.Contains(t, out.String(), "Securing DevOps")
	assert.Contains(t, out.String(), "Page 1, 11 results in total (next: -page 2)")
}

func TestSearchCommand_Cached(t *testing.T) {
	cfg := testConfig(t)

	var out bytes.Buffer
	refresh := NewRefreshCommand(cfg)
	refresh.out = &out
	require.NoError(t, run(t, refresh, "-prefetch"))
	assert.Contains(t, out.String(), "Refreshed 1 new books")
	assert.Contains(t, out.String(), "Cached 1 of 1 book details")

	out.Reset()
	cmd := NewSearchCommand(cfg)
	cmd.out = &out
	require.NoError(t, run(t, cmd, "-q", "vehent", "-cached"))
	assert.Contains(t, out.String(), "9781617294136")
	assert.Contains(t, out.String(), "1 of 1 cached matches")
}
