// Package covers keeps a local copy of book cover images keyed by isbn13.
package covers

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

const userAgent = "Bookbar/1.0"

// ErrInvalidISBN is returned when the cover key is empty or not a plain identifier.
var ErrInvalidISBN = errors.New("invalid isbn13")

// Cache handles local caching of book cover images.
type Cache struct {
	cacheDir   string
	httpClient *http.Client
}

// NewCache creates a new cover cache at the specified directory.
func NewCache(cacheDir string) (*Cache, error) {
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}

	return &Cache{
		cacheDir: cacheDir,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

// GetCover returns the cached cover for a book, downloading it on first use.
// It returns an empty path when coverURL is empty.
func (c *Cache) GetCover(ctx context.Context, isbn13, coverURL string) (string, error) {
	if err := validISBN(isbn13); err != nil {
		return "", err
	}
	if coverURL == "" {
		return "", nil
	}

	cachePath := filepath.Join(c.cacheDir, coverFilename(isbn13, coverURL))
	if _, err := os.Stat(cachePath); err == nil {
		return cachePath, nil
	}

	if err := c.fetchAndCache(ctx, coverURL, cachePath); err != nil {
		return "", err
	}
	return cachePath, nil
}

// InvalidateCover removes every cached cover for a book.
func (c *Cache) InvalidateCover(isbn13 string) error {
	if err := validISBN(isbn13); err != nil {
		return err
	}
	matches, err := filepath.Glob(filepath.Join(c.cacheDir, "cover_"+isbn13+"_*"))
	if err != nil {
		return err
	}

	for _, match := range matches {
		if err := os.Remove(match); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}

// CacheDir returns the cache directory path.
func (c *Cache) CacheDir() string {
	return c.cacheDir
}

func validISBN(isbn13 string) error {
	if isbn13 == "" || strings.ContainsAny(isbn13, `/\.*?[`) {
		return ErrInvalidISBN
	}
	return nil
}

// coverFilename is unique per book and source URL, keeping the URL's extension.
func coverFilename(isbn13, coverURL string) string {
	hash := sha256.Sum256([]byte(coverURL))
	ext := ".jpg"
	if u, err := url.Parse(coverURL); err == nil {
		if e := strings.ToLower(path.Ext(u.Path)); e == ".png" || e == ".jpg" || e == ".jpeg" || e == ".gif" || e == ".webp" {
			ext = e
		}
	}
	return fmt.Sprintf("cover_%s_%x%s", isbn13, hash[:8], ext)
}

// fetchAndCache downloads a cover image and saves it to the cache.
func (c *Cache) fetchAndCache(ctx context.Context, url, cachePath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to fetch cover: status %d", resp.StatusCode)
	}

	// Temp file in the same directory so the rename is atomic
	tmpFile, err := os.CreateTemp(c.cacheDir, "cover_tmp_")
	if err != nil {
		return err
	}
	tmpPath := tmpFile.Name()
	defer func() {
		tmpFile.Close()
		os.Remove(tmpPath)
	}()

	if _, err := io.Copy(tmpFile, resp.Body); err != nil {
		return err
	}
	if err := tmpFile.Close(); err != nil {
		return err
	}

	return os.Rename(tmpPath, cachePath)
}
