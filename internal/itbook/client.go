// Package itbook is the client for the IT Bookstore catalog API.
//
// The client never returns errors: transport, HTTP and decoding failures are
// folded into the Outcome carried by every response so callers deal with a
// single result shape.
package itbook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL   = "https://api.itbook.store/1.0"
	DefaultTimeout   = 60 * time.Second
	DefaultUserAgent = "Bookbar/1.0"

	successCode = "0"
)

// ErrNotFound is set as Outcome.Err when the API answers with HTTP 404.
var ErrNotFound = errors.New("book not found")

// Options configures a Client. Zero values fall back to the defaults.
type Options struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
	// RateLimit is the maximum number of requests per second; 0 means unlimited.
	RateLimit float64
}

// Client fetches new releases, book details and search results.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	limiter    *rate.Limiter
}

// NewClient creates a catalog client.
func NewClient(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: opts.Timeout,
		},
		baseURL:   strings.TrimRight(opts.BaseURL, "/"),
		userAgent: opts.UserAgent,
		limiter:   limiter,
	}
}

// ListNewBooks fetches the new releases feed.
// GET {baseURL}/new
func (c *Client) ListNewBooks(ctx context.Context) NewBooksResponse {
	var payload listPayload
	outcome := c.getJSON(ctx, "/new", &payload)
	if !outcome.OK() {
		return NewBooksResponse{Outcome: outcome, Books: []Book{}}
	}

	outcome = decodeStatus(payload.Error)
	if !outcome.OK() {
		return NewBooksResponse{Outcome: outcome, Books: []Book{}}
	}

	books := payload.Books
	if books == nil {
		books = []Book{}
	}
	return NewBooksResponse{Outcome: outcome, Total: payload.Total, Books: books}
}

// GetBookDetail fetches the full record for one book.
// GET {baseURL}/books/{isbn13}
func (c *Client) GetBookDetail(ctx context.Context, isbn13 string) BookDetailResponse {
	isbn13 = strings.TrimSpace(isbn13)
	if isbn13 == "" {
		return BookDetailResponse{Outcome: Outcome{Status: StatusNotFound, Message: "empty isbn13"}}
	}

	var payload detailPayload
	outcome := c.getJSON(ctx, "/books/"+url.PathEscape(isbn13), &payload)
	if !outcome.OK() {
		return BookDetailResponse{Outcome: outcome}
	}

	outcome = decodeStatus(payload.Error)
	if !outcome.OK() {
		return BookDetailResponse{Outcome: outcome}
	}

	detail := payload.Detail
	if detail.ISBN13 == "" {
		detail.ISBN13 = isbn13
	}
	return BookDetailResponse{Outcome: outcome, Detail: detail}
}

// Search runs a full-text catalog search. Pages are 1-based.
// GET {baseURL}/search/{query}/{page}
func (c *Client) Search(ctx context.Context, query string, page int) SearchResponse {
	query = strings.TrimSpace(query)
	if query == "" {
		return SearchResponse{Outcome: Outcome{Status: StatusFailed, Message: "empty query"}, Books: []Book{}}
	}
	if page < 1 {
		page = 1
	}

	var payload listPayload
	path := fmt.Sprintf("/search/%s/%d", url.PathEscape(query), page)
	outcome := c.getJSON(ctx, path, &payload)
	if !outcome.OK() {
		return SearchResponse{Outcome: outcome, Books: []Book{}}
	}

	outcome = decodeStatus(payload.Error)
	if !outcome.OK() {
		return SearchResponse{Outcome: outcome, Books: []Book{}}
	}

	books := payload.Books
	if books == nil {
		books = []Book{}
	}
	return SearchResponse{Outcome: outcome, Total: payload.Total, Page: payload.Page, Books: books}
}

// getJSON performs a GET and decodes the body into out. A StatusOK outcome
// only means the transport and decoding succeeded; the payload's own status
// flag is checked by the caller.
func (c *Client) getJSON(ctx context.Context, path string, out any) Outcome {
	endpoint := c.baseURL + path

	if err := c.limiter.Wait(ctx); err != nil {
		log.Printf("[itbook] GET %s: rate limiter: %v", endpoint, err)
		return Outcome{Status: StatusFailed, Message: "rate limiter", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Outcome{Status: StatusFailed, Message: "create request", Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	log.Printf("[itbook] --> GET %s", endpoint)
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("[itbook] <-- GET %s failed after %s: %v", endpoint, time.Since(start).Round(time.Millisecond), err)
		return Outcome{Status: StatusFailed, Message: "request failed", Err: fmt.Errorf("request failed: %w", err)}
	}
	defer resp.Body.Close()

	log.Printf("[itbook] <-- %d GET %s (%s)", resp.StatusCode, endpoint, time.Since(start).Round(time.Millisecond))

	if resp.StatusCode == http.StatusNotFound {
		return Outcome{Status: StatusNotFound, Message: "not found", Err: ErrNotFound}
	}
	if resp.StatusCode != http.StatusOK {
		return Outcome{
			Status:  StatusFailed,
			Message: fmt.Sprintf("unexpected status: %d", resp.StatusCode),
			Err:     fmt.Errorf("unexpected status: %d", resp.StatusCode),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		log.Printf("[itbook] GET %s: decode response: %v", endpoint, err)
		return Outcome{Status: StatusFailed, Message: "decode response", Err: fmt.Errorf("decode response: %w", err)}
	}

	return Outcome{Status: StatusOK}
}
