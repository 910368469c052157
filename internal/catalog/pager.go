package catalog

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/mrlokans/bookbar/internal/entities"
)

// remotePageSize is the number of results the catalog returns per page.
const remotePageSize = 10

// ErrEndOfResults is returned by SearchPager.Next once every page was read.
var ErrEndOfResults = errors.New("no more search results")

// SearchPage is one page of remote search results.
type SearchPage struct {
	Page  int                    `json:"page"`
	Total int                    `json:"total"`
	Books []entities.BookSummary `json:"books"`
}

// SearchPager walks the remote search results one page at a time. Pages are
// 1-based. The walk ends on an empty page or once the loaded count reaches
// the reported total.
type SearchPager struct {
	remote RemoteCatalog
	query  string

	mu     sync.Mutex
	page   int
	loaded int
	total  int
	done   bool
}

// NewSearchPager creates a pager for query. An empty query has no results.
func NewSearchPager(remote RemoteCatalog, query string) *SearchPager {
	query = strings.TrimSpace(query)
	return &SearchPager{
		remote: remote,
		query:  query,
		page:   1,
		done:   query == "",
	}
}

// StartAt skips directly to page. It must be called before the first Next.
func (p *SearchPager) StartAt(page int) *SearchPager {
	p.mu.Lock()
	defer p.mu.Unlock()
	if page > 1 {
		p.page = page
		p.loaded = (page - 1) * remotePageSize
	}
	return p
}

// More reports whether Next may return another page.
func (p *SearchPager) More() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return !p.done
}

// Next loads the next page. A failed page returns ErrRemoteUnavailable and
// does not advance, so calling Next again retries it.
func (p *SearchPager) Next(ctx context.Context) (SearchPage, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.done {
		return SearchPage{}, ErrEndOfResults
	}

	resp := p.remote.Search(ctx, p.query, p.page)
	if !resp.OK() {
		return SearchPage{}, fmt.Errorf("%w: %s", ErrRemoteUnavailable, resp.Message)
	}

	if total, err := strconv.Atoi(resp.Total); err == nil {
		p.total = total
	}

	books := resp.Summaries()
	if len(books) == 0 {
		p.done = true
		return SearchPage{}, ErrEndOfResults
	}

	page := SearchPage{Page: p.page, Total: p.total, Books: books}
	p.loaded += len(books)
	p.page++
	if p.total > 0 && p.loaded >= p.total {
		p.done = true
	}
	return page, nil
}
