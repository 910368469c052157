// Package catalog orchestrates the remote catalog, the local cache and the
// offline index into observable read models.
//
// The local cache is the only emission source: remote results are written to
// the cache first and reach observers by the resulting change notification.
// Remote failures never surface as errors on a read model; they become Empty
// or NotFound states.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/mrlokans/bookbar/internal/changefeed"
	"github.com/mrlokans/bookbar/internal/entities"
	"github.com/mrlokans/bookbar/internal/itbook"
	"github.com/mrlokans/bookbar/internal/search"
	"github.com/mrlokans/bookbar/internal/stream"
)

var (
	ErrInvalidISBN       = errors.New("isbn13 is required")
	ErrRemoteUnavailable = errors.New("remote catalog unavailable")
	ErrNotFound          = errors.New("book not found")
	ErrSearchUnavailable = errors.New("offline search is not configured")
)

// RemoteCatalog is the subset of itbook.Client the repository uses.
type RemoteCatalog interface {
	ListNewBooks(ctx context.Context) itbook.NewBooksResponse
	GetBookDetail(ctx context.Context, isbn13 string) itbook.BookDetailResponse
	Search(ctx context.Context, query string, page int) itbook.SearchResponse
}

// NewBooksStore holds the cached "new releases" feed.
type NewBooksStore interface {
	GetAll(ctx context.Context) ([]entities.BookSummary, error)
	Replace(ctx context.Context, books []entities.BookSummary) error
}

// FavoritesStore holds the user's favorites.
type FavoritesStore interface {
	GetAll(ctx context.Context) ([]entities.BookSummary, error)
	Upsert(ctx context.Context, books ...entities.BookSummary) error
	DeleteByISBN(ctx context.Context, isbn13 string) error
	CountByISBN(ctx context.Context, isbn13 string) (int64, error)
}

// DetailsStore holds full book records.
type DetailsStore interface {
	FindByISBN(ctx context.Context, isbn13 string) (*entities.BookDetail, error)
	GetAll(ctx context.Context) ([]entities.BookDetail, error)
	Upsert(ctx context.Context, records ...entities.BookDetail) error
}

// Indexer feeds and queries the offline search index.
type Indexer interface {
	IndexDocuments(docs ...search.Document) error
	DocumentCount() (uint64, error)
	Search(ctx context.Context, text string, limit, offset int) (*search.Result, error)
}

// Dependencies wires a Repository. Index is optional.
type Dependencies struct {
	Remote    RemoteCatalog
	NewBooks  NewBooksStore
	Favorites FavoritesStore
	Details   DetailsStore
	Feed      changefeed.Feed
	Index     Indexer
}

// Repository exposes the catalog read models and mutations.
type Repository struct {
	remote    RemoteCatalog
	newBooks  NewBooksStore
	favorites FavoritesStore
	details   DetailsStore
	feed      changefeed.Feed
	index     Indexer
}

// NewRepository creates a catalog repository.
func NewRepository(deps Dependencies) *Repository {
	return &Repository{
		remote:    deps.Remote,
		newBooks:  deps.NewBooks,
		favorites: deps.Favorites,
		details:   deps.Details,
		feed:      deps.Feed,
		index:     deps.Index,
	}
}

// ObserveNewBooks emits Loading, then the cached feed. When the cache is
// empty the first load fetches from the remote catalog once; a failed fetch
// leaves the cache untouched and the model settles on Empty.
func (r *Repository) ObserveNewBooks(ctx context.Context) *stream.Stream[ListState] {
	sub := r.feed.Subscribe(changefeed.TopicNewBooks)
	initial := ListState{Status: StatusLoading}
	fetched := false

	return stream.Watch(ctx, sub, &initial, func(ctx context.Context) (ListState, error) {
		books, err := r.newBooks.GetAll(ctx)
		if err != nil {
			return ListState{}, err
		}

		if len(books) == 0 && !fetched {
			fetched = true
			err := r.RefreshNewBooks(ctx)
			switch {
			case err == nil:
				// our own write; it is already reflected below
				sub.Drain()
				if books, err = r.newBooks.GetAll(ctx); err != nil {
					return ListState{}, err
				}
			case errors.Is(err, ErrRemoteUnavailable):
				// settle on whatever the cache holds
			default:
				return ListState{}, err
			}
		}

		return listState(books), nil
	})
}

// ObserveFavorites emits Loading, then the favorites, re-emitting on every
// change. There is no remote counterpart.
func (r *Repository) ObserveFavorites(ctx context.Context) *stream.Stream[ListState] {
	initial := ListState{Status: StatusLoading}
	return stream.Watch(ctx, r.feed.Subscribe(changefeed.TopicFavoriteBooks), &initial, func(ctx context.Context) (ListState, error) {
		books, err := r.favorites.GetAll(ctx)
		if err != nil {
			return ListState{}, err
		}
		return listState(books), nil
	})
}

// ObserveDetail emits the record for isbn13. An empty isbn13 yields NotFound
// and nothing else. Otherwise the model emits Loading, then Success or
// NotFound, and re-emits whenever the detail or favorite sets change with
// the favorite flag recomputed.
func (r *Repository) ObserveDetail(ctx context.Context, isbn13 string) *stream.Stream[DetailResult] {
	if isbn13 == "" {
		return stream.Just(ctx, DetailResult{Status: StatusNotFound})
	}

	sub := r.feed.Subscribe(changefeed.TopicBookDetails, changefeed.TopicFavoriteBooks)
	initial := DetailResult{Status: StatusLoading}

	return stream.Watch(ctx, sub, &initial, func(ctx context.Context) (DetailResult, error) {
		detail, err := r.details.FindByISBN(ctx, isbn13)
		if err != nil {
			return DetailResult{}, err
		}

		if detail == nil {
			fetched, err := r.fetchDetail(ctx, isbn13)
			if errors.Is(err, ErrNotFound) || errors.Is(err, ErrRemoteUnavailable) {
				return DetailResult{Status: StatusNotFound}, nil
			}
			if err != nil {
				return DetailResult{}, err
			}
			sub.Drain()
			detail = fetched
		}

		count, err := r.favorites.CountByISBN(ctx, isbn13)
		if err != nil {
			return DetailResult{}, err
		}
		detail.IsFavorite = count > 0
		return DetailResult{Status: StatusSuccess, Book: detail}, nil
	})
}

// SaveFavorite inserts or replaces a favorite.
func (r *Repository) SaveFavorite(ctx context.Context, book entities.BookSummary) error {
	if book.ISBN13 == "" {
		return ErrInvalidISBN
	}
	if err := r.favorites.Upsert(ctx, book); err != nil {
		return fmt.Errorf("failed to save favorite: %w", err)
	}
	r.indexDocuments(search.SummaryDocument(book))
	return nil
}

// RemoveFavorite deletes a favorite. Removing a book that is not a favorite
// is not an error.
func (r *Repository) RemoveFavorite(ctx context.Context, isbn13 string) error {
	if isbn13 == "" {
		return ErrInvalidISBN
	}
	if err := r.favorites.DeleteByISBN(ctx, isbn13); err != nil {
		return fmt.Errorf("failed to remove favorite: %w", err)
	}
	return nil
}

// SetFavorite adds or removes the book behind a detail view. The stored
// detail record is never modified.
func (r *Repository) SetFavorite(ctx context.Context, detail entities.BookDetail, favorite bool) error {
	if favorite {
		return r.SaveFavorite(ctx, detail.Summary())
	}
	return r.RemoveFavorite(ctx, detail.ISBN13)
}

// RefreshNewBooks fetches the feed and replaces the cached set in one
// transaction. On a remote failure the cache is left as it was and
// ErrRemoteUnavailable is returned.
func (r *Repository) RefreshNewBooks(ctx context.Context) error {
	resp := r.remote.ListNewBooks(ctx)
	if !resp.OK() {
		log.Printf("[catalog] New books refresh failed (%s): %s", resp.Status, resp.Message)
		return fmt.Errorf("%w: %s", ErrRemoteUnavailable, resp.Message)
	}

	books := resp.Summaries()
	if err := r.newBooks.Replace(ctx, books); err != nil {
		return fmt.Errorf("failed to store new books: %w", err)
	}
	log.Printf("[catalog] Stored %d new books", len(books))

	docs := make([]search.Document, 0, len(books))
	for _, b := range books {
		docs = append(docs, search.SummaryDocument(b))
	}
	r.indexDocuments(docs...)
	return nil
}

// PrefetchDetail makes sure the record for isbn13 is cached, fetching it
// when absent. A cached record is never refreshed.
func (r *Repository) PrefetchDetail(ctx context.Context, isbn13 string) error {
	if isbn13 == "" {
		return ErrInvalidISBN
	}
	existing, err := r.details.FindByISBN(ctx, isbn13)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}
	_, err = r.fetchDetail(ctx, isbn13)
	return err
}

// Search starts a paginated remote search. Results are never cached.
func (r *Repository) Search(query string) *SearchPager {
	return NewSearchPager(r.remote, query)
}

// SearchCached queries the offline index of every book the cache has seen.
func (r *Repository) SearchCached(ctx context.Context, query string, limit, offset int) (*search.Result, error) {
	if r.index == nil {
		return nil, ErrSearchUnavailable
	}
	return r.index.Search(ctx, query, limit, offset)
}

// Reindex feeds the offline index with every cached book: the New set, the
// favorites and the detail records, a detail taking precedence over a
// summary of the same book. It returns the number of documents indexed.
func (r *Repository) Reindex(ctx context.Context) (int, error) {
	if r.index == nil {
		return 0, ErrSearchUnavailable
	}

	docs := make(map[string]search.Document)
	for _, list := range []func(context.Context) ([]entities.BookSummary, error){r.newBooks.GetAll, r.favorites.GetAll} {
		books, err := list(ctx)
		if err != nil {
			return 0, fmt.Errorf("failed to read cached books: %w", err)
		}
		for _, b := range books {
			docs[b.ISBN13] = search.SummaryDocument(b)
		}
	}

	records, err := r.details.GetAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to read cached details: %w", err)
	}
	for _, d := range records {
		docs[d.ISBN13] = search.DetailDocument(d)
	}

	if len(docs) == 0 {
		return 0, nil
	}
	batch := make([]search.Document, 0, len(docs))
	for _, d := range docs {
		batch = append(batch, d)
	}
	if err := r.index.IndexDocuments(batch...); err != nil {
		return 0, fmt.Errorf("failed to index cached books: %w", err)
	}
	log.Printf("[catalog] Indexed %d cached books", len(batch))
	return len(batch), nil
}

// ReindexIfEmpty runs Reindex when the offline index holds no documents,
// which is the case for an in-memory index or a freshly rebuilt one.
func (r *Repository) ReindexIfEmpty(ctx context.Context) error {
	if r.index == nil {
		return nil
	}
	count, err := r.index.DocumentCount()
	if err != nil {
		return fmt.Errorf("failed to count indexed books: %w", err)
	}
	if count > 0 {
		return nil
	}
	_, err = r.Reindex(ctx)
	return err
}

// fetchDetail performs the remote lookup and writes the record through to
// the cache. Nothing is written on failure.
func (r *Repository) fetchDetail(ctx context.Context, isbn13 string) (*entities.BookDetail, error) {
	resp := r.remote.GetBookDetail(ctx, isbn13)
	switch resp.Status {
	case itbook.StatusOK:
	case itbook.StatusNotFound:
		log.Printf("[catalog] Book %s not found: %s", isbn13, resp.Message)
		return nil, ErrNotFound
	default:
		log.Printf("[catalog] Book %s lookup failed: %s", isbn13, resp.Message)
		return nil, fmt.Errorf("%w: %s", ErrRemoteUnavailable, resp.Message)
	}

	detail := resp.Detail.Entity()
	if detail.ISBN13 == "" {
		detail.ISBN13 = isbn13
	}
	if err := r.details.Upsert(ctx, detail); err != nil {
		return nil, fmt.Errorf("failed to store book detail: %w", err)
	}
	r.indexDocuments(search.DetailDocument(detail))
	return &detail, nil
}

func (r *Repository) indexDocuments(docs ...search.Document) {
	if r.index == nil || len(docs) == 0 {
		return
	}
	if err := r.index.IndexDocuments(docs...); err != nil {
		log.Printf("[catalog] Failed to index %d books: %v", len(docs), err)
	}
}
