// Package search keeps a full-text index over every book the cache has seen,
// so cached books can be searched without the remote catalog.
package search

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/mrlokans/bookbar/internal/entities"
)

// mappingVersion is bumped whenever buildIndexMapping changes; a mismatch
// rebuilds the on-disk index.
const mappingVersion = "1"

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Index wraps a bleve index of cached books.
//
// All methods are safe for concurrent use.
type Index struct {
	index bleve.Index
	mu    sync.RWMutex
}

// Document is the indexed form of a cached book.
type Document struct {
	ISBN13      string `json:"isbn13"`
	Title       string `json:"title"`
	Subtitle    string `json:"subtitle,omitempty"`
	Authors     string `json:"authors,omitempty"`
	Publisher   string `json:"publisher,omitempty"`
	Description string `json:"description,omitempty"`
	Price       string `json:"price"`
	Image       string `json:"image"`
}

func (d Document) toMap() map[string]any {
	return map[string]any{
		"isbn13":      d.ISBN13,
		"title":       d.Title,
		"subtitle":    d.Subtitle,
		"authors":     d.Authors,
		"publisher":   d.Publisher,
		"description": d.Description,
		"price":       d.Price,
		"image":       d.Image,
	}
}

// SummaryDocument builds a document from a list entry.
func SummaryDocument(b entities.BookSummary) Document {
	return Document{ISBN13: b.ISBN13, Title: b.Title, Price: b.Price, Image: b.ImageURL}
}

// DetailDocument builds a document from a full record.
func DetailDocument(d entities.BookDetail) Document {
	return Document{
		ISBN13:      d.ISBN13,
		Title:       d.Title,
		Subtitle:    d.Subtitle,
		Authors:     d.Authors,
		Publisher:   d.Publisher,
		Description: d.Description,
		Price:       d.Price,
		Image:       d.ImageURL,
	}
}

// Result is one page of offline search hits.
type Result struct {
	Total uint64                 `json:"total"`
	Books []entities.BookSummary `json:"books"`
}

// Open creates or opens the index under dir. An empty dir keeps the index in
// memory for the lifetime of the process.
func Open(dir string) (*Index, error) {
	if dir == "" {
		idx, err := bleve.NewMemOnly(buildIndexMapping())
		if err != nil {
			return nil, fmt.Errorf("create in-memory index: %w", err)
		}
		return &Index{index: idx}, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create index directory: %w", err)
	}
	indexPath := filepath.Join(dir, "books.bleve")
	versionPath := filepath.Join(dir, "books.version")

	indexExists := false
	needsRebuild := false
	if _, err := os.Stat(indexPath); err == nil {
		indexExists = true
		existing, readErr := os.ReadFile(versionPath)
		if readErr != nil || string(existing) != mappingVersion {
			log.Printf("[search] Index mapping changed, rebuilding %s", indexPath)
			needsRebuild = true
		}
	}

	var idx bleve.Index
	if indexExists && !needsRebuild {
		var err error
		idx, err = bleve.Open(indexPath)
		if err != nil {
			log.Printf("[search] Failed to open index at %s, recreating: %v", indexPath, err)
			needsRebuild = true
		}
	}

	if needsRebuild {
		if err := os.RemoveAll(indexPath); err != nil {
			return nil, fmt.Errorf("remove old index: %w", err)
		}
		idx = nil
	}

	if idx == nil {
		var err error
		idx, err = bleve.New(indexPath, buildIndexMapping())
		if err != nil {
			return nil, fmt.Errorf("create index: %w", err)
		}
		if err := os.WriteFile(versionPath, []byte(mappingVersion), 0644); err != nil {
			log.Printf("[search] Failed to write version file: %v", err)
		}
		log.Printf("[search] Created index at %s", indexPath)
	}

	return &Index{index: idx}, nil
}

// Close releases the index.
func (s *Index) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index.Close()
}

// IndexDocuments adds or replaces documents keyed by isbn13 in one batch.
func (s *Index) IndexDocuments(docs ...Document) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	batch := s.index.NewBatch()
	for _, doc := range docs {
		if doc.ISBN13 == "" {
			continue
		}
		if err := batch.Index(doc.ISBN13, doc.toMap()); err != nil {
			return fmt.Errorf("batch index %s: %w", doc.ISBN13, err)
		}
	}
	return s.index.Batch(batch)
}

// DeleteDocument removes a document.
func (s *Index) DeleteDocument(isbn13 string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.Delete(isbn13)
}

// DocumentCount returns the number of indexed books.
func (s *Index) DocumentCount() (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.DocCount()
}

// Search runs a text query across title, subtitle, authors, publisher and
// description. An empty query returns no hits.
func (s *Index) Search(ctx context.Context, text string, limit, offset int) (*Result, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return &Result{Books: []entities.BookSummary{}}, nil
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if offset < 0 {
		offset = 0
	}

	req := bleve.NewSearchRequestOptions(buildQuery(text), limit, offset, false)
	req.Fields = []string{"isbn13", "title", "price", "image"}

	s.mu.RLock()
	res, err := s.index.SearchInContext(ctx, req)
	s.mu.RUnlock()
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	out := &Result{
		Total: res.Total,
		Books: make([]entities.BookSummary, 0, len(res.Hits)),
	}
	for _, hit := range res.Hits {
		b := entities.BookSummary{ISBN13: hit.ID}
		if v, ok := hit.Fields["title"].(string); ok {
			b.Title = v
		}
		if v, ok := hit.Fields["price"].(string); ok {
			b.Price = v
		}
		if v, ok := hit.Fields["image"].(string); ok {
			b.ImageURL = v
		}
		out.Books = append(out.Books, b)
	}
	return out, nil
}

func buildQuery(text string) query.Query {
	var queries []query.Query

	titleMatch := bleve.NewMatchQuery(text)
	titleMatch.SetField("title")
	titleMatch.SetBoost(3.0)
	queries = append(queries, titleMatch)

	authorsMatch := bleve.NewMatchQuery(text)
	authorsMatch.SetField("authors")
	authorsMatch.SetBoost(2.0)
	queries = append(queries, authorsMatch)

	subtitleMatch := bleve.NewMatchQuery(text)
	subtitleMatch.SetField("subtitle")
	subtitleMatch.SetBoost(1.5)
	queries = append(queries, subtitleMatch)

	publisherMatch := bleve.NewMatchQuery(text)
	publisherMatch.SetField("publisher")
	queries = append(queries, publisherMatch)

	descMatch := bleve.NewMatchQuery(text)
	descMatch.SetField("description")
	descMatch.SetBoost(0.5)
	queries = append(queries, descMatch)

	fuzzy := bleve.NewFuzzyQuery(strings.ToLower(text))
	fuzzy.SetFuzziness(1)
	fuzzy.SetField("title")
	fuzzy.SetBoost(0.8)
	queries = append(queries, fuzzy)

	if len(text) >= 2 {
		prefix := bleve.NewPrefixQuery(strings.ToLower(text))
		prefix.SetField("title")
		prefix.SetBoost(0.5)
		queries = append(queries, prefix)
	}

	return bleve.NewDisjunctionQuery(queries...)
}
