package search

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookbar/internal/entities"
)

func openTestIndex(t *testing.T) *Index {
	t.Helper()
	idx, err := Open("")
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })
	return idx
}

func TestIndex_SearchByTitle(t *testing.T) {
	idx := openTestIndex(t)

	require.NoError(t, idx.IndexDocuments(
		SummaryDocument(entities.BookSummary{ISBN13: "9781617294136", Title: "Securing DevOps", Price: "$26.98", ImageURL: "https://img/1.png"}),
		SummaryDocument(entities.BookSummary{ISBN13: "9781484206485", Title: "Practical MongoDB", Price: "$32.04"}),
	))

	res, err := idx.Search(context.Background(), "mongodb", 10, 0)
	require.NoError(t, err)
	require.Len(t, res.Books, 1)
	assert.Equal(t, uint64(1), res.Total)
	assert.Equal(t, entities.BookSummary{ISBN13: "9781484206485", Title: "Practical MongoDB", Price: "$32.04"}, res.Books[0])
}

func TestIndex_SearchByAuthorAndDescription(t *testing.T) {
	idx := openTestIndex(t)

	require.NoError(t, idx.IndexDocuments(DetailDocument(entities.BookDetail{
		ISBN13:      "9781617294136",
		Title:       "Securing DevOps",
		Authors:     "Julien Vehent",
		Description: "Security practices for continuous delivery pipelines",
		Price:       "$26.98",
	})))

	for _, q := range []string{"vehent", "pipelines"} {
		res, err := idx.Search(context.Background(), q, 0, 0)
		require.NoError(t, err)
		require.Len(t, res.Books, 1, q)
		assert.Equal(t, "Securing DevOps", res.Books[0].Title)
	}
}

func TestIndex_Reindex_Replaces(t *testing.T) {
	idx := openTestIndex(t)

	b := entities.BookSummary{ISBN13: "9781617294136", Title: "Securing DevOps"}
	require.NoError(t, idx.IndexDocuments(SummaryDocument(b)))
	require.NoError(t, idx.IndexDocuments(SummaryDocument(b)))

	count, err := idx.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)
}

func TestIndex_Delete(t *testing.T) {
	idx := openTestIndex(t)

	require.NoError(t, idx.IndexDocuments(SummaryDocument(entities.BookSummary{ISBN13: "9781617294136", Title: "Securing DevOps"})))
	require.NoError(t, idx.DeleteDocument("9781617294136"))

	res, err := idx.Search(context.Background(), "devops", 10, 0)
	require.NoError(t, err)
	assert.Empty(t, res.Books)
}

func TestIndex_EmptyQuery(t *testing.T) {
	idx := openTestIndex(t)

	res, err := idx.Search(context.Background(), "   ", 10, 0)
	require.NoError(t, err)
	assert.Empty(t, res.Books)
	assert.Zero(t, res.Total)
}

func TestIndex_Pagination(t *testing.T) {
	idx := openTestIndex(t)

	require.NoError(t, idx.IndexDocuments(
		SummaryDocument(entities.BookSummary{ISBN13: "9781000000001", Title: "Go in Action"}),
		SummaryDocument(entities.BookSummary{ISBN13: "9781000000002", Title: "Go Programming"}),
		SummaryDocument(entities.BookSummary{ISBN13: "9781000000003", Title: "Go Web Development"}),
	))

	first, err := idx.Search(context.Background(), "go", 2, 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), first.Total)
	assert.Len(t, first.Books, 2)

	rest, err := idx.Search(context.Background(), "go", 2, 2)
	require.NoError(t, err)
	assert.Len(t, rest.Books, 1)
}

func TestOpen_OnDisk_Reopen(t *testing.T) {
	dir := t.TempDir()

	idx, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, idx.IndexDocuments(SummaryDocument(entities.BookSummary{ISBN13: "9781617294136", Title: "Securing DevOps"})))
	require.NoError(t, idx.Close())

	reopened, err := Open(dir)
	require.NoError(t, err)
	defer reopened.Close()

	count, err := reopened.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)
}

func TestOpen_OnDisk_FreshDirectoryIsWritable(t *testing.T) {
	idx, err := Open(filepath.Join(t.TempDir(), "index"))
	require.NoError(t, err)
	defer idx.Close()

	require.NoError(t, idx.IndexDocuments(SummaryDocument(entities.BookSummary{ISBN13: "9781617294136", Title: "Securing DevOps"})))

	res, err := idx.Search(context.Background(), "devops", 10, 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), res.Total)
}

func TestOpen_OnDisk_MappingChangeRebuilds(t *testing.T) {
	dir := t.TempDir()

	idx, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, idx.IndexDocuments(SummaryDocument(entities.BookSummary{ISBN13: "9781617294136", Title: "Securing DevOps"})))
	require.NoError(t, idx.Close())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "books.version"), []byte("0"), 0644))

	rebuilt, err := Open(dir)
	require.NoError(t, err)
	defer rebuilt.Close()

	count, err := rebuilt.DocumentCount()
	require.NoError(t, err)
	assert.Zero(t, count)
	require.NoError(t, rebuilt.IndexDocuments(SummaryDocument(entities.BookSummary{ISBN13: "9781491941591", Title: "The Go Programming Language"})))
}
