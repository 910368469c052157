package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookbar/internal/itbook"
)

func searchPage(total string, isbns ...string) itbook.SearchResponse {
	books := make([]itbook.Book, 0, len(isbns))
	for _, isbn := range isbns {
		books = append(books, itbook.Book{ISBN13: isbn, Title: "Book " + isbn})
	}
	return itbook.SearchResponse{Outcome: itbook.Outcome{Status: itbook.StatusOK}, Total: total, Books: books}
}

func TestSearchPager_StopsAtTotal(t *testing.T) {
	remote := newFakeRemote()
	remote.search[1] = searchPage("3", "1", "2")
	remote.search[2] = searchPage("3", "3")

	p := NewSearchPager(remote, "mongodb")
	ctx := context.Background()

	page, err := p.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 3, page.Total)
	assert.Len(t, page.Books, 2)
	assert.True(t, p.More())

	page, err = p.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, page.Page)
	assert.Len(t, page.Books, 1)
	assert.False(t, p.More())

	_, err = p.Next(ctx)
	assert.ErrorIs(t, err, ErrEndOfResults)
	assert.Equal(t, []int{1, 2}, remote.searchCalls)
}

func TestSearchPager_StopsOnEmptyPage(t *testing.T) {
	remote := newFakeRemote()
	remote.search[1] = searchPage("unknown", "1")

	p := NewSearchPager(remote, "go")
	ctx := context.Background()

	_, err := p.Next(ctx)
	require.NoError(t, err)
	assert.True(t, p.More())

	_, err = p.Next(ctx)
	assert.ErrorIs(t, err, ErrEndOfResults)
	assert.False(t, p.More())
}

func TestSearchPager_FailedPageDoesNotAdvance(t *testing.T) {
	remote := newFakeRemote()
	remote.search[1] = itbook.SearchResponse{Outcome: itbook.Outcome{Status: itbook.StatusFailed, Message: "timeout"}}

	p := NewSearchPager(remote, "go")
	ctx := context.Background()

	_, err := p.Next(ctx)
	assert.ErrorIs(t, err, ErrRemoteUnavailable)
	assert.True(t, p.More())

	remote.search[1] = searchPage("1", "1")
	page, err := p.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, []int{1, 1}, remote.searchCalls)
}

func TestSearchPager_EmptyQuery(t *testing.T) {
	remote := newFakeRemote()

	p := NewSearchPager(remote, "   ")
	assert.False(t, p.More())

	_, err := p.Next(context.Background())
	assert.ErrorIs(t, err, ErrEndOfResults)
	assert.Empty(t, remote.searchCalls)
}

func TestSearchPager_StartAt(t *testing.T) {
	remote := newFakeRemote()
	remote.search[3] = searchPage("21", "21")

	p := NewSearchPager(remote, "go").StartAt(3)

	page, err := p.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, page.Page)
	assert.False(t, p.More())
}

func TestRepository_Search(t *testing.T) {
	remote := newFakeRemote()
	remote.search[1] = searchPage("1", "9781484206485")
	repo := NewRepository(Dependencies{Remote: remote})

	page, err := repo.Search("mongodb").Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "9781484206485", page.Books[0].ISBN13)
}
