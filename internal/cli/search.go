package cli

import (
	"errors"
	"fmt"

	"github.com/mrlokans/bookbar/internal/catalog"
	"github.com/mrlokans/bookbar/internal/config"
	"github.com/mrlokans/bookbar/internal/search"
)

// SearchCommand searches the remote catalog, or the local cache with -cached.
type SearchCommand struct {
	base
	Query  string
	Page   int
	Cached bool
	Limit  int
}

// NewSearchCommand creates a new SearchCommand
func NewSearchCommand(cfg *config.Config) *SearchCommand {
	return &SearchCommand{base: newBase(cfg)}
}

// ParseFlags parses command line flags
func (cmd *SearchCommand) ParseFlags(args []string) error {
	fs := cmd.flags("search")
	fs.StringVar(&cmd.Query, "q", "", "Search query (required)")
	fs.IntVar(&cmd.Page, "page", 1, "Result page of the remote search")
	fs.BoolVar(&cmd.Cached, "cached", false, "Search the local cache instead of the catalog")
	fs.IntVar(&cmd.Limit, "limit", search.DefaultLimit, "Maximum results of a cached search")
	usage(fs, "search", "Search books by title, author or keyword.",
		"search -q golang", "search -q golang -page 2", "search -q devops -cached")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if cmd.Query == "" {
		return fmt.Errorf("-q is required")
	}
	return nil
}

// Run executes the command
func (cmd *SearchCommand) Run() error {
	app, err := cmd.open()
	if err != nil {
		return err
	}
	defer app.Close()

	ctx, cancel := cmd.timeoutContext()
	defer cancel()

	if cmd.Cached {
		result, err := app.Catalog.SearchCached(ctx, cmd.Query, cmd.Limit, 0)
		if err != nil {
			return err
		}
		cmd.printBooks(result.Books)
		fmt.Fprintf(cmd.out, "\n%d of %d cached matches\n", len(result.Books), result.Total)
		return nil
	}

	pager := app.Catalog.Search(cmd.Query).StartAt(cmd.Page)
	page, err := pager.Next(ctx)
	if errors.Is(err, catalog.ErrEndOfResults) {
		cmd.printBooks(nil)
		return nil
	}
	if err != nil {
		return err
	}

	cmd.printBooks(page.Books)
	fmt.Fprintf(cmd.out, "\nPage %d, %d results in total", page.Page, page.Total)
	if pager.More() {
		fmt.Fprintf(cmd.out, " (next: -page %d)", page.Page+1)
	}
	fmt.Fprintln(cmd.out)
	return nil
}
