package cli

import (
	"fmt"

	"github.com/mrlokans/bookbar/internal/catalog"
	"github.com/mrlokans/bookbar/internal/config"
	"github.com/mrlokans/bookbar/internal/stream"
)

// NewBooksCommand prints the new releases, fetching them on a cold cache.
type NewBooksCommand struct {
	base
}

// NewNewBooksCommand creates a new NewBooksCommand
func NewNewBooksCommand(cfg *config.Config) *NewBooksCommand {
	return &NewBooksCommand{base: newBase(cfg)}
}

// ParseFlags parses command line flags
func (cmd *NewBooksCommand) ParseFlags(args []string) error {
	fs := cmd.flags("new-books")
	usage(fs, "new-books", "List newly released books from the local cache.\nAn empty cache is filled from the catalog once.", "new-books")
	return fs.Parse(args)
}

// Run executes the command
func (cmd *NewBooksCommand) Run() error {
	app, err := cmd.open()
	if err != nil {
		return err
	}
	defer app.Close()

	ctx, cancel := cmd.timeoutContext()
	defer cancel()

	state, err := stream.Settle(ctx, app.Catalog.ObserveNewBooks(ctx), func(s catalog.ListState) bool {
		return s.Status.Settled()
	})
	if err != nil {
		return fmt.Errorf("failed to load new books: %w", err)
	}

	cmd.printBooks(state.Books)
	return nil
}

// RefreshCommand replaces the cached new releases with the catalog's.
type RefreshCommand struct {
	base
	Prefetch bool
}

// NewRefreshCommand creates a new RefreshCommand
func NewRefreshCommand(cfg *config.Config) *RefreshCommand {
	return &RefreshCommand{base: newBase(cfg)}
}

// ParseFlags parses command line flags
func (cmd *RefreshCommand) ParseFlags(args []string) error {
	fs := cmd.flags("refresh")
	fs.BoolVar(&cmd.Prefetch, "prefetch", cmd.cfg.Tasks.PrefetchDetails, "Also cache the detail of every new book")
	usage(fs, "refresh", "Refresh the new releases from the catalog.", "refresh", "refresh -prefetch")
	return fs.Parse(args)
}

// Run executes the command
func (cmd *RefreshCommand) Run() error {
	app, err := cmd.open()
	if err != nil {
		return err
	}
	defer app.Close()

	ctx, cancel := cmd.timeoutContext()
	defer cancel()

	if err := app.Catalog.RefreshNewBooks(ctx); err != nil {
		return err
	}

	books, err := app.NewBooks.GetAll(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.out, "Refreshed %d new books\n", len(books))

	if !cmd.Prefetch {
		return nil
	}

	cached := 0
	for _, b := range books {
		if err := app.Catalog.PrefetchDetail(ctx, b.ISBN13); err != nil {
			fmt.Fprintf(cmd.out, "  %s: %v\n", b.ISBN13, err)
			continue
		}
		cached++
	}
	fmt.Fprintf(cmd.out, "Cached %d of %d book details\n", cached, len(books))
	return nil
}

// DetailCommand prints the full record of one book.
type DetailCommand struct {
	base
	ISBN string
}

// NewDetailCommand creates a new DetailCommand
func NewDetailCommand(cfg *config.Config) *DetailCommand {
	return &DetailCommand{base: newBase(cfg)}
}

// ParseFlags parses command line flags
func (cmd *DetailCommand) ParseFlags(args []string) error {
	fs := cmd.flags("detail")
	fs.StringVar(&cmd.ISBN, "isbn", "", "ISBN-13 of the book (required)")
	usage(fs, "detail", "Show a book's full record, fetching it on a cache miss.", "detail -isbn 9781617294136")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if cmd.ISBN == "" {
		return fmt.Errorf("-isbn is required")
	}
	return nil
}

// Run executes the command
func (cmd *DetailCommand) Run() error {
	app, err := cmd.open()
	if err != nil {
		return err
	}
	defer app.Close()

	ctx, cancel := cmd.timeoutContext()
	defer cancel()

	result, err := stream.Settle(ctx, app.Catalog.ObserveDetail(ctx, cmd.ISBN), func(r catalog.DetailResult) bool {
		return r.Status.Settled()
	})
	if err != nil {
		return fmt.Errorf("failed to load book: %w", err)
	}
	if result.Status != catalog.StatusSuccess {
		return fmt.Errorf("book %s not found", cmd.ISBN)
	}

	cmd.printDetail(*result.Book)
	return nil
}
