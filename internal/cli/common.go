package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/mrlokans/bookbar/internal/config"
	"github.com/mrlokans/bookbar/internal/entities"
	"github.com/mrlokans/bookbar/internal/entrypoint"
)

// commandTimeout bounds a single command, remote round trips included.
const commandTimeout = 2 * time.Minute

// base carries what every command shares: the configuration, the -db
// override and the output stream.
type base struct {
	cfg          *config.Config
	out          io.Writer
	DatabasePath string
}

func newBase(cfg *config.Config) base {
	return base{cfg: cfg, out: os.Stdout}
}

// flags creates a flag set with the shared -db option.
func (b *base) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	fs.StringVar(&b.DatabasePath, "db", b.cfg.Database.Path, "Path to the local cache database")
	return fs
}

// usage installs the help text printed for -h.
func usage(fs *flag.FlagSet, name, summary string, examples ...string) {
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s %s [options]\n\n", os.Args[0], name)
		fmt.Fprintf(os.Stderr, "%s\n\n", summary)
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		if len(examples) > 0 {
			fmt.Fprintf(os.Stderr, "\nExamples:\n")
			for _, ex := range examples {
				fmt.Fprintf(os.Stderr, "  %s %s\n", os.Args[0], ex)
			}
		}
	}
}

// open builds the application with maintenance running inline.
func (b *base) open() (*entrypoint.App, error) {
	cfg := *b.cfg
	cfg.Database.Path = b.DatabasePath
	app, err := entrypoint.NewApp(&cfg, entrypoint.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}
	return app, nil
}

func (b *base) timeoutContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), commandTimeout)
}

func (b *base) printBooks(books []entities.BookSummary) {
	if len(books) == 0 {
		fmt.Fprintln(b.out, "No books.")
		return
	}
	w := tabwriter.NewWriter(b.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ISBN13\tPRICE\tTITLE")
	for _, book := range books {
		fmt.Fprintf(w, "%s\t%s\t%s\n", book.ISBN13, book.Price, book.Title)
	}
	w.Flush()
}

func (b *base) printDetail(d entities.BookDetail) {
	w := tabwriter.NewWriter(b.out, 0, 0, 2, ' ', 0)
	row := func(label, value string) {
		if value != "" {
			fmt.Fprintf(w, "%s:\t%s\n", label, value)
		}
	}
	row("Title", d.Title)
	row("Subtitle", d.Subtitle)
	row("Authors", d.Authors)
	row("Publisher", d.Publisher)
	row("Year", d.Year)
	row("Pages", d.Pages)
	row("Language", d.Language)
	row("ISBN-10", d.ISBN10)
	row("ISBN-13", d.ISBN13)
	row("Rating", d.Rating)
	row("Price", d.Price)
	row("URL", d.URL)
	fmt.Fprintf(w, "Favorite:\t%t\n", d.IsFavorite)
	w.Flush()
	if d.Description != "" {
		fmt.Fprintf(b.out, "\n%s\n", d.Description)
	}
}
