package cli

import (
	"fmt"

	"github.com/mrlokans/bookbar/internal/catalog"
	"github.com/mrlokans/bookbar/internal/config"
	"github.com/mrlokans/bookbar/internal/stream"
)

// FavoritesCommand lists the favorite set.
type FavoritesCommand struct {
	base
}

// NewFavoritesCommand creates a new FavoritesCommand
func NewFavoritesCommand(cfg *config.Config) *FavoritesCommand {
	return &FavoritesCommand{base: newBase(cfg)}
}

// ParseFlags parses command line flags
func (cmd *FavoritesCommand) ParseFlags(args []string) error {
	fs := cmd.flags("favorites")
	usage(fs, "favorites", "List favorite books.", "favorites")
	return fs.Parse(args)
}

// Run executes the command
func (cmd *FavoritesCommand) Run() error {
	app, err := cmd.open()
	if err != nil {
		return err
	}
	defer app.Close()

	ctx, cancel := cmd.timeoutContext()
	defer cancel()

	state, err := stream.Settle(ctx, app.Catalog.ObserveFavorites(ctx), func(s catalog.ListState) bool {
		return s.Status.Settled()
	})
	if err != nil {
		return fmt.Errorf("failed to load favorites: %w", err)
	}

	cmd.printBooks(state.Books)
	return nil
}

// FavoriteCommand marks or unmarks one book as a favorite.
type FavoriteCommand struct {
	base
	ISBN   string
	Remove bool
}

// NewFavoriteCommand creates a new FavoriteCommand
func NewFavoriteCommand(cfg *config.Config) *FavoriteCommand {
	return &FavoriteCommand{base: newBase(cfg)}
}

// ParseFlags parses command line flags
func (cmd *FavoriteCommand) ParseFlags(args []string) error {
	fs := cmd.flags("favorite")
	fs.StringVar(&cmd.ISBN, "isbn", "", "ISBN-13 of the book (required)")
	fs.BoolVar(&cmd.Remove, "remove", false, "Remove the book from favorites")
	usage(fs, "favorite", "Add a book to, or remove it from, the favorites.",
		"favorite -isbn 9781617294136", "favorite -isbn 9781617294136 -remove")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if cmd.ISBN == "" {
		return fmt.Errorf("-isbn is required")
	}
	return nil
}

// Run executes the command
func (cmd *FavoriteCommand) Run() error {
	app, err := cmd.open()
	if err != nil {
		return err
	}
	defer app.Close()

	ctx, cancel := cmd.timeoutContext()
	defer cancel()

	if cmd.Remove {
		if err := app.Catalog.RemoveFavorite(ctx, cmd.ISBN); err != nil {
			return err
		}
		fmt.Fprintf(cmd.out, "Removed %s from favorites\n", cmd.ISBN)
		return nil
	}

	result, err := stream.Settle(ctx, app.Catalog.ObserveDetail(ctx, cmd.ISBN), func(r catalog.DetailResult) bool {
		return r.Status.Settled()
	})
	if err != nil {
		return fmt.Errorf("failed to load book: %w", err)
	}
	if result.Status != catalog.StatusSuccess {
		return fmt.Errorf("book %s not found", cmd.ISBN)
	}

	if err := app.Catalog.SetFavorite(ctx, *result.Book, true); err != nil {
		return err
	}
	fmt.Fprintf(cmd.out, "Added %q to favorites\n", result.Book.Title)
	return nil
}
