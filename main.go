package main

import (
	"fmt"
	"os"

	"github.com/mrlokans/bookbar/internal/cli"
	"github.com/mrlokans/bookbar/internal/config"
	"github.com/mrlokans/bookbar/internal/entrypoint"
)

// Version information - set at build time via ldflags
var (
	Version = "dev"
	Commit  = "unknown"
)

// Command is a one-shot subcommand.
type Command interface {
	ParseFlags(args []string) error
	Run() error
}

func main() {
	cfg := config.NewConfig()

	// If no arguments or "serve" command, run the HTTP server
	if len(os.Args) < 2 || os.Args[1] == "serve" {
		entrypoint.Run(cfg, Version)
		return
	}

	command := os.Args[1]
	args := os.Args[2:]

	var cmd Command
	switch command {
	case "new-books":
		cmd = cli.NewNewBooksCommand(cfg)
	case "refresh":
		cmd = cli.NewRefreshCommand(cfg)
	case "detail":
		cmd = cli.NewDetailCommand(cfg)
	case "favorites":
		cmd = cli.NewFavoritesCommand(cfg)
	case "favorite":
		cmd = cli.NewFavoriteCommand(cfg)
	case "prefs":
		cmd = cli.NewPrefsCommand(cfg)
	case "search":
		cmd = cli.NewSearchCommand(cfg)

	case "version":
		fmt.Printf("bookbar %s (%s)\n", Version, Commit)
		return

	case "-h", "--help", "help":
		printUsage()
		return

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}

	if err := cmd.ParseFlags(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := cmd.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Usage: %s <command> [options]\n\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Commands:\n")
	fmt.Fprintf(os.Stderr, "  serve       Start the local HTTP server (default if no command given)\n")
	fmt.Fprintf(os.Stderr, "  new-books   List newly released books\n")
	fmt.Fprintf(os.Stderr, "  refresh     Refresh the new releases from the catalog\n")
	fmt.Fprintf(os.Stderr, "  detail      Show a book's full record\n")
	fmt.Fprintf(os.Stderr, "  favorites   List favorite books\n")
	fmt.Fprintf(os.Stderr, "  favorite    Add or remove a favorite\n")
	fmt.Fprintf(os.Stderr, "  prefs       Show or change display preferences\n")
	fmt.Fprintf(os.Stderr, "  search      Search the catalog or the local cache\n")
	fmt.Fprintf(os.Stderr, "  version     Print version information\n")
	fmt.Fprintf(os.Stderr, "\nUse '%s <command> -h' for help on a specific command.\n", os.Args[0])
}
