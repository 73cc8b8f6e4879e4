package cli

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/cabinetmap/internal/client/catalog"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	Fav(ctx context.Context, storeID string) error
	Unfav(ctx context.Context, storeID string) error
	Favs(ctx context.Context) error
	Search(ctx context.Context, query string) error
	History(ctx context.Context) error
	Venues(ctx context.Context, f catalog.Filter) error
	Venue(ctx context.Context, id string) error
	Refresh(ctx context.Context) error
	Suggest(ctx context.Context, storeID, field, value, comment string) error
	Photo(ctx context.Context, storeID, path string) error
	Pending(ctx context.Context) error
	Stats(ctx context.Context) error
	Sync(ctx context.Context) error
	Sweep(ctx context.Context) error
	Reset(ctx context.Context) error
	// Foreground is called before every command.
	Foreground(ctx context.Context)
}

const helpText = `Available commands:
  fav <store>                      add a store to favorites
  unfav <store>                    remove a store from favorites
  favs                             list favorites
  search <query>                   record a search and list matching venues
  history                          show recent searches
  venues [flags] [keyword]         list venues, works offline from the cache
      -open -fav -cabinets few|medium|many -version V -facility F
      -sort relevance|name|cabinets|updated
  venue <id>                       show one venue
  refresh                          download the venue list now
  suggest <store> <field> <value> [-- comment]
                                   suggest an edit to a store
  photo <store> <file>             upload a photo of a store
  pending                          show queued changes
  stats                            show offline stats
  sync                             synchronize with the server now
  sweep                            drop old synchronized changes
  reset                            clear all offline data
  exit | quit                      leave the program`

// runREPL reads commands line by line, dispatching the first token to a.
// The loop exits on scanner EOF or when the user types "exit" or "quit".
//
// statusFn renders the prompt suffix (mode and unsynced count). prompt controls
// whether a prompt is printed at all, which is off for piped input.
//
// Handler errors are printed and the loop continues.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner, prompt bool) {
	for {
		if prompt {
			printlnFn(fmt.Sprintf("cm (%s)> ", statusFn()))
		}
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		a.Foreground(ctx)

		var err error

		switch cmd {
		case "help":
			printlnFn(helpText)

		case "fav":
			if len(args) != 1 {
				printlnFn("Usage: fav <store>")
				continue
			}
			err = a.Fav(ctx, args[0])

		case "unfav":
			if len(args) != 1 {
				printlnFn("Usage: unfav <store>")
				continue
			}
			err = a.Unfav(ctx, args[0])

		case "favs":
			err = a.Favs(ctx)

		case "search":
			if len(args) == 0 {
				printlnFn("Usage: search <query>")
				continue
			}
			err = a.Search(ctx, strings.Join(args, " "))

		case "history":
			err = a.History(ctx)

		case "venues":
			f, perr := parseVenueFilter(args)
			if perr != nil {
				printlnFn("Usage: venues [-open] [-fav] [-cabinets few|medium|many] [-version V] [-facility F] [-sort K] [keyword]")
				continue
			}
			err = a.Venues(ctx, f)

		case "venue":
			if len(args) != 1 {
				printlnFn("Usage: venue <id>")
				continue
			}
			err = a.Venue(ctx, args[0])

		case "refresh":
			err = a.Refresh(ctx)

		case "suggest":
			if len(args) < 3 {
				printlnFn("Usage: suggest <store> <field> <value> [-- comment]")
				continue
			}
			value, comment := splitComment(args[2:])
			err = a.Suggest(ctx, args[0], args[1], value, comment)

		case "photo":
			if len(args) != 2 {
				printlnFn("Usage: photo <store> <file>")
				continue
			}
			err = a.Photo(ctx, args[0], args[1])

		case "pending":
			err = a.Pending(ctx)

		case "stats":
			err = a.Stats(ctx)

		case "sync":
			err = a.Sync(ctx)

		case "sweep":
			err = a.Sweep(ctx)

		case "reset":
			err = a.Reset(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			printlnFn("Error:", err)
		}
	}
}

// splitComment separates "value words -- comment words".
func splitComment(args []string) (value, comment string) {
	for i, a := range args {
		if a == "--" {
			return strings.Join(args[:i], " "), strings.Join(args[i+1:], " ")
		}
	}
	return strings.Join(args, " "), ""
}

// listFlag collects a repeatable string flag.
type listFlag []string

func (l *listFlag) String() string { return strings.Join(*l, ",") }

func (l *listFlag) Set(v string) error {
	*l = append(*l, v)
	return nil
}

// parseVenueFilter turns "venues" arguments into a catalogue filter.
// Remaining non-flag words form the keyword.
func parseVenueFilter(args []string) (catalog.Filter, error) {
	var (
		f                  catalog.Filter
		versions, facility listFlag
		cabinets, sortBy   string
	)

	fs := flag.NewFlagSet("venues", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.BoolVar(&f.OpenNow, "open", false, "only venues open now")
	fs.BoolVar(&f.FavoritesOnly, "fav", false, "only favorite venues")
	fs.StringVar(&cabinets, "cabinets", "", "cabinet count range")
	fs.StringVar(&sortBy, "sort", "", "sort order")
	fs.Var(&versions, "version", "game version, repeatable")
	fs.Var(&facility, "facility", "facility, repeatable")

	if err := fs.Parse(args); err != nil {
		return catalog.Filter{}, err
	}

	var err error
	if f.Cabinets, err = catalog.ParseCabinetRange(cabinets); err != nil {
		return catalog.Filter{}, err
	}
	if f.SortBy, err = catalog.ParseSortKey(sortBy); err != nil {
		return catalog.Filter{}, err
	}
	f.Versions = versions
	f.Facilities = facility
	f.Keyword = strings.Join(fs.Args(), " ")
	return f, nil
}
