/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package main

import (
	"context"
	_ "embed"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/mikeb26/topdeck-standings/fetcher"
	"github.com/mikeb26/topdeck-standings/filterstate"
	"github.com/mikeb26/topdeck-standings/internal"
	"github.com/mikeb26/topdeck-standings/query"
	"github.com/mikeb26/topdeck-standings/standings"
	"github.com/mikeb26/topdeck-standings/terms"
	"github.com/mikeb26/topdeck-standings/view"
)

//go:embed help.txt
var helpText string

// cmdHandler defines the signature for command handler functions.
type cmdHandler func(ctx context.Context, args []string)

// commands maps command names to their respective handler functions.
var commands = map[string]cmdHandler{
	"help":  handleHelp,
	"terms": handleTerms,
	"show":  handleShow,
	"link":  handleLink,
}

func main() {
	ctx := context.Background()

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}
	cmd := os.Args[1]
	if handler, ok := commands[cmd]; ok {
		handler(ctx, os.Args[2:])
	} else {
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Printf("%v", helpText)
}

func handleHelp(ctx context.Context, args []string) {
	usage()
}

func handleTerms(ctx context.Context, args []string) {
	fmt.Print(buildTermsOutput(terms.Default()))
}

// filterFlags collects repeated --filter key=value arguments.
type filterFlags []string

func (f *filterFlags) String() string {
	return strings.Join(*f, ",")
}

func (f *filterFlags) Set(v string) error {
	if !strings.Contains(v, "=") {
		return fmt.Errorf("expected key=value, got %q", v)
	}
	*f = append(*f, v)
	return nil
}

type filterArgs struct {
	tid     *string
	link    *string
	filters filterFlags
}

func addFilterFlags(fs *flag.FlagSet) *filterArgs {
	fa := &filterArgs{
		tid:  fs.String("tid", "", "Tournament ID"),
		link: fs.String("link", "", "Shareable link query string to start from"),
	}
	fs.Var(&fa.filters, "filter",
		"Filter as key=value, e.g. wins__$gte=3 (repeatable)")
	return fa
}

// manager builds the filter state described by the parsed flags: the link
// (or the default filter for --tid) first, then each --filter in order.
func (fa *filterArgs) manager() (*filterstate.Manager, error) {
	defaults := filterstate.DefaultFilter(*fa.tid)
	if *fa.tid == "" {
		defaults = query.FilterQuery{}
	}
	m := filterstate.New(nil, defaults)

	if *fa.link != "" {
		if err := m.Load(*fa.link, defaults); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
		if *fa.tid != "" {
			err := m.SetPath(query.KeyPath{"tourney_filter", "TID"}, *fa.tid)
			if err != nil {
				return nil, err
			}
		}
	}

	for _, f := range fa.filters {
		key, raw, _ := strings.Cut(f, "=")
		if err := applyFilter(m, key, raw); err != nil {
			return nil, err
		}
	}
	m.Commit()

	return m, nil
}

func applyFilter(m *filterstate.Manager, key string, raw string) error {
	path, err := query.ParseKeyPath(key)
	if err != nil {
		return fmt.Errorf("invalid filter key %q: %w", key, err)
	}
	v, err := m.Catalog().CoercePath(path, raw)
	if err != nil {
		return fmt.Errorf("invalid filter %v=%v: %w", key, raw, err)
	}
	return m.SetPath(path, v)
}

func handleShow(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("show", flag.ExitOnError)
	fa := addFilterFlags(fs)
	sortKey := fs.String("sort", standings.DefaultSortKey,
		"Sort key: "+strings.Join(standings.SortKeys(), ", "))
	desc := fs.Bool("desc", false, "Reverse the sort direction")
	htmlLoc := fs.String("html", "",
		"Read an exported standings table (file or URL) instead of the API")
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if *fa.tid == "" && *fa.link == "" && *htmlLoc == "" {
		fmt.Fprintln(os.Stderr, "Please provide a --tid, --link or --html.")
		fs.Usage()
		os.Exit(1)
	}
	if !standings.IsSortKey(*sortKey) {
		fmt.Fprintf(os.Stderr, "Unknown sort key %q; keeping input order.\n",
			*sortKey)
	}

	m, err := fa.manager()
	if err != nil {
		log.Fatalf("Error building filter: %v", err)
	}

	var src fetcher.Fetcher
	if *htmlLoc != "" {
		httpClient := internal.NewCachedHttpClient(internal.NewCache(ctx),
			fetcher.DefaultMaxAge)
		src = fetcher.NewHTMLSource(*htmlLoc, httpClient)
	} else {
		src = fetcher.NewDefaultClient(ctx)
	}

	v := view.New(src, m)
	v.SetSort(standings.SortState{Key: *sortKey, Toggled: *desc})
	if err := v.Refresh(ctx); err != nil {
		log.Fatalf("Error fetching standings: %v", err)
	}

	fmt.Print(v.Output())
	if link := m.Link(); link != "" {
		fmt.Printf("\nShare: ?%v\n", link)
	}
}

func handleLink(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("link", flag.ExitOnError)
	fa := addFilterFlags(fs)
	decode := fs.Bool("decode", false, "Print the filter as JSON instead")
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	m, err := fa.manager()
	if err != nil {
		log.Fatalf("Error building filter: %v", err)
	}
	if *decode {
		fmt.Println(m.Applied())
		return
	}
	fmt.Println(m.Link())
}

func buildTermsOutput(catalog *terms.Catalog) string {
	var sb strings.Builder

	for _, t := range catalog.Terms() {
		fmt.Fprintf(&sb, "%v (%v)\n", t.Name, t.Tag)
		for _, c := range t.Conditions {
			key := t.Path().Append(c.Operator).String()
			fmt.Fprintf(&sb, "  %-32v %v [%v]\n", key, c.Label, c.InputType)
			for _, o := range c.Options {
				if o.Value == nil || o.Disabled {
					continue
				}
				fmt.Fprintf(&sb, "      %v = %v\n",
					query.FormatScalar(o.Value), o.Label)
			}
		}
	}
	fmt.Fprintf(&sb, "\nSort keys: %v\n", strings.Join(standings.SortKeys(), ", "))

	return sb.String()
}
