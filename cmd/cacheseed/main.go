/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/mikeb26/topdeck-standings/fetcher"
	"github.com/mikeb26/topdeck-standings/filterstate"
)

// this program exists just to seed the response cache for the given
// tournaments

func main() {
	fs := flag.NewFlagSet("cacheseed", flag.ExitOnError)
	parallel := fs.Int("parallel", 2, "Maximum concurrent fetches (1-8)")
	if err := fs.Parse(os.Args[1:]); err != nil {
		os.Exit(1)
	}
	if fs.NArg() == 0 {
		fmt.Fprintf(os.Stderr, "usage: %s [--parallel N] TID...\n", os.Args[0])
		os.Exit(1)
	}

	ctx := context.Background()
	seeded := seed(ctx, fetcher.NewDefaultClient(ctx), fs.Args(), *parallel)
	if seeded == 0 {
		log.Fatalf("cacheseed: no tournaments seeded")
	}
}

// seed fetches the default filter of every tid, at most parallel at a time,
// and returns how many succeeded. Failures are logged; seeding is best
// effort.
func seed(ctx context.Context, f fetcher.Fetcher, tids []string,
	parallel int) int {

	// avoid pegging the api
	if parallel < 1 {
		parallel = 1
	} else if parallel > 8 {
		parallel = 8
	}

	results := make([]bool, len(tids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallel)

	for idx, tid := range tids {
		g.Go(func() error {
			entries, err := f.Fetch(gctx, filterstate.DefaultFilter(tid))
			if err != nil {
				// best effort
				log.Printf("cacheseed: tid:%v: %v", tid, err)
				return nil
			}
			results[idx] = true
			fmt.Printf("seeded tid:%v (%v entries)\n", tid, len(entries))
			return nil
		})
	}
	_ = g.Wait()

	seeded := 0
	for _, ok := range results {
		if ok {
			seeded++
		}
	}
	return seeded
}
