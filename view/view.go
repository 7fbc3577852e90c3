/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */

// Package view ties a filter Manager, a Fetcher and a sort selection
// together into the standings a client displays.
package view

import (
	"context"
	"log"
	"sync"

	"github.com/mikeb26/topdeck-standings/fetcher"
	"github.com/mikeb26/topdeck-standings/filterstate"
	"github.com/mikeb26/topdeck-standings/query"
	"github.com/mikeb26/topdeck-standings/standings"
)

// State is a point-in-time copy of a View.
type State struct {
	Entries []standings.Entry
	Sort    standings.SortState
	Loading bool
	// Err is the most recent fetch failure; nil after a successful fetch.
	Err     error
	Applied query.FilterQuery
	Pending query.FilterQuery
}

type View struct {
	fetcher fetcher.Fetcher
	filters *filterstate.Manager

	mu      sync.Mutex
	sort    standings.SortState
	entries []standings.Entry
	loading bool
	err     error
	issued  uint64
}

func New(f fetcher.Fetcher, filters *filterstate.Manager) *View {
	return &View{
		fetcher: f,
		filters: filters,
		sort:    standings.SortState{Key: standings.DefaultSortKey},
	}
}

func (v *View) Filters() *filterstate.Manager {
	return v.filters
}

// Refresh commits the pending filter and fetches entries for it. Only the
// most recently issued refresh may change the displayed entries; results
// from earlier refreshes that complete later are discarded. On failure the
// previous entries remain displayed and the error is recorded and returned.
func (v *View) Refresh(ctx context.Context) error {
	filter := v.filters.Commit()

	v.mu.Lock()
	v.issued++
	seq := v.issued
	v.loading = true
	v.mu.Unlock()

	entries, err := v.fetcher.Fetch(ctx, filter)

	v.mu.Lock()
	defer v.mu.Unlock()
	if seq != v.issued {
		log.Printf("view.refresh: discarding superseded response %v (latest %v)",
			seq, v.issued)
		return err
	}
	v.loading = false
	if err != nil {
		log.Printf("view.refresh: fetch failed; keeping %v entries: %v",
			len(v.entries), err)
		v.err = err
		return err
	}
	v.err = nil
	v.entries = standings.SortEntries(entries, v.sort.Key, v.sort.Toggled)

	return nil
}

// SelectSort applies standings.SortState.Select and re-sorts the displayed
// entries.
func (v *View) SelectSort(key string) standings.SortState {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.sort = v.sort.Select(key)
	v.entries = standings.SortEntries(v.entries, v.sort.Key, v.sort.Toggled)

	return v.sort
}

// SetSort replaces the sort selection outright.
func (v *View) SetSort(s standings.SortState) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.sort = s
	v.entries = standings.SortEntries(v.entries, s.Key, s.Toggled)
}

func (v *View) Snapshot() State {
	v.mu.Lock()
	s := State{
		Entries: append([]standings.Entry(nil), v.entries...),
		Sort:    v.sort,
		Loading: v.loading,
		Err:     v.err,
	}
	v.mu.Unlock()

	s.Applied = v.filters.Applied()
	s.Pending = v.filters.Pending()
	return s
}

// Output renders the current entries as a text table.
func (v *View) Output() string {
	s := v.Snapshot()
	return standings.BuildStandingsOutput(s.Entries, s.Sort)
}
