/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package view

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/mikeb26/topdeck-standings/filterstate"
	"github.com/mikeb26/topdeck-standings/query"
	"github.com/mikeb26/topdeck-standings/standings"
	"github.com/mikeb26/topdeck-standings/terms"
)

var testEntries = []standings.Entry{
	{Standing: 2, Name: "Ada", Wins: 4, Losses: 1, WinRate: 0.8},
	{Standing: 1, Name: "Zed", Wins: 5, WinRate: 1},
	{Standing: 3, Name: "Bob", Wins: 2, Losses: 3, WinRate: 0.4},
}

type fakeFetcher struct {
	mu      sync.Mutex
	entries []standings.Entry
	err     error
	filters []query.FilterQuery
}

func (f *fakeFetcher) Fetch(_ context.Context,
	filter query.FilterQuery) ([]standings.Entry, error) {

	f.mu.Lock()
	defer f.mu.Unlock()
	f.filters = append(f.filters, filter)
	if f.err != nil {
		return nil, f.err
	}
	return append([]standings.Entry(nil), f.entries...), nil
}

func names(entries []standings.Entry) []string {
	var out []string
	for _, e := range entries {
		out = append(out, e.Name)
	}
	return out
}

func equalNames(t *testing.T, entries []standings.Entry, want ...string) {
	t.Helper()
	got := names(entries)
	if len(got) != len(want) {
		t.Fatalf("entries = %v; want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("entries = %v; want %v", got, want)
		}
	}
}

func TestRefreshCommitsAndSorts(t *testing.T) {
	f := &fakeFetcher{entries: testEntries}
	m := filterstate.New(nil, filterstate.DefaultFilter("abc"))
	v := New(f, m)

	if err := m.SetTerm(terms.TagWins, query.OpGte, 2); err != nil {
		t.Fatalf("SetTerm: %v", err)
	}
	if err := v.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	if len(f.filters) != 1 || !query.Equal(f.filters[0], m.Pending()) {
		t.Errorf("fetched with %v; want %v", f.filters, m.Pending())
	}
	s := v.Snapshot()
	equalNames(t, s.Entries, "Zed", "Ada", "Bob")
	if s.Loading || s.Err != nil {
		t.Errorf("unexpected state %+v", s)
	}
	if !query.Equal(s.Applied, s.Pending) {
		t.Errorf("applied %v != pending %v", s.Applied, s.Pending)
	}
}

func TestRefreshFailureKeepsEntries(t *testing.T) {
	f := &fakeFetcher{entries: testEntries}
	v := New(f, filterstate.New(nil, filterstate.DefaultFilter("abc")))
	if err := v.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	fetchErr := errors.New("network down")
	f.err = fetchErr
	if err := v.Refresh(context.Background()); !errors.Is(err, fetchErr) {
		t.Fatalf("Refresh error = %v; want %v", err, fetchErr)
	}
	s := v.Snapshot()
	equalNames(t, s.Entries, "Zed", "Ada", "Bob")
	if s.Loading {
		t.Error("loading not cleared after failure")
	}
	if !errors.Is(s.Err, fetchErr) {
		t.Errorf("recorded error = %v", s.Err)
	}

	f.err = nil
	if err := v.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if s := v.Snapshot(); s.Err != nil {
		t.Errorf("error not cleared after success: %v", s.Err)
	}
}

// blockingFetcher returns each call's result only when released.
type blockingFetcher struct {
	started chan int
	release []chan []standings.Entry
	calls   int
	mu      sync.Mutex
}

func (f *blockingFetcher) Fetch(ctx context.Context,
	_ query.FilterQuery) ([]standings.Entry, error) {

	f.mu.Lock()
	n := f.calls
	f.calls++
	f.mu.Unlock()

	f.started <- n
	select {
	case entries := <-f.release[n]:
		return entries, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func TestRefreshDiscardsSupersededResponse(t *testing.T) {
	f := &blockingFetcher{
		started: make(chan int),
		release: []chan []standings.Entry{make(chan []standings.Entry),
			make(chan []standings.Entry)},
	}
	v := New(f, filterstate.New(nil, filterstate.DefaultFilter("abc")))
	ctx := context.Background()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		v.Refresh(ctx)
	}()
	<-f.started
	go func() {
		defer wg.Done()
		v.Refresh(ctx)
	}()
	<-f.started

	// the later request completes first, then the stale one arrives
	f.release[1] <- []standings.Entry{{Standing: 1, Name: "New"}}
	f.release[0] <- []standings.Entry{{Standing: 1, Name: "Stale"}}
	wg.Wait()

	s := v.Snapshot()
	equalNames(t, s.Entries, "New")
	if s.Loading {
		t.Error("loading still set")
	}
}

func TestSelectSort(t *testing.T) {
	v := New(&fakeFetcher{entries: testEntries},
		filterstate.New(nil, filterstate.DefaultFilter("abc")))
	if err := v.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	if s := v.SelectSort(standings.KeyStanding); !s.Toggled {
		t.Errorf("reselecting the active key should toggle: %+v", s)
	}
	equalNames(t, v.Snapshot().Entries, "Bob", "Ada", "Zed")

	if s := v.SelectSort(standings.KeyName); s.Toggled || s.Key != standings.KeyName {
		t.Errorf("new key should reset direction: %+v", s)
	}
	equalNames(t, v.Snapshot().Entries, "Ada", "Bob", "Zed")

	v.SetSort(standings.SortState{Key: standings.KeyWinRate, Toggled: true})
	equalNames(t, v.Snapshot().Entries, "Zed", "Ada", "Bob")

	if out := v.Output(); !strings.Contains(out, "Win rate v") {
		t.Errorf("unexpected output %q", out)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	v := New(&fakeFetcher{entries: testEntries},
		filterstate.New(nil, filterstate.DefaultFilter("abc")))
	v.Refresh(context.Background())

	s := v.Snapshot()
	s.Entries[0].Name = "Mallory"
	if v.Snapshot().Entries[0].Name == "Mallory" {
		t.Error("snapshot aliases view entries")
	}

	empty := New(&fakeFetcher{}, filterstate.New(nil, nil))
	if out := empty.Output(); out != standings.NoDataText+"\n" {
		t.Errorf("Output() = %q; want %q", out, standings.NoDataText)
	}
}
