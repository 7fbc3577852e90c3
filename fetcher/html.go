/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/mikeb26/topdeck-standings/internal"
	"github.com/mikeb26/topdeck-standings/query"
	"github.com/mikeb26/topdeck-standings/standings"
)

// HTMLSource reads entries from an exported standings table (a local file or
// an http(s) URL) and applies the filter locally. The export covers a single
// tournament, so tourney_filter conditions are treated as already satisfied.
type HTMLSource struct {
	Location   string
	HTTPClient *http.Client
}

func NewHTMLSource(location string, httpClient *http.Client) *HTMLSource {
	return &HTMLSource{Location: location, HTTPClient: httpClient}
}

// Fetch implements Fetcher.
func (s *HTMLSource) Fetch(ctx context.Context,
	filter query.FilterQuery) ([]standings.Entry, error) {

	start := time.Now()
	entries, err := s.fetch(ctx, filter)
	observeFetch(sourceHTML, start, err)

	return entries, err
}

func (s *HTMLSource) fetch(ctx context.Context,
	filter query.FilterQuery) ([]standings.Entry, error) {

	rdr, err := s.open(ctx)
	if err != nil {
		return nil, err
	}
	defer rdr.Close()

	doc, err := goquery.NewDocumentFromReader(rdr)
	if err != nil {
		return nil, fmt.Errorf("unable to parse standings html %v: %w",
			s.Location, err)
	}
	all, err := ParseStandingsTable(doc)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", s.Location, err)
	}

	var matched []standings.Entry
	for _, e := range all {
		ok, err := query.Match(filter, e.Doc())
		if err != nil {
			return nil, fmt.Errorf("unable to apply filter %v: %w", filter, err)
		}
		if ok {
			matched = append(matched, e)
		}
	}

	return matched, nil
}

func (s *HTMLSource) open(ctx context.Context) (io.ReadCloser, error) {
	if !strings.HasPrefix(s.Location, "http://") &&
		!strings.HasPrefix(s.Location, "https://") {
		f, err := os.Open(s.Location)
		if err != nil {
			return nil, fmt.Errorf("unable to open standings html: %w", err)
		}
		return f, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.Location, nil)
	if err != nil {
		return nil, fmt.Errorf("unable to fetch standings html (new): %w", err)
	}
	req.Header.Set("User-Agent", internal.UserAgent)

	client := s.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("unable to fetch standings html (do): %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("status %d fetching %s", resp.StatusCode,
			s.Location)
	}

	return resp.Body, nil
}

// header text -> entry field
var headerKeys = map[string]string{
	"#":           standings.KeyStanding,
	"rank":        standings.KeyStanding,
	"standing":    standings.KeyStanding,
	"name":        standings.KeyName,
	"player":      standings.KeyName,
	"player name": standings.KeyName,
	"wins":        standings.KeyWins,
	"losses":      standings.KeyLosses,
	"draws":       standings.KeyDraws,
	"win rate":    standings.KeyWinRate,
	"winrate":     standings.KeyWinRate,
}

// ParseStandingsTable extracts entries from the first table whose header row
// names a player column. Rows without a numeric standing are skipped. A link
// in the name cell becomes the entry's decklist.
func ParseStandingsTable(doc *goquery.Document) ([]standings.Entry, error) {
	var entries []standings.Entry
	found := false

	doc.Find("table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		rows := table.Find("tr")
		if rows.Length() == 0 {
			return true
		}
		cols := headerColumns(rows.First())
		if _, ok := cols[standings.KeyName]; !ok {
			return true
		}
		found = true

		rows.Slice(1, goquery.ToEnd).Each(func(_ int, row *goquery.Selection) {
			if e, ok := parseEntryRow(row, cols); ok {
				entries = append(entries, e)
			}
		})
		return false
	})

	if !found {
		return nil, fmt.Errorf("no standings table found")
	}
	return entries, nil
}

func headerColumns(row *goquery.Selection) map[string]int {
	cols := make(map[string]int)
	row.Find("th, td").Each(func(idx int, cell *goquery.Selection) {
		text := strings.ToLower(strings.Join(strings.Fields(cell.Text()), " "))
		if key, ok := headerKeys[text]; ok {
			if _, dup := cols[key]; !dup {
				cols[key] = idx
			}
		}
	})
	return cols
}

func parseEntryRow(row *goquery.Selection, cols map[string]int) (standings.Entry, bool) {
	cells := row.Find("td")
	cell := func(key string) (*goquery.Selection, bool) {
		idx, ok := cols[key]
		if !ok || idx >= cells.Length() {
			return nil, false
		}
		return cells.Eq(idx), true
	}
	text := func(key string) string {
		if c, ok := cell(key); ok {
			return strings.TrimSpace(c.Text())
		}
		return ""
	}

	standing, err := strconv.Atoi(strings.TrimSuffix(text(standings.KeyStanding), "."))
	if err != nil {
		return standings.Entry{}, false
	}

	e := standings.Entry{
		Standing: standing,
		Name:     text(standings.KeyName),
		Wins:     atoiOrZero(text(standings.KeyWins)),
		Losses:   atoiOrZero(text(standings.KeyLosses)),
		Draws:    atoiOrZero(text(standings.KeyDraws)),
		WinRate:  parseWinRate(text(standings.KeyWinRate)),
	}
	if c, ok := cell(standings.KeyName); ok {
		if href, ok := c.Find("a[href]").First().Attr("href"); ok {
			e.Decklist = href
		}
	}

	return e, true
}

func atoiOrZero(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

// parseWinRate accepts "83.33%" or a 0..1 fraction.
func parseWinRate(s string) float64 {
	pct := strings.HasSuffix(s, "%")
	v, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(s, "%")), 64)
	if err != nil {
		return 0
	}
	if pct {
		return v / 100
	}
	return v
}
