/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package standings

import (
	"sort"
	"strings"
)

// sortable entry fields
const (
	KeyStanding = "standing"
	KeyName     = "name"
	KeyWins     = "wins"
	KeyLosses   = "losses"
	KeyDraws    = "draws"
	KeyWinRate  = "winRate"
)

// DefaultSortKey is the key a fresh view sorts by.
const DefaultSortKey = KeyStanding

var sortKeys = []string{KeyStanding, KeyName, KeyWins, KeyLosses, KeyDraws,
	KeyWinRate}

// SortKeys returns every supported sort key in column order.
func SortKeys() []string {
	return append([]string(nil), sortKeys...)
}

func IsSortKey(key string) bool {
	return compareFor(key) != nil
}

// SortState is the caller-owned sort selection of a view.
type SortState struct {
	Key     string
	Toggled bool
}

// Select returns the state after the user picks key: picking the current key
// again flips the direction, picking a different key resets to ascending.
func (s SortState) Select(key string) SortState {
	if key == s.Key {
		return SortState{Key: key, Toggled: !s.Toggled}
	}
	return SortState{Key: key}
}

// SortEntries returns a new slice ordered by key, ascending unless toggled.
// Entries with equal keys keep their input order. Unknown keys return an
// unchanged copy. entries is never reordered in place, and no state carries
// over between calls; the caller tracks toggled.
func SortEntries(entries []Entry, key string, toggled bool) []Entry {
	out := append([]Entry(nil), entries...)
	cmp := compareFor(key)
	if cmp == nil {
		return out
	}

	sort.SliceStable(out, func(i, j int) bool {
		if toggled {
			return cmp(out[i], out[j]) > 0
		}
		return cmp(out[i], out[j]) < 0
	})
	return out
}

func compareFor(key string) func(a, b Entry) int {
	switch key {
	case KeyStanding:
		return func(a, b Entry) int { return compareInt(a.Standing, b.Standing) }
	case KeyName:
		return func(a, b Entry) int { return strings.Compare(a.Name, b.Name) }
	case KeyWins:
		return func(a, b Entry) int { return compareInt(a.Wins, b.Wins) }
	case KeyLosses:
		return func(a, b Entry) int { return compareInt(a.Losses, b.Losses) }
	case KeyDraws:
		return func(a, b Entry) int { return compareInt(a.Draws, b.Draws) }
	case KeyWinRate:
		return func(a, b Entry) int {
			switch {
			case a.WinRate < b.WinRate:
				return -1
			case a.WinRate > b.WinRate:
				return 1
			}
			return 0
		}
	}
	return nil
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
