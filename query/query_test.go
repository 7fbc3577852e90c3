/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package query

import (
	"errors"
	"testing"
)

func mustPath(t *testing.T, segments ...string) KeyPath {
	t.Helper()
	p, err := NewKeyPath(segments...)
	if err != nil {
		t.Fatalf("NewKeyPath(%v): %v", segments, err)
	}
	return p
}

func TestBuildFilterPathMergesSiblings(t *testing.T) {
	q1, err := BuildFilterPath(FilterQuery{}, mustPath(t, "wins", OpGte), 3)
	if err != nil {
		t.Fatalf("first insert: %v", err)
	}
	q2, err := BuildFilterPath(q1, mustPath(t, "losses", OpEq), 1)
	if err != nil {
		t.Fatalf("second insert: %v", err)
	}

	want := FilterQuery{
		"wins":   FilterQuery{OpGte: 3},
		"losses": FilterQuery{OpEq: 1},
	}
	if !Equal(q2, want) {
		t.Errorf("merged query = %v; want %v", q2, want)
	}
	if _, ok := q1["losses"]; ok {
		t.Errorf("q1 was modified by the second insert: %v", q1)
	}

	// same parent, new operator
	q3, err := BuildFilterPath(q2, mustPath(t, "wins", OpLte), 6)
	if err != nil {
		t.Fatalf("third insert: %v", err)
	}
	if v, _ := Get(q3, mustPath(t, "wins", OpGte)); v != 3 {
		t.Errorf("wins.$gte lost after sibling insert: %v", q3)
	}
	if v, _ := Get(q3, mustPath(t, "wins", OpLte)); v != 6 {
		t.Errorf("wins.$lte missing: %v", q3)
	}
}

func TestBuildFilterPathDoesNotAlias(t *testing.T) {
	root := FilterQuery{"tourney_filter": FilterQuery{"TID": "abc"}}
	out, err := BuildFilterPath(root, mustPath(t, "tourney_filter", "size"), 64)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	out["tourney_filter"].(FilterQuery)["TID"] = "changed"
	if root["tourney_filter"].(FilterQuery)["TID"] != "abc" {
		t.Error("mutating the result leaked into the input")
	}
	if _, ok := root["tourney_filter"].(FilterQuery)["size"]; ok {
		t.Error("input gained the inserted key")
	}
}

func TestBuildFilterPathReplacesLeaf(t *testing.T) {
	root := FilterQuery{"wins": FilterQuery{OpGte: 3}}
	out, err := BuildFilterPath(root, mustPath(t, "wins", OpGte), 5)
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	if v, _ := Get(out, mustPath(t, "wins", OpGte)); v != 5 {
		t.Errorf("expected 5, got %v", v)
	}
	if v, _ := Get(root, mustPath(t, "wins", OpGte)); v != 3 {
		t.Errorf("input changed to %v", v)
	}
}

func TestBuildFilterPathConflicts(t *testing.T) {
	cases := []struct {
		name string
		root FilterQuery
		path []string
	}{
		{
			name: "scalar on intermediate segment",
			root: FilterQuery{"wins": 5},
			path: []string{"wins", OpGte},
		},
		{
			name: "scalar deep in the path",
			root: FilterQuery{"tourney_filter": FilterQuery{"TID": "abc"}},
			path: []string{"tourney_filter", "TID", OpEq},
		},
		{
			name: "nested filter on final segment",
			root: FilterQuery{"wins": FilterQuery{OpGte: 3}},
			path: []string{"wins"},
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			before := Clone(c.root)
			out, err := BuildFilterPath(c.root, mustPath(t, c.path...), 3)
			if err == nil {
				t.Fatalf("expected conflict, got %v", out)
			}
			if !errors.Is(err, ErrConflictingPath) {
				t.Errorf("expected ErrConflictingPath, got %v", err)
			}
			var ce *ConflictError
			if !errors.As(err, &ce) {
				t.Fatalf("expected *ConflictError, got %T", err)
			}
			if ce.Path.String() != KeyPath(c.path).String() {
				t.Errorf("ConflictError.Path = %v; want %v", ce.Path, c.path)
			}
			if !Equal(c.root, before) {
				t.Errorf("input mutated: %v; want %v", c.root, before)
			}
		})
	}
}

func TestBuildFilterPathInvalidInput(t *testing.T) {
	if _, err := BuildFilterPath(FilterQuery{}, nil, 1); !errors.Is(err, ErrEmptyPath) {
		t.Errorf("expected ErrEmptyPath, got %v", err)
	}
	_, err := BuildFilterPath(FilterQuery{}, mustPath(t, "wins"), FilterQuery{OpGte: 1})
	if !errors.Is(err, ErrNonScalar) {
		t.Errorf("expected ErrNonScalar, got %v", err)
	}
}

func TestBuildFilterPathNilRoot(t *testing.T) {
	out, err := BuildFilterPath(nil, mustPath(t, "standing", OpLte), 16)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if !Equal(out, FilterQuery{"standing": FilterQuery{OpLte: 16}}) {
		t.Errorf("unexpected query %v", out)
	}
}

func TestCompressRoundTrip(t *testing.T) {
	q := FilterQuery{
		"tourney_filter": FilterQuery{
			"TID":         "edh-champs",
			"dateCreated": FilterQuery{OpGte: 1718323200.0},
		},
		"wins":    FilterQuery{OpGte: 3.0, OpLte: 6.0},
		"winRate": FilterQuery{OpEq: 0.5},
	}

	flat := Compress(q)
	if len(flat) != 5 {
		t.Fatalf("expected 5 leaves, got %v: %v", len(flat), flat)
	}
	if flat["tourney_filter__dateCreated__$gte"] != 1718323200.0 {
		t.Errorf("missing nested leaf in %v", flat)
	}

	rebuilt := FilterQuery{}
	for key, value := range flat {
		path, err := ParseKeyPath(key)
		if err != nil {
			t.Fatalf("ParseKeyPath(%q): %v", key, err)
		}
		rebuilt, err = BuildFilterPath(rebuilt, path, value)
		if err != nil {
			t.Fatalf("BuildFilterPath(%v): %v", path, err)
		}
	}
	if !Equal(rebuilt, q) {
		t.Errorf("round trip = %v; want %v", rebuilt, q)
	}
}

func TestRemovePath(t *testing.T) {
	q := FilterQuery{
		"wins":   FilterQuery{OpGte: 3},
		"losses": FilterQuery{OpEq: 1},
	}
	out := RemovePath(q, mustPath(t, "wins", OpGte))
	if !Equal(out, FilterQuery{"losses": FilterQuery{OpEq: 1}}) {
		t.Errorf("expected empty wins to be pruned, got %v", out)
	}
	if _, ok := q["wins"]; !ok {
		t.Error("RemovePath modified its input")
	}

	// removing a mapping is not a leaf removal
	same := RemovePath(q, mustPath(t, "wins"))
	if !Equal(same, q) {
		t.Errorf("expected no change, got %v", same)
	}
	missing := RemovePath(q, mustPath(t, "draws", OpEq))
	if !Equal(missing, q) {
		t.Errorf("expected no change, got %v", missing)
	}
}

func TestEqual(t *testing.T) {
	cases := []struct {
		name string
		a, b FilterQuery
		want bool
	}{
		{"numeric kinds", FilterQuery{"w": 3}, FilterQuery{"w": 3.0}, true},
		{"plain maps", FilterQuery{"w": map[string]any{OpEq: 1}},
			FilterQuery{"w": FilterQuery{OpEq: 1}}, true},
		{"different leaf", FilterQuery{"w": 3}, FilterQuery{"w": 4}, false},
		{"scalar vs nested", FilterQuery{"w": 3},
			FilterQuery{"w": FilterQuery{OpEq: 3}}, false},
		{"extra key", FilterQuery{"w": 3}, FilterQuery{"w": 3, "l": 1}, false},
		{"string vs number", FilterQuery{"w": "3"}, FilterQuery{"w": 3}, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := Equal(c.a, c.b); got != c.want {
				t.Errorf("Equal(%v, %v) = %v; want %v", c.a, c.b, got, c.want)
			}
		})
	}
}

func TestKeyPath(t *testing.T) {
	p, err := ParseKeyPath("tourney_filter__TID")
	if err != nil {
		t.Fatalf("ParseKeyPath: %v", err)
	}
	if len(p) != 2 || p[0] != "tourney_filter" || p[1] != "TID" {
		t.Errorf("unexpected segments %v", []string(p))
	}
	if p.String() != "tourney_filter__TID" {
		t.Errorf("String() = %q", p.String())
	}

	q := p.Append(OpEq)
	if len(p) != 2 || len(q) != 3 {
		t.Errorf("Append modified receiver: %v %v", p, q)
	}

	for _, bad := range []string{"", "__wins", "wins__", "wins____$gte"} {
		if _, err := ParseKeyPath(bad); err == nil {
			t.Errorf("expected ParseKeyPath(%q) to fail", bad)
		}
	}
	if _, err := NewKeyPath("wins__x"); err == nil {
		t.Error("expected NewKeyPath to reject an embedded delimiter")
	}
}
