/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */

// Package query builds the nested, document-style filter objects sent to the
// standings endpoint, e.g.
//
//	{"wins": {"$gte": 3}, "tourney_filter": {"TID": "abc"}}
//
// A FilterQuery is treated as an immutable value: every operation here returns
// a fresh copy and never modifies its input.
package query

import (
	"encoding/json"
	"reflect"
	"sort"
	"strings"
)

// Comparison operators understood by the data endpoint.
const (
	OpGte = "$gte"
	OpLte = "$lte"
	OpEq  = "$eq"
)

// FilterQuery maps a key to either a scalar value or a nested FilterQuery.
type FilterQuery map[string]any

// Clone returns a deep copy of q. Nested map[string]any values are converted
// to FilterQuery. A nil q yields an empty FilterQuery.
func Clone(q FilterQuery) FilterQuery {
	out := make(FilterQuery, len(q))
	for k, v := range q {
		if sub, ok := asQuery(v); ok {
			out[k] = Clone(sub)
		} else {
			out[k] = v
		}
	}
	return out
}

// BuildFilterPath returns a copy of root where path holds value. Sibling keys
// at every level are preserved. root itself is never modified.
//
// It fails with ErrEmptyPath for an empty path, ErrNonScalar when value is a
// mapping, and a *ConflictError when the path runs through an existing scalar
// or would overwrite an existing nested filter.
func BuildFilterPath(root FilterQuery, path KeyPath, value any) (FilterQuery, error) {
	if len(path) == 0 {
		return nil, ErrEmptyPath
	}
	if _, ok := asQuery(value); ok {
		return nil, ErrNonScalar
	}

	out := Clone(root)
	node := out
	last := len(path) - 1
	for i, seg := range path[:last] {
		child, exists := node[seg]
		if !exists {
			next := FilterQuery{}
			node[seg] = next
			node = next
			continue
		}
		sub, ok := child.(FilterQuery)
		if !ok {
			return nil, &ConflictError{Path: path, At: path[:i+1],
				Existing: child}
		}
		node = sub
	}

	if existing, ok := node[path[last]].(FilterQuery); ok {
		return nil, &ConflictError{Path: path, At: path, Existing: existing}
	}
	node[path[last]] = value

	return out, nil
}

// RemovePath returns a copy of root without the leaf at path. Mappings left
// empty by the removal are pruned. Missing paths are not an error.
func RemovePath(root FilterQuery, path KeyPath) FilterQuery {
	out := Clone(root)
	if len(path) == 0 {
		return out
	}
	removeFrom(out, path)
	return out
}

func removeFrom(node FilterQuery, path KeyPath) {
	if len(path) == 1 {
		if _, ok := node[path[0]].(FilterQuery); !ok {
			delete(node, path[0])
		}
		return
	}
	sub, ok := node[path[0]].(FilterQuery)
	if !ok {
		return
	}
	removeFrom(sub, path[1:])
	if len(sub) == 0 {
		delete(node, path[0])
	}
}

// Get returns the value at path.
func Get(q FilterQuery, path KeyPath) (any, bool) {
	var cur any = q
	for _, seg := range path {
		sub, ok := asQuery(cur)
		if !ok {
			return nil, false
		}
		cur, ok = sub[seg]
		if !ok {
			return nil, false
		}
	}
	return cur, len(path) > 0
}

// Walk calls fn for every leaf of q in lexical key order. Returning false
// from fn stops the walk.
func Walk(q FilterQuery, fn func(path KeyPath, value any) bool) {
	walk(q, nil, fn)
}

func walk(q FilterQuery, prefix KeyPath, fn func(KeyPath, any) bool) bool {
	keys := make([]string, 0, len(q))
	for k := range q {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		path := prefix.Append(k)
		if sub, ok := asQuery(q[k]); ok {
			if !walk(sub, path, fn) {
				return false
			}
			continue
		}
		if !fn(path, q[k]) {
			return false
		}
	}
	return true
}

// Compress flattens q into Delimiter-joined keys, one per leaf. It is the
// inverse of applying BuildFilterPath for every entry onto an empty root.
func Compress(q FilterQuery) map[string]any {
	out := make(map[string]any)
	Walk(q, func(path KeyPath, value any) bool {
		out[path.String()] = value
		return true
	})
	return out
}

// Equal reports whether a and b hold the same structure and leaves. Numeric
// leaves compare by value, so int 3 equals float64 3.
func Equal(a, b FilterQuery) bool {
	if len(a) != len(b) {
		return false
	}
	for k, av := range a {
		bv, ok := b[k]
		if !ok {
			return false
		}
		asub, aIsQuery := asQuery(av)
		bsub, bIsQuery := asQuery(bv)
		if aIsQuery != bIsQuery {
			return false
		}
		if aIsQuery {
			if !Equal(asub, bsub) {
				return false
			}
			continue
		}
		if !scalarEqual(av, bv) {
			return false
		}
	}
	return true
}

// String renders q as compact JSON, mostly for log lines.
func (q FilterQuery) String() string {
	data, err := json.Marshal(q)
	if err != nil {
		return "{?}"
	}
	return string(data)
}

// IsOperator reports whether key is a comparison operator such as $gte.
func IsOperator(key string) bool {
	return strings.HasPrefix(key, "$")
}

func asQuery(v any) (FilterQuery, bool) {
	switch t := v.(type) {
	case FilterQuery:
		return t, true
	case map[string]any:
		return FilterQuery(t), true
	}
	return nil, false
}

func scalarEqual(a, b any) bool {
	af, aNum := Number(a)
	bf, bNum := Number(b)
	if aNum && bNum {
		return af == bf
	}
	return reflect.DeepEqual(a, b)
}

// Number widens the numeric kinds a filter leaf or decoded document may hold.
func Number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}
