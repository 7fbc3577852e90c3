/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package query

import (
	"fmt"
	"strings"
)

// Delimiter separates path segments in shareable links, e.g. wins__$gte.
const Delimiter = "__"

// KeyPath addresses a leaf in a FilterQuery, e.g. ["wins", "$gte"]. A valid
// KeyPath has at least one segment and no empty segments.
type KeyPath []string

// NewKeyPath validates segments and returns them as a KeyPath.
func NewKeyPath(segments ...string) (KeyPath, error) {
	if len(segments) == 0 {
		return nil, ErrEmptyPath
	}
	path := make(KeyPath, len(segments))
	for i, seg := range segments {
		if seg == "" {
			return nil, fmt.Errorf("%w at index %v", ErrEmptySegment, i)
		}
		if strings.Contains(seg, Delimiter) {
			return nil, fmt.Errorf("segment %q contains delimiter %q", seg,
				Delimiter)
		}
		path[i] = seg
	}

	return path, nil
}

// ParseKeyPath splits a raw link key such as "tourney_filter__TID" on
// Delimiter.
func ParseKeyPath(raw string) (KeyPath, error) {
	if raw == "" {
		return nil, ErrEmptyPath
	}
	path, err := NewKeyPath(strings.Split(raw, Delimiter)...)
	if err != nil {
		return nil, fmt.Errorf("invalid filter key %q: %w", raw, err)
	}
	return path, nil
}

// Append returns a new KeyPath; p is left untouched.
func (p KeyPath) Append(segments ...string) KeyPath {
	out := make(KeyPath, 0, len(p)+len(segments))
	out = append(out, p...)
	return append(out, segments...)
}

func (p KeyPath) String() string {
	return strings.Join(p, Delimiter)
}
