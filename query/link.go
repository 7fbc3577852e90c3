/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package query

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// CoerceFunc converts the raw string of a link segment into the value stored
// at path. Returning an error drops the segment.
type CoerceFunc func(path KeyPath, raw string) (any, error)

// Encode renders q as a shareable query string such as
// "tourney_filter__TID=abc&wins__$gte=3". Keys are sorted.
func Encode(q FilterQuery) string {
	flat := Compress(q)
	keys := make([]string, 0, len(flat))
	for k := range flat {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, escape(k)+"="+escape(FormatScalar(flat[k])))
	}
	return strings.Join(parts, "&")
}

// '$' is legal in a query component; leaving it readable keeps links like
// wins__$gte=3 recognizable.
func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "%24", "$")
}

// FormatScalar renders a leaf for a link. Whole numbers drop the trailing .0.
func FormatScalar(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	}
	if f, ok := Number(v); ok {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return fmt.Sprint(v)
}

// DecodeString parses a raw query string (with or without a leading '?') and
// hands it to Decode.
func DecodeString(raw string, coerce CoerceFunc) (FilterQuery, []error) {
	raw = strings.TrimPrefix(raw, "?")
	values, err := url.ParseQuery(raw)
	var errs []error
	if err != nil {
		// ParseQuery keeps every pair it could parse
		errs = append(errs, fmt.Errorf("malformed link: %w", err))
	}
	q, decodeErrs := Decode(values, coerce)
	return q, append(errs, decodeErrs...)
}

// Decode rebuilds a FilterQuery from link values. Segments with malformed
// keys, values rejected by coerce, or paths conflicting with an earlier
// segment are dropped; each drop is reported in the returned errors, none of
// which are fatal. When a key repeats, its last value wins. A nil coerce
// keeps raw strings.
func Decode(values url.Values, coerce CoerceFunc) (FilterQuery, []error) {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	q := FilterQuery{}
	var errs []error
	for _, key := range keys {
		vals := values[key]
		if len(vals) == 0 {
			continue
		}
		path, err := ParseKeyPath(key)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		raw := vals[len(vals)-1]
		var value any = raw
		if coerce != nil {
			value, err = coerce(path, raw)
			if err != nil {
				errs = append(errs, fmt.Errorf("dropping %v=%q: %w", key, raw,
					err))
				continue
			}
		}

		next, err := BuildFilterPath(q, path, value)
		if err != nil {
			errs = append(errs, fmt.Errorf("dropping %v=%q: %w", key, raw, err))
			continue
		}
		q = next
	}

	return q, errs
}
