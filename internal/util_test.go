/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package internal

import (
	"testing"
	"time"
)

func TestParseDateOrZero(t *testing.T) {
	cases := []struct {
		in   string
		want time.Time
	}{
		{"", time.Time{}},
		{"null", time.Time{}},
		{"2025-06-14", time.Date(2025, 6, 14, 0, 0, 0, 0, time.UTC)},
		{"June 14, 2025", time.Date(2025, 6, 14, 0, 0, 0, 0, time.UTC)},
	}
	for _, c := range cases {
		got, err := ParseDateOrZero(c.in)
		if err != nil {
			t.Errorf("ParseDateOrZero(%q) error: %v", c.in, err)
			continue
		}
		if !got.Equal(c.want) {
			t.Errorf("ParseDateOrZero(%q) = %v; want %v", c.in, got, c.want)
		}
	}

	if _, err := ParseDateOrZero("not a date"); err == nil {
		t.Error("expected error for unparseable date")
	}
}
