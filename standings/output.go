/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package standings

import (
	"fmt"
	"strings"
)

const NoDataText = "No data available"

type column struct {
	key    string
	header string
	value  func(e Entry) string
}

var columns = []column{
	{KeyStanding, "#", func(e Entry) string { return fmt.Sprintf("%v", e.Standing) }},
	{KeyName, "Player Name", func(e Entry) string { return e.Name }},
	{KeyWins, "Wins", func(e Entry) string { return fmt.Sprintf("%v", e.Wins) }},
	{KeyLosses, "Losses", func(e Entry) string { return fmt.Sprintf("%v", e.Losses) }},
	{KeyDraws, "Draws", func(e Entry) string { return fmt.Sprintf("%v", e.Draws) }},
	{KeyWinRate, "Win rate", FormatWinRate},
}

// FormatWinRate renders a 0..1 rate as a percentage with 2 decimals.
func FormatWinRate(e Entry) string {
	return fmt.Sprintf("%.2f%%", e.WinRate*100)
}

// BuildStandingsOutput formats entries, in the order given, into an aligned
// table. The active sort column header carries ^ (ascending) or v
// (descending).
func BuildStandingsOutput(entries []Entry, sortState SortState) string {
	if len(entries) == 0 {
		return NoDataText + "\n"
	}

	headers := make([]string, len(columns))
	widths := make([]int, len(columns))
	for i, col := range columns {
		headers[i] = col.header
		if col.key == sortState.Key {
			if sortState.Toggled {
				headers[i] += " v"
			} else {
				headers[i] += " ^"
			}
		}
		widths[i] = len(headers[i])
	}

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		row := make([]string, len(columns))
		for i, col := range columns {
			row[i] = col.value(e)
			if l := len([]rune(row[i])); l > widths[i] {
				widths[i] = l
			}
		}
		rows = append(rows, row)
	}

	var sb strings.Builder
	writeRow(&sb, headers, widths)
	for _, row := range rows {
		writeRow(&sb, row, widths)
	}

	return sb.String()
}

func writeRow(sb *strings.Builder, cells []string, widths []int) {
	for i, cell := range cells {
		if i > 0 {
			sb.WriteString("  ")
		}
		if i == len(cells)-1 {
			sb.WriteString(cell)
			break
		}
		sb.WriteString(cell)
		if pad := widths[i] - len([]rune(cell)); pad > 0 {
			sb.WriteString(strings.Repeat(" ", pad))
		}
	}
	sb.WriteString("\n")
}
