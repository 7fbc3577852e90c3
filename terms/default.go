/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package terms

import "github.com/mikeb26/topdeck-standings/query"

const (
	TagStanding    = "standing"
	TagWins        = "wins"
	TagLosses      = "losses"
	TagDraws       = "draws"
	TagWinRate     = "winRate"
	TagDateCreated = "tourney_filter__dateCreated"
)

var defaultCatalog = mustCatalog(
	Term{
		Name: "Standing",
		Tag:  TagStanding,
		Conditions: []Condition{
			{
				Operator:  query.OpLte,
				Label:     "Top X:",
				InputType: InputSelect,
				Options: []Option{
					{Value: nil, Label: "Filter By Top X", Disabled: true, Selected: true},
					{Value: 1, Label: "Top 1"},
					{Value: 4, Label: "Top 4"},
					{Value: 16, Label: "Top 16"},
					{Value: 32, Label: "Top 32"},
					{Value: 64, Label: "Top 64"},
				},
			},
		},
	},
	Term{Name: "Wins", Tag: TagWins, Conditions: numberConditions()},
	Term{Name: "Losses", Tag: TagLosses, Conditions: numberConditions()},
	Term{Name: "Draws", Tag: TagDraws, Conditions: numberConditions()},
	Term{Name: "Win Rate", Tag: TagWinRate, Conditions: numberConditions()},
	Term{
		Name: "Tournament Date",
		Tag:  TagDateCreated,
		Conditions: []Condition{
			{Operator: query.OpGte, Label: "on or after", InputType: InputDate},
		},
	},
)

// Default returns the built-in catalog of standings terms.
func Default() *Catalog {
	return defaultCatalog
}

func numberConditions() []Condition {
	return []Condition{
		{Operator: query.OpGte, Label: "is greater than (≥)", InputType: InputNumber},
		{Operator: query.OpEq, Label: "is equal to (=)", InputType: InputNumber},
		{Operator: query.OpLte, Label: "is less than (≤)", InputType: InputNumber},
	}
}

func mustCatalog(terms ...Term) *Catalog {
	c, err := NewCatalog(terms...)
	if err != nil {
		panic(err)
	}
	return c
}
