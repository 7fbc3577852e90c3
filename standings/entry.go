/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package standings

// vended by POST <api>/api/req
// Entry is one competitor's recorded result in a tournament. Entries are
// snapshots; nothing in this module modifies one after it is fetched.
type Entry struct {
	Standing int     `json:"standing" mapstructure:"standing"`
	Name     string  `json:"name" mapstructure:"name"`
	Wins     int     `json:"wins" mapstructure:"wins"`
	Losses   int     `json:"losses" mapstructure:"losses"`
	Draws    int     `json:"draws" mapstructure:"draws"`
	WinRate  float64 `json:"winRate" mapstructure:"winRate"`
	// Decklist is an opaque reference, usually a deck-building site URL.
	Decklist string `json:"decklist" mapstructure:"decklist"`
}

// Doc returns e as a flat document keyed by its sortable field names, the
// shape query.Match evaluates.
func (e Entry) Doc() map[string]any {
	return map[string]any{
		KeyStanding: e.Standing,
		KeyName:     e.Name,
		KeyWins:     e.Wins,
		KeyLosses:   e.Losses,
		KeyDraws:    e.Draws,
		KeyWinRate:  e.WinRate,
		"decklist":  e.Decklist,
	}
}
