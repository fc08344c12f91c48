package verify

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"matchday-bot/internal/model"
)

// FoldName lower-cases a player name, strips accents and collapses spaces,
// so "Rafael Leão" and "rafael  leao" compare equal.
func FoldName(name string) string {
	// Chained transformers keep internal buffers, so build one per call.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, name)
	if err != nil {
		folded = name
	}
	return strings.Join(strings.Fields(strings.ToLower(folded)), " ")
}

// FindPlayer looks a player up in the outcome's statistics. An exact folded
// match wins; otherwise a unique partial match (surname only, or a name
// given in full where the provider uses a short form) is accepted.
func FindPlayer(players map[string]model.PlayerStats, name string) (model.PlayerStats, string, bool) {
	query := FoldName(name)
	if query == "" {
		return model.PlayerStats{}, "", false
	}

	var (
		partial    string
		partialHit int
	)
	for key := range players {
		folded := FoldName(key)
		if folded == query {
			return players[key], key, true
		}
		if containsWord(folded, query) || containsWord(query, folded) {
			partial = key
			partialHit++
		}
	}
	if partialHit == 1 {
		return players[partial], partial, true
	}
	return model.PlayerStats{}, "", false
}

// containsWord reports whether every word of needle appears in haystack.
func containsWord(haystack, needle string) bool {
	if needle == "" {
		return false
	}
	words := strings.Fields(haystack)
	for _, n := range strings.Fields(needle) {
		found := false
		for _, w := range words {
			if w == n {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
