package match

import (
	"sort"
	"strings"
	"unicode"
)

// DefaultThreshold is the minimum similarity for a name to be suggested.
const DefaultThreshold = 0.5

// DefaultLimit caps the number of suggestions.
const DefaultLimit = 3

// Distance computes the Levenshtein distance between a and b counted in runes.
func Distance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) < len(rb) {
		ra, rb = rb, ra
	}

	// single row over the shorter string
	row := make([]int, len(rb)+1)
	for j := range row {
		row[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		diag := row[0]
		row[0] = i

		for j := 1; j <= len(rb); j++ {
			above := row[j]

			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}

			row[j] = min(above+1, row[j-1]+1, diag+cost)
			diag = above
		}
	}

	return row[len(rb)]
}

// Normalize folds case and drops '-', '_', '.' and ':' so that "item-list",
// "itemList" and "ITEM_LIST" compare equal.
func Normalize(name string) string {
	var sb strings.Builder

	sb.Grow(len(name))

	for _, r := range name {
		switch r {
		case '-', '_', '.', ':':
			continue
		}

		sb.WriteRune(unicode.ToLower(r))
	}

	return sb.String()
}

// Similarity returns 1 for names equal after normalization and 0 for names
// with nothing in common.
func Similarity(a, b string) float64 {
	na, nb := Normalize(a), Normalize(b)

	longest := max(len([]rune(na)), len([]rune(nb)))
	if longest == 0 {
		return 1
	}

	return 1 - float64(Distance(na, nb))/float64(longest)
}

// Suggest returns up to DefaultLimit candidates whose similarity to name
// reaches DefaultThreshold, best first, ties in alphabetical order.
func Suggest(name string, candidates []string) []string {
	return SuggestN(name, candidates, DefaultThreshold, DefaultLimit)
}

// SuggestN is Suggest with an explicit threshold and limit.
func SuggestN(name string, candidates []string, threshold float64, limit int) []string {
	type scored struct {
		name  string
		score float64
	}

	seen := make(map[string]bool, len(candidates))

	var ranked []scored

	for _, c := range candidates {
		if c == name || seen[c] {
			continue
		}

		seen[c] = true

		if s := Similarity(name, c); s >= threshold {
			ranked = append(ranked, scored{name: c, score: s})
		}
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}

		return ranked[i].name < ranked[j].name
	})

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}

	out := make([]string, len(ranked))
	for i, r := range ranked {
		out[i] = r.name
	}

	return out
}
