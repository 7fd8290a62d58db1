package match

import "sort"

// MinSuggestionScore is the lowest Similarity that still counts
// as a plausible suggestion.
const MinSuggestionScore = 0.7

// Suggest returns up to limit candidates whose folded names are closest to
// name, best first. Candidates scoring below MinSuggestionScore are dropped.
func Suggest(name string, candidates []string, limit int) []string {
	if limit <= 0 || len(candidates) == 0 {
		return nil
	}

	type scored struct {
		name  string
		score float64
	}

	folded := Fold(name)

	var ranked []scored

	for _, c := range candidates {
		if c == name {
			continue
		}

		score := Similarity(folded, Fold(c))
		if score < MinSuggestionScore {
			continue
		}

		ranked = append(ranked, scored{name: c, score: score})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	out := make([]string, len(ranked))
	for i, r := range ranked {
		out[i] = r.name
	}

	return out
}
