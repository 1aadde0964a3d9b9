package exam

import (
	"sort"

	"github.com/antzucaro/matchr"
)

const minSuggestionSimilarity = 0.85

func suggestCourse(code string, courses map[string]string) string {
	known := make([]string, 0, len(courses))
	for k := range courses {
		known = append(known, k)
	}
	// iterate in a fixed order so ties resolve the same way every run
	sort.Strings(known)

	var best string
	var bestSimilarity float64
	for _, candidate := range known {
		similarity := matchr.JaroWinkler(code, candidate, false)
		if similarity > bestSimilarity {
			bestSimilarity = similarity
			best = candidate
		}
	}
	if bestSimilarity < minSuggestionSimilarity {
		return ""
	}
	return best
}
