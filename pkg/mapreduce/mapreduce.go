package mapreduce

import "github.com/tucommenceapousser/tutodiy/pkg/analytics"

// Map generates a word frequency map for a single piece of text.
func Map(content string, a *analytics.Analytics) map[string]int {
	return a.WordFrequency(content)
}

// MapAll maps each text independently.
func MapAll(contents []string, a *analytics.Analytics) []map[string]int {
	out := make([]map[string]int, 0, len(contents))
	for _, c := range contents {
		out = append(out, Map(c, a))
	}
	return out
}

// Reduce aggregates a slice of word frequency maps into a single map.
func Reduce(intermediate []map[string]int) map[string]int {
	finalResults := make(map[string]int)

	for _, counts := range intermediate {
		for word, count := range counts {
			finalResults[word] += count
		}
	}

	return finalResults
}
