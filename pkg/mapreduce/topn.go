package mapreduce

import (
	"fmt"
	"sort"
	"unicode"
	"unicode/utf8"
)

// isValidKeyword drops tokens that carry no topic: single characters and
// bare numbers such as step counts or measurements.
func isValidKeyword(word string) bool {
	if utf8.RuneCountInString(word) < 2 {
		return false
	}
	for _, r := range word {
		if !unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

// Keyword is a word and its aggregated count.
type Keyword struct {
	Word  string
	Count int
}

func (k Keyword) String() string {
	return fmt.Sprintf("%s:%d", k.Word, k.Count)
}

// TopKeywords returns the n most frequent valid keywords, highest count
// first, ties in alphabetical order.
func TopKeywords(wordCounts map[string]int, n int) []Keyword {
	var ss []Keyword
	for k, v := range wordCounts {
		if isValidKeyword(k) {
			ss = append(ss, Keyword{k, v})
		}
	}

	sort.Slice(ss, func(i, j int) bool {
		if ss[i].Count != ss[j].Count {
			return ss[i].Count > ss[j].Count
		}
		return ss[i].Word < ss[j].Word
	})

	limit := n
	if len(ss) < n {
		limit = len(ss)
	}
	if limit < 0 {
		limit = 0
	}

	return ss[:limit]
}
