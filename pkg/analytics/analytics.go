package analytics

import (
	"sort"
	"strings"
	"unicode"
)

type Analytics struct{}

// commonWords holds French and English words ignored in frequency analysis.
// Entries are lowercase; apostrophe contractions are split before lookup, so
// "l'aimant" is counted as "aimant".
var commonWords = map[string]struct{}{
	// French
	"a": {}, "à": {}, "afin": {}, "ai": {}, "ainsi": {}, "alors": {}, "après": {},
	"au": {}, "aucun": {}, "aussi": {}, "autour": {}, "autre": {}, "autres": {}, "aux": {},
	"avant": {}, "avec": {}, "avez": {}, "avoir": {},
	"bien": {},
	"c": {}, "ça": {}, "car": {}, "ce": {}, "cela": {}, "celle": {}, "celui": {}, "ces": {},
	"cet": {}, "cette": {}, "chaque": {}, "chez": {}, "comme": {}, "comment": {},
	"d": {}, "dans": {}, "de": {}, "des": {}, "deux": {}, "donc": {}, "dont": {}, "du": {},
	"elle": {}, "elles": {}, "en": {}, "encore": {}, "entre": {}, "est": {}, "et": {},
	"été": {}, "être": {}, "eux": {},
	"fait": {}, "faire": {}, "faites": {},
	"il": {}, "ils": {},
	"j": {}, "je": {}, "jusqu": {},
	"l": {}, "la": {}, "le": {}, "les": {}, "leur": {}, "leurs": {}, "lui": {},
	"m": {}, "ma": {}, "mais": {}, "me": {}, "même": {}, "mes": {}, "moi": {}, "mon": {},
	"n": {}, "ne": {}, "ni": {}, "nos": {}, "notre": {}, "nous": {},
	"on": {}, "ont": {}, "ou": {}, "où": {},
	"par": {}, "pas": {}, "peu": {}, "peut": {}, "plus": {}, "pour": {}, "pouvez": {},
	"qu": {}, "quand": {}, "que": {}, "quel": {}, "quelle": {}, "qui": {},
	"s": {}, "sa": {}, "sans": {}, "se": {}, "ses": {}, "si": {}, "son": {}, "sont": {},
	"sous": {}, "sur": {},
	"t": {}, "ta": {}, "te": {}, "tes": {}, "toi": {}, "ton": {}, "tous": {}, "tout": {},
	"toute": {}, "toutes": {}, "très": {}, "tu": {},
	"un": {}, "une": {}, "unes": {}, "uns": {},
	"vers": {}, "via": {}, "vos": {}, "votre": {}, "vous": {},
	"y": {},

	// English
	"about": {}, "after": {}, "all": {}, "also": {}, "an": {}, "and": {}, "any": {},
	"are": {}, "as": {}, "at": {},
	"be": {}, "because": {}, "been": {}, "before": {}, "being": {}, "both": {}, "but": {}, "by": {},
	"can": {}, "could": {},
	"did": {}, "do": {}, "does": {}, "down": {},
	"each": {}, "every": {},
	"for": {}, "from": {},
	"had": {}, "has": {}, "have": {}, "he": {}, "her": {}, "here": {}, "his": {}, "how": {},
	"i": {}, "if": {}, "in": {}, "into": {}, "is": {}, "it": {}, "its": {},
	"just": {},
	"make": {}, "more": {}, "most": {}, "my": {},
	"no": {}, "not": {}, "now": {},
	"of": {}, "off": {}, "once": {}, "one": {}, "only": {}, "or": {}, "other": {}, "our": {},
	"out": {}, "over": {},
	"same": {}, "she": {}, "should": {}, "so": {}, "some": {}, "such": {},
	"than": {}, "that": {}, "the": {}, "their": {}, "them": {}, "then": {}, "there": {},
	"these": {}, "they": {}, "this": {}, "those": {}, "through": {}, "to": {}, "too": {},
	"up": {}, "use": {},
	"very": {},
	"was": {}, "we": {}, "were": {}, "what": {}, "when": {}, "where": {}, "which": {},
	"while": {}, "who": {}, "will": {}, "with": {}, "would": {},
	"you": {}, "your": {},

	// Common web/UI noise words
	"click": {}, "cliquez": {}, "menu": {}, "page": {}, "site": {}, "lien": {}, "link": {},
}

// IsStopword checks if a word is a common stopword that should be filtered out.
func IsStopword(word string) bool {
	_, exists := commonWords[strings.ToLower(word)]
	return exists
}

// Tokens splits text into lowercase words. Letters and digits in any script
// are kept; everything else, including apostrophes, separates words.
func Tokens(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func (a *Analytics) WordFrequency(text string) map[string]int {
	frequencies := make(map[string]int)

	for _, word := range Tokens(text) {
		if _, exists := commonWords[word]; exists {
			continue
		}
		frequencies[word]++
	}

	return frequencies
}

type wordCount struct {
	Word  string
	Count int
}

// TopNWords returns the n most frequent words. Ties are broken by first
// appearance in text, so a single sentence keeps its word order.
func (a *Analytics) TopNWords(text string, n int) []string {
	frequencies := a.WordFrequency(text)

	counts := make([]wordCount, 0, len(frequencies))
	seen := make(map[string]bool, len(frequencies))
	for _, word := range Tokens(text) {
		if count, ok := frequencies[word]; ok && !seen[word] {
			seen[word] = true
			counts = append(counts, wordCount{word, count})
		}
	}

	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Count > counts[j].Count
	})

	limit := n
	if len(counts) < n {
		limit = len(counts)
	}
	if limit < 0 {
		limit = 0
	}

	topN := make([]string, limit)
	for i := 0; i < limit; i++ {
		topN[i] = counts[i].Word
	}

	return topN
}
