// Package detector guesses the language of scraped text.
package detector

import (
	"net/url"
	"strings"

	"github.com/pemistahl/lingua-go"
)

// minDetectableRunes is the shortest text the statistical detector is asked
// about. Anything shorter is accepted as-is.
const minDetectableRunes = 20

var supported = []lingua.Language{
	lingua.French,
	lingua.English,
	lingua.Spanish,
	lingua.German,
	lingua.Italian,
	lingua.Portuguese,
}

// Detector is safe for concurrent use.
type Detector struct {
	lingua lingua.LanguageDetector
}

func New() *Detector {
	return &Detector{
		lingua: lingua.NewLanguageDetectorBuilder().
			FromLanguages(supported...).
			Build(),
	}
}

// Detect returns the lowercase ISO 639-1 code of text, or false when the
// text is too short or ambiguous.
func (d *Detector) Detect(text string) (string, bool) {
	text = strings.TrimSpace(text)
	if len([]rune(text)) < minDetectableRunes {
		return "", false
	}
	lang, ok := d.lingua.DetectLanguageOf(text)
	if !ok {
		return "", false
	}
	return strings.ToLower(lang.IsoCode639_1().String()), true
}

// Matches reports whether text is written in want. An empty want, or text
// the detector cannot classify, always matches.
func (d *Detector) Matches(text, want string) bool {
	want = strings.TrimSpace(want)
	if want == "" {
		return true
	}
	got, ok := d.Detect(text)
	if !ok {
		return true
	}
	return strings.EqualFold(got, want)
}

// HintFromURL guesses a language from a host such as fr.wikihow.com or
// example.de. It returns "" when there is no signal.
func HintFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	parts := strings.Split(host, ".")
	if len(parts) < 2 {
		return ""
	}

	if len(parts) > 2 {
		if lang, ok := subdomainLanguages[parts[0]]; ok {
			return lang
		}
	}

	tld := parts[len(parts)-1]
	if lang, ok := tldLanguages[tld]; ok {
		return lang
	}
	return ""
}

var subdomainLanguages = map[string]string{
	"fr": "fr", "en": "en", "es": "es", "de": "de", "it": "it", "pt": "pt",
}

var tldLanguages = map[string]string{
	"fr": "fr", "be": "fr", "uk": "en", "us": "en", "au": "en",
	"es": "es", "mx": "es", "de": "de", "at": "de", "it": "it",
	"pt": "pt", "br": "pt",
}
