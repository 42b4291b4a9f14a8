package textutil

import (
	"testing"
	"unicode/utf8"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"short", "Un clou.", 20, "Un clou."},
		{"no limit", "Un clou en fer.", 0, "Un clou en fer."},
		{"word boundary", "Enroulez le fil de cuivre autour du clou", 20, "Enroulez le fil de…"},
		{"multibyte", "ééééééééééééééé", 5, "éééé…"},
		{"trailing punctuation", "Reliez, ensuite, la pile", 16, "Reliez, ensuite…"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Truncate(tt.in, tt.max)
			if got != tt.want {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
			}
			if tt.max > 0 && utf8.RuneCountInString(got) > tt.max {
				t.Errorf("Truncate() returned %d runes, limit %d", utf8.RuneCountInString(got), tt.max)
			}
		})
	}
}

func TestSanitizeURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  https://example.com/a  ", "https://example.com/a"},
		{"[guide](https://example.com/guide)", "https://example.com/guide"},
		{"(https://example.com/x),", "https://example.com/x"},
		{"<https://example.com>", "https://example.com"},
	}
	for _, tt := range tests {
		if got := SanitizeURL(tt.in); got != tt.want {
			t.Errorf("SanitizeURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestResolveLink(t *testing.T) {
	base := "https://fr.wikihow.com/wikiHowTo?search=clou"
	tests := []struct {
		href string
		want string
	}{
		{"/Fabriquer-un-%C3%A9lectroaimant", "https://fr.wikihow.com/Fabriquer-un-%C3%A9lectroaimant"},
		{"https://other.example/guide#etape-2", "https://other.example/guide"},
		{"#top", ""},
		{"javascript:void(0)", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := ResolveLink(base, tt.href); got != tt.want {
			t.Errorf("ResolveLink(%q) = %q, want %q", tt.href, got, tt.want)
		}
	}
}
