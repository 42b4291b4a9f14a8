// Package scraper finds a third-party how-to page for a tutorial step and
// extracts a short passage from it.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/tucommenceapousser/tutodiy/models"
	"github.com/tucommenceapousser/tutodiy/pkg/analytics"
	"github.com/tucommenceapousser/tutodiy/pkg/detector"
	"github.com/tucommenceapousser/tutodiy/pkg/fetcher"
	"github.com/tucommenceapousser/tutodiy/pkg/mapreduce"
	"github.com/tucommenceapousser/tutodiy/pkg/parser"
	"github.com/tucommenceapousser/tutodiy/pkg/textutil"
)

var (
	// ErrNoResult means the search produced nothing usable for the step.
	ErrNoResult = errors.New("no matching how-to page")
	// ErrLanguageMismatch means the best passage is not in the expected language.
	ErrLanguageMismatch = errors.New("passage language does not match")
)

// maxPageBlocks bounds how much of a result page is considered.
const maxPageBlocks = 80

type Config struct {
	// SearchURL contains one %s that receives the query-escaped keywords.
	SearchURL      string
	ResultSelector string
	// Language is an ISO 639-1 code; empty disables the check.
	Language string
	MaxChars int
	Keywords int
}

// Passage is the extracted text and the page it came from.
type Passage struct {
	Text      string
	SourceURL string
	Title     string
	Keywords  []string
}

type Scraper struct {
	cfg      Config
	fetcher  *fetcher.Fetcher
	parser   *parser.Parser
	analytic *analytics.Analytics
	detector *detector.Detector
}

func New(cfg Config, f *fetcher.Fetcher, d *detector.Detector) *Scraper {
	if cfg.Keywords <= 0 {
		cfg.Keywords = models.DefaultScrapeKeywords
	}
	if cfg.MaxChars <= 0 {
		cfg.MaxChars = models.DefaultScrapeMaxChars
	}
	if cfg.ResultSelector == "" {
		cfg.ResultSelector = models.DefaultResultSelector
	}
	if f == nil {
		f = fetcher.NewFetcher()
	}
	if d == nil {
		d = detector.New()
	}
	return &Scraper{
		cfg:      cfg,
		fetcher:  f,
		parser:   &parser.Parser{},
		analytic: &analytics.Analytics{},
		detector: d,
	}
}

// Query returns the search keywords for step.
func (s *Scraper) Query(step string) []string {
	return s.analytic.TopNWords(step, s.cfg.Keywords)
}

// Scrape searches for step, follows the first result and returns its most
// relevant passage.
func (s *Scraper) Scrape(ctx context.Context, step string) (Passage, error) {
	keywords := s.Query(step)
	if len(keywords) == 0 {
		return Passage{}, fmt.Errorf("%w: step has no keywords", ErrNoResult)
	}

	resultURL, err := s.firstResult(ctx, keywords)
	if err != nil {
		return Passage{}, err
	}

	html, err := s.fetcher.GetHtmlBytes(ctx, resultURL)
	if err != nil {
		return Passage{}, fmt.Errorf("failed to fetch result page: %w", err)
	}
	page, err := s.parser.Parse(models.ParseRequest{URL: resultURL, HTML: string(html), MaxBlocks: maxPageBlocks})
	if err != nil {
		return Passage{}, fmt.Errorf("failed to parse result page: %w", err)
	}

	text := s.bestPassage(page, keywords)
	if text == "" {
		return Passage{}, fmt.Errorf("%w: %s has no readable text", ErrNoResult, resultURL)
	}
	if !s.detector.Matches(text, s.cfg.Language) {
		got, _ := s.detector.Detect(text)
		return Passage{}, fmt.Errorf("%w: want %s, got %s", ErrLanguageMismatch, s.cfg.Language, got)
	}

	return Passage{
		Text:      textutil.Truncate(text, s.cfg.MaxChars),
		SourceURL: resultURL,
		Title:     page.Title,
		Keywords:  keywords,
	}, nil
}

func (s *Scraper) firstResult(ctx context.Context, keywords []string) (string, error) {
	searchURL := fmt.Sprintf(s.cfg.SearchURL, url.QueryEscape(strings.Join(keywords, " ")))
	doc, err := s.fetcher.GetHtml(ctx, searchURL)
	if err != nil {
		return "", fmt.Errorf("failed to fetch search results: %w", err)
	}

	var link string
	doc.Find(s.cfg.ResultSelector).EachWithBreak(func(i int, sel *goquery.Selection) bool {
		href, ok := sel.Attr("href")
		if !ok {
			return true
		}
		link = textutil.ResolveLink(searchURL, href)
		return link == ""
	})
	if link == "" {
		return "", fmt.Errorf("%w: no result for %q", ErrNoResult, strings.Join(keywords, " "))
	}
	return link, nil
}

// bestPassage picks the body block sharing the most keywords with the step.
// Ties keep the earlier block; with no overlap at all the page excerpt or
// first paragraph is used.
func (s *Scraper) bestPassage(page *models.Page, keywords []string) string {
	paragraphs := page.Paragraphs()
	counts := mapreduce.MapAll(paragraphs, s.analytic)

	best, bestScore := -1, 0
	for i, words := range counts {
		score := 0
		for _, k := range keywords {
			score += words[k]
		}
		if score > bestScore {
			best, bestScore = i, score
		}
	}

	switch {
	case best >= 0:
		return paragraphs[best]
	case page.Excerpt != "":
		return page.Excerpt
	case len(paragraphs) > 0:
		return paragraphs[0]
	default:
		return ""
	}
}
