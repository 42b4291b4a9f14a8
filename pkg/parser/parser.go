package parser

import (
	"bufio"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
	"github.com/tucommenceapousser/tutodiy/models"
)

type Parser struct{}

// Parse uses go-readability to isolate the main article of a how-to page and
// then walks the cleaned markup with goquery, keeping headings, paragraphs
// and list items in document order.
func (p *Parser) Parse(req models.ParseRequest) (*models.Page, error) {
	parsedURL, err := url.Parse(req.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse page url: %w", err)
	}

	rp := readability.NewParser()
	article, err := rp.Parse(strings.NewReader(req.HTML), parsedURL)
	if err != nil {
		return nil, fmt.Errorf("failed to extract article: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(article.Content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse article HTML: %w", err)
	}

	var content []models.ContentBlock
	doc.Find("h1,h2,h3,p,li").EachWithBreak(func(i int, s *goquery.Selection) bool {
		// A list item that wraps its own paragraph would be counted twice.
		if goquery.NodeName(s) == "li" && s.Find("p").Length() > 0 {
			return true
		}
		text := normalizeText(s.Text())
		if text == "" {
			return true
		}
		content = append(content, models.ContentBlock{
			Type: goquery.NodeName(s),
			Text: text,
		})
		return req.MaxBlocks <= 0 || len(content) < req.MaxBlocks
	})

	return &models.Page{
		URL:     req.URL,
		Title:   normalizeText(article.Title),
		Excerpt: normalizeText(article.Excerpt),
		Content: content,
	}, nil
}

// normalizeText cleans up a string by trimming space and removing excess newlines.
func normalizeText(input string) string {
	var b strings.Builder
	b.Grow(len(input))
	scanner := bufio.NewScanner(strings.NewReader(input))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			b.WriteString(line)
			b.WriteString(" ")
		}
	}
	return strings.TrimSpace(b.String())
}
