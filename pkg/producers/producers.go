// Package producers holds the per-step artifact backends used by the
// enrichment pipeline.
package producers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/tucommenceapousser/tutodiy/models"
	"github.com/tucommenceapousser/tutodiy/pkg/detector"
	"github.com/tucommenceapousser/tutodiy/pkg/enrich"
	"github.com/tucommenceapousser/tutodiy/pkg/fetcher"
	"github.com/tucommenceapousser/tutodiy/pkg/llm"
	"github.com/tucommenceapousser/tutodiy/pkg/openai"
	"github.com/tucommenceapousser/tutodiy/pkg/scraper"
)

// DefaultExplainPrompt asks the completer to expand on a single step.
const DefaultExplainPrompt = "Expliquez en deux phrases comment réussir cette étape de bricolage : %s"

// Image generates one illustration per step.
type Image struct {
	Client *openai.Client
	Model  string
	Size   string
	// Prompt contains one %s for the step text.
	Prompt string
}

func (p *Image) Produce(ctx context.Context, step string) (models.Artifact, error) {
	url, err := p.Client.CreateImage(ctx, openai.ImageRequest{
		Model:  p.Model,
		Prompt: fmt.Sprintf(p.Prompt, step),
		N:      1,
		Size:   p.Size,
	})
	if err != nil {
		return models.Unavailable(), classify(err)
	}
	return models.ImageArtifact(url), nil
}

// Scrape attaches a passage from a third-party how-to page.
type Scrape struct {
	Scraper *scraper.Scraper
}

func (p *Scrape) Produce(ctx context.Context, step string) (models.Artifact, error) {
	passage, err := p.Scraper.Scrape(ctx, step)
	if err != nil {
		return models.Unavailable(), classify(err)
	}
	return models.TextArtifact(passage.Text, passage.SourceURL), nil
}

// Text asks the completer for a short explanation of the step.
type Text struct {
	Completer llm.Completer
	Prompt    string
}

func (p *Text) Produce(ctx context.Context, step string) (models.Artifact, error) {
	reply, err := p.Completer.Complete(ctx, fmt.Sprintf(p.Prompt, step))
	if err != nil {
		return models.Unavailable(), classify(err)
	}
	return models.TextArtifact(reply, "assistant"), nil
}

// None never calls anything.
type None struct{}

func (None) Produce(context.Context, string) (models.Artifact, error) {
	return models.Unavailable(), enrich.ErrDisabled
}

// classify marks credential and access failures as affecting every step.
func classify(err error) error {
	if llm.IsUnauthorized(err) {
		return fmt.Errorf("%w: %w", enrich.ErrUpstreamUnavailable, err)
	}
	var statusErr *fetcher.StatusError
	if errors.As(err, &statusErr) &&
		(statusErr.StatusCode == http.StatusUnauthorized || statusErr.StatusCode == http.StatusForbidden) {
		return fmt.Errorf("%w: %w", enrich.ErrUpstreamUnavailable, err)
	}
	return err
}

// New builds the producer for cfg's backend.
func New(cfg models.Config, client *openai.Client, completer llm.Completer) (enrich.Producer, error) {
	switch cfg.Backend() {
	case models.BackendImage:
		return &Image{
			Client: client,
			Model:  cfg.Images.Model,
			Size:   cfg.Images.Size,
			Prompt: cfg.Images.PromptTemplate,
		}, nil
	case models.BackendScrape:
		f := fetcher.NewFetcher(
			fetcher.WithUserAgent(cfg.Scrape.UserAgent),
			fetcher.WithTimeout(cfg.Scrape.Timeout),
		)
		s := scraper.New(scraper.Config{
			SearchURL:      cfg.Scrape.SearchURL,
			ResultSelector: cfg.Scrape.ResultSelector,
			Language:       cfg.Scrape.Language,
			MaxChars:       cfg.Scrape.MaxChars,
			Keywords:       cfg.Scrape.Keywords,
		}, f, detector.New())
		return &Scrape{Scraper: s}, nil
	case models.BackendText:
		return &Text{Completer: completer, Prompt: DefaultExplainPrompt}, nil
	case models.BackendNone:
		return None{}, nil
	default:
		return nil, fmt.Errorf("unknown enrich backend %q", cfg.Enrich.Backend)
	}
}
