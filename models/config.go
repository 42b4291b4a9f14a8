// Package models defines data structures for configuration, the tutorial
// catalog and enrichment artifacts.
package models

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds runtime configuration for the server.
// File values come from an optional YAML file; credentials and the port come
// from CLI flags or the environment and are never read from the file.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Catalog CatalogConfig `yaml:"catalog"`
	Enrich  EnrichConfig  `yaml:"enrich"`
	Images  ImageConfig   `yaml:"images"`
	Scrape  ScrapeConfig  `yaml:"scrape"`
	Ask     AskConfig     `yaml:"ask"`

	OpenAIAPIKey    string `yaml:"-"`
	AnthropicAPIKey string `yaml:"-"`
}

type ServerConfig struct {
	Port            string        `yaml:"port"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	// AllowedOrigins enables cross-origin POST /ask from these origins.
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// CatalogConfig points at the tutorial source. An empty path uses the
// built-in catalog; a .db/.sqlite path opens a SQLite catalog; anything else
// is read as YAML.
type CatalogConfig struct {
	Path string `yaml:"path"`
}

type EnrichConfig struct {
	Backend       string        `yaml:"backend"`
	Mode          string        `yaml:"mode"`
	Delay         time.Duration `yaml:"delay"`
	Concurrency   int           `yaml:"concurrency"`
	Attempts      int           `yaml:"attempts"`
	RetryInterval time.Duration `yaml:"retry_interval"`
	StepTimeout   time.Duration `yaml:"step_timeout"`
}

type ImageConfig struct {
	BaseURL        string        `yaml:"base_url"`
	Model          string        `yaml:"model"`
	Size           string        `yaml:"size"`
	PromptTemplate string        `yaml:"prompt_template"`
	Timeout        time.Duration `yaml:"timeout"`
}

type ScrapeConfig struct {
	SearchURL      string        `yaml:"search_url"`
	ResultSelector string        `yaml:"result_selector"`
	Language       string        `yaml:"language"`
	MaxChars       int           `yaml:"max_chars"`
	Keywords       int           `yaml:"keywords"`
	UserAgent      string        `yaml:"user_agent"`
	Timeout        time.Duration `yaml:"timeout"`
}

type AskConfig struct {
	// Provider is "anthropic" or "openai".
	Provider       string        `yaml:"provider"`
	Model          string        `yaml:"model"`
	MaxTokens      int64         `yaml:"max_tokens"`
	PromptTemplate string        `yaml:"prompt_template"`
	Timeout        time.Duration `yaml:"timeout"`
}

const (
	DefaultPort            = "3000"
	DefaultShutdownTimeout = 30 * time.Second
	DefaultSequentialDelay = 2 * time.Second
	DefaultRetryInterval   = 500 * time.Millisecond
	DefaultImageBaseURL    = "https://api.openai.com/v1"
	DefaultImageModel      = "dall-e-2"
	DefaultImageSize       = "512x512"
	DefaultImagePrompt     = "Illustration réaliste DIY : %s. Style clair et précis."
	DefaultSearchURL       = "https://fr.wikihow.com/wikiHowTo?search=%s"
	DefaultResultSelector  = "a.result_link"
	DefaultScrapeLanguage  = "fr"
	DefaultScrapeMaxChars  = 600
	DefaultScrapeKeywords  = 5
	DefaultUserAgent       = "tutodiy/1.0 (+https://github.com/tucommenceapousser/tutodiy)"
	DefaultAskProvider     = "anthropic"
	DefaultAskModel        = "claude-3-5-haiku-latest"
	DefaultOpenAIAskModel  = "gpt-4o-mini"
	DefaultAskMaxTokens    = 150
	DefaultAskPrompt       = "Un utilisateur demande : %s. Répondez comme un guide DIY."
	DefaultUpstreamTimeout = 60 * time.Second
)

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Port:            DefaultPort,
			ShutdownTimeout: DefaultShutdownTimeout,
		},
		Enrich: EnrichConfig{
			Backend:       string(BackendImage),
			Mode:          EnrichModeConcurrent.String(),
			Delay:         DefaultSequentialDelay,
			Attempts:      1,
			RetryInterval: DefaultRetryInterval,
		},
		Images: ImageConfig{
			BaseURL:        DefaultImageBaseURL,
			Model:          DefaultImageModel,
			Size:           DefaultImageSize,
			PromptTemplate: DefaultImagePrompt,
			Timeout:        DefaultUpstreamTimeout,
		},
		Scrape: ScrapeConfig{
			SearchURL:      DefaultSearchURL,
			ResultSelector: DefaultResultSelector,
			Language:       DefaultScrapeLanguage,
			MaxChars:       DefaultScrapeMaxChars,
			Keywords:       DefaultScrapeKeywords,
			UserAgent:      DefaultUserAgent,
			Timeout:        DefaultUpstreamTimeout,
		},
		Ask: AskConfig{
			Provider:       DefaultAskProvider,
			MaxTokens:      DefaultAskMaxTokens,
			PromptTemplate: DefaultAskPrompt,
			Timeout:        DefaultUpstreamTimeout,
		},
	}
}

// LoadConfig reads a YAML config file on top of DefaultConfig.
// An empty path or a missing file yields the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if strings.TrimSpace(path) != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate fills zero values with defaults and rejects invalid settings.
func (c *Config) Validate() error {
	def := DefaultConfig()

	if strings.TrimSpace(c.Server.Port) == "" {
		c.Server.Port = def.Server.Port
	}
	if c.Server.ShutdownTimeout <= 0 {
		c.Server.ShutdownTimeout = def.Server.ShutdownTimeout
	}

	if _, err := ParseBackend(c.Enrich.Backend); err != nil {
		return err
	}
	if _, err := ParseEnrichMode(c.Enrich.Mode); err != nil {
		return err
	}
	if c.Enrich.Delay < 0 {
		return fmt.Errorf("enrich delay must not be negative, got %s", c.Enrich.Delay)
	}
	if c.Enrich.Concurrency < 0 {
		return fmt.Errorf("enrich concurrency must not be negative, got %d", c.Enrich.Concurrency)
	}
	if c.Enrich.Attempts <= 0 {
		c.Enrich.Attempts = 1
	}
	if c.Enrich.RetryInterval <= 0 {
		c.Enrich.RetryInterval = def.Enrich.RetryInterval
	}

	if c.Images.BaseURL == "" {
		c.Images.BaseURL = def.Images.BaseURL
	}
	if c.Images.Model == "" {
		c.Images.Model = def.Images.Model
	}
	if c.Images.Size == "" {
		c.Images.Size = def.Images.Size
	}
	if !strings.Contains(c.Images.PromptTemplate, "%s") {
		c.Images.PromptTemplate = def.Images.PromptTemplate
	}
	if c.Images.Timeout <= 0 {
		c.Images.Timeout = def.Images.Timeout
	}

	if !strings.Contains(c.Scrape.SearchURL, "%s") {
		c.Scrape.SearchURL = def.Scrape.SearchURL
	}
	if c.Scrape.ResultSelector == "" {
		c.Scrape.ResultSelector = def.Scrape.ResultSelector
	}
	if c.Scrape.MaxChars <= 0 {
		c.Scrape.MaxChars = def.Scrape.MaxChars
	}
	if c.Scrape.Keywords <= 0 {
		c.Scrape.Keywords = def.Scrape.Keywords
	}
	if c.Scrape.UserAgent == "" {
		c.Scrape.UserAgent = def.Scrape.UserAgent
	}
	if c.Scrape.Timeout <= 0 {
		c.Scrape.Timeout = def.Scrape.Timeout
	}

	switch strings.ToLower(c.Ask.Provider) {
	case "":
		c.Ask.Provider = def.Ask.Provider
	case "anthropic", "openai":
		c.Ask.Provider = strings.ToLower(c.Ask.Provider)
	default:
		return fmt.Errorf("unknown ask provider %q (want anthropic or openai)", c.Ask.Provider)
	}
	if c.Ask.Model == "" {
		c.Ask.Model = DefaultAskModel
		if c.Ask.Provider == "openai" {
			c.Ask.Model = DefaultOpenAIAskModel
		}
	}
	if c.Ask.MaxTokens <= 0 {
		c.Ask.MaxTokens = def.Ask.MaxTokens
	}
	if !strings.Contains(c.Ask.PromptTemplate, "%s") {
		c.Ask.PromptTemplate = def.Ask.PromptTemplate
	}
	if c.Ask.Timeout <= 0 {
		c.Ask.Timeout = def.Ask.Timeout
	}

	return nil
}

// EnrichMode returns the parsed pipeline mode. Validate must have succeeded.
func (c Config) EnrichMode() EnrichMode {
	mode, _ := ParseEnrichMode(c.Enrich.Mode)
	return mode
}

// Backend returns the parsed backend. Validate must have succeeded.
func (c Config) Backend() Backend {
	b, _ := ParseBackend(c.Enrich.Backend)
	return b
}
