package common

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/tucommenceapousser/tutodiy/models"
	"github.com/tucommenceapousser/tutodiy/pkg/ask"
	"github.com/tucommenceapousser/tutodiy/pkg/catalog"
	"github.com/tucommenceapousser/tutodiy/pkg/db"
	"github.com/tucommenceapousser/tutodiy/pkg/enrich"
	"github.com/tucommenceapousser/tutodiy/pkg/llm"
	"github.com/tucommenceapousser/tutodiy/pkg/openai"
	"github.com/tucommenceapousser/tutodiy/pkg/producers"
	"github.com/urfave/cli/v2"
)

// LoadConfig reads --config and applies the flag overrides every command
// shares. Flags that were not set leave the file values alone.
func LoadConfig(c *cli.Context) (models.Config, error) {
	cfg, err := models.LoadConfig(c.String("config"))
	if err != nil {
		return models.Config{}, err
	}

	if c.IsSet("port") {
		cfg.Server.Port = c.String("port")
	}
	if c.IsSet("catalog") {
		cfg.Catalog.Path = c.String("catalog")
	}
	if c.IsSet("backend") {
		cfg.Enrich.Backend = c.String("backend")
	}
	if c.IsSet("mode") {
		cfg.Enrich.Mode = c.String("mode")
	}
	if c.IsSet("delay") {
		cfg.Enrich.Delay = c.Duration("delay")
	}
	if c.IsSet("provider") {
		cfg.Ask.Provider = c.String("provider")
		if !c.IsSet("model") {
			cfg.Ask.Model = ""
		}
	}
	if c.IsSet("model") {
		cfg.Ask.Model = c.String("model")
	}
	cfg.OpenAIAPIKey = c.String("openai-api-key")
	cfg.AnthropicAPIKey = c.String("anthropic-api-key")

	if err := cfg.Validate(); err != nil {
		return models.Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Logger builds the logger from the global --log-format and --quiet flags.
func Logger(c *cli.Context) *slog.Logger {
	return NewLogger(c.String("log-format"), c.Bool("quiet"))
}

// OpenCatalog opens the tutorial source named by path: the built-in catalog
// when empty, SQLite for .db/.sqlite files, YAML otherwise. The returned
// close function is never nil.
func OpenCatalog(path string) (catalog.Catalog, func() error, error) {
	noop := func() error { return nil }
	path = strings.TrimSpace(path)

	if path == "" {
		cat, err := catalog.Default()
		if err != nil {
			return nil, noop, fmt.Errorf("failed to load built-in catalog: %w", err)
		}
		return cat, noop, nil
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		database, err := db.Open(path)
		if err != nil {
			return nil, noop, err
		}
		return database, database.Close, nil
	}

	cat, err := catalog.LoadFile(path)
	if err != nil {
		return nil, noop, err
	}
	return cat, noop, nil
}

// NewOpenAIClient builds the image and chat client from cfg.
func NewOpenAIClient(cfg models.Config) *openai.Client {
	return openai.NewClient(cfg.OpenAIAPIKey,
		openai.WithBaseURL(cfg.Images.BaseURL),
		openai.WithTimeout(cfg.Images.Timeout),
	)
}

// NewPipeline builds the pipeline and the producer for the configured backend.
func NewPipeline(cfg models.Config, client *openai.Client, completer llm.Completer, logger *slog.Logger) (*enrich.Pipeline, enrich.Producer, error) {
	producer, err := producers.New(cfg, client, completer)
	if err != nil {
		return nil, nil, err
	}
	pipeline := enrich.New(enrich.Config{
		Mode:          cfg.EnrichMode(),
		Delay:         cfg.Enrich.Delay,
		Concurrency:   cfg.Enrich.Concurrency,
		Attempts:      cfg.Enrich.Attempts,
		RetryInterval: cfg.Enrich.RetryInterval,
		StepTimeout:   cfg.Enrich.StepTimeout,
		Backend:       string(cfg.Backend()),
		Logger:        logger,
	})
	return pipeline, producer, nil
}

// NewEnricher wires the configured backend into a pipeline.
func NewEnricher(cfg models.Config, client *openai.Client, completer llm.Completer, logger *slog.Logger) (*enrich.Bound, error) {
	pipeline, producer, err := NewPipeline(cfg, client, completer, logger)
	if err != nil {
		return nil, err
	}
	return pipeline.Bind(producer), nil
}

// NewAsker builds the question answering service from cfg.
func NewAsker(cfg models.Config, client *openai.Client, logger *slog.Logger) *ask.Service {
	return ask.NewService(NewCompleter(cfg, client),
		ask.WithPrompt(cfg.Ask.PromptTemplate),
		ask.WithTimeout(cfg.Ask.Timeout),
		ask.WithLogger(logger),
	)
}

func NewCompleter(cfg models.Config, client *openai.Client) llm.Completer {
	return llm.New(cfg.Ask, cfg.AnthropicAPIKey, client)
}
