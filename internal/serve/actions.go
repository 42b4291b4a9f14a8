package serve

import (
	"fmt"
	"net"
	"os/signal"
	"syscall"

	"github.com/tucommenceapousser/tutodiy/internal/common"
	"github.com/tucommenceapousser/tutodiy/models"
	"github.com/tucommenceapousser/tutodiy/pkg/server"
	"github.com/urfave/cli/v2"
)

func ServeAction(c *cli.Context) error {
	logger := common.Logger(c)

	cfg, err := common.LoadConfig(c)
	if err != nil {
		return err
	}

	cat, closeCatalog, err := common.OpenCatalog(cfg.Catalog.Path)
	if err != nil {
		return fmt.Errorf("failed to open catalog: %w", err)
	}
	defer closeCatalog()

	client := common.NewOpenAIClient(cfg)
	enricher, err := common.NewEnricher(cfg, client, common.NewCompleter(cfg, client), logger)
	if err != nil {
		return fmt.Errorf("failed to build enrichment pipeline: %w", err)
	}
	asker := common.NewAsker(cfg, client, logger)

	if cfg.OpenAIAPIKey == "" && (cfg.Backend() == models.BackendImage || cfg.Ask.Provider == "openai") {
		logger.Warn("OPENAI_API_KEY is not set, OpenAI calls will degrade to placeholders")
	}
	if cfg.AnthropicAPIKey == "" && cfg.Ask.Provider == "anthropic" {
		logger.Warn("ANTHROPIC_API_KEY is not set, questions will get the fallback answer")
	}

	srv, err := server.New(cat, enricher, asker,
		server.WithLogger(logger),
		server.WithAllowedOrigins(cfg.Server.AllowedOrigins),
	)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("Serving tutorials",
		"port", cfg.Server.Port,
		"backend", cfg.Backend(),
		"mode", cfg.EnrichMode().String(),
		"ask_provider", cfg.Ask.Provider)

	return srv.ListenAndServe(ctx, net.JoinHostPort("", cfg.Server.Port), cfg.Server.ShutdownTimeout)
}
