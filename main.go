package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/tucommenceapousser/tutodiy/internal/ask"
	"github.com/tucommenceapousser/tutodiy/internal/catalog"
	"github.com/tucommenceapousser/tutodiy/internal/enrich"
	"github.com/tucommenceapousser/tutodiy/internal/serve"
	"github.com/tucommenceapousser/tutodiy/models"
	"github.com/tucommenceapousser/tutodiy/pkg/help"
	"github.com/urfave/cli/v2"
)

func main() {
	// A missing .env file is fine
	_ = godotenv.Load()

	app := newApp()
	if err := app.Run(os.Args); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func sharedFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "config",
			Usage: "YAML config file (missing file means defaults)",
		},
		&cli.StringFlag{
			Name:  "catalog",
			Usage: "Tutorial source: empty for built-in, .db for SQLite, otherwise YAML",
		},
		&cli.StringFlag{
			Name:    "openai-api-key",
			EnvVars: []string{"OPENAI_API_KEY"},
			Usage:   "OpenAI credential for images and the openai ask provider",
		},
		&cli.StringFlag{
			Name:    "anthropic-api-key",
			EnvVars: []string{"ANTHROPIC_API_KEY"},
			Usage:   "Anthropic credential for the anthropic ask provider",
		},
		&cli.StringFlag{
			Name:  "backend",
			Usage: "Artifact backend: image, scrape, text or none",
		},
		&cli.StringFlag{
			Name:  "mode",
			Usage: "Enrichment mode: concurrent or sequential",
		},
		&cli.DurationFlag{
			Name:  "delay",
			Value: models.DefaultSequentialDelay,
			Usage: "Pause between calls in sequential mode",
		},
		&cli.StringFlag{
			Name:  "provider",
			Usage: "Ask provider: anthropic or openai",
		},
		&cli.StringFlag{
			Name:  "model",
			Usage: "Ask model name",
		},
		&cli.BoolFlag{
			Name:  "quiet",
			Usage: "Only log errors",
		},
		&cli.StringFlag{
			Name:  "log-format",
			Value: "json",
			Usage: "Log format: json or text",
		},
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "tutodiy",
		Usage: "DIY tutorials with per-step illustrations and a question assistant",
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "Run the HTTP server",
				Flags: append(sharedFlags(),
					&cli.StringFlag{
						Name:    "port",
						EnvVars: []string{"PORT"},
						Value:   models.DefaultPort,
						Usage:   "Listening port",
					},
				),
				Action: serve.ServeAction,
			},
			{
				Name:  "catalog",
				Usage: "Inspect and seed the tutorial catalog",
				Subcommands: []*cli.Command{
					{
						Name:   "list",
						Usage:  "List tutorials",
						Flags:  sharedFlags(),
						Action: catalog.ListAction,
					},
					{
						Name:      "show",
						Usage:     "Show one tutorial",
						ArgsUsage: "<id>",
						Flags: append(sharedFlags(),
							&cli.IntFlag{
								Name:  "keywords",
								Usage: "Also print the top N keywords",
							},
						),
						Action: catalog.ShowAction,
					},
					{
						Name:   "export",
						Usage:  "Print the catalog as YAML",
						Flags:  sharedFlags(),
						Action: catalog.ExportAction,
					},
					{
						Name:      "import",
						Usage:     "Copy a YAML catalog into SQLite",
						ArgsUsage: "<catalog.yaml>",
						Flags: append(sharedFlags(),
							&cli.StringFlag{
								Name:     "db",
								Required: true,
								Usage:    "SQLite file to create or update",
							},
						),
						Action: catalog.ImportAction,
					},
				},
			},
			{
				Name:      "enrich",
				Usage:     "Run the enrichment pipeline once and print the artifacts",
				ArgsUsage: "<id>",
				Flags:     sharedFlags(),
				Action:    enrich.EnrichAction,
			},
			{
				Name:      "ask",
				Usage:     "Ask the DIY assistant a question",
				ArgsUsage: "<question>",
				Flags:     sharedFlags(),
				Action:    ask.AskAction,
			},
			{
				Name:  "coldstart",
				Usage: "Print a quick-start guide",
				Action: func(c *cli.Context) error {
					fmt.Print(help.ColdstartYAML)
					return nil
				},
			},
		},
	}
}
