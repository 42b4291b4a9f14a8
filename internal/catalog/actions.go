package catalog

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/tucommenceapousser/tutodiy/internal/common"
	"github.com/tucommenceapousser/tutodiy/models"
	"github.com/tucommenceapousser/tutodiy/pkg/analytics"
	catalogpkg "github.com/tucommenceapousser/tutodiy/pkg/catalog"
	dbpkg "github.com/tucommenceapousser/tutodiy/pkg/db"
	"github.com/tucommenceapousser/tutodiy/pkg/mapreduce"
	"github.com/tucommenceapousser/tutodiy/pkg/textutil"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

func open(c *cli.Context) (catalogpkg.Catalog, func() error, error) {
	cfg, err := common.LoadConfig(c)
	if err != nil {
		return nil, func() error { return nil }, err
	}
	return common.OpenCatalog(cfg.Catalog.Path)
}

// ListAction prints every tutorial as a table.
func ListAction(c *cli.Context) error {
	cat, closeCatalog, err := open(c)
	if err != nil {
		return err
	}
	defer closeCatalog()

	tutorials, err := cat.List(c.Context)
	if err != nil {
		return fmt.Errorf("failed to list tutorials: %w", err)
	}
	if len(tutorials) == 0 {
		fmt.Println("No tutorials found")
		return nil
	}

	fmt.Printf("%-12s %-6s %-50s\n", "ID", "Steps", "Title")
	fmt.Println(strings.Repeat("-", 70))
	for _, t := range tutorials {
		fmt.Printf("%-12s %-6d %-50s\n", t.ID, len(t.Steps), textutil.Truncate(t.Title, 50))
	}
	fmt.Printf("\nTotal: %d tutorials\n", len(tutorials))
	fmt.Printf("\nTip: Use 'tutodiy catalog show <id>' to see the steps\n")
	return nil
}

// ShowAction prints one tutorial, optionally with its top keywords.
func ShowAction(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("usage: tutodiy catalog show <id>")
	}
	id := c.Args().First()

	cat, closeCatalog, err := open(c)
	if err != nil {
		return err
	}
	defer closeCatalog()

	t, err := cat.Find(c.Context, id)
	if err != nil {
		return err
	}

	fmt.Printf("%s (%s)\n", t.Title, t.ID)
	if t.Description != "" {
		fmt.Printf("%s\n", t.Description)
	}
	fmt.Println()
	for i, step := range t.Steps {
		fmt.Printf("%2d. %s\n", i+1, step)
	}

	if n := c.Int("keywords"); n > 0 {
		fmt.Println()
		fmt.Println("Keywords:")
		for i, k := range Keywords(t, n) {
			fmt.Printf("%d. %s\n", i+1, k)
		}
	}
	return nil
}

// Keywords aggregates word counts over the title and steps of t.
func Keywords(t models.Tutorial, n int) []mapreduce.Keyword {
	a := &analytics.Analytics{}
	texts := append([]string{t.Title}, t.Steps...)
	return mapreduce.TopKeywords(mapreduce.Reduce(mapreduce.MapAll(texts, a)), n)
}

// ImportAction copies a YAML catalog into a SQLite database.
func ImportAction(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("usage: tutodiy catalog import --db <file> <catalog.yaml>")
	}
	logger := common.Logger(c)

	src, err := catalogpkg.LoadFile(c.Args().First())
	if err != nil {
		return err
	}

	database, err := dbpkg.Open(c.String("db"))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	n, err := Import(c.Context, src, database)
	if err != nil {
		return err
	}
	logger.Info("Imported tutorials", "count", n, "db", database.Path())
	return nil
}

// Import upserts every tutorial of src into database.
func Import(ctx context.Context, src catalogpkg.Catalog, database *dbpkg.DB) (int, error) {
	tutorials, err := src.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list source tutorials: %w", err)
	}
	for _, t := range tutorials {
		if err := database.UpsertTutorial(ctx, t); err != nil {
			return 0, fmt.Errorf("failed to import tutorial %q: %w", t.ID, err)
		}
	}
	return len(tutorials), nil
}

// ExportAction writes the configured catalog as YAML to stdout.
func ExportAction(c *cli.Context) error {
	cat, closeCatalog, err := open(c)
	if err != nil {
		return err
	}
	defer closeCatalog()

	tutorials, err := cat.List(c.Context)
	if err != nil {
		return fmt.Errorf("failed to list tutorials: %w", err)
	}

	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(catalogpkg.File{Tutorials: tutorials})
}
