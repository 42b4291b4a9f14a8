package enrich

import (
	"fmt"
	"os"
	"time"

	"github.com/tucommenceapousser/tutodiy/internal/common"
	enrichpkg "github.com/tucommenceapousser/tutodiy/pkg/enrich"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

// StepReport is the printed outcome of one step.
type StepReport struct {
	Index    int    `yaml:"index"`
	Step     string `yaml:"step"`
	Kind     string `yaml:"kind"`
	URL      string `yaml:"url,omitempty"`
	Text     string `yaml:"text,omitempty"`
	Source   string `yaml:"source,omitempty"`
	Attempts int    `yaml:"attempts,omitempty"`
	Skipped  bool   `yaml:"skipped,omitempty"`
	Error    string `yaml:"error,omitempty"`
}

type Report struct {
	TutorialID string       `yaml:"tutorial_id"`
	Backend    string       `yaml:"backend"`
	Mode       string       `yaml:"mode"`
	Elapsed    string       `yaml:"elapsed"`
	Failed     int          `yaml:"failed"`
	Steps      []StepReport `yaml:"steps"`
}

// EnrichAction runs the pipeline once for a tutorial and prints the outcomes.
func EnrichAction(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("usage: tutodiy enrich <id>")
	}
	id := c.Args().First()
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

	t, err := cat.Find(c.Context, id)
	if err != nil {
		return err
	}

	client := common.NewOpenAIClient(cfg)
	pipeline, producer, err := common.NewPipeline(cfg, client, common.NewCompleter(cfg, client), logger)
	if err != nil {
		return err
	}

	res := pipeline.Run(c.Context, t.Steps, producer)
	report := BuildReport(id, string(cfg.Backend()), pipeline.Mode().String(), res)

	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(report)
}

// BuildReport converts a pipeline result into its printable form.
func BuildReport(id, backend, mode string, res enrichpkg.Result) Report {
	report := Report{
		TutorialID: id,
		Backend:    backend,
		Mode:       mode,
		Elapsed:    res.Elapsed.Round(time.Millisecond).String(),
		Failed:     res.Failed(),
		Steps:      make([]StepReport, 0, len(res.Outcomes)),
	}
	for _, o := range res.Outcomes {
		a := o.Value()
		sr := StepReport{
			Index:    o.Index,
			Step:     o.Step,
			Kind:     string(a.Kind),
			URL:      a.URL,
			Text:     a.Text,
			Source:   a.Source,
			Attempts: o.Attempts,
			Skipped:  o.Skipped,
		}
		if o.Err != nil {
			sr.Error = o.Err.Error()
		}
		report.Steps = append(report.Steps, sr)
	}
	return report
}
