// Package enrich attaches one artifact to each tutorial step.
//
// A Pipeline runs an injected Producer once per step, either all at once
// (concurrent) or one at a time with a fixed delay between calls
// (sequential). Failures never escape: each failed step becomes the
// unavailable sentinel at its own index, so the returned artifacts always
// have the same length and order as the steps.
package enrich

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/cenkalti/backoff/v5"
	"github.com/jonboulle/clockwork"
	"github.com/tucommenceapousser/tutodiy/models"
	"github.com/tucommenceapousser/tutodiy/pkg/metrics"
)

var (
	// ErrUpstreamUnavailable marks a failure that will affect every step,
	// such as rejected credentials. It is never retried.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	// ErrDisabled is returned by producers that intentionally yield nothing.
	ErrDisabled = errors.New("artifact backend disabled")
	// ErrEmptyArtifact is recorded when a producer succeeds without content.
	ErrEmptyArtifact = errors.New("producer returned an empty artifact")
)

// Producer acquires the artifact for a single step.
type Producer interface {
	Produce(ctx context.Context, step string) (models.Artifact, error)
}

// ProducerFunc adapts a function to Producer.
type ProducerFunc func(ctx context.Context, step string) (models.Artifact, error)

func (f ProducerFunc) Produce(ctx context.Context, step string) (models.Artifact, error) {
	return f(ctx, step)
}

// Config controls a Pipeline. Zero values are usable: concurrent mode, one
// attempt per step, real clock, discarded logs.
type Config struct {
	Mode models.EnrichMode
	// Delay is the pause after each completed call in sequential mode.
	Delay time.Duration
	// Concurrency caps in-flight calls in concurrent mode; zero means every step.
	Concurrency int
	// Attempts is the number of tries per step, including the first.
	Attempts      int
	RetryInterval time.Duration
	// StepTimeout bounds each call when positive.
	StepTimeout time.Duration
	// Backend labels metrics and logs.
	Backend string

	Clock  clockwork.Clock
	Logger *slog.Logger
}

// Pipeline is safe for concurrent use by multiple requests.
type Pipeline struct {
	cfg Config
}

func New(cfg Config) *Pipeline {
	if cfg.Attempts <= 0 {
		cfg.Attempts = 1
	}
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = models.DefaultRetryInterval
	}
	if cfg.Delay < 0 {
		cfg.Delay = 0
	}
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Pipeline{cfg: cfg}
}

// Mode returns the configured execution discipline.
func (p *Pipeline) Mode() models.EnrichMode {
	return p.cfg.Mode
}

// Enrich returns one artifact per step, in step order.
func (p *Pipeline) Enrich(ctx context.Context, steps []string, producer Producer) []models.Artifact {
	return p.Run(ctx, steps, producer).Artifacts()
}

// Run executes producer for every step and returns the per-step outcomes.
func (p *Pipeline) Run(ctx context.Context, steps []string, producer Producer) Result {
	start := p.cfg.Clock.Now()

	var outcomes []Outcome
	switch p.cfg.Mode {
	case models.EnrichModeSequential:
		outcomes = p.runSequential(ctx, steps, producer)
	default:
		outcomes = p.runConcurrent(ctx, steps, producer)
	}

	res := Result{Outcomes: outcomes, Elapsed: p.cfg.Clock.Since(start)}
	p.report(res)
	return res
}

func (p *Pipeline) runConcurrent(ctx context.Context, steps []string, producer Producer) []Outcome {
	out := make([]Outcome, len(steps))
	if len(steps) == 0 {
		return out
	}

	limit := p.cfg.Concurrency
	if limit <= 0 || limit > len(steps) {
		limit = len(steps)
	}

	pool := pond.NewResultPool[Outcome](limit)
	defer pool.StopAndWait()

	group := pool.NewGroup()
	for i, step := range steps {
		group.Submit(func() Outcome {
			return p.acquire(ctx, i, step, producer)
		})
	}

	results, err := group.Wait()
	filled := make([]bool, len(steps))
	for _, o := range results {
		if o.Index < 0 || o.Index >= len(out) {
			continue
		}
		out[o.Index] = o
		filled[o.Index] = true
	}
	for i, ok := range filled {
		if !ok {
			cause := err
			if cause == nil {
				cause = errors.New("step outcome missing")
			}
			out[i] = failed(i, steps[i], cause)
		}
	}
	return out
}

func (p *Pipeline) runSequential(ctx context.Context, steps []string, producer Producer) []Outcome {
	out := make([]Outcome, len(steps))
	unavailable := false

	for i, step := range steps {
		if unavailable {
			out[i] = skipped(i, step, fmt.Errorf("%w: skipped after earlier failure", ErrUpstreamUnavailable))
			continue
		}
		if i > 0 && p.cfg.Delay > 0 {
			if err := p.sleep(ctx, p.cfg.Delay); err != nil {
				for j := i; j < len(steps); j++ {
					out[j] = skipped(j, steps[j], err)
				}
				return out
			}
		}

		out[i] = p.acquire(ctx, i, step, producer)
		if errors.Is(out[i].Err, ErrUpstreamUnavailable) {
			unavailable = true
		}
	}
	return out
}

func (p *Pipeline) sleep(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-p.cfg.Clock.After(d):
		return nil
	}
}

// acquire runs one step with retries and converts every failure into an
// Outcome.
func (p *Pipeline) acquire(ctx context.Context, index int, step string, producer Producer) Outcome {
	if err := ctx.Err(); err != nil {
		return skipped(index, step, err)
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.cfg.RetryInterval

	attempts := 0
	artifact, err := backoff.Retry(ctx, func() (models.Artifact, error) {
		attempts++
		a, err := p.call(ctx, step, producer)
		if err == nil {
			return a, nil
		}
		if errors.Is(err, ErrUpstreamUnavailable) || errors.Is(err, ErrDisabled) || ctx.Err() != nil {
			return a, backoff.Permanent(err)
		}
		if attempts < p.cfg.Attempts {
			p.cfg.Logger.Debug("Artifact acquisition failed, retrying",
				"backend", p.cfg.Backend, "step_index", index, "attempt", attempts, "error", err)
		}
		return a, err
	}, backoff.WithBackOff(b), backoff.WithMaxTries(uint(p.cfg.Attempts)))

	if err != nil {
		o := failed(index, step, err)
		o.Attempts = attempts
		return o
	}
	return Outcome{Index: index, Step: step, Artifact: artifact, Attempts: attempts}
}

func (p *Pipeline) call(ctx context.Context, step string, producer Producer) (a models.Artifact, err error) {
	defer func() {
		if r := recover(); r != nil {
			a, err = models.Unavailable(), fmt.Errorf("producer panicked: %v", r)
		}
	}()

	if p.cfg.StepTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.StepTimeout)
		defer cancel()
	}

	a, err = producer.Produce(ctx, step)
	if err != nil {
		return models.Unavailable(), err
	}
	if !a.Available() {
		return models.Unavailable(), ErrEmptyArtifact
	}
	return a, nil
}

func (p *Pipeline) report(res Result) {
	log := p.cfg.Logger
	for _, o := range res.Outcomes {
		switch {
		case o.OK():
			metrics.RecordArtifact(p.cfg.Backend, metrics.OutcomeSuccess)
		case o.Skipped || errors.Is(o.Err, ErrDisabled):
			metrics.RecordArtifact(p.cfg.Backend, metrics.OutcomeSkipped)
			log.Debug("Artifact acquisition skipped", "backend", p.cfg.Backend, "step_index", o.Index, "error", o.Err)
		default:
			metrics.RecordArtifact(p.cfg.Backend, metrics.OutcomeFailure)
			log.Warn("Artifact acquisition failed", "backend", p.cfg.Backend, "step_index", o.Index, "attempts", o.Attempts, "error", o.Err)
		}
	}

	metrics.RecordEnrich(p.cfg.Mode.String(), res.Elapsed)

	if n := len(res.Outcomes); n > 0 && res.Failed() == n && !errors.Is(res.Outcomes[0].Err, ErrDisabled) {
		log.Error("Every artifact acquisition failed, serving placeholders",
			"backend", p.cfg.Backend, "steps", n, "upstream_unavailable", res.UpstreamUnavailable())
	}
	log.Info("Enrichment finished",
		"backend", p.cfg.Backend, "mode", p.cfg.Mode.String(), "steps", len(res.Outcomes),
		"failed", res.Failed(), "elapsed", res.Elapsed)
}

// Bound pairs a Pipeline with the producer it should run.
type Bound struct {
	pipeline *Pipeline
	producer Producer
}

// Bind returns an enricher that always uses producer.
func (p *Pipeline) Bind(producer Producer) *Bound {
	return &Bound{pipeline: p, producer: producer}
}

func (b *Bound) Enrich(ctx context.Context, steps []string) []models.Artifact {
	return b.pipeline.Enrich(ctx, steps, b.producer)
}
