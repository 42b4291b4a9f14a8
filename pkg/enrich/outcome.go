package enrich

import (
	"errors"
	"time"

	"github.com/tucommenceapousser/tutodiy/models"
)

// Outcome is the result of one per-step operation. Exactly one of Artifact
// (when Err is nil) or Err is meaningful.
type Outcome struct {
	Index    int
	Step     string
	Artifact models.Artifact
	Err      error
	Attempts int
	// Skipped is set when the step was never attempted.
	Skipped bool
}

func failed(index int, step string, err error) Outcome {
	return Outcome{Index: index, Step: step, Artifact: models.Unavailable(), Err: err}
}

func skipped(index int, step string, err error) Outcome {
	o := failed(index, step, err)
	o.Skipped = true
	return o
}

func (o Outcome) OK() bool {
	return o.Err == nil
}

// Value returns the artifact, or the sentinel when the operation failed.
func (o Outcome) Value() models.Artifact {
	if o.Err != nil {
		return models.Unavailable()
	}
	return o.Artifact
}

// Result holds the outcomes of one pipeline run, aligned with the steps.
type Result struct {
	Outcomes []Outcome
	Elapsed  time.Duration
}

// Artifacts returns one artifact per step with sentinels for failures.
func (r Result) Artifacts() []models.Artifact {
	out := make([]models.Artifact, len(r.Outcomes))
	for i, o := range r.Outcomes {
		out[i] = o.Value()
	}
	return out
}

// Failed counts outcomes that did not produce an artifact.
func (r Result) Failed() int {
	n := 0
	for _, o := range r.Outcomes {
		if !o.OK() {
			n++
		}
	}
	return n
}

// UpstreamUnavailable reports whether any step saw ErrUpstreamUnavailable.
func (r Result) UpstreamUnavailable() bool {
	for _, o := range r.Outcomes {
		if errors.Is(o.Err, ErrUpstreamUnavailable) {
			return true
		}
	}
	return false
}
