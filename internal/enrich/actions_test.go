package enrich

import (
	"errors"
	"testing"
	"time"

	"github.com/tucommenceapousser/tutodiy/models"
	enrichpkg "github.com/tucommenceapousser/tutodiy/pkg/enrich"
)

func TestBuildReport(t *testing.T) {
	res := enrichpkg.Result{
		Elapsed: 1234567 * time.Microsecond,
		Outcomes: []enrichpkg.Outcome{
			{Index: 0, Step: "Prenez un clou", Artifact: models.ImageArtifact("https://img.example/0.png"), Attempts: 1},
			{Index: 1, Step: "Enroulez le fil", Artifact: models.Unavailable(), Err: errors.New("timeout"), Attempts: 2},
			{Index: 2, Step: "Reliez la pile", Artifact: models.Unavailable(), Err: enrichpkg.ErrUpstreamUnavailable, Skipped: true},
		},
	}

	r := BuildReport("1", "image", "sequential", res)

	if r.Failed != 2 {
		t.Errorf("Failed = %d, want 2", r.Failed)
	}
	if r.Elapsed != "1.235s" {
		t.Errorf("Elapsed = %q, want 1.235s", r.Elapsed)
	}
	if len(r.Steps) != 3 {
		t.Fatalf("len(Steps) = %d, want 3", len(r.Steps))
	}
	if r.Steps[0].Kind != "image" || r.Steps[0].URL != "https://img.example/0.png" {
		t.Errorf("step 0 = %+v", r.Steps[0])
	}
	if r.Steps[1].Kind != "unavailable" || r.Steps[1].Error != "timeout" || r.Steps[1].Attempts != 2 {
		t.Errorf("step 1 = %+v", r.Steps[1])
	}
	if !r.Steps[2].Skipped {
		t.Errorf("step 2 should be skipped: %+v", r.Steps[2])
	}
}
