package models

import (
	"fmt"
	"strings"
)

// EnrichMode selects how the enrichment pipeline issues per-step operations.
type EnrichMode int

const (
	// EnrichModeConcurrent issues every step at once and joins the outcomes.
	EnrichModeConcurrent EnrichMode = iota
	// EnrichModeSequential issues one step at a time with a fixed delay between them.
	EnrichModeSequential
)

func (m EnrichMode) String() string {
	switch m {
	case EnrichModeConcurrent:
		return "concurrent"
	case EnrichModeSequential:
		return "sequential"
	default:
		return fmt.Sprintf("EnrichMode(%d)", int(m))
	}
}

// ParseEnrichMode accepts "concurrent" or "sequential" (also "throttled").
// An empty string resolves to concurrent.
func ParseEnrichMode(s string) (EnrichMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "concurrent", "parallel":
		return EnrichModeConcurrent, nil
	case "sequential", "throttled", "sequential-throttled":
		return EnrichModeSequential, nil
	default:
		return 0, fmt.Errorf("unknown enrich mode %q (want concurrent or sequential)", s)
	}
}

// Backend names the concrete artifact-acquisition operation.
type Backend string

const (
	BackendImage  Backend = "image"
	BackendScrape Backend = "scrape"
	BackendText   Backend = "text"
	BackendNone   Backend = "none"
)

// ParseBackend validates a backend name. Empty resolves to BackendImage.
func ParseBackend(s string) (Backend, error) {
	switch b := Backend(strings.ToLower(strings.TrimSpace(s))); b {
	case "":
		return BackendImage, nil
	case BackendImage, BackendScrape, BackendText, BackendNone:
		return b, nil
	default:
		return "", fmt.Errorf("unknown enrich backend %q (want image, scrape, text or none)", s)
	}
}
