package models

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	for _, path := range []string{"", filepath.Join(t.TempDir(), "absent.yaml")} {
		cfg, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("LoadConfig(%q) error = %v", path, err)
		}
		if cfg.Server.Port != DefaultPort {
			t.Errorf("Port = %q, want %q", cfg.Server.Port, DefaultPort)
		}
		if cfg.EnrichMode() != EnrichModeConcurrent {
			t.Errorf("EnrichMode() = %v, want concurrent", cfg.EnrichMode())
		}
		if cfg.Backend() != BackendImage {
			t.Errorf("Backend() = %v, want image", cfg.Backend())
		}
		if cfg.Ask.Model != DefaultAskModel {
			t.Errorf("Ask.Model = %q, want %q", cfg.Ask.Model, DefaultAskModel)
		}
		if cfg.Enrich.Attempts != 1 {
			t.Errorf("Attempts = %d, want 1", cfg.Enrich.Attempts)
		}
	}
}

func TestLoadConfig_ParsesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tutodiy.yaml")
	data := `
server:
  port: "8080"
enrich:
  backend: scrape
  mode: sequential
  delay: 1500ms
  attempts: 3
scrape:
  language: en
ask:
  provider: openai
images:
  prompt_template: "no placeholder"
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Server.Port != "8080" {
		t.Errorf("Port = %q", cfg.Server.Port)
	}
	if cfg.Backend() != BackendScrape || cfg.EnrichMode() != EnrichModeSequential {
		t.Errorf("backend/mode = %v/%v", cfg.Backend(), cfg.EnrichMode())
	}
	if cfg.Enrich.Delay != 1500*time.Millisecond {
		t.Errorf("Delay = %v", cfg.Enrich.Delay)
	}
	if cfg.Enrich.Attempts != 3 {
		t.Errorf("Attempts = %d", cfg.Enrich.Attempts)
	}
	if cfg.Scrape.Language != "en" || cfg.Scrape.MaxChars != DefaultScrapeMaxChars {
		t.Errorf("Scrape = %+v", cfg.Scrape)
	}
	if cfg.Ask.Model != DefaultOpenAIAskModel {
		t.Errorf("Ask.Model = %q, want %q", cfg.Ask.Model, DefaultOpenAIAskModel)
	}
	if cfg.Images.PromptTemplate != DefaultImagePrompt {
		t.Errorf("PromptTemplate = %q, want default", cfg.Images.PromptTemplate)
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr string
	}{
		{"bad yaml", "enrich: [", "failed to parse config"},
		{"bad mode", "enrich:\n  mode: turbo\n", "unknown enrich mode"},
		{"bad backend", "enrich:\n  backend: video\n", "unknown enrich backend"},
		{"negative delay", "enrich:\n  delay: -1s\n", "must not be negative"},
		{"bad provider", "ask:\n  provider: acme\n", "unknown ask provider"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "c.yaml")
			if err := os.WriteFile(path, []byte(tt.data), 0o644); err != nil {
				t.Fatal(err)
			}
			_, err := LoadConfig(path)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("LoadConfig() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestParseEnrichMode(t *testing.T) {
	tests := []struct {
		in      string
		want    EnrichMode
		wantErr bool
	}{
		{"", EnrichModeConcurrent, false},
		{"Concurrent", EnrichModeConcurrent, false},
		{" sequential ", EnrichModeSequential, false},
		{"throttled", EnrichModeSequential, false},
		{"burst", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseEnrichMode(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseEnrichMode(%q) error = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseEnrichMode(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestArtifactAvailability(t *testing.T) {
	if Unavailable().Available() {
		t.Error("sentinel should not be available")
	}
	if !ImageArtifact("https://img.example/a.png").IsImage() {
		t.Error("image artifact should report IsImage")
	}
	if ImageArtifact("").Available() {
		t.Error("image without url should not be available")
	}
	if !TextArtifact("passage", "https://example.com").IsText() {
		t.Error("text artifact should report IsText")
	}
}
