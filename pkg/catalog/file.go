package catalog

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/tucommenceapousser/tutodiy/models"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

// File is the on-disk YAML layout of a catalog.
type File struct {
	Tutorials []models.Tutorial `yaml:"tutorials"`
}

// Default returns the built-in catalog.
func Default() (*Memory, error) {
	return Parse(defaultYAML)
}

// Parse decodes a YAML catalog.
func Parse(data []byte) (*Memory, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	return NewMemory(f.Tutorials...)
}

// LoadFile reads a YAML catalog from disk.
func LoadFile(path string) (*Memory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	return Parse(data)
}

// Marshal encodes tutorials in the File layout.
func Marshal(tutorials []models.Tutorial) ([]byte, error) {
	data, err := yaml.Marshal(File{Tutorials: tutorials})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal catalog: %w", err)
	}
	return data, nil
}
