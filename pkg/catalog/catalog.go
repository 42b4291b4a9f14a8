// Package catalog provides read-only tutorial lookup.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/tucommenceapousser/tutodiy/models"
)

// ErrNotFound is returned by Find for an unknown identifier.
var ErrNotFound = errors.New("tutorial not found")

// Catalog maps identifiers to tutorials. Implementations must not mutate
// state on lookup.
type Catalog interface {
	Find(ctx context.Context, id string) (models.Tutorial, error)
	List(ctx context.Context) ([]models.Tutorial, error)
}

// Memory is an in-memory Catalog that preserves insertion order.
type Memory struct {
	order []string
	byID  map[string]models.Tutorial
}

// NewMemory builds a catalog from tutorials. Identifiers must be non-empty
// and unique.
func NewMemory(tutorials ...models.Tutorial) (*Memory, error) {
	m := &Memory{
		order: make([]string, 0, len(tutorials)),
		byID:  make(map[string]models.Tutorial, len(tutorials)),
	}
	for i, t := range tutorials {
		t.ID = strings.TrimSpace(t.ID)
		if t.ID == "" {
			return nil, fmt.Errorf("tutorial %d has an empty id", i)
		}
		if _, dup := m.byID[t.ID]; dup {
			return nil, fmt.Errorf("duplicate tutorial id %q", t.ID)
		}
		t.Steps = slices.Clone(t.Steps)
		m.order = append(m.order, t.ID)
		m.byID[t.ID] = t
	}
	return m, nil
}

func (m *Memory) Find(_ context.Context, id string) (models.Tutorial, error) {
	t, ok := m.byID[strings.TrimSpace(id)]
	if !ok {
		return models.Tutorial{}, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	t.Steps = slices.Clone(t.Steps)
	return t, nil
}

func (m *Memory) List(_ context.Context) ([]models.Tutorial, error) {
	out := make([]models.Tutorial, 0, len(m.order))
	for _, id := range m.order {
		t := m.byID[id]
		t.Steps = slices.Clone(t.Steps)
		out = append(out, t)
	}
	return out, nil
}

// Len returns the number of tutorials.
func (m *Memory) Len() int {
	return len(m.order)
}
