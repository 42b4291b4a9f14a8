package main

import (
	"errors"
	"go/parser"
	"go/token"
	"io/fs"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/tucommenceapousser/tutodiy/pkg/catalog"
)

var errAny = errors.New("any error")

func TestApp_Commands(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr error
	}{
		{name: "coldstart", args: []string{"coldstart"}},
		{name: "catalog list", args: []string{"catalog", "list"}},
		{name: "catalog show", args: []string{"catalog", "show", "--keywords", "3", "1"}},
		{name: "catalog show unknown", args: []string{"catalog", "show", "999"}, wantErr: catalog.ErrNotFound},
		{name: "enrich without backend calls", args: []string{"enrich", "--backend", "none", "--quiet", "1"}},
		{name: "ask blank", args: []string{"ask", "--quiet", "   "}},
		{name: "catalog export", args: []string{"catalog", "export"}},
		{name: "import needs db", args: []string{"catalog", "import", "catalog.yaml"}, wantErr: errAny},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := newApp().Run(append([]string{"tutodiy"}, tt.args...))
			if tt.wantErr == nil && err != nil {
				t.Fatalf("Run(%v) error = %v", tt.args, err)
			}
			if tt.wantErr == errAny {
				if err == nil {
					t.Fatalf("Run(%v) error = nil, want an error", tt.args)
				}
				return
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("Run(%v) error = %v, want %v", tt.args, err, tt.wantErr)
			}
		})
	}
}

func TestApp_RejectsBadMode(t *testing.T) {
	if err := newApp().Run([]string{"tutodiy", "enrich", "--mode", "turbo", "1"}); err == nil {
		t.Fatal("Run() error = nil, want invalid mode")
	}
}

// pkg/ holds reusable packages; only main and internal/ wire them together.
func TestPkgDoesNotImportInternal(t *testing.T) {
	const internalPrefix = "github.com/tucommenceapousser/tutodiy/internal/"
	fset := token.NewFileSet()

	err := filepath.WalkDir("pkg", func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(path, ".go") {
			return err
		}
		f, err := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
		if err != nil {
			return err
		}
		for _, imp := range f.Imports {
			p, _ := strconv.Unquote(imp.Path.Value)
			if strings.HasPrefix(p, internalPrefix) {
				t.Errorf("%s imports %s", path, p)
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WalkDir() error = %v", err)
	}
}
