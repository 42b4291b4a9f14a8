package db

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/tucommenceapousser/tutodiy/models"
	"github.com/tucommenceapousser/tutodiy/pkg/catalog"
)

// setupTestDB creates an in-memory SQLite database for testing
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	database := &DB{path: ":memory:"}
	var err error
	database.DB, err = openDB(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	// Every pooled connection to :memory: is a separate database.
	database.SetMaxOpenConns(1)

	if err := database.InitSchema(); err != nil {
		t.Fatalf("failed to initialize schema: %v", err)
	}

	return database
}

func TestUpsertTutorial_FindRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	want := models.Tutorial{
		ID:          "1",
		Title:       "Fabriquer un électro-aimant DIY",
		Description: "Utilisez une alimentation d'ancien téléphone.",
		Steps:       []string{"Récupérez une alimentation.", "Prenez un tube.", "Enroulez du fil."},
	}
	if err := db.UpsertTutorial(ctx, want); err != nil {
		t.Fatalf("UpsertTutorial() failed: %v", err)
	}

	got, err := db.Find(ctx, "1")
	if err != nil {
		t.Fatalf("Find() failed: %v", err)
	}
	if got.Title != want.Title {
		t.Errorf("Title = %q, want %q", got.Title, want.Title)
	}
	if got.Description != want.Description {
		t.Errorf("Description = %q, want %q", got.Description, want.Description)
	}
	if len(got.Steps) != len(want.Steps) {
		t.Fatalf("len(Steps) = %d, want %d", len(got.Steps), len(want.Steps))
	}
	for i := range want.Steps {
		if got.Steps[i] != want.Steps[i] {
			t.Errorf("Steps[%d] = %q, want %q", i, got.Steps[i], want.Steps[i])
		}
	}
}

func TestFind_UnknownIDIsNotFound(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	_, err := db.Find(context.Background(), "999")
	if !errors.Is(err, catalog.ErrNotFound) {
		t.Fatalf("Find() error = %v, want catalog.ErrNotFound", err)
	}
}

func TestFind_TutorialWithoutStepsIsFound(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	if err := db.UpsertTutorial(ctx, models.Tutorial{ID: "empty", Title: "Vide"}); err != nil {
		t.Fatalf("UpsertTutorial() failed: %v", err)
	}
	got, err := db.Find(ctx, "empty")
	if err != nil {
		t.Fatalf("Find() failed: %v", err)
	}
	if got.Steps == nil || len(got.Steps) != 0 {
		t.Errorf("Steps = %#v, want empty non-nil slice", got.Steps)
	}
}

func TestUpsertTutorial_ReplacesStepsAndKeepsPosition(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	tutorials := []models.Tutorial{
		{ID: "a", Title: "A", Steps: []string{"a1", "a2", "a3"}},
		{ID: "b", Title: "B", Steps: []string{"b1"}},
	}
	for _, tut := range tutorials {
		if err := db.UpsertTutorial(ctx, tut); err != nil {
			t.Fatalf("UpsertTutorial(%s) failed: %v", tut.ID, err)
		}
	}

	if err := db.UpsertTutorial(ctx, models.Tutorial{ID: "a", Title: "A2", Steps: []string{"only"}}); err != nil {
		t.Fatalf("UpsertTutorial(a) replace failed: %v", err)
	}

	list, err := db.List(ctx)
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("len(List()) = %d, want 2", len(list))
	}
	if list[0].ID != "a" || list[1].ID != "b" {
		t.Errorf("List() order = [%s %s], want [a b]", list[0].ID, list[1].ID)
	}
	if list[0].Title != "A2" {
		t.Errorf("Title = %q, want %q", list[0].Title, "A2")
	}
	if len(list[0].Steps) != 1 || list[0].Steps[0] != "only" {
		t.Errorf("Steps = %v, want [only]", list[0].Steps)
	}

	n, err := db.CountTutorials(ctx)
	if err != nil {
		t.Fatalf("CountTutorials() failed: %v", err)
	}
	if n != 2 {
		t.Errorf("CountTutorials() = %d, want 2", n)
	}
}

func TestUpsertTutorial_EmptyIDFails(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	if err := db.UpsertTutorial(context.Background(), models.Tutorial{ID: "  "}); err == nil {
		t.Fatal("UpsertTutorial() with empty id returned nil error")
	}
}

func TestOpen_CreatesSchemaOnDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.db")

	db, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	if db.Path() != path {
		t.Errorf("Path() = %q, want %q", db.Path(), path)
	}
	if err := db.UpsertTutorial(context.Background(), models.Tutorial{ID: "1", Title: "T", Steps: []string{"s"}}); err != nil {
		t.Fatalf("UpsertTutorial() failed: %v", err)
	}
	_ = db.Close()

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()
	if _, err := reopened.Find(context.Background(), "1"); err != nil {
		t.Errorf("Find() after reopen failed: %v", err)
	}
}

func TestOpen_Paths(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"empty path", "", true},
		{"nested directory is created", filepath.Join(t.TempDir(), "data", "catalog.db"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, err := Open(tt.path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Open(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
			}
			if err != nil {
				return
			}
			defer db.Close()
			n, err := db.CountTutorials(context.Background())
			if err != nil || n != 0 {
				t.Errorf("CountTutorials() = %d, %v; want 0, nil", n, err)
			}
		})
	}
}
