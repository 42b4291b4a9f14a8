package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/tucommenceapousser/tutodiy/models"
	"github.com/tucommenceapousser/tutodiy/pkg/catalog"
)

var _ catalog.Catalog = (*DB)(nil)

// UpsertTutorial inserts or replaces a tutorial and all of its steps.
// New tutorials are appended after existing ones; replaced tutorials keep
// their position.
func (db *DB) UpsertTutorial(ctx context.Context, t models.Tutorial) error {
	id := strings.TrimSpace(t.ID)
	if id == "" {
		return fmt.Errorf("tutorial id is empty")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO tutorials (tutorial_id, title, description, position)
		VALUES (?, ?, ?, (SELECT COALESCE(MAX(position), -1) + 1 FROM tutorials))
		ON CONFLICT(tutorial_id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			updated_at = CURRENT_TIMESTAMP
	`, id, t.Title, t.Description)
	if err != nil {
		return fmt.Errorf("failed to upsert tutorial: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM tutorial_steps WHERE tutorial_id = ?", id); err != nil {
		return fmt.Errorf("failed to clear steps: %w", err)
	}
	for i, step := range t.Steps {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO tutorial_steps (tutorial_id, step_index, text)
			VALUES (?, ?, ?)
		`, id, i, step)
		if err != nil {
			return fmt.Errorf("failed to insert step %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit tutorial: %w", err)
	}
	return nil
}

// Find returns the tutorial with the given id, or catalog.ErrNotFound.
func (db *DB) Find(ctx context.Context, id string) (models.Tutorial, error) {
	id = strings.TrimSpace(id)

	t := models.Tutorial{ID: id}
	err := db.QueryRowContext(ctx,
		"SELECT title, description FROM tutorials WHERE tutorial_id = ?", id,
	).Scan(&t.Title, &t.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Tutorial{}, fmt.Errorf("%w: %q", catalog.ErrNotFound, id)
	}
	if err != nil {
		return models.Tutorial{}, fmt.Errorf("failed to query tutorial: %w", err)
	}

	steps, err := db.steps(ctx, id)
	if err != nil {
		return models.Tutorial{}, err
	}
	t.Steps = steps
	return t, nil
}

// List returns every tutorial in insertion order.
func (db *DB) List(ctx context.Context) ([]models.Tutorial, error) {
	rows, err := db.QueryContext(ctx,
		"SELECT tutorial_id, title, description FROM tutorials ORDER BY position, tutorial_id")
	if err != nil {
		return nil, fmt.Errorf("failed to list tutorials: %w", err)
	}

	var tutorials []models.Tutorial
	for rows.Next() {
		var t models.Tutorial
		if err := rows.Scan(&t.ID, &t.Title, &t.Description); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("failed to scan tutorial: %w", err)
		}
		tutorials = append(tutorials, t)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("failed to iterate tutorials: %w", err)
	}
	_ = rows.Close()

	for i := range tutorials {
		steps, err := db.steps(ctx, tutorials[i].ID)
		if err != nil {
			return nil, err
		}
		tutorials[i].Steps = steps
	}
	return tutorials, nil
}

// CountTutorials returns the number of stored tutorials.
func (db *DB) CountTutorials(ctx context.Context) (int, error) {
	var n int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM tutorials").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count tutorials: %w", err)
	}
	return n, nil
}

func (db *DB) steps(ctx context.Context, id string) ([]string, error) {
	rows, err := db.QueryContext(ctx,
		"SELECT text FROM tutorial_steps WHERE tutorial_id = ? ORDER BY step_index", id)
	if err != nil {
		return nil, fmt.Errorf("failed to query steps: %w", err)
	}
	defer rows.Close()

	steps := []string{}
	for rows.Next() {
		var text string
		if err := rows.Scan(&text); err != nil {
			return nil, fmt.Errorf("failed to scan step: %w", err)
		}
		steps = append(steps, text)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate steps: %w", err)
	}
	return steps, nil
}
