package db

const schema = `
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA foreign_keys = ON;

-- Tutorials: one row per catalog entry; position keeps index order stable
CREATE TABLE IF NOT EXISTS tutorials (
    tutorial_id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    position INTEGER NOT NULL,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_tutorials_position ON tutorials(position);

-- Steps: ordered by step_index within a tutorial
CREATE TABLE IF NOT EXISTS tutorial_steps (
    tutorial_id TEXT NOT NULL,
    step_index INTEGER NOT NULL,
    text TEXT NOT NULL,
    PRIMARY KEY (tutorial_id, step_index),
    FOREIGN KEY (tutorial_id) REFERENCES tutorials(tutorial_id) ON DELETE CASCADE
);
`
