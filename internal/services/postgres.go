package services

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // Load the postgres driver
)

const evaluationsSchema = `
	CREATE TABLE IF NOT EXISTS evaluations (
		position TEXT PRIMARY KEY,
		depth INTEGER NOT NULL,
		score INTEGER,
		mate INTEGER,
		pv TEXT[] NOT NULL DEFAULT '{}',
		CHECK (score IS NULL OR mate IS NULL)
	);
	CREATE INDEX IF NOT EXISTS evaluations_depth_idx ON evaluations (depth);
`

// InitPostgres initializes the database connection and creates the evaluation book table.
func InitPostgres(url string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}

	// Test the connection
	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("error pinging database: %w", err)
	}

	if _, err = db.Exec(evaluationsSchema); err != nil {
		return nil, fmt.Errorf("error creating evaluations table: %w", err)
	}

	return db, nil
}
