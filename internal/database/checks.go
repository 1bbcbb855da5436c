package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CheckRecord is one row of the check history: which product was scored,
// when, and the full serialized result.
type CheckRecord struct {
	ID        uuid.UUID       `json:"id"`
	ASIN      string          `json:"asin"`
	URL       string          `json:"url"`
	Score     int             `json:"score"`
	Result    json.RawMessage `json:"result"`
	CreatedAt time.Time       `json:"created_at"`
}

const createChecksTable = `
	CREATE TABLE IF NOT EXISTS checks (
		id UUID PRIMARY KEY,
		asin TEXT NOT NULL,
		url TEXT NOT NULL,
		score INT NOT NULL,
		result JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_checks_asin ON checks (asin);
	CREATE INDEX IF NOT EXISTS idx_checks_created_at ON checks (created_at DESC);`

func (db *DB) EnsureSchema(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, createChecksTable); err != nil {
		return fmt.Errorf("failed to create checks table: %w", err)
	}
	return nil
}

func (db *DB) InsertCheck(ctx context.Context, rec *CheckRecord) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}

	query := `
		INSERT INTO checks (id, asin, url, score, result)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`

	err := db.pool.QueryRow(ctx, query,
		rec.ID, rec.ASIN, rec.URL, rec.Score, rec.Result,
	).Scan(&rec.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to insert check: %w", err)
	}

	return nil
}

func (db *DB) RecentChecks(ctx context.Context, limit int) ([]CheckRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, asin, url, score, result, created_at
		FROM checks
		ORDER BY created_at DESC
		LIMIT $1`

	rows, err := db.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query checks: %w", err)
	}
	defer rows.Close()

	var records []CheckRecord
	for rows.Next() {
		var rec CheckRecord
		if err := rows.Scan(&rec.ID, &rec.ASIN, &rec.URL, &rec.Score, &rec.Result, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan check: %w", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read checks: %w", err)
	}

	return records, nil
}
