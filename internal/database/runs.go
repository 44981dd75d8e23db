package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
)

// InsertRun records the start of a pipeline run.
func (db *DB) InsertRun(id, videoID string, videoURL, company *string) error {
	_, err := db.conn.Exec(
		`INSERT INTO runs (id, video_id, video_url, company) VALUES (?, ?, ?, ?)`,
		id, videoID, videoURL, company,
	)
	if err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}
	return nil
}

// FinishRun records the terminal state of a run. Score and slug are only set
// on completed runs.
func (db *DB) FinishRun(id, state string, score *float64, documentSlug *string) error {
	_, err := db.conn.Exec(
		`UPDATE runs SET state = ?, score = ?, document_slug = ?, finished_at = datetime('now')
		WHERE id = ?`,
		state, score, documentSlug, id,
	)
	if err != nil {
		return fmt.Errorf("finishing run: %w", err)
	}
	return nil
}

// UpdateRunCompany fills in the verified company once identity resolution
// succeeds.
func (db *DB) UpdateRunCompany(id, company string) error {
	_, err := db.conn.Exec("UPDATE runs SET company = ? WHERE id = ?", company, id)
	return err
}

// GetRun returns a single run by ID, or nil when absent.
func (db *DB) GetRun(id string) (*Run, error) {
	row := db.conn.QueryRow(
		`SELECT id, video_id, video_url, company, state, score, document_slug, started_at, finished_at
		FROM runs WHERE id = ?`, id,
	)
	r, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

// ListRuns returns the most recent runs, newest first.
func (db *DB) ListRuns(limit int) ([]Run, error) {
	rows, err := db.conn.Query(
		`SELECT id, video_id, video_url, company, state, score, document_slug, started_at, finished_at
		FROM runs ORDER BY started_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.VideoID, &r.VideoURL, &r.Company, &r.State,
			&r.Score, &r.DocumentSlug, &r.StartedAt, &r.FinishedAt); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// InsertCheckpoint persists one checkpoint outcome. Warnings and errors are
// stored as JSON arrays.
func (db *DB) InsertCheckpoint(rec CheckpointRecord) error {
	warnings, err := json.Marshal(rec.Warnings)
	if err != nil {
		return fmt.Errorf("encoding warnings: %w", err)
	}
	errs, err := json.Marshal(rec.Errors)
	if err != nil {
		return fmt.Errorf("encoding errors: %w", err)
	}

	_, err = db.conn.Exec(
		`INSERT INTO checkpoints (run_id, seq, name, status, score, warnings, errors, elapsed_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.RunID, rec.Seq, rec.Name, rec.Status, rec.Score,
		string(warnings), string(errs), rec.ElapsedMS,
	)
	if err != nil {
		return fmt.Errorf("inserting checkpoint: %w", err)
	}
	return nil
}

// GetCheckpoints returns the checkpoint records for a run in execution order.
func (db *DB) GetCheckpoints(runID string) ([]CheckpointRecord, error) {
	rows, err := db.conn.Query(
		`SELECT run_id, seq, name, status, score, warnings, errors, elapsed_ms
		FROM checkpoints WHERE run_id = ? ORDER BY seq`, runID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []CheckpointRecord
	for rows.Next() {
		var rec CheckpointRecord
		var warnings, errs string
		if err := rows.Scan(&rec.RunID, &rec.Seq, &rec.Name, &rec.Status,
			&rec.Score, &warnings, &errs, &rec.ElapsedMS); err != nil {
			return nil, err
		}
		if warnings != "" {
			if err := json.Unmarshal([]byte(warnings), &rec.Warnings); err != nil {
				return nil, fmt.Errorf("decoding warnings: %w", err)
			}
		}
		if errs != "" {
			if err := json.Unmarshal([]byte(errs), &rec.Errors); err != nil {
				return nil, fmt.Errorf("decoding errors: %w", err)
			}
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// GetStats returns aggregate counts across the database.
func (db *DB) GetStats() (*Stats, error) {
	stats := &Stats{}

	queries := []struct {
		query string
		dest  *int
	}{
		{"SELECT COUNT(*) FROM runs", &stats.TotalRuns},
		{"SELECT COUNT(*) FROM runs WHERE state = 'completed'", &stats.CompletedRuns},
		{"SELECT COUNT(*) FROM runs WHERE state = 'stopped-fail'", &stats.FailedRuns},
		{"SELECT COUNT(*) FROM documents", &stats.Documents},
		{"SELECT COUNT(*) FROM directory_entities", &stats.CachedEntities},
	}
	for _, q := range queries {
		if err := db.conn.QueryRow(q.query).Scan(q.dest); err != nil {
			return nil, err
		}
	}

	return stats, nil
}

func scanRun(row *sql.Row) (*Run, error) {
	var r Run
	if err := row.Scan(&r.ID, &r.VideoID, &r.VideoURL, &r.Company, &r.State,
		&r.Score, &r.DocumentSlug, &r.StartedAt, &r.FinishedAt); err != nil {
		return nil, err
	}
	return &r, nil
}
