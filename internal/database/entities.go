package database

import (
	"encoding/json"
	"fmt"
	"time"
)

// ReplaceDirectoryEntities swaps the cached membership directory for a fresh
// snapshot, stamping every row with the same fetch time.
func (db *DB) ReplaceDirectoryEntities(entities []CachedEntity) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("begin directory refresh: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM directory_entities"); err != nil {
		return fmt.Errorf("clearing directory cache: %w", err)
	}

	fetchedAt := time.Now().UTC().Format(time.RFC3339)
	for _, e := range entities {
		aliases, err := json.Marshal(e.Aliases)
		if err != nil {
			return fmt.Errorf("encoding aliases for %q: %w", e.Name, err)
		}
		if _, err := tx.Exec(
			`INSERT OR REPLACE INTO directory_entities (name, aliases, fetched_at) VALUES (?, ?, ?)`,
			e.Name, string(aliases), fetchedAt,
		); err != nil {
			return fmt.Errorf("caching entity %q: %w", e.Name, err)
		}
	}

	return tx.Commit()
}

// GetDirectoryEntities returns the cached directory snapshot.
func (db *DB) GetDirectoryEntities() ([]CachedEntity, error) {
	rows, err := db.conn.Query(
		"SELECT name, aliases, fetched_at FROM directory_entities ORDER BY name",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entities []CachedEntity
	for rows.Next() {
		var e CachedEntity
		var aliases string
		if err := rows.Scan(&e.Name, &aliases, &e.FetchedAt); err != nil {
			return nil, err
		}
		if aliases != "" {
			if err := json.Unmarshal([]byte(aliases), &e.Aliases); err != nil {
				return nil, fmt.Errorf("decoding aliases for %q: %w", e.Name, err)
			}
		}
		entities = append(entities, e)
	}
	return entities, rows.Err()
}

// DirectoryFetchedAt returns the snapshot's fetch time, or the zero time when
// the cache is empty.
func (db *DB) DirectoryFetchedAt() (time.Time, error) {
	var fetchedAt string
	err := db.conn.QueryRow(
		"SELECT fetched_at FROM directory_entities ORDER BY fetched_at DESC LIMIT 1",
	).Scan(&fetchedAt)
	if err != nil {
		// Empty cache is not an error; the caller refetches.
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, fetchedAt)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing directory fetch time: %w", err)
	}
	return t, nil
}
