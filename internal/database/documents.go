package database

import (
	"database/sql"
	"fmt"
)

// InsertDocument stores a finished document under its slug.
func (db *DB) InsertDocument(slug, runID, title, markdown string) error {
	_, err := db.conn.Exec(
		`INSERT OR REPLACE INTO documents (slug, run_id, title, markdown) VALUES (?, ?, ?, ?)`,
		slug, runID, title, markdown,
	)
	if err != nil {
		return fmt.Errorf("inserting document: %w", err)
	}
	return nil
}

// GetDocument returns a document by slug, or nil when absent.
func (db *DB) GetDocument(slug string) (*Document, error) {
	row := db.conn.QueryRow(
		"SELECT slug, run_id, title, markdown, created_at FROM documents WHERE slug = ?", slug,
	)
	var d Document
	err := row.Scan(&d.Slug, &d.RunID, &d.Title, &d.Markdown, &d.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// ListDocuments returns all documents, newest first.
func (db *DB) ListDocuments() ([]Document, error) {
	rows, err := db.conn.Query(
		"SELECT slug, run_id, title, markdown, created_at FROM documents ORDER BY created_at DESC",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var d Document
		if err := rows.Scan(&d.Slug, &d.RunID, &d.Title, &d.Markdown, &d.CreatedAt); err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}
