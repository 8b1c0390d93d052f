// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists downloaded-paper records in SQLite. The crawl
// core uses it for existence checks and insert-after-download; the CLI
// additionally lists and deletes records.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/paper-crawler/pkg/types"
)

// Store manages the papers SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the papers database at path and ensures the
// schema exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	const schema = `CREATE TABLE IF NOT EXISTS papers (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		authors TEXT,
		source TEXT NOT NULL,
		category TEXT,
		paper_url TEXT UNIQUE NOT NULL,
		pdf_url TEXT UNIQUE NOT NULL,
		filepath TEXT,
		download_date TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("executing schema statement: %w", err)
	}
	return nil
}

// Exists reports whether a paper with the given content URL is already
// persisted.
func (s *Store) Exists(ctx context.Context, pdfURL string) (bool, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, "SELECT id FROM papers WHERE pdf_url = ?", pdfURL).Scan(&id)
	switch {
	case err == sql.ErrNoRows:
		return false, nil
	case err != nil:
		return false, fmt.Errorf("querying paper: %w", err)
	}
	return true, nil
}

// Insert persists a paper record and returns its row ID. When a record
// with the same content URL (or abstract page URL) already exists the
// insert is a benign no-op and the returned ID is zero.
func (s *Store) Insert(ctx context.Context, p *types.Paper) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO papers (title, authors, source, category, paper_url, pdf_url, filepath)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.Title,
		types.JoinNames(p.Authors),
		string(p.Source),
		types.JoinNames(p.Categories),
		p.PageURL,
		p.PDFURL,
		p.FilePath,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting paper: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("checking insert result: %w", err)
	}
	if affected == 0 {
		// Already present; not an error.
		return 0, nil
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading insert id: %w", err)
	}
	return id, nil
}

// List returns all persisted papers, newest first.
func (s *Store) List(ctx context.Context) ([]types.Paper, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, authors, source, category, paper_url, pdf_url, filepath, download_date
		 FROM papers ORDER BY download_date DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing papers: %w", err)
	}
	defer rows.Close()

	var out []types.Paper
	for rows.Next() {
		var (
			p          types.Paper
			authors    string
			source     string
			categories string
			filepath   sql.NullString
			downloaded string
		)
		if err := rows.Scan(&p.ID, &p.Title, &authors, &source, &categories,
			&p.PageURL, &p.PDFURL, &filepath, &downloaded); err != nil {
			return nil, fmt.Errorf("scanning paper row: %w", err)
		}
		p.Authors = types.SplitNames(authors)
		p.Source = types.Source(source)
		p.Categories = types.SplitNames(categories)
		p.FilePath = filepath.String
		if t, err := time.Parse("2006-01-02 15:04:05", downloaded); err == nil {
			p.DownloadedAt = t
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating paper rows: %w", err)
	}
	return out, nil
}

// Delete removes the papers with the given IDs and returns the file paths
// of the deleted records so the caller can remove the PDFs.
func (s *Store) Delete(ctx context.Context, ids []int64) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var filePaths []string
	for _, id := range ids {
		var fp sql.NullString
		err := s.db.QueryRowContext(ctx, "SELECT filepath FROM papers WHERE id = ?", id).Scan(&fp)
		switch {
		case err == sql.ErrNoRows:
			continue
		case err != nil:
			return filePaths, fmt.Errorf("querying paper %d: %w", id, err)
		}
		if _, err := s.db.ExecContext(ctx, "DELETE FROM papers WHERE id = ?", id); err != nil {
			return filePaths, fmt.Errorf("deleting paper %d: %w", id, err)
		}
		if fp.String != "" {
			filePaths = append(filePaths, fp.String)
		}
	}
	return filePaths, nil
}
