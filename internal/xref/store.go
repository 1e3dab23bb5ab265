// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package xref

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore persists cross-references in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// Stats summarizes the persisted cross-references per authority.
type Stats struct {
	Authority Authority `json:"authority" yaml:"authority"`
	Found     int       `json:"found" yaml:"found"`
	Missing   int       `json:"missing" yaml:"missing"`
}

// OpenSQLite opens or creates the database at path, creating the parent
// directory and schema when needed.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating cache directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS xrefs (
			authority TEXT NOT NULL,
			uri TEXT NOT NULL,
			found INTEGER NOT NULL,
			id TEXT,
			ref_uri TEXT,
			resolved_at TEXT NOT NULL,
			PRIMARY KEY (authority, uri)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_xrefs_authority ON xrefs(authority)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Lookup returns the stored entry for (auth, uri). ok is false when there
// is none.
func (s *SQLiteStore) Lookup(ctx context.Context, auth Authority, uri string) (Entry, bool, error) {
	var (
		found      bool
		id, refURI sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT found, id, ref_uri FROM xrefs WHERE authority = ? AND uri = ?`,
		string(auth), uri,
	).Scan(&found, &id, &refURI)
	if err == sql.ErrNoRows {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("looking up %s %s: %w", auth, uri, err)
	}
	return Entry{Found: found, Ref: Ref{ID: id.String, URI: refURI.String}}, true, nil
}

// Save stores or replaces the entry for (auth, uri).
func (s *SQLiteStore) Save(ctx context.Context, auth Authority, uri string, e Entry) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO xrefs (authority, uri, found, id, ref_uri, resolved_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(authority, uri) DO UPDATE SET
			found = excluded.found,
			id = excluded.id,
			ref_uri = excluded.ref_uri,
			resolved_at = excluded.resolved_at`,
		string(auth), uri, e.Found, e.Ref.ID, e.Ref.URI, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("saving %s %s: %w", auth, uri, err)
	}
	return nil
}

// Stats counts stored entries per authority, ordered by authority.
func (s *SQLiteStore) Stats(ctx context.Context) ([]Stats, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT authority, SUM(found), SUM(1 - found) FROM xrefs GROUP BY authority ORDER BY authority`)
	if err != nil {
		return nil, fmt.Errorf("querying stats: %w", err)
	}
	defer rows.Close()

	var out []Stats
	for rows.Next() {
		var st Stats
		var auth string
		if err := rows.Scan(&auth, &st.Found, &st.Missing); err != nil {
			return nil, fmt.Errorf("scanning stats: %w", err)
		}
		st.Authority = Authority(auth)
		out = append(out, st)
	}
	return out, rows.Err()
}

// Clear removes every stored entry and returns how many were deleted.
func (s *SQLiteStore) Clear(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM xrefs`)
	if err != nil {
		return 0, fmt.Errorf("clearing cache: %w", err)
	}
	return res.RowsAffected()
}
