// Package mapping maintains the file-mapping index of exported documents.
//
// Every exported Markdown file gets a numeric id that stays stable across runs: the id is
// keyed by the file's path relative to the export folder. The index is kept in SQLite and
// mirrored to a JSON file for consumers that cannot read the database.
package mapping

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	ferrors "git.home.luguber.info/inful/mdx2md/internal/foundation/errors"
)

// Entry is one indexed document.
type Entry struct {
	ID               int64     `json:"-"`
	URL              string    `json:"url"`
	Title            string    `json:"title"`
	OriginalFilename string    `json:"original_filename"`
	CurrentFilename  string    `json:"current_filename"`
	OriginalPath     string    `json:"original_path"`
	OutputPath       string    `json:"output_path"`
	Fingerprint      string    `json:"fingerprint,omitempty"`
	Commit           string    `json:"commit,omitempty"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Store persists entries in SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Open opens (creating if needed) the index database at path. Use ":memory:" for an
// in-memory index.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, ferrors.IndexError("could not open index database").WithCause(err).WithPath(path).Build()
	}
	// A single connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.initialize(); err != nil {
		_ = db.Close()
		return nil, ferrors.IndexError("failed to initialize index schema").WithCause(err).WithPath(path).Build()
	}
	return s, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS files (
		id INTEGER PRIMARY KEY,
		original_path TEXT NOT NULL UNIQUE,
		url TEXT NOT NULL,
		title TEXT NOT NULL,
		original_filename TEXT NOT NULL,
		current_filename TEXT NOT NULL,
		output_path TEXT NOT NULL,
		fingerprint TEXT NOT NULL DEFAULT '',
		git_commit TEXT NOT NULL DEFAULT '',
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_files_url ON files(url);
	`
	_, err := s.db.Exec(schema)
	return err
}

// NextID returns the id the next new path will receive.
func (s *Store) NextID(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var maxID sql.NullInt64
	if err := s.db.QueryRowContext(ctx, "SELECT MAX(id) FROM files").Scan(&maxID); err != nil {
		return 0, ferrors.IndexError("failed to query next id").WithCause(err).Build()
	}
	return maxID.Int64 + 1, nil
}

// IDFor returns the id assigned to originalPath, if any.
func (s *Store) IDFor(ctx context.Context, originalPath string) (int64, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.idFor(ctx, s.db, originalPath)
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Store) idFor(ctx context.Context, q queryer, originalPath string) (int64, bool, error) {
	var id int64
	err := q.QueryRowContext(ctx, "SELECT id FROM files WHERE original_path = ?", originalPath).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, ferrors.IndexError("failed to look up id").WithCause(err).WithPath(originalPath).Build()
	}
	return id, true, nil
}

// Upsert stores e. An entry whose original path is already indexed keeps its id and has
// its other fields replaced; a new path gets e.ID when non-zero, otherwise the next id.
// The stored id is returned.
func (s *Store) Upsert(ctx context.Context, e Entry) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, ferrors.IndexError("failed to begin transaction").WithCause(err).Build()
	}
	defer func() { _ = tx.Rollback() }()

	if e.UpdatedAt.IsZero() {
		e.UpdatedAt = time.Now()
	}
	id, found, err := s.idFor(ctx, tx, e.OriginalPath)
	if err != nil {
		return 0, err
	}

	if found {
		_, err = tx.ExecContext(ctx, `UPDATE files SET url = ?, title = ?, original_filename = ?,
			current_filename = ?, output_path = ?, fingerprint = ?, git_commit = ?, updated_at = ?
			WHERE id = ?`,
			e.URL, e.Title, e.OriginalFilename, e.CurrentFilename, e.OutputPath,
			e.Fingerprint, e.Commit, e.UpdatedAt.Unix(), id)
	} else {
		var idArg any
		if e.ID > 0 {
			idArg = e.ID
		}
		var res sql.Result
		res, err = tx.ExecContext(ctx, `INSERT INTO files (id, original_path, url, title, original_filename,
			current_filename, output_path, fingerprint, git_commit, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			idArg, e.OriginalPath, e.URL, e.Title, e.OriginalFilename, e.CurrentFilename,
			e.OutputPath, e.Fingerprint, e.Commit, e.UpdatedAt.Unix())
		if err == nil {
			id, err = res.LastInsertId()
		}
	}
	if err != nil {
		return 0, ferrors.IndexError("failed to store entry").WithCause(err).WithPath(e.OriginalPath).Build()
	}
	if err := tx.Commit(); err != nil {
		return 0, ferrors.IndexError("failed to commit entry").WithCause(err).WithPath(e.OriginalPath).Build()
	}
	return id, nil
}

// Get returns the entry with the given id.
func (s *Store) Get(ctx context.Context, id int64) (*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, selectEntries+" WHERE id = ?", id)
	if err != nil {
		return nil, ferrors.IndexError("failed to query entry").WithCause(err).Build()
	}
	defer rows.Close()

	entries, err := scanEntries(rows)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, ferrors.IndexError("no entry with this id").WithContext("id", id).Build()
	}
	return &entries[0], nil
}

// All returns every entry ordered by id.
func (s *Store) All(ctx context.Context) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, selectEntries+" ORDER BY id")
	if err != nil {
		return nil, ferrors.IndexError("failed to query entries").WithCause(err).Build()
	}
	defer rows.Close()
	return scanEntries(rows)
}

// Count returns the number of entries.
func (s *Store) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM files").Scan(&n); err != nil {
		return 0, ferrors.IndexError("failed to count entries").WithCause(err).Build()
	}
	return n, nil
}

const selectEntries = `SELECT id, original_path, url, title, original_filename, current_filename,
	output_path, fingerprint, git_commit, updated_at FROM files`

func scanEntries(rows *sql.Rows) ([]Entry, error) {
	var out []Entry
	for rows.Next() {
		var e Entry
		var updated int64
		if err := rows.Scan(&e.ID, &e.OriginalPath, &e.URL, &e.Title, &e.OriginalFilename,
			&e.CurrentFilename, &e.OutputPath, &e.Fingerprint, &e.Commit, &updated); err != nil {
			return nil, ferrors.IndexError("failed to scan entry").WithCause(err).Build()
		}
		e.UpdatedAt = time.Unix(updated, 0)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, ferrors.IndexError("failed to iterate entries").WithCause(err).Build()
	}
	return out, nil
}

// Close closes the database.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}
