// Package sqlite implements the storage contract on modernc.org/sqlite, a
// pure Go SQLite driver needing no CGO. One database connection in WAL mode
// serves all entity stores; writes are per-statement transactions, and the
// driver's constraint failures are mapped onto storage.ConstraintError so
// callers never parse driver messages themselves.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/chanuka/bound/entity"
	"github.com/chanuka/bound/storage"
	"github.com/chanuka/bound/storage/sqlite/migrations"
)

// Store holds the shared connection behind the per-entity stores.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens (creating if needed) the database at path and brings the
// schema up to date.
func NewStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error { return s.db.Close() }

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

// Users returns the users store backed by this connection.
func (s *Store) Users() storage.RecordStore[entity.UserRecord] {
	return &userStore{store: s}
}

// Bills returns the bills store backed by this connection.
func (s *Store) Bills() storage.RecordStore[entity.BillRecord] {
	return &billStore{store: s}
}

// Comments returns the comments store backed by this connection.
func (s *Store) Comments() storage.RecordStore[entity.CommentRecord] {
	return &commentStore{store: s}
}

// migrate runs all pending .up.sql migrations in filename order.
func (s *Store) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var current int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&current); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}
	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= current {
			continue
		}
		content, err := fs.ReadFile(migrations.FS, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}
	return nil
}

// mapConstraint classifies driver-level constraint failures. SQLite reports
// them in the error text; the column is present only for UNIQUE violations.
func mapConstraint(table string, err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"):
		return &storage.ConstraintError{
			Kind:   storage.ConstraintUnique,
			Table:  table,
			Column: uniqueColumn(msg, table),
			Cause:  err,
		}
	case strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return &storage.ConstraintError{Kind: storage.ConstraintForeignKey, Table: table, Cause: err}
	case strings.Contains(msg, "CHECK constraint failed"):
		return &storage.ConstraintError{Kind: storage.ConstraintCheck, Table: table, Cause: err}
	}
	return err
}

// staleOrMissing classifies a zero-row versioned UPDATE: either the row is
// gone or the caller's version token is stale. Runs inside the update's
// transaction so the re-read is consistent with the attempt.
func staleOrMissing(ctx context.Context, tx *sql.Tx, table, id string, res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking affected rows: %w", err)
	}
	if n > 0 {
		return nil
	}
	var exists int
	err = tx.QueryRowContext(ctx, "SELECT 1 FROM "+table+" WHERE id = ?", id).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("checking row existence: %w", err)
	}
	return &storage.ConstraintError{Kind: storage.ConstraintStaleVersion, Table: table, Column: "version"}
}

// noneDeleted maps a zero-row DELETE to ErrNotFound.
func noneDeleted(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking affected rows: %w", err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// uniqueColumn pulls "email" out of "... UNIQUE constraint failed: users.email ...".
func uniqueColumn(msg, table string) string {
	marker := "UNIQUE constraint failed: " + table + "."
	i := strings.Index(msg, marker)
	if i < 0 {
		return ""
	}
	rest := msg[i+len(marker):]
	if j := strings.IndexAny(rest, " ,("); j >= 0 {
		rest = rest[:j]
	}
	return strings.TrimSpace(rest)
}
