package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/arvision/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/arvision/internal/core/domain"
	"github.com/custodia-labs/arvision/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.DescriptorStore = (*Store)(nil)

// DatabaseFile is the file name used inside the data directory.
const DatabaseFile = "descriptors.db"

// Store is a SQLite-backed descriptor store.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.arvision/data/descriptors.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".arvision", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, DatabaseFile)

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// SchemaVersion returns the highest applied migration.
func (s *Store) SchemaVersion(ctx context.Context) (int, error) {
	var v int
	row := s.db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&v); err != nil {
		return 0, fmt.Errorf("getting schema version: %w", err)
	}
	return v, nil
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys fs.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	currentVersion, err := s.SchemaVersion(context.Background())
	if err != nil {
		return err
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_descriptors.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if err := s.apply(version, string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

func (s *Store) apply(version int, script string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(script); err != nil {
		_ = tx.Rollback()
		return err
	}
	if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// Fetch returns the payload stored at locator.
func (s *Store) Fetch(ctx context.Context, locator string) ([]byte, error) {
	var data []byte
	row := s.db.QueryRowContext(ctx, "SELECT data FROM descriptors WHERE locator = ?", locator)
	if err := row.Scan(&data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s: %w", domain.ErrFetchFailed, locator, domain.ErrDescriptorMissing)
		}
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrFetchFailed, locator, err)
	}
	return data, nil
}

// Put stores or replaces the payload at locator.
func (s *Store) Put(ctx context.Context, locator string, data []byte) error {
	if locator == "" {
		return fmt.Errorf("%w: empty locator", domain.ErrInvalidInput)
	}
	if data == nil {
		data = []byte{}
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO descriptors (locator, data, size, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(locator) DO UPDATE SET
			data = excluded.data,
			size = excluded.size,
			updated_at = excluded.updated_at
	`, locator, data, len(data), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("saving descriptor %s: %w", locator, err)
	}
	return nil
}

// List returns every stored locator in lexical order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT locator FROM descriptors ORDER BY locator")
	if err != nil {
		return nil, fmt.Errorf("listing descriptors: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var loc string
		if err := rows.Scan(&loc); err != nil {
			return nil, fmt.Errorf("scanning descriptor: %w", err)
		}
		out = append(out, loc)
	}
	return out, rows.Err()
}

// Delete removes the payload at locator.
func (s *Store) Delete(ctx context.Context, locator string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM descriptors WHERE locator = ?", locator)
	if err != nil {
		return fmt.Errorf("deleting descriptor %s: %w", locator, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting descriptor %s: %w", locator, err)
	}
	if n == 0 {
		return fmt.Errorf("descriptor %s: %w", locator, domain.ErrNotFound)
	}
	return nil
}
