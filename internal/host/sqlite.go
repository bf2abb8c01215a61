package host

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 1 - Initial schema (attributes table)
const currentSchemaVersion = 1

// SQLiteStore is a durable Store backed by SQLite.
//
// It persists the same flat attribute namespace a document host would,
// so a sheet's state survives between CLI invocations. It is not an
// EventSource: events originate from a document, not from storage.
type SQLiteStore struct {
	db    *sql.DB
	idGen RowIDGenerator
}

// SQLiteOption configures a SQLiteStore.
type SQLiteOption func(*SQLiteStore)

// WithSQLiteRowIDGenerator overrides the default UUID row-id generator.
func WithSQLiteRowIDGenerator(g RowIDGenerator) SQLiteOption {
	return func(s *SQLiteStore) {
		s.idGen = g
	}
}

// OpenSQLite creates or opens a SQLite-backed store at the given path.
// Use ":memory:" for an ephemeral database.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode (balance durability/performance)
//   - 5-second busy timeout for lock contention
//   - Foreign key enforcement
//
// This function is idempotent - safe to call multiple times.
func OpenSQLite(path string, opts ...SQLiteOption) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	s := &SQLiteStore{db: db, idGen: UUIDGenerator{}}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// readChunkSize caps how many bound parameters one read query carries,
// staying well under SQLite's default host-parameter limit of 999.
const readChunkSize = 500

// Read implements Store. Unknown keys are absent from the result. Key
// sets larger than one query's parameter budget are read in chunks.
func (s *SQLiteStore) Read(ctx context.Context, keys []string) (map[string]string, error) {
	out := make(map[string]string, len(keys))
	for start := 0; start < len(keys); start += readChunkSize {
		end := min(start+readChunkSize, len(keys))
		if err := s.readChunk(ctx, keys[start:end], out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *SQLiteStore) readChunk(ctx context.Context, keys []string, out map[string]string) error {
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(keys)), ",")
	args := make([]any, len(keys))
	for i, k := range keys {
		args[i] = k
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT key, value FROM attributes WHERE key IN ("+placeholders+")", args...)
	if err != nil {
		return fmt.Errorf("read attributes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return fmt.Errorf("scan attribute: %w", err)
		}
		out[k] = v
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("read attributes: %w", err)
	}
	return nil
}

// Write implements Store. All values land in one transaction so a
// batched write is never partially visible. Silent is accepted but
// meaningless here - there are no subscribers to suppress.
func (s *SQLiteStore) Write(ctx context.Context, values map[string]string, opts WriteOptions) error {
	if len(values) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin write: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO attributes (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`)
	if err != nil {
		return fmt.Errorf("prepare write: %w", err)
	}
	defer stmt.Close()

	for k, v := range values {
		if _, err := stmt.ExecContext(ctx, k, v); err != nil {
			return fmt.Errorf("write attribute %q: %w", k, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit write: %w", err)
	}
	return nil
}

// ListRowIDs implements Store. Order is first-seen insertion order,
// reconstructed from the attributes table's monotonic id column.
func (s *SQLiteStore) ListRowIDs(ctx context.Context, section string) ([]string, error) {
	prefix := SectionKey(section) + "_"
	rows, err := s.db.QueryContext(ctx,
		"SELECT key FROM attributes WHERE key LIKE ? ORDER BY id ASC", prefix+"%")
	if err != nil {
		return nil, fmt.Errorf("list rows for %q: %w", section, err)
	}
	defer rows.Close()

	var ids []string
	seen := make(map[string]struct{})
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("scan row key: %w", err)
		}
		gotSection, rowID, _, ok := ParseRowKey(key)
		if !ok || gotSection != section {
			continue
		}
		if _, dup := seen[rowID]; dup {
			continue
		}
		seen[rowID] = struct{}{}
		ids = append(ids, rowID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list rows for %q: %w", section, err)
	}
	return ids, nil
}

// NewRowID implements Store by delegating to the configured generator.
func (s *SQLiteStore) NewRowID() string {
	return s.idGen.Generate()
}

// All returns every stored attribute in insertion order. Used by the
// CLI dump command.
func (s *SQLiteStore) All(ctx context.Context) ([][2]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT key, value FROM attributes ORDER BY id ASC")
	if err != nil {
		return nil, fmt.Errorf("dump attributes: %w", err)
	}
	defer rows.Close()

	var out [][2]string
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("scan attribute: %w", err)
		}
		out = append(out, [2]string{k, v})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("dump attributes: %w", err)
	}
	return out, nil
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// applySchema creates tables if they don't exist and stamps the
// schema version. Idempotent.
func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}
	if version < currentSchemaVersion {
		if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
			return fmt.Errorf("set user_version: %w", err)
		}
	}
	return nil
}
