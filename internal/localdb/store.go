// Package localdb implements the embedded relational store: a local libsql
// database whose full contents are persisted as one snapshot blob after
// every mutation. It substitutes for the hosted backend in offline and demo
// deployments, so expected row counts are small and writes are human-driven;
// the snapshot-per-write model trades throughput for crash safety.
package localdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	_ "github.com/tursodatabase/go-libsql"

	"github.com/brandlens/brandlens-api/internal/database/migrations"
)

// ErrNotInitialized is returned when Query or Exec is called before
// Initialize (or after Close).
var ErrNotInitialized = errors.New("localdb: store not initialized")

// Store is the embedded relational store. All operations are serialized by
// one mutex; cross-process coordination on the shared snapshot is explicitly
// out of scope (last writer to persist wins).
type Store struct {
	mu          sync.Mutex
	db          *sql.DB
	workPath    string
	snapshots   SnapshotStore
	logger      *slog.Logger
	initialized bool
}

// New creates a Store backed by the given snapshot store.
func New(snapshots SnapshotStore, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		snapshots: snapshots,
		logger:    logger.With("component", "localdb"),
	}
}

// Initialize loads the persisted snapshot if one exists, otherwise creates
// the schema and persists a fresh empty snapshot. It is idempotent: repeated
// calls on an initialized store are no-ops and never recreate tables.
func (s *Store) Initialize(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized {
		return nil
	}

	workPath := filepath.Join(os.TempDir(), fmt.Sprintf("brandlens-localdb-%s.db", uuid.NewString()))

	blob, err := s.snapshots.Load(ctx)
	switch {
	case errors.Is(err, ErrNoSnapshot):
		blob = nil
	case err != nil:
		return fmt.Errorf("failed to load snapshot: %w", err)
	default:
		if err := os.WriteFile(workPath, blob, 0o600); err != nil {
			return fmt.Errorf("failed to restore snapshot: %w", err)
		}
	}

	db, err := sql.Open("libsql", "file:"+workPath)
	if err != nil {
		return fmt.Errorf("failed to open embedded database: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	// Schema creation is the shared migration set, so the embedded store
	// and the hosted database can never drift apart.
	if err := migrations.Run(db, s.logger); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to create schema: %w", err)
	}

	s.db = db
	s.workPath = workPath
	s.initialized = true

	if blob == nil {
		if err := s.persistLocked(ctx); err != nil {
			s.initialized = false
			_ = db.Close()
			return err
		}
	}

	s.logger.Info("embedded store initialized", "restored", blob != nil)
	return nil
}

// Query executes a read statement with positional parameters and returns
// each row as a column-name-to-value map. A statement yielding no rows
// returns an empty, non-nil slice. SQL errors are logged with the offending
// statement and parameters, then returned.
func (s *Store) Query(ctx context.Context, query string, args ...any) ([]map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return nil, ErrNotInitialized
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		s.logger.Error("query failed", "sql", query, "params", args, "error", err)
		return nil, fmt.Errorf("localdb query: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("localdb query: %w", err)
	}

	results := make([]map[string]any, 0)
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("localdb scan: %w", err)
		}

		row := make(map[string]any, len(columns))
		for i, col := range columns {
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
				continue
			}
			row[col] = values[i]
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		s.logger.Error("query iteration failed", "sql", query, "error", err)
		return nil, fmt.Errorf("localdb query: %w", err)
	}

	return results, nil
}

// Exec executes a mutating statement, then persists the full database
// snapshot before returning. Every successful mutation is durable by the
// time the caller proceeds; there is no write buffering.
func (s *Store) Exec(ctx context.Context, query string, args ...any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return ErrNotInitialized
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		s.logger.Error("exec failed", "sql", query, "params", args, "error", err)
		return fmt.Errorf("localdb exec: %w", err)
	}

	return s.persistLocked(ctx)
}

// GenerateID produces a random globally-unique identifier suitable as a
// primary key.
func (s *Store) GenerateID() string {
	return uuid.NewString()
}

// Close persists final state and releases resources. The store requires
// re-Initialize afterwards.
func (s *Store) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return nil
	}

	persistErr := s.persistLocked(ctx)
	closeErr := s.db.Close()
	_ = os.Remove(s.workPath)

	s.db = nil
	s.initialized = false

	if persistErr != nil {
		return persistErr
	}
	if closeErr != nil {
		return fmt.Errorf("failed to close embedded database: %w", closeErr)
	}
	return nil
}

// persistLocked serializes the database and saves it to the snapshot store.
// Callers must hold s.mu.
func (s *Store) persistLocked(ctx context.Context) error {
	dumpPath := s.workPath + ".snapshot"
	_ = os.Remove(dumpPath)

	// VACUUM INTO does not accept bound parameters; the path is generated
	// locally, never user input.
	stmt := fmt.Sprintf("VACUUM INTO '%s'", strings.ReplaceAll(dumpPath, "'", "''"))
	if _, err := s.db.ExecContext(ctx, stmt); err != nil {
		s.logger.Error("snapshot dump failed", "error", err)
		return fmt.Errorf("localdb snapshot: %w", err)
	}
	defer func() { _ = os.Remove(dumpPath) }()

	data, err := os.ReadFile(dumpPath)
	if err != nil {
		return fmt.Errorf("localdb snapshot read: %w", err)
	}

	if err := s.snapshots.Save(ctx, data); err != nil {
		s.logger.Error("snapshot persist failed", "size_bytes", len(data), "error", err)
		return fmt.Errorf("localdb snapshot persist: %w", err)
	}
	return nil
}
