package querybuilder

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/oklog/ulid/v2"
)

// SQLExecutor adapts a database/sql handle to the Executor interface, so the
// same builder chains run against the server database that localdb serves in
// offline mode.
type SQLExecutor struct {
	db *sql.DB
}

// NewSQLExecutor wraps a *sql.DB.
func NewSQLExecutor(db *sql.DB) *SQLExecutor {
	return &SQLExecutor{db: db}
}

// Query executes a read statement and returns rows as column-to-value maps.
func (e *SQLExecutor) Query(ctx context.Context, query string, args ...any) ([]map[string]any, error) {
	rows, err := e.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}

	results := make([]map[string]any, 0)
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
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

	return results, rows.Err()
}

// Exec executes a mutating statement.
func (e *SQLExecutor) Exec(ctx context.Context, query string, args ...any) error {
	if _, err := e.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("exec: %w", err)
	}
	return nil
}

// GenerateID mints a primary key in the same format the repositories use.
func (e *SQLExecutor) GenerateID() string {
	return ulid.Make().String()
}
