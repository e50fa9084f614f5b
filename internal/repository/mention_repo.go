package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/brandlens/brandlens-api/internal/models"
)

// SQLiteMentionRepository implements MentionRepository for SQLite/libsql.
type SQLiteMentionRepository struct {
	db *sql.DB
}

// NewSQLiteMentionRepository creates a new SQLite mention repository.
func NewSQLiteMentionRepository(db *sql.DB) *SQLiteMentionRepository {
	return &SQLiteMentionRepository{db: db}
}

// CreateBatch inserts all mention rows in a single transaction so an
// execution's mentions land atomically.
func (r *SQLiteMentionRepository) CreateBatch(ctx context.Context, mentions []*models.BrandMention) error {
	if len(mentions) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now()
	for _, m := range mentions {
		if m.ID == "" {
			m.ID = ulid.Make().String()
		}
		m.CreatedAt = now

		_, err := tx.ExecContext(ctx, `
			INSERT INTO brand_mentions (id, execution_id, brand_name, mention_count, is_user_brand, created_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`,
			m.ID,
			m.ExecutionID,
			m.BrandName,
			m.MentionCount,
			boolToInt(m.IsUserBrand),
			m.CreatedAt.Format(time.RFC3339),
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// ListByExecutionIDs returns all mention rows for the given executions.
func (r *SQLiteMentionRepository) ListByExecutionIDs(ctx context.Context, executionIDs []string) ([]*models.BrandMention, error) {
	if len(executionIDs) == 0 {
		return nil, nil
	}

	query := `
		SELECT id, execution_id, brand_name, mention_count, is_user_brand, created_at
		FROM brand_mentions
		WHERE execution_id IN (` + placeholders(len(executionIDs)) + `)
		ORDER BY created_at ASC
	`

	args := make([]any, len(executionIDs))
	for i, id := range executionIDs {
		args[i] = id
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var mentions []*models.BrandMention
	for rows.Next() {
		var m models.BrandMention
		var isUserBrand int
		var createdAt string

		if err := rows.Scan(&m.ID, &m.ExecutionID, &m.BrandName, &m.MentionCount, &isUserBrand, &createdAt); err != nil {
			return nil, err
		}
		m.IsUserBrand = isUserBrand != 0
		m.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)

		mentions = append(mentions, &m)
	}

	return mentions, rows.Err()
}

// placeholders returns n comma-separated SQL placeholders.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
