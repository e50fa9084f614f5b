package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/brandlens/brandlens-api/internal/models"
)

// SQLiteSentimentRepository implements SentimentRepository for SQLite/libsql.
type SQLiteSentimentRepository struct {
	db *sql.DB
}

// NewSQLiteSentimentRepository creates a new SQLite sentiment repository.
func NewSQLiteSentimentRepository(db *sql.DB) *SQLiteSentimentRepository {
	return &SQLiteSentimentRepository{db: db}
}

// Create inserts a sentiment row. The execution_id UNIQUE constraint rejects
// a second row for the same execution.
func (r *SQLiteSentimentRepository) Create(ctx context.Context, sentiment *models.SentimentAnalysis) error {
	if sentiment.ID == "" {
		sentiment.ID = ulid.Make().String()
	}
	sentiment.CreatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sentiment_analysis (id, execution_id, positive_percentage, neutral_percentage, negative_percentage, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		sentiment.ID,
		sentiment.ExecutionID,
		sentiment.PositivePercentage,
		sentiment.NeutralPercentage,
		sentiment.NegativePercentage,
		sentiment.CreatedAt.Format(time.RFC3339),
	)

	return err
}

// ListByExecutionIDs returns sentiment rows for the given executions.
func (r *SQLiteSentimentRepository) ListByExecutionIDs(ctx context.Context, executionIDs []string) ([]*models.SentimentAnalysis, error) {
	if len(executionIDs) == 0 {
		return nil, nil
	}

	query := `
		SELECT id, execution_id, positive_percentage, neutral_percentage, negative_percentage, created_at
		FROM sentiment_analysis
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

	var sentiments []*models.SentimentAnalysis
	for rows.Next() {
		var s models.SentimentAnalysis
		var createdAt string

		if err := rows.Scan(&s.ID, &s.ExecutionID, &s.PositivePercentage, &s.NeutralPercentage, &s.NegativePercentage, &createdAt); err != nil {
			return nil, err
		}
		s.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)

		sentiments = append(sentiments, &s)
	}

	return sentiments, rows.Err()
}
