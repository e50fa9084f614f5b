package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/brandlens/brandlens-api/internal/models"
)

// SQLiteRecommendationRepository implements RecommendationRepository for SQLite/libsql.
type SQLiteRecommendationRepository struct {
	db *sql.DB
}

// NewSQLiteRecommendationRepository creates a new SQLite recommendation repository.
func NewSQLiteRecommendationRepository(db *sql.DB) *SQLiteRecommendationRepository {
	return &SQLiteRecommendationRepository{db: db}
}

// CreateBatch inserts all recommendation rows in a single transaction,
// preserving their ordinal order.
func (r *SQLiteRecommendationRepository) CreateBatch(ctx context.Context, recommendations []*models.Recommendation) error {
	if len(recommendations) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now()
	for _, rec := range recommendations {
		if rec.ID == "" {
			rec.ID = ulid.Make().String()
		}
		rec.CreatedAt = now

		_, err := tx.ExecContext(ctx, `
			INSERT INTO recommendations (id, execution_id, ordinal, text, created_at)
			VALUES (?, ?, ?, ?, ?)
		`,
			rec.ID,
			rec.ExecutionID,
			rec.Ordinal,
			rec.Text,
			rec.CreatedAt.Format(time.RFC3339),
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// ListByExecutionID returns an execution's recommendations in ordinal order.
func (r *SQLiteRecommendationRepository) ListByExecutionID(ctx context.Context, executionID string) ([]*models.Recommendation, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, execution_id, ordinal, text, created_at
		FROM recommendations
		WHERE execution_id = ?
		ORDER BY ordinal ASC
	`, executionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recommendations []*models.Recommendation
	for rows.Next() {
		var rec models.Recommendation
		var createdAt string

		if err := rows.Scan(&rec.ID, &rec.ExecutionID, &rec.Ordinal, &rec.Text, &createdAt); err != nil {
			return nil, err
		}
		rec.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)

		recommendations = append(recommendations, &rec)
	}

	return recommendations, rows.Err()
}
