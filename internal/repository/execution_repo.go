package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/brandlens/brandlens-api/internal/models"
)

// SQLiteExecutionRepository implements ExecutionRepository for SQLite/libsql.
type SQLiteExecutionRepository struct {
	db *sql.DB
}

// NewSQLiteExecutionRepository creates a new SQLite execution repository.
func NewSQLiteExecutionRepository(db *sql.DB) *SQLiteExecutionRepository {
	return &SQLiteExecutionRepository{db: db}
}

const executionSelectColumns = `id, prompt_id, user_id, model, platform, status,
	ai_response, sources_json, error_message, executed_at, completed_at`

// Create inserts a new execution row. Status defaults to pending.
func (r *SQLiteExecutionRepository) Create(ctx context.Context, execution *models.Execution) error {
	if execution.ID == "" {
		execution.ID = ulid.Make().String()
	}
	if execution.Status == "" {
		execution.Status = models.ExecutionStatusPending
	}
	if execution.ExecutedAt.IsZero() {
		execution.ExecutedAt = time.Now()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO executions (id, prompt_id, user_id, model, platform, status,
			ai_response, sources_json, error_message, executed_at, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		execution.ID,
		execution.PromptID,
		execution.UserID,
		execution.Model,
		execution.Platform,
		string(execution.Status),
		nullString(execution.AIResponse),
		nullString(execution.SourcesJSON),
		nullString(execution.ErrorMessage),
		execution.ExecutedAt.Format(time.RFC3339),
		nullTime(execution.CompletedAt),
	)

	return err
}

// GetByID retrieves an execution by ID.
func (r *SQLiteExecutionRepository) GetByID(ctx context.Context, id string) (*models.Execution, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+executionSelectColumns+`
		FROM executions
		WHERE id = ?
	`, id)

	execution, err := scanExecution(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return execution, nil
}

// ListByPromptID returns a prompt's executions, newest first.
func (r *SQLiteExecutionRepository) ListByPromptID(ctx context.Context, promptID string) ([]*models.Execution, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+executionSelectColumns+`
		FROM executions
		WHERE prompt_id = ?
		ORDER BY executed_at DESC
	`, promptID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectExecutions(rows)
}

// ListCompletedByUser returns all completed executions for a user, oldest
// first. This is the input set for metrics aggregation.
func (r *SQLiteExecutionRepository) ListCompletedByUser(ctx context.Context, userID string) ([]*models.Execution, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+executionSelectColumns+`
		FROM executions
		WHERE user_id = ? AND status = ?
		ORDER BY executed_at ASC
	`, userID, string(models.ExecutionStatusCompleted))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectExecutions(rows)
}

// Complete marks an execution as completed and stores its response payload.
func (r *SQLiteExecutionRepository) Complete(ctx context.Context, id, aiResponse, sourcesJSON string, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE executions
		SET status = ?, ai_response = ?, sources_json = ?, error_message = NULL, completed_at = ?
		WHERE id = ?
	`,
		string(models.ExecutionStatusCompleted),
		nullString(aiResponse),
		nullString(sourcesJSON),
		at.Format(time.RFC3339),
		id,
	)

	return err
}

// Fail marks an execution as failed with the given message.
func (r *SQLiteExecutionRepository) Fail(ctx context.Context, id, errorMessage string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE executions
		SET status = ?, error_message = ?, completed_at = ?
		WHERE id = ?
	`,
		string(models.ExecutionStatusFailed),
		errorMessage,
		time.Now().Format(time.RFC3339),
		id,
	)

	return err
}

// MarkStaleProcessingFailed fails executions stuck in pending or processing
// longer than olderThan. Run at startup to recover from crashed dispatches.
func (r *SQLiteExecutionRepository) MarkStaleProcessingFailed(ctx context.Context, olderThan time.Duration) (int, error) {
	cutoff := time.Now().Add(-olderThan).Format(time.RFC3339)

	result, err := r.db.ExecContext(ctx, `
		UPDATE executions
		SET status = ?, error_message = 'execution timed out', completed_at = ?
		WHERE status IN (?, ?) AND executed_at < ?
	`,
		string(models.ExecutionStatusFailed),
		time.Now().Format(time.RFC3339),
		string(models.ExecutionStatusPending),
		string(models.ExecutionStatusProcessing),
		cutoff,
	)
	if err != nil {
		return 0, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}

	return int(affected), nil
}

func scanExecution(row *sql.Row) (*models.Execution, error) {
	var e models.Execution
	var status string
	var aiResponse, sourcesJSON, errorMessage, completedAt sql.NullString
	var executedAt string

	err := row.Scan(&e.ID, &e.PromptID, &e.UserID, &e.Model, &e.Platform, &status,
		&aiResponse, &sourcesJSON, &errorMessage, &executedAt, &completedAt)
	if err != nil {
		return nil, err
	}

	populateExecution(&e, status, aiResponse, sourcesJSON, errorMessage, executedAt, completedAt)

	return &e, nil
}

func collectExecutions(rows *sql.Rows) ([]*models.Execution, error) {
	var executions []*models.Execution
	for rows.Next() {
		var e models.Execution
		var status string
		var aiResponse, sourcesJSON, errorMessage, completedAt sql.NullString
		var executedAt string

		if err := rows.Scan(&e.ID, &e.PromptID, &e.UserID, &e.Model, &e.Platform, &status,
			&aiResponse, &sourcesJSON, &errorMessage, &executedAt, &completedAt); err != nil {
			return nil, err
		}

		populateExecution(&e, status, aiResponse, sourcesJSON, errorMessage, executedAt, completedAt)

		executions = append(executions, &e)
	}

	return executions, rows.Err()
}

func populateExecution(e *models.Execution, status string,
	aiResponse, sourcesJSON, errorMessage sql.NullString, executedAt string, completedAt sql.NullString) {
	e.Status = models.ExecutionStatus(status)
	if aiResponse.Valid {
		e.AIResponse = aiResponse.String
	}
	if sourcesJSON.Valid {
		e.SourcesJSON = sourcesJSON.String
	}
	if errorMessage.Valid {
		e.ErrorMessage = errorMessage.String
	}
	e.ExecutedAt, _ = time.Parse(time.RFC3339, executedAt)
	if completedAt.Valid {
		if t, err := time.Parse(time.RFC3339, completedAt.String); err == nil {
			e.CompletedAt = &t
		}
	}
}
