package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/brandlens/brandlens-api/internal/models"
)

// SQLitePromptRepository implements PromptRepository for SQLite/libsql.
type SQLitePromptRepository struct {
	db *sql.DB
}

// NewSQLitePromptRepository creates a new SQLite prompt repository.
func NewSQLitePromptRepository(db *sql.DB) *SQLitePromptRepository {
	return &SQLitePromptRepository{db: db}
}

const promptSelectColumns = `id, user_id, query_text, is_active, update_frequency,
	target_platform, target_location, last_triggered_at, created_at, updated_at`

// Create creates a new prompt.
func (r *SQLitePromptRepository) Create(ctx context.Context, prompt *models.Prompt) error {
	if prompt.ID == "" {
		prompt.ID = ulid.Make().String()
	}
	if prompt.UpdateFrequency == "" {
		prompt.UpdateFrequency = models.FrequencyWeekly
	}
	now := time.Now()
	prompt.CreatedAt = now
	prompt.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO prompts (id, user_id, query_text, is_active, update_frequency,
			target_platform, target_location, last_triggered_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		prompt.ID,
		prompt.UserID,
		prompt.QueryText,
		boolToInt(prompt.IsActive),
		string(prompt.UpdateFrequency),
		nullString(prompt.TargetPlatform),
		nullString(prompt.TargetLocation),
		nullTime(prompt.LastTriggeredAt),
		prompt.CreatedAt.Format(time.RFC3339),
		prompt.UpdatedAt.Format(time.RFC3339),
	)

	return err
}

// GetByID retrieves a prompt by ID.
func (r *SQLitePromptRepository) GetByID(ctx context.Context, id string) (*models.Prompt, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+promptSelectColumns+`
		FROM prompts
		WHERE id = ?
	`, id)

	prompt, err := scanPrompt(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return prompt, nil
}

// ListByUserID returns a user's prompts, newest first.
func (r *SQLitePromptRepository) ListByUserID(ctx context.Context, userID string) ([]*models.Prompt, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+promptSelectColumns+`
		FROM prompts
		WHERE user_id = ?
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectPrompts(rows)
}

// ListDue returns active prompts whose frequency window has elapsed since
// they were last triggered. Never-triggered prompts are always due.
func (r *SQLitePromptRepository) ListDue(ctx context.Context, now time.Time) ([]*models.Prompt, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+promptSelectColumns+`
		FROM prompts
		WHERE is_active = 1
		ORDER BY created_at ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	active, err := collectPrompts(rows)
	if err != nil {
		return nil, err
	}

	var due []*models.Prompt
	for _, p := range active {
		if p.LastTriggeredAt == nil || now.Sub(*p.LastTriggeredAt) >= p.UpdateFrequency.Window() {
			due = append(due, p)
		}
	}

	return due, nil
}

// Update updates a prompt's mutable fields.
func (r *SQLitePromptRepository) Update(ctx context.Context, prompt *models.Prompt) error {
	prompt.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, `
		UPDATE prompts
		SET query_text = ?, is_active = ?, update_frequency = ?,
			target_platform = ?, target_location = ?, updated_at = ?
		WHERE id = ?
	`,
		prompt.QueryText,
		boolToInt(prompt.IsActive),
		string(prompt.UpdateFrequency),
		nullString(prompt.TargetPlatform),
		nullString(prompt.TargetLocation),
		prompt.UpdatedAt.Format(time.RFC3339),
		prompt.ID,
	)

	return err
}

// MarkTriggered records that a prompt was dispatched at the given time.
func (r *SQLitePromptRepository) MarkTriggered(ctx context.Context, id string, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE prompts
		SET last_triggered_at = ?, updated_at = ?
		WHERE id = ?
	`,
		at.Format(time.RFC3339),
		at.Format(time.RFC3339),
		id,
	)

	return err
}

// Delete removes a prompt and, via cascade, its executions and derived rows.
func (r *SQLitePromptRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM prompts WHERE id = ?`, id)
	return err
}

func scanPrompt(row *sql.Row) (*models.Prompt, error) {
	var p models.Prompt
	var isActive int
	var frequency string
	var targetPlatform, targetLocation, lastTriggeredAt sql.NullString
	var createdAt, updatedAt string

	err := row.Scan(&p.ID, &p.UserID, &p.QueryText, &isActive, &frequency,
		&targetPlatform, &targetLocation, &lastTriggeredAt, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	populatePrompt(&p, isActive, frequency, targetPlatform, targetLocation, lastTriggeredAt, createdAt, updatedAt)

	return &p, nil
}

func collectPrompts(rows *sql.Rows) ([]*models.Prompt, error) {
	var prompts []*models.Prompt
	for rows.Next() {
		var p models.Prompt
		var isActive int
		var frequency string
		var targetPlatform, targetLocation, lastTriggeredAt sql.NullString
		var createdAt, updatedAt string

		if err := rows.Scan(&p.ID, &p.UserID, &p.QueryText, &isActive, &frequency,
			&targetPlatform, &targetLocation, &lastTriggeredAt, &createdAt, &updatedAt); err != nil {
			return nil, err
		}

		populatePrompt(&p, isActive, frequency, targetPlatform, targetLocation, lastTriggeredAt, createdAt, updatedAt)

		prompts = append(prompts, &p)
	}

	return prompts, rows.Err()
}

func populatePrompt(p *models.Prompt, isActive int, frequency string,
	targetPlatform, targetLocation, lastTriggeredAt sql.NullString, createdAt, updatedAt string) {
	p.IsActive = isActive != 0
	p.UpdateFrequency = models.PromptFrequency(frequency)
	if targetPlatform.Valid {
		p.TargetPlatform = targetPlatform.String
	}
	if targetLocation.Valid {
		p.TargetLocation = targetLocation.String
	}
	if lastTriggeredAt.Valid {
		if t, err := time.Parse(time.RFC3339, lastTriggeredAt.String); err == nil {
			p.LastTriggeredAt = &t
		}
	}
	p.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	p.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
}
