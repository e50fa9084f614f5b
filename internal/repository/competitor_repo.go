package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/brandlens/brandlens-api/internal/models"
)

// SQLiteCompetitorRepository implements CompetitorRepository for SQLite/libsql.
type SQLiteCompetitorRepository struct {
	db *sql.DB
}

// NewSQLiteCompetitorRepository creates a new SQLite competitor repository.
func NewSQLiteCompetitorRepository(db *sql.DB) *SQLiteCompetitorRepository {
	return &SQLiteCompetitorRepository{db: db}
}

// Create creates a new competitor.
func (r *SQLiteCompetitorRepository) Create(ctx context.Context, competitor *models.Competitor) error {
	if competitor.ID == "" {
		competitor.ID = ulid.Make().String()
	}
	competitor.CreatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO competitors (id, user_id, name, website_url, created_at)
		VALUES (?, ?, ?, ?, ?)
	`,
		competitor.ID,
		competitor.UserID,
		competitor.Name,
		nullString(competitor.WebsiteURL),
		competitor.CreatedAt.Format(time.RFC3339),
	)

	return err
}

// GetByID retrieves a competitor by ID.
func (r *SQLiteCompetitorRepository) GetByID(ctx context.Context, id string) (*models.Competitor, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, name, website_url, created_at
		FROM competitors
		WHERE id = ?
	`, id)

	var c models.Competitor
	var websiteURL sql.NullString
	var createdAt string

	err := row.Scan(&c.ID, &c.UserID, &c.Name, &websiteURL, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if websiteURL.Valid {
		c.WebsiteURL = websiteURL.String
	}
	c.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)

	return &c, nil
}

// ListByUserID returns a user's competitors, oldest first.
func (r *SQLiteCompetitorRepository) ListByUserID(ctx context.Context, userID string) ([]*models.Competitor, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, name, website_url, created_at
		FROM competitors
		WHERE user_id = ?
		ORDER BY created_at ASC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var competitors []*models.Competitor
	for rows.Next() {
		var c models.Competitor
		var websiteURL sql.NullString
		var createdAt string

		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &websiteURL, &createdAt); err != nil {
			return nil, err
		}
		if websiteURL.Valid {
			c.WebsiteURL = websiteURL.String
		}
		c.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)

		competitors = append(competitors, &c)
	}

	return competitors, rows.Err()
}

// Delete removes a competitor by ID.
func (r *SQLiteCompetitorRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM competitors WHERE id = ?`, id)
	return err
}
