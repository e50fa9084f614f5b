package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/brandlens/brandlens-api/internal/models"
)

// SQLiteProfileRepository implements ProfileRepository for SQLite/libsql.
type SQLiteProfileRepository struct {
	db *sql.DB
}

// NewSQLiteProfileRepository creates a new SQLite profile repository.
func NewSQLiteProfileRepository(db *sql.DB) *SQLiteProfileRepository {
	return &SQLiteProfileRepository{db: db}
}

// Create creates a new profile.
func (r *SQLiteProfileRepository) Create(ctx context.Context, profile *models.Profile) error {
	now := time.Now()
	if profile.ID == "" {
		profile.ID = ulid.Make().String()
	}
	profile.CreatedAt = now
	profile.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO profiles (
			id, email, brand_name, website_url, onboarding_completed, is_admin,
			subscription_plan, monthly_query_limit, queries_used_this_month,
			last_query_reset_at, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		profile.ID,
		profile.Email,
		profile.BrandName,
		nullString(profile.WebsiteURL),
		boolToInt(profile.OnboardingCompleted),
		boolToInt(profile.IsAdmin),
		profile.SubscriptionPlan,
		profile.MonthlyQueryLimit,
		profile.QueriesUsedThisMonth,
		nullTime(profile.LastQueryResetAt),
		now.Format(time.RFC3339),
		now.Format(time.RFC3339),
	)

	return err
}

// GetByID retrieves a profile by ID.
func (r *SQLiteProfileRepository) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	row := r.db.QueryRowContext(ctx, profileSelectColumns+` WHERE id = ?`, id)
	return scanProfile(row)
}

// GetByEmail retrieves a profile by email.
func (r *SQLiteProfileRepository) GetByEmail(ctx context.Context, email string) (*models.Profile, error) {
	row := r.db.QueryRowContext(ctx, profileSelectColumns+` WHERE email = ?`, email)
	return scanProfile(row)
}

// Update updates all mutable profile fields.
func (r *SQLiteProfileRepository) Update(ctx context.Context, profile *models.Profile) error {
	profile.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, `
		UPDATE profiles SET
			email = ?,
			brand_name = ?,
			website_url = ?,
			onboarding_completed = ?,
			is_admin = ?,
			subscription_plan = ?,
			monthly_query_limit = ?,
			queries_used_this_month = ?,
			last_query_reset_at = ?,
			updated_at = ?
		WHERE id = ?
	`,
		profile.Email,
		profile.BrandName,
		nullString(profile.WebsiteURL),
		boolToInt(profile.OnboardingCompleted),
		boolToInt(profile.IsAdmin),
		profile.SubscriptionPlan,
		profile.MonthlyQueryLimit,
		profile.QueriesUsedThisMonth,
		nullTime(profile.LastQueryResetAt),
		profile.UpdatedAt.Format(time.RFC3339),
		profile.ID,
	)

	return err
}

// UpdateQuotaUsage updates only the quota tracking fields.
func (r *SQLiteProfileRepository) UpdateQuotaUsage(ctx context.Context, id string, used int, resetAt time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE profiles SET
			queries_used_this_month = ?,
			last_query_reset_at = ?,
			updated_at = ?
		WHERE id = ?
	`,
		used,
		resetAt.Format(time.RFC3339),
		time.Now().Format(time.RFC3339),
		id,
	)
	return err
}

const profileSelectColumns = `
	SELECT id, email, brand_name, website_url, onboarding_completed, is_admin,
		   subscription_plan, monthly_query_limit, queries_used_this_month,
		   last_query_reset_at, created_at, updated_at
	FROM profiles`

func scanProfile(row *sql.Row) (*models.Profile, error) {
	var p models.Profile
	var websiteURL, lastReset sql.NullString
	var onboarding, isAdmin int
	var createdAt, updatedAt string

	err := row.Scan(
		&p.ID,
		&p.Email,
		&p.BrandName,
		&websiteURL,
		&onboarding,
		&isAdmin,
		&p.SubscriptionPlan,
		&p.MonthlyQueryLimit,
		&p.QueriesUsedThisMonth,
		&lastReset,
		&createdAt,
		&updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if websiteURL.Valid {
		p.WebsiteURL = websiteURL.String
	}
	p.OnboardingCompleted = onboarding != 0
	p.IsAdmin = isAdmin != 0
	if lastReset.Valid && lastReset.String != "" {
		if t, err := time.Parse(time.RFC3339, lastReset.String); err == nil {
			p.LastQueryResetAt = &t
		}
	}
	p.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	p.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)

	return &p, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(time.RFC3339)
}
