// Package repository provides data access for the brandlens schema.
// Repositories return (nil, nil) for single-row lookups that match nothing;
// SQL failures are always propagated to the caller.
package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/brandlens/brandlens-api/internal/models"
)

// ProfileRepository manages user profiles.
type ProfileRepository interface {
	Create(ctx context.Context, profile *models.Profile) error
	GetByID(ctx context.Context, id string) (*models.Profile, error)
	GetByEmail(ctx context.Context, email string) (*models.Profile, error)
	Update(ctx context.Context, profile *models.Profile) error
	UpdateQuotaUsage(ctx context.Context, id string, used int, resetAt time.Time) error
}

// CompetitorRepository manages tracked competitor brands.
type CompetitorRepository interface {
	Create(ctx context.Context, competitor *models.Competitor) error
	GetByID(ctx context.Context, id string) (*models.Competitor, error)
	ListByUserID(ctx context.Context, userID string) ([]*models.Competitor, error)
	Delete(ctx context.Context, id string) error
}

// PromptRepository manages tracked prompts.
type PromptRepository interface {
	Create(ctx context.Context, prompt *models.Prompt) error
	GetByID(ctx context.Context, id string) (*models.Prompt, error)
	ListByUserID(ctx context.Context, userID string) ([]*models.Prompt, error)
	ListDue(ctx context.Context, now time.Time) ([]*models.Prompt, error)
	Update(ctx context.Context, prompt *models.Prompt) error
	MarkTriggered(ctx context.Context, id string, at time.Time) error
	Delete(ctx context.Context, id string) error
}

// ExecutionRepository manages the append-only execution fact table.
type ExecutionRepository interface {
	Create(ctx context.Context, execution *models.Execution) error
	GetByID(ctx context.Context, id string) (*models.Execution, error)
	ListByPromptID(ctx context.Context, promptID string) ([]*models.Execution, error)
	ListCompletedByUser(ctx context.Context, userID string) ([]*models.Execution, error)
	Complete(ctx context.Context, id, aiResponse, sourcesJSON string, at time.Time) error
	Fail(ctx context.Context, id, errorMessage string) error
	MarkStaleProcessingFailed(ctx context.Context, olderThan time.Duration) (int, error)
}

// MentionRepository manages per-execution brand mention rows.
type MentionRepository interface {
	CreateBatch(ctx context.Context, mentions []*models.BrandMention) error
	ListByExecutionIDs(ctx context.Context, executionIDs []string) ([]*models.BrandMention, error)
}

// SentimentRepository manages per-execution sentiment rows.
type SentimentRepository interface {
	Create(ctx context.Context, sentiment *models.SentimentAnalysis) error
	ListByExecutionIDs(ctx context.Context, executionIDs []string) ([]*models.SentimentAnalysis, error)
}

// RecommendationRepository manages per-execution recommendation rows.
type RecommendationRepository interface {
	CreateBatch(ctx context.Context, recommendations []*models.Recommendation) error
	ListByExecutionID(ctx context.Context, executionID string) ([]*models.Recommendation, error)
}

// MetricsRepository manages the aggregated metrics cache.
type MetricsRepository interface {
	Upsert(ctx context.Context, metrics *models.AggregatedMetrics) error
	GetByUser(ctx context.Context, userID, timePeriod string) (*models.AggregatedMetrics, error)
}

// Repositories holds all repository instances.
type Repositories struct {
	Profile        ProfileRepository
	Competitor     CompetitorRepository
	Prompt         PromptRepository
	Execution      ExecutionRepository
	Mention        MentionRepository
	Sentiment      SentimentRepository
	Recommendation RecommendationRepository
	Metrics        MetricsRepository
}

// NewRepositories creates all SQLite repository instances.
func NewRepositories(db *sql.DB) *Repositories {
	return &Repositories{
		Profile:        NewSQLiteProfileRepository(db),
		Competitor:     NewSQLiteCompetitorRepository(db),
		Prompt:         NewSQLitePromptRepository(db),
		Execution:      NewSQLiteExecutionRepository(db),
		Mention:        NewSQLiteMentionRepository(db),
		Sentiment:      NewSQLiteSentimentRepository(db),
		Recommendation: NewSQLiteRecommendationRepository(db),
		Metrics:        NewSQLiteMetricsRepository(db),
	}
}
