package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/brandlens/brandlens-api/internal/models"
)

// SQLiteMetricsRepository implements MetricsRepository for SQLite/libsql.
type SQLiteMetricsRepository struct {
	db *sql.DB
}

// NewSQLiteMetricsRepository creates a new SQLite metrics repository.
func NewSQLiteMetricsRepository(db *sql.DB) *SQLiteMetricsRepository {
	return &SQLiteMetricsRepository{db: db}
}

// Upsert writes the aggregated metrics row for (user_id, time_period),
// replacing any previous values so repeated aggregation converges.
func (r *SQLiteMetricsRepository) Upsert(ctx context.Context, metrics *models.AggregatedMetrics) error {
	if metrics.ID == "" {
		metrics.ID = ulid.Make().String()
	}
	if metrics.TimePeriod == "" {
		metrics.TimePeriod = models.MetricsPeriodAll
	}
	metrics.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO aggregated_metrics (id, user_id, time_period,
			avg_sentiment_score, avg_brand_visibility, share_of_voice,
			competitive_rank, response_quality, platform_coverage,
			total_executions, total_brand_mentions, total_competitor_mentions,
			top_competitor, avg_positive_sentiment, avg_neutral_sentiment,
			avg_negative_sentiment, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, time_period) DO UPDATE SET
			avg_sentiment_score = excluded.avg_sentiment_score,
			avg_brand_visibility = excluded.avg_brand_visibility,
			share_of_voice = excluded.share_of_voice,
			competitive_rank = excluded.competitive_rank,
			response_quality = excluded.response_quality,
			platform_coverage = excluded.platform_coverage,
			total_executions = excluded.total_executions,
			total_brand_mentions = excluded.total_brand_mentions,
			total_competitor_mentions = excluded.total_competitor_mentions,
			top_competitor = excluded.top_competitor,
			avg_positive_sentiment = excluded.avg_positive_sentiment,
			avg_neutral_sentiment = excluded.avg_neutral_sentiment,
			avg_negative_sentiment = excluded.avg_negative_sentiment,
			updated_at = excluded.updated_at
	`,
		metrics.ID,
		metrics.UserID,
		metrics.TimePeriod,
		metrics.AvgSentimentScore,
		metrics.AvgBrandVisibility,
		metrics.ShareOfVoice,
		metrics.CompetitiveRank,
		metrics.ResponseQuality,
		metrics.PlatformCoverage,
		metrics.TotalExecutions,
		metrics.TotalBrandMentions,
		metrics.TotalCompetitorMentions,
		nullString(metrics.TopCompetitor),
		metrics.AvgPositiveSentiment,
		metrics.AvgNeutralSentiment,
		metrics.AvgNegativeSentiment,
		metrics.UpdatedAt.Format(time.RFC3339),
	)

	return err
}

// GetByUser retrieves the metrics row for a user and time period.
func (r *SQLiteMetricsRepository) GetByUser(ctx context.Context, userID, timePeriod string) (*models.AggregatedMetrics, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, time_period,
			avg_sentiment_score, avg_brand_visibility, share_of_voice,
			competitive_rank, response_quality, platform_coverage,
			total_executions, total_brand_mentions, total_competitor_mentions,
			top_competitor, avg_positive_sentiment, avg_neutral_sentiment,
			avg_negative_sentiment, updated_at
		FROM aggregated_metrics
		WHERE user_id = ? AND time_period = ?
	`, userID, timePeriod)

	var m models.AggregatedMetrics
	var topCompetitor sql.NullString
	var updatedAt string

	err := row.Scan(&m.ID, &m.UserID, &m.TimePeriod,
		&m.AvgSentimentScore, &m.AvgBrandVisibility, &m.ShareOfVoice,
		&m.CompetitiveRank, &m.ResponseQuality, &m.PlatformCoverage,
		&m.TotalExecutions, &m.TotalBrandMentions, &m.TotalCompetitorMentions,
		&topCompetitor, &m.AvgPositiveSentiment, &m.AvgNeutralSentiment,
		&m.AvgNegativeSentiment, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if topCompetitor.Valid {
		m.TopCompetitor = topCompetitor.String
	}
	m.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)

	return &m, nil
}
