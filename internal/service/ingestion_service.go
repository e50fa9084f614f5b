package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/brandlens/brandlens-api/internal/models"
	"github.com/brandlens/brandlens-api/internal/repository"
)

// ErrMissingExecutionID is returned when a callback payload does not say
// which execution it belongs to. This is a programmer error on the workflow
// side and is rejected loudly rather than guessed around.
var ErrMissingExecutionID = errors.New("callback payload missing executionId")

// ErrUnknownExecution is returned when the callback references an execution
// that does not exist.
var ErrUnknownExecution = errors.New("callback references unknown execution")

// IngestionService turns workflow result callbacks into rows: it completes
// the execution, fans out brand mention, sentiment and recommendation rows,
// and then triggers a best-effort metrics recompute.
type IngestionService struct {
	executions      repository.ExecutionRepository
	profiles        repository.ProfileRepository
	mentions        repository.MentionRepository
	sentiments      repository.SentimentRepository
	recommendations repository.RecommendationRepository
	metrics         *MetricsService
	logger          *slog.Logger
}

// NewIngestionService creates a new ingestion service.
func NewIngestionService(
	executions repository.ExecutionRepository,
	profiles repository.ProfileRepository,
	mentions repository.MentionRepository,
	sentiments repository.SentimentRepository,
	recommendations repository.RecommendationRepository,
	metrics *MetricsService,
	logger *slog.Logger,
) *IngestionService {
	if logger == nil {
		logger = slog.Default()
	}
	return &IngestionService{
		executions:      executions,
		profiles:        profiles,
		mentions:        mentions,
		sentiments:      sentiments,
		recommendations: recommendations,
		metrics:         metrics,
		logger:          logger,
	}
}

// Ingest processes one execution result callback. Row writes are sequential;
// a failure part-way through returns the error so the workflow retries the
// whole callback (inserts that already landed are keyed by the execution and
// replaced-or-rejected by their constraints).
func (s *IngestionService) Ingest(ctx context.Context, callback *models.ExecutionCallback) error {
	if callback.ExecutionID == "" {
		return ErrMissingExecutionID
	}

	execution, err := s.executions.GetByID(ctx, callback.ExecutionID)
	if err != nil {
		return fmt.Errorf("failed to load execution: %w", err)
	}
	if execution == nil {
		return fmt.Errorf("%w: %s", ErrUnknownExecution, callback.ExecutionID)
	}

	profile, err := s.profiles.GetByID(ctx, execution.UserID)
	if err != nil {
		return fmt.Errorf("failed to load profile: %w", err)
	}

	sourcesJSON := ""
	if len(callback.Sources) > 0 {
		if encoded, err := json.Marshal(callback.Sources); err == nil {
			sourcesJSON = string(encoded)
		}
	}

	if err := s.executions.Complete(ctx, execution.ID, callback.ResponseText(), sourcesJSON, time.Now()); err != nil {
		return fmt.Errorf("failed to complete execution: %w", err)
	}

	if err := s.storeMentions(ctx, execution, profile, callback); err != nil {
		return err
	}
	if err := s.storeSentiment(ctx, execution, callback); err != nil {
		return err
	}
	if err := s.storeRecommendations(ctx, execution, callback); err != nil {
		return err
	}

	s.logger.Info("execution callback ingested",
		"execution_id", execution.ID,
		"user_id", execution.UserID,
		"mentions", len(callback.Mentions),
		"recommendations", len(callback.Recommendations))

	// Best-effort cache refresh: Recompute logs and swallows its own errors.
	s.metrics.Recompute(ctx, execution.UserID)

	return nil
}

// storeMentions fans the mention map out into rows. Whether a brand is the
// user's is decided here, once, by case-insensitive substring match against
// the profile's brand name, and stored on the row.
func (s *IngestionService) storeMentions(ctx context.Context, execution *models.Execution, profile *models.Profile, callback *models.ExecutionCallback) error {
	if len(callback.Mentions) == 0 {
		return nil
	}

	brandName := ""
	if profile != nil {
		brandName = profile.BrandName
	}

	// Map iteration order is random; fan out in sorted-name order so the
	// stored rows, and everything derived from their order, is deterministic.
	names := make([]string, 0, len(callback.Mentions))
	for name := range callback.Mentions {
		names = append(names, name)
	}
	sort.Strings(names)

	rows := make([]*models.BrandMention, 0, len(names))
	for _, name := range names {
		rows = append(rows, &models.BrandMention{
			ExecutionID:  execution.ID,
			BrandName:    name,
			MentionCount: int(callback.Mentions[name]),
			IsUserBrand:  isUserBrand(name, brandName),
		})
	}

	if err := s.mentions.CreateBatch(ctx, rows); err != nil {
		return fmt.Errorf("failed to store brand mentions: %w", err)
	}

	return nil
}

func (s *IngestionService) storeSentiment(ctx context.Context, execution *models.Execution, callback *models.ExecutionCallback) error {
	positive, neutral, negative, ok := callback.SentimentValues()
	if !ok {
		return nil
	}

	err := s.sentiments.Create(ctx, &models.SentimentAnalysis{
		ExecutionID:        execution.ID,
		PositivePercentage: positive,
		NeutralPercentage:  neutral,
		NegativePercentage: negative,
	})
	if err != nil {
		return fmt.Errorf("failed to store sentiment: %w", err)
	}

	return nil
}

func (s *IngestionService) storeRecommendations(ctx context.Context, execution *models.Execution, callback *models.ExecutionCallback) error {
	if len(callback.Recommendations) == 0 {
		return nil
	}

	rows := make([]*models.Recommendation, 0, len(callback.Recommendations))
	for i, item := range callback.Recommendations {
		text := strings.TrimSpace(string(item))
		if text == "" {
			continue
		}
		rows = append(rows, &models.Recommendation{
			ExecutionID: execution.ID,
			Ordinal:     i,
			Text:        text,
		})
	}

	if err := s.recommendations.CreateBatch(ctx, rows); err != nil {
		return fmt.Errorf("failed to store recommendations: %w", err)
	}

	return nil
}

// isUserBrand reports whether a mentioned brand matches the user's brand by
// case-insensitive substring in either direction, so "Acme" matches
// "Acme Corp" and vice versa.
func isUserBrand(mentioned, brand string) bool {
	if brand == "" {
		return false
	}
	m := strings.ToLower(strings.TrimSpace(mentioned))
	b := strings.ToLower(strings.TrimSpace(brand))
	if m == "" {
		return false
	}
	return strings.Contains(m, b) || strings.Contains(b, m)
}
