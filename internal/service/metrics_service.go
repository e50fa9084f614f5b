package service

import (
	"context"
	"log/slog"
	"sort"

	"github.com/brandlens/brandlens-api/internal/models"
	"github.com/brandlens/brandlens-api/internal/repository"
)

// MetricsService recomputes the aggregated metrics cache for a user from
// their completed executions. The cache is derived data: recomputation is
// idempotent and failures are logged and swallowed so the ingestion path is
// never blocked by a stale dashboard row.
type MetricsService struct {
	executions repository.ExecutionRepository
	mentions   repository.MentionRepository
	sentiments repository.SentimentRepository
	metrics    repository.MetricsRepository
	logger     *slog.Logger
}

// NewMetricsService creates a new metrics service.
func NewMetricsService(
	executions repository.ExecutionRepository,
	mentions repository.MentionRepository,
	sentiments repository.SentimentRepository,
	metrics repository.MetricsRepository,
	logger *slog.Logger,
) *MetricsService {
	if logger == nil {
		logger = slog.Default()
	}
	return &MetricsService{
		executions: executions,
		mentions:   mentions,
		sentiments: sentiments,
		metrics:    metrics,
		logger:     logger,
	}
}

// Recompute rebuilds the (user, "all") metrics row from scratch. A user with
// no completed executions is a no-op: the cache row is left absent rather
// than written as zeros, so consumers can distinguish "no data yet" from
// "measured zero".
func (s *MetricsService) Recompute(ctx context.Context, userID string) {
	executions, err := s.executions.ListCompletedByUser(ctx, userID)
	if err != nil {
		s.logger.Error("metrics recompute: listing executions failed", "user_id", userID, "error", err)
		return
	}
	if len(executions) == 0 {
		s.logger.Debug("metrics recompute skipped: no completed executions", "user_id", userID)
		return
	}

	executionIDs := make([]string, len(executions))
	for i, e := range executions {
		executionIDs[i] = e.ID
	}

	mentions, err := s.mentions.ListByExecutionIDs(ctx, executionIDs)
	if err != nil {
		s.logger.Error("metrics recompute: listing mentions failed", "user_id", userID, "error", err)
		return
	}

	sentiments, err := s.sentiments.ListByExecutionIDs(ctx, executionIDs)
	if err != nil {
		s.logger.Error("metrics recompute: listing sentiment failed", "user_id", userID, "error", err)
		return
	}

	row := computeMetrics(userID, executions, mentions, sentiments)

	if err := s.metrics.Upsert(ctx, row); err != nil {
		s.logger.Error("metrics recompute: upsert failed", "user_id", userID, "error", err)
		return
	}

	s.logger.Info("metrics recomputed",
		"user_id", userID,
		"executions", row.TotalExecutions,
		"share_of_voice", row.ShareOfVoice,
		"rank", row.CompetitiveRank)
}

// brandTotal accumulates mention counts per brand, preserving the order each
// brand was first seen so ranking ties resolve deterministically.
type brandTotal struct {
	name  string
	count int
}

func computeMetrics(
	userID string,
	executions []*models.Execution,
	mentions []*models.BrandMention,
	sentiments []*models.SentimentAnalysis,
) *models.AggregatedMetrics {
	userTotal := 0
	competitorTotal := 0

	// The user's brand is seeded at position zero so that on equal counts it
	// outranks any competitor first mentioned later.
	user := &brandTotal{}
	totals := []*brandTotal{user}
	index := map[string]*brandTotal{}

	for _, m := range mentions {
		if m.IsUserBrand {
			userTotal += m.MentionCount
			user.count += m.MentionCount
			if user.name == "" {
				user.name = m.BrandName
			}
			continue
		}

		competitorTotal += m.MentionCount
		bt, ok := index[m.BrandName]
		if !ok {
			bt = &brandTotal{name: m.BrandName}
			index[m.BrandName] = bt
			totals = append(totals, bt)
		}
		bt.count += m.MentionCount
	}

	// Stable sort: equal counts keep first-seen order.
	sort.SliceStable(totals, func(i, j int) bool {
		return totals[i].count > totals[j].count
	})

	rank := 1
	for i, bt := range totals {
		if bt == user {
			rank = i + 1
			break
		}
	}

	// First competitor in sorted order has the highest count, ties resolved
	// by first mention.
	topCompetitor := ""
	for _, bt := range totals {
		if bt == user {
			continue
		}
		if bt.count > 0 {
			topCompetitor = bt.name
		}
		break
	}

	shareOfVoice := 0.0
	if userTotal+competitorTotal > 0 {
		shareOfVoice = 100 * float64(userTotal) / float64(userTotal+competitorTotal)
	}

	var avgPos, avgNeu, avgNeg float64
	if len(sentiments) > 0 {
		for _, s := range sentiments {
			avgPos += s.PositivePercentage
			avgNeu += s.NeutralPercentage
			avgNeg += s.NegativePercentage
		}
		n := float64(len(sentiments))
		avgPos /= n
		avgNeu /= n
		avgNeg /= n
	}

	platforms := map[string]bool{}
	for _, e := range executions {
		if e.Platform != "" {
			platforms[e.Platform] = true
		}
	}

	return &models.AggregatedMetrics{
		UserID:                  userID,
		TimePeriod:              models.MetricsPeriodAll,
		AvgSentimentScore:       avgPos - avgNeg,
		AvgBrandVisibility:      float64(userTotal) / float64(len(executions)),
		ShareOfVoice:            shareOfVoice,
		CompetitiveRank:         rank,
		ResponseQuality:         0.4*shareOfVoice + 0.6*avgPos,
		PlatformCoverage:        len(platforms),
		TotalExecutions:         len(executions),
		TotalBrandMentions:      userTotal,
		TotalCompetitorMentions: competitorTotal,
		TopCompetitor:           topCompetitor,
		AvgPositiveSentiment:    avgPos,
		AvgNeutralSentiment:     avgNeu,
		AvgNegativeSentiment:    avgNeg,
	}
}
