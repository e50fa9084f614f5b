package handlers

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/brandlens/brandlens-api/internal/models"
	"github.com/brandlens/brandlens-api/internal/repository"
	"github.com/brandlens/brandlens-api/internal/service"
)

// MetricsHandler handles aggregated metric endpoints.
type MetricsHandler struct {
	metrics repository.MetricsRepository
	svc     *service.MetricsService
}

// NewMetricsHandler creates a new metrics handler.
func NewMetricsHandler(metrics repository.MetricsRepository, svc *service.MetricsService) *MetricsHandler {
	return &MetricsHandler{metrics: metrics, svc: svc}
}

// GetMetricsOutput wraps the aggregated metrics row. Metrics is null until
// the first completed execution so clients can render an empty state
// instead of zeros.
type GetMetricsOutput struct {
	Body struct {
		Metrics *models.AggregatedMetrics `json:"metrics"`
	}
}

// GetMetrics returns the caller's aggregated metrics row, or null if no
// execution has completed yet.
func (h *MetricsHandler) GetMetrics(ctx context.Context, _ *struct{}) (*GetMetricsOutput, error) {
	userID := getUserID(ctx)
	if userID == "" {
		return nil, huma.Error401Unauthorized("unauthorized")
	}

	row, err := h.metrics.GetByUser(ctx, userID, models.MetricsPeriodAll)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to load metrics")
	}

	out := &GetMetricsOutput{}
	out.Body.Metrics = row
	return out, nil
}

// RecomputeMetricsOutput wraps the freshly recomputed metrics row.
type RecomputeMetricsOutput struct {
	Body struct {
		Metrics *models.AggregatedMetrics `json:"metrics"`
	}
}

// RecomputeMetrics forces a recomputation from stored executions and
// returns the resulting row.
func (h *MetricsHandler) RecomputeMetrics(ctx context.Context, _ *struct{}) (*RecomputeMetricsOutput, error) {
	userID := getUserID(ctx)
	if userID == "" {
		return nil, huma.Error401Unauthorized("unauthorized")
	}

	h.svc.Recompute(ctx, userID)

	row, err := h.metrics.GetByUser(ctx, userID, models.MetricsPeriodAll)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to load metrics")
	}

	out := &RecomputeMetricsOutput{}
	out.Body.Metrics = row
	return out, nil
}

// AdminRecomputeInput identifies the user whose metrics to rebuild.
type AdminRecomputeInput struct {
	UserID string `path:"userId" doc:"User whose metrics to recompute"`
}

// AdminRecomputeMetrics recomputes another user's metrics. Operational
// tooling for support; the route is admin-gated.
func (h *MetricsHandler) AdminRecomputeMetrics(ctx context.Context, input *AdminRecomputeInput) (*RecomputeMetricsOutput, error) {
	h.svc.Recompute(ctx, input.UserID)

	row, err := h.metrics.GetByUser(ctx, input.UserID, models.MetricsPeriodAll)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to load metrics")
	}

	out := &RecomputeMetricsOutput{}
	out.Body.Metrics = row
	return out, nil
}

// SentimentTrendOutput wraps per-execution sentiment points.
type SentimentTrendOutput struct {
	Body struct {
		Points []service.SentimentPoint `json:"points"`
	}
}

// GetSentimentTrend returns sentiment over time, oldest first.
func (h *MetricsHandler) GetSentimentTrend(ctx context.Context, _ *struct{}) (*SentimentTrendOutput, error) {
	userID := getUserID(ctx)
	if userID == "" {
		return nil, huma.Error401Unauthorized("unauthorized")
	}

	points, err := h.svc.SentimentTrend(ctx, userID)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to compute sentiment trend")
	}
	if points == nil {
		points = []service.SentimentPoint{}
	}

	out := &SentimentTrendOutput{}
	out.Body.Points = points
	return out, nil
}

// CompetitorRankingOutput wraps the brand leaderboard.
type CompetitorRankingOutput struct {
	Body struct {
		Rankings []service.BrandRanking `json:"rankings"`
	}
}

// GetCompetitorRanking returns brands ordered by total mentions.
func (h *MetricsHandler) GetCompetitorRanking(ctx context.Context, _ *struct{}) (*CompetitorRankingOutput, error) {
	userID := getUserID(ctx)
	if userID == "" {
		return nil, huma.Error401Unauthorized("unauthorized")
	}

	rankings, err := h.svc.CompetitorRanking(ctx, userID)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to compute ranking")
	}
	if rankings == nil {
		rankings = []service.BrandRanking{}
	}

	out := &CompetitorRankingOutput{}
	out.Body.Rankings = rankings
	return out, nil
}

// CitationDomainsOutput wraps cited source domains with counts.
type CitationDomainsOutput struct {
	Body struct {
		Domains []service.CitationDomain `json:"domains"`
	}
}

// GetCitationDomains returns the domains cited across the user's
// executions, most cited first.
func (h *MetricsHandler) GetCitationDomains(ctx context.Context, _ *struct{}) (*CitationDomainsOutput, error) {
	userID := getUserID(ctx)
	if userID == "" {
		return nil, huma.Error401Unauthorized("unauthorized")
	}

	domains, err := h.svc.CitationDomains(ctx, userID)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to compute citation domains")
	}
	if domains == nil {
		domains = []service.CitationDomain{}
	}

	out := &CitationDomainsOutput{}
	out.Body.Domains = domains
	return out, nil
}
