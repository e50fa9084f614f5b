// Package handlers contains HTTP handlers for the API.
package handlers

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/brandlens/brandlens-api/internal/config"
	"github.com/brandlens/brandlens-api/internal/http/mw"
	"github.com/brandlens/brandlens-api/internal/repository"
	"github.com/brandlens/brandlens-api/internal/service"
	"github.com/brandlens/brandlens-api/internal/version"
)

// Handlers bundles all handler instances for route registration.
type Handlers struct {
	Profile    *ProfileHandler
	Competitor *CompetitorHandler
	Prompt     *PromptHandler
	Execution  *ExecutionHandler
	Metrics    *MetricsHandler

	// Raw webhook handlers, mounted on the router directly because they
	// need the unparsed request body for signature verification.
	ExecutionWebhook *ExecutionWebhookHandler
	StripeWebhook    *StripeWebhookHandler

	db *sql.DB
}

// New creates all handlers over the given repositories and services.
func New(db *sql.DB, repos *repository.Repositories, services *service.Services, cfg *config.Config, logger *slog.Logger) *Handlers {
	return &Handlers{
		Profile:    NewProfileHandler(repos.Profile, services.Quota, cfg),
		Competitor: NewCompetitorHandler(repos.Competitor),
		Prompt:     NewPromptHandler(repos.Prompt, services.Dispatch, services.Quota),
		Execution:  NewExecutionHandler(repos.Execution, repos.Prompt, repos.Recommendation),
		Metrics:    NewMetricsHandler(repos.Metrics, services.Metrics),

		ExecutionWebhook: NewExecutionWebhookHandler(cfg, services.Ingestion, logger.With("handler", "execution_webhook")),
		StripeWebhook:    NewStripeWebhookHandler(cfg, repos.Profile, logger.With("handler", "stripe_webhook")),

		db: db,
	}
}

// HealthCheckOutput represents health check response.
type HealthCheckOutput struct {
	Body struct {
		Status  string `json:"status"`
		Version string `json:"version"`
	}
}

// HealthCheck returns the health status of the API.
func (h *Handlers) HealthCheck(ctx context.Context, input *struct{}) (*HealthCheckOutput, error) {
	out := &HealthCheckOutput{}
	out.Body.Status = "healthy"
	out.Body.Version = version.Version
	return out, nil
}

// ProbeOutput is the minimal probe response body.
type ProbeOutput struct {
	Body struct {
		Status string `json:"status"`
	}
}

// Livez is the liveness probe.
func (h *Handlers) Livez(ctx context.Context, input *struct{}) (*ProbeOutput, error) {
	out := &ProbeOutput{}
	out.Body.Status = "ok"
	return out, nil
}

// Readyz is the readiness probe; it fails when the database is unreachable.
func (h *Handlers) Readyz(ctx context.Context, input *struct{}) (*ProbeOutput, error) {
	if h.db != nil {
		if err := h.db.PingContext(ctx); err != nil {
			return nil, err
		}
	}
	out := &ProbeOutput{}
	out.Body.Status = "ok"
	return out, nil
}

// getUserID extracts the authenticated user ID from context.
func getUserID(ctx context.Context) string {
	return mw.GetUserID(ctx)
}

// getUserClaims extracts the authenticated claims from context.
func getUserClaims(ctx context.Context) *mw.UserClaims {
	return mw.GetUserClaims(ctx)
}
