// Package service contains the business logic between the HTTP layer and
// the repositories.
package service

import (
	"log/slog"

	"github.com/brandlens/brandlens-api/internal/config"
	"github.com/brandlens/brandlens-api/internal/repository"
)

// Services bundles all business-logic services for dependency injection
// into handlers and workers.
type Services struct {
	Metrics   *MetricsService
	Ingestion *IngestionService
	Quota     *QuotaService
	Dispatch  *DispatchService
}

// New wires all services over one repository set. The repositories may be
// backed by the server database or by the embedded store; services do not
// know the difference.
func New(repos *repository.Repositories, cfg *config.Config, logger *slog.Logger) *Services {
	if logger == nil {
		logger = slog.Default()
	}

	metrics := NewMetricsService(repos.Execution, repos.Mention, repos.Sentiment, repos.Metrics,
		logger.With("service", "metrics"))

	return &Services{
		Metrics: metrics,
		Ingestion: NewIngestionService(repos.Execution, repos.Profile, repos.Mention,
			repos.Sentiment, repos.Recommendation, metrics,
			logger.With("service", "ingestion")),
		Quota: NewQuotaService(repos.Profile, logger.With("service", "quota")),
		Dispatch: NewDispatchService(repos.Execution, repos.Profile,
			cfg.WorkflowWebhookURL, cfg.Platforms,
			logger.With("service", "dispatch")),
	}
}
