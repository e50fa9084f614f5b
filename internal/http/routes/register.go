// Package routes wires handlers to API paths.
package routes

import (
	"github.com/danielgtaylor/huma/v2"

	"github.com/brandlens/brandlens-api/internal/http/handlers"
	"github.com/brandlens/brandlens-api/internal/http/mw"
)

// Register registers all API routes with the given Huma API instance.
// Raw webhook endpoints are not registered here; they mount on the router
// directly because they verify signatures over the unparsed body.
func Register(api huma.API, h *handlers.Handlers) {
	// =========================================================================
	// Public Routes (no auth required)
	// =========================================================================

	// Health check
	mw.PublicGet(api, "/api/v1/health", h.HealthCheck,
		mw.WithTags("Health"),
		mw.WithSummary("Health check"),
		mw.WithOperationID("healthCheck"))

	// Kubernetes probes (hidden from docs - internal use only)
	mw.HiddenGet(api, "/healthz", h.Livez)
	mw.HiddenGet(api, "/readyz", h.Readyz)

	// =========================================================================
	// Protected Routes (require bearer auth)
	// =========================================================================

	// --- Profile ---
	mw.ProtectedGet(api, "/api/v1/profile", h.Profile.GetProfile,
		mw.WithTags("Profile"),
		mw.WithSummary("Get profile"),
		mw.WithOperationID("getProfile"))
	mw.ProtectedPut(api, "/api/v1/profile", h.Profile.UpsertProfile,
		mw.WithTags("Profile"),
		mw.WithSummary("Create or update profile"),
		mw.WithDescription("Creates the profile on first call using the token identity, then updates brand details."),
		mw.WithOperationID("upsertProfile"))
	mw.ProtectedGet(api, "/api/v1/profile/quota", h.Profile.GetQuota,
		mw.WithTags("Profile"),
		mw.WithSummary("Get query quota status"),
		mw.WithOperationID("getQuota"))

	// --- Competitors ---
	mw.ProtectedGet(api, "/api/v1/competitors", h.Competitor.ListCompetitors,
		mw.WithTags("Competitors"),
		mw.WithSummary("List competitors"),
		mw.WithOperationID("listCompetitors"))
	mw.ProtectedPost(api, "/api/v1/competitors", h.Competitor.CreateCompetitor,
		mw.WithTags("Competitors"),
		mw.WithSummary("Add a competitor"),
		mw.WithOperationID("createCompetitor"))
	mw.ProtectedDelete(api, "/api/v1/competitors/{id}", h.Competitor.DeleteCompetitor,
		mw.WithTags("Competitors"),
		mw.WithSummary("Remove a competitor"),
		mw.WithOperationID("deleteCompetitor"))

	// --- Prompts ---
	mw.ProtectedGet(api, "/api/v1/prompts", h.Prompt.ListPrompts,
		mw.WithTags("Prompts"),
		mw.WithSummary("List tracked prompts"),
		mw.WithOperationID("listPrompts"))
	mw.ProtectedPost(api, "/api/v1/prompts", h.Prompt.CreatePrompt,
		mw.WithTags("Prompts"),
		mw.WithSummary("Create a tracked prompt"),
		mw.WithOperationID("createPrompt"))
	mw.ProtectedPut(api, "/api/v1/prompts/{id}", h.Prompt.UpdatePrompt,
		mw.WithTags("Prompts"),
		mw.WithSummary("Update a tracked prompt"),
		mw.WithOperationID("updatePrompt"))
	mw.ProtectedDelete(api, "/api/v1/prompts/{id}", h.Prompt.DeletePrompt,
		mw.WithTags("Prompts"),
		mw.WithSummary("Delete a tracked prompt"),
		mw.WithOperationID("deletePrompt"))
	mw.ProtectedPost(api, "/api/v1/prompts/{id}/trigger", h.Prompt.TriggerPrompt,
		mw.WithTags("Prompts"),
		mw.WithSummary("Trigger a prompt execution now"),
		mw.WithDescription("Dispatches the prompt to the workflow engine immediately and consumes one query from the monthly quota."),
		mw.WithOperationID("triggerPrompt"))

	// --- Executions ---
	mw.ProtectedGet(api, "/api/v1/executions", h.Execution.ListExecutions,
		mw.WithTags("Executions"),
		mw.WithSummary("List executions for a prompt"),
		mw.WithOperationID("listExecutions"))
	mw.ProtectedGet(api, "/api/v1/executions/{id}", h.Execution.GetExecution,
		mw.WithTags("Executions"),
		mw.WithSummary("Get execution details"),
		mw.WithOperationID("getExecution"))

	// --- Metrics ---
	mw.ProtectedGet(api, "/api/v1/metrics", h.Metrics.GetMetrics,
		mw.WithTags("Metrics"),
		mw.WithSummary("Get aggregated metrics"),
		mw.WithDescription("Returns null metrics until the first execution completes."),
		mw.WithOperationID("getMetrics"))
	mw.ProtectedPost(api, "/api/v1/metrics/recompute", h.Metrics.RecomputeMetrics,
		mw.WithTags("Metrics"),
		mw.WithSummary("Recompute aggregated metrics"),
		mw.WithOperationID("recomputeMetrics"))
	mw.ProtectedGet(api, "/api/v1/metrics/sentiment-trend", h.Metrics.GetSentimentTrend,
		mw.WithTags("Metrics"),
		mw.WithSummary("Get sentiment over time"),
		mw.WithOperationID("getSentimentTrend"))
	mw.ProtectedGet(api, "/api/v1/metrics/competitor-ranking", h.Metrics.GetCompetitorRanking,
		mw.WithTags("Metrics"),
		mw.WithSummary("Get brand mention leaderboard"),
		mw.WithOperationID("getCompetitorRanking"))
	mw.ProtectedGet(api, "/api/v1/metrics/citations", h.Metrics.GetCitationDomains,
		mw.WithTags("Metrics"),
		mw.WithSummary("Get cited source domains"),
		mw.WithOperationID("getCitationDomains"))

	// --- Admin ---
	mw.ProtectedPost(api, "/api/v1/admin/metrics/{userId}/recompute", h.Metrics.AdminRecomputeMetrics,
		mw.WithTags("Metrics"),
		mw.WithSummary("Recompute metrics for any user"),
		mw.WithOperationID("adminRecomputeMetrics"),
		mw.WithAdmin())
}
