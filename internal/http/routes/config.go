package routes

import (
	"github.com/danielgtaylor/huma/v2"

	"github.com/brandlens/brandlens-api/internal/http/mw"
	"github.com/brandlens/brandlens-api/internal/version"
)

// NewHumaConfig creates the shared Huma configuration for the API. Both the
// server and the OpenAPI generator use it so the published spec never
// drifts from the served routes.
func NewHumaConfig(baseURL string) huma.Config {
	cfg := huma.DefaultConfig("BrandLens API", version.Version)
	cfg.Info.Description = "Brand visibility tracking across AI assistant answers: prompts, executions, mentions, sentiment, and share-of-voice metrics."

	if baseURL != "" {
		cfg.Servers = []*huma.Server{
			{URL: baseURL, Description: "API Server"},
		}
	}

	cfg.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		mw.SecurityScheme: {
			Type:        "http",
			Scheme:      "bearer",
			Description: "JWT bearer authentication. Include your token in the Authorization header as `Bearer <token>`.",
		},
	}

	cfg.Tags = []*huma.Tag{
		{Name: "Health", Description: "System health and status"},
		{Name: "Profile", Description: "User profile, brand identity and quota"},
		{Name: "Competitors", Description: "Tracked competitor brands"},
		{Name: "Prompts", Description: "Tracked prompts and manual triggers"},
		{Name: "Executions", Description: "Per-platform execution results"},
		{Name: "Metrics", Description: "Aggregated visibility metrics and analytics"},
	}

	return cfg
}
