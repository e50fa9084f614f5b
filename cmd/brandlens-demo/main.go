// Package main is an offline demo of the embedded store, the query builder
// and the metrics aggregator. It seeds a profile with a few executions,
// ingests workflow callbacks, recomputes metrics and prints the result, all
// against a snapshot file with no server or network involved.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/brandlens/brandlens-api/internal/config"
	"github.com/brandlens/brandlens-api/internal/localdb"
	"github.com/brandlens/brandlens-api/internal/logging"
	"github.com/brandlens/brandlens-api/internal/models"
	"github.com/brandlens/brandlens-api/internal/service"
)

func main() {
	snapshotPath := flag.String("snapshot", "brandlens-demo.snapshot", "path to the snapshot file")
	keep := flag.Bool("keep", false, "keep the snapshot file after the run")
	flag.Parse()

	logger := logging.SetDefault()
	ctx := context.Background()

	if err := run(ctx, *snapshotPath); err != nil {
		logger.Error("demo failed", "error", err)
		os.Exit(1)
	}

	if !*keep {
		_ = os.Remove(*snapshotPath)
	}
}

func run(ctx context.Context, snapshotPath string) error {
	logger := logging.New()

	// Plaintext snapshot; the server derives an AES key from its JWT secret
	// but the demo has no secret to derive from.
	store := localdb.New(localdb.NewFileSnapshotStore(snapshotPath, nil), logger)
	if err := store.Initialize(ctx); err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	defer func() { _ = store.Close(ctx) }()

	repos := localdb.NewRepositories(store)
	services := service.New(repos, &config.Config{
		Platforms:                []string{"chatgpt", "claude", "gemini"},
		DefaultMonthlyQueryLimit: 100,
	}, logger)

	now := time.Now().UTC()

	profile := &models.Profile{
		Email:             "demo@brandlens.dev",
		BrandName:         "Acme",
		SubscriptionPlan:  "free",
		MonthlyQueryLimit: 100,
	}
	if err := repos.Profile.Create(ctx, profile); err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}

	prompt := &models.Prompt{
		UserID:          profile.ID,
		QueryText:       "What is the best project management tool?",
		IsActive:        true,
		UpdateFrequency: models.FrequencyWeekly,
	}
	if err := repos.Prompt.Create(ctx, prompt); err != nil {
		return fmt.Errorf("failed to create prompt: %w", err)
	}

	// One pending execution per platform, then the workflow callbacks that
	// would normally arrive over the webhook. The payloads deliberately use
	// the messy historical shapes: "NN%" strings, numeric-string counts and
	// object recommendations.
	callbacks := []string{
		`{
			"brandAndCompetitorMentions": {"Acme": 3, "CompetitorA": "2"},
			"overallSentiment": {"Positive": "55%", "Neutral": "30%", "Negative": "15%"},
			"recommendations": ["Publish comparison pages", {"text": "Target long-tail queries"}],
			"AI_original_response": "Acme is a strong choice alongside CompetitorA.",
			"sources": ["https://www.reviews.example.com/pm-tools", "https://blog.example.org/acme"]
		}`,
		`{
			"brandAndCompetitorMentions": {"Acme": 1, "CompetitorA": 4, "CompetitorB": 1},
			"sentiment": {"positive": 40, "neutral": 40, "negative": 20},
			"AI_Response": "CompetitorA leads, but Acme is catching up.",
			"sources": ["https://www.reviews.example.com/pm-tools"]
		}`,
		`{
			"brandAndCompetitorMentions": {"Acme": 2},
			"overallSentiment": {"Positive": 70, "Neutral": 20, "Negative": 10},
			"AI_original_response": "Acme stands out for small teams."
		}`,
	}
	platforms := []string{"chatgpt", "claude", "gemini"}

	for i, raw := range callbacks {
		execution := &models.Execution{
			PromptID:   prompt.ID,
			UserID:     profile.ID,
			Model:      "demo-model",
			Platform:   platforms[i],
			Status:     models.ExecutionStatusPending,
			ExecutedAt: now.Add(time.Duration(i) * time.Minute),
		}
		if err := repos.Execution.Create(ctx, execution); err != nil {
			return fmt.Errorf("failed to create execution: %w", err)
		}

		var callback models.ExecutionCallback
		if err := json.Unmarshal([]byte(raw), &callback); err != nil {
			return fmt.Errorf("failed to parse callback: %w", err)
		}
		callback.ExecutionID = execution.ID

		if err := services.Ingestion.Ingest(ctx, &callback); err != nil {
			return fmt.Errorf("failed to ingest callback: %w", err)
		}
	}

	// Ingestion already recomputed after each callback; this run shows the
	// recompute is idempotent on a settled dataset.
	services.Metrics.Recompute(ctx, profile.ID)

	metrics, err := repos.Metrics.GetByUser(ctx, profile.ID, models.MetricsPeriodAll)
	if err != nil {
		return fmt.Errorf("failed to load metrics: %w", err)
	}
	if metrics == nil {
		return fmt.Errorf("no metrics row after recompute")
	}

	fmt.Println("== Aggregated metrics ==")
	fmt.Printf("share of voice:        %.1f%%\n", metrics.ShareOfVoice)
	fmt.Printf("competitive rank:      %d\n", metrics.CompetitiveRank)
	fmt.Printf("top competitor:        %s\n", metrics.TopCompetitor)
	fmt.Printf("brand mentions:        %d (competitors %d)\n", metrics.TotalBrandMentions, metrics.TotalCompetitorMentions)
	fmt.Printf("platform coverage:     %d\n", metrics.PlatformCoverage)
	fmt.Printf("avg brand visibility:  %.2f\n", metrics.AvgBrandVisibility)
	fmt.Printf("avg sentiment score:   %.1f\n", metrics.AvgSentimentScore)
	fmt.Printf("response quality:      %.1f\n", metrics.ResponseQuality)

	rankings, err := services.Metrics.CompetitorRanking(ctx, profile.ID)
	if err != nil {
		return fmt.Errorf("failed to compute ranking: %w", err)
	}
	fmt.Println("\n== Brand leaderboard ==")
	for _, r := range rankings {
		marker := " "
		if r.IsUserBrand {
			marker = "*"
		}
		fmt.Printf("%s #%d %-14s %d mentions\n", marker, r.Rank, r.BrandName, r.Mentions)
	}

	domains, err := services.Metrics.CitationDomains(ctx, profile.ID)
	if err != nil {
		return fmt.Errorf("failed to compute citation domains: %w", err)
	}
	fmt.Println("\n== Cited domains ==")
	for _, d := range domains {
		fmt.Printf("  %-28s %d\n", d.Domain, d.Count)
	}

	// Persist and reopen to show the snapshot round trip.
	if err := store.Close(ctx); err != nil {
		return fmt.Errorf("failed to persist snapshot: %w", err)
	}

	reopened := localdb.New(localdb.NewFileSnapshotStore(snapshotPath, nil), logger)
	if err := reopened.Initialize(ctx); err != nil {
		return fmt.Errorf("failed to reload snapshot: %w", err)
	}
	defer func() { _ = reopened.Close(ctx) }()

	reloaded, err := localdb.NewRepositories(reopened).Metrics.GetByUser(ctx, profile.ID, models.MetricsPeriodAll)
	if err != nil {
		return fmt.Errorf("failed to read reloaded metrics: %w", err)
	}
	if reloaded == nil {
		return fmt.Errorf("metrics row missing after snapshot reload")
	}
	fmt.Printf("\nsnapshot reloaded: share of voice still %.1f%%\n", reloaded.ShareOfVoice)

	return nil
}
