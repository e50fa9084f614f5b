package service

import (
	"context"
	"math"
	"testing"

	"github.com/brandlens/brandlens-api/internal/models"
	"github.com/brandlens/brandlens-api/internal/repository"
)

func newMetricsService(repos *repository.Repositories) *MetricsService {
	return NewMetricsService(repos.Execution, repos.Mention, repos.Sentiment, repos.Metrics, nil)
}

func TestRecomputeNoExecutionsIsNoOp(t *testing.T) {
	repos := setupTestRepos(t)
	svc := newMetricsService(repos)
	ctx := context.Background()

	profile := seedProfile(t, repos, "Acme")

	svc.Recompute(ctx, profile.ID)

	got, err := repos.Metrics.GetByUser(ctx, profile.ID, models.MetricsPeriodAll)
	if err != nil {
		t.Fatalf("GetByUser failed: %v", err)
	}
	if got != nil {
		t.Error("expected no metrics row for a user with no completed executions")
	}
}

func TestRecomputeSingleExecution(t *testing.T) {
	repos := setupTestRepos(t)
	svc := newMetricsService(repos)
	ctx := context.Background()

	profile := seedProfile(t, repos, "Acme")
	prompt := seedPrompt(t, repos, profile.ID)
	execution := seedCompletedExecution(t, repos, prompt.ID, profile.ID, "chatgpt")

	seedMentions(t, repos, execution.ID, []*models.BrandMention{
		{BrandName: "Acme", MentionCount: 3, IsUserBrand: true},
	})

	svc.Recompute(ctx, profile.ID)

	got, err := repos.Metrics.GetByUser(ctx, profile.ID, models.MetricsPeriodAll)
	if err != nil {
		t.Fatalf("GetByUser failed: %v", err)
	}
	if got == nil {
		t.Fatal("expected a metrics row")
	}
	if got.ShareOfVoice != 100 {
		t.Errorf("expected share of voice 100, got %f", got.ShareOfVoice)
	}
	if got.TotalBrandMentions != 3 {
		t.Errorf("expected 3 brand mentions, got %d", got.TotalBrandMentions)
	}
	if got.CompetitiveRank != 1 {
		t.Errorf("expected rank 1, got %d", got.CompetitiveRank)
	}
	if got.TotalExecutions != 1 {
		t.Errorf("expected 1 execution, got %d", got.TotalExecutions)
	}
	if got.PlatformCoverage != 1 {
		t.Errorf("expected platform coverage 1, got %d", got.PlatformCoverage)
	}
	if got.AvgBrandVisibility != 3 {
		t.Errorf("expected visibility 3, got %f", got.AvgBrandVisibility)
	}
	if got.TopCompetitor != "" {
		t.Errorf("expected no top competitor, got %s", got.TopCompetitor)
	}
}

func TestRecomputeRankTieBreak(t *testing.T) {
	repos := setupTestRepos(t)
	svc := newMetricsService(repos)
	ctx := context.Background()

	profile := seedProfile(t, repos, "Acme")
	prompt := seedPrompt(t, repos, profile.ID)
	execution := seedCompletedExecution(t, repos, prompt.ID, profile.ID, "chatgpt")

	// User ties with CompetitorB at 5 while CompetitorA leads with 8. The
	// user's brand wins the tie, so the final order is A, user, B.
	seedMentions(t, repos, execution.ID, []*models.BrandMention{
		{BrandName: "Acme", MentionCount: 5, IsUserBrand: true},
		{BrandName: "CompetitorA", MentionCount: 8},
		{BrandName: "CompetitorB", MentionCount: 5},
	})

	svc.Recompute(ctx, profile.ID)

	got, err := repos.Metrics.GetByUser(ctx, profile.ID, models.MetricsPeriodAll)
	if err != nil {
		t.Fatalf("GetByUser failed: %v", err)
	}
	if got == nil {
		t.Fatal("expected a metrics row")
	}
	if got.CompetitiveRank != 2 {
		t.Errorf("expected rank 2, got %d", got.CompetitiveRank)
	}
	if got.TopCompetitor != "CompetitorA" {
		t.Errorf("expected top competitor CompetitorA, got %s", got.TopCompetitor)
	}
	if got.TotalCompetitorMentions != 13 {
		t.Errorf("expected 13 competitor mentions, got %d", got.TotalCompetitorMentions)
	}

	wantSOV := 100 * 5.0 / 18.0
	if math.Abs(got.ShareOfVoice-wantSOV) > 1e-9 {
		t.Errorf("expected share of voice %f, got %f", wantSOV, got.ShareOfVoice)
	}
}

func TestRecomputeIdempotent(t *testing.T) {
	repos := setupTestRepos(t)
	svc := newMetricsService(repos)
	ctx := context.Background()

	profile := seedProfile(t, repos, "Acme")
	prompt := seedPrompt(t, repos, profile.ID)
	execution := seedCompletedExecution(t, repos, prompt.ID, profile.ID, "chatgpt")
	seedMentions(t, repos, execution.ID, []*models.BrandMention{
		{BrandName: "Acme", MentionCount: 4, IsUserBrand: true},
		{BrandName: "Rival", MentionCount: 2},
	})
	if err := repos.Sentiment.Create(ctx, &models.SentimentAnalysis{
		ExecutionID:        execution.ID,
		PositivePercentage: 60,
		NeutralPercentage:  25,
		NegativePercentage: 15,
	}); err != nil {
		t.Fatalf("failed to seed sentiment: %v", err)
	}

	svc.Recompute(ctx, profile.ID)
	first, err := repos.Metrics.GetByUser(ctx, profile.ID, models.MetricsPeriodAll)
	if err != nil || first == nil {
		t.Fatalf("first recompute produced no row: %v", err)
	}

	svc.Recompute(ctx, profile.ID)
	second, err := repos.Metrics.GetByUser(ctx, profile.ID, models.MetricsPeriodAll)
	if err != nil || second == nil {
		t.Fatalf("second recompute produced no row: %v", err)
	}

	if first.ShareOfVoice != second.ShareOfVoice ||
		first.CompetitiveRank != second.CompetitiveRank ||
		first.TotalBrandMentions != second.TotalBrandMentions ||
		first.AvgSentimentScore != second.AvgSentimentScore {
		t.Errorf("recompute not idempotent: first %+v, second %+v", first, second)
	}
	if first.ID != second.ID {
		t.Error("recompute created a second row instead of updating in place")
	}
}

func TestRecomputeSentimentMeans(t *testing.T) {
	repos := setupTestRepos(t)
	svc := newMetricsService(repos)
	ctx := context.Background()

	profile := seedProfile(t, repos, "Acme")
	prompt := seedPrompt(t, repos, profile.ID)

	first := seedCompletedExecution(t, repos, prompt.ID, profile.ID, "chatgpt")
	second := seedCompletedExecution(t, repos, prompt.ID, profile.ID, "claude")

	for execID, pos := range map[string]float64{first.ID: 80, second.ID: 40} {
		if err := repos.Sentiment.Create(ctx, &models.SentimentAnalysis{
			ExecutionID:        execID,
			PositivePercentage: pos,
			NeutralPercentage:  100 - pos - 10,
			NegativePercentage: 10,
		}); err != nil {
			t.Fatalf("failed to seed sentiment: %v", err)
		}
	}
	seedMentions(t, repos, first.ID, []*models.BrandMention{
		{BrandName: "Acme", MentionCount: 1, IsUserBrand: true},
	})

	svc.Recompute(ctx, profile.ID)

	got, err := repos.Metrics.GetByUser(ctx, profile.ID, models.MetricsPeriodAll)
	if err != nil || got == nil {
		t.Fatalf("recompute produced no row: %v", err)
	}
	if got.AvgPositiveSentiment != 60 {
		t.Errorf("expected avg positive 60, got %f", got.AvgPositiveSentiment)
	}
	if got.AvgNegativeSentiment != 10 {
		t.Errorf("expected avg negative 10, got %f", got.AvgNegativeSentiment)
	}
	if got.AvgSentimentScore != 50 {
		t.Errorf("expected sentiment score 50, got %f", got.AvgSentimentScore)
	}
	if got.PlatformCoverage != 2 {
		t.Errorf("expected platform coverage 2, got %d", got.PlatformCoverage)
	}

	wantQuality := 0.4*100 + 0.6*60
	if math.Abs(got.ResponseQuality-wantQuality) > 1e-9 {
		t.Errorf("expected response quality %f, got %f", wantQuality, got.ResponseQuality)
	}
}

func TestComputeMetricsShareOfVoiceBounds(t *testing.T) {
	executions := []*models.Execution{{ID: "e1", Platform: "chatgpt"}}

	// No mentions at all: share of voice is exactly 0, not NaN.
	row := computeMetrics("u1", executions, nil, nil)
	if row.ShareOfVoice != 0 {
		t.Errorf("expected share of voice 0 with no mentions, got %f", row.ShareOfVoice)
	}

	cases := []struct {
		name     string
		mentions []*models.BrandMention
	}{
		{"only user", []*models.BrandMention{{BrandName: "A", MentionCount: 7, IsUserBrand: true}}},
		{"only competitors", []*models.BrandMention{{BrandName: "B", MentionCount: 7}}},
		{"mixed", []*models.BrandMention{
			{BrandName: "A", MentionCount: 3, IsUserBrand: true},
			{BrandName: "B", MentionCount: 9},
		}},
	}
	for _, tc := range cases {
		row := computeMetrics("u1", executions, tc.mentions, nil)
		if row.ShareOfVoice < 0 || row.ShareOfVoice > 100 {
			t.Errorf("%s: share of voice %f out of [0,100]", tc.name, row.ShareOfVoice)
		}
	}
}
