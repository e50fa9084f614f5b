package service

import (
	"context"
	"testing"

	"github.com/brandlens/brandlens-api/internal/models"
)

func TestSentimentTrendOrdersByExecutionTime(t *testing.T) {
	repos := setupTestRepos(t)
	svc := newMetricsService(repos)
	ctx := context.Background()

	profile := seedProfile(t, repos, "Acme")
	prompt := seedPrompt(t, repos, profile.ID)

	first := seedCompletedExecution(t, repos, prompt.ID, profile.ID, "chatgpt")
	second := seedCompletedExecution(t, repos, prompt.ID, profile.ID, "claude")

	for execID, pos := range map[string]float64{first.ID: 30, second.ID: 60} {
		if err := repos.Sentiment.Create(ctx, &models.SentimentAnalysis{
			ExecutionID:        execID,
			PositivePercentage: pos,
		}); err != nil {
			t.Fatalf("failed to seed sentiment: %v", err)
		}
	}

	points, err := svc.SentimentTrend(ctx, profile.ID)
	if err != nil {
		t.Fatalf("SentimentTrend failed: %v", err)
	}
	if len(points) != 2 {
		t.Fatalf("expected 2 points, got %d", len(points))
	}
	if points[0].ExecutedAt.After(points[1].ExecutedAt) {
		t.Error("points not ordered oldest first")
	}
}

func TestCompetitorRankingOrdering(t *testing.T) {
	repos := setupTestRepos(t)
	svc := newMetricsService(repos)
	ctx := context.Background()

	profile := seedProfile(t, repos, "Acme")
	prompt := seedPrompt(t, repos, profile.ID)
	execution := seedCompletedExecution(t, repos, prompt.ID, profile.ID, "chatgpt")

	seedMentions(t, repos, execution.ID, []*models.BrandMention{
		{BrandName: "Acme", MentionCount: 5, IsUserBrand: true},
		{BrandName: "CompetitorA", MentionCount: 8},
		{BrandName: "CompetitorB", MentionCount: 5},
	})

	rankings, err := svc.CompetitorRanking(ctx, profile.ID)
	if err != nil {
		t.Fatalf("CompetitorRanking failed: %v", err)
	}
	if len(rankings) != 3 {
		t.Fatalf("expected 3 rankings, got %d", len(rankings))
	}
	if rankings[0].BrandName != "CompetitorA" || rankings[0].Rank != 1 {
		t.Errorf("expected CompetitorA first, got %+v", rankings[0])
	}
	if !rankings[1].IsUserBrand || rankings[1].Rank != 2 {
		t.Errorf("expected user brand second on tie, got %+v", rankings[1])
	}
	if rankings[2].BrandName != "CompetitorB" {
		t.Errorf("expected CompetitorB third, got %+v", rankings[2])
	}
}

func TestCitationDomains(t *testing.T) {
	repos := setupTestRepos(t)
	svc := newMetricsService(repos)
	ctx := context.Background()

	profile := seedProfile(t, repos, "Acme")
	prompt := seedPrompt(t, repos, profile.ID)

	execution := seedCompletedExecution(t, repos, prompt.ID, profile.ID, "chatgpt")
	err := repos.Execution.Complete(ctx, execution.ID, "answer",
		`["https://www.acme.com/reviews", "https://acme.com/pricing", "rival.io", "not a url %%%"]`,
		execution.ExecutedAt)
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	domains, err := svc.CitationDomains(ctx, profile.ID)
	if err != nil {
		t.Fatalf("CitationDomains failed: %v", err)
	}
	if len(domains) < 2 {
		t.Fatalf("expected at least 2 domains, got %d", len(domains))
	}
	if domains[0].Domain != "acme.com" || domains[0].Count != 2 {
		t.Errorf("expected acme.com with 2 citations first, got %+v", domains[0])
	}
	found := false
	for _, d := range domains {
		if d.Domain == "rival.io" && d.Count == 1 {
			found = true
		}
	}
	if !found {
		t.Error("expected bare-domain source rival.io to be counted")
	}
}

func TestSourceDomain(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"https://www.example.com/page", "example.com"},
		{"http://Example.COM:8080/x", "example.com"},
		{"example.com/path", "example.com"},
		{"  ", ""},
		{"%%%", ""},
	}
	for _, tc := range cases {
		if got := sourceDomain(tc.in); got != tc.want {
			t.Errorf("sourceDomain(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
