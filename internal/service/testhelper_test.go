package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/tursodatabase/go-libsql"

	"github.com/brandlens/brandlens-api/internal/database/migrations"
	"github.com/brandlens/brandlens-api/internal/models"
	"github.com/brandlens/brandlens-api/internal/repository"
)

// setupTestRepos creates repositories over an in-memory database with the
// full schema applied.
func setupTestRepos(t *testing.T) *repository.Repositories {
	t.Helper()

	db, err := sql.Open("libsql", ":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("failed to enable foreign keys: %v", err)
	}
	if err := migrations.Run(db, nil); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	return repository.NewRepositories(db)
}

func seedProfile(t *testing.T, repos *repository.Repositories, brandName string) *models.Profile {
	t.Helper()

	profile := &models.Profile{
		Email:             brandName + "@example.com",
		BrandName:         brandName,
		SubscriptionPlan:  "free",
		MonthlyQueryLimit: 100,
	}
	if err := repos.Profile.Create(context.Background(), profile); err != nil {
		t.Fatalf("failed to seed profile: %v", err)
	}

	return profile
}

func seedPrompt(t *testing.T, repos *repository.Repositories, userID string) *models.Prompt {
	t.Helper()

	prompt := &models.Prompt{
		UserID:          userID,
		QueryText:       "best project management tools",
		IsActive:        true,
		UpdateFrequency: models.FrequencyWeekly,
	}
	if err := repos.Prompt.Create(context.Background(), prompt); err != nil {
		t.Fatalf("failed to seed prompt: %v", err)
	}

	return prompt
}

func seedCompletedExecution(t *testing.T, repos *repository.Repositories, promptID, userID, platform string) *models.Execution {
	t.Helper()

	execution := &models.Execution{
		PromptID:   promptID,
		UserID:     userID,
		Platform:   platform,
		Status:     models.ExecutionStatusCompleted,
		ExecutedAt: time.Now(),
	}
	if err := repos.Execution.Create(context.Background(), execution); err != nil {
		t.Fatalf("failed to seed execution: %v", err)
	}

	return execution
}

func seedMentions(t *testing.T, repos *repository.Repositories, executionID string, mentions []*models.BrandMention) {
	t.Helper()

	for _, m := range mentions {
		m.ExecutionID = executionID
	}
	if err := repos.Mention.CreateBatch(context.Background(), mentions); err != nil {
		t.Fatalf("failed to seed mentions: %v", err)
	}
}
