package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/tursodatabase/go-libsql"

	"github.com/brandlens/brandlens-api/internal/database/migrations"
	"github.com/brandlens/brandlens-api/internal/models"
)

// setupTestDB creates an in-memory database with the full schema applied.
func setupTestDB(t *testing.T) *sql.DB {
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

	return db
}

// createTestProfile inserts a profile and returns it.
func createTestProfile(t *testing.T, db *sql.DB, email string) *models.Profile {
	t.Helper()

	repo := NewSQLiteProfileRepository(db)
	profile := &models.Profile{
		Email:             email,
		BrandName:         "Acme",
		SubscriptionPlan:  "free",
		MonthlyQueryLimit: 100,
	}
	if err := repo.Create(context.Background(), profile); err != nil {
		t.Fatalf("failed to create test profile: %v", err)
	}

	return profile
}

// createTestPrompt inserts an active weekly prompt for the given user.
func createTestPrompt(t *testing.T, db *sql.DB, userID string) *models.Prompt {
	t.Helper()

	repo := NewSQLitePromptRepository(db)
	prompt := &models.Prompt{
		UserID:          userID,
		QueryText:       "best project management tools",
		IsActive:        true,
		UpdateFrequency: models.FrequencyWeekly,
		TargetPlatform:  "chatgpt",
	}
	if err := repo.Create(context.Background(), prompt); err != nil {
		t.Fatalf("failed to create test prompt: %v", err)
	}

	return prompt
}

// createTestExecution inserts an execution for the given prompt.
func createTestExecution(t *testing.T, db *sql.DB, promptID, userID string, status models.ExecutionStatus) *models.Execution {
	t.Helper()

	repo := NewSQLiteExecutionRepository(db)
	execution := &models.Execution{
		PromptID:   promptID,
		UserID:     userID,
		Model:      "gpt-4o",
		Platform:   "chatgpt",
		Status:     status,
		ExecutedAt: time.Now(),
	}
	if err := repo.Create(context.Background(), execution); err != nil {
		t.Fatalf("failed to create test execution: %v", err)
	}

	return execution
}
