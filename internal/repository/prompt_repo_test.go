package repository

import (
	"context"
	"testing"
	"time"

	"github.com/brandlens/brandlens-api/internal/models"
)

func TestPromptCreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLitePromptRepository(db)
	ctx := context.Background()

	profile := createTestProfile(t, db, "user@example.com")
	prompt := createTestPrompt(t, db, profile.ID)

	got, err := repo.GetByID(ctx, prompt.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got == nil {
		t.Fatal("expected prompt, got nil")
	}
	if got.QueryText != "best project management tools" {
		t.Errorf("unexpected query text: %s", got.QueryText)
	}
	if !got.IsActive {
		t.Error("expected prompt to be active")
	}
	if got.UpdateFrequency != models.FrequencyWeekly {
		t.Errorf("expected weekly frequency, got %s", got.UpdateFrequency)
	}
	if got.LastTriggeredAt != nil {
		t.Error("expected nil last_triggered_at on a fresh prompt")
	}
}

func TestPromptCreateDefaultsFrequency(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLitePromptRepository(db)
	ctx := context.Background()

	profile := createTestProfile(t, db, "user@example.com")
	prompt := &models.Prompt{UserID: profile.ID, QueryText: "q", IsActive: true}
	if err := repo.Create(ctx, prompt); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := repo.GetByID(ctx, prompt.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.UpdateFrequency != models.FrequencyWeekly {
		t.Errorf("expected default weekly frequency, got %s", got.UpdateFrequency)
	}
}

func TestPromptListDue(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLitePromptRepository(db)
	ctx := context.Background()
	now := time.Now()

	profile := createTestProfile(t, db, "user@example.com")

	fresh := createTestPrompt(t, db, profile.ID)

	recentlyRun := createTestPrompt(t, db, profile.ID)
	if err := repo.MarkTriggered(ctx, recentlyRun.ID, now.Add(-1*time.Hour)); err != nil {
		t.Fatalf("MarkTriggered failed: %v", err)
	}

	overdue := createTestPrompt(t, db, profile.ID)
	if err := repo.MarkTriggered(ctx, overdue.ID, now.Add(-8*24*time.Hour)); err != nil {
		t.Fatalf("MarkTriggered failed: %v", err)
	}

	inactive := createTestPrompt(t, db, profile.ID)
	inactive.IsActive = false
	if err := repo.Update(ctx, inactive); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	due, err := repo.ListDue(ctx, now)
	if err != nil {
		t.Fatalf("ListDue failed: %v", err)
	}

	dueIDs := make(map[string]bool, len(due))
	for _, p := range due {
		dueIDs[p.ID] = true
	}
	if !dueIDs[fresh.ID] {
		t.Error("never-triggered prompt should be due")
	}
	if !dueIDs[overdue.ID] {
		t.Error("prompt past its weekly window should be due")
	}
	if dueIDs[recentlyRun.ID] {
		t.Error("recently triggered prompt should not be due")
	}
	if dueIDs[inactive.ID] {
		t.Error("inactive prompt should not be due")
	}
}

func TestPromptMarkTriggered(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLitePromptRepository(db)
	ctx := context.Background()

	profile := createTestProfile(t, db, "user@example.com")
	prompt := createTestPrompt(t, db, profile.ID)

	at := time.Now().Truncate(time.Second)
	if err := repo.MarkTriggered(ctx, prompt.ID, at); err != nil {
		t.Fatalf("MarkTriggered failed: %v", err)
	}

	got, err := repo.GetByID(ctx, prompt.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.LastTriggeredAt == nil || !got.LastTriggeredAt.Equal(at) {
		t.Errorf("expected last_triggered_at %v, got %v", at, got.LastTriggeredAt)
	}
}

func TestPromptDeleteCascadesExecutions(t *testing.T) {
	db := setupTestDB(t)
	promptRepo := NewSQLitePromptRepository(db)
	execRepo := NewSQLiteExecutionRepository(db)
	ctx := context.Background()

	profile := createTestProfile(t, db, "user@example.com")
	prompt := createTestPrompt(t, db, profile.ID)
	execution := createTestExecution(t, db, prompt.ID, profile.ID, models.ExecutionStatusCompleted)

	if err := promptRepo.Delete(ctx, prompt.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	got, err := execRepo.GetByID(ctx, execution.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got != nil {
		t.Error("expected execution to be cascade-deleted with its prompt")
	}
}
