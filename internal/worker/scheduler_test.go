package worker

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	_ "github.com/tursodatabase/go-libsql"

	"github.com/brandlens/brandlens-api/internal/database/migrations"
	"github.com/brandlens/brandlens-api/internal/models"
	"github.com/brandlens/brandlens-api/internal/repository"
	"github.com/brandlens/brandlens-api/internal/service"
)

func setupScheduler(t *testing.T, webhookURL string) (*Scheduler, *repository.Repositories) {
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

	repos := repository.NewRepositories(db)
	dispatch := service.NewDispatchService(repos.Execution, repos.Profile, webhookURL, []string{"chatgpt"}, nil)
	quota := service.NewQuotaService(repos.Profile, nil)

	return New(repos.Prompt, dispatch, quota, Config{PollInterval: time.Hour}, nil), repos
}

func okWebhook(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestTickDispatchesDuePrompts(t *testing.T) {
	srv := okWebhook(t)
	sched, repos := setupScheduler(t, srv.URL)
	ctx := context.Background()

	profile := &models.Profile{Email: "user@example.com", BrandName: "Acme", MonthlyQueryLimit: 100}
	if err := repos.Profile.Create(ctx, profile); err != nil {
		t.Fatalf("Create profile failed: %v", err)
	}
	prompt := &models.Prompt{UserID: profile.ID, QueryText: "q", IsActive: true, UpdateFrequency: models.FrequencyDaily}
	if err := repos.Prompt.Create(ctx, prompt); err != nil {
		t.Fatalf("Create prompt failed: %v", err)
	}

	sched.Tick(ctx)

	executions, err := repos.Execution.ListByPromptID(ctx, prompt.ID)
	if err != nil {
		t.Fatalf("ListByPromptID failed: %v", err)
	}
	if len(executions) != 1 {
		t.Fatalf("expected 1 execution after tick, got %d", len(executions))
	}

	updated, err := repos.Prompt.GetByID(ctx, prompt.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if updated.LastTriggeredAt == nil {
		t.Error("expected last_triggered_at to be stamped")
	}

	quota, err := repos.Profile.GetByID(ctx, profile.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if quota.QueriesUsedThisMonth != 1 {
		t.Errorf("expected 1 query used, got %d", quota.QueriesUsedThisMonth)
	}

	// A second tick inside the window must not dispatch again.
	sched.Tick(ctx)
	executions, err = repos.Execution.ListByPromptID(ctx, prompt.ID)
	if err != nil {
		t.Fatalf("ListByPromptID failed: %v", err)
	}
	if len(executions) != 1 {
		t.Errorf("expected no re-dispatch inside the window, got %d executions", len(executions))
	}
}

func TestTickSkipsExhaustedQuota(t *testing.T) {
	srv := okWebhook(t)
	sched, repos := setupScheduler(t, srv.URL)
	ctx := context.Background()

	profile := &models.Profile{Email: "user@example.com", BrandName: "Acme", MonthlyQueryLimit: 1}
	if err := repos.Profile.Create(ctx, profile); err != nil {
		t.Fatalf("Create profile failed: %v", err)
	}
	if err := repos.Profile.UpdateQuotaUsage(ctx, profile.ID, 1, time.Now()); err != nil {
		t.Fatalf("UpdateQuotaUsage failed: %v", err)
	}
	prompt := &models.Prompt{UserID: profile.ID, QueryText: "q", IsActive: true, UpdateFrequency: models.FrequencyDaily}
	if err := repos.Prompt.Create(ctx, prompt); err != nil {
		t.Fatalf("Create prompt failed: %v", err)
	}

	sched.Tick(ctx)

	executions, err := repos.Execution.ListByPromptID(ctx, prompt.ID)
	if err != nil {
		t.Fatalf("ListByPromptID failed: %v", err)
	}
	if len(executions) != 0 {
		t.Errorf("expected no dispatch for exhausted quota, got %d executions", len(executions))
	}
}

func TestTickIgnoresInactivePrompts(t *testing.T) {
	srv := okWebhook(t)
	sched, repos := setupScheduler(t, srv.URL)
	ctx := context.Background()

	profile := &models.Profile{Email: "user@example.com", BrandName: "Acme", MonthlyQueryLimit: 100}
	if err := repos.Profile.Create(ctx, profile); err != nil {
		t.Fatalf("Create profile failed: %v", err)
	}
	prompt := &models.Prompt{UserID: profile.ID, QueryText: "q", IsActive: false, UpdateFrequency: models.FrequencyDaily}
	if err := repos.Prompt.Create(ctx, prompt); err != nil {
		t.Fatalf("Create prompt failed: %v", err)
	}

	sched.Tick(ctx)

	executions, err := repos.Execution.ListByPromptID(ctx, prompt.ID)
	if err != nil {
		t.Fatalf("ListByPromptID failed: %v", err)
	}
	if len(executions) != 0 {
		t.Errorf("expected inactive prompt to be skipped, got %d executions", len(executions))
	}
}
