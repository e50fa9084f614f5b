package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/brandlens/brandlens-api/internal/models"
)

func TestDispatchCreatesExecutionsPerPlatform(t *testing.T) {
	repos := setupTestRepos(t)
	ctx := context.Background()

	var mu sync.Mutex
	var received []dispatchRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req dispatchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("bad dispatch payload: %v", err)
		}
		mu.Lock()
		received = append(received, req)
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	svc := NewDispatchService(repos.Execution, repos.Profile, srv.URL, []string{"chatgpt", "claude"}, nil)

	profile := seedProfile(t, repos, "Acme")
	prompt := seedPrompt(t, repos, profile.ID)

	executions, err := svc.Dispatch(ctx, prompt)
	if err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	if len(executions) != 2 {
		t.Fatalf("expected 2 executions, got %d", len(executions))
	}

	mu.Lock()
	defer mu.Unlock()
	if len(received) != 2 {
		t.Fatalf("expected 2 webhook posts, got %d", len(received))
	}
	for _, req := range received {
		if req.PromptText != prompt.QueryText {
			t.Errorf("unexpected prompt text: %q", req.PromptText)
		}
		if req.BrandName != "Acme" {
			t.Errorf("unexpected brand name: %q", req.BrandName)
		}
		if req.ExecutionID == "" {
			t.Error("dispatch payload missing execution ID")
		}
	}

	rows, err := repos.Execution.ListByPromptID(ctx, prompt.ID)
	if err != nil {
		t.Fatalf("ListByPromptID failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 execution rows, got %d", len(rows))
	}
	for _, e := range rows {
		if e.Status != models.ExecutionStatusPending {
			t.Errorf("expected pending execution, got %s", e.Status)
		}
	}
}

func TestDispatchHonorsTargetPlatform(t *testing.T) {
	repos := setupTestRepos(t)
	ctx := context.Background()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	svc := NewDispatchService(repos.Execution, repos.Profile, srv.URL, []string{"chatgpt", "claude"}, nil)

	profile := seedProfile(t, repos, "Acme")
	prompt := seedPrompt(t, repos, profile.ID)
	prompt.TargetPlatform = "perplexity"
	if err := repos.Prompt.Update(ctx, prompt); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	executions, err := svc.Dispatch(ctx, prompt)
	if err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	if len(executions) != 1 || executions[0].Platform != "perplexity" {
		t.Errorf("expected a single perplexity execution, got %d", len(executions))
	}
}

func TestDispatchWebhookFailureMarksExecutionFailed(t *testing.T) {
	repos := setupTestRepos(t)
	ctx := context.Background()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	svc := NewDispatchService(repos.Execution, repos.Profile, srv.URL, []string{"chatgpt"}, nil)

	profile := seedProfile(t, repos, "Acme")
	prompt := seedPrompt(t, repos, profile.ID)

	executions, err := svc.Dispatch(ctx, prompt)
	if err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	if len(executions) != 0 {
		t.Errorf("expected no successful dispatches, got %d", len(executions))
	}

	rows, err := repos.Execution.ListByPromptID(ctx, prompt.ID)
	if err != nil {
		t.Fatalf("ListByPromptID failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 execution row, got %d", len(rows))
	}
	if rows[0].Status != models.ExecutionStatusFailed {
		t.Errorf("expected failed execution, got %s", rows[0].Status)
	}
}

func TestDispatchWithoutWebhookURLFails(t *testing.T) {
	repos := setupTestRepos(t)

	svc := NewDispatchService(repos.Execution, repos.Profile, "", []string{"chatgpt"}, nil)

	profile := seedProfile(t, repos, "Acme")
	prompt := seedPrompt(t, repos, profile.ID)

	if _, err := svc.Dispatch(context.Background(), prompt); err == nil {
		t.Error("expected error when webhook URL is not configured")
	}
}
