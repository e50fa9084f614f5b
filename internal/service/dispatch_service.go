package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/brandlens/brandlens-api/internal/models"
	"github.com/brandlens/brandlens-api/internal/repository"
)

// dispatchRequest is the envelope POSTed to the workflow webhook for each
// execution. The workflow runs the prompt against the named platform and
// eventually calls back with results keyed by ExecutionID.
type dispatchRequest struct {
	Model       string `json:"model"`
	Platform    string `json:"platform"`
	PromptText  string `json:"promptText"`
	BrandName   string `json:"brandName"`
	ExecutionID string `json:"executionId"`
}

// platformModels maps each supported platform to the model the workflow
// should query on it.
var platformModels = map[string]string{
	"chatgpt":    "gpt-4o",
	"claude":     "claude-sonnet-4-20250514",
	"gemini":     "gemini-2.0-flash",
	"perplexity": "sonar-pro",
}

// DispatchService fans a prompt out to the configured AI platforms. Each
// dispatch creates a pending execution row and posts the envelope to the
// workflow webhook; the workflow is an opaque boundary, so only the outbound
// POST and the row lifecycle live here.
type DispatchService struct {
	executions repository.ExecutionRepository
	profiles   repository.ProfileRepository
	webhookURL string
	platforms  []string
	client     *http.Client
	logger     *slog.Logger
}

// NewDispatchService creates a new dispatch service.
func NewDispatchService(
	executions repository.ExecutionRepository,
	profiles repository.ProfileRepository,
	webhookURL string,
	platforms []string,
	logger *slog.Logger,
) *DispatchService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DispatchService{
		executions: executions,
		profiles:   profiles,
		webhookURL: webhookURL,
		platforms:  platforms,
		client:     &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}
}

// Dispatch creates one pending execution per platform for the prompt and
// posts each to the workflow webhook. A prompt with a target platform set is
// dispatched to that platform only. Returns the created executions; a
// webhook failure marks that execution failed and moves on.
func (s *DispatchService) Dispatch(ctx context.Context, prompt *models.Prompt) ([]*models.Execution, error) {
	if s.webhookURL == "" {
		return nil, fmt.Errorf("workflow webhook URL not configured")
	}

	profile, err := s.profiles.GetByID(ctx, prompt.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	if profile == nil {
		return nil, fmt.Errorf("profile %s not found", prompt.UserID)
	}

	platforms := s.platforms
	if prompt.TargetPlatform != "" {
		platforms = []string{prompt.TargetPlatform}
	}

	var executions []*models.Execution
	for _, platform := range platforms {
		execution := &models.Execution{
			PromptID:   prompt.ID,
			UserID:     prompt.UserID,
			Model:      platformModels[platform],
			Platform:   platform,
			Status:     models.ExecutionStatusPending,
			ExecutedAt: time.Now(),
		}
		if err := s.executions.Create(ctx, execution); err != nil {
			return executions, fmt.Errorf("failed to create execution: %w", err)
		}

		if err := s.post(ctx, dispatchRequest{
			Model:       execution.Model,
			Platform:    platform,
			PromptText:  prompt.QueryText,
			BrandName:   profile.BrandName,
			ExecutionID: execution.ID,
		}); err != nil {
			s.logger.Error("workflow dispatch failed",
				"execution_id", execution.ID,
				"platform", platform,
				"error", err)
			if failErr := s.executions.Fail(ctx, execution.ID, err.Error()); failErr != nil {
				s.logger.Error("failed to mark execution failed", "execution_id", execution.ID, "error", failErr)
			}
			continue
		}

		s.logger.Info("execution dispatched",
			"execution_id", execution.ID,
			"prompt_id", prompt.ID,
			"platform", platform)

		executions = append(executions, execution)
	}

	return executions, nil
}

func (s *DispatchService) post(ctx context.Context, payload dispatchRequest) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal dispatch payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build dispatch request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("dispatch request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("workflow webhook returned status %d", resp.StatusCode)
	}

	return nil
}
