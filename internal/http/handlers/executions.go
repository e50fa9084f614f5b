package handlers

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/brandlens/brandlens-api/internal/models"
	"github.com/brandlens/brandlens-api/internal/repository"
)

// ExecutionHandler handles execution read endpoints.
type ExecutionHandler struct {
	executions      repository.ExecutionRepository
	prompts         repository.PromptRepository
	recommendations repository.RecommendationRepository
}

// NewExecutionHandler creates a new execution handler.
func NewExecutionHandler(
	executions repository.ExecutionRepository,
	prompts repository.PromptRepository,
	recommendations repository.RecommendationRepository,
) *ExecutionHandler {
	return &ExecutionHandler{executions: executions, prompts: prompts, recommendations: recommendations}
}

// ListExecutionsInput filters executions by prompt and optionally status.
type ListExecutionsInput struct {
	PromptID string `query:"prompt_id" required:"true" doc:"Prompt to list executions for"`
	Status   string `query:"status" enum:"pending,processing,completed,failed" doc:"Optional status filter"`
}

// ListExecutionsOutput wraps execution rows.
type ListExecutionsOutput struct {
	Body struct {
		Executions []*models.Execution `json:"executions"`
	}
}

// ListExecutions returns a prompt's executions, newest first.
func (h *ExecutionHandler) ListExecutions(ctx context.Context, input *ListExecutionsInput) (*ListExecutionsOutput, error) {
	userID := getUserID(ctx)
	if userID == "" {
		return nil, huma.Error401Unauthorized("unauthorized")
	}

	prompt, err := h.prompts.GetByID(ctx, input.PromptID)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to load prompt")
	}
	if prompt == nil || prompt.UserID != userID {
		return nil, huma.Error404NotFound("prompt not found")
	}

	executions, err := h.executions.ListByPromptID(ctx, input.PromptID)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to list executions")
	}

	filtered := make([]*models.Execution, 0, len(executions))
	for _, e := range executions {
		if input.Status != "" && e.Status != models.ExecutionStatus(input.Status) {
			continue
		}
		filtered = append(filtered, e)
	}

	out := &ListExecutionsOutput{}
	out.Body.Executions = filtered
	return out, nil
}

// GetExecutionInput identifies one execution.
type GetExecutionInput struct {
	ID string `path:"id" doc:"Execution ID"`
}

// GetExecutionOutput wraps one execution with its recommendations.
type GetExecutionOutput struct {
	Body struct {
		Execution       *models.Execution        `json:"execution"`
		Recommendations []*models.Recommendation `json:"recommendations"`
	}
}

// GetExecution returns one of the caller's executions with its derived
// recommendations.
func (h *ExecutionHandler) GetExecution(ctx context.Context, input *GetExecutionInput) (*GetExecutionOutput, error) {
	userID := getUserID(ctx)
	if userID == "" {
		return nil, huma.Error401Unauthorized("unauthorized")
	}

	execution, err := h.executions.GetByID(ctx, input.ID)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to load execution")
	}
	if execution == nil || execution.UserID != userID {
		return nil, huma.Error404NotFound("execution not found")
	}

	recommendations, err := h.recommendations.ListByExecutionID(ctx, execution.ID)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to load recommendations")
	}
	if recommendations == nil {
		recommendations = []*models.Recommendation{}
	}

	out := &GetExecutionOutput{}
	out.Body.Execution = execution
	out.Body.Recommendations = recommendations
	return out, nil
}
