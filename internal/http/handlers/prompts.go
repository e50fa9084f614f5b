package handlers

import (
	"context"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/brandlens/brandlens-api/internal/models"
	"github.com/brandlens/brandlens-api/internal/repository"
	"github.com/brandlens/brandlens-api/internal/service"
)

// PromptHandler handles prompt endpoints including manual triggering.
type PromptHandler struct {
	prompts  repository.PromptRepository
	dispatch *service.DispatchService
	quota    *service.QuotaService
}

// NewPromptHandler creates a new prompt handler.
func NewPromptHandler(prompts repository.PromptRepository, dispatch *service.DispatchService, quota *service.QuotaService) *PromptHandler {
	return &PromptHandler{prompts: prompts, dispatch: dispatch, quota: quota}
}

// ListPromptsOutput wraps the caller's prompts.
type ListPromptsOutput struct {
	Body struct {
		Prompts []*models.Prompt `json:"prompts"`
	}
}

// ListPrompts returns the caller's prompts, newest first.
func (h *PromptHandler) ListPrompts(ctx context.Context, input *struct{}) (*ListPromptsOutput, error) {
	userID := getUserID(ctx)
	if userID == "" {
		return nil, huma.Error401Unauthorized("unauthorized")
	}

	prompts, err := h.prompts.ListByUserID(ctx, userID)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to list prompts")
	}
	if prompts == nil {
		prompts = []*models.Prompt{}
	}

	out := &ListPromptsOutput{}
	out.Body.Prompts = prompts
	return out, nil
}

// CreatePromptInput carries a new prompt.
type CreatePromptInput struct {
	Body struct {
		QueryText       string `json:"query_text" minLength:"1" maxLength:"2000" doc:"The question to ask AI platforms"`
		UpdateFrequency string `json:"update_frequency,omitempty" enum:"daily,weekly,monthly" default:"weekly"`
		TargetPlatform  string `json:"target_platform,omitempty" maxLength:"50"`
		TargetLocation  string `json:"target_location,omitempty" maxLength:"100"`
		IsActive        bool   `json:"is_active" default:"true"`
	}
}

// CreatePromptOutput wraps the created prompt.
type CreatePromptOutput struct {
	Body models.Prompt
}

// CreatePrompt registers a new tracked prompt for the caller.
func (h *PromptHandler) CreatePrompt(ctx context.Context, input *CreatePromptInput) (*CreatePromptOutput, error) {
	userID := getUserID(ctx)
	if userID == "" {
		return nil, huma.Error401Unauthorized("unauthorized")
	}

	prompt := &models.Prompt{
		UserID:          userID,
		QueryText:       input.Body.QueryText,
		IsActive:        input.Body.IsActive,
		UpdateFrequency: models.PromptFrequency(input.Body.UpdateFrequency),
		TargetPlatform:  input.Body.TargetPlatform,
		TargetLocation:  input.Body.TargetLocation,
	}
	if err := h.prompts.Create(ctx, prompt); err != nil {
		return nil, huma.Error500InternalServerError("failed to create prompt")
	}

	return &CreatePromptOutput{Body: *prompt}, nil
}

// UpdatePromptInput carries the mutable prompt fields.
type UpdatePromptInput struct {
	ID   string `path:"id" doc:"Prompt ID"`
	Body struct {
		QueryText       string `json:"query_text" minLength:"1" maxLength:"2000"`
		UpdateFrequency string `json:"update_frequency,omitempty" enum:"daily,weekly,monthly"`
		TargetPlatform  string `json:"target_platform,omitempty" maxLength:"50"`
		TargetLocation  string `json:"target_location,omitempty" maxLength:"100"`
		IsActive        bool   `json:"is_active"`
	}
}

// UpdatePromptOutput wraps the updated prompt.
type UpdatePromptOutput struct {
	Body models.Prompt
}

// UpdatePrompt updates one of the caller's prompts.
func (h *PromptHandler) UpdatePrompt(ctx context.Context, input *UpdatePromptInput) (*UpdatePromptOutput, error) {
	prompt, err := h.ownedPrompt(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	prompt.QueryText = input.Body.QueryText
	prompt.IsActive = input.Body.IsActive
	if input.Body.UpdateFrequency != "" {
		prompt.UpdateFrequency = models.PromptFrequency(input.Body.UpdateFrequency)
	}
	prompt.TargetPlatform = input.Body.TargetPlatform
	prompt.TargetLocation = input.Body.TargetLocation

	if err := h.prompts.Update(ctx, prompt); err != nil {
		return nil, huma.Error500InternalServerError("failed to update prompt")
	}

	return &UpdatePromptOutput{Body: *prompt}, nil
}

// DeletePromptInput identifies the prompt to remove.
type DeletePromptInput struct {
	ID string `path:"id" doc:"Prompt ID"`
}

// DeletePrompt removes one of the caller's prompts and all derived data.
func (h *PromptHandler) DeletePrompt(ctx context.Context, input *DeletePromptInput) (*struct{}, error) {
	if _, err := h.ownedPrompt(ctx, input.ID); err != nil {
		return nil, err
	}

	if err := h.prompts.Delete(ctx, input.ID); err != nil {
		return nil, huma.Error500InternalServerError("failed to delete prompt")
	}

	return &struct{}{}, nil
}

// TriggerPromptInput identifies the prompt to run now.
type TriggerPromptInput struct {
	ID string `path:"id" doc:"Prompt ID"`
}

// TriggerPromptOutput reports the dispatched executions.
type TriggerPromptOutput struct {
	Body struct {
		Executions []*models.Execution `json:"executions"`
	}
}

// TriggerPrompt dispatches a prompt immediately, outside its schedule. The
// manual trigger consumes quota like a scheduled one.
func (h *PromptHandler) TriggerPrompt(ctx context.Context, input *TriggerPromptInput) (*TriggerPromptOutput, error) {
	prompt, err := h.ownedPrompt(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	status, err := h.quota.Check(ctx, prompt.UserID)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to check quota")
	}
	if !status.Allowed {
		return nil, huma.Error429TooManyRequests("monthly query limit reached")
	}

	executions, err := h.dispatch.Dispatch(ctx, prompt)
	if err != nil {
		return nil, huma.Error502BadGateway("failed to dispatch prompt")
	}

	if err := h.prompts.MarkTriggered(ctx, prompt.ID, time.Now()); err != nil {
		return nil, huma.Error500InternalServerError("failed to record trigger")
	}
	if _, err := h.quota.Increment(ctx, prompt.UserID); err != nil {
		return nil, huma.Error500InternalServerError("failed to record quota usage")
	}

	out := &TriggerPromptOutput{}
	out.Body.Executions = executions
	if out.Body.Executions == nil {
		out.Body.Executions = []*models.Execution{}
	}
	return out, nil
}

// ownedPrompt loads a prompt and verifies the caller owns it.
func (h *PromptHandler) ownedPrompt(ctx context.Context, id string) (*models.Prompt, error) {
	userID := getUserID(ctx)
	if userID == "" {
		return nil, huma.Error401Unauthorized("unauthorized")
	}

	prompt, err := h.prompts.GetByID(ctx, id)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to load prompt")
	}
	if prompt == nil || prompt.UserID != userID {
		return nil, huma.Error404NotFound("prompt not found")
	}

	return prompt, nil
}
