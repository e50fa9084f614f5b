package handlers

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/brandlens/brandlens-api/internal/models"
	"github.com/brandlens/brandlens-api/internal/repository"
)

// CompetitorHandler handles competitor endpoints.
type CompetitorHandler struct {
	competitors repository.CompetitorRepository
}

// NewCompetitorHandler creates a new competitor handler.
func NewCompetitorHandler(competitors repository.CompetitorRepository) *CompetitorHandler {
	return &CompetitorHandler{competitors: competitors}
}

// ListCompetitorsOutput wraps the caller's competitors.
type ListCompetitorsOutput struct {
	Body struct {
		Competitors []*models.Competitor `json:"competitors"`
	}
}

// ListCompetitors returns the caller's tracked competitors.
func (h *CompetitorHandler) ListCompetitors(ctx context.Context, input *struct{}) (*ListCompetitorsOutput, error) {
	userID := getUserID(ctx)
	if userID == "" {
		return nil, huma.Error401Unauthorized("unauthorized")
	}

	competitors, err := h.competitors.ListByUserID(ctx, userID)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to list competitors")
	}
	if competitors == nil {
		competitors = []*models.Competitor{}
	}

	out := &ListCompetitorsOutput{}
	out.Body.Competitors = competitors
	return out, nil
}

// CreateCompetitorInput carries a new competitor.
type CreateCompetitorInput struct {
	Body struct {
		Name       string `json:"name" minLength:"1" maxLength:"200" doc:"Competitor brand name"`
		WebsiteURL string `json:"website_url,omitempty" maxLength:"500"`
	}
}

// CreateCompetitorOutput wraps the created competitor.
type CreateCompetitorOutput struct {
	Body models.Competitor
}

// CreateCompetitor adds a competitor to the caller's tracked set.
func (h *CompetitorHandler) CreateCompetitor(ctx context.Context, input *CreateCompetitorInput) (*CreateCompetitorOutput, error) {
	userID := getUserID(ctx)
	if userID == "" {
		return nil, huma.Error401Unauthorized("unauthorized")
	}

	competitor := &models.Competitor{
		UserID:     userID,
		Name:       input.Body.Name,
		WebsiteURL: input.Body.WebsiteURL,
	}
	if err := h.competitors.Create(ctx, competitor); err != nil {
		return nil, huma.Error500InternalServerError("failed to create competitor")
	}

	return &CreateCompetitorOutput{Body: *competitor}, nil
}

// DeleteCompetitorInput identifies the competitor to remove.
type DeleteCompetitorInput struct {
	ID string `path:"id" doc:"Competitor ID"`
}

// DeleteCompetitor removes one of the caller's competitors.
func (h *CompetitorHandler) DeleteCompetitor(ctx context.Context, input *DeleteCompetitorInput) (*struct{}, error) {
	userID := getUserID(ctx)
	if userID == "" {
		return nil, huma.Error401Unauthorized("unauthorized")
	}

	competitor, err := h.competitors.GetByID(ctx, input.ID)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to load competitor")
	}
	if competitor == nil || competitor.UserID != userID {
		return nil, huma.Error404NotFound("competitor not found")
	}

	if err := h.competitors.Delete(ctx, input.ID); err != nil {
		return nil, huma.Error500InternalServerError("failed to delete competitor")
	}

	return &struct{}{}, nil
}
