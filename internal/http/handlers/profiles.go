package handlers

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/brandlens/brandlens-api/internal/config"
	"github.com/brandlens/brandlens-api/internal/models"
	"github.com/brandlens/brandlens-api/internal/repository"
	"github.com/brandlens/brandlens-api/internal/service"
)

// ProfileHandler handles profile and quota endpoints.
type ProfileHandler struct {
	profiles repository.ProfileRepository
	quota    *service.QuotaService
	cfg      *config.Config
}

// NewProfileHandler creates a new profile handler.
func NewProfileHandler(profiles repository.ProfileRepository, quota *service.QuotaService, cfg *config.Config) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, quota: quota, cfg: cfg}
}

// GetProfileOutput wraps the caller's profile.
type GetProfileOutput struct {
	Body models.Profile
}

// GetProfile returns the authenticated user's profile.
func (h *ProfileHandler) GetProfile(ctx context.Context, input *struct{}) (*GetProfileOutput, error) {
	userID := getUserID(ctx)
	if userID == "" {
		return nil, huma.Error401Unauthorized("unauthorized")
	}

	profile, err := h.profiles.GetByID(ctx, userID)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to load profile")
	}
	if profile == nil {
		return nil, huma.Error404NotFound("profile not found")
	}

	return &GetProfileOutput{Body: *profile}, nil
}

// UpsertProfileInput carries the mutable profile fields. Identity (ID and
// email) comes from the session, never from the body.
type UpsertProfileInput struct {
	Body struct {
		BrandName           string `json:"brand_name" maxLength:"200" doc:"The user's own brand name"`
		WebsiteURL          string `json:"website_url,omitempty" maxLength:"500"`
		OnboardingCompleted bool   `json:"onboarding_completed"`
	}
}

// UpsertProfileOutput wraps the stored profile.
type UpsertProfileOutput struct {
	Body models.Profile
}

// UpsertProfile creates the caller's profile on first call and updates the
// mutable fields afterwards.
func (h *ProfileHandler) UpsertProfile(ctx context.Context, input *UpsertProfileInput) (*UpsertProfileOutput, error) {
	claims := getUserClaims(ctx)
	if claims == nil {
		return nil, huma.Error401Unauthorized("unauthorized")
	}

	profile, err := h.profiles.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to load profile")
	}

	if profile == nil {
		profile = &models.Profile{
			ID:                  claims.UserID,
			Email:               claims.Email,
			BrandName:           input.Body.BrandName,
			WebsiteURL:          input.Body.WebsiteURL,
			OnboardingCompleted: input.Body.OnboardingCompleted,
			IsAdmin:             claims.IsAdmin,
			SubscriptionPlan:    "free",
			MonthlyQueryLimit:   h.cfg.DefaultMonthlyQueryLimit,
		}
		if err := h.profiles.Create(ctx, profile); err != nil {
			return nil, huma.Error500InternalServerError("failed to create profile")
		}
		return &UpsertProfileOutput{Body: *profile}, nil
	}

	profile.BrandName = input.Body.BrandName
	profile.WebsiteURL = input.Body.WebsiteURL
	profile.OnboardingCompleted = input.Body.OnboardingCompleted
	if err := h.profiles.Update(ctx, profile); err != nil {
		return nil, huma.Error500InternalServerError("failed to update profile")
	}

	return &UpsertProfileOutput{Body: *profile}, nil
}

// GetQuotaOutput wraps the caller's quota status.
type GetQuotaOutput struct {
	Body service.QuotaStatus
}

// GetQuota returns the caller's quota status, resetting the window if due.
func (h *ProfileHandler) GetQuota(ctx context.Context, input *struct{}) (*GetQuotaOutput, error) {
	userID := getUserID(ctx)
	if userID == "" {
		return nil, huma.Error401Unauthorized("unauthorized")
	}

	status, err := h.quota.Check(ctx, userID)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to check quota")
	}

	return &GetQuotaOutput{Body: *status}, nil
}
