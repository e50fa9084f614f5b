package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/brandlens/brandlens-api/internal/repository"
)

// quotaResetPeriod is how long a usage window lasts before the counter
// rolls over.
const quotaResetPeriod = 30 * 24 * time.Hour

// QuotaStatus reports where a user stands against their monthly limit.
type QuotaStatus struct {
	Allowed   bool      `json:"allowed"`
	Used      int       `json:"used"`
	Limit     int       `json:"limit"`
	Remaining int       `json:"remaining"`
	ResetsAt  time.Time `json:"resets_at"`
}

// QuotaService enforces per-user monthly execution limits. The window is a
// rolling 30 days from the last reset, not a calendar month.
type QuotaService struct {
	profiles repository.ProfileRepository
	logger   *slog.Logger
}

// NewQuotaService creates a new quota service.
func NewQuotaService(profiles repository.ProfileRepository, logger *slog.Logger) *QuotaService {
	if logger == nil {
		logger = slog.Default()
	}
	return &QuotaService{profiles: profiles, logger: logger}
}

// Check returns the user's current quota status, resetting the usage counter
// first if the window has elapsed.
func (s *QuotaService) Check(ctx context.Context, userID string) (*QuotaStatus, error) {
	profile, err := s.profiles.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	if profile == nil {
		return nil, fmt.Errorf("profile %s not found", userID)
	}

	now := time.Now()
	used := profile.QueriesUsedThisMonth
	resetAt := now
	if profile.LastQueryResetAt != nil {
		resetAt = *profile.LastQueryResetAt
	}

	if profile.LastQueryResetAt == nil || now.Sub(resetAt) >= quotaResetPeriod {
		used = 0
		resetAt = now
		if err := s.profiles.UpdateQuotaUsage(ctx, userID, 0, now); err != nil {
			return nil, fmt.Errorf("failed to reset quota window: %w", err)
		}
		s.logger.Info("quota window reset", "user_id", userID)
	}

	remaining := profile.MonthlyQueryLimit - used
	if remaining < 0 {
		remaining = 0
	}

	return &QuotaStatus{
		Allowed:   used < profile.MonthlyQueryLimit,
		Used:      used,
		Limit:     profile.MonthlyQueryLimit,
		Remaining: remaining,
		ResetsAt:  resetAt.Add(quotaResetPeriod),
	}, nil
}

// Increment consumes one query from the user's quota. It re-checks first so
// a stale caller cannot push usage past the limit.
func (s *QuotaService) Increment(ctx context.Context, userID string) (*QuotaStatus, error) {
	status, err := s.Check(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !status.Allowed {
		return status, fmt.Errorf("monthly query limit of %d reached", status.Limit)
	}

	resetAt := status.ResetsAt.Add(-quotaResetPeriod)
	if err := s.profiles.UpdateQuotaUsage(ctx, userID, status.Used+1, resetAt); err != nil {
		return nil, fmt.Errorf("failed to increment quota usage: %w", err)
	}

	status.Used++
	status.Remaining = status.Limit - status.Used
	if status.Remaining < 0 {
		status.Remaining = 0
	}
	status.Allowed = status.Used < status.Limit

	return status, nil
}
