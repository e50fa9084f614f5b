package repository

import (
	"context"
	"testing"
	"time"

	"github.com/brandlens/brandlens-api/internal/models"
)

func TestProfileCreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteProfileRepository(db)
	ctx := context.Background()

	profile := createTestProfile(t, db, "user@example.com")

	got, err := repo.GetByID(ctx, profile.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got == nil {
		t.Fatal("expected profile, got nil")
	}
	if got.Email != "user@example.com" {
		t.Errorf("expected email user@example.com, got %s", got.Email)
	}
	if got.BrandName != "Acme" {
		t.Errorf("expected brand name Acme, got %s", got.BrandName)
	}
	if got.MonthlyQueryLimit != 100 {
		t.Errorf("expected query limit 100, got %d", got.MonthlyQueryLimit)
	}

	byEmail, err := repo.GetByEmail(ctx, "user@example.com")
	if err != nil {
		t.Fatalf("GetByEmail failed: %v", err)
	}
	if byEmail == nil || byEmail.ID != profile.ID {
		t.Error("GetByEmail did not return the created profile")
	}
}

func TestProfileGetMissingReturnsNil(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteProfileRepository(db)

	got, err := repo.GetByID(context.Background(), "nonexistent")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got != nil {
		t.Error("expected nil for missing profile")
	}
}

func TestProfileDuplicateEmailRejected(t *testing.T) {
	db := setupTestDB(t)
	createTestProfile(t, db, "dup@example.com")

	repo := NewSQLiteProfileRepository(db)
	err := repo.Create(context.Background(), &models.Profile{
		Email:     "dup@example.com",
		BrandName: "Other",
	})
	if err == nil {
		t.Error("expected unique constraint violation for duplicate email")
	}
}

func TestProfileUpdate(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteProfileRepository(db)
	ctx := context.Background()

	profile := createTestProfile(t, db, "user@example.com")
	profile.BrandName = "Acme Corp"
	profile.OnboardingCompleted = true
	profile.SubscriptionPlan = "pro"
	profile.MonthlyQueryLimit = 500

	if err := repo.Update(ctx, profile); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	got, err := repo.GetByID(ctx, profile.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.BrandName != "Acme Corp" {
		t.Errorf("expected brand name Acme Corp, got %s", got.BrandName)
	}
	if !got.OnboardingCompleted {
		t.Error("expected onboarding_completed to be true")
	}
	if got.SubscriptionPlan != "pro" || got.MonthlyQueryLimit != 500 {
		t.Errorf("plan fields not updated: %s / %d", got.SubscriptionPlan, got.MonthlyQueryLimit)
	}
}

func TestProfileUpdateQuotaUsage(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteProfileRepository(db)
	ctx := context.Background()

	profile := createTestProfile(t, db, "user@example.com")
	resetAt := time.Now().Truncate(time.Second)

	if err := repo.UpdateQuotaUsage(ctx, profile.ID, 42, resetAt); err != nil {
		t.Fatalf("UpdateQuotaUsage failed: %v", err)
	}

	got, err := repo.GetByID(ctx, profile.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.QueriesUsedThisMonth != 42 {
		t.Errorf("expected 42 queries used, got %d", got.QueriesUsedThisMonth)
	}
	if got.LastQueryResetAt == nil || !got.LastQueryResetAt.Equal(resetAt) {
		t.Errorf("expected reset time %v, got %v", resetAt, got.LastQueryResetAt)
	}
}
