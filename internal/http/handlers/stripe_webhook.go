package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/webhook"

	"github.com/brandlens/brandlens-api/internal/config"
	"github.com/brandlens/brandlens-api/internal/models"
	"github.com/brandlens/brandlens-api/internal/repository"
)

// planQueryLimits maps subscription plans to their monthly query quota.
var planQueryLimits = map[string]int{
	"free":    100,
	"starter": 500,
	"pro":     2000,
}

// StripeWebhookHandler syncs subscription plan changes onto profiles.
type StripeWebhookHandler struct {
	cfg      *config.Config
	profiles repository.ProfileRepository
	logger   *slog.Logger
}

// NewStripeWebhookHandler creates a new Stripe webhook handler.
func NewStripeWebhookHandler(cfg *config.Config, profiles repository.ProfileRepository, logger *slog.Logger) *StripeWebhookHandler {
	// Set Stripe API key
	stripe.Key = cfg.StripeSecretKey

	return &StripeWebhookHandler{
		cfg:      cfg,
		profiles: profiles,
		logger:   logger,
	}
}

// HandleWebhook processes incoming Stripe webhooks.
// This is a raw HTTP handler since huma doesn't handle raw body verification well.
func (h *StripeWebhookHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	const maxBodySize = 65536 // 64KB

	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		h.logger.Error("failed to read webhook body", "error", err)
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}

	sigHeader := r.Header.Get("Stripe-Signature")
	event, err := webhook.ConstructEvent(payload, sigHeader, h.cfg.StripeWebhookSecret)
	if err != nil {
		h.logger.Error("failed to verify webhook signature", "error", err)
		http.Error(w, "invalid signature", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	if err := h.handleEvent(ctx, event); err != nil {
		h.logger.Error("failed to handle webhook event", "type", event.Type, "error", err)
		// Return 200 to prevent Stripe from retrying (we'll handle the error internally)
		w.WriteHeader(http.StatusOK)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// handleEvent routes events to appropriate handlers.
func (h *StripeWebhookHandler) handleEvent(ctx context.Context, event stripe.Event) error {
	h.logger.Info("received Stripe webhook", "type", event.Type, "id", event.ID)

	switch event.Type {
	case "checkout.session.completed":
		return h.handleCheckoutComplete(ctx, event)

	case "customer.subscription.updated":
		return h.handleSubscriptionUpdated(ctx, event)

	case "customer.subscription.deleted":
		return h.handleSubscriptionCanceled(ctx, event)

	default:
		h.logger.Debug("unhandled webhook event type", "type", event.Type)
		return nil
	}
}

// handleCheckoutComplete upgrades the profile when a plan checkout finishes.
func (h *StripeWebhookHandler) handleCheckoutComplete(ctx context.Context, event stripe.Event) error {
	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return fmt.Errorf("failed to unmarshal checkout session: %w", err)
	}

	plan := session.Metadata["plan"]
	if plan == "" {
		h.logger.Warn("checkout session missing plan metadata", "session_id", session.ID)
		return nil
	}

	profile, err := h.resolveProfile(ctx, session.Metadata["user_id"], checkoutEmail(&session))
	if err != nil || profile == nil {
		return err
	}

	return h.applyPlan(ctx, profile, plan)
}

// handleSubscriptionUpdated applies plan changes made in the Stripe portal.
func (h *StripeWebhookHandler) handleSubscriptionUpdated(ctx context.Context, event stripe.Event) error {
	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		return fmt.Errorf("failed to unmarshal subscription: %w", err)
	}

	plan := sub.Metadata["plan"]
	if plan == "" {
		return nil
	}

	profile, err := h.resolveProfile(ctx, sub.Metadata["user_id"], "")
	if err != nil || profile == nil {
		return err
	}

	// Treat any non-active state as a downgrade back to the free plan.
	if sub.Status != stripe.SubscriptionStatusActive && sub.Status != stripe.SubscriptionStatusTrialing {
		plan = "free"
	}

	return h.applyPlan(ctx, profile, plan)
}

// handleSubscriptionCanceled downgrades the profile to the free plan.
func (h *StripeWebhookHandler) handleSubscriptionCanceled(ctx context.Context, event stripe.Event) error {
	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		return fmt.Errorf("failed to unmarshal subscription: %w", err)
	}

	profile, err := h.resolveProfile(ctx, sub.Metadata["user_id"], "")
	if err != nil || profile == nil {
		return err
	}

	return h.applyPlan(ctx, profile, "free")
}

// resolveProfile finds the profile by metadata user ID, falling back to the
// checkout email. Returns (nil, nil) when nothing matches; unmatched events
// are logged and dropped rather than retried forever.
func (h *StripeWebhookHandler) resolveProfile(ctx context.Context, userID, email string) (*models.Profile, error) {
	if userID != "" {
		profile, err := h.profiles.GetByID(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to load profile %s: %w", userID, err)
		}
		if profile != nil {
			return profile, nil
		}
	}

	if email != "" {
		profile, err := h.profiles.GetByEmail(ctx, email)
		if err != nil {
			return nil, fmt.Errorf("failed to load profile by email: %w", err)
		}
		if profile != nil {
			return profile, nil
		}
	}

	h.logger.Warn("no profile matched Stripe event", "user_id", userID, "email", email)
	return nil, nil
}

// applyPlan writes the plan and its query limit onto the profile.
func (h *StripeWebhookHandler) applyPlan(ctx context.Context, profile *models.Profile, plan string) error {
	limit, ok := planQueryLimits[plan]
	if !ok {
		h.logger.Warn("unknown subscription plan, keeping current limit", "plan", plan)
		limit = profile.MonthlyQueryLimit
	}

	profile.SubscriptionPlan = plan
	profile.MonthlyQueryLimit = limit
	if err := h.profiles.Update(ctx, profile); err != nil {
		return fmt.Errorf("failed to update profile plan: %w", err)
	}

	h.logger.Info("synced subscription plan", "user_id", profile.ID, "plan", plan, "monthly_query_limit", limit)
	return nil
}

func checkoutEmail(session *stripe.CheckoutSession) string {
	if session.CustomerDetails != nil {
		return session.CustomerDetails.Email
	}
	return ""
}
