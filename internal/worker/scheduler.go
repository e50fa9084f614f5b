// Package worker runs the background prompt scheduler.
package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/brandlens/brandlens-api/internal/repository"
	"github.com/brandlens/brandlens-api/internal/service"
)

// Scheduler periodically scans for prompts whose update frequency window
// has elapsed, checks the owner's quota and dispatches them to the workflow
// webhook.
type Scheduler struct {
	prompts      repository.PromptRepository
	dispatch     *service.DispatchService
	quota        *service.QuotaService
	pollInterval time.Duration
	stop         chan struct{}
	wg           sync.WaitGroup
	logger       *slog.Logger
}

// Config holds scheduler configuration.
type Config struct {
	PollInterval time.Duration
}

// New creates a new scheduler.
func New(
	prompts repository.PromptRepository,
	dispatch *service.DispatchService,
	quota *service.QuotaService,
	cfg Config,
	logger *slog.Logger,
) *Scheduler {
	if cfg.PollInterval == 0 {
		cfg.PollInterval = time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		prompts:      prompts,
		dispatch:     dispatch,
		quota:        quota,
		pollInterval: cfg.PollInterval,
		stop:         make(chan struct{}),
		logger:       logger.With("component", "scheduler"),
	}
}

// Start begins polling for due prompts.
func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info("starting", "poll_interval", s.pollInterval)

	s.wg.Add(1)
	go s.run(ctx)
}

// Stop gracefully stops the scheduler.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping")
	close(s.stop)
	s.wg.Wait()
	s.logger.Info("stopped")
}

func (s *Scheduler) run(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// Tick runs one scheduling pass. Exported so tests and the demo binary can
// drive the scheduler without the ticker.
func (s *Scheduler) Tick(ctx context.Context) {
	now := time.Now()

	due, err := s.prompts.ListDue(ctx, now)
	if err != nil {
		s.logger.Error("failed to list due prompts", "error", err)
		return
	}
	if len(due) == 0 {
		return
	}

	s.logger.Info("dispatching due prompts", "count", len(due))

	for _, prompt := range due {
		status, err := s.quota.Check(ctx, prompt.UserID)
		if err != nil {
			s.logger.Error("quota check failed", "prompt_id", prompt.ID, "user_id", prompt.UserID, "error", err)
			continue
		}
		if !status.Allowed {
			s.logger.Warn("skipping prompt: quota exhausted",
				"prompt_id", prompt.ID,
				"user_id", prompt.UserID,
				"used", status.Used,
				"limit", status.Limit)
			continue
		}

		if _, err := s.dispatch.Dispatch(ctx, prompt); err != nil {
			s.logger.Error("dispatch failed", "prompt_id", prompt.ID, "error", err)
			continue
		}

		// Stamp the trigger even if some platform posts failed: a partial
		// fan-out should not be retried every tick for a whole window.
		if err := s.prompts.MarkTriggered(ctx, prompt.ID, now); err != nil {
			s.logger.Error("failed to mark prompt triggered", "prompt_id", prompt.ID, "error", err)
		}
		if _, err := s.quota.Increment(ctx, prompt.UserID); err != nil {
			s.logger.Error("failed to increment quota", "user_id", prompt.UserID, "error", err)
		}
	}
}
