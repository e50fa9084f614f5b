package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	svix "github.com/svix/svix-webhooks/go"

	"github.com/brandlens/brandlens-api/internal/config"
	"github.com/brandlens/brandlens-api/internal/models"
	"github.com/brandlens/brandlens-api/internal/service"
)

// ExecutionWebhookHandler receives completed execution results from the
// external workflow engine.
type ExecutionWebhookHandler struct {
	cfg       *config.Config
	ingestion *service.IngestionService
	logger    *slog.Logger
}

// NewExecutionWebhookHandler creates a new execution webhook handler.
func NewExecutionWebhookHandler(cfg *config.Config, ingestion *service.IngestionService, logger *slog.Logger) *ExecutionWebhookHandler {
	return &ExecutionWebhookHandler{cfg: cfg, ingestion: ingestion, logger: logger}
}

// HandleWebhook processes incoming execution result callbacks.
// This is a raw HTTP handler since huma doesn't handle raw body verification well.
func (h *ExecutionWebhookHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	const maxBodySize = 1 << 20 // 1MB, AI responses can be long

	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		h.logger.Error("failed to read webhook body", "error", err)
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}

	// Verify signature when a signing secret is configured. Local and demo
	// setups run the workflow engine without one.
	if h.cfg.ExecutionWebhookSecret != "" {
		headers := http.Header{}
		headers.Set("svix-id", r.Header.Get("svix-id"))
		headers.Set("svix-timestamp", r.Header.Get("svix-timestamp"))
		headers.Set("svix-signature", r.Header.Get("svix-signature"))

		wh, err := svix.NewWebhook(h.cfg.ExecutionWebhookSecret)
		if err != nil {
			h.logger.Error("failed to create webhook verifier", "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		if err := wh.Verify(payload, headers); err != nil {
			h.logger.Error("failed to verify webhook signature", "error", err)
			http.Error(w, "invalid signature", http.StatusBadRequest)
			return
		}
	}

	var callback models.ExecutionCallback
	if err := json.Unmarshal(payload, &callback); err != nil {
		h.logger.Error("failed to parse callback payload", "error", err)
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	if err := h.ingestion.Ingest(r.Context(), &callback); err != nil {
		switch {
		case errors.Is(err, service.ErrMissingExecutionID), errors.Is(err, service.ErrUnknownExecution):
			h.logger.Warn("rejected execution callback", "error", err)
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			h.logger.Error("failed to ingest execution callback", "execution_id", callback.ExecutionID, "error", err)
			http.Error(w, "ingestion failed", http.StatusInternalServerError)
		}
		return
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
