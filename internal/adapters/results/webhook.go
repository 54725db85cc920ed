// internal/adapters/results/webhook.go
package results

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"dlcheck/internal/core/domain"
	"dlcheck/internal/platform/errors"
	"dlcheck/internal/platform/logx"
)

// WebhookHandler publica cada resultado en un webhook compatible con Slack
// (payload {"text": ...}). Un webhook que responde con un status no 2xx
// produce un error del sink; el runner lo registra y sigue con el batch.
type WebhookHandler struct {
	url     string
	client  *http.Client
	onlyBad bool
	logger  logx.Logger
}

// WebhookOptions configura el webhook handler.
type WebhookOptions struct {
	URL string

	// Timeout por publicación (default: 10s)
	Timeout time.Duration

	// OnlyFailures solo publica enlaces muertos y errores
	OnlyFailures bool

	Logger logx.Logger
}

type webhookPayload struct {
	Text string `json:"text"`
}

// NewWebhookHandler crea un webhook handler.
func NewWebhookHandler(opts WebhookOptions) (*WebhookHandler, error) {
	if opts.URL == "" {
		return nil, errors.Wrap(errors.ErrInvalidInput, "webhook url is required")
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = logx.New()
	}

	return &WebhookHandler{
		url:     opts.URL,
		client:  &http.Client{Timeout: opts.Timeout},
		onlyBad: opts.OnlyFailures,
		logger:  opts.Logger.With("component", "webhook-handler"),
	}, nil
}

func (h *WebhookHandler) Name() string { return "webhook" }

func (h *WebhookHandler) HandleResult(ctx context.Context, rec *domain.LinkRecord, out domain.Outcome) error {
	if out.Live && h.onlyBad {
		return nil
	}

	text := fmt.Sprintf(":x: Download link is dead: %s (%s)", rec.URL(), out.Provider)
	if out.Live {
		text = fmt.Sprintf(":white_check_mark: Download link is live: %s (%s)", rec.URL(), out.Provider)
	}
	if out.Reason != "" {
		text += " - " + out.Reason
	}
	return h.post(ctx, text)
}

func (h *WebhookHandler) HandleError(ctx context.Context, message string, rec *domain.LinkRecord) error {
	return h.post(ctx, fmt.Sprintf(":warning: %s %s", message, rec.URL()))
}

func (h *WebhookHandler) Close() error {
	h.client.CloseIdleConnections()
	return nil
}

func (h *WebhookHandler) post(ctx context.Context, text string) error {
	body, err := json.Marshal(webhookPayload{Text: text})
	if err != nil {
		return fmt.Errorf("failed to encode webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return errors.Wrap(errors.Classify(err), "webhook post")
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.Wrapf(errors.ErrInvalidResponse, "webhook returned HTTP %d", resp.StatusCode)
	}

	h.logger.Debug("webhook posted", "status", resp.StatusCode)
	return nil
}
