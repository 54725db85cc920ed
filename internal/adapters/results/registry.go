// internal/adapters/results/registry.go
package results

import (
	"os"
	"time"

	"dlcheck/internal/core/ports"
	"dlcheck/internal/platform/logx"
	"dlcheck/internal/platform/registry"
)

// Claves de configuración reconocidas por las factories.
const (
	KeyPath         = "path"
	KeyRunID        = "run_id"
	KeyWebhookURL   = "webhook_url"
	KeyTimeout      = "timeout"
	KeyOnlyFailures = "only_failures"
)

// Register registra los result handlers incluidos.
func Register(r *registry.ResultHandlers) error {
	if err := r.Register("console", consoleFactory, ports.PluginMetadata{
		Description: "Prints one colored line per verified link",
		Version:     "1.0.0",
	}); err != nil {
		return err
	}

	if err := r.Register("jsonl", jsonlFactory, ports.PluginMetadata{
		Description: "Appends one JSON line per verified link to a file",
		Version:     "1.0.0",
	}); err != nil {
		return err
	}

	return r.Register("webhook", webhookFactory, ports.PluginMetadata{
		Description: "Posts results to a Slack-compatible webhook",
		Version:     "1.0.0",
	})
}

func consoleFactory(_ ports.PluginConfig, logger logx.Logger) (ports.ResultHandler, error) {
	return NewConsoleHandler(os.Stdout, logger), nil
}

func jsonlFactory(cfg ports.PluginConfig, logger logx.Logger) (ports.ResultHandler, error) {
	return NewJSONLHandler(
		registry.String(cfg, KeyPath, "results.jsonl"),
		registry.String(cfg, KeyRunID, ""),
		logger,
	)
}

func webhookFactory(cfg ports.PluginConfig, logger logx.Logger) (ports.ResultHandler, error) {
	url, err := registry.RequireString(cfg, KeyWebhookURL)
	if err != nil {
		return nil, err
	}
	return NewWebhookHandler(WebhookOptions{
		URL:          url,
		Timeout:      registry.Duration(cfg, KeyTimeout, 10*time.Second),
		OnlyFailures: registry.Bool(cfg, KeyOnlyFailures, false),
		Logger:       logger,
	})
}
