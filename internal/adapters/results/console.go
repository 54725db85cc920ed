// internal/adapters/results/console.go
package results

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"dlcheck/internal/core/domain"
	"dlcheck/internal/platform/logx"
	"dlcheck/internal/platform/ui"
)

// ConsoleHandler imprime una línea por resultado en la terminal.
type ConsoleHandler struct {
	mu     sync.Mutex
	w      io.Writer
	logger logx.Logger
}

// NewConsoleHandler crea un handler de consola (stdout si w es nil).
func NewConsoleHandler(w io.Writer, logger logx.Logger) *ConsoleHandler {
	if w == nil {
		w = os.Stdout
	}
	return &ConsoleHandler{
		w:      w,
		logger: logger.With("component", "console-handler"),
	}
}

func (h *ConsoleHandler) Name() string { return "console" }

func (h *ConsoleHandler) HandleResult(_ context.Context, rec *domain.LinkRecord, out domain.Outcome) error {
	status := ui.StatusError
	label := "DEAD"
	if out.Live {
		status = ui.StatusSuccess
		label = "LIVE"
	}

	line := fmt.Sprintf("%s %s %s",
		status.Style().Sprint(status.Symbol()),
		status.Style().Sprint(label),
		ui.StyleAccent.Sprint(rec.URL()),
	)
	line += ui.StyleSecondary.Sprint(details(rec, out))

	h.println(line)
	return nil
}

func (h *ConsoleHandler) HandleError(_ context.Context, message string, rec *domain.LinkRecord) error {
	status := ui.StatusSkipped
	line := fmt.Sprintf("%s %s %s",
		status.Style().Sprint(status.Symbol()),
		ui.StyleWarning.Sprint(message),
		ui.StyleAccent.Sprint(rec.URL()),
	)
	h.println(line)
	return nil
}

func (h *ConsoleHandler) Close() error { return nil }

func (h *ConsoleHandler) println(line string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	fmt.Fprintln(h.w, line)
}

// details resume el outcome y la procedencia entre paréntesis.
func details(rec *domain.LinkRecord, out domain.Outcome) string {
	s := fmt.Sprintf(" (provider=%s", out.Provider)
	if out.StatusCode > 0 {
		s += fmt.Sprintf(" status=%d", out.StatusCode)
	}
	if out.Reason != "" {
		s += fmt.Sprintf(" reason=%q", out.Reason)
	}
	if rec.Redirected() {
		if final, ok := rec.Get(domain.AttrFinalURL); ok {
			s += fmt.Sprintf(" via=%v", final)
		}
	}
	if proxy, ok := rec.Get(domain.AttrProxy); ok && proxy != nil {
		s += fmt.Sprintf(" proxy=%v", proxy)
	}
	return s + ")"
}
