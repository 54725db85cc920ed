// internal/adapters/results/jsonl.go
package results

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"dlcheck/internal/core/domain"
	"dlcheck/internal/platform/logx"
)

// Line es una línea del fichero JSONL: un resultado o un error por enlace.
type Line struct {
	RunID      string         `json:"run_id"`
	Time       time.Time      `json:"time"`
	Type       string         `json:"type"` // result | error
	URL        string         `json:"url"`
	Live       *bool          `json:"live,omitempty"`
	Reason     string         `json:"reason,omitempty"`
	StatusCode int            `json:"status_code,omitempty"`
	Provider   string         `json:"provider,omitempty"`
	Message    string         `json:"message,omitempty"`
	Record     map[string]any `json:"record"`
}

// JSONLHandler escribe cada resultado como una línea JSON. Las líneas se
// vuelcan a disco en cada escritura para no perder resultados si el proceso
// muere a mitad del batch.
type JSONLHandler struct {
	mu     sync.Mutex
	path   string
	runID  string
	file   *os.File
	buf    *bufio.Writer
	enc    *json.Encoder
	lines  int
	logger logx.Logger
}

// NewJSONLHandler abre (en modo append) el fichero de resultados.
func NewJSONLHandler(path, runID string, logger logx.Logger) (*JSONLHandler, error) {
	if path == "" {
		path = "results.jsonl"
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create results directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open results file: %w", err)
	}

	buf := bufio.NewWriter(f)
	return &JSONLHandler{
		path:   path,
		runID:  runID,
		file:   f,
		buf:    buf,
		enc:    json.NewEncoder(buf),
		logger: logger.With("component", "jsonl-handler", "file", path),
	}, nil
}

func (h *JSONLHandler) Name() string { return "jsonl" }

func (h *JSONLHandler) HandleResult(_ context.Context, rec *domain.LinkRecord, out domain.Outcome) error {
	live := out.Live
	return h.write(Line{
		Type:       "result",
		URL:        rec.URL(),
		Live:       &live,
		Reason:     out.Reason,
		StatusCode: out.StatusCode,
		Provider:   out.Provider,
		Record:     jsonSafe(rec.Snapshot()),
	})
}

func (h *JSONLHandler) HandleError(_ context.Context, message string, rec *domain.LinkRecord) error {
	return h.write(Line{
		Type:    "error",
		URL:     rec.URL(),
		Message: message,
		Record:  jsonSafe(rec.Snapshot()),
	})
}

func (h *JSONLHandler) write(line Line) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.file == nil {
		return fmt.Errorf("results file %s is closed", h.path)
	}

	line.RunID = h.runID
	line.Time = time.Now().UTC()

	if err := h.enc.Encode(line); err != nil {
		return fmt.Errorf("failed to encode result line: %w", err)
	}
	if err := h.buf.Flush(); err != nil {
		return fmt.Errorf("failed to flush results file: %w", err)
	}
	h.lines++
	return nil
}

// Close vuelca y cierra el fichero.
func (h *JSONLHandler) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.file == nil {
		return nil
	}

	flushErr := h.buf.Flush()
	closeErr := h.file.Close()
	h.file = nil

	h.logger.Debug("results file closed", "lines", h.lines)

	if flushErr != nil {
		return fmt.Errorf("failed to flush results file: %w", flushErr)
	}
	return closeErr
}

// jsonSafe convierte valores no serializables (p. ej. []byte de la base de
// datos) a string.
func jsonSafe(attrs map[string]any) map[string]any {
	for k, v := range attrs {
		switch val := v.(type) {
		case []byte:
			attrs[k] = string(val)
		case error:
			attrs[k] = val.Error()
		case fmt.Stringer:
			attrs[k] = val.String()
		}
	}
	return attrs
}
