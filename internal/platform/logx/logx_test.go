// internal/platform/logx/logx_test.go
package logx

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func TestNew(t *testing.T) {
	logger := New()
	if logger == nil {
		t.Fatal("New() should return a logger, got nil")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
	}{
		{"debug", LevelDebug},
		{"DBG", LevelDebug},
		{"info", LevelInfo},
		{"", LevelInfo},
		{"notice", LevelNotice},
		{"  Notice ", LevelNotice},
		{"warn", LevelWarn},
		{"warning", LevelWarn},
		{"err", LevelError},
		{"error", LevelError},
		{"crit", LevelError},
		{"emerg", LevelError},
		{"garbage", LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseLevel(tt.input); got != tt.expected {
				t.Errorf("ParseLevel(%q) = %v, expected %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestKVPairs(t *testing.T) {
	got := kvPairs("url", "https://x.test/f", "attempt", 2, "dangling")
	want := []string{"url=https://x.test/f", "attempt=2", "dangling=(missing)"}

	if len(got) != len(want) {
		t.Fatalf("expected %d pairs, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("pair %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestLogger_With(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriter(&buf, LevelDebug, FormatText)

	scoped := logger.With("component", "pipeline", "run_id", "abc")
	scoped.Info("probe sent")

	output := buf.String()
	for _, want := range []string{"component=pipeline", "run_id=abc", "probe sent", "INF"} {
		if !strings.Contains(output, want) {
			t.Errorf("output should contain %q, got: %s", want, output)
		}
	}
}

func TestLogger_With_Immutable(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriter(&buf, LevelDebug, FormatText)

	_ = logger.With("component", "scoped")
	logger.Info("original")

	if strings.Contains(buf.String(), "component=scoped") {
		t.Errorf("original logger output should not contain scope: %s", buf.String())
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	tests := []struct {
		name     string
		level    Level
		expected []string
		absent   []string
	}{
		{"debug shows all", LevelDebug, []string{"DBG", "INF", "NTC", "WRN", "ERR"}, nil},
		{"notice hides info", LevelNotice, []string{"NTC", "WRN", "ERR"}, []string{"DBG", "INF"}},
		{"error only", LevelError, []string{"ERR"}, []string{"DBG", "INF", "NTC", "WRN"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewWriter(&buf, tt.level, FormatText)

			logger.Debug("d")
			logger.Info("i")
			logger.Notice("n")
			logger.Warn("w")
			logger.Err(errors.New("e"))

			output := buf.String()
			for _, tag := range tt.expected {
				if !strings.Contains(output, tag) {
					t.Errorf("output should contain %s at level %v, got: %s", tag, tt.level, output)
				}
			}
			for _, tag := range tt.absent {
				if strings.Contains(output, tag) {
					t.Errorf("output should NOT contain %s at level %v, got: %s", tag, tt.level, output)
				}
			}
		})
	}
}

func TestLogger_Err_Nil(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriter(&buf, LevelDebug, FormatText)

	logger.Err(nil, "url", "https://x.test")

	if buf.Len() != 0 {
		t.Errorf("nil error should not log, got: %s", buf.String())
	}
}

func TestLogger_SetLevel_SharedWithScoped(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriter(&buf, LevelDebug, FormatText)
	scoped := logger.With("k", "v")

	logger.SetLevel(LevelError)
	scoped.Info("hidden")

	if buf.Len() != 0 {
		t.Errorf("scoped logger should follow parent level, got: %s", buf.String())
	}
}

func TestLogger_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriter(&buf, LevelNotice, FormatJSON)

	logger.Notice("--Unsupported Services Summary--",
		"unsupportedServices", map[string]int{"unknown-host.test": 2},
	)

	var rec map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &rec); err != nil {
		t.Fatalf("line should be valid JSON: %v (%s)", err, buf.String())
	}
	if rec["level"] != "notice" {
		t.Errorf("expected level notice, got %v", rec["level"])
	}
	if rec["message"] != "--Unsupported Services Summary--" {
		t.Errorf("unexpected message %v", rec["message"])
	}
	services, ok := rec["unsupportedServices"].(map[string]any)
	if !ok || services["unknown-host.test"] != float64(2) {
		t.Errorf("expected nested counter map, got %v", rec["unsupportedServices"])
	}
}

func TestLogger_ThreadSafety(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriter(&buf, LevelInfo, FormatText)

	var wg sync.WaitGroup
	iterations := 100

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < iterations; j++ {
				logger.With("worker", id).Info("concurrent log", "iteration", j)
			}
		}(i)
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 10*iterations {
		t.Errorf("expected %d log lines, got %d", 10*iterations, len(lines))
	}
}

func TestNew_WithEnv(t *testing.T) {
	t.Setenv("DLCHECK_LOG_LEVEL", "notice")

	impl := New().(*simpleLogger)
	if impl.out.lvl != LevelNotice {
		t.Errorf("expected log level %v, got %v", LevelNotice, impl.out.lvl)
	}
}

func TestMulti(t *testing.T) {
	var a, b bytes.Buffer
	logger := Multi(
		NewWriter(&a, LevelDebug, FormatText),
		nil,
		NewWriter(&b, LevelError, FormatText),
	)

	logger.With("url", "https://x.test").Info("only first")
	logger.Err(errors.New("both"))

	if !strings.Contains(a.String(), "only first") || !strings.Contains(a.String(), "both") {
		t.Errorf("first sink should receive both lines, got: %s", a.String())
	}
	if strings.Contains(b.String(), "only first") {
		t.Errorf("second sink filters info, got: %s", b.String())
	}
	if !strings.Contains(b.String(), "error=both") {
		t.Errorf("second sink should receive error, got: %s", b.String())
	}
}

func TestNewFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "error.log")

	logger, closer, err := NewFile(FileOptions{Path: path, MaxSizeMB: 1, Level: LevelError})
	if err != nil {
		t.Fatalf("NewFile: %v", err)
	}
	logger.Info("ignored")
	logger.Err(errors.New("probe failed"), "url", "https://x.test/f")
	if err := closer.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if strings.Contains(string(data), "ignored") {
		t.Errorf("info should be filtered, got: %s", data)
	}
	if !strings.Contains(string(data), `"url":"https://x.test/f"`) {
		t.Errorf("expected url field in JSON line, got: %s", data)
	}
}

func TestNewFile_MaxLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "unsupported_services.log")

	logger, closer, err := NewFile(FileOptions{Path: path, Level: LevelNotice, MaxLevel: LevelNotice})
	if err != nil {
		t.Fatalf("NewFile: %v", err)
	}
	logger.Info("ignored info")
	logger.Notice("no support found for file service", "host", "a.test")
	logger.Warn("ignored warning")
	logger.Err(errors.New("ignored error"))
	if err := closer.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, "no support found for file service") {
		t.Errorf("notice should be written, got: %s", out)
	}
	for _, unwanted := range []string{"ignored info", "ignored warning", "ignored error"} {
		if strings.Contains(out, unwanted) {
			t.Errorf("%q should be filtered, got: %s", unwanted, out)
		}
	}
	if n := strings.Count(strings.TrimSpace(out), "\n"); n != 0 {
		t.Errorf("expected a single line, got %d extra", n)
	}
}

func TestRecorder(t *testing.T) {
	rec := NewRecorder()
	scoped := rec.With("component", "tracker")

	scoped.Notice("first", "host", "a.test")
	rec.Err(errors.New("boom"), "url", "https://a.test")

	entries := rec.Entries()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Fields["component"] != "tracker" || entries[0].Fields["host"] != "a.test" {
		t.Errorf("scope and fields should be captured: %v", entries[0].Fields)
	}
	if rec.Count(LevelError, "boom") != 1 {
		t.Errorf("expected one error entry")
	}
	if rec.Index("first") != 0 || rec.Index("missing") != -1 {
		t.Errorf("unexpected Index results")
	}
}
