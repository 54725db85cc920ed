// internal/platform/logx/logx.go
package logx

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

type Level int

// Orden tipo syslog: notice queda entre info y warn.
const (
	LevelDebug Level = iota
	LevelInfo
	LevelNotice
	LevelWarn
	LevelError
)

// Format define cómo se serializa cada línea.
type Format int

const (
	FormatText Format = iota
	FormatJSON
)

type Logger interface {
	Debug(msg string, kv ...any)
	Info(msg string, kv ...any)
	Notice(msg string, kv ...any)
	Warn(msg string, kv ...any)
	Err(err error, kv ...any)
	With(kv ...any) Logger
	SetLevel(lvl Level)
}

// sink es compartido por todos los loggers derivados con With.
type sink struct {
	mu     sync.Mutex
	lvl    Level
	max    Level
	format Format
	w      io.Writer
}

type simpleLogger struct {
	out   *sink
	scope []any // pares key/value fijos
}

func New() Logger {
	return NewWriter(os.Stderr, ParseLevel(os.Getenv("DLCHECK_LOG_LEVEL")), FormatText)
}

// NewWithLevel creates a stderr logger with a specific log level
func NewWithLevel(lvl Level) Logger {
	return NewWriter(os.Stderr, lvl, FormatText)
}

// NewSilent creates a logger that only outputs errors
func NewSilent() Logger {
	return NewWithLevel(LevelError)
}

// NewWriter creates a logger writing to w in the given format.
func NewWriter(w io.Writer, lvl Level, format Format) Logger {
	return &simpleLogger{
		out: &sink{lvl: lvl, max: LevelError, format: format, w: w},
	}
}

func (s *simpleLogger) With(kv ...any) Logger {
	scope := make([]any, 0, len(s.scope)+len(kv))
	scope = append(scope, s.scope...)
	scope = append(scope, kv...)
	return &simpleLogger{out: s.out, scope: scope}
}

func (s *simpleLogger) SetLevel(lvl Level) {
	s.out.mu.Lock()
	defer s.out.mu.Unlock()
	s.out.lvl = lvl
}

func (s *simpleLogger) Debug(msg string, kv ...any)  { s.log(LevelDebug, msg, kv...) }
func (s *simpleLogger) Info(msg string, kv ...any)   { s.log(LevelInfo, msg, kv...) }
func (s *simpleLogger) Notice(msg string, kv ...any) { s.log(LevelNotice, msg, kv...) }
func (s *simpleLogger) Warn(msg string, kv ...any)   { s.log(LevelWarn, msg, kv...) }
func (s *simpleLogger) Err(err error, kv ...any) {
	if err == nil {
		return
	}
	kv = append([]any{"error", err.Error()}, kv...)
	s.log(LevelError, "", kv...)
}

func (s *simpleLogger) log(l Level, msg string, kv ...any) {
	s.out.mu.Lock()
	defer s.out.mu.Unlock()

	if l < s.out.lvl || l > s.out.max {
		return
	}

	all := make([]any, 0, len(s.scope)+len(kv))
	all = append(all, s.scope...)
	all = append(all, kv...)

	var line string
	switch s.out.format {
	case FormatJSON:
		line = jsonLine(l, msg, all)
	default:
		line = textLine(l, msg, all)
	}
	_, _ = io.WriteString(s.out.w, line+"\n")
}

func textLine(l Level, msg string, kv []any) string {
	ts := time.Now().Format("15:04:05")
	fields := kvPairs(kv...)
	line := fmt.Sprintf("%s %s %s", ts, l.Tag(), msg)
	if len(strings.TrimSpace(msg)) == 0 && len(fields) > 0 {
		// sin msg y solo campos (e.g., Err), evita doble espacio
		line = fmt.Sprintf("%s %s", ts, l.Tag())
	}
	if len(fields) > 0 {
		line = fmt.Sprintf("%s %s", line, strings.Join(fields, " "))
	}
	return line
}

func jsonLine(l Level, msg string, kv []any) string {
	rec := make(map[string]any, len(kv)/2+3)
	for i := 0; i < len(kv); i += 2 {
		k := fmt.Sprint(kv[i])
		if i+1 < len(kv) {
			rec[k] = jsonValue(kv[i+1])
		} else {
			rec[k] = "(missing)"
		}
	}
	rec["timestamp"] = time.Now().Format(time.RFC3339)
	rec["level"] = l.String()
	if msg != "" {
		rec["message"] = msg
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return textLine(l, msg, kv)
	}
	return string(data)
}

// jsonValue deja pasar tipos serializables y convierte el resto a string.
func jsonValue(v any) any {
	switch x := v.(type) {
	case error:
		return x.Error()
	case fmt.Stringer:
		return x.String()
	default:
		return v
	}
}

func kvPairs(kv ...any) []string {
	out := make([]string, 0, len(kv))
	for i := 0; i < len(kv); i += 2 {
		var k, v any
		k = kv[i]
		if i+1 < len(kv) {
			v = kv[i+1]
		} else {
			v = "(missing)"
		}
		out = append(out, fmt.Sprintf("%v=%v", k, v))
	}
	return out
}

// Tag retorna la etiqueta corta usada en formato texto.
func (l Level) Tag() string {
	switch l {
	case LevelDebug:
		return "DBG"
	case LevelInfo:
		return "INF"
	case LevelNotice:
		return "NTC"
	case LevelWarn:
		return "WRN"
	case LevelError:
		return "ERR"
	default:
		return "???"
	}
}

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelNotice:
		return "notice"
	case LevelWarn:
		return "warning"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}

// ParseLevel acepta los nombres cortos y los niveles syslog
// (crit, alert, emerg se tratan como error).
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug", "dbg":
		return LevelDebug
	case "info", "inf", "":
		return LevelInfo
	case "notice", "ntc":
		return LevelNotice
	case "warn", "warning":
		return LevelWarn
	case "err", "error", "crit", "alert", "emerg":
		return LevelError
	default:
		return LevelInfo
	}
}
