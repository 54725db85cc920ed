// internal/platform/logx/sinks.go
package logx

import (
	"io"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

// FileOptions configura un sink de archivo con tope de tamaño.
type FileOptions struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	Level      Level

	// MaxLevel acota el sink por arriba; el cero no acota.
	MaxLevel Level
}

// NewFile crea un logger JSON sobre un archivo rotado por tamaño.
// El io.Closer devuelto libera el archivo.
func NewFile(opts FileOptions) (Logger, io.Closer, error) {
	if opts.MaxSizeMB <= 0 {
		opts.MaxSizeMB = 100
	}
	if dir := filepath.Dir(opts.Path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, err
		}
	}

	w := &lumberjack.Logger{
		Filename:   opts.Path,
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
	}
	logger := &simpleLogger{out: &sink{lvl: opts.Level, max: LevelError, format: FormatJSON, w: w}}
	if opts.MaxLevel != LevelDebug {
		logger.out.max = opts.MaxLevel
	}
	return logger, w, nil
}

// multiLogger reparte cada registro a varios loggers; cada uno filtra
// según su propio nivel.
type multiLogger struct {
	loggers []Logger
}

// Multi combina loggers. Los nil se ignoran.
func Multi(loggers ...Logger) Logger {
	out := make([]Logger, 0, len(loggers))
	for _, l := range loggers {
		if l != nil {
			out = append(out, l)
		}
	}
	if len(out) == 1 {
		return out[0]
	}
	return &multiLogger{loggers: out}
}

func (m *multiLogger) Debug(msg string, kv ...any) {
	for _, l := range m.loggers {
		l.Debug(msg, kv...)
	}
}

func (m *multiLogger) Info(msg string, kv ...any) {
	for _, l := range m.loggers {
		l.Info(msg, kv...)
	}
}

func (m *multiLogger) Notice(msg string, kv ...any) {
	for _, l := range m.loggers {
		l.Notice(msg, kv...)
	}
}

func (m *multiLogger) Warn(msg string, kv ...any) {
	for _, l := range m.loggers {
		l.Warn(msg, kv...)
	}
}

func (m *multiLogger) Err(err error, kv ...any) {
	for _, l := range m.loggers {
		l.Err(err, kv...)
	}
}

func (m *multiLogger) With(kv ...any) Logger {
	scoped := make([]Logger, len(m.loggers))
	for i, l := range m.loggers {
		scoped[i] = l.With(kv...)
	}
	return &multiLogger{loggers: scoped}
}

func (m *multiLogger) SetLevel(lvl Level) {
	for _, l := range m.loggers {
		l.SetLevel(lvl)
	}
}
