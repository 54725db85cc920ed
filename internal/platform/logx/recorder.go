// internal/platform/logx/recorder.go
package logx

import (
	"fmt"
	"sync"
)

// Entry es un registro capturado por Recorder.
type Entry struct {
	Level   Level
	Message string
	Fields  map[string]any
}

// Recorder es un Logger en memoria para tests: guarda cada entrada
// sin filtrar por nivel.
type Recorder struct {
	mu      *sync.Mutex
	entries *[]Entry
	scope   []any
}

// NewRecorder crea un Recorder vacío.
func NewRecorder() *Recorder {
	return &Recorder{
		mu:      &sync.Mutex{},
		entries: &[]Entry{},
	}
}

func (r *Recorder) Debug(msg string, kv ...any)  { r.add(LevelDebug, msg, kv) }
func (r *Recorder) Info(msg string, kv ...any)   { r.add(LevelInfo, msg, kv) }
func (r *Recorder) Notice(msg string, kv ...any) { r.add(LevelNotice, msg, kv) }
func (r *Recorder) Warn(msg string, kv ...any)   { r.add(LevelWarn, msg, kv) }
func (r *Recorder) Err(err error, kv ...any) {
	if err == nil {
		return
	}
	r.add(LevelError, err.Error(), kv)
}

func (r *Recorder) With(kv ...any) Logger {
	scope := append(append([]any{}, r.scope...), kv...)
	return &Recorder{mu: r.mu, entries: r.entries, scope: scope}
}

func (r *Recorder) SetLevel(Level) {}

func (r *Recorder) add(l Level, msg string, kv []any) {
	fields := make(map[string]any)
	all := append(append([]any{}, r.scope...), kv...)
	for i := 0; i+1 < len(all); i += 2 {
		fields[fmt.Sprint(all[i])] = all[i+1]
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	*r.entries = append(*r.entries, Entry{Level: l, Message: msg, Fields: fields})
}

// Entries retorna una copia de lo registrado.
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Entry(nil), *r.entries...)
}

// Count cuenta entradas con el nivel y mensaje dados.
func (r *Recorder) Count(l Level, msg string) int {
	n := 0
	for _, e := range r.Entries() {
		if e.Level == l && e.Message == msg {
			n++
		}
	}
	return n
}

// Index retorna la posición de la primera entrada con ese mensaje, o -1.
func (r *Recorder) Index(msg string) int {
	for i, e := range r.Entries() {
		if e.Message == msg {
			return i
		}
	}
	return -1
}
