// internal/platform/ui/raw_presenter.go
package ui

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// RawPresenter implementa el Presenter para modo raw: una línea logfmt por
// evento, sin colores. Útil en CI o cuando la salida se redirige.
type RawPresenter struct {
	mu        sync.Mutex
	w         io.Writer
	startTime time.Time
}

// NewRawPresenter crea un nuevo RawPresenter (stdout si w es nil)
func NewRawPresenter(w io.Writer) *RawPresenter {
	if w == nil {
		w = os.Stdout
	}
	return &RawPresenter{w: w, startTime: time.Now()}
}

func (r *RawPresenter) line(level, format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ts := time.Now().UTC().Format(time.RFC3339)
	fmt.Fprintf(r.w, "%s %-5s %s\n", ts, level, fmt.Sprintf(format, args...))
}

func (r *RawPresenter) Start(info BatchInfo) {
	r.startTime = time.Now()
	r.line("INFO", "batch started input=%s handler=%s links=%d workers=%d retries=%d proxies=%d",
		info.Input, info.Handler, info.Links, info.Workers, info.Retries, info.Proxies)
}

func (r *RawPresenter) LinkDone(ev LinkEvent) {
	r.line("INFO", "link status=%s url=%q provider=%s tries=%d redirects=%d duration_ms=%d",
		ev.Status, ev.URL, ev.Provider, ev.Tries, ev.Redirects, ev.Duration.Milliseconds())
}

func (r *RawPresenter) Info(msg string)    { r.line("INFO", "%s", msg) }
func (r *RawPresenter) Warning(msg string) { r.line("WARN", "%s", msg) }
func (r *RawPresenter) Error(msg string)   { r.line("ERROR", "%s", msg) }

func (r *RawPresenter) Finish(stats BatchStats) {
	r.line("INFO", "batch completed total=%d live=%d dead=%d unsupported=%d failed=%d other=%d sink_errors=%d duration=%s",
		stats.Total, stats.Live, stats.Dead, stats.Unsupported, stats.Failed, stats.Other, stats.SinkErrors,
		formatDuration(stats.TotalDuration))
	for _, host := range sortedHosts(stats.UnsupportedHosts) {
		r.line("INFO", "unsupported host=%s links=%d", host, stats.UnsupportedHosts[host])
	}
}

func (r *RawPresenter) Close() error { return nil }
