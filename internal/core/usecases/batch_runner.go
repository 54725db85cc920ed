// internal/core/usecases/batch_runner.go
package usecases

import (
	"context"
	"fmt"
	"sync"
	"time"

	"dlcheck/internal/core/domain"
	"dlcheck/internal/core/ports"
	"dlcheck/internal/platform/errors"
	"dlcheck/internal/platform/logx"
	"dlcheck/internal/platform/resilience"
	"dlcheck/internal/platform/tracker"
	"dlcheck/internal/platform/ui"
	"dlcheck/internal/platform/validator"
	"dlcheck/internal/platform/workerpool"
)

// Stats contiene estadísticas de un batch.
type Stats struct {
	Total         int
	Live          int
	Dead          int
	Unsupported   int
	Failed        int
	RedirectLimit int
	Invalid       int
	SinkErrors    int
	Duration      time.Duration
}

func (s *Stats) add(res LinkResult) {
	switch res.Status {
	case domain.StatusLive:
		s.Live++
	case domain.StatusDead:
		s.Dead++
	case domain.StatusUnsupported:
		s.Unsupported++
	case domain.StatusFailed:
		s.Failed++
	case domain.StatusRedirectLimit:
		s.RedirectLimit++
	case domain.StatusInvalid:
		s.Invalid++
	}
}

// BatchRunner carga los enlaces de la fuente de entrada y lanza una
// verificación por enlace sin esperar a las anteriores. La concurrencia la
// acotan el worker pool y el pool de conexiones del transporte.
type BatchRunner struct {
	pipeline  *Pipeline
	tracker   *tracker.Unsupported
	summary   *Summary
	retries   int
	delay     time.Duration
	workers   int
	logger    logx.Logger
	presenter ui.Presenter
}

// BatchRunnerOptions configura el batch runner.
type BatchRunnerOptions struct {
	Pipeline  *Pipeline
	Retries   int
	Delay     time.Duration
	Workers   int
	Logger    logx.Logger
	Presenter ui.Presenter
}

// NewBatchRunner crea un nuevo batch runner.
func NewBatchRunner(opts BatchRunnerOptions) *BatchRunner {
	if opts.Workers <= 0 {
		opts.Workers = 64
	}
	if opts.Retries < 0 {
		opts.Retries = 0
	}
	if opts.Logger == nil {
		opts.Logger = logx.New()
	}
	if opts.Presenter == nil {
		opts.Presenter = ui.NewNoopPresenter()
	}

	return &BatchRunner{
		pipeline:  opts.Pipeline,
		tracker:   opts.Pipeline.tracker,
		summary:   opts.Pipeline.summary,
		retries:   opts.Retries,
		delay:     opts.Delay,
		workers:   opts.Workers,
		logger:    opts.Logger.With("component", "batch-runner"),
		presenter: opts.Presenter,
	}
}

// Run ejecuta un batch completo. Solo un fallo de la fuente de entrada
// aborta el batch; los fallos por enlace se registran y el batch continúa.
func (r *BatchRunner) Run(ctx context.Context, input ports.InputSource, handler ports.ResultHandler) (Stats, error) {
	start := time.Now()

	if err := validator.ValidateInputSource(input); err != nil {
		return Stats{}, err
	}
	if err := validator.ValidateResultHandler(handler); err != nil {
		return Stats{}, err
	}

	r.logger.Notice(MarkerStartRun, "input", input.Name(), "handler", handler.Name())

	linkField, records, err := input.GetDownloadLinks(ctx)
	if err != nil {
		err = errors.Wrapf(errors.Mark(err, errors.ErrInputSource), "input %s", input.Name())
		r.logger.Err(err)
		return Stats{}, err
	}

	r.logger.Info("download links loaded",
		"input", input.Name(),
		"link_field", linkField,
		"count", len(records),
	)

	stats := Stats{Total: len(records)}
	r.presenter.Start(ui.BatchInfo{
		Input:   input.Name(),
		Handler: handler.Name(),
		Links:   len(records),
		Workers: r.workers,
		Retries: r.retries,
	})

	if len(records) == 0 {
		// Sin último enlace: el resumen cierra la ejecución igualmente.
		r.summary.Emit()
		stats.Duration = time.Since(start)
		r.finish(stats)
		return stats, nil
	}

	var mu sync.Mutex
	pool := workerpool.NewWorkerPool(workerpool.WorkerPoolConfig{
		Workers: r.workers,
		Logger:  r.logger,
	})
	pool.Start(ctx)

	last := len(records) - 1
	for i, rec := range records {
		if rec == nil {
			rec = domain.NewLinkRecord(nil, linkField)
		}
		if rec.LinkField == "" {
			rec.LinkField = linkField
		}

		if r.delay > 0 {
			if err := resilience.Sleep(ctx, r.delay); err != nil {
				r.logger.Warn("dispatch interrupted", "remaining", len(records)-i, "error", err.Error())
				break
			}
		}

		attempt := NewAttempt(rec, handler, r.retries, i == last)
		task := workerpool.Func{
			Label: fmt.Sprintf("link-%d", i),
			Fn: func(ctx context.Context) error {
				res, sinkErr := r.pipeline.Verify(ctx, attempt)

				mu.Lock()
				stats.add(res)
				if sinkErr != nil {
					stats.SinkErrors++
				}
				mu.Unlock()

				if sinkErr != nil {
					r.logger.Err(sinkErr, "url", attempt.URL)
				}
				r.presenter.LinkDone(ui.LinkEvent{
					URL:       res.URL,
					Status:    string(res.Status),
					Provider:  res.Provider,
					Tries:     res.Tries,
					Redirects: res.Redirects,
					Duration:  res.Duration,
				})
				return sinkErr
			},
		}

		if err := pool.Submit(ctx, task); err != nil {
			r.logger.Warn("dispatch interrupted", "remaining", len(records)-i, "error", err.Error())
			break
		}
	}

	pool.Wait()

	// Si el último enlace nunca se despachó, el resumen sale aquí.
	if !r.summary.Emitted() {
		r.logger.Warn("last link was not dispatched, closing run")
		r.summary.Emit()
	}

	stats.Duration = time.Since(start)
	r.logger.Info("batch completed",
		"total", stats.Total,
		"live", stats.Live,
		"dead", stats.Dead,
		"unsupported", stats.Unsupported,
		"failed", stats.Failed,
		"sink_errors", stats.SinkErrors,
		"duration_ms", stats.Duration.Milliseconds(),
	)
	r.finish(stats)

	return stats, nil
}

func (r *BatchRunner) finish(stats Stats) {
	r.presenter.Finish(ui.BatchStats{
		TotalDuration:    stats.Duration,
		Total:            stats.Total,
		Live:             stats.Live,
		Dead:             stats.Dead,
		Unsupported:      stats.Unsupported,
		UnsupportedHosts: r.tracker.Snapshot(),
		Failed:           stats.Failed,
		Other:            stats.RedirectLimit + stats.Invalid,
		SinkErrors:       stats.SinkErrors,
	})
}
