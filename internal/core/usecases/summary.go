// internal/core/usecases/summary.go
package usecases

import (
	"sync"

	"dlcheck/internal/platform/logx"
	"dlcheck/internal/platform/tracker"
)

// Marcadores de inicio y fin de ejecución en el log de notice.
const (
	MarkerStartRun = "=====start run====="
	MarkerSummary  = "--Unsupported Services Summary--"
	MarkerFinish   = "=====finish run====="
)

// Summary emite el resumen de fin de batch exactamente una vez: un notice con
// el snapshot de servicios sin soporte seguido del marcador de fin.
type Summary struct {
	once    sync.Once
	tracker *tracker.Unsupported
	logger  logx.Logger
	done    chan struct{}
}

// NewSummary crea el emisor de resumen para una ejecución.
func NewSummary(t *tracker.Unsupported, logger logx.Logger) *Summary {
	return &Summary{
		tracker: t,
		logger:  logger.With("component", "summary"),
		done:    make(chan struct{}),
	}
}

// Emit registra el resumen. Solo la primera llamada tiene efecto; retorna
// true si esta llamada lo emitió.
func (s *Summary) Emit() bool {
	emitted := false
	s.once.Do(func() {
		emitted = true

		byDomain := make(map[string]int)
		for _, dc := range s.tracker.ByRegistrableDomain() {
			byDomain[dc.Domain] = dc.Count
		}

		s.logger.Notice(MarkerSummary,
			"unsupportedServices", s.tracker.Snapshot(),
			"by_domain", byDomain,
			"total", s.tracker.Total(),
		)
		s.logger.Notice(MarkerFinish)
		close(s.done)
	})
	return emitted
}

// Emitted indica si el resumen ya fue emitido.
func (s *Summary) Emitted() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}
