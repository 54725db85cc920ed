// internal/platform/ui/presenter.go
package ui

import (
	"time"
)

// UIMode define el modo de visualización
type UIMode string

const (
	UIModeProgress UIMode = "progress" // Barra de progreso pterm (default)
	UIModeRaw      UIMode = "raw"      // Una línea por enlace, sin colores
	UIModeQuiet    UIMode = "quiet"    // Sin UI visual
)

// ParseUIMode convierte un string a UIMode; valores desconocidos usan progress.
func ParseUIMode(s string) UIMode {
	switch UIMode(s) {
	case UIModeRaw, UIModeQuiet:
		return UIMode(s)
	default:
		return UIModeProgress
	}
}

// Presenter presenta el progreso de un batch de verificación.
type Presenter interface {
	// Start inicia la presentación con información del batch
	Start(info BatchInfo)

	// LinkDone notifica la resolución terminal de un enlace
	LinkDone(ev LinkEvent)

	// Info muestra un mensaje informativo
	Info(msg string)

	// Warning muestra una advertencia
	Warning(msg string)

	// Error muestra un error
	Error(msg string)

	// Finish finaliza la presentación con estadísticas finales
	Finish(stats BatchStats)

	// Close limpia recursos del presenter
	Close() error
}

// BatchInfo contiene información inicial del batch
type BatchInfo struct {
	Input     string
	Handler   string
	Links     int
	Workers   int
	Retries   int
	Timeout   time.Duration
	Providers []string
	Proxies   int
}

// LinkEvent describe cómo terminó un enlace
type LinkEvent struct {
	URL       string
	Status    string
	Provider  string
	Tries     int
	Redirects int
	Duration  time.Duration
}

// BatchStats contiene estadísticas finales del batch
type BatchStats struct {
	TotalDuration    time.Duration
	Total            int
	Live             int
	Dead             int
	Unsupported      int
	UnsupportedHosts map[string]int
	Failed           int
	Other            int
	SinkErrors       int
}

// New crea el presenter para el modo indicado.
func New(mode UIMode) Presenter {
	switch mode {
	case UIModeQuiet:
		return NewNoopPresenter()
	case UIModeRaw:
		return NewRawPresenter(nil)
	default:
		return NewPTermPresenter()
	}
}

// NewForHandler crea el presenter teniendo en cuenta el result handler: si
// el handler ya imprime cada enlace en la consola, la barra de progreso no
// repite esas líneas.
func NewForHandler(mode UIMode, handler string) Presenter {
	if mode == UIModeProgress && handler == "console" {
		return NewPTermPresenter().WithoutLinkLines()
	}
	return New(mode)
}
