// internal/platform/ui/symbols.go
package ui

import "github.com/pterm/pterm"

// Status representa el estado visual de un enlace
type Status int

const (
	StatusPending Status = iota
	StatusSuccess
	StatusWarning
	StatusError
	StatusSkipped
)

// StatusFor traduce el estado terminal de un enlace a su estado visual.
func StatusFor(linkStatus string) Status {
	switch linkStatus {
	case "live":
		return StatusSuccess
	case "dead":
		return StatusError
	case "unsupported", "invalid":
		return StatusSkipped
	case "failed", "redirect_limit":
		return StatusWarning
	default:
		return StatusPending
	}
}

// Symbol retorna el símbolo Unicode para cada estado
func (s Status) Symbol() string {
	switch s {
	case StatusPending:
		return "⏸"
	case StatusSuccess:
		return "✓"
	case StatusWarning:
		return "⚠"
	case StatusError:
		return "✗"
	case StatusSkipped:
		return "⊘"
	default:
		return "?"
	}
}

// Color retorna el color pterm para cada estado
func (s Status) Color() pterm.Color {
	switch s {
	case StatusSuccess:
		return pterm.FgGreen
	case StatusWarning:
		return pterm.FgYellow
	case StatusError:
		return pterm.FgRed
	default:
		return pterm.FgGray
	}
}

// Style retorna un pterm.Style configurado para el estado
func (s Status) Style() *pterm.Style {
	return pterm.NewStyle(s.Color())
}

// Icons globales para diferentes elementos de la UI
var (
	IconInput    = "📥"
	IconHandler  = "📤"
	IconLinks    = "🔗"
	IconStats    = "📊"
	IconTime     = "⏱"
	IconProxy    = "🛡"
	IconWorkers  = "⚙️"
	IconSuccess  = "✓"
	IconError    = "✗"
	IconProvider = "🔌"
)

// Separadores y bordes
var (
	SeparatorHeavy = "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━"
	SeparatorLight = "────────────────────────────────────────────"
)
