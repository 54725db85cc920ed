// internal/core/domain/verdict.go
package domain

// VerdictKind clasifica la decisión del proveedor.
type VerdictKind int

const (
	// VerdictDead el archivo ya no está disponible
	VerdictDead VerdictKind = iota

	// VerdictLive el archivo existe
	VerdictLive

	// VerdictRedirect el proveedor apunta a otra URL (página intermedia)
	VerdictRedirect
)

// String retorna la representación string del veredicto.
func (k VerdictKind) String() string {
	switch k {
	case VerdictLive:
		return "live"
	case VerdictDead:
		return "dead"
	case VerdictRedirect:
		return "redirect"
	default:
		return "unknown"
	}
}

// Verdict es el resultado de interpretar una respuesta.
type Verdict struct {
	Kind        VerdictKind
	RedirectURL string
	Reason      string
}

// Live crea un veredicto terminal positivo.
func Live(reason string) Verdict {
	return Verdict{Kind: VerdictLive, Reason: reason}
}

// Dead crea un veredicto terminal negativo.
func Dead(reason string) Verdict {
	return Verdict{Kind: VerdictDead, Reason: reason}
}

// RedirectTo crea una señal de redirect mediado por el proveedor.
func RedirectTo(url string) Verdict {
	return Verdict{Kind: VerdictRedirect, RedirectURL: url}
}

// IsTerminal indica si el veredicto termina la cadena de intentos.
func (v Verdict) IsTerminal() bool {
	return v.Kind != VerdictRedirect
}

// Outcome es lo que recibe el result handler para un enlace.
type Outcome struct {
	Live       bool
	Reason     string
	StatusCode int
	Provider   string
}
