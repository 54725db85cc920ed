// internal/core/domain/status.go
package domain

// LinkStatus es el estado terminal de la verificación de un enlace.
type LinkStatus string

const (
	// StatusLive el proveedor confirmó que el archivo existe
	StatusLive LinkStatus = "live"

	// StatusDead el proveedor confirmó que el archivo no existe
	StatusDead LinkStatus = "dead"

	// StatusUnsupported ningún proveedor reconoce el host
	StatusUnsupported LinkStatus = "unsupported"

	// StatusFailed fallos de transporte o interpretación agotaron los reintentos
	StatusFailed LinkStatus = "failed"

	// StatusRedirectLimit la cadena de redirects superó el máximo
	StatusRedirectLimit LinkStatus = "redirect_limit"

	// StatusInvalid la URL del registro no se puede interpretar
	StatusInvalid LinkStatus = "invalid"
)

// IsReported indica si el estado terminó con un veredicto entregado al
// result handler vía HandleResult.
func (s LinkStatus) IsReported() bool {
	return s == StatusLive || s == StatusDead
}
