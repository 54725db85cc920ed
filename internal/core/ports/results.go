// internal/core/ports/results.go
package ports

import (
	"context"

	"dlcheck/internal/core/domain"
)

// ResultHandler es el port por el que se publica el resultado final de cada
// enlace (consola, archivo, webhook de chat, etc.).
//
// Los handlers no deben fallar ante condiciones esperadas; un error
// retornado se registra por enlace sin abortar el batch.
type ResultHandler interface {
	// Name retorna el nombre del handler (ej: "console", "webhook")
	Name() string

	// HandleResult publica un veredicto terminal (vivo o muerto)
	HandleResult(ctx context.Context, rec *domain.LinkRecord, outcome domain.Outcome) error

	// HandleError publica un fallo no verificable con un mensaje fijo
	// (ej: servicio sin soporte)
	HandleError(ctx context.Context, message string, rec *domain.LinkRecord) error

	// Close libera recursos (archivos, conexiones)
	Close() error
}
