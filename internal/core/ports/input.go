// internal/core/ports/input.go
package ports

import (
	"context"

	"dlcheck/internal/core/domain"
)

// InputSource es el port que entrega el batch de enlaces a verificar.
type InputSource interface {
	// Name retorna el nombre de la fuente (ej: "sql_db", "file")
	Name() string

	// GetDownloadLinks retorna los registros en orden y el nombre del atributo
	// que contiene la URL. Un error aborta el batch completo.
	GetDownloadLinks(ctx context.Context) (linkField string, records []*domain.LinkRecord, err error)

	// Close libera recursos (pool de conexiones, archivos)
	Close() error
}
