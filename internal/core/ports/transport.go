// internal/core/ports/transport.go
package ports

import (
	"context"

	"dlcheck/internal/core/domain"
)

// Transport envía una petición ya construida. No reintenta ni sigue
// redirects HTTP: esas decisiones pertenecen al pipeline.
type Transport interface {
	Do(ctx context.Context, spec domain.RequestSpec) (*domain.Response, error)
}

// RequestBuilder produce la descripción concreta de la petición para un
// proveedor y una URL, incluida la asignación de proxy, que queda anotada en
// el LinkRecord.
type RequestBuilder interface {
	Build(p *domain.Provider, url string, rec *domain.LinkRecord) (domain.RequestSpec, error)
}
