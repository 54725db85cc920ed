// internal/core/domain/request.go
package domain

import (
	"net/http"
	"time"
)

// RequestSpec es la descripción concreta de una petición de verificación,
// producida por el request builder.
type RequestSpec struct {
	Method string
	URL    string
	Header http.Header
	Body   string

	// Proxy endpoint asignado ("" = sin proxy)
	Proxy string

	// Tunnel false desactiva CONNECT cuando el destino es HTTP plano
	Tunnel bool

	// FollowRedirects siempre false: los redirects los decide el proveedor
	FollowRedirects bool

	Timeout time.Duration
}

// Response es la respuesta completa (status, headers y body) que recibe la
// función de verificación del proveedor. Un status no-2xx no es un error.
type Response struct {
	// URL solicitada
	URL        string
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Location retorna el header Location (útil para redirects HTTP suprimidos).
func (r *Response) Location() string {
	if r == nil || r.Header == nil {
		return ""
	}
	return r.Header.Get("Location")
}
