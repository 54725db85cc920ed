// internal/core/domain/provider.go
package domain

import (
	"net/http"
	"regexp"
)

// Provider es el contrato inmutable que aporta cada plugin de servicio
// (service supporter). El pipeline solo lo lee.
type Provider struct {
	// Name identificador del proveedor (ej: "dropbox", "mediafire")
	Name string

	// Hosts nombres de host exactos que el proveedor sabe verificar
	Hosts []string

	// Patterns expresiones opcionales evaluadas contra el hostname, en orden
	Patterns []*regexp.Regexp

	// Request define cómo construir la petición: plantilla por defecto o
	// constructor personalizado.
	Request RequestStrategy

	// Verify interpreta la respuesta cruda y decide el veredicto
	Verify VerifyFunc
}

// VerifyFunc inspecciona status/headers/body según reglas del proveedor.
// Retorna un veredicto terminal (vivo/muerto) o una señal de redirect.
type VerifyFunc func(resp *Response) (Verdict, error)

// RequestTemplate describe la forma de la petición que define un proveedor.
type RequestTemplate struct {
	Method string
	Header http.Header
	Body   string
}

// RequestStrategy es una unión etiquetada de dos variantes:
// DefaultRequest o CustomRequest.
type RequestStrategy interface {
	isRequestStrategy()
}

// DefaultRequest usa una plantilla fija para todas las URLs del proveedor.
type DefaultRequest struct {
	Template RequestTemplate
}

// CustomRequest construye la plantilla a partir de la URL.
type CustomRequest struct {
	Build func(url string) (RequestTemplate, error)
}

func (DefaultRequest) isRequestStrategy() {}
func (CustomRequest) isRequestStrategy()  {}

// HasHostMatching indica si el proveedor declara alguna forma de match.
func (p *Provider) HasHostMatching() bool {
	return len(p.Hosts) > 0 || len(p.Patterns) > 0
}
