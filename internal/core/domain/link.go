// internal/core/domain/link.go
package domain

import (
	"fmt"
	"sync"
)

// Claves de procedencia que el pipeline agrega al LinkRecord antes de
// entregarlo al result handler.
const (
	AttrFinalURL   = "final_url"
	AttrProxy      = "proxy"
	AttrRedirected = "redirected"
	AttrAttempts   = "attempts"
	AttrProvider   = "provider"
)

// LinkRecord representa un candidato de descarga tal como lo entrega la fuente
// de entrada. Los atributos son opacos para el pipeline salvo el campo que
// contiene la URL (LinkField) y las claves de procedencia.
//
// Un LinkRecord se crea en la fuente de entrada, se enriquece en el pipeline y
// lo consume una única vez el result handler.
type LinkRecord struct {
	mu sync.RWMutex

	// LinkField nombre del atributo que contiene la URL
	LinkField string

	attrs map[string]any
}

// NewLinkRecord crea un LinkRecord copiando los atributos recibidos.
func NewLinkRecord(attrs map[string]any, linkField string) *LinkRecord {
	copied := make(map[string]any, len(attrs)+4)
	for k, v := range attrs {
		copied[k] = v
	}
	return &LinkRecord{
		LinkField: linkField,
		attrs:     copied,
	}
}

// URL retorna el valor del campo de enlace como string.
func (r *LinkRecord) URL() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	v, ok := r.attrs[r.LinkField]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Set asigna un atributo (usado para procedencia: proxy, redirected, ...).
func (r *LinkRecord) Set(key string, value any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attrs[key] = value
}

// Get retorna un atributo y si existe.
func (r *LinkRecord) Get(key string) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.attrs[key]
	return v, ok
}

// Redirected indica si el pipeline siguió al menos un redirect de proveedor.
func (r *LinkRecord) Redirected() bool {
	v, ok := r.Get(AttrRedirected)
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// Snapshot retorna una copia de los atributos, segura para serializar.
func (r *LinkRecord) Snapshot() map[string]any {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]any, len(r.attrs))
	for k, v := range r.attrs {
		out[k] = v
	}
	return out
}
