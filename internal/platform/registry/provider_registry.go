// internal/platform/registry/provider_registry.go
package registry

import (
	"net/url"
	"strings"

	"dlcheck/internal/core/domain"
	"dlcheck/internal/platform/logx"
	"dlcheck/internal/platform/validator"
)

// ProviderRegistry resuelve el proveedor capaz de verificar una URL.
// Se construye una sola vez al arrancar y no se modifica después, por lo que
// Resolve es seguro para lectura concurrente sin locks.
type ProviderRegistry struct {
	byHost  map[string]*domain.Provider
	ordered []*domain.Provider
	logger  logx.Logger
}

// NewProviderRegistry construye el registry a partir de un catálogo explícito.
// Los proveedores inválidos se registran en el log y se excluyen.
func NewProviderRegistry(logger logx.Logger, providers ...*domain.Provider) *ProviderRegistry {
	r := &ProviderRegistry{
		byHost:  make(map[string]*domain.Provider),
		ordered: make([]*domain.Provider, 0, len(providers)),
		logger:  logger.With("component", "provider-registry"),
	}

	seen := make(map[string]bool, len(providers))
	for _, p := range providers {
		if err := validator.ValidateProvider(p); err != nil {
			r.logger.Err(err)
			continue
		}
		if seen[p.Name] {
			r.logger.Warn("duplicate provider name, skipping", "provider", p.Name)
			continue
		}
		seen[p.Name] = true

		for _, h := range p.Hosts {
			host := validator.NormalizeHost(h)
			if owner, taken := r.byHost[host]; taken {
				r.logger.Warn("host already claimed, keeping first provider",
					"host", host,
					"owner", owner.Name,
					"provider", p.Name,
				)
				continue
			}
			r.byHost[host] = p
		}

		r.ordered = append(r.ordered, p)
		r.logger.Debug("provider registered",
			"provider", p.Name,
			"hosts", len(p.Hosts),
			"patterns", len(p.Patterns),
		)
	}

	return r
}

// Resolve retorna el proveedor para la URL. Primero busca coincidencia exacta
// de host entre todos los proveedores; si no hay, prueba los patrones de cada
// proveedor en orden de registro y retorna el primero que coincida.
func (r *ProviderRegistry) Resolve(rawURL string) (*domain.Provider, bool) {
	host := HostOf(rawURL)
	if host == "" {
		return nil, false
	}

	if p, ok := r.byHost[host]; ok {
		return p, true
	}

	for _, p := range r.ordered {
		for _, re := range p.Patterns {
			if re.MatchString(host) {
				return p, true
			}
		}
	}

	return nil, false
}

// Len retorna la cantidad de proveedores válidos registrados.
func (r *ProviderRegistry) Len() int {
	return len(r.ordered)
}

// Names retorna los nombres de los proveedores en orden de registro.
func (r *ProviderRegistry) Names() []string {
	names := make([]string, 0, len(r.ordered))
	for _, p := range r.ordered {
		names = append(names, p.Name)
	}
	return names
}

// HostOf extrae el hostname normalizado de una URL absoluta. Los enlaces
// sin esquema no tienen host: la misma URL es la que se pide después.
func HostOf(rawURL string) string {
	return validator.Hostname(rawURL)
}
