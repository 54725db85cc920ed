// internal/providers/catalog.go
package providers

import "dlcheck/internal/core/domain"

// Catalog retorna los proveedores incluidos en orden de registro. El orden
// importa: los patrones se evalúan en este orden.
func Catalog() []*domain.Provider {
	return []*domain.Provider{
		Dropbox(),
		MediaFire(),
		GoogleDrive(),
		Box(),
	}
}

// Names retorna los nombres del catálogo.
func Names() []string {
	catalog := Catalog()
	names := make([]string, 0, len(catalog))
	for _, p := range catalog {
		names = append(names, p.Name)
	}
	return names
}
