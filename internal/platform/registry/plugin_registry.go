// internal/platform/registry/plugin_registry.go
package registry

import (
	"fmt"
	"sort"
	"sync"

	"dlcheck/internal/core/ports"
	"dlcheck/internal/platform/logx"
)

// Factory crea una instancia de plugin a partir de su configuración.
type Factory[T any] func(cfg ports.PluginConfig, logger logx.Logger) (T, error)

// PluginRegistry gestiona el registro y construcción de plugins de un tipo
// (result handlers o fuentes de entrada). Implementa el patrón
// Registry + Factory con registro explícito desde main.
type PluginRegistry[T any] struct {
	mu        sync.RWMutex
	kind      ports.PluginKind
	factories map[string]Factory[T]
	metadata  map[string]ports.PluginMetadata
	logger    logx.Logger
}

// NewPluginRegistry crea un nuevo registry para el tipo de plugin indicado.
func NewPluginRegistry[T any](kind ports.PluginKind, logger logx.Logger) *PluginRegistry[T] {
	return &PluginRegistry[T]{
		kind:      kind,
		factories: make(map[string]Factory[T]),
		metadata:  make(map[string]ports.PluginMetadata),
		logger:    logger.With("component", string(kind)+"-registry"),
	}
}

// Register registra una factory con su metadata.
func (r *PluginRegistry[T]) Register(name string, factory Factory[T], meta ports.PluginMetadata) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if name == "" {
		return fmt.Errorf("%s name cannot be empty", r.kind)
	}

	if factory == nil {
		return fmt.Errorf("factory cannot be nil for %s %s", r.kind, name)
	}

	if _, exists := r.factories[name]; exists {
		return fmt.Errorf("%s %s is already registered", r.kind, name)
	}

	if meta.Name == "" {
		meta.Name = name
	}
	meta.Kind = r.kind

	r.factories[name] = factory
	r.metadata[name] = meta
	r.logger.Debug("plugin registered", "name", name, "kind", r.kind)

	return nil
}

// Build construye el plugin registrado bajo name.
func (r *PluginRegistry[T]) Build(name string, cfg ports.PluginConfig, logger logx.Logger) (T, error) {
	r.mu.RLock()
	factory, exists := r.factories[name]
	r.mu.RUnlock()

	var zero T
	if !exists {
		return zero, fmt.Errorf("%s %s not registered (available: %v)", r.kind, name, r.List())
	}
	if logger == nil {
		return zero, fmt.Errorf("logger cannot be nil")
	}

	plugin, err := factory(cfg, logger)
	if err != nil {
		return zero, fmt.Errorf("failed to build %s %s: %w", r.kind, name, err)
	}

	r.logger.Debug("plugin built", "name", name, "kind", r.kind)
	return plugin, nil
}

// List retorna los nombres de todos los plugins registrados.
func (r *PluginRegistry[T]) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetMetadata retorna el metadata de un plugin.
func (r *PluginRegistry[T]) GetMetadata(name string) (ports.PluginMetadata, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	meta, exists := r.metadata[name]
	return meta, exists
}

// GetAllMetadata retorna el metadata de todos los plugins registrados.
func (r *PluginRegistry[T]) GetAllMetadata() map[string]ports.PluginMetadata {
	r.mu.RLock()
	defer r.mu.RUnlock()

	// Crear copia para evitar race conditions
	result := make(map[string]ports.PluginMetadata, len(r.metadata))
	for name, meta := range r.metadata {
		result[name] = meta
	}

	return result
}

// IsRegistered verifica si un plugin está registrado.
func (r *PluginRegistry[T]) IsRegistered(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.factories[name]
	return exists
}

// ResultHandlers es el registry de result handlers.
type ResultHandlers = PluginRegistry[ports.ResultHandler]

// InputSources es el registry de fuentes de entrada.
type InputSources = PluginRegistry[ports.InputSource]

// NewResultHandlers crea un registry vacío de result handlers.
func NewResultHandlers(logger logx.Logger) *ResultHandlers {
	return NewPluginRegistry[ports.ResultHandler](ports.PluginKindResult, logger)
}

// NewInputSources crea un registry vacío de fuentes de entrada.
func NewInputSources(logger logx.Logger) *InputSources {
	return NewPluginRegistry[ports.InputSource](ports.PluginKindInput, logger)
}
