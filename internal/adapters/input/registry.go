// internal/adapters/input/registry.go
package input

import (
	"dlcheck/internal/core/ports"
	"dlcheck/internal/platform/logx"
	"dlcheck/internal/platform/registry"
)

// Claves de configuración reconocidas por las factories.
const (
	KeyDSN        = "dsn"
	KeyQuery      = "query"
	KeyLinkColumn = "link_column"
	KeyPath       = "path"
)

// Register registra las fuentes de entrada incluidas.
func Register(r *registry.InputSources) error {
	if err := r.Register("sql_db", sqlFactory, ports.PluginMetadata{
		Description: "Loads download links from a PostgreSQL query",
		Version:     "1.0.0",
	}); err != nil {
		return err
	}

	return r.Register("file", fileFactory, ports.PluginMetadata{
		Description: "Loads download links from a YAML or JSON file",
		Version:     "1.0.0",
	})
}

func sqlFactory(cfg ports.PluginConfig, logger logx.Logger) (ports.InputSource, error) {
	dsn, err := registry.RequireString(cfg, KeyDSN)
	if err != nil {
		return nil, err
	}
	return NewSQLSource(SQLOptions{
		DSN:        dsn,
		Query:      registry.String(cfg, KeyQuery, DefaultQuery),
		LinkColumn: registry.String(cfg, KeyLinkColumn, "link"),
		Logger:     logger,
	})
}

func fileFactory(cfg ports.PluginConfig, logger logx.Logger) (ports.InputSource, error) {
	path, err := registry.RequireString(cfg, KeyPath)
	if err != nil {
		return nil, err
	}
	return NewFileSource(path, registry.String(cfg, KeyLinkColumn, "link"), logger)
}
