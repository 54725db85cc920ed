// internal/core/ports/plugin.go
package ports

// PluginKind clasifica los plugins registrables.
type PluginKind string

const (
	PluginKindProvider PluginKind = "provider"
	PluginKindResult   PluginKind = "result_handler"
	PluginKindInput    PluginKind = "input_source"
)

// PluginConfig contiene la configuración específica de un plugin.
type PluginConfig struct {
	// Custom configuración específica (dsn, path, webhook_url, ...)
	Custom map[string]interface{}
}

// PluginMetadata contiene metadatos sobre un plugin.
type PluginMetadata struct {
	Name        string
	Description string
	Version     string
	Kind        PluginKind
}
