// internal/platform/config/config.go
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"dlcheck/internal/platform/errors"
)

// DefaultConfigFile se lee si existe y no se indicó --config.
const DefaultConfigFile = "config.yaml"

type Config struct {
	// Runtime
	Retries         int    `yaml:"retries" json:"retries"`
	DelayMS         int    `yaml:"delay" json:"delay"`
	ConsoleLogLevel string `yaml:"console_log_level" json:"console_log_level"`
	MaxRedirects    int    `yaml:"max_redirects" json:"max_redirects"`
	Workers         int    `yaml:"workers" json:"workers"`
	UI              string `yaml:"ui" json:"ui"`

	HTTP    HTTP    `yaml:"http" json:"http"`
	Retry   Retry   `yaml:"retry" json:"retry"`
	Proxy   Proxy   `yaml:"proxy" json:"proxy"`
	Input   Input   `yaml:"input" json:"input"`
	Results Results `yaml:"results" json:"results"`
	Logs    Logs    `yaml:"logs" json:"logs"`

	// Meta (solo CLI)
	ConfigFile   string `yaml:"-" json:"config_file,omitempty"`
	PrintVersion bool   `yaml:"-" json:"-"`
	PrintHelp    bool   `yaml:"-" json:"-"`
	PrintConfig  bool   `yaml:"-" json:"-"`
}

type HTTP struct {
	TimeoutMS    int     `yaml:"timeout_ms" json:"timeout_ms"`
	PoolSize     int     `yaml:"pool_size" json:"pool_size"`
	UserAgent    string  `yaml:"user_agent" json:"user_agent,omitempty"`
	RateLimit    float64 `yaml:"rate_limit" json:"rate_limit"` // peticiones/seg, 0 = sin límite
	MaxBodyBytes int64   `yaml:"max_body_bytes" json:"max_body_bytes"`
}

type Retry struct {
	BackoffMS    int     `yaml:"backoff_ms" json:"backoff_ms"` // 0 = reintento inmediato
	Multiplier   float64 `yaml:"multiplier" json:"multiplier"`
	MaxBackoffMS int     `yaml:"max_backoff_ms" json:"max_backoff_ms"`
}

type Proxy struct {
	Enabled bool     `yaml:"enabled" json:"enabled"`
	List    []string `yaml:"list" json:"list"`
}

type Input struct {
	Type       string `yaml:"type" json:"type"` // sql_db | file
	DSN        string `yaml:"dsn" json:"dsn,omitempty"`
	Query      string `yaml:"query" json:"query,omitempty"`
	LinkColumn string `yaml:"link_column" json:"link_column"`
	Path       string `yaml:"path" json:"path,omitempty"`
}

type Results struct {
	Handler    string `yaml:"handler" json:"handler"` // console | jsonl | webhook
	Path       string `yaml:"path" json:"path,omitempty"`
	WebhookURL string `yaml:"webhook_url" json:"webhook_url,omitempty"`
}

type Logs struct {
	Dir        string `yaml:"dir" json:"dir"`
	ErrorFile  string `yaml:"error_file" json:"error_file"`
	NoticeFile string `yaml:"notice_file" json:"notice_file"`
	MaxSizeMB  int    `yaml:"max_size_mb" json:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups" json:"max_backups"`
}

// DefaultConfig retorna una configuración por defecto.
func DefaultConfig() Config {
	return Config{
		Retries:         0,
		DelayMS:         0,
		ConsoleLogLevel: "error",
		MaxRedirects:    10,
		Workers:         64,
		UI:              "progress",

		HTTP: HTTP{
			TimeoutMS:    10000,
			PoolSize:     5,
			RateLimit:    0,
			MaxBodyBytes: 2 << 20,
		},

		Retry: Retry{
			BackoffMS:    0,
			Multiplier:   2.0,
			MaxBackoffMS: 30000,
		},

		Input: Input{
			Type:       "sql_db",
			LinkColumn: "link",
		},

		Results: Results{
			Handler: "console",
		},

		Logs: Logs{
			Dir:        "logs",
			ErrorFile:  "error.log",
			NoticeFile: "unsupported_services.log",
			MaxSizeMB:  100,
			MaxBackups: 3,
		},
	}
}

// Load inicializa la configuración en capas:
// defaults -> fichero YAML -> ENV -> FLAGS (flags tienen prioridad).
func Load(args []string) (Config, error) {
	cfg := DefaultConfig()

	path, explicit := configPath(args)
	if err := loadFromFile(&cfg, path, explicit); err != nil {
		return cfg, err
	}

	loadFromEnv(&cfg)

	if err := loadFromFlags(&cfg, args); err != nil {
		return cfg, err
	}
	cfg.ConfigFile = path

	normalize(&cfg)

	return cfg, nil
}

// configPath localiza el fichero de configuración antes del parseo completo.
func configPath(args []string) (string, bool) {
	var path string
	fs := pflag.NewFlagSet("dlcheck-config", pflag.ContinueOnError)
	fs.ParseErrorsWhitelist.UnknownFlags = true
	fs.Usage = func() {}
	fs.SetOutput(devNull{})
	fs.StringVarP(&path, "config", "c", "", "")
	_ = fs.Parse(args)

	if path != "" {
		return path, true
	}
	if v := getenv("DLCHECK_CONFIG", ""); v != "" {
		return v, true
	}
	return DefaultConfigFile, false
}

// loadFromFile aplica el fichero YAML. Si no se indicó explícitamente y no
// existe, se ignora.
func loadFromFile(cfg *Config, path string, explicit bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return nil
		}
		return errors.Wrapf(errors.Mark(err, errors.ErrInvalidConfig), "read config %s", path)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return errors.Wrapf(errors.Mark(err, errors.ErrInvalidConfig), "parse config %s", path)
	}
	return nil
}

// loadFromEnv carga configuración desde variables de entorno.
func loadFromEnv(cfg *Config) {
	if v := getenv("DLCHECK_RETRIES", ""); v != "" {
		cfg.Retries = parseInt(v, cfg.Retries)
	}
	if v := getenv("DLCHECK_DELAY", ""); v != "" {
		cfg.DelayMS = parseInt(v, cfg.DelayMS)
	}
	if v := getenv("DLCHECK_CONSOLE_LOG_LEVEL", ""); v != "" {
		cfg.ConsoleLogLevel = v
	}
	if v := getenv("DLCHECK_MAX_REDIRECTS", ""); v != "" {
		cfg.MaxRedirects = parseInt(v, cfg.MaxRedirects)
	}
	if v := getenv("DLCHECK_WORKERS", ""); v != "" {
		cfg.Workers = parseInt(v, cfg.Workers)
	}
	if v := getenv("DLCHECK_UI", ""); v != "" {
		cfg.UI = v
	}

	// HTTP
	if v := getenv("DLCHECK_HTTP_TIMEOUT_MS", ""); v != "" {
		cfg.HTTP.TimeoutMS = parseInt(v, cfg.HTTP.TimeoutMS)
	}
	if v := getenv("DLCHECK_HTTP_POOL_SIZE", ""); v != "" {
		cfg.HTTP.PoolSize = parseInt(v, cfg.HTTP.PoolSize)
	}
	if v := getenv("DLCHECK_HTTP_USER_AGENT", ""); v != "" {
		cfg.HTTP.UserAgent = v
	}
	if v := getenv("DLCHECK_HTTP_RATE_LIMIT", ""); v != "" {
		cfg.HTTP.RateLimit = parseFloat(v, cfg.HTTP.RateLimit)
	}

	// Retry
	if v := getenv("DLCHECK_RETRY_BACKOFF_MS", ""); v != "" {
		cfg.Retry.BackoffMS = parseInt(v, cfg.Retry.BackoffMS)
	}

	// Proxy
	// Formato: DLCHECK_PROXY_LIST=http://u:p@10.0.0.1:8080,10.0.0.2:3128
	if v := getenv("DLCHECK_PROXY_ENABLED", ""); v != "" {
		cfg.Proxy.Enabled = parseBool(v)
	}
	if v := getenv("DLCHECK_PROXY_LIST", ""); v != "" {
		cfg.Proxy.List = splitList(v)
	}

	// Input
	if v := getenv("DLCHECK_INPUT_TYPE", ""); v != "" {
		cfg.Input.Type = v
	}
	if v := getenv("DLCHECK_INPUT_DSN", ""); v != "" {
		cfg.Input.DSN = v
	}
	if v := getenv("DLCHECK_INPUT_QUERY", ""); v != "" {
		cfg.Input.Query = v
	}
	if v := getenv("DLCHECK_INPUT_LINK_COLUMN", ""); v != "" {
		cfg.Input.LinkColumn = v
	}
	if v := getenv("DLCHECK_INPUT_PATH", ""); v != "" {
		cfg.Input.Path = v
	}

	// Results
	if v := getenv("DLCHECK_RESULTS_HANDLER", ""); v != "" {
		cfg.Results.Handler = v
	}
	if v := getenv("DLCHECK_RESULTS_PATH", ""); v != "" {
		cfg.Results.Path = v
	}
	if v := getenv("DLCHECK_RESULTS_WEBHOOK_URL", ""); v != "" {
		cfg.Results.WebhookURL = v
	}

	// Logs
	if v := getenv("DLCHECK_LOGS_DIR", ""); v != "" {
		cfg.Logs.Dir = v
	}
	if v := getenv("DLCHECK_LOGS_MAX_SIZE_MB", ""); v != "" {
		cfg.Logs.MaxSizeMB = parseInt(v, cfg.Logs.MaxSizeMB)
	}
}

// loadFromFlags parsea flags de CLI sobre los valores ya cargados.
func loadFromFlags(cfg *Config, args []string) error {
	fs := newFlagSet(cfg)
	if err := fs.Parse(args); err != nil {
		return errors.Wrapf(errors.Mark(err, errors.ErrInvalidConfig), "parse flags")
	}
	return nil
}

func newFlagSet(cfg *Config) *pflag.FlagSet {
	fs := pflag.NewFlagSet("dlcheck", pflag.ContinueOnError)
	fs.Usage = func() {}
	fs.SetOutput(devNull{})

	var ignored string
	fs.StringVarP(&ignored, "config", "c", "", "Fichero de configuración YAML")

	fs.IntVarP(&cfg.Retries, "retries", "r", cfg.Retries, "Reintentos máximos por enlace")
	fs.IntVarP(&cfg.DelayMS, "delay", "d", cfg.DelayMS, "Retardo en ms antes del primer intento de cada enlace")
	fs.StringVarP(&cfg.ConsoleLogLevel, "log-level", "l", cfg.ConsoleLogLevel, "Nivel mínimo de log en consola")
	fs.IntVar(&cfg.MaxRedirects, "max-redirects", cfg.MaxRedirects, "Profundidad máxima de redirects de proveedor")
	fs.IntVarP(&cfg.Workers, "workers", "w", cfg.Workers, "Verificaciones simultáneas máximas")
	fs.StringVarP(&cfg.UI, "ui", "u", cfg.UI, "Modo de UI: progress, raw, quiet")

	// HTTP
	fs.IntVarP(&cfg.HTTP.TimeoutMS, "timeout", "T", cfg.HTTP.TimeoutMS, "Timeout por petición en ms")
	fs.IntVar(&cfg.HTTP.PoolSize, "pool-size", cfg.HTTP.PoolSize, "Conexiones máximas por host")
	fs.Float64Var(&cfg.HTTP.RateLimit, "rate-limit", cfg.HTTP.RateLimit, "Peticiones por segundo (0 = sin límite)")

	// Proxy
	fs.BoolVarP(&cfg.Proxy.Enabled, "proxy", "p", cfg.Proxy.Enabled, "Habilitar el pool de proxies")
	fs.StringSliceVar(&cfg.Proxy.List, "proxy-list", cfg.Proxy.List, "Lista de proxies separada por comas")

	// Input
	fs.StringVarP(&cfg.Input.Type, "input", "i", cfg.Input.Type, "Fuente de enlaces: sql_db, file")
	fs.StringVar(&cfg.Input.DSN, "dsn", cfg.Input.DSN, "DSN de PostgreSQL para sql_db")
	fs.StringVar(&cfg.Input.Query, "query", cfg.Input.Query, "Consulta SQL para sql_db")
	fs.StringVar(&cfg.Input.LinkColumn, "link-column", cfg.Input.LinkColumn, "Columna que contiene la URL")
	fs.StringVarP(&cfg.Input.Path, "file", "f", cfg.Input.Path, "Fichero YAML/JSON para la fuente file")

	// Results
	fs.StringVarP(&cfg.Results.Handler, "handler", "o", cfg.Results.Handler, "Result handler: console, jsonl, webhook")
	fs.StringVar(&cfg.Results.Path, "results-path", cfg.Results.Path, "Fichero de salida para jsonl")
	fs.StringVar(&cfg.Results.WebhookURL, "webhook-url", cfg.Results.WebhookURL, "URL del webhook")

	// Logs
	fs.StringVar(&cfg.Logs.Dir, "logs-dir", cfg.Logs.Dir, "Directorio de logs persistidos")

	// Info
	fs.BoolVar(&cfg.PrintConfig, "print-config", false, "Imprimir configuración normalizada y salir")
	fs.BoolVarP(&cfg.PrintVersion, "version", "v", false, "Imprimir versión y salir")
	fs.BoolVarP(&cfg.PrintHelp, "help", "h", false, "Mostrar ayuda")

	return fs
}

func normalize(c *Config) {
	if c.Retries < 0 {
		c.Retries = 0
	}
	if c.DelayMS < 0 {
		c.DelayMS = 0
	}
	c.ConsoleLogLevel = strings.ToLower(strings.TrimSpace(c.ConsoleLogLevel))
	if c.ConsoleLogLevel == "" {
		c.ConsoleLogLevel = "error"
	}
	if c.MaxRedirects < 1 {
		c.MaxRedirects = 10
	}
	if c.Workers < 1 {
		c.Workers = 1
	}
	c.UI = strings.ToLower(strings.TrimSpace(c.UI))

	if c.HTTP.TimeoutMS <= 0 {
		c.HTTP.TimeoutMS = 10000
	}
	if c.HTTP.PoolSize < 1 {
		c.HTTP.PoolSize = 1
	}
	if c.HTTP.RateLimit < 0 {
		c.HTTP.RateLimit = 0
	}
	if c.HTTP.MaxBodyBytes <= 0 {
		c.HTTP.MaxBodyBytes = 2 << 20
	}

	if c.Retry.BackoffMS < 0 {
		c.Retry.BackoffMS = 0
	}
	if c.Retry.Multiplier < 1.0 {
		c.Retry.Multiplier = 2.0
	}

	list := c.Proxy.List[:0:0]
	for _, p := range c.Proxy.List {
		if p = strings.TrimSpace(p); p != "" {
			list = append(list, p)
		}
	}
	c.Proxy.List = list

	c.Input.Type = strings.ToLower(strings.TrimSpace(c.Input.Type))
	if c.Input.LinkColumn == "" {
		c.Input.LinkColumn = "link"
	}
	c.Results.Handler = strings.ToLower(strings.TrimSpace(c.Results.Handler))
	if c.Results.Handler == "" {
		c.Results.Handler = "console"
	}

	if c.Logs.ErrorFile == "" {
		c.Logs.ErrorFile = "error.log"
	}
	if c.Logs.NoticeFile == "" {
		c.Logs.NoticeFile = "unsupported_services.log"
	}
	if c.Logs.MaxSizeMB <= 0 {
		c.Logs.MaxSizeMB = 100
	}
	if c.Logs.MaxBackups < 0 {
		c.Logs.MaxBackups = 0
	}
}

// ToJSON serializa la configuración a JSON (útil para debugging).
func (c Config) ToJSON() (string, error) {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Delay devuelve el retardo previo al primer intento de cada enlace.
func (c Config) Delay() time.Duration {
	return time.Duration(c.DelayMS) * time.Millisecond
}

// Timeout devuelve el timeout por petición.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.HTTP.TimeoutMS) * time.Millisecond
}

// BackoffBase devuelve la espera base entre reintentos.
func (c Config) BackoffBase() time.Duration {
	return time.Duration(c.Retry.BackoffMS) * time.Millisecond
}

// MaxBackoff devuelve el tope de espera entre reintentos.
func (c Config) MaxBackoff() time.Duration {
	return time.Duration(c.Retry.MaxBackoffMS) * time.Millisecond
}

// Summary describe la configuración en una línea para logs.
func (c Config) Summary() string {
	return fmt.Sprintf("input=%s handler=%s retries=%d delay=%dms workers=%d proxies=%d",
		c.Input.Type, c.Results.Handler, c.Retries, c.DelayMS, c.Workers, len(c.Proxy.List))
}

// Helpers

type devNull struct{}

func (devNull) Write(p []byte) (int, error) { return len(p), nil }

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok {
		return v
	}
	return def
}

func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "t", "true", "y", "yes", "on":
		return true
	default:
		return false
	}
}

func parseInt(v string, def int) int {
	i, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return i
}

func parseFloat(v string, def float64) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return def
	}
	return f
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
