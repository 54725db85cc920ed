// cmd/dlcheck/main.go
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/google/uuid"

	"dlcheck/internal/adapters/input"
	"dlcheck/internal/adapters/results"
	"dlcheck/internal/core/ports"
	"dlcheck/internal/core/usecases"
	"dlcheck/internal/platform/config"
	"dlcheck/internal/platform/httpclient"
	"dlcheck/internal/platform/logx"
	"dlcheck/internal/platform/proxypool"
	"dlcheck/internal/platform/registry"
	"dlcheck/internal/platform/resilience"
	"dlcheck/internal/platform/tracker"
	"dlcheck/internal/platform/ui"
	"dlcheck/internal/providers"
)

var (
	// Rellenables con -ldflags en build
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	// 1. Config: file < env < flags
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: configuration load failed: %v\n", err)
		fmt.Fprintln(os.Stderr, "Try: dlcheck -h for help")
		return 2
	}

	switch {
	case cfg.PrintHelp:
		config.PrintHelp()
		return 0
	case cfg.PrintVersion:
		config.PrintVersion(version, commit, date)
		return 0
	case cfg.PrintConfig:
		out, err := cfg.ToJSON()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 2
		}
		fmt.Println(out)
		return 0
	}

	// 2. Loggers: console + error file + notice file
	runID := uuid.NewString()
	logger, closers, err := buildLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: log files: %v\n", err)
		return 2
	}
	defer closeAll(closers)
	logger = logger.With("run_id", runID)

	logger.Info("dlcheck starting",
		"version", version,
		"commit", commit,
		"config", cfg.Summary(),
	)

	// 3. Context and signals for clean shutdown
	ctx, cancel := rootContextWithSignals()
	defer cancel()

	// 4. Proxy pool
	pool, err := proxypool.New(proxypool.Options{
		Enabled:   cfg.Proxy.Enabled,
		Endpoints: cfg.Proxy.List,
	})
	if err != nil {
		logger.Err(err, "phase", "proxy-pool")
		return 2
	}
	if cfg.Proxy.Enabled && !pool.Active() {
		logger.Warn("proxy enabled with an empty list, connecting directly")
	}

	// 5. Provider registry, transport and request builder
	providerRegistry := registry.NewProviderRegistry(logger, providers.Catalog()...)

	httpCfg := httpclient.Config{
		Timeout:      cfg.Timeout(),
		PoolSize:     cfg.HTTP.PoolSize,
		UserAgent:    cfg.HTTP.UserAgent,
		RateLimit:    cfg.HTTP.RateLimit,
		MaxBodyBytes: cfg.HTTP.MaxBodyBytes,
	}
	client := httpclient.New(httpCfg, logger)
	defer client.Close()
	builder := httpclient.NewBuilder(httpCfg, pool, logger)

	// 6. Pipeline
	unsupported := tracker.NewUnsupported()
	pipeline := usecases.NewPipeline(usecases.PipelineOptions{
		Resolver:  providerRegistry,
		Builder:   builder,
		Transport: client,
		Tracker:   unsupported,
		Summary:   usecases.NewSummary(unsupported, logger),
		Backoff: resilience.Backoff{
			Base:       cfg.BackoffBase(),
			Multiplier: cfg.Retry.Multiplier,
			Max:        cfg.MaxBackoff(),
		},
		MaxRedirects: cfg.MaxRedirects,
		Logger:       logger,
	})

	// 7. Input source and result handler from plugin registries
	source, handler, err := buildPlugins(cfg, runID, logger)
	if err != nil {
		logger.Err(err, "phase", "plugin-build")
		return 2
	}
	defer func() {
		if err := source.Close(); err != nil {
			logger.Warn("failed to close input source", "input", source.Name(), "error", err.Error())
		}
		if err := handler.Close(); err != nil {
			logger.Warn("failed to close result handler", "handler", handler.Name(), "error", err.Error())
		}
	}()

	// 8. Run batch
	runner := usecases.NewBatchRunner(usecases.BatchRunnerOptions{
		Pipeline:  pipeline,
		Retries:   cfg.Retries,
		Delay:     cfg.Delay(),
		Workers:   cfg.Workers,
		Logger:    logger,
		Presenter: ui.NewForHandler(ui.ParseUIMode(cfg.UI), cfg.Results.Handler),
	})

	stats, err := runner.Run(ctx, source, handler)
	if err != nil {
		logger.Err(err, "phase", "run")
		return 1
	}

	logger.Info("dlcheck finished",
		"total", stats.Total,
		"live", stats.Live,
		"dead", stats.Dead,
		"unsupported", stats.Unsupported,
		"failed", stats.Failed,
		"elapsed_ms", stats.Duration.Milliseconds(),
	)
	return 0
}

// buildLogger arma el logger del proceso. Cada sink filtra por su nivel: la
// consola según console_log_level, error.log solo errores y el archivo de
// servicios no soportados solo notice (marcadores, proxies y resumen).
func buildLogger(cfg config.Config) (logx.Logger, []io.Closer, error) {
	console := logx.NewWriter(os.Stderr, logx.ParseLevel(cfg.ConsoleLogLevel), logx.FormatText)

	errorLog, errorCloser, err := logx.NewFile(logx.FileOptions{
		Path:       filepath.Join(cfg.Logs.Dir, cfg.Logs.ErrorFile),
		MaxSizeMB:  cfg.Logs.MaxSizeMB,
		MaxBackups: cfg.Logs.MaxBackups,
		Level:      logx.LevelError,
	})
	if err != nil {
		return nil, nil, err
	}

	noticeLog, noticeCloser, err := logx.NewFile(logx.FileOptions{
		Path:       filepath.Join(cfg.Logs.Dir, cfg.Logs.NoticeFile),
		MaxSizeMB:  cfg.Logs.MaxSizeMB,
		MaxBackups: cfg.Logs.MaxBackups,
		Level:      logx.LevelNotice,
		MaxLevel:   logx.LevelNotice,
	})
	if err != nil {
		_ = errorCloser.Close()
		return nil, nil, err
	}

	return logx.Multi(console, errorLog, noticeLog), []io.Closer{errorCloser, noticeCloser}, nil
}

// buildPlugins construye la fuente de entrada y el result handler elegidos.
func buildPlugins(cfg config.Config, runID string, logger logx.Logger) (ports.InputSource, ports.ResultHandler, error) {
	inputs := registry.NewInputSources(logger)
	if err := input.Register(inputs); err != nil {
		return nil, nil, err
	}
	handlers := registry.NewResultHandlers(logger)
	if err := results.Register(handlers); err != nil {
		return nil, nil, err
	}

	source, err := inputs.Build(cfg.Input.Type, ports.PluginConfig{Custom: map[string]interface{}{
		input.KeyDSN:        cfg.Input.DSN,
		input.KeyQuery:      cfg.Input.Query,
		input.KeyLinkColumn: cfg.Input.LinkColumn,
		input.KeyPath:       cfg.Input.Path,
	}}, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("input %q: %w", cfg.Input.Type, err)
	}

	custom := map[string]interface{}{
		results.KeyRunID:      runID,
		results.KeyWebhookURL: cfg.Results.WebhookURL,
	}
	if cfg.Results.Path != "" {
		custom[results.KeyPath] = cfg.Results.Path
	}
	handler, err := handlers.Build(cfg.Results.Handler, ports.PluginConfig{Custom: custom}, logger)
	if err != nil {
		_ = source.Close()
		return nil, nil, fmt.Errorf("handler %q: %w", cfg.Results.Handler, err)
	}

	return source, handler, nil
}

func closeAll(closers []io.Closer) {
	for _, c := range closers {
		_ = c.Close()
	}
}

// rootContextWithSignals crea el contexto raíz cancelado por SIGINT/SIGTERM.
// La función de cancelación también detiene el manejo de señales.
func rootContextWithSignals() (context.Context, context.CancelFunc) {
	base, baseCancel := context.WithCancel(context.Background())

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-ch:
			baseCancel()
		case <-base.Done():
		}
	}()

	cleanup := func() {
		signal.Stop(ch)
		baseCancel()
	}

	return base, cleanup
}
