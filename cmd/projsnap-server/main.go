package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/yndnr/projsnap/internal/core/service"
	"github.com/yndnr/projsnap/internal/infra/buildinfo"
	"github.com/yndnr/projsnap/internal/infra/confloader"
	"github.com/yndnr/projsnap/internal/infra/shutdown"
	"github.com/yndnr/projsnap/internal/server/config"
	"github.com/yndnr/projsnap/internal/server/httpserver"
	"github.com/yndnr/projsnap/internal/storage/snapshot"
	"github.com/yndnr/projsnap/internal/telemetry/logger"
	"github.com/yndnr/projsnap/internal/telemetry/metric"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configFile  = flag.String("config", "", "Path to configuration file")
		showVersion = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("projsnap-server %s\n", buildinfo.String())
		return nil
	}

	cfg, loader, err := loadConfig(*configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := initLogger(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	slogLogger := log.Slog()

	info := buildinfo.Get()
	log.Info("starting projsnap-server",
		"version", info.Version,
		"commit", info.Commit,
		"config", *configFile,
		"env_overrides", loader.KeysFrom(confloader.SourceEnv),
		"data_dir", cfg.Storage.DataDir)

	store, err := initStore(cfg, slogLogger)
	if err != nil {
		return err
	}

	metrics := metric.NewRegistry()
	if err := metrics.Register(metric.NewStoreCollector(store)); err != nil {
		return fmt.Errorf("register store collector: %w", err)
	}

	svc := service.NewSnapshotService(store, metrics)

	router := httpserver.NewRouter(&httpserver.RouterConfig{
		SnapshotService: svc,
		Metrics:         metrics,
		Logger:          slogLogger,
		RateLimit:       cfg.Server.HTTP.RateLimit,
		RateBurst:       cfg.Server.HTTP.RateBurst,
		EnableAudit:     cfg.Server.HTTP.Audit,
	})
	httpServer := httpserver.New(cfg.Server.HTTP.Addr, router)

	ctx, cancel := context.WithCancelCause(context.Background())
	defer cancel(nil)

	// Hooks run in reverse order of registration.
	shutdownHandler := shutdown.NewHandler(cfg.Server.ShutdownTimeout, slogLogger)

	if cfg.Watch.Enabled {
		auto, err := startAutoSnapshots(ctx, cfg, svc, store, metrics, slogLogger)
		if err != nil {
			return fmt.Errorf("start auto-snapshots: %w", err)
		}
		shutdownHandler.OnShutdown("auto-snapshot", func(context.Context) error {
			return auto.Stop()
		})
	}

	if *configFile != "" {
		watcher, err := watchConfig(*configFile, slogLogger)
		if err != nil {
			// Reload is a convenience; the server runs without it.
			log.Warn("config watcher disabled", "error", err)
		} else {
			shutdownHandler.OnShutdown("config-watcher", func(context.Context) error {
				return watcher.Stop()
			})
		}
	}

	shutdownHandler.OnShutdown("http", httpServer.Shutdown)

	go func() {
		log.Info("HTTP server listening", "addr", cfg.Server.HTTP.Addr)
		if err := httpServer.ListenAndServe(); err != nil {
			log.Error("HTTP server error", "error", err)
			cancel(err)
		}
	}()

	log.Info("server started, press Ctrl+C to stop", "snapshots", store.Len())
	if err := shutdownHandler.Wait(ctx); err != nil {
		log.Error("shutdown error", "error", err)
		return err
	}

	if cause := context.Cause(ctx); cause != nil && !errors.Is(cause, context.Canceled) {
		return cause
	}

	log.Info("server stopped gracefully")
	return nil
}

// loadConfig loads defaults, the optional file and PROJSNAP_ environment
// variables, then expands paths and validates the result. The loader is
// returned so callers can report where values came from.
func loadConfig(configFile string) (*config.ServerConfig, *confloader.Loader, error) {
	opts := []confloader.Option{confloader.WithDefaults(config.DefaultMap())}
	if configFile != "" {
		opts = append(opts, confloader.WithConfigFile(configFile))
	}

	var cfg config.ServerConfig
	loader := confloader.NewLoader(opts...)
	if err := loader.Load(&cfg); err != nil {
		return nil, nil, err
	}
	if err := config.ResolvePaths(&cfg); err != nil {
		return nil, nil, fmt.Errorf("resolve paths: %w", err)
	}
	if err := config.Verify(&cfg); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, loader, nil
}

// initLogger builds the process logger and installs it as the default for
// both the logger package and log/slog.
func initLogger(cfg *config.ServerConfig) (logger.Logger, error) {
	log, err := logger.New(logger.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Output:  os.Stdout,
		Service: "projsnap-server",
		Version: buildinfo.Version,
	})
	if err != nil {
		return nil, err
	}

	logger.SetDefault(log)
	return log, nil
}

// initStore opens the snapshot store under the data directory.
func initStore(cfg *config.ServerConfig, log *slog.Logger) (*snapshot.Store, error) {
	storeCfg := snapshot.DefaultConfig(cfg.Storage.SnapshotDir())
	storeCfg.Exclude = cfg.Snapshot.Exclude
	storeCfg.SkipCorrupt = cfg.Snapshot.SkipCorrupt
	storeCfg.Logger = log

	store, err := snapshot.Open(storeCfg)
	if err != nil {
		return nil, fmt.Errorf("open snapshot store: %w", err)
	}
	return store, nil
}

// startAutoSnapshots watches the configured project root. The store
// directory is ignored so writing a record never triggers another capture.
func startAutoSnapshots(
	ctx context.Context,
	cfg *config.ServerConfig,
	svc *service.SnapshotService,
	store *snapshot.Store,
	metrics *metric.Registry,
	log *slog.Logger,
) (*service.AutoSnapshotter, error) {
	excluder, err := snapshot.NewExcluder(cfg.Snapshot.Exclude)
	if err != nil {
		return nil, err
	}

	auto, err := service.NewAutoSnapshotter(svc, cfg.Watch.Root,
		service.WithDebounce(cfg.Watch.Debounce),
		service.WithKeep(cfg.Watch.Keep),
		service.WithFilter(excluder),
		service.WithIgnoredPaths(store.Dir(), cfg.Storage.DataDir),
		service.WithAutoMetrics(metrics),
		service.WithAutoLogger(log),
	)
	if err != nil {
		return nil, err
	}
	if err := auto.Start(ctx); err != nil {
		return nil, err
	}
	return auto, nil
}

// watchConfig reloads the config file on change and applies log.level.
// Other settings take effect on restart.
func watchConfig(path string, log *slog.Logger) (*confloader.Watcher, error) {
	watcher, err := confloader.NewWatcher(confloader.WithWatcherLogger(log))
	if err != nil {
		return nil, err
	}
	if err := watcher.Watch(path); err != nil {
		watcher.Stop()
		return nil, err
	}

	watcher.OnChange(func(changed string) {
		cfg, _, err := loadConfig(changed)
		if err != nil {
			log.Warn("config reload rejected", "path", changed, "error", err)
			return
		}
		if cfg.Log.Level == logger.GetLevel() {
			return
		}
		if err := logger.SetLevel(cfg.Log.Level); err != nil {
			log.Warn("config reload rejected", "path", changed, "error", err)
			return
		}
		log.Info("log level changed", "level", cfg.Log.Level)
	})

	watcher.Start()
	return watcher, nil
}
