package main

import (
	"context"
	"crypto/tls"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/rak-realm/ghostlink/internal/core/service"
	"github.com/rak-realm/ghostlink/internal/credstore"
	"github.com/rak-realm/ghostlink/internal/infra/buildinfo"
	"github.com/rak-realm/ghostlink/internal/infra/confloader"
	"github.com/rak-realm/ghostlink/internal/infra/shutdown"
	"github.com/rak-realm/ghostlink/internal/infra/tlsroots"
	"github.com/rak-realm/ghostlink/internal/protocol/relay"
	"github.com/rak-realm/ghostlink/internal/server/config"
	"github.com/rak-realm/ghostlink/internal/server/httpserver"
	"github.com/rak-realm/ghostlink/internal/telemetry/logger"
	"github.com/rak-realm/ghostlink/internal/telemetry/metric"
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
		fmt.Printf("ghost-server %s\n", buildinfo.Get().String())
		return nil
	}

	cfg, err := loadConfig(*configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stdout,
	})

	log.Info("starting ghost-server",
		"version", buildinfo.Version,
		"config", *configFile)

	// Hot log-level reload on config file changes.
	if *configFile != "" {
		watcher, err := startConfigWatcher(*configFile, log)
		if err != nil {
			log.Warn("config watcher disabled", "error", err)
		} else {
			defer watcher.Stop()
		}
	}

	// Credential stores.
	storeOpts := []credstore.Option{credstore.WithLogger(log)}
	if cfg.Security.EncryptionPassphrase != "" {
		storeOpts = append(storeOpts, credstore.WithEncryption(cfg.Security.EncryptionPassphrase))
	}
	stores, err := credstore.NewManager(cfg.Sessions.Dir, storeOpts...)
	if err != nil {
		return fmt.Errorf("init credential stores: %w", err)
	}
	log.Info("credential stores ready",
		"dir", stores.Root(),
		"encrypted", stores.Encrypted())

	// Relay dialer, with a custom CA bundle when the gateway uses one.
	dialer := &relay.Dialer{
		URL:    cfg.Protocol.RelayURL,
		Logger: log,
	}
	if cfg.Protocol.TLSCAFile != "" {
		pool := tlsroots.NewEmptyPool()
		if err := pool.AddCertFile(cfg.Protocol.TLSCAFile); err != nil {
			return fmt.Errorf("load relay CA bundle: %w", err)
		}
		dialer.HTTPClient = &http.Client{
			Transport: &http.Transport{TLSClientConfig: pool.TLSConfig()},
		}
	}

	metrics := metric.New()

	links := service.NewLinkService(service.Config{
		Stores:  stores,
		Dialer:  dialer,
		Metrics: metrics,
		Logger:  log,
		Timings: service.Timings{
			NotifyDelay:         cfg.Sessions.NotifyDelay,
			PairingCloseDelay:   cfg.Sessions.PairingCloseDelay,
			PairingCleanupDelay: cfg.Sessions.PairingCleanupDelay,
			QRDwell:             cfg.Sessions.QRDwell,
			QRCloseGrace:        cfg.Sessions.QRCloseGrace,
			QRWindow:            cfg.Sessions.QRWindow,
			StaleAge:            cfg.Sessions.StaleAge,
		},
	})

	sweeper := service.NewSweeper(links, cfg.Sessions.SweepInterval, log)
	sweeper.Start()

	router := httpserver.NewRouter(&httpserver.RouterConfig{
		Links:         links,
		Metrics:       metrics,
		Logger:        log,
		AdminToken:    cfg.Security.AdminToken,
		RatePerSecond: cfg.Limits.RatePerSecond,
		RateBurst:     cfg.Limits.RateBurst,
		CORSOrigin:    cfg.Limits.CORSOrigin,
	})
	httpServer := httpserver.New(cfg.Server.HTTP.Addr, router)

	// Hot-reloading server certificate when TLS is configured.
	var certWatcher *tlsroots.Watcher
	if cfg.Server.HTTP.TLSCertFile != "" && cfg.Server.HTTP.TLSKeyFile != "" {
		certWatcher, err = tlsroots.NewWatcher(
			cfg.Server.HTTP.TLSCertFile,
			cfg.Server.HTTP.TLSKeyFile,
			tlsroots.WithLogger(log),
		)
		if err != nil {
			return fmt.Errorf("init certificate watcher: %w", err)
		}
		certWatcher.StartAsync()
		httpServer.SetTLSConfig(&tls.Config{
			MinVersion:     tls.VersionTLS12,
			GetCertificate: certWatcher.GetCertificate,
		})
	}

	shutdownHandler := shutdown.NewHandler(30 * time.Second)

	// Hooks run in reverse registration order: server first, then the
	// sweeper, then the sessions themselves.
	shutdownHandler.OnShutdown(func(ctx context.Context) error {
		log.Info("closing link sessions")
		return links.Close()
	})
	shutdownHandler.OnShutdown(func(ctx context.Context) error {
		log.Info("stopping sweeper")
		sweeper.Stop()
		return nil
	})
	shutdownHandler.OnShutdown(func(ctx context.Context) error {
		log.Info("shutting down HTTP server")
		if certWatcher != nil {
			certWatcher.Stop()
		}
		return httpServer.Shutdown(ctx)
	})

	go func() {
		log.Info("HTTP server listening",
			"addr", cfg.Server.HTTP.Addr,
			"tls", certWatcher != nil)

		var serveErr error
		if certWatcher != nil {
			serveErr = httpServer.ListenAndServeTLS("", "")
		} else {
			serveErr = httpServer.ListenAndServe()
		}
		if serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", serveErr)
			shutdownHandler.Trigger()
		}
	}()

	log.Info("server started")
	if err := shutdownHandler.Wait(); err != nil {
		log.Error("shutdown error", "error", err)
		return err
	}

	log.Info("server stopped gracefully")
	return nil
}

// loadConfig loads configuration from file and environment.
func loadConfig(configFile string) (*config.ServerConfig, error) {
	cfg := config.Default()

	opts := []confloader.Option{}
	if configFile != "" {
		opts = append(opts, confloader.WithConfigFile(configFile))
	}
	loader := confloader.NewLoader(opts...)
	if err := loader.Load(cfg); err != nil {
		return nil, err
	}

	if err := config.Verify(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// startConfigWatcher reloads the log level when the config file
// changes. Other settings require a restart.
func startConfigWatcher(configFile string, log *slog.Logger) (*confloader.Watcher, error) {
	watcher, err := confloader.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Watch(configFile); err != nil {
		return nil, err
	}

	watcher.OnChange(func(path string) {
		cfg, err := loadConfig(configFile)
		if err != nil {
			log.Warn("ignoring config change", "error", err)
			return
		}
		if cfg.Log.Level != logger.GetLevel() {
			logger.SetLevel(cfg.Log.Level)
			log.Info("log level updated", "level", cfg.Log.Level)
		}
	})
	watcher.StartAsync()
	return watcher, nil
}
