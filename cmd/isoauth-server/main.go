package main

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"os"
	"sync/atomic"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/isoauth-go/internal/core/backend"
	"github.com/yndnr/isoauth-go/internal/core/platform"
	"github.com/yndnr/isoauth-go/internal/core/service"
	"github.com/yndnr/isoauth-go/internal/identitytoolkit"
	"github.com/yndnr/isoauth-go/internal/infra/buildinfo"
	"github.com/yndnr/isoauth-go/internal/infra/confloader"
	"github.com/yndnr/isoauth-go/internal/infra/shutdown"
	"github.com/yndnr/isoauth-go/internal/infra/tlsroots"
	"github.com/yndnr/isoauth-go/internal/server/config"
	"github.com/yndnr/isoauth-go/internal/server/httpserver"
	"github.com/yndnr/isoauth-go/internal/server/httpserver/handler"
	"github.com/yndnr/isoauth-go/internal/telemetry/logger"
	"github.com/yndnr/isoauth-go/internal/telemetry/metric"
	"github.com/yndnr/isoauth-go/internal/telemetry/tracer"
)

const (
	shutdownTimeout = 30 * time.Second
	pruneInterval   = time.Minute
)

func main() {
	app := &cli.App{
		Name:    "isoauth-server",
		Usage:   "Stateless identity gateway",
		Version: buildinfo.String(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				EnvVars: []string{"ISOAUTH_CONFIG"},
			},
			&cli.StringFlag{
				Name:  "addr",
				Usage: "Override server.http.addr",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Override log.level",
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	configFile := c.String("config")
	cfg, err := loadConfig(configFile, overrides(c))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stdout,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	logger.SetDefault(log)

	log.Info("starting isoauth-server",
		"version", buildinfo.Version,
		"commit", buildinfo.Commit,
		"config", configFile,
		"settings", config.Sanitize(cfg))

	tp, err := tracer.New("isoauth-server", cfg.Tracing.Endpoint)
	if err != nil {
		return fmt.Errorf("init tracer: %w", err)
	}

	var metrics *metric.Registry
	if cfg.Metrics.Enabled {
		metrics = metric.NewRegistry()
	}

	transportCfg := cfg.Transport
	transportCfg.UserAgent = buildinfo.UserAgent()
	transport := identitytoolkit.NewHTTPTransport(transportCfg)
	if transportCfg.CAFile != "" {
		roots, err := tlsroots.LoadCAFile(transportCfg.CAFile)
		if err != nil {
			return fmt.Errorf("load transport.ca_file: %w", err)
		}
		transport.WithRootCAs(roots.CertPool())
		log.Info("trusting extra identity CAs", "ca_file", transportCfg.CAFile, "count", roots.Added())
	}
	client := identitytoolkit.NewClient(cfg.Identity, transport, identitytoolkit.WithMetrics(metrics))

	disp := service.NewDispatcher(service.Config{
		Oracle:  platform.Static(platform.Server),
		Server:  backend.NewServerBackend(client, nil, nil),
		Metrics: metrics,
		Logger:  log,
	})

	var draining atomic.Bool
	h := handler.New(disp, client, log, handler.WithReadiness(func(context.Context) error {
		if draining.Load() {
			return errors.New("shutting down")
		}
		return nil
	}))

	var limiter *httpserver.IPLimiter
	if cfg.Server.RateLimit > 0 {
		limiter = httpserver.NewIPLimiter(cfg.Server.RateLimit, cfg.Server.RateBurst)
	}

	srv := httpserver.New(cfg.Server.HTTP.Addr, httpserver.NewRouter(&httpserver.RouterConfig{
		Handler:     h,
		Metrics:     metrics,
		Logger:      log,
		CORSOrigins: cfg.Server.CORSOrigins,
		Limiter:     limiter,
	}))

	var certs *tlsroots.Watcher
	if cfg.Server.HTTP.TLSCertFile != "" {
		certs, err = tlsroots.NewWatcher(cfg.Server.HTTP.TLSCertFile, cfg.Server.HTTP.TLSKeyFile,
			tlsroots.WithLogger(log))
		if err != nil {
			return fmt.Errorf("load TLS certificate: %w", err)
		}
	}

	ln, err := net.Listen("tcp", cfg.Server.HTTP.Addr)
	if err != nil {
		if certs != nil {
			_ = certs.Stop()
		}
		return fmt.Errorf("listen %s: %w", cfg.Server.HTTP.Addr, err)
	}

	sh := shutdown.NewHandler(shutdownTimeout)
	sh.OnShutdown("tracer", tp.Shutdown)

	var tlsConfig *tls.Config
	if certs != nil {
		certs.StartAsync()
		tlsConfig = certs.ServerTLSConfig()
		sh.OnShutdown("certificate watcher", func(context.Context) error { return certs.Stop() })
	}

	stopPrune := make(chan struct{})
	if limiter != nil {
		go pruneLoop(limiter, log, stopPrune)
	}
	sh.OnShutdown("limiter", func(context.Context) error {
		close(stopPrune)
		return nil
	})

	if configFile != "" {
		w, err := watchConfig(configFile, overrides(c), log)
		if err != nil {
			log.Warn("config hot reload disabled", "error", err)
		} else {
			sh.OnShutdown("config watcher", func(context.Context) error { return w.Stop() })
		}
	}

	sh.OnShutdown("http", func(ctx context.Context) error {
		draining.Store(true)
		log.Info("shutting down HTTP server")
		return srv.Shutdown(ctx)
	})

	go func() {
		log.Info("HTTP server listening", "addr", ln.Addr().String(), "tls", tlsConfig != nil)
		if err := srv.Serve(ln, tlsConfig); err != nil {
			log.Error("HTTP server error", "error", err)
			sh.Trigger()
		}
	}()

	if err := sh.Wait(c.Context); err != nil {
		log.Error("shutdown error", "error", err)
		return err
	}
	log.Info("server stopped gracefully")
	return nil
}

// overrides maps command line flags onto configuration keys. Flags win
// over the file and the environment.
func overrides(c *cli.Context) map[string]any {
	m := map[string]any{}
	if v := c.String("addr"); v != "" {
		m["server.http.addr"] = v
	}
	if v := c.String("log-level"); v != "" {
		m["log.level"] = v
	}
	return m
}

func loadConfig(configFile string, flags map[string]any) (*config.ServerConfig, error) {
	opts := []confloader.Option{confloader.WithDefaults(config.Defaults())}
	if configFile != "" {
		opts = append(opts, confloader.WithConfigFile(configFile))
	}
	loader := confloader.NewLoader(opts...)

	cfg := config.Default()
	if err := loader.Load(cfg); err != nil {
		return nil, err
	}
	if len(flags) > 0 {
		if err := loader.LoadMap(flags); err != nil {
			return nil, err
		}
		if err := loader.Unmarshal(cfg); err != nil {
			return nil, err
		}
	}
	if err := config.Verify(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// watchConfig reapplies log.level when the config file changes. Other
// settings need a restart.
func watchConfig(path string, flags map[string]any, log logger.Logger) (*confloader.Watcher, error) {
	w, err := confloader.NewWatcher(confloader.WithWatcherLogger(log))
	if err != nil {
		return nil, err
	}
	if err := w.Watch(path); err != nil {
		_ = w.Stop()
		return nil, err
	}
	w.OnChange(func(string) {
		cfg, err := loadConfig(path, flags)
		if err != nil {
			log.Warn("config reload rejected", "error", err)
			return
		}
		if cfg.Log.Level != logger.GetLevel() {
			logger.SetLevel(cfg.Log.Level)
			log.Info("log level changed", "level", cfg.Log.Level)
		}
	})
	w.StartAsync()
	return w, nil
}

func pruneLoop(l *httpserver.IPLimiter, log logger.Logger, stop <-chan struct{}) {
	ticker := time.NewTicker(pruneInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if n := l.Prune(); n > 0 {
				log.Debug("pruned idle rate limit buckets", "count", n, "remaining", l.Size())
			}
		}
	}
}
