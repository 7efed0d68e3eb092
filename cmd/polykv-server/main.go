// Package main provides the entry point for polykv-server.
//
// polykv-server is the long-running process hosting an embedded polykv
// engine behind a minimal HTTP surface: a health check and a Prometheus
// scrape endpoint. It owns the substrate, the write-ahead log, and crash
// recovery for the data directory it is pointed at; batched blob,
// document, and graph operations are reached through polykv-cli or a
// caller embedding internal/db directly, not over this process's HTTP
// surface.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/polykv/polykv-go/internal/db"
	"github.com/polykv/polykv-go/pkg/buildinfo"
	"github.com/polykv/polykv-go/pkg/config"
	"github.com/polykv/polykv-go/pkg/logger"
	"github.com/polykv/polykv-go/pkg/metrics"
	"github.com/polykv/polykv-go/pkg/shutdown"
)

func main() {
	app := &cli.App{
		Name:    "polykv-server",
		Usage:   "serve an embedded polykv engine with health and metrics endpoints",
		Version: buildinfo.Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to configuration file",
			},
		},
		Action: func(c *cli.Context) error {
			return run(c.String("config"))
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(configFile string) error {
	spec, err := loadConfig(configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(logger.Config{
		Level:  spec.Log.Level,
		Format: spec.Log.Format,
		Output: os.Stderr,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	logger.SetDefault(log)

	log.Info("starting polykv-server",
		"version", buildinfo.Version,
		"commit", buildinfo.Commit,
		"config", configFile,
		"backend", spec.Engine.Backend)

	dbCfg, err := db.ConfigFromSpec(spec, logger.Slog(log))
	if err != nil {
		return fmt.Errorf("resolve engine config: %w", err)
	}

	ctx := context.Background()
	database, st := db.Open(ctx, dbCfg)
	if st != nil {
		return fmt.Errorf("open database: %w", st)
	}

	if st := database.Recover(ctx); st != nil {
		return fmt.Errorf("recover database: %w", st)
	}
	log.Info("database recovered", "data_dir", spec.Directory)

	registry := metrics.NewRegistry()
	if err := registry.Register(metrics.NewCollector(database)); err != nil {
		return fmt.Errorf("register metrics collector: %w", err)
	}
	for _, coll := range database.MetricsCollectors() {
		if err := registry.Register(coll); err != nil {
			return fmt.Errorf("register substrate collector: %w", err)
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", registry.Handler())

	addr := spec.Metrics.Addr
	if addr == "" {
		addr = config.DefaultMetricsAddr
	}
	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	shutdownHandler := shutdown.NewHandler(30 * time.Second)

	shutdownHandler.OnShutdown(func(ctx context.Context) error {
		log.Info("shutting down HTTP server")
		return httpServer.Shutdown(ctx)
	})
	shutdownHandler.OnShutdown(func(ctx context.Context) error {
		log.Info("closing database")
		return database.Close()
	})

	go func() {
		log.Info("HTTP server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", "error", err)
		}
	}()

	log.Info("server started, press Ctrl+C to stop")
	if err := shutdownHandler.Wait(); err != nil {
		log.Error("shutdown error", "error", err)
		return err
	}

	log.Info("server stopped gracefully")
	return nil
}

// loadConfig loads configuration from file, environment, and defaults.
func loadConfig(configFile string) (*config.Spec, error) {
	spec := config.Default()

	var opts []config.Option
	if configFile != "" {
		opts = append(opts, config.WithConfigFile(configFile))
	}

	loader := config.NewLoader(opts...)
	if err := loader.Load(spec); err != nil {
		return nil, err
	}
	return spec, nil
}
