package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/Brownie44l1/embedhttp/internal/config"
	"github.com/Brownie44l1/embedhttp/internal/server"
)

var serveFlags struct {
	port        int
	logLevel    string
	dryRun      bool
	rateLimit   int
	corsOrigins []string
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the example application",
	Long: `Run the example application until SIGINT or SIGTERM.

Routes:
  GET /                     plain text greeting
  GET /health               JSON status
  PUT /resource/:id?name=   echo of the id, name and body size
  GET /metrics              Prometheus metrics (when enabled)

When --config is given the file is watched and log level changes are
applied without a restart. A rate_limit section (or --rate-limit) answers
429 to clients over the limit; a cors section (or --cors-origin) adds CORS
headers and answers preflight requests.

Examples:
  embedhttp serve --port 8080
  embedhttp serve --config embedhttp.yaml
  embedhttp serve --rate-limit 100 --cors-origin http://localhost:3000
  EMBEDHTTP_METRICS_ENABLED=true embedhttp serve`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntVarP(&serveFlags.port, "port", "p", -1, "override listen port")
	serveCmd.Flags().StringVar(&serveFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	serveCmd.Flags().BoolVar(&serveFlags.dryRun, "dry-run", false, "validate config without starting the server")
	serveCmd.Flags().IntVar(&serveFlags.rateLimit, "rate-limit", -1, "override requests allowed per client per rate_limit.window (0 disables)")
	serveCmd.Flags().StringSliceVar(&serveFlags.corsOrigins, "cors-origin", nil, "allow CORS requests from these origins (\"*\" for any)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadWithEnvOverrides(cfgFile)
	if err != nil {
		return err
	}
	if serveFlags.port >= 0 {
		cfg.Server.Port = serveFlags.port
	}
	if serveFlags.logLevel != "" {
		cfg.Log.Level = serveFlags.logLevel
	}
	if serveFlags.rateLimit >= 0 {
		cfg.RateLimit.Requests = serveFlags.rateLimit
	}
	if len(serveFlags.corsOrigins) > 0 {
		cfg.CORS.AllowedOrigins = serveFlags.corsOrigins
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	if serveFlags.dryRun {
		fmt.Fprintln(cmd.OutOrStdout(), "configuration valid")
		return nil
	}

	logger, level, err := server.NewLogger(server.LogConfig{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
	if err != nil {
		return err
	}

	var metrics *server.Metrics
	if cfg.Metrics.Enabled {
		registry := prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		metrics = server.NewMetrics(cfg.Metrics.Namespace, registry)
	}

	srv := server.New(server.Config{
		Port:          cfg.Server.Port,
		Backlog:       cfg.Server.Backlog,
		AcceptTimeout: cfg.Server.AcceptTimeout,
		ReadTimeout:   cfg.Server.ReadTimeout,
		Limits:        cfg.Server.Limits(),
		Logger:        logger,
		Metrics:       metrics,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfgFile != "" {
		go func() {
			err := config.Watch(ctx, cfgFile, logger, func(next *config.Config) {
				lv, err := server.ParseLevel(next.Log.Level)
				if err != nil {
					return
				}
				if lv != level.Level() {
					level.Set(lv)
					logger.Info("log level changed", "level", lv.String())
				}
			})
			if err != nil {
				logger.Warn("config watcher stopped", "error", err)
			}
		}()
	}

	rt, release := newRouter(logger, metrics, cfg)
	defer release()

	if !srv.Start(rt) {
		return fmt.Errorf("failed to start server on port %d", cfg.Server.Port)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "listening on :%d\n", srv.BoundPort())

	<-ctx.Done()
	logger.Info("shutting down")
	srv.Stop()
	return nil
}
