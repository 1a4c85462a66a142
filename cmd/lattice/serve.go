package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/google/gops/agent"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/aretw0/lattice/internal/platform"
	"github.com/aretw0/lattice/pkg/core"
)

var (
	serveHost        string
	servePort        int
	serveStorage     string
	serveFormat      string
	serveWorkers     int
	serveMetricsAddr string
	serveGops        bool
	serveWatch       bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Replay the log and serve requests",
	Long: `Load the configuration (creating it with defaults when absent), replay the
log into memory and accept connections until interrupted. Flags override the
configuration file.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		flags := cmd.Flags()
		if flags.Changed("host") {
			cfg.Host = serveHost
		}
		if flags.Changed("port") {
			cfg.Port = servePort
		}
		if flags.Changed("storage") {
			cfg.StoragePath = serveStorage
		}
		if flags.Changed("format") {
			cfg.LogFormat = core.Format(serveFormat)
		}
		if flags.Changed("workers") {
			cfg.Workers = serveWorkers
		}
		if flags.Changed("metrics-addr") {
			cfg.MetricsAddr = serveMetricsAddr
		}

		if serveGops {
			if err := agent.Listen(agent.Options{}); err != nil {
				slog.Warn("gops agent failed", "error", err)
			}
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

		inst, err := platform.Open(ctx, cfg, platform.WithLogger(slog.Default()), platform.WithRegisterer(reg))
		if err != nil {
			fatal("Failed to open store", err)
		}
		defer inst.Close()

		if cfg.MetricsAddr != "" {
			serveMetrics(ctx, cfg.MetricsAddr, reg)
		}

		if serveWatch {
			watcher := platform.NewConfigWatcher(platform.ResolveConfigPath(configPath), cfg, slog.Default(), nil)
			if err := watcher.Start(ctx); err != nil {
				slog.Warn("config watcher not started", "error", err)
			} else {
				defer watcher.Stop(context.Background())
			}
		}

		ln, err := net.Listen("tcp", cfg.Addr())
		if err != nil {
			fatal("Failed to listen", err)
		}
		slog.Info("serving", "addr", ln.Addr().String(), "replayed", inst.Replayed)

		if err := inst.Server.Serve(ctx, ln); err != nil {
			inst.Close()
			fatal("Server stopped", err)
		}
		slog.Info("shutdown complete")
	},
}

// serveMetrics exposes reg on addr until ctx is done.
func serveMetrics(ctx context.Context, addr string, reg *prometheus.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	lifecycle.Go(ctx, func(ctx context.Context) error {
		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
		slog.Info("metrics listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("metrics server failed", "error", err)
			return err
		}
		return nil
	}, lifecycle.WithErrorHandler(func(err error) {
		slog.Error("metrics server panic", "error", err)
	}))
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Listen host")
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Listen port")
	serveCmd.Flags().StringVar(&serveStorage, "storage", "", "Log location")
	serveCmd.Flags().StringVar(&serveFormat, "format", "", "Log format: bin, text or badger")
	serveCmd.Flags().IntVarP(&serveWorkers, "workers", "w", 0, "Connections served concurrently")
	serveCmd.Flags().StringVar(&serveMetricsAddr, "metrics-addr", "", "Expose Prometheus metrics on this address")
	serveCmd.Flags().BoolVar(&serveGops, "gops", false, "Start a gops diagnostics agent")
	serveCmd.Flags().BoolVar(&serveWatch, "watch-config", true, "Warn when the config file changes on disk")
}
