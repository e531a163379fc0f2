package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"mercator-hq/europa/pkg/config"
	"mercator-hq/europa/pkg/filter"
	"mercator-hq/europa/pkg/telemetry/logging"
	"mercator-hq/europa/pkg/telemetry/metrics"
	"mercator-hq/europa/pkg/tracing"
)

var demoFlags struct {
	listen string
}

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run a self-contained traced demo service",
	Long: `Start a small HTTP service with the tracing filters fully wired.

The service serves GET /orders/{id}; handling an order makes an internal
call to its own /inventory endpoint through the client filter, so a single
request produces a three-span trace (server, client, server). Prometheus
metrics are exposed on the configured metrics path.

If the config file does not exist, built-in defaults are used (tracing
disabled, metrics enabled).

Examples:
  # Run with defaults on port 8080
  europa demo --listen :8080

  # Run against a collector
  europa demo --config config.yaml`,
	RunE: runDemo,
}

func init() {
	rootCmd.AddCommand(demoCmd)

	demoCmd.Flags().StringVar(&demoFlags.listen, "listen", ":8080", "listen address")
}

func runDemo(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	fromFile := err == nil
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = config.DefaultConfig()
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}

	logger, err := logging.New(&cfg.Telemetry.Logging, os.Stderr)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	var fm *metrics.FilterMetrics
	if cfg.Telemetry.Metrics.Enabled {
		fm = metrics.New(&cfg.Telemetry.Metrics, nil)
	}

	registry := tracing.NewRegistry(&cfg.Registry, fm, logger.Slog())
	if err := registry.StartJanitor(); err != nil {
		return fmt.Errorf("failed to start registry janitor: %w", err)
	}
	defer registry.StopJanitor()

	tracer, err := tracing.New(&cfg.Telemetry.Tracing, registry)
	if err != nil {
		return fmt.Errorf("failed to create tracer: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracer.Shutdown(ctx); err != nil {
			logger.Error("tracer shutdown failed", "error", err)
		}
	}()

	serverFilter := filter.NewServerFilter(tracer, filter.ServerOptions{
		Attributes: []filter.ServerAttribute{
			filter.ServerMethod,
			filter.ServerURI,
			filter.ServerPath,
			filter.ServerQueryParameters,
		},
		Properties: []string{"request-id"},
	}, logger, fm)

	clientFilter := filter.NewClientFilter(tracer, filter.ClientOptions{
		Attributes: []filter.ClientAttribute{
			filter.ClientMethod,
			filter.ClientURI,
		},
	}, logger, fm)

	httpClient := &http.Client{
		Transport: clientFilter.Transport(nil),
		Timeout:   10 * time.Second,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /inventory/{id}", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"item":%q,"count":3}`, r.PathValue("id"))
	})
	mux.HandleFunc("GET /orders/{id}", func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")

		// Internal call through the client filter; the resulting span is a
		// child of this request's server span.
		url := fmt.Sprintf("http://%s/inventory/%s", r.Host, id)
		req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, url, nil)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		resp, err := httpClient.Do(req)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}
		resp.Body.Close()

		fmt.Fprintf(w, `{"order":%q,"inventory_status":%d}`, id, resp.StatusCode)
	})
	if fm != nil {
		mux.Handle("GET "+cfg.Telemetry.Metrics.Path, fm.Handler())
	}

	server := &http.Server{
		Addr:    demoFlags.listen,
		Handler: serverFilter.Middleware(mux),
	}

	// Watch the config file when one was loaded. Filter options are
	// immutable, so a reload only swaps the dynamic knobs here.
	watchCtx, stopWatch := context.WithCancel(context.Background())
	defer stopWatch()
	if fromFile {
		watcher, err := config.NewWatcher(cfgFile, logger.Slog())
		if err != nil {
			return fmt.Errorf("failed to create config watcher: %w", err)
		}
		go func() {
			err := watcher.Watch(watchCtx, func(next *config.Config) {
				logger.Info("configuration reloaded",
					"path", cfgFile,
					"tracing_enabled", next.Telemetry.Tracing.Enabled,
					"sampler", next.Telemetry.Tracing.Sampler,
					"log_level", next.Telemetry.Logging.Level,
				)
			})
			if err != nil {
				logger.Error("config watcher stopped", "error", err)
			}
		}()
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("demo service listening",
			"addr", demoFlags.listen,
			"tracing_enabled", tracer.Enabled(),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		logger.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(ctx)
}
