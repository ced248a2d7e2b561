package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hupe1980/membuf"
	"github.com/hupe1980/membuf/observability"
	"github.com/hupe1980/membuf/server"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the pool over HTTP",
		Long: "Create the buffer pool and expose its configuration attributes, " +
			"byte-stream sessions and Prometheus metrics over HTTP.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(v)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return serve(ctx, cfg)
		},
	}

	flags := cmd.Flags()
	flags.String("listen", v.GetString("listen"), "HTTP listen address")
	flags.Duration("session-ttl", v.GetDuration("session-ttl"), "idle time after which a session's handle is closed")
	flags.Int("max-read-bytes", v.GetInt("max-read-bytes"), "largest read served in one request")
	cobra.CheckErr(v.BindPFlags(flags))

	return cmd
}

// serve runs the server until ctx is canceled, then shuts down the server
// and the pool.
func serve(ctx context.Context, cfg Config) (err error) {
	logger, err := cfg.logger()
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector, err := observability.NewCollector(registry)
	if err != nil {
		return fmt.Errorf("registering metrics: %w", err)
	}

	opts, err := cfg.poolOptions()
	if err != nil {
		return err
	}
	opts = append(opts, membuf.WithLogger(logger), membuf.WithMetricsCollector(collector))

	pool, err := membuf.New(opts...)
	if err != nil {
		return fmt.Errorf("creating pool: %w", err)
	}
	defer func() {
		if cerr := pool.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if err := observability.RegisterPool(registry, pool); err != nil {
		return fmt.Errorf("registering pool metrics: %w", err)
	}

	srv := server.New(pool, cfg.serverConfig(), registry, logger)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("shutting down: %w", err)
	}
	return <-errCh
}
