package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/mnavickas/buddyalloc/allocator"
	"github.com/mnavickas/buddyalloc/metrics"
)

var flagServeAddr string

const shutdownGrace = 5 * time.Second

// serveCmd starts an HTTP /metrics endpoint for a live allocator: the
// allocator is not exposed for remote allocate/free calls, only
// observed.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve Prometheus metrics for a live allocator",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := allocator.New(flagMinOrder, flagMaxOrder,
			allocator.WithDebug(flagDebug),
			allocator.WithLogger(newLogger()),
		)
		if err != nil {
			return err
		}
		sa := allocator.NewSynchronized(a)

		collector := metrics.NewCollector(sa, "buddyalloc")
		reg := prometheus.NewRegistry()
		if err := reg.Register(collector); err != nil {
			return err
		}

		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

		srv := &http.Server{Addr: flagServeAddr, Handler: mux}

		logger := newLogger()
		errCh := make(chan error, 1)
		go func() {
			logger.Infof("serving metrics on %s/metrics", flagServeAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
			logger.Infof("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		}
	},
}

func init() {
	serveCmd.Flags().StringVar(&flagServeAddr, "addr", ":9090", "address to serve /metrics on")
	rootCmd.AddCommand(serveCmd)
}
