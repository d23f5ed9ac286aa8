package main

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/lightsgoout/quantcup-lockfree/internal/book"
)

// newServeCmd exposes a freshly constructed, instrumented book's prometheus
// metrics over HTTP. Nothing submits orders to that book, so its counters
// keep their initial values; the bench command builds its own book without
// metrics.
func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve prometheus metrics for an instrumented, otherwise idle book",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := prometheus.NewRegistry()
			metrics := book.NewMetrics(reg)
			_ = book.New(book.WithLogger(newLogger()), book.WithMetrics(metrics))

			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

			fmt.Printf("serving metrics on %s/metrics\n", addr)
			return http.ListenAndServe(addr, mux)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":9090", "address to serve /metrics on")
	return cmd
}
