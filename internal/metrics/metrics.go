// Package metrics exposes Prometheus counters for conversation turns and
// tool dispatches, plus the HTTP endpoint that serves them.
package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Turns counts completed conversation turns by outcome:
	// ok, fallback, critical, transient, user_input, recoverable.
	Turns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bot_turns_total",
		Help: "Conversation turns processed, by outcome.",
	}, []string{"outcome"})

	// Dispatches counts tool dispatches by the registry's result status.
	Dispatches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bot_tool_dispatches_total",
		Help: "Tool dispatches, by status.",
	}, []string{"tool", "status"})

	// TurnDuration observes wall time per turn, model calls included.
	TurnDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "bot_turn_duration_seconds",
		Help:    "Wall time per conversation turn.",
		Buckets: prometheus.ExponentialBuckets(0.25, 2, 10),
	})

	// RemindersSent counts delivered scheduled reminders.
	RemindersSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bot_reminders_sent_total",
		Help: "Scheduled reminders delivered to users.",
	})
)

// Serve runs the metrics and health endpoint until ctx is canceled.
func Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("metrics listening", slog.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
