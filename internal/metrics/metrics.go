package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smakfood/smakbot/core/logger"
)

var (
	updatesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "smakbot_updates_total",
		Help: "Inbound Telegram updates by kind.",
	}, []string{"kind"})

	workflowOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "smakbot_workflow_outcomes_total",
		Help: "Entity workflow terminations by outcome.",
	}, []string{"content", "action", "outcome"})

	catalogRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "smakbot_catalog_requests_total",
		Help: "Catalog API calls by operation and HTTP code.",
	}, []string{"op", "code"})
)

// Workflow outcome labels.
const (
	OutcomeCommitted = "committed"
	OutcomeCancelled = "cancelled"
	OutcomeParseFail = "parse_fail"
	OutcomeRemoteErr = "remote_error"
)

// CountUpdate records one inbound update of the given kind.
func CountUpdate(kind string) {
	updatesTotal.WithLabelValues(kind).Inc()
}

// CountWorkflow records a workflow termination or retry.
func CountWorkflow(content, action, outcome string) {
	workflowOutcomes.WithLabelValues(content, action, outcome).Inc()
}

// CountCatalogCall records a catalog API call result. code 0 means a
// transport-level failure before any HTTP status was received.
func CountCatalogCall(op string, code int) {
	catalogRequests.WithLabelValues(op, strconv.Itoa(code)).Inc()
}

// Serve exposes /metrics on the given address until ctx is cancelled.
// An empty listen address disables the endpoint.
func Serve(ctx context.Context, listen string) error {
	if listen == "" {
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              listen,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info(ctx, "metrics", "listen", slog.String("listen", listen))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
