// Package metrics exposes Prometheus instrumentation for the server.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"context"
	"net/http"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "splitmoney"

// Metrics owns a registry and the collectors registered on it.
type Metrics struct {
	registry *prometheus.Registry

	rpcRequests          *prometheus.CounterVec
	rpcDuration          *prometheus.HistogramVec
	settlementsSuggested prometheus.Counter
	cleanupRuns          *prometheus.CounterVec
	invitationsDeleted   prometheus.Counter
}

// New creates a registry with Go runtime and process collectors plus the
// application metrics.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		rpcRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rpc_requests_total",
				Help:      "Total number of RPCs handled, by procedure and status code",
			},
			[]string{"procedure", "code"},
		),
		rpcDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "rpc_duration_seconds",
				Help:      "Duration of RPC handling",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
			},
			[]string{"procedure"},
		),
		settlementsSuggested: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "settlements_suggested_total",
				Help:      "Total number of settlement transactions suggested by group summaries",
			},
		),
		cleanupRuns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "invitation_cleanup_runs_total",
				Help:      "Total number of invitation cleanup runs, by status",
			},
			[]string{"status"},
		),
		invitationsDeleted: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "invitations_deleted_total",
				Help:      "Total number of stale invitations deleted",
			},
		),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Interceptor counts and times every unary RPC. Install it first so
// rejected requests are counted too.
func (m *Metrics) Interceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			resp, err := next(ctx, req)

			if m != nil {
				procedure := req.Spec().Procedure
				code := "ok"
				if err != nil {
					code = connect.CodeOf(err).String()
				}
				m.rpcRequests.WithLabelValues(procedure, code).Inc()
				m.rpcDuration.WithLabelValues(procedure).Observe(time.Since(start).Seconds())
			}
			return resp, err
		}
	}
}

// SettlementsSuggested records n transactions returned by a group summary.
func (m *Metrics) SettlementsSuggested(n int) {
	if m == nil {
		return
	}
	m.settlementsSuggested.Add(float64(n))
}

// CleanupRun records one invitation cleanup run.
func (m *Metrics) CleanupRun(deleted int64, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.cleanupRuns.WithLabelValues("error").Inc()
		return
	}
	m.cleanupRuns.WithLabelValues("ok").Inc()
	m.invitationsDeleted.Add(float64(deleted))
}
