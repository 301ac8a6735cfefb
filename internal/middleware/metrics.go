package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the server's Prometheus collectors. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	gatherer prometheus.Gatherer

	rpcTotal        *prometheus.CounterVec
	rpcDuration     *prometheus.HistogramVec
	historySize     prometheus.Gauge
	historyInserted prometheus.Counter
	historySkipped  prometheus.Counter
	persistFailures *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them on reg.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		gatherer: reg,
		rpcTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wattsplit_rpc_requests_total",
			Help: "Total RPCs handled by procedure and connect code.",
		}, []string{"procedure", "code"}),
		rpcDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "wattsplit_rpc_duration_seconds",
			Help:    "Histogram of RPC durations by procedure.",
			Buckets: prometheus.DefBuckets,
		}, []string{"procedure"}),
		historySize: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "wattsplit_history_entries",
			Help: "Number of entries currently held in history.",
		}),
		historyInserted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wattsplit_history_inserted_total",
			Help: "Total calculations recorded into history.",
		}),
		historySkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wattsplit_history_duplicates_total",
			Help: "Total calculations not recorded because they repeated the newest entry.",
		}),
		persistFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wattsplit_persist_failures_total",
			Help: "Total storage writes that failed and were skipped.",
		}, []string{"op"}),
	}

	reg.MustRegister(
		m.rpcTotal,
		m.rpcDuration,
		m.historySize,
		m.historyInserted,
		m.historySkipped,
		m.persistFailures,
	)
	return m
}

// Handler serves the registered collectors.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// Interceptor counts and times every unary RPC.
func (m *Metrics) Interceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			resp, err := next(ctx, req)
			m.observeRPC(req.Spec().Procedure, err, time.Since(start))
			return resp, err
		}
	}
}

func (m *Metrics) observeRPC(procedure string, err error, d time.Duration) {
	if m == nil {
		return
	}
	code := "ok"
	if err != nil {
		var connectErr *connect.Error
		if errors.As(err, &connectErr) {
			code = connectErr.Code().String()
		} else {
			code = connect.CodeUnknown.String()
		}
	}
	m.rpcTotal.WithLabelValues(procedure, code).Inc()
	m.rpcDuration.WithLabelValues(procedure).Observe(d.Seconds())
}

func (m *Metrics) HistoryRecorded(inserted bool) {
	if m == nil {
		return
	}
	if inserted {
		m.historyInserted.Inc()
	} else {
		m.historySkipped.Inc()
	}
}

func (m *Metrics) HistorySize(n int) {
	if m == nil {
		return
	}
	m.historySize.Set(float64(n))
}

func (m *Metrics) PersistFailed(op string) {
	if m == nil {
		return
	}
	m.persistFailures.WithLabelValues(op).Inc()
}
