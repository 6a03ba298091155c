package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "livehub"

// Metrics is safe to use as a nil pointer; every recorder becomes a no-op.
type Metrics struct {
	gatherer prometheus.Gatherer

	fetchAttempts     *prometheus.CounterVec
	fetchResults      *prometheus.CounterVec
	fetchDuration     prometheus.Histogram
	cacheLookups      *prometheus.CounterVec
	snapshots         *prometheus.CounterVec
	pollCycleDuration prometheus.Histogram
	relayPublishes    *prometheus.CounterVec
	circuitState      *prometheus.GaugeVec
	httpRequests      *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
}

// New registers collectors on reg. A nil reg uses a private registry, which
// keeps tests independent of the process-wide default.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	m := &Metrics{
		gatherer: reg,
		fetchAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_attempts_total",
			Help:      "Provider HTTP attempts by response status (\"error\" for transport failures).",
		}, []string{"status"}),
		fetchResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_results_total",
			Help:      "Provider fetch outcomes after retries.",
		}, []string{"outcome"}),
		fetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Wall time of a provider fetch including retries.",
			Buckets:   prometheus.DefBuckets,
		}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Snapshot cache lookups by result.",
		}, []string{"result"}),
		snapshots: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshots_published_total",
			Help:      "Snapshots handed to sinks by source.",
		}, []string{"source"}),
		pollCycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "poll_cycle_duration_seconds",
			Help:      "Duration of one poll cycle from fetch start to publish.",
			Buckets:   prometheus.DefBuckets,
		}),
		relayPublishes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "relay_publishes_total",
			Help:      "Snapshot relay deliveries by target and outcome.",
		}, []string{"target", "outcome"}),
		circuitState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "circuit_state",
			Help:      "Circuit breaker state gauge (0 closed, 1 half, 2 open).",
		}, []string{"target"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Control API requests by route and status.",
		}, []string{"route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Control API request durations by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}

	reg.MustRegister(
		m.fetchAttempts,
		m.fetchResults,
		m.fetchDuration,
		m.cacheLookups,
		m.snapshots,
		m.pollCycleDuration,
		m.relayPublishes,
		m.circuitState,
		m.httpRequests,
		m.httpDuration,
	)

	return m
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func (m *Metrics) WrapHandler(route string, next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(recorder, r)

		m.httpRequests.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
		m.httpDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

func (m *Metrics) FetchAttempt(status int) {
	if m == nil {
		return
	}
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	m.fetchAttempts.WithLabelValues(label).Inc()
}

func (m *Metrics) FetchResult(outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.fetchResults.WithLabelValues(outcome).Inc()
	m.fetchDuration.Observe(duration.Seconds())
}

func (m *Metrics) CacheLookup(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.cacheLookups.WithLabelValues("hit").Inc()
		return
	}
	m.cacheLookups.WithLabelValues("miss").Inc()
}

func (m *Metrics) SnapshotPublished(source string) {
	if m == nil {
		return
	}
	m.snapshots.WithLabelValues(source).Inc()
}

func (m *Metrics) PollCycle(duration time.Duration) {
	if m == nil {
		return
	}
	m.pollCycleDuration.Observe(duration.Seconds())
}

func (m *Metrics) RelayPublish(target string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.relayPublishes.WithLabelValues(target, outcome).Inc()
}

func (m *Metrics) SetCircuitState(target string, state float64) {
	if m == nil {
		return
	}
	m.circuitState.WithLabelValues(target).Set(state)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}
