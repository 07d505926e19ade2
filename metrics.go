package qsim

import (
	"slices"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Gate application paths, used as the "path" label.
const (
	PathSingle = "single"
	PathGroup  = "group"
	PathDense  = "dense"
	PathCPU    = "cpu_fallback"

	// PathLimited marks dense gates run on the CPU while the regulator
	// holds the backend off. These are not fallbacks.
	PathLimited = "cpu_limited"
)

type timeWindow struct {
	duration time.Duration
	count    int
}

/*
Metrics collects engine statistics. It keeps an in-process snapshot, read
with ExportMetrics, and mirrors the counters into Prometheus collectors
registered on the registerer it was built with.
*/
type Metrics struct {
	mu sync.Mutex

	GatesApplied     int64
	BackendCalls     int64
	BackendFallbacks int64
	GroverRuns       int64
	BreakerState     CircuitState
	TotalGateTime    time.Duration

	AverageGateLatency time.Duration
	P95GateLatency     time.Duration
	P99GateLatency     time.Duration

	latencyWindows []timeWindow
	windowSize     int
	nextWindow     int
	stale          bool

	gatesApplied     *prometheus.CounterVec
	backendFallbacks prometheus.Counter
	gateDuration     prometheus.Histogram
	groverIterations prometheus.Histogram
	breakerState     prometheus.Gauge
}

/*
NewMetrics registers the simulator's collectors on reg. A nil reg gets a
private registry, which keeps independent engines in one process (and in
tests) from colliding on registration.
*/
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	factory := promauto.With(reg)

	return &Metrics{
		latencyWindows: make([]timeWindow, 0, 1000),
		windowSize:     1000,

		gatesApplied: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "qsim",
			Name:      "gates_applied_total",
			Help:      "Gates applied to a state vector, by application path",
		}, []string{"path"}),

		backendFallbacks: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "qsim",
			Name:      "backend_fallbacks_total",
			Help:      "Accelerated multiplies that failed and were recomputed on the CPU",
		}),

		gateDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "qsim",
			Name:      "gate_duration_seconds",
			Help:      "Time to apply a single gate",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 12),
		}),

		groverIterations: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "qsim",
			Name:      "grover_iterations",
			Help:      "Oracle/diffusion rounds per Grover search",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		}),

		breakerState: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "qsim",
			Name:      "backend_breaker_state",
			Help:      "Backend circuit breaker state (0 closed, 1 open, 2 half-open)",
		}),
	}
}

func (m *Metrics) recordGate(path string, startTime time.Time) {
	duration := time.Since(startTime)

	m.gatesApplied.WithLabelValues(path).Inc()
	m.gateDuration.Observe(duration.Seconds())

	m.mu.Lock()
	defer m.mu.Unlock()

	m.GatesApplied++
	m.TotalGateTime += duration
	m.recordLatency(duration)
}

func (m *Metrics) recordBackendCall() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.BackendCalls++
}

func (m *Metrics) recordFallback() {
	m.backendFallbacks.Inc()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.BackendFallbacks++
}

func (m *Metrics) recordGrover(iterations int) {
	m.groverIterations.Observe(float64(iterations))

	m.mu.Lock()
	defer m.mu.Unlock()
	m.GroverRuns++
}

func (m *Metrics) recordBreakerState(state CircuitState) {
	m.breakerState.Set(float64(state))

	m.mu.Lock()
	defer m.mu.Unlock()
	m.BreakerState = state
}

// recordLatency must be called with mu held.
func (m *Metrics) recordLatency(duration time.Duration) {
	m.AverageGateLatency = (m.AverageGateLatency*time.Duration(m.GatesApplied-1) + duration) / time.Duration(m.GatesApplied)

	w := timeWindow{duration: duration, count: 1}

	if len(m.latencyWindows) < m.windowSize {
		m.latencyWindows = append(m.latencyWindows, w)
	} else {
		m.latencyWindows[m.nextWindow] = w
		m.nextWindow = (m.nextWindow + 1) % m.windowSize
	}

	m.stale = true
}

/*
refreshPercentiles recomputes P95 and P99 over the window when gates were
recorded since the last export. It must be called with mu held.
*/
func (m *Metrics) refreshPercentiles() {
	if !m.stale {
		return
	}

	sorted := make([]time.Duration, 0, len(m.latencyWindows))
	for _, w := range m.latencyWindows {
		for i := 0; i < w.count; i++ {
			sorted = append(sorted, w.duration)
		}
	}
	slices.Sort(sorted)

	if len(sorted) > 0 {
		p95Index := min(int(float64(len(sorted))*0.95), len(sorted)-1)
		p99Index := min(int(float64(len(sorted))*0.99), len(sorted)-1)

		m.P95GateLatency = sorted[p95Index]
		m.P99GateLatency = sorted[p99Index]
	}

	m.stale = false
}

/*
ExportMetrics returns a snapshot of the counters and latencies keyed by
name. The latency percentiles are brought up to date first.
*/
func (m *Metrics) ExportMetrics() map[string]interface{} {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.refreshPercentiles()

	return map[string]interface{}{
		"gates_applied":     m.GatesApplied,
		"backend_calls":     m.BackendCalls,
		"backend_fallbacks": m.BackendFallbacks,
		"grover_runs":       m.GroverRuns,
		"breaker_state":     m.BreakerState.String(),
		"avg_latency_us":    m.AverageGateLatency.Microseconds(),
		"p95_latency_us":    m.P95GateLatency.Microseconds(),
		"p99_latency_us":    m.P99GateLatency.Microseconds(),
	}
}
