package orchestrator

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/Keksclan/goRawrSheets/ops"
)

// recentMetrics bounds how many samples the recorder keeps for inspection.
const recentMetrics = 256

// Metric is one recorded read or write.
type Metric struct {
	Operation ops.Operation
	Duration  time.Duration
	CacheHit  bool
	Success   bool
}

// PerformanceStats summarizes every recorded request.
type PerformanceStats struct {
	TotalRequests int64   `json:"totalRequests"`
	CacheHitRate  float64 `json:"cacheHitRate"`
	AvgLatencyMs  float64 `json:"avgLatencyMs"`
}

// recorder keeps running totals plus a ring of the most recent samples.
type recorder struct {
	mu      sync.Mutex
	total   int64
	reads   int64
	hits    int64
	latency time.Duration
	recent  []Metric
	next    int
}

func (r *recorder) record(m Metric) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.total++
	r.latency += m.Duration
	if !m.Operation.IsWrite() {
		r.reads++
		if m.CacheHit {
			r.hits++
		}
	}
	if len(r.recent) < recentMetrics {
		r.recent = append(r.recent, m)
		return
	}
	r.recent[r.next] = m
	r.next = (r.next + 1) % recentMetrics
}

// stats computes the hit rate over reads only; writes can never hit.
func (r *recorder) stats() PerformanceStats {
	r.mu.Lock()
	defer r.mu.Unlock()

	var s PerformanceStats
	s.TotalRequests = r.total
	if r.reads > 0 {
		s.CacheHitRate = float64(r.hits) / float64(r.reads)
	}
	if r.total > 0 {
		s.AvgLatencyMs = float64(r.latency.Microseconds()) / 1000 / float64(r.total)
	}
	return s
}

// snapshot returns the recent samples, oldest first.
func (r *recorder) snapshot() []Metric {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Metric, 0, len(r.recent))
	out = append(out, r.recent[r.next:]...)
	out = append(out, r.recent[:r.next]...)
	return out
}

func (r *recorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.total, r.reads, r.hits, r.latency = 0, 0, 0, 0
	r.recent, r.next = nil, 0
}

// collectors are the Prometheus series exported per orchestrator.
type collectors struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// newCollectors registers the series with reg. A nil reg leaves them
// unregistered, which keeps several orchestrators in one process apart.
func newCollectors(reg prometheus.Registerer) *collectors {
	f := promauto.With(reg)
	return &collectors{
		requests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rawrsheets_requests_total",
				Help: "Reads and writes issued through the orchestrator",
			},
			[]string{"operation", "kind", "cache_hit", "success"},
		),
		duration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "rawrsheets_request_duration_seconds",
				Help:    "Latency of reads and writes as seen by the caller",
				Buckets: prometheus.ExponentialBuckets(0.001, 2, 16), // 1ms to ~33s
			},
			[]string{"operation", "kind"},
		),
	}
}

func (c *collectors) observe(m Metric) {
	op, kind := m.Operation.String(), m.Operation.Kind().String()
	c.requests.WithLabelValues(op, kind, strconv.FormatBool(m.CacheHit), strconv.FormatBool(m.Success)).Inc()
	c.duration.WithLabelValues(op, kind).Observe(m.Duration.Seconds())
}
