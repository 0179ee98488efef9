package orchestrator

import "context"

// CacheStats describes the read cache.
type CacheStats struct {
	Size    int  `json:"size"`
	Enabled bool `json:"enabled"`
}

// DedupStats describes the in-flight coordinator.
type DedupStats struct {
	PendingCount int  `json:"pendingCount"`
	Enabled      bool `json:"enabled"`
}

// CacheStats reports the number of cached entries.
func (o *Orchestrator) CacheStats(ctx context.Context) CacheStats {
	return CacheStats{Size: o.cache.Len(ctx), Enabled: o.cache.Enabled()}
}

// DedupStats reports how many reads are currently in flight.
func (o *Orchestrator) DedupStats() DedupStats {
	return DedupStats{PendingCount: o.flight.Pending(), Enabled: o.flight.Enabled()}
}

// PerformanceStats summarizes every read and write recorded so far.
func (o *Orchestrator) PerformanceStats() PerformanceStats {
	return o.rec.stats()
}

// RecentMetrics returns the most recently recorded requests, oldest first.
func (o *Orchestrator) RecentMetrics() []Metric {
	return o.rec.snapshot()
}

// ResetStats discards the in-memory performance figures. Prometheus
// counters are not affected.
func (o *Orchestrator) ResetStats() {
	o.rec.reset()
}

// ClearCache drops every cached entry for the session.
func (o *Orchestrator) ClearCache(ctx context.Context) {
	o.cache.Clear(ctx)
	o.logger.Info("orchestrator: cache cleared")
}
