package diagnostics

// PingRequest is the input of Ping.
type PingRequest struct {
	Message string `json:"message"`
}

// PingResponse echoes the message with the server time and the request ID
// the call was served under.
type PingResponse struct {
	Message        string `json:"message"`
	ServerTimeUnix int64  `json:"server_time_unix"`
	RequestID      string `json:"request_id,omitempty"`
}

// StatsRequest is the empty input of the stats methods and ClearCache.
type StatsRequest struct{}

// CacheStatsResponse mirrors orchestrator.CacheStats.
type CacheStatsResponse struct {
	Size    int  `json:"size"`
	Enabled bool `json:"enabled"`
}

// DedupStatsResponse mirrors orchestrator.DedupStats.
type DedupStatsResponse struct {
	PendingCount int  `json:"pending_count"`
	Enabled      bool `json:"enabled"`
}

// PerformanceStatsResponse mirrors orchestrator.PerformanceStats.
type PerformanceStatsResponse struct {
	TotalRequests int64   `json:"total_requests"`
	CacheHitRate  float64 `json:"cache_hit_rate"`
	AvgLatencyMs  float64 `json:"avg_latency_ms"`
}

// ClearCacheResponse reports how many entries were dropped.
type ClearCacheResponse struct {
	Cleared int `json:"cleared"`
}

// message is the marker the codec uses to pick JSON over protobuf.
type message interface {
	isDiagnosticsMessage()
}

func (*PingRequest) isDiagnosticsMessage()              {}
func (*PingResponse) isDiagnosticsMessage()             {}
func (*StatsRequest) isDiagnosticsMessage()             {}
func (*CacheStatsResponse) isDiagnosticsMessage()       {}
func (*DedupStatsResponse) isDiagnosticsMessage()       {}
func (*PerformanceStatsResponse) isDiagnosticsMessage() {}
func (*ClearCacheResponse) isDiagnosticsMessage()       {}
