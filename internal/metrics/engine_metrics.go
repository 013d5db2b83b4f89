package metrics

import (
	"sync/atomic"
	"time"
)

// EngineMetrics tracks recompute activity.
type EngineMetrics struct {
	SessionLatency *Histogram
	TotalsLatency  *Histogram

	SessionsScored  atomic.Uint64
	SessionsSkipped atomic.Uint64
	TotalsRuns      atomic.Uint64
	Failures        atomic.Uint64
	Diagnostics     atomic.Uint64

	startTime time.Time
}

// NewEngineMetrics creates a new metrics collector.
func NewEngineMetrics() *EngineMetrics {
	return &EngineMetrics{
		SessionLatency: NewHistogram(1024),
		TotalsLatency:  NewHistogram(256),
		startTime:      time.Now(),
	}
}

// RecordSession records one scored session.
func (m *EngineMetrics) RecordSession(d time.Duration, diagnostics int) {
	m.SessionLatency.Record(d)
	m.SessionsScored.Add(1)
	m.Diagnostics.Add(uint64(diagnostics))
}

// RecordSkip records a session whose inputs were unchanged.
func (m *EngineMetrics) RecordSkip() {
	m.SessionsSkipped.Add(1)
}

// RecordTotals records one totals recompute.
func (m *EngineMetrics) RecordTotals(d time.Duration) {
	m.TotalsLatency.Record(d)
	m.TotalsRuns.Add(1)
}

// RecordFailure records a failed recompute.
func (m *EngineMetrics) RecordFailure() {
	m.Failures.Add(1)
}

// LatencyStats summarizes a latency histogram.
type LatencyStats struct {
	Mean  float64 `json:"mean"` // milliseconds
	P50   float64 `json:"p50"`
	P95   float64 `json:"p95"`
	Max   float64 `json:"max"`
	Count int     `json:"count"`
}

// EngineStats is a snapshot of EngineMetrics.
type EngineStats struct {
	SessionLatency  LatencyStats `json:"session_latency"`
	TotalsLatency   LatencyStats `json:"totals_latency"`
	SessionsScored  uint64       `json:"sessions_scored"`
	SessionsSkipped uint64       `json:"sessions_skipped"`
	TotalsRuns      uint64       `json:"totals_runs"`
	Failures        uint64       `json:"failures"`
	Diagnostics     uint64       `json:"diagnostics"`
	SkipRate        float64      `json:"skip_rate"` // percentage
	Uptime          string       `json:"uptime"`
}

// GetStats returns a snapshot of the current statistics.
func (m *EngineMetrics) GetStats() *EngineStats {
	scored := m.SessionsScored.Load()
	skipped := m.SessionsSkipped.Load()

	skipRate := 0.0
	if scored+skipped > 0 {
		skipRate = float64(skipped) / float64(scored+skipped) * 100
	}

	return &EngineStats{
		SessionLatency:  latencyStats(m.SessionLatency),
		TotalsLatency:   latencyStats(m.TotalsLatency),
		SessionsScored:  scored,
		SessionsSkipped: skipped,
		TotalsRuns:      m.TotalsRuns.Load(),
		Failures:        m.Failures.Load(),
		Diagnostics:     m.Diagnostics.Load(),
		SkipRate:        skipRate,
		Uptime:          time.Since(m.startTime).Round(time.Second).String(),
	}
}

func latencyStats(h *Histogram) LatencyStats {
	return LatencyStats{
		Mean:  h.Mean(),
		P50:   h.Percentile(50),
		P95:   h.Percentile(95),
		Max:   h.Max(),
		Count: h.Count(),
	}
}
