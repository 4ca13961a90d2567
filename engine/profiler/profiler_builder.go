package profiler

import (
	"time"

	"github.com/Carmen-Shannon/oxy-gpu/engine/renderer"
)

// ProfilerBuilderOption is a functional option applied to a Profiler during construction via NewProfiler.
type ProfilerBuilderOption func(*Profiler)

// WithInterval sets how often the profiler reports.
//
// Parameters:
//   - interval: the report interval, ignored when not positive
//
// Returns:
//   - ProfilerBuilderOption: a function that applies the interval option to a profiler
func WithInterval(interval time.Duration) ProfilerBuilderOption {
	return func(p *Profiler) {
		if interval > 0 {
			p.updateInterval = interval
		}
	}
}

// WithStatsSource makes the profiler report renderer counters, usually from Renderer.Stats.
//
// Parameters:
//   - stats: returns the current renderer counters
//
// Returns:
//   - ProfilerBuilderOption: a function that applies the stats source option to a profiler
func WithStatsSource(stats func() renderer.Stats) ProfilerBuilderOption {
	return func(p *Profiler) {
		p.stats = stats
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) ProfilerBuilderOption {
	return func(p *Profiler) {
		if now != nil {
			p.now = now
		}
	}
}
