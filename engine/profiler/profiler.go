package profiler

import (
	"runtime"
	"time"

	"github.com/Carmen-Shannon/oxy-gpu/common"
	"github.com/Carmen-Shannon/oxy-gpu/engine/renderer"
)

// Report is what the profiler measured over one interval.
type Report struct {
	Elapsed time.Duration
	FPS     float64

	// Renderer holds the renderer counters accumulated during the interval.
	Renderer renderer.Stats
	// DrawsPerFrame is the average number of draw calls per frame drawn.
	DrawsPerFrame float64

	HeapMB        float64
	AllocRateMB   float64
	GCCount       uint32
	LastGCPauseUs uint64
	MaxGCPauseUs  uint64
	SysMB         float64
}

// Profiler tracks frame rate, renderer counters and memory statistics for performance monitoring.
// Outputs stats to the shared logger at a configurable interval.
type Profiler struct {
	frameCount     int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64

	stats     func() renderer.Stats
	lastStats renderer.Stats
	now       func() time.Time

	last Report
}

// NewProfiler creates a new Profiler. Update interval defaults to 1 second.
//
// Parameters:
//   - options: ProfilerBuilderOption functions to configure the profiler
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerBuilderOption) *Profiler {
	p := &Profiler{
		updateInterval: time.Second,
		now:            time.Now,
	}
	for _, opt := range options {
		opt(p)
	}
	p.lastTime = p.now()
	if p.stats != nil {
		p.lastStats = p.stats()
	}
	return p
}

// Tick should be called once per frame to track frame timing.
// Logs performance statistics when the update interval has elapsed.
// Statistics include: FPS, renderer counters, heap usage, allocation rate, GC count/pause times, total memory.
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick() bool {
	p.frameCount++
	currentTime := p.now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return false
	}

	r := Report{
		Elapsed: elapsed,
		FPS:     float64(p.frameCount) / elapsed.Seconds(),
	}

	if p.stats != nil {
		current := p.stats()
		r.Renderer = current.Sub(p.lastStats)
		p.lastStats = current
		if drawn := r.Renderer.Frames - r.Renderer.SkippedFrames; drawn > 0 {
			r.DrawsPerFrame = float64(r.Renderer.DrawCalls) / float64(drawn)
		}
	}

	runtime.ReadMemStats(&p.memStats)
	r.HeapMB = float64(p.memStats.Alloc) / 1024 / 1024
	r.SysMB = float64(p.memStats.Sys) / 1024 / 1024
	allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc
	r.AllocRateMB = float64(allocDelta) / 1024 / 1024 / elapsed.Seconds()

	// PauseNs is a circular buffer of the last 256 GC pauses
	gcCount := p.memStats.NumGC
	r.GCCount = gcCount
	if gcCount > 0 {
		r.LastGCPauseUs = p.memStats.PauseNs[(gcCount-1)%256] / 1000

		startIdx := p.lastGCCount
		if gcCount-startIdx > 256 {
			startIdx = gcCount - 256
		}
		for i := startIdx; i < gcCount; i++ {
			r.MaxGCPauseUs = max(r.MaxGCPauseUs, p.memStats.PauseNs[i%256]/1000)
		}
	}

	common.Logger().Info("profiler",
		"fps", r.FPS,
		"draws", r.Renderer.DrawCalls,
		"draws_per_frame", r.DrawsPerFrame,
		"skipped_frames", r.Renderer.SkippedFrames,
		"pipelines_built", r.Renderer.PipelinesBuilt,
		"buffers_created", r.Renderer.BuffersCreated,
		"heap_mb", r.HeapMB,
		"alloc_rate_mb_s", r.AllocRateMB,
		"gc", r.GCCount,
		"gc_last_pause_us", r.LastGCPauseUs,
		"gc_max_pause_us", r.MaxGCPauseUs,
		"sys_mb", r.SysMB,
	)

	p.last = r
	p.frameCount = 0
	p.lastTime = currentTime
	p.lastGCCount = gcCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}

// LastReport returns the report logged by the most recent Tick that returned true.
func (p *Profiler) LastReport() Report {
	return p.last
}
