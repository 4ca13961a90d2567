package profiler

import (
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-gpu/engine/renderer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestProfilerReportsPerInterval(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	stats := renderer.Stats{Frames: 10, DrawCalls: 40}

	p := NewProfiler(
		WithClock(clock.now),
		WithInterval(time.Second),
		WithStatsSource(func() renderer.Stats { return stats }),
	)

	for range 29 {
		clock.advance(10 * time.Millisecond)
		assert.False(t, p.Tick())
	}

	stats.Frames += 30
	stats.SkippedFrames += 2
	stats.DrawCalls += 84
	stats.PipelinesBuilt += 3
	clock.advance(710 * time.Millisecond)
	require.True(t, p.Tick())

	r := p.LastReport()
	assert.Equal(t, time.Second, r.Elapsed)
	assert.InDelta(t, 30, r.FPS, 0.001)
	assert.EqualValues(t, 30, r.Renderer.Frames)
	assert.EqualValues(t, 84, r.Renderer.DrawCalls)
	assert.EqualValues(t, 3, r.Renderer.PipelinesBuilt)
	assert.InDelta(t, 3, r.DrawsPerFrame, 0.001)

	// counters restart after each report
	clock.advance(time.Second)
	require.True(t, p.Tick())
	assert.EqualValues(t, 0, p.LastReport().Renderer.DrawCalls)
	assert.InDelta(t, 1, p.LastReport().FPS, 0.001)
}

func TestProfilerWithoutStatsSource(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	p := NewProfiler(WithClock(clock.now), WithInterval(-time.Second))

	clock.advance(time.Second)
	require.True(t, p.Tick())
	assert.Zero(t, p.LastReport().DrawsPerFrame)
	assert.Positive(t, p.LastReport().SysMB)
}
