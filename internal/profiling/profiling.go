// Package profiling is a lightweight per-frame CPU profiler for the
// streaming and meshing pipeline.
package profiling

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

var (
	mu          sync.Mutex
	frameTotals = make(map[string]time.Duration)
)

// Track returns a stop function that records the elapsed time under name.
// Usage: defer profiling.Track("world.GenerateChunk")()
func Track(name string) func() {
	start := time.Now()
	return func() {
		d := time.Since(start)
		mu.Lock()
		frameTotals[name] += d
		mu.Unlock()
	}
}

// ResetFrame clears the per-frame totals. Call at the start of each frame.
func ResetFrame() {
	mu.Lock()
	clear(frameTotals)
	mu.Unlock()
}

// Snapshot returns a copy of the current per-frame totals.
func Snapshot() map[string]time.Duration {
	mu.Lock()
	defer mu.Unlock()
	out := make(map[string]time.Duration, len(frameTotals))
	for k, v := range frameTotals {
		out[k] = v
	}
	return out
}

// SumWithPrefix totals every tracked entry whose name starts with prefix,
// e.g. SumWithPrefix("meshing.") for all meshing work this frame.
func SumWithPrefix(prefix string) time.Duration {
	mu.Lock()
	defer mu.Unlock()
	var total time.Duration
	for k, v := range frameTotals {
		if strings.HasPrefix(k, prefix) {
			total += v
		}
	}
	return total
}

// TopN formats the n largest durations from the current frame totals, e.g.
// "meshing.Build:4.2ms, world.GenerateChunk:2.1ms".
func TopN(n int) string {
	ss := Snapshot()
	type pair struct {
		name string
		dur  time.Duration
	}
	list := make([]pair, 0, len(ss))
	for k, v := range ss {
		list = append(list, pair{name: k, dur: v})
	}
	sort.Slice(list, func(i, j int) bool { return list[i].dur > list[j].dur })
	if n > len(list) {
		n = len(list)
	}
	parts := make([]string, 0, n)
	for i := 0; i < n; i++ {
		ms := float64(list[i].dur.Microseconds()) / 1000.0
		parts = append(parts, fmt.Sprintf("%s:%.1fms", list[i].name, ms))
	}
	return strings.Join(parts, ", ")
}

// FrameTimer measures wall time per frame so the streamer budget can react
// to the previous frame's cost.
type FrameTimer struct {
	last   time.Time
	lastMs float64
}

// NewFrameTimer starts a timer at the current instant.
func NewFrameTimer() *FrameTimer {
	return &FrameTimer{last: time.Now()}
}

// Tick marks a frame boundary and returns the elapsed milliseconds since
// the previous boundary.
func (t *FrameTimer) Tick() float64 {
	now := time.Now()
	t.lastMs = float64(now.Sub(t.last).Microseconds()) / 1000.0
	t.last = now
	return t.lastMs
}

// LastMs returns the most recent frame duration in milliseconds.
func (t *FrameTimer) LastMs() float64 {
	return t.lastMs
}
