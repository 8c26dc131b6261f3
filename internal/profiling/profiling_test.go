package profiling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackAccumulatesPerFrame(t *testing.T) {
	ResetFrame()

	stop := Track("world.GenerateChunk")
	time.Sleep(2 * time.Millisecond)
	stop()

	stop = Track("world.GenerateChunk")
	time.Sleep(2 * time.Millisecond)
	stop()

	snap := Snapshot()
	require.Contains(t, snap, "world.GenerateChunk")
	assert.GreaterOrEqual(t, snap["world.GenerateChunk"], 4*time.Millisecond)

	ResetFrame()
	assert.Empty(t, Snapshot())
}

func TestSumWithPrefix(t *testing.T) {
	ResetFrame()

	mu.Lock()
	frameTotals["meshing.Build"] = 3 * time.Millisecond
	frameTotals["meshing.Upload"] = 2 * time.Millisecond
	frameTotals["world.Raycast"] = time.Millisecond
	mu.Unlock()

	assert.Equal(t, 5*time.Millisecond, SumWithPrefix("meshing."))
	assert.Equal(t, time.Millisecond, SumWithPrefix("world."))
	assert.Zero(t, SumWithPrefix("render."))
}

func TestTopNOrdersDescending(t *testing.T) {
	ResetFrame()

	mu.Lock()
	frameTotals["a"] = time.Millisecond
	frameTotals["b"] = 5 * time.Millisecond
	frameTotals["c"] = 3 * time.Millisecond
	mu.Unlock()

	assert.Equal(t, "b:5.0ms, c:3.0ms", TopN(2))
	assert.Equal(t, "", TopN(0))
}

func TestFrameTimerTick(t *testing.T) {
	ft := NewFrameTimer()
	time.Sleep(5 * time.Millisecond)

	ms := ft.Tick()
	assert.GreaterOrEqual(t, ms, 4.0)
	assert.Equal(t, ms, ft.LastMs())
}
