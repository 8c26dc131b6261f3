package world

import (
	"math"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voxelcore/internal/config"
)

func newTestScheduler() *Scheduler {
	cfg := config.Default().Stream
	return NewScheduler(cfg.Weights, cfg.BudgetThresholdsMs, cfg.Budgets)
}

func none(ChunkPos) bool { return false }

func flatHeight(int, int) int { return 64 }

func TestSchedulerBudgetStepFunction(t *testing.T) {
	s := newTestScheduler()
	s.Rebuild(mgl32.Vec3{0, 64, 0}, mgl32.Vec3{1, 0, 0}, nil, 4, none, none, flatHeight)
	require.Greater(t, s.QueuedCount(), 8)

	assert.Equal(t, 8, s.ComputeBudget(10))
	assert.Equal(t, 6, s.ComputeBudget(15))
	assert.Equal(t, 4, s.ComputeBudget(22))
	assert.Equal(t, 2, s.ComputeBudget(30))
	assert.Equal(t, 1, s.ComputeBudget(40))
	// Exactly on a threshold falls through to the slower tier.
	assert.Equal(t, 6, s.ComputeBudget(14))
}

func TestSchedulerBudgetBoundedByQueue(t *testing.T) {
	s := newTestScheduler()
	assert.Equal(t, 0, s.ComputeBudget(5), "empty queue allows no loads")

	all := func(ChunkPos) bool { return true }
	s.Rebuild(mgl32.Vec3{}, mgl32.Vec3{1, 0, 0}, nil, 3, all, none, flatHeight)
	assert.Equal(t, 0, s.QueuedCount())
	assert.Equal(t, 0, s.ComputeBudget(5))
}

func TestSchedulerPrefersViewAlignedChunks(t *testing.T) {
	s := newTestScheduler()
	eye := mgl32.Vec3{8, 64, 8} // center of chunk (0,0)
	viewDir := mgl32.Vec3{1, 0, 0}

	s.Rebuild(eye, viewDir, nil, 3, none, none, flatHeight)

	// Among chunks at Chebyshev distance 2, the one straight ahead must
	// outrank the one straight behind.
	var aheadRank, behindRank int
	for rank, cand := range s.PollCandidates(s.QueuedCount()) {
		switch cand.Pos {
		case (ChunkPos{2, 0}):
			aheadRank = rank
		case (ChunkPos{-2, 0}):
			behindRank = rank
		}
	}
	assert.Less(t, aheadRank, behindRank)
}

func TestSchedulerSkipsLoadedAndPending(t *testing.T) {
	s := newTestScheduler()
	loaded := func(p ChunkPos) bool { return p == ChunkPos{0, 0} }
	pending := func(p ChunkPos) bool { return p == ChunkPos{1, 0} }

	s.Rebuild(mgl32.Vec3{8, 64, 8}, mgl32.Vec3{1, 0, 0}, nil, 1, loaded, pending, flatHeight)

	for _, cand := range s.PollCandidates(s.QueuedCount()) {
		assert.NotEqual(t, ChunkPos{0, 0}, cand.Pos)
		assert.NotEqual(t, ChunkPos{1, 0}, cand.Pos)
	}
}

func TestSchedulerPollDescendingPriority(t *testing.T) {
	s := newTestScheduler()
	s.Rebuild(mgl32.Vec3{8, 64, 8}, mgl32.Vec3{0, 0, 1}, nil, 4, none, none, flatHeight)

	prev := math.Inf(1)
	for _, cand := range s.PollCandidates(s.QueuedCount()) {
		assert.LessOrEqual(t, cand.Priority, prev)
		prev = cand.Priority
	}
	assert.Equal(t, 0, s.QueuedCount())
}

func TestSchedulerFrustumRaisesPriority(t *testing.T) {
	s := newTestScheduler()
	eye := mgl32.Vec3{8, 64, 8}
	viewDir := mgl32.Vec3{1, 0, 0}
	// Only chunks with positive Z centers count as visible.
	halfSpace := func(min, max mgl32.Vec3) bool { return (min.Z()+max.Z())/2 > 0 }

	s.Rebuild(eye, viewDir, halfSpace, 2, none, none, flatHeight)

	prio := make(map[ChunkPos]float64)
	for _, cand := range s.PollCandidates(s.QueuedCount()) {
		prio[cand.Pos] = cand.Priority
	}
	// {0,2} and {0,-2} are mirrored across the view axis: same distance,
	// both perpendicular to the view direction, same height, no loaded
	// neighbors. Only the frustum term separates them.
	require.Contains(t, prio, ChunkPos{0, 2})
	require.Contains(t, prio, ChunkPos{0, -2})
	assert.Greater(t, prio[ChunkPos{0, 2}], prio[ChunkPos{0, -2}])
}

func TestSchedulerShouldRebuild(t *testing.T) {
	s := newTestScheduler()
	eye := mgl32.Vec3{8, 64, 8}
	dir := mgl32.Vec3{1, 0, 0}

	assert.True(t, s.ShouldRebuild(eye, dir, time.Now()), "unprimed scheduler always rebuilds")

	s.Rebuild(eye, dir, nil, 2, none, none, flatHeight)
	now := time.Now()
	assert.False(t, s.ShouldRebuild(eye, dir, now))

	// Moving within the same chunk does not trigger a rebuild.
	assert.False(t, s.ShouldRebuild(mgl32.Vec3{12, 64, 12}, dir, now))
	// Crossing a chunk border does.
	assert.True(t, s.ShouldRebuild(mgl32.Vec3{20, 64, 8}, dir, now))

	// A small turn stays put, a large one rebuilds.
	small := mgl32.Vec3{float32(math.Cos(0.1)), 0, float32(math.Sin(0.1))}
	large := mgl32.Vec3{float32(math.Cos(0.3)), 0, float32(math.Sin(0.3))}
	assert.False(t, s.ShouldRebuild(eye, small, now))
	assert.True(t, s.ShouldRebuild(eye, large, now))

	// Staleness alone forces a rebuild.
	assert.True(t, s.ShouldRebuild(eye, dir, now.Add(time.Second)))
}
