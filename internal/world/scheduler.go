package world

import (
	"container/heap"
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"voxelcore/internal/config"
)

// FrustumFunc reports whether an axis-aligned box intersects the view
// frustum.
type FrustumFunc func(min, max mgl32.Vec3) bool

// HeightFunc returns the generated surface height at a world column.
type HeightFunc func(worldX, worldZ int) int

// Candidate is a chunk position scored for loading.
type Candidate struct {
	Pos      ChunkPos
	Priority float64
}

// Rotation threshold (radians) and staleness interval that force a queue
// rebuild between viewer chunk changes.
const (
	rebuildRotation  = 0.15
	rebuildStaleness = 500 * time.Millisecond
)

const frustumMissScore = 0.25

// Scheduler scores missing chunks around a viewer and hands them out in
// priority order. It is not safe for concurrent use; the streamer owns it.
type Scheduler struct {
	weights    config.PriorityWeights
	thresholds []float64
	budgets    []int

	queue candidateHeap

	lastViewerChunk ChunkPos
	lastViewDir     mgl32.Vec3
	lastRebuild     time.Time
	primed          bool
}

// NewScheduler creates a scheduler with the given scoring weights and
// frame-budget step table. budgets must hold one more entry than
// thresholds.
func NewScheduler(weights config.PriorityWeights, thresholds []float64, budgets []int) *Scheduler {
	return &Scheduler{
		weights:    weights,
		thresholds: thresholds,
		budgets:    budgets,
	}
}

// ShouldRebuild reports whether the queue is stale for the given viewer
// state: the viewer crossed into another chunk, turned more than the
// rotation threshold, or the queue aged past the staleness interval.
func (s *Scheduler) ShouldRebuild(eye mgl32.Vec3, viewDir mgl32.Vec3, now time.Time) bool {
	if !s.primed {
		return true
	}
	if PosFromVec(eye) != s.lastViewerChunk {
		return true
	}
	if angleBetween(viewDir, s.lastViewDir) > rebuildRotation {
		return true
	}
	return now.Sub(s.lastRebuild) >= rebuildStaleness
}

// Rebuild rescores every unloaded, non-pending chunk within the Chebyshev
// radius of the viewer and rebuilds the queue from scratch.
func (s *Scheduler) Rebuild(
	eye mgl32.Vec3,
	viewDir mgl32.Vec3,
	frustum FrustumFunc,
	radius int,
	loaded func(ChunkPos) bool,
	pending func(ChunkPos) bool,
	heightAt HeightFunc,
) {
	center := PosFromVec(eye)
	s.queue = s.queue[:0]

	for dx := -radius; dx <= radius; dx++ {
		for dz := -radius; dz <= radius; dz++ {
			pos := center.Offset(dx, dz)
			if loaded(pos) || pending(pos) {
				continue
			}
			s.queue = append(s.queue, Candidate{
				Pos:      pos,
				Priority: s.score(pos, eye, viewDir, frustum, loaded, heightAt),
			})
		}
	}
	heap.Init(&s.queue)

	s.lastViewerChunk = center
	s.lastViewDir = viewDir
	s.lastRebuild = time.Now()
	s.primed = true
}

// score combines distance, view alignment, frustum visibility, neighbor
// connectivity and height proximity into a single weighted priority.
func (s *Scheduler) score(
	pos ChunkPos,
	eye mgl32.Vec3,
	viewDir mgl32.Vec3,
	frustum FrustumFunc,
	loaded func(ChunkPos) bool,
	heightAt HeightFunc,
) float64 {
	centerX := float32(pos.X*ChunkSizeX + ChunkSizeX/2)
	centerZ := float32(pos.Z*ChunkSizeZ + ChunkSizeZ/2)

	center := PosFromVec(eye)
	planar := math.Hypot(float64(pos.X-center.X), float64(pos.Z-center.Z))
	distScore := 1 / (1 + planar)

	viewScore := 0.0
	toChunk := mgl32.Vec3{centerX - eye.X(), 0, centerZ - eye.Z()}
	if l := toChunk.Len(); l > 1e-6 {
		flatView := mgl32.Vec3{viewDir.X(), 0, viewDir.Z()}
		if fl := flatView.Len(); fl > 1e-6 {
			dot := float64(toChunk.Mul(1 / l).Dot(flatView.Mul(1 / fl)))
			viewScore = math.Max(0, dot)
		}
	}

	// Never zero: an out-of-frustum chunk near the viewer is still worth
	// pre-loading, just less urgently.
	frustumScore := frustumMissScore
	if frustum == nil || frustum(
		mgl32.Vec3{centerX - ChunkSizeX/2, 0, centerZ - ChunkSizeZ/2},
		mgl32.Vec3{centerX + ChunkSizeX/2, ChunkSizeY, centerZ + ChunkSizeZ/2},
	) {
		frustumScore = 1.0
	}

	neighbors := 0
	for _, off := range neighborOffsets {
		if loaded(pos.Offset(off[0], off[1])) {
			neighbors++
		}
	}
	neighborScore := float64(neighbors) / 4

	heightScore := 0.0
	if heightAt != nil {
		surface := heightAt(int(centerX), int(centerZ))
		diff := math.Abs(float64(surface) - float64(eye.Y()))
		heightScore = 1 / (1 + diff/16)
	}

	return s.weights.Distance*distScore +
		s.weights.View*viewScore +
		s.weights.Frustum*frustumScore +
		s.weights.Neighbor*neighborScore +
		s.weights.Height*heightScore
}

// ComputeBudget maps the previous frame time to the number of chunk loads
// allowed this frame, bounded by how many candidates are queued.
func (s *Scheduler) ComputeBudget(frameMs float64) int {
	budget := s.budgets[len(s.budgets)-1]
	for i, threshold := range s.thresholds {
		if frameMs < threshold {
			budget = s.budgets[i]
			break
		}
	}
	if n := s.queue.Len(); budget > n {
		budget = n
	}
	return budget
}

// PollCandidates pops up to n candidates in descending priority order.
func (s *Scheduler) PollCandidates(n int) []Candidate {
	if n > s.queue.Len() {
		n = s.queue.Len()
	}
	if n <= 0 {
		return nil
	}
	out := make([]Candidate, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, heap.Pop(&s.queue).(Candidate))
	}
	return out
}

// QueuedCount returns the number of scored candidates awaiting dispatch.
func (s *Scheduler) QueuedCount() int {
	return s.queue.Len()
}

func angleBetween(a, b mgl32.Vec3) float64 {
	la, lb := a.Len(), b.Len()
	if la < 1e-6 || lb < 1e-6 {
		return 0
	}
	cos := float64(a.Dot(b)) / float64(la*lb)
	return math.Acos(math.Max(-1, math.Min(1, cos)))
}

// candidateHeap orders candidates by descending priority, breaking ties by
// position so dispatch order is deterministic.
type candidateHeap []Candidate

func (h candidateHeap) Len() int { return len(h) }

func (h candidateHeap) Less(i, j int) bool {
	if h[i].Priority != h[j].Priority {
		return h[i].Priority > h[j].Priority
	}
	if h[i].Pos.X != h[j].Pos.X {
		return h[i].Pos.X < h[j].Pos.X
	}
	return h[i].Pos.Z < h[j].Pos.Z
}

func (h candidateHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *candidateHeap) Push(x any) { *h = append(*h, x.(Candidate)) }

func (h *candidateHeap) Pop() any {
	old := *h
	n := len(old)
	c := old[n-1]
	*h = old[:n-1]
	return c
}
