package world

import (
	"errors"
	"runtime"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"voxelcore/internal/config"
	"voxelcore/internal/metrics"
)

// ErrCloseTimeout is returned when workers do not drain within the shutdown
// deadline.
var ErrCloseTimeout = errors.New("world: streamer close timed out")

// DefaultWorkers returns the worker count used when the config leaves it
// unset.
func DefaultWorkers() int {
	n := runtime.NumCPU() - 1
	if n > 4 {
		n = 4
	}
	if n < 1 {
		n = 1
	}
	return n
}

// Streamer keeps the chunk graph populated around a moving viewer. Each
// frame it evicts chunks outside the unload radius, rescores candidates when
// the view changes, and dispatches loads to a worker pool under a budget
// derived from the previous frame time.
//
// A chunk in flight is never cancelled; a load made stale by viewer movement
// simply completes and is evicted on a later frame.
type Streamer struct {
	world *World
	sched *Scheduler
	cfg   config.StreamConfig
	log   *zap.Logger
	stats *metrics.Streaming

	jobs   chan ChunkPos
	wg     sync.WaitGroup
	closed bool

	pendingMu sync.Mutex
	pending   map[ChunkPos]struct{}
}

// NewStreamer starts the worker pool and returns a streamer ready for
// per-frame Update calls. stats may be nil.
func NewStreamer(w *World, cfg config.StreamConfig, log *zap.Logger, stats *metrics.Streaming) *Streamer {
	workers := cfg.Workers
	if workers <= 0 {
		workers = DefaultWorkers()
	}
	maxPending := cfg.MaxPending
	if maxPending <= 0 {
		maxPending = workers * 8
	}

	s := &Streamer{
		world:   w,
		sched:   NewScheduler(cfg.Weights, cfg.BudgetThresholdsMs, cfg.Budgets),
		cfg:     cfg,
		log:     log.Named("streamer"),
		stats:   stats,
		jobs:    make(chan ChunkPos, maxPending),
		pending: make(map[ChunkPos]struct{}),
	}

	s.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go s.worker(i)
	}
	s.log.Info("worker pool started",
		zap.Int("workers", workers),
		zap.Int("max_pending", maxPending))
	return s
}

// Update runs one streaming frame. frameMs is the duration of the previous
// frame in milliseconds and drives the load budget.
func (s *Streamer) Update(eye, viewDir mgl32.Vec3, frustum FrustumFunc, frameMs float64) {
	if s.closed {
		return
	}
	center := PosFromVec(eye)

	s.evict(center)

	if s.sched.ShouldRebuild(eye, viewDir, time.Now()) {
		s.sched.Rebuild(eye, viewDir, frustum, s.cfg.LoadRadius,
			s.world.graph.Has, s.isPending, s.world.HeightAt)
	}

	budget := s.sched.ComputeBudget(frameMs)
	dispatched := 0
	for _, cand := range s.sched.PollCandidates(budget) {
		if !s.markPending(cand.Pos) {
			continue
		}
		select {
		case s.jobs <- cand.Pos:
			dispatched++
		default:
			// Queue full; release and retry on a later frame.
			s.releasePending(cand.Pos)
		}
	}

	if s.stats != nil {
		s.stats.Loaded.Set(float64(s.world.graph.Len()))
		s.stats.Pending.Set(float64(s.pendingCount()))
		s.stats.Queued.Set(float64(s.sched.QueuedCount()))
		s.stats.Budget.Set(float64(budget))
	}
	if dispatched > 0 {
		s.log.Debug("dispatched chunk loads",
			zap.Int("count", dispatched),
			zap.Int("budget", budget),
			zap.Stringer("center", center))
	}
}

// evict removes chunks beyond the unload radius from the viewer.
func (s *Streamer) evict(center ChunkPos) {
	for _, pos := range s.world.graph.Positions() {
		if center.Chebyshev(pos) > s.cfg.UnloadRadius {
			s.world.UnloadChunk(pos)
			if s.stats != nil {
				s.stats.Evictions.Inc()
			}
		}
	}
}

func (s *Streamer) worker(id int) {
	defer s.wg.Done()
	for pos := range s.jobs {
		s.load(id, pos)
	}
}

// load generates one chunk, recovering from generator panics so a bad seed
// or generator bug cannot take down the pool.
func (s *Streamer) load(id int, pos ChunkPos) {
	defer s.releasePending(pos)
	defer func() {
		if r := recover(); r != nil {
			if s.stats != nil {
				s.stats.Failures.Inc()
			}
			s.log.Error("chunk load panicked",
				zap.Int("worker", id),
				zap.Stringer("pos", pos),
				zap.Any("panic", r))
		}
	}()

	s.world.GetOrCreateChunk(pos)
	if s.stats != nil {
		s.stats.Generated.Inc()
	}
}

func (s *Streamer) markPending(pos ChunkPos) bool {
	s.pendingMu.Lock()
	defer s.pendingMu.Unlock()
	if _, ok := s.pending[pos]; ok {
		return false
	}
	s.pending[pos] = struct{}{}
	return true
}

func (s *Streamer) releasePending(pos ChunkPos) {
	s.pendingMu.Lock()
	delete(s.pending, pos)
	s.pendingMu.Unlock()
}

func (s *Streamer) isPending(pos ChunkPos) bool {
	s.pendingMu.Lock()
	_, ok := s.pending[pos]
	s.pendingMu.Unlock()
	return ok
}

func (s *Streamer) pendingCount() int {
	s.pendingMu.Lock()
	n := len(s.pending)
	s.pendingMu.Unlock()
	return n
}

// PendingCount reports how many loads are queued or in flight.
func (s *Streamer) PendingCount() int {
	return s.pendingCount()
}

// Close stops accepting work and waits for in-flight loads to finish, up to
// timeout.
func (s *Streamer) Close(timeout time.Duration) error {
	if s.closed {
		return nil
	}
	s.closed = true
	close(s.jobs)

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		s.log.Info("worker pool drained")
		return nil
	case <-time.After(timeout):
		s.log.Warn("worker pool drain timed out", zap.Duration("timeout", timeout))
		return ErrCloseTimeout
	}
}
