package world

import (
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"voxelcore/internal/block"
	"voxelcore/internal/event"
)

// EditEvent describes a single block edit in world coordinates.
type EditEvent struct {
	X, Y, Z int
	Old     block.Type
	New     block.Type
}

// EditHandler observes a block place or break before it is applied.
// Cancelling the context leaves the world unchanged.
type EditHandler func(ctx *event.Context, e EditEvent)

// World ties the chunk graph, generators and block registry together behind
// a single read/edit surface addressed in world coordinates.
type World struct {
	id       uuid.UUID
	seed     int64
	registry *block.Registry
	graph    *Graph
	terrain  TerrainGenerator
	features FeatureGenerator

	handlerMu     sync.RWMutex
	placeHandlers []EditHandler
	breakHandlers []EditHandler

	log *zap.Logger
}

// Option configures a World at construction.
type Option func(*World)

// WithTerrain overrides the default perlin terrain generator.
func WithTerrain(g TerrainGenerator) Option {
	return func(w *World) { w.terrain = g }
}

// WithFeatures overrides the default feature pass. Passing nil disables
// decoration entirely.
func WithFeatures(g FeatureGenerator) Option {
	return func(w *World) { w.features = g }
}

// WithLogger attaches a logger. Defaults to a no-op logger.
func WithLogger(log *zap.Logger) Option {
	return func(w *World) { w.log = log }
}

// New creates a world with the default perlin terrain and biome features for
// the given seed.
func New(registry *block.Registry, seed int64, opts ...Option) *World {
	terrain := NewPerlinTerrain(seed)
	w := &World{
		id:       uuid.New(),
		seed:     seed,
		registry: registry,
		graph:    NewGraph(),
		terrain:  terrain,
		features: NewBiomeFeatures(seed, terrain),
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.log = w.log.With(zap.String("world", w.id.String()))
	return w
}

// ID returns the unique id assigned to this world instance.
func (w *World) ID() uuid.UUID {
	return w.id
}

// Seed returns the world seed.
func (w *World) Seed() int64 {
	return w.seed
}

// Registry returns the block registry the world was created with.
func (w *World) Registry() *block.Registry {
	return w.registry
}

// Graph returns the chunk graph.
func (w *World) Graph() *Graph {
	return w.graph
}

// OnBlockPlace registers a handler fired when an air cell becomes non-air.
func (w *World) OnBlockPlace(h EditHandler) {
	w.handlerMu.Lock()
	w.placeHandlers = append(w.placeHandlers, h)
	w.handlerMu.Unlock()
}

// OnBlockBreak registers a handler fired when a non-air cell becomes air.
func (w *World) OnBlockBreak(h EditHandler) {
	w.handlerMu.Lock()
	w.breakHandlers = append(w.breakHandlers, h)
	w.handlerMu.Unlock()
}

// Block reads the block at a world position. Unloaded chunks and
// out-of-range heights read as air.
func (w *World) Block(x, y, z int) block.Type {
	if y < 0 || y >= ChunkSizeY {
		return block.Air
	}
	c := w.graph.At(PosFromWorld(x, z))
	if c == nil {
		return block.Air
	}
	return c.Block(mod(x, ChunkSizeX), y, mod(z, ChunkSizeZ))
}

// SetBlock writes the block at a world position, loading the chunk on
// demand. It reports whether the world changed. Out-of-range heights are a
// no-op, as are writes of the current value and edits cancelled by a
// handler.
func (w *World) SetBlock(x, y, z int, t block.Type) bool {
	if y < 0 || y >= ChunkSizeY {
		return false
	}
	c := w.GetOrCreateChunk(PosFromWorld(x, z))
	lx := mod(x, ChunkSizeX)
	lz := mod(z, ChunkSizeZ)

	old := c.Block(lx, y, lz)
	if old == t {
		return false
	}

	e := EditEvent{X: x, Y: y, Z: z, Old: old, New: t}
	switch {
	case old == block.Air && t != block.Air:
		if !w.fire(w.placeHandlersSnapshot(), e) {
			return false
		}
	case old != block.Air && t == block.Air:
		if !w.fire(w.breakHandlersSnapshot(), e) {
			return false
		}
	}

	if !c.SetBlock(lx, y, lz, t) {
		return false
	}
	w.graph.PropagateEdit(c.Pos(), lx, lz)
	return true
}

func (w *World) placeHandlersSnapshot() []EditHandler {
	w.handlerMu.RLock()
	defer w.handlerMu.RUnlock()
	return w.placeHandlers
}

func (w *World) breakHandlersSnapshot() []EditHandler {
	w.handlerMu.RLock()
	defer w.handlerMu.RUnlock()
	return w.breakHandlers
}

// fire runs handlers in registration order and reports whether the edit may
// proceed.
func (w *World) fire(handlers []EditHandler, e EditEvent) bool {
	if len(handlers) == 0 {
		return true
	}
	ctx := event.C()
	for _, h := range handlers {
		h(ctx, e)
		if ctx.Cancelled() {
			break
		}
	}
	ctx.Finish()
	return !ctx.Cancelled()
}

// GetOrCreateChunk returns the chunk at pos, generating it first when it is
// not loaded. Generation is deterministic for a given seed and position.
func (w *World) GetOrCreateChunk(pos ChunkPos) *Chunk {
	if c := w.graph.At(pos); c != nil {
		return c
	}
	c := NewChunk(pos)
	w.terrain.Generate(c)
	if w.features != nil {
		w.features.Decorate(c)
	}
	c.Volume().Compress()
	c.MarkMeshDirty()
	return w.graph.Insert(c)
}

// UnloadChunk removes the chunk at pos from the graph, if loaded.
func (w *World) UnloadChunk(pos ChunkPos) {
	w.graph.Remove(pos)
}

// HeightAt returns the generated surface height at a world column.
func (w *World) HeightAt(worldX, worldZ int) int {
	return w.terrain.HeightAt(worldX, worldZ)
}
