package world

import "sync"

// Graph owns every loaded chunk, keyed by position. Generation workers
// insert finished chunks while the main thread reads, edits and evicts, so
// the map is guarded by a single lock. Neighbor dirty-marking goes through
// the chunks' atomic mesh-dirty flags and needs no extra ordering.
type Graph struct {
	mu       sync.RWMutex
	chunks   map[ChunkPos]*Chunk
	onUnload func(ChunkPos)
}

// NewGraph creates an empty chunk graph.
func NewGraph() *Graph {
	return &Graph{chunks: make(map[ChunkPos]*Chunk)}
}

// SetUnloadCallback registers a callback fired before a chunk is removed,
// so the renderer can free resources keyed by that position.
func (g *Graph) SetUnloadCallback(fn func(ChunkPos)) {
	g.mu.Lock()
	g.onUnload = fn
	g.mu.Unlock()
}

// At returns the chunk at pos, or nil when not loaded.
func (g *Graph) At(pos ChunkPos) *Chunk {
	g.mu.RLock()
	c := g.chunks[pos]
	g.mu.RUnlock()
	return c
}

// Has reports whether pos is loaded.
func (g *Graph) Has(pos ChunkPos) bool {
	g.mu.RLock()
	_, ok := g.chunks[pos]
	g.mu.RUnlock()
	return ok
}

// Len returns the number of loaded chunks.
func (g *Graph) Len() int {
	g.mu.RLock()
	n := len(g.chunks)
	g.mu.RUnlock()
	return n
}

// Insert adds a fully generated chunk. If the position is already occupied
// the existing chunk wins and is returned. On a successful insert the four
// adjacent chunks are marked mesh-dirty: their border faces may now be
// culled against the new chunk's data.
func (g *Graph) Insert(c *Chunk) *Chunk {
	g.mu.Lock()
	defer g.mu.Unlock()
	if existing, ok := g.chunks[c.pos]; ok {
		return existing
	}
	c.graph = g
	g.chunks[c.pos] = c
	for _, d := range neighborOffsets {
		if nb, ok := g.chunks[c.pos.Offset(d[0], d[1])]; ok {
			nb.MarkMeshDirty()
		}
	}
	return c
}

// Remove evicts the chunk at pos, firing the unload callback first. The
// remaining neighbors are marked mesh-dirty because their shared boundary
// reverts to the world-edge (air) condition.
func (g *Graph) Remove(pos ChunkPos) {
	g.mu.Lock()
	c, ok := g.chunks[pos]
	if !ok {
		g.mu.Unlock()
		return
	}
	cb := g.onUnload
	delete(g.chunks, pos)
	c.graph = nil
	for _, d := range neighborOffsets {
		if nb, ok := g.chunks[pos.Offset(d[0], d[1])]; ok {
			nb.MarkMeshDirty()
		}
	}
	g.mu.Unlock()
	if cb != nil {
		cb(pos)
	}
}

// Positions returns a snapshot of all loaded chunk positions.
func (g *Graph) Positions() []ChunkPos {
	g.mu.RLock()
	out := make([]ChunkPos, 0, len(g.chunks))
	for pos := range g.chunks {
		out = append(out, pos)
	}
	g.mu.RUnlock()
	return out
}

// PropagateEdit marks mesh-dirty every neighbor whose shared boundary
// includes the edited cell at local (lx, lz). Border faces are culled
// against the neighbor's data, so the neighbor's mesh is stale even though
// its own blocks did not change. A corner cell dirties two neighbors.
func (g *Graph) PropagateEdit(pos ChunkPos, lx, lz int) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if lx == 0 {
		if nb, ok := g.chunks[pos.Offset(-1, 0)]; ok {
			nb.MarkMeshDirty()
		}
	}
	if lx == ChunkSizeX-1 {
		if nb, ok := g.chunks[pos.Offset(1, 0)]; ok {
			nb.MarkMeshDirty()
		}
	}
	if lz == 0 {
		if nb, ok := g.chunks[pos.Offset(0, -1)]; ok {
			nb.MarkMeshDirty()
		}
	}
	if lz == ChunkSizeZ-1 {
		if nb, ok := g.chunks[pos.Offset(0, 1)]; ok {
			nb.MarkMeshDirty()
		}
	}
}

// neighborOffsets lists the four horizontal neighbor directions:
// west -X, east +X, north -Z, south +Z.
var neighborOffsets = [4][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}
