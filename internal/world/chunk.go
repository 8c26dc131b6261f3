package world

import (
	"sync/atomic"

	"voxelcore/internal/block"
)

// Chunk is one 16x256x16 column of the world. Block data lives in a Volume;
// the mesh-dirty flag tracks whether previously built geometry is stale. The
// flag is atomic: generation workers mark neighbors dirty through the graph
// while the main thread reads and clears it during remeshing.
//
// A chunk never stores pointers to its neighbors. Neighbor access resolves
// through the owning Graph's position map, so evicting a chunk is a plain
// map removal with nothing left dangling.
type Chunk struct {
	pos       ChunkPos
	volume    *Volume
	graph     *Graph // set on insertion, nil for free-standing chunks
	meshDirty atomic.Bool
}

// NewChunk creates an all-air chunk at the given position.
func NewChunk(pos ChunkPos) *Chunk {
	c := &Chunk{
		pos:    pos,
		volume: NewVolume(ChunkVolume),
	}
	c.meshDirty.Store(true)
	return c
}

// blockIndex converts local coordinates to the flat volume index.
func blockIndex(x, y, z int) int {
	return y*ChunkSizeX*ChunkSizeZ + z*ChunkSizeX + x
}

// Pos returns the chunk position.
func (c *Chunk) Pos() ChunkPos {
	return c.pos
}

// Volume exposes the backing storage for the retention policy
// (Compress/DiscardCache on distant chunks).
func (c *Chunk) Volume() *Volume {
	return c.volume
}

// Block returns the block at local coordinates, or air when out of range.
// Speculative out-of-range reads are common during meshing and targeting and
// must stay cheap no-ops.
func (c *Chunk) Block(x, y, z int) block.Type {
	if x < 0 || x >= ChunkSizeX || y < 0 || y >= ChunkSizeY || z < 0 || z >= ChunkSizeZ {
		return block.Air
	}
	return c.volume.Get(blockIndex(x, y, z))
}

// SetBlock writes the block at local coordinates and reports whether the
// value changed. Out-of-range writes are no-ops.
func (c *Chunk) SetBlock(x, y, z int, t block.Type) bool {
	if x < 0 || x >= ChunkSizeX || y < 0 || y >= ChunkSizeY || z < 0 || z >= ChunkSizeZ {
		return false
	}
	idx := blockIndex(x, y, z)
	if c.volume.Get(idx) == t {
		return false
	}
	c.volume.Set(idx, t)
	c.meshDirty.Store(true)
	return true
}

// BlockOrNeighbor returns the block at local coordinates that may fall
// outside this chunk's horizontal extent, resolving into the adjacent chunk
// through the graph. Missing neighbors and out-of-range Y read as air, which
// makes faces at the world edge render until the neighbor streams in.
func (c *Chunk) BlockOrNeighbor(x, y, z int) block.Type {
	if y < 0 || y >= ChunkSizeY {
		return block.Air
	}
	if x >= 0 && x < ChunkSizeX && z >= 0 && z < ChunkSizeZ {
		return c.volume.Get(blockIndex(x, y, z))
	}
	if c.graph == nil {
		return block.Air
	}
	switch {
	case x < 0:
		if nb := c.graph.At(c.pos.Offset(-1, 0)); nb != nil {
			return nb.Block(ChunkSizeX-1, y, z)
		}
	case x >= ChunkSizeX:
		if nb := c.graph.At(c.pos.Offset(1, 0)); nb != nil {
			return nb.Block(0, y, z)
		}
	case z < 0:
		if nb := c.graph.At(c.pos.Offset(0, -1)); nb != nil {
			return nb.Block(x, y, ChunkSizeZ-1)
		}
	case z >= ChunkSizeZ:
		if nb := c.graph.At(c.pos.Offset(0, 1)); nb != nil {
			return nb.Block(x, y, 0)
		}
	}
	return block.Air
}

// MeshDirty reports whether the chunk needs remeshing.
func (c *Chunk) MeshDirty() bool {
	return c.meshDirty.Load()
}

// MarkMeshDirty flags the chunk for remeshing.
func (c *Chunk) MarkMeshDirty() {
	c.meshDirty.Store(true)
}

// ClearMeshDirty marks the current mesh as up to date.
func (c *Chunk) ClearMeshDirty() {
	c.meshDirty.Store(false)
}

// Empty reports whether every cell is air.
func (c *Chunk) Empty() bool {
	for i := 0; i < c.volume.Len(); i++ {
		if c.volume.Get(i) != block.Air {
			return false
		}
	}
	return true
}
