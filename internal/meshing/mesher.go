package meshing

import (
	"sync"

	"voxelcore/internal/world"
)

// Mesher caches built meshes per chunk position and rebuilds them lazily
// when a chunk is marked mesh-dirty. Safe for concurrent use.
type Mesher struct {
	mu      sync.Mutex
	builder *Builder
	meshes  map[world.ChunkPos]*Mesh
}

// NewMesher creates a mesher for a world's block registry. Wire Drop to the
// graph's unload callback so evicted chunks release their meshes.
func NewMesher(b *Builder) *Mesher {
	return &Mesher{
		builder: b,
		meshes:  make(map[world.ChunkPos]*Mesh),
	}
}

// Mesh returns the chunk's mesh, rebuilding it when the chunk is dirty or
// not yet cached. The chunk's mesh-dirty flag is cleared on rebuild.
func (m *Mesher) Mesh(c *world.Chunk) *Mesh {
	m.mu.Lock()
	defer m.mu.Unlock()

	if cached, ok := m.meshes[c.Pos()]; ok && !c.MeshDirty() {
		return cached
	}
	// Clear before reading block data: a mark set while the build runs must
	// survive it and trigger the next rebuild.
	c.ClearMeshDirty()
	mesh := m.builder.Build(c)
	m.meshes[c.Pos()] = mesh
	return mesh
}

// Drop discards the cached mesh for a chunk position.
func (m *Mesher) Drop(pos world.ChunkPos) {
	m.mu.Lock()
	delete(m.meshes, pos)
	m.mu.Unlock()
}

// Len returns the number of cached meshes.
func (m *Mesher) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.meshes)
}
