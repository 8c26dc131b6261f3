package meshing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voxelcore/internal/block"
	"voxelcore/internal/world"
)

func newBuilder() *Builder {
	return NewBuilder(block.NewRegistry())
}

// quad returns the four vertex positions and the normal of quad i.
func quad(m *Mesh, i int) (pos [4][3]float32, normal [3]float32) {
	base := i * 4 * VertexStride
	for v := 0; v < 4; v++ {
		off := base + v*VertexStride
		pos[v] = [3]float32{m.Vertices[off], m.Vertices[off+1], m.Vertices[off+2]}
	}
	normal = [3]float32{m.Vertices[base+5], m.Vertices[base+6], m.Vertices[base+7]}
	return pos, normal
}

// quadsWithNormal collects the bounding rectangles of all quads facing the
// given direction.
func quadsWithNormal(m *Mesh, nx, ny, nz float32) [][2][3]float32 {
	var out [][2][3]float32
	for i := 0; i < m.QuadCount(); i++ {
		pos, n := quad(m, i)
		if n != [3]float32{nx, ny, nz} {
			continue
		}
		lo, hi := pos[0], pos[0]
		for _, p := range pos[1:] {
			for a := 0; a < 3; a++ {
				if p[a] < lo[a] {
					lo[a] = p[a]
				}
				if p[a] > hi[a] {
					hi[a] = p[a]
				}
			}
		}
		out = append(out, [2][3]float32{lo, hi})
	}
	return out
}

func TestEmptyChunkMesh(t *testing.T) {
	m := newBuilder().Build(world.NewChunk(world.ChunkPos{X: 0, Z: 0}))
	assert.True(t, m.IsEmpty())
	assert.Equal(t, 0, m.QuadCount())
}

func TestSingleBlockMesh(t *testing.T) {
	c := world.NewChunk(world.ChunkPos{X: 0, Z: 0})
	c.SetBlock(3, 10, 5, block.Stone)

	m := newBuilder().Build(c)
	require.Equal(t, 6, m.QuadCount())
	assert.Len(t, m.Vertices, 6*4*VertexStride)
	assert.Len(t, m.Indices, 6*6)
}

func TestSlabMergesIntoSingleQuads(t *testing.T) {
	c := world.NewChunk(world.ChunkPos{X: 0, Z: 0})
	// A 4x1x4 slab floating at y=10.
	for x := 2; x < 6; x++ {
		for z := 2; z < 6; z++ {
			c.SetBlock(x, 10, z, block.Stone)
		}
	}

	m := newBuilder().Build(c)
	// One merged quad for top and bottom, one per side.
	assert.Equal(t, 6, m.QuadCount())

	tops := quadsWithNormal(m, 0, 1, 0)
	require.Len(t, tops, 1)
	assert.Equal(t, [3]float32{2, 11, 2}, tops[0][0])
	assert.Equal(t, [3]float32{6, 11, 6}, tops[0][1])
}

func TestSplitFacesCoverWithoutOverlap(t *testing.T) {
	c := world.NewChunk(world.ChunkPos{X: 0, Z: 0})
	// An L of three blocks: the top surface cannot be one rectangle.
	c.SetBlock(0, 10, 0, block.Stone)
	c.SetBlock(1, 10, 0, block.Stone)
	c.SetBlock(0, 10, 1, block.Stone)

	m := newBuilder().Build(c)
	tops := quadsWithNormal(m, 0, 1, 0)
	require.Len(t, tops, 2)

	var area float32
	for _, q := range tops {
		area += (q[1][0] - q[0][0]) * (q[1][2] - q[0][2])
	}
	assert.Equal(t, float32(3), area, "quads must exactly cover the three exposed cells")

	// The two rectangles must not intersect.
	a, b := tops[0], tops[1]
	overlap := a[0][0] < b[1][0] && b[0][0] < a[1][0] &&
		a[0][2] < b[1][2] && b[0][2] < a[1][2]
	assert.False(t, overlap)
}

func TestCrossChunkFaceCulling(t *testing.T) {
	g := world.NewGraph()
	a := world.NewChunk(world.ChunkPos{X: 0, Z: 0})
	a.SetBlock(world.ChunkSizeX-1, 10, 0, block.Stone)
	g.Insert(a)

	// Without the neighbor the east face renders.
	m := newBuilder().Build(a)
	assert.Equal(t, 6, m.QuadCount())

	// An opaque block just across the seam culls it.
	b := world.NewChunk(world.ChunkPos{X: 1, Z: 0})
	b.SetBlock(0, 10, 0, block.Stone)
	g.Insert(b)
	m = newBuilder().Build(a)
	assert.Equal(t, 5, m.QuadCount())
	assert.Empty(t, quadsWithNormal(m, 1, 0, 0))
}

func TestTransparentNeighborKeepsFace(t *testing.T) {
	c := world.NewChunk(world.ChunkPos{X: 0, Z: 0})
	c.SetBlock(4, 10, 4, block.Stone)
	c.SetBlock(5, 10, 4, block.Leaves)

	m := newBuilder().Build(c)
	// The stone face against leaves stays visible, so the stone still
	// contributes six faces; the leaves block adds its own.
	east := quadsWithNormal(m, 1, 0, 0)
	found := false
	for _, q := range east {
		if q[0] == [3]float32{5, 10, 4} {
			found = true
		}
	}
	assert.True(t, found, "face against a transparent block must be emitted")
}

func TestQuadWindingFacesOutward(t *testing.T) {
	c := world.NewChunk(world.ChunkPos{X: 0, Z: 0})
	c.SetBlock(8, 10, 8, block.Stone)
	m := newBuilder().Build(c)

	for i := 0; i < m.QuadCount(); i++ {
		pos, n := quad(m, i)
		// Cross product of the first triangle's edges must point along
		// the face normal.
		e1 := [3]float32{pos[1][0] - pos[0][0], pos[1][1] - pos[0][1], pos[1][2] - pos[0][2]}
		e2 := [3]float32{pos[2][0] - pos[0][0], pos[2][1] - pos[0][1], pos[2][2] - pos[0][2]}
		cross := [3]float32{
			e1[1]*e2[2] - e1[2]*e2[1],
			e1[2]*e2[0] - e1[0]*e2[2],
			e1[0]*e2[1] - e1[1]*e2[0],
		}
		dot := cross[0]*n[0] + cross[1]*n[1] + cross[2]*n[2]
		assert.Greater(t, dot, float32(0), "quad %d winds against its normal", i)
	}
}

func TestUVTilingMatchesQuadSize(t *testing.T) {
	c := world.NewChunk(world.ChunkPos{X: 0, Z: 0})
	c.SetBlock(0, 10, 0, block.Stone)
	c.SetBlock(1, 10, 0, block.Stone)
	m := newBuilder().Build(c)

	var maxU float32
	for i := 0; i < len(m.Vertices); i += VertexStride {
		if u := m.Vertices[i+3]; u > maxU {
			maxU = u
		}
	}
	assert.Equal(t, float32(2), maxU, "a two-block quad tiles its texture twice")
}

func TestBuildDeterministic(t *testing.T) {
	c := world.NewChunk(world.ChunkPos{X: 0, Z: 0})
	for x := 0; x < world.ChunkSizeX; x++ {
		for z := 0; z < world.ChunkSizeZ; z++ {
			c.SetBlock(x, (x*7+z*13)%4, z, block.Stone)
		}
	}

	a := newBuilder().Build(c)
	b := newBuilder().Build(c)
	assert.Equal(t, a.Vertices, b.Vertices)
	assert.Equal(t, a.Indices, b.Indices)
}

func BenchmarkBuildTerrainChunk(b *testing.B) {
	c := world.NewChunk(world.ChunkPos{X: 0, Z: 0})
	for x := 0; x < world.ChunkSizeX; x++ {
		for z := 0; z < world.ChunkSizeZ; z++ {
			h := 60 + (x+z)%5
			for y := 0; y <= h; y++ {
				c.SetBlock(x, y, z, block.Stone)
			}
		}
	}
	builder := newBuilder()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		builder.Build(c)
	}
}
