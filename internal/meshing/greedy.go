package meshing

import (
	"voxelcore/internal/block"
	"voxelcore/internal/world"
)

// Face directions, in emission order.
const (
	dirUp = iota // +Y
	dirDown      // -Y
	dirNorth     // -Z
	dirSouth     // +Z
	dirWest      // -X
	dirEast      // +X
	dirCount
)

// maxPlane is the largest layer mask any direction needs.
const maxPlane = world.ChunkSizeY * world.ChunkSizeX

// Builder generates greedy meshes for chunks. The layer mask is reused
// across calls, so a Builder is not safe for concurrent use; give each
// worker its own.
type Builder struct {
	registry *block.Registry
	mask     []block.Type
}

// NewBuilder creates a mesh builder backed by the given block registry.
func NewBuilder(registry *block.Registry) *Builder {
	return &Builder{
		registry: registry,
		mask:     make([]block.Type, maxPlane),
	}
}

// Build generates the mesh for a chunk. Faces hidden by opaque blocks,
// including blocks in loaded neighbor chunks, are culled; faces against
// unloaded neighbors are emitted. Coordinates are chunk-local.
func (b *Builder) Build(c *world.Chunk) *Mesh {
	m := EmptyMesh()
	if c == nil || c.Empty() {
		return m
	}
	for dir := 0; dir < dirCount; dir++ {
		b.buildDirection(c, dir, m)
	}
	return m
}

// planeDims returns the mask width, mask height and layer count for a
// direction. Width and height index the in-plane axes, depth walks along
// the face normal axis.
func planeDims(dir int) (width, height, depth int) {
	switch dir {
	case dirUp, dirDown:
		return world.ChunkSizeX, world.ChunkSizeZ, world.ChunkSizeY
	case dirNorth, dirSouth:
		return world.ChunkSizeX, world.ChunkSizeY, world.ChunkSizeZ
	default:
		return world.ChunkSizeY, world.ChunkSizeZ, world.ChunkSizeX
	}
}

// cell maps mask coordinates to the block cell and its face-adjacent cell.
func cell(dir, w, h, d int) (x, y, z, ax, ay, az int) {
	switch dir {
	case dirUp:
		x, y, z = w, d, h
		return x, y, z, x, y + 1, z
	case dirDown:
		x, y, z = w, d, h
		return x, y, z, x, y - 1, z
	case dirNorth:
		x, y, z = w, h, d
		return x, y, z, x, y, z - 1
	case dirSouth:
		x, y, z = w, h, d
		return x, y, z, x, y, z + 1
	case dirWest:
		x, y, z = d, w, h
		return x, y, z, x - 1, y, z
	default:
		x, y, z = d, w, h
		return x, y, z, x + 1, y, z
	}
}

func (b *Builder) buildDirection(c *world.Chunk, dir int, m *Mesh) {
	width, height, depth := planeDims(dir)
	mask := b.mask[:width*height]

	for d := 0; d < depth; d++ {
		for i := range mask {
			mask[i] = block.Air
		}

		// Mark visible faces in this layer.
		for h := 0; h < height; h++ {
			for w := 0; w < width; w++ {
				x, y, z, ax, ay, az := cell(dir, w, h, d)
				cur := c.Block(x, y, z)
				if cur == block.Air {
					continue
				}
				adj := c.BlockOrNeighbor(ax, ay, az)
				if adj == block.Air || b.registry.Get(adj).Transparent {
					mask[h*width+w] = cur
				}
			}
		}

		// Merge runs of the same block type into maximal rectangles,
		// extending right first, then down.
		for h := 0; h < height; h++ {
			for w := 0; w < width; {
				t := mask[h*width+w]
				if t == block.Air {
					w++
					continue
				}

				quadW := 1
				for w+quadW < width && mask[h*width+w+quadW] == t {
					quadW++
				}

				quadH := 1
			extend:
				for h+quadH < height {
					for i := 0; i < quadW; i++ {
						if mask[(h+quadH)*width+w+i] != t {
							break extend
						}
					}
					quadH++
				}

				addQuad(m, dir, d, w, h, quadW, quadH)

				for ch := 0; ch < quadH; ch++ {
					for cw := 0; cw < quadW; cw++ {
						mask[(h+ch)*width+w+cw] = block.Air
					}
				}
				w += quadW
			}
		}
	}
}

// addQuad appends one merged quad. Winding keeps the front face
// counter-clockwise seen from outside the chunk; texture coordinates tile
// once per merged block so textures repeat across the quad.
func addQuad(m *Mesh, dir, d, w, h, quadW, quadH int) {
	base := uint32(len(m.Vertices) / VertexStride)

	w0, w1 := float32(w), float32(w+quadW)
	h0, h1 := float32(h), float32(h+quadH)
	u1, v1 := float32(quadW), float32(quadH)

	push := func(x, y, z, u, v, nx, ny, nz float32) {
		m.Vertices = append(m.Vertices, x, y, z, u, v, nx, ny, nz)
	}

	switch dir {
	case dirUp:
		y := float32(d + 1)
		push(w0, y, h0, 0, 0, 0, 1, 0)
		push(w0, y, h1, 0, v1, 0, 1, 0)
		push(w1, y, h1, u1, v1, 0, 1, 0)
		push(w1, y, h0, u1, 0, 0, 1, 0)
	case dirDown:
		y := float32(d)
		push(w0, y, h0, 0, 0, 0, -1, 0)
		push(w1, y, h0, u1, 0, 0, -1, 0)
		push(w1, y, h1, u1, v1, 0, -1, 0)
		push(w0, y, h1, 0, v1, 0, -1, 0)
	case dirNorth:
		z := float32(d)
		push(w0, h0, z, 0, 0, 0, 0, -1)
		push(w0, h1, z, 0, v1, 0, 0, -1)
		push(w1, h1, z, u1, v1, 0, 0, -1)
		push(w1, h0, z, u1, 0, 0, 0, -1)
	case dirSouth:
		z := float32(d + 1)
		push(w0, h0, z, 0, 0, 0, 0, 1)
		push(w1, h0, z, u1, 0, 0, 0, 1)
		push(w1, h1, z, u1, v1, 0, 0, 1)
		push(w0, h1, z, 0, v1, 0, 0, 1)
	case dirWest:
		x := float32(d)
		push(x, w0, h0, 0, 0, -1, 0, 0)
		push(x, w0, h1, u1, 0, -1, 0, 0)
		push(x, w1, h1, u1, v1, -1, 0, 0)
		push(x, w1, h0, 0, v1, -1, 0, 0)
	default: // dirEast
		x := float32(d + 1)
		push(x, w0, h0, 0, 0, 1, 0, 0)
		push(x, w1, h0, 0, v1, 1, 0, 0)
		push(x, w1, h1, u1, v1, 1, 0, 0)
		push(x, w0, h1, u1, 0, 1, 0, 0)
	}

	m.Indices = append(m.Indices,
		base, base+1, base+2,
		base, base+2, base+3,
	)
}
