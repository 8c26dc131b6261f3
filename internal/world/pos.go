package world

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	// Chunk dimensions
	ChunkSizeX = 16
	ChunkSizeY = 256
	ChunkSizeZ = 16

	ChunkVolume = ChunkSizeX * ChunkSizeY * ChunkSizeZ
)

// ChunkPos identifies a chunk column by its (x, z) chunk coordinates.
// It is used as a map key, so it must stay a comparable value type.
type ChunkPos struct {
	X, Z int
}

// PosFromWorld converts world block coordinates to the containing chunk
// position. Floored division keeps negative coordinates on the correct side
// of the origin; truncated division would not.
func PosFromWorld(worldX, worldZ int) ChunkPos {
	return ChunkPos{
		X: floorDiv(worldX, ChunkSizeX),
		Z: floorDiv(worldZ, ChunkSizeZ),
	}
}

// PosFromVec converts a world-space position vector to a chunk position.
func PosFromVec(v mgl32.Vec3) ChunkPos {
	return PosFromWorld(
		int(math.Floor(float64(v.X()))),
		int(math.Floor(float64(v.Z()))),
	)
}

// Offset returns the chunk position shifted by (dx, dz) chunks.
func (p ChunkPos) Offset(dx, dz int) ChunkPos {
	return ChunkPos{X: p.X + dx, Z: p.Z + dz}
}

// Chebyshev returns max(|dx|, |dz|) to other, the square-radius metric used
// for load and unload decisions.
func (p ChunkPos) Chebyshev(other ChunkPos) int {
	dx := absInt(p.X - other.X)
	dz := absInt(p.Z - other.Z)
	return max(dx, dz)
}

func (p ChunkPos) String() string {
	return fmt.Sprintf("chunk(%d, %d)", p.X, p.Z)
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func mod(a, b int) int {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
