package world

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"voxelcore/internal/block"
	"voxelcore/internal/profiling"
)

const (
	MinReachDistance = 0.1
	MaxReachDistance = 5.0
)

// RaycastResult reports the first non-air block along a ray. Adjacent is
// the last air cell before the hit, which is where a placed block goes.
type RaycastResult struct {
	Hit      bool
	Block    [3]int
	Adjacent [3]int
	Type     block.Type
	Distance float32
}

const raycastStep = 0.02

// Raycast marches from start along direction and returns the first solid
// block between minDist and maxDist. Blocks occupy [x,x+1)x[y,y+1)x[z,z+1).
func (w *World) Raycast(start, direction mgl32.Vec3, minDist, maxDist float32) RaycastResult {
	defer profiling.Track("world.Raycast")()

	steps := int(maxDist / raycastStep)
	var lastAir [3]int
	haveAir := false

	for i := 0; i <= steps; i++ {
		dist := float32(i) * raycastStep
		if dist < minDist {
			continue
		}
		p := start.Add(direction.Mul(dist))
		cell := [3]int{
			int(math.Floor(float64(p.X()))),
			int(math.Floor(float64(p.Y()))),
			int(math.Floor(float64(p.Z()))),
		}

		t := w.Block(cell[0], cell[1], cell[2])
		if t != block.Air {
			r := RaycastResult{
				Hit:      true,
				Block:    cell,
				Type:     t,
				Distance: dist,
			}
			if haveAir {
				r.Adjacent = lastAir
			} else {
				r.Adjacent = cell
			}
			return r
		}
		if cell != lastAir || !haveAir {
			lastAir = cell
			haveAir = true
		}
	}
	return RaycastResult{}
}
