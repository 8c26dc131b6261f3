// Package frustum extracts view frustum planes from a clip matrix and tests
// axis-aligned boxes against them.
package frustum

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

type plane struct {
	a, b, c, d float32
}

// Frustum holds the six planes of a view frustum in order left, right,
// bottom, top, near, far.
type Frustum struct {
	planes [6]plane
}

// FromClip builds a frustum from a combined projection*view matrix.
func FromClip(clip mgl32.Mat4) *Frustum {
	// mgl32 matrices are column-major
	m00, m01, m02, m03 := clip[0], clip[4], clip[8], clip[12]
	m10, m11, m12, m13 := clip[1], clip[5], clip[9], clip[13]
	m20, m21, m22, m23 := clip[2], clip[6], clip[10], clip[14]
	m30, m31, m32, m33 := clip[3], clip[7], clip[11], clip[15]

	f := &Frustum{}
	f.planes[0] = normalize(plane{m30 + m00, m31 + m01, m32 + m02, m33 + m03})
	f.planes[1] = normalize(plane{m30 - m00, m31 - m01, m32 - m02, m33 - m03})
	f.planes[2] = normalize(plane{m30 + m10, m31 + m11, m32 + m12, m33 + m13})
	f.planes[3] = normalize(plane{m30 - m10, m31 - m11, m32 - m12, m33 - m13})
	f.planes[4] = normalize(plane{m30 + m20, m31 + m21, m32 + m22, m33 + m23})
	f.planes[5] = normalize(plane{m30 - m20, m31 - m21, m32 - m22, m33 - m23})
	return f
}

func normalize(p plane) plane {
	l := float32(math.Sqrt(float64(p.a*p.a + p.b*p.b + p.c*p.c)))
	if l == 0 {
		return p
	}
	return plane{p.a / l, p.b / l, p.c / l, p.d / l}
}

// IntersectsAABB reports whether the box intersects the frustum, testing
// the positive vertex of each plane.
func (f *Frustum) IntersectsAABB(min, max mgl32.Vec3) bool {
	for i := 0; i < 6; i++ {
		p := f.planes[i]
		px := max.X()
		if p.a < 0 {
			px = min.X()
		}
		py := max.Y()
		if p.b < 0 {
			py = min.Y()
		}
		pz := max.Z()
		if p.c < 0 {
			pz = min.Z()
		}
		if p.a*px+p.b*py+p.c*pz+p.d < 0 {
			return false
		}
	}
	return true
}

// TestFunc returns a closure suitable for the chunk scheduler's visibility
// test, inflating boxes by margin blocks to avoid popping at the edges.
func (f *Frustum) TestFunc(margin float32) func(min, max mgl32.Vec3) bool {
	return func(min, max mgl32.Vec3) bool {
		inflatedMin := mgl32.Vec3{min.X() - margin, min.Y() - margin, min.Z() - margin}
		inflatedMax := mgl32.Vec3{max.X() + margin, max.Y() + margin, max.Z() + margin}
		return f.IntersectsAABB(inflatedMin, inflatedMax)
	}
}
