// Package meshing turns chunk volumes into greedy-merged triangle meshes.
package meshing

// VertexStride is the number of float32 per vertex (pos.xyz + uv + normal.xyz).
const VertexStride = 8

// Mesh is an indexed triangle mesh in chunk-local coordinates. Vertices are
// interleaved position, texture coordinate and normal; every four vertices
// form one quad referenced by six indices.
type Mesh struct {
	Vertices []float32
	Indices  []uint32
}

// EmptyMesh returns the mesh of a chunk with no visible faces.
func EmptyMesh() *Mesh {
	return &Mesh{}
}

// IsEmpty reports whether the mesh holds no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Indices) == 0
}

// QuadCount returns the number of merged quads in the mesh.
func (m *Mesh) QuadCount() int {
	return len(m.Indices) / 6
}
