package model

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-gltf/common"
	"github.com/Carmen-Shannon/oxy-gltf/engine/material"

	"github.com/go-gl/mathgl/mgl32"
)

// VertexData holds de-interleaved vertex streams for one SubMesh.
// Every stream is flat: Positions/Normals have 3 floats per vertex, Tangents/Colors 4,
// UVs 2, Joints/Weights 4.
type VertexData struct {
	Positions    []float32
	Normals      []float32
	Tangents     []float32
	UVs          []float32
	UVs2         []float32
	Colors       []float32
	Joints       []uint32
	Weights      []float32
	JointsExtra  []uint32
	WeightsExtra []float32
	Indices      []uint32
	BoundingMin  [3]float32
	BoundingMax  [3]float32
}

// VertexCount returns the number of vertices described by Positions.
func (v *VertexData) VertexCount() int {
	return len(v.Positions) / 3
}

// MorphTarget holds absolute (base + delta) vertex streams for one blend shape.
type MorphTarget struct {
	Name      string
	Positions []float32
	Normals   []float32
	Tangents  []float32
}

// SubMesh is one drawable part of a Mesh with its own material and topology.
type SubMesh struct {
	mu sync.RWMutex

	index        int
	material     material.Material
	topology     Topology
	geometry     *VertexData
	morphTargets []*MorphTarget
}

// Index returns the position of the SubMesh within its Mesh.
func (s *SubMesh) Index() int {
	return s.index
}

func (s *SubMesh) Material() material.Material {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.material
}

func (s *SubMesh) SetMaterial(m material.Material) {
	s.mu.Lock()
	s.material = m
	s.mu.Unlock()
}

func (s *SubMesh) Topology() Topology {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.topology
}

// Geometry returns the vertex data, or nil while it is still loading.
func (s *SubMesh) Geometry() *VertexData {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.geometry
}

func (s *SubMesh) MorphTargets() []*MorphTarget {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.morphTargets
}

// SetGeometry installs loaded vertex data, topology and morph targets.
//
// Parameters:
//   - data: the vertex streams
//   - topology: the primitive assembly mode of data.Indices
//   - targets: the morph targets, may be nil
func (s *SubMesh) SetGeometry(data *VertexData, topology Topology, targets []*MorphTarget) {
	s.mu.Lock()
	s.geometry = data
	s.topology = topology
	s.morphTargets = targets
	s.mu.Unlock()
}

// Mesh is a shared geometry container. Several nodes may reference the same Mesh.
type Mesh struct {
	mu sync.RWMutex

	name      string
	subMeshes []*SubMesh
}

// NewMesh creates an empty Mesh.
//
// Parameters:
//   - name: the mesh name
//
// Returns:
//   - *Mesh: the new mesh
func NewMesh(name string) *Mesh {
	return &Mesh{name: name}
}

func (m *Mesh) Name() string {
	return m.name
}

// AddSubMesh appends a SubMesh that uses mat. Geometry is attached later through SetGeometry.
//
// Parameters:
//   - mat: the material of the new SubMesh
//
// Returns:
//   - *SubMesh: the new SubMesh
func (m *Mesh) AddSubMesh(mat material.Material) *SubMesh {
	m.mu.Lock()
	defer m.mu.Unlock()
	sm := &SubMesh{
		index:    len(m.subMeshes),
		material: mat,
		topology: TopologyTriangles,
	}
	m.subMeshes = append(m.subMeshes, sm)
	return sm
}

func (m *Mesh) SubMeshes() []*SubMesh {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*SubMesh, len(m.subMeshes))
	copy(out, m.subMeshes)
	return out
}

// Bounds merges the bounding boxes of every loaded SubMesh.
func (m *Mesh) Bounds() ([3]float32, [3]float32) {
	var bmin, bmax [3]float32
	first := true
	for _, sm := range m.SubMeshes() {
		g := sm.Geometry()
		if g == nil || g.VertexCount() == 0 {
			continue
		}
		if first {
			bmin, bmax = g.BoundingMin, g.BoundingMax
			first = false
			continue
		}
		for i := 0; i < 3; i++ {
			bmin[i] = min(bmin[i], g.BoundingMin[i])
			bmax[i] = max(bmax[i], g.BoundingMax[i])
		}
	}
	return bmin, bmax
}

// ComputeBounds fills BoundingMin/BoundingMax from Positions.
func (v *VertexData) ComputeBounds() {
	v.BoundingMin, v.BoundingMax = common.BoundingBox(v.Positions)
}

// GenerateNormals computes smooth vertex normals from triangle-list geometry.
// Each face normal is the cross product of two edges, accumulated (area-weighted) onto
// its three vertices and normalized at the end. Degenerate vertices point up.
func (v *VertexData) GenerateNormals() {
	n := v.VertexCount()
	accum := make([]mgl32.Vec3, n)
	p := v.Positions
	at := func(i int) mgl32.Vec3 {
		return mgl32.Vec3{p[i*3], p[i*3+1], p[i*3+2]}
	}

	for i := 0; i+2 < len(v.Indices); i += 3 {
		i0, i1, i2 := int(v.Indices[i]), int(v.Indices[i+1]), int(v.Indices[i+2])
		if i0 >= n || i1 >= n || i2 >= n {
			continue
		}

		p0 := at(i0)
		face := at(i1).Sub(p0).Cross(at(i2).Sub(p0))
		for _, idx := range [3]int{i0, i1, i2} {
			accum[idx] = accum[idx].Add(face)
		}
	}

	v.Normals = make([]float32, n*3)
	for i := range n {
		nrm := common.Normalize3(accum[i], [3]float32{0, 1, 0})
		copy(v.Normals[i*3:], nrm[:])
	}
}
