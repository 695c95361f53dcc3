package model

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-gltf/common"
)

// Bone represents a single joint in a skeleton hierarchy.
type Bone struct {
	// Name is the bone's identifier (for debugging and animation targeting).
	Name string

	// Index is the bone's position in Skeleton.Bones, matching vertex joint indices.
	Index int

	// ParentIndex is the index of the parent bone (-1 for root bones).
	ParentIndex int

	// InverseBindMatrix transforms from model space to bone space at bind pose.
	InverseBindMatrix [16]float32

	// BindLocalMatrix is the bone's bind pose relative to its parent bone.
	BindLocalMatrix [16]float32

	// LocalTransform is the joint node's transform at load time.
	LocalTransform Transform

	// Node is the scene node driving this bone, nil when the joint node was not built.
	Node *Node
}

// Skeleton represents a bone hierarchy for skinned meshes.
// Bone order is the joint order of the source skin so vertex joint indices stay valid.
type Skeleton struct {
	mu sync.RWMutex

	name  string
	id    string
	bones []*Bone
	ready bool
}

// NewSkeleton creates an empty Skeleton.
//
// Parameters:
//   - name: the skeleton name
//   - id: the loader-assigned identifier
//
// Returns:
//   - *Skeleton: the new skeleton
func NewSkeleton(name, id string) *Skeleton {
	return &Skeleton{name: name, id: id}
}

func (s *Skeleton) Name() string {
	return s.name
}

func (s *Skeleton) ID() string {
	return s.id
}

// AddBone appends a bone; its Index is set to the new position.
func (s *Skeleton) AddBone(b *Bone) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b.Index = len(s.bones)
	s.bones = append(s.bones, b)
}

func (s *Skeleton) Bones() []*Bone {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Bone, len(s.bones))
	copy(out, s.bones)
	return out
}

// BoneByName returns the first bone named name.
func (s *Skeleton) BoneByName(name string) (*Bone, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, b := range s.bones {
		if b.Name == name {
			return b, true
		}
	}
	return nil, false
}

// Ready reports whether inverse bind matrices have been bound.
func (s *Skeleton) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

// BindInverseBindMatrices sets every bone's inverse bind matrix and derives the bind-local
// matrices (parent IBM * inverse(own IBM)). A nil slice binds identity matrices.
//
// Parameters:
//   - matrices: one column-major matrix per bone, or nil
func (s *Skeleton) BindInverseBindMatrices(matrices [][16]float32) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, b := range s.bones {
		if i < len(matrices) {
			b.InverseBindMatrix = matrices[i]
		} else {
			b.InverseBindMatrix = common.IdentityMatrix()
		}
	}
	for _, b := range s.bones {
		local := common.InvertMatrix(b.InverseBindMatrix)
		if b.ParentIndex >= 0 && b.ParentIndex < len(s.bones) {
			local = common.MulMatrix(s.bones[b.ParentIndex].InverseBindMatrix, local)
		}
		b.BindLocalMatrix = local
	}
	s.ready = true
}

// RootBoneIndices returns the indices of bones without a parent.
func (s *Skeleton) RootBoneIndices() []int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var roots []int
	for i, b := range s.bones {
		if b.ParentIndex < 0 {
			roots = append(roots, i)
		}
	}
	return roots
}

// SortedBoneOrder returns bone indices ordered so parents precede their children.
// Consumers computing world matrices iterate this order and multiply by the parent's
// already-computed result. Bones unreachable from a root are appended at the end.
func (s *Skeleton) SortedBoneOrder() []int {
	roots := s.RootBoneIndices()

	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.bones) == 0 {
		return nil
	}

	children := make(map[int][]int)
	for i, b := range s.bones {
		if b.ParentIndex >= 0 {
			children[b.ParentIndex] = append(children[b.ParentIndex], i)
		}
	}

	sorted := make([]int, 0, len(s.bones))
	visited := make([]bool, len(s.bones))
	queue := append([]int(nil), roots...)
	for len(queue) > 0 {
		idx := queue[0]
		queue = queue[1:]
		if visited[idx] {
			continue
		}
		visited[idx] = true
		sorted = append(sorted, idx)
		queue = append(queue, children[idx]...)
	}

	for i := range s.bones {
		if !visited[i] {
			sorted = append(sorted, i)
		}
	}
	return sorted
}
