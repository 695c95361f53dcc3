package model

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-gltf/common"
	"github.com/Carmen-Shannon/oxy-gltf/engine/light"
)

// Node is a transform node of the scene graph. It may carry a Mesh, a Camera, a Light and a Skeleton.
// Hierarchy and transform mutations are guarded, so nodes can be read while a load is in flight.
type Node struct {
	mu sync.RWMutex

	name     string
	id       string
	parent   *Node
	children []*Node
	enabled  bool

	transform Transform

	mesh         *Mesh
	camera       *Camera
	light        light.Light
	skeleton     *Skeleton
	morphWeights []float32

	metadata map[string]any
}

// NewNode creates a new Node with an identity transform, enabled, and the provided options applied.
//
// Parameters:
//   - options: a variadic list of NodeBuilderOption functions to configure the Node
//
// Returns:
//   - *Node: the new node
func NewNode(options ...NodeBuilderOption) *Node {
	n := &Node{
		enabled:   true,
		transform: IdentityTransform(),
	}

	for _, option := range options {
		option(n)
	}
	return n
}

func (n *Node) Name() string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.name
}

// ID returns the loader-assigned identifier (e.g. "/nodes/3" for glTF nodes).
func (n *Node) ID() string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.id
}

func (n *Node) Parent() *Node {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.parent
}

// Children returns a snapshot of the child list in insertion order.
func (n *Node) Children() []*Node {
	n.mu.RLock()
	defer n.mu.RUnlock()
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

// SetParent re-parents the node, detaching it from any previous parent.
// A nil parent makes the node a root.
//
// Parameters:
//   - parent: the new parent node or nil
func (n *Node) SetParent(parent *Node) {
	n.mu.Lock()
	old := n.parent
	n.parent = parent
	n.mu.Unlock()

	if old != nil {
		old.mu.Lock()
		for i, c := range old.children {
			if c == n {
				old.children = append(old.children[:i], old.children[i+1:]...)
				break
			}
		}
		old.mu.Unlock()
	}

	if parent != nil {
		parent.mu.Lock()
		parent.children = append(parent.children, n)
		parent.mu.Unlock()
	}
}

func (n *Node) Enabled() bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.enabled
}

func (n *Node) SetEnabled(enabled bool) {
	n.mu.Lock()
	n.enabled = enabled
	n.mu.Unlock()
}

func (n *Node) Transform() Transform {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.transform
}

func (n *Node) SetTransform(t Transform) {
	n.mu.Lock()
	n.transform = t
	n.mu.Unlock()
}

// LocalMatrix composes the node transform into a column-major matrix.
func (n *Node) LocalMatrix() [16]float32 {
	t := n.Transform()
	return common.ComposeMatrix(t.Translation, t.Rotation, t.Scale)
}

// WorldMatrix multiplies the local matrices from the root down to this node.
func (n *Node) WorldMatrix() [16]float32 {
	m := n.LocalMatrix()
	for p := n.Parent(); p != nil; p = p.Parent() {
		m = common.MulMatrix(p.LocalMatrix(), m)
	}
	return m
}

func (n *Node) Mesh() *Mesh {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.mesh
}

func (n *Node) SetMesh(m *Mesh) {
	n.mu.Lock()
	n.mesh = m
	n.mu.Unlock()
}

func (n *Node) Camera() *Camera {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.camera
}

func (n *Node) SetCamera(c *Camera) {
	n.mu.Lock()
	n.camera = c
	n.mu.Unlock()
}

// Light returns the punctual light placed by this node, or nil.
func (n *Node) Light() light.Light {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.light
}

func (n *Node) SetLight(l light.Light) {
	n.mu.Lock()
	n.light = l
	n.mu.Unlock()
}

func (n *Node) Skeleton() *Skeleton {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.skeleton
}

func (n *Node) SetSkeleton(s *Skeleton) {
	n.mu.Lock()
	n.skeleton = s
	n.mu.Unlock()
}

// MorphWeights returns a copy of the per-node morph target influences.
func (n *Node) MorphWeights() []float32 {
	n.mu.RLock()
	defer n.mu.RUnlock()
	out := make([]float32, len(n.morphWeights))
	copy(out, n.morphWeights)
	return out
}

func (n *Node) SetMorphWeights(weights []float32) {
	n.mu.Lock()
	n.morphWeights = append([]float32(nil), weights...)
	n.mu.Unlock()
}

// Metadata returns the value stored under key, if any.
func (n *Node) Metadata(key string) (any, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	v, ok := n.metadata[key]
	return v, ok
}

func (n *Node) SetMetadata(key string, value any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.metadata == nil {
		n.metadata = make(map[string]any)
	}
	n.metadata[key] = value
}

// Walk visits the node and its descendants depth-first in child order.
// Returning false from fn stops descending below that node.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.Children() {
		c.Walk(fn)
	}
}
