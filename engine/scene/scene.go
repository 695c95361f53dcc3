package scene

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-gltf/engine/light"
	"github.com/Carmen-Shannon/oxy-gltf/engine/material"
	"github.com/Carmen-Shannon/oxy-gltf/engine/model"
)

// scene is the implementation of the Scene interface.
type scene struct {
	mu sync.RWMutex

	name   string
	active bool

	nodes           []*model.Node
	materials       []material.Material
	textures        []*material.Texture
	skeletons       []*model.Skeleton
	cameras         []*model.Camera
	lights          []light.Light
	animationGroups []*model.AnimationGroup
}

// Scene is an in-memory container for everything a loader produces: nodes, materials,
// textures, skeletons, cameras, lights and animation groups. Entities are kept in insertion order.
// Thread-safe for concurrent access.
type Scene interface {
	// Name returns the scene's identifier.
	Name() string

	// Active returns whether this scene is currently active.
	Active() bool

	// SetActive sets whether this scene is active.
	SetActive(active bool)

	// AddNode registers a node. Hierarchy is carried by the node itself.
	//
	// Parameters:
	//   - n: the node to add
	AddNode(n *model.Node)

	// Nodes returns every registered node in insertion order.
	Nodes() []*model.Node

	// RootNodes returns registered nodes without a parent.
	RootNodes() []*model.Node

	// MeshNodes returns registered nodes that carry a Mesh.
	MeshNodes() []*model.Node

	// NodeByName returns the first registered node named name, or nil.
	//
	// Parameters:
	//   - name: the node name
	//
	// Returns:
	//   - *model.Node: the node or nil
	NodeByName(name string) *model.Node

	// AddMaterial registers a material.
	//
	// Parameters:
	//   - m: the material to add
	AddMaterial(m material.Material)

	// Materials returns every registered material in insertion order.
	Materials() []material.Material

	// MaterialByName returns the first registered material named name, or nil.
	//
	// Parameters:
	//   - name: the material name
	//
	// Returns:
	//   - material.Material: the material or nil
	MaterialByName(name string) material.Material

	// AddTexture registers a texture.
	//
	// Parameters:
	//   - t: the texture to add
	AddTexture(t *material.Texture)

	// Textures returns every registered texture in insertion order.
	Textures() []*material.Texture

	// AddSkeleton registers a skeleton.
	//
	// Parameters:
	//   - s: the skeleton to add
	AddSkeleton(s *model.Skeleton)

	// Skeletons returns every registered skeleton in insertion order.
	Skeletons() []*model.Skeleton

	// AddCamera registers a camera.
	//
	// Parameters:
	//   - c: the camera to add
	AddCamera(c *model.Camera)

	// Cameras returns every registered camera in insertion order.
	Cameras() []*model.Camera

	// AddLight registers a punctual light.
	//
	// Parameters:
	//   - l: the light to add
	AddLight(l light.Light)

	// Lights returns every registered light in insertion order.
	Lights() []light.Light

	// AddAnimationGroup registers an animation group.
	//
	// Parameters:
	//   - g: the animation group to add
	AddAnimationGroup(g *model.AnimationGroup)

	// AnimationGroups returns every registered animation group in insertion order.
	AnimationGroups() []*model.AnimationGroup

	// Clear removes every registered entity.
	Clear()
}

var _ Scene = &scene{}

// NewScene creates a new, active Scene with the provided options applied.
//
// Parameters:
//   - options: a variadic list of SceneBuilderOption functions to configure the Scene
//
// Returns:
//   - Scene: the new scene
func NewScene(options ...SceneBuilderOption) Scene {
	s := &scene{
		active: true,
	}

	for _, option := range options {
		option(s)
	}
	return s
}

func (s *scene) Name() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name
}

func (s *scene) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

func (s *scene) SetActive(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = active
}

func (s *scene) AddNode(n *model.Node) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nodes = append(s.nodes, n)
}

func (s *scene) Nodes() []*model.Node {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*model.Node(nil), s.nodes...)
}

func (s *scene) RootNodes() []*model.Node {
	var out []*model.Node
	for _, n := range s.Nodes() {
		if n.Parent() == nil {
			out = append(out, n)
		}
	}
	return out
}

func (s *scene) MeshNodes() []*model.Node {
	var out []*model.Node
	for _, n := range s.Nodes() {
		if n.Mesh() != nil {
			out = append(out, n)
		}
	}
	return out
}

func (s *scene) NodeByName(name string) *model.Node {
	for _, n := range s.Nodes() {
		if n.Name() == name {
			return n
		}
	}
	return nil
}

func (s *scene) AddMaterial(m material.Material) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.materials = append(s.materials, m)
}

func (s *scene) Materials() []material.Material {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]material.Material(nil), s.materials...)
}

func (s *scene) MaterialByName(name string) material.Material {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, m := range s.materials {
		if m.Name() == name {
			return m
		}
	}
	return nil
}

func (s *scene) AddTexture(t *material.Texture) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.textures = append(s.textures, t)
}

func (s *scene) Textures() []*material.Texture {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*material.Texture(nil), s.textures...)
}

func (s *scene) AddSkeleton(sk *model.Skeleton) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.skeletons = append(s.skeletons, sk)
}

func (s *scene) Skeletons() []*model.Skeleton {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*model.Skeleton(nil), s.skeletons...)
}

func (s *scene) AddCamera(c *model.Camera) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cameras = append(s.cameras, c)
}

func (s *scene) Cameras() []*model.Camera {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*model.Camera(nil), s.cameras...)
}

func (s *scene) AddLight(l light.Light) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lights = append(s.lights, l)
}

func (s *scene) Lights() []light.Light {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]light.Light(nil), s.lights...)
}

func (s *scene) AddAnimationGroup(g *model.AnimationGroup) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.animationGroups = append(s.animationGroups, g)
}

func (s *scene) AnimationGroups() []*model.AnimationGroup {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*model.AnimationGroup(nil), s.animationGroups...)
}

func (s *scene) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nodes = nil
	s.materials = nil
	s.textures = nil
	s.skeletons = nil
	s.cameras = nil
	s.lights = nil
	s.animationGroups = nil
}
