package loader

import (
	"context"

	"github.com/Carmen-Shannon/oxy-gltf/engine/light"
	"github.com/Carmen-Shannon/oxy-gltf/engine/material"
	"github.com/Carmen-Shannon/oxy-gltf/engine/model"
)

// LoaderData is a parsed asset ready to be handed to a versioned loader.
type LoaderData struct {
	// JSON is the document: []byte, string, json.RawMessage, map[string]any, Document or *Document.
	JSON any

	// Bin is the binary container BIN chunk, nil for text input.
	Bin []byte
}

// ImportResult lists what an import added to the target scene.
type ImportResult struct {
	// Nodes are the created scene nodes, the "__root__" node first.
	Nodes []*model.Node

	// MeshNodes are the created nodes that carry a mesh.
	MeshNodes []*model.Node

	Skeletons       []*model.Skeleton
	AnimationGroups []*model.AnimationGroup
}

// TargetScene is the host scene a load registers its objects with. Implementations must be
// safe for concurrent use; a load may add objects from several goroutines.
type TargetScene interface {
	// AddNode registers a scene node.
	AddNode(n *model.Node)

	// AddMaterial registers a material.
	AddMaterial(m material.Material)

	// AddTexture registers a texture.
	AddTexture(t *material.Texture)

	// AddSkeleton registers a skeleton.
	AddSkeleton(s *model.Skeleton)

	// AddCamera registers a camera.
	AddCamera(c *model.Camera)

	// AddLight registers a punctual light.
	AddLight(l light.Light)

	// AddAnimationGroup registers an animation group.
	AddAnimationGroup(g *model.AnimationGroup)

	// MaterialByName returns a previously registered material, or nil.
	//
	// Parameters:
	//   - name: the material name
	//
	// Returns:
	//   - material.Material: the material or nil
	MaterialByName(name string) material.Material
}

// VersionedLoader loads one asset of a specific major glTF version into a scene.
// Instances are single-use: a second load on the same instance fails.
type VersionedLoader interface {
	// ImportMeshAsync loads the nodes named by names (all nodes when empty) together with
	// their subtrees. Exactly one of the callbacks is invoked once the load has settled.
	//
	// Parameters:
	//   - ctx: the context bounding resource fetches
	//   - names: node names to import, nil or empty for everything
	//   - target: the scene receiving the created objects
	//   - data: the parsed asset
	//   - rootURL: the base URL relative resource URIs are resolved against
	//   - onSuccess: called with the import result when no error occurred
	//   - onError: called with the aggregated error otherwise
	ImportMeshAsync(ctx context.Context, names []string, target TargetScene, data *LoaderData, rootURL string, onSuccess func(*ImportResult), onError func(error))

	// LoadAsync loads the whole default scene of the asset.
	//
	// Parameters:
	//   - ctx: the context bounding resource fetches
	//   - target: the scene receiving the created objects
	//   - data: the parsed asset
	//   - rootURL: the base URL relative resource URIs are resolved against
	//   - onSuccess: called when the load completed without error
	//   - onError: called with the aggregated error otherwise
	LoadAsync(ctx context.Context, target TargetScene, data *LoaderData, rootURL string, onSuccess func(), onError func(error))

	// Dispose releases the per-load state. Objects already added to a scene are unaffected.
	Dispose()
}

// LegacyLoaderFactory creates the loader used for major version 1 assets.
type LegacyLoaderFactory func() VersionedLoader
