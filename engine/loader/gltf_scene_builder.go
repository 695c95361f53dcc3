package loader

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-gltf/common"
	"github.com/Carmen-Shannon/oxy-gltf/engine/model"
)

// rootNodeName names the node parenting every loaded scene root.
const rootNodeName = "__root__"

// loadScene builds the default scene below a new root node. When names is non-empty only the
// nodes with a matching name are built (each with its whole subtree).
func (l *gltfLoader) loadScene(names []string) {
	l.root = model.NewNode(
		model.WithName(rootNodeName),
		model.WithID(rootNodeName),
		model.WithEnabled(false),
	)
	if l.opts.convertToLeftHanded {
		t := model.IdentityTransform()
		t.Scale = [3]float32{1, 1, -1}
		l.root.SetTransform(t)
	}
	l.addNode(l.root)

	var filter map[string]bool
	if len(names) > 0 {
		filter = make(map[string]bool, len(names))
		for _, n := range names {
			filter[n] = true
		}
	}

	if len(l.doc.Scenes) == 0 {
		for _, ni := range l.doc.rootNodeIndices() {
			l.loadNode(fmt.Sprintf("/nodes/%d", ni), ni, l.root, filter, filter == nil)
		}
		return
	}

	si := l.doc.SceneIndex()
	if err := checkIndex("/scene", si, len(l.doc.Scenes)); err != nil {
		l.barrier.Fail(err)
		return
	}
	for i, ni := range l.doc.Scenes[si].Nodes {
		l.loadNode(fmt.Sprintf("/scenes/%d/nodes/%d", si, i), ni, l.root, filter, filter == nil)
	}
}

// loadNode visits node index depth-first. When build is false the node is only searched
// for name matches; otherwise it is built with its subtree below parent.
func (l *gltfLoader) loadNode(path string, index int, parent *model.Node, filter map[string]bool, build bool) {
	if err := checkIndex(path, index, len(l.doc.Nodes)); err != nil {
		l.barrier.Fail(err)
		return
	}
	if l.visited[index] {
		l.barrier.Fail(parseErrorf("%s: node %d is visited more than once", path, index))
		return
	}
	l.visited[index] = true

	rec := &l.doc.Nodes[index]
	if !build && filter[rec.Name] {
		build = true
	}

	if !build {
		for ci, child := range rec.Children {
			l.loadNode(fmt.Sprintf("/nodes/%d/children/%d", index, ci), child, parent, filter, false)
		}
		return
	}

	if err := l.validateNode(index, rec); err != nil {
		l.barrier.Fail(err)
		return
	}

	node := model.NewNode(
		model.WithName(common.Coalesce(rec.Name, fmt.Sprintf("node%d", index))),
		model.WithID(fmt.Sprintf("/nodes/%d", index)),
		model.WithTransform(nodeTransform(rec)),
		model.WithEnabled(false),
		model.WithParent(parent),
	)
	l.nodes[index] = node
	l.addNode(node)

	if rec.Mesh != nil {
		mesh := l.loadMesh(*rec.Mesh)
		node.SetMesh(mesh)
		node.SetMorphWeights(l.morphWeights(rec, &l.doc.Meshes[*rec.Mesh]))
		l.meshNodes = append(l.meshNodes, node)
	}

	if rec.Camera != nil {
		cam, err := l.loadCamera(*rec.Camera)
		if err != nil {
			l.barrier.Fail(err)
		} else {
			node.SetCamera(cam)
		}
	}

	if len(rec.Extensions) > 0 {
		l.loadNodeExtensions(index, node)
	}

	for ci, child := range rec.Children {
		l.loadNode(fmt.Sprintf("/nodes/%d/children/%d", index, ci), child, node, filter, true)
	}
}

// loadNodeExtensions runs every enabled node extension named in the node record.
func (l *gltfLoader) loadNodeExtensions(index int, node *model.Node) {
	rec := &l.doc.Nodes[index]
	for _, ext := range l.opts.registry.Extensions() {
		nodeExt, ok := ext.(NodeExtension)
		if !ok || !ext.Enabled() {
			continue
		}
		if _, used := rec.Extensions[ext.Name()]; !used {
			continue
		}
		if err := nodeExt.LoadNode(l, index, node); err != nil {
			l.barrier.Fail(err)
		}
	}
}

// validateNode checks the mesh, skin and camera references of a node.
func (l *gltfLoader) validateNode(index int, rec *Node) error {
	if rec.Mesh != nil {
		if err := checkIndex(fmt.Sprintf("/nodes/%d/mesh", index), *rec.Mesh, len(l.doc.Meshes)); err != nil {
			return err
		}
	}
	if rec.Skin != nil {
		if err := checkIndex(fmt.Sprintf("/nodes/%d/skin", index), *rec.Skin, len(l.doc.Skins)); err != nil {
			return err
		}
	}
	if rec.Camera != nil {
		if err := checkIndex(fmt.Sprintf("/nodes/%d/camera", index), *rec.Camera, len(l.doc.Cameras)); err != nil {
			return err
		}
	}
	return nil
}

func (l *gltfLoader) addNode(n *model.Node) {
	l.built = append(l.built, n)
	l.target.AddNode(n)
}

// morphWeights picks the node weights, then the mesh weights, then zeros for every target.
func (l *gltfLoader) morphWeights(rec *Node, mesh *Mesh) []float32 {
	if len(rec.Weights) > 0 {
		return append([]float32(nil), rec.Weights...)
	}
	if len(mesh.Weights) > 0 {
		return append([]float32(nil), mesh.Weights...)
	}
	if len(mesh.Primitives) > 0 && len(mesh.Primitives[0].Targets) > 0 {
		return make([]float32, len(mesh.Primitives[0].Targets))
	}
	return nil
}

// loadCamera creates the camera at index once.
func (l *gltfLoader) loadCamera(index int) (*model.Camera, error) {
	if cam := l.cameras[index]; cam != nil {
		return cam, nil
	}

	rec := &l.doc.Cameras[index]
	path := fmt.Sprintf("/cameras/%d", index)
	cam := &model.Camera{Name: common.Coalesce(rec.Name, fmt.Sprintf("camera%d", index))}

	switch rec.Type {
	case CameraTypePerspective:
		if rec.Perspective == nil {
			return nil, parseErrorf("%s: missing perspective properties", path)
		}
		cam.Type = model.CameraPerspective
		cam.YFov = rec.Perspective.YFov
		cam.AspectRatio = common.Deref(rec.Perspective.AspectRatio, 0)
		cam.ZNear = rec.Perspective.ZNear
		cam.ZFar = common.Deref(rec.Perspective.ZFar, 0)
	case CameraTypeOrthographic:
		if rec.Orthographic == nil {
			return nil, parseErrorf("%s: missing orthographic properties", path)
		}
		cam.Type = model.CameraOrthographic
		cam.XMag = rec.Orthographic.XMag
		cam.YMag = rec.Orthographic.YMag
		cam.ZNear = rec.Orthographic.ZNear
		cam.ZFar = rec.Orthographic.ZFar
	default:
		return nil, parseErrorf("%s: invalid camera type %q", path, rec.Type)
	}

	l.cameras[index] = cam
	l.target.AddCamera(cam)
	return cam, nil
}

// nodeTransform returns the local transform of a node record: the decomposed matrix when
// present, otherwise TRS with identity defaults.
func nodeTransform(rec *Node) model.Transform {
	if rec.Matrix != nil {
		t, r, s := common.DecomposeMatrix(*rec.Matrix)
		return model.Transform{Translation: t, Rotation: r, Scale: s}
	}

	t := model.IdentityTransform()
	if rec.Translation != nil {
		t.Translation = *rec.Translation
	}
	if rec.Rotation != nil {
		t.Rotation = *rec.Rotation
	}
	if rec.Scale != nil {
		t.Scale = *rec.Scale
	}
	return t
}
