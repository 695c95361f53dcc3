package loader

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Carmen-Shannon/oxy-gltf/common"
	"github.com/Carmen-Shannon/oxy-gltf/engine/material"
	"github.com/Carmen-Shannon/oxy-gltf/engine/model"

	"go.uber.org/zap"
)

// attributeComponents returns the accepted element widths of a supported attribute
// semantic, nil for semantics the loader does not handle.
func attributeComponents(semantic string) []int {
	switch semantic {
	case "POSITION", "NORMAL":
		return []int{3}
	case "TEXCOORD_0", "TEXCOORD_1":
		return []int{2}
	case "COLOR_0":
		return []int{3, 4}
	case "TANGENT", "JOINTS_0", "JOINTS_1", "WEIGHTS_0", "WEIGHTS_1":
		return []int{4}
	default:
		return nil
	}
}

// assignAttribute copies an attribute stream into its VertexData slot.
func assignAttribute(v *model.VertexData, semantic string, d *AccessorData) {
	switch semantic {
	case "POSITION":
		v.Positions = copyFloats(d)
	case "NORMAL":
		v.Normals = copyFloats(d)
	case "TANGENT":
		v.Tangents = copyFloats(d)
	case "TEXCOORD_0":
		v.UVs = copyFloats(d)
	case "TEXCOORD_1":
		v.UVs2 = copyFloats(d)
	case "COLOR_0":
		v.Colors = colorsToRGBA(d)
	case "JOINTS_0":
		v.Joints = copyUints(d)
	case "JOINTS_1":
		v.JointsExtra = copyUints(d)
	case "WEIGHTS_0":
		v.Weights = copyFloats(d)
	case "WEIGHTS_1":
		v.WeightsExtra = copyFloats(d)
	}
}

// loadMesh returns the engine mesh of glTF mesh index, creating it and scheduling the
// geometry of each primitive on first use.
func (l *gltfLoader) loadMesh(index int) *model.Mesh {
	if m := l.meshes[index]; m != nil {
		return m
	}

	rec := &l.doc.Meshes[index]
	mesh := model.NewMesh(common.Coalesce(rec.Name, fmt.Sprintf("mesh%d", index)))
	l.meshes[index] = mesh

	if len(rec.Primitives) == 0 {
		l.barrier.Fail(parseErrorf("/meshes/%d: mesh has no primitives", index))
		return mesh
	}

	targetNames := morphTargetNames(rec)
	for pi := range rec.Primitives {
		prim := &rec.Primitives[pi]
		path := fmt.Sprintf("/meshes/%d/primitives/%d", index, pi)

		mat, err := l.primitiveMaterial(path, prim)
		if err != nil {
			l.barrier.Fail(err)
			mat = l.DefaultMaterial()
		}

		sub := mesh.AddSubMesh(mat)
		l.barrier.Go(path, func(ctx context.Context) error {
			return l.loadPrimitive(ctx, path, prim, sub, targetNames)
		})
	}
	return mesh
}

// primitiveMaterial resolves the material of a primitive, the default material when it has none.
func (l *gltfLoader) primitiveMaterial(path string, prim *MeshPrimitive) (material.Material, error) {
	if prim.Material == nil {
		return l.DefaultMaterial(), nil
	}
	if err := checkIndex(path+"/material", *prim.Material, len(l.doc.Materials)); err != nil {
		return nil, err
	}
	return l.LoadMaterial(*prim.Material)
}

// loadPrimitive resolves the vertex streams, indices and morph targets of a primitive and
// attaches them to sub. It runs as a barrier task.
func (l *gltfLoader) loadPrimitive(ctx context.Context, path string, prim *MeshPrimitive, sub *model.SubMesh, targetNames []string) error {
	mode := common.Deref(prim.Mode, PrimitiveModeTriangles)
	if mode < PrimitiveModePoints || mode > PrimitiveModeTriangleFan {
		return parseErrorf("%s/mode: invalid primitive mode %d", path, mode)
	}
	if _, ok := prim.Attributes["POSITION"]; !ok {
		return parseErrorf("%s: missing POSITION attribute", path)
	}

	data := &model.VertexData{}
	for semantic, accessor := range prim.Attributes {
		components := attributeComponents(semantic)
		if components == nil {
			l.log.Warn("Ignoring unsupported vertex attribute",
				zap.String("path", path),
				zap.String("semantic", semantic),
			)
			continue
		}

		acc, err := l.resolveAttribute(ctx, fmt.Sprintf("%s/attributes/%s", path, semantic), accessor, components)
		if err != nil {
			return err
		}
		assignAttribute(data, semantic, acc)
	}

	count := data.VertexCount()
	if prim.Indices != nil {
		acc, err := l.resolver.ResolveAccessor(ctx, *prim.Indices)
		if err != nil {
			return err
		}
		data.Indices = copyUints(acc)
	} else {
		data.Indices = make([]uint32, count)
		for i := range data.Indices {
			data.Indices[i] = uint32(i)
		}
	}
	for i, idx := range data.Indices {
		if int(idx) >= count {
			return parseErrorf("%s/indices: index %d at position %d exceeds vertex count %d", path, idx, i, count)
		}
	}

	topology, indices := convertTopology(mode, data.Indices)
	data.Indices = indices

	targets, err := l.loadMorphTargets(ctx, path, prim, data, targetNames)
	if err != nil {
		return err
	}

	if data.Normals == nil && l.opts.computeMissingNormals && topology == model.TopologyTriangles {
		data.GenerateNormals()
	}
	data.ComputeBounds()

	sub.SetGeometry(data, topology, targets)
	return nil
}

// resolveAttribute resolves an attribute accessor and checks its element width.
func (l *gltfLoader) resolveAttribute(ctx context.Context, path string, index int, components []int) (*AccessorData, error) {
	acc, err := l.resolver.ResolveAccessor(ctx, index)
	if err != nil {
		return nil, err
	}
	for _, c := range components {
		if acc.Components() == c {
			return acc, nil
		}
	}
	return nil, parseErrorf("%s: unexpected accessor type %s", path, acc.Type)
}

// loadMorphTargets turns the target displacements of a primitive into absolute values.
func (l *gltfLoader) loadMorphTargets(ctx context.Context, path string, prim *MeshPrimitive, data *model.VertexData, names []string) ([]*model.MorphTarget, error) {
	if len(prim.Targets) == 0 {
		return nil, nil
	}

	targets := make([]*model.MorphTarget, 0, len(prim.Targets))
	for ti, attrs := range prim.Targets {
		target := &model.MorphTarget{Name: fmt.Sprintf("morphTarget%d", ti)}
		if ti < len(names) && names[ti] != "" {
			target.Name = names[ti]
		}
		tpath := fmt.Sprintf("%s/targets/%d", path, ti)

		for semantic, accessor := range attrs {
			var (
				base  []float32
				width int
			)
			switch semantic {
			case "POSITION":
				base, width = data.Positions, 3
			case "NORMAL":
				base, width = data.Normals, 3
			case "TANGENT":
				base, width = data.Tangents, 4
			default:
				l.log.Warn("Ignoring unsupported morph target attribute",
					zap.String("path", tpath),
					zap.String("semantic", semantic),
				)
				continue
			}

			acc, err := l.resolveAttribute(ctx, tpath+"/"+semantic, accessor, []int{3})
			if err != nil {
				return nil, err
			}
			values, err := addDisplacement(tpath, base, width, acc.Float32s())
			if err != nil {
				return nil, err
			}

			switch semantic {
			case "POSITION":
				target.Positions = values
			case "NORMAL":
				target.Normals = values
			case "TANGENT":
				target.Tangents = values
			}
		}
		targets = append(targets, target)
	}
	return targets, nil
}

// --- Helper Functions ---

// morphTargetNames reads mesh.extras.targetNames, the common exporter convention.
func morphTargetNames(mesh *Mesh) []string {
	if len(mesh.Extras) == 0 {
		return nil
	}
	var extras struct {
		TargetNames []string `json:"targetNames"`
	}
	if err := json.Unmarshal(mesh.Extras, &extras); err != nil {
		return nil
	}
	return extras.TargetNames
}

// addDisplacement adds xyz displacements to base values of the given width, producing a
// new xyz stream. A missing base stream is treated as zero.
func addDisplacement(path string, base []float32, width int, delta []float32) ([]float32, error) {
	count := len(delta) / 3
	if base != nil && len(base)/width != count {
		return nil, parseErrorf("%s: %d morph target values for %d vertices", path, count, len(base)/width)
	}

	out := make([]float32, count*3)
	for i := 0; i < count; i++ {
		for c := 0; c < 3; c++ {
			v := delta[i*3+c]
			if base != nil {
				v += base[i*width+c]
			}
			out[i*3+c] = v
		}
	}
	return out, nil
}

// convertTopology turns strips and fans into triangle lists and line loops into line lists.
func convertTopology(mode int, indices []uint32) (model.Topology, []uint32) {
	switch mode {
	case PrimitiveModePoints:
		return model.TopologyPoints, indices
	case PrimitiveModeLines:
		return model.TopologyLines, indices
	case PrimitiveModeLineLoop:
		return model.TopologyLineLoop, indices
	case PrimitiveModeLineStrip:
		return model.TopologyLineStrip, indices
	case PrimitiveModeTriangleStrip:
		if len(indices) < 3 {
			return model.TopologyTriangles, nil
		}
		out := make([]uint32, 0, (len(indices)-2)*3)
		for i := 0; i+2 < len(indices); i++ {
			if i%2 == 0 {
				out = append(out, indices[i], indices[i+1], indices[i+2])
			} else {
				out = append(out, indices[i+1], indices[i], indices[i+2])
			}
		}
		return model.TopologyTriangles, out
	case PrimitiveModeTriangleFan:
		if len(indices) < 3 {
			return model.TopologyTriangles, nil
		}
		out := make([]uint32, 0, (len(indices)-2)*3)
		for i := 1; i+1 < len(indices); i++ {
			out = append(out, indices[0], indices[i], indices[i+1])
		}
		return model.TopologyTriangles, out
	default:
		return model.TopologyTriangles, indices
	}
}

func copyFloats(d *AccessorData) []float32 {
	return append([]float32(nil), d.Float32s()...)
}

func copyUints(d *AccessorData) []uint32 {
	return append([]uint32(nil), d.Uint32s()...)
}

// colorsToRGBA expands RGB colors to RGBA with opaque alpha.
func colorsToRGBA(d *AccessorData) []float32 {
	values := d.Float32s()
	if d.Components() == 4 {
		return append([]float32(nil), values...)
	}
	out := make([]float32, d.Count*4)
	for i := 0; i < d.Count; i++ {
		copy(out[i*4:i*4+3], values[i*3:i*3+3])
		out[i*4+3] = 1
	}
	return out
}
