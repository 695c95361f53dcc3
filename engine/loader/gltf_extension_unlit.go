package loader

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-gltf/common"
	"github.com/Carmen-Shannon/oxy-gltf/engine/material"
)

// ExtensionUnlit is the name of the unlit material extension.
const ExtensionUnlit = "KHR_materials_unlit"

// unlitExtension loads materials that are shaded with their base color only.
// Reference: https://github.com/KhronosGroup/glTF/tree/main/extensions/2.0/Khronos/KHR_materials_unlit
type unlitExtension struct {
	BaseExtension
}

var _ Extension = &unlitExtension{}

// NewUnlitExtension creates the KHR_materials_unlit extension.
//
// Returns:
//   - Extension: the extension, enabled
func NewUnlitExtension() Extension {
	return &unlitExtension{
		BaseExtension: BaseExtension{ExtensionName: ExtensionUnlit},
	}
}

func (e *unlitExtension) LoadMaterial(mc MaterialContext, index int) (material.Material, error) {
	rec := &mc.Document().Materials[index]
	if _, ok := rec.Extensions[e.Name()]; !ok {
		return nil, nil
	}

	path := fmt.Sprintf("/materials/%d", index)
	mat := mc.NewPBRMaterial(index)
	mat.Unlit = true

	if pbr := rec.PBRMetallicRoughness; pbr != nil {
		base := common.Deref(pbr.BaseColorFactor, [4]float32{1, 1, 1, 1})
		mat.AlbedoColor = [3]float32{base[0], base[1], base[2]}
		mat.Alpha = base[3]

		if pbr.BaseColorTexture != nil {
			tex, err := mc.LoadTexture(path+"/pbrMetallicRoughness/baseColorTexture", pbr.BaseColorTexture)
			if err != nil {
				return nil, err
			}
			mat.AlbedoTexture = tex
		}
	}

	if rec.DoubleSided {
		mat.BackFaceCulling = false
		mat.TwoSidedLighting = true
	}

	mc.ApplyAlphaProperties(path, rec, mat)
	return mat, nil
}
