package loader

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-gltf/common"
	"github.com/Carmen-Shannon/oxy-gltf/engine/material"
)

// ExtensionSpecularGlossiness is the name of the specular-glossiness material extension.
const ExtensionSpecularGlossiness = "KHR_materials_pbrSpecularGlossiness"

// specularGlossinessProperties is the KHR_materials_pbrSpecularGlossiness extension object.
// Reference: https://github.com/KhronosGroup/glTF/tree/main/extensions/2.0/Archived/KHR_materials_pbrSpecularGlossiness
type specularGlossinessProperties struct {
	DiffuseFactor             *[4]float32  `json:"diffuseFactor,omitempty"`
	DiffuseTexture            *TextureInfo `json:"diffuseTexture,omitempty"`
	SpecularFactor            *[3]float32  `json:"specularFactor,omitempty"`
	GlossinessFactor          *float32     `json:"glossinessFactor,omitempty"`
	SpecularGlossinessTexture *TextureInfo `json:"specularGlossinessTexture,omitempty"`
}

// specularGlossinessExtension loads materials that use the specular-glossiness workflow.
type specularGlossinessExtension struct {
	BaseExtension
}

var _ Extension = &specularGlossinessExtension{}

// NewSpecularGlossinessExtension creates the KHR_materials_pbrSpecularGlossiness extension.
//
// Returns:
//   - Extension: the extension, enabled
func NewSpecularGlossinessExtension() Extension {
	return &specularGlossinessExtension{
		BaseExtension: BaseExtension{ExtensionName: ExtensionSpecularGlossiness},
	}
}

func (e *specularGlossinessExtension) LoadMaterial(mc MaterialContext, index int) (material.Material, error) {
	doc := mc.Document()
	rec := &doc.Materials[index]

	var props specularGlossinessProperties
	ok, err := decodeExtension(rec.Extensions, e.Name(), &props)
	if err != nil || !ok {
		return nil, err
	}

	path := fmt.Sprintf("/materials/%d", index)
	extPath := path + "/extensions/" + e.Name()

	mat := mc.NewPBRMaterial(index)
	mat.Workflow = material.WorkflowSpecularGlossiness
	if err := mc.ApplyCommonProperties(path, rec, mat); err != nil {
		return nil, err
	}

	diffuse := common.Deref(props.DiffuseFactor, [4]float32{1, 1, 1, 1})
	mat.AlbedoColor = [3]float32{diffuse[0], diffuse[1], diffuse[2]}
	mat.Alpha = diffuse[3]
	mat.ReflectivityColor = common.Deref(props.SpecularFactor, [3]float32{1, 1, 1})
	mat.MicroSurface = common.Deref(props.GlossinessFactor, 1)

	if props.DiffuseTexture != nil {
		tex, err := mc.LoadTexture(extPath+"/diffuseTexture", props.DiffuseTexture)
		if err != nil {
			return nil, err
		}
		mat.AlbedoTexture = tex
	}

	if props.SpecularGlossinessTexture != nil {
		tex, err := mc.LoadTexture(extPath+"/specularGlossinessTexture", props.SpecularGlossinessTexture)
		if err != nil {
			return nil, err
		}
		tex.HasAlpha = true
		mat.ReflectivityTexture = tex
		mat.UseMicroSurfaceFromReflectivityMapAlpha = true
	}

	mc.ApplyAlphaProperties(path, rec, mat)
	return mat, nil
}
