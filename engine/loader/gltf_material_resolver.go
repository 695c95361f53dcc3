package loader

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-gltf/common"
	"github.com/Carmen-Shannon/oxy-gltf/engine/material"

	"go.uber.org/zap"
)

// DefaultMaterialName names the material used by primitives without a material.
const DefaultMaterialName = "__gltf_default"

// LoadMaterial returns the material at index, building it on first use. Enabled extensions
// are consulted in registration order before the core metallic-roughness model. Repeated
// calls return the same instance without consulting the extensions again.
//
// Parameters:
//   - index: the material index
//
// Returns:
//   - material.Material: the material
//   - error: a ReferenceError for an invalid index or any error of the core material
func (l *gltfLoader) LoadMaterial(index int) (material.Material, error) {
	if err := checkIndex("/materials", index, len(l.doc.Materials)); err != nil {
		return nil, err
	}

	l.mu.Lock()
	cached := l.materials[index]
	l.mu.Unlock()
	if cached != nil {
		return cached, nil
	}

	var mat material.Material
	for _, ext := range l.opts.registry.Extensions() {
		if !ext.Enabled() {
			continue
		}
		m, err := l.loadExtensionMaterial(ext, index)
		if err != nil {
			l.log.Warn("Material extension declined",
				zap.String("extension", ext.Name()),
				zap.Int("material", index),
				zap.Error(err),
			)
			continue
		}
		if m != nil {
			mat = m
			break
		}
	}

	if mat == nil {
		core, err := l.LoadCoreMaterial(index)
		if err != nil {
			return nil, err
		}
		mat = core
	}

	l.mu.Lock()
	l.materials[index] = mat
	l.mu.Unlock()
	l.target.AddMaterial(mat)
	return mat, nil
}

// loadExtensionMaterial runs one extension, turning a panic into an error.
func (l *gltfLoader) loadExtensionMaterial(ext Extension, index int) (mat material.Material, err error) {
	defer func() {
		if r := recover(); r != nil {
			mat = nil
			err = fmt.Errorf("extension %s panicked: %v", ext.Name(), r)
		}
	}()
	return ext.LoadMaterial(l, index)
}

// LoadCoreMaterial builds material index with the core metallic-roughness model.
//
// Parameters:
//   - index: the material index
//
// Returns:
//   - *material.PBRMaterial: the material
//   - error: error if a referenced texture is invalid
func (l *gltfLoader) LoadCoreMaterial(index int) (*material.PBRMaterial, error) {
	rec := &l.doc.Materials[index]
	path := fmt.Sprintf("/materials/%d", index)

	mat := l.NewPBRMaterial(index)
	if err := l.ApplyCommonProperties(path, rec, mat); err != nil {
		return nil, err
	}
	if err := l.applyMetallicRoughness(path, rec, mat); err != nil {
		return nil, err
	}
	l.ApplyAlphaProperties(path, rec, mat)
	return mat, nil
}

func (l *gltfLoader) NewPBRMaterial(index int) *material.PBRMaterial {
	name := fmt.Sprintf("mat%d", index)
	if index >= 0 && index < len(l.doc.Materials) {
		name = common.Coalesce(l.doc.Materials[index].Name, name)
	}
	return material.NewPBRMaterial(
		material.WithName(name),
		material.WithWorkflow(material.WorkflowMetallicRoughness),
		material.WithMetallicRoughness(1, 1),
	)
}

func (l *gltfLoader) applyMetallicRoughness(path string, rec *Material, mat *material.PBRMaterial) error {
	pbr := rec.PBRMetallicRoughness
	if pbr == nil {
		return nil
	}

	base := common.Deref(pbr.BaseColorFactor, [4]float32{1, 1, 1, 1})
	mat.AlbedoColor = [3]float32{base[0], base[1], base[2]}
	mat.Alpha = base[3]
	mat.Metallic = common.Deref(pbr.MetallicFactor, 1)
	mat.Roughness = common.Deref(pbr.RoughnessFactor, 1)

	if pbr.BaseColorTexture != nil {
		tex, err := l.LoadTexture(path+"/pbrMetallicRoughness/baseColorTexture", pbr.BaseColorTexture)
		if err != nil {
			return err
		}
		mat.AlbedoTexture = tex
		mat.UseAlphaFromAlbedoTexture = true
	}

	if pbr.MetallicRoughnessTexture != nil {
		tex, err := l.LoadTexture(path+"/pbrMetallicRoughness/metallicRoughnessTexture", pbr.MetallicRoughnessTexture)
		if err != nil {
			return err
		}
		mat.MetallicTexture = tex
		mat.UseMetallnessFromMetallicTextureBlue = true
		mat.UseRoughnessFromMetallicTextureGreen = true
		mat.UseRoughnessFromMetallicTextureAlpha = false
	}
	return nil
}

func (l *gltfLoader) ApplyCommonProperties(path string, rec *Material, mat *material.PBRMaterial) error {
	if rec.EmissiveFactor != nil {
		mat.EmissiveColor = *rec.EmissiveFactor
	} else if rec.EmissiveTexture != nil {
		mat.EmissiveColor = [3]float32{1, 1, 1}
	}

	if rec.DoubleSided {
		mat.BackFaceCulling = false
		mat.TwoSidedLighting = true
	}

	if rec.NormalTexture != nil {
		tex, err := l.LoadTexture(path+"/normalTexture", &rec.NormalTexture.TextureInfo)
		if err != nil {
			return err
		}
		mat.BumpTexture = tex
		mat.BumpLevel = common.Deref(rec.NormalTexture.Scale, 1)
		mat.InvertNormalMapX = l.opts.convertToLeftHanded
		mat.InvertNormalMapY = !l.opts.convertToLeftHanded
	}

	if rec.OcclusionTexture != nil {
		tex, err := l.LoadTexture(path+"/occlusionTexture", &rec.OcclusionTexture.TextureInfo)
		if err != nil {
			return err
		}
		mat.AmbientTexture = tex
		mat.AmbientTextureStrength = common.Deref(rec.OcclusionTexture.Strength, 1)
		mat.UseAmbientInGrayScale = true
	}

	if rec.EmissiveTexture != nil {
		tex, err := l.LoadTexture(path+"/emissiveTexture", rec.EmissiveTexture)
		if err != nil {
			return err
		}
		mat.EmissiveTexture = tex
	}
	return nil
}

func (l *gltfLoader) ApplyAlphaProperties(path string, rec *Material, mat *material.PBRMaterial) {
	switch common.Coalesce(rec.AlphaMode, AlphaModeOpaque) {
	case AlphaModeOpaque:
		mat.AlphaMode = material.AlphaOpaque
		mat.Alpha = 1
	case AlphaModeMask:
		mat.AlphaMode = material.AlphaMask
		mat.AlphaCutoff = common.Deref(rec.AlphaCutoff, 0.5)
		if mat.AlbedoTexture != nil {
			mat.AlbedoTexture.HasAlpha = true
		}
	case AlphaModeBlend:
		mat.AlphaMode = material.AlphaBlend
		if mat.AlbedoTexture != nil {
			mat.AlbedoTexture.HasAlpha = true
			mat.UseAlphaFromAlbedoTexture = true
		}
	default:
		l.log.Error("Invalid alpha mode",
			zap.String("path", path+"/alphaMode"),
			zap.String("alpha_mode", rec.AlphaMode),
		)
	}
}

// DefaultMaterial returns the material for primitives without one. A material of the same
// name already present in the target scene is reused.
//
// Returns:
//   - material.Material: the default material
func (l *gltfLoader) DefaultMaterial() material.Material {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.defaultMaterial != nil {
		return l.defaultMaterial
	}
	if existing := l.target.MaterialByName(DefaultMaterialName); existing != nil {
		l.defaultMaterial = existing
		return existing
	}

	l.defaultMaterial = material.NewPBRMaterial(
		material.WithName(DefaultMaterialName),
		material.WithMetallicRoughness(1, 1),
	)
	l.target.AddMaterial(l.defaultMaterial)
	return l.defaultMaterial
}
