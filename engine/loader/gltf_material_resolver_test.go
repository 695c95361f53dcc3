package loader

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/Carmen-Shannon/oxy-gltf/engine/material"
	"github.com/Carmen-Shannon/oxy-gltf/engine/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// materialAsset returns two nodes whose meshes share material 0.
func materialAsset(materials ...Material) *testAsset {
	a := newTestAsset()
	a.doc.Materials = materials
	first := a.addTriangleMesh("first", ptr(0))
	second := a.addTriangleMesh("second", ptr(0))
	a.setScene(
		a.addNode(Node{Name: "a", Mesh: ptr(first)}),
		a.addNode(Node{Name: "b", Mesh: ptr(second)}),
	)
	return a
}

func loadMaterial(t *testing.T, a *testAsset, options ...FileLoaderBuilderOption) (scene.Scene, *material.PBRMaterial) {
	t.Helper()
	l := newTestLoader(t, options...)
	s := scene.NewScene()
	require.NoError(t, l.Load(context.Background(), s, a.glb(t), ""))

	mat, ok := s.NodeByName("a").Mesh().SubMeshes()[0].Material().(*material.PBRMaterial)
	require.True(t, ok)
	return s, mat
}

func TestMaterialSharedBetweenPrimitives(t *testing.T) {
	s, mat := loadMaterial(t, materialAsset(Material{}))

	assert.Equal(t, "mat0", mat.Name())
	assert.Same(t, mat, s.NodeByName("b").Mesh().SubMeshes()[0].Material())
	assert.Len(t, s.Materials(), 1)
	assert.Nil(t, s.MaterialByName(DefaultMaterialName))
}

func TestCoreMaterialProperties(t *testing.T) {
	s, mat := loadMaterial(t, materialAsset(Material{
		Name: "paint",
		PBRMetallicRoughness: &PBRMetallicRoughness{
			BaseColorFactor: &[4]float32{1, 0, 0, 0.5},
			MetallicFactor:  ptr(float32(0.25)),
		},
		EmissiveFactor: &[3]float32{0.1, 0.2, 0.3},
		AlphaMode:      AlphaModeMask,
		AlphaCutoff:    ptr(float32(0.3)),
		DoubleSided:    true,
	}))

	assert.Same(t, mat, s.MaterialByName("paint"))
	assert.Equal(t, material.WorkflowMetallicRoughness, mat.Workflow)
	assert.Equal(t, [3]float32{1, 0, 0}, mat.AlbedoColor)
	assert.Equal(t, float32(0.5), mat.Alpha)
	assert.Equal(t, float32(0.25), mat.Metallic)
	assert.Equal(t, float32(1), mat.Roughness)
	assert.Equal(t, [3]float32{0.1, 0.2, 0.3}, mat.EmissiveColor)
	assert.Equal(t, material.AlphaMask, mat.AlphaMode)
	assert.Equal(t, float32(0.3), mat.AlphaCutoff)
	assert.False(t, mat.BackFaceCulling)
	assert.True(t, mat.TwoSidedLighting)
}

func TestCoreMaterialDefaults(t *testing.T) {
	_, mat := loadMaterial(t, materialAsset(Material{
		PBRMetallicRoughness: &PBRMetallicRoughness{BaseColorFactor: &[4]float32{1, 1, 1, 0.2}},
	}))

	assert.Equal(t, float32(1), mat.Metallic)
	assert.Equal(t, float32(1), mat.Roughness)
	assert.Equal(t, material.AlphaOpaque, mat.AlphaMode)
	assert.Equal(t, float32(1), mat.Alpha, "opaque materials ignore the base alpha")
	assert.True(t, mat.BackFaceCulling)
}

func TestCoreMaterialNormalMapHandedness(t *testing.T) {
	a := materialAsset(Material{NormalTexture: &NormalTextureInfo{TextureInfo: TextureInfo{Index: 0}, Scale: ptr(float32(2))}})
	a.doc.Images = []Image{{URI: "n.png"}}
	a.doc.Textures = []Texture{{Source: ptr(0)}}
	fetcher := newMemoryFetcher(map[string][]byte{"n.png": pngBytes(t)})

	_, mat := loadMaterial(t, a, WithFetcher(fetcher))
	require.NotNil(t, mat.BumpTexture)
	assert.Equal(t, float32(2), mat.BumpLevel)
	assert.False(t, mat.InvertNormalMapX)
	assert.True(t, mat.InvertNormalMapY)

	_, mat = loadMaterial(t, a, WithFetcher(fetcher), WithConvertToLeftHanded(true))
	assert.True(t, mat.InvertNormalMapX)
	assert.False(t, mat.InvertNormalMapY)
}

func TestMaterialInvalidTextureFallsBackToDefault(t *testing.T) {
	a := materialAsset(Material{EmissiveTexture: &TextureInfo{Index: 3}})

	l := newTestLoader(t)
	s := scene.NewScene()
	err := l.Load(context.Background(), s, a.glb(t), "")
	assert.ErrorIs(t, err, ErrReference)

	def := s.MaterialByName(DefaultMaterialName)
	require.NotNil(t, def)
	assert.Same(t, def, s.NodeByName("a").Mesh().SubMeshes()[0].Material())
}

func TestUnlitExtension(t *testing.T) {
	a := materialAsset(Material{
		PBRMetallicRoughness: &PBRMetallicRoughness{BaseColorFactor: &[4]float32{0, 1, 0, 1}},
		Extensions:           Extensions{ExtensionUnlit: json.RawMessage(`{}`)},
	})

	_, mat := loadMaterial(t, a)
	assert.True(t, mat.Unlit)
	assert.Equal(t, [3]float32{0, 1, 0}, mat.AlbedoColor)

	_, mat = loadMaterial(t, a, WithDisabledExtensions(ExtensionUnlit))
	assert.False(t, mat.Unlit)
	assert.Equal(t, [3]float32{0, 1, 0}, mat.AlbedoColor)
}

func TestSpecularGlossinessExtension(t *testing.T) {
	a := materialAsset(Material{
		Extensions: Extensions{ExtensionSpecularGlossiness: json.RawMessage(`{
			"diffuseFactor": [0.5, 0.5, 0.5, 1],
			"specularFactor": [0.1, 0.1, 0.1],
			"glossinessFactor": 0.4
		}`)},
	})

	_, mat := loadMaterial(t, a)
	assert.Equal(t, material.WorkflowSpecularGlossiness, mat.Workflow)
	assert.Equal(t, [3]float32{0.5, 0.5, 0.5}, mat.AlbedoColor)
	assert.Equal(t, [3]float32{0.1, 0.1, 0.1}, mat.ReflectivityColor)
	assert.Equal(t, float32(0.4), mat.MicroSurface)
}

func TestSpecularGlossinessInvalidFallsBackToCore(t *testing.T) {
	a := materialAsset(Material{
		Name:       "broken",
		Extensions: Extensions{ExtensionSpecularGlossiness: json.RawMessage(`{"glossinessFactor": "shiny"}`)},
	})

	_, mat := loadMaterial(t, a)
	assert.Equal(t, material.WorkflowMetallicRoughness, mat.Workflow)
	assert.Equal(t, "broken", mat.Name())
}

// funcExtension is a test extension backed by a function.
type funcExtension struct {
	BaseExtension
	load  func(mc MaterialContext, index int) (material.Material, error)
	calls atomic.Int32
}

func newFuncExtension(name string, load func(mc MaterialContext, index int) (material.Material, error)) *funcExtension {
	return &funcExtension{BaseExtension: BaseExtension{ExtensionName: name}, load: load}
}

func (e *funcExtension) LoadMaterial(mc MaterialContext, index int) (material.Material, error) {
	e.calls.Add(1)
	return e.load(mc, index)
}

func TestExtensionOrder(t *testing.T) {
	panicking := newFuncExtension("EXT_panic", func(MaterialContext, int) (material.Material, error) {
		panic("boom")
	})
	failing := newFuncExtension("EXT_fail", func(MaterialContext, int) (material.Material, error) {
		return nil, errors.New("bad data")
	})
	claiming := newFuncExtension("EXT_claim", func(mc MaterialContext, index int) (material.Material, error) {
		mat := mc.NewPBRMaterial(index)
		mat.Unlit = true
		return mat, nil
	})
	unused := newFuncExtension("EXT_unused", func(MaterialContext, int) (material.Material, error) {
		return nil, nil
	})

	_, mat := loadMaterial(t, materialAsset(Material{Name: "custom"}),
		WithExtensions(panicking, failing, claiming, unused))

	assert.True(t, mat.Unlit)
	assert.Equal(t, "custom", mat.Name())
	assert.Equal(t, int32(1), panicking.calls.Load())
	assert.Equal(t, int32(1), failing.calls.Load())
	assert.Equal(t, int32(1), claiming.calls.Load(), "the shared material is built once")
	assert.Equal(t, int32(0), unused.calls.Load())
}

func TestDisabledExtensionSkipped(t *testing.T) {
	claiming := newFuncExtension("EXT_claim", func(mc MaterialContext, index int) (material.Material, error) {
		return mc.NewPBRMaterial(index), nil
	})
	claiming.SetEnabled(false)

	_, mat := loadMaterial(t, materialAsset(Material{}), WithExtensions(claiming))
	require.NotNil(t, mat)
	assert.Equal(t, int32(0), claiming.calls.Load())
}

func TestExtensionRegistry(t *testing.T) {
	r := NewExtensionRegistry(zap.NewNop(), DefaultExtensions()...)

	names := make([]string, 0)
	for _, ext := range r.Extensions() {
		names = append(names, ext.Name())
	}
	assert.Equal(t, []string{ExtensionSpecularGlossiness, ExtensionUnlit, ExtensionLightsPunctual}, names)

	first, ok := r.Extension(ExtensionUnlit)
	require.True(t, ok)
	assert.False(t, r.RegisterExtension(NewUnlitExtension()))
	again, _ := r.Extension(ExtensionUnlit)
	assert.Same(t, first, again)
	assert.Len(t, r.Extensions(), 3)

	assert.True(t, r.Supports(ExtensionUnlit))
	assert.True(t, r.SetEnabled(ExtensionUnlit, false))
	assert.False(t, r.Supports(ExtensionUnlit))
	assert.False(t, r.SetEnabled("EXT_missing", false))

	assert.True(t, r.UnregisterExtension(ExtensionUnlit))
	assert.False(t, r.UnregisterExtension(ExtensionUnlit))
	_, ok = r.Extension(ExtensionUnlit)
	assert.False(t, ok)

	assert.True(t, r.RegisterExtension(NewUnlitExtension()))
	assert.True(t, r.Supports(ExtensionUnlit))
}

func TestRequiredExtensionSupported(t *testing.T) {
	a := materialAsset(Material{Extensions: Extensions{ExtensionUnlit: json.RawMessage(`{}`)}})
	a.doc.ExtensionsUsed = []string{ExtensionUnlit}
	a.doc.ExtensionsRequired = []string{ExtensionUnlit}

	_, mat := loadMaterial(t, a)
	assert.True(t, mat.Unlit)

	l := newTestLoader(t, WithDisabledExtensions(ExtensionUnlit))
	err := l.Load(context.Background(), scene.NewScene(), a.glb(t), "")
	assert.ErrorIs(t, err, ErrParse)
}
