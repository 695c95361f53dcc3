package material

// AlphaMode selects how a material's alpha channel is interpreted.
type AlphaMode int

const (
	// AlphaOpaque ignores alpha; the surface is fully opaque.
	AlphaOpaque AlphaMode = iota
	// AlphaMask discards fragments whose alpha is below AlphaCutoff.
	AlphaMask
	// AlphaBlend blends the surface over what is behind it.
	AlphaBlend
)

func (a AlphaMode) String() string {
	switch a {
	case AlphaMask:
		return "MASK"
	case AlphaBlend:
		return "BLEND"
	default:
		return "OPAQUE"
	}
}

// Workflow identifies the PBR parameterization a material was authored in.
type Workflow int

const (
	WorkflowMetallicRoughness Workflow = iota
	WorkflowSpecularGlossiness
)

// Material is the engine-side surface description attached to sub-meshes.
// Loader extensions may return any implementation; the built-in one is PBRMaterial.
type Material interface {
	// Name retrieves the material identifier.
	//
	// Returns:
	//   - string: the name of the material
	Name() string

	// Textures retrieves every texture the material references, skipping unset slots.
	//
	// Returns:
	//   - []*Texture: the referenced textures
	Textures() []*Texture
}

// PBRMaterial is a physically based material covering both the metallic-roughness and
// the specular-glossiness workflows.
type PBRMaterial struct {
	name string

	Workflow Workflow

	// AlbedoColor is the linear base (or diffuse) color, Alpha the base opacity.
	AlbedoColor   [3]float32
	Alpha         float32
	AlbedoTexture *Texture

	// MetallicTexture packs metallic in blue and roughness in green when the Use* flags are set.
	Metallic                             float32
	Roughness                            float32
	MetallicTexture                      *Texture
	UseMetallnessFromMetallicTextureBlue bool
	UseRoughnessFromMetallicTextureGreen bool
	UseRoughnessFromMetallicTextureAlpha bool

	// ReflectivityColor and MicroSurface are the specular-glossiness factors.
	ReflectivityColor                       [3]float32
	MicroSurface                            float32
	ReflectivityTexture                     *Texture
	UseMicroSurfaceFromReflectivityMapAlpha bool

	// BumpLevel scales the normal map.
	BumpTexture      *Texture
	BumpLevel        float32
	InvertNormalMapX bool
	InvertNormalMapY bool

	AmbientTexture         *Texture
	AmbientTextureStrength float32
	UseAmbientInGrayScale  bool

	EmissiveColor   [3]float32
	EmissiveTexture *Texture

	AlphaMode                 AlphaMode
	AlphaCutoff               float32
	UseAlphaFromAlbedoTexture bool

	BackFaceCulling  bool
	TwoSidedLighting bool

	// Unlit disables lighting; only the albedo color and texture contribute.
	Unlit bool
}

var _ Material = &PBRMaterial{}

// NewPBRMaterial creates a PBRMaterial with default factors (white, opaque, metallic 0,
// roughness 1, back-face culling on) and the provided options applied.
//
// Parameters:
//   - options: a variadic list of PBRMaterialBuilderOption functions to configure the material
//
// Returns:
//   - *PBRMaterial: the new material
func NewPBRMaterial(options ...PBRMaterialBuilderOption) *PBRMaterial {
	m := &PBRMaterial{
		AlbedoColor:            [3]float32{1, 1, 1},
		Alpha:                  1,
		Metallic:               0,
		Roughness:              1,
		ReflectivityColor:      [3]float32{1, 1, 1},
		MicroSurface:           1,
		BumpLevel:              1,
		AmbientTextureStrength: 1,
		AlphaCutoff:            0.5,
		BackFaceCulling:        true,
	}

	for _, option := range options {
		option(m)
	}
	return m
}

func (m *PBRMaterial) Name() string {
	return m.name
}

func (m *PBRMaterial) Textures() []*Texture {
	var out []*Texture
	for _, t := range []*Texture{
		m.AlbedoTexture,
		m.MetallicTexture,
		m.ReflectivityTexture,
		m.BumpTexture,
		m.AmbientTexture,
		m.EmissiveTexture,
	} {
		if t != nil {
			out = append(out, t)
		}
	}
	return out
}

// NeedsAlphaBlending reports whether the material must be drawn in a transparent pass.
func (m *PBRMaterial) NeedsAlphaBlending() bool {
	return m.AlphaMode == AlphaBlend
}

// NeedsAlphaTesting reports whether the material discards fragments by alpha.
func (m *PBRMaterial) NeedsAlphaTesting() bool {
	return m.AlphaMode == AlphaMask
}
