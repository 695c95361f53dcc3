// gltf_types.go contains the glTF 2.0 document model used for JSON deserialization.
// Index cross-references stay plain integers into the root arrays; anything the loader
// builds from a record is tracked in per-load slots, never on the records themselves.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html
package loader

import "encoding/json"

// Extensions holds raw extension objects keyed by extension name.
type Extensions map[string]json.RawMessage

// --- glTF Root Structure ---

// Document represents the root of a glTF JSON document.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#reference-gltf
type Document struct {
	Accessors          []Accessor   `json:"accessors,omitempty"`
	Animations         []Animation  `json:"animations,omitempty"`
	Asset              Asset        `json:"asset"`
	Buffers            []Buffer     `json:"buffers,omitempty"`
	BufferViews        []BufferView `json:"bufferViews,omitempty"`
	Cameras            []Camera     `json:"cameras,omitempty"`
	Images             []Image      `json:"images,omitempty"`
	Materials          []Material   `json:"materials,omitempty"`
	Meshes             []Mesh       `json:"meshes,omitempty"`
	Nodes              []Node       `json:"nodes,omitempty"`
	Samplers           []Sampler    `json:"samplers,omitempty"`
	Scene              *int         `json:"scene,omitempty"`
	Scenes             []Scene      `json:"scenes,omitempty"`
	Skins              []Skin       `json:"skins,omitempty"`
	Textures           []Texture    `json:"textures,omitempty"`
	ExtensionsUsed     []string     `json:"extensionsUsed,omitempty"`
	ExtensionsRequired []string     `json:"extensionsRequired,omitempty"`

	Extensions Extensions      `json:"extensions,omitempty"`
	Extras     json.RawMessage `json:"extras,omitempty"`
}

// --- Asset Metadata ---

// Asset contains metadata about the glTF asset.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#reference-asset
type Asset struct {
	Copyright  string `json:"copyright,omitempty"`
	Generator  string `json:"generator,omitempty"`
	Version    string `json:"version"`
	MinVersion string `json:"minVersion,omitempty"`
}

// --- Scene Graph ---

// Scene is a set of root nodes.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#reference-scene
type Scene struct {
	Name  string `json:"name,omitempty"`
	Nodes []int  `json:"nodes,omitempty"`
}

// Node is a node in the node hierarchy. When Matrix is set it takes precedence over TRS.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#reference-node
type Node struct {
	Name        string       `json:"name,omitempty"`
	Camera      *int         `json:"camera,omitempty"`
	Children    []int        `json:"children,omitempty"`
	Skin        *int         `json:"skin,omitempty"`
	Matrix      *[16]float32 `json:"matrix,omitempty"`
	Mesh        *int         `json:"mesh,omitempty"`
	Rotation    *[4]float32  `json:"rotation,omitempty"`
	Scale       *[3]float32  `json:"scale,omitempty"`
	Translation *[3]float32  `json:"translation,omitempty"`
	Weights     []float32    `json:"weights,omitempty"`
	Extensions  Extensions   `json:"extensions,omitempty"`
}

// --- Mesh Data ---

// Mesh is a set of primitives to be rendered.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#reference-mesh
type Mesh struct {
	Name       string          `json:"name,omitempty"`
	Primitives []MeshPrimitive `json:"primitives"`
	Weights    []float32       `json:"weights,omitempty"`
	Extensions Extensions      `json:"extensions,omitempty"`
	Extras     json.RawMessage `json:"extras,omitempty"`
}

// MeshPrimitive defines geometry for rendering.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#reference-mesh-primitive
type MeshPrimitive struct {
	Attributes map[string]int   `json:"attributes"`
	Indices    *int             `json:"indices,omitempty"`
	Material   *int             `json:"material,omitempty"`
	Mode       *int             `json:"mode,omitempty"`
	Targets    []map[string]int `json:"targets,omitempty"`
	Extensions Extensions       `json:"extensions,omitempty"`
}

// Primitive mode constants.
const (
	PrimitiveModePoints        = 0
	PrimitiveModeLines         = 1
	PrimitiveModeLineLoop      = 2
	PrimitiveModeLineStrip     = 3
	PrimitiveModeTriangles     = 4
	PrimitiveModeTriangleStrip = 5
	PrimitiveModeTriangleFan   = 6
)

// --- Buffer Data ---

// ComponentType is the numeric type of accessor components.
type ComponentType int

// Component type constants.
const (
	ComponentTypeByte          ComponentType = 5120
	ComponentTypeUnsignedByte  ComponentType = 5121
	ComponentTypeShort         ComponentType = 5122
	ComponentTypeUnsignedShort ComponentType = 5123
	ComponentTypeUnsignedInt   ComponentType = 5125
	ComponentTypeFloat         ComponentType = 5126
)

// Size returns the byte size of one component, or 0 for unknown types.
func (c ComponentType) Size() int {
	switch c {
	case ComponentTypeByte, ComponentTypeUnsignedByte:
		return 1
	case ComponentTypeShort, ComponentTypeUnsignedShort:
		return 2
	case ComponentTypeUnsignedInt, ComponentTypeFloat:
		return 4
	default:
		return 0
	}
}

func (c ComponentType) String() string {
	switch c {
	case ComponentTypeByte:
		return "BYTE"
	case ComponentTypeUnsignedByte:
		return "UNSIGNED_BYTE"
	case ComponentTypeShort:
		return "SHORT"
	case ComponentTypeUnsignedShort:
		return "UNSIGNED_SHORT"
	case ComponentTypeUnsignedInt:
		return "UNSIGNED_INT"
	case ComponentTypeFloat:
		return "FLOAT"
	default:
		return "UNKNOWN"
	}
}

// AccessorType is the element shape of an accessor.
type AccessorType string

// Accessor type constants.
const (
	AccessorScalar AccessorType = "SCALAR"
	AccessorVec2   AccessorType = "VEC2"
	AccessorVec3   AccessorType = "VEC3"
	AccessorVec4   AccessorType = "VEC4"
	AccessorMat2   AccessorType = "MAT2"
	AccessorMat3   AccessorType = "MAT3"
	AccessorMat4   AccessorType = "MAT4"
)

// ComponentCount returns the number of components per element, or 0 for unknown types.
func (a AccessorType) ComponentCount() int {
	switch a {
	case AccessorScalar:
		return 1
	case AccessorVec2:
		return 2
	case AccessorVec3:
		return 3
	case AccessorVec4, AccessorMat2:
		return 4
	case AccessorMat3:
		return 9
	case AccessorMat4:
		return 16
	default:
		return 0
	}
}

// columns returns the matrix column count, 0 for non-matrix types.
func (a AccessorType) columns() int {
	switch a {
	case AccessorMat2:
		return 2
	case AccessorMat3:
		return 3
	case AccessorMat4:
		return 4
	default:
		return 0
	}
}

// Accessor defines how to interpret buffer data.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#reference-accessor
type Accessor struct {
	Name          string          `json:"name,omitempty"`
	BufferView    *int            `json:"bufferView,omitempty"`
	ByteOffset    int             `json:"byteOffset,omitempty"`
	ComponentType ComponentType   `json:"componentType"`
	Normalized    bool            `json:"normalized,omitempty"`
	Count         int             `json:"count"`
	Type          AccessorType    `json:"type"`
	Max           []float32       `json:"max,omitempty"`
	Min           []float32       `json:"min,omitempty"`
	Sparse        *AccessorSparse `json:"sparse,omitempty"`
}

// AccessorSparse overrides Count elements of the base accessor.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#reference-accessor-sparse
type AccessorSparse struct {
	Count   int                   `json:"count"`
	Indices AccessorSparseIndices `json:"indices"`
	Values  AccessorSparseValues  `json:"values"`
}

// AccessorSparseIndices locates the overridden element indices.
type AccessorSparseIndices struct {
	BufferView    int           `json:"bufferView"`
	ByteOffset    int           `json:"byteOffset,omitempty"`
	ComponentType ComponentType `json:"componentType"`
}

// AccessorSparseValues locates the tightly packed replacement elements.
type AccessorSparseValues struct {
	BufferView int `json:"bufferView"`
	ByteOffset int `json:"byteOffset,omitempty"`
}

// BufferView represents a subset of a buffer.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#reference-bufferview
type BufferView struct {
	Name       string `json:"name,omitempty"`
	Buffer     int    `json:"buffer"`
	ByteOffset int    `json:"byteOffset,omitempty"`
	ByteLength int    `json:"byteLength"`
	ByteStride *int   `json:"byteStride,omitempty"`
	Target     *int   `json:"target,omitempty"`
}

// Buffer represents binary data. A missing URI on buffer 0 refers to the container BIN chunk.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#reference-buffer
type Buffer struct {
	Name       string `json:"name,omitempty"`
	URI        string `json:"uri,omitempty"`
	ByteLength int    `json:"byteLength"`
}

// --- Materials and Textures ---

// Alpha mode names.
const (
	AlphaModeOpaque = "OPAQUE"
	AlphaModeMask   = "MASK"
	AlphaModeBlend  = "BLEND"
)

// Material defines the material appearance of a primitive.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#reference-material
type Material struct {
	Name                 string                `json:"name,omitempty"`
	PBRMetallicRoughness *PBRMetallicRoughness `json:"pbrMetallicRoughness,omitempty"`
	NormalTexture        *NormalTextureInfo    `json:"normalTexture,omitempty"`
	OcclusionTexture     *OcclusionTextureInfo `json:"occlusionTexture,omitempty"`
	EmissiveTexture      *TextureInfo          `json:"emissiveTexture,omitempty"`
	EmissiveFactor       *[3]float32           `json:"emissiveFactor,omitempty"`
	AlphaMode            string                `json:"alphaMode,omitempty"`
	AlphaCutoff          *float32              `json:"alphaCutoff,omitempty"`
	DoubleSided          bool                  `json:"doubleSided,omitempty"`
	Extensions           Extensions            `json:"extensions,omitempty"`
}

// PBRMetallicRoughness is the metallic-roughness material model.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#reference-material-pbrmetallicroughness
type PBRMetallicRoughness struct {
	BaseColorFactor          *[4]float32  `json:"baseColorFactor,omitempty"`
	BaseColorTexture         *TextureInfo `json:"baseColorTexture,omitempty"`
	MetallicFactor           *float32     `json:"metallicFactor,omitempty"`
	RoughnessFactor          *float32     `json:"roughnessFactor,omitempty"`
	MetallicRoughnessTexture *TextureInfo `json:"metallicRoughnessTexture,omitempty"`
}

// TextureInfo references a texture and the UV set it samples.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#reference-textureinfo
type TextureInfo struct {
	Index      int        `json:"index"`
	TexCoord   int        `json:"texCoord,omitempty"`
	Extensions Extensions `json:"extensions,omitempty"`
}

// NormalTextureInfo references a normal map.
type NormalTextureInfo struct {
	TextureInfo

	Scale *float32 `json:"scale,omitempty"`
}

// OcclusionTextureInfo references an occlusion map.
type OcclusionTextureInfo struct {
	TextureInfo

	Strength *float32 `json:"strength,omitempty"`
}

// Texture combines an image and a sampler.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#reference-texture
type Texture struct {
	Name       string     `json:"name,omitempty"`
	Sampler    *int       `json:"sampler,omitempty"`
	Source     *int       `json:"source,omitempty"`
	Extensions Extensions `json:"extensions,omitempty"`
}

// Image is a texture image source: a URI (possibly a data URI) or a buffer view.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#reference-image
type Image struct {
	Name       string `json:"name,omitempty"`
	URI        string `json:"uri,omitempty"`
	MimeType   string `json:"mimeType,omitempty"`
	BufferView *int   `json:"bufferView,omitempty"`
}

// Sampler defines texture sampling parameters.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#reference-sampler
type Sampler struct {
	Name      string `json:"name,omitempty"`
	MagFilter *int   `json:"magFilter,omitempty"`
	MinFilter *int   `json:"minFilter,omitempty"`
	WrapS     *int   `json:"wrapS,omitempty"`
	WrapT     *int   `json:"wrapT,omitempty"`
}

// Sampler filter constants.
const (
	FilterNearest              = 9728
	FilterLinear               = 9729
	FilterNearestMipmapNearest = 9984
	FilterLinearMipmapNearest  = 9985
	FilterNearestMipmapLinear  = 9986
	FilterLinearMipmapLinear   = 9987
)

// Sampler wrap constants.
const (
	WrapClampToEdge    = 33071
	WrapMirroredRepeat = 33648
	WrapRepeat         = 10497
)

// --- Skins and Cameras ---

// Skin defines joints and inverse bind matrices for vertex skinning.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#reference-skin
type Skin struct {
	Name                string `json:"name,omitempty"`
	InverseBindMatrices *int   `json:"inverseBindMatrices,omitempty"`
	Skeleton            *int   `json:"skeleton,omitempty"`
	Joints              []int  `json:"joints"`
}

// Camera projection type names.
const (
	CameraTypePerspective  = "perspective"
	CameraTypeOrthographic = "orthographic"
)

// Camera holds a perspective or orthographic projection.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#reference-camera
type Camera struct {
	Name         string              `json:"name,omitempty"`
	Type         string              `json:"type"`
	Perspective  *CameraPerspective  `json:"perspective,omitempty"`
	Orthographic *CameraOrthographic `json:"orthographic,omitempty"`
}

// CameraPerspective holds perspective projection parameters.
type CameraPerspective struct {
	AspectRatio *float32 `json:"aspectRatio,omitempty"`
	YFov        float32  `json:"yfov"`
	ZFar        *float32 `json:"zfar,omitempty"`
	ZNear       float32  `json:"znear"`
}

// CameraOrthographic holds orthographic projection parameters.
type CameraOrthographic struct {
	XMag  float32 `json:"xmag"`
	YMag  float32 `json:"ymag"`
	ZFar  float32 `json:"zfar"`
	ZNear float32 `json:"znear"`
}

// --- Animations ---

// Animation is a keyframe animation.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#reference-animation
type Animation struct {
	Name     string             `json:"name,omitempty"`
	Channels []AnimationChannel `json:"channels"`
	Samplers []AnimationSampler `json:"samplers"`
}

// AnimationChannel targets a node property with a sampler.
type AnimationChannel struct {
	Sampler int                    `json:"sampler"`
	Target  AnimationChannelTarget `json:"target"`
}

// AnimationChannelTarget names the animated node and property.
type AnimationChannelTarget struct {
	Node *int   `json:"node,omitempty"`
	Path string `json:"path"`
}

// AnimationSampler pairs keyframe times with output values.
type AnimationSampler struct {
	Input         int    `json:"input"`
	Interpolation string `json:"interpolation,omitempty"`
	Output        int    `json:"output"`
}

// Animation path and interpolation names.
const (
	PathTranslation = "translation"
	PathRotation    = "rotation"
	PathScale       = "scale"
	PathWeights     = "weights"

	InterpolationLinear      = "LINEAR"
	InterpolationStep        = "STEP"
	InterpolationCubicSpline = "CUBICSPLINE"
)
