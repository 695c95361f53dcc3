package loader

import (
	"sync"
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-gltf/engine/light"
	"github.com/Carmen-Shannon/oxy-gltf/engine/material"
	"github.com/Carmen-Shannon/oxy-gltf/engine/model"

	"go.uber.org/zap"
)

// Extension is a loader plugin keyed by its glTF extension name.
// Extensions are consulted in registration order when loading a material; the first one
// returning a non-nil material wins and the core material loader is skipped.
type Extension interface {
	// Name returns the glTF extension name, e.g. "KHR_materials_unlit".
	//
	// Returns:
	//   - string: the extension name
	Name() string

	// Enabled reports whether the loader consults this extension.
	//
	// Returns:
	//   - bool: true if enabled
	Enabled() bool

	// SetEnabled enables or disables the extension.
	//
	// Parameters:
	//   - enabled: the new state
	SetEnabled(enabled bool)

	// LoadMaterial builds the material at index when the material uses this extension.
	//
	// Parameters:
	//   - mc: the loading context giving access to the document, textures and shared helpers
	//   - index: the material index
	//
	// Returns:
	//   - material.Material: the material, nil to decline
	//   - error: error if the extension data is invalid (treated as declined)
	LoadMaterial(mc MaterialContext, index int) (material.Material, error)
}

// MaterialContext is the part of a running load that material extensions may use.
type MaterialContext interface {
	// Document returns the document being loaded. It must not be modified.
	//
	// Returns:
	//   - *Document: the document
	Document() *Document

	// Logger returns the load's logger.
	//
	// Returns:
	//   - *zap.Logger: the logger
	Logger() *zap.Logger

	// NewPBRMaterial creates a material named after material index ("mat<i>" when unnamed).
	//
	// Parameters:
	//   - index: the material index
	//
	// Returns:
	//   - *material.PBRMaterial: the new material
	NewPBRMaterial(index int) *material.PBRMaterial

	// LoadTexture returns the texture for info, loading its image asynchronously.
	//
	// Parameters:
	//   - path: the JSON path of info, used in errors
	//   - info: the texture reference
	//
	// Returns:
	//   - *material.Texture: the texture, shared by every reference with the same index and texCoord
	//   - error: a ReferenceError if the texture, sampler or image index is invalid
	LoadTexture(path string, info *TextureInfo) (*material.Texture, error)

	// ApplyCommonProperties applies the properties shared by every material model: emissive,
	// normal and occlusion maps, and double sidedness.
	//
	// Parameters:
	//   - path: the JSON path of the material
	//   - rec: the material record
	//   - mat: the material to fill
	//
	// Returns:
	//   - error: error if a referenced texture is invalid
	ApplyCommonProperties(path string, rec *Material, mat *material.PBRMaterial) error

	// ApplyAlphaProperties applies the alpha mode and cutoff of rec.
	//
	// Parameters:
	//   - path: the JSON path of the material
	//   - rec: the material record
	//   - mat: the material to fill
	ApplyAlphaProperties(path string, rec *Material, mat *material.PBRMaterial)
}

// NodeExtension is an Extension that also attaches data to scene nodes. The loader calls
// LoadNode for every built node whose record carries the extension's name.
type NodeExtension interface {
	Extension

	// LoadNode attaches the extension data of node index to node.
	//
	// Parameters:
	//   - nc: the loading context
	//   - index: the node index
	//   - node: the built node
	//
	// Returns:
	//   - error: error if the extension data is invalid
	LoadNode(nc NodeContext, index int, node *model.Node) error
}

// NodeContext is the part of a running load that node extensions may use.
type NodeContext interface {
	// Document returns the document being loaded. It must not be modified.
	//
	// Returns:
	//   - *Document: the document
	Document() *Document

	// Logger returns the load's logger.
	//
	// Returns:
	//   - *zap.Logger: the logger
	Logger() *zap.Logger

	// AddLight registers a light with the target scene.
	//
	// Parameters:
	//   - l: the light
	AddLight(l light.Light)
}

// BaseExtension carries the name and enabled state shared by every Extension.
// Embed it, set ExtensionName and implement LoadMaterial. The zero value is enabled.
type BaseExtension struct {
	ExtensionName string

	disabled atomic.Bool
}

func (b *BaseExtension) Name() string {
	return b.ExtensionName
}

func (b *BaseExtension) Enabled() bool {
	return !b.disabled.Load()
}

func (b *BaseExtension) SetEnabled(enabled bool) {
	b.disabled.Store(!enabled)
}

// ExtensionRegistry is an ordered, name-keyed list of extensions. It is safe for concurrent use.
type ExtensionRegistry struct {
	mu     sync.RWMutex
	log    *zap.Logger
	order  []Extension
	byName map[string]Extension
}

// NewExtensionRegistry creates a registry holding extensions in the given order.
//
// Parameters:
//   - log: the logger used for registration warnings, nil for none
//   - extensions: the initial extensions
//
// Returns:
//   - *ExtensionRegistry: the registry
func NewExtensionRegistry(log *zap.Logger, extensions ...Extension) *ExtensionRegistry {
	if log == nil {
		log = zap.NewNop()
	}
	r := &ExtensionRegistry{
		log:    log,
		byName: make(map[string]Extension),
	}
	for _, ext := range extensions {
		r.RegisterExtension(ext)
	}
	return r
}

// DefaultExtensions returns fresh instances of the built-in extensions in
// their default order.
//
// Returns:
//   - []Extension: the built-in extensions
func DefaultExtensions() []Extension {
	return []Extension{
		NewSpecularGlossinessExtension(),
		NewUnlitExtension(),
		NewLightsPunctualExtension(),
	}
}

// RegisterExtension appends ext. Registering a name twice keeps the first extension.
//
// Parameters:
//   - ext: the extension
//
// Returns:
//   - bool: false if an extension with the same name was already registered
func (r *ExtensionRegistry) RegisterExtension(ext Extension) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byName[ext.Name()]; ok {
		r.log.Warn("Extension with the same name already exists", zap.String("extension", ext.Name()))
		return false
	}
	r.byName[ext.Name()] = ext
	r.order = append(r.order, ext)
	return true
}

// UnregisterExtension removes the named extension.
//
// Returns:
//   - bool: false if no extension had that name
func (r *ExtensionRegistry) UnregisterExtension(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byName[name]; !ok {
		return false
	}
	delete(r.byName, name)
	for i, ext := range r.order {
		if ext.Name() == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

// Extension returns the named extension.
func (r *ExtensionRegistry) Extension(name string) (Extension, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ext, ok := r.byName[name]
	return ext, ok
}

// Extensions returns a snapshot of the registered extensions in registration order.
func (r *ExtensionRegistry) Extensions() []Extension {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Extension, len(r.order))
	copy(out, r.order)
	return out
}

// SetEnabled enables or disables the named extension.
//
// Returns:
//   - bool: false if no extension had that name
func (r *ExtensionRegistry) SetEnabled(name string, enabled bool) bool {
	ext, ok := r.Extension(name)
	if !ok {
		return false
	}
	ext.SetEnabled(enabled)
	return true
}

// Supports reports whether name is registered and enabled.
func (r *ExtensionRegistry) Supports(name string) bool {
	ext, ok := r.Extension(name)
	return ok && ext.Enabled()
}
