package material

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"sync"

	// decoders registered for image.Decode / image.DecodeConfig
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/jinzhu/copier"
)

// SamplingMode is the texture filtering quality.
type SamplingMode int

const (
	SamplingNearest SamplingMode = iota
	SamplingBilinear
	SamplingTrilinear
)

func (s SamplingMode) String() string {
	switch s {
	case SamplingNearest:
		return "nearest"
	case SamplingTrilinear:
		return "trilinear"
	default:
		return "bilinear"
	}
}

// WrapMode is the texture addressing mode outside [0, 1].
type WrapMode int

const (
	WrapRepeat WrapMode = iota
	WrapClamp
	WrapMirror
)

func (w WrapMode) String() string {
	switch w {
	case WrapClamp:
		return "clamp"
	case WrapMirror:
		return "mirror"
	default:
		return "repeat"
	}
}

// Texture is a sampled image reference. The image bytes arrive asynchronously through
// SetSource; until then Loaded reports false.
type Texture struct {
	mu sync.RWMutex

	Name string
	// URL identifies where the image came from (a path, a URL or "data:" for embedded data).
	URL string
	// CoordinatesIndex selects the UV set (0 for TEXCOORD_0, 1 for TEXCOORD_1).
	CoordinatesIndex int

	WrapU        WrapMode
	WrapV        WrapMode
	SamplingMode SamplingMode
	NoMipMaps    bool
	HasAlpha     bool

	mimeType string
	format   string
	data     []byte
	width    int
	height   int
	loaded   bool
}

// textureSampling holds the exported description of a Texture without its lock, so a clone
// never inherits the source's lock state.
type textureSampling struct {
	Name             string
	URL              string
	CoordinatesIndex int

	WrapU        WrapMode
	WrapV        WrapMode
	SamplingMode SamplingMode
	NoMipMaps    bool
	HasAlpha     bool
}

// NewTexture creates a Texture with repeat wrapping, trilinear filtering and the provided
// options applied.
//
// Parameters:
//   - options: a variadic list of TextureBuilderOption functions to configure the texture
//
// Returns:
//   - *Texture: the new texture
func NewTexture(options ...TextureBuilderOption) *Texture {
	t := &Texture{
		WrapU:        WrapRepeat,
		WrapV:        WrapRepeat,
		SamplingMode: SamplingTrilinear,
	}

	for _, option := range options {
		option(t)
	}
	return t
}

// SetSource attaches encoded image bytes. The header is decoded to validate the data and
// record its dimensions; pixels are only decoded on demand by Decode.
//
// Parameters:
//   - data: the encoded image (PNG, JPEG, GIF, BMP or WebP)
//   - mimeType: the declared MIME type, may be empty
//
// Returns:
//   - error: error if the image header cannot be decoded
func (t *Texture) SetSource(data []byte, mimeType string) error {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to decode image header for texture %q: %w", t.Name, err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.data = data
	t.mimeType = mimeType
	if t.mimeType == "" {
		t.mimeType = "image/" + format
	}
	t.format = format
	t.width = cfg.Width
	t.height = cfg.Height
	t.loaded = true
	return nil
}

func (t *Texture) Loaded() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.loaded
}

// Data returns the encoded image bytes shared with every clone of the texture.
func (t *Texture) Data() []byte {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.data
}

func (t *Texture) MimeType() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.mimeType
}

// Format returns the decoder name ("png", "jpeg", ...).
func (t *Texture) Format() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.format
}

// Size returns the image dimensions in pixels, zero before the source is set.
func (t *Texture) Size() (int, int) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.width, t.height
}

// Clone copies the sampling description and any loaded source into a new Texture.
//
// Returns:
//   - *Texture: the copy
//   - error: error if the copy fails
func (t *Texture) Clone() (*Texture, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var desc textureSampling
	if err := copier.Copy(&desc, t); err != nil {
		return nil, fmt.Errorf("failed to clone texture %q: %w", t.Name, err)
	}
	c := &Texture{}
	if err := copier.Copy(c, &desc); err != nil {
		return nil, fmt.Errorf("failed to clone texture %q: %w", t.Name, err)
	}
	c.mimeType = t.mimeType
	c.format = t.format
	c.data = t.data
	c.width = t.width
	c.height = t.height
	c.loaded = t.loaded
	return c, nil
}

// Decode decodes the texture to raw RGBA pixel data.
//
// Returns:
//   - []byte: raw RGBA pixel data (4 bytes per pixel, row-major order)
//   - int: texture width in pixels
//   - int: texture height in pixels
//   - error: error if the texture has no source or decoding fails
func (t *Texture) Decode() ([]byte, int, int, error) {
	data := t.Data()
	if len(data) == 0 {
		return nil, 0, 0, fmt.Errorf("texture %q has no source", t.Name)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, 0, 0, fmt.Errorf("failed to decode texture %q: %w", t.Name, err)
	}

	bounds := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)

	return rgba.Pix, bounds.Dx(), bounds.Dy(), nil
}
