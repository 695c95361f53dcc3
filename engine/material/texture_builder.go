package material

// TextureBuilderOption is a function that configures a Texture during construction.
type TextureBuilderOption func(*Texture)

// WithTextureName is an option builder that sets the name of the texture.
//
// Parameters:
//   - name: the texture name
//
// Returns:
//   - TextureBuilderOption: a function that applies the name option to a texture
func WithTextureName(name string) TextureBuilderOption {
	return func(t *Texture) {
		t.Name = name
	}
}

// WithURL is an option builder that records where the texture image comes from.
//
// Parameters:
//   - url: the image location
//
// Returns:
//   - TextureBuilderOption: a function that applies the url option to a texture
func WithURL(url string) TextureBuilderOption {
	return func(t *Texture) {
		t.URL = url
	}
}

// WithCoordinatesIndex is an option builder that selects the UV set sampled by the texture.
//
// Parameters:
//   - index: the UV set index
//
// Returns:
//   - TextureBuilderOption: a function that applies the coordinates index to a texture
func WithCoordinatesIndex(index int) TextureBuilderOption {
	return func(t *Texture) {
		t.CoordinatesIndex = index
	}
}

// WithWrap is an option builder that sets the U and V addressing modes.
//
// Parameters:
//   - u: the horizontal wrap mode
//   - v: the vertical wrap mode
//
// Returns:
//   - TextureBuilderOption: a function that applies the wrap modes to a texture
func WithWrap(u, v WrapMode) TextureBuilderOption {
	return func(t *Texture) {
		t.WrapU = u
		t.WrapV = v
	}
}

// WithSampling is an option builder that sets the filtering mode and mipmap usage.
//
// Parameters:
//   - mode: the sampling mode
//   - noMipMaps: true when the texture must not generate mipmaps
//
// Returns:
//   - TextureBuilderOption: a function that applies the sampling options to a texture
func WithSampling(mode SamplingMode, noMipMaps bool) TextureBuilderOption {
	return func(t *Texture) {
		t.SamplingMode = mode
		t.NoMipMaps = noMipMaps
	}
}
