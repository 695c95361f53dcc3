package loader

import (
	"context"
	"fmt"

	"github.com/Carmen-Shannon/oxy-gltf/common"
	"github.com/Carmen-Shannon/oxy-gltf/engine/material"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// textureKey identifies a texture instance: the same texture sampled through another UV set
// is a separate instance.
type textureKey struct {
	index    int
	texCoord int
}

// imageSlot tracks the single load of an image and the textures waiting for its bytes.
type imageSlot struct {
	started  bool
	loaded   bool
	data     []byte
	mimeType string
	textures []*material.Texture
}

// LoadTexture returns the texture referenced by info. The image bytes are resolved once per
// image in a barrier task and attached to every texture using that image.
//
// Parameters:
//   - path: the JSON path of info, used in errors
//   - info: the texture reference
//
// Returns:
//   - *material.Texture: the texture
//   - error: a ReferenceError for an invalid texture, sampler or image index
func (l *gltfLoader) LoadTexture(path string, info *TextureInfo) (*material.Texture, error) {
	if err := checkIndex(path+"/index", info.Index, len(l.doc.Textures)); err != nil {
		return nil, err
	}

	key := textureKey{index: info.Index, texCoord: info.TexCoord}
	l.mu.Lock()
	if tex, ok := l.textures[key]; ok {
		l.mu.Unlock()
		return tex, nil
	}
	var sibling *material.Texture
	for k, t := range l.textures {
		if k.index == info.Index {
			sibling = t
			break
		}
	}
	l.mu.Unlock()

	rec := &l.doc.Textures[info.Index]
	texPath := fmt.Sprintf("/textures/%d", info.Index)
	if rec.Source == nil {
		return nil, parseErrorf("%s: missing source", texPath)
	}
	if err := checkIndex(texPath+"/source", *rec.Source, len(l.doc.Images)); err != nil {
		return nil, err
	}

	var (
		tex *material.Texture
		err error
	)
	if sibling != nil {
		tex, err = sibling.Clone()
		if err != nil {
			return nil, err
		}
		tex.CoordinatesIndex = info.TexCoord
	} else {
		tex, err = l.newTexture(texPath, rec, info.TexCoord)
		if err != nil {
			return nil, err
		}
	}

	l.mu.Lock()
	l.textures[key] = tex
	l.mu.Unlock()
	l.target.AddTexture(tex)
	l.attachImage(*rec.Source, tex)
	return tex, nil
}

// newTexture creates a texture with the sampling state of the texture's sampler.
func (l *gltfLoader) newTexture(path string, rec *Texture, texCoord int) (*material.Texture, error) {
	sampler := Sampler{}
	if rec.Sampler != nil {
		if err := checkIndex(path+"/sampler", *rec.Sampler, len(l.doc.Samplers)); err != nil {
			return nil, err
		}
		sampler = l.doc.Samplers[*rec.Sampler]
	}

	wrapU := l.wrapMode(path, "wrapS", sampler.WrapS)
	wrapV := l.wrapMode(path, "wrapT", sampler.WrapT)

	minFilter := common.Deref(sampler.MinFilter, FilterLinearMipmapLinear)
	noMipMaps := minFilter == FilterNearest || minFilter == FilterLinear

	img := l.doc.Images[*rec.Source]
	url := img.URI
	if IsBase64(url) {
		url = "data:"
	}

	return material.NewTexture(
		material.WithTextureName(common.Coalesce(rec.Name, img.Name, fmt.Sprintf("texture%d", *rec.Source))),
		material.WithURL(url),
		material.WithCoordinatesIndex(texCoord),
		material.WithWrap(wrapU, wrapV),
		material.WithSampling(GetTextureFilterMode(minFilter), noMipMaps),
	), nil
}

func (l *gltfLoader) wrapMode(path, property string, value *int) material.WrapMode {
	if value == nil {
		return material.WrapRepeat
	}
	mode, ok := GetWrapMode(*value)
	if !ok {
		l.log.Warn("Invalid texture wrap mode",
			zap.String("path", path+"/sampler/"+property),
			zap.Int("value", *value),
		)
	}
	return mode
}

// attachImage registers tex as a consumer of image index, scheduling the image load on first use.
func (l *gltfLoader) attachImage(index int, tex *material.Texture) {
	l.mu.Lock()
	slot := l.images[index]
	if slot == nil {
		slot = &imageSlot{}
		l.images[index] = slot
	}

	if slot.loaded {
		data, mime := slot.data, slot.mimeType
		l.mu.Unlock()
		if !tex.Loaded() {
			if err := tex.SetSource(data, mime); err != nil {
				l.barrier.Fail(&ResourceLoadError{URI: fmt.Sprintf("/images/%d", index), Err: err})
			}
		}
		return
	}

	slot.textures = append(slot.textures, tex)
	start := !slot.started
	slot.started = true
	l.mu.Unlock()

	if start {
		path := fmt.Sprintf("/images/%d", index)
		l.barrier.Go(path, func(ctx context.Context) error {
			return l.loadImage(ctx, path, index)
		})
	}
}

// loadImage resolves the bytes of image index and hands them to every waiting texture.
func (l *gltfLoader) loadImage(ctx context.Context, path string, index int) error {
	data, mime, err := l.resolver.resolveImageSource(ctx, index)
	if err != nil {
		return err
	}

	l.mu.Lock()
	slot := l.images[index]
	slot.loaded = true
	slot.data = data
	slot.mimeType = mime
	waiting := slot.textures
	slot.textures = nil
	l.mu.Unlock()

	var errs error
	for _, tex := range waiting {
		if err := tex.SetSource(data, mime); err != nil {
			errs = multierr.Append(errs, &ResourceLoadError{URI: path, Err: err})
		}
	}
	return errs
}
