package loader

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// resourceResolver resolves buffers, buffer views and accessors of one document.
// Every buffer is fetched at most once and every accessor decoded at most once; concurrent
// requesters of the same resource share the in-flight result. Returned data is shared and
// must be treated as read-only.
type resourceResolver struct {
	doc     *Document
	rootURL string
	fetcher Fetcher
	bin     []byte
	log     *zap.Logger

	flight singleflight.Group

	mu        sync.Mutex
	buffers   [][]byte
	accessors []*AccessorData
}

// newResourceResolver creates a resolver for doc. bin is the container BIN chunk, nil for text input.
func newResourceResolver(doc *Document, rootURL string, fetcher Fetcher, bin []byte, log *zap.Logger) *resourceResolver {
	r := &resourceResolver{
		doc:       doc,
		rootURL:   rootURL,
		fetcher:   fetcher,
		log:       log,
		buffers:   make([][]byte, len(doc.Buffers)),
		accessors: make([]*AccessorData, len(doc.Accessors)),
	}
	r.attachBin(bin)
	return r
}

// attachBin binds the container binary chunk to buffer 0 when that buffer has no URI.
func (r *resourceResolver) attachBin(bin []byte) {
	if bin == nil {
		return
	}
	if len(r.doc.Buffers) == 0 || r.doc.Buffers[0].URI != "" {
		r.log.Warn("Unexpected BIN chunk", zap.Int("length", len(bin)))
		return
	}

	declared := r.doc.Buffers[0].ByteLength
	// the chunk may carry up to 3 bytes of padding
	if len(bin) < declared || len(bin) > alignTo4(declared) {
		r.log.Warn("Binary buffer length does not match buffer length",
			zap.Int("chunk_length", len(bin)),
			zap.Int("buffer_length", declared),
		)
	}
	r.bin = bin
}

// ResolveBuffer returns the bytes of buffer index.
//
// Parameters:
//   - ctx: the context bounding any fetch
//   - index: the buffer index
//
// Returns:
//   - []byte: the shared buffer bytes
//   - error: ReferenceError, ParseError or ResourceLoadError
func (r *resourceResolver) ResolveBuffer(ctx context.Context, index int) ([]byte, error) {
	if err := checkIndex("/buffers", index, len(r.doc.Buffers)); err != nil {
		return nil, err
	}

	r.mu.Lock()
	if data := r.buffers[index]; data != nil {
		r.mu.Unlock()
		return data, nil
	}
	r.mu.Unlock()

	v, err, _ := r.flight.Do("buffer/"+strconv.Itoa(index), func() (any, error) {
		r.mu.Lock()
		if data := r.buffers[index]; data != nil {
			r.mu.Unlock()
			return data, nil
		}
		r.mu.Unlock()

		data, err := r.loadBuffer(ctx, index)
		if err != nil {
			return nil, err
		}

		r.mu.Lock()
		r.buffers[index] = data
		r.mu.Unlock()
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

func (r *resourceResolver) loadBuffer(ctx context.Context, index int) ([]byte, error) {
	buffer := r.doc.Buffers[index]

	var (
		data []byte
		err  error
	)
	switch {
	case buffer.URI == "":
		if index != 0 || r.bin == nil {
			return nil, parseErrorf("/buffers/%d: missing uri and no binary chunk", index)
		}
		data = r.bin
	case IsBase64(buffer.URI):
		data, err = DecodeBase64(buffer.URI)
		if err != nil {
			return nil, &ResourceLoadError{URI: fmt.Sprintf("/buffers/%d", index), Err: err}
		}
	default:
		data, err = r.fetch(ctx, buffer.URI)
		if err != nil {
			return nil, err
		}
	}

	if len(data) < buffer.ByteLength {
		r.log.Warn("buffer is shorter than its declared byteLength",
			zap.Int("buffer", index),
			zap.Int("length", len(data)),
			zap.Int("byte_length", buffer.ByteLength),
		)
	}
	return data, nil
}

// fetch retrieves uri relative to the root URL through the fetcher.
func (r *resourceResolver) fetch(ctx context.Context, uri string) ([]byte, error) {
	url := resolveURI(r.rootURL, uri)
	if err := ctx.Err(); err != nil {
		return nil, &ResourceLoadError{URI: url, Err: err}
	}
	data, err := r.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, &ResourceLoadError{URI: url, Err: err}
	}
	return data, nil
}

// resolveBufferViewBytes returns the byte range of buffer view index.
func (r *resourceResolver) resolveBufferViewBytes(ctx context.Context, index int) ([]byte, *BufferView, error) {
	if err := checkIndex("/bufferViews", index, len(r.doc.BufferViews)); err != nil {
		return nil, nil, err
	}
	view := &r.doc.BufferViews[index]
	if err := checkIndex(fmt.Sprintf("/bufferViews/%d/buffer", index), view.Buffer, len(r.doc.Buffers)); err != nil {
		return nil, nil, err
	}

	data, err := r.ResolveBuffer(ctx, view.Buffer)
	if err != nil {
		return nil, nil, err
	}

	end := view.ByteOffset + view.ByteLength
	if view.ByteOffset < 0 || view.ByteLength < 0 || end > len(data) {
		return nil, nil, parseErrorf("/bufferViews/%d: range [%d, %d) exceeds buffer length %d", index, view.ByteOffset, end, len(data))
	}
	return data[view.ByteOffset:end:end], view, nil
}

// ResolveBufferView decodes byteLength bytes at byteOffset inside a buffer view as tightly
// packed scalar components.
//
// Parameters:
//   - ctx: the context bounding any fetch
//   - view: the buffer view index
//   - byteOffset: the offset inside the view
//   - byteLength: the number of bytes to decode
//   - componentType: the component type of the values
//
// Returns:
//   - *AccessorData: the decoded SCALAR data
//   - error: ReferenceError, ParseError or ResourceLoadError
func (r *resourceResolver) ResolveBufferView(ctx context.Context, view, byteOffset, byteLength int, componentType ComponentType) (*AccessorData, error) {
	raw, _, err := r.resolveBufferViewBytes(ctx, view)
	if err != nil {
		return nil, err
	}

	size := componentType.Size()
	if size == 0 {
		return nil, parseErrorf("/bufferViews/%d: invalid component type %d", view, componentType)
	}
	if byteOffset < 0 || byteLength < 0 || byteOffset+byteLength > len(raw) {
		return nil, parseErrorf("/bufferViews/%d: range [%d, %d) exceeds view length %d", view, byteOffset, byteOffset+byteLength, len(raw))
	}

	layout, err := newAccessorLayout(componentType, AccessorScalar, byteLength/size, size)
	if err != nil {
		return nil, err
	}
	return layout.decode(raw[byteOffset:byteOffset+byteLength], AccessorScalar, false)
}

// ResolveAccessor decodes accessor index, applying sparse overrides. The result is
// memoized per accessor.
//
// Parameters:
//   - ctx: the context bounding any fetch
//   - index: the accessor index
//
// Returns:
//   - *AccessorData: the shared decoded data
//   - error: ReferenceError, ParseError or ResourceLoadError
func (r *resourceResolver) ResolveAccessor(ctx context.Context, index int) (*AccessorData, error) {
	if err := checkIndex("/accessors", index, len(r.doc.Accessors)); err != nil {
		return nil, err
	}

	r.mu.Lock()
	if data := r.accessors[index]; data != nil {
		r.mu.Unlock()
		return data, nil
	}
	r.mu.Unlock()

	v, err, _ := r.flight.Do("accessor/"+strconv.Itoa(index), func() (any, error) {
		r.mu.Lock()
		if data := r.accessors[index]; data != nil {
			r.mu.Unlock()
			return data, nil
		}
		r.mu.Unlock()

		data, err := r.loadAccessor(ctx, index)
		if err != nil {
			return nil, err
		}

		r.mu.Lock()
		r.accessors[index] = data
		r.mu.Unlock()
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*AccessorData), nil
}

func (r *resourceResolver) loadAccessor(ctx context.Context, index int) (*AccessorData, error) {
	acc := &r.doc.Accessors[index]
	path := fmt.Sprintf("/accessors/%d", index)

	if acc.ComponentType.Size() == 0 {
		return nil, parseErrorf("%s: invalid component type %d", path, acc.ComponentType)
	}
	if acc.Type.ComponentCount() == 0 {
		return nil, parseErrorf("%s: invalid type %q", path, acc.Type)
	}
	if acc.Count < 0 {
		return nil, parseErrorf("%s: negative count %d", path, acc.Count)
	}

	var (
		data *AccessorData
		err  error
	)
	if acc.BufferView == nil {
		data, err = zeroAccessorData(acc.ComponentType, acc.Type, acc.Count, acc.Normalized)
	} else {
		data, err = r.decodeAccessorView(ctx, path, *acc.BufferView, acc.ByteOffset, acc)
	}
	if err != nil {
		return nil, err
	}

	if acc.Sparse != nil {
		if err := r.applySparse(ctx, path, acc, data); err != nil {
			return nil, err
		}
	}
	return data, nil
}

// decodeAccessorView decodes acc.Count elements starting at byteOffset inside buffer view viewIndex.
func (r *resourceResolver) decodeAccessorView(ctx context.Context, path string, viewIndex, byteOffset int, acc *Accessor) (*AccessorData, error) {
	raw, view, err := r.resolveBufferViewBytes(ctx, viewIndex)
	if err != nil {
		return nil, err
	}

	elementSize := GetByteStrideFromType(acc)
	stride := elementSize
	if view.ByteStride != nil && *view.ByteStride != 0 {
		stride = *view.ByteStride
	}
	if stride < elementSize {
		return nil, parseErrorf("%s: byteStride %d is smaller than the element size %d", path, stride, elementSize)
	}
	if byteOffset < 0 || byteOffset > len(raw) {
		return nil, parseErrorf("%s: byteOffset %d exceeds view length %d", path, byteOffset, len(raw))
	}

	layout, err := newAccessorLayout(acc.ComponentType, acc.Type, acc.Count, stride)
	if err != nil {
		return nil, err
	}
	data, err := layout.decode(raw[byteOffset:], acc.Type, acc.Normalized)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return data, nil
}

// applySparse overwrites the elements of data listed by the accessor's sparse indices.
func (r *resourceResolver) applySparse(ctx context.Context, path string, acc *Accessor, data *AccessorData) error {
	sparse := acc.Sparse
	switch sparse.Indices.ComponentType {
	case ComponentTypeUnsignedByte, ComponentTypeUnsignedShort, ComponentTypeUnsignedInt:
	default:
		return parseErrorf("%s/sparse/indices: invalid component type %d", path, sparse.Indices.ComponentType)
	}

	indices, err := r.ResolveBufferView(ctx,
		sparse.Indices.BufferView,
		sparse.Indices.ByteOffset,
		sparse.Count*sparse.Indices.ComponentType.Size(),
		sparse.Indices.ComponentType,
	)
	if err != nil {
		return err
	}

	valuesAccessor := &Accessor{
		ComponentType: acc.ComponentType,
		Type:          acc.Type,
		Count:         sparse.Count,
		Normalized:    acc.Normalized,
	}
	values, err := r.decodeAccessorView(ctx, path+"/sparse/values", sparse.Values.BufferView, sparse.Values.ByteOffset, valuesAccessor)
	if err != nil {
		return err
	}

	if err := data.applySparse(indices.Uint32s(), values); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// resolveImageSource returns the encoded bytes of an image record and its MIME type.
func (r *resourceResolver) resolveImageSource(ctx context.Context, index int) ([]byte, string, error) {
	img := r.doc.Images[index]

	if img.BufferView != nil {
		raw, _, err := r.resolveBufferViewBytes(ctx, *img.BufferView)
		if err != nil {
			return nil, "", err
		}
		return raw, img.MimeType, nil
	}

	if img.URI == "" {
		return nil, "", parseErrorf("/images/%d: missing uri and bufferView", index)
	}

	mime := imageMimeType(img.MimeType, img.URI)
	if IsBase64(img.URI) {
		data, err := DecodeBase64(img.URI)
		if err != nil {
			return nil, "", &ResourceLoadError{URI: fmt.Sprintf("/images/%d", index), Err: err}
		}
		return data, mime, nil
	}

	data, err := r.fetch(ctx, img.URI)
	if err != nil {
		return nil, "", err
	}
	return data, mime, nil
}

// imageMimeType prefers the declared MIME type and falls back to the URI.
func imageMimeType(declared, uri string) string {
	if declared != "" {
		return declared
	}
	return mimeTypeFromURI(uri)
}
