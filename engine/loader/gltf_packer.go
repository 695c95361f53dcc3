package loader

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/Carmen-Shannon/oxy-gltf/common"
)

// PackBinary embeds every buffer and external image of doc into one binary container.
// The buffers are concatenated into the BIN chunk, each starting on a 4 byte boundary, and
// external images become buffer views. doc itself is left untouched.
//
// Parameters:
//   - ctx: the context bounding resource fetches
//   - doc: the document to pack
//   - bin: the BIN chunk of doc when it came from a binary container, otherwise nil
//   - fetcher: resolves external resources
//   - rootURL: the base URL relative resource URIs are resolved against
//
// Returns:
//   - []byte: the encoded binary container
//   - error: a ResourceLoadError if a resource cannot be read, a ReferenceError for an invalid buffer index
func PackBinary(ctx context.Context, doc *Document, bin []byte, fetcher Fetcher, rootURL string) ([]byte, error) {
	out, err := doc.Clone()
	if err != nil {
		return nil, err
	}

	read := func(uri string) ([]byte, error) {
		if IsBase64(uri) {
			data, err := DecodeBase64(uri)
			if err != nil {
				return nil, &ResourceLoadError{URI: "data:", Err: err}
			}
			return data, nil
		}
		data, err := fetcher.Fetch(ctx, resolveURI(rootURL, uri))
		if err != nil {
			return nil, &ResourceLoadError{URI: uri, Err: err}
		}
		return data, nil
	}

	var packed []byte
	offsets := make([]int, len(out.Buffers))
	for i, buf := range out.Buffers {
		var data []byte
		switch {
		case buf.URI != "":
			if data, err = read(buf.URI); err != nil {
				return nil, err
			}
		case i == 0 && bin != nil:
			data = bin
		default:
			return nil, &ResourceLoadError{URI: fmt.Sprintf("/buffers/%d", i), Err: fmt.Errorf("buffer has no uri and no binary chunk")}
		}
		if len(data) < buf.ByteLength {
			return nil, &ResourceLoadError{
				URI: common.Coalesce(buf.URI, fmt.Sprintf("/buffers/%d", i)),
				Err: fmt.Errorf("buffer has %d bytes, expected %d", len(data), buf.ByteLength),
			}
		}

		offsets[i] = len(packed)
		packed = append(packed, data[:buf.ByteLength]...)
		packed = padTo4(packed, 0)
	}

	for vi := range out.BufferViews {
		view := &out.BufferViews[vi]
		if err := checkIndex(fmt.Sprintf("/bufferViews/%d/buffer", vi), view.Buffer, len(out.Buffers)); err != nil {
			return nil, err
		}
		view.ByteOffset += offsets[view.Buffer]
		view.Buffer = 0
	}

	for ii := range out.Images {
		img := &out.Images[ii]
		if img.URI == "" {
			continue
		}
		data, err := read(img.URI)
		if err != nil {
			return nil, err
		}

		img.MimeType = common.Coalesce(img.MimeType, mimeTypeFromURI(img.URI), http.DetectContentType(data))
		img.BufferView = common.Ptr(len(out.BufferViews))
		img.URI = ""
		out.BufferViews = append(out.BufferViews, BufferView{
			Buffer:     0,
			ByteOffset: len(packed),
			ByteLength: len(data),
		})
		packed = padTo4(append(packed, data...), 0)
	}

	out.Buffers = nil
	if len(packed) > 0 {
		out.Buffers = []Buffer{{ByteLength: len(packed)}}
	}

	raw, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	return WriteContainer(raw, packed), nil
}

// UnpackBinary splits a binary container into an indented JSON document and its BIN chunk.
// The buffer backed by the BIN chunk is pointed at binURI.
//
// Parameters:
//   - data: the binary container
//   - binURI: the URI the BIN chunk will be written to
//
// Returns:
//   - []byte: the JSON document
//   - []byte: the BIN chunk, nil when the container has none
//   - error: a ParseError if the container or its document is invalid
func UnpackBinary(data []byte, binURI string) ([]byte, []byte, error) {
	c, err := ReadContainer(data)
	if err != nil {
		return nil, nil, err
	}
	doc, err := ParseDocument(c.JSON)
	if err != nil {
		return nil, nil, err
	}

	var bin []byte
	if c.Bin != nil && len(doc.Buffers) > 0 && doc.Buffers[0].URI == "" {
		bin = append([]byte(nil), c.Bin[:min(len(c.Bin), doc.Buffers[0].ByteLength)]...)
		doc.Buffers[0].URI = binURI
	}

	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode document: %w", err)
	}
	return raw, bin, nil
}
