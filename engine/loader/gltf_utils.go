package loader

import (
	"encoding/base64"
	"fmt"
	"net/url"
	"path"
	"strings"
	"unicode/utf8"

	"github.com/Carmen-Shannon/oxy-gltf/engine/material"
)

// IsBase64 reports whether uri is an embedded data URI.
//
// Parameters:
//   - uri: the buffer or image URI
//
// Returns:
//   - bool: true if uri starts with "data:"
func IsBase64(uri string) bool {
	return strings.HasPrefix(uri, "data:")
}

// DecodeBase64 decodes the payload of a base64 data URI.
//
// Parameters:
//   - uri: a "data:<mime>;base64,<payload>" URI
//
// Returns:
//   - []byte: the decoded bytes
//   - error: error if the URI has no payload or is not valid base64
func DecodeBase64(uri string) ([]byte, error) {
	_, payload, ok := strings.Cut(uri, ",")
	if !ok {
		return nil, fmt.Errorf("data URI has no payload separator")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		// some exporters drop the padding
		if alt, altErr := base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "=")); altErr == nil {
			return alt, nil
		}
		return nil, fmt.Errorf("failed to decode base64 payload: %w", err)
	}
	return data, nil
}

// DataURIMimeType returns the MIME type declared by a data URI, or "".
func DataURIMimeType(uri string) string {
	header, _, ok := strings.Cut(strings.TrimPrefix(uri, "data:"), ",")
	if !ok {
		return ""
	}
	mime, _, _ := strings.Cut(header, ";")
	return mime
}

// GetWrapMode maps a glTF sampler wrap constant to an engine wrap mode.
//
// Parameters:
//   - mode: 33071, 33648 or 10497
//
// Returns:
//   - material.WrapMode: the engine wrap mode (WrapRepeat for unknown values)
//   - bool: false if mode was not a known constant
func GetWrapMode(mode int) (material.WrapMode, bool) {
	switch mode {
	case WrapClampToEdge:
		return material.WrapClamp, true
	case WrapMirroredRepeat:
		return material.WrapMirror, true
	case WrapRepeat:
		return material.WrapRepeat, true
	default:
		return material.WrapRepeat, false
	}
}

// GetTextureFilterMode maps a glTF minification filter to an engine sampling mode.
// LINEAR and the LINEAR_MIPMAP_* filters are trilinear, NEAREST and
// NEAREST_MIPMAP_NEAREST are nearest, everything else is bilinear.
//
// Parameters:
//   - mode: the glTF minFilter value
//
// Returns:
//   - material.SamplingMode: the engine sampling mode
func GetTextureFilterMode(mode int) material.SamplingMode {
	switch mode {
	case FilterLinear, FilterLinearMipmapNearest, FilterLinearMipmapLinear:
		return material.SamplingTrilinear
	case FilterNearest, FilterNearestMipmapNearest:
		return material.SamplingNearest
	default:
		return material.SamplingBilinear
	}
}

// GetByteStrideFromType returns the tightly packed byte size of one accessor element.
// Matrix columns of 1- and 2-byte components are padded to 4-byte boundaries.
//
// Parameters:
//   - accessor: the accessor
//
// Returns:
//   - int: the element size in bytes, 0 for unknown types
func GetByteStrideFromType(accessor *Accessor) int {
	size := accessor.ComponentType.Size()
	count := accessor.Type.ComponentCount()
	cols := accessor.Type.columns()
	if cols == 0 || size == 4 {
		return size * count
	}
	return cols * alignTo4(cols*size)
}

// DecodeBufferToText decodes a UTF-8 byte view into a string.
//
// Parameters:
//   - view: the bytes
//
// Returns:
//   - string: the decoded text
//   - error: error if the bytes are not valid UTF-8
func DecodeBufferToText(view []byte) (string, error) {
	if !utf8.Valid(view) {
		return "", fmt.Errorf("buffer is not valid UTF-8")
	}
	return string(view), nil
}

// --- Helper Functions ---

func alignTo4(n int) int {
	return (n + 3) &^ 3
}

// resolveURI joins a relative resource URI onto the root URL. Absolute URIs and
// data URIs are returned unchanged; percent-escapes in relative URIs are decoded
// when the root is a filesystem path.
func resolveURI(rootURL, uri string) string {
	if IsBase64(uri) {
		return uri
	}
	if u, err := url.Parse(uri); err == nil && u.Scheme != "" {
		return uri
	}
	if rootURL == "" {
		return unescapePath(rootURL, uri)
	}
	if strings.HasSuffix(rootURL, "/") || strings.HasSuffix(rootURL, "\\") {
		return rootURL + unescapePath(rootURL, uri)
	}
	return rootURL + "/" + unescapePath(rootURL, uri)
}

func unescapePath(rootURL, uri string) string {
	if strings.Contains(rootURL, "://") && !strings.HasPrefix(rootURL, "file://") {
		return uri
	}
	if p, err := url.PathUnescape(uri); err == nil {
		return p
	}
	return uri
}

// mimeTypeFromURI guesses an image MIME type from a URI extension.
func mimeTypeFromURI(uri string) string {
	if IsBase64(uri) {
		return DataURIMimeType(uri)
	}
	switch strings.ToLower(path.Ext(uri)) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".webp":
		return "image/webp"
	case ".bmp":
		return "image/bmp"
	case ".gif":
		return "image/gif"
	default:
		return ""
	}
}
