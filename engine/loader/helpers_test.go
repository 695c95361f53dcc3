package loader

import (
	"context"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// testAsset builds small documents whose data lives in a single buffer.
type testAsset struct {
	doc *Document
	bin []byte
}

func newTestAsset() *testAsset {
	return &testAsset{doc: &Document{Asset: Asset{Version: "2.0"}}}
}

func ptr[T any](v T) *T {
	return &v
}

// addView appends raw to the buffer at a 4-byte aligned offset and returns the new view index.
func (a *testAsset) addView(raw []byte, stride int) int {
	for len(a.bin)%4 != 0 {
		a.bin = append(a.bin, 0)
	}
	view := BufferView{Buffer: 0, ByteOffset: len(a.bin), ByteLength: len(raw)}
	if stride > 0 {
		view.ByteStride = ptr(stride)
	}
	a.bin = append(a.bin, raw...)
	a.doc.BufferViews = append(a.doc.BufferViews, view)
	return len(a.doc.BufferViews) - 1
}

func (a *testAsset) addAccessor(acc Accessor) int {
	a.doc.Accessors = append(a.doc.Accessors, acc)
	return len(a.doc.Accessors) - 1
}

func (a *testAsset) addFloats(at AccessorType, values ...float32) int {
	view := a.addView(floatBytes(values...), 0)
	return a.addAccessor(Accessor{
		BufferView:    ptr(view),
		ComponentType: ComponentTypeFloat,
		Type:          at,
		Count:         len(values) / at.ComponentCount(),
	})
}

func (a *testAsset) addIndices(values ...uint16) int {
	raw := make([]byte, 2*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint16(raw[2*i:], v)
	}
	view := a.addView(raw, 0)
	return a.addAccessor(Accessor{
		BufferView:    ptr(view),
		ComponentType: ComponentTypeUnsignedShort,
		Type:          AccessorScalar,
		Count:         len(values),
	})
}

// addTriangleMesh adds a mesh with one indexed triangle and returns the mesh index.
func (a *testAsset) addTriangleMesh(name string, material *int) int {
	pos := a.addFloats(AccessorVec3, 0, 0, 0, 1, 0, 0, 0, 1, 0)
	idx := a.addIndices(0, 1, 2)
	a.doc.Meshes = append(a.doc.Meshes, Mesh{
		Name: name,
		Primitives: []MeshPrimitive{{
			Attributes: map[string]int{"POSITION": pos},
			Indices:    ptr(idx),
			Material:   material,
		}},
	})
	return len(a.doc.Meshes) - 1
}

func (a *testAsset) addNode(n Node) int {
	a.doc.Nodes = append(a.doc.Nodes, n)
	return len(a.doc.Nodes) - 1
}

func (a *testAsset) setScene(nodes ...int) {
	a.doc.Scenes = []Scene{{Nodes: nodes}}
	a.doc.Scene = ptr(0)
}

// glb encodes the asset as a binary container carrying the buffer in its BIN chunk.
func (a *testAsset) glb(t *testing.T) []byte {
	t.Helper()
	doc := *a.doc
	if len(a.bin) > 0 {
		doc.Buffers = []Buffer{{ByteLength: len(a.bin)}}
	}
	raw, err := json.Marshal(&doc)
	require.NoError(t, err)
	return WriteContainer(raw, a.bin)
}

// gltf encodes the asset as JSON text with the buffer embedded as a data URI.
func (a *testAsset) gltf(t *testing.T) []byte {
	t.Helper()
	doc := *a.doc
	if len(a.bin) > 0 {
		doc.Buffers = []Buffer{{
			URI:        "data:application/octet-stream;base64," + base64.StdEncoding.EncodeToString(a.bin),
			ByteLength: len(a.bin),
		}}
	}
	raw, err := json.Marshal(&doc)
	require.NoError(t, err)
	return raw
}

// external encodes the asset as JSON text referencing the buffer by uri.
func (a *testAsset) external(t *testing.T, uri string) []byte {
	t.Helper()
	doc := *a.doc
	doc.Buffers = []Buffer{{URI: uri, ByteLength: len(a.bin)}}
	raw, err := json.Marshal(&doc)
	require.NoError(t, err)
	return raw
}

func floatBytes(values ...float32) []byte {
	raw := make([]byte, 4*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint32(raw[4*i:], math.Float32bits(v))
	}
	return raw
}

// memoryFetcher serves files from a map and counts requests per URL.
type memoryFetcher struct {
	mu    sync.Mutex
	files map[string][]byte
	calls map[string]int
}

func newMemoryFetcher(files map[string][]byte) *memoryFetcher {
	return &memoryFetcher{files: files, calls: make(map[string]int)}
}

func (f *memoryFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[url]++
	data, ok := f.files[url]
	if !ok {
		return nil, fmt.Errorf("not found: %s", url)
	}
	return data, nil
}

func (f *memoryFetcher) count(url string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[url]
}
