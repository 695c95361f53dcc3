package loader

import (
	"context"
	"encoding/base64"
	"testing"

	"github.com/Carmen-Shannon/oxy-gltf/engine/material"
	"github.com/Carmen-Shannon/oxy-gltf/engine/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPackBinaryMergesBuffers(t *testing.T) {
	a := triangleAsset()
	doc := *a.doc
	doc.BufferViews = append([]BufferView(nil), a.doc.BufferViews...)
	for i := range doc.BufferViews {
		doc.BufferViews[i].Buffer = 1
	}
	doc.Buffers = []Buffer{
		{URI: "data:application/octet-stream;base64," + base64.StdEncoding.EncodeToString([]byte{9, 9, 9, 9, 9, 9}), ByteLength: 6},
		{URI: "tri.bin", ByteLength: len(a.bin)},
	}
	fetcher := newMemoryFetcher(map[string][]byte{"assets/tri.bin": a.bin})

	glb, err := PackBinary(context.Background(), &doc, nil, fetcher, "assets/")
	require.NoError(t, err)
	assert.Equal(t, 1, doc.BufferViews[0].Buffer, "input document is not modified")

	c, err := ReadContainer(glb)
	require.NoError(t, err)
	packed, err := ParseDocument(c.JSON)
	require.NoError(t, err)
	require.Len(t, packed.Buffers, 1)
	assert.Empty(t, packed.Buffers[0].URI)
	assert.Equal(t, 8+alignTo4(len(a.bin)), packed.Buffers[0].ByteLength)
	for i, view := range packed.BufferViews {
		assert.Equal(t, 0, view.Buffer)
		assert.Equal(t, a.doc.BufferViews[i].ByteOffset+8, view.ByteOffset)
	}

	l := newTestLoader(t, WithFetcher(newMemoryFetcher(nil)))
	s := scene.NewScene()
	require.NoError(t, l.Load(context.Background(), s, glb, ""))
	require.Len(t, s.MeshNodes(), 1)
	geo := s.MeshNodes()[0].Mesh().SubMeshes()[0].Geometry()
	assert.Equal(t, []float32{0, 0, 0, 1, 0, 0, 0, 1, 0}, geo.Positions)
}

func TestPackBinaryEmbedsImages(t *testing.T) {
	a := triangleAsset()
	a.doc.Images = []Image{{URI: "img.png"}, {URI: "noext"}}
	a.doc.Textures = []Texture{{Source: ptr(0)}, {Source: ptr(1)}}
	a.doc.Materials = []Material{{
		Name: "painted",
		PBRMetallicRoughness: &PBRMetallicRoughness{
			BaseColorTexture: &TextureInfo{Index: 0},
		},
		EmissiveTexture: &TextureInfo{Index: 1},
	}}
	a.doc.Meshes[0].Primitives[0].Material = ptr(0)
	png := pngBytes(t)
	fetcher := newMemoryFetcher(map[string][]byte{"img.png": png, "noext": png})

	c, err := ReadContainer(a.glb(t))
	require.NoError(t, err)
	doc, err := ParseDocument(c.JSON)
	require.NoError(t, err)

	glb, err := PackBinary(context.Background(), doc, c.Bin, fetcher, "")
	require.NoError(t, err)

	c, err = ReadContainer(glb)
	require.NoError(t, err)
	packed, err := ParseDocument(c.JSON)
	require.NoError(t, err)
	for _, img := range packed.Images {
		assert.Empty(t, img.URI)
		require.NotNil(t, img.BufferView)
		assert.Equal(t, "image/png", img.MimeType)
		assert.Equal(t, 0, packed.BufferViews[*img.BufferView].ByteOffset%4)
	}

	l := newTestLoader(t, WithFetcher(newMemoryFetcher(nil)))
	s := scene.NewScene()
	require.NoError(t, l.Load(context.Background(), s, glb, ""))
	mat, ok := s.MaterialByName("painted").(*material.PBRMaterial)
	require.True(t, ok)
	require.NotNil(t, mat.AlbedoTexture)
	assert.True(t, mat.AlbedoTexture.Loaded())
	assert.True(t, mat.EmissiveTexture.Loaded())
}

func TestPackBinaryErrors(t *testing.T) {
	a := triangleAsset()

	t.Run("missing resource", func(t *testing.T) {
		doc := *a.doc
		doc.Buffers = []Buffer{{URI: "gone.bin", ByteLength: len(a.bin)}}
		_, err := PackBinary(context.Background(), &doc, nil, newMemoryFetcher(nil), "")
		assert.ErrorIs(t, err, ErrResourceLoad)
	})

	t.Run("short buffer", func(t *testing.T) {
		doc := *a.doc
		doc.Buffers = []Buffer{{URI: "tri.bin", ByteLength: len(a.bin) + 4}}
		fetcher := newMemoryFetcher(map[string][]byte{"tri.bin": a.bin})
		_, err := PackBinary(context.Background(), &doc, nil, fetcher, "")
		assert.ErrorIs(t, err, ErrResourceLoad)
	})

	t.Run("missing binary chunk", func(t *testing.T) {
		doc := *a.doc
		doc.Buffers = []Buffer{{ByteLength: len(a.bin)}}
		_, err := PackBinary(context.Background(), &doc, nil, newMemoryFetcher(nil), "")
		assert.ErrorIs(t, err, ErrResourceLoad)
	})

	t.Run("bad buffer index", func(t *testing.T) {
		doc := *a.doc
		doc.Buffers = []Buffer{{URI: "tri.bin", ByteLength: len(a.bin)}}
		doc.BufferViews = append([]BufferView(nil), a.doc.BufferViews...)
		doc.BufferViews[0].Buffer = 3
		fetcher := newMemoryFetcher(map[string][]byte{"tri.bin": a.bin})
		_, err := PackBinary(context.Background(), &doc, nil, fetcher, "")
		assert.ErrorIs(t, err, ErrReference)
	})
}

func TestUnpackBinary(t *testing.T) {
	a := triangleAsset()

	text, bin, err := UnpackBinary(a.glb(t), "tri.bin")
	require.NoError(t, err)
	assert.Equal(t, a.bin, bin)

	doc, err := ParseDocument(text)
	require.NoError(t, err)
	require.Len(t, doc.Buffers, 1)
	assert.Equal(t, "tri.bin", doc.Buffers[0].URI)

	fetcher := newMemoryFetcher(map[string][]byte{
		"out/tri.gltf": text,
		"out/tri.bin":  bin,
	})
	l := newTestLoader(t, WithFetcher(fetcher))
	s := scene.NewScene()
	require.NoError(t, l.LoadFile(context.Background(), s, "out/tri.gltf"))
	assert.Len(t, s.MeshNodes(), 1)

	_, _, err = UnpackBinary([]byte("not a container"), "x.bin")
	assert.ErrorIs(t, err, ErrMalformedContainer)
}
