package loader

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-gltf/engine/material"
	"github.com/Carmen-Shannon/oxy-gltf/engine/model"
	"github.com/Carmen-Shannon/oxy-gltf/engine/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestLoader(t *testing.T, options ...FileLoaderBuilderOption) FileLoader {
	t.Helper()
	options = append([]FileLoaderBuilderOption{
		WithLogger(zaptest.NewLogger(t)),
		WithWorkers(2),
	}, options...)
	l := NewFileLoader(options...)
	t.Cleanup(l.Dispose)
	return l
}

func triangleAsset() *testAsset {
	a := newTestAsset()
	mesh := a.addTriangleMesh("tri", nil)
	node := a.addNode(Node{Name: "triangle", Mesh: ptr(mesh)})
	a.setScene(node)
	return a
}

func TestLoadMinimalTriangle(t *testing.T) {
	for _, tc := range []struct {
		name   string
		encode func(*testAsset, *testing.T) []byte
	}{
		{"glb", (*testAsset).glb},
		{"gltf", (*testAsset).gltf},
	} {
		t.Run(tc.name, func(t *testing.T) {
			l := newTestLoader(t)
			s := scene.NewScene()

			err := l.Load(context.Background(), s, tc.encode(triangleAsset(), t), "")
			require.NoError(t, err)

			meshNodes := s.MeshNodes()
			require.Len(t, meshNodes, 1)
			node := meshNodes[0]
			assert.Equal(t, "triangle", node.Name())
			assert.Equal(t, "/nodes/0", node.ID())
			assert.True(t, node.Enabled())
			require.NotNil(t, node.Parent())
			assert.Equal(t, rootNodeName, node.Parent().Name())

			subs := node.Mesh().SubMeshes()
			require.Len(t, subs, 1)
			geo := subs[0].Geometry()
			require.NotNil(t, geo)
			assert.Equal(t, []float32{0, 0, 0, 1, 0, 0, 0, 1, 0}, geo.Positions)
			assert.Equal(t, []uint32{0, 1, 2}, geo.Indices)
			assert.Len(t, geo.Normals, 9, "missing normals are generated")
			assert.Equal(t, [3]float32{1, 1, 0}, geo.BoundingMax)
			assert.Equal(t, model.TopologyTriangles, subs[0].Topology())

			def := s.MaterialByName(DefaultMaterialName)
			require.NotNil(t, def)
			assert.Same(t, def, subs[0].Material())
		})
	}
}

func TestLoadReusesDefaultMaterial(t *testing.T) {
	l := newTestLoader(t)
	s := scene.NewScene()

	require.NoError(t, l.Load(context.Background(), s, triangleAsset().glb(t), ""))
	require.NoError(t, l.Load(context.Background(), s, triangleAsset().glb(t), ""))

	count := 0
	for _, m := range s.Materials() {
		if m.Name() == DefaultMaterialName {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestLoadBadMagic(t *testing.T) {
	l := newTestLoader(t)
	data := triangleAsset().glb(t)
	copy(data, "nope")

	err := l.Load(context.Background(), scene.NewScene(), data, "")
	assert.ErrorIs(t, err, ErrMalformedContainer)
}

func TestLoadInvalidJSON(t *testing.T) {
	l := newTestLoader(t)
	err := l.Load(context.Background(), scene.NewScene(), []byte(`{"asset": `), "")
	assert.ErrorIs(t, err, ErrParse)
}

func TestLoadOutOfRangeMeshKeepsSiblings(t *testing.T) {
	a := newTestAsset()
	mesh := a.addTriangleMesh("tri", nil)
	broken := a.addNode(Node{Name: "broken", Mesh: ptr(5)})
	good := a.addNode(Node{Name: "good", Mesh: ptr(mesh)})
	a.setScene(broken, good)

	l := newTestLoader(t)
	s := scene.NewScene()
	result, err := l.ImportMesh(context.Background(), nil, s, a.glb(t), "")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrReference)

	var ref *ReferenceError
	require.ErrorAs(t, err, &ref)
	assert.Equal(t, "/nodes/0/mesh", ref.Path)
	assert.Equal(t, 5, ref.Index)

	assert.Nil(t, s.NodeByName("broken"))
	require.NotNil(t, s.NodeByName("good"))
	assert.True(t, s.NodeByName("good").Enabled())
	require.NotNil(t, result)
	assert.Len(t, result.MeshNodes, 1)
}

func TestImportMeshNameFilter(t *testing.T) {
	a := newTestAsset()
	mesh := a.addTriangleMesh("tri", nil)
	leaf := a.addNode(Node{Name: "leaf", Mesh: ptr(mesh)})
	wanted := a.addNode(Node{Name: "wanted", Children: []int{leaf}})
	other := a.addNode(Node{Name: "other", Mesh: ptr(mesh)})
	top := a.addNode(Node{Name: "top", Children: []int{wanted, other}})
	a.setScene(top)

	l := newTestLoader(t)
	s := scene.NewScene()
	result, err := l.ImportMesh(context.Background(), []string{"wanted"}, s, a.gltf(t), "")
	require.NoError(t, err)

	assert.Nil(t, s.NodeByName("top"))
	assert.Nil(t, s.NodeByName("other"))
	w := s.NodeByName("wanted")
	require.NotNil(t, w)
	assert.Equal(t, rootNodeName, w.Parent().Name())
	require.NotNil(t, s.NodeByName("leaf"))
	assert.Same(t, w, s.NodeByName("leaf").Parent())

	names := make([]string, 0, len(result.Nodes))
	for _, n := range result.Nodes {
		names = append(names, n.Name())
	}
	assert.Equal(t, []string{rootNodeName, "wanted", "leaf"}, names)
	require.Len(t, result.MeshNodes, 1)
	assert.Equal(t, "leaf", result.MeshNodes[0].Name())
}

func TestLoadWithoutScenes(t *testing.T) {
	a := newTestAsset()
	mesh := a.addTriangleMesh("tri", nil)
	child := a.addNode(Node{Name: "child", Mesh: ptr(mesh)})
	a.addNode(Node{Name: "parent", Children: []int{child}})

	l := newTestLoader(t)
	s := scene.NewScene()
	require.NoError(t, l.Load(context.Background(), s, a.glb(t), ""))

	parent := s.NodeByName("parent")
	require.NotNil(t, parent)
	assert.Same(t, parent, s.NodeByName("child").Parent())
}

func TestLoadSharedNodeReportsError(t *testing.T) {
	a := newTestAsset()
	shared := a.addNode(Node{Name: "shared"})
	first := a.addNode(Node{Name: "first", Children: []int{shared}})
	second := a.addNode(Node{Name: "second", Children: []int{shared}})
	a.setScene(first, second)

	l := newTestLoader(t)
	s := scene.NewScene()
	err := l.Load(context.Background(), s, a.gltf(t), "")
	assert.ErrorIs(t, err, ErrParse)
	assert.NotNil(t, s.NodeByName("second"))
}

func TestLoadNodeTransformsAndCamera(t *testing.T) {
	a := newTestAsset()
	a.doc.Cameras = []Camera{{
		Type:        CameraTypePerspective,
		Perspective: &CameraPerspective{YFov: 0.8, ZNear: 0.1, ZFar: ptr(float32(100))},
	}}
	cam := a.addNode(Node{
		Name:        "eye",
		Camera:      ptr(0),
		Translation: &[3]float32{1, 2, 3},
	})
	a.setScene(cam)

	l := newTestLoader(t)
	s := scene.NewScene()
	require.NoError(t, l.Load(context.Background(), s, a.gltf(t), ""))

	n := s.NodeByName("eye")
	require.NotNil(t, n)
	assert.Equal(t, [3]float32{1, 2, 3}, n.Transform().Translation)
	assert.Equal(t, [4]float32{0, 0, 0, 1}, n.Transform().Rotation)
	require.NotNil(t, n.Camera())
	assert.Equal(t, "camera0", n.Camera().Name)
	assert.Equal(t, model.CameraPerspective, n.Camera().Type)
	assert.Equal(t, float32(100), n.Camera().ZFar)
	assert.Len(t, s.Cameras(), 1)
}

func TestLoadLeftHandedRoot(t *testing.T) {
	l := newTestLoader(t, WithConvertToLeftHanded(true))
	s := scene.NewScene()
	require.NoError(t, l.Load(context.Background(), s, triangleAsset().glb(t), ""))

	root := s.NodeByName(rootNodeName)
	require.NotNil(t, root)
	assert.Equal(t, [3]float32{1, 1, -1}, root.Transform().Scale)
}

func TestLoadTriangleStrip(t *testing.T) {
	a := newTestAsset()
	pos := a.addFloats(AccessorVec3, 0, 0, 0, 1, 0, 0, 0, 1, 0, 1, 1, 0)
	a.doc.Meshes = []Mesh{{Primitives: []MeshPrimitive{{
		Attributes: map[string]int{"POSITION": pos, "_CUSTOM": pos},
		Mode:       ptr(PrimitiveModeTriangleStrip),
	}}}}
	a.setScene(a.addNode(Node{Mesh: ptr(0)}))

	l := newTestLoader(t)
	s := scene.NewScene()
	require.NoError(t, l.Load(context.Background(), s, a.glb(t), ""))

	require.Len(t, s.MeshNodes(), 1)
	node := s.MeshNodes()[0]
	assert.Equal(t, "node0", node.Name())
	assert.Equal(t, "mesh0", node.Mesh().Name())
	geo := node.Mesh().SubMeshes()[0].Geometry()
	assert.Equal(t, []uint32{0, 1, 2, 2, 1, 3}, geo.Indices)
}

func TestLoadIndexOutOfRange(t *testing.T) {
	a := newTestAsset()
	pos := a.addFloats(AccessorVec3, 0, 0, 0, 1, 0, 0, 0, 1, 0)
	idx := a.addIndices(0, 1, 3)
	a.doc.Meshes = []Mesh{{Primitives: []MeshPrimitive{{
		Attributes: map[string]int{"POSITION": pos},
		Indices:    ptr(idx),
	}}}}
	a.setScene(a.addNode(Node{Mesh: ptr(0)}))

	l := newTestLoader(t)
	err := l.Load(context.Background(), scene.NewScene(), a.glb(t), "")
	assert.ErrorIs(t, err, ErrParse)
}

func TestLoadMorphTargets(t *testing.T) {
	a := newTestAsset()
	pos := a.addFloats(AccessorVec3, 0, 0, 0, 1, 0, 0, 0, 1, 0)
	delta := a.addFloats(AccessorVec3, 0, 0, 1, 0, 0, 1, 0, 0, 1)
	extras, err := json.Marshal(map[string]any{"targetNames": []string{"lift"}})
	require.NoError(t, err)
	a.doc.Meshes = []Mesh{{
		Primitives: []MeshPrimitive{{
			Attributes: map[string]int{"POSITION": pos},
			Targets:    []map[string]int{{"POSITION": delta}},
		}},
		Extras: extras,
	}}
	a.setScene(a.addNode(Node{Name: "morph", Mesh: ptr(0)}))

	l := newTestLoader(t)
	s := scene.NewScene()
	require.NoError(t, l.Load(context.Background(), s, a.glb(t), ""))

	n := s.NodeByName("morph")
	require.NotNil(t, n)
	assert.Equal(t, []float32{0}, n.MorphWeights())
	targets := n.Mesh().SubMeshes()[0].MorphTargets()
	require.Len(t, targets, 1)
	assert.Equal(t, "lift", targets[0].Name)
	assert.Equal(t, []float32{0, 0, 1, 1, 0, 1, 0, 1, 1}, targets[0].Positions)
}

func TestLoadRequiredExtensionMissing(t *testing.T) {
	a := triangleAsset()
	a.doc.ExtensionsRequired = []string{"KHR_draco_mesh_compression"}

	l := newTestLoader(t)
	err := l.Load(context.Background(), scene.NewScene(), a.glb(t), "")
	assert.ErrorIs(t, err, ErrParse)
	assert.Contains(t, err.Error(), "KHR_draco_mesh_compression")
}

func TestLoadExternalResources(t *testing.T) {
	a := triangleAsset()
	fetcher := newMemoryFetcher(map[string][]byte{
		"assets/tri.gltf": a.external(t, "tri.bin"),
		"assets/tri.bin":  a.bin,
	})

	l := newTestLoader(t, WithFetcher(fetcher))
	s := scene.NewScene()
	require.NoError(t, l.LoadFile(context.Background(), s, "assets/tri.gltf"))

	assert.Len(t, s.MeshNodes(), 1)
	assert.Equal(t, 1, fetcher.count("assets/tri.bin"))

	err := l.LoadFile(context.Background(), s, "assets/tri.obj")
	assert.Error(t, err)
}

func TestLoadMissingExternalBuffer(t *testing.T) {
	a := triangleAsset()
	l := newTestLoader(t, WithFetcher(newMemoryFetcher(nil)))

	err := l.Load(context.Background(), scene.NewScene(), a.external(t, "gone.bin"), "")
	assert.ErrorIs(t, err, ErrResourceLoad)
}

func TestParseSniffing(t *testing.T) {
	l := newTestLoader(t)

	text := append([]byte("\xEF\xBB\xBF \n"), triangleAsset().gltf(t)...)
	data, v, err := l.Parse(text)
	require.NoError(t, err)
	assert.Equal(t, Version{2, 0}, v)
	assert.Nil(t, data.Bin)

	data, v, err = l.Parse(triangleAsset().glb(t))
	require.NoError(t, err)
	assert.Equal(t, Version{2, 0}, v)
	assert.NotEmpty(t, data.Bin)

	assert.True(t, l.CanDirectLoad(`{"scene":0,"nodes":[]}`))
	assert.False(t, l.CanDirectLoad(`{"asset":{}}`))
	assert.Equal(t, "gltf", l.Name())
	assert.True(t, l.FileExtensions()[".glb"])
	assert.False(t, l.FileExtensions()[".gltf"])
}

// legacyStub records the loads dispatched to a glTF 1.x loader.
type legacyStub struct {
	loads int
}

func (s *legacyStub) ImportMeshAsync(ctx context.Context, names []string, target TargetScene, data *LoaderData, rootURL string, onSuccess func(*ImportResult), onError func(error)) {
	s.loads++
	onSuccess(&ImportResult{})
}

func (s *legacyStub) LoadAsync(ctx context.Context, target TargetScene, data *LoaderData, rootURL string, onSuccess func(), onError func(error)) {
	s.loads++
	onSuccess()
}

func (s *legacyStub) Dispose() {}

func TestVersionDispatch(t *testing.T) {
	v1 := []byte(`{"asset":{"version":"1.0"},"scene":"s","nodes":{}}`)
	v3 := []byte(`{"asset":{"version":"3.0"}}`)

	l := newTestLoader(t)
	err := l.Load(context.Background(), scene.NewScene(), v1, "")
	assert.ErrorIs(t, err, ErrUnsupportedVersion)

	err = l.Load(context.Background(), scene.NewScene(), v3, "")
	assert.ErrorIs(t, err, ErrUnsupportedVersion)

	stub := &legacyStub{}
	l = newTestLoader(t, WithLegacyLoader(func() VersionedLoader { return stub }))
	require.NoError(t, l.Load(context.Background(), scene.NewScene(), v1, ""))
	assert.Equal(t, 1, stub.loads)

	result, err := l.ImportMesh(context.Background(), nil, scene.NewScene(), v1, "")
	require.NoError(t, err)
	assert.NotNil(t, result)
	assert.Equal(t, 2, stub.loads)

	err = l.Load(context.Background(), scene.NewScene(), []byte(`{"asset":{"version":"2.0","minVersion":"2.1"}}`), "")
	assert.ErrorIs(t, err, ErrUnsupportedVersion)
}

func TestLoadAsyncCallbacks(t *testing.T) {
	l := newTestLoader(t)

	done := make(chan *ImportResult, 1)
	l.ImportMeshAsync(context.Background(), nil, scene.NewScene(), triangleAsset().glb(t), "",
		func(r *ImportResult) { done <- r },
		func(err error) { t.Errorf("unexpected error: %v", err) },
	)
	result := <-done
	require.NotNil(t, result)
	assert.Len(t, result.MeshNodes, 1)

	failed := make(chan error, 1)
	l.LoadAsync(context.Background(), scene.NewScene(), []byte("garbage!!!!!"), "",
		func() { t.Error("unexpected success") },
		func(err error) { failed <- err },
	)
	assert.ErrorIs(t, <-failed, ErrMalformedContainer)
}

func TestLoaderSingleUse(t *testing.T) {
	gl := newGLTFLoader(loaderOptions{})
	data := &LoaderData{JSON: triangleAsset().gltf(t)}

	_, err := gl.load(context.Background(), nil, scene.NewScene(), data, "")
	require.NoError(t, err)
	_, err = gl.load(context.Background(), nil, scene.NewScene(), data, "")
	assert.ErrorIs(t, err, errLoaderReused)
}

func TestLoadDocumentStruct(t *testing.T) {
	a := triangleAsset()
	a.doc.Buffers = []Buffer{{ByteLength: len(a.bin)}}
	gl := newGLTFLoader(loaderOptions{})

	s := scene.NewScene()
	_, err := gl.load(context.Background(), nil, s, &LoaderData{JSON: a.doc, Bin: a.bin}, "")
	require.NoError(t, err)
	assert.Len(t, s.MeshNodes(), 1)
}

func TestLoadTexturesShareImages(t *testing.T) {
	a := triangleAsset()
	a.doc.Images = []Image{{URI: "img.png"}}
	a.doc.Samplers = []Sampler{{MinFilter: ptr(FilterNearest), WrapS: ptr(WrapClampToEdge)}}
	a.doc.Textures = []Texture{{Source: ptr(0), Sampler: ptr(0)}}
	a.doc.Materials = []Material{{
		Name: "skin",
		PBRMetallicRoughness: &PBRMetallicRoughness{
			BaseColorTexture:         &TextureInfo{Index: 0},
			MetallicRoughnessTexture: &TextureInfo{Index: 0, TexCoord: 1},
		},
		EmissiveTexture: &TextureInfo{Index: 0},
	}}
	a.doc.Meshes[0].Primitives[0].Material = ptr(0)
	fetcher := newMemoryFetcher(map[string][]byte{"img.png": pngBytes(t)})

	l := newTestLoader(t, WithFetcher(fetcher))
	s := scene.NewScene()
	require.NoError(t, loadWithin(t, l, s, a.glb(t), 5*time.Second))

	mat, ok := s.MaterialByName("skin").(*material.PBRMaterial)
	require.True(t, ok)
	require.NotNil(t, mat.AlbedoTexture)
	assert.Same(t, mat.AlbedoTexture, mat.EmissiveTexture)
	assert.NotSame(t, mat.AlbedoTexture, mat.MetallicTexture)
	assert.Equal(t, 1, mat.MetallicTexture.CoordinatesIndex)
	assert.Equal(t, [3]float32{1, 1, 1}, mat.EmissiveColor)

	assert.True(t, mat.AlbedoTexture.Loaded())
	assert.True(t, mat.MetallicTexture.Loaded())
	assert.True(t, mat.AlbedoTexture.NoMipMaps)
	assert.Equal(t, material.WrapClamp, mat.AlbedoTexture.WrapU)
	assert.Equal(t, material.WrapRepeat, mat.AlbedoTexture.WrapV)
	assert.Equal(t, "texture0", mat.AlbedoTexture.Name)
	assert.Equal(t, 1, fetcher.count("img.png"))
	assert.Len(t, s.Textures(), 2)
}

func TestLoadTextureReusesLoadedImage(t *testing.T) {
	a := triangleAsset()
	a.doc.Images = []Image{{URI: "img.png"}}
	a.doc.Textures = []Texture{{Source: ptr(0)}, {Name: "second", Source: ptr(0)}}
	fetcher := newMemoryFetcher(map[string][]byte{"img.png": pngBytes(t)})

	gl := newGLTFLoader(loaderOptions{log: zaptest.NewLogger(t), fetcher: fetcher})
	gl.setup(context.Background(), a.doc, scene.NewScene(), a.bin, "")

	first, err := gl.LoadTexture("/materials/0/baseColorTexture", &TextureInfo{Index: 0})
	require.NoError(t, err)
	require.NoError(t, gl.barrier.Wait())
	require.True(t, first.Loaded())

	second, err := gl.LoadTexture("/materials/1/baseColorTexture", &TextureInfo{Index: 1})
	require.NoError(t, err)
	assert.NotSame(t, first, second)
	assert.Equal(t, "second", second.Name)
	assert.True(t, second.Loaded())
	assert.Equal(t, first.Data(), second.Data())
	assert.Zero(t, gl.barrier.Pending())
	assert.Equal(t, 1, fetcher.count("img.png"))
	require.NoError(t, gl.barrier.Wait())
}

func TestLoadBadImageReported(t *testing.T) {
	a := triangleAsset()
	a.doc.Images = []Image{{URI: "data:image/png;base64,AAAA"}}
	a.doc.Textures = []Texture{{Source: ptr(0)}}
	a.doc.Materials = []Material{{PBRMetallicRoughness: &PBRMetallicRoughness{BaseColorTexture: &TextureInfo{Index: 0}}}}
	a.doc.Meshes[0].Primitives[0].Material = ptr(0)

	l := newTestLoader(t)
	s := scene.NewScene()
	err := l.Load(context.Background(), s, a.glb(t), "")
	assert.ErrorIs(t, err, ErrResourceLoad)
	assert.Len(t, s.MeshNodes(), 1)
}

// loadWithin runs Load and fails the test when it has not returned after d.
func loadWithin(t *testing.T, l FileLoader, s scene.Scene, data []byte, d time.Duration) error {
	t.Helper()
	done := make(chan error, 1)
	go func() {
		done <- l.Load(context.Background(), s, data, "")
	}()
	select {
	case err := <-done:
		return err
	case <-time.After(d):
		t.Fatalf("Load did not return within %s", d)
		return nil
	}
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}
